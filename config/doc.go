// Package config provides application configuration management.
//
// The config package handles loading and validation of the application's
// configuration from YAML files. It covers server settings, the fixed
// sandbox policy applied to every execution, and logging options. The
// sandbox policy is constant for the lifetime of the process and is never
// derived from request data.
//
// Usage:
//
//	cfg, err := config.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Server transport: %s\n", cfg.Server.Transport)
package config

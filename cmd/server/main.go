// Package main is the entry point for the sandboxed Python playground.
//
// The server runs untrusted Python snippets inside ephemeral, hardened
// containers: no network, capped memory, process count and CPU share, a
// read-only root filesystem, and two independent wall-clock limits. It
// exposes the engine over two transports: an HTTP playground (page + JSON
// API) and an MCP tool server on stdio.
//
// The application uses Uber's fx framework for dependency injection and
// lifecycle management, with zap for structured logging and viper for
// configuration.
package main

import (
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/bharathreddy533/docker-project/config"
	"github.com/bharathreddy533/docker-project/httpserver"
	"github.com/bharathreddy533/docker-project/logger"
	"github.com/bharathreddy533/docker-project/mcpserver"
	"github.com/bharathreddy533/docker-project/sandbox"
)

func main() {
	app := fx.New(
		// Provide dependencies
		fx.Provide(
			// Config
			config.New,

			// Logger with configuration
			logger.NewFromConfig,

			// Execution engine (workspace manager + launcher + normalizer)
			sandbox.NewService,

			// Transports
			httpserver.New,
			mcpserver.New,
		),

		// Start the appropriate transport based on config
		fx.Invoke(
			func(cfg *config.Config, web *httpserver.Server, mcp *mcpserver.MCPServer) {
				switch cfg.Server.Transport {
				case "http":
					go func() {
						if err := web.Start(); err != nil {
							panic(err)
						}
					}()
				case "mcp":
					go func() {
						if err := mcp.ServeStdio(); err != nil {
							panic(err)
						}
					}()
				default:
					panic("unsupported transport: " + cfg.Server.Transport)
				}
			},
		),

		// Use the application logger for fx logs
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
	)

	// Start the application
	app.Run()
}

// Package main is the entry point for the playground server.
package main

// Package mcpserver provides the Model Context Protocol (MCP) transport.
//
// The mcpserver package exposes the execution engine as an MCP tool so
// agent clients can run Python snippets in the same sandbox the web
// playground uses. It applies the same boundary validation as the HTTP
// transport and uses the mark3labs/mcp-go library for protocol details.
package mcpserver

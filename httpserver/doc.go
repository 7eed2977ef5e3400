// Package httpserver provides the web playground transport.
//
// The httpserver package exposes the execution engine over HTTP: it serves
// the embedded playground page at the root and accepts code submissions on
// POST /run. It performs the boundary validation (non-empty, size-capped
// source) before handing the snippet to the engine, and reports timeouts as
// successful responses carrying a human-readable message.
package httpserver

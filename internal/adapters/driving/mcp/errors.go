// Package mcp provides an MCP (Model Context Protocol) server adapter for docqa.
// It lets AI assistants ask questions about the indexed documents and
// retrieve the passages answers are built from.
package mcp

import "errors"

// ErrMissingSessionService is returned when the session service is not provided.
var ErrMissingSessionService = errors.New("mcp: session service is required")

// ErrMissingRetriever is returned when the index service or retriever is not provided.
var ErrMissingRetriever = errors.New("mcp: index service and retriever are required")

// Package mcp provides an MCP (Model Context Protocol) server adapter for docqa.
// It lets AI assistants load a document into the session and ask questions about it.
package mcp

import "errors"

// ErrMissingQAService is returned when the QA service is not provided.
var ErrMissingQAService = errors.New("mcp: qa service is required")

// ErrUploadUnavailable is returned by ingest_file when no upload service is configured.
var ErrUploadUnavailable = errors.New("mcp: file ingestion is not configured")

package mcp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// IngestTextInput is the input schema for the ingest_text tool.
type IngestTextInput struct {
	Text string `json:"text" jsonschema:"the full text of the document to answer questions about"`
	Name string `json:"name,omitempty" jsonschema:"display name for the document"`
}

// IngestFileInput is the input schema for the ingest_file tool.
type IngestFileInput struct {
	Path string `json:"path" jsonschema:"path of a .txt, .pdf, .docx, .md or .html file on the server"`
}

// IngestOutput is the output schema for the ingest tools.
type IngestOutput struct {
	Message    string `json:"message"`
	Filename   string `json:"filename,omitempty"`
	TextLength int    `json:"text_length,omitempty"`
}

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"a question about the loaded document"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Query      string   `json:"query"`
	Result     string   `json:"result"`
	Confidence *float64 `json:"confidence,omitempty"`
	Kind       string   `json:"kind"`
}

// StatusInput is the (empty) input schema for the status tool.
type StatusInput struct{}

// StatusOutput is the output schema for the status tool.
type StatusOutput struct {
	HasDocument      bool     `json:"has_document"`
	DocumentName     string   `json:"document_name,omitempty"`
	IngestedAt       string   `json:"ingested_at,omitempty"`
	Segments         int      `json:"segments,omitempty"`
	GenerationID     string   `json:"generation_id,omitempty"`
	SupportedFormats []string `json:"supported_formats,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ingest_text",
		Description: "Load text as the document to answer questions about, replacing any previous document",
	}, s.handleIngestText)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ingest_file",
		Description: "Extract a file's text and load it as the document, replacing any previous document",
	}, s.handleIngestFile)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question using only the loaded document",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "status",
		Description: "Report whether a document is loaded and which one",
	}, s.handleStatus)
}

// handleIngestText handles the ingest_text tool invocation.
func (s *Server) handleIngestText(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestTextInput,
) (*mcp.CallToolResult, IngestOutput, error) {
	msg, err := s.ports.QA.Ingest(ctx, input.Text, input.Name)
	if err != nil {
		return nil, IngestOutput{}, err
	}
	return nil, IngestOutput{Message: msg}, nil
}

// handleIngestFile handles the ingest_file tool invocation.
func (s *Server) handleIngestFile(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestFileInput,
) (*mcp.CallToolResult, IngestOutput, error) {
	if s.ports.Upload == nil {
		return nil, IngestOutput{}, ErrUploadUnavailable
	}

	content, err := os.ReadFile(input.Path)
	if err != nil {
		return nil, IngestOutput{}, fmt.Errorf("reading %s: %w", input.Path, err)
	}

	result, err := s.ports.Upload.IngestFile(ctx, content, filepath.Base(input.Path))
	if err != nil {
		return nil, IngestOutput{}, err
	}

	return nil, IngestOutput{
		Message:    result.Message,
		Filename:   result.Filename,
		TextLength: result.TextLength,
	}, nil
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	answer := s.ports.QA.Answer(ctx, input.Question)
	return nil, AskOutput{
		Query:      answer.Query,
		Result:     answer.Result,
		Confidence: answer.Confidence,
		Kind:       answer.Kind.String(),
	}, nil
}

// handleStatus handles the status tool invocation.
func (s *Server) handleStatus(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ StatusInput,
) (*mcp.CallToolResult, StatusOutput, error) {
	return nil, s.status(), nil
}

func (s *Server) status() StatusOutput {
	status := s.ports.QA.Status()
	out := StatusOutput{
		HasDocument:  status.HasDocument,
		DocumentName: status.DocumentName,
		Segments:     status.Segments,
		GenerationID: status.GenerationID,
	}
	if status.IngestedAt != nil {
		out.IngestedAt = status.IngestedAt.Format(time.RFC3339)
	}
	if s.ports.Upload != nil {
		out.SupportedFormats = s.ports.Upload.SupportedFormats()
	}
	return out
}

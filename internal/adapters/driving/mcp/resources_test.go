package mcp

import (
	"context"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// Helper to create a ReadResourceRequest with the given URI.
func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestServer_handleStatusResource(t *testing.T) {
	ctx := context.Background()

	t.Run("returns status JSON", func(t *testing.T) {
		qa := &mockQAService{status: domain.Status{HasDocument: true, DocumentName: "policy.txt"}}
		server, err := NewServer(&Ports{QA: qa})
		require.NoError(t, err)

		result, err := server.handleStatusResource(ctx, makeReadResourceRequest("docqa://status"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)
		assert.Contains(t, result.Contents[0].Text, `"has_document": true`)
		assert.Contains(t, result.Contents[0].Text, `"document_name": "policy.txt"`)
	})

	t.Run("empty session", func(t *testing.T) {
		server, err := NewServer(&Ports{QA: &mockQAService{}})
		require.NoError(t, err)

		result, err := server.handleStatusResource(ctx, makeReadResourceRequest("docqa://status"))

		require.NoError(t, err)
		assert.Contains(t, result.Contents[0].Text, `"has_document": false`)
	})

	t.Run("unknown URI", func(t *testing.T) {
		server, err := NewServer(&Ports{QA: &mockQAService{}})
		require.NoError(t, err)

		_, err = server.handleStatusResource(ctx, makeReadResourceRequest("docqa://other"))

		assert.Error(t, err)
	})
}

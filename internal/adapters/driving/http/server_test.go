package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpapi "github.com/custodia-labs/docqa/internal/adapters/driving/http"
	"github.com/custodia-labs/docqa/internal/core/domain"
)

type mockQAService struct {
	answer domain.Answer
	status domain.Status
}

func (m *mockQAService) Ingest(_ context.Context, _, name string) (string, error) {
	return fmt.Sprintf("Document '%s' processed successfully.", name), nil
}

func (m *mockQAService) Answer(_ context.Context, question string) domain.Answer {
	answer := m.answer
	answer.Query = question
	return answer
}

func (m *mockQAService) Status() domain.Status { return m.status }

func (m *mockQAService) Restore(_ context.Context) error { return nil }

type mockUploadService struct {
	err      error
	filename string
	content  []byte
}

func (m *mockUploadService) IngestFile(_ context.Context, content []byte, filename string) (domain.UploadResult, error) {
	m.filename = filename
	m.content = content
	if m.err != nil {
		return domain.UploadResult{}, m.err
	}
	return domain.UploadResult{
		Message:    "Document processed successfully.",
		Filename:   filename,
		TextLength: len(content),
	}, nil
}

func (m *mockUploadService) SupportedFormats() []string {
	return []string{".txt", ".pdf"}
}

type recordingMetrics struct {
	mu     sync.Mutex
	routes []string
	status []int
}

func (m *recordingMetrics) RecordHTTPRequest(route string, status int, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routes = append(m.routes, route)
	m.status = append(m.status, status)
}

func (m *recordingMetrics) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("docqa_http_requests_total 1\n")) //nolint:errcheck
	})
}

func newServer(t *testing.T, qa *mockQAService, opts ...httpapi.Options) *httpapi.Server {
	t.Helper()
	server, err := httpapi.New(qa, opts...)
	require.NoError(t, err)
	return server
}

func do(t *testing.T, h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func uploadRequest(t *testing.T, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestNew_RequiresQAService(t *testing.T) {
	_, err := httpapi.New(nil)
	assert.ErrorIs(t, err, httpapi.ErrMissingQAService)
}

func TestServer_Root(t *testing.T) {
	server := newServer(t, &mockQAService{})

	rec := do(t, server, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, httpapi.RootMessage, decode(t, rec)["message"])
}

func TestServer_Health(t *testing.T) {
	server := newServer(t, &mockQAService{})

	rec := do(t, server, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode(t, rec)["status"])
}

func TestServer_Status(t *testing.T) {
	t.Run("no document", func(t *testing.T) {
		server := newServer(t, &mockQAService{}, httpapi.WithUpload(&mockUploadService{}))

		rec := do(t, server, httptest.NewRequest(http.MethodGet, "/status", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, false, body["has_document"])
		assert.Equal(t, []any{".txt", ".pdf"}, body["supported_formats"])
		assert.NotContains(t, body, "document_name")
	})

	t.Run("with document", func(t *testing.T) {
		qa := &mockQAService{status: domain.Status{HasDocument: true, DocumentName: "policy.txt"}}
		server := newServer(t, qa)

		rec := do(t, server, httptest.NewRequest(http.MethodGet, "/status", nil))

		body := decode(t, rec)
		assert.Equal(t, true, body["has_document"])
		assert.Equal(t, "policy.txt", body["document_name"])
		assert.Equal(t, []any{}, body["supported_formats"])
	})
}

func TestServer_Ask(t *testing.T) {
	t.Run("answer with confidence", func(t *testing.T) {
		confidence := 0.55
		qa := &mockQAService{answer: domain.Answer{Result: "Within 30 days.", Confidence: &confidence, Kind: domain.AnswerAnswered}}
		server := newServer(t, qa)

		req := httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(`{"question":"How long do refunds take?"}`))
		rec := do(t, server, req)

		require.Equal(t, http.StatusOK, rec.Code)
		answer := decode(t, rec)["answer"].(map[string]any)
		assert.Equal(t, "How long do refunds take?", answer["query"])
		assert.Equal(t, "Within 30 days.", answer["result"])
		assert.InDelta(t, 0.55, answer["confidence"], 1e-9)
	})

	t.Run("fixed message has no confidence", func(t *testing.T) {
		qa := &mockQAService{answer: domain.NoDocumentAnswer("")}
		server := newServer(t, qa)

		req := httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(`{"question":"anything"}`))
		rec := do(t, server, req)

		answer := decode(t, rec)["answer"].(map[string]any)
		assert.Equal(t, domain.MessageNoDocument, answer["result"])
		assert.NotContains(t, answer, "confidence")
	})

	t.Run("malformed body", func(t *testing.T) {
		server := newServer(t, &mockQAService{})

		req := httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(`{"question":`))
		rec := do(t, server, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decode(t, rec)["detail"], "invalid request body")
	})
}

func TestServer_Upload(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		upload := &mockUploadService{}
		server := newServer(t, &mockQAService{}, httpapi.WithUpload(upload))

		rec := do(t, server, uploadRequest(t, "policy.txt", []byte("Refunds within 30 days.")))

		require.Equal(t, http.StatusOK, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, "policy.txt", body["filename"])
		assert.Equal(t, float64(23), body["text_length"])
		assert.Equal(t, "Refunds within 30 days.", string(upload.content))
	})

	t.Run("client errors map to 400", func(t *testing.T) {
		for _, err := range []error{
			domain.ErrInvalidInput,
			fmt.Errorf("%w: .exe", domain.ErrUnsupportedFormat),
			fmt.Errorf("%w: could not extract sufficient text from the file", domain.ErrExtractionFailed),
		} {
			server := newServer(t, &mockQAService{}, httpapi.WithUpload(&mockUploadService{err: err}))

			rec := do(t, server, uploadRequest(t, "file.bin", []byte("data")))

			assert.Equal(t, http.StatusBadRequest, rec.Code, err.Error())
			assert.Equal(t, err.Error(), decode(t, rec)["detail"])
		}
	})

	t.Run("pipeline errors map to 500", func(t *testing.T) {
		uploadErr := fmt.Errorf("%w: embedding: connection refused", domain.ErrModelUnavailable)
		server := newServer(t, &mockQAService{}, httpapi.WithUpload(&mockUploadService{err: uploadErr}))

		rec := do(t, server, uploadRequest(t, "policy.txt", []byte("Refunds within 30 days.")))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, decode(t, rec)["detail"], "connection refused")
	})

	t.Run("missing file field", func(t *testing.T) {
		server := newServer(t, &mockQAService{}, httpapi.WithUpload(&mockUploadService{}))

		req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("not multipart"))
		rec := do(t, server, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("upload disabled", func(t *testing.T) {
		server := newServer(t, &mockQAService{})

		rec := do(t, server, uploadRequest(t, "policy.txt", []byte("text")))

		assert.Equal(t, http.StatusNotImplemented, rec.Code)
	})

	t.Run("filename is reduced to its base", func(t *testing.T) {
		upload := &mockUploadService{}
		server := newServer(t, &mockQAService{}, httpapi.WithUpload(upload))

		do(t, server, uploadRequest(t, "../../etc/policy.txt", []byte("Refunds within 30 days.")))

		assert.Equal(t, "policy.txt", upload.filename)
	})
}

func TestServer_RateLimit(t *testing.T) {
	server := newServer(t, &mockQAService{}, httpapi.WithRateLimit(0.001, 2))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := do(t, server, httptest.NewRequest(http.MethodGet, "/status", nil))
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// Health checks are not limited.
	rec := do(t, server, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_Metrics(t *testing.T) {
	m := &recordingMetrics{}
	server := newServer(t, &mockQAService{}, httpapi.WithMetrics(m))

	do(t, server, httptest.NewRequest(http.MethodGet, "/status", nil))
	do(t, server, httptest.NewRequest(http.MethodGet, "/missing", nil))
	rec := do(t, server, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Contains(t, rec.Body.String(), "docqa_http_requests_total")

	m.mu.Lock()
	defer m.mu.Unlock()
	require.Len(t, m.routes, 3)
	assert.Equal(t, "/status", m.routes[0])
	assert.Equal(t, http.StatusOK, m.status[0])
	assert.Equal(t, http.StatusNotFound, m.status[1])
}

func TestServer_Run(t *testing.T) {
	server := newServer(t, &mockQAService{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- server.Run(ctx, "127.0.0.1:0")
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not shut down")
	}
}

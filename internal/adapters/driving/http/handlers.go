package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/logger"
)

// RootMessage is returned by GET /.
const RootMessage = "RAG QA Bot API is running"

type errorResponse struct {
	Detail string `json:"detail"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type uploadResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	Filename   string `json:"filename"`
	TextLength int    `json:"text_length"`
}

type askRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	Answer domain.Answer `json:"answer"`
}

type statusResponse struct {
	HasDocument      bool     `json:"has_document"`
	SupportedFormats []string `json:"supported_formats"`
	DocumentName     string   `json:"document_name,omitempty"`
}

func rootHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, messageResponse{Message: RootMessage})
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) statusHandler(w http.ResponseWriter, _ *http.Request) {
	status := s.qa.Status()
	resp := statusResponse{
		HasDocument:      status.HasDocument,
		SupportedFormats: []string{},
		DocumentName:     status.DocumentName,
	}
	if s.upload != nil {
		resp.SupportedFormats = s.upload.SupportedFormats()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) askHandler(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	answer := s.qa.Answer(r.Context(), req.Question)
	writeJSON(w, http.StatusOK, askResponse{Answer: answer})
}

func (s *Server) uploadHandler(w http.ResponseWriter, r *http.Request) {
	if s.upload == nil {
		writeError(w, http.StatusNotImplemented, "file upload is not enabled")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "file is too large")
			return
		}
		writeError(w, http.StatusBadRequest, "a file is required in the 'file' form field")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("reading upload: %v", err))
		return
	}

	filename := filepath.Base(header.Filename)
	result, err := s.upload.IngestFile(r.Context(), content, filename)
	if err != nil {
		writeFailure(w, err)
		return
	}

	writeJSON(w, http.StatusOK, uploadResponse{
		Success:    true,
		Message:    result.Message,
		Filename:   result.Filename,
		TextLength: result.TextLength,
	})
}

// writeFailure maps caller mistakes to 400 and everything else to 500.
func writeFailure(w http.ResponseWriter, err error) {
	if domain.IsClientError(err) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	logger.Error("http: %v", err)
	writeError(w, http.StatusInternalServerError, fmt.Sprintf("Error processing file: %v", err))
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		logger.Error("http: marshal response: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data) //nolint:errcheck // header already committed
}

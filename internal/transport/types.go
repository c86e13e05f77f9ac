package transport

import (
	"fmt"
	"net/http"
)

// QueryRequest is the body of POST /api/v1/query
type QueryRequest struct {
	Text      string `json:"query"`
	SessionID string `json:"session_id"`
	Provider  string `json:"llm_provider"`
	Model     string `json:"llm_model"`
}

// QueryResponse is the backend's reply to a query
type QueryResponse struct {
	SessionID string `json:"session_id"`
	Query     string `json:"query"`
	Reply     string `json:"response"`
}

// UploadRequest describes a document upload within a session
type UploadRequest struct {
	SessionID         string
	EmbeddingProvider string
	Files             []File
}

// UploadResponse pairs each processed filename with the text extracted from it
type UploadResponse struct {
	ExtractedTexts []string `json:"extracted_texts"`
	Filenames      []string `json:"filenames"`
}

// HistoryEntry is one turn of a backend-side session history
type HistoryEntry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// HistoryResponse is the body of GET /api/v1/sessions/{id}/history
type HistoryResponse struct {
	SessionID string         `json:"session_id"`
	History   []HistoryEntry `json:"history"`
}

// HealthStatus is the backend root response
type HealthStatus struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Raw     string `json:"-"`
}

type createSessionResponse struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// Error is a failed backend call. StatusCode is zero when no response arrived.
type Error struct {
	Op         string
	StatusCode int
	Body       []byte
	Err        error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.StatusCode != 0 && e.Err == nil {
		return fmt.Sprintf("%s: backend returned %d %s", e.Op, e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ResponseReceived reports whether the backend answered at all
func (e *Error) ResponseReceived() bool {
	return e != nil && e.StatusCode != 0
}

// HTTPStatus returns the response status, or zero
func (e *Error) HTTPStatus() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

// ResponseBody returns the raw response body, if any
func (e *Error) ResponseBody() []byte {
	if e == nil {
		return nil
	}
	return e.Body
}

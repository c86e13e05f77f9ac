package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/iksnae/research-chat/internal/transport"
)

// FakeTransport is a scripted backend. Zero value answers every query with
// "ok" and hands out session ids remote-1, remote-2, ...
type FakeTransport struct {
	mu sync.Mutex

	CreateErr error
	QueryErr  error
	UploadErr error

	// QueryFunc, when set, answers queries instead of Reply/QueryErr
	QueryFunc func(ctx context.Context, req transport.QueryRequest) (transport.QueryResponse, error)
	Reply     string
	Upload    transport.UploadResponse

	creates int
	queries []transport.QueryRequest
	uploads []transport.UploadRequest
}

// CreateSession returns the next fake remote id
func (f *FakeTransport) CreateSession(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	if f.CreateErr != nil {
		return "", f.CreateErr
	}
	return fmt.Sprintf("remote-%d", f.creates), nil
}

// SubmitQuery records req and answers it
func (f *FakeTransport) SubmitQuery(ctx context.Context, req transport.QueryRequest) (transport.QueryResponse, error) {
	f.mu.Lock()
	f.queries = append(f.queries, req)
	fn, reply, err := f.QueryFunc, f.Reply, f.QueryErr
	f.mu.Unlock()

	if fn != nil {
		return fn(ctx, req)
	}
	if err != nil {
		return transport.QueryResponse{}, err
	}
	if reply == "" {
		reply = "ok"
	}
	return transport.QueryResponse{SessionID: req.SessionID, Query: req.Text, Reply: reply}, nil
}

// UploadFiles records req and returns the scripted response
func (f *FakeTransport) UploadFiles(ctx context.Context, req transport.UploadRequest) (transport.UploadResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads = append(f.uploads, req)
	if f.UploadErr != nil {
		return transport.UploadResponse{}, f.UploadErr
	}
	return f.Upload, nil
}

// CreateCalls returns how many sessions were requested
func (f *FakeTransport) CreateCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.creates
}

// Queries returns the recorded query requests
func (f *FakeTransport) Queries() []transport.QueryRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]transport.QueryRequest(nil), f.queries...)
}

// Uploads returns the recorded upload requests
func (f *FakeTransport) Uploads() []transport.UploadRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]transport.UploadRequest(nil), f.uploads...)
}

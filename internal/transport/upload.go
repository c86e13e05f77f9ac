package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// MaxUploadSize is the largest file accepted for upload
const MaxUploadSize = 10 * 1024 * 1024

// AllowedExtensions lists the document types the backend can extract text from
var AllowedExtensions = []string{".pdf", ".doc", ".docx", ".txt", ".png", ".jpg", ".jpeg"}

// File is a document to upload
type File struct {
	Name string
	Size int64
	Open func() (io.ReadCloser, error)
}

// FileFromPath describes a file on disk
func FileFromPath(path string) (File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return File{}, err
	}
	if info.IsDir() {
		return File{}, fmt.Errorf("%s is a directory", path)
	}
	return File{
		Name: filepath.Base(path),
		Size: info.Size(),
		Open: func() (io.ReadCloser, error) { return os.Open(path) },
	}, nil
}

// FileFromBytes wraps in-memory content
func FileFromBytes(name string, data []byte) File {
	return File{
		Name: name,
		Size: int64(len(data)),
		Open: func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(data)), nil },
	}
}

// ValidateUploads checks sizes and extensions before anything is sent
func ValidateUploads(files []File) error {
	for _, f := range files {
		if f.Size > MaxUploadSize {
			return fmt.Errorf("File %q is too large (max 10MB).", f.Name)
		}
		ext := strings.ToLower(filepath.Ext(f.Name))
		if !allowedExtension(ext) {
			return fmt.Errorf("File %q format not supported. Allowed: %s.", f.Name, strings.Join(AllowedExtensions, ", "))
		}
	}
	return nil
}

func allowedExtension(ext string) bool {
	for _, a := range AllowedExtensions {
		if ext == a {
			return true
		}
	}
	return false
}

// UploadFiles posts documents as multipart form data for text extraction
func (c *Client) UploadFiles(ctx context.Context, req UploadRequest) (UploadResponse, error) {
	if err := ValidateUploads(req.Files); err != nil {
		return UploadResponse{}, err
	}

	ctx, cancel := c.withTimeout(ctx, c.uploadTimeout)
	defer cancel()

	provider := req.EmbeddingProvider
	if provider == "" {
		provider = DefaultEmbeddingProvider
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if err := w.WriteField("session_id", req.SessionID); err != nil {
		return UploadResponse{}, fmt.Errorf("upload: encode form: %w", err)
	}
	if err := w.WriteField("embedding_provider", provider); err != nil {
		return UploadResponse{}, fmt.Errorf("upload: encode form: %w", err)
	}
	for _, f := range req.Files {
		if err := writeFilePart(w, f); err != nil {
			return UploadResponse{}, fmt.Errorf("upload: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return UploadResponse{}, fmt.Errorf("upload: encode form: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/documents/upload", &body)
	if err != nil {
		return UploadResponse{}, fmt.Errorf("upload: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", w.FormDataContentType())
	httpReq.Header.Set("Accept", "application/json")

	var resp UploadResponse
	if err := c.send(httpReq, "upload", &resp); err != nil {
		return UploadResponse{}, err
	}
	return resp, nil
}

func writeFilePart(w *multipart.Writer, f File) error {
	if f.Open == nil {
		return fmt.Errorf("file %q has no content", f.Name)
	}
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()

	part, err := w.CreateFormFile("files", f.Name)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, rc); err != nil {
		return fmt.Errorf("read %s: %w", f.Name, err)
	}
	return nil
}

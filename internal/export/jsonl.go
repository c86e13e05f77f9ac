package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/iksnae/research-chat/internal"
)

// JSONLExporter exports sessions in JSONL format (one message per line)
type JSONLExporter struct{}

// Export exports a session to JSONL format
func (e *JSONLExporter) Export(session *internal.Session, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	for _, msg := range session.Messages {
		obj := map[string]interface{}{
			"session_id": session.ID,
			"speaker":    msg.Speaker,
			"text":       msg.Text,
		}
		if !msg.Timestamp.IsZero() {
			obj["timestamp"] = msg.Timestamp.UTC().Format(time.RFC3339Nano)
		}
		if msg.Error {
			obj["error"] = true
		}

		if err := enc.Encode(obj); err != nil {
			return fmt.Errorf("failed to encode message: %w", err)
		}
	}

	return nil
}

// Extension returns the file extension for this format
func (e *JSONLExporter) Extension() string {
	return "jsonl"
}

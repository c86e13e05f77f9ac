package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/iksnae/research-chat/internal"
)

func TestJSONExporter_Export(t *testing.T) {
	basic := internal.CreateTestSession("test1")
	empty := internal.CreateTestSessionWithMessages("test2", []internal.Message{})
	pending := internal.CreateTestSession("test3")
	pending.Messages = append(pending.Messages, internal.PendingMessage())

	tests := []struct {
		name    string
		session *internal.Session
	}{
		{name: "basic session", session: &basic},
		{name: "empty session", session: &empty},
		{name: "pending flag not written", session: &pending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			exporter := &JSONExporter{}

			if err := exporter.Export(tt.session, &buf); err != nil {
				t.Fatalf("JSONExporter.Export() error = %v", err)
			}

			output := buf.String()
			var session internal.Session
			if err := json.Unmarshal([]byte(output), &session); err != nil {
				t.Fatalf("Output is not valid JSON: %v\nOutput: %s", err, output)
			}

			if session.ID != tt.session.ID {
				t.Errorf("decoded ID = %q, want %q", session.ID, tt.session.ID)
			}
			if len(session.Messages) != len(tt.session.Messages) {
				t.Errorf("decoded %d messages, want %d", len(session.Messages), len(tt.session.Messages))
			}
			if !session.CreatedAt.Equal(tt.session.CreatedAt) {
				t.Errorf("decoded CreatedAt = %v, want %v", session.CreatedAt, tt.session.CreatedAt)
			}
			if strings.Contains(output, "Pending") || strings.Contains(output, "pending") {
				t.Errorf("pending flag should not be exported: %s", output)
			}
			if !strings.Contains(output, "  ") {
				t.Errorf("Output should be pretty-printed with indentation")
			}
		})
	}
}

func TestJSONExporter_Extension(t *testing.T) {
	exporter := &JSONExporter{}
	if got := exporter.Extension(); got != "json" {
		t.Errorf("JSONExporter.Extension() = %v, want json", got)
	}
}

package export

import (
	"bufio"
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/iksnae/research-chat/internal"
)

// failedExchange is a transcript whose last turn is an error-flagged reply
func failedExchange() internal.Session {
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	return internal.CreateTestSessionWithMessages("remote-7", []internal.Message{
		internal.HumanMessage("Summarize the uploaded paper", at),
		internal.ErrorMessage("Too many requests. Please wait a moment before trying again.", at.Add(time.Second)),
	})
}

func TestNewExporter_ExportsSession(t *testing.T) {
	tests := []struct {
		format  string
		wantExt string
		check   func(t *testing.T, out []byte)
	}{
		{
			format:  "jsonl",
			wantExt: "jsonl",
			check: func(t *testing.T, out []byte) {
				var lines []map[string]interface{}
				sc := bufio.NewScanner(bytes.NewReader(out))
				for sc.Scan() {
					var line map[string]interface{}
					if err := json.Unmarshal(sc.Bytes(), &line); err != nil {
						t.Fatalf("invalid JSONL line %q: %v", sc.Text(), err)
					}
					lines = append(lines, line)
				}
				if len(lines) != 2 {
					t.Fatalf("got %d lines, want one per message", len(lines))
				}
				if _, ok := lines[0]["error"]; ok {
					t.Error("the question should not carry an error flag")
				}
				if lines[1]["error"] != true || lines[1]["session_id"] != "remote-7" {
					t.Errorf("unexpected reply line: %v", lines[1])
				}
			},
		},
		{
			format:  "json",
			wantExt: "json",
			check: func(t *testing.T, out []byte) {
				var s internal.Session
				if err := json.Unmarshal(out, &s); err != nil {
					t.Fatalf("invalid JSON: %v", err)
				}
				if s.ID != "remote-7" || len(s.Messages) != 2 || !s.Messages[1].Error {
					t.Errorf("round trip lost the transcript: %+v", s)
				}
			},
		},
		{
			format:  "yaml",
			wantExt: "yaml",
			check: func(t *testing.T, out []byte) {
				var s internal.Session
				if err := yaml.Unmarshal(out, &s); err != nil {
					t.Fatalf("invalid YAML: %v", err)
				}
				if len(s.Messages) != 2 || s.Messages[0].Error || !s.Messages[1].Error {
					t.Errorf("error flags not preserved: %+v", s.Messages)
				}
			},
		},
		{
			format:  "markdown",
			wantExt: "md",
			check: func(t *testing.T, out []byte) {
				text := string(out)
				if !strings.Contains(text, "> ⚠ Too many requests.") {
					t.Errorf("error reply should be quoted with a warning marker:\n%s", text)
				}
				if strings.Contains(text, "> ⚠ Summarize") {
					t.Errorf("question should not be marked as an error:\n%s", text)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			exporter, err := NewExporter(tt.format)
			if err != nil {
				t.Fatalf("NewExporter(%q) error = %v", tt.format, err)
			}
			if got := exporter.Extension(); got != tt.wantExt {
				t.Errorf("Extension() = %q, want %q", got, tt.wantExt)
			}

			session := failedExchange()
			var buf bytes.Buffer
			if err := exporter.Export(&session, &buf); err != nil {
				t.Fatalf("Export() error = %v", err)
			}
			tt.check(t, buf.Bytes())
		})
	}
}

func TestNewExporter_Unsupported(t *testing.T) {
	for _, format := range []string{"", "xml", "JSONL"} {
		exporter, err := NewExporter(format)
		if err == nil {
			t.Errorf("NewExporter(%q) = %T, want an error", format, exporter)
			continue
		}
		if !strings.Contains(err.Error(), "supported: jsonl, md, yaml, json") {
			t.Errorf("error should list the supported formats, got %v", err)
		}
	}
}

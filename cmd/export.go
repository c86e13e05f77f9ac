package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/iksnae/research-chat/internal"
	"github.com/iksnae/research-chat/internal/export"
	"github.com/spf13/cobra"
)

var (
	format    string
	outputDir string
	sessionID string
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export sessions to files",
	Long: `Export chat sessions to various formats (jsonl, md, yaml, json).

You can export all sessions or a specific session by ID.
Use 'research-chat sessions list' to see available session IDs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Create exporter first so a bad format fails before touching storage
		exporter, err := export.NewExporter(format)
		if err != nil {
			return err
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		sessions := a.store.Sessions()
		if sessionID != "" {
			s, err := a.store.Resolve(sessionID)
			if err != nil {
				return fmt.Errorf("%w (use 'research-chat sessions list' to see available sessions)", err)
			}
			sessions = []internal.Session{s}
		}
		if len(sessions) == 0 {
			internal.PrintInfo("No sessions to export")
			return nil
		}

		exported := 0
		steps := []internal.ProgressStep{
			{
				Message: "Preparing " + outputDir,
				Fn: func() error {
					if err := os.MkdirAll(outputDir, 0755); err != nil {
						return fmt.Errorf("failed to create output directory: %w", err)
					}
					return nil
				},
			},
			{
				Message: fmt.Sprintf("Exporting %d session(s) as %s", len(sessions), format),
				Fn: func() error {
					for i := range sessions {
						session := &sessions[i]
						path := filepath.Join(outputDir, fmt.Sprintf("session_%s.%s", session.ID, exporter.Extension()))
						if err := exportTo(exporter, session, path); err != nil {
							internal.LogError("%v", err)
							continue
						}
						exported++
					}
					return nil
				},
			},
		}
		if err := internal.ShowProgressWithSteps(context.Background(), steps); err != nil {
			return err
		}

		if exported < len(sessions) {
			return fmt.Errorf("exported %d of %d session(s) to %s", exported, len(sessions), outputDir)
		}
		internal.PrintSuccess(fmt.Sprintf("Export complete: %d session(s) exported to %s", exported, outputDir))
		return nil
	},
}

func exportTo(exporter export.Exporter, session *internal.Session, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return &internal.ExportError{Format: format, Path: path, Err: err}
	}
	if err := exporter.Export(session, file); err != nil {
		_ = file.Close()
		return &internal.ExportError{Format: format, Path: path, Err: err}
	}
	if err := file.Close(); err != nil {
		internal.LogWarn("Failed to close file %s: %v", path, err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&format, "format", "f", "jsonl", "Export format (jsonl, md, yaml, json)")
	exportCmd.Flags().StringVarP(&outputDir, "out", "o", "./exports", "Output directory")
	exportCmd.Flags().StringVar(&sessionID, "session-id", "", "Export a specific session by ID")
}

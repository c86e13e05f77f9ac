package cmd

import (
	"context"
	"fmt"

	"github.com/iksnae/research-chat/internal"
	"github.com/iksnae/research-chat/internal/transport"
	"github.com/spf13/cobra"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <file...>",
	Short: "Upload documents to the current session",
	Long: `Upload documents for text extraction within the current session.

Supported: .pdf .doc .docx .txt .png .jpg .jpeg, 10MB per file.
A current session is required; ask a question or run 'sessions new' first.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files := make([]transport.File, 0, len(args))
		for _, path := range args {
			f, err := transport.FileFromPath(path)
			if err != nil {
				return fmt.Errorf("cannot read %s: %w", path, err)
			}
			files = append(files, f)
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		orch := a.orchestrator(internal.TerminalNotifier)
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		before := 0
		if cur, ok := a.store.Current(); ok {
			before = len(cur.Messages)
		}
		submitErr := internal.ShowProgress(ctx, fmt.Sprintf("Uploading %d file(s)", len(files)), func() error {
			return orch.SubmitUpload(ctx, files)
		})

		if cur, ok := a.store.Current(); ok && len(cur.Messages) > before {
			r := internal.NewRenderer(80)
			for _, m := range cur.Messages[before:] {
				if !m.Error {
					fmt.Fprintln(cmd.OutOrStdout(), r.Markdown(m.Text))
				}
			}
		}
		return submitErr
	},
}

func init() {
	rootCmd.AddCommand(uploadCmd)
}

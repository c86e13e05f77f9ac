package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/iksnae/research-chat/internal"
	"github.com/iksnae/research-chat/internal/tui"
	"github.com/spf13/cobra"
)

var chatPlain bool

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat",
	Long: `Open an interactive chat on the current session. Type a question and
press enter; /help lists commands for switching sessions, uploading
documents and choosing a model.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		// Log lines would corrupt the full-screen view.
		if !verbose {
			internal.SetLogLevel(internal.LogLevelError)
		}

		toasts := tui.NewToastChannel(16)
		orch := a.orchestrator(toasts)

		opts := []tui.Option{tui.WithContext(cmd.Context())}
		if chatPlain {
			opts = append(opts, tui.WithPlainRendering())
		}
		model := tui.New(orch, a.store, toasts, opts...)

		p := tea.NewProgram(model, tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("chat ended with an error: %w", err)
		}
		return nil
	},
}

func init() {
	chatCmd.Flags().BoolVar(&chatPlain, "plain", false, "Do not render markdown")
	rootCmd.AddCommand(chatCmd)
}

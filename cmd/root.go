package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/iksnae/research-chat/internal"
	"github.com/iksnae/research-chat/internal/classify"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	dataDir    string
	backendURL string
	configPath string
	version    string = "dev"
	commit     string = "unknown"
	date       string = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "research-chat",
	Short: "Chat with a document research assistant from the terminal",
	Long: `A terminal client for a retrieval-augmented research assistant.

Ask questions, upload documents for extraction and keep a short history of
chat sessions on disk. Failures from the backend are translated into short,
actionable messages.

Features:
  • Up to 10 local sessions, newest first, restored on every start
  • Document upload (.pdf .doc .docx .txt .png .jpg .jpeg, 10MB max)
  • Selectable LLM provider and model
  • Interactive chat mode with markdown rendering
  • Transcript export (JSONL, Markdown, YAML, JSON)

Quick Start:
  research-chat ask "What does the paper conclude?"   # Ask in the current session
  research-chat upload paper.pdf                      # Add a document
  research-chat chat                                  # Interactive mode
  research-chat sessions list                         # List sessions`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		internal.SetVerbose(verbose)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprint(os.Stderr, errorLine(err))
		os.Exit(1)
	}
}

// errorLine is what Execute prints for a failed command. Classified failures
// have already been shown as a toast.
func errorLine(err error) string {
	var ce *classify.Error
	if errors.As(err, &ce) {
		return ""
	}
	return fmt.Sprintf("Error: %v\n", err)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Data directory (default ~/.research-chat, or $"+internal.EnvDataDir+")")
	rootCmd.PersistentFlags().StringVar(&backendURL, "backend", "", "Backend base URL (overrides config and $"+internal.EnvBackendURL+")")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default <data-dir>/config.yaml)")

	// Set version template to ensure --version flag works
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}

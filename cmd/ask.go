package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/iksnae/research-chat/internal"
	"github.com/spf13/cobra"
)

var (
	askProvider string
	askModel    string
	askNew      bool
)

var askCmd = &cobra.Command{
	Use:   "ask <question...>",
	Short: "Ask the research assistant a question",
	Long: `Send a question within the current session and print the reply.

When no session is current a new one is created on the backend first.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if askNew {
			a.store.SetCurrent("")
		}

		orch := a.orchestrator(internal.TerminalNotifier)
		if askProvider != "" {
			if err := orch.SelectProvider(askProvider); err != nil {
				return err
			}
		}
		if askModel != "" {
			if err := orch.SelectModel(askModel); err != nil {
				return err
			}
		}

		question := strings.Join(args, " ")
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		submitErr := internal.ShowProgress(ctx, "Waiting for "+orch.Selection().String(), func() error {
			return orch.SubmitQuery(ctx, question)
		})

		if submitErr != nil {
			// already shown as a toast and recorded in the session
			return submitErr
		}
		if cur, ok := a.store.Current(); ok && len(cur.Messages) > 0 {
			last := cur.Messages[len(cur.Messages)-1]
			fmt.Fprintln(cmd.OutOrStdout(), internal.NewRenderer(80).Markdown(last.Text))
		}
		return nil
	},
}

func init() {
	askCmd.Flags().StringVar(&askProvider, "provider", "", "LLM provider for this question")
	askCmd.Flags().StringVar(&askModel, "model", "", "Model for this question")
	askCmd.Flags().BoolVar(&askNew, "new", false, "Start a new session instead of using the current one")
	rootCmd.AddCommand(askCmd)
}

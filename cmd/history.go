package cmd

import (
	"context"
	"fmt"

	"github.com/iksnae/research-chat/internal"
	"github.com/iksnae/research-chat/internal/classify"
	"github.com/iksnae/research-chat/internal/notify"
	"github.com/iksnae/research-chat/internal/transport"
	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history [session-id]",
	Short: "Show the conversation history the backend keeps for a session",
	Long: `Fetch the backend-side history of a session. Without an id the current
session is used. The id may be any id the backend knows, local or not.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		id := a.store.CurrentID()
		if len(args) == 1 {
			id = args[0]
			if s, err := a.store.Resolve(args[0]); err == nil {
				id = s.ID
			}
		}
		if id == "" {
			return fmt.Errorf("no current session (pass a session id)")
		}

		var resp transport.HistoryResponse
		ctx := context.Background()
		err = internal.ShowProgress(ctx, "Fetching history", func() error {
			var fetchErr error
			resp, fetchErr = a.client.History(ctx, id, historyLimit)
			return fetchErr
		})
		if err != nil {
			ce := classify.Classify(err)
			internal.PrintToast(notify.FromClassified(ce))
			return ce
		}

		out := cmd.OutOrStdout()
		if len(resp.History) == 0 {
			fmt.Fprintln(out, headerStyle.Render("📋 No history for "+id))
			return nil
		}
		fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("📋 %d turn(s) for %s", len(resp.History), id)))
		fmt.Fprintln(out)
		for _, h := range resp.History {
			fmt.Fprintf(out, "%s: %s\n", titleStyle.Render(h.Role), h.Content)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 0, "Maximum number of turns to fetch")
	rootCmd.AddCommand(historyCmd)
}

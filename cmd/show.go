package cmd

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/research-chat/internal"
	"github.com/spf13/cobra"
)

var (
	limit     int
	since     string
	showPlain bool
)

var moreStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("240")).
	Italic(true)

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show [session-id]",
	Short: "Show the transcript of a session",
	Long: `Display the messages of a chat session. Without an id the current
session is shown. Assistant replies are rendered as markdown.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		var session internal.Session
		if len(args) == 1 {
			session, err = a.store.Resolve(args[0])
			if err != nil {
				return fmt.Errorf("%w (use 'research-chat sessions list' to see available sessions)", err)
			}
		} else {
			var ok bool
			session, ok = a.store.Current()
			if !ok {
				return fmt.Errorf("no current session (pass a session id or run 'research-chat sessions use <id>')")
			}
		}

		messages := session.Messages
		if since != "" {
			sinceTime, err := time.Parse(time.RFC3339, since)
			if err != nil {
				return fmt.Errorf("invalid --since timestamp format (expected RFC3339): %w", err)
			}
			filtered := make([]internal.Message, 0, len(messages))
			for _, m := range messages {
				if !m.Timestamp.Before(sinceTime) {
					filtered = append(filtered, m)
				}
			}
			messages = filtered
		}

		total := len(messages)
		if limit > 0 && limit < total {
			messages = messages[:limit]
		}

		r := internal.NewPlainRenderer()
		if !showPlain {
			r = internal.NewRenderer(80)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, internal.SessionHeader(session))
		fmt.Fprintln(out)
		shown := session
		shown.Messages = messages
		fmt.Fprintln(out, r.Transcript(shown))

		if limit > 0 && limit < total {
			fmt.Fprintln(out)
			fmt.Fprintln(out, moreStyle.Render(fmt.Sprintf("... (%d more message(s))", total-limit)))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().IntVarP(&limit, "limit", "n", 0, "Limit number of messages to show")
	showCmd.Flags().StringVar(&since, "since", "", "Show messages since timestamp (RFC3339)")
	showCmd.Flags().BoolVar(&showPlain, "plain", false, "Do not render markdown")
}

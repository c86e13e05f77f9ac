package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/research-chat/internal"
	"github.com/spf13/cobra"
)

var (
	// Styles
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	dateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	currentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)
)

var sessionsCmd = &cobra.Command{
	Use:     "sessions",
	Aliases: []string{"session"},
	Short:   "Manage local chat sessions",
	Long: `List, create, switch, rename and delete the chat sessions kept on disk.

At most 10 sessions are kept; creating an eleventh discards the oldest.`,
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sessions, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		displaySessions(cmd.OutOrStdout(), a.store.Sessions(), a.store.CurrentID(), time.Now())
		return nil
	},
}

var sessionsNewCmd = &cobra.Command{
	Use:   "new [name]",
	Short: "Create a session and make it current",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		s := a.store.CreateSession(strings.Join(args, " "), internal.MakeCurrent())
		fmt.Fprintf(cmd.OutOrStdout(), "Created session %q (%s)\n", s.DisplayName, s.ID)
		return nil
	},
}

var sessionsUseCmd = &cobra.Command{
	Use:   "use <session-id>",
	Short: "Make a session current (id or unique id prefix)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		s, err := a.store.Resolve(args[0])
		if err != nil {
			return err
		}
		a.store.SetCurrent(s.ID)
		fmt.Fprintf(cmd.OutOrStdout(), "Current session: %q (%s)\n", s.DisplayName, s.ID)
		return nil
	},
}

var sessionsDeleteCmd = &cobra.Command{
	Use:     "delete <session-id>",
	Aliases: []string{"rm"},
	Short:   "Delete a session",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		s, err := a.store.Resolve(args[0])
		if err != nil {
			return err
		}
		a.store.DeleteSession(s.ID)
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted session %q (%s)\n", s.DisplayName, s.ID)
		return nil
	},
}

var sessionsRenameCmd = &cobra.Command{
	Use:   "rename <session-id> <name>",
	Short: "Rename a session",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		s, err := a.store.Resolve(args[0])
		if err != nil {
			return err
		}
		name := strings.Join(args[1:], " ")
		if !a.store.RenameSession(s.ID, name) {
			return fmt.Errorf("session name must not be empty")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Renamed session %s to %q\n", s.ID, strings.TrimSpace(name))
		return nil
	},
}

var sessionsClearCurrentCmd = &cobra.Command{
	Use:   "clear-current",
	Short: "Unset the current session so the next question starts a new one",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		a.store.SetCurrent("")
		fmt.Fprintln(cmd.OutOrStdout(), "No current session")
		return nil
	},
}

func displaySessions(out io.Writer, sessions []internal.Session, currentID string, now time.Time) {
	if len(sessions) == 0 {
		fmt.Fprintln(out, headerStyle.Render("📋 No sessions found"))
		return
	}

	fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("📋 %d session(s)", len(sessions))))
	fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(w, " \t"+titleStyle.Render("ID")+"\t"+titleStyle.Render("Name")+"\t"+titleStyle.Render("Messages")+"\t"+titleStyle.Render("Created")+"\t")

	for _, s := range sessions {
		marker := " "
		if s.ID == currentID {
			marker = currentStyle.Render("*")
		}

		name := s.DisplayName
		if name == "" {
			name = "Untitled"
		}
		if len([]rune(name)) > 50 {
			name = string([]rune(name)[:47]) + "..."
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t\n",
			marker,
			idStyle.Render(s.ID),
			name,
			countStyle.Render(strconv.Itoa(len(s.Messages))),
			dateStyle.Render(formatCreated(s.CreatedAt, now)),
		)
	}
	_ = w.Flush()

	if currentID == "" {
		fmt.Fprintln(out)
		fmt.Fprintln(out, idStyle.Render("💡 Tip: no session is current; `research-chat ask` will start a new one"))
	}
}

// formatCreated shortens recent dates the way the session table shows them
func formatCreated(t, now time.Time) string {
	if t.IsZero() {
		return "—"
	}
	t = t.Local()
	diff := now.Sub(t)
	switch {
	case diff < 24*time.Hour:
		return t.Format("Today 15:04")
	case diff < 7*24*time.Hour:
		return t.Format("Mon 15:04")
	case diff < 365*24*time.Hour:
		return t.Format("Jan 02 15:04")
	default:
		return t.Format("2006-01-02")
	}
}

func init() {
	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsNewCmd)
	sessionsCmd.AddCommand(sessionsUseCmd)
	sessionsCmd.AddCommand(sessionsDeleteCmd)
	sessionsCmd.AddCommand(sessionsRenameCmd)
	sessionsCmd.AddCommand(sessionsClearCurrentCmd)
	rootCmd.AddCommand(sessionsCmd)
}

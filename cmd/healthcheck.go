package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/research-chat/internal"
	"github.com/iksnae/research-chat/internal/classify"
	"github.com/spf13/cobra"
)

var healthcheckTimeout time.Duration

var (
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Underline(true)
)

// healthcheckCmd represents the healthcheck command
var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Check configuration, local storage and backend reachability",
	Long: `Check the health of research-chat by verifying:
  • Configuration (file, environment and flags)
  • Local session storage
  • Backend reachability (GET /)

Use --verbose for paths and raw responses.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, sectionStyle.Render("🔍 Research Chat Health Check"))
		fmt.Fprintln(out)

		// Step 1: Configuration
		fmt.Fprintln(out, infoStyle.Render("Step 1: Loading configuration..."))
		paths, cfg, err := loadConfig()
		if err != nil {
			fmt.Fprintln(out, errorStyle.Render("❌ Configuration is invalid:"), err)
			return fmt.Errorf("health check failed: %w", err)
		}
		fmt.Fprintln(out, successStyle.Render("✅ Configuration loaded"))
		if verbose {
			fmt.Fprintf(out, "   Config file: %s (present: %v)\n", resolvedConfigPath(paths), paths.ConfigExists() || configPath != "")
			fmt.Fprintf(out, "   Backend: %s\n", cfg.BackendURL)
			fmt.Fprintf(out, "   Model: %s\n", cfg.Selection())
		}
		fmt.Fprintln(out)

		// Step 2: Local storage
		fmt.Fprintln(out, infoStyle.Render("Step 2: Opening session storage..."))
		sessionCount, err := checkStorage(out, paths)
		if err != nil {
			fmt.Fprintln(out, errorStyle.Render("❌ Session storage unavailable:"), err)
			return fmt.Errorf("health check failed: %w", err)
		}
		fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✅ Session storage ready (%d session(s))", sessionCount)))
		fmt.Fprintln(out)

		// Step 3: Backend
		fmt.Fprintln(out, infoStyle.Render("Step 3: Contacting backend..."))
		ctx, cancel := context.WithTimeout(context.Background(), healthcheckTimeout)
		defer cancel()
		status, err := cfg.NewClient().Health(ctx)
		if err != nil {
			ce := classify.Classify(err)
			fmt.Fprintln(out, errorStyle.Render("❌ "+ce.Title+":"), ce.Message)
			if verbose {
				fmt.Fprintf(out, "   Error: %v\n", err)
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, sectionStyle.Render("📊 Summary"))
			fmt.Fprintln(out, errorStyle.Render("❌ Health check failed"))
			return fmt.Errorf("health check failed: backend unreachable at %s", cfg.BackendURL)
		}
		msg := status.Message
		if msg == "" {
			msg = status.Status
		}
		fmt.Fprintln(out, successStyle.Render("✅ Backend reachable"), msg)
		if verbose && status.Raw != "" {
			fmt.Fprintf(out, "   Response: %s\n", status.Raw)
		}
		fmt.Fprintln(out)

		fmt.Fprintln(out, sectionStyle.Render("📊 Summary"))
		fmt.Fprintln(out)
		fmt.Fprintln(out, successStyle.Render("✅ Health check passed!"))
		return nil
	},
}

// checkStorage opens the durable slot and reports how many sessions load
func checkStorage(out io.Writer, paths internal.DataPaths) (int, error) {
	if !paths.DatabaseExists() {
		fmt.Fprintln(out, warningStyle.Render("⚠️  No session database yet, it will be created"))
	}
	if err := paths.EnsureBaseDir(); err != nil {
		return 0, err
	}
	dbPath := paths.DatabasePath()
	db, err := internal.OpenDatabase(dbPath)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	slot := internal.NewSQLiteSlot(db, dbPath)
	if verbose {
		fmt.Fprintf(out, "   Database: %s\n", dbPath)
		keys, err := slot.Keys()
		if err != nil {
			return 0, err
		}
		fmt.Fprintf(out, "   Keys: %s\n", strings.Join(keys, ", "))
	}
	return len(internal.NewPersistence(slot).Load()), nil
}

func init() {
	rootCmd.AddCommand(healthcheckCmd)
	healthcheckCmd.Flags().DurationVar(&healthcheckTimeout, "timeout", 10*time.Second, "How long to wait for the backend")
}

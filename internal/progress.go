package internal

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/iksnae/research-chat/internal/notify"
)

var (
	progressStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)
)

// ProgressStep represents a single step in a multi-step process
type ProgressStep struct {
	Message string
	Fn      func() error
}

// ShowProgress runs fn behind a spinner when stderr is a terminal
func ShowProgress(ctx context.Context, message string, fn func() error) error {
	if !isTerminal(os.Stderr) {
		LogInfo(message)
		return fn()
	}
	return showProgressSimple(ctx, message, fn)
}

// ShowProgressWithSteps shows progress for multiple steps
func ShowProgressWithSteps(ctx context.Context, steps []ProgressStep) error {
	if !isTerminal(os.Stderr) {
		// Not a TTY, just run steps sequentially
		for _, step := range steps {
			LogInfo(step.Message)
			if err := step.Fn(); err != nil {
				return fmt.Errorf("%s: %w", step.Message, err)
			}
		}
		return nil
	}

	return showProgressWithStepsSimple(ctx, steps)
}

// showProgressSimple uses a simple text-based spinner
func showProgressSimple(ctx context.Context, message string, fn func() error) error {
	spinnerChars := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	done := make(chan error, 1)
	stop := make(chan struct{})
	spinnerDone := make(chan struct{})

	go func() {
		defer close(spinnerDone)
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		i := 0
		for {
			select {
			case <-ctx.Done():
				return
			case <-stop:
				return
			case <-ticker.C:
				char := spinnerChars[i%len(spinnerChars)]
				fmt.Fprintf(os.Stderr, "\r%s %s", progressStyle.Render(char), message)
				i++
			}
		}
	}()

	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		close(stop)
		<-spinnerDone
		if err != nil {
			fmt.Fprintf(os.Stderr, "\r%s %s\n", errorStyle.Render("✗"), message)
			return err
		}
		fmt.Fprintf(os.Stderr, "\r%s %s\n", successStyle.Render("✓"), message)
		return nil
	case <-ctx.Done():
		<-spinnerDone
		return ctx.Err()
	}
}

// showProgressWithStepsSimple uses simple output for multi-step progress
func showProgressWithStepsSimple(ctx context.Context, steps []ProgressStep) error {
	for i, step := range steps {
		msg := fmt.Sprintf("[%d/%d] %s", i+1, len(steps), step.Message)
		if err := showProgressSimple(ctx, msg, step.Fn); err != nil {
			return err
		}
	}
	return nil
}

// isTerminal checks if the writer is a terminal
func isTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return false
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	if isTerminal(os.Stdout) {
		fmt.Printf("%s %s\n", successStyle.Render("✓"), message)
	} else {
		fmt.Println(message)
	}
}

// PrintError prints an error message
func PrintError(message string) {
	if isTerminal(os.Stderr) {
		fmt.Fprintf(os.Stderr, "%s %s\n", errorStyle.Render("✗"), message)
	} else {
		fmt.Fprintf(os.Stderr, "%s\n", message)
	}
}

// PrintInfo prints an info message
func PrintInfo(message string) {
	if isTerminal(os.Stdout) {
		fmt.Printf("%s %s\n", progressStyle.Render("ℹ"), message)
	} else {
		fmt.Println(message)
	}
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	if isTerminal(os.Stderr) {
		fmt.Fprintf(os.Stderr, "%s %s\n", warningStyle.Render("⚠"), message)
	} else {
		fmt.Fprintf(os.Stderr, "WARNING: %s\n", message)
	}
}

// PrintToast shows a toast with the helper matching its level
func PrintToast(t notify.Toast) {
	message := t.Message
	if t.Title != "" {
		message = t.Title + ": " + t.Message
	}
	switch t.Level {
	case notify.LevelSuccess:
		PrintSuccess(message)
	case notify.LevelError:
		PrintError(message)
	case notify.LevelWarning:
		PrintWarning(message)
	default:
		PrintInfo(message)
	}
}

// TerminalNotifier prints toasts to the terminal
var TerminalNotifier notify.Notifier = notify.Func(PrintToast)

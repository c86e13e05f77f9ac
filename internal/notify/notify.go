// Package notify carries transient user notifications (toasts) from the
// orchestrator to whatever front end is showing them.
package notify

import (
	"sync"

	"github.com/iksnae/research-chat/internal/classify"
)

// Level is the severity a toast is shown with
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelWarning Level = "warning"
	LevelInfo    Level = "info"
)

// Toast is a short-lived notification
type Toast struct {
	Level   Level
	Title   string
	Message string
}

// Notifier displays toasts
type Notifier interface {
	Notify(t Toast)
}

// Func adapts a function to Notifier
type Func func(t Toast)

// Notify calls f(t)
func (f Func) Notify(t Toast) { f(t) }

// Discard drops every toast
var Discard Notifier = Func(func(Toast) {})

func Success(title, message string) Toast { return Toast{LevelSuccess, title, message} }
func Error(title, message string) Toast   { return Toast{LevelError, title, message} }
func Warning(title, message string) Toast { return Toast{LevelWarning, title, message} }
func Info(title, message string) Toast    { return Toast{LevelInfo, title, message} }

// FromClassified builds the toast for a classified failure
func FromClassified(e *classify.Error) Toast {
	level := LevelError
	if e.Severity == classify.SeverityWarning {
		level = LevelWarning
	}
	return Toast{Level: level, Title: e.Title, Message: e.Message}
}

// Recorder keeps every toast it receives. Safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	toasts []Toast
}

// Notify records t
func (r *Recorder) Notify(t Toast) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.toasts = append(r.toasts, t)
}

// Toasts returns the recorded toasts in arrival order
func (r *Recorder) Toasts() []Toast {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Toast, len(r.toasts))
	copy(out, r.toasts)
	return out
}

// Last returns the most recent toast
func (r *Recorder) Last() (Toast, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.toasts) == 0 {
		return Toast{}, false
	}
	return r.toasts[len(r.toasts)-1], true
}

// Reset forgets all recorded toasts
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.toasts = nil
}

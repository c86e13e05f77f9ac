package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/iksnae/research-chat/internal"
	"github.com/iksnae/research-chat/internal/classify"
	"github.com/iksnae/research-chat/internal/notify"
	"github.com/iksnae/research-chat/internal/transport"
)

const helpText = `/new [name]        start a new session
/use <id>          switch to a session (id or unique prefix)
/upload <path>...  upload documents to the current session
/provider <id>     choose the LLM provider
/model <name>      choose the model of the current provider
/quit              leave`

// handleInput dispatches a line typed by the user
func (m *Model) handleInput(input string) tea.Cmd {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil
	}
	if !strings.HasPrefix(input, "/") {
		if m.busy {
			m.setStatus(notify.Warning("Busy", "Wait for the current request to finish."))
			return nil
		}
		return m.submit(input)
	}

	fields := strings.Fields(input)
	cmd, args := fields[0], fields[1:]
	switch cmd {
	case "/quit", "/exit":
		m.quitting = true
		return tea.Quit

	case "/help":
		m.setStatus(notify.Info("Commands", helpText))

	case "/new":
		s := m.store.CreateSession(strings.Join(args, " "), internal.MakeCurrent())
		m.setStatus(notify.Success("New Session", fmt.Sprintf("Session %q created.", s.DisplayName)))

	case "/use":
		if len(args) != 1 {
			m.setStatus(notify.Warning("Usage", "/use <id>"))
			break
		}
		s, err := m.store.Resolve(args[0])
		if err != nil {
			m.setStatus(notify.Error("Switch Failed", err.Error()))
			break
		}
		m.store.SetCurrent(s.ID)
		m.setStatus(notify.Info("Session", fmt.Sprintf("Switched to %q.", s.DisplayName)))

	case "/provider":
		if len(args) != 1 {
			m.setStatus(notify.Info("Provider", m.orch.Selection().String()))
			break
		}
		if err := m.orch.SelectProvider(args[0]); err != nil {
			m.setStatus(notify.Error("Provider", err.Error()))
			break
		}
		m.setStatus(notify.Info("Provider", m.orch.Selection().String()))

	case "/model":
		if len(args) != 1 {
			m.setStatus(notify.Info("Model", m.orch.Selection().String()))
			break
		}
		if err := m.orch.SelectModel(args[0]); err != nil {
			m.setStatus(notify.Error("Model", err.Error()))
			break
		}
		m.setStatus(notify.Info("Model", m.orch.Selection().String()))

	case "/upload":
		return m.upload(args)

	default:
		m.setStatus(notify.Warning("Unknown Command", fmt.Sprintf("%s is not a command. Type /help.", cmd)))
	}

	m.refresh()
	return nil
}

// upload opens the named files and submits them in the background
func (m *Model) upload(paths []string) tea.Cmd {
	if len(paths) == 0 {
		m.setStatus(notify.Warning("Usage", "/upload <path>..."))
		return nil
	}
	if m.busy {
		m.setStatus(notify.Warning("Busy", "Wait for the current request to finish."))
		return nil
	}
	files := make([]transport.File, 0, len(paths))
	for _, p := range paths {
		f, err := transport.FileFromPath(p)
		if err != nil {
			m.setStatus(notify.FromClassified(classify.ClassifyUpload(err)))
			return nil
		}
		files = append(files, f)
	}

	m.busy = true
	m.hasStatus = false
	orch, ctx := m.orch, m.ctx
	run := func() tea.Msg {
		return submittedMsg{kind: internal.KindUpload, err: orch.SubmitUpload(ctx, files)}
	}
	return tea.Batch(run, m.spinner.Tick)
}

func (m *Model) setStatus(t notify.Toast) {
	m.status = t
	m.hasStatus = true
}

// Package tui provides the interactive chat interface.
//   - model.go: types, Init and the Update loop
//   - commands.go: /command handling
//   - view.go: rendering
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/iksnae/research-chat/internal"
	"github.com/iksnae/research-chat/internal/notify"
)

// ToastChannel is a notifier that hands toasts to the Update loop. Toasts
// that arrive while the buffer is full are dropped.
type ToastChannel chan notify.Toast

// NewToastChannel creates a toast channel with the given buffer
func NewToastChannel(size int) ToastChannel {
	return make(ToastChannel, size)
}

// Notify implements notify.Notifier
func (c ToastChannel) Notify(t notify.Toast) {
	select {
	case c <- t:
	default:
		internal.LogDebug("Dropped toast %q", t.Title)
	}
}

// Messages delivered to Update
type (
	toastMsg     notify.Toast
	submittedMsg struct {
		kind internal.SubmissionKind
		err  error
	}
)

// Model is the bubbletea model of the chat screen
type Model struct {
	textinput textinput.Model
	viewport  viewport.Model
	spinner   spinner.Model
	renderer  *internal.Renderer
	plain     bool

	orch   *internal.Orchestrator
	store  *internal.Store
	toasts ToastChannel
	ctx    context.Context

	status    notify.Toast
	hasStatus bool
	busy      bool
	width     int
	height    int
	ready     bool
	quitting  bool
}

// Option configures a Model
type Option func(*Model)

// WithPlainRendering disables markdown rendering of replies
func WithPlainRendering() Option {
	return func(m *Model) {
		m.plain = true
		m.renderer = internal.NewPlainRenderer()
	}
}

// WithContext sets the context submissions run under
func WithContext(ctx context.Context) Option {
	return func(m *Model) { m.ctx = ctx }
}

// New creates the chat model. toasts should be the notifier the
// orchestrator was built with; it may be nil.
func New(orch *internal.Orchestrator, store *internal.Store, toasts ToastChannel, opts ...Option) Model {
	ti := textinput.New()
	ti.Placeholder = "Ask a question, or /help"
	ti.Focus()
	ti.CharLimit = 4000
	ti.Width = 76

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	m := Model{
		textinput: ti,
		viewport:  viewport.New(80, 20),
		spinner:   s,
		orch:      orch,
		store:     store,
		toasts:    toasts,
		ctx:       context.Background(),
		width:     80,
		height:    24,
	}
	for _, opt := range opts {
		opt(&m)
	}
	if m.renderer == nil {
		m.renderer = internal.NewRenderer(76)
	}
	m.refresh()
	return m
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForToast())
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEnter:
			input := m.textinput.Value()
			m.textinput.Reset()
			cmd := m.handleInput(input)
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var spCmd tea.Cmd
		m.spinner, spCmd = m.spinner.Update(msg)
		m.refresh()
		return m, spCmd

	case toastMsg:
		m.status = notify.Toast(msg)
		m.hasStatus = true
		m.refresh()
		return m, m.waitForToast()

	case submittedMsg:
		m.busy = false
		if msg.err != nil {
			internal.LogDebug("%s submission ended with: %v", msg.kind, msg.err)
		}
		m.refresh()
		return m, nil
	}

	m.textinput, tiCmd = m.textinput.Update(msg)
	m.viewport, vpCmd = m.viewport.Update(msg)
	return m, tea.Batch(tiCmd, vpCmd)
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	vpHeight := height - headerHeight - footerHeight
	if vpHeight < 3 {
		vpHeight = 3
	}
	m.viewport.Width = width
	m.viewport.Height = vpHeight
	m.textinput.Width = width - 4
	if !m.plain {
		m.renderer = internal.NewRenderer(width - 4)
	}
	m.ready = true
	m.refresh()
}

// refresh re-renders the transcript into the viewport
func (m *Model) refresh() {
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

func (m Model) waitForToast() tea.Cmd {
	if m.toasts == nil {
		return nil
	}
	ch := m.toasts
	return func() tea.Msg {
		return toastMsg(<-ch)
	}
}

// submit starts a query in the background
func (m *Model) submit(text string) tea.Cmd {
	m.busy = true
	m.hasStatus = false
	orch, ctx := m.orch, m.ctx
	run := func() tea.Msg {
		return submittedMsg{kind: internal.KindQuery, err: orch.SubmitQuery(ctx, text)}
	}
	return tea.Batch(run, m.spinner.Tick)
}

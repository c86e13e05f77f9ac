package internal

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iksnae/research-chat/internal/classify"
	"github.com/iksnae/research-chat/internal/notify"
	"github.com/iksnae/research-chat/internal/transport"
	"github.com/iksnae/research-chat/testutil"
)

type orchestratorFixture struct {
	store     *Store
	transport *testutil.FakeTransport
	toasts    *notify.Recorder
	orch      *Orchestrator
}

func newOrchestratorFixture(t *testing.T) *orchestratorFixture {
	t.Helper()
	store, _ := newTestStore(t)
	ft := &testutil.FakeTransport{}
	rec := &notify.Recorder{}
	clock := WithOrchestratorClock(func() time.Time { return time.Date(2025, 1, 1, 14, 7, 0, 0, time.UTC) })
	return &orchestratorFixture{
		store:     store,
		transport: ft,
		toasts:    rec,
		orch:      NewOrchestrator(store, ft, rec, clock),
	}
}

func (f *orchestratorFixture) messages(t *testing.T) []Message {
	t.Helper()
	cur, ok := f.store.Current()
	require.True(t, ok, "expected a current session")
	return cur.Messages
}

func TestSubmitQuery_CreatesSessionWhenNoneCurrent(t *testing.T) {
	f := newOrchestratorFixture(t)
	f.transport.Reply = "Here is what I found."

	require.NoError(t, f.orch.SubmitQuery(context.Background(), "  find papers on RAG "))

	assert.Equal(t, 1, f.transport.CreateCalls())
	cur, ok := f.store.Current()
	require.True(t, ok)
	assert.Equal(t, "remote-1", cur.ID)
	assert.Equal(t, "Chat 14:07", cur.DisplayName)

	msgs := cur.Messages
	require.Len(t, msgs, 2)
	assert.Equal(t, SpeakerHuman, msgs[0].Speaker)
	assert.Equal(t, "find papers on RAG", msgs[0].Text)
	assert.Equal(t, SpeakerAssistant, msgs[1].Speaker)
	assert.Equal(t, "Here is what I found.", msgs[1].Text)
	assert.False(t, msgs[1].Error)

	toasts := f.toasts.Toasts()
	require.Len(t, toasts, 1)
	assert.Equal(t, notify.Success("New Session", `Session "Chat 14:07" created.`), toasts[0])

	q := f.transport.Queries()
	require.Len(t, q, 1)
	assert.Equal(t, transport.QueryRequest{Text: "find papers on RAG", SessionID: "remote-1", Provider: "openai", Model: "gpt-4o"}, q[0])
	assert.False(t, f.orch.Busy())
}

func TestSubmitQuery_UsesCurrentSession(t *testing.T) {
	f := newOrchestratorFixture(t)
	f.store.CreateSession("existing", MakeCurrent())
	require.NoError(t, f.orch.SelectProvider("anthropic"))

	require.NoError(t, f.orch.SubmitQuery(context.Background(), "hello"))

	assert.Equal(t, 0, f.transport.CreateCalls())
	q := f.transport.Queries()
	require.Len(t, q, 1)
	assert.Equal(t, "s1", q[0].SessionID)
	assert.Equal(t, "claude-3-opus", q[0].Model)
	assert.Len(t, f.messages(t), 2)
}

func TestSubmitQuery_Empty(t *testing.T) {
	f := newOrchestratorFixture(t)
	assert.ErrorIs(t, f.orch.SubmitQuery(context.Background(), " \n "), ErrEmptyQuery)
	assert.Equal(t, 0, f.transport.CreateCalls())
}

func TestSubmitQuery_SessionCreationFails(t *testing.T) {
	f := newOrchestratorFixture(t)
	f.transport.CreateErr = &transport.Error{Op: "create session", Err: errors.New("connection refused")}

	err := f.orch.SubmitQuery(context.Background(), "hello")

	var ce *classify.Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, classify.Connectivity, ce.Category)
	assert.Empty(t, f.transport.Queries(), "query must not be sent")
	assert.Equal(t, 0, f.store.Len())
	assert.False(t, f.orch.Busy())

	last, _ := f.toasts.Last()
	assert.Equal(t, notify.LevelError, last.Level)
	assert.Equal(t, "Connection Error", last.Title)
}

func TestSubmitQuery_FailureRecordsClassifiedError(t *testing.T) {
	f := newOrchestratorFixture(t)
	f.store.CreateSession("s", MakeCurrent())
	f.transport.QueryErr = &transport.Error{
		Op:         "query",
		StatusCode: 500,
		Body:       []byte(`{"detail": "Traceback (most recent call last): ... ChatPromptTemplate expected: {input} received: {}"}`),
	}

	err := f.orch.SubmitQuery(context.Background(), "why?")

	var ce *classify.Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, classify.Server, ce.Category)

	msgs := f.messages(t)
	require.Len(t, msgs, 2)
	assert.Equal(t, "why?", msgs[0].Text)
	assert.True(t, msgs[1].Error)
	assert.Equal(t, ce.Message, msgs[1].Text)
	assert.NotContains(t, msgs[1].Text, "Traceback")

	last, _ := f.toasts.Last()
	assert.Equal(t, ce.Title, last.Title)
	assert.Equal(t, ce.Message, last.Message)
}

func TestSubmitQuery_RejectsConcurrentSubmission(t *testing.T) {
	f := newOrchestratorFixture(t)
	f.store.CreateSession("s", MakeCurrent())

	started := make(chan struct{})
	release := make(chan struct{})
	f.transport.QueryFunc = func(ctx context.Context, req transport.QueryRequest) (transport.QueryResponse, error) {
		close(started)
		<-release
		return transport.QueryResponse{Reply: "first reply"}, nil
	}

	var wg sync.WaitGroup
	var firstErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		firstErr = f.orch.SubmitQuery(context.Background(), "first")
	}()

	<-started
	assert.True(t, f.orch.Busy())
	assert.ErrorIs(t, f.orch.SubmitQuery(context.Background(), "second"), ErrBusy)
	assert.ErrorIs(t, f.orch.SubmitUpload(context.Background(), []transport.File{transport.FileFromBytes("a.txt", []byte("x"))}), ErrBusy)

	close(release)
	wg.Wait()
	require.NoError(t, firstErr)
	assert.False(t, f.orch.Busy())

	msgs := f.messages(t)
	require.Len(t, msgs, 2)
	assert.Equal(t, "first", msgs[0].Text)
	assert.Equal(t, "first reply", msgs[1].Text)
	assert.Len(t, f.transport.Queries(), 1)
}

func TestCompleteSubmission_StaleHandle(t *testing.T) {
	f := newOrchestratorFixture(t)
	f.store.CreateSession("s", MakeCurrent())

	first, err := f.orch.BeginSubmission(KindQuery)
	require.NoError(t, err)
	require.NoError(t, f.orch.CompleteSubmission(first, Outcome{Reply: "one"}))

	second, err := f.orch.BeginSubmission(KindQuery)
	require.NoError(t, err)

	assert.ErrorIs(t, f.orch.CompleteSubmission(first, Outcome{Reply: "late duplicate"}), ErrStaleSubmission)
	assert.True(t, f.orch.Busy(), "a stale completion must not release the live submission")

	require.NoError(t, f.orch.CompleteSubmission(second, Outcome{Reply: "two"}))
	assert.ErrorIs(t, f.orch.CompleteSubmission(second, Outcome{Reply: "twice"}), ErrStaleSubmission)
	assert.ErrorIs(t, f.orch.CompleteSubmission(nil, Outcome{}), ErrStaleSubmission)

	var texts []string
	for _, m := range f.messages(t) {
		texts = append(texts, m.Text)
	}
	assert.Equal(t, []string{"one", "two"}, texts)
}

func TestCompleteSubmission_DeletedSession(t *testing.T) {
	f := newOrchestratorFixture(t)
	f.store.CreateSession("s", MakeCurrent())

	sub, err := f.orch.BeginSubmission(KindQuery)
	require.NoError(t, err)
	assert.Equal(t, "s1", sub.SessionID())
	assert.Equal(t, KindQuery, sub.Kind())

	f.store.DeleteSession("s1")

	err = f.orch.CompleteSubmission(sub, Outcome{Err: errors.New("timeout")})
	assert.ErrorIs(t, err, ErrStaleSubmission)
	assert.False(t, f.orch.Busy())
	assert.Equal(t, 0, f.store.Len())

	toast, ok := f.toasts.Last()
	require.True(t, ok, "a failure is surfaced even when its session is gone")
	assert.Equal(t, notify.LevelWarning, toast.Level)
	assert.Equal(t, "Request Timeout", toast.Title)
}

func TestCompleteSubmission_DeletedSessionOutcomes(t *testing.T) {
	tests := []struct {
		name      string
		kind      SubmissionKind
		out       Outcome
		wantTitle string
	}{
		{"query reply", KindQuery, Outcome{Reply: "late"}, ""},
		{"upload success", KindUpload, Outcome{Upload: transport.UploadResponse{Filenames: []string{"a.pdf"}, ExtractedTexts: []string{"x"}}}, ""},
		{"upload too large", KindUpload, Outcome{Err: errors.New("file size exceeds the limit")}, "File Too Large"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newOrchestratorFixture(t)
			f.store.CreateSession("s", MakeCurrent())
			sub, err := f.orch.BeginSubmission(tt.kind)
			require.NoError(t, err)
			f.store.DeleteSession(sub.SessionID())

			assert.ErrorIs(t, f.orch.CompleteSubmission(sub, tt.out), ErrStaleSubmission)
			if tt.wantTitle == "" {
				assert.Empty(t, f.toasts.Toasts())
				return
			}
			toast, ok := f.toasts.Last()
			require.True(t, ok)
			assert.Equal(t, tt.wantTitle, toast.Title)
		})
	}
}

func TestSubmitUpload_RequiresCurrentSession(t *testing.T) {
	f := newOrchestratorFixture(t)
	f.store.CreateSession("not current")

	err := f.orch.SubmitUpload(context.Background(), []transport.File{transport.FileFromBytes("a.pdf", []byte("%PDF"))})

	var ce *classify.Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, classify.SessionRequired, ce.Category)
	assert.Empty(t, f.transport.Uploads(), "no transport call may be made")
	assert.Equal(t, 0, f.transport.CreateCalls(), "uploads never create sessions")
	assert.False(t, f.orch.Busy())

	last, _ := f.toasts.Last()
	assert.Equal(t, ce.Title, last.Title)
}

func TestSubmitUpload_NoFiles(t *testing.T) {
	f := newOrchestratorFixture(t)
	assert.ErrorIs(t, f.orch.SubmitUpload(context.Background(), nil), ErrNoFiles)
}

func TestSubmitUpload_ValidationFailure(t *testing.T) {
	f := newOrchestratorFixture(t)
	f.store.CreateSession("s", MakeCurrent())

	big := transport.File{Name: "huge.pdf", Size: transport.MaxUploadSize + 1}
	err := f.orch.SubmitUpload(context.Background(), []transport.File{big})

	var ce *classify.Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, classify.FileTooLarge, ce.Category)
	assert.Empty(t, f.transport.Uploads())
	assert.Empty(t, f.messages(t))
}

func TestSubmitUpload_Success(t *testing.T) {
	f := newOrchestratorFixture(t)
	f.store.CreateSession("s", MakeCurrent())
	long := strings.Repeat("x", SnippetCutoff+40)
	f.transport.Upload = transport.UploadResponse{
		Filenames:      []string{"paper.pdf", "scan.png", "notes.txt"},
		ExtractedTexts: []string{long, "  ", "short text"},
	}

	files := []transport.File{
		transport.FileFromBytes("paper.pdf", []byte("%PDF")),
		transport.FileFromBytes("scan.png", []byte{1}),
		transport.FileFromBytes("notes.txt", []byte("short text")),
	}
	require.NoError(t, f.orch.SubmitUpload(context.Background(), files))

	uploads := f.transport.Uploads()
	require.Len(t, uploads, 1)
	assert.Equal(t, "s1", uploads[0].SessionID)
	assert.Equal(t, "google", uploads[0].EmbeddingProvider)

	msgs := f.messages(t)
	require.Len(t, msgs, 4)
	assert.Equal(t, "Successfully processed 3 file(s): paper.pdf, scan.png, notes.txt. Snippets of extracted content (if any) are shown below.", msgs[0].Text)
	assert.Equal(t, `📄 **paper.pdf**: "`+long[:SnippetCutoff]+`..."`, msgs[1].Text)
	assert.Equal(t, "📄 **scan.png**: Could not extract text from this file, or the file was empty.", msgs[2].Text)
	assert.Equal(t, `📄 **notes.txt**: "short text"`, msgs[3].Text)
	for _, m := range msgs {
		assert.False(t, m.Error)
		assert.Equal(t, SpeakerAssistant, m.Speaker)
	}

	last, _ := f.toasts.Last()
	assert.Equal(t, notify.Success("Files Processed", "3 document(s) are ready for querying."), last)
}

func TestSubmitUpload_ZeroFilesProcessed(t *testing.T) {
	f := newOrchestratorFixture(t)
	f.store.CreateSession("s", MakeCurrent())
	f.transport.Upload = transport.UploadResponse{Filenames: []string{}, ExtractedTexts: []string{}}

	require.NoError(t, f.orch.SubmitUpload(context.Background(), []transport.File{transport.FileFromBytes("a.txt", nil)}))

	msgs := f.messages(t)
	require.Len(t, msgs, 1)
	assert.True(t, msgs[0].Error)
	assert.Contains(t, msgs[0].Text, "no files were processed by the backend")

	last, _ := f.toasts.Last()
	assert.Equal(t, notify.LevelWarning, last.Level)
	assert.Equal(t, "Upload Info", last.Title)
}

func TestSubmitUpload_MismatchedResponse(t *testing.T) {
	f := newOrchestratorFixture(t)
	f.store.CreateSession("s", MakeCurrent())
	f.transport.Upload = transport.UploadResponse{Filenames: []string{"a.txt"}}

	require.NoError(t, f.orch.SubmitUpload(context.Background(), []transport.File{transport.FileFromBytes("a.txt", nil)}))

	msgs := f.messages(t)
	require.Len(t, msgs, 1)
	assert.True(t, msgs[0].Error)
	last, _ := f.toasts.Last()
	assert.Equal(t, "Upload Error", last.Title)
}

func TestSubmitUpload_TransportFailure(t *testing.T) {
	f := newOrchestratorFixture(t)
	f.store.CreateSession("s", MakeCurrent())
	f.transport.UploadErr = &transport.Error{Op: "upload", StatusCode: 413}

	err := f.orch.SubmitUpload(context.Background(), []transport.File{transport.FileFromBytes("a.pdf", nil)})

	var ce *classify.Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, classify.FileTooLarge, ce.Category)

	msgs := f.messages(t)
	require.Len(t, msgs, 1)
	assert.True(t, msgs[0].Error)
	assert.Equal(t, ce.Message, msgs[0].Text)
	assert.False(t, f.orch.Busy())
}

func TestOrchestrator_Selection(t *testing.T) {
	f := newOrchestratorFixture(t)
	assert.Equal(t, DefaultSelection(), f.orch.Selection())

	require.NoError(t, f.orch.SelectProvider("gemini"))
	assert.Equal(t, "gemini-2.0-flash", f.orch.Selection().Model)
	require.NoError(t, f.orch.SelectModel("gemini-2.0-pro"))
	assert.Error(t, f.orch.SelectModel("gpt-4o"))
	assert.Error(t, f.orch.SelectProvider("mistral"))
	assert.Equal(t, "gemini/gemini-2.0-pro", f.orch.Selection().String())
}

func TestSnippet(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", emptyExtractionText},
		{"whitespace", " \n\t", emptyExtractionText},
		{"short", "abc", `"abc"`},
		{"exact cutoff", strings.Repeat("a", SnippetCutoff), `"` + strings.Repeat("a", SnippetCutoff) + `"`},
		{"over cutoff", strings.Repeat("b", SnippetCutoff+1), `"` + strings.Repeat("b", SnippetCutoff) + `..."`},
		{"multibyte", strings.Repeat("é", SnippetCutoff+5), `"` + strings.Repeat("é", SnippetCutoff) + `..."`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Snippet(tt.in))
		})
	}
}

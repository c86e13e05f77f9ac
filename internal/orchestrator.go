package internal

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/iksnae/research-chat/internal/classify"
	"github.com/iksnae/research-chat/internal/notify"
	"github.com/iksnae/research-chat/internal/transport"
)

// SnippetCutoff is how much extracted text is previewed per uploaded file
const SnippetCutoff = 250

const (
	uploadSummaryFormat = "Successfully processed %d file(s): %s. Snippets of extracted content (if any) are shown below."
	emptyExtractionText = "Could not extract text from this file, or the file was empty."
	noFilesProcessed    = "File upload submitted, but no files were processed by the backend. This might happen if files were empty or of unsupported types not caught by initial checks."
	malformedUpload     = "There was an issue with the file upload process or the server returned an unexpected response. Please check notifications or try again."
)

// Transport is the backend the orchestrator submits to
type Transport interface {
	CreateSession(ctx context.Context) (string, error)
	SubmitQuery(ctx context.Context, req transport.QueryRequest) (transport.QueryResponse, error)
	UploadFiles(ctx context.Context, req transport.UploadRequest) (transport.UploadResponse, error)
}

// Verify transport.Client implements Transport
var _ Transport = (*transport.Client)(nil)

// SubmissionKind tells queries and uploads apart
type SubmissionKind int

const (
	KindQuery SubmissionKind = iota
	KindUpload
)

func (k SubmissionKind) String() string {
	if k == KindUpload {
		return "upload"
	}
	return "query"
}

// Submission is the handle of an in-flight request
type Submission struct {
	seq       uint64
	kind      SubmissionKind
	sessionID string
	startedAt time.Time
}

// Kind returns what was submitted
func (s *Submission) Kind() SubmissionKind { return s.kind }

// SessionID returns the session the result will be recorded in
func (s *Submission) SessionID() string { return s.sessionID }

// StartedAt returns when the submission began
func (s *Submission) StartedAt() time.Time { return s.startedAt }

// Outcome is the result of a submission: a reply, an upload result, or an error
type Outcome struct {
	Reply  string
	Upload transport.UploadResponse
	Err    error
}

// Orchestrator runs query and upload submissions against a session store. At
// most one submission is in flight at a time.
type Orchestrator struct {
	store     *Store
	transport Transport
	notifier  notify.Notifier
	now       func() time.Time

	mu                sync.Mutex
	inflight          *Submission
	seq               uint64
	selection         Selection
	embeddingProvider string
}

// OrchestratorOption configures an Orchestrator
type OrchestratorOption func(*Orchestrator)

// WithSelection sets the provider/model queries are sent with
func WithSelection(sel Selection) OrchestratorOption {
	return func(o *Orchestrator) { o.selection = sel }
}

// WithEmbeddingProvider sets the embedding provider sent with uploads
func WithEmbeddingProvider(p string) OrchestratorOption {
	return func(o *Orchestrator) { o.embeddingProvider = p }
}

// WithOrchestratorClock overrides the time source used for message timestamps
func WithOrchestratorClock(now func() time.Time) OrchestratorOption {
	return func(o *Orchestrator) { o.now = now }
}

// NewOrchestrator wires a store, a backend and a toast sink together
func NewOrchestrator(store *Store, t Transport, n notify.Notifier, opts ...OrchestratorOption) *Orchestrator {
	if n == nil {
		n = notify.Discard
	}
	o := &Orchestrator{
		store:             store,
		transport:         t,
		notifier:          n,
		now:               time.Now,
		selection:         DefaultSelection(),
		embeddingProvider: transport.DefaultEmbeddingProvider,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Busy reports whether a submission is in flight
func (o *Orchestrator) Busy() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.inflight != nil
}

// Selection returns the provider/model queries are sent with
func (o *Orchestrator) Selection() Selection {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.selection
}

// SelectProvider switches provider, resetting the model to its first one
func (o *Orchestrator) SelectProvider(id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	sel, err := o.selection.WithProvider(id)
	if err != nil {
		return err
	}
	o.selection = sel
	return nil
}

// SelectModel switches model within the current provider
func (o *Orchestrator) SelectModel(model string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	sel, err := o.selection.WithModel(model)
	if err != nil {
		return err
	}
	o.selection = sel
	return nil
}

// BeginSubmission marks a submission in flight against the current session.
// It fails with ErrBusy while another submission is pending.
func (o *Orchestrator) BeginSubmission(kind SubmissionKind) (*Submission, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.inflight != nil {
		return nil, ErrBusy
	}
	o.seq++
	sub := &Submission{
		seq:       o.seq,
		kind:      kind,
		sessionID: o.store.CurrentID(),
		startedAt: o.now(),
	}
	o.inflight = sub
	LogDebug("Began %s submission #%d (session %q)", kind, sub.seq, sub.sessionID)
	return sub, nil
}

// CompleteSubmission records the outcome of sub in its session. It is the only
// place submission results reach the store. Handles that are no longer in
// flight, or whose session has disappeared, are discarded with
// ErrStaleSubmission; a failure for a vanished session is still toasted. For
// other failed outcomes the classified error is returned after it has been
// surfaced.
func (o *Orchestrator) CompleteSubmission(sub *Submission, out Outcome) error {
	o.mu.Lock()
	if sub == nil || o.inflight != sub {
		o.mu.Unlock()
		LogDebug("Discarding completion of a submission that is not in flight")
		return ErrStaleSubmission
	}
	o.inflight = nil
	o.mu.Unlock()

	if !o.store.Has(sub.sessionID) {
		LogInfo("Session %q is gone, discarding %s result", sub.sessionID, sub.kind)
		if out.Err != nil {
			ce := classify.Classify(out.Err)
			if sub.kind == KindUpload {
				ce = classify.ClassifyUpload(out.Err)
			}
			o.notifier.Notify(notify.FromClassified(ce))
		}
		return ErrStaleSubmission
	}

	switch sub.kind {
	case KindUpload:
		return o.completeUpload(sub, out)
	default:
		return o.completeQuery(sub, out)
	}
}

// release drops the in-flight mark without recording anything
func (o *Orchestrator) release(sub *Submission) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.inflight == sub {
		o.inflight = nil
	}
}

func (o *Orchestrator) bind(sub *Submission, sessionID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.inflight == sub {
		sub.sessionID = sessionID
	}
}

// SubmitQuery sends text within the current session, creating a remote
// session first when none is current. The human message is recorded before
// the backend is called. Backend failures are classified, shown as a toast
// and recorded as an error message; the classified error is also returned.
func (o *Orchestrator) SubmitQuery(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyQuery
	}

	sub, err := o.BeginSubmission(KindQuery)
	if err != nil {
		return err
	}

	if sub.sessionID == "" {
		id, err := o.ensureSession(ctx)
		if err != nil {
			o.release(sub)
			return err
		}
		o.bind(sub, id)
	}

	o.store.AppendMessage(sub.sessionID, HumanMessage(text, o.now()))

	sel := o.Selection()
	resp, err := o.transport.SubmitQuery(ctx, transport.QueryRequest{
		Text:      text,
		SessionID: sub.sessionID,
		Provider:  sel.Provider,
		Model:     sel.Model,
	})
	if err != nil {
		return o.CompleteSubmission(sub, Outcome{Err: err})
	}
	return o.CompleteSubmission(sub, Outcome{Reply: resp.Reply})
}

// ensureSession creates a session on the backend and makes its local
// counterpart current
func (o *Orchestrator) ensureSession(ctx context.Context) (string, error) {
	id, err := o.transport.CreateSession(ctx)
	if err != nil {
		ce := classify.Classify(err)
		LogWarn("Session creation failed: %v", err)
		o.notifier.Notify(notify.FromClassified(ce))
		return "", ce
	}

	name := "Chat " + o.now().Format("15:04")
	sess := o.store.CreateSession(name, WithSessionID(id), MakeCurrent())
	o.notifier.Notify(notify.Success("New Session", fmt.Sprintf("Session %q created.", sess.DisplayName)))
	return sess.ID, nil
}

func (o *Orchestrator) completeQuery(sub *Submission, out Outcome) error {
	if out.Err != nil {
		ce := classify.Classify(out.Err)
		LogWarn("Query failed: %v", out.Err)
		o.notifier.Notify(notify.FromClassified(ce))
		o.store.AppendMessage(sub.sessionID, ErrorMessage(ce.Message, o.now()))
		return ce
	}
	o.store.AppendMessage(sub.sessionID, AssistantMessage(out.Reply, o.now()))
	return nil
}

// SubmitUpload sends documents for extraction within the current session. It
// never creates a session: without a current one it fails with a
// session_required error before anything is sent.
func (o *Orchestrator) SubmitUpload(ctx context.Context, files []transport.File) error {
	if len(files) == 0 {
		return ErrNoFiles
	}

	if _, ok := o.store.Current(); !ok {
		ce := classify.New(classify.SessionRequired)
		o.notifier.Notify(notify.FromClassified(ce))
		return ce
	}

	if err := transport.ValidateUploads(files); err != nil {
		ce := classify.ClassifyUpload(err)
		o.notifier.Notify(notify.FromClassified(ce))
		return ce
	}

	sub, err := o.BeginSubmission(KindUpload)
	if err != nil {
		return err
	}
	if sub.sessionID == "" {
		// the current session vanished between the check and Begin
		o.release(sub)
		ce := classify.New(classify.SessionRequired)
		o.notifier.Notify(notify.FromClassified(ce))
		return ce
	}

	resp, err := o.transport.UploadFiles(ctx, transport.UploadRequest{
		SessionID:         sub.sessionID,
		EmbeddingProvider: o.embeddingProvider,
		Files:             files,
	})
	if err != nil {
		return o.CompleteSubmission(sub, Outcome{Err: err})
	}
	return o.CompleteSubmission(sub, Outcome{Upload: resp})
}

func (o *Orchestrator) completeUpload(sub *Submission, out Outcome) error {
	if out.Err != nil {
		ce := classify.ClassifyUpload(out.Err)
		LogWarn("Upload failed: %v", out.Err)
		o.notifier.Notify(notify.FromClassified(ce))
		o.store.AppendMessage(sub.sessionID, ErrorMessage(ce.Message, o.now()))
		return ce
	}

	resp := out.Upload
	if len(resp.Filenames) != len(resp.ExtractedTexts) {
		LogWarn("Upload response pairs %d filenames with %d texts", len(resp.Filenames), len(resp.ExtractedTexts))
		o.notifier.Notify(notify.Error("Upload Error", "Unexpected response from file upload service."))
		o.store.AppendMessage(sub.sessionID, ErrorMessage(malformedUpload, o.now()))
		return nil
	}

	if len(resp.Filenames) == 0 {
		o.notifier.Notify(notify.Warning("Upload Info", "No files appear to have been processed successfully by the backend."))
		o.store.AppendMessage(sub.sessionID, ErrorMessage(noFilesProcessed, o.now()))
		return nil
	}

	n := len(resp.Filenames)
	summary := fmt.Sprintf(uploadSummaryFormat, n, strings.Join(resp.Filenames, ", "))
	o.store.AppendMessage(sub.sessionID, AssistantMessage(summary, o.now()))
	for i, name := range resp.Filenames {
		text := fmt.Sprintf("📄 **%s**: %s", name, Snippet(resp.ExtractedTexts[i]))
		o.store.AppendMessage(sub.sessionID, AssistantMessage(text, o.now()))
	}
	o.notifier.Notify(notify.Success("Files Processed", fmt.Sprintf("%d document(s) are ready for querying.", n)))
	return nil
}

// Snippet previews extracted text: the first SnippetCutoff characters in
// quotes, with "..." when cut
func Snippet(text string) string {
	if strings.TrimSpace(text) == "" {
		return emptyExtractionText
	}
	runes := []rune(text)
	if len(runes) <= SnippetCutoff {
		return `"` + text + `"`
	}
	return `"` + string(runes[:SnippetCutoff]) + `..."`
}

// Package sync implements the synchronization engine: the control loop that
// owns the draft and the outbox, decides when to flush, reconciles the
// locally-created draft with its first server-assigned identity, and reports
// progress upward.
//
// Durability is unconditional, synchronization is best-effort: every mutation
// persists the draft and the queue before any network attempt is made.
package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/daylighthq/daylight-client/internal/client/draft"
	"github.com/daylighthq/daylight-client/internal/client/gateway"
	"github.com/daylighthq/daylight-client/internal/client/models"
	"github.com/daylighthq/daylight-client/internal/client/outbox"
	"github.com/daylighthq/daylight-client/internal/client/store"
	"github.com/daylighthq/daylight-client/internal/common"
	"github.com/daylighthq/daylight-client/internal/logging"
	"github.com/daylighthq/daylight-client/internal/timex"
)

// State is the engine's position in the flush lifecycle.
type State string

const (
	StateIdle          State = "IDLE"
	StateBootstrapping State = "BOOTSTRAPPING"
	StateFlushing      State = "FLUSHING"

	// StateBlocked means the last attempt failed; the engine waits for the
	// next trigger (debounce timer, reconnect, user retry) and never retries
	// on a tight loop.
	StateBlocked State = "BLOCKED"
)

// Status is the coarse user-facing progress report.
type Status string

const (
	StatusSaving    Status = "saving"
	StatusSaved     Status = "saved"
	StatusQueued    Status = "queued"
	StatusRejected  Status = "rejected"
	StatusSubmitted Status = "submitted"
)

// AttachmentSource supplies the bytes for a pending attachment by name. The
// engine re-reads through it on every upload attempt, so a selection made
// before a restart can still be uploaded after one.
type AttachmentSource interface {
	Open(name string) (data []byte, contentType string, err error)
}

const (
	defaultRequestTimeout = 10 * time.Second
	defaultDebounceWindow = 600 * time.Millisecond
)

// Deps carries the engine's collaborators.
type Deps struct {
	Gateway     gateway.Gateway
	Store       store.Store
	Queue       *outbox.Queue
	Log         logging.Logger
	Clock       timex.Clock
	Timer       timex.Timer
	Attachments AttachmentSource

	RequestTimeout time.Duration
	DebounceWindow time.Duration

	// Report receives status transitions. It must not call back into the
	// engine.
	Report func(Status)
}

// Engine drives the draft and outbox to convergence with the remote store.
type Engine struct {
	gw          gateway.Gateway
	st          store.Store
	queue       *outbox.Queue
	log         logging.Logger
	clock       timex.Clock
	timer       timex.Timer
	attachments AttachmentSource
	timeout     time.Duration
	debounce    time.Duration
	report      func(Status)

	// mu serializes access to the model, the queue and the state flags. It
	// is released around network calls so edits keep landing while a flush
	// is in flight.
	mu       sync.Mutex
	model    *draft.Model
	state    State
	inFlight bool
	rerun    bool
}

func NewEngine(d Deps) *Engine {
	if d.RequestTimeout <= 0 {
		d.RequestTimeout = defaultRequestTimeout
	}
	if d.DebounceWindow <= 0 {
		d.DebounceWindow = defaultDebounceWindow
	}
	return &Engine{
		gw:          d.Gateway,
		st:          d.Store,
		queue:       d.Queue,
		log:         d.Log,
		clock:       d.Clock,
		timer:       d.Timer,
		attachments: d.Attachments,
		timeout:     d.RequestTimeout,
		debounce:    d.DebounceWindow,
		report:      d.Report,
		state:       StateIdle,
	}
}

// Restore loads the persisted draft and outbox. On a true first load (no
// persisted draft) it makes one online create attempt; if that fails it
// falls back to a local placeholder draft with a queued SAVE, so the form
// works immediately and converges later.
func (e *Engine) Restore(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.queue.Restore(ctx); err != nil {
		return err
	}

	data, err := e.st.Get(ctx, store.RecordDraft)
	if err == nil {
		var d models.Draft
		if err := json.Unmarshal(data, &d); err != nil {
			return fmt.Errorf("decode draft: %w", err)
		}
		e.model = draft.New(d, e.clock)
		return nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return fmt.Errorf("restore draft: %w", err)
	}

	remote, cerr := e.createRemote(ctx)
	if cerr == nil {
		e.model = draft.New(*remote, e.clock)
	} else {
		e.log.Info(ctx, "remote create failed on first load, starting offline", "error", cerr)
		e.model = draft.NewLocal(e.clock)
		e.queue.Enqueue(ctx, models.ActionSave)
	}
	e.persistDraft(ctx)
	return nil
}

// Draft returns a snapshot of the current draft.
func (e *Engine) Draft() models.Draft {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.model.Get()
}

// State returns the engine's current lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// PendingActions returns a snapshot of the outbox.
func (e *Engine) PendingActions() []models.Action {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.queue.Actions()
}

// Edit applies a mutation to the draft, persists it, queues a SAVE and
// schedules a debounced flush. Rapid edits coalesce into one round trip.
func (e *Engine) Edit(ctx context.Context, fn func(d *models.Draft)) {
	e.mu.Lock()
	e.model.ApplyEdit(fn)
	e.persistDraft(ctx)
	e.queue.Enqueue(ctx, models.ActionSave)
	e.mu.Unlock()

	e.emit(StatusSaving)
	e.scheduleFlush()
}

// SetAnswer records a free-text answer.
func (e *Engine) SetAnswer(ctx context.Context, key, value string) {
	e.Edit(ctx, func(d *models.Draft) { d.Answers[key] = value })
}

// SetEEO records a demographic answer.
func (e *Engine) SetEEO(ctx context.Context, key, value string) {
	e.Edit(ctx, func(d *models.Draft) { d.EEO[key] = value })
}

// Attach records an attachment selection. The choice is persisted as pending
// immediately so it is never silently lost; the upload happens during the
// next flush and is retried by the same triggers as the outbox.
func (e *Engine) Attach(ctx context.Context, name string) {
	e.mu.Lock()
	e.model.MarkAttachmentPending(name)
	e.persistDraft(ctx)
	e.queue.Enqueue(ctx, models.ActionSave)
	e.mu.Unlock()

	e.emit(StatusSaving)
	e.scheduleFlush()
}

// Submit queues the submission and flushes immediately. A pending attachment
// blocks submission; the draft must first reach a confirmed or absent
// attachment state.
func (e *Engine) Submit(ctx context.Context) error {
	e.mu.Lock()
	d := e.model.Get()
	if d.Status == models.StatusSubmitted && e.queue.IsEmpty() {
		e.mu.Unlock()
		return common.ErrAlreadySubmitted
	}
	if d.PendingAttachmentName != "" {
		e.mu.Unlock()
		return common.ErrAttachmentPending
	}
	e.queue.Enqueue(ctx, models.ActionSubmit)
	e.mu.Unlock()

	e.Flush(ctx)
	return nil
}

// Flush attempts to drain the outbox against the remote store. At most one
// flush runs at a time; a trigger arriving mid-flight is coalesced into one
// re-evaluation once the in-flight attempt completes, so no trigger is lost
// and no trigger causes a second concurrent network call.
func (e *Engine) Flush(ctx context.Context) {
	e.mu.Lock()
	if e.inFlight {
		e.rerun = true
		e.mu.Unlock()
		return
	}
	e.inFlight = true
	e.mu.Unlock()

	// A running flush supersedes a scheduled one.
	e.timer.Stop()

	for {
		e.flushOnce(ctx)

		e.mu.Lock()
		if e.rerun {
			e.rerun = false
			e.mu.Unlock()
			continue
		}
		e.inFlight = false
		e.mu.Unlock()
		return
	}
}

// flushOnce performs a single bootstrap-then-drain pass. On the first
// failure it stops, leaving the failed entry and everything behind it
// queued.
func (e *Engine) flushOnce(ctx context.Context) {
	e.mu.Lock()

	if e.model.NeedsBootstrap() {
		e.state = StateBootstrapping
		e.mu.Unlock()

		remote, err := e.createRemote(ctx)

		e.mu.Lock()
		if err != nil {
			e.blockLocked(ctx, "bootstrap create failed", err)
			return
		}
		e.model.ReconcileWithRemote(*remote)
		e.persistDraft(ctx)
	}

	for {
		head, ok := e.queue.PeekNext()
		if !ok {
			break
		}
		e.state = StateFlushing
		id := e.model.Get().ID
		payload := e.model.Payload()
		if head.Kind == models.ActionSubmit {
			payload = e.model.SubmitPayload()
		}
		e.mu.Unlock()

		remote, err := e.updateRemote(ctx, id, payload)

		e.mu.Lock()
		if err != nil {
			e.blockLocked(ctx, "update failed", err, "kind", head.Kind)
			return
		}
		e.model.ReconcileWithRemote(*remote)
		if head.Kind == models.ActionSubmit {
			e.model.MarkSubmitted()
		}
		// Dequeue by the peeked entry: if an edit refreshed it while the
		// call was in flight, it stays queued and drains on the next pass.
		e.queue.Dequeue(ctx, head)
		e.persistDraft(ctx)
	}

	if d := e.model.Get(); d.PendingAttachmentName != "" && e.attachments != nil {
		e.state = StateFlushing
		e.mu.Unlock()

		key, err := e.uploadPending(ctx, d.ID, d.PendingAttachmentName)

		e.mu.Lock()
		if err != nil {
			e.blockLocked(ctx, "attachment upload failed", err, "name", d.PendingAttachmentName)
			return
		}
		e.model.MarkAttachmentConfirmed(key)
		e.persistDraft(ctx)
		// The confirmed key still has to reach the application record.
		e.queue.Enqueue(ctx, models.ActionSave)
		e.rerun = true
		e.state = StateIdle
		e.mu.Unlock()
		return
	}

	if e.queue.IsEmpty() && e.model.Submitted() {
		e.terminalClearLocked(ctx)
		return
	}

	e.state = StateIdle
	empty := e.queue.IsEmpty()
	e.mu.Unlock()
	if empty {
		e.emit(StatusSaved)
	}
}

// terminalClearLocked deletes all persisted draft state after a confirmed
// submission. This is the only path that deletes user-entered data.
func (e *Engine) terminalClearLocked(ctx context.Context) {
	if err := e.st.DeleteAll(ctx, store.RecordDraft, store.RecordOutbox); err != nil {
		e.log.Warn(ctx, "terminal clear failed", "error", err)
	}
	e.queue.Reset()
	e.state = StateIdle
	e.mu.Unlock()

	e.emit(StatusSubmitted)
	e.log.Info(ctx, "application submitted")
}

// blockLocked transitions to BLOCKED and surfaces the failure. Rejections
// need user attention; anything transient will be retried on the next
// trigger. Releases e.mu.
func (e *Engine) blockLocked(ctx context.Context, msg string, err error, args ...any) {
	e.state = StateBlocked
	e.mu.Unlock()

	e.log.Warn(ctx, msg, append([]any{"error", err}, args...)...)
	if errors.Is(err, common.ErrRejected) {
		e.emit(StatusRejected)
		return
	}
	e.emit(StatusQueued)
}

func (e *Engine) createRemote(ctx context.Context) (*models.Draft, error) {
	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	return e.gw.CreateApplication(callCtx)
}

func (e *Engine) updateRemote(ctx context.Context, id string, payload models.DraftPayload) (*models.Draft, error) {
	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	return e.gw.UpdateApplication(callCtx, id, payload)
}

// uploadPending obtains a write credential and stores the attachment bytes,
// returning the server-addressable key.
func (e *Engine) uploadPending(ctx context.Context, appID, name string) (string, error) {
	data, contentType, err := e.attachments.Open(name)
	if err != nil {
		return "", fmt.Errorf("%w: %s", common.ErrAttachmentMissing, name)
	}

	credCtx, cancel := context.WithTimeout(ctx, e.timeout)
	cred, err := e.gw.RequestUploadCredential(credCtx, appID, name, contentType)
	cancel()
	if err != nil {
		return "", err
	}

	upCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	if err := e.gw.UploadAttachment(upCtx, cred, contentType, data); err != nil {
		return "", err
	}
	return cred.Key, nil
}

// persistDraft writes the draft snapshot. A storage failure degrades
// durability but never blocks the session; sync continues from memory.
// Caller holds e.mu.
func (e *Engine) persistDraft(ctx context.Context) {
	data, err := json.Marshal(e.model.Get())
	if err != nil {
		e.log.Warn(ctx, "draft encode failed", "error", err)
		return
	}
	if err := e.st.Put(ctx, store.RecordDraft, data); err != nil {
		e.log.Warn(ctx, "draft persist failed, continuing from memory", "error", err)
	}
}

func (e *Engine) scheduleFlush() {
	e.timer.Schedule(e.debounce, func() {
		e.Flush(context.Background())
	})
}

func (e *Engine) emit(s Status) {
	if e.report != nil {
		e.report(s)
	}
}

// Package draft holds the in-memory Draft Model: synchronous mutators over
// the working copy of the application, and the field-ownership merge applied
// to every server response.
package draft

import (
	"github.com/daylighthq/daylight-client/internal/client/models"
	"github.com/daylighthq/daylight-client/internal/timex"
)

// Model wraps a Draft with the mutators the sync engine needs. Mutators are
// synchronous and perform no I/O; persistence is the caller's concern.
// Model is not safe for concurrent use; the engine serializes access.
type Model struct {
	clock timex.Clock
	d     models.Draft
}

// New wraps an existing draft (typically restored from the local store).
func New(d models.Draft, clock timex.Clock) *Model {
	if d.Answers == nil {
		d.Answers = map[string]string{}
	}
	if d.EEO == nil {
		d.EEO = map[string]string{}
	}
	return &Model{clock: clock, d: d}
}

// NewLocal mints a placeholder draft for offline first load.
func NewLocal(clock timex.Clock) *Model {
	return &Model{clock: clock, d: models.NewLocalDraft(clock.Now())}
}

// Get returns a snapshot copy of the draft.
func (m *Model) Get() models.Draft {
	return m.d.Clone()
}

// Payload projects the draft onto the remote update body.
func (m *Model) Payload() models.DraftPayload {
	return m.d.Clone().Payload()
}

// SubmitPayload projects the draft as a submission without mutating it. The
// draft itself is marked submitted only once the remote accepts the update,
// so a rejected submission leaves the local copy editable.
func (m *Model) SubmitPayload() models.DraftPayload {
	d := m.d.Clone()
	if d.Status != models.StatusSubmitted {
		d.Status = models.StatusSubmitted
		now := m.clock.Now()
		d.SubmittedAt = &now
	}
	return d.Payload()
}

// NeedsBootstrap reports whether the draft still carries a placeholder id.
func (m *Model) NeedsBootstrap() bool {
	return m.d.NeedsBootstrap
}

// Submitted reports whether the draft has been marked submitted locally.
func (m *Model) Submitted() bool {
	return m.d.Status == models.StatusSubmitted
}

// ApplyEdit runs a mutator against the draft and stamps UpdatedAt.
func (m *Model) ApplyEdit(fn func(d *models.Draft)) {
	fn(&m.d)
	m.touch()
}

// SetAnswer records a free-text answer.
func (m *Model) SetAnswer(key, value string) {
	m.d.Answers[key] = value
	m.touch()
}

// SetEEO records a demographic answer.
func (m *Model) SetEEO(key, value string) {
	m.d.EEO[key] = value
	m.touch()
}

// MarkSubmitted moves the draft to SUBMITTED. The transition is one-way and
// idempotent; the submission timestamp is set on the first call only.
func (m *Model) MarkSubmitted() {
	if m.d.Status == models.StatusSubmitted {
		return
	}
	m.d.Status = models.StatusSubmitted
	now := m.clock.Now()
	m.d.SubmittedAt = &now
	m.touch()
}

// MarkAttachmentPending records a new attachment selection. Any previously
// confirmed attachment is superseded, keeping the confirmed/queued/absent
// states mutually exclusive.
func (m *Model) MarkAttachmentPending(name string) {
	m.d.PendingAttachmentName = name
	m.d.ResumeKey = ""
	m.touch()
}

// MarkAttachmentConfirmed records the server-addressable key of a stored
// attachment and clears the pending selection.
func (m *Model) MarkAttachmentConfirmed(key string) {
	m.d.ResumeKey = key
	m.d.PendingAttachmentName = ""
	m.touch()
}

func (m *Model) touch() {
	m.d.UpdatedAt = m.clock.Now()
}

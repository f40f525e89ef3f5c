package draft

import (
	"testing"
	"time"

	"github.com/daylighthq/daylight-client/internal/client/models"
	"github.com/daylighthq/daylight-client/internal/timex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newModel(t *testing.T) (*Model, *timex.ManualClock) {
	t.Helper()
	clock := timex.NewManualClock(t0)
	return NewLocal(clock), clock
}

func TestApplyEdit_StampsUpdatedAt(t *testing.T) {
	m, clock := newModel(t)

	clock.Advance(time.Minute)
	m.ApplyEdit(func(d *models.Draft) {
		d.Answers["motivation"] = "growth"
	})

	d := m.Get()
	assert.Equal(t, "growth", d.Answers["motivation"])
	assert.Equal(t, t0.Add(time.Minute), d.UpdatedAt)
}

func TestMarkSubmitted_OneWayAndIdempotent(t *testing.T) {
	m, clock := newModel(t)

	clock.Advance(time.Minute)
	m.MarkSubmitted()
	first := m.Get()
	require.Equal(t, models.StatusSubmitted, first.Status)
	require.NotNil(t, first.SubmittedAt)

	clock.Advance(time.Hour)
	m.MarkSubmitted()
	second := m.Get()
	assert.Equal(t, *first.SubmittedAt, *second.SubmittedAt)
}

func TestSubmitPayload_DoesNotMutateDraft(t *testing.T) {
	m, clock := newModel(t)
	m.SetAnswer("motivation", "growth")

	clock.Advance(time.Minute)
	p := m.SubmitPayload()
	require.Equal(t, models.StatusSubmitted, p.Status)
	require.NotNil(t, p.SubmittedAt)
	assert.Equal(t, t0.Add(time.Minute), *p.SubmittedAt)

	// The draft stays editable until the submission is confirmed.
	d := m.Get()
	assert.Equal(t, models.StatusDraft, d.Status)
	assert.Nil(t, d.SubmittedAt)
}

func TestAttachmentStates_AreExclusive(t *testing.T) {
	m, _ := newModel(t)

	m.MarkAttachmentPending("resume.pdf")
	d := m.Get()
	assert.Equal(t, "resume.pdf", d.PendingAttachmentName)
	assert.Empty(t, d.ResumeKey)

	m.MarkAttachmentConfirmed("uploads/abc/resume.pdf")
	d = m.Get()
	assert.Empty(t, d.PendingAttachmentName)
	assert.Equal(t, "uploads/abc/resume.pdf", d.ResumeKey)

	// A new selection supersedes the confirmed attachment.
	m.MarkAttachmentPending("resume-v2.pdf")
	d = m.Get()
	assert.Equal(t, "resume-v2.pdf", d.PendingAttachmentName)
	assert.Empty(t, d.ResumeKey)
}

func TestReconcile_BootstrapAdoptsIdentityOnce(t *testing.T) {
	m, _ := newModel(t)
	require.True(t, m.NeedsBootstrap())

	created := time.Date(2024, 5, 30, 8, 0, 0, 0, time.UTC)
	m.ReconcileWithRemote(models.Draft{
		ID:        "app-42",
		Status:    models.StatusDraft,
		CreatedAt: created,
	})

	d := m.Get()
	assert.Equal(t, "app-42", d.ID)
	assert.False(t, d.NeedsBootstrap)
	assert.Equal(t, created, d.CreatedAt)

	// Later responses never change the id again.
	m.ReconcileWithRemote(models.Draft{ID: "app-99"})
	assert.Equal(t, "app-42", m.Get().ID)
}

func TestReconcile_StatusNeverReverts(t *testing.T) {
	m, _ := newModel(t)
	m.ReconcileWithRemote(models.Draft{ID: "app-1"})
	m.MarkSubmitted()

	m.ReconcileWithRemote(models.Draft{ID: "app-1", Status: models.StatusDraft})
	assert.Equal(t, models.StatusSubmitted, m.Get().Status)
}

func TestReconcile_LocalAnswersWin(t *testing.T) {
	m, _ := newModel(t)
	m.SetAnswer("motivation", "local")

	m.ReconcileWithRemote(models.Draft{
		ID:      "app-1",
		Answers: map[string]string{"motivation": "server", "years_experience": "5"},
	})

	d := m.Get()
	assert.Equal(t, "local", d.Answers["motivation"])
	assert.Equal(t, "5", d.Answers["years_experience"])
}

func TestReconcile_PendingSelectionBlocksResumeKeyEcho(t *testing.T) {
	m, _ := newModel(t)
	m.ReconcileWithRemote(models.Draft{ID: "app-1"})

	m.MarkAttachmentPending("resume-v2.pdf")
	m.ReconcileWithRemote(models.Draft{ID: "app-1", ResumeKey: "uploads/old.pdf"})

	d := m.Get()
	assert.Equal(t, "resume-v2.pdf", d.PendingAttachmentName)
	assert.Empty(t, d.ResumeKey)
}

func TestReconcile_IdempotentReplay(t *testing.T) {
	m, _ := newModel(t)
	m.SetAnswer("motivation", "x")

	server := models.Draft{
		ID:        "app-1",
		Status:    models.StatusDraft,
		CreatedAt: t0,
		UpdatedAt: t0.Add(time.Minute),
		Answers:   map[string]string{"motivation": "x"},
	}

	m.ReconcileWithRemote(server)
	once := m.Get()
	m.ReconcileWithRemote(server)
	twice := m.Get()

	assert.Equal(t, once, twice)
}

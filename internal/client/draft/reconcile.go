package draft

import "github.com/daylighthq/daylight-client/internal/client/models"

// ReconcileWithRemote merges a server-returned record into the local draft
// under an explicit ownership table:
//
//	server-owned   id (adopted once, while bootstrapping), createdAt,
//	               status (forward only), submittedAt, resumeKey
//	local-first    answers, eeo (server values fill only absent keys)
//	local-only     pendingAttachmentName, needsBootstrap
//
// The id is adopted exactly once: after NeedsBootstrap clears it never
// changes again, since the outbox and the remote record are addressed by it.
func (m *Model) ReconcileWithRemote(server models.Draft) {
	if m.d.NeedsBootstrap && server.ID != "" {
		m.d.ID = server.ID
		m.d.NeedsBootstrap = false
	}

	if !server.CreatedAt.IsZero() {
		m.d.CreatedAt = server.CreatedAt
	}

	// Status never reverts: a stale SAVE echo carrying DRAFT must not undo
	// a local submission.
	if m.d.Status != models.StatusSubmitted && server.Status == models.StatusSubmitted {
		m.d.Status = models.StatusSubmitted
	}
	if server.SubmittedAt != nil && m.d.SubmittedAt == nil {
		t := *server.SubmittedAt
		m.d.SubmittedAt = &t
	}

	// A freshly queued selection supersedes whatever key the server still
	// echoes back.
	if m.d.PendingAttachmentName == "" && server.ResumeKey != "" {
		m.d.ResumeKey = server.ResumeKey
	}

	for k, v := range server.Answers {
		if _, ok := m.d.Answers[k]; !ok {
			m.d.Answers[k] = v
		}
	}
	for k, v := range server.EEO {
		if _, ok := m.d.EEO[k]; !ok {
			m.d.EEO[k] = v
		}
	}

	if server.UpdatedAt.After(m.d.UpdatedAt) {
		m.d.UpdatedAt = server.UpdatedAt
	}
}

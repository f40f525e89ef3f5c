// Package models defines client-side data models for the daylight
// application flow.
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DraftStatus classifies the lifecycle stage of an application draft.
type DraftStatus string

const (
	StatusDraft     DraftStatus = "DRAFT"
	StatusSubmitted DraftStatus = "SUBMITTED"
)

// LocalIDPrefix marks a placeholder id minted on this device before the
// remote store has acknowledged the draft.
const LocalIDPrefix = "local-"

// Draft is the working copy of an in-progress application.
//
// Invariants maintained by the draft model:
//   - At most one of ResumeKey / PendingAttachmentName is set.
//   - Status only ever moves DRAFT -> SUBMITTED.
//   - NeedsBootstrap is true only while ID is a local placeholder and flips
//     to false exactly once, when the remote store assigns the canonical id.
type Draft struct {
	// ID is either a server-assigned identifier or a local placeholder
	// (see LocalIDPrefix).
	ID string `json:"id"`

	Status DraftStatus `json:"status"`

	// ResumeKey identifies a confirmed, server-addressable attachment.
	ResumeKey string `json:"resumeKey,omitempty"`

	// PendingAttachmentName names an attachment selected but not yet
	// confirmed uploaded. Local-only; never sent to the server.
	PendingAttachmentName string `json:"pendingAttachmentName,omitempty"`

	// Answers maps question keys to free-text answers.
	Answers map[string]string `json:"answers"`

	// EEO maps demographic question keys to answers.
	EEO map[string]string `json:"eeo"`

	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	SubmittedAt *time.Time `json:"submittedAt,omitempty"`

	// NeedsBootstrap is true iff ID is a placeholder never acknowledged by
	// the remote store. Local-only.
	NeedsBootstrap bool `json:"needsBootstrap,omitempty"`
}

// NewLocalDraft mints a fresh draft with a placeholder identity, for use
// when the remote store cannot be reached on first load.
func NewLocalDraft(now time.Time) Draft {
	return Draft{
		ID:             fmt.Sprintf("%s%s", LocalIDPrefix, uuid.NewString()),
		Status:         StatusDraft,
		Answers:        map[string]string{},
		EEO:            map[string]string{},
		CreatedAt:      now,
		UpdatedAt:      now,
		NeedsBootstrap: true,
	}
}

// IsLocalID reports whether id is a placeholder minted on this device.
func IsLocalID(id string) bool {
	return strings.HasPrefix(id, LocalIDPrefix)
}

// Clone returns a deep copy so callers can hand out draft snapshots without
// aliasing the maps.
func (d Draft) Clone() Draft {
	c := d
	c.Answers = make(map[string]string, len(d.Answers))
	for k, v := range d.Answers {
		c.Answers[k] = v
	}
	c.EEO = make(map[string]string, len(d.EEO))
	for k, v := range d.EEO {
		c.EEO[k] = v
	}
	if d.SubmittedAt != nil {
		t := *d.SubmittedAt
		c.SubmittedAt = &t
	}
	return c
}

// Payload projects the draft onto the fields the remote store accepts.
// Local-only bookkeeping (PendingAttachmentName, NeedsBootstrap) is excluded.
func (d Draft) Payload() DraftPayload {
	return DraftPayload{
		Status:      d.Status,
		ResumeKey:   d.ResumeKey,
		Answers:     d.Answers,
		EEO:         d.EEO,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
		SubmittedAt: d.SubmittedAt,
	}
}

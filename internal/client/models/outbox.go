package models

import "time"

// ActionKind is the type of a pending synchronization action. Actions are
// idempotent snapshots of "synchronize current draft state", so the outbox
// keeps at most one entry per kind.
type ActionKind string

const (
	ActionSave   ActionKind = "SAVE"
	ActionSubmit ActionKind = "SUBMIT"
)

// Action is one pending outbox entry.
type Action struct {
	Kind       ActionKind `json:"kind"`
	EnqueuedAt time.Time  `json:"enqueuedAt"`
}

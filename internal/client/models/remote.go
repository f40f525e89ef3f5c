package models

import "time"

// DraftPayload is the full-state overwrite body for the remote update call.
// The remote contract is idempotent by id: re-sending an unchanged payload
// is a no-op on the server.
type DraftPayload struct {
	Status      DraftStatus       `json:"status"`
	ResumeKey   string            `json:"resumeKey,omitempty"`
	Answers     map[string]string `json:"answers"`
	EEO         map[string]string `json:"eeo"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
	SubmittedAt *time.Time        `json:"submittedAt,omitempty"`
}

// UploadCredential is a short-lived, single-use write credential for a
// binary attachment.
type UploadCredential struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// SessionInfo is the result of validating a magic-link session token.
type SessionInfo struct {
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
}

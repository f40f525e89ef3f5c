// Package common defines shared constants and sentinel errors used across
// the daylight client. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Store-level errors.
	ErrorNotFound = errors.New("not found")

	// Remote-call taxonomy. The gateway maps every transport outcome onto
	// exactly one of these so the sync engine's branching stays exhaustive.
	ErrUnavailable  = errors.New("remote unavailable")
	ErrRejected     = errors.New("rejected by remote")
	ErrUnauthorized = errors.New("unauthorized")

	// Token lifecycle errors.
	ErrTokenExpired = errors.New("token expired")

	// Submission preconditions.
	ErrAttachmentMissing = errors.New("attachment missing")
	ErrAttachmentPending = errors.New("attachment pending upload")
	ErrAlreadySubmitted  = errors.New("already submitted")
)

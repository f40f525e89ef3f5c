// Package gateway is the network client for the remote application store:
// CRUD on application records, short-lived upload credentials, the attachment
// upload itself, and magic-link session calls.
//
// Every call is a single request/response with a bounded timeout. Failures
// are mapped onto the shared taxonomy so callers can branch exhaustively:
//
//	common.ErrUnavailable  — timeout, unreachable, 5xx (retryable)
//	common.ErrRejected     — 4xx other than 401 (terminal for the action)
//	common.ErrUnauthorized — 401 (credential invalid or expired)
package gateway

import (
	"context"

	"github.com/daylighthq/daylight-client/internal/client/models"
)

// Gateway is the remote store as consumed by the sync engine and the
// session holder.
type Gateway interface {
	// CreateApplication allocates a new application identity. The server
	// mints the id and timestamps; the call takes no input.
	CreateApplication(ctx context.Context) (*models.Draft, error)

	// UpdateApplication performs an idempotent full-state overwrite keyed
	// by id and returns the server's view of the record.
	UpdateApplication(ctx context.Context, id string, payload models.DraftPayload) (*models.Draft, error)

	// RequestUploadCredential obtains a short-lived, single-use write
	// credential for a binary attachment.
	RequestUploadCredential(ctx context.Context, applicationID, fileName, contentType string) (*models.UploadCredential, error)

	// UploadAttachment writes the attachment bytes against the credential.
	UploadAttachment(ctx context.Context, cred *models.UploadCredential, contentType string, data []byte) error

	// RequestMagicLink asks the server to issue a session link to email.
	// Delivery happens out of band.
	RequestMagicLink(ctx context.Context, email string) error

	// ValidateSession checks the freshness of a magic-link token.
	ValidateSession(ctx context.Context, token string) (*models.SessionInfo, error)

	// Ping probes reachability of the remote store.
	Ping(ctx context.Context) error
}

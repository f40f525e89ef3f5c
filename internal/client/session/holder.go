// Package session holds the magic-link session credential: an opaque bearer
// token obtained out of band, kept sealed at rest, and revalidated against
// the remote store on every reconnect. The credential only gates the
// "resume where you left off" convenience path; draft saving never blocks
// on its validity.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/daylighthq/daylight-client/internal/client/gateway"
	"github.com/daylighthq/daylight-client/internal/client/store"
	"github.com/daylighthq/daylight-client/internal/common"
	"github.com/daylighthq/daylight-client/internal/cryptox"
	"github.com/daylighthq/daylight-client/internal/logging"
	"github.com/daylighthq/daylight-client/internal/timex"
	"github.com/golang-jwt/jwt/v5"
)

// TokenSink receives the active token so outbound requests carry it.
// *gateway.HTTPGateway satisfies this.
type TokenSink interface {
	SetSessionToken(token string)
}

// Holder owns the session credential lifecycle.
type Holder struct {
	st      store.Store
	gw      gateway.Gateway
	sink    TokenSink
	sealKey []byte
	clock   timex.Clock
	log     logging.Logger

	mu        sync.Mutex
	token     string
	email     string
	expiresAt time.Time
	valid     bool
}

// NewHolder builds a Holder. sealKey encrypts the token at rest; sink may be
// nil when no transport needs the token installed.
func NewHolder(st store.Store, gw gateway.Gateway, sink TokenSink, sealKey []byte, clock timex.Clock, log logging.Logger) *Holder {
	return &Holder{st: st, gw: gw, sink: sink, sealKey: sealKey, clock: clock, log: log}
}

// Restore loads a previously stored token, if any. A token that is locally
// decodable and already past its expiry is kept (the server owns the final
// verdict) but marked invalid immediately.
func (h *Holder) Restore(ctx context.Context) error {
	sealed, err := h.st.Get(ctx, store.RecordSessionToken)
	if errors.Is(err, common.ErrorNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("restore session token: %w", err)
	}

	plain, err := cryptox.Open(sealed, h.sealKey)
	if err != nil {
		// A reseal key change or corruption; drop the record rather than
		// carry an unreadable credential.
		h.log.Warn(ctx, "stored session token unreadable, discarding", "error", err)
		return h.st.Delete(ctx, store.RecordSessionToken)
	}

	h.install(string(plain))
	return nil
}

// SetToken installs a token (from the initial page address or a fresh magic
// link) and persists it sealed.
func (h *Holder) SetToken(ctx context.Context, token string) error {
	h.install(token)

	sealed, err := cryptox.Seal([]byte(token), h.sealKey)
	if err != nil {
		return fmt.Errorf("seal session token: %w", err)
	}
	if err := h.st.Put(ctx, store.RecordSessionToken, sealed); err != nil {
		// Degraded durability: the session works for this run but will not
		// survive a restart.
		h.log.Warn(ctx, "session token persist failed", "error", err)
	}
	return nil
}

func (h *Holder) install(token string) {
	h.mu.Lock()
	h.token = token
	h.valid = false
	if exp, ok := peekExpiry(token); ok {
		h.expiresAt = exp
		h.valid = exp.After(h.clock.Now())
	}
	h.mu.Unlock()

	if h.sink != nil {
		h.sink.SetSessionToken(token)
	}
}

// Token returns the current bearer token, "" when absent.
func (h *Holder) Token() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.token
}

// Email returns the address the server associated with the session, known
// only after a successful Revalidate.
func (h *Holder) Email() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.email
}

// Valid reports the last known freshness verdict.
func (h *Holder) Valid() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.valid
}

// Revalidate checks the token against the remote store. On expiry the
// credential is marked invalid and ErrTokenExpired returned; the caller
// surfaces this but draft synchronization is unaffected.
func (h *Holder) Revalidate(ctx context.Context) error {
	token := h.Token()
	if token == "" {
		return nil
	}

	info, err := h.gw.ValidateSession(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrUnauthorized) {
			h.mu.Lock()
			h.valid = false
			h.mu.Unlock()
			return common.ErrTokenExpired
		}
		// Unreachable: keep the previous verdict, retry on next reconnect.
		return err
	}

	h.mu.Lock()
	h.email = info.Email
	h.expiresAt = info.ExpiresAt
	h.valid = true
	h.mu.Unlock()
	return nil
}

// Clear wipes the credential from memory and the store.
func (h *Holder) Clear(ctx context.Context) error {
	h.mu.Lock()
	h.token = ""
	h.email = ""
	h.valid = false
	h.mu.Unlock()

	if h.sink != nil {
		h.sink.SetSessionToken("")
	}
	return h.st.Delete(ctx, store.RecordSessionToken)
}

// peekExpiry decodes the token as a JWT without verifying it, purely to
// read the exp claim locally. Opaque (non-JWT) tokens return ok=false and
// rely on server validation alone.
func peekExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

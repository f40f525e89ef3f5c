package cli

import (
	"bufio"
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"sync"

	"github.com/daylighthq/daylight-client/internal/client/config"
	"github.com/daylighthq/daylight-client/internal/client/gateway"
	"github.com/daylighthq/daylight-client/internal/client/outbox"
	"github.com/daylighthq/daylight-client/internal/client/session"
	"github.com/daylighthq/daylight-client/internal/client/store"
	clientsync "github.com/daylighthq/daylight-client/internal/client/sync"
	"github.com/daylighthq/daylight-client/internal/cryptox"
	"github.com/daylighthq/daylight-client/internal/logging"
	"github.com/daylighthq/daylight-client/internal/timex"
)

// sealSalt fixes the key-derivation salt for the token seal key. The secret
// itself lives in the key file, created on first run.
const sealSalt = "daylight.token.v1"

// App wires the engine, session holder and connectivity monitor behind the
// REPL.
type App struct {
	config  *config.Config
	log     logging.Logger
	db      *sql.DB
	gw      *gateway.HTTPGateway
	engine  *clientsync.Engine
	session *session.Holder
	monitor *clientsync.Monitor
	reader  *bufio.Reader
	out     io.Writer

	mu     sync.Mutex
	status clientsync.Status
}

// NewApp builds the full client: local database, HTTP gateway, sealed
// session holder and sync engine.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	db, err := store.Open(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open local database: %w", err)
	}

	sealKey, err := loadSealKey(c.KeyPath)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	st := store.NewSQLiteStore(db)
	gw := gateway.NewHTTPGateway(c.APIBaseURL, c.RequestTimeout)
	clock := timex.SystemClock{}

	a := &App{
		config:  c,
		log:     log,
		db:      db,
		gw:      gw,
		session: session.NewHolder(st, gw, gw, sealKey, clock, log),
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
	}

	a.engine = clientsync.NewEngine(clientsync.Deps{
		Gateway:        gw,
		Store:          st,
		Queue:          outbox.NewQueue(st, clock, log),
		Log:            log,
		Clock:          clock,
		Timer:          timex.NewSystemTimer(),
		Attachments:    fileSource{},
		RequestTimeout: c.RequestTimeout,
		DebounceWindow: c.DebounceWindow,
		Report:         a.setStatus,
	})

	a.monitor = clientsync.NewMonitor(gw, log, c.OnlineCheckInterval, c.RequestTimeout, a.onReachable, nil)

	return a, nil
}

// Run restores persisted state, starts the connectivity watcher and enters
// the REPL. Blocks until the user exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	defer a.db.Close()

	if err := a.session.Restore(ctx); err != nil {
		return err
	}
	if a.config.SessionToken != "" {
		if err := a.session.SetToken(ctx, a.config.SessionToken); err != nil {
			return err
		}
	}
	if err := a.engine.Restore(ctx); err != nil {
		return err
	}

	go a.monitor.Run(ctx)

	fmt.Fprintln(a.out, "daylight CLI (type 'help' for commands)")
	runREPL(ctx, a, a.statusLine, bufio.NewScanner(os.Stdin))
	return nil
}

// onReachable runs on every offline-to-online transition: revalidate the
// session credential first, then drain whatever queued up while offline.
func (a *App) onReachable(ctx context.Context) {
	if err := a.session.Revalidate(ctx); err != nil {
		a.log.Warn(ctx, "session revalidation failed", "error", err)
	}
	a.engine.Flush(ctx)
}

func (a *App) setStatus(s clientsync.Status) {
	a.mu.Lock()
	a.status = s
	a.mu.Unlock()
}

func (a *App) lastStatus() clientsync.Status {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.status
}

func (a *App) statusLine() string {
	mode := "offline"
	if a.monitor.Online() {
		mode = "online"
	}
	if s := a.lastStatus(); s != "" {
		return fmt.Sprintf("(%s, %s)", mode, s)
	}
	return fmt.Sprintf("(%s)", mode)
}

// loadSealKey derives the token seal key from the secret in the key file,
// minting the secret on first run.
func loadSealKey(path string) ([]byte, error) {
	secret, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("generate seal secret: %w", err)
		}
		if err := os.WriteFile(path, secret, 0o600); err != nil {
			return nil, fmt.Errorf("write key file: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("read key file: %w", err)
	}
	return cryptox.DeriveKey(secret, []byte(sealSalt)), nil
}

// fileSource reads attachment bytes from disk by path, so a selection made
// before a restart can still be uploaded after one.
type fileSource struct{}

func (fileSource) Open(name string) ([]byte, string, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, "", err
	}
	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return data, contentType, nil
}

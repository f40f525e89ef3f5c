package outbox

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/daylighthq/daylight-client/internal/client/models"
	"github.com/daylighthq/daylight-client/internal/client/store"
	"github.com/daylighthq/daylight-client/internal/logging"
	"github.com/daylighthq/daylight-client/internal/timex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

var t0 = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func setupQueue(t *testing.T) (*Queue, *timex.ManualClock, store.Store) {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE records (name TEXT PRIMARY KEY, data BLOB NOT NULL, updated_at INTEGER NOT NULL DEFAULT 0)`)
	require.NoError(t, err)

	st := store.NewSQLiteStore(db)
	clock := timex.NewManualClock(t0)
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return NewQueue(st, clock, log), clock, st
}

func TestEnqueue_DedupsByKind(t *testing.T) {
	q, clock, _ := setupQueue(t)
	ctx := context.Background()

	q.Enqueue(ctx, models.ActionSave)
	clock.Advance(time.Second)
	q.Enqueue(ctx, models.ActionSave)

	require.Equal(t, 1, q.Len())
	head, ok := q.PeekNext()
	require.True(t, ok)
	assert.Equal(t, models.ActionSave, head.Kind)
	assert.Equal(t, t0.Add(time.Second), head.EnqueuedAt)
}

func TestOrdering_SaveFlushesBeforeSubmit(t *testing.T) {
	q, _, _ := setupQueue(t)
	ctx := context.Background()

	// SUBMIT enqueued first, then SAVE: SAVE must still come out first.
	q.Enqueue(ctx, models.ActionSubmit)
	q.Enqueue(ctx, models.ActionSave)

	head, ok := q.PeekNext()
	require.True(t, ok)
	assert.Equal(t, models.ActionSave, head.Kind)

	q.Dequeue(ctx, head)
	head, ok = q.PeekNext()
	require.True(t, ok)
	assert.Equal(t, models.ActionSubmit, head.Kind)

	q.Dequeue(ctx, head)
	assert.True(t, q.IsEmpty())
}

func TestPeekNext_EmptyQueue(t *testing.T) {
	q, _, _ := setupQueue(t)
	_, ok := q.PeekNext()
	assert.False(t, ok)
}

func TestPersistRestore_SurvivesReload(t *testing.T) {
	q, clock, st := setupQueue(t)
	ctx := context.Background()

	q.Enqueue(ctx, models.ActionSave)
	clock.Advance(time.Minute)
	q.Enqueue(ctx, models.ActionSubmit)

	// Simulate a reload: a fresh queue over the same store.
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	restored := NewQueue(st, clock, log)
	require.NoError(t, restored.Restore(ctx))

	require.Equal(t, 2, restored.Len())
	assert.Equal(t, q.Actions(), restored.Actions())
}

func TestRestore_AbsentRecordLeavesEmptyQueue(t *testing.T) {
	q, _, _ := setupQueue(t)
	require.NoError(t, q.Restore(context.Background()))
	assert.True(t, q.IsEmpty())
}

func TestDequeue_PersistsRemoval(t *testing.T) {
	q, clock, st := setupQueue(t)
	ctx := context.Background()

	q.Enqueue(ctx, models.ActionSave)
	head, ok := q.PeekNext()
	require.True(t, ok)
	q.Dequeue(ctx, head)

	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	restored := NewQueue(st, clock, log)
	require.NoError(t, restored.Restore(ctx))
	assert.True(t, restored.IsEmpty())
}

func TestDequeue_RefreshedEntryStaysQueued(t *testing.T) {
	q, _, _ := setupQueue(t)
	ctx := context.Background()

	q.Enqueue(ctx, models.ActionSave)
	head, ok := q.PeekNext()
	require.True(t, ok)

	// Refresh while the peeked entry's call is notionally in flight. The
	// clock has not advanced, so the refresh must still move the timestamp.
	q.Enqueue(ctx, models.ActionSave)
	refreshed, ok := q.PeekNext()
	require.True(t, ok)
	require.True(t, refreshed.EnqueuedAt.After(head.EnqueuedAt))

	// Confirming the stale peek must not drop the refreshed entry.
	q.Dequeue(ctx, head)
	require.Equal(t, 1, q.Len())

	q.Dequeue(ctx, refreshed)
	assert.True(t, q.IsEmpty())
}

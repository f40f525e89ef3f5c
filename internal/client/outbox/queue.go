// Package outbox implements the durable queue of not-yet-confirmed
// synchronization actions. The queue holds at most one entry per action
// kind: actions are idempotent snapshots of "synchronize current draft
// state", so only the latest of each kind matters.
package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/daylighthq/daylight-client/internal/client/models"
	"github.com/daylighthq/daylight-client/internal/client/store"
	"github.com/daylighthq/daylight-client/internal/common"
	"github.com/daylighthq/daylight-client/internal/logging"
	"github.com/daylighthq/daylight-client/internal/timex"
)

// Queue is the pending-action outbox. It is not safe for concurrent use;
// the sync engine serializes access.
type Queue struct {
	st      store.Store
	clock   timex.Clock
	log     logging.Logger
	actions []models.Action
}

func NewQueue(st store.Store, clock timex.Clock, log logging.Logger) *Queue {
	return &Queue{st: st, clock: clock, log: log}
}

// Enqueue adds an action, or refreshes its timestamp when the kind is
// already queued. A refresh always advances the timestamp, so Dequeue can
// tell a refreshed entry apart from the one it peeked. Every enqueue
// persists the queue so it survives a reload mid-sync; a storage failure
// degrades durability but is not fatal.
func (q *Queue) Enqueue(ctx context.Context, kind models.ActionKind) {
	now := q.clock.Now()

	for i := range q.actions {
		if q.actions[i].Kind == kind {
			if !now.After(q.actions[i].EnqueuedAt) {
				now = q.actions[i].EnqueuedAt.Add(time.Nanosecond)
			}
			q.actions[i].EnqueuedAt = now
			q.persist(ctx)
			return
		}
	}

	q.actions = append(q.actions, models.Action{Kind: kind, EnqueuedAt: now})
	q.persist(ctx)
}

// PeekNext returns the head action without removing it. Ordering is FIFO by
// first enqueue among distinct kinds, except a pending SAVE is always
// flushed before SUBMIT: a submission must reflect the latest saved answers.
func (q *Queue) PeekNext() (models.Action, bool) {
	if len(q.actions) == 0 {
		return models.Action{}, false
	}
	for _, a := range q.actions {
		if a.Kind == models.ActionSave {
			return a, true
		}
	}
	return q.actions[0], true
}

// Dequeue removes the given peeked action after its remote call has been
// confirmed. An entry that was refreshed since the peek stays queued: the
// confirmed call carried an older snapshot, so the entry's newer state has
// not been sent yet and must drain on the next pass.
func (q *Queue) Dequeue(ctx context.Context, peeked models.Action) {
	for i, a := range q.actions {
		if a.Kind == peeked.Kind {
			if !a.EnqueuedAt.Equal(peeked.EnqueuedAt) {
				return
			}
			q.actions = append(q.actions[:i], q.actions[i+1:]...)
			q.persist(ctx)
			return
		}
	}
}

func (q *Queue) IsEmpty() bool {
	return len(q.actions) == 0
}

func (q *Queue) Len() int {
	return len(q.actions)
}

// Actions returns a copy of the queued actions in storage order.
func (q *Queue) Actions() []models.Action {
	out := make([]models.Action, len(q.actions))
	copy(out, q.actions)
	return out
}

// Reset drops the in-memory queue without touching the store. Used after
// the terminal clear, where the store records are deleted transactionally.
func (q *Queue) Reset() {
	q.actions = nil
}

// Persist writes the queue snapshot to the local store.
func (q *Queue) Persist(ctx context.Context) error {
	data, err := json.Marshal(q.actions)
	if err != nil {
		return fmt.Errorf("encode outbox: %w", err)
	}
	if err := q.st.Put(ctx, store.RecordOutbox, data); err != nil {
		return fmt.Errorf("persist outbox: %w", err)
	}
	return nil
}

// Restore loads the queue snapshot from the local store. An absent record
// leaves the queue empty.
func (q *Queue) Restore(ctx context.Context) error {
	data, err := q.st.Get(ctx, store.RecordOutbox)
	if errors.Is(err, common.ErrorNotFound) {
		q.actions = nil
		return nil
	}
	if err != nil {
		return fmt.Errorf("restore outbox: %w", err)
	}

	var actions []models.Action
	if err := json.Unmarshal(data, &actions); err != nil {
		return fmt.Errorf("decode outbox: %w", err)
	}
	q.actions = actions
	return nil
}

func (q *Queue) persist(ctx context.Context) {
	if err := q.Persist(ctx); err != nil {
		q.log.Warn(ctx, "outbox persist failed, continuing from memory", "error", err)
	}
}

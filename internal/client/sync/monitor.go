package sync

import (
	"context"
	"sync"
	"time"

	"github.com/daylighthq/daylight-client/internal/client/gateway"
	"github.com/daylighthq/daylight-client/internal/logging"
)

// Monitor polls the remote store and emits edge events on reachability
// transitions. Only the transition to reachable triggers work downstream;
// there is nothing useful to send when the network goes away.
type Monitor struct {
	gw       gateway.Gateway
	log      logging.Logger
	interval time.Duration
	timeout  time.Duration

	// onReachable runs session revalidation first, then a flush attempt.
	onReachable   func(ctx context.Context)
	onUnreachable func(ctx context.Context)

	mu     sync.Mutex
	online bool
}

// NewMonitor builds a Monitor. Either callback may be nil. The monitor
// starts out assuming unreachable, so the first successful probe fires
// onReachable and drains anything queued while the process was down.
func NewMonitor(gw gateway.Gateway, log logging.Logger, interval, timeout time.Duration, onReachable, onUnreachable func(ctx context.Context)) *Monitor {
	return &Monitor{
		gw:            gw,
		log:           log,
		interval:      interval,
		timeout:       timeout,
		onReachable:   onReachable,
		onUnreachable: onUnreachable,
	}
}

// Online reports the last observed reachability.
func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// Run probes until ctx is cancelled. Blocking; callers run it in a
// goroutine.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.Probe(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// Probe performs a single reachability check and fires the edge callbacks
// on a transition.
func (m *Monitor) Probe(ctx context.Context) {
	pingCtx, cancel := context.WithTimeout(ctx, m.timeout)
	err := m.gw.Ping(pingCtx)
	cancel()

	reachable := err == nil

	m.mu.Lock()
	changed := reachable != m.online
	m.online = reachable
	m.mu.Unlock()

	if !changed {
		return
	}

	if reachable {
		m.log.Info(ctx, "remote store became reachable")
		if m.onReachable != nil {
			m.onReachable(ctx)
		}
		return
	}

	m.log.Info(ctx, "remote store became unreachable")
	if m.onUnreachable != nil {
		m.onUnreachable(ctx)
	}
}

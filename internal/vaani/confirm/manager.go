package confirm

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bdobrica/Vaani/internal/vaani/action"
	"github.com/bdobrica/Vaani/internal/vaani/clock"
	"github.com/bdobrica/Vaani/internal/vaani/lang"
	"github.com/bdobrica/Vaani/internal/vaani/metrics"
)

// Config tunes a Manager. Zero fields take the package defaults.
type Config struct {
	// Timeout is how long a request stays open for a decision.
	Timeout time.Duration
	// Grace is how long a record is kept after expiry before Sweep purges it.
	Grace time.Duration
	// SweepInterval is the period of the Run loop.
	SweepInterval time.Duration
	Clock         clock.Clock
}

// Manager owns the table of confirmation records. All transitions happen
// under one mutex and re-check the terminal state, so a decision and an
// expiry racing on the same record resolve it exactly once.
type Manager struct {
	timeout  time.Duration
	grace    time.Duration
	interval time.Duration
	clk      clock.Clock

	mu        sync.Mutex
	records   map[string]*record
	onTimeout TimeoutFunc
}

type record struct {
	Pending
	timer clock.Timer
}

// New creates a Manager.
func New(cfg Config) *Manager {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Grace < 0 {
		cfg.Grace = 0
	} else if cfg.Grace == 0 {
		cfg.Grace = DefaultGrace
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = DefaultSweepInterval
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.Real{}
	}
	return &Manager{
		timeout:  cfg.Timeout,
		grace:    cfg.Grace,
		interval: cfg.SweepInterval,
		clk:      cfg.Clock,
		records:  make(map[string]*record),
	}
}

// Timeout returns the configured decision window.
func (m *Manager) Timeout() time.Duration { return m.timeout }

// SetTimeoutCallback registers fn to be told about records that expire
// undecided. A nil fn clears the callback.
func (m *Manager) SetTimeoutCallback(fn TimeoutFunc) {
	m.mu.Lock()
	m.onTimeout = fn
	m.mu.Unlock()
}

// Request opens a new confirmation and returns its ID.
func (m *Manager) Request(key action.Key, text string, language lang.Language, details map[string]any, origin string) string {
	now := m.clk.Now()
	rec := &record{Pending: Pending{
		ID:        uuid.NewString(),
		Key:       key,
		Text:      text,
		Language:  language,
		Details:   details,
		Origin:    origin,
		CreatedAt: now,
		ExpiresAt: now.Add(m.timeout),
		State:     StatePending,
	}}
	rec.Pending = rec.Pending.clone()

	m.mu.Lock()
	m.records[rec.ID] = rec
	rec.timer = m.clk.AfterFunc(m.timeout, func() { m.expire(rec.ID) })
	m.mu.Unlock()

	metrics.ConfirmationsTotal.WithLabelValues("opened").Inc()
	slog.Debug("confirm: request opened", "id", rec.ID, "action", key, "expires_at", rec.ExpiresAt)
	return rec.ID
}

// Decide resolves a pending record. It returns the resolved snapshot and
// true only when the record exists, is still pending and has not passed its
// expiry time. A decision that arrives at or after expiry times the record
// out instead and returns false.
func (m *Manager) Decide(id string, approved bool) (Pending, bool) {
	m.mu.Lock()
	rec, ok := m.records[id]
	if !ok || rec.State.Terminal() {
		m.mu.Unlock()
		return Pending{}, false
	}

	now := m.clk.Now()
	if !now.Before(rec.ExpiresAt) {
		snap, cb := m.timeOutLocked(rec, now)
		m.mu.Unlock()
		if cb != nil {
			cb(snap)
		}
		return Pending{}, false
	}

	if rec.timer != nil {
		rec.timer.Stop()
	}
	rec.State = StateRejected
	if approved {
		rec.State = StateApproved
	}
	rec.ResolvedAt = now
	snap := rec.Pending.clone()
	m.mu.Unlock()

	metrics.ConfirmationsTotal.WithLabelValues(string(snap.State)).Inc()
	slog.Info("confirm: decided", "id", id, "action", snap.Key, "state", snap.State)
	return snap, true
}

// Get returns a snapshot of the record with the given ID.
func (m *Manager) Get(id string) (Pending, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	if !ok {
		return Pending{}, false
	}
	return rec.Pending.clone(), true
}

// Pending lists the records still awaiting a decision, oldest first.
func (m *Manager) Pending() []Pending {
	m.mu.Lock()
	out := make([]Pending, 0, len(m.records))
	for _, rec := range m.records {
		if rec.State == StatePending {
			out = append(out, rec.Pending.clone())
		}
	}
	m.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Len returns the number of records currently held, resolved or not.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

// Sweep purges every record whose expiry plus the grace window has passed
// and returns how many were removed. A record still pending at that point
// is timed out first so its callback is not lost.
func (m *Manager) Sweep() int {
	now := m.clk.Now()
	var expired []Pending
	var cb TimeoutFunc

	m.mu.Lock()
	removed := 0
	for id, rec := range m.records {
		if now.Before(rec.ExpiresAt.Add(m.grace)) {
			continue
		}
		if rec.State == StatePending {
			snap, fn := m.timeOutLocked(rec, now)
			if fn != nil {
				cb = fn
				expired = append(expired, snap)
			}
		}
		delete(m.records, id)
		removed++
	}
	m.mu.Unlock()

	for _, p := range expired {
		cb(p)
	}
	if removed > 0 {
		slog.Debug("confirm: swept records", "count", removed)
	}
	return removed
}

// Run sweeps periodically until ctx is cancelled.
func (m *Manager) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-m.clk.After(m.interval):
			m.Sweep()
		}
	}
}

func (m *Manager) expire(id string) {
	m.mu.Lock()
	rec, ok := m.records[id]
	if !ok || rec.State.Terminal() {
		m.mu.Unlock()
		return
	}
	snap, cb := m.timeOutLocked(rec, m.clk.Now())
	m.mu.Unlock()

	if cb != nil {
		cb(snap)
	}
}

// timeOutLocked moves a pending record to StateTimedOut. The caller holds
// m.mu and must invoke the returned callback, if any, after unlocking.
func (m *Manager) timeOutLocked(rec *record, now time.Time) (Pending, TimeoutFunc) {
	if rec.timer != nil {
		rec.timer.Stop()
	}
	rec.State = StateTimedOut
	rec.ResolvedAt = now
	metrics.ConfirmationsTotal.WithLabelValues(string(StateTimedOut)).Inc()
	slog.Info("confirm: timed out", "id", rec.ID, "action", rec.Key)
	return rec.Pending.clone(), m.onTimeout
}

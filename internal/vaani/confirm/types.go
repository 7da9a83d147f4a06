// Package confirm implements the timed approval step that gates sensitive
// actions.
//
// A handler that wants approval returns a result flagged RequiresConfirmation;
// the router then mints a Pending record here. The record is resolved exactly
// once: by an explicit approve/reject decision, or by its expiry timer,
// whichever happens first. Resolved records linger for a grace window so late
// decisions can be answered precisely, then a periodic sweep purges them.
package confirm

import (
	"time"

	"github.com/bdobrica/Vaani/internal/vaani/action"
	"github.com/bdobrica/Vaani/internal/vaani/lang"
)

// State is the lifecycle state of a confirmation. Every state other than
// StatePending is terminal.
type State string

const (
	StatePending  State = "pending"
	StateApproved State = "approved"
	StateRejected State = "rejected"
	StateTimedOut State = "timed_out"
)

// Terminal reports whether s can no longer change.
func (s State) Terminal() bool { return s != StatePending }

// Defaults applied by New when the Config leaves a field zero.
const (
	DefaultTimeout       = 30 * time.Second
	DefaultGrace         = 5 * time.Minute
	DefaultSweepInterval = time.Minute
)

// Pending is one approval request. Values handed out by the Manager are
// snapshots; mutating them has no effect on the stored record.
type Pending struct {
	ID string `json:"id"`

	// Key is the action the approval unlocks.
	Key action.Key `json:"command_key"`

	// Text is the original command text.
	Text     string        `json:"text"`
	Language lang.Language `json:"language"`

	// Details is the structured payload the handler returned, seeded by the
	// router with enough to re-invoke the action.
	Details map[string]any `json:"details,omitempty"`

	// Origin is an opaque reply address supplied by the transport that
	// created the request (a Matrix room ID, for example).
	Origin string `json:"origin,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	State     State     `json:"state"`

	// ResolvedAt is zero while the record is pending.
	ResolvedAt time.Time `json:"resolved_at,omitempty"`
}

// TimeoutFunc is notified once per record that expires undecided. It runs
// on the timer goroutine and must not block for long.
type TimeoutFunc func(p Pending)

func (p Pending) clone() Pending {
	if p.Details != nil {
		d := make(map[string]any, len(p.Details))
		for k, v := range p.Details {
			d[k] = v
		}
		p.Details = d
	}
	return p
}

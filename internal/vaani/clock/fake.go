package clock

import (
	"sort"
	"sync"
	"time"
)

// Fake is a manually advanced Clock for tests. Waiters registered through
// After or AfterFunc fire only when Advance moves the clock past their
// deadline.
type Fake struct {
	mu      sync.Mutex
	current time.Time
	waiters []*fakeWaiter
	total   int // cumulative number of After/AfterFunc calls
}

type fakeWaiter struct {
	fireAt  time.Time
	ch      chan time.Time
	fn      func()
	stopped bool
}

// NewFake returns a Fake positioned at start.
func NewFake(start time.Time) *Fake {
	return &Fake{current: start}
}

// Now returns the fake current time.
func (c *Fake) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// After returns a channel that receives once the clock is advanced by d.
func (c *Fake) After(d time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	c.add(&fakeWaiter{ch: ch}, d)
	return ch
}

// AfterFunc schedules f to run on the goroutine calling Advance once the
// clock passes now+d.
func (c *Fake) AfterFunc(d time.Duration, f func()) Timer {
	w := &fakeWaiter{fn: f}
	c.add(w, d)
	return &fakeTimer{clock: c, w: w}
}

func (c *Fake) add(w *fakeWaiter, d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	w.fireAt = c.current.Add(d)
	c.waiters = append(c.waiters, w)
	c.total++
}

// Advance moves the clock forward by d and fires every waiter whose deadline
// has been reached, earliest first. Functions run after the internal lock is
// released so they may call back into the clock.
func (c *Fake) Advance(d time.Duration) {
	c.mu.Lock()
	c.current = c.current.Add(d)
	now := c.current
	var due, remaining []*fakeWaiter
	for _, w := range c.waiters {
		switch {
		case w.stopped:
		case !now.Before(w.fireAt):
			due = append(due, w)
		default:
			remaining = append(remaining, w)
		}
	}
	c.waiters = remaining
	c.mu.Unlock()

	sort.SliceStable(due, func(i, j int) bool { return due[i].fireAt.Before(due[j].fireAt) })
	for _, w := range due {
		if w.ch != nil {
			w.ch <- w.fireAt
			continue
		}
		w.fn()
	}
}

// WaitForWaiters blocks until at least n After/AfterFunc calls have been made
// in total, or until timeout elapses. The count is cumulative so it stays
// meaningful when earlier waiters were already consumed.
func (c *Fake) WaitForWaiters(n int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if c.TotalWaiters() >= n {
			return true
		}
		time.Sleep(time.Millisecond)
	}
	return false
}

// TotalWaiters returns the cumulative number of After/AfterFunc calls.
func (c *Fake) TotalWaiters() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total
}

// Pending returns the number of waiters that have not fired or been stopped.
func (c *Fake) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, w := range c.waiters {
		if !w.stopped {
			n++
		}
	}
	return n
}

type fakeTimer struct {
	clock *Fake
	w     *fakeWaiter
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	for _, w := range t.clock.waiters {
		if w == t.w && !w.stopped {
			w.stopped = true
			return true
		}
	}
	return false
}

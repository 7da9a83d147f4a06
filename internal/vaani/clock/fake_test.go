package clock_test

import (
	"testing"
	"time"

	"github.com/bdobrica/Vaani/internal/vaani/clock"
)

var start = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestFake_AfterFiresOnAdvance(t *testing.T) {
	c := clock.NewFake(start)
	ch := c.After(10 * time.Second)

	c.Advance(9 * time.Second)
	select {
	case <-ch:
		t.Fatal("fired early")
	default:
	}

	c.Advance(time.Second)
	select {
	case at := <-ch:
		if !at.Equal(start.Add(10 * time.Second)) {
			t.Errorf("fired with %v", at)
		}
	default:
		t.Fatal("did not fire at deadline")
	}
	if !c.Now().Equal(start.Add(10 * time.Second)) {
		t.Errorf("Now: got %v", c.Now())
	}
}

func TestFake_AfterFuncOrderAndStop(t *testing.T) {
	c := clock.NewFake(start)
	var order []int
	c.AfterFunc(3*time.Second, func() { order = append(order, 3) })
	c.AfterFunc(1*time.Second, func() { order = append(order, 1) })
	stopped := c.AfterFunc(2*time.Second, func() { order = append(order, 2) })

	if !stopped.Stop() {
		t.Error("Stop on a pending timer should report true")
	}
	if stopped.Stop() {
		t.Error("second Stop should report false")
	}
	if c.Pending() != 2 {
		t.Errorf("Pending: got %d, want 2", c.Pending())
	}

	c.Advance(5 * time.Second)
	if len(order) != 2 || order[0] != 1 || order[1] != 3 {
		t.Errorf("fire order: got %v, want [1 3]", order)
	}
	if c.Pending() != 0 {
		t.Errorf("Pending after fire: got %d", c.Pending())
	}
}

func TestFake_CallbackMayRearm(t *testing.T) {
	c := clock.NewFake(start)
	fired := 0
	var arm func()
	arm = func() {
		c.AfterFunc(time.Second, func() {
			fired++
			arm()
		})
	}
	arm()
	for i := 0; i < 3; i++ {
		c.Advance(time.Second)
	}
	if fired != 3 {
		t.Errorf("fired: got %d, want 3", fired)
	}
}

func TestFake_WaitForWaiters(t *testing.T) {
	c := clock.NewFake(start)
	go c.After(time.Minute)
	if !c.WaitForWaiters(1, time.Second) {
		t.Fatal("waiter never registered")
	}
	if c.WaitForWaiters(2, 10*time.Millisecond) {
		t.Error("reported a waiter that does not exist")
	}
}

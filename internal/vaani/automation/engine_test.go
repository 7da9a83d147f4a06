package automation_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/bdobrica/Vaani/internal/vaani/automation"
	"github.com/bdobrica/Vaani/internal/vaani/clock"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// Monday 5 January 2026, 07:00 UTC.
var epoch = time.Date(2026, 1, 5, 7, 0, 0, 0, time.UTC)

// ────────────────────────────────────────────────────────────────────────────
// Helpers
// ────────────────────────────────────────────────────────────────────────────

// memRepo is an in-memory Repository that records every save.
type memRepo struct {
	mu         sync.Mutex
	tasks      []automation.Task
	macros     []automation.Macro
	taskSaves  int
	macroSaves int
	loadErr    error
}

func (r *memRepo) LoadTasks(context.Context) ([]automation.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loadErr != nil {
		return nil, r.loadErr
	}
	return append([]automation.Task(nil), r.tasks...), nil
}

func (r *memRepo) SaveTasks(_ context.Context, tasks []automation.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks = append([]automation.Task(nil), tasks...)
	r.taskSaves++
	return nil
}

func (r *memRepo) LoadMacros(context.Context) ([]automation.Macro, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loadErr != nil {
		return nil, r.loadErr
	}
	return append([]automation.Macro(nil), r.macros...), nil
}

func (r *memRepo) SaveMacros(_ context.Context, macros []automation.Macro) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.macros = append([]automation.Macro(nil), macros...)
	r.macroSaves++
	return nil
}

func (r *memRepo) savedTask(id string) (automation.Task, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return automation.Task{}, false
}

func newEngine(t *testing.T) (*automation.Engine, *clock.Fake, *memRepo) {
	t.Helper()
	clk := clock.NewFake(epoch)
	repo := &memRepo{}
	eng := automation.New(automation.Config{Repository: repo, Clock: clk})
	t.Cleanup(eng.Stop)
	return eng, clk, repo
}

// startEngine runs the scheduler loop until the test ends.
func startEngine(t *testing.T, eng *automation.Engine) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = eng.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

func mustCreateTask(t *testing.T, eng *automation.Engine, task automation.Task) automation.Task {
	t.Helper()
	created, err := eng.CreateTask(context.Background(), task)
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	return created
}

func mustCreateMacro(t *testing.T, eng *automation.Engine, m automation.Macro) automation.Macro {
	t.Helper()
	created, err := eng.CreateMacro(context.Background(), m)
	if err != nil {
		t.Fatalf("CreateMacro: %v", err)
	}
	return created
}

func recv[T any](t *testing.T, ch <-chan T, what string) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
	var zero T
	return zero
}

func expectNothing[T any](t *testing.T, ch <-chan T, what string) {
	t.Helper()
	select {
	case v := <-ch:
		t.Fatalf("unexpected %s: %v", what, v)
	case <-time.After(50 * time.Millisecond):
	}
}

// ────────────────────────────────────────────────────────────────────────────
// Scheduler
// ────────────────────────────────────────────────────────────────────────────

func TestDailyTask_FiresOncePerDayAtItsTime(t *testing.T) {
	eng, clk, _ := newEngine(t)
	mustCreateTask(t, eng, automation.Task{
		Name: "Morning", Command: "show_desktop", Kind: automation.Daily, Value: "08:00", Enabled: true,
	})

	fired := make(chan time.Time, 16)
	eng.SetDefaultTaskCallback(func(_ context.Context, task automation.Task) error {
		fired <- task.LastRun
		return nil
	})
	startEngine(t, eng)

	if !clk.WaitForWaiters(1, time.Second) {
		t.Fatal("scheduler never armed a timer")
	}

	fires := 0
	for h := 1; h <= 72; h++ {
		clk.Advance(time.Hour)
		now := clk.Now()
		if now.Hour() != 8 {
			continue
		}
		got := recv(t, fired, "daily fire")
		if !got.Equal(now) {
			t.Fatalf("fire %d at %v, want %v", fires+1, got, now)
		}
		fires++
		if !clk.WaitForWaiters(1+fires, time.Second) {
			t.Fatal("scheduler did not re-arm after firing")
		}
	}
	expectNothing(t, fired, "extra fire")
	if fires != 3 {
		t.Errorf("fires over three days: got %d, want 3", fires)
	}
}

func TestIntervalTask_FiresEveryInterval(t *testing.T) {
	eng, clk, _ := newEngine(t)
	task := mustCreateTask(t, eng, automation.Task{
		Name: "Check", Command: "system_status", Kind: automation.Interval, Value: "60", Enabled: true,
	})

	fired := make(chan automation.Task, 16)
	eng.SetTaskCallback(task.ID, func(_ context.Context, t automation.Task) error {
		fired <- t
		return nil
	})
	startEngine(t, eng)

	if !clk.WaitForWaiters(1, time.Second) {
		t.Fatal("scheduler never armed a timer")
	}
	for i := 1; i <= 5; i++ {
		clk.Advance(30 * time.Minute)
		expectNothing(t, fired, "early fire")
		clk.Advance(30 * time.Minute)

		got := recv(t, fired, "interval fire")
		if want := epoch.Add(time.Duration(i) * time.Hour); !got.LastRun.Equal(want) {
			t.Errorf("fire %d at %v, want %v", i, got.LastRun, want)
		}
		if got.RunCount != i {
			t.Errorf("RunCount: got %d, want %d", got.RunCount, i)
		}
		if !clk.WaitForWaiters(1+i, time.Second) {
			t.Fatal("scheduler did not re-arm")
		}
	}
}

func TestOnceTask_DisablesItselfAfterFiring(t *testing.T) {
	eng, clk, repo := newEngine(t)
	task := mustCreateTask(t, eng, automation.Task{
		Name: "Reminder", Command: "time", Kind: automation.Once, Value: "07:30", Enabled: true,
	})

	fired := make(chan automation.Task, 4)
	eng.SetDefaultTaskCallback(func(_ context.Context, t automation.Task) error {
		fired <- t
		return nil
	})
	startEngine(t, eng)

	if !clk.WaitForWaiters(1, time.Second) {
		t.Fatal("scheduler never armed a timer")
	}
	clk.Advance(30 * time.Minute)
	recv(t, fired, "once fire")

	got, _ := eng.Task(task.ID)
	if got.Enabled {
		t.Error("once task still enabled after firing")
	}
	if saved, ok := repo.savedTask(task.ID); !ok || saved.Enabled || saved.RunCount != 1 {
		t.Errorf("persisted task: got %+v (found=%v)", saved, ok)
	}
	if len(eng.Status().NextRuns) != 0 {
		t.Errorf("NextRuns after once fire: %+v", eng.Status().NextRuns)
	}

	clk.Advance(48 * time.Hour)
	expectNothing(t, fired, "second fire of a once task")
}

func TestWeeklyTask_NextRunIsOnConfiguredDay(t *testing.T) {
	eng, _, _ := newEngine(t)
	mustCreateTask(t, eng, automation.Task{
		Name: "Cleanup", Command: "cleanup_temp", Kind: automation.Weekly, Value: "10:00",
		Days: []string{"Sunday", "wednesday"}, Enabled: true,
	})

	next := eng.Status().NextRuns
	if len(next) != 1 {
		t.Fatalf("NextRuns: got %+v", next)
	}
	if want := time.Date(2026, 1, 7, 10, 0, 0, 0, time.UTC); !next[0].At.Equal(want) {
		t.Errorf("next weekly run: got %v, want %v", next[0].At, want)
	}
}

func TestCallbackError_DoesNotStopScheduler(t *testing.T) {
	eng, clk, _ := newEngine(t)
	mustCreateTask(t, eng, automation.Task{
		Name: "Flaky", Command: "battery", Kind: automation.Interval, Value: "10m", Enabled: true,
	})

	calls := make(chan struct{}, 8)
	eng.SetDefaultTaskCallback(func(context.Context, automation.Task) error {
		calls <- struct{}{}
		return errors.New("boom")
	})
	startEngine(t, eng)

	for i := 1; i <= 3; i++ {
		if !clk.WaitForWaiters(i, time.Second) {
			t.Fatalf("scheduler not waiting before fire %d", i)
		}
		clk.Advance(10 * time.Minute)
		recv(t, calls, "callback")
	}
}

func TestTaskMutations_RebuildSchedule(t *testing.T) {
	eng, _, repo := newEngine(t)
	ctx := context.Background()
	task := mustCreateTask(t, eng, automation.Task{
		Name: "Morning", Command: "show_desktop", Kind: automation.Daily, Value: "08:00",
	})
	if n := len(eng.Status().NextRuns); n != 0 {
		t.Fatalf("disabled task scheduled: %d next runs", n)
	}

	if _, err := eng.ToggleTask(ctx, task.ID); err != nil {
		t.Fatalf("ToggleTask: %v", err)
	}
	next := eng.Status().NextRuns
	if len(next) != 1 || !next[0].At.Equal(epoch.Add(time.Hour)) {
		t.Fatalf("after enable: %+v", next)
	}

	if _, err := eng.UpdateTask(ctx, task.ID, func(t *automation.Task) { t.Value = "09:15" }); err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	next = eng.Status().NextRuns
	if len(next) != 1 || !next[0].At.Equal(epoch.Add(2*time.Hour+15*time.Minute)) {
		t.Fatalf("after update: %+v", next)
	}

	if _, err := eng.UpdateTask(ctx, task.ID, func(t *automation.Task) { t.Value = "25:99" }); !errors.Is(err, automation.ErrInvalidSchedule) {
		t.Errorf("invalid update: got %v, want ErrInvalidSchedule", err)
	}
	if got, _ := eng.Task(task.ID); got.Value != "09:15" {
		t.Errorf("invalid update was applied: %q", got.Value)
	}

	if _, err := eng.SetTaskEnabled(ctx, task.ID, false); err != nil {
		t.Fatalf("SetTaskEnabled: %v", err)
	}
	if n := len(eng.Status().NextRuns); n != 0 {
		t.Errorf("disabled task still scheduled")
	}

	if err := eng.DeleteTask(ctx, task.ID); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	if _, ok := eng.Task(task.ID); ok {
		t.Error("task still present after delete")
	}
	if err := eng.DeleteTask(ctx, task.ID); !errors.Is(err, automation.ErrTaskNotFound) {
		t.Errorf("second delete: got %v, want ErrTaskNotFound", err)
	}
	if repo.taskSaves < 5 {
		t.Errorf("expected a save per mutation, got %d", repo.taskSaves)
	}
}

func TestCreateTask_RejectsInvalidSchedules(t *testing.T) {
	eng, _, _ := newEngine(t)
	tests := []struct {
		name string
		task automation.Task
	}{
		{"bad time", automation.Task{Name: "x", Command: "time", Kind: automation.Daily, Value: "8am"}},
		{"weekly without days", automation.Task{Name: "x", Command: "time", Kind: automation.Weekly, Value: "10:00"}},
		{"bad weekday", automation.Task{Name: "x", Command: "time", Kind: automation.Weekly, Value: "10:00", Days: []string{"funday"}}},
		{"zero interval", automation.Task{Name: "x", Command: "time", Kind: automation.Interval, Value: "0"}},
		{"bad once", automation.Task{Name: "x", Command: "time", Kind: automation.Once, Value: "tomorrow"}},
		{"unknown kind", automation.Task{Name: "x", Command: "time", Kind: "hourly", Value: "1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := eng.CreateTask(context.Background(), tt.task); !errors.Is(err, automation.ErrInvalidSchedule) {
				t.Errorf("got %v, want ErrInvalidSchedule", err)
			}
		})
	}
	if _, err := eng.CreateTask(context.Background(), automation.Task{Name: "x", Kind: automation.Daily, Value: "08:00"}); !errors.Is(err, automation.ErrInvalidTask) {
		t.Errorf("missing command: got %v, want ErrInvalidTask", err)
	}
}

func TestLoad_RepositoryErrorYieldsEmptyTables(t *testing.T) {
	clk := clock.NewFake(epoch)
	repo := &memRepo{
		tasks:   []automation.Task{{ID: "t1", Name: "a", Command: "time", Kind: automation.Daily, Value: "08:00"}},
		loadErr: errors.New("disk on fire"),
	}
	eng := automation.New(automation.Config{Repository: repo, Clock: clk})
	eng.Load(context.Background())
	if n := len(eng.Tasks()); n != 0 {
		t.Errorf("Tasks after failed load: %d", n)
	}
}

func TestLoad_RestoresDefinitions(t *testing.T) {
	clk := clock.NewFake(epoch)
	repo := &memRepo{
		tasks: []automation.Task{
			{ID: "t1", Name: "a", Command: "time", Kind: automation.Daily, Value: "08:00", Enabled: true, RunCount: 4},
		},
		macros: []automation.Macro{
			{ID: "m1", Name: "Work Mode", Trigger: automation.TriggerVoice, TriggerPhrase: "work mode", Enabled: true,
				Steps: []automation.Step{{Command: "open_app"}}},
		},
	}
	eng := automation.New(automation.Config{Repository: repo, Clock: clk})
	eng.Load(context.Background())

	st := eng.Status()
	if st.Tasks != 1 || st.EnabledTasks != 1 || st.Macros != 1 || st.EnabledMacros != 1 {
		t.Errorf("Status: %+v", st)
	}
	if got, _ := eng.Task("t1"); got.RunCount != 4 {
		t.Errorf("RunCount not restored: %d", got.RunCount)
	}
}

package automation

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/bdobrica/Vaani/internal/vaani/clock"
	"github.com/bdobrica/Vaani/internal/vaani/metrics"
)

// DefaultMaxDepth allows a macro to run but not to start another macro.
const DefaultMaxDepth = 1

// Config wires an Engine to its collaborators.
type Config struct {
	// Repository persists definitions; nil keeps everything in memory.
	Repository Repository
	Clock      clock.Clock
	// MaxDepth bounds macro nesting; zero means DefaultMaxDepth.
	MaxDepth int
	// Location evaluates daily and weekly times; nil means the location
	// of the clock's Now.
	Location *time.Location
}

// Engine owns the task and macro tables and the single scheduler loop.
type Engine struct {
	repo     Repository
	clk      clock.Clock
	maxDepth int
	loc      *time.Location

	mu          sync.Mutex
	tasks       map[string]*Task
	macros      map[string]*Macro
	entries     map[string]*entry
	callbacks   map[string]TaskFunc
	defaultCB   TaskFunc
	running     bool
	stopping    bool
	wake        chan struct{}
	runs        map[uint64]context.CancelFunc
	nextRunID   uint64
	activeRuns  int
	callbacksWG sync.WaitGroup
	runsWG      sync.WaitGroup

	// persistMu orders repository writes so a later snapshot never lands
	// before an earlier one.
	persistMu sync.Mutex
}

// entry is one compiled, enabled task in the schedule table.
type entry struct {
	sched cron.Schedule
	next  time.Time
}

// New returns an idle Engine. Call Load to read persisted definitions and
// Run to start the scheduler.
func New(cfg Config) *Engine {
	if cfg.Clock == nil {
		cfg.Clock = clock.Real{}
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = DefaultMaxDepth
	}
	return &Engine{
		repo:      cfg.Repository,
		clk:       cfg.Clock,
		maxDepth:  cfg.MaxDepth,
		loc:       cfg.Location,
		tasks:     make(map[string]*Task),
		macros:    make(map[string]*Macro),
		entries:   make(map[string]*entry),
		callbacks: make(map[string]TaskFunc),
		wake:      make(chan struct{}, 1),
		runs:      make(map[uint64]context.CancelFunc),
	}
}

// Load replaces the in-memory tables with the repository contents. Errors
// are logged and leave the corresponding table empty.
func (e *Engine) Load(ctx context.Context) {
	if e.repo == nil {
		return
	}
	tasks, err := e.repo.LoadTasks(ctx)
	if err != nil {
		slog.Error("automation: load tasks", "err", err)
		tasks = nil
	}
	macros, err := e.repo.LoadMacros(ctx)
	if err != nil {
		slog.Error("automation: load macros", "err", err)
		macros = nil
	}

	e.mu.Lock()
	e.tasks = make(map[string]*Task, len(tasks))
	for _, t := range tasks {
		t := t.clone()
		e.tasks[t.ID] = &t
	}
	e.macros = make(map[string]*Macro, len(macros))
	for _, m := range macros {
		m := m.clone()
		e.macros[m.ID] = &m
	}
	e.rebuildLocked()
	e.mu.Unlock()

	slog.Info("automation: loaded definitions", "tasks", len(tasks), "macros", len(macros))
}

// SetTaskCallback registers fn for the task with the given ID. A nil fn
// removes the registration.
func (e *Engine) SetTaskCallback(id string, fn TaskFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if fn == nil {
		delete(e.callbacks, id)
		return
	}
	e.callbacks[id] = fn
}

// SetDefaultTaskCallback registers fn for every task without its own
// callback.
func (e *Engine) SetDefaultTaskCallback(fn TaskFunc) {
	e.mu.Lock()
	e.defaultCB = fn
	e.mu.Unlock()
}

// Run drives the scheduler until ctx is cancelled. It waits for callbacks
// already started before returning.
func (e *Engine) Run(ctx context.Context) error {
	e.mu.Lock()
	e.running = true
	e.rebuildLocked()
	e.mu.Unlock()
	select {
	case <-e.wake:
	default:
	}
	slog.Info("automation: scheduler started")

	defer func() {
		e.mu.Lock()
		e.running = false
		e.mu.Unlock()
		e.callbacksWG.Wait()
		slog.Info("automation: scheduler stopped")
	}()

	for {
		e.mu.Lock()
		next, ok := e.earliestLocked()
		e.mu.Unlock()

		var timer <-chan time.Time
		if ok {
			delay := next.Sub(e.clk.Now())
			if delay < 0 {
				delay = 0
			}
			timer = e.clk.After(delay)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-e.wake:
		case <-timer:
			e.fireDue(ctx)
		}
	}
}

// Stop cancels running macros between steps and waits for them and for any
// in-flight task callbacks. No new macro starts afterwards.
func (e *Engine) Stop() {
	e.mu.Lock()
	e.stopping = true
	for _, cancel := range e.runs {
		cancel()
	}
	e.mu.Unlock()
	e.runsWG.Wait()
	e.callbacksWG.Wait()
}

// Status returns counts and the upcoming fire times, soonest first.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := Status{
		Running:    e.running,
		Tasks:      len(e.tasks),
		Macros:     len(e.macros),
		ActiveRuns: e.activeRuns,
	}
	for _, t := range e.tasks {
		if t.Enabled {
			st.EnabledTasks++
		}
	}
	for _, m := range e.macros {
		if m.Enabled {
			st.EnabledMacros++
		}
	}
	for id, en := range e.entries {
		if en.next.IsZero() {
			continue
		}
		st.NextRuns = append(st.NextRuns, NextRun{TaskID: id, Name: e.tasks[id].Name, At: en.next})
	}
	sort.Slice(st.NextRuns, func(i, j int) bool {
		if !st.NextRuns[i].At.Equal(st.NextRuns[j].At) {
			return st.NextRuns[i].At.Before(st.NextRuns[j].At)
		}
		return st.NextRuns[i].TaskID < st.NextRuns[j].TaskID
	})
	return st
}

// rebuildLocked recompiles the whole schedule table from the enabled tasks
// and wakes the loop. Caller holds e.mu.
func (e *Engine) rebuildLocked() {
	now := e.now()
	e.entries = make(map[string]*entry, len(e.tasks))
	for id, t := range e.tasks {
		if !t.Enabled {
			continue
		}
		sched, err := compileSchedule(*t, now)
		if err != nil {
			slog.Error("automation: task not scheduled", "task", t.Name, "id", id, "err", err)
			continue
		}
		e.entries[id] = &entry{sched: sched, next: sched.Next(now)}
	}
	select {
	case e.wake <- struct{}{}:
	default:
	}
}

func (e *Engine) earliestLocked() (time.Time, bool) {
	var best time.Time
	for _, en := range e.entries {
		if en.next.IsZero() {
			continue
		}
		if best.IsZero() || en.next.Before(best) {
			best = en.next
		}
	}
	return best, !best.IsZero()
}

// fireDue runs every entry whose next fire time has been reached.
func (e *Engine) fireDue(ctx context.Context) {
	now := e.now()

	type firing struct {
		task Task
		cb   TaskFunc
	}
	var due []firing
	disabled := false

	e.mu.Lock()
	for id, en := range e.entries {
		if en.next.IsZero() || now.Before(en.next) {
			continue
		}
		t, ok := e.tasks[id]
		if !ok || !t.Enabled {
			delete(e.entries, id)
			continue
		}
		t.LastRun = now
		t.RunCount++
		en.next = en.sched.Next(now)
		if t.Kind == Once {
			t.Enabled = false
			delete(e.entries, id)
			disabled = true
		}
		cb := e.callbacks[id]
		if cb == nil {
			cb = e.defaultCB
		}
		due = append(due, firing{task: t.clone(), cb: cb})
	}
	e.mu.Unlock()

	if len(due) == 0 {
		return
	}
	sort.Slice(due, func(i, j int) bool { return due[i].task.ID < due[j].task.ID })

	e.persistTasks(ctx)
	if disabled {
		slog.Info("automation: one-shot task disabled after firing")
	}

	for _, f := range due {
		slog.Info("automation: executing scheduled task", "task", f.task.Name, "id", f.task.ID, "run", f.task.RunCount)
		if f.cb == nil {
			slog.Warn("automation: no callback registered for task", "task", f.task.Name, "id", f.task.ID)
			continue
		}
		e.callbacksWG.Add(1)
		go func(f firing) {
			defer e.callbacksWG.Done()
			if err := f.cb(context.WithoutCancel(ctx), f.task); err != nil {
				metrics.TaskRunsTotal.WithLabelValues(metrics.OutcomeFailure).Inc()
				slog.Error("automation: task callback failed", "task", f.task.Name, "id", f.task.ID, "err", err)
				return
			}
			metrics.TaskRunsTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
		}(f)
	}
}

func (e *Engine) now() time.Time {
	now := e.clk.Now()
	if e.loc != nil {
		now = now.In(e.loc)
	}
	return now
}

// persistTasks writes the current task set. Failures are logged only.
func (e *Engine) persistTasks(ctx context.Context) {
	if e.repo == nil {
		return
	}
	e.persistMu.Lock()
	defer e.persistMu.Unlock()

	e.mu.Lock()
	tasks := e.sortedTasksLocked()
	e.mu.Unlock()

	if err := e.repo.SaveTasks(context.WithoutCancel(ctx), tasks); err != nil {
		slog.Error("automation: save tasks", "err", err)
	}
}

func (e *Engine) persistMacros(ctx context.Context) {
	if e.repo == nil {
		return
	}
	e.persistMu.Lock()
	defer e.persistMu.Unlock()

	e.mu.Lock()
	macros := e.sortedMacrosLocked()
	e.mu.Unlock()

	if err := e.repo.SaveMacros(context.WithoutCancel(ctx), macros); err != nil {
		slog.Error("automation: save macros", "err", err)
	}
}

func (e *Engine) sortedTasksLocked() []Task {
	out := make([]Task, 0, len(e.tasks))
	for _, t := range e.tasks {
		out = append(out, t.clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (e *Engine) sortedMacrosLocked() []Macro {
	out := make([]Macro, 0, len(e.macros))
	for _, m := range e.macros {
		out = append(out, m.clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

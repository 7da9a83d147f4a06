package automation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CreateTask validates and stores a new task, then rebuilds the schedule.
// ID, CreatedAt, LastRun and RunCount are assigned by the engine.
func (e *Engine) CreateTask(ctx context.Context, t Task) (Task, error) {
	t = normalizeTask(t.clone())
	if err := ValidateTask(t); err != nil {
		return Task{}, err
	}

	e.mu.Lock()
	t.ID = newID(func(id string) bool { _, ok := e.tasks[id]; return ok })
	t.CreatedAt = e.clk.Now()
	t.LastRun = time.Time{}
	t.RunCount = 0
	stored := t.clone()
	e.tasks[t.ID] = &stored
	e.rebuildLocked()
	e.mu.Unlock()

	e.persistTasks(ctx)
	slog.Info("automation: created task", "task", t.Name, "id", t.ID, "schedule", t.Kind)
	return t, nil
}

// UpdateTask applies mutate to a copy of the task and stores the result if
// it is still valid. Identity and run statistics cannot be changed.
func (e *Engine) UpdateTask(ctx context.Context, id string, mutate func(*Task)) (Task, error) {
	e.mu.Lock()
	cur, ok := e.tasks[id]
	if !ok {
		e.mu.Unlock()
		return Task{}, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	next := cur.clone()
	mutate(&next)
	next = normalizeTask(next)
	next.ID, next.CreatedAt, next.LastRun, next.RunCount = cur.ID, cur.CreatedAt, cur.LastRun, cur.RunCount
	if err := ValidateTask(next); err != nil {
		e.mu.Unlock()
		return Task{}, err
	}
	stored := next.clone()
	e.tasks[id] = &stored
	e.rebuildLocked()
	e.mu.Unlock()

	e.persistTasks(ctx)
	slog.Info("automation: updated task", "task", next.Name, "id", id)
	return next, nil
}

// DeleteTask removes a task and its callback registration.
func (e *Engine) DeleteTask(ctx context.Context, id string) error {
	e.mu.Lock()
	t, ok := e.tasks[id]
	if !ok {
		e.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	delete(e.tasks, id)
	delete(e.callbacks, id)
	e.rebuildLocked()
	e.mu.Unlock()

	e.persistTasks(ctx)
	slog.Info("automation: deleted task", "task", t.Name, "id", id)
	return nil
}

// ToggleTask flips the enabled flag.
func (e *Engine) ToggleTask(ctx context.Context, id string) (Task, error) {
	return e.setTaskEnabled(ctx, id, func(cur bool) bool { return !cur })
}

// SetTaskEnabled sets the enabled flag explicitly.
func (e *Engine) SetTaskEnabled(ctx context.Context, id string, enabled bool) (Task, error) {
	return e.setTaskEnabled(ctx, id, func(bool) bool { return enabled })
}

func (e *Engine) setTaskEnabled(ctx context.Context, id string, next func(bool) bool) (Task, error) {
	e.mu.Lock()
	t, ok := e.tasks[id]
	if !ok {
		e.mu.Unlock()
		return Task{}, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	t.Enabled = next(t.Enabled)
	out := t.clone()
	e.rebuildLocked()
	e.mu.Unlock()

	e.persistTasks(ctx)
	slog.Info("automation: task enabled state changed", "task", out.Name, "id", id, "enabled", out.Enabled)
	return out, nil
}

// Task returns a copy of the task with the given ID.
func (e *Engine) Task(id string) (Task, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, ok := e.tasks[id]
	if !ok {
		return Task{}, false
	}
	return t.clone(), true
}

// Tasks returns every task, oldest first.
func (e *Engine) Tasks() []Task {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sortedTasksLocked()
}

func (e *Engine) taskByNameLocked(name string) (*Task, bool) {
	for _, t := range e.tasks {
		if strings.EqualFold(t.Name, name) {
			return t, true
		}
	}
	return nil, false
}

// newID returns a short random ID not rejected by taken.
func newID(taken func(string) bool) string {
	for {
		id := uuid.NewString()[:8]
		if !taken(id) {
			return id
		}
	}
}

func normalizeTask(t Task) Task {
	t.Kind = ScheduleKind(strings.ToLower(strings.TrimSpace(string(t.Kind))))
	t.Value = strings.TrimSpace(t.Value)
	for i, d := range t.Days {
		t.Days[i] = strings.ToLower(strings.TrimSpace(d))
	}
	return t
}

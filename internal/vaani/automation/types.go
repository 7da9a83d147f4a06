// Package automation runs stored commands without a user typing them:
// scheduled tasks fire on a clock, macros replay an ordered list of steps
// when their trigger phrase is spoken or they are started explicitly.
//
// Both facilities hand commands back to the caller through callbacks
// (TaskFunc, StepFunc); the engine itself knows nothing about parsing or
// dispatch. A single goroutine (Engine.Run) drives every schedule.
package automation

import (
	"context"
	"errors"
	"time"
)

// ScheduleKind selects how a task's Value is interpreted.
type ScheduleKind string

const (
	// Daily fires once a day at Value ("HH:MM").
	Daily ScheduleKind = "daily"
	// Weekly fires at Value ("HH:MM") on each of Days.
	Weekly ScheduleKind = "weekly"
	// Interval fires every Value, measured from when the schedule was
	// built. Value is a number of minutes ("60") or a duration ("90s").
	Interval ScheduleKind = "interval"
	// Once fires a single time, at the next "HH:MM" or at an RFC 3339
	// instant, then disables the task.
	Once ScheduleKind = "once"
)

// TriggerKind says how a macro is meant to be started.
type TriggerKind string

const (
	TriggerVoice  TriggerKind = "voice"
	TriggerHotkey TriggerKind = "hotkey"
	TriggerManual TriggerKind = "manual"
)

var (
	ErrTaskNotFound    = errors.New("automation: task not found")
	ErrMacroNotFound   = errors.New("automation: macro not found")
	ErrInvalidSchedule = errors.New("automation: invalid schedule")
	ErrInvalidTask     = errors.New("automation: invalid task")
	ErrInvalidMacro    = errors.New("automation: invalid macro")
	ErrMacroDisabled   = errors.New("automation: macro disabled")
	// ErrMacroDepth is returned when a macro would start from inside
	// another macro beyond the configured nesting depth.
	ErrMacroDepth = errors.New("automation: macro nesting too deep")
	ErrStopped    = errors.New("automation: engine stopped")
)

// Task is a command replayed on a schedule.
type Task struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	// Command is the text handed to the task callback, usually an action
	// key ("show_desktop") or a phrase the parser understands.
	Command string `json:"command"`

	Kind  ScheduleKind `json:"schedule_type"`
	Value string       `json:"schedule_time"`
	// Days lists lower-case weekday names for Weekly schedules.
	Days []string `json:"days,omitempty"`

	Enabled   bool           `json:"enabled"`
	CreatedAt time.Time      `json:"created_at"`
	LastRun   time.Time      `json:"last_run,omitempty"`
	RunCount  int            `json:"run_count"`
	Params    map[string]any `json:"parameters,omitempty"`
}

// Step is one command in a macro. Delay is waited before the command runs.
type Step struct {
	Command string         `json:"command"`
	Delay   time.Duration  `json:"delay"`
	Params  map[string]any `json:"parameters,omitempty"`
}

// Macro is a named sequence of steps.
type Macro struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Description   string      `json:"description,omitempty"`
	Steps         []Step      `json:"commands"`
	Trigger       TriggerKind `json:"trigger"`
	TriggerPhrase string      `json:"trigger_phrase,omitempty"`
	Hotkey        string      `json:"hotkey,omitempty"`
	Enabled       bool        `json:"enabled"`
	CreatedAt     time.Time   `json:"created_at"`
	RunCount      int         `json:"run_count"`
}

// TaskFunc receives a due task. A returned error is logged; it never stops
// the scheduler.
type TaskFunc func(ctx context.Context, task Task) error

// StepFunc executes one macro step. A returned error aborts the run.
type StepFunc func(ctx context.Context, command string, params map[string]any) error

// Repository persists definitions. Each Save replaces the full set.
type Repository interface {
	LoadTasks(ctx context.Context) ([]Task, error)
	SaveTasks(ctx context.Context, tasks []Task) error
	LoadMacros(ctx context.Context) ([]Macro, error)
	SaveMacros(ctx context.Context, macros []Macro) error
}

// Status summarises the engine for status endpoints and commands.
type Status struct {
	Running       bool      `json:"running"`
	Tasks         int       `json:"total_tasks"`
	EnabledTasks  int       `json:"enabled_tasks"`
	Macros        int       `json:"total_macros"`
	EnabledMacros int       `json:"enabled_macros"`
	ActiveRuns    int       `json:"active_macro_runs"`
	NextRuns      []NextRun `json:"next_runs,omitempty"`
}

// NextRun is the upcoming fire time of one enabled task.
type NextRun struct {
	TaskID string    `json:"task_id"`
	Name   string    `json:"name"`
	At     time.Time `json:"at"`
}

func (t Task) clone() Task {
	t.Days = append([]string(nil), t.Days...)
	t.Params = cloneParams(t.Params)
	return t
}

func (m Macro) clone() Macro {
	steps := make([]Step, len(m.Steps))
	for i, s := range m.Steps {
		s.Params = cloneParams(s.Params)
		steps[i] = s
	}
	m.Steps = steps
	return m
}

func cloneParams(p map[string]any) map[string]any {
	if p == nil {
		return nil
	}
	out := make(map[string]any, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

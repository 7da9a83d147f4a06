package automation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/bdobrica/Vaani/internal/vaani/lexicon"
	"github.com/bdobrica/Vaani/internal/vaani/metrics"
)

// CreateMacro validates and stores a new macro.
func (e *Engine) CreateMacro(ctx context.Context, m Macro) (Macro, error) {
	m = normalizeMacro(m.clone())
	if err := ValidateMacro(m); err != nil {
		return Macro{}, err
	}

	e.mu.Lock()
	m.ID = newID(func(id string) bool { _, ok := e.macros[id]; return ok })
	m.CreatedAt = e.clk.Now()
	m.RunCount = 0
	stored := m.clone()
	e.macros[m.ID] = &stored
	e.mu.Unlock()

	e.persistMacros(ctx)
	slog.Info("automation: created macro", "macro", m.Name, "id", m.ID, "steps", len(m.Steps))
	return m, nil
}

// UpdateMacro applies mutate to a copy of the macro and stores the result if
// it is still valid.
func (e *Engine) UpdateMacro(ctx context.Context, id string, mutate func(*Macro)) (Macro, error) {
	e.mu.Lock()
	cur, ok := e.macros[id]
	if !ok {
		e.mu.Unlock()
		return Macro{}, fmt.Errorf("%w: %s", ErrMacroNotFound, id)
	}
	next := cur.clone()
	mutate(&next)
	next = normalizeMacro(next)
	next.ID, next.CreatedAt, next.RunCount = cur.ID, cur.CreatedAt, cur.RunCount
	if err := ValidateMacro(next); err != nil {
		e.mu.Unlock()
		return Macro{}, err
	}
	stored := next.clone()
	e.macros[id] = &stored
	e.mu.Unlock()

	e.persistMacros(ctx)
	slog.Info("automation: updated macro", "macro", next.Name, "id", id)
	return next, nil
}

// DeleteMacro removes a macro. Runs already in progress finish normally.
func (e *Engine) DeleteMacro(ctx context.Context, id string) error {
	e.mu.Lock()
	m, ok := e.macros[id]
	if !ok {
		e.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrMacroNotFound, id)
	}
	delete(e.macros, id)
	e.mu.Unlock()

	e.persistMacros(ctx)
	slog.Info("automation: deleted macro", "macro", m.Name, "id", id)
	return nil
}

// ToggleMacro flips the enabled flag.
func (e *Engine) ToggleMacro(ctx context.Context, id string) (Macro, error) {
	e.mu.Lock()
	m, ok := e.macros[id]
	if !ok {
		e.mu.Unlock()
		return Macro{}, fmt.Errorf("%w: %s", ErrMacroNotFound, id)
	}
	m.Enabled = !m.Enabled
	out := m.clone()
	e.mu.Unlock()

	e.persistMacros(ctx)
	slog.Info("automation: macro enabled state changed", "macro", out.Name, "id", id, "enabled", out.Enabled)
	return out, nil
}

// Macro returns a copy of the macro with the given ID.
func (e *Engine) Macro(id string) (Macro, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	m, ok := e.macros[id]
	if !ok {
		return Macro{}, false
	}
	return m.clone(), true
}

// Macros returns every macro, oldest first.
func (e *Engine) Macros() []Macro {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sortedMacrosLocked()
}

// FindMacro resolves ref as a macro ID, then as a case-insensitive name.
func (e *Engine) FindMacro(ref string) (Macro, bool) {
	ref = strings.TrimSpace(ref)
	e.mu.Lock()
	defer e.mu.Unlock()
	if m, ok := e.macros[ref]; ok {
		return m.clone(), true
	}
	if m, ok := e.macroByNameLocked(ref); ok {
		return m.clone(), true
	}
	return Macro{}, false
}

func (e *Engine) macroByNameLocked(name string) (*Macro, bool) {
	for _, m := range e.macros {
		if strings.EqualFold(m.Name, name) {
			return m, true
		}
	}
	return nil, false
}

// MatchTrigger returns the enabled voice macro whose trigger phrase occurs
// in text. When several match, the longest phrase wins, then the oldest
// macro, then the lowest ID.
func (e *Engine) MatchTrigger(text string) (Macro, bool) {
	norm := lexicon.Normalize(text)
	if norm == "" {
		return Macro{}, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	var candidates []*Macro
	for _, m := range e.macros {
		if !m.Enabled || m.Trigger != TriggerVoice {
			continue
		}
		phrase := lexicon.Normalize(m.TriggerPhrase)
		if phrase != "" && strings.Contains(norm, phrase) {
			candidates = append(candidates, m)
		}
	}
	if len(candidates) == 0 {
		return Macro{}, false
	}
	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		la, lb := len([]rune(lexicon.Normalize(a.TriggerPhrase))), len([]rune(lexicon.Normalize(b.TriggerPhrase)))
		if la != lb {
			return la > lb
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	return candidates[0].clone(), true
}

// LaunchByTrigger starts, in the background, the macro whose trigger phrase
// occurs in text and returns its name. Nothing starts, and false is
// returned, when no macro matches or ctx is already inside a macro at the
// maximum nesting depth.
func (e *Engine) LaunchByTrigger(ctx context.Context, text string, step StepFunc) (string, bool) {
	if Depth(ctx) >= e.maxDepth {
		return "", false
	}
	m, ok := e.MatchTrigger(text)
	if !ok {
		return "", false
	}
	if !e.launch(ctx, m.ID, step) {
		return "", false
	}
	slog.Info("automation: voice trigger matched macro", "macro", m.Name, "id", m.ID)
	return m.Name, true
}

// StartMacro starts the macro named by ref (ID or name) in the background.
func (e *Engine) StartMacro(ctx context.Context, ref string, step StepFunc) (Macro, error) {
	if Depth(ctx) >= e.maxDepth {
		return Macro{}, ErrMacroDepth
	}
	m, ok := e.FindMacro(ref)
	if !ok {
		return Macro{}, fmt.Errorf("%w: %s", ErrMacroNotFound, ref)
	}
	if !m.Enabled {
		return Macro{}, fmt.Errorf("%w: %s", ErrMacroDisabled, m.Name)
	}
	if !e.launch(ctx, m.ID, step) {
		return Macro{}, ErrStopped
	}
	return m, nil
}

// launch runs a macro on its own goroutine. The run keeps ctx's values but
// not its cancellation, so it outlives the request that started it; Stop
// cancels it. It reports false once the engine is stopping.
func (e *Engine) launch(ctx context.Context, id string, step StepFunc) bool {
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	e.mu.Lock()
	if e.stopping {
		e.mu.Unlock()
		cancel()
		return false
	}
	e.nextRunID++
	runID := e.nextRunID
	e.runs[runID] = cancel
	e.activeRuns++
	e.runsWG.Add(1)
	e.mu.Unlock()

	go func() {
		defer e.runsWG.Done()
		defer func() {
			cancel()
			e.mu.Lock()
			delete(e.runs, runID)
			e.activeRuns--
			e.mu.Unlock()
		}()
		if err := e.RunMacro(runCtx, id, step); err != nil {
			slog.Warn("automation: macro run ended early", "id", id, "err", err)
		}
	}()
	return true
}

// RunMacro executes a macro's steps in order on the calling goroutine. After
// each step its delay is waited before the next one starts; the last step's
// delay is not waited. Cancelling ctx aborts between steps but never
// interrupts a step in progress. The first failing step aborts the run, and
// RunCount only grows when every step succeeded.
func (e *Engine) RunMacro(ctx context.Context, id string, step StepFunc) error {
	depth := Depth(ctx)
	if depth >= e.maxDepth {
		return ErrMacroDepth
	}
	m, ok := e.Macro(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrMacroNotFound, id)
	}
	if !m.Enabled {
		return fmt.Errorf("%w: %s", ErrMacroDisabled, m.Name)
	}

	slog.Info("automation: running macro", "macro", m.Name, "id", m.ID, "steps", len(m.Steps))
	stepCtx := context.WithoutCancel(WithDepth(ctx, depth+1))

	for i, s := range m.Steps {
		if err := ctx.Err(); err != nil {
			metrics.MacroRunsTotal.WithLabelValues(metrics.OutcomeCancelled).Inc()
			slog.Info("automation: macro cancelled", "macro", m.Name, "step", i)
			return err
		}
		if err := runStep(stepCtx, step, s); err != nil {
			metrics.MacroRunsTotal.WithLabelValues(metrics.OutcomeFailure).Inc()
			slog.Warn("automation: macro step failed", "macro", m.Name, "step", i, "command", s.Command, "err", err)
			return fmt.Errorf("automation: macro %q step %d (%s): %w", m.Name, i+1, s.Command, err)
		}
		if i == len(m.Steps)-1 {
			break
		}
		if err := e.sleep(ctx, s.Delay); err != nil {
			metrics.MacroRunsTotal.WithLabelValues(metrics.OutcomeCancelled).Inc()
			slog.Info("automation: macro cancelled", "macro", m.Name, "step", i+1)
			return err
		}
	}

	e.mu.Lock()
	if cur, ok := e.macros[id]; ok {
		cur.RunCount++
	}
	e.mu.Unlock()
	e.persistMacros(ctx)

	metrics.MacroRunsTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
	slog.Info("automation: macro completed", "macro", m.Name, "id", m.ID)
	return nil
}

// runStep invokes fn, turning a panic into an error.
func runStep(ctx context.Context, fn StepFunc, s Step) (err error) {
	if fn == nil {
		return errors.New("no step executor")
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("step panicked: %v", r)
		}
	}()
	return fn(ctx, s.Command, cloneParams(s.Params))
}

func (e *Engine) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-e.clk.After(d):
		return nil
	}
}

// ValidateMacro reports whether m can be stored.
func ValidateMacro(m Macro) error {
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidMacro)
	}
	if len(m.Steps) == 0 {
		return fmt.Errorf("%w: %q has no steps", ErrInvalidMacro, m.Name)
	}
	for i, s := range m.Steps {
		if strings.TrimSpace(s.Command) == "" {
			return fmt.Errorf("%w: %q step %d has no command", ErrInvalidMacro, m.Name, i+1)
		}
		if s.Delay < 0 {
			return fmt.Errorf("%w: %q step %d has a negative delay", ErrInvalidMacro, m.Name, i+1)
		}
	}
	switch m.Trigger {
	case TriggerVoice:
		if strings.TrimSpace(m.TriggerPhrase) == "" {
			return fmt.Errorf("%w: voice macro %q needs a trigger phrase", ErrInvalidMacro, m.Name)
		}
	case TriggerHotkey, TriggerManual:
	default:
		return fmt.Errorf("%w: unknown trigger %q", ErrInvalidMacro, m.Trigger)
	}
	return nil
}

func normalizeMacro(m Macro) Macro {
	m.Trigger = TriggerKind(strings.ToLower(strings.TrimSpace(string(m.Trigger))))
	if m.Trigger == "" {
		m.Trigger = TriggerManual
		if m.TriggerPhrase != "" {
			m.Trigger = TriggerVoice
		}
	}
	return m
}

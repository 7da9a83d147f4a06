// Package actions provides Vaani's built-in handlers. Anything that would
// touch the operating system goes through the PowerController and Desktop
// interfaces; the shipped DryRun implementation only logs.
package actions

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/bdobrica/Vaani/internal/vaani/action"
	"github.com/bdobrica/Vaani/internal/vaani/automation"
	"github.com/bdobrica/Vaani/internal/vaani/clock"
	"github.com/bdobrica/Vaani/internal/vaani/i18n"
)

// PowerController changes the machine's power state.
type PowerController interface {
	Shutdown(ctx context.Context) error
	Restart(ctx context.Context) error
	Sleep(ctx context.Context) error
}

// Desktop performs a desktop action. target is the app name, search query
// and so on; it is empty for actions that take none.
type Desktop interface {
	Do(ctx context.Context, key action.Key, target string) error
}

// Automation is the part of the automation engine the handlers use.
type Automation interface {
	StartMacro(ctx context.Context, ref string, step automation.StepFunc) (automation.Macro, error)
	Status() automation.Status
}

// PendingCounter reports how many confirmations are open.
type PendingCounter interface {
	Len() int
}

// Config wires the built-in handlers. Nil Power and Desktop select DryRun.
type Config struct {
	Clock    clock.Clock
	Location *time.Location
	Power    PowerController
	Desktop  Desktop
	// AllowDangerous permits power actions at all. When false they fail
	// with CodeDisabled before any confirmation is asked for.
	AllowDangerous bool
	Automation     Automation
	Confirmations  PendingCounter
}

// Builtins holds the handlers' shared dependencies.
type Builtins struct {
	cfg  Config
	step automation.StepFunc
}

// New creates the handler set. Call BindStep before serving run_macro.
func New(cfg Config) *Builtins {
	if cfg.Clock == nil {
		cfg.Clock = clock.Real{}
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Power == nil {
		cfg.Power = DryRun{}
	}
	if cfg.Desktop == nil {
		cfg.Desktop = DryRun{}
	}
	return &Builtins{cfg: cfg}
}

// BindStep sets how macros started by run_macro replay their steps,
// normally Router.Step. It must be called before handlers run.
func (b *Builtins) BindStep(fn automation.StepFunc) { b.step = fn }

// Register adds every built-in handler to reg.
func (b *Builtins) Register(reg *action.Registry) error {
	handlers := map[action.Key]action.Handler{
		action.Time:         b.handleTime,
		action.Date:         b.handleDate,
		action.Shutdown:     b.power(action.Shutdown),
		action.Restart:      b.power(action.Restart),
		action.Sleep:        b.power(action.Sleep),
		action.OpenApp:      b.handleOpenApp,
		action.CloseApp:     b.handleCloseApp,
		action.GoogleSearch: b.handleSearch,
		action.SystemStatus: b.handleSystemStatus,
	}
	for key := range simpleDesktop {
		handlers[key] = b.handleSimple
	}
	if b.cfg.Automation != nil {
		handlers[action.RunMacro] = b.handleRunMacro
		handlers[action.AutomationStatus] = b.handleAutomationStatus
	}
	for key, h := range handlers {
		if err := reg.Register(key, h); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builtins) now() time.Time {
	return b.cfg.Clock.Now().In(b.cfg.Location)
}

func (b *Builtins) handleTime(_ context.Context, inv action.Invocation) action.Result {
	return action.OK(i18n.T(inv.Language, i18n.TimeIs, b.now().Format("03:04 PM")))
}

func (b *Builtins) handleDate(_ context.Context, inv action.Invocation) action.Result {
	return action.OK(i18n.T(inv.Language, i18n.DateIs, b.now().Format("Monday, January 2, 2006")))
}

var powerMessages = map[action.Key]struct{ confirm, done i18n.ID }{
	action.Shutdown: {i18n.ConfirmShutdown, i18n.ShutdownInitiated},
	action.Restart:  {i18n.ConfirmRestart, i18n.RestartInitiated},
	action.Sleep:    {i18n.ConfirmSleep, i18n.SleepInitiated},
}

// power returns the handler for one power action. It asks for confirmation
// on first call and acts only once invoked with Confirmed.
func (b *Builtins) power(key action.Key) action.Handler {
	msgs := powerMessages[key]
	return func(ctx context.Context, inv action.Invocation) action.Result {
		if !b.cfg.AllowDangerous {
			return action.Fail(action.CodeDisabled, i18n.T(inv.Language, i18n.PowerDisabled))
		}
		if !inv.Confirmed {
			return action.NeedsConfirmation(i18n.T(inv.Language, msgs.confirm), map[string]any{"action": string(key)})
		}

		var err error
		switch key {
		case action.Shutdown:
			err = b.cfg.Power.Shutdown(ctx)
		case action.Restart:
			err = b.cfg.Power.Restart(ctx)
		case action.Sleep:
			err = b.cfg.Power.Sleep(ctx)
		}
		if err != nil {
			slog.Error("actions: power action failed", "action", key, "err", err)
			return action.Fail("power_failed", i18n.T(inv.Language, i18n.HandlerFailed, key))
		}
		slog.Info("actions: power action issued", "action", key, "sender", inv.Sender)
		return action.OK(i18n.T(inv.Language, msgs.done))
	}
}

// simpleDesktop maps parameterless desktop actions to their reply.
var simpleDesktop = map[action.Key]i18n.ID{
	action.VolumeUp:    i18n.VolumeIncreased,
	action.VolumeDown:  i18n.VolumeDecreased,
	action.Mute:        i18n.Muted,
	action.Minimize:    i18n.WindowMinimized,
	action.Maximize:    i18n.WindowMaximized,
	action.ShowDesktop: i18n.DesktopShown,
	action.OpenBrowser: i18n.BrowserOpened,
	action.CleanupTemp: i18n.TempCleaned,
}

func (b *Builtins) handleSimple(ctx context.Context, inv action.Invocation) action.Result {
	if err := b.cfg.Desktop.Do(ctx, inv.Key, inv.Params.String(action.ParamText)); err != nil {
		return b.desktopFailed(inv, err)
	}
	return action.OK(i18n.T(inv.Language, simpleDesktop[inv.Key]))
}

func (b *Builtins) handleOpenApp(ctx context.Context, inv action.Invocation) action.Result {
	app := inv.Params.String("app", action.ParamText)
	if app == "" {
		return action.Fail(action.CodeInvalidParams, i18n.T(inv.Language, i18n.NoAppSpecified))
	}
	if err := b.cfg.Desktop.Do(ctx, action.OpenApp, app); err != nil {
		return b.desktopFailed(inv, err)
	}
	return action.OK(i18n.T(inv.Language, i18n.AppOpened, app))
}

func (b *Builtins) handleCloseApp(ctx context.Context, inv action.Invocation) action.Result {
	app := inv.Params.String("app", action.ParamText)
	if app == "" {
		return action.Fail(action.CodeInvalidParams, i18n.T(inv.Language, i18n.NoAppSpecified))
	}
	// Automation replays close_app unattended, so only interactive callers
	// are asked first.
	if !inv.Confirmed && !unattended(ctx, inv) {
		return action.NeedsConfirmation(i18n.T(inv.Language, i18n.ConfirmAppClose, app), map[string]any{"app": app})
	}
	if err := b.cfg.Desktop.Do(ctx, action.CloseApp, app); err != nil {
		return b.desktopFailed(inv, err)
	}
	return action.OK(i18n.T(inv.Language, i18n.AppClosed, app))
}

func (b *Builtins) handleSearch(ctx context.Context, inv action.Invocation) action.Result {
	query := inv.Params.String("query", action.ParamText)
	if query == "" {
		return action.Fail(action.CodeInvalidParams, i18n.T(inv.Language, i18n.CommandNotUnderstood))
	}
	if err := b.cfg.Desktop.Do(ctx, action.GoogleSearch, query); err != nil {
		return b.desktopFailed(inv, err)
	}
	return action.OK(i18n.T(inv.Language, i18n.SearchingWeb, query))
}

func (b *Builtins) handleSystemStatus(_ context.Context, inv action.Invocation) action.Result {
	pending := 0
	if b.cfg.Confirmations != nil {
		pending = b.cfg.Confirmations.Len()
	}
	var st automation.Status
	if b.cfg.Automation != nil {
		st = b.cfg.Automation.Status()
	}
	res := action.OK(i18n.T(inv.Language, i18n.SystemStatus, pending, st.EnabledTasks, st.EnabledMacros))
	res.Details = map[string]any{
		"pending_confirmations": pending,
		"enabled_tasks":         st.EnabledTasks,
		"enabled_macros":        st.EnabledMacros,
	}
	return res
}

func (b *Builtins) handleRunMacro(ctx context.Context, inv action.Invocation) action.Result {
	ref := inv.Params.String("macro", "name", action.ParamText)
	if ref == "" {
		return action.Fail(action.CodeInvalidParams, i18n.T(inv.Language, i18n.MacroNotFound, "?"))
	}
	m, err := b.cfg.Automation.StartMacro(ctx, ref, b.step)
	switch {
	case errors.Is(err, automation.ErrMacroDepth):
		return action.Fail(action.CodeDisabled, i18n.T(inv.Language, i18n.MacroNested))
	case errors.Is(err, automation.ErrMacroNotFound), errors.Is(err, automation.ErrMacroDisabled):
		return action.Fail(action.CodeInvalidParams, i18n.T(inv.Language, i18n.MacroNotFound, ref))
	case err != nil:
		return action.Fail(action.CodeDisabled, i18n.T(inv.Language, i18n.HandlerFailed, action.RunMacro))
	}
	return action.Result{
		Success:  true,
		Response: i18n.T(inv.Language, i18n.MacroStarted, m.Name),
		Kind:     action.KindMacroStarted,
		Macro:    m.Name,
	}
}

func (b *Builtins) handleAutomationStatus(_ context.Context, inv action.Invocation) action.Result {
	st := b.cfg.Automation.Status()
	state := "stopped"
	if st.Running {
		state = "running"
	}
	res := action.OK(i18n.T(inv.Language, i18n.AutomationStatus, state, st.EnabledTasks, st.Tasks, st.EnabledMacros, st.Macros))
	res.Details = map[string]any{
		"running":        st.Running,
		"total_tasks":    st.Tasks,
		"enabled_tasks":  st.EnabledTasks,
		"total_macros":   st.Macros,
		"enabled_macros": st.EnabledMacros,
		"active_runs":    st.ActiveRuns,
	}
	return res
}

func (b *Builtins) desktopFailed(inv action.Invocation, err error) action.Result {
	slog.Error("actions: desktop action failed", "action", inv.Key, "err", err)
	return action.Fail("desktop_failed", i18n.T(inv.Language, i18n.HandlerFailed, inv.Key))
}

func unattended(ctx context.Context, inv action.Invocation) bool {
	return inv.Sender == action.SenderAutomation || automation.Depth(ctx) > 0
}

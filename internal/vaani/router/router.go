// Package router is the single dispatch path from text to action.Result.
//
// Interactive callers, scheduled tasks and macro steps all go through
// Handle. Handle never fails: every outcome, including an unknown command
// or a panicking handler, is reported as a Result.
package router

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bdobrica/Vaani/common/trace"
	"github.com/bdobrica/Vaani/internal/vaani/action"
	"github.com/bdobrica/Vaani/internal/vaani/automation"
	"github.com/bdobrica/Vaani/internal/vaani/clock"
	"github.com/bdobrica/Vaani/internal/vaani/confirm"
	"github.com/bdobrica/Vaani/internal/vaani/i18n"
	"github.com/bdobrica/Vaani/internal/vaani/lang"
	"github.com/bdobrica/Vaani/internal/vaani/metrics"
	"github.com/bdobrica/Vaani/internal/vaani/observability"
	"github.com/bdobrica/Vaani/internal/vaani/parser"
)

// Keys the router seeds into confirmation details. The stored parameters
// are what an approved action is re-invoked with.
const (
	DetailKey      = "command_key"
	DetailText     = "text"
	DetailLanguage = "language"
	DetailParams   = "params"
)

// SenderAutomation is the sender recorded for scheduled and macro commands.
const SenderAutomation = action.SenderAutomation

var (
	// ErrStepFailed wraps the response of a replayed command that failed.
	ErrStepFailed = errors.New("command failed")
	// ErrConfirmationRequired is returned when a replayed command needs an
	// approval that nobody is present to give.
	ErrConfirmationRequired = errors.New("command requires confirmation")
)

// Request is one command to handle.
type Request struct {
	Text string
	// Language overrides detection when valid.
	Language lang.Language
	// Params are merged over the parsed parameters and win on collision.
	Params map[string]any
	Sender string
	// Origin is the transport reply address, kept on confirmations so a
	// timeout notice can find its way back.
	Origin string
}

// Fallback answers text that no action handler claimed.
type Fallback interface {
	Respond(ctx context.Context, text string, language lang.Language) (string, bool)
}

// MacroLauncher starts the macro whose trigger phrase occurs in text.
type MacroLauncher interface {
	LaunchByTrigger(ctx context.Context, text string, step automation.StepFunc) (string, bool)
}

// Entry is one handled command as written to the Journal.
type Entry struct {
	TraceID string
	Sender  string
	Origin  string
	Text    string
	Result  action.Result
}

// Journal records handled commands. Failures are logged, never surfaced.
type Journal interface {
	RecordCommand(ctx context.Context, e Entry) error
}

// Config wires a Router. Parser and Registry default to fresh instances,
// Confirmations to a Manager with default settings and Clock to the real
// clock. Macros, Fallback and Journal are optional.
type Config struct {
	Parser        *parser.Parser
	Registry      *action.Registry
	Confirmations *confirm.Manager
	Macros        MacroLauncher
	Fallback      Fallback
	Journal       Journal
	Clock         clock.Clock
}

// Router resolves and dispatches commands.
type Router struct {
	parser   *parser.Parser
	registry *action.Registry
	confirm  *confirm.Manager
	macros   MacroLauncher
	fallback Fallback
	journal  Journal
	clk      clock.Clock
}

// New creates a Router.
func New(cfg Config) *Router {
	if cfg.Clock == nil {
		cfg.Clock = clock.Real{}
	}
	if cfg.Parser == nil {
		cfg.Parser = parser.New(nil)
	}
	if cfg.Registry == nil {
		cfg.Registry = action.NewRegistry()
	}
	if cfg.Confirmations == nil {
		cfg.Confirmations = confirm.New(confirm.Config{Clock: cfg.Clock})
	}
	return &Router{
		parser:   cfg.Parser,
		registry: cfg.Registry,
		confirm:  cfg.Confirmations,
		macros:   cfg.Macros,
		fallback: cfg.Fallback,
		journal:  cfg.Journal,
		clk:      cfg.Clock,
	}
}

// Registry returns the registry handlers are looked up in.
func (r *Router) Registry() *action.Registry { return r.registry }

// Confirmations returns the confirmation manager gating sensitive actions.
func (r *Router) Confirmations() *confirm.Manager { return r.confirm }

// Handle parses and dispatches one command.
func (r *Router) Handle(ctx context.Context, req Request) action.Result {
	started := time.Now()
	ctx, traceID := trace.Ensure(ctx)
	ctx = action.WithSender(ctx, req.Sender)

	parsed := r.parser.Parse(req.Text)
	language := parsed.Language
	if req.Language.Valid() {
		language = req.Language
	}

	params := action.Params{}
	if parsed.Params != "" {
		params[action.ParamText] = parsed.Params
	}
	params = params.Merge(req.Params)

	var res action.Result
	if name, ok := r.launchMacro(withLanguage(ctx, language), req.Text); ok {
		res = action.Result{
			Success:  true,
			Response: i18n.T(language, i18n.MacroStarted, name),
			Kind:     action.KindMacroStarted,
			Macro:    name,
		}
	} else if h, ok := r.registry.Lookup(parsed.Key); ok {
		res = r.invoke(ctx, h, action.Invocation{
			Key:      parsed.Key,
			Params:   params,
			Language: language,
			Text:     req.Text,
			Sender:   req.Sender,
		})
		if req.Sender != SenderAutomation {
			res = r.gate(res, parsed.Key, req.Text, language, params, req.Origin)
		}
	} else {
		res = r.converse(ctx, req.Text, language)
	}

	res = r.enrich(res, parsed.Key, language)
	r.finish(ctx, traceID, req.Sender, req.Origin, req.Text, res, started)
	return res
}

// Decide applies an approve or deny decision to confirmation id. An
// approved action is re-invoked with its stored parameters and
// Confirmed set.
func (r *Router) Decide(ctx context.Context, id string, approved bool, sender string) action.Result {
	started := time.Now()
	ctx, traceID := trace.Ensure(ctx)
	ctx = action.WithSender(ctx, sender)

	p, ok := r.confirm.Decide(id, approved)
	if !ok {
		language := lang.English
		if prev, found := r.confirm.Get(id); found {
			language = prev.Language.Or(lang.English)
		}
		res := action.Fail(action.CodeConfirmationInvalid, i18n.T(language, i18n.ConfirmationInvalid))
		res = r.enrich(res, action.Unknown, language)
		r.finish(ctx, traceID, sender, "", id, res, started)
		return res
	}

	language := p.Language.Or(lang.English)
	var res action.Result
	switch {
	case p.State != confirm.StateApproved:
		res = action.OK(i18n.T(language, i18n.ActionCancelled))
	default:
		h, found := r.registry.Lookup(p.Key)
		if !found {
			res = action.Fail(action.CodeUnrecognized, i18n.T(language, i18n.CommandNotUnderstood))
			break
		}
		params := storedParams(p.Details)
		res = r.invoke(ctx, h, action.Invocation{
			Key:       p.Key,
			Params:    params,
			Language:  language,
			Text:      p.Text,
			Confirmed: true,
			Sender:    sender,
		})
		res = r.gate(res, p.Key, p.Text, language, params, p.Origin)
	}

	res = r.enrich(res, p.Key, language)
	r.finish(ctx, traceID, sender, p.Origin, p.Text, res, started)
	return res
}

// Step replays a macro step through Handle. It satisfies
// automation.StepFunc.
func (r *Router) Step(ctx context.Context, command string, params map[string]any) error {
	return r.replay(ctx, command, params)
}

// RunTask replays a scheduled task through Handle. It satisfies
// automation.TaskFunc.
func (r *Router) RunTask(ctx context.Context, t automation.Task) error {
	return r.replay(ctx, t.Command, t.Params)
}

// replay runs command as the automation sender, in the language of the
// request that started the macro when there was one. Replayed commands are
// never gated: nobody is present to approve them.
func (r *Router) replay(ctx context.Context, command string, params map[string]any) error {
	res := r.Handle(ctx, Request{
		Text:     command,
		Language: languageFrom(ctx),
		Params:   params,
		Sender:   SenderAutomation,
	})
	switch {
	case res.RequiresConfirmation:
		return fmt.Errorf("%s: %w", command, ErrConfirmationRequired)
	case !res.Success:
		return fmt.Errorf("%s: %w: %s", command, ErrStepFailed, res.Response)
	}
	return nil
}

func (r *Router) launchMacro(ctx context.Context, text string) (string, bool) {
	if r.macros == nil || strings.TrimSpace(text) == "" {
		return "", false
	}
	return r.macros.LaunchByTrigger(ctx, text, r.Step)
}

// invoke runs h, converting a panic into a handler_panic failure.
func (r *Router) invoke(ctx context.Context, h action.Handler, inv action.Invocation) (res action.Result) {
	defer func() {
		if p := recover(); p != nil {
			observability.WithTrace(ctx).Error("router: handler panicked", "action", inv.Key, "panic", p)
			res = action.Fail(action.CodeHandlerPanic, i18n.T(inv.Language, i18n.HandlerFailed, inv.Key))
		}
	}()
	res = h(ctx, inv)
	if res.Kind == "" {
		res.Kind = action.KindAction
	}
	return res
}

// gate opens a confirmation for a result that asks for one.
func (r *Router) gate(res action.Result, key action.Key, text string, language lang.Language, params action.Params, origin string) action.Result {
	if !res.RequiresConfirmation || res.ConfirmationID != "" {
		return res
	}
	details := make(map[string]any, len(res.Details)+4)
	for k, v := range res.Details {
		details[k] = v
	}
	details[DetailKey] = string(key)
	details[DetailText] = text
	details[DetailLanguage] = string(language)
	details[DetailParams] = map[string]any(params.Clone())

	id := r.confirm.Request(key, text, language, details, origin)
	res.ConfirmationID = id
	res.Details = details
	res.Success = false
	res.Kind = action.KindConfirmation
	res.Response = i18n.T(language, i18n.ConfirmationPrompt, res.Response, id)
	return res
}

// converse hands text the registry could not place to the fallback.
func (r *Router) converse(ctx context.Context, text string, language lang.Language) action.Result {
	if r.fallback != nil && strings.TrimSpace(text) != "" {
		if reply, ok := r.fallback.Respond(ctx, text, language); ok {
			return action.Result{Success: true, Response: reply, Kind: action.KindConversation}
		}
	}
	res := action.Fail(action.CodeUnrecognized, i18n.T(language, i18n.CommandNotUnderstood))
	res.Kind = action.KindUnknown
	return res
}

func (r *Router) enrich(res action.Result, key action.Key, language lang.Language) action.Result {
	res.Key = key
	res.Language = language
	res.Timestamp = r.clk.Now()
	return res
}

func (r *Router) finish(ctx context.Context, traceID, sender, origin, text string, res action.Result, started time.Time) {
	kind := string(res.Kind)
	metrics.CommandsTotal.WithLabelValues(kind, metrics.Bool(res.Success)).Inc()
	metrics.DispatchDuration.WithLabelValues(kind).Observe(time.Since(started).Seconds())

	observability.WithTrace(ctx).Info("router: handled",
		"sender", sender,
		"action", res.Key,
		"type", kind,
		"success", res.Success,
		"error_code", res.ErrorCode,
	)

	if r.journal == nil {
		return
	}
	e := Entry{TraceID: traceID, Sender: sender, Origin: origin, Text: text, Result: res}
	if err := r.journal.RecordCommand(context.WithoutCancel(ctx), e); err != nil {
		observability.WithTrace(ctx).Warn("router: journal write failed", "err", err)
	}
}

type languageKey struct{}

func withLanguage(ctx context.Context, l lang.Language) context.Context {
	return context.WithValue(ctx, languageKey{}, l)
}

func languageFrom(ctx context.Context) lang.Language {
	l, _ := ctx.Value(languageKey{}).(lang.Language)
	return l
}

func storedParams(details map[string]any) action.Params {
	switch p := details[DetailParams].(type) {
	case map[string]any:
		return action.Params(p).Clone()
	case action.Params:
		return p.Clone()
	}
	return action.Params{}
}

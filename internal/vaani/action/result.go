package action

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bdobrica/Vaani/internal/vaani/lang"
)

// Kind classifies how a Result was produced.
type Kind string

const (
	KindAction       Kind = "action"
	KindConversation Kind = "conversation"
	KindMacroStarted Kind = "macro_started"
	KindUnknown      Kind = "unknown"
	KindConfirmation Kind = "confirmation"
)

// Error codes carried in Result.ErrorCode.
const (
	CodeUnrecognized        = "unrecognized"
	CodeHandlerPanic        = "handler_panic"
	CodeConfirmationInvalid = "confirmation_invalid"
	CodeDisabled            = "disabled"
	CodeInvalidParams       = "invalid_params"
	CodeRateLimited         = "rate_limited"
)

// ParamText is the parameter key that carries the residual text left over
// after phrase matching.
const ParamText = "text"

// Params is the free-form parameter bag passed to handlers.
type Params map[string]any

// String returns the first non-empty string value among keys.
func (p Params) String(keys ...string) string {
	for _, k := range keys {
		switch v := p[k].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case fmt.Stringer:
			if s := strings.TrimSpace(v.String()); s != "" {
				return s
			}
		case nil:
		default:
			return fmt.Sprint(v)
		}
	}
	return ""
}

// Clone returns a shallow copy of p; nil stays nil.
func (p Params) Clone() Params {
	if p == nil {
		return nil
	}
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Merge returns a copy of p with every entry of override applied on top.
func (p Params) Merge(override map[string]any) Params {
	out := p.Clone()
	if out == nil {
		out = Params{}
	}
	for k, v := range override {
		out[k] = v
	}
	return out
}

// Invocation is everything a handler receives for one call.
type Invocation struct {
	Key      Key
	Params   Params
	Language lang.Language
	// Text is the original command text.
	Text string
	// Confirmed is set when the call follows an approved confirmation.
	Confirmed bool
	Sender    string
}

// Handler executes one action. Handlers report failure through the Result,
// never by panicking; the router recovers panics regardless.
type Handler func(ctx context.Context, inv Invocation) Result

// Result is the uniform outcome of a dispatch.
type Result struct {
	Success   bool   `json:"success"`
	Response  string `json:"response"`
	Error     string `json:"error,omitempty"`
	ErrorCode string `json:"error_code,omitempty"`

	RequiresConfirmation bool           `json:"requires_confirmation,omitempty"`
	Details              map[string]any `json:"details,omitempty"`
	// ConfirmationID is attached by the router, never by handlers.
	ConfirmationID string `json:"confirmation_id,omitempty"`

	Kind  Kind   `json:"type"`
	Macro string `json:"macro,omitempty"`

	Key       Key           `json:"command_key"`
	Language  lang.Language `json:"language"`
	Timestamp time.Time     `json:"timestamp"`
}

// OK builds a successful action result.
func OK(response string) Result {
	return Result{Success: true, Response: response, Kind: KindAction}
}

// Fail builds a failed action result.
func Fail(code, response string) Result {
	return Result{Success: false, Response: response, Error: response, ErrorCode: code, Kind: KindAction}
}

// NeedsConfirmation builds a result asking the router to gate the action
// behind an approval. Success is false until the action actually runs.
func NeedsConfirmation(prompt string, details map[string]any) Result {
	return Result{
		Success:              false,
		Response:             prompt,
		RequiresConfirmation: true,
		Details:              details,
		Kind:                 KindConfirmation,
	}
}

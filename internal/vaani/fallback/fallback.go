// Package fallback answers free-form text no action handler claimed, using
// an OpenAI-compatible chat completions API (OpenRouter by default).
//
// Models are tried in order starting from the last one that answered, so a
// model that is rate limited or withdrawn upstream is skipped until the
// rotation comes back to it. Each sender is also rate limited locally.
package fallback

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/bdobrica/Vaani/common/redact"
	"github.com/bdobrica/Vaani/common/retry"
	"github.com/bdobrica/Vaani/internal/vaani/action"
	"github.com/bdobrica/Vaani/internal/vaani/lang"
	"github.com/bdobrica/Vaani/internal/vaani/metrics"
)

const (
	DefaultBaseURL = "https://openrouter.ai/api/v1"
	DefaultTimeout = 30 * time.Second
	// DefaultRate is the sustained per-sender request rate (one every 5s).
	DefaultRate  = rate.Limit(0.2)
	DefaultBurst = 3

	maxReplyTokens = 256
)

// DefaultModels is the rotation used when Config.Models is empty.
var DefaultModels = []string{
	"google/gemini-2.0-flash-exp:free",
	"deepseek/deepseek-r1:free",
	"mistralai/mistral-7b-instruct:free",
	"openrouter/auto",
}

var (
	errRateLimited = errors.New("fallback: upstream rate limit")
	errNoModel     = errors.New("fallback: model unavailable")
	errEmptyReply  = errors.New("fallback: empty reply")
)

// Config configures a Client.
type Config struct {
	// APIKey is the bearer token. Without one the client never answers.
	APIKey  string
	BaseURL string
	Models  []string
	Timeout time.Duration

	// Rate and Burst bound requests per sender. A negative Rate disables
	// local limiting.
	Rate  rate.Limit
	Burst int

	// Retry governs repeated attempts against one model on transport
	// errors and 5xx responses. Zero means two attempts.
	Retry retry.Config
}

// Client is safe for concurrent use.
type Client struct {
	cfg    Config
	http   *http.Client
	limits *limiter

	mu      sync.Mutex
	current int
}

// New returns a Client.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if len(cfg.Models) == 0 {
		cfg.Models = DefaultModels
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Rate == 0 {
		cfg.Rate = DefaultRate
	}
	if cfg.Burst <= 0 {
		cfg.Burst = DefaultBurst
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry = retry.Config{MaxAttempts: 2, InitialDelay: 250 * time.Millisecond, MaxDelay: 2 * time.Second}
	}
	var lim *limiter
	if cfg.Rate > 0 {
		lim = newLimiter(cfg.Rate, cfg.Burst)
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		limits: lim,
	}
}

// Enabled reports whether the client has credentials to call upstream.
func (c *Client) Enabled() bool { return c.cfg.APIKey != "" }

// Respond asks the upstream model for a short reply in language. It reports
// false when no reply could be obtained: no API key, the sender is over its
// local rate, or every model failed.
func (c *Client) Respond(ctx context.Context, text string, language lang.Language) (string, bool) {
	if !c.Enabled() {
		metrics.FallbackRequestsTotal.WithLabelValues(metrics.OutcomeUnavailable).Inc()
		return "", false
	}
	sender := action.SenderFrom(ctx)
	if c.limits != nil && !c.limits.allow(sender) {
		metrics.FallbackRequestsTotal.WithLabelValues(metrics.OutcomeRateLimited).Inc()
		slog.Warn("fallback: sender over rate limit", "sender", sender)
		return "", false
	}

	start := c.start()
	n := len(c.cfg.Models)
	for i := 0; i < n; i++ {
		idx := (start + i) % n
		model := c.cfg.Models[idx]

		var reply string
		err := retry.Do(ctx, c.cfg.Retry, func() error {
			var err error
			reply, err = c.complete(ctx, model, text, language)
			return err
		})
		if err == nil {
			c.remember(idx)
			metrics.FallbackRequestsTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
			return reply, true
		}
		if ctx.Err() != nil {
			break
		}
		slog.Warn("fallback: model failed, trying next", "model", model, "err", redact.String(err.Error(), c.cfg.APIKey))
	}

	metrics.FallbackRequestsTotal.WithLabelValues(metrics.OutcomeFailure).Inc()
	return "", false
}

func (c *Client) start() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *Client) remember(idx int) {
	c.mu.Lock()
	c.current = idx
	c.mu.Unlock()
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// complete performs one chat completion call. Errors that another attempt
// on the same model cannot fix are wrapped with retry.Permanent.
func (c *Client) complete(ctx context.Context, model, text string, language lang.Language) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: SystemPrompt(language)},
			{Role: "user", Content: text},
		},
		MaxTokens: maxReplyTokens,
	})
	if err != nil {
		return "", retry.Permanent(fmt.Errorf("fallback: marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", retry.Permanent(fmt.Errorf("fallback: create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("X-Title", "Vaani")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("fallback: http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("fallback: read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", retry.Permanent(errRateLimited)
	case resp.StatusCode == http.StatusNotFound:
		return "", retry.Permanent(errNoModel)
	case resp.StatusCode >= 500:
		return "", fmt.Errorf("fallback: HTTP %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return "", retry.Permanent(fmt.Errorf("fallback: HTTP %d: %.200s", resp.StatusCode, raw))
	}

	var decoded chatResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", retry.Permanent(fmt.Errorf("fallback: decode response: %w", err))
	}
	if decoded.Error != nil {
		return "", retry.Permanent(fmt.Errorf("fallback: API error: %s", decoded.Error.Message))
	}
	if len(decoded.Choices) == 0 {
		return "", retry.Permanent(errEmptyReply)
	}
	reply := strings.TrimSpace(decoded.Choices[0].Message.Content)
	if reply == "" {
		return "", retry.Permanent(errEmptyReply)
	}
	return reply, nil
}

package fallback_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bdobrica/Vaani/common/retry"
	"github.com/bdobrica/Vaani/internal/vaani/action"
	"github.com/bdobrica/Vaani/internal/vaani/fallback"
	"github.com/bdobrica/Vaani/internal/vaani/lang"
)

// upstream is a scripted chat completions endpoint. status maps a model to
// the HTTP status it answers with; unlisted models answer 200.
type upstream struct {
	mu      sync.Mutex
	status  map[string][]int
	models  []string
	prompts []string
	auth    string
}

func (u *upstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	u.mu.Lock()
	u.models = append(u.models, req.Model)
	u.prompts = append(u.prompts, req.Messages[0].Content)
	u.auth = r.Header.Get("Authorization")
	code := http.StatusOK
	if seq := u.status[req.Model]; len(seq) > 0 {
		code = seq[0]
		u.status[req.Model] = seq[1:]
	}
	u.mu.Unlock()

	if code != http.StatusOK {
		w.WriteHeader(code)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"choices": []map[string]any{{"message": map[string]string{
			"role": "assistant", "content": "  reply from " + req.Model + "\n",
		}}},
	})
}

func (u *upstream) calls() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]string(nil), u.models...)
}

func (u *upstream) lastRequest() (auth, prompt string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if n := len(u.prompts); n > 0 {
		prompt = u.prompts[n-1]
	}
	return u.auth, prompt
}

func newClient(t *testing.T, u *upstream, cfg fallback.Config) *fallback.Client {
	t.Helper()
	srv := httptest.NewServer(u)
	t.Cleanup(srv.Close)
	cfg.BaseURL = srv.URL
	if cfg.APIKey == "" {
		cfg.APIKey = "sk-test-key"
	}
	if len(cfg.Models) == 0 {
		cfg.Models = []string{"alpha", "beta", "gamma"}
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry = retry.Config{MaxAttempts: 2, InitialDelay: time.Millisecond}
	}
	if cfg.Rate == 0 {
		cfg.Rate = -1
	}
	return fallback.New(cfg)
}

func TestRespond_Success(t *testing.T) {
	u := &upstream{}
	c := newClient(t, u, fallback.Config{})

	reply, ok := c.Respond(context.Background(), "tell me a joke", lang.Hindi)
	if !ok || reply != "reply from alpha" {
		t.Fatalf("got (%q, %v)", reply, ok)
	}
	auth, prompt := u.lastRequest()
	if auth != "Bearer sk-test-key" {
		t.Errorf("Authorization: got %q", auth)
	}
	if !strings.Contains(prompt, "Hindi") {
		t.Errorf("system prompt does not ask for Hindi: %q", prompt)
	}
}

func TestRespond_NoAPIKey(t *testing.T) {
	c := fallback.New(fallback.Config{})
	if c.Enabled() {
		t.Error("Enabled: got true without a key")
	}
	if _, ok := c.Respond(context.Background(), "hello", lang.English); ok {
		t.Error("Respond without a key should report false")
	}
}

func TestRespond_RotatesPastUnavailableModels(t *testing.T) {
	u := &upstream{status: map[string][]int{
		"alpha": {http.StatusTooManyRequests},
		"beta":  {http.StatusNotFound},
	}}
	c := newClient(t, u, fallback.Config{})

	reply, ok := c.Respond(context.Background(), "hi", lang.English)
	if !ok || reply != "reply from gamma" {
		t.Fatalf("got (%q, %v)", reply, ok)
	}
	// 429 and 404 are not retried against the same model.
	if got := u.calls(); strings.Join(got, ",") != "alpha,beta,gamma" {
		t.Errorf("calls: got %v", got)
	}

	// The model that answered is tried first next time.
	if reply, _ := c.Respond(context.Background(), "again", lang.English); reply != "reply from gamma" {
		t.Errorf("second reply: got %q", reply)
	}
	if got := u.calls(); got[len(got)-1] != "gamma" || len(got) != 4 {
		t.Errorf("calls after second request: got %v", got)
	}
}

func TestRespond_RetriesServerErrors(t *testing.T) {
	u := &upstream{status: map[string][]int{"alpha": {http.StatusBadGateway}}}
	c := newClient(t, u, fallback.Config{})

	reply, ok := c.Respond(context.Background(), "hi", lang.English)
	if !ok || reply != "reply from alpha" {
		t.Fatalf("got (%q, %v)", reply, ok)
	}
	if got := u.calls(); strings.Join(got, ",") != "alpha,alpha" {
		t.Errorf("calls: got %v", got)
	}
}

func TestRespond_AllModelsFail(t *testing.T) {
	u := &upstream{status: map[string][]int{
		"alpha": {http.StatusBadRequest},
		"beta":  {http.StatusUnauthorized},
		"gamma": {http.StatusTooManyRequests},
	}}
	c := newClient(t, u, fallback.Config{})

	if reply, ok := c.Respond(context.Background(), "hi", lang.English); ok {
		t.Errorf("got (%q, true), want failure", reply)
	}
}

func TestRespond_PerSenderRateLimit(t *testing.T) {
	u := &upstream{}
	c := newClient(t, u, fallback.Config{Rate: 0.001, Burst: 1})

	alice := action.WithSender(context.Background(), "@alice:example.org")
	bob := action.WithSender(context.Background(), "@bob:example.org")

	if _, ok := c.Respond(alice, "one", lang.English); !ok {
		t.Fatal("first request should pass")
	}
	if _, ok := c.Respond(alice, "two", lang.English); ok {
		t.Error("second request from the same sender should be limited")
	}
	if _, ok := c.Respond(bob, "one", lang.English); !ok {
		t.Error("another sender should have its own budget")
	}
	if n := len(u.calls()); n != 2 {
		t.Errorf("upstream calls: got %d, want 2", n)
	}
}

func TestSystemPrompt(t *testing.T) {
	if p := fallback.SystemPrompt(lang.English); !strings.Contains(p, "English") {
		t.Errorf("English prompt: %q", p)
	}
	if p := fallback.SystemPrompt(lang.Hindi); !strings.Contains(p, "Hindi") {
		t.Errorf("Hindi prompt: %q", p)
	}
}

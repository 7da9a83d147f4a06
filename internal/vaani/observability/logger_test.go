package observability_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bdobrica/Vaani/common/trace"
	"github.com/bdobrica/Vaani/internal/vaani/observability"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		if got := observability.ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q): got %v, want %v", in, got, want)
		}
	}
}

func TestNewHandler_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(observability.NewHandler(&buf, observability.Config{Level: "info", Format: "json"}))
	log.Debug("dropped")
	log.Info("router: handled", "action", "time")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1: %q", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if rec["msg"] != "router: handled" || rec["action"] != "time" {
		t.Errorf("unexpected record: %v", rec)
	}
}

func TestSetup_WritesRotatingFile(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	path := filepath.Join(t.TempDir(), "vaani.log")
	closer := observability.Setup(observability.Config{Level: "info", File: path, MaxAgeDays: 30})
	slog.Info("observability: file test")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "observability: file test") {
		t.Errorf("log file missing message: %q", data)
	}
}

func TestWithTrace(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
	slog.SetDefault(slog.New(observability.NewHandler(&buf, observability.Config{Format: "text"})))

	ctx := trace.WithTraceID(context.Background(), "t_abc")
	observability.WithTrace(ctx).Info("hello")
	if !strings.Contains(buf.String(), "trace_id=t_abc") {
		t.Errorf("missing trace_id: %q", buf.String())
	}
}

func TestRedactSecrets(t *testing.T) {
	got := observability.RedactSecrets("token sk-secret-123 used", "sk-secret-123")
	if strings.Contains(got, "sk-secret-123") {
		t.Errorf("secret leaked: %q", got)
	}
}

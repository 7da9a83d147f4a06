package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/bdobrica/Vaani/common/version"
	"github.com/bdobrica/Vaani/internal/vaani/automation"
	"github.com/bdobrica/Vaani/internal/vaani/confirm"
	"github.com/bdobrica/Vaani/internal/vaani/metrics"
)

// StatusSource is what the health server reports on.
type StatusSource interface {
	AutomationStatus() automation.Status
	PendingConfirmations() []confirm.Pending
}

// HealthServer exposes /health, /status, /confirmations and /metrics.
type HealthServer struct {
	addr      string
	source    StatusSource
	startedAt time.Time
	mux       *http.ServeMux
}

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
}

type statusResponse struct {
	Status               string            `json:"status"`
	Version              string            `json:"version"`
	Commit               string            `json:"commit"`
	BuildTime            string            `json:"build_time"`
	StartedAt            time.Time         `json:"started_at"`
	UptimeSecs           float64           `json:"uptime_seconds"`
	PendingConfirmations int               `json:"pending_confirmations"`
	Automation           automation.Status `json:"automation"`
}

// NewHealthServer creates the server without starting it.
func NewHealthServer(addr string, source StatusSource) *HealthServer {
	mux := http.NewServeMux()
	hs := &HealthServer{
		addr:      addr,
		source:    source,
		startedAt: time.Now(),
		mux:       mux,
	}
	mux.HandleFunc("GET /health", hs.handleHealth)
	mux.HandleFunc("GET /status", hs.handleStatus)
	mux.HandleFunc("GET /confirmations", hs.handleConfirmations)
	mux.Handle("GET /metrics", metrics.Handler())
	return hs
}

// ServeHTTP lets tests drive the routes with httptest.NewRecorder.
func (h *HealthServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// Serve listens on the configured address until ctx is cancelled.
func (h *HealthServer) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", h.addr)
	if err != nil {
		return fmt.Errorf("health server: listen %s: %w", h.addr, err)
	}
	srv := &http.Server{
		Handler:      h,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("health server: shutdown", "err", err)
		}
	}()

	slog.Info("health server: listening", "addr", ln.Addr().String())
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("health server: %w", err)
	}
	return nil
}

func (h *HealthServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Version: version.Version,
		Commit:  version.GitCommit,
	})
}

func (h *HealthServer) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{
		Status:               "ok",
		Version:              version.Version,
		Commit:               version.GitCommit,
		BuildTime:            version.BuildTime,
		StartedAt:            h.startedAt,
		UptimeSecs:           time.Since(h.startedAt).Seconds(),
		PendingConfirmations: len(h.source.PendingConfirmations()),
		Automation:           h.source.AutomationStatus(),
	})
}

func (h *HealthServer) handleConfirmations(w http.ResponseWriter, _ *http.Request) {
	pending := h.source.PendingConfirmations()
	if pending == nil {
		pending = []confirm.Pending{}
	}
	writeJSON(w, http.StatusOK, pending)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("health server: encode response", "err", err)
	}
}

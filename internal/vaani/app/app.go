// Package app wires the Vaani components together and supervises their
// background loops.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bdobrica/Vaani/internal/vaani/action"
	"github.com/bdobrica/Vaani/internal/vaani/actions"
	"github.com/bdobrica/Vaani/internal/vaani/automation"
	"github.com/bdobrica/Vaani/internal/vaani/clock"
	"github.com/bdobrica/Vaani/internal/vaani/confirm"
	"github.com/bdobrica/Vaani/internal/vaani/fallback"
	"github.com/bdobrica/Vaani/internal/vaani/i18n"
	"github.com/bdobrica/Vaani/internal/vaani/lang"
	"github.com/bdobrica/Vaani/internal/vaani/lexicon"
	"github.com/bdobrica/Vaani/internal/vaani/matrix"
	"github.com/bdobrica/Vaani/internal/vaani/parser"
	"github.com/bdobrica/Vaani/internal/vaani/router"
	"github.com/bdobrica/Vaani/internal/vaani/store"
)

const (
	pruneInterval = time.Hour
	notifyTimeout = 10 * time.Second
)

// App is the main Vaani application.
type App struct {
	cfg     Config
	clk     clock.Clock
	store   *store.Store
	engine  *automation.Engine
	confirm *confirm.Manager
	router  *router.Router
	matrix  *matrix.Client
	health  *HealthServer

	notifyWG sync.WaitGroup
}

// New opens the store, loads definitions and wires every component. It
// starts nothing; call Run for that.
func New(cfg Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("app: invalid config: %w", err)
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.Real{}
	}
	ctx := context.Background()

	lx := lexicon.Default()
	if cfg.LexiconFile != "" {
		extra, err := lexicon.LoadOverlay(cfg.LexiconFile)
		if err != nil {
			return nil, err
		}
		if lx, err = lx.Extend(extra...); err != nil {
			return nil, err
		}
		slog.Info("app: lexicon overlay loaded", "file", cfg.LexiconFile, "entries", len(extra))
	}

	st, err := store.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("app: open store: %w", err)
	}

	a := &App{cfg: cfg, clk: cfg.Clock, store: st}
	if err := a.wire(ctx, lx); err != nil {
		st.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) wire(ctx context.Context, lx *lexicon.Lexicon) error {
	cfg := a.cfg

	a.engine = automation.New(automation.Config{
		Repository: a.store,
		Clock:      a.clk,
		MaxDepth:   cfg.MaxMacroDepth,
		Location:   cfg.Location,
	})
	a.engine.Load(ctx)
	if cfg.SeedPresets {
		a.engine.SeedPresets(ctx)
	}
	if cfg.DefinitionsFile != "" {
		tasks, macros, err := a.engine.LoadDefinitions(ctx, cfg.DefinitionsFile)
		if err != nil {
			return fmt.Errorf("app: %w", err)
		}
		slog.Info("app: definitions applied", "file", cfg.DefinitionsFile, "tasks", tasks, "macros", macros)
	}

	a.confirm = confirm.New(confirm.Config{
		Timeout: cfg.ConfirmationTimeout,
		Grace:   cfg.ConfirmationGrace,
		Clock:   a.clk,
	})

	var fb router.Fallback
	if client := fallback.New(cfg.Fallback); client.Enabled() {
		fb = client
	} else {
		slog.Info("app: conversational fallback disabled, no API key")
	}

	a.router = router.New(router.Config{
		Parser:        parser.New(lx),
		Confirmations: a.confirm,
		Macros:        a.engine,
		Fallback:      fb,
		Journal:       a.store,
		Clock:         a.clk,
	})

	builtins := actions.New(actions.Config{
		Clock:          a.clk,
		Location:       cfg.Location,
		Power:          cfg.Power,
		Desktop:        cfg.Desktop,
		AllowDangerous: cfg.AllowDangerous,
		Automation:     a.engine,
		Confirmations:  a.confirm,
	})
	builtins.BindStep(a.router.Step)
	if err := builtins.Register(a.router.Registry()); err != nil {
		return fmt.Errorf("app: register actions: %w", err)
	}
	a.engine.SetDefaultTaskCallback(a.router.RunTask)

	if cfg.Matrix.Homeserver != "" {
		mcfg := cfg.Matrix
		mcfg.DB = a.store.DB()
		mc, err := matrix.New(mcfg)
		if err != nil {
			return fmt.Errorf("app: %w", err)
		}
		mc.SetHandler(a.handleMessage)
		a.matrix = mc
		a.confirm.SetTimeoutCallback(a.notifyTimeout)
	}

	if cfg.HTTPAddr != "" {
		a.health = NewHealthServer(cfg.HTTPAddr, a)
	}
	return nil
}

// Router returns the command router.
func (a *App) Router() *router.Router { return a.router }

// Engine returns the automation engine.
func (a *App) Engine() *automation.Engine { return a.engine }

// Store returns the database.
func (a *App) Store() *store.Store { return a.store }

// AutomationStatus implements StatusSource.
func (a *App) AutomationStatus() automation.Status { return a.engine.Status() }

// PendingConfirmations implements StatusSource.
func (a *App) PendingConfirmations() []confirm.Pending { return a.confirm.Pending() }

// Run starts the scheduler, the confirmation sweeper and, when configured,
// the HTTP server, the Matrix transport and command log pruning. It blocks
// until ctx is cancelled or one of them fails.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return a.engine.Run(ctx) })
	g.Go(func() error { return a.confirm.Run(ctx) })
	if a.health != nil {
		g.Go(func() error { return a.health.Serve(ctx) })
	}
	if a.matrix != nil {
		g.Go(func() error { return a.matrix.Run(ctx) })
	}
	if a.cfg.LogRetentionDays > 0 {
		g.Go(func() error { return a.pruneLoop(ctx) })
	}

	slog.Info("app: running",
		"http", a.cfg.HTTPAddr != "",
		"matrix", a.matrix != nil,
		"tasks", len(a.engine.Tasks()),
		"macros", len(a.engine.Macros()),
	)
	err := g.Wait()
	a.engine.Stop()
	a.notifyWG.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// Close releases the database. Call it after Run has returned.
func (a *App) Close() error {
	a.engine.Stop()
	a.notifyWG.Wait()
	return a.store.Close()
}

// Submit handles one line of user text: an approve/deny message resolves a
// confirmation, anything else is a command.
func (a *App) Submit(ctx context.Context, req router.Request) action.Result {
	d, err := confirm.ParseDecision(req.Text)
	switch {
	case err == nil:
		if d.Reason != "" {
			slog.Info("app: decision reason", "id", d.ID, "approve", d.Approve, "reason", d.Reason)
		}
		return a.router.Decide(ctx, d.ID, d.Approve, req.Sender)
	case !errors.Is(err, confirm.ErrNotADecision):
		return action.Fail(action.CodeConfirmationInvalid, err.Error())
	}
	return a.router.Handle(ctx, req)
}

// PruneJournal deletes command log rows older than the retention window.
func (a *App) PruneJournal(ctx context.Context) (int64, error) {
	cutoff := a.clk.Now().AddDate(0, 0, -a.cfg.LogRetentionDays)
	return a.store.PruneCommandLog(ctx, cutoff)
}

func (a *App) pruneLoop(ctx context.Context) error {
	for {
		if n, err := a.PruneJournal(ctx); err != nil {
			slog.Error("app: prune command log", "err", err)
		} else if n > 0 {
			slog.Info("app: pruned command log", "rows", n)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-a.clk.After(pruneInterval):
		}
	}
}

func (a *App) handleMessage(ctx context.Context, msg matrix.Message) string {
	res := a.Submit(ctx, router.Request{
		Text:   msg.Text,
		Sender: msg.Sender,
		Origin: msg.Room,
	})
	return res.Response
}

// notifyTimeout tells the room a confirmation came from that it expired.
// It runs on a timer goroutine, so the send happens in the background.
func (a *App) notifyTimeout(p confirm.Pending) {
	if p.Origin == "" || a.matrix == nil {
		return
	}
	language := p.Language
	if !language.Valid() {
		language = lang.English
	}
	text := i18n.T(language, i18n.ConfirmationTimeout)

	a.notifyWG.Add(1)
	go func() {
		defer a.notifyWG.Done()
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := a.matrix.SendNotice(ctx, p.Origin, text); err != nil {
			slog.Error("app: timeout notice failed", "id", p.ID, "room", p.Origin, "err", err)
		}
	}()
}

package actions

import (
	"context"
	"log/slog"

	"github.com/bdobrica/Vaani/internal/vaani/action"
)

// DryRun logs what it would do and always succeeds.
type DryRun struct{}

var (
	_ PowerController = DryRun{}
	_ Desktop         = DryRun{}
)

func (DryRun) Shutdown(context.Context) error { return dryRun(action.Shutdown, "") }
func (DryRun) Restart(context.Context) error  { return dryRun(action.Restart, "") }
func (DryRun) Sleep(context.Context) error    { return dryRun(action.Sleep, "") }

func (DryRun) Do(_ context.Context, key action.Key, target string) error {
	return dryRun(key, target)
}

func dryRun(key action.Key, target string) error {
	slog.Info("actions: dry run", "action", key, "target", target)
	return nil
}

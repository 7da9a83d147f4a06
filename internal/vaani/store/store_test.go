package store_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/bdobrica/Vaani/internal/vaani/action"
	"github.com/bdobrica/Vaani/internal/vaani/automation"
	"github.com/bdobrica/Vaani/internal/vaani/lang"
	"github.com/bdobrica/Vaani/internal/vaani/router"
	"github.com/bdobrica/Vaani/internal/vaani/store"
)

var epoch = time.Date(2026, time.January, 5, 9, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "vaani-test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// --- Migrations ---

func TestNew_AppliesMigrationsOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vaani.db")

	s, err := store.New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	v, err := s.SchemaVersion()
	if err != nil || v < 1 {
		t.Fatalf("SchemaVersion: got %d, %v", v, err)
	}
	s.Close()

	// Reopening must not re-run applied migrations.
	s, err = store.New(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	var n int
	if err := s.DB().QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != v {
		t.Errorf("schema_migrations rows: got %d, want %d", n, v)
	}
}

// --- Tasks ---

func TestSaveAndLoadTasks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tasks := []automation.Task{
		{
			ID: "b2", Name: "Cleanup", Command: "cleanup_temp", Kind: automation.Weekly, Value: "10:00",
			Days: []string{"sunday"}, Enabled: true, CreatedAt: epoch, LastRun: epoch.Add(time.Hour), RunCount: 3,
			Params: map[string]any{"path": "/tmp"},
		},
		{ID: "a1", Name: "Status", Command: "system_status", Kind: automation.Interval, Value: "60", CreatedAt: epoch},
	}
	if err := s.SaveTasks(ctx, tasks); err != nil {
		t.Fatalf("SaveTasks: %v", err)
	}

	got, err := s.LoadTasks(ctx)
	if err != nil {
		t.Fatalf("LoadTasks: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("LoadTasks: got %d tasks, want 2", len(got))
	}
	if got[0].ID != "b2" || got[1].ID != "a1" {
		t.Errorf("order not preserved: got %s, %s", got[0].ID, got[1].ID)
	}

	first := got[0]
	if first.Kind != automation.Weekly || first.Value != "10:00" || len(first.Days) != 1 || first.Days[0] != "sunday" {
		t.Errorf("schedule: got %+v", first)
	}
	if !first.Enabled || first.RunCount != 3 || !first.LastRun.Equal(epoch.Add(time.Hour)) || !first.CreatedAt.Equal(epoch) {
		t.Errorf("state: got %+v", first)
	}
	if first.Params["path"] != "/tmp" {
		t.Errorf("Params: got %v", first.Params)
	}
	if !got[1].LastRun.IsZero() || got[1].Params != nil {
		t.Errorf("never-run task: got LastRun=%v Params=%v", got[1].LastRun, got[1].Params)
	}
}

func TestSaveTasks_ReplacesWholeSet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SaveTasks(ctx, []automation.Task{
		{ID: "a", Name: "A", Command: "time", Kind: automation.Daily, Value: "08:00", CreatedAt: epoch},
		{ID: "b", Name: "B", Command: "date", Kind: automation.Daily, Value: "09:00", CreatedAt: epoch},
	}); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveTasks(ctx, []automation.Task{
		{ID: "b", Name: "B2", Command: "date", Kind: automation.Daily, Value: "09:30", CreatedAt: epoch},
	}); err != nil {
		t.Fatal(err)
	}

	got, err := s.LoadTasks(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Name != "B2" || got[0].Value != "09:30" {
		t.Errorf("got %+v", got)
	}
}

func TestLoadTasks_SkipsCorruptRows(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SaveTasks(ctx, []automation.Task{
		{ID: "good", Name: "Good", Command: "time", Kind: automation.Daily, Value: "08:00", CreatedAt: epoch},
		{ID: "bad", Name: "Bad", Command: "time", Kind: automation.Daily, Value: "08:00", CreatedAt: epoch},
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.DB().Exec(`UPDATE scheduled_tasks SET params_json = '{not json' WHERE id = 'bad'`); err != nil {
		t.Fatal(err)
	}

	got, err := s.LoadTasks(ctx)
	if err != nil {
		t.Fatalf("LoadTasks: %v", err)
	}
	if len(got) != 1 || got[0].ID != "good" {
		t.Errorf("got %+v, want only the good row", got)
	}
}

// --- Macros ---

func TestSaveAndLoadMacros(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	m := automation.Macro{
		ID: "m1", Name: "Work Mode", Description: "start the day",
		Steps: []automation.Step{
			{Command: "open_app", Params: map[string]any{"app": "chrome"}},
			{Command: "open_app", Delay: 2 * time.Second, Params: map[string]any{"app": "vscode"}},
			{Command: "show_desktop", Delay: 1500 * time.Millisecond},
		},
		Trigger: automation.TriggerVoice, TriggerPhrase: "work mode", Hotkey: "ctrl+alt+w",
		Enabled: true, CreatedAt: epoch, RunCount: 7,
	}
	if err := s.SaveMacros(ctx, []automation.Macro{m}); err != nil {
		t.Fatalf("SaveMacros: %v", err)
	}

	got, err := s.LoadMacros(ctx)
	if err != nil {
		t.Fatalf("LoadMacros: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d macros, want 1", len(got))
	}
	g := got[0]
	if g.Name != m.Name || g.Trigger != m.Trigger || g.TriggerPhrase != m.TriggerPhrase || g.Hotkey != m.Hotkey {
		t.Errorf("identity: got %+v", g)
	}
	if !g.Enabled || g.RunCount != 7 || !g.CreatedAt.Equal(epoch) {
		t.Errorf("state: got %+v", g)
	}
	if len(g.Steps) != 3 {
		t.Fatalf("steps: got %d, want 3", len(g.Steps))
	}
	for i, want := range m.Steps {
		if g.Steps[i].Command != want.Command || g.Steps[i].Delay != want.Delay {
			t.Errorf("step %d: got %+v, want %+v", i, g.Steps[i], want)
		}
	}
	if g.Steps[1].Params["app"] != "vscode" {
		t.Errorf("step params: got %v", g.Steps[1].Params)
	}
}

func TestLoadMacros_SkipsCorruptSteps(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SaveMacros(ctx, []automation.Macro{
		{ID: "ok", Name: "OK", Steps: []automation.Step{{Command: "time"}}, Trigger: automation.TriggerManual, CreatedAt: epoch},
		{ID: "broken", Name: "Broken", Steps: []automation.Step{{Command: "time"}}, Trigger: automation.TriggerManual, CreatedAt: epoch},
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.DB().Exec(`UPDATE macros SET steps_json = 'oops' WHERE id = 'broken'`); err != nil {
		t.Fatal(err)
	}

	got, err := s.LoadMacros(ctx)
	if err != nil {
		t.Fatalf("LoadMacros: %v", err)
	}
	if len(got) != 1 || got[0].ID != "ok" {
		t.Errorf("got %+v", got)
	}
}

func TestStore_BacksAutomationEngine(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	eng := automation.New(automation.Config{Repository: s})
	t.Cleanup(eng.Stop)
	if n, m := eng.SeedPresets(ctx); n == 0 || m == 0 {
		t.Fatalf("SeedPresets: got %d tasks, %d macros", n, m)
	}

	restored := automation.New(automation.Config{Repository: s})
	t.Cleanup(restored.Stop)
	restored.Load(ctx)
	if len(restored.Tasks()) != len(eng.Tasks()) || len(restored.Macros()) != len(eng.Macros()) {
		t.Errorf("restored %d tasks / %d macros, want %d / %d",
			len(restored.Tasks()), len(restored.Macros()), len(eng.Tasks()), len(eng.Macros()))
	}
	if _, ok := restored.FindMacro("Work Mode"); !ok {
		t.Error("preset macro not restored")
	}
}

// --- Command journal ---

func TestRecordCommand_AndQueries(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	entries := []router.Entry{
		{TraceID: "t_1", Sender: "@alice:example.org", Origin: "!room", Text: "shutdown", Result: action.Result{
			Key: action.Shutdown, Language: lang.English, Kind: action.KindConfirmation,
			ConfirmationID: "c-1", Response: "Sure?", Timestamp: epoch,
		}},
		{TraceID: "t_1", Sender: "@alice:example.org", Text: "shutdown", Result: action.Result{
			Key: action.Shutdown, Language: lang.English, Kind: action.KindAction, Success: true,
			Response: "Shutting down.", Timestamp: epoch.Add(time.Second),
		}},
		{TraceID: "t_2", Sender: "cli", Text: "xyzzy", Result: action.Result{
			Key: action.Unknown, Language: lang.English, Kind: action.KindUnknown,
			ErrorCode: action.CodeUnrecognized, Timestamp: epoch.Add(2 * time.Second),
		}},
	}
	for _, e := range entries {
		if err := s.RecordCommand(ctx, e); err != nil {
			t.Fatalf("RecordCommand: %v", err)
		}
	}

	recent, err := s.RecentCommands(ctx, 2)
	if err != nil {
		t.Fatalf("RecentCommands: %v", err)
	}
	if len(recent) != 2 || recent[0].TraceID != "t_2" {
		t.Fatalf("RecentCommands: got %+v", recent)
	}
	if recent[0].ErrorCode.String != action.CodeUnrecognized || recent[0].Success {
		t.Errorf("unknown row: got %+v", recent[0])
	}

	byTrace, err := s.CommandsByTrace(ctx, "t_1")
	if err != nil {
		t.Fatalf("CommandsByTrace: %v", err)
	}
	if len(byTrace) != 2 {
		t.Fatalf("CommandsByTrace: got %d rows, want 2", len(byTrace))
	}
	if byTrace[0].ConfirmationID.String != "c-1" || byTrace[0].Origin != "!room" || byTrace[0].Type != "confirmation" {
		t.Errorf("first row: got %+v", byTrace[0])
	}
	if !byTrace[1].Success || byTrace[1].ConfirmationID.Valid {
		t.Errorf("second row: got %+v", byTrace[1])
	}
}

func TestPruneCommandLog(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, ts := range []time.Time{epoch.AddDate(0, 0, -40), epoch.AddDate(0, 0, -31), epoch} {
		if err := s.RecordCommand(ctx, router.Entry{TraceID: "t", Result: action.Result{
			Key: action.Time, Language: lang.English, Kind: action.KindAction, Timestamp: ts,
		}}); err != nil {
			t.Fatal(err)
		}
	}

	n, err := s.PruneCommandLog(ctx, epoch.AddDate(0, 0, -30))
	if err != nil {
		t.Fatalf("PruneCommandLog: %v", err)
	}
	if n != 2 {
		t.Errorf("pruned %d rows, want 2", n)
	}
	left, _ := s.RecentCommands(ctx, 10)
	if len(left) != 1 {
		t.Errorf("rows left: got %d, want 1", len(left))
	}
}

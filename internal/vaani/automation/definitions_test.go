package automation_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bdobrica/Vaani/internal/vaani/automation"
)

func TestSeedPresets_InstallsOnceByName(t *testing.T) {
	eng, _, _ := newEngine(t)
	ctx := context.Background()

	tasks, macros := eng.SeedPresets(ctx)
	if tasks != 3 || macros != 2 {
		t.Fatalf("first seed: got %d tasks, %d macros", tasks, macros)
	}
	tasks, macros = eng.SeedPresets(ctx)
	if tasks != 0 || macros != 0 {
		t.Errorf("second seed: got %d tasks, %d macros, want none", tasks, macros)
	}

	st := eng.Status()
	if st.EnabledTasks != 0 {
		t.Errorf("preset tasks should ship disabled, %d enabled", st.EnabledTasks)
	}
	if st.EnabledMacros != 2 {
		t.Errorf("preset macros should ship enabled, %d enabled", st.EnabledMacros)
	}
	if m, ok := eng.MatchTrigger("switch to work mode"); !ok || m.Name != "Work Mode" || len(m.Steps) != 3 {
		t.Errorf("Work Mode preset: got %+v (ok=%v)", m, ok)
	}
}

const sampleDefinitions = `
tasks:
  - name: Good Morning
    command: show_desktop
    schedule_type: daily
    schedule_time: "07:45"
  - name: Hourly
    command: system_status
    schedule_type: interval
    schedule_time: 60
    enabled: false
macros:
  - name: Movie Night
    trigger: voice
    trigger_phrase: movie time
    steps:
      - command: volume_up
      - command: open_app
        delay: 1.5
        parameters: {app: vlc}
      - command: maximize
        delay: 1m
`

func TestParseDefinitions(t *testing.T) {
	defs, err := automation.ParseDefinitions([]byte(sampleDefinitions))
	if err != nil {
		t.Fatalf("ParseDefinitions: %v", err)
	}
	if len(defs.Tasks) != 2 || len(defs.Macros) != 1 {
		t.Fatalf("got %d tasks, %d macros", len(defs.Tasks), len(defs.Macros))
	}
	if !defs.Tasks[0].Enabled || defs.Tasks[1].Enabled {
		t.Errorf("enabled defaults: %v %v", defs.Tasks[0].Enabled, defs.Tasks[1].Enabled)
	}
	if defs.Tasks[1].Value != "60" {
		t.Errorf("integer schedule_time: got %q", defs.Tasks[1].Value)
	}
	steps := defs.Macros[0].Steps
	if steps[0].Delay != 0 || steps[1].Delay != 1500*time.Millisecond || steps[2].Delay != time.Minute {
		t.Errorf("delays: %v %v %v", steps[0].Delay, steps[1].Delay, steps[2].Delay)
	}
	if steps[1].Params["app"] != "vlc" {
		t.Errorf("step params: %v", steps[1].Params)
	}
}

func TestParseDefinitions_Invalid(t *testing.T) {
	tests := map[string]string{
		"unknown field":    "tasks:\n  - name: a\n    command: b\n    schedule_type: daily\n    schedule_time: '08:00'\n    colour: red\n",
		"bad type":         "tasks:\n  - name: a\n    command: b\n    schedule_type: hourly\n    schedule_time: '1'\n",
		"macro no steps":   "macros:\n  - name: a\n    steps: []\n",
		"bad delay":        "macros:\n  - name: a\n    steps:\n      - command: x\n        delay: soon\n",
		"not a mapping":    "- just\n- a list\n",
		"missing required": "tasks:\n  - name: a\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := automation.ParseDefinitions([]byte(doc)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadDefinitions_UpsertsByName(t *testing.T) {
	eng, _, _ := newEngine(t)
	ctx := context.Background()
	eng.SeedPresets(ctx)

	before := findTask(t, eng, "Good Morning")
	path := filepath.Join(t.TempDir(), "automation.yaml")
	if err := os.WriteFile(path, []byte(sampleDefinitions), 0o600); err != nil {
		t.Fatal(err)
	}

	tasks, macros, err := eng.LoadDefinitions(ctx, path)
	if err != nil {
		t.Fatalf("LoadDefinitions: %v", err)
	}
	if tasks != 2 || macros != 1 {
		t.Errorf("applied %d tasks, %d macros", tasks, macros)
	}

	after := findTask(t, eng, "Good Morning")
	if after.ID != before.ID {
		t.Errorf("upsert replaced the task ID: %s -> %s", before.ID, after.ID)
	}
	if after.Value != "07:45" || !after.Enabled {
		t.Errorf("upsert did not apply definition: %+v", after)
	}
	if n := len(eng.Tasks()); n != 4 {
		t.Errorf("task count: got %d, want 4", n)
	}
	if _, ok := eng.MatchTrigger("it is movie time"); !ok {
		t.Error("imported macro not matched by trigger")
	}
}

func TestLoadDefinitions_MissingFile(t *testing.T) {
	eng, _, _ := newEngine(t)
	if _, _, err := eng.LoadDefinitions(context.Background(), filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func findTask(t *testing.T, eng *automation.Engine, name string) automation.Task {
	t.Helper()
	for _, task := range eng.Tasks() {
		if task.Name == name {
			return task
		}
	}
	t.Fatalf("task %q not found", name)
	return automation.Task{}
}

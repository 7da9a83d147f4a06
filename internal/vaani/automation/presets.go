package automation

import (
	"context"
	"log/slog"
	"time"
)

// PresetTasks returns the stock tasks. They ship disabled.
func PresetTasks() []Task {
	return []Task{
		{
			Name:        "Good Morning",
			Description: "Daily morning routine",
			Command:     "show_desktop",
			Kind:        Daily,
			Value:       "08:00",
		},
		{
			Name:        "System Check",
			Description: "Check system status",
			Command:     "system_status",
			Kind:        Interval,
			Value:       "60",
		},
		{
			Name:        "Weekly Cleanup",
			Description: "Clean up old files",
			Command:     "cleanup_temp",
			Kind:        Weekly,
			Value:       "10:00",
			Days:        []string{"sunday"},
		},
	}
}

// PresetMacros returns the stock macros. They ship enabled.
func PresetMacros() []Macro {
	openApp := func(app string) Step {
		return Step{Command: "open_app", Delay: 2 * time.Second, Params: map[string]any{"app": app}}
	}
	return []Macro{
		{
			Name:          "Work Mode",
			Description:   "Open work applications",
			Steps:         []Step{openApp("chrome"), openApp("vscode"), openApp("spotify")},
			Trigger:       TriggerVoice,
			TriggerPhrase: "work mode",
			Enabled:       true,
		},
		{
			Name:        "End Work Day",
			Description: "Close work applications and show desktop",
			Steps: []Step{
				{Command: "close_app", Delay: time.Second, Params: map[string]any{"app": "vscode"}},
				{Command: "show_desktop"},
			},
			Trigger:       TriggerVoice,
			TriggerPhrase: "end work",
			Enabled:       true,
		},
	}
}

// SeedPresets installs every preset whose name is not already taken and
// returns how many tasks and macros were added.
func (e *Engine) SeedPresets(ctx context.Context) (tasks, macros int) {
	for _, t := range PresetTasks() {
		e.mu.Lock()
		_, exists := e.taskByNameLocked(t.Name)
		e.mu.Unlock()
		if exists {
			continue
		}
		if _, err := e.CreateTask(ctx, t); err != nil {
			slog.Error("automation: seed preset task", "task", t.Name, "err", err)
			continue
		}
		tasks++
	}
	for _, m := range PresetMacros() {
		e.mu.Lock()
		_, exists := e.macroByNameLocked(m.Name)
		e.mu.Unlock()
		if exists {
			continue
		}
		if _, err := e.CreateMacro(ctx, m); err != nil {
			slog.Error("automation: seed preset macro", "macro", m.Name, "err", err)
			continue
		}
		macros++
	}
	if tasks+macros > 0 {
		slog.Info("automation: seeded presets", "tasks", tasks, "macros", macros)
	}
	return tasks, macros
}

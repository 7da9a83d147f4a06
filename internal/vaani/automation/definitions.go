package automation

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bdobrica/Vaani/common/yamlschema"
)

const definitionsSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "tasks": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "command", "schedule_type", "schedule_time"],
        "additionalProperties": false,
        "properties": {
          "name":          {"type": "string", "minLength": 1},
          "description":   {"type": "string"},
          "command":       {"type": "string", "minLength": 1},
          "schedule_type": {"type": "string", "enum": ["daily", "weekly", "interval", "once"]},
          "schedule_time": {"type": ["string", "integer"]},
          "days":          {"type": "array", "items": {"type": "string"}},
          "enabled":       {"type": "boolean"},
          "parameters":    {"type": "object"}
        }
      }
    },
    "macros": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "steps"],
        "additionalProperties": false,
        "properties": {
          "name":           {"type": "string", "minLength": 1},
          "description":    {"type": "string"},
          "trigger":        {"type": "string", "enum": ["voice", "hotkey", "manual"]},
          "trigger_phrase": {"type": "string"},
          "hotkey":         {"type": "string"},
          "enabled":        {"type": "boolean"},
          "steps": {
            "type": "array",
            "minItems": 1,
            "items": {
              "type": "object",
              "required": ["command"],
              "additionalProperties": false,
              "properties": {
                "command":    {"type": "string", "minLength": 1},
                "delay":      {"type": ["number", "string"]},
                "parameters": {"type": "object"}
              }
            }
          }
        }
      }
    }
  }
}`

var compiledDefinitionsSchema = yamlschema.MustCompile("definitions.schema.json", definitionsSchema)

// Definitions is a set of tasks and macros read from a file.
type Definitions struct {
	Tasks  []Task
	Macros []Macro
}

type definitionsFile struct {
	Tasks []struct {
		Name         string         `yaml:"name"`
		Description  string         `yaml:"description"`
		Command      string         `yaml:"command"`
		ScheduleType string         `yaml:"schedule_type"`
		ScheduleTime string         `yaml:"schedule_time"`
		Days         []string       `yaml:"days"`
		Enabled      *bool          `yaml:"enabled"`
		Parameters   map[string]any `yaml:"parameters"`
	} `yaml:"tasks"`
	Macros []struct {
		Name          string `yaml:"name"`
		Description   string `yaml:"description"`
		Trigger       string `yaml:"trigger"`
		TriggerPhrase string `yaml:"trigger_phrase"`
		Hotkey        string `yaml:"hotkey"`
		Enabled       *bool  `yaml:"enabled"`
		Steps         []struct {
			Command    string         `yaml:"command"`
			Delay      string         `yaml:"delay"`
			Parameters map[string]any `yaml:"parameters"`
		} `yaml:"steps"`
	} `yaml:"macros"`
}

// ParseDefinitions validates and decodes a definitions document:
//
//	tasks:
//	  - name: Good Morning
//	    command: show_desktop
//	    schedule_type: daily
//	    schedule_time: "08:00"
//	macros:
//	  - name: Work Mode
//	    trigger_phrase: work mode
//	    steps:
//	      - {command: open_app, delay: 2, parameters: {app: chrome}}
//
// Step delays are seconds when numeric, otherwise Go durations ("1m30s").
// Omitted enabled flags default to true.
func ParseDefinitions(data []byte) (Definitions, error) {
	if err := yamlschema.Validate(compiledDefinitionsSchema, data); err != nil {
		return Definitions{}, fmt.Errorf("automation: definitions: %w", err)
	}
	var doc definitionsFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Definitions{}, fmt.Errorf("automation: definitions: %w", err)
	}

	var defs Definitions
	for _, t := range doc.Tasks {
		defs.Tasks = append(defs.Tasks, Task{
			Name:        t.Name,
			Description: t.Description,
			Command:     t.Command,
			Kind:        ScheduleKind(t.ScheduleType),
			Value:       t.ScheduleTime,
			Days:        t.Days,
			Enabled:     t.Enabled == nil || *t.Enabled,
			Params:      t.Parameters,
		})
	}
	for _, m := range doc.Macros {
		macro := Macro{
			Name:          m.Name,
			Description:   m.Description,
			Trigger:       TriggerKind(m.Trigger),
			TriggerPhrase: m.TriggerPhrase,
			Hotkey:        m.Hotkey,
			Enabled:       m.Enabled == nil || *m.Enabled,
		}
		for i, s := range m.Steps {
			d, err := parseDelay(s.Delay)
			if err != nil {
				return Definitions{}, fmt.Errorf("automation: definitions: macro %q step %d: %w", m.Name, i+1, err)
			}
			macro.Steps = append(macro.Steps, Step{Command: s.Command, Delay: d, Params: s.Parameters})
		}
		defs.Macros = append(defs.Macros, macro)
	}
	return defs, nil
}

func parseDelay(v string) (time.Duration, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, nil
	}
	if secs, err := strconv.ParseFloat(v, 64); err == nil {
		if secs < 0 {
			return 0, fmt.Errorf("negative delay %q", v)
		}
		return time.Duration(secs * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid delay %q", v)
	}
	return d, nil
}

// LoadDefinitions reads a definitions file and applies it.
func (e *Engine) LoadDefinitions(ctx context.Context, path string) (tasks, macros int, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, 0, fmt.Errorf("automation: read definitions: %w", err)
	}
	defs, err := ParseDefinitions(data)
	if err != nil {
		return 0, 0, err
	}
	return e.ApplyDefinitions(ctx, defs)
}

// ApplyDefinitions upserts by name: an existing task or macro with the same
// name (case-insensitive) has its definition replaced, keeping its ID and
// run statistics; anything else is created. Every entry is validated before
// any is applied.
func (e *Engine) ApplyDefinitions(ctx context.Context, defs Definitions) (tasks, macros int, err error) {
	for _, t := range defs.Tasks {
		if err := ValidateTask(normalizeTask(t.clone())); err != nil {
			return 0, 0, err
		}
	}
	for _, m := range defs.Macros {
		if err := ValidateMacro(normalizeMacro(m.clone())); err != nil {
			return 0, 0, err
		}
	}

	for _, t := range defs.Tasks {
		e.mu.Lock()
		cur, exists := e.taskByNameLocked(t.Name)
		var id string
		if exists {
			id = cur.ID
		}
		e.mu.Unlock()

		if exists {
			def := t
			_, err = e.UpdateTask(ctx, id, func(dst *Task) {
				dst.Name, dst.Description, dst.Command = def.Name, def.Description, def.Command
				dst.Kind, dst.Value, dst.Days = def.Kind, def.Value, def.Days
				dst.Enabled, dst.Params = def.Enabled, def.Params
			})
		} else {
			_, err = e.CreateTask(ctx, t)
		}
		if err != nil {
			return tasks, macros, err
		}
		tasks++
	}

	for _, m := range defs.Macros {
		e.mu.Lock()
		cur, exists := e.macroByNameLocked(m.Name)
		var id string
		if exists {
			id = cur.ID
		}
		e.mu.Unlock()

		if exists {
			def := m
			_, err = e.UpdateMacro(ctx, id, func(dst *Macro) {
				dst.Name, dst.Description, dst.Steps = def.Name, def.Description, def.Steps
				dst.Trigger, dst.TriggerPhrase, dst.Hotkey = def.Trigger, def.TriggerPhrase, def.Hotkey
				dst.Enabled = def.Enabled
			})
		} else {
			_, err = e.CreateMacro(ctx, m)
		}
		if err != nil {
			return tasks, macros, err
		}
		macros++
	}
	return tasks, macros, nil
}

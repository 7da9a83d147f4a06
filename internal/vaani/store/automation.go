package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/bdobrica/Vaani/internal/vaani/automation"
)

var _ automation.Repository = (*Store)(nil)

// stepRow is the stored shape of a macro step. Delays are kept in
// milliseconds so the column stays readable from the sqlite shell.
type stepRow struct {
	Command string         `json:"command"`
	DelayMS int64          `json:"delay_ms"`
	Params  map[string]any `json:"parameters,omitempty"`
}

// LoadTasks returns every stored task in saved order. Rows that cannot be
// decoded are logged and skipped.
func (s *Store) LoadTasks(ctx context.Context) ([]automation.Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, command, schedule_type, schedule_time,
		       days_json, enabled, created_at, last_run, run_count, params_json
		FROM scheduled_tasks
		ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("store: load tasks: %w", err)
	}
	defer rows.Close()

	var out []automation.Task
	for rows.Next() {
		var (
			t                  automation.Task
			kind, days, params string
			lastRun            sql.NullTime
		)
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.Command, &kind, &t.Value,
			&days, &t.Enabled, &t.CreatedAt, &lastRun, &t.RunCount, &params); err != nil {
			slog.Warn("store: skipping unreadable task row", "err", err)
			continue
		}
		t.Kind = automation.ScheduleKind(kind)
		if lastRun.Valid {
			t.LastRun = lastRun.Time
		}
		if err := json.Unmarshal([]byte(days), &t.Days); err != nil {
			slog.Warn("store: skipping task with corrupt days", "id", t.ID, "err", err)
			continue
		}
		if err := decodeParams(params, &t.Params); err != nil {
			slog.Warn("store: skipping task with corrupt parameters", "id", t.ID, "err", err)
			continue
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: load tasks: %w", err)
	}
	return out, nil
}

// SaveTasks replaces the stored task set with tasks in one transaction.
func (s *Store) SaveTasks(ctx context.Context, tasks []automation.Task) error {
	return s.replace(ctx, "scheduled_tasks", func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO scheduled_tasks (id, position, name, description, command, schedule_type,
			    schedule_time, days_json, enabled, created_at, last_run, run_count, params_json)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, t := range tasks {
			days, err := json.Marshal(nonNil(t.Days))
			if err != nil {
				return fmt.Errorf("task %s days: %w", t.ID, err)
			}
			params, err := encodeParams(t.Params)
			if err != nil {
				return fmt.Errorf("task %s parameters: %w", t.ID, err)
			}
			if _, err := stmt.ExecContext(ctx, t.ID, i, t.Name, t.Description, t.Command, string(t.Kind),
				t.Value, string(days), t.Enabled, t.CreatedAt.UTC(), nullTime(t.LastRun), t.RunCount, params); err != nil {
				return fmt.Errorf("task %s: %w", t.ID, err)
			}
		}
		return nil
	})
}

// LoadMacros returns every stored macro in saved order. Rows that cannot be
// decoded are logged and skipped.
func (s *Store) LoadMacros(ctx context.Context) ([]automation.Macro, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, steps_json, trigger_type, trigger_phrase, hotkey,
		       enabled, created_at, run_count
		FROM macros
		ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("store: load macros: %w", err)
	}
	defer rows.Close()

	var out []automation.Macro
	for rows.Next() {
		var (
			m              automation.Macro
			steps, trigger string
		)
		if err := rows.Scan(&m.ID, &m.Name, &m.Description, &steps, &trigger, &m.TriggerPhrase,
			&m.Hotkey, &m.Enabled, &m.CreatedAt, &m.RunCount); err != nil {
			slog.Warn("store: skipping unreadable macro row", "err", err)
			continue
		}
		m.Trigger = automation.TriggerKind(trigger)

		var stored []stepRow
		if err := json.Unmarshal([]byte(steps), &stored); err != nil {
			slog.Warn("store: skipping macro with corrupt steps", "id", m.ID, "err", err)
			continue
		}
		m.Steps = make([]automation.Step, len(stored))
		for i, st := range stored {
			m.Steps[i] = automation.Step{
				Command: st.Command,
				Delay:   time.Duration(st.DelayMS) * time.Millisecond,
				Params:  st.Params,
			}
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: load macros: %w", err)
	}
	return out, nil
}

// SaveMacros replaces the stored macro set with macros in one transaction.
func (s *Store) SaveMacros(ctx context.Context, macros []automation.Macro) error {
	return s.replace(ctx, "macros", func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO macros (id, position, name, description, steps_json, trigger_type,
			    trigger_phrase, hotkey, enabled, created_at, run_count)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, m := range macros {
			rows := make([]stepRow, len(m.Steps))
			for j, st := range m.Steps {
				rows[j] = stepRow{Command: st.Command, DelayMS: st.Delay.Milliseconds(), Params: st.Params}
			}
			steps, err := json.Marshal(rows)
			if err != nil {
				return fmt.Errorf("macro %s steps: %w", m.ID, err)
			}
			if _, err := stmt.ExecContext(ctx, m.ID, i, m.Name, m.Description, string(steps), string(m.Trigger),
				m.TriggerPhrase, m.Hotkey, m.Enabled, m.CreatedAt.UTC(), m.RunCount); err != nil {
				return fmt.Errorf("macro %s: %w", m.ID, err)
			}
		}
		return nil
	})
}

// replace empties table and refills it through fill inside one transaction.
func (s *Store) replace(ctx context.Context, table string, fill func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: save %s: %w", table, err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
		tx.Rollback()
		return fmt.Errorf("store: save %s: %w", table, err)
	}
	if err := fill(tx); err != nil {
		tx.Rollback()
		return fmt.Errorf("store: save %s: %w", table, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: save %s: %w", table, err)
	}
	return nil
}

func encodeParams(p map[string]any) (string, error) {
	if p == nil {
		return "{}", nil
	}
	b, err := json.Marshal(p)
	return string(b), err
}

func decodeParams(s string, dst *map[string]any) error {
	if s == "" || s == "{}" || s == "null" {
		*dst = nil
		return nil
	}
	return json.Unmarshal([]byte(s), dst)
}

func nonNil(days []string) []string {
	if days == nil {
		return []string{}
	}
	return days
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

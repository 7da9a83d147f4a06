package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/bdobrica/Vaani/internal/vaani/router"
)

var _ router.Journal = (*Store)(nil)

// CommandLogEntry is one row of the command journal.
type CommandLogEntry struct {
	ID             int64
	Timestamp      time.Time
	TraceID        string
	Sender         string
	Origin         string
	Text           string
	Key            string
	Language       string
	Type           string
	Success        bool
	Response       string
	ErrorCode      sql.NullString
	ConfirmationID sql.NullString
}

// RecordCommand appends one handled command to the journal.
func (s *Store) RecordCommand(ctx context.Context, e router.Entry) error {
	res := e.Result
	ts := res.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO command_log (ts, trace_id, sender, origin, text, command_key, language,
		    result_type, success, response, error_code, confirmation_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, ts.UTC(), e.TraceID, e.Sender, e.Origin, e.Text, string(res.Key), string(res.Language),
		string(res.Kind), res.Success, res.Response, nullString(res.ErrorCode), nullString(res.ConfirmationID))
	if err != nil {
		return fmt.Errorf("store: record command: %w", err)
	}
	return nil
}

// RecentCommands returns up to limit journal rows, newest first.
func (s *Store) RecentCommands(ctx context.Context, limit int) ([]CommandLogEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, ts, trace_id, sender, origin, text, command_key, language, result_type,
		       success, response, error_code, confirmation_id
		FROM command_log
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("store: recent commands: %w", err)
	}
	defer rows.Close()

	var out []CommandLogEntry
	for rows.Next() {
		var e CommandLogEntry
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.TraceID, &e.Sender, &e.Origin, &e.Text, &e.Key,
			&e.Language, &e.Type, &e.Success, &e.Response, &e.ErrorCode, &e.ConfirmationID); err != nil {
			return nil, fmt.Errorf("store: scan command: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// CommandsByTrace returns the journal rows sharing traceID, oldest first.
func (s *Store) CommandsByTrace(ctx context.Context, traceID string) ([]CommandLogEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, ts, trace_id, sender, origin, text, command_key, language, result_type,
		       success, response, error_code, confirmation_id
		FROM command_log
		WHERE trace_id = ?
		ORDER BY id
	`, traceID)
	if err != nil {
		return nil, fmt.Errorf("store: commands by trace: %w", err)
	}
	defer rows.Close()

	var out []CommandLogEntry
	for rows.Next() {
		var e CommandLogEntry
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.TraceID, &e.Sender, &e.Origin, &e.Text, &e.Key,
			&e.Language, &e.Type, &e.Success, &e.Response, &e.ErrorCode, &e.ConfirmationID); err != nil {
			return nil, fmt.Errorf("store: scan command: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// PruneCommandLog deletes journal rows older than before and returns how
// many were removed.
func (s *Store) PruneCommandLog(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM command_log WHERE ts < ?", before.UTC())
	if err != nil {
		return 0, fmt.Errorf("store: prune command log: %w", err)
	}
	return res.RowsAffected()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

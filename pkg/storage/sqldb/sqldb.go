// Package sqldb implements storage.Driver over database/sql. It is
// database-agnostic and embedded by the sqlite and postgres drivers, which
// supply the connection and a Dialect.
package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Pagnarith-Pit/code-scribe-analytics-lab/pkg/storage"
)

// Dialect captures the SQL differences between backends.
type Dialect struct {
	// Name is used in error messages.
	Name string

	// Schema creates the table if it does not exist.
	Schema string

	// Numbered placeholders ($1, $2, ...) instead of "?".
	Numbered bool

	// TimestampText wraps a timestamp column so it scans into a string.
	TimestampText func(column string) string
}

// Driver provides storage operations on a *sql.DB.
type Driver struct {
	DB      *sql.DB
	Dialect Dialect
}

// Migrate creates the subproblem_time_logs table.
func (d *Driver) Migrate(ctx context.Context) error {
	if _, err := d.DB.ExecContext(ctx, d.Dialect.Schema); err != nil {
		return fmt.Errorf("failed to create %s schema: %w", d.Dialect.Name, err)
	}
	return nil
}

func (d *Driver) Create(ctx context.Context, log *storage.TimeLog) error {
	if log == nil || log.ID == "" {
		return errors.New("cannot store a session without an id")
	}

	_, err := d.DB.ExecContext(ctx, d.bind(
		`INSERT INTO `+storage.TableName+`
			(id, start_time, user_id, run_id, module_number, problem_index, subproblem_index)
			VALUES (?, ?, ?, ?, ?, ?, ?)`),
		log.ID, log.StartTime, nullString(log.UserID), nullString(log.RunID),
		log.ModuleNumber, log.ProblemIndex, log.SubproblemIndex,
	)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

func (d *Driver) StartTime(ctx context.Context, id string) (string, error) {
	var start string
	err := d.DB.QueryRowContext(ctx, d.bind(
		`SELECT `+d.Dialect.TimestampText("start_time")+` FROM `+storage.TableName+` WHERE id = ?`), id).
		Scan(&start)
	if errors.Is(err, sql.ErrNoRows) {
		return "", storage.NotFoundError{ID: id}
	}
	if err != nil {
		return "", fmt.Errorf("failed to query start time: %w", err)
	}
	return start, nil
}

func (d *Driver) End(ctx context.Context, id string, end time.Time, durationSeconds int64) error {
	res, err := d.DB.ExecContext(ctx, d.bind(
		`UPDATE `+storage.TableName+` SET end_time = ?, duration_seconds = ? WHERE id = ?`),
		storage.FormatTimestamp(end), durationSeconds, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return storage.NotFoundError{ID: id}
	}
	return nil
}

func (d *Driver) Get(ctx context.Context, id string) (*storage.TimeLog, error) {
	var (
		log                                 storage.TimeLog
		endTime, userID, runID              sql.NullString
		duration                            sql.NullInt64
		module, problemIndex, subproblemIdx sql.NullInt64
	)

	err := d.DB.QueryRowContext(ctx, d.bind(
		`SELECT id, `+d.Dialect.TimestampText("start_time")+`, `+d.Dialect.TimestampText("end_time")+`,
			duration_seconds, user_id, run_id, module_number, problem_index, subproblem_index
			FROM `+storage.TableName+` WHERE id = ?`), id).
		Scan(&log.ID, &log.StartTime, &endTime, &duration, &userID, &runID, &module, &problemIndex, &subproblemIdx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.NotFoundError{ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %w", err)
	}

	if endTime.Valid {
		t, err := parseStored(endTime.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse end time %q: %w", endTime.String, err)
		}
		log.EndTime = &t
	}
	if duration.Valid {
		log.DurationSeconds = &duration.Int64
	}
	log.UserID = userID.String
	log.RunID = runID.String
	log.ModuleNumber = intPtr(module)
	log.ProblemIndex = intPtr(problemIndex)
	log.SubproblemIndex = intPtr(subproblemIdx)

	return &log, nil
}

func (d *Driver) Close() error {
	return d.DB.Close()
}

// bind rewrites "?" placeholders for dialects with numbered placeholders.
func (d *Driver) bind(query string) string {
	if !d.Dialect.Numbered {
		return query
	}

	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteString("$" + strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// parseStored reads timestamps written by this package (RFC 3339) or
// rendered by Postgres' text cast ("2006-01-02 15:04:05.999999-07").
func parseStored(s string) (time.Time, error) {
	if t, err := time.Parse(storage.TimestampLayout, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02 15:04:05.999999999-07", s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

// Package storage persists subproblem timing sessions in the
// subproblem_time_logs table.
package storage

import (
	"context"
	"time"
)

// TableName is the table every driver reads and writes.
const TableName = "subproblem_time_logs"

// TimeLog is one row of subproblem_time_logs.
//
// StartTime is kept as the text the store returns; timer.ParseStartTime
// normalises it. EndTime and DurationSeconds are nil until the session ends.
type TimeLog struct {
	ID        string
	StartTime string

	EndTime         *time.Time
	DurationSeconds *int64

	// Context the frontend records when it starts timing. All optional.
	UserID          string
	RunID           string
	ModuleNumber    *int
	ProblemIndex    *int
	SubproblemIndex *int
}

// Driver defines the interface for the timing session store.
type Driver interface {
	// Create inserts a new session. log.ID and log.StartTime must be set.
	Create(ctx context.Context, log *TimeLog) error

	// StartTime returns the stored start timestamp text of a session.
	// Returns NotFoundError if no row has the id.
	StartTime(ctx context.Context, id string) (string, error)

	// End writes end_time and duration_seconds for a session. A second call
	// overwrites the first. Returns NotFoundError if no row has the id.
	End(ctx context.Context, id string, end time.Time, durationSeconds int64) error

	// Get returns the whole row.
	Get(ctx context.Context, id string) (*TimeLog, error)

	// Close releases the store's resources.
	Close() error
}

// TimestampLayout is the text form drivers store timestamps in.
const TimestampLayout = time.RFC3339Nano

// FormatTimestamp renders t in UTC in TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// Package timer records how long a learner spends on each subproblem.
package timer

import (
	"context"
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Pagnarith-Pit/code-scribe-analytics-lab/pkg/storage"
)

const (
	msgSessionIDRequired = "session_id is required"
	msgSessionNotFound   = "Session not found"
	msgInternal          = "Internal Server Error"
)

// Response is the JSON body of a timer operation.
type Response struct {
	Success   bool   `json:"success,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Ended describes a session that was just closed.
type Ended struct {
	SessionID       string
	StartTime       time.Time
	EndTime         time.Time
	DurationSeconds int64
}

// StartRequest is the optional context recorded with a new session.
type StartRequest struct {
	UserID          string `json:"user_id"`
	RunID           string `json:"run_id"`
	ModuleNumber    *int   `json:"module_number"`
	ProblemIndex    *int   `json:"problem_index"`
	SubproblemIndex *int   `json:"subproblem_index"`
}

// Config configures a Tracker.
type Config struct {
	Driver storage.Driver
	Logger *zap.Logger

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time

	// OnEnd is called after a session has been ended successfully. Optional.
	OnEnd func(Ended)
}

// Tracker starts and ends timing sessions.
//
// Ending is not idempotent: ending the same session twice recomputes the
// duration against the later time and overwrites the first result. Two
// concurrent ends race and the last write wins.
type Tracker struct {
	driver storage.Driver
	logger *zap.Logger
	now    func() time.Time
	onEnd  func(Ended)
}

func NewTracker(c Config) *Tracker {
	t := &Tracker{
		driver: c.Driver,
		logger: c.Logger,
		now:    c.Now,
		onEnd:  c.OnEnd,
	}
	if t.logger == nil {
		t.logger = zap.NewNop()
	}
	if t.now == nil {
		t.now = time.Now
	}
	return t
}

// StartSubproblem creates a session starting now and returns its id.
func (t *Tracker) StartSubproblem(ctx context.Context, req StartRequest) (Response, int) {
	log := &storage.TimeLog{
		ID:              uuid.NewString(),
		StartTime:       storage.FormatTimestamp(t.now()),
		UserID:          req.UserID,
		RunID:           req.RunID,
		ModuleNumber:    req.ModuleNumber,
		ProblemIndex:    req.ProblemIndex,
		SubproblemIndex: req.SubproblemIndex,
	}

	if err := t.driver.Create(ctx, log); err != nil {
		t.logger.Error("failed to start subproblem timer", zap.Error(err))
		return Response{Error: msgInternal}, http.StatusInternalServerError
	}

	t.logger.Debug("subproblem timer started", zap.String("session_id", log.ID))
	return Response{SessionID: log.ID}, http.StatusOK
}

// EndSubproblem closes a session: it computes the elapsed whole seconds
// since the stored start and writes the end time and duration.
func (t *Tracker) EndSubproblem(ctx context.Context, sessionID string) (Response, int) {
	if sessionID == "" {
		return Response{Error: msgSessionIDRequired}, http.StatusBadRequest
	}

	ended, err := t.end(ctx, sessionID)
	var notFound storage.NotFoundError
	switch {
	case errors.As(err, &notFound):
		t.logger.Debug("subproblem timer not found", zap.String("session_id", sessionID))
		return Response{Error: msgSessionNotFound}, http.StatusNotFound
	case err != nil:
		t.logger.Error("failed to end subproblem timer",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
		return Response{Error: msgInternal}, http.StatusInternalServerError
	}

	t.logger.Info("subproblem timer ended",
		zap.String("session_id", sessionID),
		zap.Int64("duration_seconds", ended.DurationSeconds),
	)
	if t.onEnd != nil {
		t.onEnd(ended)
	}
	return Response{Success: true}, http.StatusOK
}

func (t *Tracker) end(ctx context.Context, sessionID string) (Ended, error) {
	raw, err := t.driver.StartTime(ctx, sessionID)
	if err != nil {
		return Ended{}, err
	}

	start, err := ParseStartTime(raw)
	if err != nil {
		return Ended{}, err
	}

	now := t.now().UTC()
	duration := ElapsedSeconds(start, now)
	if err := t.driver.End(ctx, sessionID, now, duration); err != nil {
		return Ended{}, err
	}

	return Ended{
		SessionID:       sessionID,
		StartTime:       start,
		EndTime:         now,
		DurationSeconds: duration,
	}, nil
}

// ElapsedSeconds returns end-start in whole seconds, rounding halves to even.
func ElapsedSeconds(start, end time.Time) int64 {
	return int64(math.RoundToEven(end.Sub(start).Seconds()))
}

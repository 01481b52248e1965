// Package inmemory provides a map-backed storage driver. Sessions are lost
// when the process exits.
package inmemory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Pagnarith-Pit/code-scribe-analytics-lab/pkg/storage"
)

// Driver implements storage.Driver using an in-memory map.
type Driver struct {
	// mu guards logs.
	mu sync.RWMutex

	// logs maps session id to a copy of its row.
	logs map[string]storage.TimeLog
}

// NewDriver creates a new in-memory store.
func NewDriver() *Driver {
	return &Driver{
		logs: make(map[string]storage.TimeLog),
	}
}

func (d *Driver) Create(_ context.Context, log *storage.TimeLog) error {
	if log == nil || log.ID == "" {
		return errors.New("cannot store a session without an id")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.logs[log.ID]; ok {
		return errors.New("session already exists: " + log.ID)
	}
	d.logs[log.ID] = *log
	return nil
}

func (d *Driver) StartTime(_ context.Context, id string) (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	log, ok := d.logs[id]
	if !ok {
		return "", storage.NotFoundError{ID: id}
	}
	return log.StartTime, nil
}

func (d *Driver) End(_ context.Context, id string, end time.Time, durationSeconds int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	log, ok := d.logs[id]
	if !ok {
		return storage.NotFoundError{ID: id}
	}

	end = end.UTC()
	log.EndTime = &end
	log.DurationSeconds = &durationSeconds
	d.logs[id] = log
	return nil
}

func (d *Driver) Get(_ context.Context, id string) (*storage.TimeLog, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	log, ok := d.logs[id]
	if !ok {
		return nil, storage.NotFoundError{ID: id}
	}
	return &log, nil
}

func (d *Driver) Close() error {
	return nil
}

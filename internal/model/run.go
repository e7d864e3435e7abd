package model

import (
	"fmt"
	"time"
)

// RunStatus represents the status of a monitoring run.
type RunStatus string

const (
	// RunStatusRunning indicates the run is still receiving samples.
	RunStatusRunning RunStatus = "running"
	// RunStatusCompleted indicates the input stream ended normally.
	RunStatusCompleted RunStatus = "completed"
	// RunStatusInterrupted indicates the run was cancelled before the stream ended.
	RunStatusInterrupted RunStatus = "interrupted"
	// RunStatusFailed indicates the run aborted on an error (e.g. a bad sample).
	RunStatusFailed RunStatus = "failed"
)

// Run represents one recorded monitoring session.
type Run struct {
	ID              string
	Label           string
	Goal            float64
	Baseline        float64
	FinalValue      float64
	PercentComplete float64
	// Snapshots is the number of snapshots emitted during the run. Samples
	// swallowed by baseline capture or the elapsed-time gate don't count.
	Snapshots int64
	Status    RunStatus
	StartedAt time.Time
	EndedAt   *time.Time
}

// Validate validates the run.
func (r *Run) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("id is required: %w", ErrNotValid)
	}

	if r.StartedAt.IsZero() {
		return fmt.Errorf("started at is required: %w", ErrNotValid)
	}

	switch r.Status {
	case RunStatusRunning, RunStatusCompleted, RunStatusInterrupted, RunStatusFailed:
	default:
		return fmt.Errorf("unknown run status %q: %w", r.Status, ErrNotValid)
	}

	return nil
}

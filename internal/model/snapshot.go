package model

import "time"

// Snapshot is a fully computed set of progress metrics for one input sample.
//
// All fields are derived from (goal, baseline, current value, elapsed seconds),
// there is no hidden state: recomputing with the same inputs yields the same
// snapshot.
type Snapshot struct {
	// Goal is the target value the tracked quantity is moving toward.
	Goal float64
	// Baseline is the first observed sample, the zero point for progress.
	Baseline float64
	// CurrentValue is the sample this snapshot was computed for.
	CurrentValue float64
	// ElapsedSeconds is the whole seconds since the run started.
	ElapsedSeconds int64

	// PercentComplete is the covered fraction of |goal - baseline|, in percent.
	PercentComplete float64
	// AverageRate is the distance covered per elapsed second since start.
	AverageRate float64
	// SecondsRemaining is the projected seconds until the goal is reached.
	// Only meaningful when Infinite is false.
	SecondsRemaining int64
	// Infinite marks a non-positive rate: no forward progress, so the
	// completion time is undefined.
	Infinite bool
	// Complete marks that there is no remaining distance to the goal.
	Complete bool
	// ETA is the projected wall-clock completion timestamp. Only meaningful
	// when Infinite is false.
	ETA time.Time
}

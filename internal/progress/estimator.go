package progress

import (
	"math"
	"time"

	"github.com/slok/etc/internal/model"
)

// Estimator computes progress snapshots for a run. It is a pure value: the
// goal, baseline and start time are fixed at creation and Estimate has no
// side effects.
//
// All distances are measured as magnitudes, the estimator tracks how far the
// quantity is from the goal regardless of whether the raw value is rising or
// falling. This means a goal below the baseline (counting down) behaves the
// same as one above it.
type Estimator struct {
	Goal      float64
	Baseline  float64
	StartTime time.Time
}

// Estimate computes the snapshot for the given sample.
//
// elapsedSeconds must be > 0, the caller gates early samples (see Loop).
// When goal == baseline there is no distance to cover and the snapshot
// reports 100% complete instead of faulting on the zero total.
func (e Estimator) Estimate(current float64, elapsedSeconds int64) model.Snapshot {
	s := model.Snapshot{
		Goal:           e.Goal,
		Baseline:       e.Baseline,
		CurrentValue:   current,
		ElapsedSeconds: elapsedSeconds,
	}

	totalWork := math.Abs(e.Goal - e.Baseline)
	if totalWork == 0 {
		s.PercentComplete = 100
		s.Complete = true
		s.ETA = e.StartTime
		return s
	}

	remainingWork := math.Abs(e.Goal - current)
	progressDelta := math.Abs(current - e.Baseline)

	s.PercentComplete = round4(progressDelta * 100 / totalWork)
	s.AverageRate = round4(progressDelta / float64(elapsedSeconds))
	s.Complete = remainingWork == 0

	if s.AverageRate <= 0 {
		s.Infinite = true
		return s
	}

	// Truncated, not rounded.
	s.SecondsRemaining = int64(remainingWork / s.AverageRate)
	s.ETA = e.StartTime.Add(time.Duration(s.SecondsRemaining) * time.Second)

	return s
}

// round4 keeps 4 fractional digits, the precision user facing values carry.
func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

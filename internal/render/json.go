package render

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/slok/etc/internal/model"
)

// snapshotOutput is the JSON shape of one snapshot.
type snapshotOutput struct {
	Goal             float64    `json:"goal"`
	Baseline         float64    `json:"baseline"`
	CurrentValue     float64    `json:"current_value"`
	ElapsedSeconds   int64      `json:"elapsed_seconds"`
	PercentComplete  float64    `json:"percent_complete"`
	AverageRate      float64    `json:"average_rate"`
	SecondsRemaining *int64     `json:"seconds_remaining"`
	Complete         bool       `json:"complete"`
	ETA              *time.Time `json:"eta"`
}

// JSONLines renders one JSON object per snapshot, for machine consumers.
// The remaining time and ETA are null when the completion time is undefined.
type JSONLines struct {
	encoder *json.Encoder
}

// NewJSONLines creates a new JSON lines sink.
func NewJSONLines(w io.Writer) *JSONLines {
	return &JSONLines{encoder: json.NewEncoder(w)}
}

// Render writes the snapshot as a single JSON line.
func (j *JSONLines) Render(snap model.Snapshot) error {
	out := snapshotOutput{
		Goal:            snap.Goal,
		Baseline:        snap.Baseline,
		CurrentValue:    snap.CurrentValue,
		ElapsedSeconds:  snap.ElapsedSeconds,
		PercentComplete: snap.PercentComplete,
		AverageRate:     snap.AverageRate,
		Complete:        snap.Complete,
	}

	if !snap.Infinite {
		remaining := snap.SecondsRemaining
		eta := snap.ETA
		out.SecondsRemaining = &remaining
		out.ETA = &eta
	}

	if err := j.encoder.Encode(out); err != nil {
		return fmt.Errorf("could not encode snapshot: %w", err)
	}

	return nil
}

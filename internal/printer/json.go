package printer

import (
	"encoding/json"
	"io"
	"time"

	"github.com/slok/etc/internal/model"
)

// JSONPrinter prints run information in JSON format.
type JSONPrinter struct {
	writer io.Writer
}

// NewJSONPrinter creates a new JSON printer.
func NewJSONPrinter(w io.Writer) *JSONPrinter {
	return &JSONPrinter{writer: w}
}

// runOutput represents a run in the JSON output.
type runOutput struct {
	ID              string     `json:"id"`
	Label           string     `json:"label,omitempty"`
	Goal            float64    `json:"goal"`
	Baseline        float64    `json:"baseline"`
	FinalValue      float64    `json:"final_value"`
	PercentComplete float64    `json:"percent_complete"`
	Snapshots       int64      `json:"snapshots"`
	Status          string     `json:"status"`
	StartedAt       time.Time  `json:"started_at"`
	EndedAt         *time.Time `json:"ended_at"`
}

// PrintList prints runs in JSON format.
func (j *JSONPrinter) PrintList(runs []model.Run) error {
	items := make([]runOutput, len(runs))
	for i, r := range runs {
		items[i] = toRunOutput(r)
	}

	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(items)
}

// PrintRun prints a single run in JSON format.
func (j *JSONPrinter) PrintRun(run model.Run) error {
	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(toRunOutput(run))
}

func toRunOutput(r model.Run) runOutput {
	return runOutput{
		ID:              r.ID,
		Label:           r.Label,
		Goal:            r.Goal,
		Baseline:        r.Baseline,
		FinalValue:      r.FinalValue,
		PercentComplete: r.PercentComplete,
		Snapshots:       r.Snapshots,
		Status:          string(r.Status),
		StartedAt:       r.StartedAt.UTC(),
		EndedAt:         r.EndedAt,
	}
}

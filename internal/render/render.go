// Package render implements the sinks that display progress snapshots.
package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/slok/etc/internal/model"
)

const (
	// ModeLine rewrites a single status line in place.
	ModeLine = "line"
	// ModeScreen clears the terminal and redraws a status block.
	ModeScreen = "screen"
	// ModePlain appends one status line per snapshot (non TTY / batch).
	ModePlain = "plain"
)

// InfiniteLabel is what an undefined completion time renders as.
const InfiniteLabel = "never"

// StatusLineConfig is the configuration for the status line sink.
type StatusLineConfig struct {
	// Output is where the status is written. Required.
	Output io.Writer
	// Mode is one of ModeLine, ModeScreen, ModePlain. Defaults to ModeLine.
	Mode string
	// Label names the tracked quantity in the output. Optional.
	Label string
}

func (c *StatusLineConfig) defaults() error {
	if c.Output == nil {
		return fmt.Errorf("output is required")
	}

	if c.Mode == "" {
		c.Mode = ModeLine
	}

	switch c.Mode {
	case ModeLine, ModeScreen, ModePlain:
	default:
		return fmt.Errorf("unknown render mode %q", c.Mode)
	}

	return nil
}

// StatusLine renders snapshots as a human readable status line.
type StatusLine struct {
	output io.Writer
	mode   string
	label  string

	lastLen int
}

// NewStatusLine creates a new status line sink.
func NewStatusLine(cfg StatusLineConfig) (*StatusLine, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &StatusLine{
		output: cfg.Output,
		mode:   cfg.Mode,
		label:  cfg.Label,
	}, nil
}

// Render writes the snapshot.
func (s *StatusLine) Render(snap model.Snapshot) error {
	line := s.formatLine(snap)

	var err error
	switch s.mode {
	case ModeScreen:
		// Home position plus clear, less flicker than spawning a clear command.
		_, err = fmt.Fprintf(s.output, "\033[H\033[J%s\n", s.formatBlock(snap))
	case ModePlain:
		_, err = fmt.Fprintf(s.output, "%s\n", line)
	default: // line
		padding := ""
		if n := s.lastLen - len(line); n > 0 {
			padding = strings.Repeat(" ", n)
		}
		s.lastLen = len(line)
		_, err = fmt.Fprintf(s.output, "\r%s%s", line, padding)
	}
	if err != nil {
		return fmt.Errorf("could not write status: %w", err)
	}

	return nil
}

func (s *StatusLine) formatLine(snap model.Snapshot) string {
	var b strings.Builder

	if s.label != "" {
		fmt.Fprintf(&b, "%s: ", s.label)
	}

	fmt.Fprintf(&b, "%.1f%% | %s / %s | rate: %.4f/s | remaining: %s | eta: %s",
		snap.PercentComplete,
		formatValue(snap.CurrentValue),
		formatValue(snap.Goal),
		snap.AverageRate,
		RemainingString(snap),
		ETAString(snap),
	)

	return b.String()
}

func (s *StatusLine) formatBlock(snap model.Snapshot) string {
	var b strings.Builder

	title := "Progress"
	if s.label != "" {
		title = s.label
	}

	fmt.Fprintf(&b, "%s\n", title)
	fmt.Fprintf(&b, "%s\n", strings.Repeat("=", len(title)))
	fmt.Fprintf(&b, "Current:    %s\n", formatValue(snap.CurrentValue))
	fmt.Fprintf(&b, "Goal:       %s\n", formatValue(snap.Goal))
	fmt.Fprintf(&b, "Complete:   %.1f%%\n", snap.PercentComplete)
	fmt.Fprintf(&b, "Rate:       %.4f/s\n", snap.AverageRate)
	fmt.Fprintf(&b, "Elapsed:    %s\n", HMS(snap.ElapsedSeconds))
	fmt.Fprintf(&b, "Remaining:  %s\n", RemainingString(snap))
	fmt.Fprintf(&b, "ETA:        %s", ETAString(snap))

	return b.String()
}

// RemainingString formats the remaining time of a snapshot.
func RemainingString(snap model.Snapshot) string {
	if snap.Infinite {
		return "--:--:--"
	}
	return HMS(snap.SecondsRemaining)
}

// ETAString formats the projected completion timestamp of a snapshot.
func ETAString(snap model.Snapshot) string {
	if snap.Infinite {
		return InfiniteLabel
	}
	return snap.ETA.Format("2006-01-02 15:04:05")
}

// HMS renders a number of seconds as hh:mm:ss.
func HMS(seconds int64) string {
	h := seconds / 3600
	seconds -= 3600 * h
	m := seconds / 60
	seconds -= 60 * m
	return fmt.Sprintf("%02d:%02d:%02d", h, m, seconds)
}

// formatValue renders a sample value without trailing decimal noise.
func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

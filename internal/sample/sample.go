// Package sample provides the numeric sample sources the estimation loop
// consumes: a line/field reader for real input and a synthetic generator.
package sample

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/slok/etc/internal/model"
)

// LineSourceConfig is the configuration for the line source.
type LineSourceConfig struct {
	// Reader is where the input lines come from (normally stdin).
	Reader io.Reader
	// Field selects a 1-based field inside each line. 0 uses the whole line.
	Field int
	// Delimiter splits the line into fields. Empty means any run of
	// whitespace.
	Delimiter string
}

func (c *LineSourceConfig) defaults() error {
	if c.Reader == nil {
		return fmt.Errorf("reader is required")
	}

	if c.Field < 0 {
		return fmt.Errorf("field index can't be negative")
	}

	return nil
}

// LineSource reads one sample per input line, optionally extracting a single
// delimited field by index.
type LineSource struct {
	scanner   *bufio.Scanner
	field     int
	delimiter string
}

// NewLineSource creates a new line source.
func NewLineSource(cfg LineSourceConfig) (*LineSource, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &LineSource{
		scanner:   bufio.NewScanner(cfg.Reader),
		field:     cfg.Field,
		delimiter: cfg.Delimiter,
	}, nil
}

// Next returns the next sample. Blank lines are skipped. A line whose
// selected field is missing or not numeric returns an error wrapping
// model.ErrInvalidSample.
func (s *LineSource) Next(ctx context.Context) (float64, error) {
	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		if !s.scanner.Scan() {
			if err := s.scanner.Err(); err != nil {
				return 0, fmt.Errorf("could not read input: %w", err)
			}
			return 0, io.EOF
		}

		line := strings.TrimSpace(s.scanner.Text())
		if line == "" {
			continue
		}

		raw := line
		if s.field > 0 {
			var fields []string
			if s.delimiter == "" {
				fields = strings.Fields(line)
			} else {
				fields = strings.Split(line, s.delimiter)
			}

			if s.field > len(fields) {
				return 0, fmt.Errorf("field %d out of range, line has %d fields: %w", s.field, len(fields), model.ErrInvalidSample)
			}
			raw = strings.TrimSpace(fields[s.field-1])
		}

		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, fmt.Errorf("could not parse %q as a number: %w", raw, model.ErrInvalidSample)
		}

		return value, nil
	}
}

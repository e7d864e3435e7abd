package sample

import (
	"context"
	"fmt"
	"io"
	"math"
	"math/rand"
	"time"
)

// SyntheticConfig is the configuration for the synthetic source.
type SyntheticConfig struct {
	// Start is the first emitted value.
	Start float64
	// Goal is the value the generator walks toward.
	Goal float64
	// Step is the magnitude the value moves per tick.
	Step float64
	// Interval is the time between samples. 0 means no waiting (tests).
	Interval time.Duration
	// Jitter randomizes each step by up to this fraction of Step (0..1).
	Jitter float64
	// StallChance is the probability (0..1) that a tick repeats the current
	// value instead of stepping, to simulate a stalled producer.
	StallChance float64
	// Rand is the random source used for jitter. Defaults to a time seeded one.
	Rand *rand.Rand
}

func (c *SyntheticConfig) defaults() error {
	if c.Step <= 0 {
		return fmt.Errorf("step must be positive")
	}

	if c.Jitter < 0 || c.Jitter > 1 {
		return fmt.Errorf("jitter must be between 0 and 1")
	}

	if c.StallChance < 0 || c.StallChance >= 1 {
		return fmt.Errorf("stall chance must be in [0, 1)")
	}

	if c.Rand == nil {
		c.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return nil
}

// Synthetic generates a walk from a start value to a goal, one sample per
// interval. It exists for the self test command and for exercising the loop
// without a real producer; once the goal is emitted the stream ends.
type Synthetic struct {
	current     float64
	goal        float64
	step        float64
	interval    time.Duration
	jitter      float64
	stallChance float64
	rng         *rand.Rand

	started bool
	done    bool
}

// NewSynthetic creates a new synthetic source.
func NewSynthetic(cfg SyntheticConfig) (*Synthetic, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Synthetic{
		current:     cfg.Start,
		goal:        cfg.Goal,
		step:        cfg.Step,
		interval:    cfg.Interval,
		jitter:      cfg.Jitter,
		stallChance: cfg.StallChance,
		rng:         cfg.Rand,
	}, nil
}

// Next returns the next generated sample.
func (s *Synthetic) Next(ctx context.Context) (float64, error) {
	if s.done {
		return 0, io.EOF
	}

	if !s.started {
		s.started = true
		s.done = s.current == s.goal
		return s.current, nil
	}

	if s.interval > 0 {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(s.interval):
		}
	}

	if s.stallChance > 0 && s.rng.Float64() < s.stallChance {
		return s.current, nil
	}

	step := s.step
	if s.jitter > 0 {
		step += s.step * s.jitter * (s.rng.Float64()*2 - 1)
	}

	direction := 1.0
	if s.goal < s.current {
		direction = -1
	}

	s.current += direction * step
	// Clamp the overshoot so the last sample is exactly the goal.
	if math.Abs(s.goal-s.current) < s.step/2 || (direction > 0) == (s.current > s.goal) {
		s.current = s.goal
		s.done = true
	}

	return s.current, nil
}

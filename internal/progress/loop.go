package progress

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/slok/etc/internal/log"
	"github.com/slok/etc/internal/model"
)

// Source produces one numeric observation per call. It returns io.EOF when
// the stream of samples ends. Next blocks until a sample is available or the
// context is cancelled.
type Source interface {
	Next(ctx context.Context) (float64, error)
}

// Sink receives the snapshots emitted by the loop, at most one per sample.
type Sink interface {
	Render(s model.Snapshot) error
}

type loopState int

const (
	// stateAwaitingBaseline: no sample received yet.
	stateAwaitingBaseline loopState = iota
	// stateGated: baseline captured, waiting for wall clock to advance past
	// the start second so rates have a usable denominator.
	stateGated
	// stateRunning: emitting one snapshot per sample.
	stateRunning
)

// LoopConfig is the configuration for the estimation loop.
type LoopConfig struct {
	// Goal is the target value, fixed for the lifetime of the run.
	Goal float64
	// Source provides the samples.
	Source Source
	// Sink receives the snapshots.
	Sink Sink
	// Now obtains the current time. Defaults to time.Now.
	Now func() time.Time
	// Logger is the logger.
	Logger log.Logger
}

func (c *LoopConfig) defaults() error {
	if c.Source == nil {
		return fmt.Errorf("source is required")
	}

	if c.Sink == nil {
		return fmt.Errorf("sink is required")
	}

	if c.Now == nil {
		c.Now = time.Now
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "progress.Loop"})

	return nil
}

// Loop drives one estimation run: it captures the baseline from the first
// sample, holds snapshots back until at least one whole second has elapsed,
// and then feeds every sample through the estimator into the sink.
//
// A loop is single use, Run can be called only once.
type Loop struct {
	goal   float64
	source Source
	sink   Sink
	now    func() time.Time
	logger log.Logger

	ran bool
}

// NewLoop creates a new estimation loop.
func NewLoop(cfg LoopConfig) (*Loop, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Loop{
		goal:   cfg.Goal,
		source: cfg.Source,
		sink:   cfg.Sink,
		now:    cfg.Now,
		logger: cfg.Logger,
	}, nil
}

// Run blocks consuming samples until the source ends (nil return), the
// context is cancelled, or a sample can't be used (the error is returned,
// a silently skipped sample would leave a stalled display behind).
func (l *Loop) Run(ctx context.Context) error {
	if l.ran {
		return fmt.Errorf("loop already ran: %w", model.ErrNotValid)
	}
	l.ran = true

	start := l.now()
	state := stateAwaitingBaseline
	var est Estimator

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		value, err := l.source.Next(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				l.logger.Debugf("Sample stream ended")
				return nil
			}
			return fmt.Errorf("could not read sample: %w", err)
		}

		if state == stateAwaitingBaseline {
			est = Estimator{Goal: l.goal, Baseline: value, StartTime: start}
			state = stateGated
			l.logger.Debugf("Baseline captured: %v", value)
			continue
		}

		elapsed := int64(l.now().Sub(start).Seconds())
		if elapsed <= 0 {
			// Same clock second as the start, a rate would be meaningless.
			continue
		}

		if state == stateGated {
			state = stateRunning
		}

		snapshot := est.Estimate(value, elapsed)
		if err := l.sink.Render(snapshot); err != nil {
			return fmt.Errorf("could not render snapshot: %w", err)
		}
	}
}

// Package watch implements the use case that drives one monitoring run:
// it wires the sample source through the estimation loop into the render
// sink and records the session in the repository.
package watch

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/slok/etc/internal/log"
	"github.com/slok/etc/internal/model"
	"github.com/slok/etc/internal/progress"
	"github.com/slok/etc/internal/storage"
)

// ServiceConfig is the configuration for the watch service.
type ServiceConfig struct {
	// Goal is the target value for the run.
	Goal float64
	// Label names the tracked quantity. Optional.
	Label string
	// Source provides the samples.
	Source progress.Source
	// Sink receives the snapshots.
	Sink progress.Sink
	// Repository records the run. Optional, nil disables recording.
	Repository storage.Repository
	// Now obtains the current time. Defaults to time.Now.
	Now func() time.Time
	// Logger is the logger.
	Logger log.Logger
}

func (c *ServiceConfig) defaults() error {
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
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Watch"})

	return nil
}

// Service runs a single monitoring session.
type Service struct {
	goal   float64
	label  string
	source progress.Source
	sink   progress.Sink
	repo   storage.Repository
	now    func() time.Time
	logger log.Logger
}

// NewService creates a new watch service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		goal:   cfg.Goal,
		label:  cfg.Label,
		source: cfg.Source,
		sink:   cfg.Sink,
		repo:   cfg.Repository,
		now:    cfg.Now,
		logger: cfg.Logger,
	}, nil
}

// Run executes the monitoring session until the sample stream ends or the
// context is cancelled. The returned run carries the final state; it is also
// what gets persisted when a repository is configured.
//
// The run error (if any) is returned alongside the run so callers can
// propagate the failure after inspecting the final state.
func (s *Service) Run(ctx context.Context) (*model.Run, error) {
	run := model.Run{
		ID:        ulid.MustNew(ulid.Timestamp(s.now()), rand.Reader).String(),
		Label:     s.label,
		Goal:      s.goal,
		Status:    model.RunStatusRunning,
		StartedAt: s.now(),
	}

	if s.repo != nil {
		if err := s.repo.CreateRun(ctx, run); err != nil {
			return nil, fmt.Errorf("could not record run: %w", err)
		}
	}

	samples := &recordingSource{next: s.source}
	recorder := &recordingSink{next: s.sink}
	loop, err := progress.NewLoop(progress.LoopConfig{
		Goal:   s.goal,
		Source: samples,
		Sink:   recorder,
		Now:    s.now,
		Logger: s.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create estimation loop: %w", err)
	}

	s.logger.Infof("Watching, goal %v", s.goal)
	runErr := loop.Run(ctx)

	switch {
	case runErr == nil:
		run.Status = model.RunStatusCompleted
	case errors.Is(runErr, context.Canceled), errors.Is(runErr, context.DeadlineExceeded):
		run.Status = model.RunStatusInterrupted
	default:
		run.Status = model.RunStatusFailed
	}

	endedAt := s.now()
	run.EndedAt = &endedAt
	run.Snapshots = recorder.count
	switch {
	case recorder.count > 0:
		run.Baseline = recorder.last.Baseline
		run.FinalValue = recorder.last.CurrentValue
		run.PercentComplete = recorder.last.PercentComplete
	case samples.count > 0:
		// The stream ended before any snapshot, keep the observed values.
		run.Baseline = samples.first
		run.FinalValue = samples.last
	}

	if s.repo != nil {
		// Don't use the run context, a cancelled watch still gets recorded.
		updateCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.repo.UpdateRun(updateCtx, run); err != nil {
			s.logger.Warningf("Could not update recorded run %s: %s", run.ID, err)
		}
	}

	if runErr != nil {
		return &run, fmt.Errorf("watch aborted: %w", runErr)
	}

	s.logger.Infof("Watch finished at %.4f%%", run.PercentComplete)
	return &run, nil
}

// recordingSource tracks the first and last samples on their way to the loop.
type recordingSource struct {
	next  progress.Source
	first float64
	last  float64
	count int64
}

func (r *recordingSource) Next(ctx context.Context) (float64, error) {
	v, err := r.next.Next(ctx)
	if err != nil {
		return v, err
	}

	if r.count == 0 {
		r.first = v
	}
	r.last = v
	r.count++

	return v, nil
}

// recordingSink tracks the last snapshot on its way to the real sink.
type recordingSink struct {
	next  progress.Sink
	last  model.Snapshot
	count int64
}

func (r *recordingSink) Render(s model.Snapshot) error {
	r.last = s
	r.count++
	return r.next.Render(s)
}

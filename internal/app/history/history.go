// Package history implements the use cases over recorded runs.
package history

import (
	"context"
	"fmt"

	"github.com/slok/etc/internal/log"
	"github.com/slok/etc/internal/model"
	"github.com/slok/etc/internal/storage"
)

// ServiceConfig is the configuration for the history service.
type ServiceConfig struct {
	Repository storage.Repository
	Logger     log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.History"})

	return nil
}

// Service lists and removes recorded runs.
type Service struct {
	repo   storage.Repository
	logger log.Logger
}

// NewService creates a new history service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}, nil
}

// List returns all recorded runs, newest first.
func (s *Service) List(ctx context.Context) ([]model.Run, error) {
	runs, err := s.repo.ListRuns(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list runs: %w", err)
	}

	s.logger.Debugf("Listed %d runs", len(runs))
	return runs, nil
}

// Get returns one recorded run by ID.
func (s *Service) Get(ctx context.Context, id string) (*model.Run, error) {
	if id == "" {
		return nil, fmt.Errorf("id is required: %w", model.ErrNotValid)
	}

	run, err := s.repo.GetRun(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("could not get run: %w", err)
	}

	return run, nil
}

// Remove deletes a recorded run by ID.
func (s *Service) Remove(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("id is required: %w", model.ErrNotValid)
	}

	if err := s.repo.DeleteRun(ctx, id); err != nil {
		return fmt.Errorf("could not delete run: %w", err)
	}

	s.logger.Infof("Removed run %s", id)
	return nil
}

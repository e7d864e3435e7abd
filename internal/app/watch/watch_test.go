package watch_test

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/slok/etc/internal/app/watch"
	"github.com/slok/etc/internal/log"
	"github.com/slok/etc/internal/model"
	"github.com/slok/etc/internal/progress"
	"github.com/slok/etc/internal/storage/storagemock"
)

// sliceSource replays a fixed list of samples and then ends the stream.
type sliceSource struct {
	samples []float64
	errAt   int
	next    int
}

func (s *sliceSource) Next(ctx context.Context) (float64, error) {
	if s.errAt > 0 && s.next+1 == s.errAt {
		return 0, fmt.Errorf("boom: %w", model.ErrInvalidSample)
	}
	if s.next >= len(s.samples) {
		return 0, io.EOF
	}
	v := s.samples[s.next]
	s.next++
	return v, nil
}

type captureSink struct {
	snapshots []model.Snapshot
}

func (c *captureSink) Render(s model.Snapshot) error {
	c.snapshots = append(c.snapshots, s)
	return nil
}

// tickingClock advances one second per call.
type tickingClock struct {
	t time.Time
}

func (c *tickingClock) Now() time.Time {
	now := c.t
	c.t = c.t.Add(time.Second)
	return now
}

func TestNewService(t *testing.T) {
	tests := map[string]struct {
		config watch.ServiceConfig
		expErr bool
	}{
		"Valid config should create service": {
			config: watch.ServiceConfig{
				Source: &sliceSource{},
				Sink:   &captureSink{},
				Logger: log.Noop,
			},
			expErr: false,
		},
		"Missing source should fail": {
			config: watch.ServiceConfig{Sink: &captureSink{}},
			expErr: true,
		},
		"Missing sink should fail": {
			config: watch.ServiceConfig{Source: &sliceSource{}},
			expErr: true,
		},
		"Missing repository is allowed": {
			config: watch.ServiceConfig{Source: &sliceSource{}, Sink: &captureSink{}},
			expErr: false,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			svc, err := watch.NewService(test.config)

			if test.expErr {
				require.Error(t, err)
				require.Nil(t, svc)
			} else {
				require.NoError(t, err)
				require.NotNil(t, svc)
			}
		})
	}
}

func TestServiceRun(t *testing.T) {
	t0 := time.Date(2026, 2, 15, 10, 0, 0, 0, time.UTC)

	tests := map[string]struct {
		source    *sliceSource
		mock      func(m *storagemock.MockRepository)
		expStatus model.RunStatus
		expFinal  float64
		expSnaps  int64
		expErr    bool
	}{
		"A finished stream records a completed run": {
			source: &sliceSource{samples: []float64{10, 20, 30}},
			mock: func(m *storagemock.MockRepository) {
				m.On("CreateRun", mock.Anything, mock.MatchedBy(func(r model.Run) bool {
					return r.Status == model.RunStatusRunning && r.Goal == 100
				})).Once().Return(nil)
				m.On("UpdateRun", mock.Anything, mock.MatchedBy(func(r model.Run) bool {
					return r.Status == model.RunStatusCompleted && r.EndedAt != nil
				})).Once().Return(nil)
			},
			expStatus: model.RunStatusCompleted,
			expFinal:  30,
			expSnaps:  2,
		},

		"A bad sample records a failed run": {
			source: &sliceSource{samples: []float64{10, 20, 30}, errAt: 3},
			mock: func(m *storagemock.MockRepository) {
				m.On("CreateRun", mock.Anything, mock.Anything).Once().Return(nil)
				m.On("UpdateRun", mock.Anything, mock.MatchedBy(func(r model.Run) bool {
					return r.Status == model.RunStatusFailed
				})).Once().Return(nil)
			},
			expStatus: model.RunStatusFailed,
			expFinal:  20,
			expSnaps:  1,
			expErr:    true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			repo := &storagemock.MockRepository{}
			test.mock(repo)

			clock := &tickingClock{t: t0}
			sink := &captureSink{}
			svc, err := watch.NewService(watch.ServiceConfig{
				Goal:       100,
				Label:      "test",
				Source:     test.source,
				Sink:       sink,
				Repository: repo,
				Now:        clock.Now,
				Logger:     log.Noop,
			})
			require.NoError(t, err)

			run, err := svc.Run(context.Background())

			if test.expErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}

			require.NotNil(t, run)
			assert.NotEmpty(t, run.ID)
			assert.Equal(t, test.expStatus, run.Status)
			assert.Equal(t, float64(10), run.Baseline)
			assert.Equal(t, test.expFinal, run.FinalValue)
			assert.Equal(t, test.expSnaps, run.Snapshots)
			assert.Equal(t, int(test.expSnaps), len(sink.snapshots))

			repo.AssertExpectations(t)
		})
	}
}

func TestServiceRunWithoutRepository(t *testing.T) {
	clock := &tickingClock{t: time.Date(2026, 2, 15, 10, 0, 0, 0, time.UTC)}
	sink := &captureSink{}
	svc, err := watch.NewService(watch.ServiceConfig{
		Goal:   100,
		Source: &sliceSource{samples: []float64{10, 55, 100}},
		Sink:   sink,
		Now:    clock.Now,
		Logger: log.Noop,
	})
	require.NoError(t, err)

	run, err := svc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, model.RunStatusCompleted, run.Status)
	assert.Equal(t, float64(100), run.FinalValue)
	assert.Equal(t, 100.0, run.PercentComplete)
	require.Len(t, sink.snapshots, 2)
	assert.True(t, sink.snapshots[1].Complete)
}

func TestServiceRunSingleSampleRecordsBaseline(t *testing.T) {
	repo := &storagemock.MockRepository{}
	repo.On("CreateRun", mock.Anything, mock.Anything).Once().Return(nil)
	repo.On("UpdateRun", mock.Anything, mock.MatchedBy(func(r model.Run) bool {
		return r.Status == model.RunStatusCompleted && r.Baseline == 10 && r.FinalValue == 10
	})).Once().Return(nil)

	clock := &tickingClock{t: time.Date(2026, 2, 15, 10, 0, 0, 0, time.UTC)}
	sink := &captureSink{}
	svc, err := watch.NewService(watch.ServiceConfig{
		Goal:       100,
		Source:     &sliceSource{samples: []float64{10}},
		Sink:       sink,
		Repository: repo,
		Now:        clock.Now,
		Logger:     log.Noop,
	})
	require.NoError(t, err)

	run, err := svc.Run(context.Background())
	require.NoError(t, err)

	// The stream ended before any snapshot, but the observation survives.
	assert.Equal(t, int64(0), run.Snapshots)
	assert.Equal(t, float64(10), run.Baseline)
	assert.Equal(t, float64(10), run.FinalValue)
	assert.Empty(t, sink.snapshots)
	repo.AssertExpectations(t)
}

func TestServiceRunCancelledRecordsInterrupted(t *testing.T) {
	repo := &storagemock.MockRepository{}
	repo.On("CreateRun", mock.Anything, mock.Anything).Once().Return(nil)
	repo.On("UpdateRun", mock.Anything, mock.MatchedBy(func(r model.Run) bool {
		return r.Status == model.RunStatusInterrupted
	})).Once().Return(nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc, err := watch.NewService(watch.ServiceConfig{
		Goal:       100,
		Source:     &sliceSource{samples: []float64{10, 20}},
		Sink:       &captureSink{},
		Repository: repo,
		Logger:     log.Noop,
	})
	require.NoError(t, err)

	run, err := svc.Run(ctx)
	require.Error(t, err)

	require.NotNil(t, run)
	assert.Equal(t, model.RunStatusInterrupted, run.Status)
	repo.AssertExpectations(t)
}

// Interface guard so the capture sink stays a valid progress sink.
var _ progress.Sink = &captureSink{}

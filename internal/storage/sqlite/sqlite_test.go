package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/etc/internal/log"
	"github.com/slok/etc/internal/model"
	"github.com/slok/etc/internal/storage/sqlite"
)

func runFixture(id string) model.Run {
	startedAt := time.Date(2026, 2, 15, 10, 0, 0, 0, time.UTC)
	endedAt := startedAt.Add(90 * time.Second)
	return model.Run{
		ID:              id,
		Label:           "bytes copied",
		Goal:            1000,
		Baseline:        100,
		FinalValue:      1000,
		PercentComplete: 100,
		Snapshots:       88,
		Status:          model.RunStatusCompleted,
		StartedAt:       startedAt,
		EndedAt:         &endedAt,
	}
}

func newRepo(t *testing.T) *sqlite.Repository {
	t.Helper()
	repo, err := sqlite.NewRepository(context.Background(), sqlite.RepositoryConfig{
		DBPath: filepath.Join(t.TempDir(), "test.db"),
		Logger: log.Noop,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestRepositoryCRUD(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	run := runFixture("id-1")
	require.NoError(t, repo.CreateRun(ctx, run))

	got, err := repo.GetRun(ctx, "id-1")
	require.NoError(t, err)
	assert.Equal(t, run, *got)

	// Duplicate IDs are rejected.
	err = repo.CreateRun(ctx, run)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrAlreadyExists)

	// Update.
	updated := run
	updated.Status = model.RunStatusInterrupted
	updated.FinalValue = 700
	require.NoError(t, repo.UpdateRun(ctx, updated))

	got, err = repo.GetRun(ctx, "id-1")
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusInterrupted, got.Status)
	assert.Equal(t, float64(700), got.FinalValue)

	// Delete.
	require.NoError(t, repo.DeleteRun(ctx, "id-1"))
	_, err = repo.GetRun(ctx, "id-1")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestRepositoryRunningRunHasNoEndTimestamp(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	run := runFixture("id-1")
	run.Status = model.RunStatusRunning
	run.EndedAt = nil
	require.NoError(t, repo.CreateRun(ctx, run))

	got, err := repo.GetRun(ctx, "id-1")
	require.NoError(t, err)
	assert.Nil(t, got.EndedAt)
}

func TestRepositoryListOrder(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	old := runFixture("old")
	old.StartedAt = old.StartedAt.Add(-2 * time.Hour)
	newest := runFixture("newest")
	middle := runFixture("middle")
	middle.StartedAt = middle.StartedAt.Add(-time.Hour)

	require.NoError(t, repo.CreateRun(ctx, old))
	require.NoError(t, repo.CreateRun(ctx, newest))
	require.NoError(t, repo.CreateRun(ctx, middle))

	runs, err := repo.ListRuns(ctx)
	require.NoError(t, err)

	require.Len(t, runs, 3)
	assert.Equal(t, "newest", runs[0].ID)
	assert.Equal(t, "middle", runs[1].ID)
	assert.Equal(t, "old", runs[2].ID)
}

func TestRepositoryNotFound(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	_, err := repo.GetRun(ctx, "missing")
	assert.ErrorIs(t, err, model.ErrNotFound)

	err = repo.UpdateRun(ctx, runFixture("missing"))
	assert.ErrorIs(t, err, model.ErrNotFound)

	err = repo.DeleteRun(ctx, "missing")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

//go:build cgo

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/logolens/logolens/internal/config"
	"github.com/logolens/logolens/internal/core"
)

func openMemoryStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()

	s, err := Open(ctx, config.StoreConfig{Driver: "libsql", Path: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, s.Migrate(ctx))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpenMemoryStore(t *testing.T) {
	s := openMemoryStore(t)
	require.Equal(t, "libsql", s.Driver())
}

func TestSaveAndLoadOutcomes(t *testing.T) {
	ctx := context.Background()
	s := openMemoryStore(t)

	completedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	outcomes := []*core.AcquisitionOutcome{
		{
			EntityID:    "1",
			Success:     true,
			Source:      core.SourceClearbit,
			OutputPath:  "logos/1.png",
			Domain:      "acme.com",
			CompletedAt: completedAt,
		},
		{
			EntityID:    "2",
			Success:     false,
			Source:      core.SourceFailed,
			ErrorReason: "missing display name",
			CompletedAt: completedAt,
		},
	}

	require.NoError(t, s.SaveOutcomes(ctx, "run-1", outcomes))

	loaded, err := s.RunOutcomes(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, loaded, 2)

	require.Equal(t, "1", loaded[0].EntityID)
	require.True(t, loaded[0].Success)
	require.Equal(t, core.SourceClearbit, loaded[0].Source)
	require.Equal(t, "logos/1.png", loaded[0].OutputPath)
	require.Equal(t, "acme.com", loaded[0].Domain)
	require.Equal(t, completedAt, loaded[0].CompletedAt)

	require.Equal(t, "2", loaded[1].EntityID)
	require.False(t, loaded[1].Success)
	require.Equal(t, "missing display name", loaded[1].ErrorReason)
}

func TestSaveOutcomesReplacesWithinRun(t *testing.T) {
	ctx := context.Background()
	s := openMemoryStore(t)

	first := []*core.AcquisitionOutcome{{EntityID: "1", Success: false, Source: core.SourceFailed}}
	require.NoError(t, s.SaveOutcomes(ctx, "run-1", first))

	second := []*core.AcquisitionOutcome{{EntityID: "1", Success: true, Source: core.SourceSynthetic}}
	require.NoError(t, s.SaveOutcomes(ctx, "run-1", second))

	loaded, err := s.RunOutcomes(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	require.True(t, loaded[0].Success)
	require.Equal(t, core.SourceSynthetic, loaded[0].Source)
}

func TestSaveOutcomesRequiresRunID(t *testing.T) {
	s := openMemoryStore(t)
	err := s.SaveOutcomes(context.Background(), "", []*core.AcquisitionOutcome{{EntityID: "1"}})
	require.Error(t, err)
}

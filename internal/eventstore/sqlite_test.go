package eventstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSQLiteStore_RecordAndList(t *testing.T) {
	store, err := Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	base := time.Now().Truncate(time.Millisecond)
	require.NoError(t, store.RecordRun(ctx, RunRecord{
		ID: "run-1", StartedAt: base, FinishedAt: base.Add(time.Second),
		Pages: 3, Attachments: 1, Status: "success",
	}))
	require.NoError(t, store.RecordRun(ctx, RunRecord{
		ID: "run-2", StartedAt: base.Add(time.Minute), FinishedAt: base.Add(2 * time.Minute),
		Pages: 0, Attachments: 0, Status: "failed", Error: "boom",
	}))

	runs, err := store.RecentRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	// Most recent first.
	require.Equal(t, "run-2", runs[0].ID)
	require.Equal(t, "failed", runs[0].Status)
	require.Equal(t, "boom", runs[0].Error)
	require.Equal(t, "run-1", runs[1].ID)
	require.Equal(t, 3, runs[1].Pages)
	require.True(t, runs[1].StartedAt.Equal(base))
}

func TestSQLiteStore_Limit(t *testing.T) {
	store, err := Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	base := time.Now()
	for i := 0; i < 5; i++ {
		require.NoError(t, store.RecordRun(ctx, RunRecord{
			ID: string(rune('a' + i)), StartedAt: base.Add(time.Duration(i) * time.Second),
			FinishedAt: base.Add(time.Duration(i+1) * time.Second), Status: "success",
		}))
	}

	runs, err := store.RecentRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	require.Equal(t, "e", runs[0].ID)
}

func TestSQLiteStore_Persistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	store, err := Open(path)
	require.NoError(t, err)
	now := time.Now()
	require.NoError(t, store.RecordRun(context.Background(), RunRecord{
		ID: "persisted", StartedAt: now, FinishedAt: now, Status: "success",
	}))
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	runs, err := reopened.RecentRuns(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.Equal(t, "persisted", runs[0].ID)
}

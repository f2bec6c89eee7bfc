package journal

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"formcheck/internal/capture"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTest(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

var squatCorrect = capture.Tag{Exercise: capture.Squat, Form: capture.Correct}

func TestOpenCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "share", "journal.db")
	j, err := Open(path)
	require.NoError(t, err)
	defer j.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err)

	// Reopening runs the migrations again without error.
	j2, err := Open(path)
	require.NoError(t, err)
	j2.Close()
}

func TestRecordTracksLatestState(t *testing.T) {
	j := openTest(t)
	ctx := context.Background()
	start := time.UnixMilli(1718000000000)

	require.NoError(t, j.Record(ctx, capture.Event{
		SessionID: "s1", State: capture.Uploading, Outcome: capture.Pending,
		Tag: squatCorrect, LocalPath: "/data/squat/correct/x.mp4", At: start,
	}))
	require.NoError(t, j.Record(ctx, capture.Event{
		SessionID: "s1", State: capture.Closed, Outcome: capture.Succeeded,
		Tag: squatCorrect, StoredPath: "dataset/squat/correct/x.mp4", At: start.Add(time.Second),
	}))

	e, err := j.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "closed", e.State)
	assert.Equal(t, "succeeded", e.Outcome)
	assert.Equal(t, "squat", e.Exercise)
	assert.Equal(t, "/data/squat/correct/x.mp4", e.LocalPath)
	assert.Equal(t, "dataset/squat/correct/x.mp4", e.StoredPath)
	assert.Equal(t, start.UnixMilli(), e.CreatedAt.UnixMilli())
	assert.Equal(t, start.Add(time.Second).UnixMilli(), e.UpdatedAt.UnixMilli())
}

func TestGetUnknown(t *testing.T) {
	_, err := openTest(t).Get(context.Background(), "nope")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestRecentAndUnsent(t *testing.T) {
	j := openTest(t)
	ctx := context.Background()
	base := time.UnixMilli(1718000000000)

	events := []capture.Event{
		{SessionID: "ok", State: capture.Closed, Outcome: capture.Succeeded, Tag: squatCorrect,
			LocalPath: "/d/a.mp4", StoredPath: "dataset/squat/correct/a.mp4", At: base},
		{SessionID: "failed-upload", State: capture.Closed, Outcome: capture.Failed, Tag: squatCorrect,
			LocalPath: "/d/b.mp4", Err: "connection refused", At: base.Add(time.Minute)},
		{SessionID: "denied", State: capture.Closed, Outcome: capture.Failed, Tag: squatCorrect,
			Err: "camera permission denied", At: base.Add(2 * time.Minute)},
		{SessionID: "cancelled", State: capture.Closed, Outcome: capture.Cancelled, At: base.Add(3 * time.Minute)},
	}
	for _, e := range events {
		require.NoError(t, j.Record(ctx, e))
	}

	recent, err := j.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "cancelled", recent[0].ID)
	assert.Equal(t, "denied", recent[1].ID)

	unsent, err := j.Unsent(ctx)
	require.NoError(t, err)
	require.Len(t, unsent, 1)
	assert.Equal(t, "failed-upload", unsent[0].ID)
	assert.Equal(t, "connection refused", unsent[0].Error)
}

func TestSessionWritesJournal(t *testing.T) {
	j := openTest(t)
	s := capture.NewSession(capture.Config{DatasetRoot: t.TempDir(), Journal: j})
	require.NoError(t, s.SelectExercise(capture.Deadlift))
	require.NoError(t, s.Cancel())

	e, err := j.Get(context.Background(), s.ID())
	require.NoError(t, err)
	assert.Equal(t, "cancelled", e.Outcome)
	assert.Equal(t, "deadlift", e.Exercise)
}

// ABOUTME: Tests for the badger KV mirror.
// ABOUTME: Covers key layout, prefix lookup, push from SQLite, stale-key removal, and status counts.
package mirror

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/pulse/internal/models"
	"github.com/harperreed/pulse/internal/storage"
)

func setupMirror(t *testing.T) *Mirror {
	t.Helper()

	m, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })
	return m
}

func setupStore(t *testing.T) *storage.DB {
	t.Helper()

	db, err := storage.Open(filepath.Join(t.TempDir(), "pulse.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func testCycle() *models.SleepCycle {
	start := time.Date(2025, 3, 1, 23, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 2, 7, 0, 0, 0, time.UTC)
	return &models.SleepCycle{
		ID: models.DateKey(end), Start: start, End: end,
		MinBPM: 48, MaxBPM: 60, AvgBPM: 52,
		MinHRV: 30, MaxHRV: 70, AvgHRV: 45,
		Score: 100,
	}
}

func TestKeyFormat(t *testing.T) {
	c := testCycle()
	assert.Equal(t, "sleep:2025-03-02", sleepKey(c.ID))

	a := models.NewActivityRecord(c.ID, c.End, c.End.Add(time.Hour), models.ActivityTypeNap)
	assert.Equal(t, "activity:"+a.ID.String(), activityKey(a.ID))
}

func TestSleepCycleRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := setupStore(t)
	m := setupMirror(t)
	c := testCycle()
	require.NoError(t, db.CreateSleepCycle(ctx, c))
	_, err := Push(ctx, db, m)
	require.NoError(t, err)

	got, err := m.GetSleepCycle(c.ID)
	require.NoError(t, err)
	assert.True(t, got.ID.Equal(c.ID))
	assert.True(t, got.Start.Equal(c.Start))
	assert.Equal(t, c.AvgHRV, got.AvgHRV)
	assert.Equal(t, c.Score, got.Score)

	_, err = m.GetSleepCycle(c.ID.AddDate(0, 0, 1))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetActivityByPrefix(t *testing.T) {
	ctx := context.Background()
	db := setupStore(t)
	m := setupMirror(t)
	c := testCycle()
	a := models.NewActivityRecord(c.ID, c.End.Add(3*time.Hour), c.End.Add(4*time.Hour), models.ActivityTypeActivity)
	require.NoError(t, db.CreateActivityRecord(ctx, a))
	_, err := Push(ctx, db, m)
	require.NoError(t, err)

	got, err := m.GetActivity(a.ID.String()[:8])
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)
	assert.Equal(t, models.ActivityTypeActivity, got.Type)
	assert.True(t, got.PeriodID.Equal(c.ID))
	assert.Equal(t, time.Hour, got.Duration())

	_, err = m.GetActivity("zzzz")
	assert.ErrorIs(t, err, ErrNotFound)

	// An empty prefix is ambiguous once there are two records.
	require.NoError(t, db.CreateActivityRecord(ctx,
		models.NewActivityRecord(c.ID, c.End, c.End.Add(time.Minute), models.ActivityTypeNap)))
	_, err = Push(ctx, db, m)
	require.NoError(t, err)
	_, err = m.GetActivity("")
	assert.Error(t, err)
}

func TestPushFromStore(t *testing.T) {
	ctx := context.Background()
	db := setupStore(t)

	c := testCycle()
	require.NoError(t, db.CreateSleepCycle(ctx, c))
	require.NoError(t, db.CreateActivityRecord(ctx,
		models.NewActivityRecord(c.ID, c.End.Add(2*time.Hour), c.End.Add(3*time.Hour), models.ActivityTypeActivity)))

	m := setupMirror(t)
	summary, err := Push(ctx, db, m)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.SleepCycles)
	assert.Equal(t, 1, summary.Activities)
	assert.Zero(t, summary.Removed)

	// Pushing again overwrites rather than duplicates.
	_, err = Push(ctx, db, m)
	require.NoError(t, err)

	status, err := m.Status()
	require.NoError(t, err)
	assert.Equal(t, Status{SleepCycles: 1, Activities: 1}, status)

	cycles, err := m.SleepCycles()
	require.NoError(t, err)
	require.Len(t, cycles, 1)
	assert.True(t, cycles[0].End.Equal(c.End))

	activities, err := m.Activities()
	require.NoError(t, err)
	assert.Len(t, activities, 1)
}

func TestPushRemovesMovedCycle(t *testing.T) {
	ctx := context.Background()
	db := setupStore(t)
	m := setupMirror(t)

	c := testCycle()
	require.NoError(t, db.CreateSleepCycle(ctx, c))
	_, err := Push(ctx, db, m)
	require.NoError(t, err)

	// A continuation past midnight moves the cycle to the next date key.
	extended := *c
	extended.End = time.Date(2025, 3, 3, 1, 0, 0, 0, time.UTC)
	extended.ID = models.DateKey(extended.End)
	require.NoError(t, db.ReplaceSleepCycle(ctx, c.ID, &extended))

	summary, err := Push(ctx, db, m)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.SleepCycles)
	assert.Equal(t, 1, summary.Removed)

	status, err := m.Status()
	require.NoError(t, err)
	assert.Equal(t, Status{SleepCycles: 1}, status)

	_, err = m.GetSleepCycle(c.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	got, err := m.GetSleepCycle(extended.ID)
	require.NoError(t, err)
	assert.True(t, got.End.Equal(extended.End))
}

func TestPushEmptyStoreClearsMirror(t *testing.T) {
	ctx := context.Background()
	m := setupMirror(t)

	seeded := setupStore(t)
	c := testCycle()
	require.NoError(t, seeded.CreateSleepCycle(ctx, c))
	require.NoError(t, seeded.CreateActivityRecord(ctx,
		models.NewActivityRecord(c.ID, c.End, c.End.Add(time.Hour), models.ActivityTypeActivity)))
	_, err := Push(ctx, seeded, m)
	require.NoError(t, err)

	summary, err := Push(ctx, setupStore(t), m)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Removed)

	status, err := m.Status()
	require.NoError(t, err)
	assert.Equal(t, Status{}, status)
}

// ABOUTME: Tests for sleep assembly and event detection.
// ABOUTME: Covers nap demotion, continuations, same-day naps, and rerun idempotence.
package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/pulse/internal/models"
)

func TestNapDemotion(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	e := New(db, minuteOptions())

	// Morning: A 09:00-09:30 is the only sleep so far.
	addRun(t, db, at(4, 8, 0), at(4, 9, 0), codeAwake, time.Minute)
	addRun(t, db, at(4, 9, 0), at(4, 9, 30), codeSleep, time.Minute)
	addRun(t, db, at(4, 9, 30), at(4, 12, 0), codeAwake, time.Minute)

	_, err := e.DetectSleeps(ctx)
	require.NoError(t, err)

	first, err := db.LatestSleepCycle(ctx)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.True(t, first.Start.Equal(at(4, 9, 0)))

	// Afternoon: B 14:00-16:00 is longer, so A was the nap.
	addRun(t, db, at(4, 12, 0), at(4, 14, 0), codeAwake, time.Minute)
	addRun(t, db, at(4, 14, 0), at(4, 16, 0), codeSleep, time.Minute)
	addRun(t, db, at(4, 16, 0), at(4, 17, 0), codeAwake, time.Minute)

	summary, err := e.DetectSleeps(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Cycles)
	assert.Equal(t, 1, summary.Naps)

	cycles, err := db.SleepCycles(ctx)
	require.NoError(t, err)
	require.Len(t, cycles, 1)
	assert.Equal(t, "2025-03-04", models.FormatDateKey(cycles[0].ID))
	assert.True(t, cycles[0].Start.Equal(at(4, 14, 0)))
	assert.True(t, cycles[0].End.Equal(at(4, 16, 0)))

	naps, err := db.ListActivityRecords(ctx, nil, 0)
	require.NoError(t, err)
	require.Len(t, naps, 1)
	assert.Equal(t, models.ActivityTypeNap, naps[0].Type)
	assert.Equal(t, "2025-03-03", models.FormatDateKey(naps[0].PeriodID))
	assert.True(t, naps[0].From.Equal(at(4, 9, 0)))
	assert.True(t, naps[0].To.Equal(at(4, 9, 30)))
}

func TestFailedDemotionLeavesNoNap(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	addRun(t, db, at(4, 8, 0), at(4, 9, 0), codeAwake, time.Minute)
	addRun(t, db, at(4, 9, 0), at(4, 9, 30), codeSleep, time.Minute)
	addRun(t, db, at(4, 9, 30), at(4, 12, 0), codeAwake, time.Minute)
	_, err := New(db, minuteOptions()).DetectSleeps(ctx)
	require.NoError(t, err)

	addRun(t, db, at(4, 12, 0), at(4, 14, 0), codeAwake, time.Minute)
	addRun(t, db, at(4, 14, 0), at(4, 16, 0), codeSleep, time.Minute)
	addRun(t, db, at(4, 16, 0), at(4, 17, 0), codeAwake, time.Minute)

	_, err = New(failingStore{db}, minuteOptions()).DetectSleeps(ctx)
	require.ErrorIs(t, err, errWrite)

	// A is still the committed cycle and was not also recorded as a nap.
	latest, err := db.LatestSleepCycle(ctx)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.True(t, latest.Start.Equal(at(4, 9, 0)))
	_, activities := countRows(t, db)
	assert.Zero(t, activities)

	// A healthy rerun finishes the demotion.
	summary, err := New(db, minuteOptions()).DetectSleeps(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Naps)
	cycles, activities := countRows(t, db)
	assert.Equal(t, 1, cycles)
	assert.Equal(t, 1, activities)
}

func TestShorterSameDaySleepIsNap(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	addRun(t, db, at(3, 22, 0), at(3, 23, 0), codeAwake, time.Minute)
	addRun(t, db, at(3, 23, 0), at(4, 7, 0), codeSleep, time.Minute)
	addRun(t, db, at(4, 7, 0), at(4, 15, 0), codeAwake, time.Minute)
	addRun(t, db, at(4, 15, 0), at(4, 15, 40), codeSleep, time.Minute)
	addRun(t, db, at(4, 15, 40), at(4, 18, 0), codeAwake, time.Minute)

	summary, err := New(db, minuteOptions()).DetectSleeps(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Cycles)
	assert.Equal(t, 1, summary.Naps)

	cycles, _ := db.SleepCycles(ctx)
	require.Len(t, cycles, 1)
	assert.Equal(t, "2025-03-04", models.FormatDateKey(cycles[0].ID))

	naps, _ := db.ListActivityRecords(ctx, nil, 0)
	require.Len(t, naps, 1)
	assert.Equal(t, "2025-03-04", models.FormatDateKey(naps[0].PeriodID))
	assert.Equal(t, 40*time.Minute, naps[0].Duration())
}

func TestContinuationAcrossMidnightMovesDate(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	addRun(t, db, at(1, 20, 0), at(1, 21, 0), codeAwake, time.Minute)
	addRun(t, db, at(1, 21, 0), at(1, 23, 50), codeSleep, time.Minute)
	addRun(t, db, at(1, 23, 50), at(2, 0, 10), codeAwake, time.Minute)
	addRun(t, db, at(2, 0, 10), at(2, 6, 0), codeSleep, time.Minute)
	addRun(t, db, at(2, 6, 0), at(2, 7, 0), codeAwake, time.Minute)

	summary, err := New(db, minuteOptions()).DetectSleeps(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Cycles)

	cycles, _ := db.SleepCycles(ctx)
	require.Len(t, cycles, 1)
	assert.Equal(t, "2025-03-02", models.FormatDateKey(cycles[0].ID))
	assert.True(t, cycles[0].Start.Equal(at(1, 21, 0)))
	assert.True(t, cycles[0].End.Equal(at(2, 6, 0)))
}

func TestSleepAggregates(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	addRun(t, db, at(4, 8, 0), at(4, 9, 0), codeAwake, time.Minute)
	addRun(t, db, at(4, 9, 0), at(4, 10, 0), codeSleep, time.Minute)
	addRun(t, db, at(4, 10, 0), at(4, 11, 0), codeAwake, time.Minute)

	_, err := New(db, minuteOptions()).DetectSleeps(ctx)
	require.NoError(t, err)

	c, err := db.LatestSleepCycle(ctx)
	require.NoError(t, err)
	require.NotNil(t, c)

	assert.Equal(t, uint8(48), c.MinBPM)
	assert.Equal(t, uint8(56), c.MaxBPM)
	assert.Equal(t, uint8(52), c.AvgBPM)
	assert.Equal(t, uint16(40), c.MinHRV)
	assert.Equal(t, uint16(40), c.MaxHRV)
	assert.Equal(t, uint16(40), c.AvgHRV)
	assert.InDelta(t, 12.5, c.Score, 1e-9)
}

func TestSleepAtEndOfDataTerminates(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	addRun(t, db, at(4, 22, 0), at(4, 23, 0), codeAwake, time.Minute)
	addRun(t, db, at(4, 23, 0), at(5, 3, 0), codeSleep, time.Minute)

	e := New(db, minuteOptions())
	summary, err := e.DetectSleeps(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Cycles)

	again, err := e.DetectSleeps(ctx)
	require.NoError(t, err)
	assert.Zero(t, again.Cycles)
}

func TestDetectIdempotent(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	addRun(t, db, at(1, 20, 0), at(1, 23, 0), codeAwake, time.Minute)
	addRun(t, db, at(1, 23, 0), at(2, 7, 0), codeSleep, time.Minute)
	addRun(t, db, at(2, 7, 0), at(2, 10, 0), codeAwake, time.Minute)
	addRun(t, db, at(2, 10, 0), at(2, 11, 0), codeActive, time.Minute)
	addRun(t, db, at(2, 11, 0), at(2, 15, 0), codeAwake, time.Minute)
	addRun(t, db, at(2, 15, 0), at(2, 15, 20), codeSleep, time.Minute)
	addRun(t, db, at(2, 15, 20), at(2, 23, 0), codeAwake, time.Minute)
	addRun(t, db, at(2, 23, 0), at(3, 2, 0), codeSleep, time.Minute)
	addRun(t, db, at(3, 2, 0), at(3, 2, 20), codeAwake, time.Minute)
	addRun(t, db, at(3, 2, 20), at(3, 6, 30), codeSleep, time.Minute)
	addRun(t, db, at(3, 6, 30), at(3, 8, 0), codeAwake, time.Minute)

	e := New(db, minuteOptions())
	_, err := e.DetectSleeps(ctx)
	require.NoError(t, err)
	events, err := e.DetectEvents(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, events.Activities)
	assert.Equal(t, 1, events.Naps)

	cycles, err := db.SleepCycles(ctx)
	require.NoError(t, err)
	require.Len(t, cycles, 2)
	assert.Equal(t, "2025-03-02", models.FormatDateKey(cycles[0].ID))
	assert.Equal(t, "2025-03-03", models.FormatDateKey(cycles[1].ID))
	assert.True(t, cycles[1].Start.Equal(at(2, 23, 0)), "continuation keeps the first start")
	assert.True(t, cycles[1].End.Equal(at(3, 6, 30)))

	activities, err := db.ListActivityRecords(ctx, nil, 0)
	require.NoError(t, err)
	require.Len(t, activities, 2)
	assert.Equal(t, models.ActivityTypeActivity, activities[0].Type)
	assert.True(t, activities[0].From.Equal(at(2, 10, 0)))
	assert.Equal(t, "2025-03-02", models.FormatDateKey(activities[0].PeriodID))
	assert.Equal(t, models.ActivityTypeNap, activities[1].Type)

	c1, a1 := countRows(t, db)

	summary, err := e.DetectSleeps(ctx)
	require.NoError(t, err)
	assert.Zero(t, summary.Cycles)
	assert.Zero(t, summary.Naps)
	_, err = e.DetectEvents(ctx)
	require.NoError(t, err)

	c2, a2 := countRows(t, db)
	assert.Equal(t, c1, c2)
	assert.Equal(t, a1, a2)
}

func TestDetectEventsSkipsOpenInterval(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	addRun(t, db, at(1, 23, 0), at(2, 7, 0), codeSleep, time.Minute)
	addRun(t, db, at(2, 7, 0), at(2, 10, 0), codeAwake, time.Minute)
	addRun(t, db, at(2, 10, 0), at(2, 11, 0), codeActive, time.Minute)
	addRun(t, db, at(2, 11, 0), at(2, 12, 0), codeAwake, time.Minute)

	e := New(db, minuteOptions())
	_, err := e.DetectSleeps(ctx)
	require.NoError(t, err)

	events, err := e.DetectEvents(ctx)
	require.NoError(t, err)
	assert.Zero(t, events.Activities, "activity after the latest cycle waits for the next cycle")
}

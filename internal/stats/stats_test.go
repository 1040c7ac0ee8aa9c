// ABOUTME: Tests for sleep consistency and exercise summaries.
// ABOUTME: Uses hand-computed means and population deviations.
package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/pulse/internal/models"
)

func night(day, startHour, startMin, endHour int, score float64) *models.SleepCycle {
	start := time.Date(2025, 3, day, startHour, startMin, 0, 0, time.UTC)
	if startHour < 12 {
		start = start.AddDate(0, 0, 1)
	}
	end := time.Date(2025, 3, day+1, endHour, 0, 0, 0, time.UTC)
	return &models.SleepCycle{ID: models.DateKey(end), Start: start, End: end, Score: score}
}

func TestSleepAcrossMidnight(t *testing.T) {
	cycles := []*models.SleepCycle{
		night(1, 23, 0, 7, 100), // 8h
		night(2, 1, 0, 7, 75),   // 6h
	}

	s := Sleep(cycles)
	require.NotNil(t, s)
	assert.Equal(t, 2, s.Count)
	assert.Equal(t, 7*time.Hour, s.MeanDuration)
	assert.Equal(t, time.Hour, s.StdDuration)
	// 23:00 and 01:00 average to midnight, not noon.
	assert.Equal(t, 12*time.Hour, s.MeanBedtime)
	assert.Equal(t, time.Hour, s.StdBedtime)
	assert.Equal(t, 7*time.Hour, s.MeanWake)
	assert.Zero(t, s.StdWake)
	assert.InDelta(t, 87.5, s.MeanScore, 1e-9)

	assert.Contains(t, s.String(), "Bedtime:   00:00")
}

func TestSleepSingleNightHasZeroSpread(t *testing.T) {
	s := Sleep([]*models.SleepCycle{night(1, 22, 30, 6, 93.75)})
	require.NotNil(t, s)
	assert.Equal(t, 7*time.Hour+30*time.Minute, s.MeanDuration)
	assert.Zero(t, s.StdDuration)
}

func TestSleepEmpty(t *testing.T) {
	assert.Nil(t, Sleep(nil))
}

func TestExercise(t *testing.T) {
	base := time.Date(2025, 3, 2, 10, 0, 0, 0, time.UTC)
	records := []*models.ActivityRecord{
		models.NewActivityRecord(base, base, base.Add(30*time.Minute), models.ActivityTypeActivity),
		models.NewActivityRecord(base, base.Add(2*time.Hour), base.Add(3*time.Hour+30*time.Minute), models.ActivityTypeActivity),
	}

	e := Exercise(records)
	require.NotNil(t, e)
	assert.Equal(t, 2, e.Count)
	assert.Equal(t, 2*time.Hour, e.Total)
	assert.Equal(t, time.Hour, e.MeanDuration)
	assert.Equal(t, 30*time.Minute, e.StdDuration)
	assert.Equal(t, 90*time.Minute, e.Longest)
	assert.Contains(t, e.String(), "Total:     2h 00m")

	assert.Nil(t, Exercise(nil))
}

func TestRecent(t *testing.T) {
	s := []int{1, 2, 3, 4, 5, 6, 7, 8, 9}
	assert.Equal(t, []int{3, 4, 5, 6, 7, 8, 9}, Recent(s, RecentCount))
	assert.Equal(t, []int{1, 2}, Recent([]int{1, 2}, RecentCount))
}

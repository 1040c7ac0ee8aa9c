// ABOUTME: Summary statistics over committed sleep cycles and exercise records.
// ABOUTME: Reports means and spreads over all records and over the most recent week.
package stats

import (
	"fmt"
	"strings"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/harperreed/pulse/internal/models"
)

// RecentCount is how many of the newest records make up "last week".
const RecentCount = 7

// SleepConsistency summarizes how regular a set of sleep cycles is.
// Bedtimes are measured from noon so that times either side of midnight
// average sensibly; wake times are measured from midnight.
type SleepConsistency struct {
	Count        int
	MeanDuration time.Duration
	StdDuration  time.Duration
	MeanBedtime  time.Duration // after noon
	StdBedtime   time.Duration
	MeanWake     time.Duration // after midnight
	StdWake      time.Duration
	MeanScore    float64
}

// Sleep computes consistency metrics. It returns nil for no cycles.
func Sleep(cycles []*models.SleepCycle) *SleepConsistency {
	if len(cycles) == 0 {
		return nil
	}

	durations := make([]float64, len(cycles))
	bedtimes := make([]float64, len(cycles))
	wakes := make([]float64, len(cycles))
	scores := make([]float64, len(cycles))
	for i, c := range cycles {
		durations[i] = c.Duration().Seconds()
		bedtimes[i] = sinceNoon(c.Start).Seconds()
		wakes[i] = sinceMidnight(c.End).Seconds()
		scores[i] = c.Score
	}

	s := &SleepConsistency{Count: len(cycles), MeanScore: stat.Mean(scores, nil)}
	s.MeanDuration, s.StdDuration = meanStd(durations)
	s.MeanBedtime, s.StdBedtime = meanStd(bedtimes)
	s.MeanWake, s.StdWake = meanStd(wakes)
	return s
}

// ExerciseSummary summarizes a set of activity records.
type ExerciseSummary struct {
	Count        int
	Total        time.Duration
	MeanDuration time.Duration
	StdDuration  time.Duration
	Longest      time.Duration
}

// Exercise computes exercise metrics. It returns nil for no records.
func Exercise(records []*models.ActivityRecord) *ExerciseSummary {
	if len(records) == 0 {
		return nil
	}

	durations := make([]float64, len(records))
	for i, r := range records {
		durations[i] = r.Duration().Seconds()
	}

	e := &ExerciseSummary{
		Count:   len(records),
		Total:   seconds(floats.Sum(durations)),
		Longest: seconds(floats.Max(durations)),
	}
	e.MeanDuration, e.StdDuration = meanStd(durations)
	return e
}

// Recent returns the last n elements of s in their original order.
func Recent[T any](s []T, n int) []T {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

func (s *SleepConsistency) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Nights:    %d\n", s.Count)
	fmt.Fprintf(&b, "Duration:  %s ± %s\n", hm(s.MeanDuration), hm(s.StdDuration))
	fmt.Fprintf(&b, "Bedtime:   %s ± %s\n", clock(12*time.Hour+s.MeanBedtime), hm(s.StdBedtime))
	fmt.Fprintf(&b, "Wake:      %s ± %s\n", clock(s.MeanWake), hm(s.StdWake))
	fmt.Fprintf(&b, "Score:     %.1f", s.MeanScore)
	return b.String()
}

func (e *ExerciseSummary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Sessions:  %d\n", e.Count)
	fmt.Fprintf(&b, "Total:     %s\n", hm(e.Total))
	fmt.Fprintf(&b, "Duration:  %s ± %s\n", hm(e.MeanDuration), hm(e.StdDuration))
	fmt.Fprintf(&b, "Longest:   %s", hm(e.Longest))
	return b.String()
}

func meanStd(x []float64) (time.Duration, time.Duration) {
	mean, std := stat.PopMeanStdDev(x, nil)
	return seconds(mean), seconds(std)
}

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second)).Round(time.Second)
}

func sinceMidnight(t time.Time) time.Duration {
	t = t.UTC()
	return t.Sub(models.DateKey(t))
}

func sinceNoon(t time.Time) time.Duration {
	d := sinceMidnight(t) - 12*time.Hour
	if d < 0 {
		d += 24 * time.Hour
	}
	return d
}

func hm(d time.Duration) string {
	d = d.Round(time.Minute)
	return fmt.Sprintf("%dh %02dm", int(d.Hours()), int(d.Minutes())%60)
}

func clock(d time.Duration) string {
	d = d.Round(time.Minute) % (24 * time.Hour)
	return fmt.Sprintf("%02d:%02d", int(d.Hours()), int(d.Minutes())%60)
}

// ABOUTME: SleepCycle model, calendar date keys, and the sleep score function.
// ABOUTME: One committed sleep cycle per calendar day, keyed by the date the sleep ended.
package models

import (
	"time"
)

// DateKeyLayout is the textual form of a date key.
const DateKeyLayout = "2006-01-02"

// IdealSleep is the duration that earns a full sleep score.
const IdealSleep = 8 * time.Hour

// SleepCycle is the committed record of one night's sleep.
type SleepCycle struct {
	ID     time.Time // date key: midnight UTC of the day the sleep ended
	Start  time.Time
	End    time.Time
	MinBPM uint8
	MaxBPM uint8
	AvgBPM uint8
	MinHRV uint16
	MaxHRV uint16
	AvgHRV uint16
	Score  float64
}

// Duration returns the time between falling asleep and waking.
func (c *SleepCycle) Duration() time.Duration {
	return c.End.Sub(c.Start)
}

// DateKey truncates t to midnight UTC of its calendar date.
func DateKey(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// PreviousDay returns the date key one day before key.
func PreviousDay(key time.Time) time.Time {
	return DateKey(key).AddDate(0, 0, -1)
}

// SameDate reports whether a and b fall on the same calendar date.
func SameDate(a, b time.Time) bool {
	return DateKey(a).Equal(DateKey(b))
}

// FormatDateKey renders a date key as YYYY-MM-DD.
func FormatDateKey(key time.Time) string {
	return DateKey(key).Format(DateKeyLayout)
}

// ParseDateKey parses a YYYY-MM-DD date key.
func ParseDateKey(s string) (time.Time, error) {
	return time.ParseInLocation(DateKeyLayout, s, time.UTC)
}

// SleepScore scores a sleep from its bounds, 0 to 100, against IdealSleep.
// It is total: an empty or inverted range scores 0.
func SleepScore(start, end time.Time) float64 {
	return SleepScoreFor(start, end, IdealSleep)
}

// SleepScoreFor is SleepScore with a custom ideal duration.
func SleepScoreFor(start, end time.Time, ideal time.Duration) float64 {
	if ideal <= 0 {
		ideal = IdealSleep
	}
	d := end.Sub(start)
	if d <= 0 {
		return 0
	}
	if d >= ideal {
		return 100
	}
	return float64(d) / float64(ideal) * 100
}

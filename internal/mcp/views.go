// ABOUTME: JSON views of committed records returned by tools and resources.
// ABOUTME: Times are RFC 3339 strings and durations are whole minutes.
package mcp

import (
	"time"

	"github.com/harperreed/pulse/internal/models"
)

type sleepView struct {
	Date            string  `json:"date"`
	Start           string  `json:"start"`
	End             string  `json:"end"`
	DurationMinutes int     `json:"duration_minutes"`
	MinBPM          uint8   `json:"min_bpm"`
	MaxBPM          uint8   `json:"max_bpm"`
	AvgBPM          uint8   `json:"avg_bpm"`
	MinHRV          uint16  `json:"min_hrv"`
	MaxHRV          uint16  `json:"max_hrv"`
	AvgHRV          uint16  `json:"avg_hrv"`
	Score           float64 `json:"score"`
}

func toSleepView(c *models.SleepCycle) sleepView {
	return sleepView{
		Date:            models.FormatDateKey(c.ID),
		Start:           c.Start.UTC().Format(time.RFC3339),
		End:             c.End.UTC().Format(time.RFC3339),
		DurationMinutes: int(c.Duration().Minutes()),
		MinBPM:          c.MinBPM,
		MaxBPM:          c.MaxBPM,
		AvgBPM:          c.AvgBPM,
		MinHRV:          c.MinHRV,
		MaxHRV:          c.MaxHRV,
		AvgHRV:          c.AvgHRV,
		Score:           c.Score,
	}
}

type activityView struct {
	ID              string `json:"id"`
	Type            string `json:"type"`
	Period          string `json:"period"`
	From            string `json:"from"`
	To              string `json:"to"`
	DurationMinutes int    `json:"duration_minutes"`
}

func toActivityView(a *models.ActivityRecord) activityView {
	return activityView{
		ID:              a.ID.String()[:8],
		Type:            string(a.Type),
		Period:          models.FormatDateKey(a.PeriodID),
		From:            a.From.UTC().Format(time.RFC3339),
		To:              a.To.UTC().Format(time.RFC3339),
		DurationMinutes: int(a.Duration().Minutes()),
	}
}

// newest returns up to n items from the end of s, newest first.
func newest[T any](s []T, n int) []T {
	out := make([]T, 0, n)
	for i := len(s) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, s[i])
	}
	return out
}

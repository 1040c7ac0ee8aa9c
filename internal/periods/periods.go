// ABOUTME: Segments an ordered sample log into runs of one activity class.
// ABOUTME: Periods are half-open and partition the input's time range exactly.
package periods

import (
	"slices"
	"time"

	"github.com/harperreed/pulse/internal/models"
)

// Period is a maximal run of consecutive samples sharing one class.
// It covers [Start, End): End is the first sample of the next run, or the
// last sample's time for the final period.
type Period struct {
	Start time.Time
	End   time.Time
	Class models.ActivityClass
}

// Duration returns End - Start.
func (p Period) Duration() time.Duration {
	return p.End.Sub(p.Start)
}

// List is an ordered sequence of periods.
type List []Period

// Detect groups consecutive samples by class in a single pass. The input is
// only read.
func Detect(samples []*models.Sample) List {
	if len(samples) == 0 {
		return nil
	}

	var out List
	start := 0
	for i := 1; i <= len(samples); i++ {
		if i < len(samples) && samples[i].Class() == samples[start].Class() {
			continue
		}

		end := samples[len(samples)-1].Time
		if i < len(samples) {
			end = samples[i].Time
		}
		out = append(out, Period{
			Start: samples[start].Time,
			End:   end,
			Class: samples[start].Class(),
		})
		start = i
	}
	return out
}

// NextSleep removes and returns the earliest Sleep period. The remaining
// periods keep their order.
func (l *List) NextSleep() (Period, bool) {
	i := slices.IndexFunc(*l, func(p Period) bool {
		return p.Class == models.ActivitySleep
	})
	if i < 0 {
		return Period{}, false
	}
	p := (*l)[i]
	*l = slices.Delete(*l, i, i+1)
	return p, true
}

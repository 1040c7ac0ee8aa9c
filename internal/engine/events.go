// ABOUTME: Detects naps and exercise between consecutive committed sleep cycles.
// ABOUTME: Only closed intervals are scanned; time after the latest cycle waits for the next one.
package engine

import (
	"context"
	"fmt"

	"github.com/harperreed/pulse/internal/log"
	"github.com/harperreed/pulse/internal/models"
	"github.com/harperreed/pulse/internal/periods"
)

// EventSummary counts the records a DetectEvents run wrote.
type EventSummary struct {
	Activities int
	Naps       int
}

// DetectEvents scans the waking interval between every pair of adjacent sleep
// cycles. Active periods become Activity records and sleep periods become
// Nap records, attributed to the earlier cycle.
//
// Samples after the most recent cycle are not scanned until a later cycle
// closes the interval.
func (e *Engine) DetectEvents(ctx context.Context) (*EventSummary, error) {
	summary := &EventSummary{}

	cycles, err := e.store.SleepCycles(ctx)
	if err != nil {
		return summary, fmt.Errorf("load sleep cycles: %w", err)
	}

	for i := 1; i < len(cycles); i++ {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		prev, next := cycles[i-1], cycles[i]
		q := models.SampleQuery{From: &prev.End, To: &next.Start, Exclusive: true}
		history, err := e.store.SearchSamples(ctx, q)
		if err != nil {
			return summary, fmt.Errorf("load history: %w", err)
		}

		for _, p := range periods.Detect(history) {
			var kind models.ActivityType
			switch p.Class {
			case models.ActivityActive:
				kind = models.ActivityTypeActivity
			case models.ActivitySleep:
				kind = models.ActivityTypeNap
			default:
				continue
			}

			a := models.NewActivityRecord(prev.ID, p.Start, p.End, kind)
			if err := e.store.CreateActivityRecord(ctx, a); err != nil {
				return summary, fmt.Errorf("record %s: %w", kind, err)
			}
			if kind == models.ActivityTypeNap {
				summary.Naps++
			} else {
				summary.Activities++
			}

			log.Infow("detected activity",
				"type", string(kind),
				"period", models.FormatDateKey(a.PeriodID),
				"from", a.From,
				"to", a.To,
				"duration", a.Duration().String())
		}
	}

	return summary, nil
}

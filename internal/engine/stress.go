// ABOUTME: Checkpointed stress scan over the sample log.
// ABOUTME: Resumes one window span before the newest scored sample and never rescores it.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/harperreed/pulse/internal/log"
	"github.com/harperreed/pulse/internal/models"
)

// StressSummary counts what a CalculateStress run did.
type StressSummary struct {
	Pages  int
	Scored int
}

// CalculateStress scores every window of StressWindow consecutive samples not
// yet covered by the stress marker, page by page, until the log is exhausted.
func (e *Engine) CalculateStress(ctx context.Context) (*StressSummary, error) {
	summary := &StressSummary{}

	// Advances past stretches where no window could be scored, which would
	// otherwise leave the stored marker in place forever.
	var skipped *time.Time

	for {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		cursor, err := e.store.LatestStressTime(ctx)
		if err != nil {
			return summary, fmt.Errorf("load stress marker: %w", err)
		}
		if skipped != nil && (cursor == nil || skipped.After(*cursor)) {
			cursor = skipped
		}

		page, err := e.store.SearchSamples(ctx, e.stressQuery(cursor))
		if err != nil {
			return summary, fmt.Errorf("load history: %w", err)
		}
		if len(page) <= e.opts.StressWindow {
			return summary, nil
		}
		last := page[len(page)-1].Time
		if cursor != nil && !last.After(*cursor) {
			return summary, nil
		}

		scored, err := e.scorePage(ctx, page, cursor)
		if err != nil {
			return summary, err
		}
		summary.Pages++
		summary.Scored += scored

		log.Debugw("stress page", "from", page[0].Time, "to", last, "scored", scored)

		if scored == 0 {
			skipped = &last
		}
	}
}

// stressQuery starts one window span before the cursor so windows ending just
// after it still see their full history.
func (e *Engine) stressQuery(cursor *time.Time) models.SampleQuery {
	q := models.SampleQuery{Limit: e.opts.StressPage}
	if cursor != nil {
		from := cursor.Add(-e.opts.StressSpan())
		q.From = &from
	}
	return q
}

// scorePage slides the window across page with stride one and persists every
// score attached to a sample after cursor. Scores must land on a sample of
// their window, otherwise the stored marker could not advance.
func (e *Engine) scorePage(ctx context.Context, page []*models.Sample, cursor *time.Time) (int, error) {
	scored := 0
	for i := 0; i+e.opts.StressWindow <= len(page); i++ {
		window := page[i : i+e.opts.StressWindow]
		score, ok := e.scorer(window)
		if !ok {
			continue
		}
		if !hasSampleAt(window, score.Time) {
			log.Warnw("stress score does not name a window sample", "time", score.Time)
			continue
		}
		if cursor != nil && !score.Time.After(*cursor) {
			continue
		}
		if err := e.store.UpdateSampleStress(ctx, score); err != nil {
			return scored, fmt.Errorf("store stress: %w", err)
		}
		scored++
	}
	return scored, nil
}

func hasSampleAt(window []*models.Sample, t time.Time) bool {
	for _, s := range window {
		if s.Time.Equal(t) {
			return true
		}
	}
	return false
}

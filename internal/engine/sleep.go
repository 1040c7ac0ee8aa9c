// ABOUTME: Sleep assembly: merges sleep periods into one committed cycle per date.
// ABOUTME: Handles continuations, same-day naps, and retroactive nap demotion.
package engine

import (
	"context"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/harperreed/pulse/internal/log"
	"github.com/harperreed/pulse/internal/models"
	"github.com/harperreed/pulse/internal/periods"
)

// SleepSummary counts what a DetectSleeps run committed.
type SleepSummary struct {
	Cycles int
	Naps   int
}

// DetectSleeps commits sleep cycles for every sleep period after the latest
// committed cycle. Each commit restarts the scan from the new latest cycle,
// so an interrupted run resumes where it stopped.
func (e *Engine) DetectSleeps(ctx context.Context) (*SleepSummary, error) {
	summary := &SleepSummary{}

	for {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		committed, err := e.assembleNext(ctx, summary)
		if err != nil {
			return summary, err
		}
		if !committed {
			return summary, nil
		}
	}
}

// assembleNext runs one outer pass and reports whether it committed a cycle.
func (e *Engine) assembleNext(ctx context.Context, summary *SleepSummary) (bool, error) {
	last, err := e.store.LatestSleepCycle(ctx)
	if err != nil {
		return false, fmt.Errorf("load latest sleep: %w", err)
	}

	var from *time.Time
	if last != nil {
		from = &last.End
	}
	history, err := e.store.SearchSamples(ctx, models.Since(from, e.opts.SleepWindow))
	if err != nil {
		return false, fmt.Errorf("load history: %w", err)
	}

	list := periods.Detect(history)
	for {
		candidate, ok := list.NextSleep()
		if !ok {
			return false, nil
		}

		var supersedes *time.Time
		var demoted *models.ActivityRecord
		if last != nil {
			// Already covered by the latest cycle.
			if !candidate.End.After(last.End) {
				continue
			}

			switch gap := candidate.Start.Sub(last.End); {
			case gap < e.opts.MaxSleepPause:
				history, err = e.store.SearchSamples(ctx, models.Between(last.Start, candidate.End))
				if err != nil {
					return false, fmt.Errorf("reload history: %w", err)
				}
				candidate.Start = last.Start
				supersedes = &last.ID

			case models.SameDate(candidate.End, last.End):
				if candidate.Duration() < last.Duration() {
					if err := e.recordNap(ctx, last.ID, candidate.Start, candidate.End); err != nil {
						return false, err
					}
					summary.Naps++
					continue
				}
				// The committed cycle was the nap. It is recorded together
				// with the cycle that replaces it.
				demoted = models.NewActivityRecord(models.PreviousDay(last.ID), last.Start, last.End, models.ActivityTypeNap)
			}
		}

		cycle := e.buildCycle(candidate, history)
		switch {
		case supersedes != nil:
			err = e.store.ReplaceSleepCycle(ctx, *supersedes, cycle)
		case demoted != nil:
			err = e.store.DemoteSleepCycle(ctx, demoted, cycle)
		default:
			err = e.store.CreateSleepCycle(ctx, cycle)
		}
		if err != nil {
			return false, fmt.Errorf("commit sleep cycle: %w", err)
		}
		summary.Cycles++
		if demoted != nil {
			summary.Naps++
			logNap(demoted)
		}

		log.Infow("detected sleep",
			"date", models.FormatDateKey(cycle.ID),
			"start", cycle.Start,
			"end", cycle.End,
			"duration", cycle.Duration().String())
		return true, nil
	}
}

func (e *Engine) recordNap(ctx context.Context, periodID, from, to time.Time) error {
	nap := models.NewActivityRecord(periodID, from, to, models.ActivityTypeNap)
	if err := e.store.CreateActivityRecord(ctx, nap); err != nil {
		return fmt.Errorf("record nap: %w", err)
	}
	logNap(nap)
	return nil
}

func logNap(nap *models.ActivityRecord) {
	log.Infow("detected nap",
		"period", models.FormatDateKey(nap.PeriodID),
		"from", nap.From,
		"to", nap.To,
		"duration", nap.Duration().String())
}

// buildCycle aggregates the valid samples inside p into a SleepCycle keyed by
// the date p ends on.
func (e *Engine) buildCycle(p periods.Period, history []*models.Sample) *models.SleepCycle {
	var inside []*models.Sample
	for _, s := range history {
		if s.IsValid() && within(s, p) {
			inside = append(inside, s)
		}
	}

	cycle := &models.SleepCycle{
		ID:    models.DateKey(p.End),
		Start: p.Start,
		End:   p.End,
		Score: models.SleepScoreFor(p.Start, p.End, e.opts.IdealSleep),
	}

	if len(inside) > 0 {
		bpm := make([]float64, len(inside))
		for i, s := range inside {
			bpm[i] = float64(s.BPM)
		}
		cycle.MinBPM = uint8(floats.Min(bpm))
		cycle.MaxBPM = uint8(floats.Max(bpm))
		cycle.AvgBPM = uint8(math.Round(stat.Mean(bpm, nil)))
	}

	if hrv := rmssdChunks(inside, e.opts.HRVWindow); len(hrv) > 0 {
		cycle.MinHRV = uint16(math.Round(floats.Min(hrv)))
		cycle.MaxHRV = uint16(math.Round(floats.Max(hrv)))
		cycle.AvgHRV = uint16(math.Round(stat.Mean(hrv, nil)))
	}

	return cycle
}

// within reports whether s lies in p. The end bound only admits samples that
// are themselves sleep, since it is usually the first sample of the next run.
func within(s *models.Sample, p periods.Period) bool {
	if s.Time.Before(p.Start) || s.Time.After(p.End) {
		return false
	}
	return s.Time.Before(p.End) || s.Class() == models.ActivitySleep
}

// rmssdChunks computes RMSSD, in milliseconds, over consecutive chunks of
// size samples. Chunks with fewer than two beat intervals are skipped.
func rmssdChunks(samples []*models.Sample, size int) []float64 {
	var out []float64
	for start := 0; start < len(samples); start += size {
		end := min(start+size, len(samples))

		var rr []float64
		for _, s := range samples[start:end] {
			for _, v := range s.RR {
				rr = append(rr, float64(v))
			}
		}
		if len(rr) < 2 {
			continue
		}

		sq := make([]float64, len(rr)-1)
		for i := 1; i < len(rr); i++ {
			d := rr[i] - rr[i-1]
			sq[i-1] = d * d
		}
		out = append(out, math.Sqrt(stat.Mean(sq, nil)))
	}
	return out
}

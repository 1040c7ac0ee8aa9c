// ABOUTME: Stress scoring over a window of consecutive samples.
// ABOUTME: Baevsky stress index on beat-to-beat intervals, scaled to 0-10.
package stress

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/harperreed/pulse/internal/models"
)

// MinReadingPeriod is the default window size in samples.
const MinReadingPeriod = 120

const (
	binWidth     = 0.05 // seconds
	minIntervals = 10
	maxIndex     = 1000.0
)

// Func scores a window of samples. ok is false when the window carries too
// little signal to score.
type Func func(window []*models.Sample) (score models.StressScore, ok bool)

// Baevsky computes the Baevsky stress index SI = AMo / (2 * Mo * MxDMn) over
// the beat intervals of the window and maps it onto 0-10. The score is
// attributed to the last sample of the window.
//
// Samples without RR intervals contribute one interval derived from their
// heart rate. Invalid samples are ignored.
func Baevsky(window []*models.Sample) (models.StressScore, bool) {
	if len(window) == 0 {
		return models.StressScore{}, false
	}

	intervals := beatIntervals(window)
	need := max(minIntervals, len(window)/2)
	if len(intervals) < need {
		return models.StressScore{}, false
	}

	spread := floats.Max(intervals) - floats.Min(intervals)
	if spread <= 0 {
		return models.StressScore{}, false
	}

	bins := make([]float64, len(intervals))
	for i, v := range intervals {
		bins[i] = math.Round(v / binWidth)
	}
	modeBin, count := stat.Mode(bins, nil)
	mode := modeBin * binWidth
	if mode <= 0 {
		return models.StressScore{}, false
	}
	amplitude := count / float64(len(intervals)) * 100

	index := amplitude / (2 * mode * spread)
	score := math.Min(index, maxIndex) / maxIndex * 10

	return models.StressScore{Time: window[len(window)-1].Time, Score: score}, true
}

// beatIntervals returns the window's beat-to-beat intervals in seconds.
func beatIntervals(window []*models.Sample) []float64 {
	out := make([]float64, 0, len(window))
	for _, s := range window {
		if !s.IsValid() {
			continue
		}
		if len(s.RR) == 0 {
			out = append(out, 60/float64(s.BPM))
			continue
		}
		for _, rr := range s.RR {
			out = append(out, float64(rr)/1000)
		}
	}
	return out
}

// ABOUTME: Batch engine turning the raw sample log into sleep, nap, activity and stress records.
// ABOUTME: Every job re-derives its resumption point from the store, so runs are resumable.
package engine

import (
	"context"
	"time"

	"github.com/harperreed/pulse/internal/models"
	"github.com/harperreed/pulse/internal/stress"
)

// Store is the subset of the history store the engine needs.
type Store interface {
	SearchSamples(ctx context.Context, q models.SampleQuery) ([]*models.Sample, error)
	LatestSleepCycle(ctx context.Context) (*models.SleepCycle, error)
	SleepCycles(ctx context.Context) ([]*models.SleepCycle, error)
	CreateSleepCycle(ctx context.Context, c *models.SleepCycle) error
	ReplaceSleepCycle(ctx context.Context, oldID time.Time, c *models.SleepCycle) error
	DemoteSleepCycle(ctx context.Context, nap *models.ActivityRecord, c *models.SleepCycle) error
	CreateActivityRecord(ctx context.Context, a *models.ActivityRecord) error
	UpdateSampleStress(ctx context.Context, score models.StressScore) error
	LatestStressTime(ctx context.Context) (*time.Time, error)
}

// Options tunes the batch jobs.
type Options struct {
	// MaxSleepPause is the longest waking that still continues a sleep session.
	MaxSleepPause time.Duration
	// SleepWindow caps the samples loaded per sleep detection pass.
	SleepWindow int
	// StressWindow is the number of consecutive samples scored together.
	StressWindow int
	// StressPage caps the samples loaded per stress pass.
	StressPage int
	// HRVWindow is the number of samples per HRV chunk.
	HRVWindow int
	// IdealSleep is the sleep duration that scores 100.
	IdealSleep time.Duration
	// SampleInterval is the nominal spacing of samples.
	SampleInterval time.Duration
}

// DefaultOptions returns options for a strap logging at 1 Hz.
func DefaultOptions() Options {
	return Options{
		MaxSleepPause:  60 * time.Minute,
		SleepWindow:    86400 * 2,
		StressWindow:   stress.MinReadingPeriod,
		StressPage:     86400,
		HRVWindow:      300,
		IdealSleep:     models.IdealSleep,
		SampleInterval: time.Second,
	}
}

// StressSpan is the time covered by one stress window.
func (o Options) StressSpan() time.Duration {
	return time.Duration(o.StressWindow) * o.SampleInterval
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MaxSleepPause <= 0 {
		o.MaxSleepPause = d.MaxSleepPause
	}
	if o.SleepWindow <= 0 {
		o.SleepWindow = d.SleepWindow
	}
	if o.StressWindow <= 0 {
		o.StressWindow = d.StressWindow
	}
	if o.StressPage <= 0 {
		o.StressPage = d.StressPage
	}
	if o.HRVWindow <= 0 {
		o.HRVWindow = d.HRVWindow
	}
	if o.IdealSleep <= 0 {
		o.IdealSleep = d.IdealSleep
	}
	if o.SampleInterval <= 0 {
		o.SampleInterval = d.SampleInterval
	}
	return o
}

// Engine runs the batch jobs against a Store. An Engine must not run the
// same job concurrently with itself on one store.
type Engine struct {
	store  Store
	opts   Options
	scorer stress.Func
}

// New creates an Engine. Zero-valued options fall back to DefaultOptions.
func New(store Store, opts Options) *Engine {
	return &Engine{
		store:  store,
		opts:   opts.withDefaults(),
		scorer: stress.Baevsky,
	}
}

// WithScorer replaces the stress function.
func (e *Engine) WithScorer(fn stress.Func) *Engine {
	e.scorer = fn
	return e
}

// Options returns the effective options.
func (e *Engine) Options() Options {
	return e.opts
}

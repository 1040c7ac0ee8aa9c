// ABOUTME: Sample model for decoded physiological readings from the strap.
// ABOUTME: One row per second of history: heart rate, RR intervals, activity code, stress.
package models

import (
	"time"
)

// Sample is one decoded history reading.
type Sample struct {
	Time     time.Time
	BPM      uint8
	RR       []uint16 // beat-to-beat intervals in milliseconds, zero entries dropped
	Activity int64    // raw activity code, see Classify
	Stress   *float64 // set once the stress scanner has scored this sample
}

// NewSample builds a Sample from the wire representation.
func NewSample(unix int64, bpm uint8, rr []uint16, activity int64) *Sample {
	return &Sample{
		Time:     time.Unix(unix, 0).UTC(),
		BPM:      bpm,
		RR:       rr,
		Activity: activity,
	}
}

// IsValid reports whether the sample carries a physiological reading.
// A zero heart rate is the device's wake/garbage sentinel.
func (s *Sample) IsValid() bool {
	return s.BPM > 0
}

// Class returns the activity class of the sample.
func (s *Sample) Class() ActivityClass {
	return Classify(s.Activity)
}

// WithStress sets the stress score on the sample.
func (s *Sample) WithStress(score float64) *Sample {
	s.Stress = &score
	return s
}

// StressScore is a stress annotation for a single sample.
type StressScore struct {
	Time  time.Time
	Score float64
}

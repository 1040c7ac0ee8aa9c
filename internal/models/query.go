// ABOUTME: Query parameters for ordered sample range searches.
// ABOUTME: Shared by the history store and the batch engine.
package models

import "time"

// SampleQuery selects samples in ascending time order. Nil bounds are open.
// Bounds are inclusive unless Exclusive is set. Limit <= 0 means no limit.
type SampleQuery struct {
	From      *time.Time
	To        *time.Time
	Limit     int
	Exclusive bool
}

// Between is a SampleQuery over [from, to].
func Between(from, to time.Time) SampleQuery {
	return SampleQuery{From: &from, To: &to}
}

// Since is a SampleQuery starting at from, capped at limit samples.
func Since(from *time.Time, limit int) SampleQuery {
	return SampleQuery{From: from, Limit: limit}
}

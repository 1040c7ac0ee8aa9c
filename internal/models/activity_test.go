// ABOUTME: Tests for the activity classifier and ActivityRecord model.
// ABOUTME: Pins the exact band boundaries of the activity code mapping.
package models

import (
	"math"
	"testing"
	"time"
)

func TestClassifyBoundaries(t *testing.T) {
	tests := []struct {
		code int64
		want ActivityClass
	}{
		{0, ActivityInactive},
		{499_999_999, ActivityInactive},
		{500_000_000, ActivityActive},
		{999_999_999, ActivityActive},
		{1_000_000_000, ActivitySleep},
		{1_499_999_999, ActivitySleep},
		{1_500_000_000, ActivityAwake},
		{math.MaxUint32, ActivityAwake},
		{math.MaxInt64, ActivityAwake},
		{-1, ActivityUnknown},
		{math.MinInt64, ActivityUnknown},
	}

	for _, tt := range tests {
		if got := Classify(tt.code); got != tt.want {
			t.Errorf("Classify(%d) = %s, want %s", tt.code, got, tt.want)
		}
	}
}

func TestClassifyWireValues(t *testing.T) {
	// Codes taken from device captures.
	tests := []struct {
		code uint32
		want ActivityClass
	}{
		{1833115904, ActivityAwake},
		{1285750784, ActivitySleep},
		{1632698368, ActivityAwake},
	}

	for _, tt := range tests {
		if got := Classify(int64(tt.code)); got != tt.want {
			t.Errorf("Classify(%d) = %s, want %s", tt.code, got, tt.want)
		}
	}
}

func TestActivityClassString(t *testing.T) {
	if ActivitySleep.String() != "sleep" {
		t.Errorf("ActivitySleep.String() = %q, want sleep", ActivitySleep.String())
	}
	if ActivityClass(42).String() != "unknown" {
		t.Errorf("out of range class should render as unknown, got %q", ActivityClass(42).String())
	}
}

func TestNewActivityRecord(t *testing.T) {
	from := time.Date(2025, 3, 4, 14, 0, 0, 0, time.UTC)
	to := from.Add(90 * time.Minute)

	a := NewActivityRecord(from, from, to, ActivityTypeNap)

	if a.ID.String() == "" {
		t.Error("expected UUID to be set")
	}
	if !a.PeriodID.Equal(time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("PeriodID = %v, want 2025-03-04", a.PeriodID)
	}
	if a.Duration() != 90*time.Minute {
		t.Errorf("Duration = %v, want 1h30m", a.Duration())
	}
}

func TestIsValidActivityType(t *testing.T) {
	if !IsValidActivityType("nap") || !IsValidActivityType("activity") {
		t.Error("expected nap and activity to be valid")
	}
	if IsValidActivityType("sleep") {
		t.Error("sleep is not an activity record type")
	}
}

// ABOUTME: ActivityClass enum, the activity-code classifier, and ActivityRecord model.
// ABOUTME: ActivityRecords are persisted naps and exercise periods owned by a sleep cycle.
package models

import (
	"time"

	"github.com/google/uuid"
)

// ActivityClass is the coarse activity the strap reports for a sample.
type ActivityClass uint8

const (
	ActivityUnknown ActivityClass = iota
	ActivityInactive
	ActivityActive
	ActivitySleep
	ActivityAwake
)

// Activity code bands. Each band is half-open: [lower, next lower).
const (
	inactiveFloor int64 = 0
	activeFloor   int64 = 500_000_000
	sleepFloor    int64 = 1_000_000_000
	awakeFloor    int64 = 1_500_000_000
)

var activityClassNames = map[ActivityClass]string{
	ActivityUnknown:  "unknown",
	ActivityInactive: "inactive",
	ActivityActive:   "active",
	ActivitySleep:    "sleep",
	ActivityAwake:    "awake",
}

func (c ActivityClass) String() string {
	if name, ok := activityClassNames[c]; ok {
		return name
	}
	return activityClassNames[ActivityUnknown]
}

// Classify maps a raw activity code onto an ActivityClass.
//
// The wire value is an unsigned 32-bit integer; callers pass it zero-extended
// to int64, so every wire value lands in one of the four bands. Negative codes
// can only come from wider sources and classify as ActivityUnknown.
func Classify(code int64) ActivityClass {
	switch {
	case code < inactiveFloor:
		return ActivityUnknown
	case code < activeFloor:
		return ActivityInactive
	case code < sleepFloor:
		return ActivityActive
	case code < awakeFloor:
		return ActivitySleep
	default:
		return ActivityAwake
	}
}

// ActivityType is the kind of a persisted ActivityRecord.
type ActivityType string

const (
	ActivityTypeActivity ActivityType = "activity"
	ActivityTypeNap      ActivityType = "nap"
)

// IsValidActivityType checks if a string is a valid activity type.
func IsValidActivityType(s string) bool {
	return s == string(ActivityTypeActivity) || s == string(ActivityTypeNap)
}

// ActivityRecord is a nap or exercise period attributed to a sleep cycle.
type ActivityRecord struct {
	ID        uuid.UUID
	PeriodID  time.Time // date key of the owning sleep cycle
	From      time.Time
	To        time.Time
	Type      ActivityType
	CreatedAt time.Time
}

// NewActivityRecord creates an ActivityRecord with a generated UUID.
func NewActivityRecord(periodID time.Time, from, to time.Time, activityType ActivityType) *ActivityRecord {
	return &ActivityRecord{
		ID:        uuid.New(),
		PeriodID:  DateKey(periodID),
		From:      from.UTC(),
		To:        to.UTC(),
		Type:      activityType,
		CreatedAt: time.Now().UTC(),
	}
}

// Duration returns the length of the record.
func (a *ActivityRecord) Duration() time.Duration {
	return a.To.Sub(a.From)
}

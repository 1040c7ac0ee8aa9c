// ABOUTME: Pushes committed records from the history store into the KV mirror.
// ABOUTME: One badger write batch sets current keys and deletes keys the store no longer has.
package mirror

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/harperreed/pulse/internal/log"
	"github.com/harperreed/pulse/internal/models"
)

// Source is the subset of the history store a push reads from.
type Source interface {
	SleepCycles(ctx context.Context) ([]*models.SleepCycle, error)
	ListActivityRecords(ctx context.Context, activityType *models.ActivityType, limit int) ([]*models.ActivityRecord, error)
}

// PushSummary counts what a push wrote and removed.
type PushSummary struct {
	SleepCycles int
	Activities  int
	Removed     int
}

// Push makes m hold exactly the sleep cycles and activity records in src.
// Keys left behind by cycles that moved to another date, or records that
// no longer exist, are deleted in the same batch.
func Push(ctx context.Context, src Source, m *Mirror) (*PushSummary, error) {
	cycles, err := src.SleepCycles(ctx)
	if err != nil {
		return nil, fmt.Errorf("load sleep cycles: %w", err)
	}
	activities, err := src.ListActivityRecords(ctx, nil, 0)
	if err != nil {
		return nil, fmt.Errorf("load activities: %w", err)
	}

	stale, err := m.keys(SleepPrefix, ActivityPrefix)
	if err != nil {
		return nil, fmt.Errorf("list mirror keys: %w", err)
	}

	wb := m.db.NewWriteBatch()
	defer wb.Cancel()

	for _, c := range cycles {
		data, err := json.Marshal(toSleepEntry(c))
		if err != nil {
			return nil, fmt.Errorf("marshal sleep cycle: %w", err)
		}
		key := sleepKey(c.ID)
		if err := wb.Set([]byte(key), data); err != nil {
			return nil, fmt.Errorf("write sleep cycle: %w", err)
		}
		delete(stale, key)
	}
	for _, a := range activities {
		data, err := json.Marshal(toActivityEntry(a))
		if err != nil {
			return nil, fmt.Errorf("marshal activity: %w", err)
		}
		key := activityKey(a.ID)
		if err := wb.Set([]byte(key), data); err != nil {
			return nil, fmt.Errorf("write activity: %w", err)
		}
		delete(stale, key)
	}
	for key := range stale {
		if err := wb.Delete([]byte(key)); err != nil {
			return nil, fmt.Errorf("delete %s: %w", key, err)
		}
	}
	if err := wb.Flush(); err != nil {
		return nil, fmt.Errorf("flush mirror: %w", err)
	}

	log.Infow("mirror push", "sleep_cycles", len(cycles), "activities", len(activities), "removed", len(stale))
	return &PushSummary{SleepCycles: len(cycles), Activities: len(activities), Removed: len(stale)}, nil
}

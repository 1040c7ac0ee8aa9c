// ABOUTME: Local badger KV mirror of committed sleep cycles and activity records.
// ABOUTME: Records are stored as JSON under sleep:<date> and activity:<uuid> keys.
package mirror

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/google/uuid"

	"github.com/harperreed/pulse/internal/log"
	"github.com/harperreed/pulse/internal/models"
)

const (
	SleepPrefix    = "sleep:"
	ActivityPrefix = "activity:"
)

// ErrNotFound is returned when no key matches.
var ErrNotFound = errors.New("not found")

// Mirror is a badger-backed copy of committed records. It is safe for
// concurrent use; badger allows a single process per directory.
type Mirror struct {
	db *badger.DB
}

// Open opens or creates the mirror in dir.
func Open(dir string) (*Mirror, error) {
	db, err := badger.Open(badger.DefaultOptions(dir).WithLogger(badgerLogger{}))
	if err != nil {
		return nil, fmt.Errorf("open mirror: %w", err)
	}
	return &Mirror{db: db}, nil
}

// Close closes the underlying store.
func (m *Mirror) Close() error {
	return m.db.Close()
}

// GetSleepCycle returns the cycle stored for the given date.
func (m *Mirror) GetSleepCycle(date time.Time) (*models.SleepCycle, error) {
	var e sleepEntry
	err := m.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(sleepKey(date)))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &e)
		})
	})
	if err != nil {
		return nil, fmt.Errorf("get sleep cycle %s: %w", models.FormatDateKey(date), err)
	}
	return e.model()
}

// GetActivity returns the activity whose UUID starts with idOrPrefix.
func (m *Mirror) GetActivity(idOrPrefix string) (*models.ActivityRecord, error) {
	values, err := m.scan(ActivityPrefix+idOrPrefix, 2)
	if err != nil {
		return nil, fmt.Errorf("get activity: %w", err)
	}
	switch len(values) {
	case 0:
		return nil, fmt.Errorf("get activity %s: %w", idOrPrefix, ErrNotFound)
	case 1:
		return decodeActivity(values[0])
	default:
		return nil, fmt.Errorf("ambiguous prefix %s: matches multiple records", idOrPrefix)
	}
}

// SleepCycles returns every mirrored cycle in date order.
func (m *Mirror) SleepCycles() ([]*models.SleepCycle, error) {
	values, err := m.scan(SleepPrefix, 0)
	if err != nil {
		return nil, fmt.Errorf("list sleep cycles: %w", err)
	}

	out := make([]*models.SleepCycle, 0, len(values))
	for _, v := range values {
		var e sleepEntry
		if err := json.Unmarshal(v, &e); err != nil {
			return nil, fmt.Errorf("unmarshal sleep cycle: %w", err)
		}
		c, err := e.model()
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// Activities returns every mirrored activity record in key order.
func (m *Mirror) Activities() ([]*models.ActivityRecord, error) {
	values, err := m.scan(ActivityPrefix, 0)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}

	out := make([]*models.ActivityRecord, 0, len(values))
	for _, v := range values {
		a, err := decodeActivity(v)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// Status counts mirrored records.
type Status struct {
	SleepCycles int
	Activities  int
}

// Status counts the keys under each prefix.
func (m *Mirror) Status() (Status, error) {
	var s Status
	err := m.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			key := string(it.Item().Key())
			switch {
			case strings.HasPrefix(key, SleepPrefix):
				s.SleepCycles++
			case strings.HasPrefix(key, ActivityPrefix):
				s.Activities++
			}
		}
		return nil
	})
	if err != nil {
		return s, fmt.Errorf("mirror status: %w", err)
	}
	return s, nil
}

// keys returns every key under the given prefixes without loading values.
func (m *Mirror) keys(prefixes ...string) (map[string]struct{}, error) {
	out := make(map[string]struct{})
	err := m.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for _, prefix := range prefixes {
			p := []byte(prefix)
			for it.Seek(p); it.ValidForPrefix(p); it.Next() {
				out[string(it.Item().KeyCopy(nil))] = struct{}{}
			}
		}
		return nil
	})
	return out, err
}

// scan returns the values of keys starting with prefix in key order. A
// positive limit stops the scan early.
func (m *Mirror) scan(prefix string, limit int) ([][]byte, error) {
	var out [][]byte
	err := m.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		p := []byte(prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			v, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			out = append(out, v)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
		return nil
	})
	return out, err
}

func sleepKey(date time.Time) string {
	return SleepPrefix + models.FormatDateKey(date)
}

func activityKey(id uuid.UUID) string {
	return ActivityPrefix + id.String()
}

type sleepEntry struct {
	Date   string    `json:"date"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	MinBPM uint8     `json:"min_bpm"`
	MaxBPM uint8     `json:"max_bpm"`
	AvgBPM uint8     `json:"avg_bpm"`
	MinHRV uint16    `json:"min_hrv"`
	MaxHRV uint16    `json:"max_hrv"`
	AvgHRV uint16    `json:"avg_hrv"`
	Score  float64   `json:"score"`
}

func toSleepEntry(c *models.SleepCycle) sleepEntry {
	return sleepEntry{
		Date:   models.FormatDateKey(c.ID),
		Start:  c.Start.UTC(),
		End:    c.End.UTC(),
		MinBPM: c.MinBPM, MaxBPM: c.MaxBPM, AvgBPM: c.AvgBPM,
		MinHRV: c.MinHRV, MaxHRV: c.MaxHRV, AvgHRV: c.AvgHRV,
		Score: c.Score,
	}
}

func (e sleepEntry) model() (*models.SleepCycle, error) {
	id, err := models.ParseDateKey(e.Date)
	if err != nil {
		return nil, fmt.Errorf("parse sleep date: %w", err)
	}
	return &models.SleepCycle{
		ID:     id,
		Start:  e.Start,
		End:    e.End,
		MinBPM: e.MinBPM, MaxBPM: e.MaxBPM, AvgBPM: e.AvgBPM,
		MinHRV: e.MinHRV, MaxHRV: e.MaxHRV, AvgHRV: e.AvgHRV,
		Score: e.Score,
	}, nil
}

type activityEntry struct {
	ID        uuid.UUID `json:"id"`
	Period    string    `json:"period"`
	From      time.Time `json:"from"`
	To        time.Time `json:"to"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
}

func toActivityEntry(a *models.ActivityRecord) activityEntry {
	return activityEntry{
		ID:        a.ID,
		Period:    models.FormatDateKey(a.PeriodID),
		From:      a.From.UTC(),
		To:        a.To.UTC(),
		Type:      string(a.Type),
		CreatedAt: a.CreatedAt.UTC(),
	}
}

func decodeActivity(data []byte) (*models.ActivityRecord, error) {
	var e activityEntry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("unmarshal activity: %w", err)
	}
	period, err := models.ParseDateKey(e.Period)
	if err != nil {
		return nil, fmt.Errorf("parse activity period: %w", err)
	}
	return &models.ActivityRecord{
		ID:        e.ID,
		PeriodID:  period,
		From:      e.From,
		To:        e.To,
		Type:      models.ActivityType(e.Type),
		CreatedAt: e.CreatedAt,
	}, nil
}

// badgerLogger routes badger's own logging through the zap wrapper.
type badgerLogger struct{}

func (badgerLogger) Errorf(format string, args ...interface{}) {
	log.Errorw("badger", "msg", strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (badgerLogger) Warningf(format string, args ...interface{}) {
	log.Warnw("badger", "msg", strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (badgerLogger) Infof(format string, args ...interface{}) {
	log.Debugw("badger", "msg", strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (badgerLogger) Debugf(format string, args ...interface{}) {
	log.Debugw("badger", "msg", strings.TrimSpace(fmt.Sprintf(format, args...)))
}

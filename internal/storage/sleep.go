// ABOUTME: SleepCycle persistence for SQLite storage.
// ABOUTME: One row per date key; writes are upserts so reruns converge.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/harperreed/pulse/internal/models"
)

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

const sleepColumns = `id, started_at, ended_at, min_bpm, max_bpm, avg_bpm, min_hrv, max_hrv, avg_hrv, score`

// CreateSleepCycle stores c, replacing any cycle with the same date key.
func (d *DB) CreateSleepCycle(ctx context.Context, c *models.SleepCycle) error {
	if err := upsertSleepCycle(ctx, d.db, c); err != nil {
		return fmt.Errorf("create sleep cycle: %w", err)
	}
	return nil
}

// ReplaceSleepCycle stores c and removes the cycle keyed oldID in one
// transaction. It is used when extending a session moves its end date.
func (d *DB) ReplaceSleepCycle(ctx context.Context, oldID time.Time, c *models.SleepCycle) error {
	err := d.withTx(ctx, func(tx *sql.Tx) error {
		if !models.SameDate(oldID, c.ID) {
			if _, err := tx.ExecContext(ctx, `DELETE FROM sleep_cycles WHERE id = ?`, models.FormatDateKey(oldID)); err != nil {
				return err
			}
		}
		return upsertSleepCycle(ctx, tx, c)
	})
	if err != nil {
		return fmt.Errorf("replace sleep cycle: %w", err)
	}
	return nil
}

// DemoteSleepCycle records nap and stores c in one transaction. It is used
// when a longer same-day sleep shows the committed cycle was a nap; c usually
// shares that cycle's date key and overwrites it.
func (d *DB) DemoteSleepCycle(ctx context.Context, nap *models.ActivityRecord, c *models.SleepCycle) error {
	err := d.withTx(ctx, func(tx *sql.Tx) error {
		if err := insertActivity(ctx, tx, nap); err != nil {
			return err
		}
		return upsertSleepCycle(ctx, tx, c)
	})
	if err != nil {
		return fmt.Errorf("demote sleep cycle: %w", err)
	}
	return nil
}

func upsertSleepCycle(ctx context.Context, db execer, c *models.SleepCycle) error {
	query := `
		INSERT INTO sleep_cycles (` + sleepColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			started_at = excluded.started_at,
			ended_at = excluded.ended_at,
			min_bpm = excluded.min_bpm,
			max_bpm = excluded.max_bpm,
			avg_bpm = excluded.avg_bpm,
			min_hrv = excluded.min_hrv,
			max_hrv = excluded.max_hrv,
			avg_hrv = excluded.avg_hrv,
			score = excluded.score
	`
	_, err := db.ExecContext(ctx, query,
		models.FormatDateKey(c.ID),
		c.Start.UTC().Format(time.RFC3339),
		c.End.UTC().Format(time.RFC3339),
		c.MinBPM, c.MaxBPM, c.AvgBPM,
		c.MinHRV, c.MaxHRV, c.AvgHRV,
		c.Score,
	)
	return err
}

// GetSleepCycle retrieves the cycle for a date key.
func (d *DB) GetSleepCycle(ctx context.Context, id time.Time) (*models.SleepCycle, error) {
	query := `SELECT ` + sleepColumns + ` FROM sleep_cycles WHERE id = ?`
	c, err := scanSleepCycle(d.db.QueryRowContext(ctx, query, models.FormatDateKey(id)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("not found: %s", models.FormatDateKey(id))
	}
	return c, err
}

// LatestSleepCycle returns the cycle that ended last, or nil if there is none.
func (d *DB) LatestSleepCycle(ctx context.Context) (*models.SleepCycle, error) {
	query := `SELECT ` + sleepColumns + ` FROM sleep_cycles ORDER BY ended_at DESC LIMIT 1`
	c, err := scanSleepCycle(d.db.QueryRowContext(ctx, query))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return c, err
}

// SleepCycles returns every cycle ordered by start time.
func (d *DB) SleepCycles(ctx context.Context) ([]*models.SleepCycle, error) {
	query := `SELECT ` + sleepColumns + ` FROM sleep_cycles ORDER BY started_at ASC`
	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list sleep cycles: %w", err)
	}
	defer rows.Close()

	var cycles []*models.SleepCycle
	for rows.Next() {
		c, err := scanSleepCycle(rows)
		if err != nil {
			return nil, err
		}
		cycles = append(cycles, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sleep cycles: %w", err)
	}
	return cycles, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanSleepCycle scans a row into a SleepCycle. A missing score is computed
// from the cycle bounds.
func scanSleepCycle(row rowScanner) (*models.SleepCycle, error) {
	var c models.SleepCycle
	var id, startedAt, endedAt string
	var score sql.NullFloat64

	err := row.Scan(&id, &startedAt, &endedAt,
		&c.MinBPM, &c.MaxBPM, &c.AvgBPM,
		&c.MinHRV, &c.MaxHRV, &c.AvgHRV,
		&score)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan sleep cycle: %w", err)
	}

	if c.ID, err = models.ParseDateKey(id); err != nil {
		return nil, fmt.Errorf("parse sleep cycle id %q: %w", id, err)
	}
	if c.Start, err = parseTime(startedAt); err != nil {
		return nil, fmt.Errorf("parse sleep cycle %s start: %w", id, err)
	}
	if c.End, err = parseTime(endedAt); err != nil {
		return nil, fmt.Errorf("parse sleep cycle %s end: %w", id, err)
	}

	if score.Valid {
		c.Score = score.Float64
	} else {
		c.Score = models.SleepScore(c.Start, c.End)
	}

	return &c, nil
}

// parseTime parses a stored RFC 3339 timestamp into UTC.
func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// ABOUTME: Sample persistence and ordered range queries for SQLite storage.
// ABOUTME: RR intervals are stored as a msgpack-encoded blob per sample.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/harperreed/pulse/internal/models"
)

// CreateSample stores a sample. Samples are immutable: a second sample with
// the same timestamp is ignored.
func (d *DB) CreateSample(ctx context.Context, s *models.Sample) error {
	rr, err := encodeRR(s.RR)
	if err != nil {
		return fmt.Errorf("create sample: %w", err)
	}

	query := `
		INSERT INTO samples (unix, bpm, rr, activity, stress)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(unix) DO NOTHING
	`
	var stress sql.NullFloat64
	if s.Stress != nil {
		stress = sql.NullFloat64{Float64: *s.Stress, Valid: true}
	}
	_, err = d.db.ExecContext(ctx, query, s.Time.Unix(), s.BPM, rr, s.Activity, stress)
	if err != nil {
		return fmt.Errorf("create sample: %w", err)
	}
	return nil
}

// SearchSamples returns samples matching q in ascending time order.
func (d *DB) SearchSamples(ctx context.Context, q models.SampleQuery) ([]*models.Sample, error) {
	lower, upper := ">=", "<="
	if q.Exclusive {
		lower, upper = ">", "<"
	}

	var where []string
	var args []interface{}
	if q.From != nil {
		where = append(where, "unix "+lower+" ?")
		args = append(args, q.From.Unix())
	}
	if q.To != nil {
		where = append(where, "unix "+upper+" ?")
		args = append(args, q.To.Unix())
	}

	query := `SELECT unix, bpm, rr, activity, stress FROM samples`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY unix ASC"
	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search samples: %w", err)
	}
	defer rows.Close()

	var samples []*models.Sample
	for rows.Next() {
		var unix, activity int64
		var bpm uint8
		var rr []byte
		var stress sql.NullFloat64
		if err := rows.Scan(&unix, &bpm, &rr, &activity, &stress); err != nil {
			return nil, fmt.Errorf("scan sample: %w", err)
		}
		intervals, err := decodeRR(rr)
		if err != nil {
			return nil, fmt.Errorf("decode rr at %d: %w", unix, err)
		}
		s := models.NewSample(unix, bpm, intervals, activity)
		if stress.Valid {
			s.WithStress(stress.Float64)
		}
		samples = append(samples, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate samples: %w", err)
	}
	return samples, nil
}

// CountSamples returns the number of stored samples.
func (d *DB) CountSamples(ctx context.Context) (int, error) {
	var n int
	if err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM samples`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count samples: %w", err)
	}
	return n, nil
}

// ErrNoSample is returned when a stress score names a time with no sample.
var ErrNoSample = errors.New("no sample")

// UpdateSampleStress attaches a stress score to the sample at score.Time.
func (d *DB) UpdateSampleStress(ctx context.Context, score models.StressScore) error {
	res, err := d.db.ExecContext(ctx, `UPDATE samples SET stress = ? WHERE unix = ?`, score.Score, score.Time.Unix())
	if err != nil {
		return fmt.Errorf("update sample stress: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update sample stress: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("update sample stress: %w at %s", ErrNoSample, score.Time.UTC().Format(time.RFC3339))
	}
	return nil
}

// LatestStressTime returns the time of the newest scored sample, or nil when
// nothing has been scored yet.
func (d *DB) LatestStressTime(ctx context.Context) (*time.Time, error) {
	var unix sql.NullInt64
	err := d.db.QueryRowContext(ctx, `SELECT MAX(unix) FROM samples WHERE stress IS NOT NULL`).Scan(&unix)
	if err != nil {
		return nil, fmt.Errorf("latest stress time: %w", err)
	}
	if !unix.Valid {
		return nil, nil
	}
	t := time.Unix(unix.Int64, 0).UTC()
	return &t, nil
}

func encodeRR(rr []uint16) ([]byte, error) {
	if len(rr) == 0 {
		return nil, nil
	}
	return msgpack.Marshal(rr)
}

func decodeRR(b []byte) ([]uint16, error) {
	if len(b) == 0 {
		return nil, nil
	}
	var rr []uint16
	if err := msgpack.Unmarshal(b, &rr); err != nil {
		return nil, err
	}
	return rr, nil
}

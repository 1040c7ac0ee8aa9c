// ABOUTME: ActivityRecord persistence for SQLite storage.
// ABOUTME: Records are unique by (start, end, type) so repeated detection is a no-op.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/harperreed/pulse/internal/models"
)

const activityColumns = `id, period_id, started_at, ended_at, activity_type, created_at`

// CreateActivityRecord stores a nap or exercise record. A record with the same
// bounds and type already present is left untouched.
func (d *DB) CreateActivityRecord(ctx context.Context, a *models.ActivityRecord) error {
	if err := insertActivity(ctx, d.db, a); err != nil {
		return fmt.Errorf("create activity: %w", err)
	}
	return nil
}

func insertActivity(ctx context.Context, db execer, a *models.ActivityRecord) error {
	query := `
		INSERT INTO activities (` + activityColumns + `)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(started_at, ended_at, activity_type) DO NOTHING
	`
	_, err := db.ExecContext(ctx, query,
		a.ID.String(),
		models.FormatDateKey(a.PeriodID),
		a.From.UTC().Format(time.RFC3339),
		a.To.UTC().Format(time.RFC3339),
		string(a.Type),
		a.CreatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

// GetActivityRecord retrieves a record by ID or ID prefix.
func (d *DB) GetActivityRecord(ctx context.Context, idOrPrefix string) (*models.ActivityRecord, error) {
	id, err := d.resolveActivityID(ctx, idOrPrefix)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + activityColumns + ` FROM activities WHERE id = ?`
	a, err := scanActivity(d.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("not found: %s", idOrPrefix)
	}
	return a, err
}

// ListActivityRecords retrieves records with optional filtering by type,
// ordered by start time. limit <= 0 returns everything.
func (d *DB) ListActivityRecords(ctx context.Context, activityType *models.ActivityType, limit int) ([]*models.ActivityRecord, error) {
	query := `SELECT ` + activityColumns + ` FROM activities`
	var args []interface{}

	if activityType != nil {
		query += ` WHERE activity_type = ?`
		args = append(args, string(*activityType))
	}
	query += ` ORDER BY started_at ASC`

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()

	var out []*models.ActivityRecord
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activities: %w", err)
	}
	return out, nil
}

// resolveActivityID finds the full ID from a prefix.
func (d *DB) resolveActivityID(ctx context.Context, idOrPrefix string) (string, error) {
	if len(idOrPrefix) == 36 && strings.Count(idOrPrefix, "-") == 4 {
		return idOrPrefix, nil
	}

	query := `SELECT id FROM activities WHERE id LIKE ? || '%'`
	rows, err := d.db.QueryContext(ctx, query, idOrPrefix)
	if err != nil {
		return "", fmt.Errorf("resolve activity ID: %w", err)
	}
	defer rows.Close()

	var matches []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", fmt.Errorf("scan activity ID: %w", err)
		}
		matches = append(matches, id)
	}

	if len(matches) == 0 {
		return "", fmt.Errorf("not found: %s", idOrPrefix)
	}
	if len(matches) > 1 {
		return "", fmt.Errorf("ambiguous prefix %s: matches multiple records", idOrPrefix)
	}

	return matches[0], nil
}

func scanActivity(row rowScanner) (*models.ActivityRecord, error) {
	var a models.ActivityRecord
	var idStr, periodID, startedAt, endedAt, activityType, createdAt string

	err := row.Scan(&idStr, &periodID, &startedAt, &endedAt, &activityType, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan activity: %w", err)
	}

	if a.ID, err = uuid.Parse(idStr); err != nil {
		return nil, fmt.Errorf("parse activity id %q: %w", idStr, err)
	}
	if a.PeriodID, err = models.ParseDateKey(periodID); err != nil {
		return nil, fmt.Errorf("parse activity %s period: %w", idStr, err)
	}
	if a.From, err = parseTime(startedAt); err != nil {
		return nil, fmt.Errorf("parse activity %s start: %w", idStr, err)
	}
	if a.To, err = parseTime(endedAt); err != nil {
		return nil, fmt.Errorf("parse activity %s end: %w", idStr, err)
	}
	if a.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse activity %s created_at: %w", idStr, err)
	}
	a.Type = models.ActivityType(activityType)

	return &a, nil
}

// ABOUTME: SQLite schema definition and initialization.
// ABOUTME: Defines tables for samples, sleep_cycles, activities, and the packet log.
package storage

// initSchema creates or updates the database schema.
func (d *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS samples (
		unix INTEGER PRIMARY KEY,
		bpm INTEGER NOT NULL,
		rr BLOB,
		activity INTEGER NOT NULL,
		stress REAL
	);

	CREATE TABLE IF NOT EXISTS sleep_cycles (
		id TEXT PRIMARY KEY,
		started_at TEXT NOT NULL,
		ended_at TEXT NOT NULL,
		min_bpm INTEGER NOT NULL,
		max_bpm INTEGER NOT NULL,
		avg_bpm INTEGER NOT NULL,
		min_hrv INTEGER NOT NULL,
		max_hrv INTEGER NOT NULL,
		avg_hrv INTEGER NOT NULL,
		score REAL
	);

	CREATE TABLE IF NOT EXISTS activities (
		id TEXT PRIMARY KEY,
		period_id TEXT NOT NULL,
		started_at TEXT NOT NULL,
		ended_at TEXT NOT NULL,
		activity_type TEXT NOT NULL,
		created_at TEXT NOT NULL,
		UNIQUE (started_at, ended_at, activity_type)
	);

	CREATE TABLE IF NOT EXISTS packets (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		characteristic TEXT NOT NULL,
		packet_type INTEGER NOT NULL,
		packet_seq INTEGER NOT NULL,
		cmd INTEGER NOT NULL,
		payload BLOB NOT NULL,
		received_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_samples_stress ON samples(unix) WHERE stress IS NOT NULL;
	CREATE INDEX IF NOT EXISTS idx_sleep_cycles_ended ON sleep_cycles(ended_at DESC);
	CREATE INDEX IF NOT EXISTS idx_activities_started ON activities(started_at);
	CREATE INDEX IF NOT EXISTS idx_activities_type ON activities(activity_type, started_at);
	`

	_, err := d.db.Exec(schema)
	return err
}

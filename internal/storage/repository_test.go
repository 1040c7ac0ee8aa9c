// ABOUTME: Tests for Repository interface implementations.
// ABOUTME: Verifies samples, sleep cycles, activities, and the packet log using SQLite.
package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/harperreed/pulse/internal/models"
)

var _ Repository = (*DB)(nil)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "pulse-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(tmpDir) })

	dbPath := filepath.Join(tmpDir, "pulse.db")
	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}

func TestCreateAndSearchSamples(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	base := int64(1_700_000_000)
	for i := int64(0); i < 10; i++ {
		s := models.NewSample(base+i, 60+uint8(i), []uint16{1000, 1010}, 1_200_000_000)
		if err := db.CreateSample(ctx, s); err != nil {
			t.Fatalf("CreateSample failed: %v", err)
		}
	}

	all, err := db.SearchSamples(ctx, models.SampleQuery{})
	if err != nil {
		t.Fatalf("SearchSamples failed: %v", err)
	}
	if len(all) != 10 {
		t.Fatalf("got %d samples, want 10", len(all))
	}
	for i := 1; i < len(all); i++ {
		if !all[i-1].Time.Before(all[i].Time) {
			t.Fatal("samples not in ascending order")
		}
	}
	if len(all[0].RR) != 2 || all[0].RR[1] != 1010 {
		t.Errorf("RR round trip = %v", all[0].RR)
	}

	from := time.Unix(base+2, 0)
	to := time.Unix(base+5, 0)

	inclusive, _ := db.SearchSamples(ctx, models.Between(from, to))
	if len(inclusive) != 4 {
		t.Errorf("inclusive range = %d samples, want 4", len(inclusive))
	}

	exclusive, _ := db.SearchSamples(ctx, models.SampleQuery{From: &from, To: &to, Exclusive: true})
	if len(exclusive) != 2 {
		t.Errorf("exclusive range = %d samples, want 2", len(exclusive))
	}

	limited, _ := db.SearchSamples(ctx, models.Since(&from, 3))
	if len(limited) != 3 || limited[0].Time.Unix() != base+2 {
		t.Errorf("limited search = %d samples starting %v", len(limited), limited[0].Time)
	}
}

func TestCreateSampleIsImmutable(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	if err := db.CreateSample(ctx, models.NewSample(100, 60, nil, 0)); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	if err := db.CreateSample(ctx, models.NewSample(100, 90, nil, 0)); err != nil {
		t.Fatalf("duplicate CreateSample failed: %v", err)
	}

	got, _ := db.SearchSamples(ctx, models.SampleQuery{})
	if len(got) != 1 || got[0].BPM != 60 {
		t.Errorf("expected the first sample to win, got %+v", got)
	}
	if got[0].RR != nil {
		t.Errorf("empty RR should read back as nil, got %v", got[0].RR)
	}
}

func TestStressMarker(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	marker, err := db.LatestStressTime(ctx)
	if err != nil {
		t.Fatalf("LatestStressTime failed: %v", err)
	}
	if marker != nil {
		t.Fatalf("expected no marker, got %v", marker)
	}

	for i := int64(0); i < 5; i++ {
		_ = db.CreateSample(ctx, models.NewSample(1000+i, 60, nil, 0))
	}
	score := models.StressScore{Time: time.Unix(1003, 0), Score: 4.2}
	if err := db.UpdateSampleStress(ctx, score); err != nil {
		t.Fatalf("UpdateSampleStress failed: %v", err)
	}

	// A score between samples updates nothing.
	err = db.UpdateSampleStress(ctx, models.StressScore{Time: time.Unix(2000, 0), Score: 1})
	if !errors.Is(err, ErrNoSample) {
		t.Errorf("UpdateSampleStress without a sample = %v, want ErrNoSample", err)
	}

	marker, _ = db.LatestStressTime(ctx)
	if marker == nil || marker.Unix() != 1003 {
		t.Fatalf("marker = %v, want 1003", marker)
	}

	got, _ := db.SearchSamples(ctx, models.Between(time.Unix(1003, 0), time.Unix(1003, 0)))
	if got[0].Stress == nil || *got[0].Stress != 4.2 {
		t.Errorf("stress = %v, want 4.2", got[0].Stress)
	}
}

func testCycle(date string, start, end time.Time) *models.SleepCycle {
	id, _ := models.ParseDateKey(date)
	return &models.SleepCycle{
		ID: id, Start: start, End: end,
		MinBPM: 45, MaxBPM: 70, AvgBPM: 52,
		MinHRV: 30, MaxHRV: 90, AvgHRV: 55,
		Score: models.SleepScore(start, end),
	}
}

func TestSleepCycles(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	latest, err := db.LatestSleepCycle(ctx)
	if err != nil || latest != nil {
		t.Fatalf("LatestSleepCycle on empty db = %v, %v", latest, err)
	}

	n1 := time.Date(2025, 1, 1, 23, 0, 0, 0, time.UTC)
	n2 := time.Date(2025, 1, 2, 23, 30, 0, 0, time.UTC)
	c1 := testCycle("2025-01-02", n1, n1.Add(8*time.Hour))
	c2 := testCycle("2025-01-03", n2, n2.Add(6*time.Hour))

	for _, c := range []*models.SleepCycle{c2, c1} {
		if err := db.CreateSleepCycle(ctx, c); err != nil {
			t.Fatalf("CreateSleepCycle failed: %v", err)
		}
	}

	latest, _ = db.LatestSleepCycle(ctx)
	if latest == nil || models.FormatDateKey(latest.ID) != "2025-01-03" {
		t.Fatalf("latest = %+v, want 2025-01-03", latest)
	}
	if latest.MinHRV != 30 || latest.AvgBPM != 52 {
		t.Errorf("aggregates did not round trip: %+v", latest)
	}

	all, _ := db.SleepCycles(ctx)
	if len(all) != 2 || !all[0].Start.Equal(n1) {
		t.Fatalf("SleepCycles = %d, first %v", len(all), all[0].Start)
	}

	// Upsert by date key.
	c1b := testCycle("2025-01-02", n1.Add(time.Hour), n1.Add(9*time.Hour))
	_ = db.CreateSleepCycle(ctx, c1b)
	all, _ = db.SleepCycles(ctx)
	if len(all) != 2 {
		t.Fatalf("upsert created a new row: %d cycles", len(all))
	}
	got, err := db.GetSleepCycle(ctx, c1.ID)
	if err != nil || !got.Start.Equal(c1b.Start) {
		t.Errorf("GetSleepCycle = %+v, %v", got, err)
	}
}

func TestReplaceSleepCycleMovesDate(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	start := time.Date(2025, 1, 1, 21, 0, 0, 0, time.UTC)
	old := testCycle("2025-01-01", start, start.Add(2*time.Hour+50*time.Minute))
	_ = db.CreateSleepCycle(ctx, old)

	extended := testCycle("2025-01-02", start, start.Add(10*time.Hour))
	if err := db.ReplaceSleepCycle(ctx, old.ID, extended); err != nil {
		t.Fatalf("ReplaceSleepCycle failed: %v", err)
	}

	all, _ := db.SleepCycles(ctx)
	if len(all) != 1 || models.FormatDateKey(all[0].ID) != "2025-01-02" {
		t.Fatalf("expected only the 2025-01-02 cycle, got %d cycles", len(all))
	}
	if _, err := db.GetSleepCycle(ctx, old.ID); err == nil {
		t.Error("expected superseded cycle to be gone")
	}
}

func TestDemoteSleepCycle(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	morning := time.Date(2025, 1, 4, 9, 0, 0, 0, time.UTC)
	afternoon := time.Date(2025, 1, 4, 14, 0, 0, 0, time.UTC)
	a := testCycle("2025-01-04", morning, morning.Add(30*time.Minute))
	_ = db.CreateSleepCycle(ctx, a)

	nap := models.NewActivityRecord(a.ID.AddDate(0, 0, -1), a.Start, a.End, models.ActivityTypeNap)
	b := testCycle("2025-01-04", afternoon, afternoon.Add(2*time.Hour))
	if err := db.DemoteSleepCycle(ctx, nap, b); err != nil {
		t.Fatalf("DemoteSleepCycle failed: %v", err)
	}

	all, _ := db.SleepCycles(ctx)
	if len(all) != 1 || !all[0].Start.Equal(afternoon) {
		t.Fatalf("expected only the afternoon cycle, got %+v", all)
	}
	naps, _ := db.ListActivityRecords(ctx, nil, 0)
	if len(naps) != 1 || !naps[0].From.Equal(morning) {
		t.Fatalf("expected the morning nap, got %+v", naps)
	}
}

func TestDemoteSleepCycleRollsBack(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	morning := time.Date(2025, 1, 4, 9, 0, 0, 0, time.UTC)
	a := testCycle("2025-01-04", morning, morning.Add(30*time.Minute))
	nap := models.NewActivityRecord(a.ID.AddDate(0, 0, -1), a.Start, a.End, models.ActivityTypeNap)

	// Make the cycle write fail after the nap insert.
	if _, err := db.db.Exec(`DROP TABLE sleep_cycles`); err != nil {
		t.Fatalf("drop table: %v", err)
	}
	if err := db.DemoteSleepCycle(ctx, nap, a); err == nil {
		t.Fatal("expected DemoteSleepCycle to fail")
	}

	naps, err := db.ListActivityRecords(ctx, nil, 0)
	if err != nil {
		t.Fatalf("ListActivityRecords failed: %v", err)
	}
	if len(naps) != 0 {
		t.Errorf("nap survived a failed demotion: %+v", naps[0])
	}
}

func TestCorruptRowsAreReported(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	_, err := db.db.Exec(`INSERT INTO sleep_cycles (`+sleepColumns+`)
		VALUES ('2025-01-02', 'yesterday', '2025-01-02T07:00:00Z', 0, 0, 0, 0, 0, 0, 0)`)
	if err != nil {
		t.Fatalf("insert corrupt cycle: %v", err)
	}
	if _, err := db.SleepCycles(ctx); err == nil {
		t.Error("expected an error for an unparseable start time")
	}

	_, err = db.db.Exec(`INSERT INTO activities (`+activityColumns+`)
		VALUES ('not-a-uuid', '2025-01-02', '2025-01-02T10:00:00Z', '2025-01-02T11:00:00Z', 'nap', '2025-01-02T12:00:00Z')`)
	if err != nil {
		t.Fatalf("insert corrupt activity: %v", err)
	}
	if _, err := db.ListActivityRecords(ctx, nil, 0); err == nil {
		t.Error("expected an error for an unparseable activity id")
	}
}

func TestActivityRecords(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	period, _ := models.ParseDateKey("2025-01-02")
	from := time.Date(2025, 1, 2, 14, 0, 0, 0, time.UTC)

	nap := models.NewActivityRecord(period, from, from.Add(time.Hour), models.ActivityTypeNap)
	run := models.NewActivityRecord(period, from.Add(-3*time.Hour), from.Add(-2*time.Hour), models.ActivityTypeActivity)
	for _, a := range []*models.ActivityRecord{nap, run} {
		if err := db.CreateActivityRecord(ctx, a); err != nil {
			t.Fatalf("CreateActivityRecord failed: %v", err)
		}
	}

	// Same bounds and type under a new ID is ignored.
	dup := models.NewActivityRecord(period, from, from.Add(time.Hour), models.ActivityTypeNap)
	if err := db.CreateActivityRecord(ctx, dup); err != nil {
		t.Fatalf("duplicate CreateActivityRecord failed: %v", err)
	}

	all, err := db.ListActivityRecords(ctx, nil, 0)
	if err != nil {
		t.Fatalf("ListActivityRecords failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("got %d activities, want 2", len(all))
	}
	if all[0].ID != run.ID {
		t.Error("activities should be ordered by start")
	}

	naps := models.ActivityTypeNap
	onlyNaps, _ := db.ListActivityRecords(ctx, &naps, 0)
	if len(onlyNaps) != 1 || onlyNaps[0].ID != nap.ID {
		t.Errorf("nap filter returned %d records", len(onlyNaps))
	}

	got, err := db.GetActivityRecord(ctx, nap.ID.String()[:8])
	if err != nil {
		t.Fatalf("GetActivityRecord by prefix failed: %v", err)
	}
	if !got.PeriodID.Equal(period) || got.Duration() != time.Hour {
		t.Errorf("GetActivityRecord = %+v", got)
	}

	if _, err := db.GetActivityRecord(ctx, "ffffffff"); err == nil {
		t.Error("expected not found error")
	}
}

func TestPacketLog(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	var last *models.PacketRecord
	for i := 0; i < 5; i++ {
		p := models.NewPacketRecord("data", 47, uint8(i), 5, []byte{byte(i), 0xff})
		if err := db.CreatePacket(ctx, p); err != nil {
			t.Fatalf("CreatePacket failed: %v", err)
		}
		if last != nil && p.Seq <= last.Seq {
			t.Fatalf("sequence did not increase: %d after %d", p.Seq, last.Seq)
		}
		last = p
	}

	// Re-logging a known packet is a no-op.
	again := *last
	again.Seq = 0
	if err := db.CreatePacket(ctx, &again); err != nil {
		t.Fatalf("duplicate CreatePacket failed: %v", err)
	}
	if again.Seq != 0 {
		t.Errorf("duplicate packet got seq %d", again.Seq)
	}

	page, err := db.Packets(ctx, 0, 3)
	if err != nil {
		t.Fatalf("Packets failed: %v", err)
	}
	if len(page) != 3 {
		t.Fatalf("page size = %d, want 3", len(page))
	}
	rest, _ := db.Packets(ctx, page[2].Seq, 0)
	if len(rest) != 2 {
		t.Fatalf("rest = %d packets, want 2", len(rest))
	}
	if rest[1].ID != last.ID || rest[1].Payload[0] != 4 || rest[1].Type != 47 {
		t.Errorf("packet did not round trip: %+v", rest[1])
	}
}

// ABOUTME: Repository interface for the history store.
// ABOUTME: Defines the contract for samples, sleep cycles, activities, and the packet log.
package storage

import (
	"context"
	"time"

	"github.com/harperreed/pulse/internal/models"
)

// Repository defines the storage interface for strap history.
// This interface allows swapping implementations (e.g., for testing).
type Repository interface {
	// Sample operations
	CreateSample(ctx context.Context, s *models.Sample) error
	SearchSamples(ctx context.Context, q models.SampleQuery) ([]*models.Sample, error)
	CountSamples(ctx context.Context) (int, error)
	UpdateSampleStress(ctx context.Context, score models.StressScore) error
	LatestStressTime(ctx context.Context) (*time.Time, error)

	// Sleep cycle operations
	CreateSleepCycle(ctx context.Context, c *models.SleepCycle) error
	ReplaceSleepCycle(ctx context.Context, oldID time.Time, c *models.SleepCycle) error
	DemoteSleepCycle(ctx context.Context, nap *models.ActivityRecord, c *models.SleepCycle) error
	GetSleepCycle(ctx context.Context, id time.Time) (*models.SleepCycle, error)
	LatestSleepCycle(ctx context.Context) (*models.SleepCycle, error)
	SleepCycles(ctx context.Context) ([]*models.SleepCycle, error)

	// Activity operations
	CreateActivityRecord(ctx context.Context, a *models.ActivityRecord) error
	GetActivityRecord(ctx context.Context, idOrPrefix string) (*models.ActivityRecord, error)
	ListActivityRecords(ctx context.Context, activityType *models.ActivityType, limit int) ([]*models.ActivityRecord, error)

	// Packet log
	CreatePacket(ctx context.Context, p *models.PacketRecord) error
	Packets(ctx context.Context, afterSeq int64, limit int) ([]*models.PacketRecord, error)

	// Export
	GetAllData(ctx context.Context) (*ExportData, error)

	// Lifecycle
	Close() error
}

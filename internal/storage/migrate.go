// ABOUTME: Merges the raw history of one store into another.
// ABOUTME: Copies the packet log and samples; derived records are recomputed afterwards.

package storage

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/harperreed/pulse/internal/models"
)

const mergePageSize = 10000

// MergeSummary holds counts of copied entities.
type MergeSummary struct {
	Packets int
	Samples int
}

// MergeData copies the packet log and every sample from src into dst.
// Packets already present in dst (same ID) and samples with an existing
// timestamp are skipped by the store, so merging twice is harmless.
// Sleep cycles and activities are not copied; rerun detection on dst instead.
func MergeData(ctx context.Context, src, dst Repository) (*MergeSummary, error) {
	summary := &MergeSummary{}

	var after int64
	for {
		packets, err := src.Packets(ctx, after, mergePageSize)
		if err != nil {
			return nil, fmt.Errorf("list source packets: %w", err)
		}
		if len(packets) == 0 {
			break
		}
		for _, p := range packets {
			after = p.Seq
			p.Seq = 0
			if err := dst.CreatePacket(ctx, p); err != nil {
				return nil, fmt.Errorf("create packet %s: %w", p.ID, err)
			}
			if p.Seq != 0 {
				summary.Packets++
			}
		}
	}

	var cursor *time.Time
	for {
		samples, err := src.SearchSamples(ctx, models.SampleQuery{From: cursor, Limit: mergePageSize, Exclusive: true})
		if err != nil {
			return nil, fmt.Errorf("search source samples: %w", err)
		}
		if len(samples) == 0 {
			break
		}
		for _, s := range samples {
			if err := dst.CreateSample(ctx, s); err != nil {
				return nil, fmt.Errorf("create sample %d: %w", s.Time.Unix(), err)
			}
			summary.Samples++
		}
		last := samples[len(samples)-1].Time
		cursor = &last
	}

	return summary, nil
}

// IsDirNonEmpty checks whether a directory exists and contains any files or subdirectories.
// Returns false if the directory does not exist or is empty.
func IsDirNonEmpty(path string) (bool, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("read directory %q: %w", path, err)
	}
	return len(entries) > 0, nil
}

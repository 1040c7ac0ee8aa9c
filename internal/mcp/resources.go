// ABOUTME: MCP resource implementations for pulse.
// ABOUTME: Provides pulse://sleep/recent, pulse://activities/recent, and pulse://summary resources.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/pulse/internal/models"
	"github.com/harperreed/pulse/internal/stats"
)

const (
	sleepRecentURI      = "pulse://sleep/recent"
	activitiesRecentURI = "pulse://activities/recent"
	summaryURI          = "pulse://summary"
)

func (s *Server) registerResources() {
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         sleepRecentURI,
		Name:        "Recent Sleep",
		Description: "Last 7 sleep cycles, newest first",
		MIMEType:    "application/json",
	}, s.handleSleepRecentResource)

	s.mcpServer.AddResource(&mcp.Resource{
		URI:         activitiesRecentURI,
		Name:        "Recent Naps and Exercise",
		Description: "Last 20 activity records, newest first",
		MIMEType:    "application/json",
	}, s.handleActivitiesRecentResource)

	s.mcpServer.AddResource(&mcp.Resource{
		URI:         summaryURI,
		Name:        "Pulse Summary Dashboard",
		Description: "Latest sleep, weekly consistency, exercise totals, and store counts",
		MIMEType:    "application/json",
	}, s.handleSummaryResource)
}

// Resource handlers

func (s *Server) handleSleepRecentResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	cycles, err := s.repo.SleepCycles(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sleep cycles: %w", err)
	}

	views := []sleepView{}
	for _, c := range newest(cycles, stats.RecentCount) {
		views = append(views, toSleepView(c))
	}
	return jsonResource(sleepRecentURI, map[string]interface{}{
		"sleep_cycles": views,
		"count":        len(views),
	})
}

func (s *Server) handleActivitiesRecentResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	records, err := s.repo.ListActivityRecords(ctx, nil, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}

	views := []activityView{}
	for _, a := range newest(records, 20) {
		views = append(views, toActivityView(a))
	}
	return jsonResource(activitiesRecentURI, map[string]interface{}{
		"activities": views,
		"count":      len(views),
	})
}

func (s *Server) handleSummaryResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	cycles, err := s.repo.SleepCycles(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sleep cycles: %w", err)
	}
	kind := models.ActivityTypeActivity
	exercise, err := s.repo.ListActivityRecords(ctx, &kind, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	samples, err := s.repo.CountSamples(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count samples: %w", err)
	}
	stressMarker, err := s.repo.LatestStressTime(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load stress marker: %w", err)
	}

	result := map[string]interface{}{
		"generated_at": time.Now().UTC().Format(time.RFC3339),
		"counts": map[string]int{
			"samples":      samples,
			"sleep_cycles": len(cycles),
			"exercise":     len(exercise),
		},
	}
	if len(cycles) > 0 {
		result["latest_sleep"] = toSleepView(cycles[len(cycles)-1])
	}
	if week := stats.Sleep(stats.Recent(cycles, stats.RecentCount)); week != nil {
		result["sleep_week"] = map[string]interface{}{
			"nights":            week.Count,
			"mean_duration_min": int(week.MeanDuration.Minutes()),
			"std_duration_min":  int(week.StdDuration.Minutes()),
			"std_bedtime_min":   int(week.StdBedtime.Minutes()),
			"std_wake_min":      int(week.StdWake.Minutes()),
			"mean_score":        week.MeanScore,
		}
	}
	if week := stats.Exercise(stats.Recent(exercise, stats.RecentCount)); week != nil {
		result["exercise_week"] = map[string]interface{}{
			"sessions":          week.Count,
			"total_min":         int(week.Total.Minutes()),
			"mean_duration_min": int(week.MeanDuration.Minutes()),
		}
	}
	if stressMarker != nil {
		result["stress_scored_through"] = stressMarker.UTC().Format(time.RFC3339)
	}

	return jsonResource(summaryURI, result)
}

func jsonResource(uri string, v interface{}) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

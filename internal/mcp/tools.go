// ABOUTME: MCP tool implementations for pulse.
// ABOUTME: Lists committed sleep and activity records and runs the batch jobs.
package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/pulse/internal/models"
)

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_sleep_cycles",
		Description: "List recent sleep cycles, newest first",
	}, s.handleListSleepCycles)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_latest_sleep",
		Description: "Get the most recent sleep cycle",
	}, s.handleGetLatestSleep)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_activities",
		Description: "List detected naps and exercise, optionally filtered by type",
	}, s.handleListActivities)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "detect_events",
		Description: "Detect new sleep cycles, then naps and exercise between them",
	}, s.handleDetectEvents)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "calculate_stress",
		Description: "Score stress for samples not yet scored",
	}, s.handleCalculateStress)
}

// Tool input/output types

type listSleepInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"Max results (default 7)"`
}

type sleepListOutput struct {
	Count  int         `json:"count"`
	Cycles []sleepView `json:"cycles"`
}

type emptyInput struct{}

type latestSleepOutput struct {
	Found   bool       `json:"found"`
	Cycle   *sleepView `json:"cycle,omitempty"`
	Message string     `json:"message,omitempty"`
}

type listActivitiesInput struct {
	Type  string `json:"type,omitempty" jsonschema:"Filter by type (activity or nap)"`
	Limit int    `json:"limit,omitempty" jsonschema:"Max results (default 20)"`
}

type activityListOutput struct {
	Count      int            `json:"count"`
	Activities []activityView `json:"activities"`
}

type detectOutput struct {
	SleepCycles int    `json:"sleep_cycles"`
	Naps        int    `json:"naps"`
	Activities  int    `json:"activities"`
	Message     string `json:"message"`
}

type stressOutput struct {
	Pages   int    `json:"pages"`
	Scored  int    `json:"scored"`
	Message string `json:"message"`
}

// Tool handlers

func (s *Server) handleListSleepCycles(ctx context.Context, req *mcp.CallToolRequest, input listSleepInput) (*mcp.CallToolResult, sleepListOutput, error) {
	if input.Limit <= 0 {
		input.Limit = 7
	}

	cycles, err := s.repo.SleepCycles(ctx)
	if err != nil {
		return nil, sleepListOutput{}, fmt.Errorf("failed to list sleep cycles: %w", err)
	}

	out := sleepListOutput{Cycles: []sleepView{}}
	for _, c := range newest(cycles, input.Limit) {
		out.Cycles = append(out.Cycles, toSleepView(c))
	}
	out.Count = len(out.Cycles)
	return nil, out, nil
}

func (s *Server) handleGetLatestSleep(ctx context.Context, req *mcp.CallToolRequest, _ emptyInput) (*mcp.CallToolResult, latestSleepOutput, error) {
	c, err := s.repo.LatestSleepCycle(ctx)
	if err != nil {
		return nil, latestSleepOutput{}, fmt.Errorf("failed to get latest sleep: %w", err)
	}
	if c == nil {
		return nil, latestSleepOutput{Message: "No sleep cycles found."}, nil
	}

	v := toSleepView(c)
	return nil, latestSleepOutput{Found: true, Cycle: &v}, nil
}

func (s *Server) handleListActivities(ctx context.Context, req *mcp.CallToolRequest, input listActivitiesInput) (*mcp.CallToolResult, activityListOutput, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}

	var activityType *models.ActivityType
	if input.Type != "" {
		if !models.IsValidActivityType(input.Type) {
			return nil, activityListOutput{}, fmt.Errorf("unknown activity type: %s", input.Type)
		}
		at := models.ActivityType(input.Type)
		activityType = &at
	}

	records, err := s.repo.ListActivityRecords(ctx, activityType, 0)
	if err != nil {
		return nil, activityListOutput{}, fmt.Errorf("failed to list activities: %w", err)
	}

	out := activityListOutput{Activities: []activityView{}}
	for _, a := range newest(records, input.Limit) {
		out.Activities = append(out.Activities, toActivityView(a))
	}
	out.Count = len(out.Activities)
	return nil, out, nil
}

func (s *Server) handleDetectEvents(ctx context.Context, req *mcp.CallToolRequest, _ emptyInput) (*mcp.CallToolResult, detectOutput, error) {
	e := s.engine()

	sleeps, err := e.DetectSleeps(ctx)
	if err != nil {
		return nil, detectOutput{}, fmt.Errorf("failed to detect sleeps: %w", err)
	}
	events, err := e.DetectEvents(ctx)
	if err != nil {
		return nil, detectOutput{}, fmt.Errorf("failed to detect events: %w", err)
	}

	return nil, detectOutput{
		SleepCycles: sleeps.Cycles,
		Naps:        sleeps.Naps + events.Naps,
		Activities:  events.Activities,
		Message: fmt.Sprintf("Committed %d sleep cycles, %d naps, %d activities",
			sleeps.Cycles, sleeps.Naps+events.Naps, events.Activities),
	}, nil
}

func (s *Server) handleCalculateStress(ctx context.Context, req *mcp.CallToolRequest, _ emptyInput) (*mcp.CallToolResult, stressOutput, error) {
	summary, err := s.engine().CalculateStress(ctx)
	if err != nil {
		return nil, stressOutput{}, fmt.Errorf("failed to calculate stress: %w", err)
	}

	return nil, stressOutput{
		Pages:   summary.Pages,
		Scored:  summary.Scored,
		Message: fmt.Sprintf("Scored %d samples over %d pages", summary.Scored, summary.Pages),
	}, nil
}

// ABOUTME: Export functionality for committed sleep and activity records.
// ABOUTME: Supports JSON, YAML, and Markdown export formats.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/harperreed/pulse/internal/models"
)

// ExportData represents the full export format.
type ExportData struct {
	Version     string                   `json:"version" yaml:"version"`
	ExportedAt  time.Time                `json:"exported_at" yaml:"exported_at"`
	Tool        string                   `json:"tool" yaml:"tool"`
	Samples     int                      `json:"samples" yaml:"samples"`
	SleepCycles []*models.SleepCycle     `json:"sleep_cycles" yaml:"sleep_cycles"`
	Activities  []*models.ActivityRecord `json:"activities" yaml:"activities"`
}

// GetAllData retrieves all committed records for export.
func (d *DB) GetAllData(ctx context.Context) (*ExportData, error) {
	cycles, err := d.SleepCycles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sleep cycles: %w", err)
	}

	activities, err := d.ListActivityRecords(ctx, nil, 0)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}

	samples, err := d.CountSamples(ctx)
	if err != nil {
		return nil, err
	}

	return &ExportData{
		Version:     "1.0",
		ExportedAt:  time.Now(),
		Tool:        "pulse",
		Samples:     samples,
		SleepCycles: cycles,
		Activities:  activities,
	}, nil
}

// ExportJSON exports all data as JSON.
func (d *DB) ExportJSON(ctx context.Context) ([]byte, error) {
	data, err := d.GetAllData(ctx)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(data, "", "  ")
}

// ExportYAML exports all data as YAML, with activities grouped by type.
func (d *DB) ExportYAML(ctx context.Context) ([]byte, error) {
	data, err := d.GetAllData(ctx)
	if err != nil {
		return nil, err
	}

	yamlData := struct {
		Version    string                    `yaml:"version"`
		ExportedAt string                    `yaml:"exported_at"`
		Tool       string                    `yaml:"tool"`
		Samples    int                       `yaml:"samples"`
		Sleep      []yamlSleep               `yaml:"sleep"`
		Activities map[string][]yamlActivity `yaml:"activities"`
	}{
		Version:    data.Version,
		ExportedAt: data.ExportedAt.Format(time.RFC3339),
		Tool:       data.Tool,
		Samples:    data.Samples,
		Sleep:      make([]yamlSleep, 0, len(data.SleepCycles)),
		Activities: make(map[string][]yamlActivity),
	}

	for _, c := range data.SleepCycles {
		yamlData.Sleep = append(yamlData.Sleep, yamlSleep{
			Date:     models.FormatDateKey(c.ID),
			Start:    c.Start.Format(time.RFC3339),
			End:      c.End.Format(time.RFC3339),
			Duration: c.Duration().String(),
			BPM:      [3]uint8{c.MinBPM, c.AvgBPM, c.MaxBPM},
			HRV:      [3]uint16{c.MinHRV, c.AvgHRV, c.MaxHRV},
			Score:    c.Score,
		})
	}

	for _, a := range data.Activities {
		t := string(a.Type)
		yamlData.Activities[t] = append(yamlData.Activities[t], yamlActivity{
			ID:       a.ID.String()[:8],
			Period:   models.FormatDateKey(a.PeriodID),
			From:     a.From.Format(time.RFC3339),
			To:       a.To.Format(time.RFC3339),
			Duration: a.Duration().String(),
		})
	}

	return yaml.Marshal(yamlData)
}

type yamlSleep struct {
	Date     string    `yaml:"date"`
	Start    string    `yaml:"start"`
	End      string    `yaml:"end"`
	Duration string    `yaml:"duration"`
	BPM      [3]uint8  `yaml:"bpm,flow"`
	HRV      [3]uint16 `yaml:"hrv,flow"`
	Score    float64   `yaml:"score"`
}

type yamlActivity struct {
	ID       string `yaml:"id"`
	Period   string `yaml:"period"`
	From     string `yaml:"from"`
	To       string `yaml:"to"`
	Duration string `yaml:"duration"`
}

// ExportMarkdown exports sleep cycles and activities as Markdown tables.
// A non-nil since drops records that started before it.
func (d *DB) ExportMarkdown(ctx context.Context, since *time.Time) (string, error) {
	data, err := d.GetAllData(ctx)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	now := time.Now()

	sb.WriteString(fmt.Sprintf("# Pulse Export - %s\n\n", now.Format("2006-01-02")))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", now.Format(time.RFC3339)))

	sb.WriteString("## Sleep\n\n")
	sb.WriteString("| Date | Start | End | Duration | BPM (min/avg/max) | HRV (min/avg/max) | Score |\n")
	sb.WriteString("|------|-------|-----|----------|-------------------|-------------------|-------|\n")
	for _, c := range data.SleepCycles {
		if since != nil && c.Start.Before(*since) {
			continue
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %d/%d/%d | %d/%d/%d | %.0f |\n",
			models.FormatDateKey(c.ID),
			c.Start.Format("2006-01-02 15:04"),
			c.End.Format("2006-01-02 15:04"),
			formatHM(c.Duration()),
			c.MinBPM, c.AvgBPM, c.MaxBPM,
			c.MinHRV, c.AvgHRV, c.MaxHRV,
			c.Score))
	}
	sb.WriteString("\n")

	var activities []*models.ActivityRecord
	for _, a := range data.Activities {
		if since != nil && a.From.Before(*since) {
			continue
		}
		activities = append(activities, a)
	}

	if len(activities) > 0 {
		sb.WriteString("## Activities\n\n")
		sb.WriteString("| Date | Type | From | To | Duration |\n")
		sb.WriteString("|------|------|------|----|----------|\n")
		for _, a := range activities {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s |\n",
				models.FormatDateKey(a.PeriodID),
				a.Type,
				a.From.Format("15:04"),
				a.To.Format("15:04"),
				formatHM(a.Duration())))
		}
	}

	return sb.String(), nil
}

// formatHM renders a duration as "7h 05m".
func formatHM(d time.Duration) string {
	d = d.Round(time.Minute)
	return fmt.Sprintf("%dh %02dm", int(d.Hours()), int(d.Minutes())%60)
}

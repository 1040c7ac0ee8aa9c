// ABOUTME: Shared formatting helpers for CLI output.
// ABOUTME: Column padding and compact durations.
package main

import (
	"fmt"
	"strings"
	"time"
)

func padRight(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(" ", length-len(s))
}

// formatDuration renders d as "7h 05m", or "42m" under an hour.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Minute)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if h == 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh %02dm", h, m)
}

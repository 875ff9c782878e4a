package utils

import (
	"encoding/json"
	"fmt"
	"gsport/internal/models"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// FormatBytes renders a byte count with metric (1000-based) suffixes,
// matching the sizes the portal shows in its web UI.
func FormatBytes(bytes int64) string {
	num := float64(bytes)
	for _, unit := range []string{"", "K", "M", "G", "T", "P", "E", "Z"} {
		if num < 1000.0 && num > -1000.0 {
			return fmt.Sprintf("%3.1f %sB", num, unit)
		}
		num /= 1000.0
	}
	return fmt.Sprintf("%.1f YB", num)
}

// FormatETA renders a duration compactly, e.g. "1d2h", "3m", "45s".
// Seconds are omitted once the estimate passes the minute mark.
func FormatETA(d time.Duration) string {
	seconds := int64(d.Seconds())
	if seconds < 0 {
		seconds = 0
	}

	days := seconds / 86400
	hours := seconds / 3600 % 24
	minutes := seconds / 60 % 60
	seconds = seconds % 60

	ret := ""
	if days > 0 {
		ret += fmt.Sprintf("%dd", days)
	}
	if hours > 0 {
		ret += fmt.Sprintf("%dh", hours)
	}
	if minutes > 0 {
		ret += fmt.Sprintf("%dm", minutes)
	}
	if seconds > 0 && minutes < 1 {
		ret += fmt.Sprintf("%ds", seconds)
	}
	if ret == "" {
		ret = "0s"
	}
	return ret
}

func PrintJSON(data interface{}) error {
	jsonOutput, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Println(string(jsonOutput))
	return nil
}

func PrintError(err error, command string) {
	errorResp := models.ErrorResponse{
		Error:     err.Error(),
		Timestamp: time.Now().Format(time.RFC3339),
		Command:   command,
	}
	err = PrintJSON(errorResp)
	if err != nil {
		slog.Error("Failed to print error in JSON format", "error", err)
		fmt.Println("Error: ", errorResp)
		return
	}
}

func FormatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

var sizeRe = regexp.MustCompile(`^\s*(\d+(?:\.\d+)?)\s*([kKmMgGtT]?[bB]?)?\s*$`)

// ParseBytes parses a byte size string like "4MB", "500KB" or "2g".
func ParseBytes(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}

	matches := sizeRe.FindStringSubmatch(s)
	if matches == nil {
		return 0, fmt.Errorf("invalid size: %s", s)
	}

	val, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, err
	}

	multiplier := int64(1)
	switch strings.ToLower(matches[2]) {
	case "k", "kb":
		multiplier = 1000
	case "m", "mb":
		multiplier = 1000 * 1000
	case "g", "gb":
		multiplier = 1000 * 1000 * 1000
	case "t", "tb":
		multiplier = 1000 * 1000 * 1000 * 1000
	}

	return int64(val * float64(multiplier)), nil
}

package utils

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		name     string
		bytes    int64
		expected string
	}{
		{"Zero bytes", 0, "0.0 B"},
		{"Bytes", 500, "500.0 B"},
		{"Kilobytes", 1500, "1.5 KB"},
		{"Megabytes", 1500000, "1.5 MB"},
		{"Gigabytes", 1500000000, "1.5 GB"},
		{"Terabytes", 1500000000000, "1.5 TB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FormatBytes(tt.bytes)
			if strings.TrimSpace(result) != strings.TrimSpace(tt.expected) {
				t.Errorf("FormatBytes(%d) = %q, want %q", tt.bytes, result, tt.expected)
			}
		})
	}
}

func TestFormatETA(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		expected string
	}{
		{"Zero", 0, "0s"},
		{"Seconds only", 45 * time.Second, "45s"},
		{"Minutes drop seconds", 3*time.Minute + 20*time.Second, "3m"},
		{"Hours and minutes", 2*time.Hour + 5*time.Minute, "2h5m"},
		{"Days and hours", 26 * time.Hour, "1d2h"},
		{"Negative clamps to zero", -5 * time.Second, "0s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FormatETA(tt.duration)
			if result != tt.expected {
				t.Errorf("FormatETA(%v) = %q, want %q", tt.duration, result, tt.expected)
			}
		})
	}
}

func TestParseBytes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int64
		wantErr  bool
	}{
		{"Empty", "", 0, false},
		{"Plain number", "1024", 1024, false},
		{"Kilobytes", "500KB", 500000, false},
		{"Megabytes lower", "4mb", 4000000, false},
		{"Gigabytes short", "2g", 2000000000, false},
		{"Fractional", "1.5MB", 1500000, false},
		{"Garbage", "lots", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseBytes(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseBytes(%q) error = %v, wantErr %t", tt.input, err, tt.wantErr)
			}
			if result != tt.expected {
				t.Errorf("ParseBytes(%q) = %d, want %d", tt.input, result, tt.expected)
			}
		})
	}
}

func TestPrintJSON(t *testing.T) {
	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	testData := map[string]string{"key": "value"}

	err := PrintJSON(testData)

	w.Close()
	os.Stdout = oldStdout

	var buf bytes.Buffer
	buf.ReadFrom(r)
	output := buf.String()

	if err != nil {
		t.Errorf("PrintJSON() returned error: %v", err)
	}

	var decoded map[string]string
	if err := json.Unmarshal([]byte(output), &decoded); err != nil {
		t.Fatalf("PrintJSON() produced invalid JSON: %v", err)
	}

	if decoded["key"] != "value" {
		t.Errorf("PrintJSON() output = %s, want key=value", output)
	}
}

package ticket

import (
	"testing"
	"time"
)

func TestFormatDowntime(t *testing.T) {
	tests := []struct {
		name     string
		d        time.Duration
		expected string
	}{
		{"zero", 0, "00:00:00"},
		{"just over a minute", 61 * time.Second, "00:01:01"},
		{"under a day", 23*time.Hour + 59*time.Minute + 59*time.Second, "23:59:59"},
		{"exactly one day", 24 * time.Hour, "1 days, 00:00:00"},
		{"one day plus", 90061 * time.Second, "1 days, 01:01:01"},
		{"multiple days", 3*24*time.Hour + 2*time.Hour + 5*time.Second, "3 days, 02:00:05"},
		{"negative clock skew", -61 * time.Second, "00:01:01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatDowntime(tt.d); got != tt.expected {
				t.Errorf("formatDowntime(%v) = %q, want %q", tt.d, got, tt.expected)
			}
		})
	}
}

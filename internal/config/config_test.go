package config

import (
	"testing"
	"time"
)

func TestPollInterval(t *testing.T) {
	tests := []struct {
		name string
		ms   int
		want time.Duration
	}{
		{"configured", 2500, 2500 * time.Millisecond},
		{"zero falls back to default", 0, DefaultPollMS * time.Millisecond},
		{"negative falls back to default", -5, DefaultPollMS * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{PollMS: tt.ms}
			if got := c.PollInterval(); got != tt.want {
				t.Errorf("PollInterval() = %v, want %v", got, tt.want)
			}
		})
	}
}

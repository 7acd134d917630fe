package application

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNextRefreshDelay(t *testing.T) {
	interval := 50 * time.Minute

	tests := []struct {
		name     string
		failures int
		want     time.Duration
	}{
		{"success uses interval", 0, interval},
		{"first failure retries after a minute", 1, time.Minute},
		{"second failure doubles", 2, 2 * time.Minute},
		{"fourth failure", 4, 8 * time.Minute},
		{"many failures cap at interval", 20, interval},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, nextRefreshDelay(interval, tt.failures))
		})
	}
}

func TestNewRefreshService_DefaultInterval(t *testing.T) {
	s := NewRefreshService(nil, "wian47", 0, nil)
	assert.Equal(t, DefaultRefreshInterval, s.interval)
	assert.Less(t, DefaultRefreshInterval, CacheTTL)
}

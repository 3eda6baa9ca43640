package bot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPrunePendingPresets_DropsOnlyExpiredSessions(t *testing.T) {
	now := time.Now()
	b := &Bot{pendingPresets: map[string]pendingPreset{
		pendingKey("g1", "u1"): {Name: "fresh", CreatedAt: now.Add(-time.Minute)},
		pendingKey("g1", "u2"): {Name: "stale", CreatedAt: now.Add(-pendingPresetTTL - time.Minute)},
		pendingKey("g2", "u1"): {Name: "edge", CreatedAt: now.Add(-pendingPresetTTL)},
	}}

	b.prunePendingPresets(now)

	assert.Contains(t, b.pendingPresets, pendingKey("g1", "u1"))
	assert.NotContains(t, b.pendingPresets, pendingKey("g1", "u2"))
	// Exactly at the cutoff is still live.
	assert.Contains(t, b.pendingPresets, pendingKey("g2", "u1"))
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"DAILY_RUN_HOUR", "TOP_N", "SCORE_WEIGHT_PAIN", "SCRAPE_TIMEOUT", "ANALYZER_BACKEND", "TIMEZONE", "SEED_DEV_DATA"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, 7, cfg.DailyRunHour)
	assert.Equal(t, 0, cfg.DailyRunMinute)
	assert.Equal(t, "Europe/Madrid", cfg.Timezone)
	assert.Equal(t, 10, cfg.TopN)
	assert.Equal(t, 50, cfg.MaxAnalyzePerRun)
	assert.Equal(t, 60*time.Second, cfg.ScrapeTimeout)
	assert.Equal(t, "stub", cfg.AnalyzerBackend)
	assert.InDelta(t, 1.0, cfg.Weights.Sum(), 1e-9)
	assert.Equal(t, 0.30, cfg.Weights.Pain)
	assert.False(t, cfg.SeedDevData)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DAILY_RUN_HOUR", "9")
	t.Setenv("DAILY_RUN_MINUTE", "30")
	t.Setenv("TOP_N", "5")
	t.Setenv("SCORE_WEIGHT_PAIN", "0.5")
	t.Setenv("SCRAPE_TIMEOUT", "15s")
	t.Setenv("SEED_DEV_DATA", "true")

	cfg := Load()

	assert.True(t, cfg.SeedDevData)

	assert.Equal(t, 9, cfg.DailyRunHour)
	assert.Equal(t, 30, cfg.DailyRunMinute)
	assert.Equal(t, 5, cfg.TopN)
	assert.Equal(t, 0.5, cfg.Weights.Pain)
	assert.Equal(t, 15*time.Second, cfg.ScrapeTimeout)
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	t.Setenv("TOP_N", "ten")
	t.Setenv("SCRAPE_TIMEOUT", "soon")

	cfg := Load()

	assert.Equal(t, 10, cfg.TopN)
	assert.Equal(t, 60*time.Second, cfg.ScrapeTimeout)
}

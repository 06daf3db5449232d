package main

import (
	"testing"

	"github.com/jimdaga/opportunity-finder/internal/analyzer"
	"github.com/jimdaga/opportunity-finder/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBackend(t *testing.T) {
	b, err := newBackend(&config.Config{AnalyzerBackend: "stub"})
	require.NoError(t, err)
	assert.Equal(t, analyzer.StubBackend{}.Name(), b.Name())

	b, err = newBackend(&config.Config{AnalyzerBackend: "webhook", AnalyzerURL: "http://analyzer:9000"})
	require.NoError(t, err)
	assert.Equal(t, "webhook", b.Name())

	b, err = newBackend(&config.Config{AnalyzerBackend: "anthropic", AnthropicAPIKey: "k", AnthropicModel: "claude-sonnet-4-5"})
	require.NoError(t, err)
	assert.Equal(t, "anthropic/claude-sonnet-4-5", b.Name())

	_, err = newBackend(&config.Config{AnalyzerBackend: "webhook"})
	assert.Error(t, err)
	_, err = newBackend(&config.Config{AnalyzerBackend: "anthropic"})
	assert.Error(t, err)
	_, err = newBackend(&config.Config{AnalyzerBackend: "oracle"})
	assert.Error(t, err)
}

func TestScoringWeights(t *testing.T) {
	w := scoringWeights(config.Weights{Pain: 0.3, Frequency: 0.2, WillingnessToPay: 0.2, LowCompetition: 0.15, TechnicalFeasibility: 0.1, AISynergy: 0.05})
	assert.Equal(t, 0.15, w.Competition)
	assert.Equal(t, 0.3, w.Pain)
}

func TestRootCommandHasSubcommands(t *testing.T) {
	root := newRootCommand()
	for _, name := range []string{"serve", "worker", "run-once", "trigger", "migrate"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}
}

func TestShouldSeed(t *testing.T) {
	assert.False(t, shouldSeed(&config.Config{Env: "development"}))
	assert.True(t, shouldSeed(&config.Config{SeedDevData: true}))
	assert.False(t, shouldSeed(&config.Config{SeedDevData: true, DatabaseURL: "postgres://db/opportunities"}))
}

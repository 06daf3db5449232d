package config

import (
	"log"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment variables
type Config struct {
	Env       string
	Port      string
	LogLevel  string
	LogFormat string

	DatabaseURL string
	SQLitePath  string
	RedisURL    string
	SeedDevData bool

	DailyRunHour   int
	DailyRunMinute int
	Timezone       string

	Weights          Weights
	TopN             int
	MaxAnalyzePerRun int
	ReportsDir       string
	SourcesFile      string
	ScrapeTimeout    time.Duration
	AnalyzerTimeout  time.Duration

	AnalyzerBackend string
	AnalyzerURL     string
	AnalyzerSecret  string
	AnthropicAPIKey string
	AnthropicModel  string

	RedditClientID     string
	RedditClientSecret string
	RedditUserAgent    string
	ProductHuntAPIKey  string
}

// Weights are the scoring weights per dimension, expected to sum to 1.0
type Weights struct {
	Pain                 float64
	Frequency            float64
	WillingnessToPay     float64
	LowCompetition       float64
	TechnicalFeasibility float64
	AISynergy            float64
}

// Sum returns the total of all weights
func (w Weights) Sum() float64 {
	return w.Pain + w.Frequency + w.WillingnessToPay + w.LowCompetition + w.TechnicalFeasibility + w.AISynergy
}

// Load reads configuration from environment variables.
// A .env file in the working directory is loaded first when present.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		Env:       getEnvWithDefault("ENV", "development"),
		Port:      getEnvWithDefault("PORT", "8080"),
		LogLevel:  getEnvWithDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvWithDefault("LOG_FORMAT", "text"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		SQLitePath:  getEnvWithDefault("SQLITE_PATH", "opportunities.db"),
		RedisURL:    os.Getenv("REDIS_URL"),
		SeedDevData: getBoolWithDefault("SEED_DEV_DATA", false),

		DailyRunHour:   getIntWithDefault("DAILY_RUN_HOUR", 7),
		DailyRunMinute: getIntWithDefault("DAILY_RUN_MINUTE", 0),
		Timezone:       getEnvWithDefault("TIMEZONE", "Europe/Madrid"),

		Weights: Weights{
			Pain:                 getFloatWithDefault("SCORE_WEIGHT_PAIN", 0.30),
			Frequency:            getFloatWithDefault("SCORE_WEIGHT_FREQUENCY", 0.20),
			WillingnessToPay:     getFloatWithDefault("SCORE_WEIGHT_WILLINGNESS_TO_PAY", 0.20),
			LowCompetition:       getFloatWithDefault("SCORE_WEIGHT_LOW_COMPETITION", 0.15),
			TechnicalFeasibility: getFloatWithDefault("SCORE_WEIGHT_TECHNICAL_FEASIBILITY", 0.10),
			AISynergy:            getFloatWithDefault("SCORE_WEIGHT_AI_SYNERGY", 0.05),
		},
		TopN:             getIntWithDefault("TOP_N", 10),
		MaxAnalyzePerRun: getIntWithDefault("MAX_ANALYZE_PER_RUN", 50),
		ReportsDir:       getEnvWithDefault("REPORTS_DIR", "reports"),
		SourcesFile:      os.Getenv("SOURCES_FILE"),
		ScrapeTimeout:    getDurationWithDefault("SCRAPE_TIMEOUT", 60*time.Second),
		AnalyzerTimeout:  getDurationWithDefault("ANALYZER_TIMEOUT", 30*time.Second),

		AnalyzerBackend: getEnvWithDefault("ANALYZER_BACKEND", "stub"),
		AnalyzerURL:     os.Getenv("ANALYZER_URL"),
		AnalyzerSecret:  os.Getenv("ANALYZER_SECRET"),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:  getEnvWithDefault("ANTHROPIC_MODEL", "claude-sonnet-4-5"),

		RedditClientID:     os.Getenv("REDDIT_CLIENT_ID"),
		RedditClientSecret: os.Getenv("REDDIT_CLIENT_SECRET"),
		RedditUserAgent:    getEnvWithDefault("REDDIT_USER_AGENT", "BusinessOpportunitiesFinder/1.0"),
		ProductHuntAPIKey:  os.Getenv("PRODUCTHUNT_API_KEY"),
	}

	if math.Abs(cfg.Weights.Sum()-1.0) > 0.001 {
		log.Printf("WARNING: scoring weights sum to %.3f, not 1.0; totals will not be on a 0-10 scale", cfg.Weights.Sum())
	}

	return cfg
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntWithDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("WARNING: invalid integer for %s=%q, using %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

func getBoolWithDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("WARNING: invalid boolean for %s=%q, using %t", key, value, defaultValue)
		return defaultValue
	}
	return b
}

func getFloatWithDefault(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		log.Printf("WARNING: invalid number for %s=%q, using %g", key, value, defaultValue)
		return defaultValue
	}
	return f
}

func getDurationWithDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("WARNING: invalid duration for %s=%q, using %s", key, value, defaultValue)
		return defaultValue
	}
	return d
}

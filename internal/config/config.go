package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone    = "UTC"
	configPathEnv      = "DIGEST_ENGINE_CONFIG"
	databasePathEnv    = "DATABASE_PATH"
	evaluatorKeyEnv    = "EVALUATOR_API_KEY"
	evaluatorModelEnv  = "EVALUATOR_MODEL"
	ingestionURLEnv    = "INGESTION_API_URL"
	logLevelEnvVarName = "LOG_LEVEL"
)

// Config holds high-level settings required across the application.
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Ingestion IngestionConfig `yaml:"ingestion"`
	Evaluator EvaluatorConfig `yaml:"evaluator"`
	Scoring   ScoringConfig   `yaml:"scoring"`
	Selection SelectionConfig `yaml:"selection"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// DatabaseConfig describes the embedded SQLite database location.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// SchedulerConfig defines when the daily recompute runs.
type SchedulerConfig struct {
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// IngestionConfig groups the upstream segment feeds.
type IngestionConfig struct {
	Feeds []FeedConfig `yaml:"feeds"`
}

// FeedConfig describes one configured segment feed and the provider
// strategy that serves it.
type FeedConfig struct {
	Name     string            `yaml:"name"`
	Provider string            `yaml:"provider"`
	URL      string            `yaml:"url"`
	Options  map[string]string `yaml:"options"`
}

// EvaluatorConfig defines how to contact the quality-evaluation oracle.
type EvaluatorConfig struct {
	Endpoint     string `yaml:"endpoint"`
	Model        string `yaml:"model"`
	APIKey       string `yaml:"apiKey"`
	SystemPrompt string `yaml:"systemPrompt"`
}

// ScoringConfig carries the tunable numeric parameters of the engine.
type ScoringConfig struct {
	MaxAgeDays        int     `yaml:"maxAgeDays"`
	TrustLowThreshold float64 `yaml:"trustLowThreshold"`
	ProbationAfter    int     `yaml:"probationAfter"`
	RedemptionCadence int     `yaml:"redemptionCadence"`
	MaxTrustStep      float64 `yaml:"maxTrustStep"`
	LeadCenterHours   float64 `yaml:"leadCenterHours"`
	LeadOuterHours    float64 `yaml:"leadOuterHours"`
}

// SelectionConfig shapes per-user playlist assembly.
type SelectionConfig struct {
	TargetCount int `yaml:"targetCount"`
	Workers     int `yaml:"workers"`
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text" or "json"
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	return cfg
}

// Validate rejects parameter combinations the scoring math cannot honor.
func (c Config) Validate() error {
	if c.Scoring.MaxAgeDays < 0 {
		return fmt.Errorf("scoring: maxAgeDays must be >= 0 (got %d)", c.Scoring.MaxAgeDays)
	}
	if c.Scoring.TrustLowThreshold < 0 || c.Scoring.TrustLowThreshold > 100 {
		return fmt.Errorf("scoring: trustLowThreshold must be in [0,100] (got %g)", c.Scoring.TrustLowThreshold)
	}
	if c.Scoring.MaxTrustStep <= 0 {
		return fmt.Errorf("scoring: maxTrustStep must be positive (got %g)", c.Scoring.MaxTrustStep)
	}
	if c.Scoring.LeadOuterHours <= c.Scoring.LeadCenterHours || c.Scoring.LeadCenterHours <= 0 {
		return fmt.Errorf("scoring: lead window needs 0 < center < outer (got %g, %g)",
			c.Scoring.LeadCenterHours, c.Scoring.LeadOuterHours)
	}
	if c.Selection.TargetCount < 2 {
		return fmt.Errorf("selection: targetCount must be >= 2 (got %d)", c.Selection.TargetCount)
	}
	if c.Selection.Workers < 1 {
		return fmt.Errorf("selection: workers must be >= 1 (got %d)", c.Selection.Workers)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databasePathEnv); v != "" {
		c.Database.Path = v
	}

	if v := os.Getenv(evaluatorKeyEnv); v != "" {
		c.Evaluator.APIKey = v
	}

	if v := os.Getenv(evaluatorModelEnv); v != "" {
		c.Evaluator.Model = v
	}

	if v := os.Getenv(ingestionURLEnv); v != "" && len(c.Ingestion.Feeds) > 0 {
		c.Ingestion.Feeds[0].URL = v
	}

	if v := os.Getenv(logLevelEnvVarName); v != "" {
		c.Logging.Level = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Database.Path != "" {
		base.Database = override.Database
	}

	if override.Scheduler.CronExpression != "" {
		base.Scheduler.CronExpression = override.Scheduler.CronExpression
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	if len(override.Ingestion.Feeds) > 0 {
		base.Ingestion = override.Ingestion
	}

	if override.Evaluator.Endpoint != "" {
		base.Evaluator.Endpoint = override.Evaluator.Endpoint
	}
	if override.Evaluator.Model != "" {
		base.Evaluator.Model = override.Evaluator.Model
	}
	if override.Evaluator.APIKey != "" {
		base.Evaluator.APIKey = override.Evaluator.APIKey
	}
	if override.Evaluator.SystemPrompt != "" {
		base.Evaluator.SystemPrompt = override.Evaluator.SystemPrompt
	}

	if override.Scoring.MaxAgeDays != 0 {
		base.Scoring.MaxAgeDays = override.Scoring.MaxAgeDays
	}
	if override.Scoring.TrustLowThreshold != 0 {
		base.Scoring.TrustLowThreshold = override.Scoring.TrustLowThreshold
	}
	if override.Scoring.ProbationAfter != 0 {
		base.Scoring.ProbationAfter = override.Scoring.ProbationAfter
	}
	if override.Scoring.RedemptionCadence != 0 {
		base.Scoring.RedemptionCadence = override.Scoring.RedemptionCadence
	}
	if override.Scoring.MaxTrustStep != 0 {
		base.Scoring.MaxTrustStep = override.Scoring.MaxTrustStep
	}
	if override.Scoring.LeadCenterHours != 0 {
		base.Scoring.LeadCenterHours = override.Scoring.LeadCenterHours
	}
	if override.Scoring.LeadOuterHours != 0 {
		base.Scoring.LeadOuterHours = override.Scoring.LeadOuterHours
	}

	if override.Selection.TargetCount != 0 {
		base.Selection.TargetCount = override.Selection.TargetCount
	}
	if override.Selection.Workers != 0 {
		base.Selection.Workers = override.Selection.Workers
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Database:  DatabaseConfig{Path: "data/digest.db"},
		Scheduler: SchedulerConfig{CronExpression: "0 5 * * *", Timezone: defaultTimezone, location: tz},
		Ingestion: IngestionConfig{
			Feeds: []FeedConfig{
				{Name: "primary", Provider: "http", URL: "https://api.example.org/segments"},
			},
		},
		Evaluator: EvaluatorConfig{
			Endpoint:     "https://api.openai.com/v1/chat/completions",
			Model:        "gpt-4o-mini",
			APIKey:       "",
			SystemPrompt: "You evaluate news content for recency and connectivity.",
		},
		Scoring: ScoringConfig{
			MaxAgeDays:        7,
			TrustLowThreshold: 20,
			ProbationAfter:    2,
			RedemptionCadence: 3,
			MaxTrustStep:      15,
			LeadCenterHours:   15,
			LeadOuterHours:    48,
		},
		Selection: SelectionConfig{TargetCount: 15, Workers: 8},
		Logging:   LoggingConfig{Level: "info", Format: "text"},
	}
}

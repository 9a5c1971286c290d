// Package config loads promptlens configuration from YAML, layering
// environment overrides on top, and centralizes the handful of tunables
// the rest of the module reads (weakness threshold, grade boundaries,
// judge/rewriter timeouts and caches).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/philokalos/promptlens/internal/logging"
)

// GradeBoundaries holds the minimum 0-1 total score required for each
// letter grade. Grades below D.Min fall to F.
type GradeBoundaries struct {
	A float64 `yaml:"a"`
	B float64 `yaml:"b"`
	C float64 `yaml:"c"`
	D float64 `yaml:"d"`
}

// LLMJudgeConfig controls the optional LLM-judge merge in the GOLDEN
// evaluator.
type LLMJudgeConfig struct {
	Enabled    bool   `yaml:"enabled"`
	CacheTTLMs int64  `yaml:"cache_ttl_ms"`
	TimeoutMs  int64  `yaml:"timeout_ms"`
	Model      string `yaml:"model"`
}

// AIRewriterConfig controls the multi-variant LLM rewriter.
type AIRewriterConfig struct {
	Temperatures []float64 `yaml:"temperatures"`
	MaxTokens    int       `yaml:"max_tokens"`
	TimeoutMs    int64     `yaml:"timeout_ms"`
	CacheTTLMs   int64     `yaml:"cache_ttl_ms"`
	CacheSize    int       `yaml:"cache_size"`
}

// AnalysisConfig controls the orchestrator's end-to-end deadline.
type AnalysisConfig struct {
	DeadlineMs int64 `yaml:"deadline_ms"`
}

// HistoryConfig controls the repository's weakness bookkeeping.
type HistoryConfig struct {
	WeaknessThresholdInt int    `yaml:"weakness_threshold_int"`
	DatabasePath         string `yaml:"database_path"`
}

// LLMConfig names the credential and base settings for the LLM provider
// used by both the judge and the AI rewriter.
type LLMConfig struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"-"`
}

// LoggingConfig controls the categorized file logger.
type LoggingConfig struct {
	DebugMode bool   `yaml:"debug_mode"`
	Level     string `yaml:"level"`
	DataDir   string `yaml:"data_dir"`
}

// Config holds all promptlens configuration.
type Config struct {
	WeaknessThreshold float64          `yaml:"weakness_threshold"`
	MaxPromptLength   int              `yaml:"max_prompt_length"`
	GradeBoundaries   GradeBoundaries  `yaml:"grade_boundaries"`
	LLM               LLMConfig        `yaml:"llm"`
	LLMJudge          LLMJudgeConfig   `yaml:"llm_judge"`
	AIRewriter        AIRewriterConfig `yaml:"ai_rewriter"`
	Analysis          AnalysisConfig   `yaml:"analysis"`
	History           HistoryConfig    `yaml:"history"`
	Logging           LoggingConfig    `yaml:"logging"`
}

// WeaknessThresholdInt100 returns the weakness threshold on the 0-100 scale.
// Callers that work in 0-100 space (the repository, recommend) read it here:
// it is History.WeaknessThresholdInt when that is set (default 60), and
// WeaknessThreshold*100 otherwise.
func (c *Config) WeaknessThresholdInt100() int {
	if c.History.WeaknessThresholdInt > 0 {
		return c.History.WeaknessThresholdInt
	}
	return int(c.WeaknessThreshold * 100)
}

// DefaultConfig returns promptlens's baseline configuration.
func DefaultConfig() *Config {
	return &Config{
		WeaknessThreshold: 0.5,
		MaxPromptLength:   20_000,
		GradeBoundaries: GradeBoundaries{
			A: 0.90,
			B: 0.75,
			C: 0.60,
			D: 0.45,
		},
		LLM: LLMConfig{
			Provider: "gemini",
			Model:    "gemini-2.5-flash",
		},
		LLMJudge: LLMJudgeConfig{
			Enabled:    false,
			CacheTTLMs: 3_600_000,
			TimeoutMs:  30_000,
			Model:      "gemini-2.5-flash",
		},
		AIRewriter: AIRewriterConfig{
			Temperatures: []float64{0.3, 0.5, 0.7},
			MaxTokens:    2048,
			TimeoutMs:    30_000,
			CacheTTLMs:   3_600_000,
			CacheSize:    100,
		},
		Analysis: AnalysisConfig{
			DeadlineMs: 45_000,
		},
		History: HistoryConfig{
			WeaknessThresholdInt: 60,
			DatabasePath:         "data/promptlens.db",
		},
		Logging: LoggingConfig{
			DebugMode: false,
			Level:     "info",
			DataDir:   ".promptlens",
		},
	}
}

// Load reads configuration from a YAML file, falling back to defaults if the
// file does not exist, then applies environment overrides. Mirrors the
// teacher's internal/config.Load.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	logging.BootDebug("loading config from %s", path)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logging.Boot("config file not found, using defaults: %s", path)
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	logging.Boot("config loaded: provider=%s model=%s", cfg.LLM.Provider, cfg.LLM.Model)
	return cfg, nil
}

// Save writes configuration back to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// applyEnvOverrides loads a .env file if present (the same way
// jholhewres-goclaw and asr-eval pick up provider credentials) and then
// layers process environment variables on top.
func (c *Config) applyEnvOverrides() {
	_ = godotenv.Load()

	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.LLM.APIKey = key
		c.LLM.Provider = "gemini"
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		c.LLM.APIKey = key
		c.LLM.Provider = "anthropic"
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		c.LLM.APIKey = key
		c.LLM.Provider = "openai"
	}
	if path := os.Getenv("PROMPTLENS_DB"); path != "" {
		c.History.DatabasePath = path
	}
	if v := os.Getenv("PROMPTLENS_DEBUG"); v == "1" || v == "true" {
		c.Logging.DebugMode = true
	}
}

// LLMJudgeTimeout returns the judge's per-call timeout as a duration.
func (c *Config) LLMJudgeTimeout() time.Duration {
	return time.Duration(c.LLMJudge.TimeoutMs) * time.Millisecond
}

// LLMJudgeCacheTTL returns the judge cache entry lifetime.
func (c *Config) LLMJudgeCacheTTL() time.Duration {
	return time.Duration(c.LLMJudge.CacheTTLMs) * time.Millisecond
}

// AIRewriterTimeout returns the per-branch AI rewriter timeout.
func (c *Config) AIRewriterTimeout() time.Duration {
	return time.Duration(c.AIRewriter.TimeoutMs) * time.Millisecond
}

// AIRewriterCacheTTL returns the AI rewriter cache entry lifetime.
func (c *Config) AIRewriterCacheTTL() time.Duration {
	return time.Duration(c.AIRewriter.CacheTTLMs) * time.Millisecond
}

// AnalysisDeadline returns the orchestrator's end-to-end deadline.
func (c *Config) AnalysisDeadline() time.Duration {
	return time.Duration(c.Analysis.DeadlineMs) * time.Millisecond
}

// HasLLMCredential reports whether an API key is configured, the gate the
// AI rewriter uses to decide between calling out and returning a
// needs_setup placeholder.
func (c *Config) HasLLMCredential() bool {
	return c.LLM.APIKey != ""
}

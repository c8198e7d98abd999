package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the pricedex service configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Corpus   CorpusConfig   `yaml:"corpus"`
	Import   ImportConfig   `yaml:"import"`
	Columns  ColumnsConfig  `yaml:"columns"`
	Search   SearchConfig   `yaml:"search"`
	AI       AIConfig       `yaml:"ai"`
	Auth     AuthConfig     `yaml:"auth"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds the search index (Redis 8+) connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
	IndexName        string   `yaml:"index_name"`
	KeyPrefix        string   `yaml:"key_prefix"`
	Language         string   `yaml:"language"`
	// RecreateIndex drops and recreates the search index at startup.
	RecreateIndex bool `yaml:"recreate_index"`
}

// CorpusConfig holds the embedded corpus store settings.
type CorpusConfig struct {
	Path     string `yaml:"path"`
	InMemory bool   `yaml:"in_memory"`
}

// ImportConfig holds background import settings.
type ImportConfig struct {
	Workers         int `yaml:"workers"`
	TimeoutMin      int `yaml:"timeout_min"`
	CheckpointEvery int `yaml:"checkpoint_every"`
	MaxFileMB       int `yaml:"max_file_mb"`
	BatchSize       int `yaml:"batch_size"`
	MaxRows         int `yaml:"max_rows"`
	PDFMaxPages     int `yaml:"pdf_max_pages"`
}

// ColumnsConfig holds column detection settings.
type ColumnsConfig struct {
	Fuzzy         *bool               `yaml:"fuzzy"` // default true
	MinConfidence float64             `yaml:"min_confidence"`
	Synonyms      map[string][]string `yaml:"synonyms"` // extra synonyms per field
}

// SearchConfig holds ranking and fallback settings.
type SearchConfig struct {
	MinScore    *float64 `yaml:"min_score"` // default 0.5
	IndexSize   int      `yaml:"index_size"`
	Examples    int      `yaml:"examples"`
	TagMinCount int      `yaml:"tag_min_count"`
	MaxTags     int      `yaml:"max_tags"`
	Scorer      string   `yaml:"scorer"` // TFIDF, BM25
}

// AIConfig holds the LLM column advisor settings.
type AIConfig struct {
	Enabled    bool   `yaml:"enabled"`
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes YAML configuration, expanding ${VAR} references first.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 60
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 30
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Corpus.Path == "" && !c.Corpus.InMemory {
		c.Corpus.Path = "data/corpus"
	}
	if c.Import.Workers <= 0 {
		c.Import.Workers = 4
	}
	if c.Import.TimeoutMin <= 0 {
		c.Import.TimeoutMin = 30
	}
	if c.Import.CheckpointEvery <= 0 {
		c.Import.CheckpointEvery = 1000
	}
	if c.Import.MaxFileMB <= 0 {
		c.Import.MaxFileMB = 50
	}
	if c.Import.BatchSize <= 0 {
		c.Import.BatchSize = 500
	}
	if c.Columns.Fuzzy == nil {
		fuzzy := true
		c.Columns.Fuzzy = &fuzzy
	}
	if c.Search.MinScore == nil {
		minScore := 0.5
		c.Search.MinScore = &minScore
	}
	if c.Search.IndexSize <= 0 {
		c.Search.IndexSize = 1000
	}
	if c.Search.Scorer == "" {
		c.Search.Scorer = "TFIDF"
	}
	if c.AI.TimeoutSec <= 0 {
		c.AI.TimeoutSec = 20
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	switch c.Search.Scorer {
	case "TFIDF", "BM25":
		// ok
	default:
		return fmt.Errorf("search.scorer must be \"TFIDF\" or \"BM25\", got %q", c.Search.Scorer)
	}
	if c.Search.MinScore != nil && *c.Search.MinScore < 0 {
		return fmt.Errorf("search.min_score must not be negative, got %v", *c.Search.MinScore)
	}
	if c.Columns.MinConfidence < 0 || c.Columns.MinConfidence > 1 {
		return fmt.Errorf("columns.min_confidence must be within [0, 1], got %v", c.Columns.MinConfidence)
	}
	if c.AI.Enabled && c.AI.Model == "" {
		return fmt.Errorf("ai.model is required when ai.enabled is set")
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration settings
type Config struct {
	// Storage configuration
	Storage StorageConfig `yaml:"storage" mapstructure:"storage"`

	// Analysis thresholds
	Analysis AnalysisConfig `yaml:"analysis" mapstructure:"analysis"`

	// History mining settings
	History HistoryConfig `yaml:"history" mapstructure:"history"`

	// Rule validation settings
	Rules RulesConfig `yaml:"rules" mapstructure:"rules"`
}

type StorageConfig struct {
	Type        string `yaml:"type" mapstructure:"type"` // "sqlite", "postgres"
	PostgresDSN string `yaml:"postgres_dsn" mapstructure:"postgres_dsn"`
	LocalPath   string `yaml:"local_path" mapstructure:"local_path"`
}

type AnalysisConfig struct {
	TemporalThreshold  float64 `yaml:"temporal_threshold" mapstructure:"temporal_threshold"`
	GodClassComplexity int     `yaml:"god_class_complexity" mapstructure:"god_class_complexity"`
	GodClassMethods    int     `yaml:"god_class_methods" mapstructure:"god_class_methods"`
	ShotgunMinFiles    int     `yaml:"shotgun_min_files" mapstructure:"shotgun_min_files"`
	MinCoChanges       int     `yaml:"min_co_changes" mapstructure:"min_co_changes"`
	Workers            int     `yaml:"workers" mapstructure:"workers"`
}

type HistoryConfig struct {
	MaxCommits int    `yaml:"max_commits" mapstructure:"max_commits"`
	Since      string `yaml:"since" mapstructure:"since"`
	Ref        string `yaml:"ref" mapstructure:"ref"`
}

type RulesConfig struct {
	File string `yaml:"file" mapstructure:"file"`
}

// Default returns default configuration
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	return &Config{
		Storage: StorageConfig{
			Type:      "sqlite",
			LocalPath: filepath.Join(homeDir, ".depscope", "facts.db"),
		},
		Analysis: AnalysisConfig{
			TemporalThreshold:  0.3,
			GodClassComplexity: 50,
			GodClassMethods:    20,
			ShotgunMinFiles:    5,
			MinCoChanges:       2,
		},
		History: HistoryConfig{
			Ref: "HEAD",
		},
		Rules: RulesConfig{
			File: ".depscope.yml",
		},
	}
}

// Load loads configuration from file
func Load(path string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	v.SetConfigType("yaml")

	cfg := Default()
	v.SetDefault("storage", cfg.Storage)
	v.SetDefault("analysis", cfg.Analysis)
	v.SetDefault("history", cfg.History)
	v.SetDefault("rules", cfg.Rules)

	v.SetEnvPrefix("DEPSCOPE")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".depscope")
		v.AddConfigPath(".")
		homeDir, _ := os.UserHomeDir()
		v.AddConfigPath(filepath.Join(homeDir, ".depscope"))
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// loadEnvFiles loads .env files in order of precedence
func loadEnvFiles() {
	envFiles := []string{
		".env.local", // Local overrides (highest precedence)
		".env",       // Main environment file
	}

	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			godotenv.Load(file)
		}
	}

	homeDir, _ := os.UserHomeDir()
	homeEnvFile := filepath.Join(homeDir, ".depscope", ".env")
	if _, err := os.Stat(homeEnvFile); err == nil {
		godotenv.Load(homeEnvFile)
	}
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(cfg *Config) {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		cfg.Storage.Type = "postgres"
		cfg.Storage.PostgresDSN = dsn
	}
	if storageType := os.Getenv("DEPSCOPE_STORAGE_TYPE"); storageType != "" {
		cfg.Storage.Type = storageType
	}
	if dbPath := os.Getenv("DEPSCOPE_DB_PATH"); dbPath != "" {
		cfg.Storage.LocalPath = dbPath
	}
	if maxCommits := os.Getenv("DEPSCOPE_MAX_COMMITS"); maxCommits != "" {
		if n, err := strconv.Atoi(maxCommits); err == nil {
			cfg.History.MaxCommits = n
		}
	}
	if ruleFile := os.Getenv("DEPSCOPE_RULE_FILE"); ruleFile != "" {
		cfg.Rules.File = ruleFile
	}
}

// Validate checks the configuration for inconsistent settings
func (c *Config) Validate() error {
	switch c.Storage.Type {
	case "sqlite":
		if c.Storage.LocalPath == "" {
			return fmt.Errorf("storage.local_path is required for sqlite storage")
		}
	case "postgres":
		if c.Storage.PostgresDSN == "" {
			return fmt.Errorf("storage.postgres_dsn is required for postgres storage")
		}
	default:
		return fmt.Errorf("unsupported storage type %q (expected sqlite or postgres)", c.Storage.Type)
	}
	if c.Analysis.TemporalThreshold < 0 || c.Analysis.TemporalThreshold > 1 {
		return fmt.Errorf("analysis.temporal_threshold must be between 0 and 1, got %v", c.Analysis.TemporalThreshold)
	}
	return nil
}

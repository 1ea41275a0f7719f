package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "sqlite", cfg.Storage.Type)
	assert.NotEmpty(t, cfg.Storage.LocalPath)
	assert.Equal(t, 0.3, cfg.Analysis.TemporalThreshold)
	assert.Equal(t, 50, cfg.Analysis.GodClassComplexity)
	assert.Equal(t, 20, cfg.Analysis.GodClassMethods)
	assert.Equal(t, 5, cfg.Analysis.ShotgunMinFiles)
	assert.Equal(t, 2, cfg.Analysis.MinCoChanges)
	assert.Equal(t, "HEAD", cfg.History.Ref)
	assert.Equal(t, ".depscope.yml", cfg.Rules.File)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
storage:
  type: postgres
  postgres_dsn: postgres://localhost/depscope
analysis:
  temporal_threshold: 0.5
  min_co_changes: 3
history:
  max_commits: 500
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Storage.Type)
	assert.Equal(t, "postgres://localhost/depscope", cfg.Storage.PostgresDSN)
	assert.Equal(t, 0.5, cfg.Analysis.TemporalThreshold)
	assert.Equal(t, 3, cfg.Analysis.MinCoChanges)
	assert.Equal(t, 500, cfg.History.MaxCommits)

	// Unset keys keep their defaults.
	assert.Equal(t, 50, cfg.Analysis.GodClassComplexity)
	assert.Equal(t, "HEAD", cfg.History.Ref)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { os.Chdir(cwd) })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Storage.Type)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://db.internal/facts")
	t.Setenv("DEPSCOPE_MAX_COMMITS", "1000")

	cfg := Default()
	applyEnvOverrides(cfg)

	assert.Equal(t, "postgres", cfg.Storage.Type)
	assert.Equal(t, "postgres://db.internal/facts", cfg.Storage.PostgresDSN)
	assert.Equal(t, 1000, cfg.History.MaxCommits)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "default is valid",
			mutate: func(c *Config) {},
		},
		{
			name: "sqlite without path",
			mutate: func(c *Config) {
				c.Storage.LocalPath = ""
			},
			wantErr: "local_path",
		},
		{
			name: "postgres without dsn",
			mutate: func(c *Config) {
				c.Storage.Type = "postgres"
			},
			wantErr: "postgres_dsn",
		},
		{
			name: "unknown storage type",
			mutate: func(c *Config) {
				c.Storage.Type = "neo4j"
			},
			wantErr: "unsupported storage type",
		},
		{
			name: "threshold out of range",
			mutate: func(c *Config) {
				c.Analysis.TemporalThreshold = 1.5
			},
			wantErr: "temporal_threshold",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

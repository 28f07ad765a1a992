package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, 1200, cfg.MaxWorkingEdge)
	assert.Equal(t, 160, cfg.ThumbnailEdge)
	assert.Equal(t, 180*time.Millisecond, cfg.Debounce())
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := writeConfig(t, "max_working_edge: 800\ndebounce_ms: 120\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 800, cfg.MaxWorkingEdge)
	assert.Equal(t, 120, cfg.DebounceMs)
	// Untouched fields keep their defaults.
	assert.Equal(t, 160, cfg.ThumbnailEdge)
	assert.Equal(t, 90, cfg.JPEGQuality)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := writeConfig(t, "max_working_edge: [not an int\n")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := writeConfig(t, "jpeg_quality: 300\n")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(c *Config) {}, wantErr: false},
		{name: "zero working edge", mutate: func(c *Config) { c.MaxWorkingEdge = 0 }, wantErr: true},
		{name: "zero thumbnail edge", mutate: func(c *Config) { c.ThumbnailEdge = 0 }, wantErr: true},
		{name: "thumbnail above working edge", mutate: func(c *Config) { c.ThumbnailEdge = c.MaxWorkingEdge + 1 }, wantErr: true},
		{name: "zero debounce", mutate: func(c *Config) { c.DebounceMs = 0 }, wantErr: true},
		{name: "negative workers", mutate: func(c *Config) { c.Workers = -1 }, wantErr: true},
		{name: "zero workers allowed", mutate: func(c *Config) { c.Workers = 0 }, wantErr: false},
		{name: "quality too low", mutate: func(c *Config) { c.JPEGQuality = 0 }, wantErr: true},
		{name: "quality too high", mutate: func(c *Config) { c.JPEGQuality = 101 }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

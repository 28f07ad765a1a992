// Package config - pipeline configuration loaded from YAML with sane
// defaults for every knob.
package config

import (
	"os"
	"runtime"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config holds the tunable parameters of the photo adjustment pipeline.
type Config struct {
	// MaxWorkingEdge bounds the longest edge of the working copy every
	// filter/adjustment pass runs on. Only commit operates above it.
	MaxWorkingEdge int `yaml:"max_working_edge"`
	// ThumbnailEdge is the longest edge of generated filter thumbnails.
	ThumbnailEdge int `yaml:"thumbnail_edge"`
	// DebounceMs is the quiet interval after the last slider event before a
	// preview computation fires.
	DebounceMs int `yaml:"debounce_ms"`
	// Workers caps the thumbnail pool's worker goroutines. 0 means NumCPU.
	Workers int `yaml:"workers"`
	// JPEGQuality is the encode quality for committed JPEG output, 1-100.
	JPEGQuality int `yaml:"jpeg_quality"`
}

// Default returns the configuration used when no file is supplied.
func Default() Config {
	return Config{
		MaxWorkingEdge: 1200,
		ThumbnailEdge:  160,
		DebounceMs:     180,
		Workers:        runtime.NumCPU(),
		JPEGQuality:    90,
	}
}

// Debounce returns the quiet interval as a duration.
func (c Config) Debounce() time.Duration {
	return time.Duration(c.DebounceMs) * time.Millisecond
}

// Load reads configuration from a YAML file, filling unset fields from the
// defaults.
//
// Arguments:
//   - path: Path to the YAML file.
//
// Returns:
//   - Config: The merged configuration.
//   - error: An error if the file cannot be read, parsed or validated.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "config: read %s", path)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "config: parse %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects values the pipeline cannot run with.
func (c Config) Validate() error {
	if c.MaxWorkingEdge <= 0 {
		return errors.New("config: max_working_edge must be positive")
	}
	if c.ThumbnailEdge <= 0 {
		return errors.New("config: thumbnail_edge must be positive")
	}
	if c.ThumbnailEdge > c.MaxWorkingEdge {
		return errors.New("config: thumbnail_edge cannot exceed max_working_edge")
	}
	if c.DebounceMs <= 0 {
		return errors.New("config: debounce_ms must be positive")
	}
	if c.Workers < 0 {
		return errors.New("config: workers cannot be negative")
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		return errors.New("config: jpeg_quality must be within 1-100")
	}
	return nil
}

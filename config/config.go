// Package config provides configuration loading and management for semdoc.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/c360studio/semdoc/diff"
	"github.com/c360studio/semdoc/publish"
	"github.com/c360studio/semdoc/render"
	"github.com/c360studio/semdoc/watch"
	"github.com/c360studio/semdoc/word"
)

// Config represents the complete semdoc configuration
type Config struct {
	Decode  DecodeConfig  `yaml:"decode"`
	Diff    DiffConfig    `yaml:"diff"`
	Render  RenderConfig  `yaml:"render"`
	Watch   watch.Config  `yaml:"watch"`
	Archive ArchiveConfig `yaml:"archive"`
	Publish PublishConfig `yaml:"publish"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// DecodeConfig configures document assembly
type DecodeConfig struct {
	// StrictPlex rejects plex blocks whose size leaves trailing bytes
	StrictPlex bool `yaml:"strict_plex"`
	// TableStreamFallback tries the other table stream when the selected one is missing
	TableStreamFallback bool `yaml:"table_stream_fallback"`
}

// DiffConfig configures document comparison
type DiffConfig struct {
	// Parallel compares top-level structures concurrently
	Parallel bool `yaml:"parallel"`
	// Physical includes the byte-range diff
	Physical bool `yaml:"physical"`
}

// RenderConfig configures output
type RenderConfig struct {
	// Format is one of json, yaml, html, text
	Format string `yaml:"format"`
}

// ArchiveConfig configures report history
type ArchiveConfig struct {
	// Path is the sqlite file (empty = disabled)
	Path string `yaml:"path"`
}

// PublishConfig configures report publishing
type PublishConfig struct {
	// NATSURL is the server to publish to (empty = disabled)
	NATSURL string `yaml:"nats_url"`
	// Subject is the subject prefix reports are published under
	Subject string `yaml:"subject"`
	// Timeout bounds the connection attempt
	Timeout time.Duration `yaml:"timeout"`
}

// MetricsConfig configures metrics export
type MetricsConfig struct {
	// Textfile is written in the Prometheus text format after each run (empty = disabled)
	Textfile string `yaml:"textfile"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Decode: DecodeConfig{
			StrictPlex: true,
		},
		Diff: DiffConfig{
			Parallel: true,
			Physical: true,
		},
		Render: RenderConfig{
			Format: string(render.FormatText),
		},
		Watch: watch.DefaultConfig(),
		Publish: PublishConfig{
			Subject: publish.DefaultSubject,
			Timeout: 5 * time.Second,
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if _, err := render.ParseFormat(c.Render.Format); err != nil {
		return fmt.Errorf("render.format: %w", err)
	}
	if c.Watch.CacheSize < 0 {
		return fmt.Errorf("watch.cache_size must not be negative")
	}
	if c.Watch.DebounceDelay != "" {
		if d, err := time.ParseDuration(c.Watch.DebounceDelay); err != nil || d <= 0 {
			return fmt.Errorf("watch.debounce_delay must be a positive duration, got %q", c.Watch.DebounceDelay)
		}
	}
	if c.Publish.NATSURL != "" && c.Publish.Subject == "" {
		return fmt.Errorf("publish.subject is required when publish.nats_url is set")
	}
	if c.Publish.Timeout < 0 {
		return fmt.Errorf("publish.timeout must not be negative")
	}
	return nil
}

// DecodeOptions returns assembly options for this configuration
func (c *Config) DecodeOptions(logger *slog.Logger) word.Options {
	return word.Options{
		StrictPlex:          c.Decode.StrictPlex,
		TableStreamFallback: c.Decode.TableStreamFallback,
		Logger:              logger,
	}
}

// DiffOptions returns comparison options for this configuration
func (c *Config) DiffOptions(logger *slog.Logger) diff.Options {
	return diff.Options{
		Parallel: c.Diff.Parallel,
		Physical: c.Diff.Physical,
		Logger:   logger,
	}
}

// LoadFromFile loads configuration from a YAML file on top of the defaults
func LoadFromFile(path string) (*Config, error) {
	config := DefaultConfig()
	if err := config.apply(path); err != nil {
		return nil, err
	}
	return config, nil
}

// apply decodes a YAML file over c; keys absent from the file keep their
// current values, so layers can also switch booleans off.
func (c *Config) apply(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Merge merges another config into this one (other takes precedence for
// non-empty strings, lists and sizes). Booleans are not merged; set them
// through a config file layer.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Render
	if other.Render.Format != "" {
		c.Render.Format = other.Render.Format
	}

	// Watch
	if other.Watch.Reference != "" {
		c.Watch.Reference = other.Watch.Reference
	}
	if len(other.Watch.Paths) > 0 {
		c.Watch.Paths = other.Watch.Paths
	}
	if other.Watch.DebounceDelay != "" {
		c.Watch.DebounceDelay = other.Watch.DebounceDelay
	}
	if len(other.Watch.ExcludeDirs) > 0 {
		c.Watch.ExcludeDirs = other.Watch.ExcludeDirs
	}
	if other.Watch.CacheSize != 0 {
		c.Watch.CacheSize = other.Watch.CacheSize
	}

	// Archive
	if other.Archive.Path != "" {
		c.Archive.Path = other.Archive.Path
	}

	// Publish
	if other.Publish.NATSURL != "" {
		c.Publish.NATSURL = other.Publish.NATSURL
	}
	if other.Publish.Subject != "" {
		c.Publish.Subject = other.Publish.Subject
	}
	if other.Publish.Timeout != 0 {
		c.Publish.Timeout = other.Publish.Timeout
	}

	// Metrics
	if other.Metrics.Textfile != "" {
		c.Metrics.Textfile = other.Metrics.Textfile
	}
}

package watch

import "time"

const defaultDebounce = 500 * time.Millisecond

// Config configures watch mode.
type Config struct {
	// Reference is the document every changed file is compared against.
	Reference string `yaml:"reference"`

	// Paths are doublestar globs, relative to the watched root, selecting documents to compare.
	Paths []string `yaml:"paths"`

	// DebounceDelay is how long to collect changes before comparing.
	DebounceDelay string `yaml:"debounce_delay"`

	// ExcludeDirs lists directory names to skip.
	ExcludeDirs []string `yaml:"exclude_dirs"`

	// CacheSize bounds the number of decoded documents kept in memory.
	CacheSize int `yaml:"cache_size"`
}

// DefaultConfig returns default watch configuration.
func DefaultConfig() Config {
	return Config{
		Paths:         []string{"**/*.doc"},
		DebounceDelay: "500ms",
		ExcludeDirs:   []string{".git", "node_modules"},
		CacheSize:     32,
	}
}

// GetDebounceDelay returns the debounce delay as a duration.
func (c *Config) GetDebounceDelay() time.Duration {
	if c.DebounceDelay == "" {
		return defaultDebounce
	}
	d, err := time.ParseDuration(c.DebounceDelay)
	if err != nil || d <= 0 {
		return defaultDebounce
	}
	return d
}

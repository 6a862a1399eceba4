// Package config loads the fieldsim configuration from a YAML file,
// falling back to defaults when the file is absent.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML accepts "50ms" / "2s" strings
// as well as plain nanosecond integers.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}
	var n int64
	if err := value.Decode(&n); err != nil {
		return fmt.Errorf("invalid duration %q", value.Value)
	}
	*d = Duration(n)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config holds every tunable the binary reads at startup.
type Config struct {
	Seed         int64    `yaml:"seed"`
	ChunksWide   int      `yaml:"chunks_wide"`
	ChunksHigh   int      `yaml:"chunks_high"`
	Agents       int      `yaml:"agents"`
	StreamRadius int      `yaml:"stream_radius"` // Chunk-load radius around agents, in chunks
	PathBudget   int      `yaml:"path_budget"`   // A* node expansions per tick
	TickInterval Duration `yaml:"tick_interval"`
	ReportEvery  uint64   `yaml:"report_every"` // Ticks between summary reports
	JournalPath  string   `yaml:"journal_path"`
	APIPort      int      `yaml:"api_port"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Seed:         42,
		ChunksWide:   4,
		ChunksHigh:   4,
		Agents:       24,
		StreamRadius: 1,
		PathBudget:   512,
		TickInterval: Duration(50 * time.Millisecond),
		ReportEvery:  600,
		JournalPath:  "data/fieldsim.db",
		APIPort:      8080,
	}
}

// Load reads the config file at path. A missing file is not an error:
// defaults are returned. A present-but-broken file is an error.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg.validate()
}

func (c Config) validate() (Config, error) {
	if c.ChunksWide < 1 || c.ChunksHigh < 1 {
		return c, fmt.Errorf("grid must be at least 1x1 chunks, got %dx%d", c.ChunksWide, c.ChunksHigh)
	}
	if c.PathBudget < 1 {
		return c, fmt.Errorf("path_budget must be positive, got %d", c.PathBudget)
	}
	if c.StreamRadius < 0 {
		return c, fmt.Errorf("stream_radius must not be negative, got %d", c.StreamRadius)
	}
	if c.TickInterval <= 0 {
		return c, fmt.Errorf("tick_interval must be positive, got %s", c.TickInterval.Std())
	}
	return c, nil
}

// Package config loads launcher settings from an optional YAML file, the
// environment and a .env file. Command-line flags are applied on top by
// the cmd package.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/cloudchase/bitrun/engine"
	"github.com/cloudchase/bitrun/perf"
)

// DefaultPath is read when no --config flag is given and the file exists.
const DefaultPath = "bitrun.yaml"

// Config holds every setting of a launcher run.
type Config struct {
	// BuildDir is where llama-cli was built. Ignored when Binary is set.
	BuildDir string `yaml:"build_dir"`
	// Binary overrides platform path resolution.
	Binary    string `yaml:"binary"`
	ModelsDir string `yaml:"models_dir"`

	Defaults Defaults   `yaml:"defaults"`
	Markers  Markers    `yaml:"markers"`
	Labels   Labels     `yaml:"labels"`
	Log      LogConfig  `yaml:"log"`
	Metrics  MetricsCfg `yaml:"metrics"`
}

// Defaults are invocation parameters used when the matching flag is absent.
type Defaults struct {
	Model       string  `yaml:"model"`
	Threads     int     `yaml:"threads"`
	NPredict    int     `yaml:"n_predict"`
	CtxSize     int     `yaml:"ctx_size"`
	Temperature float64 `yaml:"temperature"`
}

// Markers override the llama-cli output markers.
type Markers struct {
	GenerationStart string   `yaml:"generation_start"`
	ResponsePrefix  string   `yaml:"response_prefix"`
	SystemPrefixes  []string `yaml:"system_prefixes"`
}

// Labels override the static summary labels. Use "-" to hide a label.
type Labels struct {
	Optimizations string `yaml:"optimizations"`
	Model         string `yaml:"model"`
}

// LogConfig selects the diagnostic log level and format.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsCfg controls the Prometheus textfile export.
type MetricsCfg struct {
	Textfile string `yaml:"textfile"`
}

// Default returns the built-in configuration.
func Default() Config {
	p := engine.DefaultParams()
	m := perf.DefaultMarkers()
	l := perf.DefaultLabels()
	return Config{
		BuildDir:  engine.DefaultBuildDir,
		ModelsDir: "models",
		Defaults: Defaults{
			Model:       p.Model,
			Threads:     p.Threads,
			NPredict:    p.NPredict,
			CtxSize:     p.CtxSize,
			Temperature: p.Temperature,
		},
		Markers: Markers{
			GenerationStart: m.GenerationStart,
			ResponsePrefix:  m.ResponsePrefix,
			SystemPrefixes:  m.SystemPrefixes,
		},
		Labels: Labels{
			Optimizations: l.Optimizations,
			Model:         l.Model,
		},
		Log: LogConfig{Level: "warn", Format: "console"},
	}
}

// Load builds the configuration: defaults, then the YAML file at path (or
// DefaultPath if present), then environment variables. A .env file in the
// working directory is loaded first; variables already set win over it.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	if err := cfg.mergeFile(path); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return Config{}, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// mergeFile overlays the YAML file on cfg. Keys absent from the file keep
// their current values.
func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // path is caller-provided configuration
	if err != nil {
		return fmt.Errorf("config: load %s: %w", path, err)
	}
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), c); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.BuildDir = getEnv("BITRUN_BUILD_DIR", c.BuildDir)
	c.Binary = getEnv("BITRUN_BINARY", c.Binary)
	c.ModelsDir = getEnv("BITRUN_MODELS_DIR", c.ModelsDir)
	c.Defaults.Model = getEnv("BITRUN_MODEL", c.Defaults.Model)
	c.Log.Level = getEnv("BITRUN_LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("BITRUN_LOG_FORMAT", c.Log.Format)
	c.Metrics.Textfile = getEnv("BITRUN_METRICS_TEXTFILE", c.Metrics.Textfile)

	if v := os.Getenv("BITRUN_THREADS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: BITRUN_THREADS must be an integer: %w", err)
		}
		c.Defaults.Threads = n
	}
	return nil
}

// BinaryPath returns the inference executable path for goos.
func (c Config) BinaryPath(goos string) string {
	if c.Binary != "" {
		return c.Binary
	}
	return engine.ResolveBinary(c.BuildDir, goos)
}

// Params returns the default invocation parameters from the configuration.
func (c Config) Params() engine.Params {
	return engine.Params{
		Model:       c.Defaults.Model,
		Threads:     c.Defaults.Threads,
		NPredict:    c.Defaults.NPredict,
		CtxSize:     c.Defaults.CtxSize,
		Temperature: c.Defaults.Temperature,
	}
}

// PerfConfig returns the extractor settings for a run with p.
func (c Config) PerfConfig(p engine.Params) perf.Config {
	return perf.Config{
		Threads:      p.Threads,
		Conversation: p.Conversation,
		Markers: perf.Markers{
			GenerationStart: c.Markers.GenerationStart,
			ResponsePrefix:  c.Markers.ResponsePrefix,
			SystemPrefixes:  c.Markers.SystemPrefixes,
		},
		Labels: perf.Labels{
			Optimizations: hideDash(c.Labels.Optimizations),
			Model:         hideDash(c.Labels.Model),
		},
	}
}

func hideDash(s string) string {
	if s == "-" {
		return ""
	}
	return s
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"transcriptor/internal/fileutil"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	OutputDir  string `toml:"output_dir"`
	ScratchDir string `toml:"scratch_dir"`
	StateDir   string `toml:"state_dir"`
}

// Extraction controls the fallback pipeline defaults.
type Extraction struct {
	Languages         []string `toml:"languages"`
	AllowFallback     bool     `toml:"allow_fallback"`
	CacheEnabled      bool     `toml:"cache_enabled"`
	DelaySeconds      float64  `toml:"delay_seconds"`
	BatchDelaySeconds float64  `toml:"batch_delay_seconds"`
}

// Captions configures the caption-track provider backend.
type Captions struct {
	BaseURL        string `toml:"base_url"`
	UserAgent      string `toml:"user_agent"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	MaxRetries     int    `toml:"max_retries"`
}

// YtDlp configures the subtitle-scrape provider backend.
type YtDlp struct {
	Binary         string `toml:"binary"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	// File additionally appends log records to this path when set.
	File string `toml:"file"`
}

// Metrics configures the Prometheus textfile export written after batch runs.
type Metrics struct {
	TextfilePath string `toml:"textfile_path"`
}

// Tracing configures OpenTelemetry span export. An empty endpoint keeps the
// no-op tracer provider.
type Tracing struct {
	OTLPEndpoint string `toml:"otlp_endpoint"`
	ServiceName  string `toml:"service_name"`
}

// Config encapsulates all configuration values for transcriptor.
//
// Configuration sections by subsystem:
//   - Paths: artefact output, provider scratch space, and state (history db)
//   - Extraction: language preferences, fallback, pacing, caching
//   - Captions: primary provider HTTP settings
//   - YtDlp: fallback provider binary and timeout
//   - Logging: log format and level
//   - Metrics: optional Prometheus textfile export
//   - Tracing: optional OTLP span export
type Config struct {
	Paths      Paths      `toml:"paths"`
	Extraction Extraction `toml:"extraction"`
	Captions   Captions   `toml:"captions"`
	YtDlp      YtDlp      `toml:"ytdlp"`
	Logging    Logging    `toml:"logging"`
	Metrics    Metrics    `toml:"metrics"`
	Tracing    Tracing    `toml:"tracing"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	// A missing .env is the common case; only malformed files are reported.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, "", false, fmt.Errorf("load .env: %w", err)
	}

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("transcriptor.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the output and state directories.
// The scratch directory is created lazily by the provider that uses it.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.OutputDir, c.Paths.StateDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// HistoryPath returns the sqlite database that records extraction attempts.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Paths.StateDir, "history.db")
}

// Delay converts the per-call pacing delay to a duration.
func (c *Config) Delay() time.Duration {
	return secondsToDuration(c.Extraction.DelaySeconds)
}

// BatchDelay converts the batch pacing delay to a duration.
func (c *Config) BatchDelay() time.Duration {
	return secondsToDuration(c.Extraction.BatchDelaySeconds)
}

// CaptionsTimeout returns the HTTP timeout for the caption-track backend.
func (c *Config) CaptionsTimeout() time.Duration {
	return time.Duration(c.Captions.TimeoutSeconds) * time.Second
}

// YtDlpTimeout returns the per-invocation timeout for yt-dlp.
func (c *Config) YtDlpTimeout() time.Duration {
	return time.Duration(c.YtDlp.TimeoutSeconds) * time.Second
}

func secondsToDuration(seconds float64) time.Duration {
	if seconds <= 0 {
		return 0
	}
	return time.Duration(seconds * float64(time.Second))
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func defaultStateDir() string {
	if base, ok := os.LookupEnv("XDG_STATE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "transcriptor")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "~/.local/state/transcriptor"
	}
	return filepath.Join(home, ".local", "state", "transcriptor")
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := fileutil.WriteAtomic(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

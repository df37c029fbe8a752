package testsupport

import (
	"path/filepath"
	"testing"

	"transcriptor/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Pacing delays are zeroed and the yt-dlp binary points at a path that does
// not exist, so no test reaches the network or a real binary by accident.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.OutputDir = filepath.Join(base, "output")
	cfgVal.Paths.ScratchDir = filepath.Join(base, "scratch")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Extraction.DelaySeconds = 0
	cfgVal.Extraction.BatchDelaySeconds = 0
	cfgVal.Captions.BaseURL = "http://127.0.0.1:1"
	cfgVal.Captions.MaxRetries = 0
	cfgVal.Captions.TimeoutSeconds = 5
	cfgVal.YtDlp.Binary = filepath.Join(base, "bin", "yt-dlp-missing")
	cfgVal.YtDlp.TimeoutSeconds = 10

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithCaptionsBaseURL points the caption provider at a test server.
func WithCaptionsBaseURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Captions.BaseURL = url
	}
}

// WithYtDlpBinary overrides the yt-dlp binary path.
func WithYtDlpBinary(path string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.YtDlp.Binary = path
	}
}

// WithStubYtDlp installs a shell script as the yt-dlp binary.
func WithStubYtDlp(script string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.YtDlp.Binary = WriteStubBinary(b.t, filepath.Join(b.baseDir, "bin"), "yt-dlp", script)
	}
}

// WithLanguages sets the language preference list.
func WithLanguages(langs ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Extraction.Languages = append([]string(nil), langs...)
	}
}

// WithoutFallback disables the secondary provider.
func WithoutFallback() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Extraction.AllowFallback = false
	}
}

// WithCacheDisabled turns off result memoization.
func WithCacheDisabled() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Extraction.CacheEnabled = false
	}
}

// WithMetricsTextfile enables the Prometheus textfile export.
func WithMetricsTextfile(name string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Metrics.TextfilePath = filepath.Join(b.baseDir, "metrics", name)
	}
}

package config

import (
	"fmt"
	"os"
	"strings"

	"transcriptor/internal/language"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeExtraction()
	c.normalizeCaptions()
	c.normalizeYtDlp()
	if err := c.normalizeLogging(); err != nil {
		return err
	}
	c.normalizeTracing()
	return c.normalizeMetrics()
}

func (c *Config) normalizePaths() error {
	var err error
	if value, ok := os.LookupEnv("TRANSCRIPTOR_OUTPUT_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Paths.OutputDir = strings.TrimSpace(value)
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ScratchDir) != "" {
		if c.Paths.ScratchDir, err = expandPath(c.Paths.ScratchDir); err != nil {
			return fmt.Errorf("paths.scratch_dir: %w", err)
		}
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir()
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeExtraction() {
	langs := language.Canonicalize(c.Extraction.Languages)
	if len(langs) == 0 {
		langs = append([]string(nil), DefaultLanguages...)
	}
	c.Extraction.Languages = langs
	if c.Extraction.DelaySeconds < 0 {
		c.Extraction.DelaySeconds = 0
	}
	if c.Extraction.BatchDelaySeconds < 0 {
		c.Extraction.BatchDelaySeconds = 0
	}
}

func (c *Config) normalizeCaptions() {
	c.Captions.BaseURL = strings.TrimRight(strings.TrimSpace(c.Captions.BaseURL), "/")
	if c.Captions.BaseURL == "" {
		c.Captions.BaseURL = defaultCaptionsBaseURL
	}
	c.Captions.UserAgent = strings.TrimSpace(c.Captions.UserAgent)
	if c.Captions.UserAgent == "" {
		c.Captions.UserAgent = defaultCaptionsUserAgent
	}
	if c.Captions.TimeoutSeconds <= 0 {
		c.Captions.TimeoutSeconds = defaultCaptionsTimeout
	}
}

func (c *Config) normalizeYtDlp() {
	if value, ok := os.LookupEnv("YTDLP_PATH"); ok && strings.TrimSpace(value) != "" {
		c.YtDlp.Binary = strings.TrimSpace(value)
	}
	c.YtDlp.Binary = strings.TrimSpace(c.YtDlp.Binary)
	if c.YtDlp.Binary == "" {
		c.YtDlp.Binary = defaultYtDlpBinary
	}
	if c.YtDlp.TimeoutSeconds <= 0 {
		c.YtDlp.TimeoutSeconds = defaultYtDlpTimeout
	}
}

func (c *Config) normalizeLogging() error {
	if value, ok := os.LookupEnv("TRANSCRIPTOR_LOG_LEVEL"); ok && strings.TrimSpace(value) != "" {
		c.Logging.Level = value
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if file := strings.TrimSpace(c.Logging.File); file != "" {
		expanded, err := expandPath(file)
		if err != nil {
			return fmt.Errorf("logging.file: %w", err)
		}
		c.Logging.File = expanded
	} else {
		c.Logging.File = ""
	}
	return nil
}

func (c *Config) normalizeMetrics() error {
	path := strings.TrimSpace(c.Metrics.TextfilePath)
	if path == "" {
		c.Metrics.TextfilePath = ""
		return nil
	}
	expanded, err := expandPath(path)
	if err != nil {
		return fmt.Errorf("metrics.textfile_path: %w", err)
	}
	c.Metrics.TextfilePath = expanded
	return nil
}

func (c *Config) normalizeTracing() {
	if value, ok := os.LookupEnv("OTEL_EXPORTER_OTLP_ENDPOINT"); ok && strings.TrimSpace(value) != "" && c.Tracing.OTLPEndpoint == "" {
		c.Tracing.OTLPEndpoint = value
	}
	c.Tracing.OTLPEndpoint = strings.TrimSpace(c.Tracing.OTLPEndpoint)
	c.Tracing.ServiceName = strings.TrimSpace(c.Tracing.ServiceName)
	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = defaultServiceName
	}
}

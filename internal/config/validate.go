package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateExtraction(); err != nil {
		return err
	}
	if err := c.validateCaptions(); err != nil {
		return err
	}
	if err := c.validateYtDlp(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		return errors.New("paths.output_dir must be set")
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		return errors.New("paths.state_dir must be set")
	}
	return nil
}

func (c *Config) validateExtraction() error {
	if len(c.Extraction.Languages) == 0 {
		return errors.New("extraction.languages must include at least one language")
	}
	if c.Extraction.DelaySeconds < 0 {
		return errors.New("extraction.delay_seconds must be >= 0")
	}
	if c.Extraction.BatchDelaySeconds < 0 {
		return errors.New("extraction.batch_delay_seconds must be >= 0")
	}
	return nil
}

func (c *Config) validateCaptions() error {
	parsed, err := url.Parse(c.Captions.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("captions.base_url must be an absolute URL, got %q", c.Captions.BaseURL)
	}
	if c.Captions.TimeoutSeconds <= 0 {
		return errors.New("captions.timeout_seconds must be positive")
	}
	if c.Captions.MaxRetries < 0 {
		return errors.New("captions.max_retries must be >= 0")
	}
	return nil
}

func (c *Config) validateYtDlp() error {
	if strings.TrimSpace(c.YtDlp.Binary) == "" {
		return errors.New("ytdlp.binary must be set")
	}
	if c.YtDlp.TimeoutSeconds <= 0 {
		return errors.New("ytdlp.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
}

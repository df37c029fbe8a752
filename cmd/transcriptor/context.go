package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"transcriptor/internal/config"
	"transcriptor/internal/history"
	"transcriptor/internal/logging"
	"transcriptor/internal/tracing"
)

const tracingFlushTimeout = 5 * time.Second

// errReported marks failures whose message was already written to the user.
var errReported = errors.New("failure already reported")

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configSeen bool
	configErr  error
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
			cfg.Logging.Level = strings.ToLower(strings.TrimSpace(*c.logLevelFlag))
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.configSeen = exists
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

// logger builds a logger writing to the command's stderr so stdout carries
// only transcript output.
func (c *commandContext) logger(cmd *cobra.Command) (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return newLogger(cfg, cmd.ErrOrStderr())
}

func newLogger(cfg *config.Config, w io.Writer) (*slog.Logger, error) {
	logger, err := logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Writer: w,
		File:   cfg.Logging.File,
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return logger, nil
}

// openHistory opens the history database. Failure is logged and yields a
// nil store; extraction proceeds without recording.
func (c *commandContext) openHistory(logger *slog.Logger) *history.Store {
	cfg := c.configValue()
	if cfg == nil {
		return nil
	}
	store, err := history.Open(cfg.HistoryPath())
	if err != nil {
		logging.WarnWithContext(logger, "history unavailable", "history_open_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "delete "+cfg.HistoryPath()+" if the schema is outdated"),
			logging.String(logging.FieldImpact, "this run will not be recorded in transcriptor history"),
		)
		return nil
	}
	return store
}

// startTracing enables span export when configured. The returned func
// flushes pending spans and must be called before exit.
func (c *commandContext) startTracing(cmd *cobra.Command, logger *slog.Logger) func() {
	cfg := c.configValue()
	if cfg == nil {
		return func() {}
	}
	shutdown, err := tracing.Init(cmd.Context(), cfg.Tracing, logger)
	if err != nil {
		logging.WarnWithContext(logger, "tracing disabled", "tracing_init_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check tracing.otlp_endpoint or OTEL_EXPORTER_OTLP_ENDPOINT"),
			logging.String(logging.FieldImpact, "spans for this run will not be exported"),
		)
	}
	return func() {
		flushCtx, cancel := context.WithTimeout(context.WithoutCancel(cmd.Context()), tracingFlushTimeout)
		defer cancel()
		if err := shutdown(flushCtx); err != nil {
			logger.Debug("span flush failed", logging.Error(err))
		}
	}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

package extract

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"transcriptor/internal/config"
	"transcriptor/internal/logging"
	"transcriptor/internal/providers/captions"
	"transcriptor/internal/providers/ytdlp"
	"transcriptor/internal/transcript"
)

// Option customizes the assembled extractor.
type Option func(*options)

type options struct {
	observers     []transcript.Observer
	httpClient    *http.Client
	ytdlpOptions  []ytdlp.Option
	extractorOpts []transcript.Option
}

// WithObserver registers an observer. Multiple observers are fanned out in
// registration order.
func WithObserver(observer transcript.Observer) Option {
	return func(o *options) {
		if observer != nil {
			o.observers = append(o.observers, observer)
		}
	}
}

// WithHTTPClient overrides the client used by the caption backend.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) { o.httpClient = client }
}

// WithYtDlpOptions passes extra options to the fallback provider.
func WithYtDlpOptions(opts ...ytdlp.Option) Option {
	return func(o *options) { o.ytdlpOptions = append(o.ytdlpOptions, opts...) }
}

// WithExtractorOptions passes extra options to transcript.New.
func WithExtractorOptions(opts ...transcript.Option) Option {
	return func(o *options) { o.extractorOpts = append(o.extractorOpts, opts...) }
}

// Providers builds the primary and fallback providers described by cfg.
func Providers(cfg *config.Config, logger *slog.Logger, opts ...Option) (transcript.Provider, transcript.Provider, error) {
	if cfg == nil {
		return nil, nil, fmt.Errorf("extract: config is nil")
	}
	o := collect(opts)
	client := o.httpClient
	if client == nil {
		client = &http.Client{
			Timeout:   cfg.CaptionsTimeout(),
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	backend, err := captions.NewHTTPBackend(captions.Config{
		BaseURL:    cfg.Captions.BaseURL,
		UserAgent:  cfg.Captions.UserAgent,
		Timeout:    cfg.CaptionsTimeout(),
		MaxRetries: cfg.Captions.MaxRetries,
		HTTPClient: client,
		Logger:     logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("caption backend: %w", err)
	}
	primary := captions.New(backend, logger)

	ytOpts := append([]ytdlp.Option{
		ytdlp.WithScratchRoot(cfg.Paths.ScratchDir),
		ytdlp.WithTimeout(cfg.YtDlpTimeout()),
		ytdlp.WithLogger(logger),
	}, o.ytdlpOptions...)
	fallback := ytdlp.New(cfg.YtDlp.Binary, ytOpts...)
	if !fallback.Available() {
		logging.NewComponentLogger(logger, "extract").Debug("yt-dlp fallback unavailable",
			logging.String("binary", cfg.YtDlp.Binary),
		)
	}
	return primary, fallback, nil
}

// NewFromConfig builds an Extractor wired to the configured providers.
func NewFromConfig(cfg *config.Config, logger *slog.Logger, opts ...Option) (*transcript.Extractor, error) {
	primary, fallback, err := Providers(cfg, logger, opts...)
	if err != nil {
		return nil, err
	}
	o := collect(opts)
	extractorOpts := []transcript.Option{transcript.WithLogger(logger)}
	if !cfg.Extraction.CacheEnabled {
		extractorOpts = append(extractorOpts, transcript.WithCacheDisabled())
	}
	if observer := transcript.MultiObserver(o.observers...); observer != nil {
		extractorOpts = append(extractorOpts, transcript.WithObserver(observer))
	}
	extractorOpts = append(extractorOpts, o.extractorOpts...)
	return transcript.New(primary, fallback, extractorOpts...), nil
}

// ExtractOptions derives per-call options from cfg.
func ExtractOptions(cfg *config.Config) transcript.ExtractOptions {
	return transcript.ExtractOptions{
		Languages:     append([]string(nil), cfg.Extraction.Languages...),
		AllowFallback: cfg.Extraction.AllowFallback,
		Delay:         cfg.Delay(),
	}
}

// BatchOptions derives batch options from cfg.
func BatchOptions(cfg *config.Config) transcript.BatchOptions {
	opts := transcript.DefaultBatchOptions()
	opts.Languages = append([]string(nil), cfg.Extraction.Languages...)
	opts.AllowFallback = cfg.Extraction.AllowFallback
	opts.Delay = cfg.BatchDelay()
	return opts
}

// Fetch extracts a transcript with default providers and caching disabled.
// Languages default to English variants when none are given.
func Fetch(ctx context.Context, reference string, languages ...string) transcript.Result {
	cfg := config.Default()
	cfg.Extraction.CacheEnabled = false
	extractor, err := NewFromConfig(&cfg, nil)
	if err != nil {
		return transcript.Failure("", "", transcript.KindProviderUnavailable, err.Error())
	}
	opts := transcript.DefaultExtractOptions()
	opts.Languages = languages
	return extractor.Extract(ctx, reference, opts)
}

func collect(opts []Option) options {
	var o options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

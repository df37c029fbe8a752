package transcript

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"transcriptor/internal/logging"
	"transcriptor/internal/services"
	"transcriptor/internal/textutil"
	"transcriptor/internal/videoid"
)

const tracerName = "transcriptor/internal/transcript"

// DefaultLanguages is the preference list used when callers supply none.
var DefaultLanguages = []string{"en", "en-US", "en-GB"}

// Sleeper blocks for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Extractor coordinates resolution, provider fallback, normalization, and caching.
type Extractor struct {
	primary  Provider
	fallback Provider
	cache    *Cache
	logger   *slog.Logger
	observer Observer
	tracer   trace.Tracer
	sleep    Sleeper
	now      func() time.Time
}

// Option customizes an Extractor.
type Option func(*Extractor)

// WithLogger sets the logger used for pipeline events.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		if logger != nil {
			e.logger = logging.NewComponentLogger(logger, "extractor")
		}
	}
}

// WithCacheDisabled turns off memoization.
func WithCacheDisabled() Option {
	return func(e *Extractor) { e.cache = nil }
}

// WithObserver registers an observer notified after every extraction.
func WithObserver(observer Observer) Option {
	return func(e *Extractor) { e.observer = observer }
}

// WithTracer overrides the OpenTelemetry tracer.
func WithTracer(tracer trace.Tracer) Option {
	return func(e *Extractor) {
		if tracer != nil {
			e.tracer = tracer
		}
	}
}

// WithSleeper replaces the pacing delay implementation.
func WithSleeper(sleeper Sleeper) Option {
	return func(e *Extractor) {
		if sleeper != nil {
			e.sleep = sleeper
		}
	}
}

// New constructs an Extractor. fallback may be nil.
func New(primary, fallback Provider, opts ...Option) *Extractor {
	e := &Extractor{
		primary:  primary,
		fallback: fallback,
		cache:    NewCache(),
		logger:   logging.NewComponentLogger(nil, "extractor"),
		tracer:   otel.Tracer(tracerName),
		sleep:    SleepWithContext,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Cache exposes the result cache, or nil when caching is disabled.
func (e *Extractor) Cache() *Cache {
	return e.cache
}

// ExtractOptions tunes a single extraction.
type ExtractOptions struct {
	Languages     []string
	AllowFallback bool
	Delay         time.Duration
}

// DefaultExtractOptions enables fallback with no pacing delay.
func DefaultExtractOptions() ExtractOptions {
	return ExtractOptions{AllowFallback: true}
}

// Extract runs the pipeline for one reference. It never returns an error;
// failures are described by the envelope.
func (e *Extractor) Extract(ctx context.Context, reference string, opts ExtractOptions) Result {
	if ctx == nil {
		ctx = context.Background()
	}
	start := e.now()
	ctx, span := e.tracer.Start(ctx, "transcript.extract",
		trace.WithAttributes(attribute.String("transcript.reference", reference)))
	defer span.End()

	logger := logging.WithContext(ctx, e.logger)
	var attempts []Attempt
	result := e.run(ctx, logger, reference, opts, &attempts)
	elapsed := e.now().Sub(start)

	span.SetAttributes(
		attribute.String("transcript.video_id", string(result.VideoID)),
		attribute.String("transcript.method", result.Method),
		attribute.Bool("transcript.success", result.Success),
		attribute.Bool("transcript.from_cache", result.FromCache),
	)
	if result.Success {
		span.SetStatus(codes.Ok, "")
		logger.Info("transcript extracted",
			logging.VideoID(string(result.VideoID)),
			logging.String("method", result.Method),
			logging.Int("char_count", result.CharCount),
			logging.Int("word_count", result.WordCount),
			logging.Bool("from_cache", result.FromCache),
			logging.Duration("duration", elapsed),
		)
	} else {
		span.SetAttributes(attribute.String("transcript.error_kind", string(result.ErrorKind)))
		span.SetStatus(codes.Error, result.Error)
		logging.WarnWithContext(logger, "transcript extraction failed", "extraction_failed",
			logging.VideoID(string(result.VideoID)),
			logging.ErrorKind(string(result.ErrorKind)),
			logging.String("error", result.Error),
			logging.String(logging.FieldErrorHint, result.ErrorKind.Hint()),
			logging.String(logging.FieldImpact, "no transcript produced for this reference"),
		)
	}

	if e.observer != nil {
		e.observer.ObserveExtraction(ctx, Event{
			Reference: reference,
			Result:    result.Clone(),
			Attempts:  attempts,
			Elapsed:   elapsed,
		})
	}
	return result
}

func (e *Extractor) run(ctx context.Context, logger *slog.Logger, reference string, opts ExtractOptions, attempts *[]Attempt) Result {
	if opts.Delay > 0 {
		logger.Debug("pacing before extraction", logging.Duration("delay", opts.Delay))
		if err := e.sleep(ctx, opts.Delay); err != nil {
			return cancelled(err)
		}
	}
	if err := ctx.Err(); err != nil {
		return cancelled(err)
	}

	id, err := videoid.Resolve(reference)
	if err != nil {
		return Failure("", "", KindInvalidReference, err.Error())
	}

	if cached, ok := e.cache.Lookup(id); ok {
		logger.Debug("transcript cache hit", logging.VideoID(string(id)))
		cached.FromCache = true
		return cached
	}

	result := e.attempt(ctx, logger, e.primary, id, opts.Languages, attempts)
	if !result.Success && opts.AllowFallback && e.fallback != nil {
		logging.WarnWithContext(logger, "primary provider failed; trying fallback", "provider_fallback",
			logging.VideoID(string(id)),
			logging.String(logging.FieldProvider, providerName(e.primary)),
			logging.ErrorKind(string(result.ErrorKind)),
			logging.String("error", result.Error),
			logging.String(logging.FieldErrorHint, result.ErrorKind.Hint()),
			logging.String(logging.FieldImpact, "falling back to "+providerName(e.fallback)),
		)
		result = e.attempt(ctx, logger, e.fallback, id, fallbackLanguages(opts.Languages), attempts)
	}

	if result.Success {
		result.Transcript = textutil.Normalize(result.Transcript)
		result.CharCount = textutil.CharCount(result.Transcript)
		result.WordCount = textutil.WordCount(result.Transcript)
		result.ErrorKind = ""
		result.Error = ""
		e.cache.Store(id, result)
	}
	result.FromCache = false
	return result
}

func (e *Extractor) attempt(ctx context.Context, logger *slog.Logger, p Provider, id videoid.ID, languages []string, attempts *[]Attempt) Result {
	name := providerName(p)
	ctx = services.WithProvider(ctx, name)
	ctx, span := e.tracer.Start(ctx, "transcript.provider",
		trace.WithAttributes(
			attribute.String("transcript.provider", name),
			attribute.String("transcript.video_id", string(id)),
		))
	defer span.End()

	logger = logger.With(logging.String(logging.FieldProvider, name))
	logger.Debug("invoking provider", logging.VideoID(string(id)), logging.Any("languages", languages))

	start := e.now()
	result := safeFetch(ctx, p, id, languages)
	elapsed := e.now().Sub(start)
	*attempts = append(*attempts, Attempt{Provider: name, Result: result.Clone(), Elapsed: elapsed})

	if result.Success {
		span.SetStatus(codes.Ok, "")
		logger.Debug("provider succeeded", logging.Duration("duration", elapsed))
	} else {
		span.SetAttributes(attribute.String("transcript.error_kind", string(result.ErrorKind)))
		span.SetStatus(codes.Error, result.Error)
		logger.Debug("provider failed",
			logging.ErrorKind(string(result.ErrorKind)),
			logging.String("error", result.Error),
			logging.Duration("duration", elapsed),
		)
	}
	return result
}

// fallbackLanguages narrows preferences to the first entry; the fallback
// provider only downloads one subtitle track.
func fallbackLanguages(languages []string) []string {
	if len(languages) == 0 {
		return nil
	}
	return languages[:1:1]
}

func cancelled(err error) Result {
	msg := "extraction cancelled"
	if err != nil && !errors.Is(err, context.Canceled) {
		msg = fmt.Sprintf("extraction cancelled: %v", err)
	}
	return Failure("", "", KindUnexpected, msg)
}

// SleepWithContext waits for d, returning early with the context error if ctx ends first.
func SleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

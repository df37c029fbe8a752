package transcript

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"transcriptor/internal/logging"
	"transcriptor/internal/services"
)

// DefaultBatchDelay paces consecutive batch items.
const DefaultBatchDelay = time.Second

// BatchOptions tunes ExtractMany.
type BatchOptions struct {
	Delay         time.Duration
	Languages     []string
	AllowFallback bool
	// Progress is called before each item with its 1-based position.
	Progress func(current, total int)
}

// DefaultBatchOptions enables fallback with a one-second pacing delay.
func DefaultBatchOptions() BatchOptions {
	return BatchOptions{Delay: DefaultBatchDelay, AllowFallback: true}
}

// Summary tallies a batch run.
type Summary struct {
	Total     int
	Succeeded int
	Failed    int
	FromCache int
}

// Summarize counts outcomes across results.
func Summarize(results []Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		if r.Success {
			s.Succeeded++
			if r.FromCache {
				s.FromCache++
			}
		} else {
			s.Failed++
		}
	}
	return s
}

// ExtractMany processes references sequentially in input order. A failed item
// never stops the run, and the output always has one envelope per reference.
func (e *Extractor) ExtractMany(ctx context.Context, references []string, opts BatchOptions) []Result {
	if ctx == nil {
		ctx = context.Background()
	}
	total := len(references)
	ctx, span := e.tracer.Start(ctx, "transcript.batch",
		trace.WithAttributes(attribute.Int("transcript.batch_size", total)))
	defer span.End()

	logger := logging.WithContext(ctx, e.logger)
	logger.Info("batch extraction started",
		logging.Int("total", total),
		logging.Duration("delay", opts.Delay),
	)

	results := make([]Result, 0, total)
	for i, reference := range references {
		if opts.Progress != nil {
			opts.Progress(i+1, total)
		}
		itemCtx := services.WithItemIndex(ctx, i+1)
		results = append(results, e.Extract(itemCtx, reference, ExtractOptions{
			Languages:     opts.Languages,
			AllowFallback: opts.AllowFallback,
			Delay:         opts.Delay,
		}))
	}

	summary := Summarize(results)
	span.SetAttributes(
		attribute.Int("transcript.batch_succeeded", summary.Succeeded),
		attribute.Int("transcript.batch_failed", summary.Failed),
	)
	logger.Info("batch extraction finished",
		logging.Int("total", summary.Total),
		logging.Int("succeeded", summary.Succeeded),
		logging.Int("failed", summary.Failed),
		logging.Int("cache_hits", summary.FromCache),
	)
	return results
}

package history

import (
	"context"
	"log/slog"

	"transcriptor/internal/logging"
	"transcriptor/internal/services"
	"transcriptor/internal/transcript"
)

// Recorder persists extraction events. It implements transcript.Observer.
type Recorder struct {
	store  *Store
	logger *slog.Logger
}

// NewRecorder wraps store. A nil store yields a recorder that drops events.
func NewRecorder(store *Store, logger *slog.Logger) *Recorder {
	return &Recorder{
		store:  store,
		logger: logging.NewComponentLogger(logger, "history"),
	}
}

// ObserveExtraction implements transcript.Observer. Storage failures are
// logged and never surface to the extraction caller.
func (r *Recorder) ObserveExtraction(ctx context.Context, event transcript.Event) {
	if r == nil || r.store == nil {
		return
	}
	entry := EntryFromEvent(event)
	if runID, ok := services.RequestIDFromContext(ctx); ok {
		entry.RunID = runID
	}
	// The extraction itself may have been cancelled; the record should still land.
	if _, err := r.store.Record(context.WithoutCancel(ctx), entry); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, r.logger), "failed to record extraction history", "history_record_failed",
			logging.VideoID(entry.VideoID),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check permissions on "+r.store.Path()),
			logging.String(logging.FieldImpact, "this attempt will not appear in transcriptor history"),
		)
	}
}

// EntryFromEvent converts an extraction event into a history entry.
func EntryFromEvent(event transcript.Event) Entry {
	result := event.Result
	entry := Entry{
		Reference: event.Reference,
		VideoID:   string(result.VideoID),
		Success:   result.Success,
		Method:    result.Method,
		FromCache: result.FromCache,
		CharCount: result.CharCount,
		WordCount: result.WordCount,
		ErrorKind: result.ErrorKind,
		Error:     result.Error,
		Elapsed:   event.Elapsed,
	}
	for _, attempt := range event.Attempts {
		entry.Attempts = append(entry.Attempts, AttemptRecord{
			Provider:  attempt.Provider,
			Success:   attempt.Result.Success,
			ErrorKind: attempt.Result.ErrorKind,
			Error:     attempt.Result.Error,
			ElapsedMS: attempt.Elapsed.Milliseconds(),
		})
	}
	return entry
}

package transcript

import (
	"context"
	"time"
)

// Attempt records one provider invocation within an extraction.
type Attempt struct {
	Provider string
	Result   Result
	Elapsed  time.Duration
}

// Event summarizes a completed extraction.
type Event struct {
	Reference string
	Result    Result
	Attempts  []Attempt
	Elapsed   time.Duration
}

// Observer is notified once per completed extraction.
type Observer interface {
	ObserveExtraction(ctx context.Context, event Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(ctx context.Context, event Event)

func (f ObserverFunc) ObserveExtraction(ctx context.Context, event Event) {
	f(ctx, event)
}

type multiObserver []Observer

func (m multiObserver) ObserveExtraction(ctx context.Context, event Event) {
	for _, o := range m {
		o.ObserveExtraction(ctx, event)
	}
}

// MultiObserver fans an event out to every non-nil observer.
func MultiObserver(observers ...Observer) Observer {
	filtered := make(multiObserver, 0, len(observers))
	for _, o := range observers {
		if o != nil {
			filtered = append(filtered, o)
		}
	}
	switch len(filtered) {
	case 0:
		return nil
	case 1:
		return filtered[0]
	default:
		return filtered
	}
}

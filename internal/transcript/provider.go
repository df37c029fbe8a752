package transcript

import (
	"context"
	"fmt"

	"transcriptor/internal/videoid"
)

// Provider retrieves a raw transcript for a validated identifier. Expected
// failures are reported in the returned envelope, never as panics or errors.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, id videoid.ID, languages []string) Result
}

// Recover converts a panic inside a provider into a KindUnexpected envelope.
// Use it as `defer transcript.Recover(&result, id, name)` with a named result.
func Recover(result *Result, id videoid.ID, method string) {
	if r := recover(); r != nil {
		*result = Failure(id, method, KindUnexpected, fmt.Sprintf("Unexpected error: %v", r))
	}
}

func safeFetch(ctx context.Context, p Provider, id videoid.ID, languages []string) (result Result) {
	if p == nil {
		return Failure(id, "", KindProviderUnavailable, "provider not configured")
	}
	name := p.Name()
	defer Recover(&result, id, name)
	result = p.Fetch(ctx, id, languages)
	if result.Method == "" {
		result.Method = name
	}
	if result.VideoID == "" {
		result.VideoID = id
	}
	return result
}

func providerName(p Provider) string {
	if p == nil {
		return "none"
	}
	return p.Name()
}

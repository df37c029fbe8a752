package captions

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"transcriptor/internal/language"
	"transcriptor/internal/logging"
	"transcriptor/internal/transcript"
	"transcriptor/internal/videoid"
)

// Name identifies transcripts produced by this provider.
const Name = "youtube-transcript-api"

// Backend fetches caption data for a video.
type Backend interface {
	FetchTranscript(ctx context.Context, id videoid.ID, languages []string) ([]transcript.Segment, error)
	ListTranscripts(ctx context.Context, id videoid.ID) ([]transcript.TrackInfo, error)
}

// Provider adapts a Backend to transcript.Provider.
type Provider struct {
	backend Backend
	logger  *slog.Logger
}

// New constructs a Provider. A nil backend yields provider_unavailable results.
func New(backend Backend, logger *slog.Logger) *Provider {
	return &Provider{
		backend: backend,
		logger:  logging.NewComponentLogger(logger, "captions"),
	}
}

// Name implements transcript.Provider.
func (p *Provider) Name() string { return Name }

// Fetch implements transcript.Provider.
func (p *Provider) Fetch(ctx context.Context, id videoid.ID, languages []string) (result transcript.Result) {
	defer transcript.Recover(&result, id, Name)
	if p == nil || p.backend == nil {
		return transcript.Failure(id, Name, transcript.KindProviderUnavailable, "caption backend not configured")
	}

	langs := language.Canonicalize(languages)
	if len(langs) == 0 {
		langs = append([]string(nil), transcript.DefaultLanguages...)
	}

	segments, err := p.backend.FetchTranscript(ctx, id, langs)
	if err != nil {
		return classify(id, langs, err)
	}

	texts := make([]string, 0, len(segments))
	for _, seg := range segments {
		texts = append(texts, seg.Text)
	}
	result = transcript.Result{
		Success:      true,
		VideoID:      id,
		Transcript:   strings.Join(texts, " "),
		Method:       Name,
		SegmentCount: transcript.IntPtr(len(segments)),
	}

	// Track listing is informational; its failure never fails the extraction.
	tracks, err := p.backend.ListTranscripts(ctx, id)
	if err != nil {
		p.logger.Debug("caption track listing failed",
			logging.VideoID(string(id)),
			logging.Error(err),
		)
		return result
	}
	result.AvailableTranscripts = tracks
	return result
}

func classify(id videoid.ID, langs []string, err error) transcript.Result {
	switch {
	case errors.Is(err, ErrTranscriptsDisabled):
		return transcript.Failure(id, Name, transcript.KindTranscriptsDisabled, "Transcripts are disabled for this video")
	case errors.Is(err, ErrNoTranscript):
		return transcript.Failure(id, Name, transcript.KindNoTranscriptFound,
			"No transcript found in requested languages: "+strings.Join(langs, ", "))
	case errors.Is(err, ErrVideoUnavailable):
		return transcript.Failure(id, Name, transcript.KindMediaUnavailable, "Video is unavailable")
	default:
		return transcript.Failure(id, Name, transcript.KindUnexpected, "Unexpected error: "+err.Error())
	}
}

package captions

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"transcriptor/internal/logging"
	"transcriptor/internal/services"
	"transcriptor/internal/transcript"
	"transcriptor/internal/videoid"
)

const (
	defaultBaseURL     = "https://www.youtube.com"
	defaultUserAgent   = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
	defaultHTTPTimeout = 30 * time.Second
	defaultMaxRetries  = 3
	maxWatchPageBytes  = 6 << 20
	maxTimedTextBytes  = 2 << 20
	// playerReuseWindow bounds how long a parsed watch page, and the signed
	// track URLs inside it, is reused.
	playerReuseWindow = 30 * time.Second
)

// Config describes the HTTP caption backend.
type Config struct {
	BaseURL        string
	UserAgent      string
	Timeout        time.Duration
	MaxRetries     int
	InitialBackoff time.Duration
	HTTPClient     *http.Client
	Logger         *slog.Logger
}

// HTTPBackend scrapes caption tracks from watch pages.
type HTTPBackend struct {
	baseURL        *url.URL
	userAgent      string
	client         *http.Client
	maxRetries     int
	initialBackoff time.Duration
	logger         *slog.Logger

	now func() time.Time

	mu         sync.Mutex
	lastID     videoid.ID
	lastPlayer *playerResponse
	lastLoaded time.Time
}

// NewHTTPBackend creates a backend from the supplied configuration.
func NewHTTPBackend(cfg Config) (*HTTPBackend, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = defaultBaseURL
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("captions: parse base url: %w", err)
	}
	if baseURL.Scheme == "" || baseURL.Host == "" {
		return nil, fmt.Errorf("captions: base url %q must be absolute", base)
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultHTTPTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = defaultMaxRetries
	}
	backoff := cfg.InitialBackoff
	if backoff <= 0 {
		backoff = defaultInitialBackoff
	}
	return &HTTPBackend{
		baseURL:        baseURL,
		userAgent:      userAgent,
		client:         client,
		maxRetries:     maxRetries,
		initialBackoff: backoff,
		logger:         logging.NewComponentLogger(cfg.Logger, "captions-http"),
		now:            time.Now,
	}, nil
}

// FetchTranscript implements Backend.
func (b *HTTPBackend) FetchTranscript(ctx context.Context, id videoid.ID, languages []string) ([]transcript.Segment, error) {
	player, err := b.player(ctx, id, false)
	if err != nil {
		return nil, err
	}
	track, err := pickTrack(player.tracks(), languages)
	if err != nil {
		return nil, err
	}
	b.logger.Debug("caption track selected",
		logging.VideoID(string(id)),
		logging.String("language_code", track.LanguageCode),
		logging.Bool("generated", track.generated()),
	)
	trackURL, err := b.baseURL.Parse(track.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse caption track url: %w", err)
	}
	body, err := b.get(ctx, "timedtext", trackURL.String(), maxTimedTextBytes)
	if err != nil {
		return nil, err
	}
	return parseTimedText(body)
}

// ListTranscripts implements Backend.
func (b *HTTPBackend) ListTranscripts(ctx context.Context, id videoid.ID) ([]transcript.TrackInfo, error) {
	player, err := b.player(ctx, id, true)
	if err != nil {
		return nil, err
	}
	tracks := player.tracks()
	infos := make([]transcript.TrackInfo, 0, len(tracks))
	for _, track := range tracks {
		infos = append(infos, track.info())
	}
	return infos, nil
}

// player loads and parses the watch page. The most recent response is reused
// for playerReuseWindow so FetchTranscript followed by ListTranscripts costs
// one page load. consume drops the reused response once it has been read.
func (b *HTTPBackend) player(ctx context.Context, id videoid.ID, consume bool) (*playerResponse, error) {
	b.mu.Lock()
	if b.lastPlayer != nil && b.lastID == id && b.now().Sub(b.lastLoaded) < playerReuseWindow {
		cached := b.lastPlayer
		if consume {
			b.lastPlayer = nil
		}
		b.mu.Unlock()
		return cached, nil
	}
	b.lastPlayer = nil
	b.mu.Unlock()

	watchURL := b.baseURL.JoinPath("watch")
	watchURL.RawQuery = url.Values{"v": {string(id)}}.Encode()
	body, err := b.get(ctx, "watch page", watchURL.String(), maxWatchPageBytes)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return nil, fmt.Errorf("%w: %v", ErrVideoUnavailable, err)
		}
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse watch page: %w", err)
	}
	player, err := parsePlayerResponse(doc)
	if err != nil {
		return nil, err
	}
	if err := player.checkPlayable(); err != nil {
		return nil, err
	}

	if !consume {
		b.mu.Lock()
		b.lastID = id
		b.lastPlayer = player
		b.lastLoaded = b.now()
		b.mu.Unlock()
	}
	return player, nil
}

func (b *HTTPBackend) get(ctx context.Context, operation, target string, limit int64) ([]byte, error) {
	resp, err := b.doWithRetry(ctx, operation, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", b.userAgent)
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")
		return req, nil
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", operation, err)
	}
	return body, nil
}

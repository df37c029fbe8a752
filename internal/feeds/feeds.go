package feeds

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"transcriptor/internal/logging"
	"transcriptor/internal/videoid"
)

const defaultBaseURL = "https://www.youtube.com"

// Entry is one video announced by a feed.
type Entry struct {
	VideoID   videoid.ID
	Title     string
	Link      string
	Published *time.Time
}

// Reader fetches and parses feeds.
type Reader struct {
	parser  *gofeed.Parser
	baseURL string
	logger  *slog.Logger
}

// Option configures a Reader.
type Option func(*Reader)

// WithHTTPClient sets the client used for feed downloads.
func WithHTTPClient(client *http.Client) Option {
	return func(r *Reader) {
		if client != nil {
			r.parser.Client = client
		}
	}
}

// WithUserAgent overrides the request user agent.
func WithUserAgent(agent string) Option {
	return func(r *Reader) {
		if agent = strings.TrimSpace(agent); agent != "" {
			r.parser.UserAgent = agent
		}
	}
}

// WithBaseURL changes the host used to expand bare channel and playlist ids.
func WithBaseURL(base string) Option {
	return func(r *Reader) {
		if base = strings.TrimRight(strings.TrimSpace(base), "/"); base != "" {
			r.baseURL = base
		}
	}
}

// WithLogger sets the reader logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reader) { r.logger = logging.NewComponentLogger(logger, "feeds") }
}

// NewReader constructs a Reader.
func NewReader(opts ...Option) *Reader {
	r := &Reader{
		parser:  gofeed.NewParser(),
		baseURL: defaultBaseURL,
		logger:  logging.NewComponentLogger(nil, "feeds"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// FeedURL expands a channel or playlist id into its feed URL. Full URLs are
// returned unchanged.
func (r *Reader) FeedURL(source string) (string, error) {
	source = strings.TrimSpace(source)
	switch {
	case source == "":
		return "", fmt.Errorf("feed source is empty")
	case strings.Contains(source, "://"):
		return source, nil
	case strings.HasPrefix(source, "UC"):
		return r.baseURL + "/feeds/videos.xml?channel_id=" + url.QueryEscape(source), nil
	case strings.HasPrefix(source, "PL"), strings.HasPrefix(source, "UU"):
		return r.baseURL + "/feeds/videos.xml?playlist_id=" + url.QueryEscape(source), nil
	default:
		return "", fmt.Errorf("unrecognized feed source %q: pass a feed URL, channel id, or playlist id", source)
	}
}

// Fetch downloads the feed for source and returns at most limit entries in
// feed order. A non-positive limit returns every entry.
func (r *Reader) Fetch(ctx context.Context, source string, limit int) ([]Entry, error) {
	feedURL, err := r.FeedURL(source)
	if err != nil {
		return nil, err
	}
	feed, err := r.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed %s: %w", feedURL, err)
	}
	return r.entries(feed, limit)
}

// Parse reads a feed document from an io.Reader, such as a saved file.
func (r *Reader) Parse(in io.Reader, limit int) ([]Entry, error) {
	feed, err := r.parser.Parse(in)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}
	return r.entries(feed, limit)
}

func (r *Reader) entries(feed *gofeed.Feed, limit int) ([]Entry, error) {
	if feed == nil || len(feed.Items) == 0 {
		return nil, fmt.Errorf("feed contains no items")
	}
	seen := make(map[videoid.ID]struct{}, len(feed.Items))
	entries := make([]Entry, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		id, ok := itemVideoID(item)
		if !ok {
			r.logger.Debug("skipping feed item without video id",
				logging.String("item_title", item.Title),
				logging.String("item_url", item.Link),
			)
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		entries = append(entries, Entry{
			VideoID:   id,
			Title:     strings.TrimSpace(item.Title),
			Link:      item.Link,
			Published: item.PublishedParsed,
		})
		if limit > 0 && len(entries) == limit {
			break
		}
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("no video links found in feed items")
	}
	return entries, nil
}

// itemVideoID prefers the yt:videoId extension and falls back to the link.
func itemVideoID(item *gofeed.Item) (videoid.ID, bool) {
	if ext, ok := item.Extensions["yt"]; ok {
		for _, value := range ext["videoId"] {
			if videoid.Valid(value.Value) {
				return videoid.ID(value.Value), true
			}
		}
	}
	if item.Link == "" {
		return "", false
	}
	id, err := videoid.Resolve(item.Link)
	if err != nil {
		return "", false
	}
	return id, true
}

// References converts entries into watch URLs suitable for a batch run.
func References(entries []Entry) []string {
	refs := make([]string, 0, len(entries))
	for _, entry := range entries {
		refs = append(refs, videoid.WatchURL(entry.VideoID))
	}
	return refs
}

package ytdlp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"transcriptor/internal/deps"
	"transcriptor/internal/logging"
	"transcriptor/internal/services"
	"transcriptor/internal/transcript"
	"transcriptor/internal/videoid"
)

// Name identifies transcripts produced by this provider.
const Name = "yt-dlp"

const (
	defaultLanguage = "en"
	defaultTimeout  = 2 * time.Minute
)

// Option configures the provider.
type Option func(*Provider)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(p *Provider) {
		if exec != nil {
			p.exec = exec
		}
	}
}

// WithStatus overrides the binary availability check.
func WithStatus(status deps.Status) Option {
	return func(p *Provider) {
		p.status = &status
	}
}

// WithScratchRoot sets the parent directory for per-fetch scratch space.
// An empty root uses the OS temp directory.
func WithScratchRoot(dir string) Option {
	return func(p *Provider) { p.scratchRoot = strings.TrimSpace(dir) }
}

// WithTimeout bounds each yt-dlp invocation.
func WithTimeout(timeout time.Duration) Option {
	return func(p *Provider) {
		if timeout > 0 {
			p.timeout = timeout
		}
	}
}

// WithLogger sets the provider logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Provider) { p.logger = logging.NewComponentLogger(logger, "yt-dlp") }
}

// Provider implements transcript.Provider with yt-dlp subtitle downloads.
type Provider struct {
	binary      string
	exec        Executor
	status      *deps.Status
	scratchRoot string
	timeout     time.Duration
	logger      *slog.Logger
}

// New constructs a Provider. Unless WithStatus is supplied, the binary is
// looked up on PATH once here; a missing binary yields provider_unavailable
// results without spawning anything.
func New(binary string, opts ...Option) *Provider {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = Name
	}
	p := &Provider{
		binary:  binary,
		exec:    commandExecutor{},
		timeout: defaultTimeout,
		logger:  logging.NewComponentLogger(nil, "yt-dlp"),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.status == nil {
		status := deps.CheckYtDlp(binary)
		p.status = &status
	}
	return p
}

// Name implements transcript.Provider.
func (p *Provider) Name() string { return Name }

// Available reports whether the yt-dlp binary was found.
func (p *Provider) Available() bool {
	return p != nil && p.status != nil && p.status.Available
}

// Fetch implements transcript.Provider.
func (p *Provider) Fetch(ctx context.Context, id videoid.ID, languages []string) (result transcript.Result) {
	defer transcript.Recover(&result, id, Name)
	if !p.Available() {
		detail := "binary not found"
		if p != nil && p.status != nil && p.status.Detail != "" {
			detail = p.status.Detail
		}
		return transcript.Failure(id, Name, transcript.KindProviderUnavailable,
			"yt-dlp not installed ("+detail+"); install it from https://github.com/yt-dlp/yt-dlp")
	}

	lang := defaultLanguage
	if len(languages) > 0 && strings.TrimSpace(languages[0]) != "" {
		lang = strings.TrimSpace(languages[0])
	}

	scratch, err := os.MkdirTemp(p.scratchRoot, "transcriptor-"+string(id)+"-")
	if err != nil {
		return failed(id, fmt.Errorf("create scratch dir: %w", err))
	}
	defer os.RemoveAll(scratch)

	runCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	args := buildArgs(id, lang, scratch)
	p.logger.Debug("running yt-dlp",
		logging.VideoID(string(id)),
		logging.String("scratch_dir", scratch),
		logging.Any("args", args),
	)
	stdout, stderr, err := p.exec.Run(runCtx, p.binary, args)
	if err != nil {
		detail := lastLine(stderr)
		if isMediaUnavailable(detail) {
			return transcript.Failure(id, Name, transcript.KindMediaUnavailable, "Video is unavailable: "+detail)
		}
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			err = services.Wrap(services.ErrTimeout, Name, "run", fmt.Sprintf("exceeded %s", p.timeout), err)
		} else {
			err = services.Wrap(services.ErrExternalTool, Name, "run", detail, err)
		}
		return failed(id, err)
	}

	meta := parseInfo(stdout)
	path, ok := findSubtitle(scratch, id, lang)
	if !ok {
		failure := transcript.Failure(id, Name, transcript.KindNoSubtitles, "No subtitles available for this video")
		failure.Title = meta.Title
		failure.DurationSeconds = meta.Duration
		return failure
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return failed(id, fmt.Errorf("read subtitle file: %w", err))
	}
	lines := ParseVTT(data)
	return transcript.Result{
		Success:         true,
		VideoID:         id,
		Transcript:      strings.Join(lines, " "),
		Method:          Name,
		SegmentCount:    transcript.IntPtr(len(lines)),
		Title:           meta.Title,
		DurationSeconds: meta.Duration,
	}
}

func failed(id videoid.ID, err error) transcript.Result {
	return transcript.Failure(id, Name, transcript.KindUnexpected, "yt-dlp extraction failed: "+err.Error())
}

func buildArgs(id videoid.ID, lang, scratch string) []string {
	return []string{
		"--skip-download",
		"--write-subs",
		"--write-auto-subs",
		"--sub-langs", lang,
		"--sub-format", "vtt",
		"--no-simulate",
		"--dump-json",
		"--no-warnings",
		"--quiet",
		"-o", filepath.Join(scratch, "%(id)s.%(ext)s"),
		videoid.WatchURL(id),
	}
}

type info struct {
	Title    string  `json:"title"`
	Duration float64 `json:"duration"`
}

// parseInfo decodes the last JSON line of --dump-json output. Missing or
// malformed metadata is not an error; the subtitle file is what matters.
func parseInfo(stdout []byte) info {
	var meta info
	lines := strings.Split(string(stdout), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(line, "{") {
			continue
		}
		if err := json.Unmarshal([]byte(line), &meta); err == nil {
			return meta
		}
	}
	return meta
}

// findSubtitle locates <id>.<lang>.vtt, accepting yt-dlp's suffixed variants
// such as <id>.<lang>-orig.vtt.
func findSubtitle(dir string, id videoid.ID, lang string) (string, bool) {
	exact := filepath.Join(dir, fmt.Sprintf("%s.%s.vtt", id, lang))
	if fi, err := os.Stat(exact); err == nil && !fi.IsDir() {
		return exact, true
	}
	matches, err := filepath.Glob(filepath.Join(dir, fmt.Sprintf("%s.%s*.vtt", id, lang)))
	if err != nil || len(matches) == 0 {
		return "", false
	}
	return matches[0], true
}

var unavailableMarkers = []string{
	"video unavailable",
	"private video",
	"this video has been removed",
	"this video is not available",
	"account associated with this video has been terminated",
}

func isMediaUnavailable(message string) bool {
	lower := strings.ToLower(message)
	for _, marker := range unavailableMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func lastLine(output []byte) string {
	lines := strings.Split(strings.TrimSpace(string(output)), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}

package captions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

type testTrack struct {
	lang      string
	name      string
	kind      string
	path      string
	poToken   bool
	timedText string
}

type watchServer struct {
	server     *httptest.Server
	pageHits   atomic.Int32
	trackHits  atomic.Int32
	failFirstN int32
	status     string
	reason     string
	tracks     []testTrack
	noCaptions bool
}

func newWatchServer(t *testing.T, ws *watchServer) *watchServer {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/watch", func(w http.ResponseWriter, r *http.Request) {
		hit := ws.pageHits.Add(1)
		if hit <= ws.failFirstN {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		if r.URL.Query().Get("v") != string(testID) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprintf(w, "<html><head><script>var other = {};</script><script>var ytInitialPlayerResponse = %s;var meta = {};</script></head><body></body></html>", ws.playerJSON(t))
	})
	for _, track := range ws.tracks {
		mux.HandleFunc(track.path, func(w http.ResponseWriter, r *http.Request) {
			ws.trackHits.Add(1)
			w.Header().Set("Content-Type", "text/xml")
			fmt.Fprint(w, track.timedText)
		})
	}
	ws.server = httptest.NewServer(mux)
	t.Cleanup(ws.server.Close)
	return ws
}

func (ws *watchServer) playerJSON(t *testing.T) string {
	t.Helper()
	status := ws.status
	if status == "" {
		status = "OK"
	}
	payload := map[string]any{
		"playabilityStatus": map[string]any{"status": status, "reason": ws.reason},
		"videoDetails":      map[string]any{"title": "Test video"},
	}
	if !ws.noCaptions {
		tracks := make([]map[string]any, 0, len(ws.tracks))
		for _, track := range ws.tracks {
			base := track.path + "?v=" + string(testID) + "&lang=" + track.lang
			if track.poToken {
				base += "&exp=xpe"
			}
			entry := map[string]any{
				"baseUrl":      base,
				"languageCode": track.lang,
				"name":         map[string]any{"simpleText": track.name},
			}
			if track.kind != "" {
				entry["kind"] = track.kind
			}
			tracks = append(tracks, entry)
		}
		payload["captions"] = map[string]any{
			"playerCaptionsTracklistRenderer": map[string]any{"captionTracks": tracks},
		}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal player: %v", err)
	}
	return string(data)
}

func newTestBackend(t *testing.T, baseURL string) *HTTPBackend {
	t.Helper()
	backend, err := NewHTTPBackend(Config{BaseURL: baseURL, MaxRetries: 2, InitialBackoff: time.Millisecond})
	if err != nil {
		t.Fatalf("NewHTTPBackend: %v", err)
	}
	return backend
}

const helloTimedText = `<?xml version="1.0" encoding="utf-8" ?><transcript><text start="0.0" dur="1.5">Hello</text><text start="1.5" dur="2">world &amp;#39;s</text><text start="3.5" dur="1"> </text></transcript>`

func TestFetchTranscriptPrefersManualTrack(t *testing.T) {
	ws := newWatchServer(t, &watchServer{tracks: []testTrack{
		{lang: "en", name: "English (auto-generated)", kind: "asr", path: "/api/asr", timedText: `<transcript><text start="0" dur="1">auto</text></transcript>`},
		{lang: "en", name: "English", path: "/api/manual", timedText: helloTimedText},
	}})
	backend := newTestBackend(t, ws.server.URL)

	segments, err := backend.FetchTranscript(context.Background(), testID, []string{"en"})
	if err != nil {
		t.Fatalf("FetchTranscript: %v", err)
	}
	if len(segments) != 2 {
		t.Fatalf("expected empty cue skipped, got %d segments", len(segments))
	}
	if segments[0].Text != "Hello" || segments[1].Text != "world 's" {
		t.Fatalf("unexpected segments: %#v", segments)
	}
	if segments[1].Start != 1500*time.Millisecond || segments[1].Duration != 2*time.Second {
		t.Fatalf("unexpected timing: %#v", segments[1])
	}
}

func TestFetchTranscriptFollowsLanguageOrder(t *testing.T) {
	ws := newWatchServer(t, &watchServer{tracks: []testTrack{
		{lang: "en", name: "English", path: "/api/en", timedText: `<transcript><text>english</text></transcript>`},
		{lang: "de", name: "Deutsch", path: "/api/de", timedText: `<transcript><text>deutsch</text></transcript>`},
	}})
	backend := newTestBackend(t, ws.server.URL)

	segments, err := backend.FetchTranscript(context.Background(), testID, []string{"de", "en"})
	if err != nil {
		t.Fatalf("FetchTranscript: %v", err)
	}
	if segments[0].Text != "deutsch" {
		t.Fatalf("expected German track, got %q", segments[0].Text)
	}
}

func TestFetchTranscriptSkipsPoTokenTracks(t *testing.T) {
	ws := newWatchServer(t, &watchServer{tracks: []testTrack{
		{lang: "en", name: "English", path: "/api/locked", poToken: true, timedText: `<transcript><text>locked</text></transcript>`},
		{lang: "en", name: "English (auto-generated)", kind: "asr", path: "/api/open", timedText: `<transcript><text>open</text></transcript>`},
	}})
	backend := newTestBackend(t, ws.server.URL)

	segments, err := backend.FetchTranscript(context.Background(), testID, []string{"en"})
	if err != nil {
		t.Fatalf("FetchTranscript: %v", err)
	}
	if segments[0].Text != "open" {
		t.Fatalf("expected usable generated track, got %q", segments[0].Text)
	}
}

func TestFetchTranscriptErrors(t *testing.T) {
	tests := []struct {
		name   string
		server *watchServer
		want   error
	}{
		{"no captions", &watchServer{noCaptions: true}, ErrTranscriptsDisabled},
		{"empty tracks", &watchServer{}, ErrTranscriptsDisabled},
		{"language mismatch", &watchServer{tracks: []testTrack{{lang: "fr", path: "/api/fr", timedText: "<transcript/>"}}}, ErrNoTranscript},
		{"private", &watchServer{status: "ERROR", reason: "Private video"}, ErrVideoUnavailable},
		{"login", &watchServer{status: "LOGIN_REQUIRED"}, ErrVideoUnavailable},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ws := newWatchServer(t, tc.server)
			backend := newTestBackend(t, ws.server.URL)
			_, err := backend.FetchTranscript(context.Background(), testID, []string{"en"})
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestFetchTranscriptNotFoundIsUnavailable(t *testing.T) {
	ws := newWatchServer(t, &watchServer{})
	backend := newTestBackend(t, ws.server.URL)
	_, err := backend.FetchTranscript(context.Background(), "AAAAAAAAAAA", []string{"en"})
	if !errors.Is(err, ErrVideoUnavailable) {
		t.Fatalf("expected video unavailable for 404, got %v", err)
	}
	if ws.pageHits.Load() != 1 {
		t.Fatalf("expected 404 not to be retried, got %d hits", ws.pageHits.Load())
	}
}

func TestFetchTranscriptRetriesTransientStatus(t *testing.T) {
	ws := newWatchServer(t, &watchServer{
		failFirstN: 2,
		tracks:     []testTrack{{lang: "en", path: "/api/en", timedText: helloTimedText}},
	})
	backend := newTestBackend(t, ws.server.URL)

	if _, err := backend.FetchTranscript(context.Background(), testID, []string{"en"}); err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if ws.pageHits.Load() != 3 {
		t.Fatalf("expected 3 page hits, got %d", ws.pageHits.Load())
	}
}

func TestFetchTranscriptGivesUpAfterRetries(t *testing.T) {
	ws := newWatchServer(t, &watchServer{failFirstN: 10})
	backend := newTestBackend(t, ws.server.URL)

	_, err := backend.FetchTranscript(context.Background(), testID, []string{"en"})
	if err == nil || !strings.Contains(err.Error(), "status 503") {
		t.Fatalf("expected 503 failure, got %v", err)
	}
	if ws.pageHits.Load() != 3 {
		t.Fatalf("expected 1 attempt plus 2 retries, got %d", ws.pageHits.Load())
	}
}

func TestListTranscriptsReusesPageLoad(t *testing.T) {
	ws := newWatchServer(t, &watchServer{tracks: []testTrack{
		{lang: "en", name: "English", path: "/api/en", timedText: helloTimedText},
		{lang: "en", name: "English (auto-generated)", kind: "asr", path: "/api/asr", timedText: helloTimedText},
		{lang: "de", path: "/api/de", timedText: helloTimedText},
	}})
	backend := newTestBackend(t, ws.server.URL)

	if _, err := backend.FetchTranscript(context.Background(), testID, []string{"en"}); err != nil {
		t.Fatalf("FetchTranscript: %v", err)
	}
	tracks, err := backend.ListTranscripts(context.Background(), testID)
	if err != nil {
		t.Fatalf("ListTranscripts: %v", err)
	}
	if ws.pageHits.Load() != 1 {
		t.Fatalf("expected one watch page load, got %d", ws.pageHits.Load())
	}
	if len(tracks) != 3 {
		t.Fatalf("expected 3 tracks, got %d", len(tracks))
	}
	if tracks[1].IsGenerated != true || tracks[0].IsGenerated {
		t.Fatalf("unexpected generated flags: %#v", tracks)
	}
	if tracks[2].Language != "German" {
		t.Fatalf("expected display name fallback, got %q", tracks[2].Language)
	}
}

func TestWatchPageReuseIsBounded(t *testing.T) {
	ws := newWatchServer(t, &watchServer{tracks: []testTrack{
		{lang: "en", name: "English", path: "/api/en", timedText: helloTimedText},
	}})
	backend := newTestBackend(t, ws.server.URL)
	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	backend.now = func() time.Time { return clock }
	ctx := context.Background()

	if _, err := backend.FetchTranscript(ctx, testID, []string{"en"}); err != nil {
		t.Fatalf("FetchTranscript: %v", err)
	}
	if _, err := backend.ListTranscripts(ctx, testID); err != nil {
		t.Fatalf("ListTranscripts: %v", err)
	}
	if _, err := backend.ListTranscripts(ctx, testID); err != nil {
		t.Fatalf("second ListTranscripts: %v", err)
	}
	if got := ws.pageHits.Load(); got != 2 {
		t.Fatalf("expected listing to consume the reused page, got %d loads", got)
	}

	if _, err := backend.FetchTranscript(ctx, testID, []string{"en"}); err != nil {
		t.Fatalf("FetchTranscript: %v", err)
	}
	clock = clock.Add(playerReuseWindow)
	if _, err := backend.FetchTranscript(ctx, testID, []string{"en"}); err != nil {
		t.Fatalf("FetchTranscript after window: %v", err)
	}
	if got := ws.pageHits.Load(); got != 4 {
		t.Fatalf("expected a fresh page load after the reuse window, got %d loads", got)
	}
}

func TestFetchTranscriptHonoursCancellation(t *testing.T) {
	ws := newWatchServer(t, &watchServer{})
	backend := newTestBackend(t, ws.server.URL)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := backend.FetchTranscript(ctx, testID, []string{"en"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	if ws.pageHits.Load() != 0 {
		t.Fatal("expected no request after cancellation")
	}
}

func TestNewHTTPBackendRejectsRelativeURL(t *testing.T) {
	if _, err := NewHTTPBackend(Config{BaseURL: "youtube.com"}); err == nil {
		t.Fatal("expected error for relative base url")
	}
}

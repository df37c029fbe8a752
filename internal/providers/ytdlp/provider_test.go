package ytdlp

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"transcriptor/internal/deps"
	"transcriptor/internal/transcript"
	"transcriptor/internal/videoid"
)

const testID = videoid.ID("dQw4w9WgXcQ")

type fakeExecutor struct {
	files  map[string]string
	stdout string
	stderr string
	err    error
	args   []string
	panic  bool
}

func (f *fakeExecutor) Run(_ context.Context, _ string, args []string) ([]byte, []byte, error) {
	if f.panic {
		panic("executor exploded")
	}
	f.args = append([]string(nil), args...)
	dir := ""
	for i, arg := range args {
		if arg == "-o" && i+1 < len(args) {
			dir = filepath.Dir(args[i+1])
		}
	}
	for name, content := range f.files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			return nil, nil, err
		}
	}
	return []byte(f.stdout), []byte(f.stderr), f.err
}

const sampleVTT = "WEBVTT\nKind: captions\nLanguage: en\n\n" +
	"1\n00:00:00.000 --> 00:00:01.500\nHello <c>there</c>\n\n" +
	"00:00:01.500 --> 00:00:03.000 align:start position:0%\nHello there\ngeneral Kenobi\n\n"

func newTestProvider(t *testing.T, exec Executor) *Provider {
	t.Helper()
	return New("yt-dlp",
		WithExecutor(exec),
		WithStatus(deps.Status{Name: "yt-dlp", Available: true}),
		WithScratchRoot(t.TempDir()),
	)
}

func TestFetchSuccess(t *testing.T) {
	exec := &fakeExecutor{
		files:  map[string]string{"dQw4w9WgXcQ.en.vtt": sampleVTT},
		stdout: `{"id":"dQw4w9WgXcQ","title":"Never Gonna","duration":212}` + "\n",
	}
	p := newTestProvider(t, exec)

	result := p.Fetch(context.Background(), testID, nil)
	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
	if result.Transcript != "Hello there general Kenobi" {
		t.Fatalf("unexpected transcript %q", result.Transcript)
	}
	if result.Method != Name {
		t.Fatalf("expected method %q, got %q", Name, result.Method)
	}
	if result.Title != "Never Gonna" || result.DurationSeconds != 212 {
		t.Fatalf("unexpected metadata: title=%q duration=%v", result.Title, result.DurationSeconds)
	}
	if result.SegmentCount == nil || *result.SegmentCount != 2 {
		t.Fatalf("unexpected segment count %v", result.SegmentCount)
	}
	for _, want := range []string{"--skip-download", "--write-auto-subs", "--dump-json", "en", "https://www.youtube.com/watch?v=dQw4w9WgXcQ"} {
		if !slices.Contains(exec.args, want) {
			t.Fatalf("expected arg %q in %v", want, exec.args)
		}
	}
}

func TestFetchUsesFirstRequestedLanguage(t *testing.T) {
	exec := &fakeExecutor{files: map[string]string{"dQw4w9WgXcQ.de.vtt": sampleVTT}}
	p := newTestProvider(t, exec)

	result := p.Fetch(context.Background(), testID, []string{"de", "en"})
	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
	idx := slices.Index(exec.args, "--sub-langs")
	if idx < 0 || exec.args[idx+1] != "de" {
		t.Fatalf("expected --sub-langs de, got %v", exec.args)
	}
}

func TestFetchAcceptsSuffixedSubtitleFile(t *testing.T) {
	exec := &fakeExecutor{files: map[string]string{"dQw4w9WgXcQ.en-orig.vtt": sampleVTT}}
	p := newTestProvider(t, exec)
	if result := p.Fetch(context.Background(), testID, []string{"en"}); !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
}

func TestFetchNoSubtitles(t *testing.T) {
	exec := &fakeExecutor{stdout: `{"title":"Silent"}`}
	p := newTestProvider(t, exec)

	result := p.Fetch(context.Background(), testID, nil)
	if result.Success {
		t.Fatal("expected failure")
	}
	if result.ErrorKind != transcript.KindNoSubtitles {
		t.Fatalf("expected no_subtitles_available, got %q", result.ErrorKind)
	}
	if result.Error != "No subtitles available for this video" {
		t.Fatalf("unexpected message %q", result.Error)
	}
	if result.Title != "Silent" {
		t.Fatalf("expected title to survive failure, got %q", result.Title)
	}
}

func TestFetchRunnerFailures(t *testing.T) {
	tests := []struct {
		name       string
		stderr     string
		wantKind   transcript.Kind
		wantPrefix string
	}{
		{"unavailable", "ERROR: [youtube] dQw4w9WgXcQ: Video unavailable", transcript.KindMediaUnavailable, "Video is unavailable"},
		{"private", "ERROR: [youtube] dQw4w9WgXcQ: Private video. Sign in", transcript.KindMediaUnavailable, "Video is unavailable"},
		{"other", "ERROR: unable to download webpage", transcript.KindUnexpected, "yt-dlp extraction failed: "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := &fakeExecutor{stderr: tt.stderr, err: errors.New("exit status 1")}
			p := newTestProvider(t, exec)
			result := p.Fetch(context.Background(), testID, nil)
			if result.ErrorKind != tt.wantKind {
				t.Fatalf("expected kind %q, got %q (%s)", tt.wantKind, result.ErrorKind, result.Error)
			}
			if !strings.HasPrefix(result.Error, tt.wantPrefix) {
				t.Fatalf("expected message prefix %q, got %q", tt.wantPrefix, result.Error)
			}
		})
	}
}

func TestFetchUnavailableBinary(t *testing.T) {
	exec := &fakeExecutor{}
	p := New("yt-dlp", WithExecutor(exec), WithStatus(deps.Status{Detail: `binary "yt-dlp" not found`}))

	result := p.Fetch(context.Background(), testID, nil)
	if result.ErrorKind != transcript.KindProviderUnavailable {
		t.Fatalf("expected provider_unavailable, got %q", result.ErrorKind)
	}
	if !strings.HasPrefix(result.Error, "yt-dlp not installed") {
		t.Fatalf("unexpected message %q", result.Error)
	}
	if exec.args != nil {
		t.Fatal("executor should not run when binary is missing")
	}
}

func TestFetchRecoversPanic(t *testing.T) {
	p := newTestProvider(t, &fakeExecutor{panic: true})
	result := p.Fetch(context.Background(), testID, nil)
	if result.ErrorKind != transcript.KindUnexpected {
		t.Fatalf("expected unexpected failure, got %+v", result)
	}
}

func TestFetchRemovesScratchDir(t *testing.T) {
	root := t.TempDir()
	exec := &fakeExecutor{files: map[string]string{"dQw4w9WgXcQ.en.vtt": sampleVTT}}
	p := New("yt-dlp", WithExecutor(exec), WithStatus(deps.Status{Available: true}), WithScratchRoot(root))

	if result := p.Fetch(context.Background(), testID, nil); !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatalf("read scratch root: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected scratch root to be empty, found %d entries", len(entries))
	}
}

func TestFetchWithStubBinary(t *testing.T) {
	dir := t.TempDir()
	script := `#!/bin/sh
out=""
while [ $# -gt 0 ]; do
  if [ "$1" = "-o" ]; then out="$2"; shift; fi
  shift
done
dir=$(dirname "$out")
printf 'WEBVTT\n\n00:00:00.000 --> 00:00:01.000\nHello\n\n00:00:01.000 --> 00:00:02.000\nworld\n' > "$dir/dQw4w9WgXcQ.en.vtt"
echo '{"id":"dQw4w9WgXcQ","title":"Stub","duration":3}'
`
	binary := filepath.Join(dir, "yt-dlp")
	if err := os.WriteFile(binary, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	p := New(binary, WithScratchRoot(t.TempDir()), WithTimeout(10*time.Second))
	if !p.Available() {
		t.Fatal("expected stub binary to be available")
	}

	result := p.Fetch(context.Background(), testID, []string{"en"})
	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
	if result.Transcript != "Hello world" || result.Title != "Stub" {
		t.Fatalf("unexpected result %+v", result)
	}
}

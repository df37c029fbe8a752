package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"transcriptor/internal/transcript"
)

func TestExtractPrintsTranscriptAndSavesFiles(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"https://www.youtube.com/watch?v=dQw4w9WgXcQ"}, env.configPath)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	requireContains(t, out, "Video ID: dQw4w9WgXcQ")
	requireContains(t, out, "Method: youtube-transcript-api")
	requireContains(t, out, "Characters: 11")
	requireContains(t, out, "Words: 2")
	requireContains(t, out, "Hello world")

	transcriptPath := filepath.Join(env.cfg.Paths.OutputDir, "dQw4w9WgXcQ_transcript.txt")
	requireContains(t, out, "Transcript saved to: "+transcriptPath)
	data, err := os.ReadFile(transcriptPath)
	if err != nil {
		t.Fatalf("read transcript: %v", err)
	}
	if string(data) != "Hello world" {
		t.Fatalf("unexpected transcript file %q", data)
	}
	if _, err := os.Stat(filepath.Join(env.cfg.Paths.OutputDir, "dQw4w9WgXcQ_metadata.json")); err != nil {
		t.Fatalf("expected metadata file: %v", err)
	}
}

func TestExtractFailureReportsError(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"not-a-video"}, env.configPath)
	if !errors.Is(err, errReported) {
		t.Fatalf("expected errReported, got %v", err)
	}
	requireContains(t, out, "Failed to extract transcript")
	requireContains(t, out, "Error: invalid video id: not-a-video")
}

func TestExtractJSONOutput(t *testing.T) {
	env := setupCLITestEnv(t)
	outputDir := filepath.Join(env.baseDir, "custom-out")

	out, _, err := runCLI(t, []string{"--json", "--output-dir", outputDir, "dQw4w9WgXcQ"}, env.configPath)
	if err != nil {
		t.Fatalf("extract --json: %v", err)
	}
	var result transcript.Result
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("decode json output: %v\n%s", err, out)
	}
	if !result.Success || result.Transcript != "Hello world" || result.WordCount != 2 {
		t.Fatalf("unexpected result %+v", result)
	}
	if _, err := os.Stat(filepath.Join(outputDir, "dQw4w9WgXcQ_transcript.txt")); err != nil {
		t.Fatalf("expected transcript in --output-dir: %v", err)
	}
}

func TestExtractNoFallbackKeepsPrimaryError(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"--no-fallback", "--lang", "fr", "dQw4w9WgXcQ"}, env.configPath)
	if !errors.Is(err, errReported) {
		t.Fatalf("expected errReported, got %v", err)
	}
	requireContains(t, out, "Error: No transcript found in requested languages: fr")
}

func TestRootRejectsExtraArguments(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, []string{"dQw4w9WgXcQ", "abcdefghijk"}, env.configPath); err == nil {
		t.Fatal("expected error for two positional references")
	}
}

func TestRootWithoutArgumentsShowsHelpAndFails(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, nil, env.configPath)
	if !errors.Is(err, errMissingReference) {
		t.Fatalf("expected errMissingReference, got %v", err)
	}
	requireContains(t, out, "transcriptor [reference]")
}

func TestRootAcceptsDashLeadingIDAfterSeparator(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"--", "-abcdefghij"}, env.configPath)
	if !errors.Is(err, errReported) {
		t.Fatalf("expected extraction failure to be reported, got %v", err)
	}
	requireContains(t, out, "Failed to extract transcript")
	if strings.Contains(out, "invalid video id") {
		t.Fatalf("expected -abcdefghij to resolve as an id, got %q", out)
	}
}

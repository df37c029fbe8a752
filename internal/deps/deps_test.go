package deps

import (
	"os"
	"path/filepath"
	"testing"
)

func writeStub(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

func TestCheckBinaries(t *testing.T) {
	present := writeStub(t, t.TempDir(), "present")
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Blank", Command: "  "},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	if !results[0].Available {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[0].Path != present {
		t.Fatalf("expected resolved path %q, got %q", present, results[0].Path)
	}
	if results[0].Detail != "" {
		t.Fatalf("unexpected detail for available dependency: %s", results[0].Detail)
	}
	if results[1].Available {
		t.Fatalf("expected missing binary to be unavailable")
	}
	if results[1].Detail == "" {
		t.Fatalf("expected detail message for missing binary")
	}
	if results[1].Command != "clearly-not-present-binary" {
		t.Fatalf("unexpected command recorded: %s", results[1].Command)
	}
	if results[2].Available || results[2].Detail != "command not configured" {
		t.Fatalf("unexpected status for blank command: %#v", results[2])
	}
}

func TestCheckYtDlpUsesPath(t *testing.T) {
	binDir := t.TempDir()
	writeStub(t, binDir, "yt-dlp")
	t.Setenv("PATH", binDir)

	status := CheckYtDlp("yt-dlp")
	if !status.Available {
		t.Fatalf("expected yt-dlp stub to be found, got %#v", status)
	}
	if status.Name != YtDlpName {
		t.Fatalf("unexpected name: %s", status.Name)
	}
}

func TestMissingIgnoresOptional(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	statuses := CheckBinaries(Requirements("yt-dlp"))
	missing := Missing(statuses)
	if len(missing) != 1 || missing[0].Name != YtDlpName {
		t.Fatalf("expected only yt-dlp reported missing, got %#v", missing)
	}
}

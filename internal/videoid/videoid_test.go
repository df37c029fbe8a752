package videoid

import (
	"errors"
	"strings"
	"testing"
)

func TestResolveAcceptedForms(t *testing.T) {
	const id = "dQw4w9WgXcQ"
	tests := []struct {
		name      string
		reference string
	}{
		{"bare", id},
		{"bare padded", "  " + id + "\n"},
		{"watch url", "https://www.youtube.com/watch?v=" + id},
		{"watch url extra params", "https://www.youtube.com/watch?v=" + id + "&t=42s&list=PL123"},
		{"watch url param order", "https://www.youtube.com/watch?feature=share&v=" + id},
		{"mobile", "https://m.youtube.com/watch?v=" + id},
		{"short link", "https://youtu.be/" + id},
		{"short link query", "youtu.be/" + id + "?si=abc"},
		{"embed", "https://www.youtube.com/embed/" + id},
		{"nocookie embed", "https://www.youtube-nocookie.com/embed/" + id},
		{"shorts", "https://www.youtube.com/shorts/" + id},
		{"foreign host", "https://example.com/watch?v=" + id},
		{"no scheme", "www.youtube.com/watch?v=" + id},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Resolve(tc.reference)
			if err != nil {
				t.Fatalf("Resolve(%q) error: %v", tc.reference, err)
			}
			if got != ID(id) {
				t.Fatalf("Resolve(%q) = %q, want %q", tc.reference, got, id)
			}
		})
	}
}

func TestResolveRejects(t *testing.T) {
	tests := []string{
		"",
		"   ",
		"short",
		"dQw4w9WgXcQX",
		"dQw4w9WgXc!",
		"https://www.youtube.com/",
		"https://www.youtube.com/watch?v=short",
		"not a url at all",
	}
	for _, reference := range tests {
		t.Run(reference, func(t *testing.T) {
			_, err := Resolve(reference)
			if err == nil {
				t.Fatalf("expected Resolve(%q) to fail", reference)
			}
			if !errors.Is(err, ErrInvalidReference) {
				t.Fatalf("expected ErrInvalidReference, got %v", err)
			}
			if !strings.Contains(err.Error(), "invalid video id") {
				t.Fatalf("unexpected message: %v", err)
			}
		})
	}
}

func TestResolveRoundTripsValidIDs(t *testing.T) {
	for _, id := range []string{"dQw4w9WgXcQ", "___________", "-----------", "A1b2C3d4E5f"} {
		got, err := Resolve(id)
		if err != nil || string(got) != id {
			t.Fatalf("Resolve(%q) = %q, %v", id, got, err)
		}
		again, err := Resolve(WatchURL(got))
		if err != nil || again != got {
			t.Fatalf("Resolve(WatchURL(%q)) = %q, %v", id, again, err)
		}
	}
}

func TestValid(t *testing.T) {
	if !Valid("dQw4w9WgXcQ") {
		t.Fatal("expected valid id")
	}
	if Valid("dQw4w9WgXc") || Valid(" dQw4w9WgXcQ") {
		t.Fatal("expected invalid ids to be rejected")
	}
}

package videoid

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
)

// ErrInvalidReference reports a reference that does not yield a valid identifier.
var ErrInvalidReference = errors.New("invalid video reference")

// ReferenceError describes a rejected reference. It matches ErrInvalidReference.
type ReferenceError struct {
	Candidate string
}

func (e *ReferenceError) Error() string { return "invalid video id: " + e.Candidate }

func (e *ReferenceError) Is(target error) bool { return target == ErrInvalidReference }

// ID is a validated 11-character video identifier.
type ID string

func (id ID) String() string { return string(id) }

var validPattern = regexp.MustCompile(`^[0-9A-Za-z_-]{11}$`)

// extractPatterns are tried in order; the first capture wins.
var extractPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:v=|/)([0-9A-Za-z_-]{11})`),
	regexp.MustCompile(`youtu\.be/([0-9A-Za-z_-]{11})`),
	regexp.MustCompile(`embed/([0-9A-Za-z_-]{11})`),
	regexp.MustCompile(`watch\?v=([0-9A-Za-z_-]{11})`),
}

var hostMarkers = []string{"youtube.com", "youtu.be", "youtube-nocookie.com", "://"}

// Valid reports whether candidate is a well-formed identifier.
func Valid(candidate string) bool {
	return validPattern.MatchString(candidate)
}

// Resolve extracts and validates the identifier carried by reference.
// Errors wrap ErrInvalidReference.
func Resolve(reference string) (ID, error) {
	candidate := strings.TrimSpace(reference)
	if looksLikeURL(candidate) {
		for _, pattern := range extractPatterns {
			if match := pattern.FindStringSubmatch(candidate); match != nil {
				candidate = match[1]
				break
			}
		}
	}
	if !Valid(candidate) {
		return "", &ReferenceError{Candidate: candidate}
	}
	return ID(candidate), nil
}

// WatchURL returns the canonical watch page for id.
func WatchURL(id ID) string {
	return "https://www.youtube.com/watch?v=" + url.QueryEscape(string(id))
}

func looksLikeURL(reference string) bool {
	lower := strings.ToLower(reference)
	for _, marker := range hostMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

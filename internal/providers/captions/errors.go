package captions

import "errors"

var (
	// ErrTranscriptsDisabled reports a video with no caption tracks at all.
	ErrTranscriptsDisabled = errors.New("transcripts are disabled")
	// ErrNoTranscript reports that no track matches the requested languages.
	ErrNoTranscript = errors.New("no transcript in requested languages")
	// ErrVideoUnavailable reports a private, removed, or otherwise unplayable video.
	ErrVideoUnavailable = errors.New("video unavailable")
)

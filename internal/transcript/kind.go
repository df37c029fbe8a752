package transcript

// Kind classifies why an extraction failed. Values appear verbatim in JSON.
type Kind string

const (
	KindInvalidReference    Kind = "invalid_reference"
	KindProviderUnavailable Kind = "provider_unavailable"
	KindTranscriptsDisabled Kind = "transcripts_disabled"
	KindNoTranscriptFound   Kind = "no_transcript_found"
	KindMediaUnavailable    Kind = "media_unavailable"
	KindNoSubtitles         Kind = "no_subtitles_available"
	KindUnexpected          Kind = "unexpected_provider_failure"
)

// Hint returns the operator-facing next step for a failure kind.
func (k Kind) Hint() string {
	switch k {
	case KindInvalidReference:
		return "pass a watch URL, short link, embed URL, or 11-character video id"
	case KindProviderUnavailable:
		return "install yt-dlp or check the provider configuration"
	case KindTranscriptsDisabled:
		return "the uploader disabled captions for this video"
	case KindNoTranscriptFound:
		return "retry with other --lang values"
	case KindMediaUnavailable:
		return "check the video is public and not region locked"
	case KindNoSubtitles:
		return "the video has no subtitle track in the requested language"
	case KindUnexpected:
		return "rerun with --log-level debug for details"
	default:
		return "check logs for details"
	}
}

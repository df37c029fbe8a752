package transcript

import (
	"time"

	"transcriptor/internal/videoid"
)

// Segment is one timed caption cue.
type Segment struct {
	Start    time.Duration
	Duration time.Duration
	Text     string
}

// TrackInfo describes a caption track offered for a video.
type TrackInfo struct {
	Language     string `json:"language"`
	LanguageCode string `json:"language_code"`
	IsGenerated  bool   `json:"is_generated"`
}

// Result is the envelope returned for every extraction, successful or not.
// Its JSON form, minus the transcript, is the metadata artefact.
type Result struct {
	Success              bool        `json:"success"`
	VideoID              videoid.ID  `json:"video_id,omitempty"`
	Transcript           string      `json:"transcript,omitempty"`
	CharCount            int         `json:"char_count"`
	WordCount            int         `json:"word_count"`
	Method               string      `json:"method,omitempty"`
	SegmentCount         *int        `json:"segment_count,omitempty"`
	AvailableTranscripts []TrackInfo `json:"available_transcripts,omitempty"`
	Title                string      `json:"title,omitempty"`
	DurationSeconds      float64     `json:"duration,omitempty"`
	FromCache            bool        `json:"from_cache"`
	ErrorKind            Kind        `json:"error_kind,omitempty"`
	Error                string      `json:"error,omitempty"`
}

// Failure builds a failed envelope.
func Failure(id videoid.ID, method string, kind Kind, message string) Result {
	return Result{
		VideoID:   id,
		Method:    method,
		ErrorKind: kind,
		Error:     message,
	}
}

// Clone returns a deep copy so callers cannot mutate cached state.
func (r Result) Clone() Result {
	out := r
	if r.SegmentCount != nil {
		count := *r.SegmentCount
		out.SegmentCount = &count
	}
	if r.AvailableTranscripts != nil {
		out.AvailableTranscripts = append([]TrackInfo(nil), r.AvailableTranscripts...)
	}
	return out
}

// Metadata returns the envelope without its transcript text.
func (r Result) Metadata() Result {
	out := r.Clone()
	out.Transcript = ""
	return out
}

// IntPtr is a convenience for populating SegmentCount.
func IntPtr(v int) *int {
	return &v
}

// Package extract assembles a ready-to-use transcript.Extractor from
// configuration: the caption-track provider as primary, yt-dlp as fallback,
// and any observers such as the history recorder or metrics.
//
// Fetch is the one-call entry point for library users who just want a
// transcript with default settings.
package extract

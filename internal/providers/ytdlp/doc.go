// Package ytdlp implements the fallback transcript provider by asking the
// yt-dlp binary to download a single WebVTT subtitle track.
//
// Each fetch runs in its own scratch directory, which is removed afterwards.
// The VTT payload is reduced to plain text: headers, cue timings, cue
// identifiers, NOTE/STYLE blocks, and inline tags are dropped, and the
// repeated lines produced by rolling auto-captions are collapsed.
package ytdlp

package deps

// YtDlpName is the display name used for the subtitle-scrape dependency.
const YtDlpName = "yt-dlp"

// Requirements lists the external tools the fallback provider depends on.
// ffmpeg is optional; yt-dlp only needs it when converting subtitle formats.
func Requirements(ytdlpBinary string) []Requirement {
	return []Requirement{
		{
			Name:        YtDlpName,
			Command:     ytdlpBinary,
			Description: "Downloads subtitle tracks for the fallback provider",
		},
		{
			Name:        "ffmpeg",
			Command:     "ffmpeg",
			Description: "Used by yt-dlp to convert subtitle formats",
			Optional:    true,
		},
	}
}

// CheckYtDlp reports whether the configured yt-dlp binary can be executed.
func CheckYtDlp(binary string) Status {
	return Check(Requirements(binary)[0])
}

// Missing returns the required dependencies that are unavailable.
func Missing(statuses []Status) []Status {
	var missing []Status
	for _, status := range statuses {
		if !status.Available && !status.Optional {
			missing = append(missing, status)
		}
	}
	return missing
}

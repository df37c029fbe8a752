package ytdlp

import (
	"html"
	"regexp"
	"strings"
)

var inlineTagPattern = regexp.MustCompile(`<[^>]*>`)

// ParseVTT extracts caption text lines from a WebVTT document in cue order.
// A cue whose first line repeats the previous cue's last line is treated as
// a rolling caption and that line is emitted once. Repeats inside a cue are
// kept.
func ParseVTT(data []byte) []string {
	content := strings.ReplaceAll(string(data), "\r\n", "\n")
	content = strings.TrimPrefix(content, "\ufeff")
	var out []string
	for _, block := range strings.Split(content, "\n\n") {
		lines := strings.Split(strings.Trim(block, "\n"), "\n")
		if len(lines) == 0 || isMetadataBlock(lines[0]) {
			continue
		}
		timing := -1
		for i, line := range lines {
			if strings.Contains(line, "-->") {
				timing = i
				break
			}
		}
		if timing < 0 {
			continue
		}
		prevLast := ""
		if len(out) > 0 {
			prevLast = out[len(out)-1]
		}
		first := true
		for _, line := range lines[timing+1:] {
			text := cleanCueLine(line)
			if text == "" {
				continue
			}
			if first && text == prevLast {
				first = false
				continue
			}
			first = false
			out = append(out, text)
		}
	}
	return out
}

func isMetadataBlock(first string) bool {
	first = strings.TrimSpace(first)
	for _, prefix := range []string{"WEBVTT", "NOTE", "STYLE", "REGION"} {
		if strings.HasPrefix(first, prefix) {
			return true
		}
	}
	return false
}

func cleanCueLine(line string) string {
	line = inlineTagPattern.ReplaceAllString(line, "")
	line = html.UnescapeString(line)
	return strings.Join(strings.Fields(line), " ")
}

package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteStubBinary writes an executable shell script named name into dir and
// returns its path.
func WriteStubBinary(t testing.TB, dir, name, script string) string {
	t.Helper()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", dir, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", path, err)
	}
	return path
}

// StubYtDlpScript returns a yt-dlp stand-in that writes a WebVTT file for
// videoID in the -o directory and prints a --dump-json line with title.
func StubYtDlpScript(videoID, lang, title string, cues ...string) string {
	body := "WEBVTT\\n"
	for i, cue := range cues {
		body += "\\n00:00:0" + string(rune('0'+i%10)) + ".000 --> 00:00:0" + string(rune('0'+(i+1)%10)) + ".000\\n" + cue + "\\n"
	}
	return `#!/bin/sh
out=""
while [ $# -gt 0 ]; do
  if [ "$1" = "-o" ]; then out="$2"; shift; fi
  shift
done
dir=$(dirname "$out")
printf '` + body + `' > "$dir/` + videoID + `.` + lang + `.vtt"
echo '{"id":"` + videoID + `","title":"` + title + `","duration":42}'
`
}

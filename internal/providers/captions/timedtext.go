package captions

import (
	"encoding/xml"
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	"transcriptor/internal/transcript"
)

type timedText struct {
	Lines []struct {
		Start string `xml:"start,attr"`
		Dur   string `xml:"dur,attr"`
		Text  string `xml:",chardata"`
	} `xml:"text"`
}

// parseTimedText decodes a timedtext XML document into segments, skipping
// cues that are empty after entity decoding.
func parseTimedText(data []byte) ([]transcript.Segment, error) {
	var doc timedText
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse timedtext: %w", err)
	}
	segments := make([]transcript.Segment, 0, len(doc.Lines))
	for _, line := range doc.Lines {
		// Payloads are entity-encoded twice; xml decoding removes one layer.
		text := strings.TrimSpace(html.UnescapeString(line.Text))
		if text == "" {
			continue
		}
		segments = append(segments, transcript.Segment{
			Start:    parseSeconds(line.Start),
			Duration: parseSeconds(line.Dur),
			Text:     text,
		})
	}
	return segments, nil
}

func parseSeconds(value string) time.Duration {
	seconds, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds * float64(time.Second))
}

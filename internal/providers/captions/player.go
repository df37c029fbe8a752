package captions

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"transcriptor/internal/language"
	"transcriptor/internal/transcript"
)

const playerResponseMarker = "ytInitialPlayerResponse = "

type playerResponse struct {
	PlayabilityStatus struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
	Captions *struct {
		Renderer struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
	VideoDetails struct {
		Title string `json:"title"`
	} `json:"videoDetails"`
}

type captionTrack struct {
	BaseURL      string    `json:"baseUrl"`
	Name         trackName `json:"name"`
	LanguageCode string    `json:"languageCode"`
	Kind         string    `json:"kind"`
}

type trackName struct {
	SimpleText string `json:"simpleText"`
	Runs       []struct {
		Text string `json:"text"`
	} `json:"runs"`
}

func (n trackName) String() string {
	if n.SimpleText != "" {
		return n.SimpleText
	}
	parts := make([]string, 0, len(n.Runs))
	for _, run := range n.Runs {
		parts = append(parts, run.Text)
	}
	return strings.Join(parts, "")
}

func (t captionTrack) generated() bool {
	return t.Kind == "asr"
}

// needsPoToken reports tracks that only a browser session can download.
func (t captionTrack) needsPoToken() bool {
	return strings.Contains(t.BaseURL, "&exp=xpe")
}

func (t captionTrack) info() transcript.TrackInfo {
	name := t.Name.String()
	if name == "" {
		name = language.DisplayName(t.LanguageCode)
	}
	return transcript.TrackInfo{
		Language:     name,
		LanguageCode: t.LanguageCode,
		IsGenerated:  t.generated(),
	}
}

// parsePlayerResponse finds the player response assigned in one of the page's
// inline scripts.
func parsePlayerResponse(doc *goquery.Document) (*playerResponse, error) {
	var (
		resp     *playerResponse
		parseErr error
	)
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := s.Text()
		idx := strings.Index(text, playerResponseMarker)
		if idx < 0 {
			return true
		}
		payload := text[idx+len(playerResponseMarker):]
		var decoded playerResponse
		// Decoder stops after the first value, ignoring the trailing script.
		if err := json.NewDecoder(strings.NewReader(payload)).Decode(&decoded); err != nil {
			parseErr = fmt.Errorf("decode player response: %w", err)
			return true
		}
		resp = &decoded
		parseErr = nil
		return false
	})
	if resp != nil {
		return resp, nil
	}
	if parseErr != nil {
		return nil, parseErr
	}
	return nil, errors.New("player response not found in watch page")
}

// checkPlayable maps the playability status onto provider errors.
func (p *playerResponse) checkPlayable() error {
	switch strings.ToUpper(p.PlayabilityStatus.Status) {
	case "", "OK":
		return nil
	case "ERROR", "UNPLAYABLE", "LOGIN_REQUIRED", "CONTENT_CHECK_REQUIRED", "AGE_CHECK_REQUIRED":
		reason := strings.TrimSpace(p.PlayabilityStatus.Reason)
		if reason == "" {
			reason = strings.ToLower(p.PlayabilityStatus.Status)
		}
		return fmt.Errorf("%w: %s", ErrVideoUnavailable, reason)
	default:
		return nil
	}
}

func (p *playerResponse) tracks() []captionTrack {
	if p.Captions == nil {
		return nil
	}
	return p.Captions.Renderer.CaptionTracks
}

// pickTrack prefers manually authored tracks over auto-generated ones, each
// pass walking the caller's languages in order.
func pickTrack(tracks []captionTrack, languages []string) (captionTrack, error) {
	if len(tracks) == 0 {
		return captionTrack{}, ErrTranscriptsDisabled
	}
	var blocked bool
	for _, wantGenerated := range []bool{false, true} {
		for _, lang := range languages {
			for _, track := range tracks {
				if track.generated() != wantGenerated || !language.Equal(track.LanguageCode, lang) {
					continue
				}
				if track.needsPoToken() {
					blocked = true
					continue
				}
				return track, nil
			}
		}
	}
	if blocked {
		return captionTrack{}, errors.New("matching caption tracks require a browser PoToken")
	}
	return captionTrack{}, fmt.Errorf("%w: %s", ErrNoTranscript, strings.Join(languages, ", "))
}

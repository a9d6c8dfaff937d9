package extract

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

const (
	youtubeWatchURL     = "https://www.youtube.com/watch?v="
	playerResponseToken = "ytInitialPlayerResponse = "
	captionTracksPath   = "captions.playerCaptionsTracklistRenderer.captionTracks"
)

var videoIDRegex = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// ErrNoTranscript is returned when a video has no caption track.
var ErrNoTranscript = errors.New("video has no transcript")

// YouTubeExtractor fetches the caption transcript of a video.
type YouTubeExtractor struct {
	client   *http.Client
	maxBytes int64
	watchURL string
	language string
}

// NewYouTubeExtractor creates a YouTubeExtractor preferring English captions.
func NewYouTubeExtractor(client *http.Client, maxBytes int64) *YouTubeExtractor {
	return &YouTubeExtractor{
		client:   client,
		maxBytes: maxBytes,
		watchURL: youtubeWatchURL,
		language: "en",
	}
}

// Extract implements Extractor.
func (e *YouTubeExtractor) Extract(ctx context.Context, src Source) (string, error) {
	id, err := VideoID(src.URL)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrExtractionFailed, err)
	}

	page, err := fetch(ctx, e.client, e.watchURL+id, e.maxBytes)
	if err != nil {
		return "", err
	}

	trackURL, err := captionTrackURL(page, e.language)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrExtractionFailed, id, err)
	}

	timedText, err := fetch(ctx, e.client, trackURL, e.maxBytes)
	if err != nil {
		return "", err
	}

	return parseTimedText(timedText)
}

// VideoID returns the 11-character video ID from a watch, youtu.be, shorts
// or embed URL.
func VideoID(raw string) (string, error) {
	u, err := parseHTTPURL(strings.TrimSpace(raw))
	if err != nil {
		return "", err
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	host = strings.TrimPrefix(host, "m.")

	var id string
	switch {
	case host == "youtu.be":
		id = strings.Trim(u.Path, "/")
	case host == "youtube.com" || host == "music.youtube.com" || host == "youtube-nocookie.com":
		if v := u.Query().Get("v"); v != "" {
			id = v
		} else {
			parts := strings.Split(strings.Trim(u.Path, "/"), "/")
			if len(parts) == 2 && (parts[0] == "shorts" || parts[0] == "embed" || parts[0] == "live") {
				id = parts[1]
			}
		}
	default:
		return "", fmt.Errorf("%w: %q is not a YouTube url", ErrInvalidURL, raw)
	}

	if !videoIDRegex.MatchString(id) {
		return "", fmt.Errorf("%w: no video id in %q", ErrInvalidURL, raw)
	}
	return id, nil
}

// captionTrackURL finds the player response embedded in a watch page and
// returns the caption track for lang, falling back to the first track.
func captionTrackURL(page []byte, lang string) (string, error) {
	idx := bytes.Index(page, []byte(playerResponseToken))
	if idx < 0 {
		return "", fmt.Errorf("%w: player response not found", ErrNoTranscript)
	}
	// gjson stops at the end of the first JSON value, so the trailing script
	// text does not need to be cut off.
	player := string(page[idx+len(playerResponseToken):])

	tracks := gjson.Get(player, captionTracksPath)
	if !tracks.IsArray() || len(tracks.Array()) == 0 {
		return "", ErrNoTranscript
	}

	chosen := tracks.Array()[0]
	for _, track := range tracks.Array() {
		code := track.Get("languageCode").String()
		if code == lang || strings.HasPrefix(code, lang+"-") {
			chosen = track
			break
		}
	}

	base := chosen.Get("baseUrl").String()
	if base == "" {
		return "", fmt.Errorf("%w: caption track has no url", ErrNoTranscript)
	}
	if _, err := url.Parse(base); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	return base, nil
}

type captionText struct {
	Text  string `xml:",chardata"`
	Words []struct {
		Text string `xml:",chardata"`
	} `xml:"s"`
}

// timedText covers both transcript layouts: <transcript><text> and
// format 3 <timedtext><body><p>, whose words may sit in <s> elements.
type timedText struct {
	Segments   []captionText `xml:"text"`
	Paragraphs []captionText `xml:"body>p"`
}

// parseTimedText joins the caption segments of a timedtext XML document
// with spaces.
func parseTimedText(data []byte) (string, error) {
	var doc timedText
	if err := xml.Unmarshal(data, &doc); err != nil {
		return "", fmt.Errorf("%w: transcript xml: %v", ErrExtractionFailed, err)
	}

	segments := append(doc.Segments, doc.Paragraphs...)
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		raw := seg.Text
		for _, w := range seg.Words {
			raw += " " + w.Text
		}
		text := strings.Join(strings.Fields(html.UnescapeString(raw)), " ")
		if text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " "), nil
}

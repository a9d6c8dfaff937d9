package extract

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPage = `<!DOCTYPE html>
<html>
<head><title>Plant Biology</title><script>var tracking = "secret-pixel";</script></head>
<body>
  <nav><a href="/">Home</a> | <a href="/about">About us</a></nav>
  <article>
    <h1>Photosynthesis</h1>
    <p>Plants convert <strong>light energy</strong> into chemical energy.</p>
  </article>
  <footer>Copyright footer text</footer>
</body>
</html>`

func TestWebpageExtractor(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/biology":
			w.Header().Set("Content-Type", "text/html")
			fmt.Fprint(w, testPage)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	e := NewWebpageExtractor(server.Client(), 1<<20)

	t.Run("main content only", func(t *testing.T) {
		t.Parallel()

		text, err := e.Extract(context.Background(), Source{URL: server.URL + "/biology"})
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(text, "# Plant Biology"), text)
		assert.Contains(t, text, "Photosynthesis")
		assert.Contains(t, text, "light energy")
		assert.NotContains(t, text, "secret-pixel")
		assert.NotContains(t, text, "About us")
		assert.NotContains(t, text, "Copyright footer")
	})

	t.Run("uploaded html", func(t *testing.T) {
		t.Parallel()

		text, err := e.Extract(context.Background(), Source{Data: []byte(testPage)})
		require.NoError(t, err)
		assert.Contains(t, text, "chemical energy")
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()

		_, err := e.Extract(context.Background(), Source{URL: server.URL + "/missing"})
		assert.ErrorIs(t, err, ErrExtractionFailed)
	})

	t.Run("bad urls", func(t *testing.T) {
		t.Parallel()

		_, err := e.Extract(context.Background(), Source{})
		assert.ErrorIs(t, err, ErrMissingInput)

		_, err = e.Extract(context.Background(), Source{URL: "ftp://example.com/file"})
		assert.ErrorIs(t, err, ErrInvalidURL)
	})
}

func TestVideoID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		url     string
		want    string
		wantErr bool
	}{
		{url: "https://www.youtube.com/watch?v=dQw4w9WgXcQ", want: "dQw4w9WgXcQ"},
		{url: "https://youtube.com/watch?feature=share&v=dQw4w9WgXcQ&t=42", want: "dQw4w9WgXcQ"},
		{url: "https://m.youtube.com/watch?v=dQw4w9WgXcQ", want: "dQw4w9WgXcQ"},
		{url: "https://youtu.be/dQw4w9WgXcQ", want: "dQw4w9WgXcQ"},
		{url: "https://www.youtube.com/shorts/dQw4w9WgXcQ", want: "dQw4w9WgXcQ"},
		{url: "https://www.youtube.com/embed/dQw4w9WgXcQ", want: "dQw4w9WgXcQ"},
		{url: "https://www.youtube.com/watch?v=short", wantErr: true},
		{url: "https://vimeo.com/123456", wantErr: true},
		{url: "youtube.com/watch?v=dQw4w9WgXcQ", wantErr: true},
		{url: "", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.url, func(t *testing.T) {
			t.Parallel()

			got, err := VideoID(tc.url)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseTimedText(t *testing.T) {
	t.Parallel()

	t.Run("transcript layout", func(t *testing.T) {
		t.Parallel()

		got, err := parseTimedText([]byte(`<?xml version="1.0" encoding="utf-8" ?><transcript>` +
			`<text start="0" dur="1.2">Welcome to</text>` +
			`<text start="1.2" dur="2">today&amp;#39;s   lecture</text>` +
			`<text start="3.2" dur="1"> </text>` +
			`</transcript>`))
		require.NoError(t, err)
		assert.Equal(t, "Welcome to today's lecture", got)
	})

	t.Run("format 3 layout", func(t *testing.T) {
		t.Parallel()

		got, err := parseTimedText([]byte(`<timedtext format="3"><body>` +
			`<p t="0" d="900">Cells</p>` +
			`<p t="900" d="900"><s>divide</s><s t="300">by</s><s t="600">mitosis</s></p>` +
			`</body></timedtext>`))
		require.NoError(t, err)
		assert.Equal(t, "Cells divide by mitosis", got)
	})

	_, err := parseTimedText([]byte("<transcript><text>unclosed"))
	assert.ErrorIs(t, err, ErrExtractionFailed)
}

func TestYouTubeExtractor(t *testing.T) {
	t.Parallel()

	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/watch":
			if r.URL.Query().Get("v") == "noCaptions1" {
				fmt.Fprint(w, `<script>var ytInitialPlayerResponse = {"videoDetails":{}};</script>`)
				return
			}
			fmt.Fprintf(w, `<html><script>var ytInitialPlayerResponse = {"captions":{"playerCaptionsTracklistRenderer":`+
				`{"captionTracks":[{"baseUrl":"%[1]s/timedtext?lang=de","languageCode":"de"},`+
				`{"baseUrl":"%[1]s/timedtext?lang=en","languageCode":"en"}]}}};var meta = {"a":1};</script></html>`,
				server.URL)
		case "/timedtext":
			fmt.Fprintf(w, `<transcript><text start="0" dur="1">transcript in %s</text></transcript>`,
				r.URL.Query().Get("lang"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	e := NewYouTubeExtractor(server.Client(), 1<<20)
	e.watchURL = server.URL + "/watch?v="

	text, err := e.Extract(context.Background(), Source{URL: "https://www.youtube.com/watch?v=dQw4w9WgXcQ"})
	require.NoError(t, err)
	assert.Equal(t, "transcript in en", text)

	_, err = e.Extract(context.Background(), Source{URL: "https://youtu.be/noCaptions1"})
	assert.ErrorIs(t, err, ErrExtractionFailed)
	assert.ErrorIs(t, err, ErrNoTranscript)

	_, err = e.Extract(context.Background(), Source{URL: "https://example.com/watch?v=dQw4w9WgXcQ"})
	assert.ErrorIs(t, err, ErrInvalidURL)
}

func TestCaptionTrackURL_FallsBackToFirstTrack(t *testing.T) {
	t.Parallel()

	page := []byte(`ytInitialPlayerResponse = {"captions":{"playerCaptionsTracklistRenderer":` +
		`{"captionTracks":[{"baseUrl":"https://example.com/tt?lang=fr","languageCode":"fr"}]}}};`)
	got, err := captionTrackURL(page, "en")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/tt?lang=fr", got)

	_, err = captionTrackURL([]byte("<html></html>"), "en")
	assert.ErrorIs(t, err, ErrNoTranscript)
}

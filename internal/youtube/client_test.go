package youtube

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

const testVideoID = "dQw4w9WgXcQ"

func watchPage(trackBase string) string {
	captions := fmt.Sprintf(`{"playerCaptionsTracklistRenderer":{"captionTracks":[`+
		`{"baseUrl":"%s/track/en","name":{"simpleText":"English"},"languageCode":"en"},`+
		`{"baseUrl":"%s/track/en-asr","name":{"simpleText":"English (auto-generated)"},"languageCode":"en","kind":"asr"},`+
		`{"baseUrl":"%s/track/ru-asr","name":{"runs":[{"text":"Russian"}]},"languageCode":"ru","kind":"asr"}`+
		`]}}`, trackBase, trackBase, trackBase)
	return `<html>"captions":` + captions + `,"videoDetails":{"videoId":"` + testVideoID + `"}</html>`
}

const trackJSON3 = `{"events":[` +
	`{"tStartMs":0,"dDurationMs":1500,"segs":[{"utf8":"hello "},{"utf8":"there"}]},` +
	`{"tStartMs":2000,"dDurationMs":1000},` +
	`{"tStartMs":61000,"dDurationMs":2000,"segs":[{"utf8":"general\nKenobi"}]}` +
	`]}`

func newFixtureServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	var server *httptest.Server
	mux.HandleFunc("/watch", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, testVideoID, r.URL.Query().Get("v"))
		_, _ = w.Write([]byte(watchPage(server.URL)))
	})
	mux.HandleFunc("/track/", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "json3", r.URL.Query().Get("fmt"))
		_, _ = w.Write([]byte(trackJSON3))
	})
	server = httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestClientFetchTranscript(t *testing.T) {
	server := newFixtureServer(t)
	client := &Client{HTTPClient: server.Client(), BaseURL: server.URL}

	transcript, err := client.FetchTranscript(context.Background(), testVideoID, []string{"en"})
	require.NoError(t, err)
	require.Equal(t, "en", transcript.LanguageCode)
	require.Equal(t, "English", transcript.LanguageName)
	require.False(t, transcript.AutoGenerated)
	require.Len(t, transcript.Entries, 2)
	require.Equal(t, TranscriptEntry{Start: 0, Duration: 1.5, Text: "hello there"}, transcript.Entries[0])
	require.Equal(t, TranscriptEntry{Start: 61, Duration: 2, Text: "general Kenobi"}, transcript.Entries[1])
}

func TestClientFetchTranscriptGeneratedFallback(t *testing.T) {
	server := newFixtureServer(t)
	client := &Client{HTTPClient: server.Client(), BaseURL: server.URL}

	transcript, err := client.FetchTranscript(context.Background(), testVideoID, []string{"ru", "en"})
	require.NoError(t, err)
	require.Equal(t, "ru", transcript.LanguageCode)
	require.True(t, transcript.AutoGenerated)
}

func TestClientFetchTranscriptNoMatch(t *testing.T) {
	server := newFixtureServer(t)
	client := &Client{HTTPClient: server.Client(), BaseURL: server.URL}

	_, err := client.FetchTranscript(context.Background(), testVideoID, []string{"fr"})
	require.Equal(t, KindNoTranscriptFound, KindOf(err))
}

func TestClientTranscriptsDisabled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>"videoDetails":{}</html>`))
	}))
	defer server.Close()

	client := &Client{HTTPClient: server.Client(), BaseURL: server.URL}
	_, err := client.FetchTranscript(context.Background(), testVideoID, nil)
	require.Equal(t, KindTranscriptsDisabled, KindOf(err))
}

func TestClientVideoUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>"playabilityStatus":{"status":"ERROR","reason":{"simpleText":"Video unavailable"}}</html>`))
	}))
	defer server.Close()

	client := &Client{HTTPClient: server.Client(), BaseURL: server.URL}
	_, err := client.ListTracks(context.Background(), testVideoID)
	require.Equal(t, KindVideoUnavailable, KindOf(err))
	require.Contains(t, err.Error(), "Video unavailable")
}

func TestClientRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := &Client{HTTPClient: server.Client(), BaseURL: server.URL}
	_, err := client.ListTracks(context.Background(), testVideoID)
	require.Equal(t, KindRateLimited, KindOf(err))
}

func TestClientCaptchaIsRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><div class="g-recaptcha"></div></html>`))
	}))
	defer server.Close()

	client := &Client{HTTPClient: server.Client(), BaseURL: server.URL}
	_, err := client.ListTracks(context.Background(), testVideoID)
	require.Equal(t, KindRateLimited, KindOf(err))
}

func TestClientRejectsInvalidID(t *testing.T) {
	client := &Client{}
	_, err := client.ListTracks(context.Background(), "nope")
	require.Equal(t, KindVideoUnavailable, KindOf(err))
}

func TestSelectTrackPrefersManual(t *testing.T) {
	tracks := []Track{
		{LanguageCode: "en", AutoGenerated: true},
		{LanguageCode: "en", AutoGenerated: false},
	}

	track, ok := selectTrack(tracks, []string{"en"})
	require.True(t, ok)
	require.False(t, track.AutoGenerated)
}

func TestCaptionsJSONUnescapesEntities(t *testing.T) {
	page := `<html>"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[` +
		`{"baseUrl":"https://www.youtube.com/api/timedtext?v=abc&amp;lang=en","languageCode":"en"}` +
		`]}},"videoDetails":{}</html>`

	raw, ok := captionsJSON(page)
	require.True(t, ok)
	require.Contains(t, raw, "timedtext?v=abc&lang=en")
	require.NotContains(t, raw, "&amp;")
}

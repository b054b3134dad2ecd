package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultWatchBase = "https://www.youtube.com"

// defaultLanguages is the preference order used when the caller does
// not request specific languages.
var defaultLanguages = []string{"ru", "en"}

// TranscriptEntry is one timed line of a transcript. Start and
// Duration are seconds.
type TranscriptEntry struct {
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
	Text     string  `json:"text"`
}

// Track describes one caption track advertised for a video.
type Track struct {
	LanguageCode  string `json:"language_code"`
	LanguageName  string `json:"language_name"`
	AutoGenerated bool   `json:"auto_generated"`

	baseURL string
}

// Transcript is a fetched caption track with its entries.
type Transcript struct {
	VideoID       string            `json:"video_id"`
	LanguageCode  string            `json:"language_code"`
	LanguageName  string            `json:"language_name"`
	AutoGenerated bool              `json:"auto_generated"`
	Entries       []TranscriptEntry `json:"entries"`
}

// Client fetches caption tracks from YouTube's watch page and
// timedtext endpoints. The zero value is usable.
type Client struct {
	HTTPClient *http.Client
	BaseURL    string
	UserAgent  string
}

// ListTracks returns the caption tracks advertised for a video.
func (c *Client) ListTracks(ctx context.Context, videoID string) ([]Track, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	videoID = strings.TrimSpace(videoID)
	if !videoIDPattern.MatchString(videoID) {
		return nil, newError(KindVideoUnavailable, videoID, 0, "invalid video ID", ErrInvalidVideoID)
	}

	page, err := c.fetchWatchPage(ctx, videoID)
	if err != nil {
		return nil, err
	}
	return c.parseTracks(videoID, page)
}

// FetchTranscript downloads the transcript for a video, picking the
// first track that matches the language preference order. Manual
// tracks win over auto-generated ones within the same language.
func (c *Client) FetchTranscript(ctx context.Context, videoID string, languages []string) (*Transcript, error) {
	tracks, err := c.ListTracks(ctx, videoID)
	if err != nil {
		return nil, err
	}

	track, ok := selectTrack(tracks, languages)
	if !ok {
		return nil, newError(KindNoTranscriptFound, videoID, 0,
			fmt.Sprintf("no transcript for languages %v", preference(languages)), nil)
	}

	entries, err := c.fetchTrack(ctx, videoID, track)
	if err != nil {
		return nil, err
	}

	return &Transcript{
		VideoID:       videoID,
		LanguageCode:  track.LanguageCode,
		LanguageName:  track.LanguageName,
		AutoGenerated: track.AutoGenerated,
		Entries:       entries,
	}, nil
}

func (c *Client) fetchWatchPage(ctx context.Context, videoID string) (string, error) {
	base := defaultWatchBase
	if c != nil && c.BaseURL != "" {
		base = strings.TrimRight(c.BaseURL, "/")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/watch?v="+url.QueryEscape(videoID), nil)
	if err != nil {
		return "", newError(KindUnknown, videoID, 0, "build watch request", err)
	}
	req.Header.Set("Accept-Language", "en-US")
	if ua := c.userAgent(); ua != "" {
		req.Header.Set("User-Agent", ua)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		if isTimeout(err) {
			return "", newError(KindTimeout, videoID, 0, "watch page request timed out", err)
		}
		return "", newError(KindUnknown, videoID, 0, "watch page request failed", err)
	}
	defer resp.Body.Close() // nolint:errcheck // best-effort cleanup on HTTP response body

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", newError(KindRateLimited, videoID, resp.StatusCode, "YouTube rate limited the request", nil)
	case resp.StatusCode != http.StatusOK:
		return "", newError(KindUnknown, videoID, resp.StatusCode, "unexpected watch page status", nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		if isTimeout(err) {
			return "", newError(KindTimeout, videoID, resp.StatusCode, "watch page read timed out", err)
		}
		return "", newError(KindUnknown, videoID, resp.StatusCode, "read watch page", err)
	}

	page := string(body)
	if strings.Contains(page, `class="g-recaptcha"`) {
		return "", newError(KindRateLimited, videoID, resp.StatusCode, "YouTube served a captcha challenge", nil)
	}
	return page, nil
}

func (c *Client) parseTracks(videoID, page string) ([]Track, error) {
	raw, found := captionsJSON(page)
	if !found {
		if msg, unplayable := playabilityError(page); unplayable {
			return nil, newError(KindVideoUnavailable, videoID, 0, msg, nil)
		}
		return nil, newError(KindTranscriptsDisabled, videoID, 0, "subtitles are disabled for this video", nil)
	}

	var payload struct {
		Renderer struct {
			CaptionTracks []struct {
				BaseURL      string    `json:"baseUrl"`
				Name         trackName `json:"name"`
				LanguageCode string    `json:"languageCode"`
				Kind         string    `json:"kind"`
			} `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, newError(KindUnknown, videoID, 0, "parse caption metadata", err)
	}
	if len(payload.Renderer.CaptionTracks) == 0 {
		return nil, newError(KindTranscriptsDisabled, videoID, 0, "no caption tracks listed", nil)
	}

	tracks := make([]Track, 0, len(payload.Renderer.CaptionTracks))
	for _, ct := range payload.Renderer.CaptionTracks {
		tracks = append(tracks, Track{
			LanguageCode:  ct.LanguageCode,
			LanguageName:  ct.Name.text(),
			AutoGenerated: ct.Kind == "asr",
			baseURL:       ct.BaseURL,
		})
	}
	return tracks, nil
}

func (c *Client) fetchTrack(ctx context.Context, videoID string, track Track) ([]TranscriptEntry, error) {
	trackURL := track.baseURL
	if trackURL == "" {
		return nil, newError(KindNoTranscriptFound, videoID, 0, "caption track has no URL", nil)
	}
	if strings.Contains(trackURL, "?") {
		trackURL += "&fmt=json3"
	} else {
		trackURL += "?fmt=json3"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, trackURL, nil)
	if err != nil {
		return nil, newError(KindUnknown, videoID, 0, "build track request", err)
	}
	if ua := c.userAgent(); ua != "" {
		req.Header.Set("User-Agent", ua)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, newError(KindTimeout, videoID, 0, "track request timed out", err)
		}
		return nil, newError(KindUnknown, videoID, 0, "track request failed", err)
	}
	defer resp.Body.Close() // nolint:errcheck // best-effort cleanup on HTTP response body

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusTooManyRequests:
		return nil, newError(KindRateLimited, videoID, resp.StatusCode, "YouTube rate limited the request", nil)
	case http.StatusNotFound, http.StatusGone:
		return nil, newError(KindNoTranscriptFound, videoID, resp.StatusCode, "caption track no longer available", nil)
	default:
		return nil, newError(KindUnknown, videoID, resp.StatusCode, "unexpected track status", nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		if isTimeout(err) {
			return nil, newError(KindTimeout, videoID, resp.StatusCode, "track read timed out", err)
		}
		return nil, newError(KindUnknown, videoID, resp.StatusCode, "read track", err)
	}

	entries, err := parseJSON3(body)
	if err != nil {
		return nil, newError(KindUnknown, videoID, resp.StatusCode, "parse track payload", err)
	}
	return entries, nil
}

func (c *Client) httpClient() *http.Client {
	if c != nil && c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 30 * time.Second}
}

func (c *Client) userAgent() string {
	if c != nil && c.UserAgent != "" {
		return c.UserAgent
	}
	return "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
}

// captionsJSON cuts the caption tracklist object out of the watch
// page. The object sits between the "captions": key and the
// ,"videoDetails" key that always follows it. HTML entities are
// unescaped so base URLs with &amp; separators survive the cut.
func captionsJSON(page string) (string, bool) {
	_, after, found := strings.Cut(page, `"captions":`)
	if !found {
		return "", false
	}
	raw, _, found := strings.Cut(after, `,"videoDetails"`)
	if !found {
		return "", false
	}
	return html.UnescapeString(raw), true
}

func playabilityError(page string) (string, bool) {
	_, after, found := strings.Cut(page, `"playabilityStatus":`)
	if !found {
		return "", false
	}
	if !strings.Contains(after[:min(len(after), 256)], `"ERROR"`) &&
		!strings.Contains(after[:min(len(after), 256)], `"LOGIN_REQUIRED"`) {
		return "", false
	}
	if _, reason, ok := strings.Cut(after, `"reason":{"simpleText":"`); ok {
		if msg, _, ok := strings.Cut(reason, `"`); ok {
			return msg, true
		}
	}
	return "video is unavailable", true
}

// parseJSON3 decodes the json3 timedtext payload into entries. Events
// without text segments (styling and window events) are skipped.
func parseJSON3(data []byte) ([]TranscriptEntry, error) {
	var payload struct {
		Events []struct {
			StartMs    int64 `json:"tStartMs"`
			DurationMs int64 `json:"dDurationMs"`
			Segs       []struct {
				UTF8 string `json:"utf8"`
			} `json:"segs"`
		} `json:"events"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}

	var entries []TranscriptEntry
	for _, event := range payload.Events {
		if len(event.Segs) == 0 {
			continue
		}
		var text strings.Builder
		for _, seg := range event.Segs {
			text.WriteString(seg.UTF8)
		}
		line := strings.TrimSpace(strings.ReplaceAll(text.String(), "\n", " "))
		if line == "" {
			continue
		}
		entries = append(entries, TranscriptEntry{
			Start:    float64(event.StartMs) / 1000.0,
			Duration: float64(event.DurationMs) / 1000.0,
			Text:     line,
		})
	}
	return entries, nil
}

func selectTrack(tracks []Track, languages []string) (Track, bool) {
	for _, lang := range preference(languages) {
		var generated *Track
		for i := range tracks {
			if !strings.EqualFold(tracks[i].LanguageCode, lang) {
				continue
			}
			if !tracks[i].AutoGenerated {
				return tracks[i], true
			}
			if generated == nil {
				generated = &tracks[i]
			}
		}
		if generated != nil {
			return *generated, true
		}
	}
	return Track{}, false
}

func preference(languages []string) []string {
	cleaned := make([]string, 0, len(languages))
	for _, lang := range languages {
		if value := strings.TrimSpace(lang); value != "" {
			cleaned = append(cleaned, value)
		}
	}
	if len(cleaned) == 0 {
		return defaultLanguages
	}
	return cleaned
}

type trackName struct {
	SimpleText string `json:"simpleText"`
	Runs       []struct {
		Text string `json:"text"`
	} `json:"runs"`
}

func (n trackName) text() string {
	if n.SimpleText != "" {
		return n.SimpleText
	}
	var b strings.Builder
	for _, run := range n.Runs {
		b.WriteString(run.Text)
	}
	return b.String()
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

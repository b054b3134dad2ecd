package youtube

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
)

var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// ErrInvalidVideoID is returned when input cannot be resolved to a
// YouTube video identifier.
var ErrInvalidVideoID = errors.New("invalid video ID or URL")

// ParseVideoID resolves raw user input to an 11-character video ID.
// Accepted forms: a bare ID, watch URLs, youtu.be short links,
// /shorts/, /embed/ and /live/ paths.
func ParseVideoID(input string) (string, error) {
	value := strings.TrimSpace(input)
	if value == "" {
		return "", ErrInvalidVideoID
	}

	if videoIDPattern.MatchString(value) {
		return value, nil
	}

	if !strings.Contains(value, "://") {
		value = "https://" + value
	}

	parsed, err := url.Parse(value)
	if err != nil {
		return "", ErrInvalidVideoID
	}

	host := strings.TrimPrefix(strings.ToLower(parsed.Hostname()), "www.")
	switch host {
	case "youtu.be":
		if id := firstPathSegment(parsed.Path); videoIDPattern.MatchString(id) {
			return id, nil
		}
	case "youtube.com", "m.youtube.com", "music.youtube.com":
		if id := parsed.Query().Get("v"); videoIDPattern.MatchString(id) {
			return id, nil
		}
		segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
		if len(segments) == 2 {
			switch segments[0] {
			case "shorts", "embed", "live", "v":
				if videoIDPattern.MatchString(segments[1]) {
					return segments[1], nil
				}
			}
		}
	}

	return "", ErrInvalidVideoID
}

func firstPathSegment(path string) string {
	trimmed := strings.Trim(path, "/")
	if idx := strings.IndexByte(trimmed, '/'); idx >= 0 {
		return trimmed[:idx]
	}
	return trimmed
}

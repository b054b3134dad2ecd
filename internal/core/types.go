package core

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/sublens/sublens/internal/youtube"
)

// Outcome classifies how a transcript fetch concluded. Every fetch
// maps to exactly one outcome; failures are values, never panics.
type Outcome int

const (
	OutcomeUnknown Outcome = iota
	OutcomeSuccess
	OutcomeAdmissionRejected
	OutcomeRateLimited
	OutcomeTranscriptsDisabled
	OutcomeNoTranscriptFound
	OutcomeVideoUnavailable
	OutcomeTimeout
)

// String returns the stable wire name for the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeAdmissionRejected:
		return "admission_rejected"
	case OutcomeRateLimited:
		return "rate_limited"
	case OutcomeTranscriptsDisabled:
		return "transcripts_disabled"
	case OutcomeNoTranscriptFound:
		return "no_transcript_found"
	case OutcomeVideoUnavailable:
		return "video_unavailable"
	case OutcomeTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the outcome by its wire name.
func (o Outcome) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.String())
}

// UnmarshalJSON decodes an outcome from its wire name.
func (o *Outcome) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseOutcome(name)
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

// ParseOutcome maps a wire name back to its outcome.
func ParseOutcome(name string) (Outcome, error) {
	for _, o := range []Outcome{
		OutcomeUnknown, OutcomeSuccess, OutcomeAdmissionRejected,
		OutcomeRateLimited, OutcomeTranscriptsDisabled,
		OutcomeNoTranscriptFound, OutcomeVideoUnavailable, OutcomeTimeout,
	} {
		if o.String() == name {
			return o, nil
		}
	}
	return OutcomeUnknown, fmt.Errorf("unknown outcome: %q", name)
}

// Permanent reports whether the outcome is terminal for the video,
// meaning a retry with the same inputs cannot succeed.
func (o Outcome) Permanent() bool {
	switch o {
	case OutcomeTranscriptsDisabled, OutcomeNoTranscriptFound, OutcomeVideoUnavailable, OutcomeUnknown:
		return true
	default:
		return false
	}
}

// Provenance captures metadata about how a fetch was resolved.
type Provenance struct {
	FetchID        string     `json:"fetch_id"`
	RequestedAt    time.Time  `json:"requested_at"`
	ResolvedAt     time.Time  `json:"resolved_at"`
	Source         string     `json:"source"`
	FromCache      bool       `json:"from_cache"`
	CacheExpiresAt *time.Time `json:"cache_expires_at,omitempty"`
	ToolVersion    string     `json:"tool_version"`
}

// FetchResult reports the conclusion of a transcript fetch and
// supporting context. Transcript is set only for OutcomeSuccess;
// Message carries the user-facing text for every other outcome.
type FetchResult struct {
	VideoID    string              `json:"video_id"`
	UserID     string              `json:"user_id,omitempty"`
	Outcome    Outcome             `json:"outcome"`
	Transcript *youtube.Transcript `json:"transcript,omitempty"`
	Message    string              `json:"message,omitempty"`
	Detail     string              `json:"detail,omitempty"`
	Attempts   int                 `json:"attempts"`
	RetryAfter time.Duration       `json:"retry_after,omitempty"`
	Provenance Provenance          `json:"provenance"`
}

package youtube

import (
	"errors"
	"fmt"
)

// ErrorKind enumerates the failure classes a transcript fetch can
// produce. Every error returned by the client carries exactly one kind.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindRateLimited
	KindTranscriptsDisabled
	KindNoTranscriptFound
	KindVideoUnavailable
	KindTimeout
)

// String returns the stable name for the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindRateLimited:
		return "rate_limited"
	case KindTranscriptsDisabled:
		return "transcripts_disabled"
	case KindNoTranscriptFound:
		return "no_transcript_found"
	case KindVideoUnavailable:
		return "video_unavailable"
	case KindTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// FetchError is the error type returned for every failed fetch. The
// kind is the contract; Message and StatusCode carry diagnostics.
type FetchError struct {
	Kind       ErrorKind
	VideoID    string
	StatusCode int
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e == nil {
		return "youtube: <nil>"
	}
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.VideoID != "" {
		return fmt.Sprintf("youtube: %s: %s (%s)", e.VideoID, msg, e.Kind)
	}
	return fmt.Sprintf("youtube: %s (%s)", msg, e.Kind)
}

// Unwrap exposes the underlying cause, if any.
func (e *FetchError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// KindOf extracts the error kind from err. Errors that did not
// originate from this package report KindUnknown.
func KindOf(err error) ErrorKind {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindUnknown
}

func newError(kind ErrorKind, videoID string, statusCode int, message string, cause error) *FetchError {
	return &FetchError{
		Kind:       kind,
		VideoID:    videoID,
		StatusCode: statusCode,
		Message:    message,
		Err:        cause,
	}
}

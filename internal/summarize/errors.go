package summarize

import (
	"context"
	"errors"
	"strings"

	"github.com/sublens/sublens/internal/summarize/driver"
)

// SummaryError carries a stable code alongside a human-readable message.
type SummaryError struct {
	Code    string
	Message string
	Details string
}

func (e *SummaryError) Error() string {
	if e == nil {
		return "summary error"
	}
	if e.Details != "" {
		return e.Message + ": " + e.Details
	}
	return e.Message
}

// Error codes for provider failures.
const (
	CodeProviderTimeout     = "SUMMARY_PROVIDER_TIMEOUT"
	CodeProviderAuth        = "SUMMARY_PROVIDER_AUTH"
	CodeProviderRateLimit   = "SUMMARY_PROVIDER_RATE_LIMIT"
	CodeProviderUnavailable = "SUMMARY_PROVIDER_UNAVAILABLE"
	CodeProviderBadRequest  = "SUMMARY_PROVIDER_BAD_REQUEST"
	CodeProviderError       = "SUMMARY_PROVIDER_ERROR"
)

func mapProviderError(err error) *SummaryError {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &SummaryError{Code: CodeProviderTimeout, Message: "provider request timed out"}
	}

	var perr *driver.ProviderError
	if errors.As(err, &perr) && perr != nil {
		status := perr.StatusCode
		details := strings.TrimSpace(perr.Message)
		switch {
		case status == 401 || status == 403:
			return &SummaryError{Code: CodeProviderAuth, Message: "provider authentication failed", Details: details}
		case status == 429:
			return &SummaryError{Code: CodeProviderRateLimit, Message: "provider rate limited", Details: details}
		case status >= 500 && status <= 599:
			return &SummaryError{Code: CodeProviderUnavailable, Message: "provider unavailable", Details: details}
		case status >= 400 && status <= 499:
			return &SummaryError{Code: CodeProviderBadRequest, Message: "provider rejected request", Details: details}
		default:
			return &SummaryError{Code: CodeProviderError, Message: "provider request failed", Details: details}
		}
	}

	return &SummaryError{Code: CodeProviderError, Message: "provider request failed", Details: err.Error()}
}

// Retriable reports whether the error is worth trying on another model.
func Retriable(err error) bool {
	var serr *SummaryError
	if !errors.As(err, &serr) || serr == nil {
		return true
	}
	switch serr.Code {
	case CodeProviderAuth, CodeProviderBadRequest:
		return false
	}
	return true
}

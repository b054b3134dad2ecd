package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sublens/sublens/internal/core"
	apperrors "github.com/sublens/sublens/internal/errors"
	"github.com/sublens/sublens/internal/observability"
	"github.com/sublens/sublens/internal/youtube"
)

// FetchService runs a transcript fetch through admission control,
// retries, and the cache.
type FetchService interface {
	Fetch(ctx context.Context, userID, videoID string, languages []string) *core.FetchResult
}

// TranscriptHandler serves transcript fetches over HTTP.
type TranscriptHandler struct {
	Fetcher   FetchService
	Languages []string
}

// Get handles GET /v0/transcript/{videoID}.
//
// Query parameters: lang (repeatable, preference order), user (caller
// identity for admission control; defaults to the client address).
func (h *TranscriptHandler) Get(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "videoID")
	videoID, err := youtube.ParseVideoID(raw)
	if err != nil {
		respondWithError(w, r, apperrors.WrapInvalidInput(r.Context(), err, "invalid video id or URL"))
		return
	}

	userID := strings.TrimSpace(r.URL.Query().Get("user"))
	if userID == "" {
		userID = r.RemoteAddr
	}

	languages := r.URL.Query()["lang"]
	if len(languages) == 0 {
		languages = h.Languages
	}

	result := h.Fetcher.Fetch(r.Context(), userID, videoID, languages)
	writeFetchResult(w, result)
}

func writeFetchResult(w http.ResponseWriter, result *core.FetchResult) {
	if result.Outcome == core.OutcomeUnknown && observability.ServerLogger != nil {
		observability.ServerLogger.Error("Fetch failed with unclassified error",
			unknownOutcomeFields(result)...)
	}

	status := statusForOutcome(result.Outcome)
	if result.Outcome == core.OutcomeAdmissionRejected && result.RetryAfter > 0 {
		seconds := int(result.RetryAfter / time.Second)
		if result.RetryAfter%time.Second != 0 {
			seconds++
		}
		w.Header().Set("Retry-After", fmt.Sprintf("%d", seconds))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(result)
}

// unknownOutcomeFields carries the raw upstream error so unclassified
// failures show up server-side, not only in the response body.
func unknownOutcomeFields(result *core.FetchResult) []zap.Field {
	return []zap.Field{
		zap.String("video_id", result.VideoID),
		zap.Int("attempts", result.Attempts),
		zap.String("detail", result.Detail),
	}
}

func statusForOutcome(outcome core.Outcome) int {
	switch outcome {
	case core.OutcomeSuccess:
		return http.StatusOK
	case core.OutcomeAdmissionRejected, core.OutcomeRateLimited:
		return http.StatusTooManyRequests
	case core.OutcomeTranscriptsDisabled, core.OutcomeNoTranscriptFound, core.OutcomeVideoUnavailable:
		return http.StatusNotFound
	case core.OutcomeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

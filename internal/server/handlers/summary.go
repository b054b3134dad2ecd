package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sublens/sublens/internal/core"
	apperrors "github.com/sublens/sublens/internal/errors"
	"github.com/sublens/sublens/internal/youtube"
)

// SummaryCache persists summarization results.
type SummaryCache interface {
	GetSummaryCache(ctx context.Context, videoID, kind string) (*SummaryCacheEntry, error)
	SetSummaryCache(ctx context.Context, videoID, kind, model, content string, ttl time.Duration) error
}

// SummaryCacheEntry mirrors the store's cached summary row.
type SummaryCacheEntry struct {
	VideoID   string
	Kind      string
	Model     string
	Content   string
	ExpiresAt time.Time
}

// SummaryService turns transcript text into a summary or mind map.
type SummaryService interface {
	SummarizeText(ctx context.Context, text string) (content, model string, err error)
	MindMapText(ctx context.Context, text string) (content, model string, err error)
}

// SummaryResponse is the payload for summary requests.
type SummaryResponse struct {
	VideoID   string `json:"video_id"`
	Kind      string `json:"kind"`
	Model     string `json:"model,omitempty"`
	Content   string `json:"content"`
	FromCache bool   `json:"from_cache"`
}

// SummaryHandler serves transcript summaries over HTTP.
type SummaryHandler struct {
	Fetcher    FetchService
	Summarizer SummaryService
	Cache      SummaryCache
	Languages  []string
	TTL        time.Duration
}

// Get handles GET /v0/summary/{videoID}.
//
// Query parameters: kind (summary or mindmap, default summary), user.
func (h *SummaryHandler) Get(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "videoID")
	videoID, err := youtube.ParseVideoID(raw)
	if err != nil {
		respondWithError(w, r, apperrors.WrapInvalidInput(r.Context(), err, "invalid video id or URL"))
		return
	}

	kind := strings.TrimSpace(r.URL.Query().Get("kind"))
	if kind == "" {
		kind = "summary"
	}
	if kind != "summary" && kind != "mindmap" {
		respondWithError(w, r, apperrors.NewInvalidInputError("kind must be summary or mindmap"))
		return
	}

	if h.Cache != nil {
		if entry, err := h.Cache.GetSummaryCache(r.Context(), videoID, kind); err == nil && entry != nil {
			writeSummary(w, http.StatusOK, &SummaryResponse{
				VideoID:   videoID,
				Kind:      kind,
				Model:     entry.Model,
				Content:   entry.Content,
				FromCache: true,
			})
			return
		}
	}

	userID := strings.TrimSpace(r.URL.Query().Get("user"))
	if userID == "" {
		userID = r.RemoteAddr
	}

	result := h.Fetcher.Fetch(r.Context(), userID, videoID, h.Languages)
	if result.Outcome != core.OutcomeSuccess || result.Transcript == nil {
		writeFetchResult(w, result)
		return
	}

	text := youtube.PlainText(result.Transcript.Entries)

	var (
		content string
		model   string
	)
	if kind == "mindmap" {
		content, model, err = h.Summarizer.MindMapText(r.Context(), text)
	} else {
		content, model, err = h.Summarizer.SummarizeText(r.Context(), text)
	}
	if err != nil {
		respondWithError(w, r, apperrors.WrapExternalService(r.Context(), err, "summarization failed"))
		return
	}

	if h.Cache != nil && h.TTL > 0 {
		_ = h.Cache.SetSummaryCache(r.Context(), videoID, kind, model, content, h.TTL)
	}

	writeSummary(w, http.StatusOK, &SummaryResponse{
		VideoID: videoID,
		Kind:    kind,
		Model:   model,
		Content: content,
	})
}

func writeSummary(w http.ResponseWriter, status int, payload *SummaryResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sublens/sublens/internal/core"
	apperrors "github.com/sublens/sublens/internal/errors"
)

func TestServerUsesStandardErrorHandlers(t *testing.T) {
	srv := New("127.0.0.1", 0, Deps{})

	req := httptest.NewRequest(http.MethodGet, "/does-not-exist", nil)
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}

	var body apperrors.HTTPErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}

	if body.Error.Code != "NOT_FOUND" {
		t.Fatalf("expected error code NOT_FOUND, got %s", body.Error.Code)
	}
}

type staticFetcher struct {
	result *core.FetchResult
}

func (f staticFetcher) Fetch(ctx context.Context, userID, videoID string, languages []string) *core.FetchResult {
	return f.result
}

func TestServerRegistersTranscriptRoute(t *testing.T) {
	srv := New("127.0.0.1", 0, Deps{
		Fetcher: staticFetcher{result: &core.FetchResult{Outcome: core.OutcomeSuccess}},
	})

	req := httptest.NewRequest(http.MethodGet, "/v0/transcript/dQw4w9WgXcQ", nil)
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
}

func TestServerSkipsSummaryRouteWithoutSummarizer(t *testing.T) {
	srv := New("127.0.0.1", 0, Deps{
		Fetcher: staticFetcher{result: &core.FetchResult{Outcome: core.OutcomeSuccess}},
	})

	req := httptest.NewRequest(http.MethodGet, "/v0/summary/dQw4w9WgXcQ", nil)
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

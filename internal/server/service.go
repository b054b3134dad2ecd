package server

import (
	"context"
	"time"

	"github.com/sublens/sublens/internal/core/store"
	"github.com/sublens/sublens/internal/server/handlers"
	"github.com/sublens/sublens/internal/summarize"
)

// SummaryAdapter exposes a Summarizer through the handler interface.
type SummaryAdapter struct {
	Summarizer *summarize.Summarizer
}

func (a *SummaryAdapter) SummarizeText(ctx context.Context, text string) (string, string, error) {
	summary, err := a.Summarizer.Summarize(ctx, text)
	if err != nil {
		return "", "", err
	}
	return summary.Text, summary.Model, nil
}

func (a *SummaryAdapter) MindMapText(ctx context.Context, text string) (string, string, error) {
	mindMap, err := a.Summarizer.BuildMindMap(ctx, text)
	if err != nil {
		return "", "", err
	}
	return mindMap.Markdown(), "", nil
}

// StoreSummaryCache exposes the store's summary cache through the
// handler interface.
type StoreSummaryCache struct {
	Store *store.Store
}

func (c *StoreSummaryCache) GetSummaryCache(ctx context.Context, videoID, kind string) (*handlers.SummaryCacheEntry, error) {
	entry, err := c.Store.GetSummaryCache(ctx, videoID, kind)
	if err != nil || entry == nil {
		return nil, err
	}
	return &handlers.SummaryCacheEntry{
		VideoID:   entry.VideoID,
		Kind:      entry.Kind,
		Model:     entry.Model,
		Content:   entry.Content,
		ExpiresAt: entry.ExpiresAt,
	}, nil
}

func (c *StoreSummaryCache) SetSummaryCache(ctx context.Context, videoID, kind, model, content string, ttl time.Duration) error {
	return c.Store.SetSummaryCache(ctx, videoID, kind, model, content, ttl)
}

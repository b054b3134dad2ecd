package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

// Summary cache kinds.
const (
	SummaryKindText    = "summary"
	SummaryKindMindMap = "mindmap"
)

// SummaryCacheEntry captures a cached summarization result.
type SummaryCacheEntry struct {
	VideoID   string
	Kind      string
	Model     string
	Content   string
	ExpiresAt time.Time
}

// GetSummaryCache returns a cached summary of the given kind if present
// and not expired.
func (s *Store) GetSummaryCache(ctx context.Context, videoID, kind string) (*SummaryCacheEntry, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	videoID = strings.TrimSpace(videoID)
	if videoID == "" {
		return nil, errors.New("video id is required")
	}

	row := s.DB.QueryRowContext(ctx,
		`SELECT model, content, expires_at FROM summary_cache
		 WHERE video_id = ? AND kind = ?`,
		videoID, kind,
	)

	var (
		model   string
		content string
		expires int64
	)
	if err := row.Scan(&model, &content, &expires); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	expiresAt := time.Unix(expires, 0).UTC()
	if time.Now().UTC().After(expiresAt) {
		return nil, nil
	}

	return &SummaryCacheEntry{
		VideoID:   videoID,
		Kind:      kind,
		Model:     model,
		Content:   content,
		ExpiresAt: expiresAt,
	}, nil
}

// SetSummaryCache stores a summarization result with TTL.
func (s *Store) SetSummaryCache(ctx context.Context, videoID, kind, model, content string, ttl time.Duration) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if ttl <= 0 {
		return nil
	}

	videoID = strings.TrimSpace(videoID)
	if videoID == "" {
		return errors.New("video id is required")
	}

	now := time.Now().UTC()
	expiresAt := now.Add(ttl)

	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO summary_cache (video_id, kind, model, content, created_at, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(video_id, kind)
		 DO UPDATE SET model = excluded.model,
		               content = excluded.content,
		               created_at = excluded.created_at,
		               expires_at = excluded.expires_at`,
		videoID, kind, model, content, now.Unix(), expiresAt.Unix(),
	)
	return err
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sublens/sublens/internal/core"
)

// GetRateLimit returns stored request accounting for a user.
func (s *Store) GetRateLimit(ctx context.Context, userID string) (*core.RateLimitState, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, errors.New("user id is required")
	}

	var (
		requestCount int
		count429     int
		windowStart  int64
		last429At    sql.NullInt64
	)

	row := s.DB.QueryRowContext(ctx, `
		SELECT request_count, count_429, window_start, last_429_at
		FROM rate_limits
		WHERE user_id = ?
	`, userID)

	if err := row.Scan(&requestCount, &count429, &windowStart, &last429At); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch rate limit: %w", err)
	}

	state := &core.RateLimitState{
		RequestCount: requestCount,
		Count429:     count429,
		WindowStart:  time.Unix(windowStart, 0).UTC(),
	}

	if last429At.Valid {
		value := time.Unix(last429At.Int64, 0).UTC()
		state.Last429At = &value
	}

	return state, nil
}

// RecordRequest increments the request counter for a user. The first
// request for a user sets the accounting window start.
func (s *Store) RecordRequest(ctx context.Context, userID string) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return errors.New("user id is required")
	}

	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO rate_limits (user_id, request_count, count_429, window_start)
		VALUES (?, 1, 0, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			request_count = request_count + 1
	`, userID, time.Now().UTC().Unix())
	if err != nil {
		return fmt.Errorf("record request: %w", err)
	}

	return nil
}

// Record429 increments the 429 counter for a user and stamps the time
// of the rejection.
func (s *Store) Record429(ctx context.Context, userID string) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return errors.New("user id is required")
	}

	now := time.Now().UTC().Unix()
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO rate_limits (user_id, request_count, count_429, window_start, last_429_at)
		VALUES (?, 0, 1, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			count_429 = count_429 + 1,
			last_429_at = excluded.last_429_at
	`, userID, now, now)
	if err != nil {
		return fmt.Errorf("record 429: %w", err)
	}

	return nil
}

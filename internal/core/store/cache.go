package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sublens/sublens/internal/youtube"
)

// GetCachedTranscript returns a cached transcript for the video if one
// is still valid. Languages are tried in preference order; when none of
// the preferred languages is cached, the most recently fetched valid
// transcript for the video is returned instead.
func (s *Store) GetCachedTranscript(ctx context.Context, videoID string, languages []string) (*youtube.Transcript, *time.Time, error) {
	if s == nil || s.DB == nil {
		return nil, nil, errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	videoID = strings.TrimSpace(videoID)
	if videoID == "" {
		return nil, nil, errors.New("video id is required")
	}

	now := time.Now().UTC().Unix()

	for _, lang := range languages {
		transcript, expires, err := s.scanTranscript(s.DB.QueryRowContext(ctx, `
			SELECT video_id, language_code, language_name, auto_generated, entries_json, expires_at
			FROM transcript_cache
			WHERE video_id = ? AND language_code = ? AND expires_at > ?
		`, videoID, lang, now))
		if err != nil {
			return nil, nil, err
		}
		if transcript != nil {
			return transcript, expires, nil
		}
	}

	transcript, expires, err := s.scanTranscript(s.DB.QueryRowContext(ctx, `
		SELECT video_id, language_code, language_name, auto_generated, entries_json, expires_at
		FROM transcript_cache
		WHERE video_id = ? AND expires_at > ?
		ORDER BY fetched_at DESC
		LIMIT 1
	`, videoID, now))
	if err != nil {
		return nil, nil, err
	}
	return transcript, expires, nil
}

func (s *Store) scanTranscript(row *sql.Row) (*youtube.Transcript, *time.Time, error) {
	var (
		videoID       string
		languageCode  string
		languageName  sql.NullString
		autoGenerated int
		entriesJSON   string
		expiresAt     int64
	)

	if err := row.Scan(&videoID, &languageCode, &languageName, &autoGenerated, &entriesJSON, &expiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("fetch cached transcript: %w", err)
	}

	var entries []youtube.TranscriptEntry
	if err := json.Unmarshal([]byte(entriesJSON), &entries); err != nil {
		return nil, nil, fmt.Errorf("decode cached transcript: %w", err)
	}

	expires := time.Unix(expiresAt, 0).UTC()
	return &youtube.Transcript{
		VideoID:       videoID,
		LanguageCode:  languageCode,
		LanguageName:  languageName.String,
		AutoGenerated: autoGenerated != 0,
		Entries:       entries,
	}, &expires, nil
}

// SetCachedTranscript stores a transcript with a TTL.
func (s *Store) SetCachedTranscript(ctx context.Context, transcript *youtube.Transcript, ttl time.Duration) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	if ttl <= 0 || transcript == nil {
		return nil
	}

	videoID := strings.TrimSpace(transcript.VideoID)
	if videoID == "" {
		return errors.New("video id is required")
	}

	entriesJSON, err := json.Marshal(transcript.Entries)
	if err != nil {
		return fmt.Errorf("encode cached transcript: %w", err)
	}

	autoGenerated := 0
	if transcript.AutoGenerated {
		autoGenerated = 1
	}

	now := time.Now().UTC()
	expires := now.Add(ttl)

	_, err = s.DB.ExecContext(ctx, `
		INSERT INTO transcript_cache (video_id, language_code, language_name, auto_generated, entries_json, fetched_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(video_id, language_code) DO UPDATE SET
			language_name = excluded.language_name,
			auto_generated = excluded.auto_generated,
			entries_json = excluded.entries_json,
			fetched_at = excluded.fetched_at,
			expires_at = excluded.expires_at
	`, videoID, transcript.LanguageCode, transcript.LanguageName, autoGenerated, string(entriesJSON), now.Unix(), expires.Unix())
	if err != nil {
		return fmt.Errorf("store cached transcript: %w", err)
	}

	return nil
}

// PurgeExpired deletes expired transcript and summary cache rows and
// returns the number of rows removed.
func (s *Store) PurgeExpired(ctx context.Context) (int64, error) {
	if s == nil || s.DB == nil {
		return 0, errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	now := time.Now().UTC().Unix()
	var total int64
	for _, table := range []string{"transcript_cache", "summary_cache"} {
		result, err := s.DB.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE expires_at <= ?", table), now)
		if err != nil {
			return total, fmt.Errorf("purge %s: %w", table, err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return total, fmt.Errorf("purge %s: %w", table, err)
		}
		total += affected
	}
	return total, nil
}

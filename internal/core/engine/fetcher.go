package engine

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/sublens/sublens/internal/core"
	"github.com/sublens/sublens/internal/youtube"
)

// Retry defaults, overridable through configuration.
const (
	DefaultMaxRetries = 3
	DefaultBaseDelay  = 2 * time.Second
	DefaultMaxDelay   = 60 * time.Second
)

const fetchSource = "youtube"

// TranscriptSource is the external fetch operation the scheduler
// wraps. It is treated as opaque; the scheduler owns only timing and
// failure classification around it.
type TranscriptSource interface {
	FetchTranscript(ctx context.Context, videoID string, languages []string) (*youtube.Transcript, error)
}

// TranscriptCache persists fetched transcripts across runs.
type TranscriptCache interface {
	GetCachedTranscript(ctx context.Context, videoID string, languages []string) (*youtube.Transcript, *time.Time, error)
	SetCachedTranscript(ctx context.Context, transcript *youtube.Transcript, ttl time.Duration) error
}

// UsageRecorder keeps request counters for diagnostics. Recording
// failures never affect the fetch itself.
type UsageRecorder interface {
	RecordRequest(ctx context.Context, userID string) error
	Record429(ctx context.Context, userID string) error
}

// Fetcher drives a transcript fetch through admission control and a
// bounded retry loop with exponential backoff. Callers receive a
// terminal FetchResult; retries are exhausted internally and no
// partial results are ever returned.
type Fetcher struct {
	Source      TranscriptSource
	Admission   *AdmissionController
	Cache       TranscriptCache
	Usage       UsageRecorder
	CacheTTL    time.Duration
	MaxRetries  int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Rand        func() float64
	Clock       func() time.Time
	ToolVersion string
}

// Fetch runs one fetch cycle for the given user and video. Every
// path, including cancellation, yields a result value; the outcome
// never surfaces as an error.
func (f *Fetcher) Fetch(ctx context.Context, userID, videoID string, languages []string) *core.FetchResult {
	if ctx == nil {
		ctx = context.Background()
	}
	requestedAt := f.now()
	fetchID := uuid.New().String()

	if f.Cache != nil {
		if cached, expiresAt, err := f.Cache.GetCachedTranscript(ctx, videoID, languages); err == nil && cached != nil {
			result := f.result(fetchID, userID, videoID, core.OutcomeSuccess, requestedAt, 0)
			result.Transcript = cached
			result.Provenance.FromCache = true
			result.Provenance.CacheExpiresAt = expiresAt
			return result
		}
	}

	if f.Admission != nil {
		if err := f.Admission.Admit(ctx, userID); err != nil {
			var throttled *ThrottledError
			if errors.As(err, &throttled) {
				result := f.result(fetchID, userID, videoID, core.OutcomeAdmissionRejected, requestedAt, 0)
				result.Message = throttled.UserMessage()
				result.RetryAfter = throttled.Remaining
				return result
			}
			result := f.result(fetchID, userID, videoID, core.OutcomeTimeout, requestedAt, 0)
			result.Message = MsgTimeout
			result.Detail = err.Error()
			return result
		}
	}

	maxRetries := f.maxRetries()
	for i := 0; i < maxRetries; i++ {
		if f.Usage != nil {
			_ = f.Usage.RecordRequest(ctx, userID)
		}

		transcript, err := f.Source.FetchTranscript(ctx, videoID, languages)
		attempts := i + 1
		if err == nil {
			if f.Cache != nil && f.CacheTTL > 0 {
				_ = f.Cache.SetCachedTranscript(ctx, transcript, f.CacheTTL)
			}
			result := f.result(fetchID, userID, videoID, core.OutcomeSuccess, requestedAt, attempts)
			result.Transcript = transcript
			return result
		}

		cls := Classify(err)
		if cls.Outcome == core.OutcomeRateLimited && f.Usage != nil {
			_ = f.Usage.Record429(ctx, userID)
		}

		if !cls.Transient {
			result := f.result(fetchID, userID, videoID, cls.Outcome, requestedAt, attempts)
			result.Message = cls.UserMessage
			result.Detail = err.Error()
			return result
		}

		if i < maxRetries-1 {
			if sleepErr := f.sleep(ctx, f.backoffDelay(i)); sleepErr != nil {
				result := f.result(fetchID, userID, videoID, core.OutcomeTimeout, requestedAt, attempts)
				result.Message = MsgTimeout
				result.Detail = sleepErr.Error()
				return result
			}
		}
	}

	result := f.result(fetchID, userID, videoID, core.OutcomeRateLimited, requestedAt, maxRetries)
	result.Message = MsgRateLimited
	return result
}

// backoffDelay computes the wait before retrying attempt i+1:
// BaseDelay doubled per attempt plus up to one second of jitter,
// clamped to MaxDelay.
func (f *Fetcher) backoffDelay(attempt int) time.Duration {
	delay := f.baseDelay() << uint(attempt)
	delay += time.Duration(f.jitter() * float64(time.Second))
	if maxDelay := f.maxDelay(); delay > maxDelay {
		delay = maxDelay
	}
	return delay
}

func (f *Fetcher) jitter() float64 {
	if f.Rand != nil {
		return f.Rand()
	}
	return rand.Float64()
}

func (f *Fetcher) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (f *Fetcher) result(fetchID, userID, videoID string, outcome core.Outcome, requestedAt time.Time, attempts int) *core.FetchResult {
	return &core.FetchResult{
		VideoID:  videoID,
		UserID:   userID,
		Outcome:  outcome,
		Attempts: attempts,
		Provenance: core.Provenance{
			FetchID:     fetchID,
			RequestedAt: requestedAt,
			ResolvedAt:  f.now(),
			Source:      fetchSource,
			ToolVersion: f.ToolVersion,
		},
	}
}

func (f *Fetcher) maxRetries() int {
	if f.MaxRetries > 0 {
		return f.MaxRetries
	}
	return DefaultMaxRetries
}

func (f *Fetcher) baseDelay() time.Duration {
	if f.BaseDelay > 0 {
		return f.BaseDelay
	}
	return DefaultBaseDelay
}

func (f *Fetcher) maxDelay() time.Duration {
	if f.MaxDelay > 0 {
		return f.MaxDelay
	}
	return DefaultMaxDelay
}

func (f *Fetcher) now() time.Time {
	if f.Clock != nil {
		return f.Clock()
	}
	return time.Now().UTC()
}

package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sublens/sublens/internal/core"
	"github.com/sublens/sublens/internal/youtube"
)

type stubSource struct {
	errs    []error
	calls   int
	perCall func(attempt int)
}

func (s *stubSource) FetchTranscript(ctx context.Context, videoID string, languages []string) (*youtube.Transcript, error) {
	attempt := s.calls
	s.calls++
	if s.perCall != nil {
		s.perCall(attempt)
	}
	if attempt < len(s.errs) && s.errs[attempt] != nil {
		return nil, s.errs[attempt]
	}
	return &youtube.Transcript{
		VideoID:      videoID,
		LanguageCode: "en",
		Entries:      []youtube.TranscriptEntry{{Text: "hello"}},
	}, nil
}

type stubCache struct {
	transcript *youtube.Transcript
	stored     *youtube.Transcript
}

func (c *stubCache) GetCachedTranscript(ctx context.Context, videoID string, languages []string) (*youtube.Transcript, *time.Time, error) {
	return c.transcript, nil, nil
}

func (c *stubCache) SetCachedTranscript(ctx context.Context, transcript *youtube.Transcript, ttl time.Duration) error {
	c.stored = transcript
	return nil
}

type stubUsage struct {
	requests int
	limited  int
}

func (u *stubUsage) RecordRequest(ctx context.Context, userID string) error {
	u.requests++
	return nil
}

func (u *stubUsage) Record429(ctx context.Context, userID string) error {
	u.limited++
	return nil
}

func rateLimitErr() error {
	return &youtube.FetchError{Kind: youtube.KindRateLimited, Message: "YouTube rate limited the request"}
}

func testFetcher(source *stubSource) *Fetcher {
	return &Fetcher{
		Source:     source,
		MaxRetries: 3,
		BaseDelay:  time.Millisecond,
		MaxDelay:   10 * time.Millisecond,
		Rand:       func() float64 { return 0 },
	}
}

func TestFetchSuccessFirstAttempt(t *testing.T) {
	source := &stubSource{}
	fetcher := testFetcher(source)

	result := fetcher.Fetch(context.Background(), "alice", "dQw4w9WgXcQ", []string{"en"})
	require.Equal(t, core.OutcomeSuccess, result.Outcome)
	require.Equal(t, 1, result.Attempts)
	require.Equal(t, 1, source.calls)
	require.NotNil(t, result.Transcript)
	require.NotEmpty(t, result.Provenance.FetchID)
}

func TestFetchTransientThenSuccess(t *testing.T) {
	source := &stubSource{errs: []error{rateLimitErr(), rateLimitErr(), nil}}
	fetcher := testFetcher(source)

	result := fetcher.Fetch(context.Background(), "alice", "dQw4w9WgXcQ", nil)
	require.Equal(t, core.OutcomeSuccess, result.Outcome)
	require.Equal(t, 3, result.Attempts)
	require.Equal(t, 3, source.calls)
}

func TestFetchAllTransientExhaustsRetries(t *testing.T) {
	source := &stubSource{errs: []error{rateLimitErr(), rateLimitErr(), rateLimitErr()}}
	usage := &stubUsage{}
	fetcher := testFetcher(source)
	fetcher.Usage = usage

	result := fetcher.Fetch(context.Background(), "alice", "dQw4w9WgXcQ", nil)
	require.Equal(t, core.OutcomeRateLimited, result.Outcome)
	require.Equal(t, MsgRateLimited, result.Message)
	require.Equal(t, 3, result.Attempts)
	require.Equal(t, 3, source.calls)
	require.Equal(t, 3, usage.requests)
	require.Equal(t, 3, usage.limited)
}

func TestFetchPermanentFailureStopsImmediately(t *testing.T) {
	source := &stubSource{errs: []error{
		&youtube.FetchError{Kind: youtube.KindTranscriptsDisabled, Message: "subtitles are disabled"},
	}}
	fetcher := testFetcher(source)

	result := fetcher.Fetch(context.Background(), "alice", "dQw4w9WgXcQ", nil)
	require.Equal(t, core.OutcomeTranscriptsDisabled, result.Outcome)
	require.Equal(t, MsgTranscriptsDisabled, result.Message)
	require.Equal(t, 1, result.Attempts)
	require.Equal(t, 1, source.calls)
	require.Contains(t, result.Detail, "subtitles are disabled")
}

func TestFetchAdmissionRejected(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ctrl := NewAdmissionController(15*time.Second, time.Millisecond)
	ctrl.Clock = func() time.Time { return now }

	source := &stubSource{}
	fetcher := testFetcher(source)
	fetcher.Admission = ctrl
	fetcher.Clock = ctrl.Clock

	first := fetcher.Fetch(context.Background(), "alice", "dQw4w9WgXcQ", nil)
	require.Equal(t, core.OutcomeSuccess, first.Outcome)

	now = now.Add(5 * time.Second)
	second := fetcher.Fetch(context.Background(), "alice", "dQw4w9WgXcQ", nil)
	require.Equal(t, core.OutcomeAdmissionRejected, second.Outcome)
	require.Equal(t, 10*time.Second, second.RetryAfter)
	require.Equal(t, 0, second.Attempts)
	require.Equal(t, 1, source.calls)
}

func TestFetchCacheHitSkipsNetwork(t *testing.T) {
	source := &stubSource{}
	cache := &stubCache{transcript: &youtube.Transcript{VideoID: "dQw4w9WgXcQ"}}
	fetcher := testFetcher(source)
	fetcher.Cache = cache

	result := fetcher.Fetch(context.Background(), "alice", "dQw4w9WgXcQ", nil)
	require.Equal(t, core.OutcomeSuccess, result.Outcome)
	require.True(t, result.Provenance.FromCache)
	require.Equal(t, 0, result.Attempts)
	require.Equal(t, 0, source.calls)
}

func TestFetchStoresSuccessInCache(t *testing.T) {
	source := &stubSource{}
	cache := &stubCache{}
	fetcher := testFetcher(source)
	fetcher.Cache = cache
	fetcher.CacheTTL = time.Hour

	result := fetcher.Fetch(context.Background(), "alice", "dQw4w9WgXcQ", nil)
	require.Equal(t, core.OutcomeSuccess, result.Outcome)
	require.NotNil(t, cache.stored)
	require.Equal(t, "dQw4w9WgXcQ", cache.stored.VideoID)
}

func TestFetchCancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	source := &stubSource{
		errs:    []error{rateLimitErr(), rateLimitErr(), rateLimitErr()},
		perCall: func(attempt int) { cancel() },
	}
	fetcher := testFetcher(source)
	fetcher.BaseDelay = time.Second

	result := fetcher.Fetch(ctx, "alice", "dQw4w9WgXcQ", nil)
	require.Equal(t, core.OutcomeTimeout, result.Outcome)
	require.Equal(t, 1, result.Attempts)
	require.Equal(t, 1, source.calls)
}

func TestBackoffDelaySequence(t *testing.T) {
	fetcher := &Fetcher{
		BaseDelay: 2 * time.Second,
		MaxDelay:  60 * time.Second,
		Rand:      func() float64 { return 0 },
	}

	want := []time.Duration{
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
		16 * time.Second,
		32 * time.Second,
		60 * time.Second,
	}
	for i, expected := range want {
		require.Equal(t, expected, fetcher.backoffDelay(i), "attempt %d", i)
	}
}

func TestBackoffJitterBounded(t *testing.T) {
	fetcher := &Fetcher{
		BaseDelay: 2 * time.Second,
		MaxDelay:  60 * time.Second,
		Rand:      func() float64 { return 0.999 },
	}

	delay := fetcher.backoffDelay(0)
	require.GreaterOrEqual(t, delay, 2*time.Second)
	require.Less(t, delay, 3*time.Second)
}

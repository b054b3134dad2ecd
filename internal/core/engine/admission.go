package engine

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"
)

// Admission defaults. All of them can be overridden through
// configuration; these values only apply when the corresponding
// field is left zero.
const (
	DefaultUserInterval   = 15 * time.Second
	DefaultGlobalInterval = 2 * time.Second
	DefaultSweepInterval  = time.Minute
)

// ThrottledError is the rejection signal for a user that asked again
// too soon. It is an expected outcome, not a fault.
type ThrottledError struct {
	UserID    string
	Remaining time.Duration
}

// Error implements the error interface.
func (e *ThrottledError) Error() string {
	return fmt.Sprintf("user %s throttled for %s", e.UserID, e.Remaining.Round(time.Millisecond))
}

// UserMessage renders the fixed wait prompt shown to the user.
func (e *ThrottledError) UserMessage() string {
	seconds := int(math.Ceil(e.Remaining.Seconds()))
	if seconds < 1 {
		seconds = 1
	}
	return fmt.Sprintf("Подождите %d сек. перед следующим запросом.", seconds)
}

// AdmissionController gates fetch requests before they reach the
// network. A request passes two rules: the per-user minimum interval
// (non-blocking, rejects with the remaining wait) and the global
// minimum interval (blocking, spaces admitted requests apart).
//
// The per-user map is swept periodically so idle users do not
// accumulate forever. Entries older than TTL are dropped; a dropped
// entry only means the next request from that user is admitted
// without a per-user wait, which is already true once TTL >= the
// user interval.
type AdmissionController struct {
	UserInterval   time.Duration
	GlobalInterval time.Duration
	TTL            time.Duration
	SweepInterval  time.Duration
	Clock          func() time.Time

	mu         sync.Mutex
	users      map[string]time.Time
	lastGlobal time.Time

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewAdmissionController builds a controller with the given
// intervals. Zero values fall back to the defaults; the TTL defaults
// to ten user intervals.
func NewAdmissionController(userInterval, globalInterval time.Duration) *AdmissionController {
	if userInterval <= 0 {
		userInterval = DefaultUserInterval
	}
	if globalInterval <= 0 {
		globalInterval = DefaultGlobalInterval
	}
	return &AdmissionController{
		UserInterval:   userInterval,
		GlobalInterval: globalInterval,
		TTL:            10 * userInterval,
		users:          make(map[string]time.Time),
		stopChan:       make(chan struct{}),
	}
}

// Admit checks the per-user interval and reserves the next global
// slot. On success it blocks until the reserved slot arrives, which
// guarantees admitted requests across all users are spaced at least
// GlobalInterval apart. A *ThrottledError is returned when the user
// asked again too soon; the global state is untouched in that case.
//
// The wait is cancellable. If ctx ends while waiting the reserved
// slot stays consumed and ctx.Err() is returned.
func (a *AdmissionController) Admit(ctx context.Context, userID string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	now := a.now()

	a.mu.Lock()
	if last, ok := a.users[userID]; ok {
		if remaining := a.userInterval() - now.Sub(last); remaining > 0 {
			a.mu.Unlock()
			return &ThrottledError{UserID: userID, Remaining: remaining}
		}
	}

	slot := now
	if next := a.lastGlobal.Add(a.globalInterval()); next.After(slot) {
		slot = next
	}
	a.lastGlobal = slot
	if a.users == nil {
		a.users = make(map[string]time.Time)
	}
	a.users[userID] = slot
	a.mu.Unlock()

	if wait := slot.Sub(now); wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	return nil
}

// StartSweep launches the background goroutine that evicts stale
// per-user entries. It stops when ctx is cancelled or Stop is called.
func (a *AdmissionController) StartSweep(ctx context.Context) {
	if a.stopChan == nil {
		a.stopChan = make(chan struct{})
	}
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		ticker := time.NewTicker(a.sweepInterval())
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-a.stopChan:
				return
			case <-ticker.C:
				a.sweep(a.now())
			}
		}
	}()
}

// Stop halts the sweep goroutine and waits for it to exit. Safe to
// call multiple times.
func (a *AdmissionController) Stop() {
	a.stopOnce.Do(func() {
		if a.stopChan != nil {
			close(a.stopChan)
		}
	})
	a.wg.Wait()
}

// TrackedUsers returns the number of users currently tracked.
func (a *AdmissionController) TrackedUsers() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.users)
}

func (a *AdmissionController) sweep(now time.Time) {
	ttl := a.ttl()
	if ttl <= 0 {
		return
	}
	cutoff := now.Add(-ttl)

	a.mu.Lock()
	defer a.mu.Unlock()
	for userID, last := range a.users {
		if last.Before(cutoff) {
			delete(a.users, userID)
		}
	}
}

func (a *AdmissionController) userInterval() time.Duration {
	if a.UserInterval > 0 {
		return a.UserInterval
	}
	return DefaultUserInterval
}

func (a *AdmissionController) globalInterval() time.Duration {
	if a.GlobalInterval > 0 {
		return a.GlobalInterval
	}
	return DefaultGlobalInterval
}

func (a *AdmissionController) ttl() time.Duration {
	if a.TTL > 0 {
		return a.TTL
	}
	return 10 * a.userInterval()
}

func (a *AdmissionController) sweepInterval() time.Duration {
	if a.SweepInterval > 0 {
		return a.SweepInterval
	}
	return DefaultSweepInterval
}

func (a *AdmissionController) now() time.Time {
	if a.Clock != nil {
		return a.Clock()
	}
	return time.Now().UTC()
}

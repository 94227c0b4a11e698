package web

// limiter.go bounds how many workbook operations run at once.
//
// Every connector call opens, reads and possibly rewrites a whole workbook,
// so the server admits at most maxConcurrent of them. Requests that cannot get
// a slot within maxWait are rejected with 503. WaitForDrain lets shutdown
// finish in-flight writes before the process exits.

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"
)

// ErrBusy is returned when all workbook slots stay occupied for maxWait.
var ErrBusy = errors.New("too many concurrent workbook operations, please try again later")

// Defaults applied when the configured values are not positive.
const (
	DefaultMaxConcurrent = 8
	DefaultMaxWait       = 30 * time.Second
)

// WorkbookLimiter is a semaphore over workbook operations.
type WorkbookLimiter struct {
	semaphore chan struct{}
	maxWait   time.Duration

	mu     sync.RWMutex
	active int
}

// NewWorkbookLimiter allows at most maxConcurrent operations at a time.
func NewWorkbookLimiter(maxConcurrent int, maxWait time.Duration) *WorkbookLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWait
	}
	return &WorkbookLimiter{
		semaphore: make(chan struct{}, maxConcurrent),
		maxWait:   maxWait,
	}
}

// Acquire waits for a slot. The caller must Release it.
func (l *WorkbookLimiter) Acquire(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, l.maxWait)
	defer cancel()

	select {
	case l.semaphore <- struct{}{}:
		l.mu.Lock()
		l.active++
		l.mu.Unlock()
		return nil
	case <-waitCtx.Done():
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrBusy
	}
}

// Release returns a slot taken by Acquire.
func (l *WorkbookLimiter) Release() {
	l.mu.Lock()
	l.active--
	l.mu.Unlock()
	<-l.semaphore
}

// ActiveCount returns the number of operations holding a slot.
func (l *WorkbookLimiter) ActiveCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.active
}

// WaitForDrain blocks until no operation holds a slot or ctx is done.
func (l *WorkbookLimiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		if l.ActiveCount() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// LimiterStatus is a snapshot of the limiter.
type LimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

// Status returns the current limiter state.
func (l *WorkbookLimiter) Status() LimiterStatus {
	l.mu.RLock()
	active := l.active
	l.mu.RUnlock()

	return LimiterStatus{
		Active:        active,
		Available:     cap(l.semaphore) - len(l.semaphore),
		MaxConcurrent: cap(l.semaphore),
	}
}

// middleware holds a slot for the duration of the request.
func (l *WorkbookLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := l.Acquire(r.Context()); err != nil {
			w.Header().Set("Retry-After", "5")
			writeError(w, r, http.StatusServiceUnavailable, "WORKBOOK_BUSY", err.Error())
			return
		}
		defer l.Release()
		next.ServeHTTP(w, r)
	})
}

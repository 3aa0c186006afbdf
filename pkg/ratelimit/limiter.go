// Package ratelimit bounds concurrent in-flight provider API calls for a
// single scan context and retries throttled/transient failures with
// jittered exponential backoff.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// ErrCancelled is returned when the context is cancelled while a caller is
// waiting for a concurrency slot.
var ErrCancelled = errors.New("ratelimit: operation cancelled while waiting for slot")

// Classification is the outcome of inspecting an error returned by a
// provider API call.
type Classification int

const (
	// Terminal errors are never retried.
	Terminal Classification = iota
	// Throttled errors are explicit rate-limit signals from the provider.
	Throttled
	// Transient errors are retried identically to Throttled.
	Transient
)

var throttledCodes = map[string]struct{}{
	"Throttling":               {},
	"ThrottlingException":      {},
	"RequestLimitExceeded":     {},
	"TooManyRequestsException": {},
	"429":                      {},
}

var transientCodes = map[string]struct{}{
	"ServiceUnavailable": {},
	"RequestTimeout":     {},
}

// CodedError is implemented by errors that carry a provider error code,
// e.g. AWS smithy API errors and Azure ResponseError.
type CodedError interface {
	ErrorCode() string
}

// Classify inspects err and decides whether the call should be retried.
func Classify(err error) Classification {
	if err == nil {
		return Terminal
	}

	code := ""
	var coded CodedError
	if errors.As(err, &coded) {
		code = coded.ErrorCode()
	}

	msg := strings.ToLower(err.Error())

	if code != "" {
		if _, ok := throttledCodes[code]; ok {
			return Throttled
		}
		if _, ok := transientCodes[code]; ok {
			return Transient
		}
		if n, convErr := strconv.Atoi(code); convErr == nil {
			return classifyStatus(n)
		}
	}

	if strings.Contains(msg, "rate exceeded") || strings.Contains(msg, "throttled") || strings.Contains(msg, "throttling") {
		return Throttled
	}

	for c := range throttledCodes {
		if strings.Contains(msg, strings.ToLower(c)) {
			return Throttled
		}
	}
	for c := range transientCodes {
		if strings.Contains(msg, strings.ToLower(c)) {
			return Transient
		}
	}
	if status, ok := extractHTTPStatus(msg); ok {
		return classifyStatus(status)
	}

	return Terminal
}

func classifyStatus(status int) Classification {
	switch {
	case status == 429:
		return Throttled
	case status == 501:
		return Terminal
	case status >= 500 && status < 600:
		return Transient
	default:
		return Terminal
	}
}

func extractHTTPStatus(msg string) (int, bool) {
	for _, candidate := range []string{"status code: ", "statuscode: ", "http status "} {
		if idx := strings.Index(msg, candidate); idx >= 0 {
			rest := msg[idx+len(candidate):]
			rest = strings.TrimLeft(rest, " ")
			end := 0
			for end < len(rest) && rest[end] >= '0' && rest[end] <= '9' {
				end++
			}
			if end > 0 {
				if n, err := strconv.Atoi(rest[:end]); err == nil {
					return n, true
				}
			}
		}
	}
	return 0, false
}

// Config tunes a Limiter's concurrency and retry behavior.
type Config struct {
	MaxConcurrent int
	MaxRetries    int
	BaseDelay     time.Duration
	MaxDelay      time.Duration
}

// DefaultConfig returns the defaults named in spec.md §4.1.
func DefaultConfig() Config {
	return Config{
		MaxConcurrent: 10,
		MaxRetries:    5,
		BaseDelay:     250 * time.Millisecond,
		MaxDelay:      30 * time.Second,
	}
}

// Stats is a point-in-time snapshot of a Limiter's counters.
type Stats struct {
	TotalRequests     int64
	ThrottledRequests int64
	SuccessfulResults int64
	TerminalFailures  int64
	CurrentConcurrent int64
	QueueLength       int64
	ThrottleRate      float64
}

// Limiter is a single shared gate for one scanner context.
type Limiter struct {
	cfg Config

	slots chan struct{}

	mu sync.Mutex

	totalRequests     int64
	throttledRequests int64
	successfulResults int64
	terminalFailures  int64
	currentConcurrent int64
	queueLength       int64

	rng *rand.Rand
}

// New constructs a Limiter. A zero-value cfg.MaxConcurrent falls back to
// DefaultConfig's value.
func New(cfg Config) *Limiter {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = DefaultConfig().MaxConcurrent
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultConfig().MaxRetries
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = DefaultConfig().BaseDelay
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = DefaultConfig().MaxDelay
	}
	return &Limiter{
		cfg:   cfg,
		slots: make(chan struct{}, cfg.MaxConcurrent),
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Op is an idempotent, retryable provider API call.
type Op func(ctx context.Context) (any, error)

// WithBackoff acquires a concurrency slot, invokes op, and retries
// Throttled/Transient failures with jittered exponential backoff up to
// cfg.MaxRetries. Terminal failures and context cancellation return
// immediately.
func (l *Limiter) WithBackoff(ctx context.Context, op Op) (any, error) {
	atomic.AddInt64(&l.queueLength, 1)
	select {
	case l.slots <- struct{}{}:
		atomic.AddInt64(&l.queueLength, -1)
	case <-ctx.Done():
		atomic.AddInt64(&l.queueLength, -1)
		return nil, ErrCancelled
	}
	atomic.AddInt64(&l.currentConcurrent, 1)
	defer func() {
		<-l.slots
		atomic.AddInt64(&l.currentConcurrent, -1)
	}()

	var lastErr error
	for attempt := 0; attempt <= l.cfg.MaxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ErrCancelled
		}

		atomic.AddInt64(&l.totalRequests, 1)
		result, err := op(ctx)
		if err == nil {
			atomic.AddInt64(&l.successfulResults, 1)
			return result, nil
		}
		lastErr = err

		class := Classify(err)
		if class == Terminal {
			atomic.AddInt64(&l.terminalFailures, 1)
			return nil, err
		}

		if attempt == l.cfg.MaxRetries {
			// This attempt was itself throttled/transient, but since no
			// retry follows it counts as the operation's terminal outcome,
			// not as a retried request: totalRequests == throttledRequests
			// + successfulResults + terminalFailures must hold per-attempt.
			atomic.AddInt64(&l.terminalFailures, 1)
			return nil, fmt.Errorf("exhausted %d retries: %w", l.cfg.MaxRetries, err)
		}

		atomic.AddInt64(&l.throttledRequests, 1)

		delay := l.backoffDelay(attempt)
		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return nil, ErrCancelled
		}
	}
	return nil, lastErr
}

func (l *Limiter) backoffDelay(attempt int) time.Duration {
	base := l.cfg.BaseDelay * time.Duration(1<<uint(attempt))
	if base > l.cfg.MaxDelay {
		base = l.cfg.MaxDelay
	}
	l.mu.Lock()
	jitter := time.Duration(l.rng.Int63n(int64(l.cfg.BaseDelay) + 1))
	l.mu.Unlock()
	total := base + jitter
	if total > l.cfg.MaxDelay {
		total = l.cfg.MaxDelay
	}
	return total
}

// Stats returns a snapshot of the limiter's counters.
func (l *Limiter) Stats() Stats {
	total := atomic.LoadInt64(&l.totalRequests)
	throttled := atomic.LoadInt64(&l.throttledRequests)
	var rate float64
	if total > 0 {
		rate = float64(throttled) / float64(total)
	}
	return Stats{
		TotalRequests:     total,
		ThrottledRequests: throttled,
		SuccessfulResults: atomic.LoadInt64(&l.successfulResults),
		TerminalFailures:  atomic.LoadInt64(&l.terminalFailures),
		CurrentConcurrent: atomic.LoadInt64(&l.currentConcurrent),
		QueueLength:       atomic.LoadInt64(&l.queueLength),
		ThrottleRate:      rate,
	}
}

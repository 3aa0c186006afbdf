package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type codedErr struct{ code string }

func (e codedErr) Error() string   { return "coded error: " + e.code }
func (e codedErr) ErrorCode() string { return e.code }

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Classification
	}{
		{"nil error is terminal", nil, Terminal},
		{"coded throttling", codedErr{"ThrottlingException"}, Throttled},
		{"coded transient", codedErr{"ServiceUnavailable"}, Transient},
		{"coded numeric 429", codedErr{"429"}, Throttled},
		{"coded numeric 503", codedErr{"503"}, Transient},
		{"coded numeric 501 not low-level retryable", codedErr{"501"}, Terminal},
		{"message mentions rate exceeded", errors.New("rate exceeded, try later"), Throttled},
		{"message mentions throttled", errors.New("request was throttled"), Throttled},
		{"message embeds http status 429", errors.New("http status 429: too many requests"), Throttled},
		{"message embeds status code 500", errors.New("status code: 500, internal error"), Transient},
		{"unrelated error is terminal", errors.New("access denied"), Terminal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.err))
		})
	}
}

func TestLimiterBoundsConcurrency(t *testing.T) {
	l := New(Config{MaxConcurrent: 2, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond})

	var current, maxSeen int64
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = l.WithBackoff(context.Background(), func(ctx context.Context) (any, error) {
				n := atomic.AddInt64(&current, 1)
				for {
					old := atomic.LoadInt64(&maxSeen)
					if n <= old || atomic.CompareAndSwapInt64(&maxSeen, old, n) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				atomic.AddInt64(&current, -1)
				return nil, nil
			})
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, atomic.LoadInt64(&maxSeen), int64(2))
}

func TestLimiterRetriesThrottledThenSucceeds(t *testing.T) {
	l := New(Config{MaxConcurrent: 1, MaxRetries: 3, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond})

	attempts := 0
	result, err := l.WithBackoff(context.Background(), func(ctx context.Context) (any, error) {
		attempts++
		if attempts < 3 {
			return nil, codedErr{"ThrottlingException"}
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 3, attempts)

	stats := l.Stats()
	assert.Equal(t, int64(3), stats.TotalRequests)
	assert.Equal(t, int64(1), stats.SuccessfulResults)
	assert.Equal(t, int64(2), stats.ThrottledRequests)
}

func TestLimiterTerminalFailsImmediately(t *testing.T) {
	l := New(Config{MaxConcurrent: 1, MaxRetries: 5, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond})

	attempts := 0
	_, err := l.WithBackoff(context.Background(), func(ctx context.Context) (any, error) {
		attempts++
		return nil, errors.New("access denied")
	})

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
	assert.Equal(t, int64(1), l.Stats().TerminalFailures)
}

func TestLimiterExhaustsRetriesAsTerminal(t *testing.T) {
	l := New(Config{MaxConcurrent: 1, MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond})

	attempts := 0
	_, err := l.WithBackoff(context.Background(), func(ctx context.Context) (any, error) {
		attempts++
		return nil, codedErr{"ThrottlingException"}
	})

	require.Error(t, err)
	assert.Equal(t, 3, attempts) // initial + 2 retries
	stats := l.Stats()
	assert.Equal(t, int64(1), stats.TerminalFailures)
	assert.Equal(t, int64(2), stats.ThrottledRequests)
}

func TestLimiterCancelledWhileWaitingForSlot(t *testing.T) {
	l := New(Config{MaxConcurrent: 1})

	release := make(chan struct{})
	go func() {
		_, _ = l.WithBackoff(context.Background(), func(ctx context.Context) (any, error) {
			<-release
			return nil, nil
		})
	}()
	time.Sleep(10 * time.Millisecond) // let the first op take the only slot

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := l.WithBackoff(ctx, func(ctx context.Context) (any, error) {
		return nil, fmt.Errorf("should never run")
	})
	assert.ErrorIs(t, err, ErrCancelled)

	close(release)
}

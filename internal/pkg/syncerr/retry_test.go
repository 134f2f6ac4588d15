package syncerr

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPolicy(maxRetries int) *RetryPolicy {
	classifier := NewClassifier(NewRecorder(), nil)
	return NewRetryPolicy(maxRetries, time.Millisecond, 50*time.Millisecond, classifier, nil)
}

func TestDo_SucceedsFirstAttempt(t *testing.T) {
	policy := testPolicy(3)

	calls := 0
	err := policy.Do(context.Background(), "op", func() error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_RetriesTransientUntilSuccess(t *testing.T) {
	policy := testPolicy(3)

	calls := 0
	err := policy.Do(context.Background(), "op", func() error {
		calls++
		if calls < 3 {
			return New(CategoryNetwork, errors.New("refused"))
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_ExhaustsRetryBudget(t *testing.T) {
	policy := testPolicy(2)

	calls := 0
	failure := New(CategoryTimeout, errors.New("slow"))
	err := policy.Do(context.Background(), "op", func() error {
		calls++
		return failure
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, failure)
	// First attempt plus two retries
	assert.Equal(t, 3, calls)
}

func TestDo_NonRetryableFailsImmediately(t *testing.T) {
	policy := testPolicy(5)

	calls := 0
	err := policy.Do(context.Background(), "op", func() error {
		calls++
		return New(CategoryNotFound, errors.New("gone"))
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_PermanentFailsImmediately(t *testing.T) {
	policy := testPolicy(5)

	calls := 0
	err := policy.Do(context.Background(), "op", func() error {
		calls++
		return NewPermanent(CategoryServer, errors.New("rejected"))
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_ContextCancelStopsBackoff(t *testing.T) {
	classifier := NewClassifier(NewRecorder(), nil)
	policy := NewRetryPolicy(5, time.Minute, time.Hour, classifier, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := policy.Do(ctx, "op", func() error {
		return New(CategoryNetwork, errors.New("refused"))
	})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestDelay_GrowsExponentially(t *testing.T) {
	classifier := NewClassifier(nil, nil)
	policy := NewRetryPolicy(3, 100*time.Millisecond, time.Hour, classifier, nil)

	// Jitter adds at most 10%, so the lower bound doubles cleanly
	for attempt := 0; attempt < 4; attempt++ {
		base := 100 * time.Millisecond << uint(attempt)
		delay := policy.Delay(attempt)
		assert.GreaterOrEqual(t, delay, base, "attempt %d", attempt)
		assert.LessOrEqual(t, delay, base+base/10, "attempt %d", attempt)
	}
}

func TestDelay_CappedAtMax(t *testing.T) {
	classifier := NewClassifier(nil, nil)
	policy := NewRetryPolicy(3, time.Second, 30*time.Second, classifier, nil)

	for _, attempt := range []int{10, 30, 100} {
		assert.LessOrEqual(t, policy.Delay(attempt), 30*time.Second, "attempt %d", attempt)
	}
}

func TestDelay_NegativeAttemptTreatedAsFirst(t *testing.T) {
	classifier := NewClassifier(nil, nil)
	policy := NewRetryPolicy(3, 100*time.Millisecond, time.Hour, classifier, nil)

	delay := policy.Delay(-5)
	assert.GreaterOrEqual(t, delay, 100*time.Millisecond)
	assert.LessOrEqual(t, delay, 110*time.Millisecond)
}

// internal/pkg/syncerr/retry.go
package syncerr

import (
	"context"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"
)

// RetryPolicy implements exponential backoff with jitter for transient
// failures. The same policy instance is shared by cart validation and
// offline queue replay so both degrade identically under a flaky
// product source.
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration

	classifier *Classifier
	logger     *logrus.Logger
}

// NewRetryPolicy creates a retry policy. MaxRetries counts additional
// attempts after the first call.
func NewRetryPolicy(maxRetries int, baseDelay, maxDelay time.Duration, classifier *Classifier, logger *logrus.Logger) *RetryPolicy {
	return &RetryPolicy{
		MaxRetries: maxRetries,
		BaseDelay:  baseDelay,
		MaxDelay:   maxDelay,
		classifier: classifier,
		logger:     logger,
	}
}

// Delay computes the backoff delay before retry number attempt (0-based):
// base doubled per attempt, plus random jitter up to 10% of the computed
// delay, capped at MaxDelay.
func (p *RetryPolicy) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt > 30 {
		attempt = 30
	}

	delay := p.BaseDelay << uint(attempt)
	if delay > p.MaxDelay || delay <= 0 {
		delay = p.MaxDelay
	}

	if jitterRange := int64(delay / 10); jitterRange > 0 {
		delay += time.Duration(rand.Int63n(jitterRange + 1))
	}
	if delay > p.MaxDelay {
		delay = p.MaxDelay
	}

	return delay
}

// Do runs fn, retrying transient failures until the retry budget is spent.
// Non-retryable failures are returned immediately. The context cancels
// any in-progress backoff wait.
func (p *RetryPolicy) Do(ctx context.Context, operation string, fn func() error) error {
	var err error

	for attempt := 0; ; attempt++ {
		err = fn()
		if err == nil {
			if attempt > 0 && p.logger != nil {
				p.logger.WithFields(logrus.Fields{
					"operation": operation,
					"attempts":  attempt + 1,
				}).Info("Operation succeeded after retry")
			}
			return nil
		}

		if !p.classifier.Retryable(err) {
			return err
		}
		if attempt >= p.MaxRetries {
			if p.logger != nil {
				p.logger.WithFields(logrus.Fields{
					"operation": operation,
					"attempts":  attempt + 1,
					"error":     err.Error(),
				}).Warn("Retry budget exhausted")
			}
			return err
		}

		delay := p.Delay(attempt)
		if p.logger != nil {
			p.logger.WithFields(logrus.Fields{
				"operation":      operation,
				"attempt":        attempt + 1,
				"retry_delay_ms": delay.Milliseconds(),
				"error":          err.Error(),
			}).Warn("Transient failure, retrying")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}

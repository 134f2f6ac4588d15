// internal/pkg/syncerr/classify.go
package syncerr

import (
	"context"
	"errors"
	"net"

	"github.com/sirupsen/logrus"
)

// Category identifies the failure class of an error for retry decisions
type Category string

const (
	CategoryNetwork    Category = "network"
	CategoryTimeout    Category = "timeout"
	CategoryServer     Category = "server"
	CategoryValidation Category = "validation"
	CategoryNotFound   Category = "not_found"
	CategoryPermission Category = "permission"
	CategoryGeneral    Category = "general"
)

// Error is an error tagged with a failure category. Permanent marks
// failures that must never be retried even when the category itself
// is transient (e.g. a server rejecting an invalid order).
type Error struct {
	Category  Category
	Permanent bool
	Err       error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err == nil {
		return string(e.Category)
	}
	return e.Err.Error()
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// New wraps err with the given category
func New(category Category, err error) *Error {
	return &Error{Category: category, Err: err}
}

// NewPermanent wraps err with the given category and marks it non-retryable
func NewPermanent(category Category, err error) *Error {
	return &Error{Category: category, Permanent: true, Err: err}
}

// Classifier assigns failure categories to errors and records them on an
// injected Recorder. It replaces any notion of ambient global error counters.
type Classifier struct {
	recorder *Recorder
	logger   *logrus.Logger
}

// NewClassifier creates a classifier backed by the given recorder
func NewClassifier(recorder *Recorder, logger *logrus.Logger) *Classifier {
	return &Classifier{
		recorder: recorder,
		logger:   logger,
	}
}

// Classify determines the failure category of err and records it
func (c *Classifier) Classify(err error) Category {
	category := categorize(err)

	if c.recorder != nil {
		c.recorder.Record(category, err)
	}
	if c.logger != nil {
		c.logger.WithFields(logrus.Fields{
			"category": category,
			"error":    err.Error(),
		}).Debug("Classified failure")
	}

	return category
}

// Retryable reports whether err may be retried under the shared policy.
// Only network, timeout and server failures qualify, and only when not
// marked permanent.
func (c *Classifier) Retryable(err error) bool {
	var tagged *Error
	if errors.As(err, &tagged) && tagged.Permanent {
		return false
	}

	switch c.Classify(err) {
	case CategoryNetwork, CategoryTimeout, CategoryServer:
		return true
	default:
		return false
	}
}

func categorize(err error) Category {
	if err == nil {
		return CategoryGeneral
	}

	// Explicitly tagged errors win
	var tagged *Error
	if errors.As(err, &tagged) {
		return tagged.Category
	}

	// Context deadlines and network-level timeouts
	if errors.Is(err, context.DeadlineExceeded) {
		return CategoryTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return CategoryTimeout
		}
		return CategoryNetwork
	}

	return CategoryGeneral
}

// Package errors provides domain-specific error types and sentinel errors
// shared by the search client, the Send API client and the handlers.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common scenarios.
// Use errors.Is() to check these errors in your code.
var (
	// ErrNoResult indicates a search response carried no usable poster URL.
	ErrNoResult = errors.New("no search result")

	// ErrUnknownTopic indicates a search was requested for a topic without an endpoint.
	ErrUnknownTopic = errors.New("unknown search topic")

	// ErrSendFailed indicates an outbound Send API call failed in transport.
	ErrSendFailed = errors.New("send failed")

	// ErrNotFound indicates a cache lookup found nothing fresh.
	ErrNotFound = errors.New("resource not found")
)

// IsNoResult reports whether err is (or wraps) ErrNoResult.
func IsNoResult(err error) bool {
	return errors.Is(err, ErrNoResult)
}

// IsNotFound reports whether err is (or wraps) ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// SearchError represents a failed outbound search with context.
type SearchError struct {
	Topic      string
	StatusCode int
	Err        error
}

func (e *SearchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("search error (topic=%s, status=%d): %v", e.Topic, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("search error (topic=%s): %v", e.Topic, e.Err)
}

func (e *SearchError) Unwrap() error {
	return e.Err
}

// NewSearchError creates a new search error.
func NewSearchError(topic string, statusCode int, err error) *SearchError {
	return &SearchError{
		Topic:      topic,
		StatusCode: statusCode,
		Err:        err,
	}
}

// SendError represents a Send API call that failed in transport for one
// recipient. Platform-level rejections are not errors.
type SendError struct {
	RecipientID string
	Err         error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("send error (recipient=%s): %v", e.RecipientID, e.Err)
}

// Unwrap exposes both ErrSendFailed and the transport cause.
func (e *SendError) Unwrap() []error {
	return []error{ErrSendFailed, e.Err}
}

// NewSendError creates a new send error.
func NewSendError(recipientID string, err error) *SendError {
	return &SendError{
		RecipientID: recipientID,
		Err:         err,
	}
}

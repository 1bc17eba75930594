package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrRetrieval signals a failed call to the hotel store or the query vectorizer.
	ErrRetrieval = errors.New("retrieval failed")
	// ErrMalformedRecord signals a store record without the hotel_id ranking key.
	ErrMalformedRecord = errors.New("malformed record")
	// ErrInvalidQuery signals a slot value of the wrong type or out of range.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrIndexNotReady signals that the hotel index has not been provisioned.
	ErrIndexNotReady = errors.New("hotel index not ready")
)

// RetrievalError wraps ErrRetrieval with the strategy that was executing.
type RetrievalError struct {
	Strategy string
	Err      error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("%s (%s): %v", ErrRetrieval.Error(), e.Strategy, e.Err)
}

// Is matches ErrRetrieval so callers can use errors.Is without unwrapping to the cause.
func (e *RetrievalError) Is(target error) bool { return target == ErrRetrieval }

func (e *RetrievalError) Unwrap() error { return e.Err }

// NewRetrievalError creates a retrieval error for the given strategy.
func NewRetrievalError(strategy string, err error) error {
	return &RetrievalError{Strategy: strategy, Err: err}
}

// MalformedRecordError wraps ErrMalformedRecord with the offending position.
type MalformedRecordError struct {
	List int
	Rank int
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("%s: list %d rank %d has no hotel_id", ErrMalformedRecord.Error(), e.List, e.Rank)
}

func (e *MalformedRecordError) Unwrap() error { return ErrMalformedRecord }

// InvalidQueryError wraps ErrInvalidQuery with the rejected slot.
type InvalidQueryError struct {
	Slot   string
	Reason string
}

func (e *InvalidQueryError) Error() string {
	return fmt.Sprintf("%s: slot %q: %s", ErrInvalidQuery.Error(), e.Slot, e.Reason)
}

func (e *InvalidQueryError) Unwrap() error { return ErrInvalidQuery }

// NewInvalidQuery creates an invalid query error.
func NewInvalidQuery(slot, format string, args ...any) error {
	return &InvalidQueryError{Slot: slot, Reason: fmt.Sprintf(format, args...)}
}

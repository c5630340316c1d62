package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested document or record does not exist.
	// Exhausting every resolution tier without a hit is a normal negative
	// result, not a fault.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrAllProvidersFailed indicates every completion provider in the
	// try-order rejected or errored. Callers should surface this as a
	// service-unavailable condition, not a client error.
	ErrAllProvidersFailed = errors.New("all providers failed")

	// ErrAuthFailed indicates a single provider rejected its credential.
	// The fallback router treats this as retryable against the next
	// candidate; it only surfaces when the failing candidate was the last.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrBrokerUnavailable indicates a connection-level failure talking to
	// the stream broker. The consumer backs off and retries; producers log
	// and drop the event.
	ErrBrokerUnavailable = errors.New("stream broker unavailable")

	// ErrConsumerRunning indicates the stream consumer was started twice.
	ErrConsumerRunning = errors.New("consumer already running")
)

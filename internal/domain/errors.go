package domain

import "errors"

var (
	// ErrInvalidConfiguration is returned for a non-positive session duration
	// or any other unusable runtime setting.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrClassificationSkipped marks a sampled frame whose classification or
	// detection failed. It is recoverable: the sample is dropped and the loop continues.
	ErrClassificationSkipped = errors.New("classification skipped")

	// ErrFrameSourceUnavailable ends a monitoring run. The partial session is still saved.
	ErrFrameSourceUnavailable = errors.New("frame source unavailable")

	ErrNotFound       = errors.New("session not found")
	ErrCorruptRecord  = errors.New("corrupt session record")
	ErrMissingSession = errors.New("missing session")
	ErrSessionClosed  = errors.New("session already closed")
	ErrInvalidLabel   = errors.New("invalid label")
)

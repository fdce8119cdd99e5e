package apperrors

import "errors"

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")

	// ErrParse marks a serialized record that cannot be decoded.
	ErrParse = errors.New("malformed record")
	// ErrInvariant marks a programming error inside the tracker core.
	ErrInvariant = errors.New("invariant violation")

	ErrAlreadyStarted  = errors.New("session already started")
	ErrNotStarted      = errors.New("no session started")
	ErrAlreadyFinished = errors.New("period already finished")
)

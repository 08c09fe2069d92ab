package qb

import (
	"errors"
	"fmt"
	"io"
)

var (
	// ErrTruncatedInput is returned when the buffer ends before a field or record does.
	ErrTruncatedInput = errors.New("qb: truncated input")

	ErrUnsupportedColorFormat        = errors.New("qb: unsupported color format")
	ErrUnsupportedOrientation        = errors.New("qb: unsupported z-axis orientation")
	ErrUnsupportedVisibilityMask     = errors.New("qb: visibility mask encoding not supported")
	ErrUnsupportedMatrixCount        = errors.New("qb: unsupported matrix count")
	ErrUnsupportedNamedMatrix        = errors.New("qb: named matrices not supported")
	ErrUnsupportedNonOriginPlacement = errors.New("qb: matrix must be placed at the origin")

	// ErrMalformedBody is returned when a compressed body encodes cells for a
	// matrix whose width is zero.
	ErrMalformedBody = errors.New("qb: malformed voxel body")

	// ErrAbortedByConsumer wraps an error returned by a SizeFunc or VoxelFunc.
	ErrAbortedByConsumer = errors.New("qb: decode aborted by consumer")
)

// headerError reports the offending header value while still matching its sentinel.
type headerError struct {
	kind error
	msg  string
}

func (e *headerError) Error() string { return e.kind.Error() + ": " + e.msg }

func (e *headerError) Unwrap() error { return e.kind }

func unsupported(kind error, format string, args ...any) error {
	return &headerError{kind: kind, msg: fmt.Sprintf(format, args...)}
}

// truncated maps a short read onto ErrTruncatedInput, naming the field and offset.
func truncated(err error, field string, off int) error {
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: reading %s at offset %d", ErrTruncatedInput, field, off)
	}
	return err
}

// consumerError keeps both ErrAbortedByConsumer and the callback's own error in the chain.
type consumerError struct {
	cause error
}

func (e *consumerError) Error() string { return ErrAbortedByConsumer.Error() + ": " + e.cause.Error() }

func (e *consumerError) Unwrap() []error { return []error{ErrAbortedByConsumer, e.cause} }

func aborted(err error) error {
	if err == nil {
		return nil
	}
	return &consumerError{cause: err}
}

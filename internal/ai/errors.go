package ai

import (
	"context"
	"errors"
	"net"
)

// ErrGeneration matches every *GenerationError through errors.Is.
var ErrGeneration = errors.New("recipe generation failed")

// GenerationErrorKind classifies a failed generation.
type GenerationErrorKind int

const (
	// GenerationTimeout means the model call exceeded its deadline.
	GenerationTimeout GenerationErrorKind = iota + 1
	// GenerationTransport covers network failures, non-2xx responses and
	// cancellation by the caller.
	GenerationTransport
	// GenerationParse means the model output was not valid JSON for a draft.
	GenerationParse
	// GenerationFormat means the response had no usable content.
	GenerationFormat
)

func (k GenerationErrorKind) String() string {
	switch k {
	case GenerationTimeout:
		return "timeout"
	case GenerationTransport:
		return "transport"
	case GenerationParse:
		return "parse"
	case GenerationFormat:
		return "format"
	default:
		return "unknown"
	}
}

// GenerationError is returned by every Generator failure.
type GenerationError struct {
	Kind GenerationErrorKind
	Err  error
}

func (e *GenerationError) Error() string {
	if e.Err == nil {
		return "generation " + e.Kind.String() + " error"
	}
	return "generation " + e.Kind.String() + " error: " + e.Err.Error()
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrGeneration) match any kind.
func (e *GenerationError) Is(target error) bool {
	return target == ErrGeneration
}

// IsGenerationKind reports whether err is a GenerationError of kind k.
func IsGenerationKind(err error, k GenerationErrorKind) bool {
	var ge *GenerationError
	return errors.As(err, &ge) && ge.Kind == k
}

// classifyCallError maps an error from a model call to a GenerationError.
func classifyCallError(err error) *GenerationError {
	if isTimeout(err) {
		return &GenerationError{Kind: GenerationTimeout, Err: err}
	}
	return &GenerationError{Kind: GenerationTransport, Err: err}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// Package failure defines the tagged error type shared by the core and its
// transports. Each failure names the kind of problem and, where it applies,
// the offending input field or the pipeline stage that gave up.
package failure

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindInference
	KindExplanation
	KindNotFound
)

// String returns the wire name of the kind.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation_failure"
	case KindInference:
		return "inference_failure"
	case KindExplanation:
		return "explanation_failure"
	case KindNotFound:
		return "not_found"
	default:
		return "unknown_failure"
	}
}

// Pipeline stages named in failures.
const (
	StageMapper       = "mapper"
	StagePreprocessor = "preprocessor"
	StageRegressor    = "regressor"
	StageExplainer    = "explainer"
)

// Error is a classified failure.
type Error struct {
	Err   error
	Field string
	Stage string
	Kind  Kind
}

func (e *Error) Error() string {
	switch {
	case e.Field != "":
		return fmt.Sprintf("%s: field %s: %v", e.Kind, e.Field, e.Err)
	case e.Stage != "":
		return fmt.Sprintf("%s: %s stage: %v", e.Kind, e.Stage, e.Err)
	default:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Detail is the human-readable description surfaced to callers: the
// underlying error's message without the classification prefix.
func (e *Error) Detail() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return e.Err.Error()
}

// Validation reports a malformed or missing input field.
func Validation(field string, err error) *Error {
	return &Error{Kind: KindValidation, Field: field, Err: err}
}

// Inference reports a pipeline failure on the predict path.
func Inference(stage string, err error) *Error {
	return &Error{Kind: KindInference, Stage: stage, Err: err}
}

// Explanation reports a failure anywhere on the explain path.
func Explanation(stage string, err error) *Error {
	return &Error{Kind: KindExplanation, Stage: stage, Err: err}
}

// NotFound reports an unknown history entry.
func NotFound(err error) *Error {
	return &Error{Kind: KindNotFound, Err: err}
}

// KindOf returns the kind of the first failure in err's chain, or zero.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return 0
}

// Is reports whether err carries a failure of the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// As extracts the failure from err's chain.
func As(err error) (*Error, bool) {
	var fe *Error
	ok := errors.As(err, &fe)
	return fe, ok
}

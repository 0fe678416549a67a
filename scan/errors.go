package scan

import "errors"

// ValidationKind classifies why a path argument was rejected.
type ValidationKind string

const (
	KindEmpty     ValidationKind = "empty"
	KindMalformed ValidationKind = "malformed"
)

var (
	ErrEmpty     = errors.New("path is empty")
	ErrMalformed = errors.New("path is malformed")
)

// ValidationError is returned by Validator.Validate.
// errors.Is matches it against ErrEmpty or ErrMalformed by kind.
type ValidationError struct {
	Kind   ValidationKind
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason == "" {
		return e.sentinel().Error()
	}
	return e.sentinel().Error() + ": " + e.Reason
}

func (e *ValidationError) Is(target error) bool {
	return target == e.sentinel()
}

func (e *ValidationError) sentinel() error {
	if e.Kind == KindEmpty {
		return ErrEmpty
	}
	return ErrMalformed
}

func emptyError() error {
	return &ValidationError{Kind: KindEmpty}
}

func malformedError(reason string) error {
	return &ValidationError{Kind: KindMalformed, Reason: reason}
}

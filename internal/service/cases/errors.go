package cases

import (
	"errors"
	"fmt"
)

var (
	ErrCaseNotFound = errors.New("case not found")
	ErrInvalidInput = errors.New("invalid input")
)

// InputError is a rejected request with a message meant for the client.
// errors.Is(err, ErrInvalidInput) holds for every InputError.
type InputError struct {
	Message string
}

func (e *InputError) Error() string { return e.Message }

func (e *InputError) Is(target error) bool { return target == ErrInvalidInput }

func invalidf(format string, args ...any) error {
	return &InputError{Message: fmt.Sprintf(format, args...)}
}

package core

import "errors"

// Error codes for domain errors.
const (
	ErrCodeProtocol    = "protocol_error"
	ErrCodeValidation  = "validation_error"
	ErrCodeNotFound    = "not_found"
	ErrCodePersistence = "persistence_error"
)

var (
	ErrProtocol    = errors.New("protocol error")
	ErrValidation  = errors.New("validation error")
	ErrNotFound    = errors.New("not found")
	ErrPersistence = errors.New("persistence error")

	// ErrHubStopped is returned by Hub.Do once the hub loop has exited.
	ErrHubStopped = errors.New("hub stopped")
)

// CoreError wraps a code and human-readable message.
// It unwraps to the sentinel for its kind and to the underlying cause, if any.
type CoreError struct {
	Code    string
	Message string
	Err     error
}

func (e *CoreError) Error() string {
	return e.Message
}

func (e *CoreError) Unwrap() []error {
	errs := []error{kindOf(e.Code)}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func kindOf(code string) error {
	switch code {
	case ErrCodeProtocol:
		return ErrProtocol
	case ErrCodeValidation:
		return ErrValidation
	case ErrCodeNotFound:
		return ErrNotFound
	default:
		return ErrPersistence
	}
}

func coreError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}

func protocolError(msg string) *CoreError {
	return coreError(ErrCodeProtocol, msg)
}

func validationError(msg string) *CoreError {
	return coreError(ErrCodeValidation, msg)
}

func notFoundError(msg string) *CoreError {
	return coreError(ErrCodeNotFound, msg)
}

func persistenceError(msg string, cause error) *CoreError {
	return &CoreError{Code: ErrCodePersistence, Message: msg, Err: cause}
}

// asCoreError returns err as a *CoreError, classifying unknown errors as persistence failures.
func asCoreError(err error) *CoreError {
	var ce *CoreError
	if errors.As(err, &ce) {
		return ce
	}
	return persistenceError("internal error", err)
}

package converter

import (
	"errors"
	"fmt"
)

// ProcessingErrorType classifies why a file could not be turned into a dataset.
type ProcessingErrorType string

const (
	UnreadablePayload ProcessingErrorType = "UNREADABLE_PAYLOAD"
	DecodeError       ProcessingErrorType = "DECODE_ERROR"
	UnsupportedType   ProcessingErrorType = "UNSUPPORTED_TYPE"
)

// ProcessingError is returned by every failing converter operation.
type ProcessingError struct {
	Type    ProcessingErrorType
	Message string
	Cause   error
}

func (e *ProcessingError) Error() string {
	var prefix string
	switch e.Type {
	case UnreadablePayload:
		prefix = "could not read file"
	case DecodeError:
		prefix = "could not decode spreadsheet"
	case UnsupportedType:
		prefix = "unsupported file"
	default:
		prefix = "processing failed"
	}

	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

func (e *ProcessingError) Unwrap() error {
	return e.Cause
}

func unreadable(msg string, cause error) error {
	return &ProcessingError{Type: UnreadablePayload, Message: msg, Cause: cause}
}

func decodeFailed(msg string, cause error) error {
	return &ProcessingError{Type: DecodeError, Message: msg, Cause: cause}
}

func errorType(err error) ProcessingErrorType {
	var pe *ProcessingError
	if errors.As(err, &pe) {
		return pe.Type
	}
	return ""
}

// IsDecodeError reports whether err means the payload is not a usable spreadsheet.
func IsDecodeError(err error) bool { return errorType(err) == DecodeError }

// IsUnreadable reports whether err means the payload could not be read at all.
func IsUnreadable(err error) bool { return errorType(err) == UnreadablePayload }

// IsUnsupported reports whether err means the file type was rejected.
func IsUnsupported(err error) bool { return errorType(err) == UnsupportedType }

package core

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyFile        = errors.New("empty file")
	ErrInvalidEncoding  = errors.New("encoding error")
	ErrMalformedFile    = errors.New("invalid csv")
	ErrHeaderMismatch   = errors.New("header mismatch")
	ErrTooManyRows      = errors.New("too many rows")
	ErrUnknownEntity    = errors.New("unknown entity")
	ErrUnknownFormat    = errors.New("unknown export format")
	ErrUnitOfWorkClosed = errors.New("unit of work already closed")
)

// FileFormatError is a problem with the file as a whole. It stops a preview
// or import before any row is evaluated.
type FileFormatError struct {
	Err     error
	Message string
}

func (e *FileFormatError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

func (e *FileFormatError) Unwrap() error {
	return e.Err
}

func fileError(err error, format string, args ...any) *FileFormatError {
	return &FileFormatError{Err: err, Message: fmt.Sprintf(format, args...)}
}

// AsFileError returns the FileFormatError in err's chain, if any.
func AsFileError(err error) (*FileFormatError, bool) {
	var fe *FileFormatError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

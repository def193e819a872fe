package apimodel

import (
	"errors"
	"fmt"
)

type ExceptionKind string

const (
	// Protocol errors
	MalformedRequest ExceptionKind = "MalformedRequest"
	MissingCommand   ExceptionKind = "MissingCommand"
	UnknownCommand   ExceptionKind = "UnknownCommand"
	MissingField     ExceptionKind = "MissingField"
	TypeMismatch     ExceptionKind = "TypeMismatch"

	// Semantic errors
	UnknownCategory  ExceptionKind = "UnknownCategory"
	UnknownSymbol    ExceptionKind = "UnknownSymbol"
	ImageNotFound    ExceptionKind = "ImageNotFound"
	ImageDecodeError ExceptionKind = "ImageDecodeError"

	// Fatal
	BackendError ExceptionKind = "BackendError"

	InternalError ExceptionKind = "InternalError"
)

// Exception is a failure reported to the client of the command channel.
type Exception struct {
	Kind ExceptionKind
	Text string
	Err  error
}

func NewException(kind ExceptionKind, format string, a ...interface{}) *Exception {
	return &Exception{Kind: kind, Text: fmt.Sprintf(format, a...)}
}

// WrapException keeps err reachable through errors.Is / errors.As.
func WrapException(kind ExceptionKind, err error, format string, a ...interface{}) *Exception {
	return &Exception{Kind: kind, Text: fmt.Sprintf(format, a...) + ": " + err.Error(), Err: err}
}

func (e *Exception) Error() string {
	return string(e.Kind) + ": " + e.Text
}

func (e *Exception) Unwrap() error {
	return e.Err
}

// IsFatal reports whether err comes from the display backend and must stop the server.
func IsFatal(err error) bool {
	var exc *Exception
	return errors.As(err, &exc) && exc.Kind == BackendError
}

// KindOf returns the exception kind carried by err, InternalError when none.
func KindOf(err error) ExceptionKind {
	var exc *Exception
	if errors.As(err, &exc) {
		return exc.Kind
	}
	return InternalError
}

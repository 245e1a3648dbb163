// Package errors provides error annotation with slog attributes and caller
// locations on top of the standard library error wrapping.
package errors

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
)

// annotatedError carries a message, optional slog attributes, and the location
// of the call site that created it.
type annotatedError struct {
	msg      string
	cause    error
	attrs    []slog.Attr
	location string
}

func (e *annotatedError) Error() string {
	if e.cause == nil {
		return e.msg
	}
	return e.msg + ": " + e.cause.Error()
}

func (e *annotatedError) Unwrap() error {
	return e.cause
}

// callerLocation resolves the file:line of the caller skipping the given
// number of frames on top of callerLocation itself.
func callerLocation(skip int) string {
	_, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return "unknown"
	}
	// Trim the path down to the file name to keep log lines short.
	if idx := strings.LastIndexByte(file, '/'); idx >= 0 {
		file = file[idx+1:]
	}
	return fmt.Sprintf("%s:%d", file, line)
}

// NewSentinel creates a sentinel error suitable for errors.Is comparisons.
func NewSentinel(msg string) error {
	return &annotatedError{msg: msg, cause: nil, attrs: nil, location: callerLocation(1)}
}

// Wrap annotates err with a message and optional slog attributes. The caller
// location is recorded for SlogError output. Wrapping a nil error yields an
// error with only the message so that mistakes still surface in logs.
func Wrap(err error, msg string, attrs ...slog.Attr) error {
	return &annotatedError{msg: msg, cause: err, attrs: attrs, location: callerLocation(1)}
}

// New mirrors [errors.New].
func New(msg string) error {
	return errors.New(msg)
}

// Is mirrors [errors.Is].
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As mirrors [errors.As].
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Join mirrors [errors.Join].
func Join(errs ...error) error {
	return errors.Join(errs...)
}

// Unwrap mirrors [errors.Unwrap].
func Unwrap(err error) error {
	return errors.Unwrap(err)
}

// DecoratePanic converts a recovered panic value into an annotated error that
// records where the panic was recovered.
func DecoratePanic(recovered any) error {
	if recovered == nil {
		return nil
	}
	return &annotatedError{
		msg:      fmt.Sprintf("panic: %v", recovered),
		cause:    nil,
		attrs:    nil,
		location: callerLocation(1),
	}
}

// SlogError renders err as a structured slog attribute. Annotations from every
// annotatedError in the chain are grouped under error.annotations, and the
// deepest recorded caller location is exposed as error.location.
func SlogError(err error) slog.Attr {
	if err == nil {
		return slog.Attr{Key: "error", Value: slog.StringValue("<nil>")}
	}

	var (
		attrs    []slog.Attr
		location string
	)
	collectAnnotations(err, &attrs, &location)

	group := []any{slog.String("message", err.Error())}
	if location != "" {
		group = append(group, slog.String("location", location))
	}
	if len(attrs) > 0 {
		annotationArgs := make([]any, 0, len(attrs))
		for _, attr := range attrs {
			annotationArgs = append(annotationArgs, attr)
		}
		group = append(group, slog.Group("annotations", annotationArgs...))
	}

	return slog.Group("error", group...)
}

// collectAnnotations walks the error tree gathering attributes. The location
// of the deepest annotated error wins since it is closest to the root cause.
func collectAnnotations(err error, attrs *[]slog.Attr, location *string) {
	if err == nil {
		return
	}

	var annotated *annotatedError
	if errors.As(err, &annotated) {
		*attrs = append(*attrs, annotated.attrs...)
		*location = annotated.location
		collectAnnotations(annotated.cause, attrs, location)
		return
	}

	// Joined errors expose Unwrap() []error.
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			collectAnnotations(e, attrs, location)
		}
		return
	}

	collectAnnotations(errors.Unwrap(err), attrs, location)
}

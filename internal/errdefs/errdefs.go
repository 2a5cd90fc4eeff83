// Package errdefs defines the error classes returned by the catalog.
//
// Each error type unwraps to a containerd errdefs category so callers can use
// either errors.As on the concrete type or the generic cerrdefs.Is* helpers.
package errdefs

import (
	"errors"
	"fmt"
	"strings"
	"time"

	cerrdefs "github.com/containerd/errdefs"
)

// ErrParse is the sentinel for filenames that do not match their grammar.
var ErrParse = errors.New("filename does not match grammar")

// ValidationError reports a malformed descriptor, window, key or parameter.
type ValidationError struct {
	Field string
	Value string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Msg)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Msg)
}

func (e *ValidationError) Unwrap() error { return cerrdefs.ErrInvalidArgument }

// Invalid builds a ValidationError.
func Invalid(field, value, format string, args ...any) error {
	return &ValidationError{Field: field, Value: value, Msg: fmt.Sprintf(format, args...)}
}

// ParseError reports a filename that could not be parsed.
type ParseError struct {
	Name string
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %s", e.Name, e.Msg)
}

func (e *ParseError) Unwrap() error { return ErrParse }

// NotFoundError reports an empty result for a time window.
type NotFoundError struct {
	Msg   string
	Start time.Time
	End   time.Time
}

func (e *NotFoundError) Error() string {
	if e.Start.IsZero() && e.End.IsZero() {
		return e.Msg
	}
	return fmt.Sprintf("%s between %s and %s", e.Msg, formatTime(e.Start), formatTime(e.End))
}

func (e *NotFoundError) Unwrap() error { return cerrdefs.ErrNotFound }

// Interval is a [Start, End] pair of instants.
type Interval struct {
	Start time.Time
	End   time.Time
}

func (i Interval) String() string {
	return fmt.Sprintf("(%s, %s)", formatTime(i.Start), formatTime(i.End))
}

// ConsistencyError reports a violated operational invariant.
type ConsistencyError struct {
	Check     string
	Msg       string
	Paths     []string
	Values    []string
	Intervals []Interval
}

func (e *ConsistencyError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Check)
	sb.WriteString(": ")
	sb.WriteString(e.Msg)
	switch {
	case len(e.Intervals) > 0:
		parts := make([]string, len(e.Intervals))
		for i, iv := range e.Intervals {
			parts[i] = iv.String()
		}
		sb.WriteString(": ")
		sb.WriteString(strings.Join(parts, ", "))
	case len(e.Values) > 0:
		sb.WriteString(": ")
		sb.WriteString(strings.Join(e.Values, ", "))
	case len(e.Paths) > 0:
		sb.WriteString(": ")
		sb.WriteString(strings.Join(e.Paths, ", "))
	}
	return sb.String()
}

func (e *ConsistencyError) Unwrap() error { return cerrdefs.ErrFailedPrecondition }

// IntegrityError reports a local copy whose size differs from the remote object.
type IntegrityError struct {
	Path       string
	LocalSize  int64
	RemoteSize int64
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("corrupted %s: local size %d, remote size %d", e.Path, e.LocalSize, e.RemoteSize)
}

func (e *IntegrityError) Unwrap() error { return cerrdefs.ErrDataLoss }

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

func IsParse(err error) bool { return errors.Is(err, ErrParse) }

func IsNotFound(err error) bool { return cerrdefs.IsNotFound(err) }

func IsConsistency(err error) bool {
	var c *ConsistencyError
	return errors.As(err, &c)
}

func IsIntegrity(err error) bool {
	var i *IntegrityError
	return errors.As(err, &i)
}

func formatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05")
}

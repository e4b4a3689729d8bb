// Copyright 2020 YourBase Inc.
// SPDX-License-Identifier: BSD-3-Clause

// Package reason defines the tagged error values a Context in ctxtree can
// carry as its cancellation reason: Cancelled, DeadlineExceeded, and
// Aggregate.
package reason

import (
	"errors"
	"strings"
)

// marker is embedded in every reason type so that each one satisfies the
// unexported contextReason interface, the way a sealed interface brands its
// implementations without a runtime tag field. IsCancelled and the other
// predicates do not consult it: they match the concrete types via errors.As.
type marker struct{}

func (marker) contextReason() {}

type contextReason interface {
	error
	contextReason()
}

// Cancelled is the reason set by an explicit cancel call.
type Cancelled struct {
	marker

	// Message is an optional human-readable description of why the
	// context was cancelled.
	Message string

	// Cause is an optional underlying error that triggered the cancel,
	// preserved unchanged (see spec's "Reason cause chaining").
	Cause error
}

func (c *Cancelled) Error() string {
	switch {
	case c.Message != "" && c.Cause != nil:
		return "context cancelled: " + c.Message + ": " + c.Cause.Error()
	case c.Message != "":
		return "context cancelled: " + c.Message
	case c.Cause != nil:
		return "context cancelled: " + c.Cause.Error()
	default:
		return "context cancelled"
	}
}

func (c *Cancelled) Unwrap() error { return c.Cause }

// DeadlineExceeded is the reason set when a deadline passes, either because
// a host timer fired or because error() observed the deadline lazily.
type DeadlineExceeded struct {
	marker
}

func (*DeadlineExceeded) Error() string { return "context deadline exceeded" }

// Aggregate wraps more than one error collected during a single notify
// cycle (spec §4.4 step 4: "more than one exception → wrap in Aggregate").
type Aggregate struct {
	marker

	Errors []error
}

func (a *Aggregate) Error() string {
	if len(a.Errors) == 0 {
		return "0 errors occurred"
	}
	msgs := make([]string, len(a.Errors))
	for i, err := range a.Errors {
		msgs[i] = err.Error()
	}
	return strings.Join([]string{
		pluralErrors(len(a.Errors)), ": " + strings.Join(msgs, "; "),
	}, "")
}

func pluralErrors(n int) string {
	if n == 1 {
		return "1 error occurred"
	}
	return itoa(n) + " errors occurred"
}

// itoa avoids importing strconv for a single call site.
func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

// Unwrap exposes the wrapped errors through the stdlib multi-error
// convention, so errors.Is/As can see through an Aggregate.
func (a *Aggregate) Unwrap() []error { return a.Errors }

// NewAggregate wraps one or more errors collected during a notify cycle. It
// panics if errs is empty: the caller (Cancel's drain loop) only builds an
// Aggregate when at least two exceptions were collected.
func NewAggregate(errs []error) *Aggregate {
	if len(errs) == 0 {
		panic("reason: NewAggregate called with no errors")
	}
	cp := make([]error, len(errs))
	copy(cp, errs)
	return &Aggregate{Errors: cp}
}

// IsCancelled reports whether err is, or wraps, a *Cancelled reason.
func IsCancelled(err error) bool {
	var c *Cancelled
	return errors.As(err, &c)
}

// IsDeadlineExceeded reports whether err is, or wraps, a *DeadlineExceeded
// reason.
func IsDeadlineExceeded(err error) bool {
	var d *DeadlineExceeded
	return errors.As(err, &d)
}

// IsContextError reports whether err is a Cancelled or DeadlineExceeded
// reason (spec's is_context_error = is_cancelled ∨ is_deadline_exceeded).
func IsContextError(err error) bool {
	return IsCancelled(err) || IsDeadlineExceeded(err)
}

// IsAggregate reports whether err is, or wraps, an *Aggregate reason.
func IsAggregate(err error) bool {
	var a *Aggregate
	return errors.As(err, &a)
}

var (
	_ contextReason = (*Cancelled)(nil)
	_ contextReason = (*DeadlineExceeded)(nil)
	_ contextReason = (*Aggregate)(nil)
)

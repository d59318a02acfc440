// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

// Package d implements several debug, error and assertion functions used
// throughout the codebase. Errors inside the core are raised as panics
// carrying a WrappedError and recovered back into error values at API
// boundaries via Try and TryCatch.
package d

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/stretchr/testify/assert"
)

// Chk prints a message and panics if the assertion it guards fails. It is
// used for invariants which indicate bugs, not bad input.
var Chk = assert.New(&panicker{})

type panicker struct{}

func (p *panicker) Errorf(format string, args ...interface{}) {
	panic(fmt.Sprintf(format, args...))
}

// UsageError signals bad input from the caller, e.g. an unparseable hash
// string. It is commonly surfaced through Try at an API boundary.
type UsageError struct {
	Msg string
}

func (e UsageError) Error() string {
	return e.Msg
}

// WrappedError is an error that remembers the error it was created from, as
// well as the stack at the point it was wrapped.
type WrappedError interface {
	error
	Cause() error
}

type wrappedError struct {
	msg   string
	cause error
}

func (we wrappedError) Error() string { return we.msg }
func (we wrappedError) Cause() error  { return we.cause }

// Wrap adds a stack trace to err. Wrapping a nil or already-wrapped error is
// a no-op.
func Wrap(err error) WrappedError {
	if err == nil {
		return nil
	}
	if we, ok := err.(WrappedError); ok {
		return we
	}

	st := stackTrace(3)
	return wrappedError{fmt.Sprintf("%s\n%s", err.Error(), st), err}
}

// Unwrap returns the error wrapped inside err, if there is one.
func Unwrap(err error) error {
	if we, ok := err.(WrappedError); ok {
		return we.Cause()
	}
	return err
}

// Panic creates an error from the format and args, wraps it, and panics.
func Panic(format string, args ...interface{}) {
	if len(args) == 0 {
		err := errors.New(format)
		panic(Wrap(err))
	}
	err := fmt.Errorf(format, args...)
	panic(Wrap(err))
}

// PanicIfError panics with Wrap(err) iff err is non-nil.
func PanicIfError(err error) {
	if err != nil {
		panic(Wrap(err))
	}
}

// PanicIfTrue panics if b is true. The format and args describe the failure.
func PanicIfTrue(b bool, format string, args ...interface{}) {
	if b {
		Panic(format, args...)
	}
}

// PanicIfFalse panics if b is false.
func PanicIfFalse(b bool, format string, args ...interface{}) {
	if !b {
		Panic(format, args...)
	}
}

// Try runs f, recovering any panicked WrappedError into the returned error.
// Panics carrying anything else propagate. If ignore is non-empty, only
// causes of those types are recovered; others propagate.
func Try(f func(), ignore ...interface{}) (err error) {
	defer recoverWrapped(&err, ignore)
	f()
	return
}

// TryCatch runs f; if f panics with a WrappedError, catch is invoked with
// its cause and TryCatch returns whatever catch returns.
func TryCatch(f func(), catch func(err error) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			we, ok := r.(WrappedError)
			if !ok {
				panic(r)
			}
			if catch != nil {
				err = catch(we.Cause())
			} else {
				err = we.Cause()
			}
		}
	}()
	f()
	return
}

func recoverWrapped(errp *error, ignore []interface{}) {
	r := recover()
	if r == nil {
		return
	}
	we, ok := r.(WrappedError)
	if !ok {
		panic(r)
	}
	cause := we.Cause()
	if len(ignore) > 0 && !causeInTypes(cause, ignore) {
		panic(r)
	}
	*errp = cause
}

func causeInTypes(err error, types []interface{}) bool {
	for _, t := range types {
		if fmt.Sprintf("%T", err) == fmt.Sprintf("%T", t) {
			return true
		}
	}
	return false
}

func stackTrace(skip int) string {
	pcs := make([]uintptr, 32)
	n := runtime.Callers(skip, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	b := strings.Builder{}
	for {
		frame, more := frames.Next()
		fmt.Fprintf(&b, "%s\n\t%s:%d\n", frame.Function, frame.File, frame.Line)
		if !more {
			break
		}
	}
	return b.String()
}

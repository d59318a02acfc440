// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package d

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var (
	te  = testError{"te"}
	te2 = testError2{"te2"}
)

type testError struct {
	s string
}

func (e testError) Error() string { return e.s }

type testError2 struct {
	s string
}

func (e testError2) Error() string { return e.s }

func TestTry(t *testing.T) {
	assert := assert.New(t)

	// Raw panics propagate untouched.
	assert.Panics(func() {
		Try(func() {
			panic(te)
		})
	})

	// The cause isn't in the ignore list, so the panic propagates.
	assert.Panics(func() {
		Try(func() {
			PanicIfError(te)
		}, te2)
	})

	assert.Error(func() error {
		return Try(func() {
			PanicIfError(te)
		})
	}())

	assert.Error(func() error {
		return Try(func() {
			PanicIfError(te)
		}, testError{})
	}())

	assert.Nil(func() error {
		return Try(func() {
			PanicIfError(nil)
		})
	}())
}

func TestTryCatch(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(te, TryCatch(func() {
		PanicIfError(te)
	}, nil))

	err := TryCatch(func() {
		PanicIfError(te)
	}, func(err error) error {
		return te2
	})
	assert.Equal(te2, err)

	assert.Panics(func() {
		TryCatch(func() {
			panic("not wrapped")
		}, nil)
	})
}

func TestPanicIfTrue(t *testing.T) {
	assert := assert.New(t)

	assert.Panics(func() {
		PanicIfTrue(true, "I should panic")
	})
	assert.NotPanics(func() {
		PanicIfTrue(false, "I should not panic")
	})
	assert.Panics(func() {
		PanicIfFalse(false, "%s", "also with args")
	})
}

func TestWrap(t *testing.T) {
	assert := assert.New(t)

	assert.Nil(Wrap(nil))

	we := Wrap(te)
	assert.Equal(te, we.Cause())
	// Wrapping a wrapped error is a no-op.
	assert.Equal(we, Wrap(we))
	assert.Equal(te, Unwrap(we))
	assert.Equal(te, Unwrap(te))

	usage := Wrap(UsageError{"bad input"})
	assert.Equal(UsageError{"bad input"}, usage.Cause())
}

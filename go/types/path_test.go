// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package types

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func assertResolvesTo(assert *assert.Assertions, expect, ref Value, str string) {
	p, err := ParsePath(str)
	assert.NoError(err)
	actual := p.Resolve(ref, nil)
	if expect == nil {
		if actual != nil {
			assert.Fail("", "Expected nil, but got %s", EncodedValue(actual))
		}
	} else if actual == nil {
		assert.Fail("", "Expected %s, but got nil", EncodedValue(expect))
	} else {
		assert.True(expect.Equals(actual), "Expected %s, but got %s", EncodedValue(expect), EncodedValue(actual))
	}
}

func TestPathStruct(t *testing.T) {
	assert := assert.New(t)

	v := NewStruct("", StructData{
		"foo": String("foo"),
		"bar": Bool(false),
		"baz": Number(203),
	})

	assertResolvesTo(assert, String("foo"), v, `.foo`)
	assertResolvesTo(assert, Bool(false), v, `.bar`)
	assertResolvesTo(assert, Number(203), v, `.baz`)
	assertResolvesTo(assert, nil, v, `.notHere`)

	v2 := NewStruct("", StructData{
		"v1": v,
	})

	assertResolvesTo(assert, String("foo"), v2, `.v1.foo`)
	assertResolvesTo(assert, Bool(false), v2, `.v1.bar`)
	assertResolvesTo(assert, Number(203), v2, `.v1.baz`)
	assertResolvesTo(assert, nil, v2, `.v1.notHere`)
	assertResolvesTo(assert, nil, v2, `.notHere.v1`)
}

func TestPathList(t *testing.T) {
	assert := assert.New(t)

	v := NewList(Number(1), Number(3), String("foo"), Bool(false))

	assertResolvesTo(assert, Number(1), v, `[0]`)
	assertResolvesTo(assert, Number(3), v, `[1]`)
	assertResolvesTo(assert, String("foo"), v, `[2]`)
	assertResolvesTo(assert, Bool(false), v, `[3]`)
	assertResolvesTo(assert, Bool(false), v, `[-1]`)
	assertResolvesTo(assert, String("foo"), v, `[-2]`)
	assertResolvesTo(assert, Number(1), v, `[-4]`)
	assertResolvesTo(assert, nil, v, `[4]`)
	assertResolvesTo(assert, nil, v, `[-5]`)

	assertResolvesTo(assert, Number(0), v, `[0]@key`)
	assertResolvesTo(assert, Number(3), v, `[-1]@key`)
}

func TestPathMap(t *testing.T) {
	assert := assert.New(t)

	v := NewMap(
		Bool(false), Number(23),
		Number(1), String("foo"),
		Number(2.3), Number(4.5),
		String("two"), String("bar"),
	)

	assertResolvesTo(assert, String("foo"), v, `[1]`)
	assertResolvesTo(assert, String("bar"), v, `["two"]`)
	assertResolvesTo(assert, Number(23), v, `[false]`)
	assertResolvesTo(assert, Number(4.5), v, `[2.3]`)
	assertResolvesTo(assert, nil, v, `[4]`)

	assertResolvesTo(assert, Number(1), v, `[1]@key`)
	assertResolvesTo(assert, String("two"), v, `["two"]@key`)
	assertResolvesTo(assert, nil, v, `[4]@key`)
}

func TestPathSet(t *testing.T) {
	assert := assert.New(t)

	v := NewSet(Number(1), String("two"), Bool(false))

	assertResolvesTo(assert, Number(1), v, `[1]`)
	assertResolvesTo(assert, String("two"), v, `["two"]`)
	assertResolvesTo(assert, Bool(false), v, `[false]`)
	assertResolvesTo(assert, nil, v, `[2]`)
	assertResolvesTo(assert, Number(1), v, `[1]@key`)
}

func TestPathHashIndex(t *testing.T) {
	assert := assert.New(t)

	s := NewStruct("S", StructData{"v": Number(42)})
	set := NewSet(s, NewStruct("S", StructData{"v": Number(43)}))

	hashIdx := fmt.Sprintf("[#%s]", s.Hash().String())
	assertResolvesTo(assert, s, set, hashIdx)
	assertResolvesTo(assert, s, set, hashIdx+"@key")

	m := NewMap(s, String("yes"))
	assertResolvesTo(assert, String("yes"), m, hashIdx)
	assertResolvesTo(assert, s, m, hashIdx+"@key")

	missing := fmt.Sprintf("[#%s]", Number(12345).Hash().String())
	assertResolvesTo(assert, nil, set, missing)
}

func TestPathType(t *testing.T) {
	assert := assert.New(t)

	assertResolvesTo(assert, NumberType, Number(42), `@type`)
	assertResolvesTo(assert, StringType, String(""), `@type`)

	l := NewList(Number(1))
	assertResolvesTo(assert, MakeListType(NumberType), l, `@type`)
	assertResolvesTo(assert, NumberType, l, `@type[0]`)

	st := MakeSetType(NumberType)
	assertResolvesTo(assert, NumberType, st, `[0]`)
	assertResolvesTo(assert, NumberType, st, `@at(0)`)
	assertResolvesTo(assert, nil, st, `[1]`)
}

func TestPathAtAnnotation(t *testing.T) {
	assert := assert.New(t)

	s := NewSet(Number(10), Number(20), Number(30))
	assertResolvesTo(assert, Number(10), s, `@at(0)`)
	assertResolvesTo(assert, Number(30), s, `@at(2)`)
	assertResolvesTo(assert, Number(30), s, `@at(-1)`)
	assertResolvesTo(assert, nil, s, `@at(3)`)

	m := NewMap(Number(1), String("a"), Number(2), String("b"))
	assertResolvesTo(assert, String("a"), m, `@at(0)`)
	assertResolvesTo(assert, Number(2), m, `@at(1)@key`)
}

func TestPathParseSuccess(t *testing.T) {
	assert := assert.New(t)

	test := func(str string) {
		p, err := ParsePath(str)
		assert.NoError(err)
		expectStr := str
		switch expectStr { // Human readable serialization special cases.
		case "[1e4]":
			expectStr = "[10000]"
		case "[1.]":
			expectStr = "[1]"
		case "[\"line\nbreak\rreturn\"]":
			expectStr = `["line\nbreak\rreturn"]`
		}
		assert.Equal(expectStr, p.String())
	}

	h := Number(42).Hash() // arbitrary hash
	test(".foo")
	test(".Q")
	test(".QQ")
	test("[true]")
	test("[false]")
	test("[42]")
	test("[1e4]")
	test("[1.]")
	test("[1.345]")
	test(`[""]`)
	test(`["42"]`)
	test("[\"line\nbreak\rreturn\"]")
	test(`["qu\\ote\""]`)
	test(`["π"]`)
	test(`["[[br][]acke]]ts"]`)
	test(`["xπy✌z"]`)
	test(`["ಠ_ಠ"]`)
	test(`["0"]["1"]["100"]`)
	test(".foo[0].bar[4.5][false]")
	test(fmt.Sprintf(".foo[#%s]", h.String()))
	test(fmt.Sprintf(".bar[#%s]", h.String()))
}

func TestPathParseErrors(t *testing.T) {
	assert := assert.New(t)

	test := func(str, expectError string) {
		p, err := ParsePath(str)
		assert.Equal(Path{}, p)
		if assert.Error(err) {
			assert.Equal(expectError, err.Error())
		}
	}

	test("", "Empty path")
	test(".", "Invalid field: ")
	test("[", "Path ends in [")
	test("]", "Invalid operator: ]")
	test(".#", "Invalid field: #")
	test(". ", "Invalid field:  ")
	test(". invalid.field", "Invalid field:  invalid.field")
	test(".foo.", "Invalid field: ")
	test(".foo.#invalid.field", "Invalid field: #invalid.field")
	test(".foo!", "Invalid operator: !")
	test(".foo!bar", "Invalid operator: !")
	test(".foo#", "Invalid operator: #")
	test(".foo[", "Path ends in [")
	test(".foo[.bar", "[ is missing closing ]")
	test(".foo]", "Invalid operator: ]")
	test(".foo].bar", "Invalid operator: ]")
	test(".foo[]", "Empty index value")
	test(".foo[[]", "Invalid index: [")
	test(".foo[[]]", "Invalid index: [")
	test(".foo[x]", "Invalid index: x")
	test(".foo[/]", "Invalid index: /")
	test(".foo[[]]", "Invalid index: [")
	test(`.foo["\n"]`, `Only " and \ can be escaped`)
	test(".foo[#]", "Invalid hash: ")
	test(".foo[#invalid]", "Invalid hash: invalid")
	test(`.foo["hello]`, "[ is missing closing ]")
	test("@", "Invalid operator: @")
	test(".foo@bar", "Unsupported annotation: @bar")
	test("@key", "Cannot use @key annotation at beginning of path")
	test(".foo@key", "Cannot use @key annotation on: .foo")
	test(".foo@type()", "Invalid operator: (")
}

// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRefInList(t *testing.T) {
	assert := assert.New(t)

	l := NewList()
	r := NewRef(l)
	l = l.Append(r)
	r2 := l.Get(0)
	assert.True(r.Equals(r2))
}

func TestRefInSet(t *testing.T) {
	assert := assert.New(t)

	s := NewSet()
	r := NewRef(s)
	s = s.Insert(r)
	assert.True(s.Has(r))
}

func TestRefHeight(t *testing.T) {
	assert := assert.New(t)

	// Leaves have height 1.
	assert.Equal(uint64(1), NewRef(Number(1)).Height())
	assert.Equal(uint64(1), NewRef(String("hi")).Height())

	// A ref to a value containing a ref of height n has height n+1.
	r1 := NewRef(Number(1))
	s := NewStruct("S", StructData{"r": r1})
	r2 := NewRef(s)
	assert.Equal(uint64(2), r2.Height())

	s2 := NewStruct("S", StructData{"r": r2})
	assert.Equal(uint64(3), NewRef(s2).Height())

	// The height is 1 + the max of any reachable ref in the chunk.
	s3 := NewStruct("S", StructData{"a": r1, "b": NewRef(s)})
	assert.Equal(uint64(3), NewRef(s3).Height())
}

func TestRefType(t *testing.T) {
	assert := assert.New(t)

	r := NewRef(Number(1))
	assert.Equal(MakeRefType(NumberType), r.Type())
	assert.Equal(NumberType, r.TargetType())
}

func TestWriteValueRefHeight(t *testing.T) {
	assert := assert.New(t)

	vs := NewTestValueStore()
	defer vs.Close()

	// writeValue's returned ref has height 1 + max child height.
	r1 := vs.WriteValue(String("leaf"))
	assert.Equal(uint64(1), r1.Height())

	s := NewStruct("S", StructData{"r": r1})
	r2 := vs.WriteValue(s)
	assert.Equal(uint64(2), r2.Height())
}

func TestRefTargetValue(t *testing.T) {
	assert := assert.New(t)

	vs := NewTestValueStore()
	defer vs.Close()

	v := String("hello")
	r := vs.WriteValue(v)
	assert.True(v.Equals(r.TargetValue(vs)))
}

// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func assertSubtypeOf(t *testing.T, requiredType, concreteType *Type) {
	assert.True(t, IsSubtype(requiredType, concreteType), "%s should be a subtype of %s", concreteType.Describe(), requiredType.Describe())
}

func assertNotSubtypeOf(t *testing.T, requiredType, concreteType *Type) {
	assert.False(t, IsSubtype(requiredType, concreteType), "%s should not be a subtype of %s", concreteType.Describe(), requiredType.Describe())
}

func TestAssertTypePrimitives(t *testing.T) {
	assertSubtypeOf(t, BoolType, BoolType)
	assertSubtypeOf(t, NumberType, NumberType)
	assertNotSubtypeOf(t, BoolType, NumberType)
	assertNotSubtypeOf(t, NumberType, StringType)
}

func TestAssertTypeValue(t *testing.T) {
	assertSubtypeOf(t, ValueType, BoolType)
	assertSubtypeOf(t, ValueType, MakeListType(NumberType))
	assertSubtypeOf(t, ValueType, MakeStructType("S", nil, nil))
	assertNotSubtypeOf(t, NumberType, ValueType)
}

func TestAssertTypeUnion(t *testing.T) {
	ns := MakeUnionType(NumberType, StringType)
	assertSubtypeOf(t, ns, NumberType)
	assertSubtypeOf(t, ns, StringType)
	assertNotSubtypeOf(t, ns, BoolType)
	assertSubtypeOf(t, ns, ns)

	// A union concrete type requires every member to fit.
	assertSubtypeOf(t, ns, MakeUnionType(StringType, NumberType))
	assertNotSubtypeOf(t, ns, MakeUnionType(NumberType, BoolType))

	// The empty union fits anywhere; nothing fits the empty union.
	assertSubtypeOf(t, NumberType, MakeUnionType())
	assertNotSubtypeOf(t, MakeUnionType(), NumberType)
}

func TestAssertTypeCompound(t *testing.T) {
	assertSubtypeOf(t, MakeListType(NumberType), MakeListType(NumberType))
	assertNotSubtypeOf(t, MakeListType(NumberType), MakeListType(StringType))

	// Covariance.
	assertSubtypeOf(t, MakeListType(MakeUnionType(NumberType, StringType)), MakeListType(NumberType))
	assertSubtypeOf(t, MakeSetType(ValueType), MakeSetType(BoolType))
	assertSubtypeOf(t, MakeMapType(StringType, ValueType), MakeMapType(StringType, NumberType))
	assertNotSubtypeOf(t, MakeMapType(StringType, NumberType), MakeMapType(StringType, ValueType))
	assertSubtypeOf(t, MakeRefType(ValueType), MakeRefType(NumberType))
}

func TestAssertTypeStruct(t *testing.T) {
	s := MakeStructType("S", []string{"a", "b"}, []*Type{NumberType, StringType})

	// Extra fields are fine; missing fields are not.
	bigger := MakeStructType("S", []string{"a", "b", "c"}, []*Type{NumberType, StringType, BoolType})
	smaller := MakeStructType("S", []string{"a"}, []*Type{NumberType})
	assertSubtypeOf(t, s, bigger)
	assertNotSubtypeOf(t, s, smaller)

	// An empty required name matches any concrete name.
	anon := MakeStructType("", []string{"a"}, []*Type{NumberType})
	assertSubtypeOf(t, anon, s)
	assertNotSubtypeOf(t, MakeStructType("T", []string{"a"}, []*Type{NumberType}), s)

	// Field types are covariant.
	wide := MakeStructType("S", []string{"a", "b"}, []*Type{MakeUnionType(NumberType, BoolType), StringType})
	assertSubtypeOf(t, wide, s)
	assertNotSubtypeOf(t, s, wide)
}

func TestAssertTypeCycles(t *testing.T) {
	// Struct Node { next: Ref<Cycle<0>> } against a one-level unrolling of
	// itself.
	node := MakeStructType("Node", []string{"next"}, []*Type{MakeRefType(MakeCycleType(0))})
	unrolled := MakeStructType("Node", []string{"next"}, []*Type{MakeRefType(node)})
	assertSubtypeOf(t, node, unrolled)

	// A node with an extra field is still a Node.
	bigger := MakeStructType("Node", []string{"extra", "next"}, []*Type{BoolType, MakeRefType(MakeCycleType(0))})
	assertSubtypeOf(t, node, bigger)
}

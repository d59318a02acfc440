// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package types

import (
	"github.com/silt-db/silt/go/hash"
)

// Type defines and describes Silt types, both built-in and user-defined.
// Desc provides the composition of the type. It may contain only a Kind,
// e.g. "Number", or it may contain additional information, e.g. the element
// type(s) of a List.
//
// Types are interned: structurally equal types are pointer-equal within a
// process. Every type also carries an order id (oid), a hash that is
// insensitive to union member order, used to canonicalize unions.
type Type struct {
	Desc TypeDesc

	id            uint32
	h             hash.Hash
	oid           *hash.Hash
	serialization []byte
}

func newType(desc TypeDesc, id uint32) *Type {
	return &Type{Desc: desc, id: id}
}

// Describe generate text that can be used to describe this type.
func (t *Type) Describe() string {
	return EncodedValue(t)
}

func (t *Type) Kind() Kind {
	return t.Desc.Kind()
}

// Elem returns the single element type of a List, Set, or Ref type.
func (t *Type) Elem() *Type {
	elemTypes := t.Desc.(CompoundDesc).ElemTypes
	return elemTypes[0]
}

// Value interface

func (t *Type) Equals(other Value) bool {
	if t2, ok := other.(*Type); ok {
		return t == t2 || t.Hash() == t2.Hash()
	}
	return false
}

func (t *Type) Less(other Value) bool {
	return valueLess(t, other)
}

func (t *Type) Hash() hash.Hash {
	if t.h.IsEmpty() {
		t.h = getHash(t)
	}
	return t.h
}

func (t *Type) WalkValues(cb ValueCallback) {
}

func (t *Type) WalkRefs(cb RefCallback) {
}

func (t *Type) Type() *Type {
	return TypeType
}

func (t *Type) hashPointer() *hash.Hash {
	return &t.h
}

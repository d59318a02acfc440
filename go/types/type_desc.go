// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package types

import (
	"github.com/silt-db/silt/go/d"
)

// TypeDesc describes a type of the kind returned by Kind(), e.g. Map,
// Number, or a custom type.
type TypeDesc interface {
	Kind() Kind
}

// PrimitiveDesc implements TypeDesc for types with no child types: Bool,
// Number, String, Blob, Value, Type.
type PrimitiveDesc Kind

func (p PrimitiveDesc) Kind() Kind {
	return Kind(p)
}

// CompoundDesc describes a List, Map, Set, Ref, or Union type.
// ElemTypes indicates what type or types are in the container indicated by
// kind, e.g. Map key and value or Set element.
type CompoundDesc struct {
	kind      Kind
	ElemTypes typeSlice
}

func (c CompoundDesc) Kind() Kind {
	return c.kind
}

// CycleDesc is a back-reference to the n-th enclosing struct, De Bruijn
// style.
type CycleDesc uint32

func (c CycleDesc) Kind() Kind {
	return CycleKind
}

func (c CycleDesc) Level() uint32 {
	return uint32(c)
}

// StructDesc describes a custom Struct type.
type StructDesc struct {
	Name   string
	fields []field
}

type field struct {
	name string
	t    *Type
}

func (s StructDesc) Kind() Kind {
	return StructKind
}

func (s StructDesc) IterFields(cb func(name string, t *Type)) {
	for _, field := range s.fields {
		cb(field.name, field.t)
	}
}

// Field returns the type of the field with the given name, panicking if no
// such field exists.
func (s StructDesc) Field(name string) *Type {
	f, i := s.findField(name)
	d.PanicIfTrue(i < 0, `Struct has no field "%s"`, name)
	return f.t
}

func (s StructDesc) findField(name string) (field, int) {
	i := searchFieldIndex(s.fields, name)
	if i == len(s.fields) || s.fields[i].name != name {
		return field{}, -1
	}
	return s.fields[i], i
}

// Len returns the number of fields in the struct
func (s StructDesc) Len() int {
	return len(s.fields)
}

func searchFieldIndex(fields []field, name string) int {
	lo, hi := 0, len(fields)
	for lo < hi {
		mid := (lo + hi) / 2
		if fields[mid].name < name {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

type typeSlice []*Type

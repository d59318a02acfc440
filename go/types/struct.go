// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package types

import (
	"sort"

	"github.com/silt-db/silt/go/d"
	"github.com/silt-db/silt/go/hash"
)

// StructData is the input to NewStruct: a map of field name to value.
type StructData map[string]Value

// Struct is an immutable tuple of named values, paired with a struct type.
// Field values are stored in field-name order.
type Struct struct {
	t      *Type
	values []Value
	h      *hash.Hash
}

// NewStruct creates a struct whose type is computed exactly from its data.
func NewStruct(name string, data StructData) Struct {
	fieldNames := make([]string, 0, len(data))
	for fn := range data {
		fieldNames = append(fieldNames, fn)
	}
	sort.Strings(fieldNames)

	fieldTypes := make([]*Type, len(fieldNames))
	values := make([]Value, len(fieldNames))
	for i, fn := range fieldNames {
		v := data[fn]
		d.PanicIfTrue(v == nil, "field %s must not be nil", fn)
		fieldTypes[i] = v.Type()
		values[i] = v
	}

	return Struct{MakeStructType(name, fieldNames, fieldTypes), values, &hash.Hash{}}
}

// NewStructWithType creates a struct with the given (possibly wider) type.
// Each value must be a subtype instance of the corresponding field type.
func NewStructWithType(t *Type, values ValueSlice) Struct {
	desc := t.Desc.(StructDesc)
	d.PanicIfFalse(len(values) == desc.Len(), "wrong number of field values")
	i := 0
	desc.IterFields(func(name string, ft *Type) {
		assertSubtypeAgainstStruct(t, ft, values[i])
		i++
	})
	return Struct{t, values, &hash.Hash{}}
}

// assertSubtypeAgainstStruct checks a field value against its declared
// type, resolving Cycle back-references against the enclosing struct type.
func assertSubtypeAgainstStruct(structType, fieldType *Type, v Value) {
	checker := subtypeChecker{assumptions: map[typePair]struct{}{}}
	if !checker.isSubtype(fieldType, v.Type(), []*Type{structType}, nil) {
		d.Panic("Invalid type. %s is not a subtype of %s", v.Type().Describe(), fieldType.Describe())
	}
}

// EmptyStruct is the nameless, fieldless struct.
var EmptyStruct = NewStruct("", nil)

// IsZeroValue returns true for the zero Struct, which is not a usable
// value; callers use it to detect an unset optional struct argument.
func (s Struct) IsZeroValue() bool {
	return s.t == nil
}

func (s Struct) Equals(other Value) bool {
	if s2, ok := other.(Struct); ok {
		return s.Hash() == s2.Hash()
	}
	return false
}

func (s Struct) Less(other Value) bool {
	return valueLess(s, other)
}

func (s Struct) Hash() hash.Hash {
	return getHash(s)
}

func (s Struct) WalkValues(cb ValueCallback) {
	for _, v := range s.values {
		cb(v)
	}
}

func (s Struct) WalkRefs(cb RefCallback) {
	for _, v := range s.values {
		v.WalkRefs(cb)
	}
}

func (s Struct) Type() *Type {
	return s.t
}

func (s Struct) hashPointer() *hash.Hash {
	return s.h
}

// Name returns the name of the struct.
func (s Struct) Name() string {
	return s.t.Desc.(StructDesc).Name
}

// MaybeGet returns the value of a field and whether the field exists.
func (s Struct) MaybeGet(n string) (Value, bool) {
	_, i := s.t.Desc.(StructDesc).findField(n)
	if i < 0 {
		return nil, false
	}
	return s.values[i], true
}

// Get returns the value of a field, panicking if absent.
func (s Struct) Get(n string) Value {
	v, ok := s.MaybeGet(n)
	d.PanicIfFalse(ok, `Struct has no field "%s"`, n)
	return v
}

// Set returns a new struct where the field n has been set to v. The new
// struct's type is recomputed, so setting an unknown field widens the type.
func (s Struct) Set(n string, v Value) Struct {
	d.PanicIfTrue(v == nil, "field value must not be nil")
	data := StructData{n: v}
	s.IterFields(func(name string, value Value) {
		if name != n {
			data[name] = value
		}
	})
	return NewStruct(s.Name(), data)
}

// Delete returns a new struct without the field n. Deleting an absent
// field is a no-op.
func (s Struct) Delete(n string) Struct {
	if _, ok := s.MaybeGet(n); !ok {
		return s
	}
	data := StructData{}
	s.IterFields(func(name string, value Value) {
		if name != n {
			data[name] = value
		}
	})
	return NewStruct(s.Name(), data)
}

// IterFields visits fields in name order.
func (s Struct) IterFields(cb func(name string, value Value)) {
	i := 0
	s.t.Desc.(StructDesc).IterFields(func(name string, t *Type) {
		cb(name, s.values[i])
		i++
	})
}

func structFromTypeAndValues(t *Type, values []Value) Struct {
	return Struct{t, values, &hash.Hash{}}
}

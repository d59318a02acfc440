// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

// Package types implements the typed value model: primitives, chunked
// collections, structs, refs, and the structural type system they share.
package types

import "github.com/silt-db/silt/go/d"

// Kind allows a TypeDesc to indicate what kind of type it describes. The
// ordinal of each Kind is part of the serialization format and must never
// change.
type Kind uint8

const (
	BoolKind Kind = iota
	NumberKind
	StringKind
	BlobKind
	ValueKind
	ListKind
	MapKind
	RefKind
	SetKind
	StructKind
	CycleKind
	TypeKind
	UnionKind
)

var KindToString = map[Kind]string{
	BoolKind:   "Bool",
	NumberKind: "Number",
	StringKind: "String",
	BlobKind:   "Blob",
	ValueKind:  "Value",
	ListKind:   "List",
	MapKind:    "Map",
	RefKind:    "Ref",
	SetKind:    "Set",
	StructKind: "Struct",
	CycleKind:  "Cycle",
	TypeKind:   "Type",
	UnionKind:  "Union",
}

// IsPrimitiveKind returns true if k represents a type with no child types.
func IsPrimitiveKind(k Kind) bool {
	switch k {
	case BoolKind, NumberKind, StringKind, BlobKind, ValueKind, TypeKind:
		return true
	default:
		return false
	}
}

// isKindOrderedByValue determines whether a value of kind k sorts by its
// encoded value or by its hash when used as a collection key.
func isKindOrderedByValue(k Kind) bool {
	return k <= StringKind
}

func checkKind(k Kind) {
	d.PanicIfTrue(k > UnionKind, "invalid kind %d", k)
}

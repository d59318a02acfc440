// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package types

import (
	"github.com/silt-db/silt/go/hash"
)

// ValueCallback is invoked with each immediate child value.
type ValueCallback func(v Value)

// RefCallback is invoked with each Ref reachable within a single chunk.
type RefCallback func(ref Ref)

// Value is the interface all Silt values implement.
type Value interface {
	Equals(other Value) bool
	Less(other Value) bool

	Hash() hash.Hash

	// WalkValues iterates over the immediate children of this value in the
	// DAG, if any, not including Type().
	WalkValues(cb ValueCallback)

	// WalkRefs iterates over the refs to the underlying chunks. If this
	// value is a collection that has been chunked then this will return the
	// refs of th sub trees of the prolly-tree.
	WalkRefs(cb RefCallback)

	Type() *Type
}

// ValueSlice implements sort.Interface, ordering by Value.Less.
type ValueSlice []Value

func (vs ValueSlice) Len() int           { return len(vs) }
func (vs ValueSlice) Swap(i, j int)      { vs[i], vs[j] = vs[j], vs[i] }
func (vs ValueSlice) Less(i, j int) bool { return vs[i].Less(vs[j]) }

func (vs ValueSlice) Equals(other ValueSlice) bool {
	if len(vs) != len(other) {
		return false
	}
	for i, v := range vs {
		if !v.Equals(other[i]) {
			return false
		}
	}
	return true
}

func (vs ValueSlice) Contains(v Value) bool {
	for _, v2 := range vs {
		if v.Equals(v2) {
			return true
		}
	}
	return false
}

// ValueReader is an interface that knows how to read Silt Values, e.g.
// datas.Database. Required to avoid import cycle between this package and
// the package that implements Value reading.
type ValueReader interface {
	ReadValue(h hash.Hash) Value
	ReadManyValues(hashes hash.HashSlice) ValueSlice
}

// ValueWriter is an interface that knows how to write Silt Values, e.g.
// datas.Database. Required to avoid import cycle between this package and
// the package that implements Value writing.
type ValueWriter interface {
	WriteValue(v Value) Ref
}

// ValueReadWriter is an interface that knows how to read and write Silt
// Values, e.g. datas.Database.
type ValueReadWriter interface {
	ValueReader
	ValueWriter
}

// hashCacher is implemented by values that hold on to their hash once it
// has been computed or learned from a decoded chunk.
type hashCacher interface {
	hashPointer() *hash.Hash
}

func assignHash(hc hashCacher, h hash.Hash) {
	*hc.hashPointer() = h
}

// getHash computes (or returns the cached) hash of v: the hash of v's
// serialized chunk.
func getHash(v Value) hash.Hash {
	if hc, ok := v.(hashCacher); ok {
		if h := hc.hashPointer(); !h.IsEmpty() {
			return *h
		}
	}
	h := EncodeValue(v, nil).Hash()
	if hc, ok := v.(hashCacher); ok {
		assignHash(hc, h)
	}
	return h
}

// valueLess is the default ordering for values which do not order by their
// encoded value: primitives sort first, everything else sorts by hash.
func valueLess(v1, v2 Value) bool {
	switch v2.(type) {
	case Bool, Number, String:
		return false
	default:
		return v1.Hash().Less(v2.Hash())
	}
}

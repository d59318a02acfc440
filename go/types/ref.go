// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package types

import (
	"github.com/silt-db/silt/go/d"
	"github.com/silt-db/silt/go/hash"
)

// Ref is a typed pointer to another value: (target hash, height, type).
// Height is the length of the longest chunk-graph path below the target
// plus one; leaves have height 1.
type Ref struct {
	t      *Type
	target hash.Hash
	height uint64
	h      *hash.Hash
}

// NewRef creates a Ref to v. The value is not written anywhere; pair with
// a ValueWriter for that.
func NewRef(v Value) Ref {
	return constructRef(MakeRefType(v.Type()), v.Hash(), maxChunkHeight(v)+1)
}

func constructRef(t *Type, target hash.Hash, height uint64) Ref {
	d.PanicIfFalse(t.Kind() == RefKind, "ref must carry a Ref type")
	return Ref{t, target, height, &hash.Hash{}}
}

// maxChunkHeight returns the greatest height of any ref within v's chunk.
func maxChunkHeight(v Value) uint64 {
	max := uint64(0)
	v.WalkRefs(func(r Ref) {
		if h := r.Height(); h > max {
			max = h
		}
	})
	return max
}

func (r Ref) TargetHash() hash.Hash {
	return r.target
}

func (r Ref) Height() uint64 {
	return r.height
}

// TargetType returns the declared type of the value this ref points at.
func (r Ref) TargetType() *Type {
	return r.t.Elem()
}

// TargetValue reads and returns the referenced value.
func (r Ref) TargetValue(vr ValueReader) Value {
	return vr.ReadValue(r.target)
}

func (r Ref) Equals(other Value) bool {
	if r2, ok := other.(Ref); ok {
		return r.Hash() == r2.Hash()
	}
	return false
}

func (r Ref) Less(other Value) bool {
	return valueLess(r, other)
}

func (r Ref) Hash() hash.Hash {
	return getHash(r)
}

func (r Ref) WalkValues(cb ValueCallback) {
}

func (r Ref) WalkRefs(cb RefCallback) {
	cb(r)
}

func (r Ref) Type() *Type {
	return r.t
}

func (r Ref) hashPointer() *hash.Hash {
	return r.h
}

// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package types

import (
	"github.com/silt-db/silt/go/d"
	"github.com/silt-db/silt/go/hash"
)

// orderedKey is the key a sequence item sorts under. Values which order by
// their encoded form are held directly; everything else is keyed by hash so
// that meta-sequence keys stay uniformly sized.
type orderedKey struct {
	isOrderedByValue bool
	v                Value
	h                hash.Hash
}

func newOrderedKey(v Value) orderedKey {
	switch v.(type) {
	case Bool, Number, String:
		return orderedKey{true, v, hash.Hash{}}
	}
	return orderedKey{false, v, v.Hash()}
}

func orderedKeyFromHash(h hash.Hash) orderedKey {
	return orderedKey{false, nil, h}
}

func orderedKeyFromUint64(n uint64) orderedKey {
	return newOrderedKey(Number(n))
}

func (key orderedKey) Less(mk2 orderedKey) bool {
	switch {
	case key.isOrderedByValue && mk2.isOrderedByValue:
		return key.v.Less(mk2.v)
	case key.isOrderedByValue:
		return true
	case mk2.isOrderedByValue:
		return false
	default:
		d.PanicIfTrue(key.h.IsEmpty() || mk2.h.IsEmpty(), "cannot compare unresolved keys")
		return key.h.Less(mk2.h)
	}
}

// metaTuple is a node in a prolly tree, consisting of data in the node (one
// of the leaf sequences or other metaSequences), and a tuple summarizing it:
// (ref, ordering key, number of leaves). The ordering key is the key of the
// last leaf in the subtree for ordered (Map, Set) trees and the subtree's
// leaf count for indexed (List, Blob) trees.
type metaTuple struct {
	ref       Ref
	key       orderedKey
	numLeaves uint64
	child     Collection // may be nil if the child is only available through the ValueReader
}

func newMetaTuple(ref Ref, key orderedKey, numLeaves uint64, child Collection) metaTuple {
	return metaTuple{ref, key, numLeaves, child}
}

// metaSequence is a logical abstraction, but has no concrete "base" type. A
// Meta Sequence is a non-leaf (internal) node of a prolly tree, which
// results from the chunking of an ordered or unordered sequence of values.
type metaSequence struct {
	t      *Type
	vr     ValueReader
	tuples []metaTuple

	leafCount uint64
	level     uint64
	offsets   []uint64
}

func newMetaSequence(t *Type, tuples []metaTuple, vr ValueReader) metaSequence {
	d.PanicIfTrue(len(tuples) == 0, "a meta sequence must have at least one tuple")
	leafCount := uint64(0)
	offsets := make([]uint64, len(tuples))
	for i, mt := range tuples {
		leafCount += mt.numLeaves
		offsets[i] = leafCount
	}
	return metaSequence{t, vr, tuples, leafCount, tuples[0].ref.Height(), offsets}
}

func (ms metaSequence) Type() *Type {
	return ms.t
}

func (ms metaSequence) Kind() Kind {
	return ms.t.Kind()
}

func (ms metaSequence) valueReader() ValueReader {
	return ms.vr
}

func (ms metaSequence) seqLen() int {
	return len(ms.tuples)
}

func (ms metaSequence) numLeaves() uint64 {
	return ms.leafCount
}

func (ms metaSequence) treeLevel() uint64 {
	return ms.level
}

func (ms metaSequence) isLeaf() bool {
	return false
}

func (ms metaSequence) getItem(idx int) sequenceItem {
	return ms.tuples[idx]
}

func (ms metaSequence) WalkRefs(cb RefCallback) {
	for _, mt := range ms.tuples {
		cb(mt.ref)
	}
}

func (ms metaSequence) getKey(idx int) orderedKey {
	return ms.tuples[idx].key
}

func (ms metaSequence) cumulativeNumberOfLeaves(idx int) uint64 {
	return ms.offsets[idx]
}

func (ms metaSequence) getChildSequence(idx int) sequence {
	mt := ms.tuples[idx]
	if mt.child != nil {
		return mt.child.sequence()
	}
	d.PanicIfTrue(ms.vr == nil, "cannot resolve subtree without a ValueReader")
	v := ms.vr.ReadValue(mt.ref.TargetHash())
	d.PanicIfTrue(v == nil, "missing chunk %s", mt.ref.TargetHash())
	return v.(Collection).sequence()
}

// getCompositeChildSequence returns a sequence equivalent to concatenating
// the children in tuples [start, start+length). Used by diff to pull
// subtrees of unequal height into alignment.
func (ms metaSequence) getCompositeChildSequence(start uint64, length uint64) sequence {
	d.PanicIfTrue(length == 0, "empty composite child")
	children := make([]sequence, length)
	for i := uint64(0); i < length; i++ {
		children[i] = ms.getChildSequence(int(start + i))
	}

	if !children[0].isLeaf() {
		tuples := []metaTuple{}
		for _, child := range children {
			tuples = append(tuples, child.(metaSequence).tuples...)
		}
		return newMetaSequence(childMetaType(ms.Kind(), tuples), tuples, ms.vr)
	}

	switch ms.Kind() {
	case ListKind:
		values := []Value{}
		for _, child := range children {
			values = append(values, child.(listLeafSequence).values...)
		}
		return newListLeafSequence(ms.vr, values...)
	case SetKind:
		data := []Value{}
		for _, child := range children {
			data = append(data, child.(setLeafSequence).data...)
		}
		return newSetLeafSequence(ms.vr, data...)
	case MapKind:
		data := []mapEntry{}
		for _, child := range children {
			data = append(data, child.(mapLeafSequence).data...)
		}
		return newMapLeafSequence(ms.vr, data...)
	case BlobKind:
		data := []byte{}
		for _, child := range children {
			data = append(data, child.(blobLeafSequence).data...)
		}
		return newBlobLeafSequence(ms.vr, data)
	default:
		d.Panic("unknown sequence kind")
		return nil
	}
}

func newCollectionFromSequence(seq sequence) Collection {
	switch seq.Kind() {
	case ListKind:
		return newList(seq)
	case SetKind:
		return newSet(seq)
	case MapKind:
		return newMap(seq)
	case BlobKind:
		return newBlob(seq)
	default:
		d.Panic("unknown collection kind")
		return nil
	}
}

// newIndexedMetaSequenceChunkFn makes the chunker function for the meta
// levels of indexed (List, Blob) trees.
func newIndexedMetaSequenceChunkFn(kind Kind, vr ValueReader) makeChunkFn {
	return func(items []sequenceItem) (Collection, orderedKey, uint64) {
		tuples := make([]metaTuple, len(items))
		numLeaves := uint64(0)
		for i, item := range items {
			mt := item.(metaTuple)
			tuples[i] = mt
			numLeaves += mt.numLeaves
		}
		ms := newMetaSequence(childMetaType(kind, tuples), tuples, vr)
		return newCollectionFromSequence(ms), orderedKeyFromUint64(numLeaves), numLeaves
	}
}

// newOrderedMetaSequenceChunkFn makes the chunker function for the meta
// levels of ordered (Map, Set) trees. The chunk's key is the key of the
// last leaf under it.
func newOrderedMetaSequenceChunkFn(kind Kind, vr ValueReader) makeChunkFn {
	return func(items []sequenceItem) (Collection, orderedKey, uint64) {
		tuples := make([]metaTuple, len(items))
		numLeaves := uint64(0)
		for i, item := range items {
			mt := item.(metaTuple)
			tuples[i] = mt
			numLeaves += mt.numLeaves
		}
		ms := newMetaSequence(childMetaType(kind, tuples), tuples, vr)
		return newCollectionFromSequence(ms), tuples[len(tuples)-1].key, numLeaves
	}
}

// childMetaType computes the collection type of a meta sequence from the
// declared types of its children.
func childMetaType(kind Kind, tuples []metaTuple) *Type {
	if kind == BlobKind {
		return BlobType
	}
	switch kind {
	case ListKind, SetKind:
		elemTypes := make([]*Type, len(tuples))
		for i, mt := range tuples {
			elemTypes[i] = mt.ref.TargetType().Elem()
		}
		if kind == ListKind {
			return MakeListType(MakeUnionType(elemTypes...))
		}
		return MakeSetType(MakeUnionType(elemTypes...))
	case MapKind:
		keyTypes := make([]*Type, len(tuples))
		valTypes := make([]*Type, len(tuples))
		for i, mt := range tuples {
			elemTypes := mt.ref.TargetType().Desc.(CompoundDesc).ElemTypes
			keyTypes[i] = elemTypes[0]
			valTypes[i] = elemTypes[1]
		}
		return MakeMapType(MakeUnionType(keyTypes...), MakeUnionType(valTypes...))
	default:
		d.Panic("unknown meta sequence kind")
		return nil
	}
}

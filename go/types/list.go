// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package types

import (
	"github.com/silt-db/silt/go/d"
	"github.com/silt-db/silt/go/hash"
)

// List represents a list or an array of Silt values. Lists are ordered,
// random access, and build on a prolly tree, so collections of arbitrary
// size share unchanged chunks with edited versions of themselves.
type List struct {
	seq sequence
	h   *hash.Hash
}

func newList(seq sequence) List {
	return List{seq, &hash.Hash{}}
}

// NewList creates a new List where the type is computed from the elements
// in the list, populated with values, chunking if and when needed.
func NewList(values ...Value) List {
	ch := newEmptyListSequenceChunker(nil, nil)
	for _, v := range values {
		ch.Append(v)
	}
	return ch.Done().(List)
}

func (l List) Equals(other Value) bool {
	if l2, ok := other.(List); ok {
		return l.Hash() == l2.Hash()
	}
	return false
}

func (l List) Less(other Value) bool {
	return valueLess(l, other)
}

func (l List) Hash() hash.Hash {
	return getHash(l)
}

func (l List) WalkValues(cb ValueCallback) {
	l.IterAll(func(v Value, idx uint64) {
		cb(v)
	})
}

func (l List) WalkRefs(cb RefCallback) {
	l.seq.WalkRefs(cb)
}

func (l List) Type() *Type {
	return l.seq.Type()
}

func (l List) hashPointer() *hash.Hash {
	return l.h
}

func (l List) sequence() sequence {
	return l.seq
}

func (l List) Len() uint64 {
	return l.seq.numLeaves()
}

func (l List) Empty() bool {
	return l.Len() == 0
}

// Get returns the value at the given index. If this list has been chunked
// then this will have to descend into the prolly-tree which leads to Get
// being O(depth).
func (l List) Get(idx uint64) Value {
	d.PanicIfFalse(idx < l.Len(), "index %d out of bounds", idx)
	cur := newCursorAtIndex(l.seq, idx)
	return cur.current().(Value)
}

// Append creates a new list with values appended.
func (l List) Append(vs ...Value) List {
	return l.Splice(l.Len(), 0, vs...)
}

// Insert creates a new list where vs has been inserted at idx.
func (l List) Insert(idx uint64, vs ...Value) List {
	return l.Splice(idx, 0, vs...)
}

// Set replaces the value at idx.
func (l List) Set(idx uint64, v Value) List {
	d.PanicIfFalse(idx < l.Len(), "index %d out of bounds", idx)
	return l.Splice(idx, 1, v)
}

// Remove creates a new list where the items at index start (inclusive)
// through end (exclusive) have been removed.
func (l List) Remove(start uint64, end uint64) List {
	d.PanicIfFalse(start <= end && end <= l.Len(), "remove bounds out of range")
	return l.Splice(start, end-start)
}

// RemoveAt creates a new list where a single element has been removed.
func (l List) RemoveAt(idx uint64) List {
	return l.Remove(idx, idx+1)
}

// Splice creates a new list where deleteCount items starting at idx have
// been replaced with vs. Only the affected region is re-chunked; chunks on
// either side of the edit are shared with the receiver.
func (l List) Splice(idx uint64, deleteCount uint64, vs ...Value) List {
	if deleteCount == 0 && len(vs) == 0 {
		return l
	}
	d.PanicIfFalse(idx+deleteCount <= l.Len(), "splice out of bounds")

	cur := newCursorAtIndex(l.seq, idx)
	ch := newSequenceChunker(cur, l.seq.valueReader(), nil, makeListLeafChunkFn(l.seq.valueReader()), newIndexedMetaSequenceChunkFn(ListKind, l.seq.valueReader()), hashValueBytes)
	for i := uint64(0); i < deleteCount; i++ {
		ch.Skip()
	}
	for _, v := range vs {
		ch.Append(v)
	}
	return ch.Done().(List)
}

// Iter iterates over the list from index 0 in order, stopping early if f
// returns true.
func (l List) Iter(f func(v Value, index uint64) (stop bool)) {
	idx := uint64(0)
	cur := newCursorAtIndex(l.seq, idx)
	cur.iter(func(v sequenceItem) bool {
		stop := f(v.(Value), idx)
		idx++
		return stop
	})
}

// IterAll visits every element in index order.
func (l List) IterAll(f func(v Value, index uint64)) {
	idx := uint64(0)
	cur := newCursorAtIndex(l.seq, 0)
	cur.iter(func(v sequenceItem) bool {
		f(v.(Value), idx)
		idx++
		return false
	})
}

// Diff streams the splices which transform last into l.
func (l List) Diff(last List, changes chan<- Splice, closeChan <-chan struct{}) {
	l.DiffWithLimit(last, changes, closeChan, DEFAULT_MAX_SPLICE_MATRIX_SIZE)
}

// DiffWithLimit computes the diff with a custom bound on the edit-distance
// matrix; above the bound a region is reported as one coarse splice.
func (l List) DiffWithLimit(last List, changes chan<- Splice, closeChan <-chan struct{}, maxSpliceMatrixSize uint64) {
	if l.Equals(last) {
		return
	}
	indexedSequenceDiff(last.seq.(indexedSequence), 0, l.seq.(indexedSequence), 0, changes, closeChan, maxSpliceMatrixSize)
}

func makeListLeafChunkFn(vr ValueReader) makeChunkFn {
	return func(items []sequenceItem) (Collection, orderedKey, uint64) {
		values := make([]Value, len(items))
		for i, item := range items {
			values[i] = item.(Value)
		}
		list := newList(newListLeafSequence(vr, values...))
		return list, orderedKeyFromUint64(uint64(len(values))), uint64(len(values))
	}
}

func newEmptyListSequenceChunker(vr ValueReader, vw ValueWriter) *sequenceChunker {
	return newEmptySequenceChunker(vr, vw, makeListLeafChunkFn(vr), newIndexedMetaSequenceChunkFn(ListKind, vr), hashValueBytes)
}

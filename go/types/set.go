// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package types

import (
	"sort"

	"github.com/silt-db/silt/go/hash"
)

// Set is an ordered set of unique Silt values, chunked into a prolly tree.
// Iteration order is the canonical value order: primitives by value,
// everything else by hash.
type Set struct {
	seq sequence
	h   *hash.Hash
}

func newSet(seq sequence) Set {
	return Set{seq, &hash.Hash{}}
}

// NewSet creates a new Set containing each unique value in v.
func NewSet(v ...Value) Set {
	data := buildSetData(v)
	ch := newEmptySetSequenceChunker(nil, nil)
	for _, v := range data {
		ch.Append(v)
	}
	return ch.Done().(Set)
}

func buildSetData(values ValueSlice) ValueSlice {
	if len(values) == 0 {
		return ValueSlice{}
	}

	uniqueSorted := make(ValueSlice, 0, len(values))
	sort.Stable(values)
	last := values[0]
	for i := 1; i < len(values); i++ {
		v := values[i]
		if !v.Equals(last) {
			uniqueSorted = append(uniqueSorted, last)
		}
		last = v
	}
	return append(uniqueSorted, last)
}

// IsZeroValue returns true for the zero Set, which is not a usable value;
// callers use it to detect an unset optional set argument.
func (s Set) IsZeroValue() bool {
	return s.seq == nil
}

func (s Set) Equals(other Value) bool {
	if s2, ok := other.(Set); ok {
		return s.Hash() == s2.Hash()
	}
	return false
}

func (s Set) Less(other Value) bool {
	return valueLess(s, other)
}

func (s Set) Hash() hash.Hash {
	return getHash(s)
}

func (s Set) WalkValues(cb ValueCallback) {
	s.IterAll(func(v Value) {
		cb(v)
	})
}

func (s Set) WalkRefs(cb RefCallback) {
	s.seq.WalkRefs(cb)
}

func (s Set) Type() *Type {
	return s.seq.Type()
}

func (s Set) hashPointer() *hash.Hash {
	return s.h
}

func (s Set) sequence() sequence {
	return s.seq
}

func (s Set) Len() uint64 {
	return s.seq.numLeaves()
}

func (s Set) Empty() bool {
	return s.Len() == 0
}

// Has returns true if v is in the set.
func (s Set) Has(v Value) bool {
	cur := newCursorAtValue(s.seq.(orderedSequence), v, false, false)
	return cur.valid() && cur.current().(Value).Equals(v)
}

// First returns the first (smallest) value in the set, or nil if empty.
func (s Set) First() Value {
	cur := newCursorAt(s.seq.(orderedSequence), orderedKey{}, false, false)
	if !cur.valid() {
		return nil
	}
	return cur.current().(Value)
}

// Insert returns a new set with vs inserted.
func (s Set) Insert(vs ...Value) Set {
	result := s
	for _, v := range vs {
		if result.Has(v) {
			continue
		}
		cur := newCursorAtValue(result.seq.(orderedSequence), v, true, false)
		ch := result.newChunkerAtCursor(cur)
		ch.Append(v)
		result = ch.Done().(Set)
	}
	return result
}

// Remove returns a new set with vs removed.
func (s Set) Remove(vs ...Value) Set {
	result := s
	for _, v := range vs {
		cur := newCursorAtValue(result.seq.(orderedSequence), v, false, false)
		if !cur.valid() || !cur.current().(Value).Equals(v) {
			continue
		}
		ch := result.newChunkerAtCursor(cur)
		ch.Skip()
		result = ch.Done().(Set)
	}
	return result
}

func (s Set) newChunkerAtCursor(cur *sequenceCursor) *sequenceChunker {
	vr := s.seq.valueReader()
	return newSequenceChunker(cur, vr, nil, makeSetLeafChunkFn(vr), newOrderedMetaSequenceChunkFn(SetKind, vr), hashValueBytes)
}

// Iter iterates the set in order until f returns true.
func (s Set) Iter(f func(v Value) (stop bool)) {
	cur := newCursorAt(s.seq.(orderedSequence), orderedKey{}, false, false)
	cur.iter(func(v sequenceItem) bool {
		return f(v.(Value))
	})
}

// IterAll visits every value in order.
func (s Set) IterAll(f func(v Value)) {
	s.Iter(func(v Value) bool {
		f(v)
		return false
	})
}

// Diff streams the changes which transform last into s.
func (s Set) Diff(last Set, changes chan<- ValueChanged, closeChan <-chan struct{}) {
	if s.Equals(last) {
		return
	}
	orderedSequenceDiff(last.seq.(orderedSequence), s.seq.(orderedSequence), changes, closeChan)
}

func makeSetLeafChunkFn(vr ValueReader) makeChunkFn {
	return func(items []sequenceItem) (Collection, orderedKey, uint64) {
		data := make([]Value, len(items))
		for i, item := range items {
			data[i] = item.(Value)
		}
		set := newSet(newSetLeafSequence(vr, data...))
		var key orderedKey
		if len(data) > 0 {
			key = newOrderedKey(data[len(data)-1])
		}
		return set, key, uint64(len(data))
	}
}

func newEmptySetSequenceChunker(vr ValueReader, vw ValueWriter) *sequenceChunker {
	return newEmptySequenceChunker(vr, vw, makeSetLeafChunkFn(vr), newOrderedMetaSequenceChunkFn(SetKind, vr), hashValueBytes)
}

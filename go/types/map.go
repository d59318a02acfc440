// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package types

import (
	"sort"

	"github.com/silt-db/silt/go/d"
	"github.com/silt-db/silt/go/hash"
)

// Map is a map from Silt values to Silt values, ordered by key and chunked
// into a prolly tree, so that versions of a map which differ in a few
// entries share most of their chunks.
type Map struct {
	seq sequence
	h   *hash.Hash
}

func newMap(seq sequence) Map {
	return Map{seq, &hash.Hash{}}
}

// NewMap creates a new Map from alternating keys and values. If a key
// appears twice, the last value wins.
func NewMap(kv ...Value) Map {
	entries := buildMapData(kv)
	ch := newEmptyMapSequenceChunker(nil, nil)
	for _, entry := range entries {
		ch.Append(entry)
	}
	return ch.Done().(Map)
}

func buildMapData(values []Value) mapEntrySlice {
	d.PanicIfFalse(len(values)%2 == 0, "NewMap requires an even number of arguments")
	if len(values) == 0 {
		return mapEntrySlice{}
	}

	kvs := make(mapEntrySlice, 0, len(values)/2)
	for i := 0; i < len(values); i += 2 {
		d.PanicIfTrue(values[i] == nil || values[i+1] == nil, "keys and values must be non-nil")
		kvs = append(kvs, mapEntry{values[i], values[i+1]})
	}
	sort.Stable(kvs)

	uniqueSorted := make(mapEntrySlice, 0, len(kvs))
	last := kvs[0]
	for i := 1; i < len(kvs); i++ {
		entry := kvs[i]
		if !entry.key.Equals(last.key) {
			uniqueSorted = append(uniqueSorted, last)
		}
		last = entry
	}
	return append(uniqueSorted, last)
}

func (m Map) Equals(other Value) bool {
	if m2, ok := other.(Map); ok {
		return m.Hash() == m2.Hash()
	}
	return false
}

func (m Map) Less(other Value) bool {
	return valueLess(m, other)
}

func (m Map) Hash() hash.Hash {
	return getHash(m)
}

func (m Map) WalkValues(cb ValueCallback) {
	m.IterAll(func(k, v Value) {
		cb(k)
		cb(v)
	})
}

func (m Map) WalkRefs(cb RefCallback) {
	m.seq.WalkRefs(cb)
}

func (m Map) Type() *Type {
	return m.seq.Type()
}

func (m Map) hashPointer() *hash.Hash {
	return m.h
}

func (m Map) sequence() sequence {
	return m.seq
}

func (m Map) Len() uint64 {
	return m.seq.numLeaves()
}

func (m Map) Empty() bool {
	return m.Len() == 0
}

// MaybeGet returns the value for key, and whether the key is present.
func (m Map) MaybeGet(key Value) (Value, bool) {
	cur := newCursorAtValue(m.seq.(orderedSequence), key, false, false)
	if !cur.valid() {
		return nil, false
	}
	entry := cur.current().(mapEntry)
	if !entry.key.Equals(key) {
		return nil, false
	}
	return entry.value, true
}

// Get returns the value for key, or nil if not present.
func (m Map) Get(key Value) Value {
	v, _ := m.MaybeGet(key)
	return v
}

// Has returns true if key is present.
func (m Map) Has(key Value) bool {
	_, ok := m.MaybeGet(key)
	return ok
}

// First returns the smallest key and its value, or nil, nil if empty.
func (m Map) First() (Value, Value) {
	cur := newCursorAt(m.seq.(orderedSequence), orderedKey{}, false, false)
	if !cur.valid() {
		return nil, nil
	}
	entry := cur.current().(mapEntry)
	return entry.key, entry.value
}

// Set returns a new map with key mapped to v.
func (m Map) Set(key Value, v Value) Map {
	cur, found := m.getCursorAtKey(key)
	if found && cur.current().(mapEntry).value.Equals(v) {
		return m
	}
	ch := m.newChunkerAtCursor(cur)
	if found {
		ch.Skip()
	}
	ch.Append(mapEntry{key, v})
	return ch.Done().(Map)
}

// Remove returns a new map without key.
func (m Map) Remove(key Value) Map {
	cur, found := m.getCursorAtKey(key)
	if !found {
		return m
	}
	ch := m.newChunkerAtCursor(cur)
	ch.Skip()
	return ch.Done().(Map)
}

func (m Map) getCursorAtKey(key Value) (*sequenceCursor, bool) {
	cur := newCursorAtValue(m.seq.(orderedSequence), key, true, false)
	found := cur.valid() && cur.current().(mapEntry).key.Equals(key)
	return cur, found
}

func (m Map) newChunkerAtCursor(cur *sequenceCursor) *sequenceChunker {
	vr := m.seq.valueReader()
	return newSequenceChunker(cur, vr, nil, makeMapLeafChunkFn(vr), newOrderedMetaSequenceChunkFn(MapKind, vr), mapHashValueBytes)
}

// Iter iterates entries in key order until f returns true.
func (m Map) Iter(f func(key, value Value) (stop bool)) {
	cur := newCursorAt(m.seq.(orderedSequence), orderedKey{}, false, false)
	cur.iter(func(item sequenceItem) bool {
		entry := item.(mapEntry)
		return f(entry.key, entry.value)
	})
}

// IterAll visits every entry in key order.
func (m Map) IterAll(f func(key, value Value)) {
	m.Iter(func(k, v Value) bool {
		f(k, v)
		return false
	})
}

// Diff streams the changes which transform last into m.
func (m Map) Diff(last Map, changes chan<- ValueChanged, closeChan <-chan struct{}) {
	if m.Equals(last) {
		return
	}
	orderedSequenceDiff(last.seq.(orderedSequence), m.seq.(orderedSequence), changes, closeChan)
}

func makeMapLeafChunkFn(vr ValueReader) makeChunkFn {
	return func(items []sequenceItem) (Collection, orderedKey, uint64) {
		data := make([]mapEntry, len(items))
		for i, item := range items {
			data[i] = item.(mapEntry)
		}
		m := newMap(newMapLeafSequence(vr, data...))
		var key orderedKey
		if len(data) > 0 {
			key = newOrderedKey(data[len(data)-1].key)
		}
		return m, key, uint64(len(data))
	}
}

func newEmptyMapSequenceChunker(vr ValueReader, vw ValueWriter) *sequenceChunker {
	return newEmptySequenceChunker(vr, vw, makeMapLeafChunkFn(vr), newOrderedMetaSequenceChunkFn(MapKind, vr), mapHashValueBytes)
}

func mapHashValueBytes(item sequenceItem, rv *rollingValueHasher) {
	entry := item.(mapEntry)
	rv.HashValue(entry.key)
	rv.HashValue(entry.value)
}

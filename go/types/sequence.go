// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package types

import "github.com/silt-db/silt/go/d"

type sequenceItem interface{}

// sequence is the internal shape of a collection: a leaf sequence holding
// actual items, or a meta sequence of tuples pointing at child sequences.
type sequence interface {
	Type() *Type
	Kind() Kind
	valueReader() ValueReader
	seqLen() int
	numLeaves() uint64
	treeLevel() uint64
	isLeaf() bool
	getItem(idx int) sequenceItem
	WalkRefs(cb RefCallback)
	getChildSequence(idx int) sequence
	getCompositeChildSequence(start uint64, length uint64) sequence
}

// indexedSequence is implemented by sequences addressed by position (List,
// Blob).
type indexedSequence interface {
	sequence
	// cumulativeNumberOfLeaves returns the number of leaves in the child
	// subtrees [0, idx], i.e. the leaf offset just past child idx.
	cumulativeNumberOfLeaves(idx int) uint64
}

// orderedSequence is implemented by sequences addressed by key (Map, Set).
type orderedSequence interface {
	sequence
	getKey(idx int) orderedKey
}

type leafSequence struct {
	vr ValueReader
	t  *Type
}

func (seq leafSequence) Type() *Type {
	return seq.t
}

func (seq leafSequence) Kind() Kind {
	return seq.t.Kind()
}

func (seq leafSequence) valueReader() ValueReader {
	return seq.vr
}

func (seq leafSequence) treeLevel() uint64 {
	return 0
}

func (seq leafSequence) isLeaf() bool {
	return true
}

func (seq leafSequence) getChildSequence(idx int) sequence {
	return nil
}

// List leaf.

type listLeafSequence struct {
	leafSequence
	values []Value
}

func newListLeafSequence(vr ValueReader, v ...Value) sequence {
	ts := make([]*Type, len(v))
	for i, v := range v {
		ts[i] = v.Type()
	}
	t := MakeListType(MakeUnionType(ts...))
	return listLeafSequence{leafSequence{vr, t}, v}
}

func (seq listLeafSequence) seqLen() int {
	return len(seq.values)
}

func (seq listLeafSequence) numLeaves() uint64 {
	return uint64(len(seq.values))
}

func (seq listLeafSequence) getItem(idx int) sequenceItem {
	return seq.values[idx]
}

func (seq listLeafSequence) WalkRefs(cb RefCallback) {
	for _, v := range seq.values {
		v.WalkRefs(cb)
	}
}

func (seq listLeafSequence) getCompositeChildSequence(start uint64, length uint64) sequence {
	d.Panic("getCompositeChildSequence called on a leaf")
	return nil
}

func (seq listLeafSequence) cumulativeNumberOfLeaves(idx int) uint64 {
	return uint64(idx) + 1
}

// Set leaf.

type setLeafSequence struct {
	leafSequence
	data []Value
}

func newSetLeafSequence(vr ValueReader, v ...Value) sequence {
	ts := make([]*Type, len(v))
	for i, v := range v {
		ts[i] = v.Type()
	}
	t := MakeSetType(MakeUnionType(ts...))
	return setLeafSequence{leafSequence{vr, t}, v}
}

func (seq setLeafSequence) seqLen() int {
	return len(seq.data)
}

func (seq setLeafSequence) numLeaves() uint64 {
	return uint64(len(seq.data))
}

func (seq setLeafSequence) getItem(idx int) sequenceItem {
	return seq.data[idx]
}

func (seq setLeafSequence) WalkRefs(cb RefCallback) {
	for _, v := range seq.data {
		v.WalkRefs(cb)
	}
}

func (seq setLeafSequence) getCompositeChildSequence(start uint64, length uint64) sequence {
	d.Panic("getCompositeChildSequence called on a leaf")
	return nil
}

func (seq setLeafSequence) getKey(idx int) orderedKey {
	return newOrderedKey(seq.data[idx])
}

// Map leaf.

type mapEntry struct {
	key   Value
	value Value
}

type mapEntrySlice []mapEntry

func (mes mapEntrySlice) Len() int           { return len(mes) }
func (mes mapEntrySlice) Swap(i, j int)      { mes[i], mes[j] = mes[j], mes[i] }
func (mes mapEntrySlice) Less(i, j int) bool { return mes[i].key.Less(mes[j].key) }

type mapLeafSequence struct {
	leafSequence
	data []mapEntry
}

func newMapLeafSequence(vr ValueReader, data ...mapEntry) sequence {
	kts := make([]*Type, len(data))
	vts := make([]*Type, len(data))
	for i, entry := range data {
		kts[i] = entry.key.Type()
		vts[i] = entry.value.Type()
	}
	t := MakeMapType(MakeUnionType(kts...), MakeUnionType(vts...))
	return mapLeafSequence{leafSequence{vr, t}, data}
}

func (seq mapLeafSequence) seqLen() int {
	return len(seq.data)
}

func (seq mapLeafSequence) numLeaves() uint64 {
	return uint64(len(seq.data))
}

func (seq mapLeafSequence) getItem(idx int) sequenceItem {
	return seq.data[idx]
}

func (seq mapLeafSequence) WalkRefs(cb RefCallback) {
	for _, entry := range seq.data {
		entry.key.WalkRefs(cb)
		entry.value.WalkRefs(cb)
	}
}

func (seq mapLeafSequence) getCompositeChildSequence(start uint64, length uint64) sequence {
	d.Panic("getCompositeChildSequence called on a leaf")
	return nil
}

func (seq mapLeafSequence) getKey(idx int) orderedKey {
	return newOrderedKey(seq.data[idx].key)
}

// Blob leaf.

type blobLeafSequence struct {
	leafSequence
	data []byte
}

func newBlobLeafSequence(vr ValueReader, data []byte) sequence {
	return blobLeafSequence{leafSequence{vr, BlobType}, data}
}

func (seq blobLeafSequence) seqLen() int {
	return len(seq.data)
}

func (seq blobLeafSequence) numLeaves() uint64 {
	return uint64(len(seq.data))
}

func (seq blobLeafSequence) getItem(idx int) sequenceItem {
	return seq.data[idx]
}

func (seq blobLeafSequence) WalkRefs(cb RefCallback) {
}

func (seq blobLeafSequence) getCompositeChildSequence(start uint64, length uint64) sequence {
	d.Panic("getCompositeChildSequence called on a leaf")
	return nil
}

func (seq blobLeafSequence) cumulativeNumberOfLeaves(idx int) uint64 {
	return uint64(idx) + 1
}

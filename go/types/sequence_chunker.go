// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package types

import "github.com/silt-db/silt/go/d"

// makeChunkFn takes a sequence of items to chunk, and returns the result of
// chunking those items: a tuple of a reference to that chunk which can
// itself be chunked + its underlying collection, the key by which the chunk
// orders, and the number of leaves in it.
type makeChunkFn func(values []sequenceItem) (Collection, orderedKey, uint64)

type hashValueBytesFn func(item sequenceItem, rv *rollingValueHasher)

func hashValueBytes(item sequenceItem, rv *rollingValueHasher) {
	rv.HashValue(item.(Value))
}

func hashValueByte(item sequenceItem, rv *rollingValueHasher) {
	rv.HashByte(item.(byte))
}

func metaHashValueBytes(item sequenceItem, rv *rollingValueHasher) {
	rv.HashValue(item.(metaTuple).ref)
}

// sequenceChunker builds a balanced tree of chunks bottom-up. There is one
// chunker per tree level; when the rolling hash fires at some level the
// finished chunk's meta tuple is appended to the parent level's chunker,
// whose bytes feed a rolling hasher of its own.
type sequenceChunker struct {
	cur                        *sequenceCursor
	vr                         ValueReader
	vw                         ValueWriter
	parent                     *sequenceChunker
	current                    []sequenceItem
	makeChunk, parentMakeChunk makeChunkFn
	isLeaf                     bool
	hashValueBytes             hashValueBytesFn
	rv                         *rollingValueHasher
	done                       bool
}

func newEmptySequenceChunker(vr ValueReader, vw ValueWriter, makeChunk, parentMakeChunk makeChunkFn, hashValueBytes hashValueBytesFn) *sequenceChunker {
	return newSequenceChunker(nil, vr, vw, makeChunk, parentMakeChunk, hashValueBytes)
}

// newSequenceChunker creates a chunker ready to re-chunk the region around
// cur: the items of cur's chunk which precede it are replayed so that the
// rolling hash is in exactly the state it had when the original chunk was
// built up to this position.
func newSequenceChunker(cur *sequenceCursor, vr ValueReader, vw ValueWriter, makeChunk, parentMakeChunk makeChunkFn, hashValueBytes hashValueBytesFn) *sequenceChunker {
	sc := &sequenceChunker{
		cur:             cur,
		vr:              vr,
		vw:              vw,
		current:         []sequenceItem{},
		makeChunk:       makeChunk,
		parentMakeChunk: parentMakeChunk,
		isLeaf:          true,
		hashValueBytes:  hashValueBytes,
		rv:              newRollingValueHasher(),
	}
	if cur != nil {
		sc.resume()
	}
	return sc
}

func (sc *sequenceChunker) resume() {
	if sc.cur.parent != nil && sc.parent == nil {
		sc.createParent()
	}
	for i := 0; i < sc.cur.idx; i++ {
		sc.Append(sc.cur.getItem(i))
	}
}

// Append adds an item to the current chunk, closing the chunk if the
// rolling hash crosses a boundary.
func (sc *sequenceChunker) Append(item sequenceItem) {
	d.PanicIfTrue(item == nil, "cannot append a nil item")
	sc.current = append(sc.current, item)
	sc.hashValueBytes(item, sc.rv)
	if sc.rv.crossedBoundary {
		sc.handleChunkBoundary()
	}
}

// Skip passes over the item at the cursor without reproducing it.
func (sc *sequenceChunker) Skip() {
	sc.cur.advance()
}

func (sc *sequenceChunker) createParent() {
	d.PanicIfFalse(sc.parent == nil, "parent chunker already exists")
	var parent *sequenceCursor
	if sc.cur != nil && sc.cur.parent != nil {
		// The parent chunker shares the parent cursor: advancing this level
		// past chunk edges keeps the parent's position in step.
		parent = sc.cur.parent
	}
	sc.parent = newSequenceChunker(parent, sc.vr, sc.vw, sc.parentMakeChunk, sc.parentMakeChunk, metaHashValueBytes)
	sc.parent.isLeaf = false
}

func (sc *sequenceChunker) createSequenceTuple() metaTuple {
	col, key, numLeaves := sc.makeChunk(sc.current)
	var ref Ref
	var child Collection
	if sc.vw != nil {
		ref = sc.vw.WriteValue(col)
	} else {
		ref = NewRef(col)
		child = col
	}
	sc.current = []sequenceItem{}
	return newMetaTuple(ref, key, numLeaves, child)
}

func (sc *sequenceChunker) handleChunkBoundary() {
	d.PanicIfTrue(len(sc.current) == 0, "boundary on an empty chunk")
	sc.rv.ClearLastBoundary()
	if sc.parent == nil {
		sc.createParent()
	}
	sc.parent.Append(sc.createSequenceTuple())
}

// finalizeCursor consumes the remainder of the sequence. The moment this
// level sits at the start of one of the original chunks with nothing
// pending, every remaining chunk at this level will be reproduced verbatim,
// so the remainder is handed to the parent level wholesale.
func (sc *sequenceChunker) finalizeCursor() {
	for sc.cur.valid() {
		if sc.cur.indexInChunk() == 0 && len(sc.current) == 0 && sc.cur.parent != nil {
			if sc.parent == nil {
				sc.createParent()
			}
			sc.parent.finalizeCursor()
			return
		}
		sc.Append(sc.cur.current())
		sc.cur.advance()
	}
}

func (sc *sequenceChunker) anyPending() bool {
	for p := sc.parent; p != nil; p = p.parent {
		if len(p.current) > 0 {
			return true
		}
	}
	return false
}

// Done produces the root collection of the tree. A root level whose meta
// sequence holds exactly one tuple is collapsed away.
func (sc *sequenceChunker) Done() Collection {
	d.PanicIfTrue(sc.done, "Done() called twice")
	sc.done = true

	if sc.cur != nil {
		sc.finalizeCursor()
	}

	if sc.anyPending() {
		if len(sc.current) > 0 {
			sc.handleChunkBoundary()
		}
		return sc.parent.Done()
	}

	// No ancestor has content, so this level holds every item of the
	// resulting tree. A leaf, or a meta level with several tuples, is the
	// canonical root.
	if sc.isLeaf || len(sc.current) > 1 {
		col, _, _ := sc.makeChunk(sc.current)
		return col
	}

	// A meta level with a single tuple: walk down to the canonical root.
	d.PanicIfFalse(len(sc.current) == 1, "unexpected empty meta level")
	mt := sc.current[0].(metaTuple)
	for {
		col := mt.child
		if col == nil {
			d.PanicIfTrue(sc.vr == nil, "cannot collapse root without a ValueReader")
			col = sc.vr.ReadValue(mt.ref.TargetHash()).(Collection)
		}
		seq := col.sequence()
		if seq.isLeaf() || seq.seqLen() > 1 {
			return col
		}
		mt = seq.getItem(0).(metaTuple)
	}
}

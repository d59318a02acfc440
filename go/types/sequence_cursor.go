// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package types

import "github.com/silt-db/silt/go/d"

// sequenceCursor explores a tree of sequence items. Each cursor is linked
// to a cursor into its parent meta sequence; advancing past a chunk edge
// steps the parent and syncs the child.
type sequenceCursor struct {
	parent *sequenceCursor
	seq    sequence
	idx    int
}

// newSequenceCursor creates a cursor on seq positioned at idx. An idx < 0
// is relative to the end of the sequence.
func newSequenceCursor(parent *sequenceCursor, seq sequence, idx int) *sequenceCursor {
	d.PanicIfTrue(seq == nil, "sequence is required")
	if idx < 0 {
		idx += seq.seqLen()
		d.PanicIfFalse(idx >= 0, "index out of bounds")
	}
	return &sequenceCursor{parent, seq, idx}
}

func (cur *sequenceCursor) length() int {
	return cur.seq.seqLen()
}

func (cur *sequenceCursor) getItem(idx int) sequenceItem {
	return cur.seq.getItem(idx)
}

// sync loads the sequence that the cursor index points to. It's called
// whenever the cursor advances/retreats to a different chunk.
func (cur *sequenceCursor) sync() {
	d.PanicIfFalse(cur.parent != nil, "no parent to sync from")
	cur.seq = cur.parent.getChildSequence()
}

// getChildSequence retrieves the child at the current cursor position.
func (cur *sequenceCursor) getChildSequence() sequence {
	return cur.seq.getChildSequence(cur.idx)
}

// current returns the value at the current cursor position.
func (cur *sequenceCursor) current() sequenceItem {
	d.PanicIfFalse(cur.valid(), "cursor is not valid")
	return cur.getItem(cur.idx)
}

func (cur *sequenceCursor) valid() bool {
	return cur.idx >= 0 && cur.idx < cur.length()
}

// indexInChunk returns the position within the current chunk.
func (cur *sequenceCursor) indexInChunk() int {
	return cur.idx
}

func (cur *sequenceCursor) depth() int {
	if cur.parent != nil {
		return 1 + cur.parent.depth()
	}
	return 1
}

// advance moves the cursor one item forward, descending and ascending
// between chunks as necessary. A cursor at the very end of the sequence
// moves one past the last item and then stays there, returning false.
func (cur *sequenceCursor) advance() bool {
	return cur.advanceMaybeAllowPastEnd(true)
}

func (cur *sequenceCursor) advanceMaybeAllowPastEnd(allowPastEnd bool) bool {
	if cur.idx < cur.length()-1 {
		cur.idx++
		return true
	}
	if cur.idx == cur.length() {
		return false
	}
	if cur.parent != nil && cur.parent.advanceMaybeAllowPastEnd(false) {
		cur.sync()
		cur.idx = 0
		return true
	}
	if allowPastEnd {
		cur.idx++
	}
	return false
}

// retreat moves the cursor one item back, mirroring advance.
func (cur *sequenceCursor) retreat() bool {
	return cur.retreatMaybeAllowBeforeStart(true)
}

func (cur *sequenceCursor) retreatMaybeAllowBeforeStart(allowBeforeStart bool) bool {
	if cur.idx > 0 {
		cur.idx--
		return true
	}
	if cur.idx == -1 {
		return false
	}
	d.PanicIfFalse(cur.idx == 0, "unexpected index")
	if cur.parent != nil && cur.parent.retreatMaybeAllowBeforeStart(false) {
		cur.sync()
		cur.idx = cur.length() - 1
		return true
	}
	if allowBeforeStart {
		cur.idx--
	}
	return false
}

// iter calls cb for each item from the cursor until the end of the
// sequence or until cb returns true.
func (cur *sequenceCursor) iter(cb func(item sequenceItem) bool) {
	for cur.valid() && !cb(cur.getItem(cur.idx)) {
		cur.advance()
	}
}

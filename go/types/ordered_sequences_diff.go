// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package types

type DiffChangeType uint8

const (
	DiffChangeAdded DiffChangeType = iota
	DiffChangeRemoved
	DiffChangeModified
)

// ValueChanged describes a single change in an ordered collection.
// OldValue and NewValue are only set for map diffs.
type ValueChanged struct {
	ChangeType         DiffChangeType
	Key                Value
	OldValue, NewValue Value
}

func sendChange(changes chan<- ValueChanged, closeChan <-chan struct{}, change ValueChanged) bool {
	select {
	case changes <- change:
		return true
	case <-closeChan:
		return false
	}
}

// orderedSequenceDiff walks two ordered sequences by key, emitting added,
// removed and (for maps) modified entries. Subtrees whose chunks are
// identical are skipped wholesale.
func orderedSequenceDiff(last orderedSequence, current orderedSequence, changes chan<- ValueChanged, closeChan <-chan struct{}) bool {
	lastCur := newCursorAt(last, orderedKey{}, false, false)
	currentCur := newCursorAt(current, orderedKey{}, false, false)

	for lastCur.valid() && currentCur.valid() {
		if fastForward(lastCur, currentCur) {
			continue
		}

		lastKey := getCurrentKey(lastCur)
		currentKey := getCurrentKey(currentCur)
		switch {
		case currentKey.Less(lastKey):
			if !sendChange(changes, closeChan, addedChange(currentCur.current())) {
				return false
			}
			currentCur.advance()
		case lastKey.Less(currentKey):
			if !sendChange(changes, closeChan, removedChange(lastCur.current())) {
				return false
			}
			lastCur.advance()
		default:
			if change, ok := modifiedChange(lastCur.current(), currentCur.current()); ok {
				if !sendChange(changes, closeChan, change) {
					return false
				}
			}
			lastCur.advance()
			currentCur.advance()
		}
	}

	for lastCur.valid() {
		if !sendChange(changes, closeChan, removedChange(lastCur.current())) {
			return false
		}
		lastCur.advance()
	}
	for currentCur.valid() {
		if !sendChange(changes, closeChan, addedChange(currentCur.current())) {
			return false
		}
		currentCur.advance()
	}

	return true
}

// fastForward skips a subtree common to both cursors, returning true if it
// moved either cursor.
func fastForward(a, b *sequenceCursor) bool {
	if a.parent == nil || b.parent == nil || a.idx != 0 || b.idx != 0 {
		return false
	}
	ap, bp := a.parent, b.parent
	if !ap.valid() || !bp.valid() {
		return false
	}
	amt := ap.current().(metaTuple)
	bmt := bp.current().(metaTuple)
	if amt.ref.TargetHash() != bmt.ref.TargetHash() {
		return false
	}

	if ap.advance() {
		a.sync()
		a.idx = 0
	} else {
		a.idx = a.length()
	}
	if bp.advance() {
		b.sync()
		b.idx = 0
	} else {
		b.idx = b.length()
	}
	return true
}

func addedChange(item sequenceItem) ValueChanged {
	if entry, ok := item.(mapEntry); ok {
		return ValueChanged{DiffChangeAdded, entry.key, nil, entry.value}
	}
	return ValueChanged{DiffChangeAdded, item.(Value), nil, nil}
}

func removedChange(item sequenceItem) ValueChanged {
	if entry, ok := item.(mapEntry); ok {
		return ValueChanged{DiffChangeRemoved, entry.key, entry.value, nil}
	}
	return ValueChanged{DiffChangeRemoved, item.(Value), nil, nil}
}

func modifiedChange(lastItem, currentItem sequenceItem) (ValueChanged, bool) {
	lastEntry, ok := lastItem.(mapEntry)
	if !ok {
		return ValueChanged{}, false // set items with equal keys are equal
	}
	currentEntry := currentItem.(mapEntry)
	if lastEntry.value.Equals(currentEntry.value) {
		return ValueChanged{}, false
	}
	return ValueChanged{DiffChangeModified, currentEntry.key, lastEntry.value, currentEntry.value}, true
}

// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package types

import "sort"

// newCursorAtValue creates a cursor into seq positioned at the item keyed
// by val, or, if absent, at the position where it would be inserted.
func newCursorAtValue(seq orderedSequence, val Value, forInsertion bool, last bool) *sequenceCursor {
	var key orderedKey
	if val != nil {
		key = newOrderedKey(val)
	}
	return newCursorAt(seq, key, forInsertion, last)
}

// newCursorAt creates a cursor into seq positioned at key. An empty key
// positions the cursor at the start (or end, if last is true).
func newCursorAt(seq orderedSequence, key orderedKey, forInsertion bool, last bool) *sequenceCursor {
	var cur *sequenceCursor
	for {
		idx := 0
		if last {
			idx = -1
		}
		cur = newSequenceCursor(cur, seq, idx)
		if key.v != nil || !key.h.IsEmpty() {
			if !seekTo(cur, key, forInsertion && !seq.isLeaf()) {
				return cur
			}
		}

		cs := cur.getChildSequence()
		if cs == nil {
			break
		}
		seq = cs.(orderedSequence)
	}
	return cur
}

// seekTo binary-searches the current chunk for key, returning whether the
// cursor remains within the chunk.
func seekTo(cur *sequenceCursor, key orderedKey, lastPositionIfNotFound bool) bool {
	seq := cur.seq.(orderedSequence)
	n := seq.seqLen()

	// Find the first entry whose key is >= key.
	cur.idx = sort.Search(n, func(i int) bool {
		return !seq.getKey(i).Less(key)
	})

	if cur.idx == n && lastPositionIfNotFound {
		// a meta sequence: descend into the last subtree so that appends
		// chunk against existing data
		cur.idx = n - 1
	}

	return cur.idx < n
}

// getCurrentKey returns the ordering key of the item at the cursor.
func getCurrentKey(cur *sequenceCursor) orderedKey {
	if os, ok := cur.seq.(orderedSequence); ok {
		return os.getKey(cur.idx)
	}
	return newOrderedKey(cur.current().(Value))
}

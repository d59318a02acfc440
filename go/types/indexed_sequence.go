// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package types

import "sort"

// newCursorAtIndex creates a cursor over seq positioned at the idx'th leaf.
// An idx equal to the number of leaves yields the append position.
func newCursorAtIndex(seq sequence, idx uint64) *sequenceCursor {
	var cur *sequenceCursor
	for {
		cur = newSequenceCursor(cur, seq, 0)
		idx = idx - advanceCursorToOffset(cur, idx)
		cs := cur.getChildSequence()
		if cs == nil {
			break
		}
		seq = cs
	}
	return cur
}

// advanceCursorToOffset positions cur's index at the child subtree (or leaf
// item) containing leaf offset idx and returns the number of leaves
// preceding that subtree.
func advanceCursorToOffset(cur *sequenceCursor, idx uint64) uint64 {
	if ms, ok := cur.seq.(metaSequence); ok {
		n := ms.seqLen()
		cur.idx = sort.Search(n, func(i int) bool {
			return ms.cumulativeNumberOfLeaves(i) > idx
		})
		if cur.idx == n {
			cur.idx = n - 1 // past the end; descend into the last subtree
		}
		if cur.idx == 0 {
			return 0
		}
		return ms.cumulativeNumberOfLeaves(cur.idx - 1)
	}

	max := uint64(cur.seq.seqLen())
	if idx > max {
		idx = max
	}
	cur.idx = int(idx)
	return 0
}

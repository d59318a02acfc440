// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package types

// indexedSequenceDiff streams the splices which transform |last| into
// |current| in leaf coordinates. Subtrees of unequal height are pulled into
// alignment by unwrapping the taller one; aligned meta sequences diff by
// tuple, translating pure additions and removals directly into leaf spans
// and recursing into mixed splices. Returns false if closeChan closed.
func indexedSequenceDiff(last indexedSequence, lastOffset uint64, current indexedSequence, currentOffset uint64, changes chan<- Splice, closeChan <-chan struct{}, maxSpliceMatrixSize uint64) bool {
	if last.treeLevel() > current.treeLevel() {
		lastChild := last.(metaSequence).getCompositeChildSequence(0, uint64(last.seqLen())).(indexedSequence)
		return indexedSequenceDiff(lastChild, lastOffset, current, currentOffset, changes, closeChan, maxSpliceMatrixSize)
	}
	if current.treeLevel() > last.treeLevel() {
		currentChild := current.(metaSequence).getCompositeChildSequence(0, uint64(current.seqLen())).(indexedSequence)
		return indexedSequenceDiff(last, lastOffset, currentChild, currentOffset, changes, closeChan, maxSpliceMatrixSize)
	}

	if last.isLeaf() && current.isLeaf() {
		splices := calcSplices(uint64(last.seqLen()), uint64(current.seqLen()), maxSpliceMatrixSize, indexedEqualsAt(last, current))
		for _, splice := range splices {
			splice.SpAt += lastOffset
			if splice.SpAdded > 0 {
				splice.SpFrom += currentOffset
			}
			select {
			case changes <- splice:
			case <-closeChan:
				return false
			}
		}
		return true
	}

	lastMeta := last.(metaSequence)
	currentMeta := current.(metaSequence)

	initialSplices := calcSplices(uint64(lastMeta.seqLen()), uint64(currentMeta.seqLen()), maxSpliceMatrixSize,
		func(i uint64, j uint64) bool {
			return lastMeta.tuples[i].ref.TargetHash() == currentMeta.tuples[j].ref.TargetHash()
		})

	for _, splice := range initialSplices {
		if splice.SpRemoved == 0 || splice.SpAdded == 0 {
			// A pure add or pure remove translates to leaf coordinates
			// without needing the chunks themselves.
			fine := Splice{
				SpAt:      lastOffset + leavesBefore(lastMeta, splice.SpAt),
				SpRemoved: leavesIn(lastMeta, splice.SpAt, splice.SpRemoved),
				SpAdded:   leavesIn(currentMeta, splice.SpFrom, splice.SpAdded),
			}
			if fine.SpAdded > 0 {
				fine.SpFrom = currentOffset + leavesBefore(currentMeta, splice.SpFrom)
			}
			select {
			case changes <- fine:
			case <-closeChan:
				return false
			}
			continue
		}

		lastChild := lastMeta.getCompositeChildSequence(splice.SpAt, splice.SpRemoved).(indexedSequence)
		currentChild := currentMeta.getCompositeChildSequence(splice.SpFrom, splice.SpAdded).(indexedSequence)
		if !indexedSequenceDiff(lastChild, lastOffset+leavesBefore(lastMeta, splice.SpAt), currentChild, currentOffset+leavesBefore(currentMeta, splice.SpFrom), changes, closeChan, maxSpliceMatrixSize) {
			return false
		}
	}

	return true
}

func leavesBefore(ms metaSequence, idx uint64) uint64 {
	if idx == 0 {
		return 0
	}
	return ms.cumulativeNumberOfLeaves(int(idx) - 1)
}

func leavesIn(ms metaSequence, start uint64, count uint64) uint64 {
	sum := uint64(0)
	for i := uint64(0); i < count; i++ {
		sum += ms.tuples[start+i].numLeaves
	}
	return sum
}

func indexedEqualsAt(last, current sequence) EditDistanceEqualsFn {
	if last.Kind() == BlobKind {
		return func(i uint64, j uint64) bool {
			return last.getItem(int(i)).(byte) == current.getItem(int(j)).(byte)
		}
	}
	return func(i uint64, j uint64) bool {
		return last.getItem(int(i)).(Value).Equals(current.getItem(int(j)).(Value))
	}
}

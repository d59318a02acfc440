// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package types

import "github.com/silt-db/silt/go/d"

const (
	DEFAULT_MAX_SPLICE_MATRIX_SIZE = 2e7

	SPLICE_UNASSIGNED = ^uint64(0)

	UNCHANGED = 0
	UPDATED   = 1
	INSERTED  = 2
	REMOVED   = 3
)

// Splice represents a single edit: starting at SpAt in the previous
// sequence, SpRemoved items were removed and SpAdded items were added,
// which can be found starting at SpFrom in the current sequence.
type Splice struct {
	SpAt      uint64
	SpRemoved uint64
	SpAdded   uint64
	SpFrom    uint64
}

type EditDistanceEqualsFn func(prevIndex uint64, currentIndex uint64) bool

// calcSplices computes the minimal splice set transforming a sequence of
// previousLength items into one of currentLength items, using eqFn to
// compare across the two. If the edit-distance matrix for the trimmed
// region would exceed maxSpliceMatrixSize, a single splice covering the
// whole region is returned instead.
func calcSplices(previousLength uint64, currentLength uint64, maxSpliceMatrixSize uint64, eqFn EditDistanceEqualsFn) []Splice {
	minLength := previousLength
	if currentLength < minLength {
		minLength = currentLength
	}
	prefixCount := sharedPrefix(eqFn, minLength)
	suffixCount := sharedSuffix(eqFn, previousLength, currentLength, minLength-prefixCount)

	previousStart := prefixCount
	currentStart := prefixCount
	previousEnd := previousLength - suffixCount
	currentEnd := currentLength - suffixCount

	if currentEnd-currentStart == 0 && previousEnd-previousStart == 0 {
		return nil
	}

	if currentStart == currentEnd {
		return []Splice{{previousStart, previousEnd - previousStart, 0, 0}}
	}
	if previousStart == previousEnd {
		return []Splice{{previousStart, 0, currentEnd - currentStart, currentStart}}
	}

	previousLength = previousEnd - previousStart
	currentLength = currentEnd - currentStart
	if previousLength*currentLength > maxSpliceMatrixSize {
		return []Splice{{previousStart, previousLength, currentLength, currentStart}}
	}

	distances := calcEditDistances(eqFn, previousStart, previousLength, currentStart, currentLength)
	ops := operationsFromEditDistances(distances)

	splices := []Splice{}
	splice := Splice{SPLICE_UNASSIGNED, 0, 0, SPLICE_UNASSIGNED}
	index := currentStart
	previousIndex := previousStart

	for _, op := range ops {
		switch op {
		case UNCHANGED:
			if splice.SpAt != SPLICE_UNASSIGNED {
				splices = append(splices, splice)
				splice = Splice{SPLICE_UNASSIGNED, 0, 0, SPLICE_UNASSIGNED}
			}
			index++
			previousIndex++
		case UPDATED:
			if splice.SpAt == SPLICE_UNASSIGNED {
				splice.SpAt = previousIndex
			}
			if splice.SpFrom == SPLICE_UNASSIGNED {
				splice.SpFrom = index
			}
			splice.SpRemoved++
			splice.SpAdded++
			index++
			previousIndex++
		case INSERTED:
			if splice.SpAt == SPLICE_UNASSIGNED {
				splice.SpAt = previousIndex
			}
			if splice.SpFrom == SPLICE_UNASSIGNED {
				splice.SpFrom = index
			}
			splice.SpAdded++
			index++
		case REMOVED:
			if splice.SpAt == SPLICE_UNASSIGNED {
				splice.SpAt = previousIndex
			}
			splice.SpRemoved++
			previousIndex++
		default:
			d.Panic("unknown edit operation")
		}
	}

	if splice.SpAt != SPLICE_UNASSIGNED {
		splices = append(splices, splice)
	}
	return splices
}

func sharedPrefix(eqFn EditDistanceEqualsFn, searchLength uint64) uint64 {
	for i := uint64(0); i < searchLength; i++ {
		if !eqFn(i, i) {
			return i
		}
	}
	return searchLength
}

func sharedSuffix(eqFn EditDistanceEqualsFn, previousLength uint64, currentLength uint64, searchLength uint64) uint64 {
	count := uint64(0)
	for count < searchLength && eqFn(previousLength-1, currentLength-1) {
		count++
		previousLength--
		currentLength--
	}
	return count
}

func calcEditDistances(eqFn EditDistanceEqualsFn, previousStart uint64, previousLength uint64, currentStart uint64, currentLength uint64) [][]uint64 {
	// "Deletion" columns
	rowCount := previousLength + 1
	columnCount := currentLength + 1
	distances := make([][]uint64, rowCount)

	// "Addition" rows. Initialize null column.
	for i := uint64(0); i < rowCount; i++ {
		distances[i] = make([]uint64, columnCount)
		distances[i][0] = i
	}

	// Initialize null row
	for j := uint64(0); j < columnCount; j++ {
		distances[0][j] = j
	}

	for i := uint64(1); i < rowCount; i++ {
		for j := uint64(1); j < columnCount; j++ {
			if eqFn(previousStart+i-1, currentStart+j-1) {
				distances[i][j] = distances[i-1][j-1]
			} else {
				north := distances[i-1][j] + 1
				west := distances[i][j-1] + 1
				northWest := distances[i-1][j-1] + 1
				distances[i][j] = minUint64(north, west, northWest)
			}
		}
	}

	return distances
}

// operationsFromEditDistances walks the matrix back from the bottom-right,
// preferring diagonal moves on ties, and returns the edit operations in
// forward order.
func operationsFromEditDistances(distances [][]uint64) []uint64 {
	i := uint64(len(distances) - 1)
	j := uint64(len(distances[0]) - 1)
	ops := []uint64{}

	for i > 0 || j > 0 {
		if i == 0 {
			ops = append(ops, INSERTED)
			j--
			continue
		}
		if j == 0 {
			ops = append(ops, REMOVED)
			i--
			continue
		}

		northWest := distances[i-1][j-1]
		west := distances[i-1][j]
		north := distances[i][j-1]

		var min uint64
		if west < north {
			min = minUint64(west, northWest)
		} else {
			min = minUint64(north, northWest)
		}

		if min == northWest {
			if northWest == distances[i][j] {
				ops = append(ops, UNCHANGED)
			} else {
				ops = append(ops, UPDATED)
			}
			i--
			j--
		} else if min == west {
			ops = append(ops, REMOVED)
			i--
		} else {
			ops = append(ops, INSERTED)
			j--
		}
	}

	reverseOps(ops)
	return ops
}

func reverseOps(ops []uint64) {
	for i, j := 0, len(ops)-1; i < j; i, j = i+1, j-1 {
		ops[i], ops[j] = ops[j], ops[i]
	}
}

func minUint64(values ...uint64) uint64 {
	min := values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
	}
	return min
}

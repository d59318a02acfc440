// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newChunkedTestList(n int) List {
	return NewList(intsTo(n)...)
}

func TestCursorAdvanceThroughChunks(t *testing.T) {
	smallTestChunks()
	defer normalProductionChunks()
	assert := assert.New(t)

	l := newChunkedTestList(500)
	assert.False(l.sequence().isLeaf())

	cur := newCursorAtIndex(l.sequence(), 0)
	for i := 0; i < 500; i++ {
		assert.True(cur.valid())
		assert.True(cur.current().(Value).Equals(Number(i)), "at %d", i)
		cur.advance()
	}
	assert.False(cur.valid())
	// advance past the end is sticky
	assert.False(cur.advance())
}

func TestCursorRetreatThroughChunks(t *testing.T) {
	smallTestChunks()
	defer normalProductionChunks()
	assert := assert.New(t)

	l := newChunkedTestList(500)
	cur := newCursorAtIndex(l.sequence(), 499)
	for i := 499; i >= 0; i-- {
		assert.True(cur.valid())
		assert.True(cur.current().(Value).Equals(Number(i)), "at %d", i)
		cur.retreat()
	}
	assert.False(cur.valid())
	assert.False(cur.retreat())
}

func TestCursorSeekToIndex(t *testing.T) {
	smallTestChunks()
	defer normalProductionChunks()
	assert := assert.New(t)

	l := newChunkedTestList(1000)
	for _, idx := range []uint64{0, 1, 99, 500, 998, 999} {
		cur := newCursorAtIndex(l.sequence(), idx)
		assert.True(cur.current().(Value).Equals(Number(idx)))
	}

	// Index == length is the valid append position.
	cur := newCursorAtIndex(l.sequence(), 1000)
	assert.False(cur.valid())
}

func TestCursorIter(t *testing.T) {
	smallTestChunks()
	defer normalProductionChunks()
	assert := assert.New(t)

	l := newChunkedTestList(300)
	cur := newCursorAtIndex(l.sequence(), 100)
	count := 0
	cur.iter(func(item sequenceItem) bool {
		count++
		return count == 50
	})
	assert.Equal(50, count)
	assert.True(cur.current().(Value).Equals(Number(149)))
}

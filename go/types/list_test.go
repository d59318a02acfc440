// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intsTo(n int) []Value {
	values := make([]Value, n)
	for i := 0; i < n; i++ {
		values[i] = Number(i)
	}
	return values
}

func TestListBasics(t *testing.T) {
	assert := assert.New(t)

	l := NewList()
	assert.True(l.Empty())
	assert.Equal(uint64(0), l.Len())

	l = NewList(Number(1), Number(3), String("foo"), Bool(false))
	assert.Equal(uint64(4), l.Len())
	assert.True(l.Get(0).Equals(Number(1)))
	assert.True(l.Get(1).Equals(Number(3)))
	assert.True(l.Get(2).Equals(String("foo")))
	assert.True(l.Get(3).Equals(Bool(false)))
	assert.Panics(func() { l.Get(4) })
}

func TestListAppendInsertRemove(t *testing.T) {
	assert := assert.New(t)

	l := NewList(Number(0), Number(1), Number(2))
	l2 := l.Append(Number(3))
	assert.Equal(uint64(4), l2.Len())
	assert.True(l2.Get(3).Equals(Number(3)))
	// The receiver is unchanged.
	assert.Equal(uint64(3), l.Len())

	l3 := l2.Insert(1, String("x"))
	assert.Equal(uint64(5), l3.Len())
	assert.True(l3.Get(0).Equals(Number(0)))
	assert.True(l3.Get(1).Equals(String("x")))
	assert.True(l3.Get(2).Equals(Number(1)))

	l4 := l3.RemoveAt(1)
	assert.True(l4.Equals(l2))

	l5 := l2.Remove(0, 4)
	assert.True(l5.Empty())

	l6 := l2.Set(0, String("zero"))
	assert.True(l6.Get(0).Equals(String("zero")))
	assert.Equal(uint64(4), l6.Len())
}

func TestListEqualsAfterRebuild(t *testing.T) {
	assert := assert.New(t)

	vals := intsTo(100)
	l1 := NewList(vals...)
	l2 := NewList(vals...)
	assert.True(l1.Equals(l2))
	assert.Equal(l1.Hash(), l2.Hash())
}

// Chunker determinism: mutating a large list and undoing the mutation
// returns to the identical tree root.
func TestListChunkerDeterminism(t *testing.T) {
	smallTestChunks()
	defer normalProductionChunks()
	assert := assert.New(t)

	vals := intsTo(2000)
	l := NewList(vals...)
	h := l.Hash()

	l2 := l.RemoveAt(999)
	assert.NotEqual(h, l2.Hash())
	l3 := l2.Insert(999, Number(999))
	assert.Equal(h, l3.Hash())

	// Splicing nothing is the identity.
	l4 := l.Splice(500, 0)
	assert.Equal(h, l4.Hash())
}

func TestListChunksShareUnchangedRegions(t *testing.T) {
	smallTestChunks()
	defer normalProductionChunks()
	assert := assert.New(t)

	l := NewList(intsTo(2000)...)
	l2 := l.Set(1000, String("poke"))

	count := func(l List) map[string]struct{} {
		set := map[string]struct{}{}
		var walk func(seq sequence)
		walk = func(seq sequence) {
			if seq.isLeaf() {
				return
			}
			for i := 0; i < seq.seqLen(); i++ {
				mt := seq.getItem(i).(metaTuple)
				set[mt.ref.TargetHash().String()] = struct{}{}
				walk(seq.getChildSequence(i))
			}
		}
		walk(l.sequence())
		return set
	}

	c1, c2 := count(l), count(l2)
	shared := 0
	for h := range c2 {
		if _, ok := c1[h]; ok {
			shared++
		}
	}
	// The vast majority of chunks survive a single-element edit.
	assert.True(shared > len(c2)*3/4, "only %d of %d chunks shared", shared, len(c2))
}

func TestListIter(t *testing.T) {
	assert := assert.New(t)

	l := NewList(intsTo(10)...)
	acc := []Value{}
	l.Iter(func(v Value, i uint64) bool {
		acc = append(acc, v)
		return i >= 4
	})
	assert.Len(acc, 5)

	acc = nil
	l.IterAll(func(v Value, i uint64) {
		assert.True(v.Equals(Number(i)))
		acc = append(acc, v)
	})
	assert.Len(acc, 10)
}

func TestListRoundTripThroughStore(t *testing.T) {
	smallTestChunks()
	defer normalProductionChunks()
	assert := assert.New(t)

	vs := NewTestValueStore()
	defer vs.Close()

	l := NewList(intsTo(2000)...)
	r := vs.WriteValue(l)
	vs.Flush()

	l2 := vs.ReadValue(r.TargetHash()).(List)
	assert.Equal(l.Hash(), l2.Hash())
	assert.True(l2.Get(1999).Equals(Number(1999)))
	assert.True(l.Equals(l2))
}

func diffToSlice(last, current List, maxSpliceMatrixSize uint64) []Splice {
	changes := make(chan Splice)
	closeChan := make(chan struct{})
	out := []Splice{}
	go func() {
		current.DiffWithLimit(last, changes, closeChan, maxSpliceMatrixSize)
		close(changes)
	}()
	for splice := range changes {
		out = append(out, splice)
	}
	return out
}

func TestListDiffRemoveRange(t *testing.T) {
	assert := assert.New(t)

	vals := intsTo(5000)
	l1 := NewList(vals...)
	l2 := NewList(vals[100:]...)

	splices := diffToSlice(l1, l2, DEFAULT_MAX_SPLICE_MATRIX_SIZE)
	assert.Equal([]Splice{{0, 100, 0, 0}}, splices)
}

func TestListDiffReverse(t *testing.T) {
	assert := assert.New(t)

	vals := intsTo(5000)
	reversed := make([]Value, len(vals))
	for i, v := range vals {
		reversed[len(vals)-i-1] = v
	}
	l1 := NewList(vals...)
	l2 := NewList(reversed...)

	splices := diffToSlice(l1, l2, DEFAULT_MAX_SPLICE_MATRIX_SIZE)
	assert.Equal([]Splice{{0, 5000, 5000, 0}}, splices)

	splices = diffToSlice(l1, l2, 27e6)
	assert.Equal([]Splice{{0, 2499, 2500, 0}, {2500, 2500, 2499, 2501}}, splices)
}

func TestListDiffAppliesBack(t *testing.T) {
	smallTestChunks()
	defer normalProductionChunks()
	assert := assert.New(t)

	l1 := NewList(intsTo(1000)...)
	l2 := l1.Remove(100, 200).Insert(500, String("a"), String("b"))

	splices := diffToSlice(l1, l2, DEFAULT_MAX_SPLICE_MATRIX_SIZE)
	patched := l1
	// Apply in reverse so earlier splices don't shift later coordinates.
	for i := len(splices) - 1; i >= 0; i-- {
		sp := splices[i]
		added := make([]Value, sp.SpAdded)
		for j := uint64(0); j < sp.SpAdded; j++ {
			added[j] = l2.Get(sp.SpFrom + j)
		}
		patched = patched.Splice(sp.SpAt, sp.SpRemoved, added...)
	}
	assert.True(patched.Equals(l2), "applying the diff must reproduce the target")
}

// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package types

import (
	"github.com/kch42/buzhash"
)

const (
	defaultChunkPattern = uint32(1<<12 - 1) // Avg Chunk Size: 4k

	// The window size to use for computing the rolling hash. This is way
	// smaller than the chunk size because we want to be able to resume
	// chunking instantly from any position in the byte stream.
	defaultChunkWindow = uint32(64)
)

var (
	chunkPattern = defaultChunkPattern
	chunkWindow  = defaultChunkWindow
)

// smallTestChunks makes chunk boundaries fire every ~128 bytes so that
// tests can produce deep trees from small collections.
func smallTestChunks() {
	chunkPattern = uint32(1<<7 - 1)
}

func normalProductionChunks() {
	chunkPattern = defaultChunkPattern
}

// rollingValueHasher streams the bytes of sequence items through a BuzHash
// window and latches when the boundary predicate fires. The window is reset
// at each boundary, so chunking depends only on the bytes of the current
// chunk; that is what lets a chunker resumed at an arbitrary cursor
// reproduce the original boundaries exactly.
type rollingValueHasher struct {
	bz              *buzhash.BuzHash
	enc             *valueEncoder
	bytesHashed     uint32
	crossedBoundary bool
	pattern         uint32
	window          uint32
}

func newRollingValueHasher() *rollingValueHasher {
	rv := &rollingValueHasher{
		pattern: chunkPattern,
		window:  chunkWindow,
		bz:      buzhash.NewBuzHash(chunkWindow),
	}
	w := newBinaryWriter()
	// A nil ValueWriter: hashing a meta tuple must never materialize
	// unwritten subtrees.
	rv.enc = newValueEncoder(w, nil)
	return rv
}

func (rv *rollingValueHasher) HashByte(b byte) {
	rv.bytesHashed++
	if rv.crossedBoundary {
		return
	}
	rv.bz.HashByte(b)
	rv.crossedBoundary = (rv.bz.Sum32()&rv.pattern == rv.pattern)
}

func (rv *rollingValueHasher) ClearLastBoundary() {
	rv.crossedBoundary = false
	rv.bytesHashed = 0
	rv.bz = buzhash.NewBuzHash(rv.window)
}

func (rv *rollingValueHasher) HashValue(v Value) {
	rv.enc.w.reset()
	rv.enc.writeValue(v)
	for _, b := range rv.enc.w.data() {
		rv.HashByte(b)
	}
}

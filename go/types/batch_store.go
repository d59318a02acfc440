// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package types

import (
	"io"

	"github.com/silt-db/silt/go/chunks"
	"github.com/silt-db/silt/go/hash"
)

// Hints are a set of hashes of chunks known to contain references to a
// chunk being put; the receiving store can use them to validate the
// reference graph without holding the entire graph.
type Hints map[hash.Hash]struct{}

// BatchStore provides an interface similar to chunks.ChunkStore, but
// batch-oriented: writes are scheduled with integrity hints and landed by
// Flush.
type BatchStore interface {
	// Get returns from the store the chunk addressed by h. Behavior of
	// reading a scheduled-but-unflushed chunk is implementation-defined.
	Get(h hash.Hash) chunks.Chunk

	// GetMany sends all present chunks with the given hashes to foundChunks.
	GetMany(hashes hash.HashSet, foundChunks chan<- *chunks.Chunk)

	// SchedulePut enqueues c for writing. refHeight is the ref-height of
	// the chunk, and hints names chunks known to reference c's children.
	SchedulePut(c chunks.Chunk, refHeight uint64, hints Hints)

	// AddHints records hints which apply to a whole batch of puts.
	AddHints(hints Hints)

	// Flush lands every scheduled put in the backing store.
	Flush()

	Root() hash.Hash
	UpdateRoot(current, last hash.Hash) bool

	io.Closer
}

// BatchStoreAdaptor turns a chunks.ChunkStore into a BatchStore. Puts go
// straight through; hints are unnecessary against a local store.
type BatchStoreAdaptor struct {
	cs chunks.ChunkStore
}

// NewBatchStoreAdaptor returns a BatchStore instance backed by a
// ChunkStore. Takes ownership of cs and manages its lifetime; calling Close
// on the returned BatchStore closes cs.
func NewBatchStoreAdaptor(cs chunks.ChunkStore) BatchStore {
	return &BatchStoreAdaptor{cs}
}

func (bsa *BatchStoreAdaptor) Get(h hash.Hash) chunks.Chunk {
	return bsa.cs.Get(h)
}

func (bsa *BatchStoreAdaptor) GetMany(hashes hash.HashSet, foundChunks chan<- *chunks.Chunk) {
	bsa.cs.GetMany(hashes, foundChunks)
}

func (bsa *BatchStoreAdaptor) SchedulePut(c chunks.Chunk, refHeight uint64, hints Hints) {
	bsa.cs.Put(c)
}

func (bsa *BatchStoreAdaptor) AddHints(hints Hints) {
}

func (bsa *BatchStoreAdaptor) Flush() {
}

func (bsa *BatchStoreAdaptor) Root() hash.Hash {
	return bsa.cs.Root()
}

func (bsa *BatchStoreAdaptor) UpdateRoot(current, last hash.Hash) bool {
	return bsa.cs.UpdateRoot(current, last)
}

func (bsa *BatchStoreAdaptor) Close() error {
	return bsa.cs.Close()
}

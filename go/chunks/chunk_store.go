// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package chunks

import (
	"io"

	"github.com/silt-db/silt/go/hash"
)

// ChunkStore is the core storage abstraction in Silt. We can put data
// anyplace we have a ChunkStore implementation for.
type ChunkStore interface {
	ChunkSource
	ChunkSink
	RootTracker
}

// ChunkSource is a place to get chunks from.
type ChunkSource interface {
	// Get returns the Chunk stored under the Hash h. If the hash is absent
	// from the store EmptyChunk is returned.
	Get(h hash.Hash) Chunk

	// GetMany gets the Chunks with |hashes| from the store. On return,
	// |foundChunks| will have been fully sent all chunks which have been
	// found. Any non-present chunks will silently be ignored.
	GetMany(hashes hash.HashSet, foundChunks chan<- *Chunk)

	// Has returns true iff the value at the address |h| is contained in the
	// source.
	Has(h hash.Hash) bool

	// HasMany returns the subset of |hashes| present in the source.
	HasMany(hashes hash.HashSet) hash.HashSet

	// Version returns the protocol version of the source.
	Version() string
}

// ChunkSink is a place to put chunks.
type ChunkSink interface {
	Put(c Chunk)
	PutMany(chnx []Chunk)
	io.Closer
}

// RootTracker allows querying and management of the root of an entire tree
// of references. The "root" is the single mutable cell in a ChunkStore.
type RootTracker interface {
	Root() hash.Hash

	// UpdateRoot atomically swings the root from |last| to |current|,
	// returning false if the root was no longer |last|.
	UpdateRoot(current, last hash.Hash) bool
}

// Factory allows the creation of namespaced ChunkStore instances. The
// details of how namespaces are separated is left up to the particular
// implementation of Factory and ChunkStore.
type Factory interface {
	CreateStore(ns string) ChunkStore

	// Shutter shuts down the factory. Subsequent calls to CreateStore() will
	// fail.
	Shutter()
}

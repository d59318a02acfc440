// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

// Package chunks defines Chunk, the hash-addressed unit of storage, and the
// stores that hold chunks.
package chunks

import (
	"bytes"
	"crypto/sha512"
	gohash "hash"

	"github.com/silt-db/silt/go/d"
	"github.com/silt-db/silt/go/hash"
)

// Chunk is an immutable, hash-addressed byte blob. The hash is always
// derived from, or verified against, the data.
type Chunk struct {
	r    hash.Hash
	data []byte
}

// EmptyChunk is the chunk of no bytes; it stands for absence.
var EmptyChunk = NewChunk([]byte{})

func (c Chunk) Hash() hash.Hash {
	return c.r
}

func (c Chunk) Data() []byte {
	return c.data
}

// IsEmpty returns true if the chunk contains no bytes.
func (c Chunk) IsEmpty() bool {
	return len(c.data) == 0
}

// NewChunk creates a new Chunk backed by data. This means that the returned
// Chunk has ownership of this slice of memory.
func NewChunk(data []byte) Chunk {
	r := hash.Of(data)
	return Chunk{r, data}
}

// NewChunkWithHash creates a new chunk with a known hash. The hash is
// trusted; use the serializer when the data crossed an untrusted boundary.
func NewChunkWithHash(r hash.Hash, data []byte) Chunk {
	return Chunk{r, data}
}

// ChunkWriter wraps an io.WriteCloser, additionally computing the hash of
// the written data so that the result can be retrieved as a Chunk.
type ChunkWriter struct {
	buffer *bytes.Buffer
	h      gohash.Hash
	c      Chunk
}

func NewChunkWriter() *ChunkWriter {
	return &ChunkWriter{
		buffer: &bytes.Buffer{},
		h:      sha512.New(),
	}
}

func (w *ChunkWriter) Write(data []byte) (int, error) {
	d.PanicIfTrue(w.buffer == nil, "Write() cannot be called after Hash() or Close().")
	size, err := w.buffer.Write(data)
	d.PanicIfError(err)
	w.h.Write(data)
	return size, nil
}

// Chunk closes the writer and returns the resulting Chunk.
func (w *ChunkWriter) Chunk() Chunk {
	d.PanicIfError(w.Close())
	return w.c
}

// Close computes the hash and seals the Chunk. Closing twice is a no-op.
func (w *ChunkWriter) Close() error {
	if w.buffer == nil {
		return nil
	}
	digest := [hash.ByteLen]byte{}
	copy(digest[:], w.h.Sum(nil))
	w.c = Chunk{hash.New(digest), w.buffer.Bytes()}
	w.buffer = nil
	return nil
}

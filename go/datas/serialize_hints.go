// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package datas

import (
	"encoding/binary"
	"io"

	"github.com/silt-db/silt/go/d"
	"github.com/silt-db/silt/go/hash"
	"github.com/silt-db/silt/go/types"
)

/*
  Wire framing of a batched write request body:

    Frame  := Hints Chunks
    Hints  := Count, Count * Hash
    Count  := 4 bytes (uint32, big-endian)
    Chunks := the chunk stream (see chunks.Serialize)

  A batch read response carries no Hints preamble: it is the chunk stream
  alone.
*/

// serializeHints writes the hint set preamble of a write-value request.
func serializeHints(w io.Writer, hints types.Hints) {
	err := binary.Write(w, binary.BigEndian, uint32(len(hints)))
	d.PanicIfError(err)
	for h := range hints {
		serializeHash(w, h)
	}
}

// serializeHashes writes a bare list of hashes, used by batched read and
// has requests.
func serializeHashes(w io.Writer, hashes hash.HashSlice) {
	err := binary.Write(w, binary.BigEndian, uint32(len(hashes)))
	d.PanicIfError(err)
	for _, h := range hashes {
		serializeHash(w, h)
	}
}

func serializeHash(w io.Writer, h hash.Hash) {
	n, err := w.Write(h.DigestSlice())
	d.PanicIfError(err)
	d.PanicIfFalse(hash.ByteLen == n, "Incorrect number of bytes written")
}

func deserializeHints(r io.Reader) types.Hints {
	numRefs := uint32(0)
	err := binary.Read(r, binary.BigEndian, &numRefs)
	d.PanicIfError(err)

	hints := make(types.Hints, numRefs)
	for i := uint32(0); i < numRefs; i++ {
		hints[deserializeHash(r)] = struct{}{}
	}
	return hints
}

func deserializeHashes(r io.Reader) hash.HashSlice {
	numRefs := uint32(0)
	err := binary.Read(r, binary.BigEndian, &numRefs)
	d.PanicIfError(err)

	hashes := make(hash.HashSlice, numRefs)
	for i := uint32(0); i < numRefs; i++ {
		hashes[i] = deserializeHash(r)
	}
	return hashes
}

func deserializeHash(r io.Reader) hash.Hash {
	digest := [hash.ByteLen]byte{}
	n, err := io.ReadFull(r, digest[:])
	d.PanicIfError(err)
	d.PanicIfFalse(hash.ByteLen == n, "Incorrect number of bytes read")
	return hash.New(digest)
}

// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package chunks

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/silt-db/silt/go/d"
	"github.com/silt-db/silt/go/hash"
)

/*
  Chunk Serialization:
    Chunk 0
    Chunk 1
     ..
    Chunk N

  Chunk:
    Hash  // 20 bytes
    Len   // 4 bytes (uint32, big-endian)
    Data  // Len bytes
*/

// Serialize a single Chunk to writer.
func Serialize(chunk Chunk, writer io.Writer) {
	h := chunk.Hash()
	n, err := io.Copy(writer, bytes.NewReader(h[:]))
	d.PanicIfError(err)
	d.PanicIfFalse(int64(hash.ByteLen) == n, "Incorrect number of bytes written")

	data := chunk.Data()
	err = binary.Write(writer, binary.BigEndian, uint32(len(data)))
	d.PanicIfError(err)

	n, err = io.Copy(writer, bytes.NewReader(data))
	d.PanicIfError(err)
	d.PanicIfFalse(int64(len(data)) == n, "Incorrect number of bytes written")
}

// Deserialize reads off of |reader| until EOF, sending chunks to
// |chunkChan| in the order they are read. Objects sent over chunkChan are
// *Chunk. The hash of each chunk is verified against its data.
func Deserialize(reader io.Reader, chunkChan chan<- *Chunk) (err error) {
	for {
		var c Chunk
		c, err = deserializeChunk(reader)
		if err != nil {
			if err == io.EOF {
				err = nil
			}
			return
		}
		chunkChan <- &c
	}
}

func deserializeChunk(reader io.Reader) (Chunk, error) {
	digest := [hash.ByteLen]byte{}
	n, err := io.ReadFull(reader, digest[:])
	if err != nil {
		if err == io.ErrUnexpectedEOF {
			err = errors.New("Invalid chunk: too few bytes for hash")
		}
		return EmptyChunk, err
	}
	d.Chk.True(hash.ByteLen == n)
	h := hash.New(digest)

	chunkSize := uint32(0)
	if err = binary.Read(reader, binary.BigEndian, &chunkSize); err != nil {
		return EmptyChunk, errors.New("Invalid chunk: too few bytes for length")
	}

	data := make([]byte, int(chunkSize))
	if _, err = io.ReadFull(reader, data); err != nil {
		return EmptyChunk, errors.New("Invalid chunk: too few bytes for data")
	}

	c := NewChunk(data)
	if h != c.Hash() {
		return EmptyChunk, fmt.Errorf("Invalid chunk: %s does not match the hash of its data %s", h, c.Hash())
	}
	return c, nil
}

// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package types

import (
	"io"

	"github.com/silt-db/silt/go/d"
	"github.com/silt-db/silt/go/hash"
)

// Blob is a sequence of raw bytes, chunked like every other collection so
// that large blobs dedupe across versions.
type Blob struct {
	seq sequence
	h   *hash.Hash
}

func newBlob(seq sequence) Blob {
	return Blob{seq, &hash.Hash{}}
}

func NewEmptyBlob() Blob {
	return Blob{newBlobLeafSequence(nil, []byte{}), &hash.Hash{}}
}

// NewBlob creates a Blob by reading r until EOF.
func NewBlob(r io.Reader) Blob {
	ch := newEmptyBlobSequenceChunker(nil, nil)
	buf := make([]byte, 4096)
	for {
		n, err := r.Read(buf)
		for i := 0; i < n; i++ {
			ch.Append(buf[i])
		}
		if err == io.EOF {
			break
		}
		d.PanicIfError(err)
	}
	return ch.Done().(Blob)
}

func (b Blob) Equals(other Value) bool {
	if b2, ok := other.(Blob); ok {
		return b.Hash() == b2.Hash()
	}
	return false
}

func (b Blob) Less(other Value) bool {
	return valueLess(b, other)
}

func (b Blob) Hash() hash.Hash {
	return getHash(b)
}

func (b Blob) WalkValues(cb ValueCallback) {
}

func (b Blob) WalkRefs(cb RefCallback) {
	b.seq.WalkRefs(cb)
}

func (b Blob) Type() *Type {
	return BlobType
}

func (b Blob) hashPointer() *hash.Hash {
	return b.h
}

func (b Blob) sequence() sequence {
	return b.seq
}

func (b Blob) Len() uint64 {
	return b.seq.numLeaves()
}

func (b Blob) Empty() bool {
	return b.Len() == 0
}

// Reader returns a ReadSeeker positioned at the start of the blob.
func (b Blob) Reader() *BlobReader {
	return &BlobReader{b.seq, nil, 0}
}

type BlobReader struct {
	seq sequence
	cur *sequenceCursor
	pos uint64
}

func (br *BlobReader) Read(p []byte) (n int, err error) {
	if br.cur == nil {
		br.cur = newCursorAtIndex(br.seq, br.pos)
	}
	for n < len(p) && br.cur.valid() {
		p[n] = br.cur.current().(byte)
		n++
		br.pos++
		br.cur.advance()
	}
	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}

func (br *BlobReader) Seek(offset int64, whence int) (int64, error) {
	abs := int64(br.pos)
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs += offset
	case io.SeekEnd:
		abs = int64(br.seq.numLeaves()) + offset
	default:
		d.Panic("invalid whence %d", whence)
	}
	d.PanicIfTrue(abs < 0, "cannot seek before the start of a blob")
	br.pos = uint64(abs)
	br.cur = nil
	return abs, nil
}

func makeBlobLeafChunkFn(vr ValueReader) makeChunkFn {
	return func(items []sequenceItem) (Collection, orderedKey, uint64) {
		data := make([]byte, len(items))
		for i, item := range items {
			data[i] = item.(byte)
		}
		blob := newBlob(newBlobLeafSequence(vr, data))
		return blob, orderedKeyFromUint64(uint64(len(data))), uint64(len(data))
	}
}

func newEmptyBlobSequenceChunker(vr ValueReader, vw ValueWriter) *sequenceChunker {
	return newEmptySequenceChunker(vr, vw, makeBlobLeafChunkFn(vr), newIndexedMetaSequenceChunkFn(BlobKind, vr), hashValueByte)
}

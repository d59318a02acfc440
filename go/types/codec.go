// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package types

import (
	"encoding/binary"
	"math"

	"github.com/silt-db/silt/go/chunks"
	"github.com/silt-db/silt/go/d"
	"github.com/silt-db/silt/go/hash"
)

const initialBufferSize = 2048

// EncodeValue serializes v, appending its type preamble, and returns the
// resulting chunk. If vw is non-nil, any unwritten child chunks of v (the
// subtrees of a collection built in memory) are written through vw first.
func EncodeValue(v Value, vw ValueWriter) chunks.Chunk {
	w := newBinaryWriter()
	enc := newValueEncoder(w, vw)
	enc.writeValue(v)
	return chunks.NewChunk(w.data())
}

// DecodeFromBytes decodes a value from a byte slice. Any references within
// the value are resolved through vr on demand. The decoder must consume the
// entire buffer; a residual byte is an error.
func DecodeFromBytes(data []byte, vr ValueReader) Value {
	br := &binaryReader{buff: data}
	dec := newValueDecoder(br, vr)
	v := dec.readValue()
	d.PanicIfFalse(br.pos() == uint32(len(data)), "Did not consume entire byte stream")
	return v
}

// DecodeValue decodes a value from a chunk source. It is an error to provide
// an empty chunk.
func DecodeValue(c chunks.Chunk, vr ValueReader) Value {
	d.PanicIfTrue(c.IsEmpty(), "Cannot decode value from empty chunk")
	v := DecodeFromBytes(c.Data(), vr)
	if cacher, ok := v.(hashCacher); ok {
		assignHash(cacher, c.Hash())
	}
	return v
}

type binaryWriter struct {
	buff   []byte
	offset uint32
}

func newBinaryWriter() *binaryWriter {
	return &binaryWriter{buff: make([]byte, initialBufferSize), offset: 0}
}

func (b *binaryWriter) data() []byte {
	return b.buff[0:b.offset]
}

func (b *binaryWriter) reset() {
	b.offset = 0
}

func (b *binaryWriter) ensureCapacity(n uint32) {
	length := uint32(len(b.buff))
	if b.offset+n <= length {
		return
	}

	old := b.buff
	for b.offset+n > length {
		length = length * 2
	}
	b.buff = make([]byte, length)
	copy(b.buff, old)
}

func (b *binaryWriter) writeBytes(v []byte) {
	size := uint32(len(v))
	b.writeUint32(size)

	b.ensureCapacity(size)
	copy(b.buff[b.offset:], v)
	b.offset += size
}

func (b *binaryWriter) writeUint8(v uint8) {
	b.ensureCapacity(1)
	b.buff[b.offset] = byte(v)
	b.offset++
}

func (b *binaryWriter) writeUint32(v uint32) {
	b.ensureCapacity(4)
	binary.BigEndian.PutUint32(b.buff[b.offset:], v)
	b.offset += 4
}

// writeUint64 writes a uint64 as two big-endian uint32s. Values above
// 2**53-1 cannot round trip through a Number and are forbidden.
func (b *binaryWriter) writeUint64(v uint64) {
	d.PanicIfTrue(v > maxSafeInteger, "%d is outside the supported integer range", v)
	b.writeUint32(uint32(v >> 32))
	b.writeUint32(uint32(v & 0xffffffff))
}

// writeNumber writes the (integer, exponent) decomposition of v as two
// zigzag-encoded signed varints. Non-finite values cannot be represented.
func (b *binaryWriter) writeNumber(v Number) {
	f := float64(v)
	d.PanicIfTrue(math.IsNaN(f) || math.IsInf(f, 0), "%f is not a supported number", f)
	i, exp := float64ToIntExp(f)
	b.writeSignedVarint(i)
	b.writeSignedVarint(exp)
}

func (b *binaryWriter) writeSignedVarint(v int64) {
	b.ensureCapacity(binary.MaxVarintLen64)
	b.offset += uint32(binary.PutVarint(b.buff[b.offset:], v))
}

func (b *binaryWriter) writeBool(v bool) {
	if v {
		b.writeUint8(uint8(1))
	} else {
		b.writeUint8(uint8(0))
	}
}

func (b *binaryWriter) writeString(v string) {
	size := uint32(len(v))
	b.writeUint32(size)

	b.ensureCapacity(size)
	copy(b.buff[b.offset:], v)
	b.offset += size
}

func (b *binaryWriter) writeHash(h hash.Hash) {
	b.ensureCapacity(hash.ByteLen)
	copy(b.buff[b.offset:], h.DigestSlice())
	b.offset += hash.ByteLen
}

func (b *binaryWriter) writeRaw(buff []byte) {
	size := uint32(len(buff))
	b.ensureCapacity(size)
	copy(b.buff[b.offset:], buff)
	b.offset += size
}

type binaryReader struct {
	buff   []byte
	offset uint32
}

func (b *binaryReader) pos() uint32 {
	return b.offset
}

func (b *binaryReader) readBytes() []byte {
	size := b.readUint32()

	buff := make([]byte, size, size)
	copy(buff, b.buff[b.offset:b.offset+size])
	b.offset += size
	return buff
}

func (b *binaryReader) readUint8() uint8 {
	v := uint8(b.buff[b.offset])
	b.offset++
	return v
}

func (b *binaryReader) readUint32() uint32 {
	v := binary.BigEndian.Uint32(b.buff[b.offset:])
	b.offset += 4
	return v
}

func (b *binaryReader) readUint64() uint64 {
	hi := uint64(b.readUint32())
	lo := uint64(b.readUint32())
	return hi<<32 | lo
}

func (b *binaryReader) readNumber() Number {
	i := b.readSignedVarint()
	exp := b.readSignedVarint()
	return Number(intExpToFloat64(i, exp))
}

func (b *binaryReader) readSignedVarint() int64 {
	v, count := binary.Varint(b.buff[b.offset:])
	d.PanicIfTrue(count <= 0, "Could not decode varint")
	b.offset += uint32(count)
	return v
}

func (b *binaryReader) readBool() bool {
	return b.readUint8() == 1
}

func (b *binaryReader) readString() string {
	size := b.readUint32()

	v := string(b.buff[b.offset : b.offset+size])
	b.offset += size
	return v
}

func (b *binaryReader) readHash() hash.Hash {
	h := hash.Hash{}
	copy(h[:], b.buff[b.offset:b.offset+hash.ByteLen])
	b.offset += hash.ByteLen
	return h
}

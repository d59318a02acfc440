// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package types

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriteBigEndianIntegers(t *testing.T) {
	assert := assert.New(t)

	w := newBinaryWriter()
	w.writeUint32(uint32(1))
	w.writeUint64(uint64(1))

	var u32 uint32
	var u64hi, u64lo uint32
	r := bytes.NewBuffer(w.data())
	assert.NoError(binary.Read(r, binary.BigEndian, &u32))
	assert.NoError(binary.Read(r, binary.BigEndian, &u64hi))
	assert.NoError(binary.Read(r, binary.BigEndian, &u64lo))

	assert.Equal(uint32(1), u32)
	assert.Equal(uint32(0), u64hi)
	assert.Equal(uint32(1), u64lo)
}

func TestReadBigEndianIntegers(t *testing.T) {
	assert := assert.New(t)

	buf := &bytes.Buffer{}
	assert.NoError(binary.Write(buf, binary.BigEndian, uint32(1)))
	// uint64 as two big-endian uint32s
	assert.NoError(binary.Write(buf, binary.BigEndian, uint32(0)))
	assert.NoError(binary.Write(buf, binary.BigEndian, uint32(1)))

	r := &binaryReader{buff: buf.Bytes()}
	assert.True(r.readUint32() == uint32(1))
	assert.True(r.readUint64() == uint64(1))
}

func TestWriteUint64OutOfRange(t *testing.T) {
	w := newBinaryWriter()
	assert.Panics(t, func() { w.writeUint64(uint64(1 << 54)) })
}

func TestNumberRoundTrip(t *testing.T) {
	assert := assert.New(t)

	for _, f := range []float64{0, 1, -1, 42.25, -42.25, 1e100, -1e-100, float64(maxSafeInteger)} {
		w := newBinaryWriter()
		w.writeNumber(Number(f))
		r := &binaryReader{buff: w.data()}
		assert.Equal(Number(f), r.readNumber())
		assert.Equal(uint32(len(w.data())), r.pos())
	}
}

func TestNonFiniteNumbersRejected(t *testing.T) {
	assert := assert.New(t)

	w := newBinaryWriter()
	assert.Panics(func() { w.writeNumber(Number(math.NaN())) })
	assert.Panics(func() { w.writeNumber(Number(math.Inf(1))) })
	assert.Panics(func() { w.writeNumber(Number(math.Inf(-1))) })
	assert.Equal(uint32(0), uint32(len(w.data())))
}

func TestFloat64ToIntExp(t *testing.T) {
	assert := assert.New(t)

	test := func(f float64, i, exp int64) {
		actualI, actualExp := float64ToIntExp(f)
		assert.Equal(i, actualI, "%f", f)
		assert.Equal(exp, actualExp, "%f", f)
		assert.Equal(f, intExpToFloat64(actualI, actualExp))
	}

	test(0, 0, 0)
	test(1, 1, 0)
	test(2, 1, 1)
	test(-2, -1, 1)
	test(0.5, 1, -1)
	test(0.75, 3, -2)
	test(-0.75, -3, -2)
}

func TestRoundTripAllKinds(t *testing.T) {
	assert := assert.New(t)

	vs := NewTestValueStore()
	defer vs.Close()

	values := []Value{
		Bool(true),
		Bool(false),
		Number(0),
		Number(-123.5),
		String(""),
		String("hi"),
		NewList(Number(1), String("two"), Bool(false)),
		NewSet(Number(1), Number(2), String("x")),
		NewMap(String("a"), Number(1), Bool(true), String("yes")),
		NewStruct("S", StructData{"foo": String("foo"), "num": Number(42)}),
		NewRef(String("pointee")),
		MakeListType(MakeUnionType(NumberType, StringType)),
		NewBlob(bytes.NewReader([]byte("some blob data"))),
	}

	for _, v := range values {
		c := EncodeValue(v, nil)
		v2 := DecodeValue(c, vs)
		assert.True(v.Equals(v2), "%s != %s", EncodedValue(v), EncodedValue(v2))
		// Re-encoding the decoded value reproduces the original chunk.
		assert.Equal(c.Hash(), EncodeValue(v2, nil).Hash())
	}
}

func TestDecodeTrailingGarbage(t *testing.T) {
	assert := assert.New(t)

	c := EncodeValue(String("abc"), nil)
	data := append([]byte{}, c.Data()...)
	data = append(data, 0x00) // residual byte
	assert.Panics(func() { DecodeFromBytes(data, nil) })
}

// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package types

import (
	"bytes"
	"io"
	"io/ioutil"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func randomBytes(seed int64, size int) []byte {
	r := rand.New(rand.NewSource(seed))
	data := make([]byte, size)
	r.Read(data)
	return data
}

func TestBlobBasics(t *testing.T) {
	assert := assert.New(t)

	b := NewEmptyBlob()
	assert.True(b.Empty())

	b = NewBlob(bytes.NewReader([]byte("abc")))
	assert.Equal(uint64(3), b.Len())

	data, err := ioutil.ReadAll(b.Reader())
	assert.NoError(err)
	assert.Equal("abc", string(data))
}

func TestBlobChunkingRoundTrip(t *testing.T) {
	smallTestChunks()
	defer normalProductionChunks()
	assert := assert.New(t)

	input := randomBytes(42, 50000)
	b := NewBlob(bytes.NewReader(input))
	assert.Equal(uint64(len(input)), b.Len())

	// Chunked: the root must not be a single leaf.
	assert.False(b.sequence().isLeaf())

	data, err := ioutil.ReadAll(b.Reader())
	assert.NoError(err)
	assert.True(bytes.Equal(input, data))

	// Deterministic.
	b2 := NewBlob(bytes.NewReader(input))
	assert.Equal(b.Hash(), b2.Hash())
}

func TestBlobReaderSeek(t *testing.T) {
	assert := assert.New(t)

	b := NewBlob(bytes.NewReader([]byte("hello world")))
	r := b.Reader()

	n, err := r.Seek(6, io.SeekStart)
	assert.NoError(err)
	assert.Equal(int64(6), n)
	data, err := ioutil.ReadAll(r)
	assert.NoError(err)
	assert.Equal("world", string(data))

	n, err = r.Seek(-5, io.SeekEnd)
	assert.NoError(err)
	assert.Equal(int64(6), n)
	buf := make([]byte, 2)
	_, err = io.ReadFull(r, buf)
	assert.NoError(err)
	assert.Equal("wo", string(buf))

	_, err = r.Seek(1, io.SeekCurrent)
	assert.NoError(err)
	data, err = ioutil.ReadAll(r)
	assert.NoError(err)
	assert.Equal("ld", string(data))
}

func TestBlobThroughStore(t *testing.T) {
	smallTestChunks()
	defer normalProductionChunks()
	assert := assert.New(t)

	vs := NewTestValueStore()
	defer vs.Close()

	input := randomBytes(7, 30000)
	b := NewBlob(bytes.NewReader(input))
	r := vs.WriteValue(b)
	vs.Flush()

	b2 := vs.ReadValue(r.TargetHash()).(Blob)
	data, err := ioutil.ReadAll(b2.Reader())
	assert.NoError(err)
	assert.True(bytes.Equal(input, data))
}

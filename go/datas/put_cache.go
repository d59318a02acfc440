// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package datas

import (
	"bytes"
	"encoding/binary"
	"io"
	"io/ioutil"
	"os"
	"sync"

	"github.com/golang/snappy"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"

	"github.com/silt-db/silt/go/chunks"
	"github.com/silt-db/silt/go/d"
	"github.com/silt-db/silt/go/hash"
)

type hashSet map[hash.Hash]struct{}

func (hs hashSet) Insert(h hash.Hash) {
	hs[h] = struct{}{}
}

func (hs hashSet) Has(h hash.Hash) bool {
	_, ok := hs[h]
	return ok
}

func (hs hashSet) Remove(h hash.Hash) {
	delete(hs, h)
}

// orderedChunkCache holds pending chunks for a batched write, spilled to a
// throwaway leveldb so that arbitrarily large batches don't live in memory.
// Chunks are keyed by (ref height, hash), so iterating the db yields
// children strictly before the chunks which reference them.
type orderedChunkCache struct {
	orderedChunks *leveldb.DB
	chunkIndex    map[hash.Hash][]byte
	dbDir         string
	mu            sync.RWMutex
}

const uint64Size = 8

func newOrderedChunkCache() *orderedChunkCache {
	dir, err := ioutil.TempDir("", "")
	d.PanicIfError(err)
	db, err := leveldb.OpenFile(dir, &opt.Options{
		Compression:            opt.NoCompression,
		OpenFilesCacheCapacity: 24,
		WriteBuffer:            1 << 24, // 16MiB,
	})
	d.PanicIfError(err)
	return &orderedChunkCache{
		orderedChunks: db,
		chunkIndex:    map[hash.Hash][]byte{},
		dbDir:         dir,
	}
}

// Insert can be called from any goroutine to store c in the cache. If c is
// successfully added to the cache, Insert returns true. If c was already
// in the cache, Insert returns false.
func (p *orderedChunkCache) Insert(c chunks.Chunk, refHeight uint64) bool {
	hash := c.Hash()
	dbKey, present := func() (dbKey []byte, present bool) {
		p.mu.Lock()
		defer p.mu.Unlock()
		if _, present = p.chunkIndex[hash]; !present {
			dbKey = toDbKey(refHeight, c.Hash())
			p.chunkIndex[hash] = dbKey
		}
		return
	}()

	if !present {
		compressed := snappy.Encode(nil, c.Data())
		d.PanicIfError(p.orderedChunks.Put(dbKey, compressed, nil))
		return true
	}
	return false
}

func (p *orderedChunkCache) has(hash hash.Hash) (has bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, has = p.chunkIndex[hash]
	return
}

// Get can be called from any goroutine to retrieve the chunk referenced by
// hash. If the chunk is not present, Get returns the empty Chunk.
func (p *orderedChunkCache) Get(hash hash.Hash) chunks.Chunk {
	// Don't use defer p.mu.RUnlock() here, because I want reading from
	// orderedChunks NOT to be guarded by the lock. LevelDB handles its own
	// concurrency.
	p.mu.RLock()
	dbKey, ok := p.chunkIndex[hash]
	p.mu.RUnlock()

	if !ok {
		return chunks.EmptyChunk
	}
	compressed, err := p.orderedChunks.Get(dbKey, nil)
	d.PanicIfError(err)
	data, err := snappy.Decode(nil, compressed)
	d.PanicIfError(err)
	return chunks.NewChunkWithHash(hash, data)
}

// Clear can be called from any goroutine to remove chunks referenced by
// the given hashes from the cache.
func (p *orderedChunkCache) Clear(hashes hashSet) {
	deleteBatch := &leveldb.Batch{}
	p.mu.Lock()
	for hash := range hashes {
		if dbKey, ok := p.chunkIndex[hash]; ok {
			deleteBatch.Delete(dbKey)
			delete(p.chunkIndex, hash)
		}
	}
	p.mu.Unlock()
	d.PanicIfError(p.orderedChunks.Write(deleteBatch, nil))
}

// ExtractChunks can be called from any goroutine to write every currently
// cached chunk to w as a serialized chunk stream, ordered by ref height
// ascending so that children always precede the chunks that reference
// them.
func (p *orderedChunkCache) ExtractChunks(w io.Writer) error {
	iter := p.orderedChunks.NewIterator(nil, nil)
	defer iter.Release()
	for iter.Next() {
		data, err := snappy.Decode(nil, iter.Value())
		d.PanicIfError(err)
		c := chunks.NewChunkWithHash(fromDbKey(iter.Key()), data)
		chunks.Serialize(c, w)
	}
	return nil
}

// Len returns the number of cached chunks.
func (p *orderedChunkCache) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.chunkIndex)
}

func (p *orderedChunkCache) hashes() hashSet {
	p.mu.RLock()
	defer p.mu.RUnlock()
	hashes := hashSet{}
	for h := range p.chunkIndex {
		hashes.Insert(h)
	}
	return hashes
}

// Destroy closes and removes the backing leveldb.
func (p *orderedChunkCache) Destroy() error {
	d.Chk.NoError(p.orderedChunks.Close())
	return os.RemoveAll(p.dbDir)
}

// toDbKey concatenates the big-endian ref height and the hash, so that the
// default leveldb ordering sorts by height first.
func toDbKey(refHeight uint64, h hash.Hash) []byte {
	buf := &bytes.Buffer{}
	err := binary.Write(buf, binary.BigEndian, refHeight)
	d.PanicIfError(err)
	_, err = buf.Write(h.DigestSlice())
	d.PanicIfError(err)
	return buf.Bytes()
}

func fromDbKey(key []byte) hash.Hash {
	return hash.FromSlice(key[uint64Size:])
}

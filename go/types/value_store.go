// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package types

import (
	"github.com/silt-db/silt/go/chunks"
	"github.com/silt-db/silt/go/d"
	"github.com/silt-db/silt/go/hash"
	"github.com/silt-db/silt/go/util/sizecache"
)

// ValueStore provides methods to read and write Silt Values to a
// BatchStore. It maintains:
//
//   - a hash cache of { present, type, provenance } entries, where
//     provenance is a chunk known to reference the hash (a hint);
//   - a size-bounded LRU of decoded values (a cached nil records known
//     absence);
//   - the set of pending puts which have not yet been flushed.
//
// Its state is mutated only between suspension points, so no locking is
// needed under a cooperative scheduler; writes become visible to reads by
// hash immediately, before Flush.
type ValueStore struct {
	bs          BatchStore
	cache       map[hash.Hash]chunkCacheEntry
	pendingPuts map[hash.Hash]pendingChunk
	valueCache  valueCache
}

type chunkCacheEntry interface {
	Present() bool
	Hint() hash.Hash
	Type() *Type
}

type pendingChunk struct {
	c      chunks.Chunk
	height uint64
	hints  Hints
}

type valueCache interface {
	Get(key interface{}) (interface{}, bool)
	Add(key interface{}, size uint64, value interface{})
	Drop(key interface{})
}

// noopValueCache caches nothing.
type noopValueCache struct{}

func (noopValueCache) Get(key interface{}) (interface{}, bool)        { return nil, false }
func (noopValueCache) Add(key interface{}, size uint64, v interface{}) {}
func (noopValueCache) Drop(key interface{})                           {}

const defaultValueCacheSize = 1 << 25 // 32MB

// NewTestValueStore creates a simple struct that satisfies ValueReadWriter
// and is backed by a chunks.TestStore.
func NewTestValueStore() *ValueStore {
	return newLocalValueStore(chunks.NewTestStore())
}

func newLocalValueStore(cs chunks.ChunkStore) *ValueStore {
	return NewValueStore(NewBatchStoreAdaptor(cs))
}

// NewValueStore returns a ValueStore instance with a default size value
// cache. Takes ownership of bs and manages its lifetime; calling Close on
// the returned ValueStore closes bs.
func NewValueStore(bs BatchStore) *ValueStore {
	return NewValueStoreWithCache(bs, defaultValueCacheSize)
}

// NewValueStoreWithCache makes a ValueStore whose value cache holds up to
// cacheSize bytes of decoded values. A cacheSize of 0 disables caching.
func NewValueStoreWithCache(bs BatchStore, cacheSize uint64) *ValueStore {
	var vc valueCache = noopValueCache{}
	if cacheSize > 0 {
		vc = sizecache.New(cacheSize)
	}
	return &ValueStore{
		bs:          bs,
		cache:       map[hash.Hash]chunkCacheEntry{},
		pendingPuts: map[hash.Hash]pendingChunk{},
		valueCache:  vc,
	}
}

func (lvs *ValueStore) BatchStore() BatchStore {
	return lvs.bs
}

// ReadValue reads and decodes a value from lvs. It is not considered an
// error for the requested chunk to be empty; in this case, the function
// simply returns nil.
func (lvs *ValueStore) ReadValue(h hash.Hash) Value {
	if v, ok := lvs.valueCache.Get(h); ok {
		if v == nil {
			return nil
		}
		return v.(Value)
	}

	chunk := chunks.EmptyChunk
	if pc, ok := lvs.pendingPuts[h]; ok {
		chunk = pc.c
	} else {
		chunk = lvs.bs.Get(h)
	}
	if chunk.IsEmpty() {
		lvs.valueCache.Add(h, 0, nil)
		lvs.set(h, absentChunk{})
		return nil
	}

	v := DecodeValue(chunk, lvs)
	lvs.valueCache.Add(h, uint64(len(chunk.Data())), v)
	lvs.cacheChunks(v, h)
	return v
}

// ReadManyValues reads and decodes Values indicated by |hashes| from lvs.
// It returns a slice parallel to |hashes|; any non-present Value is
// represented by nil.
func (lvs *ValueStore) ReadManyValues(hashes hash.HashSlice) ValueSlice {
	decode := func(h hash.Hash, chunk *chunks.Chunk) Value {
		v := DecodeValue(*chunk, lvs)
		lvs.valueCache.Add(h, uint64(len(chunk.Data())), v)
		lvs.cacheChunks(v, h)
		return v
	}

	foundValues := make(map[hash.Hash]Value, len(hashes))

	// First, see which hashes can be satisfied by the value cache or by
	// pending puts, and gather the remainder for the batch store.
	remaining := hash.HashSet{}
	for _, h := range hashes {
		if v, ok := lvs.valueCache.Get(h); ok {
			if v != nil {
				foundValues[h] = v.(Value)
			}
			continue
		}
		if pc, ok := lvs.pendingPuts[h]; ok {
			foundValues[h] = decode(h, &pc.c)
			continue
		}
		remaining.Insert(h)
	}

	if len(remaining) > 0 {
		foundChunks := make(chan *chunks.Chunk, 16)
		collected := []*chunks.Chunk{}
		done := make(chan struct{})
		go func() {
			for c := range foundChunks {
				collected = append(collected, c)
			}
			close(done)
		}()
		lvs.bs.GetMany(remaining, foundChunks)
		close(foundChunks)
		<-done
		for _, c := range collected {
			h := c.Hash()
			foundValues[h] = decode(h, c)
		}
	}

	rv := make(ValueSlice, len(hashes))
	for i, h := range hashes {
		rv[i] = foundValues[h]
	}
	return rv
}

// WriteValue takes a Value, schedules it to be written it to lvs, and
// returns an appropriately-typed Ref. v is not guaranteed to be actually
// written until after Flush().
func (lvs *ValueStore) WriteValue(v Value) Ref {
	d.PanicIfFalse(v != nil, "cannot write nil value")

	// Encoding v causes any child chunks of an in-memory collection to be
	// written through lvs first, so children land before their parents.
	c := EncodeValue(v, lvs)
	d.PanicIfTrue(c.IsEmpty(), "value encoded to an empty chunk")
	h := c.Hash()
	height := maxChunkHeight(v) + 1
	r := constructRef(MakeRefType(v.Type()), h, height)

	if entry, ok := lvs.cache[h]; ok && entry.Present() {
		// already scheduled or known present; coalesce
		return r
	}

	hints := lvs.chunkHintsFromCache(v)
	lvs.pendingPuts[h] = pendingChunk{c, height, hints}
	lvs.set(h, presentChunk{t: v.Type()})
	lvs.valueCache.Drop(h)
	return r
}

// Flush drains all pending puts into the backing store.
func (lvs *ValueStore) Flush() {
	for _, pc := range lvs.pendingPuts {
		lvs.bs.SchedulePut(pc.c, pc.height, pc.hints)
	}
	lvs.pendingPuts = map[hash.Hash]pendingChunk{}
	lvs.bs.Flush()
}

// Close closes the underlying BatchStore
func (lvs *ValueStore) Close() error {
	lvs.Flush()
	return lvs.bs.Close()
}

// cacheChunks records hash-cache entries for v's children: each child is
// known present, with v's chunk as its provenance, unless a previous entry
// already carries a distinct provenance.
func (lvs *ValueStore) cacheChunks(v Value, h hash.Hash) {
	v.WalkRefs(func(r Ref) {
		th := r.TargetHash()
		if cur, ok := lvs.cache[th]; !ok || cur.Hint().IsEmpty() || cur.Hint() == th {
			lvs.set(th, hintedChunk{r.TargetType(), h})
		}
	})
	if _, ok := lvs.cache[h]; !ok {
		lvs.set(h, hintedChunk{v.Type(), h})
	}
}

// chunkHintsFromCache gathers the set of provenance hints for every child
// ref of v, asserting along the way that each child is present and that
// its recorded type fits the child ref's declared type. A child whose
// chunk is still pending is promoted ahead of the parent to preserve
// causal order.
func (lvs *ValueStore) chunkHintsFromCache(v Value) Hints {
	hints := Hints{}
	v.WalkRefs(func(reachable Ref) {
		th := reachable.TargetHash()
		entry, ok := lvs.cache[th]
		d.PanicIfFalse(ok && entry.Present(), "value contains a reference to a non-existent chunk %s", th)

		if entryType := entry.Type(); entryType != nil {
			lvs.checkChunkType(entryType, reachable)
		}

		if hint := entry.Hint(); !hint.IsEmpty() {
			hints[hint] = struct{}{}
		}

		if pc, ok := lvs.pendingPuts[th]; ok {
			lvs.bs.SchedulePut(pc.c, pc.height, pc.hints)
			delete(lvs.pendingPuts, th)
		}
	})
	return hints
}

// checkChunkType validates the recorded type of a stored chunk against the
// declared target type of a ref to it. A ref declared as the top Value
// type is always accepted.
func (lvs *ValueStore) checkChunkType(entryType *Type, reachable Ref) {
	targetType := reachable.TargetType()
	if targetType == ValueType {
		return
	}
	d.PanicIfFalse(IsSubtype(targetType, entryType), "stored chunk %s has type %s, but the reference declares %s", reachable.TargetHash(), entryType.Describe(), targetType.Describe())
}

func (lvs *ValueStore) set(h hash.Hash, entry chunkCacheEntry) {
	lvs.cache[h] = entry
}

func (lvs *ValueStore) isPresent(h hash.Hash) bool {
	entry, ok := lvs.cache[h]
	return ok && entry.Present()
}

type hintedChunk struct {
	t    *Type
	hint hash.Hash
}

func (h hintedChunk) Present() bool   { return true }
func (h hintedChunk) Hint() hash.Hash { return h.hint }
func (h hintedChunk) Type() *Type     { return h.t }

type presentChunk struct {
	t *Type
}

func (p presentChunk) Present() bool   { return true }
func (p presentChunk) Hint() hash.Hash { return hash.Hash{} }
func (p presentChunk) Type() *Type     { return p.t }

type absentChunk struct{}

func (a absentChunk) Present() bool   { return false }
func (a absentChunk) Hint() hash.Hash { return hash.Hash{} }
func (a absentChunk) Type() *Type     { return nil }

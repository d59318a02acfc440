// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

// Package sizecache provides a size-bounded LRU cache. Any feasible key can
// be used; the cache tracks the total declared size of its values and drops
// the least-recently-used entries when the bound is exceeded.
package sizecache

import (
	"container/list"
	"sync"

	"github.com/silt-db/silt/go/d"
)

type sizeCacheEntry struct {
	size     uint64
	lruEntry *list.Element
	value    interface{}
}

type SizeCache struct {
	totalSize uint64
	maxSize   uint64
	mu        sync.Mutex
	lru       list.List
	cache     map[interface{}]sizeCacheEntry
	expireCb  ExpireCallback
}

type ExpireCallback func(key interface{})

// New creates a SizeCache that will hold up to |maxSize| item data.
func New(maxSize uint64) *SizeCache {
	return NewWithExpireCallback(maxSize, nil)
}

// NewWithExpireCallback creates a SizeCache that calls |expireCb| with the
// key of each expired entry.
func NewWithExpireCallback(maxSize uint64, expireCb ExpireCallback) *SizeCache {
	return &SizeCache{
		maxSize:  maxSize,
		cache:    map[interface{}]sizeCacheEntry{},
		expireCb: expireCb,
	}
}

// Get returns the value for |key| and true iff the entry is present,
// additionally marking it most-recently-used.
func (c *SizeCache) Get(key interface{}) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.cache[key]; ok {
		c.lru.MoveToBack(entry.lruEntry)
		return entry.value, true
	}
	return nil, false
}

// Add adds |value| of |size| under |key|, evicting least-recently-used
// entries until totalSize fits under maxSize again. Items larger than
// maxSize are not cached at all.
func (c *SizeCache) Add(key interface{}, size uint64, value interface{}) {
	if size > c.maxSize {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.cache[key]; ok {
		c.lru.MoveToBack(entry.lruEntry)
		return
	}

	newEl := c.lru.PushBack(key)
	ce := sizeCacheEntry{size: size, lruEntry: newEl, value: value}
	c.cache[key] = ce
	c.totalSize += ce.size
	for el := c.lru.Front(); el != nil && c.totalSize > c.maxSize; {
		key1 := el.Value
		ce, ok := c.cache[key1]
		if !ok {
			d.Panic("SizeCache is missing expected value")
		}
		next := el.Next()
		delete(c.cache, key1)
		c.totalSize -= ce.size
		c.lru.Remove(el)
		if c.expireCb != nil {
			c.expireCb(key1)
		}
		el = next
	}
}

// Purge empties the cache.
func (c *SizeCache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.totalSize = 0
	c.lru.Init()
	c.cache = map[interface{}]sizeCacheEntry{}
}

// Drop removes the entry for |key|, if any.
func (c *SizeCache) Drop(key interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.cache[key]; ok {
		delete(c.cache, key)
		c.totalSize -= entry.size
		c.lru.Remove(entry.lruEntry)
	}
}

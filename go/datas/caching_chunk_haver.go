// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package datas

import (
	"github.com/silt-db/silt/go/chunks"
	"github.com/silt-db/silt/go/hash"
)

// cachingChunkHaver memoizes both positive and negative Has answers from
// an underlying ChunkSource.
type cachingChunkHaver struct {
	backing  chunks.ChunkSource
	hasCache map[hash.Hash]bool
}

func newCachingChunkHaver(cs chunks.ChunkSource) *cachingChunkHaver {
	return &cachingChunkHaver{cs, map[hash.Hash]bool{}}
}

func (cch *cachingChunkHaver) Has(r hash.Hash) bool {
	if has, ok := cch.hasCache[r]; ok {
		return has
	}
	has := cch.backing.Has(r)
	cch.hasCache[r] = has
	return has
}

func (cch *cachingChunkHaver) setHas(r hash.Hash, has bool) {
	cch.hasCache[r] = has
}

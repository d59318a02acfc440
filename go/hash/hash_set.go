// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package hash

// HashSet is a set of Hashes.
type HashSet map[Hash]struct{}

func NewHashSet(hashes ...Hash) HashSet {
	out := HashSet{}
	for _, h := range hashes {
		out.Insert(h)
	}
	return out
}

// Insert adds a Hash to the set.
func (hs HashSet) Insert(h Hash) {
	hs[h] = struct{}{}
}

// Has returns true if the HashSet contains h.
func (hs HashSet) Has(h Hash) bool {
	_, has := hs[h]
	return has
}

// Remove removes h from the HashSet.
func (hs HashSet) Remove(h Hash) {
	delete(hs, h)
}

// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package types

import "github.com/silt-db/silt/go/hash"

// Bool is a boolean Silt value.
type Bool bool

func (b Bool) Equals(other Value) bool {
	return b == other
}

func (b Bool) Less(other Value) bool {
	if b2, ok := other.(Bool); ok {
		return !bool(b) && bool(b2)
	}
	return true
}

func (b Bool) Hash() hash.Hash {
	return getHash(b)
}

func (b Bool) WalkValues(cb ValueCallback) {
}

func (b Bool) WalkRefs(cb RefCallback) {
}

func (b Bool) Type() *Type {
	return BoolType
}

// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package types

import "github.com/silt-db/silt/go/hash"

// Number is a Silt number: a real encoded as (integer, exponent).
// Non-finite values cannot be stored.
type Number float64

func (v Number) Equals(other Value) bool {
	return v == other
}

func (v Number) Less(other Value) bool {
	if v2, ok := other.(Number); ok {
		return v < v2
	}
	if _, ok := other.(Bool); ok {
		return false
	}
	return true
}

func (v Number) Hash() hash.Hash {
	return getHash(v)
}

func (v Number) WalkValues(cb ValueCallback) {
}

func (v Number) WalkRefs(cb RefCallback) {
}

func (v Number) Type() *Type {
	return NumberType
}

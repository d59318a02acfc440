// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package types

import "github.com/silt-db/silt/go/hash"

// String is a Silt string, stored as UTF-8 bytes.
type String string

func (s String) Equals(other Value) bool {
	return s == other
}

func (s String) Less(other Value) bool {
	if s2, ok := other.(String); ok {
		return s < s2
	}
	switch other.(type) {
	case Bool, Number:
		return false
	}
	return true
}

func (s String) Hash() hash.Hash {
	return getHash(s)
}

func (s String) WalkValues(cb ValueCallback) {
}

func (s String) WalkRefs(cb RefCallback) {
}

func (s String) Type() *Type {
	return StringType
}

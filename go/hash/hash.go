// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

// Package hash implements the hash function used throughout Silt.
//
// Hashes are the first 20 bytes of the SHA-512 of a chunk's serialized
// bytes. SHA-512 was chosen because:
//
//   - SHA-1 is no longer recommended.
//   - SHA-3 is slow in software.
//   - SHA-512 is faster than SHA-256 on 64-bit hardware.
//
// The displayed form is 32 characters of base32, using the alphabet
// 0-9a-v, which preserves the byte-wise lexicographic order of hashes.
package hash

import (
	"bytes"
	"crypto/sha512"
	"fmt"
	"regexp"

	"github.com/silt-db/silt/go/d"
)

const (
	// ByteLen is the number of bytes used to represent a Hash.
	ByteLen = 20

	// StringLen is the number of characters in a Hash's string form.
	StringLen = 32 // 20 * 8 / 5
)

var (
	pattern   = regexp.MustCompile("^([0-9a-v]{" + fmt.Sprintf("%d", StringLen) + "})$")
	emptyHash = Hash{}
)

// Hash is the hash of a chunk. The zero value is the empty hash, which
// stands for absence.
type Hash [ByteLen]byte

// IsEmpty determines whether the Hash is the all-zeroes empty hash.
func (h Hash) IsEmpty() bool {
	return h == emptyHash
}

// DigestSlice returns a copy of the bytes of the Hash.
func (h Hash) DigestSlice() []byte {
	return h[:]
}

// String returns the base32 form of the Hash.
func (h Hash) String() string {
	return encode(h[:])
}

// Of returns the Hash of the given data.
func Of(data []byte) Hash {
	r := sha512.Sum512(data)
	h := Hash{}
	copy(h[:], r[:ByteLen])
	return h
}

// New creates a Hash from a digest.
func New(digest [ByteLen]byte) Hash {
	return Hash(digest)
}

// FromSlice creates a Hash from a slice of exactly ByteLen bytes.
func FromSlice(data []byte) Hash {
	d.Chk.True(len(data) == ByteLen)
	h := Hash{}
	copy(h[:], data)
	return h
}

// MaybeParse parses a string representing a hash as a base32 encoded byte
// array. If the string is not well formed then this returns (emptyHash,
// false).
func MaybeParse(s string) (Hash, bool) {
	match := pattern.FindStringSubmatch(s)
	if match == nil {
		return emptyHash, false
	}
	return FromSlice(decode(s)), true
}

// Parse parses a string representing a hash as a base32 encoded byte array.
// If the string is not well formed then this panics.
func Parse(s string) Hash {
	r, ok := MaybeParse(s)
	if !ok {
		d.PanicIfError(d.UsageError{Msg: fmt.Sprintf("Cound not parse Hash: %s", s)})
	}
	return r
}

// Less compares two hashes returning whether this Hash is less than other.
func (h Hash) Less(other Hash) bool {
	return bytes.Compare(h[:], other[:]) < 0
}

// Greater compares two hashes returning whether this Hash is greater than
// other.
func (h Hash) Greater(other Hash) bool {
	return bytes.Compare(h[:], other[:]) > 0
}

// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package hash

import "github.com/silt-db/silt/go/d"

// encoding/base32 can't be used because the encoding letters it uses do not
// maintain the lexicographic order of the bytes being encoded, and because
// it requires padding for inputs whose bit size is not a multiple of 40.

const alphabet = "0123456789abcdefghijklmnopqrstuv"

var lookup = initLookup()

func initLookup() [256]byte {
	var t [256]byte
	for i := range t {
		t[i] = 0xff
	}
	for i := 0; i < len(alphabet); i++ {
		t[alphabet[i]] = byte(i)
	}
	return t
}

// encode returns the unpadded base32 encoding of data, which must be 20
// bytes long.
func encode(data []byte) string {
	d.PanicIfFalse(len(data) == ByteLen, "encode expects %d bytes", ByteLen)
	res := make([]byte, StringLen)
	for i := 0; i < StringLen; i++ {
		res[i] = alphabet[readBits(data, uint(i)*5)]
	}
	return string(res)
}

// decode returns the bytes encoded in the 32 character base32 string s.
func decode(s string) []byte {
	d.PanicIfFalse(len(s) == StringLen, "decode expects %d characters", StringLen)
	data := make([]byte, ByteLen)
	for i := 0; i < StringLen; i++ {
		v := lookup[s[i]]
		d.PanicIfTrue(v == 0xff, "invalid base32 character: %c", s[i])
		writeBits(data, uint(i)*5, v)
	}
	return data
}

// readBits returns the 5 bits of data starting at bit offset.
func readBits(data []byte, offset uint) byte {
	b := offset / 8
	r := offset % 8
	v := uint16(data[b]) << 8
	if b+1 < uint(len(data)) {
		v |= uint16(data[b+1])
	}
	return byte(v>>(11-r)) & 0x1f
}

// writeBits ors the 5 bits of v into data at bit offset.
func writeBits(data []byte, offset uint, v byte) {
	b := offset / 8
	r := offset % 8
	bits := uint16(v) << (11 - r)
	data[b] |= byte(bits >> 8)
	if b+1 < uint(len(data)) {
		data[b+1] |= byte(bits)
	}
}

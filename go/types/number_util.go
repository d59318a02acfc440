// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package types

import (
	"math"

	"github.com/silt-db/silt/go/d"
)

// maxSafeInteger is the largest integer that can be represented exactly in
// a float64, 2**53 - 1.
const maxSafeInteger = uint64(1<<53 - 1)

// float64ToIntExp decomposes f into an integer i and exponent exp such that
// f == i * 2**exp and i is as small as possible (exp is maximal).
func float64ToIntExp(f float64) (int64, int64) {
	if f == 0 {
		return 0, 0
	}

	isNegative := math.Signbit(f)
	f = math.Abs(f)
	frac, exp := math.Frexp(f)
	for frac != math.Trunc(frac) {
		frac *= 2
		exp--
	}
	i := int64(frac)
	if isNegative {
		i = -i
	}
	return i, int64(exp)
}

// intExpToFloat64 reverses float64ToIntExp.
func intExpToFloat64(i, exp int64) float64 {
	f := math.Ldexp(float64(i), int(exp))
	d.PanicIfTrue(math.IsNaN(f) || math.IsInf(f, 0), "number is not finite")
	return f
}

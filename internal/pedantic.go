//go:build pedantic
// +build pedantic

// elimpute: a high-performance tool for imputing missing genotypes.
// Copyright (c) 2021 imec vzw.

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version, and Additional Terms
// (see below).

// This program is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Affero General Public License for more details.

// You should have received a copy of the GNU Affero General Public
// License and Additional Terms along with this program. If not, see
// <https://github.com/ExaScience/elimpute/blob/master/LICENSE.txt>.

package internal

const (
	// PedanticMode is a Boolean flag for conditional compilation
	PedanticMode = true

	// PedanticMessage can be added to the overall program message
	PedanticMessage = "pedantic mode "
)

// Rand produces random numbers,
// mimicking the behavior of the Java standard library.
type Rand struct {
	seed int64
}

const (
	multiplier = 0x5DEECE66D
	addend     = 0xB
	mask       = (1 << 48) - 1
)

// NewRand returns a Java-style random number generator.
func NewRand(seed int64) *Rand {
	return &Rand{seed: (seed ^ multiplier) & mask}
}

func (r *Rand) next(bits uint) int64 {
	r.seed = (r.seed*multiplier + addend) & mask
	return int64(int32(r.seed >> (48 - bits)))
}

// Int31 produces the next non-negative int32.
func (r *Rand) Int31() int32 {
	return int32(r.next(31))
}

// Int31n produces the next int32 bounded by n.
func (r *Rand) Int31n(n int32) int32 {
	if n&(n-1) == 0 {
		return int32((int64(n) * r.next(31)) >> 31)
	}
	for {
		bits := int32(r.next(31))
		val := bits % n
		if bits-val+(n-1) >= 0 {
			return val
		}
	}
}

// Float64 produces the next float64 in [0.0,1.0).
func (r *Rand) Float64() float64 {
	return float64(r.next(26)<<27+r.next(27)) / (1 << 53)
}

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

package genotype

import "fmt"

// Allele codes. A diploid genotype call packs two of these into one
// byte, the first allele in the high nibble and the second allele in
// the low nibble.
const (
	AlleleA         byte = 0x0
	AlleleC         byte = 0x1
	AlleleG         byte = 0x2
	AlleleT         byte = 0x3
	AlleleInsertion byte = 0x4
	AlleleGap       byte = 0x5
	AlleleUnknown   byte = 0xF
)

// NumAlleles is the number of known allele codes.
const NumAlleles = 6

// Reserved diploid calls.
const (
	// Unknown is the missing genotype call.
	Unknown byte = 0xFF

	// Gap is the homozygous deletion call.
	Gap byte = 0x55
)

const (
	highMask = 0xF0
	lowMask  = 0x0F
)

// Diploid returns the call made of the two given alleles.
func Diploid(first, second byte) byte {
	return first<<4 | second&lowMask
}

// Split returns the two alleles of a diploid call.
func Split(call byte) (first, second byte) {
	return call >> 4, call & lowMask
}

// Combine returns the call that takes the first allele from call1 and
// the second allele from call2.
func Combine(call1, call2 byte) byte {
	return call1&highMask | call2&lowMask
}

// IsHeterozygous returns true if the two alleles of the call differ.
func IsHeterozygous(call byte) bool {
	return call>>4 != call&lowMask
}

// Canonical returns the call with its alleles in ascending order.
func Canonical(call byte) byte {
	a, b := Split(call)
	if a > b {
		return Diploid(b, a)
	}
	return call
}

// Equivalent returns true if two calls hold the same alleles,
// regardless of their order.
func Equivalent(call1, call2 byte) bool {
	return Canonical(call1) == Canonical(call2)
}

// IsKnown returns true if the call is neither Unknown nor Gap.
func IsKnown(call byte) bool {
	return call != Unknown && call != Gap
}

var alleleChars = [16]byte{'A', 'C', 'G', 'T', '+', '-', 'X', 'X', 'X', 'X', 'X', 'X', 'X', 'X', 'X', 'N'}

// AlleleChar returns the single-character representation of an allele code.
func AlleleChar(allele byte) byte {
	return alleleChars[allele&lowMask]
}

var (
	iupacToCall [256]byte
	callToIUPAC [256]byte
)

func init() {
	for i := range iupacToCall {
		iupacToCall[i] = Unknown
		callToIUPAC[i] = 'N'
	}
	def := func(c byte, first, second byte) {
		call := Diploid(first, second)
		iupacToCall[c] = call
		callToIUPAC[call] = c
		callToIUPAC[Diploid(second, first)] = c
		if c >= 'A' && c <= 'Z' {
			iupacToCall[c+'a'-'A'] = call
		}
	}
	def('A', AlleleA, AlleleA)
	def('C', AlleleC, AlleleC)
	def('G', AlleleG, AlleleG)
	def('T', AlleleT, AlleleT)
	def('R', AlleleA, AlleleG)
	def('Y', AlleleC, AlleleT)
	def('S', AlleleC, AlleleG)
	def('W', AlleleA, AlleleT)
	def('K', AlleleG, AlleleT)
	def('M', AlleleA, AlleleC)
	def('+', AlleleInsertion, AlleleInsertion)
	def('-', AlleleGap, AlleleGap)
	def('0', AlleleInsertion, AlleleGap)
	iupacToCall['N'] = Unknown
	iupacToCall['n'] = Unknown
	callToIUPAC[Unknown] = 'N'
}

// FromIUPAC returns the call denoted by a single IUPAC character.
// Unrecognized characters denote Unknown.
func FromIUPAC(c byte) byte {
	return iupacToCall[c]
}

// IUPAC returns the single IUPAC character for a call. Calls without
// an IUPAC representation are printed as N.
func IUPAC(call byte) byte {
	return callToIUPAC[call]
}

func alleleFromChar(c byte) (byte, bool) {
	switch c {
	case 'A', 'a':
		return AlleleA, true
	case 'C', 'c':
		return AlleleC, true
	case 'G', 'g':
		return AlleleG, true
	case 'T', 't':
		return AlleleT, true
	case '+':
		return AlleleInsertion, true
	case '-':
		return AlleleGap, true
	case 'N', 'n':
		return AlleleUnknown, true
	default:
		return 0, false
	}
}

// Parse accepts a call either as a single IUPAC character or as a
// two-letter allele pair such as "AG" or "A/G".
func Parse(s string) (byte, error) {
	switch len(s) {
	case 1:
		return FromIUPAC(s[0]), nil
	case 2:
		a, ok1 := alleleFromChar(s[0])
		b, ok2 := alleleFromChar(s[1])
		if ok1 && ok2 {
			return Diploid(a, b), nil
		}
	case 3:
		if s[1] == '/' || s[1] == '|' {
			a, ok1 := alleleFromChar(s[0])
			b, ok2 := alleleFromChar(s[2])
			if ok1 && ok2 {
				return Diploid(a, b), nil
			}
		}
	}
	return Unknown, fmt.Errorf("invalid genotype call %q", s)
}

// String returns the two-letter representation of a call.
func String(call byte) string {
	a, b := Split(call)
	return string([]byte{AlleleChar(a), AlleleChar(b)})
}

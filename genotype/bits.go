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

import (
	"math/bits"

	"github.com/bits-and-blooms/bitset"
	"github.com/exascience/pargo/parallel"
)

// BlockSize is the number of sites per block.
const BlockSize = 64

// BlockCount returns the number of blocks needed for the given number of sites.
func BlockCount(sites int) int {
	return (sites + BlockSize - 1) / BlockSize
}

// BlockSpan returns the first and last site of a block range, clipped
// to the number of sites.
func BlockSpan(startBlock, endBlock, sites int) (first, last int) {
	first = startBlock * BlockSize
	last = endBlock*BlockSize + BlockSize - 1
	if last >= sites {
		last = sites - 1
	}
	return first, last
}

// Bits is a fixed-width bit vector over sites, addressed in 64-site blocks.
type Bits struct {
	set *bitset.BitSet
}

// NewBits returns an empty bit vector over n sites.
func NewBits(n int) *Bits {
	return &Bits{set: bitset.New(uint(n))}
}

// Len returns the number of sites.
func (b *Bits) Len() int { return int(b.set.Len()) }

// BlockCount returns the number of blocks.
func (b *Bits) BlockCount() int { return BlockCount(b.Len()) }

// Block returns the 64 bits of a block.
func (b *Bits) Block(i int) uint64 {
	words := b.set.Bytes()
	if i < len(words) {
		return words[i]
	}
	return 0
}

// BlockCardinality returns the number of set bits in a block.
func (b *Bits) BlockCardinality(i int) int {
	return bits.OnesCount64(b.Block(i))
}

// Set sets the bit of a site.
func (b *Bits) Set(site int) { b.set.Set(uint(site)) }

// Test returns the bit of a site.
func (b *Bits) Test(site int) bool { return b.set.Test(uint(site)) }

// Count returns the number of set bits.
func (b *Bits) Count() int { return int(b.set.Count()) }

// Clone returns a copy of b.
func (b *Bits) Clone() *Bits { return &Bits{set: b.set.Clone()} }

// And returns the intersection of b and other.
func (b *Bits) And(other *Bits) *Bits { return &Bits{set: b.set.Intersection(other.set)} }

// Or returns the union of b and other.
func (b *Bits) Or(other *Bits) *Bits { return &Bits{set: b.set.Union(other.set)} }

// AndNot returns the bits of b that are not in other.
func (b *Bits) AndNot(other *Bits) *Bits { return &Bits{set: b.set.Difference(other.set)} }

// Not returns the complement of b over its length.
func (b *Bits) Not() *Bits { return &Bits{set: b.set.Complement()} }

// InPlaceAnd intersects b with other.
func (b *Bits) InPlaceAnd(other *Bits) { b.set.InPlaceIntersection(other.set) }

// Equal returns true if b and other have the same bits set.
func (b *Bits) Equal(other *Bits) bool { return b.set.Equal(other.set) }

/*
A BitView holds the allele presence vectors of one taxon: Major has
a bit set for each site where the call contains the site's major
allele, Minor for each site where it contains the minor allele.

Heterozygous major/minor calls set both bits; Unknown calls and calls
made only of other alleles set neither.
*/
type BitView struct {
	Major, Minor *Bits
}

// NewBitView computes the allele presence vectors of a row of calls.
func NewBitView(row []byte, alleles []Alleles) BitView {
	view := BitView{Major: NewBits(len(row)), Minor: NewBits(len(row))}
	for s, call := range row {
		if call == Unknown {
			continue
		}
		a, b := Split(call)
		al := alleles[s]
		if al.Major != AlleleUnknown && (a == al.Major || b == al.Major) {
			view.Major.Set(s)
		}
		if al.Minor != AlleleUnknown && (a == al.Minor || b == al.Minor) {
			view.Minor.Set(s)
		}
	}
	return view
}

// BitViews computes the bit views of all taxa of a matrix in parallel.
func (m *Matrix) BitViews(alleles []Alleles) []BitView {
	views := make([]BitView, len(m.calls))
	parallel.Range(0, len(views), 0, func(low, high int) {
		for t := low; t < high; t++ {
			views[t] = NewBitView(m.calls[t], alleles)
		}
	})
	return views
}

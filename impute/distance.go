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

package impute

import (
	"math/bits"

	"github.com/exascience/elimpute/genotype"
	"github.com/exascience/pargo/parallel"
)

/*
A DistanceMatrix holds, for one target taxon, per donor and per
block: the number of sites where both have a call (test sites), how
many of those carry the target's minor allele, and how many of those
disagree.

Counters fit in a byte since a block has 64 sites.
*/
type DistanceMatrix struct {
	blocks     int
	testSites  []uint8
	minorSites []uint8
	mismatches []uint8
}

// NewDistanceMatrix compares a target against all donors, in parallel
// over donors.
func NewDistanceMatrix(donors []genotype.BitView, target genotype.BitView) *DistanceMatrix {
	blocks := target.Major.BlockCount()
	n := len(donors) * blocks
	dm := &DistanceMatrix{
		blocks:     blocks,
		testSites:  make([]uint8, n),
		minorSites: make([]uint8, n),
		mismatches: make([]uint8, n),
	}
	parallel.Range(0, len(donors), 0, func(low, high int) {
		for d := low; d < high; d++ {
			donor := donors[d]
			base := d * blocks
			for b := 0; b < blocks; b++ {
				tMj, tMn := target.Major.Block(b), target.Minor.Block(b)
				dMj, dMn := donor.Major.Block(b), donor.Minor.Block(b)
				mask := (tMj | tMn) & (dMj | dMn)
				dm.mismatches[base+b] = uint8(bits.OnesCount64(mask&tMj&(tMj^dMj)) + bits.OnesCount64(mask&tMn&(tMn^dMn)))
				dm.testSites[base+b] = uint8(bits.OnesCount64(mask))
				dm.minorSites[base+b] = uint8(bits.OnesCount64(mask & tMn))
			}
		}
	})
	return dm
}

// Blocks returns the number of blocks.
func (dm *DistanceMatrix) Blocks() int { return dm.blocks }

// TestSites returns the number of compared sites of a donor in a block.
func (dm *DistanceMatrix) TestSites(donor, block int) int {
	return int(dm.testSites[donor*dm.blocks+block])
}

// MinorSites returns the number of compared sites of a donor in a
// block where the target carries its minor allele.
func (dm *DistanceMatrix) MinorSites(donor, block int) int {
	return int(dm.minorSites[donor*dm.blocks+block])
}

// Mismatches returns the number of disagreeing sites of a donor in a block.
func (dm *DistanceMatrix) Mismatches(donor, block int) int {
	return int(dm.mismatches[donor*dm.blocks+block])
}

// sum adds up the counters of a donor over a window. Summing stops
// after the first block that brings the mismatches above cutoff.
func (dm *DistanceMatrix) sum(donor int, w Window, cutoff int) (testSites, mismatches int) {
	base := donor * dm.blocks
	for b := w.Start; b <= w.End; b++ {
		mismatches += int(dm.mismatches[base+b])
		testSites += int(dm.testSites[base+b])
		if mismatches > cutoff {
			break
		}
	}
	return testSites, mismatches
}

// pairMismatches compares a target against a donor pair over a
// window. A site is compared when all three have a call; it is a
// mismatch when the target carries an allele that neither donor has.
func pairMismatches(target, donor1, donor2 genotype.BitView, w Window) (testSites, mismatches int) {
	for b := w.Start; b <= w.End; b++ {
		tMj, tMn := target.Major.Block(b), target.Minor.Block(b)
		d1Mj, d1Mn := donor1.Major.Block(b), donor1.Minor.Block(b)
		d2Mj, d2Mn := donor2.Major.Block(b), donor2.Minor.Block(b)
		mask := (tMj | tMn) & (d1Mj | d1Mn) & (d2Mj | d2Mn)
		mismatches += bits.OnesCount64(mask&tMj&^d1Mj&^d2Mj) + bits.OnesCount64(mask&tMn&^d1Mn&^d2Mn)
		testSites += bits.OnesCount64(mask)
	}
	return testSites, mismatches
}

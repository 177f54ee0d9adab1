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
	"github.com/exascience/elimpute/genotype"
)

// ancestryPath is the decoded state at each informative site of a span.
type ancestryPath struct {
	sites  []int
	states []AncestryState
}

// decodePath runs ancestry decoding for the donor pair of a hypothesis
// over its block span. Sites where the donors agree do not take part;
// a target disagreeing with both counts as a non-Mendelian error. ok
// is false if there are too few informative sites, or too many
// non-Mendelian errors.
func (tc *taxonContext) decodePath(h *Hypothesis) (path ancestryPath, ok bool) {
	imp := tc.imp
	first, last := genotype.BlockSpan(h.StartBlock, h.EndBlock, imp.sites)
	var obs []Observation
	var positions []int32
	nonMendelian := 0
	for s := first; s <= last; s++ {
		t := tc.original[s]
		d1 := imp.donor.Get(h.Donor1, s)
		d2 := imp.donor.Get(h.Donor2, s)
		if !genotype.IsKnown(t) || !genotype.IsKnown(d1) || !genotype.IsKnown(d2) {
			continue
		}
		if d1 == d2 {
			if t != d1 {
				nonMendelian++
			}
			continue
		}
		o := Ambiguous
		if t == d1 {
			o = MatchesDonor1
		} else if t == d2 {
			o = MatchesDonor2
		}
		obs = append(obs, o)
		positions = append(positions, imp.donor.Position(s))
		path.sites = append(path.sites, s)
	}
	informative := len(obs)
	if informative < imp.Config.MinInformativeSites {
		return ancestryPath{}, false
	}
	if float64(nonMendelian) > 5*imp.Config.MaxInbredError*float64(informative) {
		return ancestryPath{}, false
	}
	span := float64(imp.donor.Position(last) - imp.donor.Position(first))
	path.states = imp.decoder.Decode(obs, positions, span/float64(informative))
	return path, true
}

// stateHypothesis returns the single-block hypothesis implied by an
// ancestry state for the donor pair of h.
func stateHypothesis(h *Hypothesis, state AncestryState, block int) *Hypothesis {
	var result *Hypothesis
	switch state {
	case Donor1Homozygous:
		result = NewInbred(h.Target, h.Donor1, block, block, block, 0, 0)
	case Donor2Homozygous:
		result = NewInbred(h.Target, h.Donor2, block, block, block, 0, 0)
	default:
		result = NewHybrid(h.Target, h.Donor1, h.Donor2, block, block, block, 0, 0)
	}
	result.Decoded = true
	return result
}

// decode resolves the donor pair of h by ancestry decoding and writes
// the blocks from fromBlock to toBlock. Each block is written with the
// state of its first informative site, so a crossover inside a block
// is not resolved. It returns false if decoding was abandoned.
func (tc *taxonContext) decode(h *Hypothesis, fromBlock, toBlock int) bool {
	path, ok := tc.decodePath(h)
	if !ok {
		tc.result.DecodeAbandoned++
		return false
	}
	tc.result.Decoded++
	current := -1
	for i, s := range path.sites {
		block := s / genotype.BlockSize
		if block == current {
			continue
		}
		current = block
		if block < fromBlock || block > toBlock {
			continue
		}
		tc.writeBlock([]*Hypothesis{stateHypothesis(h, path.states[i], block)}, block)
	}
	return true
}

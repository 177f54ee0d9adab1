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

// CarryForward returns, for each block, the index of the closest block
// at or before it whose best hypothesis is good, or -1 if there is none.
func CarryForward(hyps [][]*Hypothesis, good func(*Hypothesis) bool) []int {
	result := make([]int, len(hyps))
	last := -1
	for b, list := range hyps {
		if len(list) > 0 && good(list[0]) {
			last = b
		}
		result[b] = last
	}
	return result
}

// CarryBackward returns, for each block, the index of the closest block
// at or after it whose best hypothesis is good, or -1 if there is none.
func CarryBackward(hyps [][]*Hypothesis, good func(*Hypothesis) bool) []int {
	result := make([]int, len(hyps))
	next := -1
	for b := len(hyps) - 1; b >= 0; b-- {
		if list := hyps[b]; len(list) > 0 && good(list[0]) {
			next = b
		}
		result[b] = next
	}
	return result
}

// crossoverDonors returns the donor pair to decode between two good
// blocks that do not name the same donors: the left block's first
// donor, and the first donor of the right block that differs from it.
// Without such a donor, the left block is a hybrid whose second donor
// is taken instead.
func crossoverDonors(lh, rh *Hypothesis) (d1, d2 int) {
	d1 = lh.Donor1
	switch {
	case rh.Donor1 != d1:
		return d1, rh.Donor1
	case rh.Donor2 != d1:
		return d1, rh.Donor2
	default:
		return d1, lh.Donor2
	}
}

/*
stitch applies the block hypotheses of a taxon to its calls, from
left to right.

A block with a two-donor hypothesis is resolved by ancestry decoding
over the hypothesis' whole span. A block whose closest good blocks
on the left and on the right agree on the donors takes the left
block's hypotheses. Where they disagree, ancestry decoding between
the left and the right donors locates the crossover, and the scan
continues at the right block. When decoding is abandoned, the block
falls back to the hypotheses on its left.
*/
func (tc *taxonContext) stitch(hyps [][]*Hypothesis) {
	max := tc.imp.Config.MaxInbredError
	good := func(h *Hypothesis) bool { return h.ErrorRate() < max }
	left := CarryForward(hyps, good)
	right := CarryBackward(hyps, good)
	for b := 0; b < len(hyps); b++ {
		if list := hyps[b]; len(list) > 0 && list[0].Kind == Hybrid {
			h := list[0]
			if tc.decode(h, b, h.EndBlock) {
				b = h.EndBlock
			} else if b > 0 && left[b-1] >= 0 {
				tc.writeBlock(hyps[left[b-1]], b)
			}
			continue
		}
		l, r := left[b], right[b]
		if l < 0 || r < 0 {
			continue
		}
		lh, rh := hyps[l][0], hyps[r][0]
		if lh.SameDonors(rh) {
			tc.writeBlock(hyps[l], b)
			continue
		}
		start := lh.StartBlock
		if rh.StartBlock < start {
			start = rh.StartBlock
		}
		end := rh.EndBlock
		if lh.EndBlock > end {
			end = lh.EndBlock
		}
		d1, d2 := crossoverDonors(lh, rh)
		synthetic := NewHybrid(tc.taxon, d1, d2, start, b, end, 0, 0)
		if tc.decode(synthetic, b, rh.FocusBlock-1) {
			if rh.FocusBlock-1 > b {
				b = rh.FocusBlock - 1
			}
		} else {
			tc.writeBlock(hyps[l], b)
		}
	}
}

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
	"github.com/exascience/pargo/parallel"
)

// bestInbred returns up to MaxHypotheses single-donor hypotheses for
// a window, best first.
func (tc *taxonContext) bestInbred(w Window) []*Hypothesis {
	config := &tc.imp.Config
	best := newBestK(config.MaxHypotheses)
	for d := range tc.imp.donorViews {
		testSites, mismatches := tc.dist.sum(d, w, config.MismatchCutoff)
		if testSites < config.MinTestSites {
			continue
		}
		candidate := Hypothesis{
			Kind:       Inbred,
			Target:     tc.taxon,
			Donor1:     d,
			Donor2:     d,
			StartBlock: w.Start,
			FocusBlock: w.Focus,
			EndBlock:   w.End,
			TestSites:  testSites,
			Mismatches: mismatches,
		}
		if best.admits(&candidate) {
			h := candidate
			best.offer(&h)
		}
	}
	return best.sorted()
}

// bestHybrid returns up to MaxHypotheses donor pair hypotheses for a
// window, best first. The first donor of each pair is taken from the
// inbred shortlist, the second from all donors. Pairs with too few
// test sites or too many mismatches are never admitted.
func (tc *taxonContext) bestHybrid(w Window, inbred []*Hypothesis) []*Hypothesis {
	config := &tc.imp.Config
	donors := tc.imp.donorViews
	best := newBestK(config.MaxHypotheses)
	done := make(map[int]bool, len(inbred))
	for _, ih := range inbred {
		d1 := ih.Donor1
		if done[d1] {
			continue
		}
		done[d1] = true
		for d2 := range donors {
			if d2 == d1 || done[d2] {
				continue
			}
			testSites, mismatches := pairMismatches(tc.target, donors[d1], donors[d2], w)
			if testSites < config.MinTestSites {
				continue
			}
			if float64(mismatches) > config.MaxInbredError*float64(testSites) {
				continue
			}
			candidate := Hypothesis{
				Kind:       Hybrid,
				Target:     tc.taxon,
				Donor1:     d1,
				Donor2:     d2,
				StartBlock: w.Start,
				FocusBlock: w.Focus,
				EndBlock:   w.End,
				TestSites:  testSites,
				Mismatches: mismatches,
			}
			if best.admits(&candidate) {
				h := candidate
				best.offer(&h)
			}
		}
	}
	return best.sorted()
}

// searchBlocks determines the hypotheses of every block of the
// taxon, in parallel over blocks. Hypotheses above the error
// threshold are dropped from the result.
func (tc *taxonContext) searchBlocks() [][]*Hypothesis {
	config := &tc.imp.Config
	blocks := tc.dist.Blocks()
	hyps := make([][]*Hypothesis, blocks)
	windows := make([]bool, blocks)
	hybrids := make([]bool, blocks)
	parallel.Range(0, blocks, 0, func(low, high int) {
		for b := low; b < high; b++ {
			w, ok := ExpandWindow(tc.target.Major, tc.target.Minor, b, config.MinMinorCount, config.MajorMinorRatio)
			if !ok {
				continue
			}
			windows[b] = true
			list := tc.bestInbred(w)
			if config.Hybrid && len(list) > 0 && list[0].ErrorRate() > config.MaxInbredError {
				list = tc.bestHybrid(w, list)
				hybrids[b] = true
			}
			hyps[b] = tc.acceptable(list)
		}
	})
	for b := range windows {
		if windows[b] {
			tc.result.Windows++
		}
		if hybrids[b] {
			tc.result.HybridWindows++
		}
	}
	return hyps
}

// acceptable drops the hypotheses whose error rate exceeds the threshold.
func (tc *taxonContext) acceptable(list []*Hypothesis) []*Hypothesis {
	max := tc.imp.Config.MaxInbredError
	result := list[:0]
	for _, h := range list {
		if h.ErrorRate() <= max {
			result = append(result, h)
		}
	}
	return result
}

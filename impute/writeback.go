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

// impliedCall returns the call a hypothesis implies at a site, or
// Unknown.
func (imp *Imputer) impliedCall(h *Hypothesis, site int) byte {
	d1 := imp.donor.Get(h.Donor1, site)
	if h.Kind == Inbred {
		return d1
	}
	d2 := imp.donor.Get(h.Donor2, site)
	if d1 == genotype.Unknown || d2 == genotype.Unknown {
		return genotype.Unknown
	}
	return genotype.Canonical(genotype.Combine(d1, d2))
}

/*
writeBlock applies ranked hypotheses to the sites of a block. At each
site the first hypothesis with a known implied call wins.

Only calls that are still Unknown are filled in. Calls that were
known before imputation are compared against the implied call
instead: agreement counts as right, disagreement with a homozygous
implied call counts as wrong.
*/
func (tc *taxonContext) writeBlock(hyps []*Hypothesis, block int) {
	imp := tc.imp
	max := imp.Config.MaxInbredError
	first, last := genotype.BlockSpan(block, block, imp.sites)
	written := false
	for s := first; s <= last; s++ {
		implied := genotype.Unknown
		for _, h := range hyps {
			if h == nil || (!h.Decoded && h.ErrorRate() > max) {
				continue
			}
			if implied = imp.impliedCall(h, s); implied != genotype.Unknown {
				break
			}
		}
		if implied == genotype.Unknown {
			continue
		}
		written = true
		if known := tc.original[s]; known != genotype.Unknown {
			if genotype.Equivalent(known, implied) {
				tc.accuracy.right(s)
				tc.result.Right++
			} else if !genotype.IsHeterozygous(implied) {
				tc.accuracy.wrong(s)
				tc.result.Wrong++
			}
			continue
		}
		if imp.target.Get(tc.taxon, s) == genotype.Unknown {
			imp.target.Set(tc.taxon, s, implied)
		}
	}
	if written && len(hyps) > 0 && hyps[0] != nil {
		h := hyps[0]
		tc.result.DonorBlocks[h.Donor1]++
		if h.Donor2 != h.Donor1 {
			tc.result.DonorBlocks[h.Donor2]++
		}
	}
}

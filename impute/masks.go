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
	"errors"
	"fmt"

	"github.com/exascience/elimpute/genotype"
)

// ErrSiteMismatch is returned when donor and target panels do not
// describe the same sites.
var ErrSiteMismatch = errors.New("donor and target sites do not match")

/*
AlleleMasks reconcile the major/minor labels of the donor and target
panels per site.

Invariant sites are monomorphic in the donor panel. Swapped sites
have the major and minor allele exchanged between the panels.
Conflicting sites have incompatible major alleles and are excluded
from all comparisons. Usable is the complement of Conflicting.

A missing minor allele on either side matches any allele, so a
monomorphic target site carrying the donor's minor allele counts as
swapped rather than conflicting. Invariant sites are still checked
for polarity.
*/
type AlleleMasks struct {
	Invariant, Swapped, Conflicting, Usable *genotype.Bits

	compared *genotype.Bits
}

// NewAlleleMasks classifies all sites. If excludeInvariant is true,
// invariant sites are dropped from comparisons as well.
func NewAlleleMasks(donor, target []genotype.Alleles, excludeInvariant bool) (*AlleleMasks, error) {
	if len(donor) != len(target) {
		return nil, fmt.Errorf("%w: %v donor sites, %v target sites", ErrSiteMismatch, len(donor), len(target))
	}
	n := len(donor)
	masks := &AlleleMasks{
		Invariant:   genotype.NewBits(n),
		Swapped:     genotype.NewBits(n),
		Conflicting: genotype.NewBits(n),
	}
	for s := range donor {
		d, t := donor[s], target[s]
		if d.Monomorphic() {
			masks.Invariant.Set(s)
		}
		switch {
		case d.Major == genotype.AlleleUnknown, t.Major == genotype.AlleleUnknown:
			// no calls to compare at this site
		case d.Major == t.Major:
		case d.Major == t.Minor && (d.Minor == t.Major || d.Monomorphic()),
			t.Minor == genotype.AlleleUnknown && d.Minor == t.Major:
			masks.Swapped.Set(s)
		default:
			masks.Conflicting.Set(s)
		}
	}
	masks.Usable = masks.Conflicting.Not()
	masks.compared = masks.Usable
	if excludeInvariant {
		masks.compared = masks.Usable.AndNot(masks.Invariant)
	}
	return masks, nil
}

// MaskDonor removes excluded sites from a donor view.
func (m *AlleleMasks) MaskDonor(v genotype.BitView) genotype.BitView {
	return genotype.BitView{Major: v.Major.And(m.compared), Minor: v.Minor.And(m.compared)}
}

// MaskTarget removes excluded sites from a target view and exchanges
// the major and minor bits of swapped sites, so that the result uses
// the donor panel's polarity.
func (m *AlleleMasks) MaskTarget(v genotype.BitView) genotype.BitView {
	major := v.Major.AndNot(m.Swapped).Or(v.Minor.And(m.Swapped))
	minor := v.Minor.AndNot(m.Swapped).Or(v.Major.And(m.Swapped))
	major.InPlaceAnd(m.compared)
	minor.InPlaceAnd(m.compared)
	return genotype.BitView{Major: major, Minor: minor}
}

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
	"fmt"
	"math"
)

// Kind distinguishes single-donor from two-donor hypotheses.
type Kind uint8

const (
	// Inbred hypotheses explain a target with a single donor.
	Inbred Kind = iota
	// Hybrid hypotheses explain a target with a pair of donors.
	Hybrid
)

func (k Kind) String() string {
	if k == Inbred {
		return "inbred"
	}
	return "hybrid"
}

// A Hypothesis is a candidate explanation of a target taxon over a
// block range by one or two donors.
type Hypothesis struct {
	Kind           Kind
	Target         int
	Donor1, Donor2 int
	StartBlock     int
	FocusBlock     int
	EndBlock       int
	TestSites      int
	Mismatches     int

	// Decoded hypotheses are produced by ancestry decoding for a
	// single block and are applied regardless of their error rate.
	Decoded bool
}

// NewInbred returns a single-donor hypothesis.
func NewInbred(target, donor, startBlock, focusBlock, endBlock, testSites, mismatches int) *Hypothesis {
	return &Hypothesis{
		Kind:       Inbred,
		Target:     target,
		Donor1:     donor,
		Donor2:     donor,
		StartBlock: startBlock,
		FocusBlock: focusBlock,
		EndBlock:   endBlock,
		TestSites:  testSites,
		Mismatches: mismatches,
	}
}

// NewHybrid returns a two-donor hypothesis. The donors must differ.
func NewHybrid(target, donor1, donor2, startBlock, focusBlock, endBlock, testSites, mismatches int) *Hypothesis {
	if donor1 == donor2 {
		panic("hybrid hypothesis needs two different donors")
	}
	return &Hypothesis{
		Kind:       Hybrid,
		Target:     target,
		Donor1:     donor1,
		Donor2:     donor2,
		StartBlock: startBlock,
		FocusBlock: focusBlock,
		EndBlock:   endBlock,
		TestSites:  testSites,
		Mismatches: mismatches,
	}
}

// ErrorRate returns Mismatches/TestSites, or +Inf if there are no test sites.
func (h *Hypothesis) ErrorRate() float64 {
	if h.TestSites == 0 {
		return math.Inf(1)
	}
	return float64(h.Mismatches) / float64(h.TestSites)
}

// SameDonors returns true if both hypotheses name the same donors.
func (h *Hypothesis) SameDonors(other *Hypothesis) bool {
	return h.Kind == other.Kind && h.Donor1 == other.Donor1 && h.Donor2 == other.Donor2
}

func (h *Hypothesis) String() string {
	return fmt.Sprintf("%v[%v,%v] blocks %v-%v-%v sites %v mismatches %v",
		h.Kind, h.Donor1, h.Donor2, h.StartBlock, h.FocusBlock, h.EndBlock, h.TestSites, h.Mismatches)
}

// less orders hypotheses by error rate, then by donor indices. Error
// rates are compared exactly by cross-multiplication; hypotheses
// without test sites come last.
func less(a, b *Hypothesis) bool {
	switch {
	case a.TestSites == 0 && b.TestSites == 0:
	case a.TestSites == 0:
		return false
	case b.TestSites == 0:
		return true
	default:
		x := int64(a.Mismatches) * int64(b.TestSites)
		y := int64(b.Mismatches) * int64(a.TestSites)
		if x != y {
			return x < y
		}
	}
	if a.Donor1 != b.Donor1 {
		return a.Donor1 < b.Donor1
	}
	return a.Donor2 < b.Donor2
}

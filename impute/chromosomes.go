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
	"context"
	"fmt"

	"github.com/exascience/elimpute/genotype"
)

/*
ImputeChromosomes imputes a target matrix from a donor matrix one
chromosome at a time, so that windows, hypotheses and ancestry
decoding never extend across a chromosome boundary.

Each chromosome is imputed by its own Imputer over a slice of both
matrices. If prepare is not nil, it is called with that Imputer
before it runs. MinSitesPresent applies per chromosome.

The results of all chromosomes are combined into one Result over all
sites. A taxon counts as skipped only if it was skipped on every
chromosome. On cancellation, the chromosomes that were not yet
started are left untouched.
*/
func ImputeChromosomes(ctx context.Context, donor, target *genotype.Matrix, config Config, prepare func(chromosome string, imp *Imputer)) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if !donor.SameSites(target) {
		return nil, fmt.Errorf("%w: %v donor sites, %v target sites", ErrSiteMismatch, donor.NumSites(), target.NumSites())
	}
	result := &Result{
		Accuracy: NewAccuracy(target.NumSites()),
		Taxa:     make([]TaxonResult, target.NumTaxa()),
	}
	for t := range result.Taxa {
		result.Taxa[t] = TaxonResult{Taxon: t, Skipped: true, DonorBlocks: make(map[int]int)}
	}
	for _, r := range target.Chromosomes() {
		imp, err := NewImputer(donor.Slice(r), target.Slice(r), config)
		if err != nil {
			return nil, err
		}
		if prepare != nil {
			prepare(target.Sites[r.First].Chromosome, imp)
		}
		chromosome, err := imp.Run(ctx)
		result.add(chromosome, r.First)
		if err != nil {
			return result, err
		}
	}
	return result, nil
}

// add combines the result of a chromosome whose sites start at first.
func (r *Result) add(other *Result, first int) {
	r.Accuracy.MergeAt(other.Accuracy, first)
	r.InvariantSites += other.InvariantSites
	r.SwappedSites += other.SwappedSites
	r.ConflictingSites += other.ConflictingSites
	for t := range other.Taxa {
		r.Taxa[t].add(&other.Taxa[t])
	}
}

func (tr *TaxonResult) add(other *TaxonResult) {
	tr.Skipped = tr.Skipped && other.Skipped
	tr.Cancelled = tr.Cancelled || other.Cancelled
	tr.Windows += other.Windows
	tr.HybridWindows += other.HybridWindows
	tr.Decoded += other.Decoded
	tr.DecodeAbandoned += other.DecodeAbandoned
	tr.UnknownBefore += other.UnknownBefore
	tr.UnknownAfter += other.UnknownAfter
	tr.Right += other.Right
	tr.Wrong += other.Wrong
	for donor, blocks := range other.DonorBlocks {
		tr.DonorBlocks[donor] += blocks
	}
}

// NumSites returns the number of sites the Imputer works on.
func (imp *Imputer) NumSites() int { return imp.sites }

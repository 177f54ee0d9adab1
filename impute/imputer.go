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

/*
Package impute fills in missing genotype calls of target taxa by
copying them from a panel of fully resolved donor haplotypes.

For each 64-site block of a target, a window of neighbouring blocks is
grown until it holds enough minor alleles, and the donors that best
explain the target in that window are determined. When no single
donor explains a window well enough, pairs of donors are tried.
Regions explained by two donors are resolved with a five-state
Viterbi decoder that locates the crossover between them.

Calls that are known before imputation are never modified.
*/
package impute

import (
	"context"
	"fmt"
	"log"

	"github.com/exascience/elimpute/genotype"
	"github.com/exascience/pargo/parallel"
)

// A Panel provides read access to a genotype matrix.
type Panel interface {
	NumTaxa() int
	NumSites() int
	Get(taxon, site int) byte
	CountUnknown(taxon int) int
	Position(site int) int32
	Alleles() []genotype.Alleles
	BitViews(alleles []genotype.Alleles) []genotype.BitView
}

// A TargetPanel is a Panel whose calls can be filled in.
type TargetPanel interface {
	Panel
	Set(taxon, site int, call byte)
}

// TaxonResult describes the imputation of one target taxon.
type TaxonResult struct {
	Taxon int

	// Skipped is true if the taxon had too few known calls.
	Skipped bool
	// Cancelled is true if the run was cancelled before the taxon was
	// modified.
	Cancelled bool

	Windows         int
	HybridWindows   int
	Decoded         int
	DecodeAbandoned int
	UnknownBefore   int
	UnknownAfter    int
	Right, Wrong    int

	// DonorBlocks counts per donor the blocks it helped to fill in.
	DonorBlocks map[int]int
}

// Result summarizes an imputation run.
type Result struct {
	Accuracy *Accuracy
	Taxa     []TaxonResult

	InvariantSites, SwappedSites, ConflictingSites int
}

// Imputed returns the number of calls filled in over all taxa.
func (r *Result) Imputed() (n int) {
	for _, t := range r.Taxa {
		n += t.UnknownBefore - t.UnknownAfter
	}
	return n
}

// An Imputer fills in the missing calls of a target panel from a
// donor panel over the same sites.
type Imputer struct {
	Config Config

	// OnTaxonDone, if set, is called after each target taxon, possibly
	// concurrently.
	OnTaxonDone func(TaxonResult)

	donor         Panel
	target        TargetPanel
	sites         int
	targetAlleles []genotype.Alleles
	masks         *AlleleMasks
	donorViews    []genotype.BitView
	decoder       *Decoder
}

// NewImputer prepares the donor panel for imputing the target panel.
func NewImputer(donor Panel, target TargetPanel, config Config) (*Imputer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if donor.NumSites() != target.NumSites() {
		return nil, fmt.Errorf("%w: %v donor sites, %v target sites", ErrSiteMismatch, donor.NumSites(), target.NumSites())
	}
	for s := 0; s < donor.NumSites(); s++ {
		if donor.Position(s) != target.Position(s) {
			return nil, fmt.Errorf("%w: site %v at position %v in donors, %v in targets", ErrSiteMismatch, s, donor.Position(s), target.Position(s))
		}
	}
	donorAlleles, targetAlleles := donor.Alleles(), target.Alleles()
	masks, err := NewAlleleMasks(donorAlleles, targetAlleles, config.ExcludeInvariant)
	if err != nil {
		return nil, err
	}
	views := donor.BitViews(donorAlleles)
	parallel.Range(0, len(views), 0, func(low, high int) {
		for d := low; d < high; d++ {
			views[d] = masks.MaskDonor(views[d])
		}
	})
	return &Imputer{
		Config:        config,
		donor:         donor,
		target:        target,
		sites:         donor.NumSites(),
		targetAlleles: targetAlleles,
		masks:         masks,
		donorViews:    views,
		decoder:       NewDecoder(),
	}, nil
}

// Masks returns the allele polarity masks of the run.
func (imp *Imputer) Masks() *AlleleMasks { return imp.masks }

// taxonContext holds the state of imputing a single target taxon.
type taxonContext struct {
	imp      *Imputer
	taxon    int
	original []byte
	target   genotype.BitView
	dist     *DistanceMatrix
	accuracy *Accuracy
	result   *TaxonResult
}

/*
Run imputes all target taxa, in parallel.

Each taxon is processed independently, reading only shared donor data
and writing only its own calls. The context is checked before each
taxon and before a taxon's calls are modified; taxa that were not yet
modified when the context is cancelled are left untouched, and Run
returns the context's error.
*/
func (imp *Imputer) Run(ctx context.Context) (*Result, error) {
	targetViews := imp.target.BitViews(imp.targetAlleles)
	taxa := make([]TaxonResult, imp.target.NumTaxa())
	if len(taxa) == 0 {
		return &Result{Accuracy: NewAccuracy(imp.sites)}, ctx.Err()
	}
	accuracy := parallel.RangeReduce(0, len(taxa), imp.Config.Threads, func(low, high int) interface{} {
		accuracy := NewAccuracy(imp.sites)
		for t := low; t < high; t++ {
			taxa[t] = TaxonResult{Taxon: t, DonorBlocks: make(map[int]int)}
			tc := &taxonContext{
				imp:      imp,
				taxon:    t,
				target:   targetViews[t],
				accuracy: accuracy,
				result:   &taxa[t],
			}
			tc.run(ctx)
			if imp.OnTaxonDone != nil {
				imp.OnTaxonDone(taxa[t])
			}
		}
		return accuracy
	}, func(x, y interface{}) interface{} {
		ax := x.(*Accuracy)
		ax.Merge(y.(*Accuracy))
		return ax
	}).(*Accuracy)
	result := &Result{
		Accuracy:         accuracy,
		Taxa:             taxa,
		InvariantSites:   imp.masks.Invariant.Count(),
		SwappedSites:     imp.masks.Swapped.Count(),
		ConflictingSites: imp.masks.Conflicting.Count(),
	}
	return result, ctx.Err()
}

func (tc *taxonContext) run(ctx context.Context) {
	imp := tc.imp
	if ctx.Err() != nil {
		tc.result.Cancelled = true
		return
	}
	tc.original = make([]byte, imp.sites)
	for s := range tc.original {
		tc.original[s] = imp.target.Get(tc.taxon, s)
	}
	unknown := imp.target.CountUnknown(tc.taxon)
	tc.result.UnknownBefore = unknown
	tc.result.UnknownAfter = unknown
	if imp.sites-unknown < imp.Config.MinSitesPresent {
		tc.result.Skipped = true
		return
	}
	tc.target = imp.masks.MaskTarget(tc.target)
	tc.dist = NewDistanceMatrix(imp.donorViews, tc.target)
	hyps := tc.searchBlocks()
	if ctx.Err() != nil {
		tc.result.Cancelled = true
		return
	}
	tc.stitch(hyps)
	tc.result.UnknownAfter = imp.target.CountUnknown(tc.taxon)
}

// LogMasks logs the outcome of allele polarity reconciliation.
func (imp *Imputer) LogMasks() {
	log.Printf("Sites invariant in donors: %v, swapped major/minor: %v, conflicting: %v.\n",
		imp.masks.Invariant.Count(), imp.masks.Swapped.Count(), imp.masks.Conflicting.Count())
}

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

package evaluate

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/exascience/elimpute/genotype"
	"github.com/exascience/pargo/parallel"
	"gonum.org/v1/gonum/stat"
)

// ErrSiteMismatch is returned when compared matrices do not describe
// the same sites.
var ErrSiteMismatch = errors.New("compared matrices have different sites")

// Genotype classes of a call relative to the major and minor allele
// of its site.
const (
	Minor = iota
	Het
	Major
)

// Columns of a confusion table row. ToMinor, ToHet and ToMajor
// coincide with the genotype classes.
const (
	ToMinor = iota
	ToHet
	ToMajor
	Unimputed
	Total
)

var classNames = [3]string{"Minor", "Het", "Major"}

// A Report is the confusion table of hidden calls against imputed
// calls. Rows are indexed by the class of the hidden call.
type Report struct {
	Counts [3][5]int

	// R2 is the squared correlation between hidden and imputed classes
	// over all imputed calls.
	R2 float64
}

func contains(call, allele byte) bool {
	a, b := genotype.Split(call)
	return a == allele || b == allele
}

func (r *Report) add(known, imputed byte, alleles genotype.Alleles) {
	homozygousMinor := genotype.Diploid(alleles.Minor, alleles.Minor)
	homozygousMajor := genotype.Diploid(alleles.Major, alleles.Major)
	var class int
	switch {
	case genotype.IsHeterozygous(known):
		class = Het
	case known == homozygousMinor && !alleles.Monomorphic():
		class = Minor
	case known == homozygousMajor:
		class = Major
	default:
		return
	}
	row := &r.Counts[class]
	_, knownAllele := genotype.Split(known)
	switch {
	case imputed == genotype.Unknown:
		row[Unimputed]++
	case genotype.Equivalent(imputed, known):
		row[class]++
	case class == Het:
		switch {
		case genotype.IsHeterozygous(imputed):
			// more than two alleles at this site
			return
		case contains(imputed, alleles.Minor):
			row[ToMinor]++
		case contains(imputed, alleles.Major):
			row[ToMajor]++
		default:
			return
		}
	case genotype.IsHeterozygous(imputed) && contains(imputed, knownAllele):
		row[ToHet]++
	case class == Minor:
		row[ToMajor]++
	default:
		row[ToMinor]++
	}
	row[Total]++
}

func (r *Report) merge(other *Report) {
	for i := range r.Counts {
		for j := range r.Counts[i] {
			r.Counts[i][j] += other.Counts[i][j]
		}
	}
}

// correlation computes R2 as the weighted squared Pearson correlation
// of the nine imputed cells of the confusion table.
func (r *Report) correlation() {
	var x, y, weights []float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if n := r.Counts[i][j]; n > 0 {
				x = append(x, float64(i))
				y = append(y, float64(j))
				weights = append(weights, float64(n))
			}
		}
	}
	if len(weights) < 2 {
		r.R2 = math.NaN()
		return
	}
	c := stat.Correlation(x, y, weights)
	r.R2 = c * c
}

/*
Compare builds the confusion table of the known calls in key against
the calls at the same positions in imputed. Taxa are matched by name;
taxa missing from key are ignored. Calls are classified relative to
the major and minor alleles of the imputed matrix.
*/
func Compare(key, imputed *genotype.Matrix) (*Report, error) {
	if !key.SameSites(imputed) {
		return nil, ErrSiteMismatch
	}
	if imputed.NumTaxa() == 0 {
		return &Report{R2: math.NaN()}, nil
	}
	alleles := imputed.Alleles()
	report := parallel.RangeReduce(0, imputed.NumTaxa(), 0, func(low, high int) interface{} {
		report := new(Report)
		for t := low; t < high; t++ {
			k := key.TaxonIndex(imputed.Taxa[t])
			if k < 0 {
				continue
			}
			for s, al := range alleles {
				if known := key.Get(k, s); known != genotype.Unknown {
					report.add(known, imputed.Get(t, s), al)
				}
			}
		}
		return report
	}, func(x, y interface{}) interface{} {
		rx := x.(*Report)
		rx.merge(y.(*Report))
		return rx
	}).(*Report)
	report.correlation()
	return report, nil
}

// Accuracy returns the proportion of imputed hidden calls that are correct.
func (r *Report) Accuracy() float64 {
	correct, imputed := 0, 0
	for i := range r.Counts {
		correct += r.Counts[i][i]
		imputed += r.Counts[i][Total] - r.Counts[i][Unimputed]
	}
	return float64(correct) / float64(imputed)
}

// Write prints the report as a tab-separated header line and a value
// line.
func (r *Report) Write(w io.Writer) error {
	var buf []byte
	for i, name := range classNames {
		buf = append(buf, "Num"...)
		buf = append(buf, name...)
		for j := 0; j < 3; j++ {
			buf = append(buf, '\t')
			if i == j {
				buf = append(buf, "Correct"...)
				buf = append(buf, name...)
			} else {
				buf = append(buf, name...)
				buf = append(buf, "To"...)
				buf = append(buf, classNames[j]...)
			}
		}
		buf = append(buf, "\tUnimp"...)
		buf = append(buf, name...)
		buf = append(buf, '\t')
	}
	buf = append(buf, "R2\n"...)
	for i := range r.Counts {
		buf = strconv.AppendInt(buf, int64(r.Counts[i][Total]), 10)
		for j := 0; j <= Unimputed; j++ {
			buf = append(buf, '\t')
			buf = strconv.AppendInt(buf, int64(r.Counts[i][j]), 10)
		}
		buf = append(buf, '\t')
	}
	buf = strconv.AppendFloat(buf, r.R2, 'g', 8, 64)
	buf = append(buf, '\n')
	_, err := w.Write(buf)
	return err
}

// A MaskedSummary counts the outcomes of imputing the calls that
// differ between an original and a masked matrix.
type MaskedSummary struct {
	Gaps, Unimputed, Hets, Correct, Errors int
}

/*
CompareMasked compares the imputed calls against the original calls
at all positions where the masked matrix differs from the original.
Disagreements involving a heterozygous call are counted as Hets
rather than Errors. Taxa of masked and imputed are matched by name
with the taxa of original.
*/
func CompareMasked(original, masked, imputed *genotype.Matrix) (summary MaskedSummary, err error) {
	if !original.SameSites(masked) || !original.SameSites(imputed) {
		return summary, ErrSiteMismatch
	}
	for t, name := range imputed.Taxa {
		o, m := original.TaxonIndex(name), masked.TaxonIndex(name)
		if o < 0 || m < 0 {
			return summary, fmt.Errorf("taxon %v missing from original or masked matrix", name)
		}
		for s := 0; s < imputed.NumSites(); s++ {
			ob := original.Get(o, s)
			if ob == masked.Get(m, s) {
				continue
			}
			switch ib := imputed.Get(t, s); {
			case ib == genotype.Unknown:
				summary.Unimputed++
			case ib == genotype.Gap:
				summary.Gaps++
			case genotype.Equivalent(ib, ob):
				summary.Correct++
			case genotype.IsHeterozygous(ob) || genotype.IsHeterozygous(ib):
				summary.Hets++
			default:
				summary.Errors++
			}
		}
	}
	return summary, nil
}

// Write prints the summary as a tab-separated header line and a value
// line.
func (summary MaskedSummary) Write(w io.Writer) error {
	_, err := fmt.Fprintf(w, "Gap\tUnimp\tHets\tCorrect\tErrors\n%d\t%d\t%d\t%d\t%d\n",
		summary.Gaps, summary.Unimputed, summary.Hets, summary.Correct, summary.Errors)
	return err
}

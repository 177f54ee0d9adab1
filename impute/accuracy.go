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
	"bufio"
	"fmt"
	"io"
	"strconv"
)

// Accuracy counts how often the calls implied by the chosen donors
// agree with calls that were known before imputation.
type Accuracy struct {
	Right, Wrong int

	// SiteCalls and SiteErrors hold the right and wrong counts per site.
	SiteCalls, SiteErrors []int
}

// NewAccuracy returns zeroed counters for the given number of sites.
func NewAccuracy(sites int) *Accuracy {
	return &Accuracy{SiteCalls: make([]int, sites), SiteErrors: make([]int, sites)}
}

func (a *Accuracy) right(site int) {
	a.Right++
	a.SiteCalls[site]++
}

func (a *Accuracy) wrong(site int) {
	a.Wrong++
	a.SiteErrors[site]++
}

// Merge adds the counts of other to a.
func (a *Accuracy) Merge(other *Accuracy) {
	a.MergeAt(other, 0)
}

// MergeAt adds the counts of other to a, with the sites of other
// starting at site first of a.
func (a *Accuracy) MergeAt(other *Accuracy, first int) {
	a.Right += other.Right
	a.Wrong += other.Wrong
	for i, n := range other.SiteCalls {
		a.SiteCalls[first+i] += n
	}
	for i, n := range other.SiteErrors {
		a.SiteErrors[first+i] += n
	}
}

// ErrorRate returns Wrong/(Right+Wrong), or 0 without any comparisons.
func (a *Accuracy) ErrorRate() float64 {
	total := a.Right + a.Wrong
	if total == 0 {
		return 0
	}
	return float64(a.Wrong) / float64(total)
}

// WriteSites writes the per-site counts of all sites with at least
// one comparison as tab-separated lines.
func (a *Accuracy) WriteSites(w io.Writer, siteNames []string) error {
	out := bufio.NewWriter(w)
	if _, err := fmt.Fprintln(out, "site\tname\tright\twrong\terror-rate"); err != nil {
		return err
	}
	var buf []byte
	for i := range a.SiteCalls {
		right, wrong := a.SiteCalls[i], a.SiteErrors[i]
		if right+wrong == 0 {
			continue
		}
		buf = buf[:0]
		buf = strconv.AppendInt(buf, int64(i), 10)
		buf = append(buf, '\t')
		buf = append(buf, siteNames[i]...)
		buf = append(buf, '\t')
		buf = strconv.AppendInt(buf, int64(right), 10)
		buf = append(buf, '\t')
		buf = strconv.AppendInt(buf, int64(wrong), 10)
		buf = append(buf, '\t')
		buf = strconv.AppendFloat(buf, float64(wrong)/float64(right+wrong), 'g', 6, 64)
		buf = append(buf, '\n')
		if _, err := out.Write(buf); err != nil {
			return err
		}
	}
	return out.Flush()
}

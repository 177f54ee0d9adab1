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

package genotype

import (
	"github.com/exascience/pargo/parallel"
)

// Site describes one genotyped position.
type Site struct {
	Name       string
	Chromosome string
	Position   int32
}

// Alleles holds the most and second-most frequent allele of a site.
// Minor is AlleleUnknown for monomorphic sites.
type Alleles struct {
	Major, Minor byte
}

// Monomorphic returns true if the site has no minor allele.
func (a Alleles) Monomorphic() bool {
	return a.Minor == AlleleUnknown
}

/*
A Matrix is a taxa by sites grid of diploid genotype calls.

Rows are stored per taxon, so that work on different taxa can
proceed in parallel without synchronization.
*/
type Matrix struct {
	Taxa  []string
	Sites []Site
	calls [][]byte
}

// NewMatrix returns a matrix with all calls set to Unknown.
func NewMatrix(taxa []string, sites []Site) *Matrix {
	calls := make([][]byte, len(taxa))
	for t := range calls {
		row := make([]byte, len(sites))
		for s := range row {
			row[s] = Unknown
		}
		calls[t] = row
	}
	return &Matrix{Taxa: taxa, Sites: sites, calls: calls}
}

// NewMatrixFromRows returns a matrix that takes ownership of the given
// rows. Each row must have one call per site.
func NewMatrixFromRows(taxa []string, sites []Site, rows [][]byte) *Matrix {
	if len(rows) != len(taxa) {
		panic("number of rows does not match number of taxa")
	}
	for _, row := range rows {
		if len(row) != len(sites) {
			panic("row length does not match number of sites")
		}
	}
	return &Matrix{Taxa: taxa, Sites: sites, calls: rows}
}

// NumTaxa returns the number of taxa.
func (m *Matrix) NumTaxa() int { return len(m.Taxa) }

// NumSites returns the number of sites.
func (m *Matrix) NumSites() int { return len(m.Sites) }

// Get returns the call of a taxon at a site.
func (m *Matrix) Get(taxon, site int) byte { return m.calls[taxon][site] }

// Set overwrites the call of a taxon at a site.
func (m *Matrix) Set(taxon, site int, call byte) { m.calls[taxon][site] = call }

// Position returns the physical position of a site.
func (m *Matrix) Position(site int) int32 { return m.Sites[site].Position }

// TaxonIndex returns the row of the named taxon, or -1.
func (m *Matrix) TaxonIndex(name string) int {
	for i, taxon := range m.Taxa {
		if taxon == name {
			return i
		}
	}
	return -1
}

// CountUnknown returns the number of Unknown calls of a taxon.
func (m *Matrix) CountUnknown(taxon int) (count int) {
	for _, call := range m.calls[taxon] {
		if call == Unknown {
			count++
		}
	}
	return count
}

// Clone returns a deep copy of the matrix. Taxa and site descriptions
// are shared.
func (m *Matrix) Clone() *Matrix {
	calls := make([][]byte, len(m.calls))
	parallel.Range(0, len(calls), 0, func(low, high int) {
		for t := low; t < high; t++ {
			calls[t] = append([]byte(nil), m.calls[t]...)
		}
	})
	return &Matrix{Taxa: m.Taxa, Sites: m.Sites, calls: calls}
}

// A SiteRange is a range of site indices, inclusive on both ends.
type SiteRange struct {
	First, Last int
}

// Chromosomes returns the ranges of consecutive sites that lie on the
// same chromosome, in site order.
func (m *Matrix) Chromosomes() (ranges []SiteRange) {
	for s := range m.Sites {
		if s == 0 || m.Sites[s].Chromosome != m.Sites[s-1].Chromosome {
			ranges = append(ranges, SiteRange{First: s, Last: s})
		} else {
			ranges[len(ranges)-1].Last = s
		}
	}
	return ranges
}

// Slice returns a matrix over the sites of r. The result shares its
// calls with m, so that Set on the result modifies m.
func (m *Matrix) Slice(r SiteRange) *Matrix {
	calls := make([][]byte, len(m.calls))
	for t, row := range m.calls {
		calls[t] = row[r.First : r.Last+1 : r.Last+1]
	}
	return &Matrix{Taxa: m.Taxa, Sites: m.Sites[r.First : r.Last+1 : r.Last+1], calls: calls}
}

// SameSites returns true if both matrices describe the same sites in
// the same order.
func (m *Matrix) SameSites(other *Matrix) bool {
	if len(m.Sites) != len(other.Sites) {
		return false
	}
	for i, site := range m.Sites {
		o := other.Sites[i]
		if site.Chromosome != o.Chromosome || site.Position != o.Position {
			return false
		}
	}
	return true
}

// Alleles determines the major and minor allele of each site from the
// allele counts over all taxa. Unknown alleles are not counted. Ties
// are broken in favor of the lower allele code.
func (m *Matrix) Alleles() []Alleles {
	result := make([]Alleles, len(m.Sites))
	parallel.Range(0, len(result), 0, func(low, high int) {
		for s := low; s < high; s++ {
			var counts [NumAlleles]int
			for _, row := range m.calls {
				a, b := Split(row[s])
				if a < NumAlleles {
					counts[a]++
				}
				if b < NumAlleles {
					counts[b]++
				}
			}
			result[s] = allelesFromCounts(&counts)
		}
	})
	return result
}

func allelesFromCounts(counts *[NumAlleles]int) Alleles {
	major, minor := AlleleUnknown, AlleleUnknown
	for a := byte(0); a < NumAlleles; a++ {
		c := counts[a]
		if c == 0 {
			continue
		}
		switch {
		case major == AlleleUnknown || c > counts[major]:
			minor, major = major, a
		case minor == AlleleUnknown || c > counts[minor]:
			minor = a
		}
	}
	return Alleles{Major: major, Minor: minor}
}

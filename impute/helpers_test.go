package impute

import (
	"fmt"
	"math/rand"

	"github.com/exascience/elimpute/genotype"
)

// matrixFromStrings builds a matrix with one taxon per string, one
// IUPAC character per site, and '?' for unknown calls. Sites are 100
// base pairs apart.
func matrixFromStrings(rows ...string) *genotype.Matrix {
	n := len(rows[0])
	sites := make([]genotype.Site, n)
	for s := range sites {
		sites[s] = genotype.Site{Name: fmt.Sprintf("S%d", s), Chromosome: "1", Position: int32(s*100 + 1)}
	}
	taxa := make([]string, len(rows))
	calls := make([][]byte, len(rows))
	for t, row := range rows {
		if len(row) != n {
			panic("rows of different length")
		}
		taxa[t] = fmt.Sprintf("T%d", t)
		calls[t] = make([]byte, n)
		for s := 0; s < n; s++ {
			if row[s] == '?' {
				calls[t][s] = genotype.Unknown
			} else {
				calls[t][s] = genotype.FromIUPAC(row[s])
			}
		}
	}
	return genotype.NewMatrixFromRows(taxa, sites, calls)
}

func matrixString(m *genotype.Matrix, taxon int) string {
	buf := make([]byte, m.NumSites())
	for s := range buf {
		if call := m.Get(taxon, s); call == genotype.Unknown {
			buf[s] = '?'
		} else {
			buf[s] = genotype.IUPAC(call)
		}
	}
	return string(buf)
}

func randomHaplotypes(rnd *rand.Rand, taxa, sites int) []string {
	rows := make([]string, taxa)
	for t := range rows {
		buf := make([]byte, sites)
		for s := range buf {
			if rnd.Intn(2) == 0 {
				buf[s] = 'A'
			} else {
				buf[s] = 'C'
			}
		}
		rows[t] = string(buf)
	}
	return rows
}

func repeat(c byte, n int) string {
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = c
	}
	return string(buf)
}

func testConfig() Config {
	config := DefaultConfig()
	config.MinMinorCount = 1
	config.MinTestSites = 1
	config.MinSitesPresent = 1
	return config
}

// newTaxonContext prepares a taxon the way Run does, without stitching.
func newTaxonContext(imp *Imputer, taxon int) *taxonContext {
	views := imp.target.BitViews(imp.targetAlleles)
	tc := &taxonContext{
		imp:      imp,
		taxon:    taxon,
		accuracy: NewAccuracy(imp.sites),
		result:   &TaxonResult{Taxon: taxon, DonorBlocks: make(map[int]int)},
	}
	tc.original = make([]byte, imp.sites)
	for s := range tc.original {
		tc.original[s] = imp.target.Get(taxon, s)
	}
	tc.target = imp.masks.MaskTarget(views[taxon])
	tc.dist = NewDistanceMatrix(imp.donorViews, tc.target)
	return tc
}

package impute

import (
	"context"
	"errors"
	"testing"

	"github.com/exascience/elimpute/genotype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoChromosomes puts the sites from 64 on a second chromosome, with
// positions starting over.
func twoChromosomes(m *genotype.Matrix) {
	for s := 64; s < m.NumSites(); s++ {
		m.Sites[s] = genotype.Site{Name: m.Sites[s].Name, Chromosome: "2", Position: int32((s-64)*100 + 1)}
	}
}

func TestImputeChromosomes(t *testing.T) {
	const sites = 128
	d0 := make([]byte, sites)
	d1 := make([]byte, sites)
	full := make([]byte, sites)
	target := make([]byte, sites)
	for s := range d0 {
		if s%3 == 0 {
			d0[s], d1[s] = 'C', 'A'
		} else {
			d0[s], d1[s] = 'A', 'C'
		}
		if s < 64 {
			full[s] = d0[s]
		} else {
			full[s] = d1[s]
		}
		if s%3 == 1 {
			target[s] = '?'
		} else {
			target[s] = full[s]
		}
	}
	donors := matrixFromStrings(string(d0), string(d1))
	targets := matrixFromStrings(string(target), string(target[:64])+repeat('?', 64))
	twoChromosomes(donors)
	twoChromosomes(targets)

	config := testConfig()
	config.Hybrid = false
	config.MinMinorCount = 30
	config.MinTestSites = 20
	config.MinSitesPresent = 30

	var chromosomes []string
	result, err := ImputeChromosomes(context.Background(), donors, targets, config, func(chromosome string, imp *Imputer) {
		chromosomes = append(chromosomes, chromosome)
		assert.Equal(t, 64, imp.NumSites())
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, chromosomes)

	assert.Equal(t, string(full), matrixString(targets, 0))
	assert.Equal(t, string(full[:64])+repeat('?', 64), matrixString(targets, 1))

	tr := result.Taxa[0]
	assert.False(t, tr.Skipped)
	assert.Equal(t, 0, tr.Decoded)
	assert.Equal(t, 0, tr.Wrong)
	assert.Equal(t, 2, tr.Windows)
	assert.Equal(t, 1, tr.DonorBlocks[0])
	assert.Equal(t, 1, tr.DonorBlocks[1])
	assert.False(t, result.Taxa[1].Skipped, "taxon 1 is imputed on the first chromosome")
	assert.Equal(t, 64+21, result.Taxa[1].UnknownBefore)
	assert.Equal(t, 64, result.Taxa[1].UnknownAfter)

	require.Len(t, result.Accuracy.SiteCalls, sites)
	assert.Equal(t, 1, result.Accuracy.SiteCalls[65], "second chromosome counts at its own sites")
	assert.Equal(t, 2, result.Accuracy.SiteCalls[0])
	assert.Equal(t, 0, result.Accuracy.Wrong)
}

func TestImputeChromosomesSiteMismatch(t *testing.T) {
	donors := matrixFromStrings(repeat('A', 128))
	targets := matrixFromStrings(repeat('A', 128))
	twoChromosomes(donors)
	_, err := ImputeChromosomes(context.Background(), donors, targets, testConfig(), nil)
	assert.True(t, errors.Is(err, ErrSiteMismatch))
}

package impute

import (
	"testing"

	"github.com/exascience/elimpute/genotype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCarry(t *testing.T) {
	good := NewInbred(0, 1, 0, 0, 0, 100, 0)
	bad := NewInbred(0, 2, 0, 0, 0, 100, 50)
	hyps := [][]*Hypothesis{
		nil,
		{good},
		{bad, good},
		nil,
		{good},
		{bad},
	}
	isGood := func(h *Hypothesis) bool { return h.ErrorRate() < 0.02 }
	assert.Equal(t, []int{-1, 1, 1, 1, 4, 4}, CarryForward(hyps, isGood))
	assert.Equal(t, []int{1, 1, 4, 4, 4, -1}, CarryBackward(hyps, isGood))
	assert.Empty(t, CarryForward(nil, isGood))
}

func TestStitchFillsBetweenAgreeingBlocks(t *testing.T) {
	// the middle blocks have no target calls, so no hypotheses of their own
	const sites = 64 * 4
	donor := make([]byte, sites)
	other := make([]byte, sites)
	target := make([]byte, sites)
	for s := range donor {
		if s%3 == 0 {
			donor[s], other[s] = 'C', 'A'
		} else {
			donor[s], other[s] = 'A', 'C'
		}
		if s < 64 || s >= 192 {
			target[s] = donor[s]
		} else {
			target[s] = '?'
		}
	}
	donors := matrixFromStrings(string(donor), string(other))
	targets := matrixFromStrings(string(target))
	config := testConfig()
	config.MinMinorCount = 10
	config.MinTestSites = 20
	imp, err := NewImputer(donors, targets, config)
	assert.NoError(t, err)
	tc := newTaxonContext(imp, 0)
	hyps := tc.searchBlocks()
	assert.Empty(t, hyps[1])
	assert.Empty(t, hyps[2])
	tc.stitch(hyps)
	assert.Equal(t, string(donor), matrixString(targets, 0))
	assert.Equal(t, 4, tc.result.DonorBlocks[0])
}

// crossoverPanel returns two complementary donors over six blocks and
// a target that follows the first donor on blocks 0-2 and the second
// on blocks 3-5, with every third call missing.
func crossoverPanel() (donors, targets *genotype.Matrix, truth string) {
	const sites = 64 * 6
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
		if s < 192 {
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
	return matrixFromStrings(string(d0), string(d1)), matrixFromStrings(string(target)), string(full)
}

func crossoverConfig() Config {
	config := testConfig()
	config.Hybrid = false
	config.MinMinorCount = 30
	config.MinTestSites = 20
	return config
}

func TestStitchDecodesCrossoverBetweenInbredBlocks(t *testing.T) {
	donors, targets, truth := crossoverPanel()
	imp, err := NewImputer(donors, targets, crossoverConfig())
	require.NoError(t, err)
	tc := newTaxonContext(imp, 0)
	hyps := tc.searchBlocks()
	require.Len(t, hyps, 6)
	for _, b := range []int{0, 1} {
		require.NotEmpty(t, hyps[b], "block %v", b)
		assert.Equal(t, 0, hyps[b][0].Donor1)
	}
	assert.Empty(t, hyps[2], "the window of block 2 spans the crossover")
	for _, b := range []int{3, 4, 5} {
		require.NotEmpty(t, hyps[b], "block %v", b)
		assert.Equal(t, 1, hyps[b][0].Donor1)
	}

	tc.stitch(hyps)
	assert.Equal(t, truth, matrixString(targets, 0))
	assert.Equal(t, 1, tc.result.Decoded)
	assert.Equal(t, 0, tc.result.DecodeAbandoned)
	assert.Equal(t, 0, tc.result.Wrong)
	assert.Equal(t, 3, tc.result.DonorBlocks[0])
}

func TestStitchFallsBackWhenDecodingIsAbandoned(t *testing.T) {
	donors, targets, truth := crossoverPanel()
	config := crossoverConfig()
	config.MinInformativeSites = 1000
	imp, err := NewImputer(donors, targets, config)
	require.NoError(t, err)
	tc := newTaxonContext(imp, 0)
	tc.stitch(tc.searchBlocks())
	assert.Equal(t, 0, tc.result.Decoded)
	assert.Equal(t, 1, tc.result.DecodeAbandoned)
	// block 2 takes the hypotheses of block 1
	assert.Equal(t, truth, matrixString(targets, 0))
	assert.Equal(t, 3, tc.result.DonorBlocks[0])
	assert.Equal(t, 3, tc.result.DonorBlocks[1])
}

func TestStitchAbandonedHybridTakesLeftBlock(t *testing.T) {
	donors := matrixFromStrings(repeat('A', 128), repeat('C', 128))
	targets := matrixFromStrings(repeat('A', 32) + repeat('?', 96))
	config := testConfig()
	config.MinInformativeSites = 1000
	imp, err := NewImputer(donors, targets, config)
	require.NoError(t, err)
	tc := newTaxonContext(imp, 0)
	hyps := [][]*Hypothesis{
		{NewInbred(0, 0, 0, 0, 0, 32, 0)},
		{NewHybrid(0, 0, 1, 1, 1, 1, 32, 0)},
	}
	tc.stitch(hyps)
	assert.Equal(t, 1, tc.result.DecodeAbandoned)
	assert.Equal(t, repeat('A', 128), matrixString(targets, 0))
	assert.Equal(t, 2, tc.result.DonorBlocks[0])
	assert.Zero(t, tc.result.DonorBlocks[1])
}

func TestCrossoverDonors(t *testing.T) {
	inbred := func(d int) *Hypothesis { return NewInbred(0, d, 0, 0, 0, 32, 0) }
	hybrid := func(d1, d2 int) *Hypothesis { return NewHybrid(0, d1, d2, 0, 0, 0, 32, 0) }
	pair := func(lh, rh *Hypothesis) [2]int {
		d1, d2 := crossoverDonors(lh, rh)
		return [2]int{d1, d2}
	}
	assert.Equal(t, [2]int{0, 1}, pair(inbred(0), inbred(1)))
	assert.Equal(t, [2]int{0, 2}, pair(hybrid(0, 1), hybrid(0, 2)))
	assert.Equal(t, [2]int{0, 1}, pair(inbred(0), hybrid(0, 1)))
	assert.Equal(t, [2]int{0, 1}, pair(hybrid(0, 1), inbred(0)))
	assert.False(t, hybrid(0, 1).SameDonors(hybrid(0, 2)))
	assert.False(t, inbred(0).SameDonors(hybrid(0, 1)))
	assert.True(t, hybrid(0, 1).SameDonors(hybrid(0, 1)))
}

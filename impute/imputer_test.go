package impute

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/exascience/elimpute/genotype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPureInbredMatch(t *testing.T) {
	donors := matrixFromStrings("AAAACCCC", "CCCCAAAA", "ACACACAC")
	target := matrixFromStrings("AAAA????")
	imp, err := NewImputer(donors, target, testConfig())
	require.NoError(t, err)

	tc := newTaxonContext(imp, 0)
	w, ok := ExpandWindow(tc.target.Major, tc.target.Minor, 0, 1, 10)
	require.True(t, ok)
	inbred := tc.bestInbred(w)
	require.NotEmpty(t, inbred)
	assert.Equal(t, 0, inbred[0].Donor1)
	assert.Equal(t, 0, inbred[0].Mismatches)

	result, err := imp.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "AAAACCCC", matrixString(target, 0))
	assert.Equal(t, 4, result.Accuracy.Right)
	assert.Equal(t, 0, result.Accuracy.Wrong)
	assert.Equal(t, 4, result.Imputed())
	assert.Equal(t, 1, result.Taxa[0].DonorBlocks[0])
}

func TestHybridBreakpoint(t *testing.T) {
	const sites = 100
	var d2, d3 []byte
	for s := 0; s < sites; s++ {
		if s%2 == 0 {
			d2 = append(d2, 'A')
		} else {
			d2 = append(d2, 'C')
		}
		if s%4 < 2 {
			d3 = append(d3, 'A')
		} else {
			d3 = append(d3, 'C')
		}
	}
	donors := matrixFromStrings(repeat('A', sites), repeat('C', sites), string(d2), string(d3))
	target := matrixFromStrings(repeat('A', 50) + repeat('C', 50))
	config := DefaultConfig()
	config.MinTestSites = 20
	config.MinSitesPresent = 1
	imp, err := NewImputer(donors, target, config)
	require.NoError(t, err)

	tc := newTaxonContext(imp, 0)
	w, ok := ExpandWindow(tc.target.Major, tc.target.Minor, 0, config.MinMinorCount, config.MajorMinorRatio)
	require.True(t, ok)
	inbred := tc.bestInbred(w)
	require.NotEmpty(t, inbred)
	assert.Greater(t, inbred[0].ErrorRate(), config.MaxInbredError)

	hyps := tc.searchBlocks()
	require.NotEmpty(t, hyps[0])
	h := hyps[0][0]
	assert.Equal(t, Hybrid, h.Kind)
	assert.Equal(t, 0, h.Donor1)
	assert.Equal(t, 1, h.Donor2)
	assert.Equal(t, 0, h.Mismatches)

	path, ok := tc.decodePath(h)
	require.True(t, ok)
	for i, s := range path.sites {
		if s < 50 {
			assert.Equal(t, Donor1Homozygous, path.states[i], "site %v", s)
		} else {
			assert.Equal(t, Donor2Homozygous, path.states[i], "site %v", s)
		}
	}

	result, err := imp.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Taxa[0].Decoded)
	assert.Equal(t, repeat('A', 50)+repeat('C', 50), matrixString(target, 0))
}

func TestNoOverwrite(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	donorRows := randomHaplotypes(rnd, 12, 300)
	var targetRows []string
	for i := 0; i < 6; i++ {
		buf := []byte(donorRows[i])
		for s := range buf {
			switch rnd.Intn(10) {
			case 0, 1, 2, 3:
				buf[s] = '?'
			case 4:
				buf[s] = 'G'
			case 5:
				buf[s] = 'M'
			}
		}
		targetRows = append(targetRows, string(buf))
	}
	donors := matrixFromStrings(donorRows...)
	target := matrixFromStrings(targetRows...)
	before := target.Clone()
	config := testConfig()
	config.MinMinorCount = 5
	config.MinTestSites = 10
	imp, err := NewImputer(donors, target, config)
	require.NoError(t, err)
	_, err = imp.Run(context.Background())
	require.NoError(t, err)
	for tx := 0; tx < target.NumTaxa(); tx++ {
		for s := 0; s < target.NumSites(); s++ {
			if call := before.Get(tx, s); call != genotype.Unknown && target.Get(tx, s) != call {
				t.Errorf("known call of taxon %v at site %v changed from %v to %v",
					tx, s, genotype.String(call), genotype.String(target.Get(tx, s)))
			}
		}
	}
}

func TestSelfConsistency(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	donorRows := randomHaplotypes(rnd, 8, 256)
	buf := []byte(donorRows[3])
	for s := range buf {
		if s%2 == 1 {
			buf[s] = '?'
		}
	}
	donors := matrixFromStrings(donorRows...)
	target := matrixFromStrings(string(buf))
	config := testConfig()
	config.MinMinorCount = 10
	config.MinTestSites = 10
	imp, err := NewImputer(donors, target, config)
	require.NoError(t, err)
	result, err := imp.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, donorRows[3], matrixString(target, 0))
	assert.Zero(t, result.Accuracy.Wrong)
	assert.Equal(t, 128, result.Accuracy.Right)
}

func TestErrorRateBounds(t *testing.T) {
	rnd := rand.New(rand.NewSource(3))
	donorRows := randomHaplotypes(rnd, 10, 400)
	targetRows := randomHaplotypes(rnd, 3, 400)
	config := testConfig()
	config.MinMinorCount = 8
	config.MinTestSites = 30
	config.MaxHypotheses = 4
	imp, err := NewImputer(matrixFromStrings(donorRows...), matrixFromStrings(targetRows...), config)
	require.NoError(t, err)
	for tx := range targetRows {
		tc := newTaxonContext(imp, tx)
		for b := 0; b < tc.dist.Blocks(); b++ {
			w, ok := ExpandWindow(tc.target.Major, tc.target.Minor, b, config.MinMinorCount, config.MajorMinorRatio)
			if !ok {
				continue
			}
			inbred := tc.bestInbred(w)
			for _, list := range [][]*Hypothesis{inbred, tc.bestHybrid(w, inbred)} {
				if len(list) > config.MaxHypotheses {
					t.Errorf("%v hypotheses, expected at most %v", len(list), config.MaxHypotheses)
				}
				for i, h := range list {
					if rate := h.ErrorRate(); rate < 0 || rate > 1 {
						t.Errorf("error rate %v out of bounds", rate)
					}
					if h.TestSites < config.MinTestSites {
						t.Errorf("hypothesis with %v test sites", h.TestSites)
					}
					if h.FocusBlock < h.StartBlock || h.FocusBlock > h.EndBlock {
						t.Errorf("focus block outside window: %v", h)
					}
					if i > 0 && list[i-1].ErrorRate() > h.ErrorRate() {
						t.Error("hypotheses not sorted by error rate")
					}
				}
			}
		}
	}
}

func TestSkipsSparseTaxa(t *testing.T) {
	donors := matrixFromStrings("AAAACCCC", "CCCCAAAA")
	target := matrixFromStrings("A???????")
	config := testConfig()
	config.MinSitesPresent = 2
	imp, err := NewImputer(donors, target, config)
	require.NoError(t, err)
	result, err := imp.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Taxa[0].Skipped)
	assert.Equal(t, "A???????", matrixString(target, 0))
}

func TestCancelledRun(t *testing.T) {
	donors := matrixFromStrings("AAAACCCC", "CCCCAAAA", "ACACACAC")
	target := matrixFromStrings("AAAA????", "CCCC????")
	imp, err := NewImputer(donors, target, testConfig())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result, err := imp.Run(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
	for _, tr := range result.Taxa {
		assert.True(t, tr.Cancelled)
	}
	assert.Equal(t, "AAAA????", matrixString(target, 0))
	assert.Equal(t, "CCCC????", matrixString(target, 1))
}

func TestSiteMismatch(t *testing.T) {
	_, err := NewImputer(matrixFromStrings("AAAA"), matrixFromStrings("AAA"), testConfig())
	assert.True(t, errors.Is(err, ErrSiteMismatch))
	_, err = NewImputer(matrixFromStrings("AAAA"), matrixFromStrings("AAAA"), Config{})
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}

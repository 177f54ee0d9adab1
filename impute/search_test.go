package impute

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBestKBounded(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	best := newBestK(5)
	var all []*Hypothesis
	for d := 0; d < 100; d++ {
		h := NewInbred(0, d, 0, 0, 0, 100+rnd.Intn(50), rnd.Intn(20))
		all = append(all, h)
		best.offer(h)
		if best.Len() > 5 {
			t.Fatalf("best-K holds %v hypotheses", best.Len())
		}
	}
	got := best.sorted()
	require.Len(t, got, 5)
	for i := 1; i < len(got); i++ {
		if less(got[i], got[i-1]) {
			t.Errorf("hypotheses %v and %v out of order", got[i-1], got[i])
		}
	}
	// nothing outside the result is better than its worst entry
	for _, h := range all {
		if less(h, got[4]) {
			found := false
			for _, g := range got {
				found = found || g == h
			}
			if !found {
				t.Errorf("better hypothesis %v was evicted", h)
			}
		}
	}
}

func TestBestKTieBreak(t *testing.T) {
	best := newBestK(2)
	best.offer(NewInbred(0, 7, 0, 0, 0, 100, 1))
	best.offer(NewInbred(0, 3, 0, 0, 0, 200, 2))
	best.offer(NewInbred(0, 5, 0, 0, 0, 50, 0))
	best.offer(NewInbred(0, 1, 0, 0, 0, 300, 3))
	got := best.sorted()
	require.Len(t, got, 2)
	assert.Equal(t, 5, got[0].Donor1)
	// equal rates of 1% are ordered by donor index
	assert.Equal(t, 1, got[1].Donor1)
}

func TestErrorRateWithoutTestSites(t *testing.T) {
	h := NewHybrid(0, 1, 2, 0, 0, 0, 0, 0)
	assert.True(t, math.IsInf(h.ErrorRate(), 1))
	assert.True(t, less(NewInbred(0, 9, 0, 0, 0, 10, 10), h))
	assert.Panics(t, func() { NewHybrid(0, 1, 1, 0, 0, 0, 0, 0) })
}

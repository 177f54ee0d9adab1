package impute

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stepObservations(n, change int) ([]Observation, []int32) {
	obs := make([]Observation, n)
	positions := make([]int32, n)
	for i := range obs {
		if i >= change {
			obs[i] = MatchesDonor2
		}
		positions[i] = int32(i*100 + 1)
	}
	return obs, positions
}

func TestDecodeStepChange(t *testing.T) {
	obs, positions := stepObservations(60, 30)
	path := NewDecoder().Decode(obs, positions, 100)
	require.Len(t, path, 60)
	for i, state := range path {
		if i < 30 {
			assert.Equal(t, Donor1Homozygous, state, "site %v", i)
		} else {
			assert.Equal(t, Donor2Homozygous, state, "site %v", i)
		}
	}
}

func TestDecodeIsolatedNoise(t *testing.T) {
	obs, positions := stepObservations(40, 40)
	obs[20] = Ambiguous
	for i, state := range NewDecoder().Decode(obs, positions, 100) {
		assert.Equal(t, Donor1Homozygous, state, "site %v", i)
	}
}

func TestDecodeEdgeCases(t *testing.T) {
	dec := NewDecoder()
	assert.Nil(t, dec.Decode(nil, nil, 100))
	assert.Equal(t, []AncestryState{Donor2Homozygous}, dec.Decode([]Observation{MatchesDonor2}, []int32{5}, 0))
	// repeated positions are treated as one base pair apart
	path := dec.Decode([]Observation{MatchesDonor1, MatchesDonor1}, []int32{7, 7}, 1)
	assert.Equal(t, []AncestryState{Donor1Homozygous, Donor1Homozygous}, path)
}

func TestDecodeTiesPreferLowerState(t *testing.T) {
	dec := &Decoder{MaxTransition: 0.2}
	for i := 0; i < NumStates; i++ {
		dec.Initial[i] = 1.0 / NumStates
		for j := 0; j < NumStates; j++ {
			dec.Transition[i][j] = 0.01
		}
		for o := 0; o < NumObservations; o++ {
			dec.Emission[i][o] = 1.0 / NumObservations
		}
	}
	obs, positions := stepObservations(10, 5)
	for _, state := range dec.Decode(obs, positions, 100) {
		assert.Equal(t, Donor1Homozygous, state)
	}
}

func TestLogTransitions(t *testing.T) {
	dec := NewDecoder()
	var logTrans [NumStates][NumStates]float64
	for _, distance := range []float64{0.01, 1, 50, 1e6} {
		dec.logTransitions(distance, &logTrans)
		for i := 0; i < NumStates; i++ {
			sum := 0.0
			for j := 0; j < NumStates; j++ {
				p := math.Exp(logTrans[i][j])
				if i != j {
					assert.LessOrEqual(t, p, dec.MaxTransition+1e-12)
				}
				sum += p
			}
			assert.InDelta(t, 1, sum, 1e-9, "row %v at distance %v", i, distance)
		}
	}
}

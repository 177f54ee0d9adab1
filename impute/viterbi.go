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
	"math"
	"sync"
)

// An AncestryState tells which donor a target inherits from at a site.
type AncestryState uint8

// Ancestry states, ordered from donor 1 to donor 2.
const (
	Donor1Homozygous AncestryState = iota
	Donor1Leaning
	Heterozygous
	Donor2Leaning
	Donor2Homozygous
)

// NumStates is the number of ancestry states.
const NumStates = 5

func (s AncestryState) String() string {
	switch s {
	case Donor1Homozygous:
		return "donor1"
	case Donor1Leaning:
		return "donor1-leaning"
	case Heterozygous:
		return "heterozygous"
	case Donor2Leaning:
		return "donor2-leaning"
	case Donor2Homozygous:
		return "donor2"
	default:
		return "invalid"
	}
}

// An Observation classifies a target call against two donor calls.
type Observation uint8

// Observation classes.
const (
	MatchesDonor1 Observation = iota
	Ambiguous
	MatchesDonor2
)

// NumObservations is the number of observation classes.
const NumObservations = 3

/*
A Decoder finds the most probable ancestry state path for a sequence
of observations at increasing physical positions.

Off-diagonal transition probabilities are scaled by the distance to
the previous site, measured in units of the average segment length,
and capped at MaxTransition. The diagonal takes the remaining
probability mass.
*/
type Decoder struct {
	Transition    [NumStates][NumStates]float64
	Emission      [NumStates][NumObservations]float64
	Initial       [NumStates]float64
	MaxTransition float64
}

// NewDecoder returns a decoder with the default model for a
// heterozygosity probability of 0.5.
func NewDecoder() *Decoder {
	const probHeterozygous = 0.5
	const probHomozygous = (1 - probHeterozygous) / 2
	return &Decoder{
		Transition: [NumStates][NumStates]float64{
			{.999, .0001, .0003, .0001, .0005},
			{.0002, .999, .00005, .00005, .0002},
			{.0002, .00005, .999, .00005, .0002},
			{.0002, .00005, .00005, .999, .0002},
			{.0005, .0001, .0003, .0001, .999},
		},
		Emission: [NumStates][NumObservations]float64{
			{.98, .001, .001},
			{.6, .2, .2},
			{.4, .2, .4},
			{.2, .2, .6},
			{.001, .001, .98},
		},
		Initial: [NumStates]float64{
			probHomozygous,
			.25 * probHeterozygous,
			.5 * probHeterozygous,
			.25 * probHeterozygous,
			probHomozygous,
		},
		MaxTransition: 0.2,
	}
}

// logTransitions fills out with the log transition probabilities for
// the given relative distance.
func (dec *Decoder) logTransitions(relativeDistance float64, out *[NumStates][NumStates]float64) {
	for i := 0; i < NumStates; i++ {
		stay := 1.0
		for j := 0; j < NumStates; j++ {
			if i == j {
				continue
			}
			p := dec.Transition[i][j] * relativeDistance
			if p > dec.MaxTransition {
				p = dec.MaxTransition
			}
			stay -= p
			out[i][j] = math.Log(p)
		}
		out[i][i] = math.Log(stay)
	}
}

type viterbiBuffers struct {
	back [][NumStates]uint8
}

var viterbiPool = sync.Pool{New: func() interface{} {
	return new(viterbiBuffers)
}}

// Decode returns the most probable state for each observation.
// positions holds the physical position of each observation, and
// segment the expected distance between recombination units. Ties
// are resolved in favor of the lower state.
func (dec *Decoder) Decode(obs []Observation, positions []int32, segment float64) []AncestryState {
	n := len(obs)
	if n == 0 {
		return nil
	}
	if segment < 1 {
		segment = 1
	}
	var logEmission [NumStates][NumObservations]float64
	for s := range logEmission {
		for o := range logEmission[s] {
			logEmission[s][o] = math.Log(dec.Emission[s][o])
		}
	}

	buffers := viterbiPool.Get().(*viterbiBuffers)
	defer viterbiPool.Put(buffers)
	if cap(buffers.back) < n {
		buffers.back = make([][NumStates]uint8, n)
	}
	back := buffers.back[:n]

	var score, next [NumStates]float64
	for s := 0; s < NumStates; s++ {
		score[s] = math.Log(dec.Initial[s]) + logEmission[s][obs[0]]
	}
	var logTrans [NumStates][NumStates]float64
	for i := 1; i < n; i++ {
		distance := float64(positions[i] - positions[i-1])
		if distance < 1 {
			distance = 1
		}
		dec.logTransitions(distance/segment, &logTrans)
		for to := 0; to < NumStates; to++ {
			best, from := math.Inf(-1), 0
			for s := 0; s < NumStates; s++ {
				if v := score[s] + logTrans[s][to]; v > best {
					best, from = v, s
				}
			}
			next[to] = best + logEmission[to][obs[i]]
			back[i][to] = uint8(from)
		}
		score = next
	}

	last, best := 0, math.Inf(-1)
	for s := 0; s < NumStates; s++ {
		if score[s] > best {
			best, last = score[s], s
		}
	}
	path := make([]AncestryState, n)
	path[n-1] = AncestryState(last)
	for i := n - 1; i > 0; i-- {
		path[i-1] = AncestryState(back[i][path[i]])
	}
	return path
}

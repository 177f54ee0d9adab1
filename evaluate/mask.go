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

/*
Package evaluate measures imputation accuracy.

A known panel is masked by hiding a random proportion of its calls,
the masked panel is imputed, and the imputed calls are compared
against the hidden ones.
*/
package evaluate

import (
	"fmt"

	"github.com/exascience/elimpute/genotype"
	"github.com/exascience/elimpute/internal"
)

// Mask hides a random proportion of the known calls of a matrix. It
// returns the masked copy, a key matrix that holds only the hidden
// calls, and the number of hidden calls. The same seed always hides
// the same calls.
func Mask(m *genotype.Matrix, proportion float64, seed int64) (masked, key *genotype.Matrix, n int, err error) {
	if proportion < 0 || proportion > 1 {
		return nil, nil, 0, fmt.Errorf("masking proportion must be in [0,1], got %v", proportion)
	}
	masked = m.Clone()
	key = genotype.NewMatrix(m.Taxa, m.Sites)
	rnd := internal.NewRand(seed)
	for t := 0; t < m.NumTaxa(); t++ {
		for s := 0; s < m.NumSites(); s++ {
			call := m.Get(t, s)
			if call == genotype.Unknown {
				continue
			}
			if rnd.Float64() < proportion {
				key.Set(t, s, call)
				masked.Set(t, s, genotype.Unknown)
				n++
			}
		}
	}
	return masked, key, n, nil
}

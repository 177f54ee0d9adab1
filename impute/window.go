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

import "github.com/exascience/elimpute/genotype"

// A Window is a range of blocks around a focus block, inclusive on both ends.
type Window struct {
	Start, Focus, End int
}

// ExpandWindow grows a window around the focus block until it holds
// at least minMinor minor alleles or minMinor*ratio major alleles of
// the target, or until it covers all blocks. The side closer to the
// focus block grows first. ok is false if the focus block holds no
// target alleles at all.
func ExpandWindow(major, minor *genotype.Bits, focus, minMinor, ratio int) (w Window, ok bool) {
	majorCount := major.BlockCardinality(focus)
	minorCount := minor.BlockCardinality(focus)
	if majorCount == 0 && minorCount == 0 {
		return Window{}, false
	}
	last := major.BlockCount() - 1
	minMajor := minMinor * ratio
	w = Window{Start: focus, Focus: focus, End: focus}
	for minorCount < minMinor && majorCount < minMajor {
		if w.Start == 0 && w.End == last {
			break
		}
		moveStart := w.End-focus > focus-w.Start
		if w.Start == 0 {
			moveStart = false
		} else if w.End == last {
			moveStart = true
		}
		var block int
		if moveStart {
			w.Start--
			block = w.Start
		} else {
			w.End++
			block = w.End
		}
		majorCount += major.BlockCardinality(block)
		minorCount += minor.BlockCardinality(block)
	}
	return w, true
}

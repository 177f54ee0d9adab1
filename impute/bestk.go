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

import "sort"

/*
A bestK collects the k best hypotheses offered to it.

It is a binary heap ordered worst first, so that the top element is
always the eviction candidate once the heap is full.
*/
type bestK struct {
	k     int
	items []*Hypothesis
}

func newBestK(k int) *bestK {
	return &bestK{k: k, items: make([]*Hypothesis, 0, k+1)}
}

func (b *bestK) Len() int { return len(b.items) }

// worst returns the current eviction candidate.
func (b *bestK) worst() *Hypothesis { return b.items[0] }

// admits returns true if a hypothesis would be kept when offered.
func (b *bestK) admits(h *Hypothesis) bool {
	return len(b.items) < b.k || less(h, b.items[0])
}

// offer adds h if it is better than the current worst entry, or if
// the heap is not yet full.
func (b *bestK) offer(h *Hypothesis) {
	if len(b.items) < b.k {
		b.items = append(b.items, h)
		b.up(len(b.items) - 1)
		return
	}
	if less(h, b.items[0]) {
		b.items[0] = h
		b.down(0)
	}
}

func (b *bestK) up(j int) {
	item := b.items[j]
	for j > 0 {
		i := (j - 1) / 2
		if !less(b.items[i], item) {
			break
		}
		b.items[j] = b.items[i]
		j = i
	}
	b.items[j] = item
}

func (b *bestK) down(i int) {
	n := len(b.items)
	item := b.items[i]
	for {
		child := 2*i + 1
		if child >= n {
			break
		}
		if right := child + 1; right < n && less(b.items[child], b.items[right]) {
			child = right
		}
		if !less(item, b.items[child]) {
			break
		}
		b.items[i] = b.items[child]
		i = child
	}
	b.items[i] = item
}

// sorted returns the collected hypotheses best first, and empties b.
func (b *bestK) sorted() []*Hypothesis {
	result := b.items
	b.items = nil
	sort.Slice(result, func(i, j int) bool { return less(result[i], result[j]) })
	return result
}

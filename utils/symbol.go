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

package utils

import (
	"strings"

	"github.com/exascience/pargo/sync"

	"github.com/exascience/elimpute/internal"
)

type symbolName string

// A Symbol is a unique pointer to a string.
type Symbol *string

func (s symbolName) Hash() uint64 {
	return internal.StringHash(string(s))
}

var symbolTable = sync.NewMap(0)

/*
Intern returns a Symbol for the given string.

It always returns the same pointer for strings that are equal, and
different pointers for strings that are not equal. The interned
string does not share memory with s, so interning substrings of
large input lines does not keep those lines alive.

It is safe for multiple goroutines to call Intern concurrently.
*/
func Intern(s string) Symbol {
	if entry, ok := symbolTable.Load(symbolName(s)); ok {
		return entry.(Symbol)
	}
	c := strings.Clone(s)
	entry, _ := symbolTable.LoadOrStore(symbolName(c), Symbol(&c))
	return entry.(Symbol)
}

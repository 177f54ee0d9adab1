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
	"bufio"
	"io"

	"github.com/klauspost/pgzip"
)

// IsGzip reports whether the buffered input starts with the gzip
// magic number, without consuming any input.
func IsGzip(buf *bufio.Reader) (bool, error) {
	magic, err := buf.Peek(2)
	if err == io.EOF || err == bufio.ErrBufferFull {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return magic[0] == 0x1f && magic[1] == 0x8b, nil
}

// HandleGzip checks if the given reader produces a gzip stream by
// looking at its first two bytes. It then either returns a parallel
// gzip reader, or returns nil and leaves the given reader unchanged.
func HandleGzip(buf *bufio.Reader) (*pgzip.Reader, error) {
	ok, err := IsGzip(buf)
	if err != nil || !ok {
		return nil, err
	}
	return pgzip.NewReader(buf)
}

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

package hapmap

import (
	"bufio"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/pgzip"

	"github.com/exascience/elimpute/utils"
)

// GzExt is the file extension of gzip-compressed HapMap files.
const GzExt = ".gz"

// InputFile is a HapMap file opened for input.
type InputFile struct {
	*bufio.Reader
	rc io.ReadCloser
	gz *pgzip.Reader
}

// OutputFile is a HapMap file opened for output.
type OutputFile struct {
	*bufio.Writer
	wc io.WriteCloser
	gz *pgzip.Writer
}

// Open a HapMap file for input.
//
// Gzip-compressed input is detected by its magic number, regardless
// of the filename extension, and decompressed in parallel. If the name is "/dev/stdin", then the input is read from
// os.Stdin.
func Open(name string) (*InputFile, error) {
	var rc io.ReadCloser
	if name == "/dev/stdin" {
		rc = os.Stdin
	} else {
		file, err := os.Open(name)
		if err != nil {
			return nil, err
		}
		rc = file
	}
	buf := bufio.NewReader(rc)
	gz, err := utils.HandleGzip(buf)
	if err != nil {
		_ = rc.Close()
		return nil, err
	}
	if gz == nil {
		return &InputFile{Reader: buf, rc: rc}, nil
	}
	return &InputFile{Reader: bufio.NewReader(gz), rc: rc, gz: gz}, nil
}

// Create a HapMap file for output.
//
// If the filename extension is .gz, the output is compressed in
// parallel. If the name is "/dev/stdout", then the output is written
// to os.Stdout.
func Create(name string) (*OutputFile, error) {
	var wc io.WriteCloser
	if name == "/dev/stdout" {
		wc = os.Stdout
	} else {
		file, err := os.Create(name)
		if err != nil {
			return nil, err
		}
		wc = file
	}
	if filepath.Ext(name) != GzExt {
		return &OutputFile{Writer: bufio.NewWriter(wc), wc: wc}, nil
	}
	gz := pgzip.NewWriter(wc)
	return &OutputFile{Writer: bufio.NewWriter(gz), wc: wc, gz: gz}, nil
}

// Close the HapMap input file.
func (input *InputFile) Close() error {
	if input.gz != nil {
		if err := input.gz.Close(); err != nil {
			return err
		}
	}
	if input.rc != os.Stdin {
		return input.rc.Close()
	}
	return nil
}

// Close the HapMap output file, flushing all buffered output first.
func (output *OutputFile) Close() error {
	if err := output.Flush(); err != nil {
		return err
	}
	if output.gz != nil {
		if err := output.gz.Close(); err != nil {
			return err
		}
	}
	if output.wc != os.Stdout {
		return output.wc.Close()
	}
	return nil
}

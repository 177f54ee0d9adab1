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
Package hapmap reads and writes genotype matrices in the HapMap text
format.

A HapMap file has one tab-separated header line followed by one line
per site. The first eleven columns describe the site, the remaining
columns hold one genotype call per taxon, either as a single IUPAC
character or as a two-letter allele pair.
*/
package hapmap

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/exascience/elimpute/genotype"
	"github.com/exascience/elimpute/internal"
	"github.com/exascience/elimpute/utils"
	"github.com/exascience/pargo/parallel"
	"github.com/exascience/pargo/pipeline"
)

// Header holds the names of the fixed HapMap columns.
var Header = []string{
	"rs#", "alleles", "chrom", "pos", "strand", "assembly#",
	"center", "protLSID", "assayLSID", "panelLSID", "QCcode",
}

// NumFixedColumns is the number of columns before the first taxon.
const NumFixedColumns = 11

// Column indices of the fixed columns that are interpreted.
const (
	nameColumn  = 0
	chromColumn = 2
	posColumn   = 3
)

// ErrUnsorted is returned for sites that are not sorted by position
// within a chromosome.
var ErrUnsorted = errors.New("sites are not sorted by position")

type siteLine struct {
	site  genotype.Site
	calls []byte
}

func parseSiteLine(line string, taxa int) (result siteLine, err error) {
	fields := strings.Split(line, "\t")
	if len(fields) != NumFixedColumns+taxa {
		return result, fmt.Errorf("expected %v columns, found %v in line starting with %q", NumFixedColumns+taxa, len(fields), fields[0])
	}
	pos, err := strconv.ParseInt(fields[posColumn], 10, 32)
	if err != nil {
		return result, fmt.Errorf("invalid position in line for site %v: %w", fields[nameColumn], err)
	}
	result.site = genotype.Site{Name: strings.Clone(fields[nameColumn]), Chromosome: *utils.Intern(fields[chromColumn]), Position: int32(pos)}
	result.calls = make([]byte, taxa)
	for t, field := range fields[NumFixedColumns:] {
		if result.calls[t], err = genotype.Parse(field); err != nil {
			return result, fmt.Errorf("site %v, taxon %v: %w", fields[nameColumn], t+1, err)
		}
	}
	return result, nil
}

// Parse reads a genotype matrix in HapMap format. Lines are parsed in
// parallel.
func Parse(reader *bufio.Reader) (*genotype.Matrix, error) {
	header, err := reader.ReadString('\n')
	if err != nil && !(err == io.EOF && header != "") {
		return nil, fmt.Errorf("missing HapMap header: %w", err)
	}
	header = strings.TrimRight(header, "\r\n")
	columns := strings.Split(header, "\t")
	if len(columns) < NumFixedColumns || columns[0] != Header[0] {
		return nil, fmt.Errorf("invalid HapMap header %q", header)
	}
	taxa := append([]string(nil), columns[NumFixedColumns:]...)

	var p pipeline.Pipeline
	p.Source(pipeline.NewScanner(reader))
	p.Add(pipeline.LimitedPar(0, pipeline.Receive(func(_ int, data interface{}) interface{} {
		strs := data.([]string)
		lines := make([]siteLine, 0, len(strs))
		for _, str := range strs {
			str = strings.TrimRight(str, "\r")
			if str == "" {
				continue
			}
			line, err := parseSiteLine(str, len(taxa))
			if err != nil {
				p.SetErr(err)
				return lines
			}
			lines = append(lines, line)
		}
		return lines
	})))
	var sites []genotype.Site
	var columnCalls [][]byte
	p.Add(pipeline.Ord(pipeline.Receive(func(_ int, data interface{}) interface{} {
		for _, line := range data.([]siteLine) {
			sites = append(sites, line.site)
			columnCalls = append(columnCalls, line.calls)
		}
		return data
	})))
	p.Run()
	if err = p.Err(); err != nil {
		return nil, err
	}
	for i := 1; i < len(sites); i++ {
		if prev, site := sites[i-1], sites[i]; prev.Chromosome == site.Chromosome && prev.Position > site.Position {
			return nil, fmt.Errorf("%w: site %v at %v:%v follows %v at %v:%v", ErrUnsorted,
				site.Name, site.Chromosome, site.Position, prev.Name, prev.Chromosome, prev.Position)
		}
	}
	rows := make([][]byte, len(taxa))
	parallel.Range(0, len(rows), 0, func(low, high int) {
		for t := low; t < high; t++ {
			row := make([]byte, len(sites))
			for s, calls := range columnCalls {
				row[s] = calls[t]
			}
			rows[t] = row
		}
	})
	return genotype.NewMatrixFromRows(taxa, sites, rows), nil
}

// Read loads a genotype matrix from a HapMap file.
func Read(filename string) (m *genotype.Matrix, err error) {
	input, err := Open(filename)
	if err != nil {
		return nil, err
	}
	defer func() {
		if nerr := input.Close(); err == nil {
			err = nerr
		}
	}()
	if m, err = Parse(input.Reader); err != nil {
		return nil, fmt.Errorf("%v, while reading HapMap file %v", err, filename)
	}
	return m, nil
}

func allelesField(buf []byte, alleles genotype.Alleles) []byte {
	buf = append(buf, genotype.AlleleChar(alleles.Major))
	if !alleles.Monomorphic() {
		buf = append(buf, '/')
		buf = append(buf, genotype.AlleleChar(alleles.Minor))
	}
	return buf
}

const linesPerBatch = 256

// Format writes a genotype matrix in HapMap format, with one IUPAC
// character per call. Lines are formatted in parallel batches.
func Format(w io.Writer, m *genotype.Matrix) error {
	buf := append([]byte(nil), strings.Join(Header, "\t")...)
	for _, taxon := range m.Taxa {
		buf = append(buf, '\t')
		buf = append(buf, taxon...)
	}
	buf = append(buf, '\n')
	if _, err := w.Write(buf); err != nil {
		return err
	}
	alleles := m.Alleles()
	sites := m.NumSites()
	batches := make([][]byte, (sites+linesPerBatch-1)/linesPerBatch)
	parallel.Range(0, len(batches), 0, func(low, high int) {
		for b := low; b < high; b++ {
			out := internal.ReserveByteBuffer()
			last := (b + 1) * linesPerBatch
			if last > sites {
				last = sites
			}
			for s := b * linesPerBatch; s < last; s++ {
				site := m.Sites[s]
				out = append(out, site.Name...)
				out = append(out, '\t')
				out = allelesField(out, alleles[s])
				out = append(out, '\t')
				out = append(out, site.Chromosome...)
				out = append(out, '\t')
				out = strconv.AppendInt(out, int64(site.Position), 10)
				out = append(out, "\t+\tNA\tNA\tNA\tNA\tNA\tNA"...)
				for t := range m.Taxa {
					out = append(out, '\t')
					out = appendCall(out, m.Get(t, s))
				}
				out = append(out, '\n')
			}
			batches[b] = out
		}
	})
	for _, batch := range batches {
		_, err := w.Write(batch)
		internal.ReleaseByteBuffer(batch)
		if err != nil {
			return err
		}
	}
	return nil
}

// appendCall writes a call as a single IUPAC character, or as an
// allele pair when it has no IUPAC code.
func appendCall(out []byte, call byte) []byte {
	if c := genotype.IUPAC(call); c != 'N' || call == genotype.Unknown {
		return append(out, c)
	}
	return append(out, genotype.String(call)...)
}

// Write stores a genotype matrix in a HapMap file.
func Write(filename string, m *genotype.Matrix) (err error) {
	output, err := Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if nerr := output.Close(); err == nil {
			err = nerr
		}
	}()
	return Format(output.Writer, m)
}

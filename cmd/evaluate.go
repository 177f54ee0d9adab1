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

package cmd

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/exascience/elimpute/evaluate"
	"github.com/exascience/elimpute/genotype"
	"github.com/exascience/elimpute/hapmap"
)

// MaskHelp is the help string for this command.
const MaskHelp = "mask parameters:\n" +
	"elimpute mask input-file masked-file key-file\n" +
	"[--proportion p]\n" +
	"[--seed nr]\n" +
	"[--log-path path]\n"

// Mask implements the elimpute mask command.
func Mask() error {
	var (
		proportion float64
		seed       int64
		logPath    string
	)

	var flags flag.FlagSet
	flags.Float64Var(&proportion, "proportion", 0.01, "proportion of known calls to hide")
	flags.Int64Var(&seed, "seed", 0, "seed for choosing the hidden calls")
	flags.StringVar(&logPath, "log-path", "", "write log files to the specified directory")
	parseFlags(&flags, 5, MaskHelp)

	input := getFilename(os.Args[2], MaskHelp)
	masked := getFilename(os.Args[3], MaskHelp)
	key := getFilename(os.Args[4], MaskHelp)

	setLogOutput(logPath)

	if !checkExist("", input) || !checkCreate("", masked) || !checkCreate("", key) || !checkProportion("--proportion", proportion) {
		fmt.Fprint(os.Stderr, MaskHelp)
		os.Exit(1)
	}

	log.Printf("Executing command:\n %v mask %v %v %v --proportion %v --seed %v\n", os.Args[0], input, masked, key, proportion, seed)

	m, err := hapmap.Read(input)
	if err != nil {
		return err
	}
	maskedMatrix, keyMatrix, n, err := evaluate.Mask(m, proportion, seed)
	if err != nil {
		return err
	}
	log.Printf("Masked %v calls.\n", humanize.Comma(int64(n)))
	if err = hapmap.Write(masked, maskedMatrix); err != nil {
		return err
	}
	return hapmap.Write(key, keyMatrix)
}

// CompareHelp is the help string for this command.
const CompareHelp = "compare parameters:\n" +
	"elimpute compare key-file imputed-file\n" +
	"[--original file --masked file]\n" +
	"[--output file]\n" +
	"[--log-path path]\n"

// Compare implements the elimpute compare command.
func Compare() (err error) {
	var (
		original, masked string
		output           string
		logPath          string
	)

	var flags flag.FlagSet
	flags.StringVar(&original, "original", "", "also compare against the unmasked panel")
	flags.StringVar(&masked, "masked", "", "the masked panel that was imputed (with --original)")
	flags.StringVar(&output, "output", "", "write the report to the specified file instead of the log")
	flags.StringVar(&logPath, "log-path", "", "write log files to the specified directory")
	parseFlags(&flags, 4, CompareHelp)

	keyFile := getFilename(os.Args[2], CompareHelp)
	imputedFile := getFilename(os.Args[3], CompareHelp)

	stderr := setLogOutput(logPath)

	var sanityChecksFailed bool
	if !checkExist("", keyFile) || !checkExist("", imputedFile) {
		sanityChecksFailed = true
	}
	if (original == "") != (masked == "") {
		sanityChecksFailed = true
		log.Println("Error: --original and --masked must be used together.")
	} else if original != "" && (!checkExist("--original", original) || !checkExist("--masked", masked)) {
		sanityChecksFailed = true
	}
	if output != "" && !checkCreate("--output", output) {
		sanityChecksFailed = true
	}
	if sanityChecksFailed {
		fmt.Fprint(os.Stderr, CompareHelp)
		os.Exit(1)
	}

	var key, imputed *genotype.Matrix
	if key, err = hapmap.Read(keyFile); err != nil {
		return err
	}
	imputed, err = hapmap.Read(imputedFile)
	if err != nil {
		return err
	}
	report, err := evaluate.Compare(key, imputed)
	if err != nil {
		return err
	}
	log.Printf("Accuracy over imputed hidden calls: %.6g, r2 %.6g.\n", report.Accuracy(), report.R2)

	out := stderr
	if output != "" {
		if out, err = os.Create(output); err != nil {
			return err
		}
		defer func() {
			if nerr := out.Close(); err == nil {
				err = nerr
			}
		}()
	}
	if err = report.Write(out); err != nil {
		return err
	}
	if original == "" {
		return nil
	}
	var originalMatrix, maskedMatrix *genotype.Matrix
	if originalMatrix, err = hapmap.Read(original); err != nil {
		return err
	}
	if maskedMatrix, err = hapmap.Read(masked); err != nil {
		return err
	}
	summary, err := evaluate.CompareMasked(originalMatrix, maskedMatrix, imputed)
	if err != nil {
		return err
	}
	return summary.Write(out)
}

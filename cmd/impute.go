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
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime"
	"sort"
	"strings"

	"github.com/cheggaaa/pb/v3"
	"github.com/dustin/go-humanize"
	"github.com/exascience/elimpute/genotype"
	"github.com/exascience/elimpute/hapmap"
	"github.com/exascience/elimpute/impute"
	"github.com/exascience/elimpute/internal"
	"github.com/exascience/pargo/parallel"
	"github.com/google/uuid"
)

// ImputeHelp is the help string for this command.
const ImputeHelp = "impute parameters:\n" +
	"elimpute impute donor-file target-file output-file\n" +
	"[--config toml-file]\n" +
	"[--min-minor-count nr]\n" +
	"[--major-minor-ratio nr]\n" +
	"[--max-inbred-error rate]\n" +
	"[--min-test-sites nr]\n" +
	"[--max-hypotheses nr]\n" +
	"[--min-sites-present nr]\n" +
	"[--min-informative-sites nr]\n" +
	"[--hybrid]\n" +
	"[--mismatch-cutoff nr]\n" +
	"[--exclude-invariant]\n" +
	"[--accuracy-report file]\n" +
	"[--nr-of-threads nr]\n" +
	"[--progress]\n" +
	"[--verbose]\n" +
	"[--timed]\n" +
	"[--profile file]\n" +
	"[--log-path path]\n"

// Impute implements the elimpute impute command.
func Impute() error {
	var (
		configFile     string
		config         = impute.DefaultConfig()
		accuracyReport string
		nrOfThreads    int
		progress       bool
		verbose        bool
		timed          bool
		profile        string
		logPath        string
	)

	var flags flag.FlagSet

	flags.StringVar(&configFile, "config", "", "read imputation parameters from a TOML file; command line parameters take precedence")
	flags.IntVar(&config.MinMinorCount, "min-minor-count", config.MinMinorCount, "minimum number of minor alleles in a search window")
	flags.IntVar(&config.MajorMinorRatio, "major-minor-ratio", config.MajorMinorRatio, "ratio of major to minor alleles that also ends window growth")
	flags.Float64Var(&config.MaxInbredError, "max-inbred-error", config.MaxInbredError, "maximum mismatch rate of an acceptable donor")
	flags.IntVar(&config.MinTestSites, "min-test-sites", config.MinTestSites, "minimum number of compared sites per hypothesis")
	flags.IntVar(&config.MaxHypotheses, "max-hypotheses", config.MaxHypotheses, "number of hypotheses kept per block")
	flags.IntVar(&config.MinSitesPresent, "min-sites-present", config.MinSitesPresent, "minimum number of known calls for a taxon to be imputed")
	flags.IntVar(&config.MinInformativeSites, "min-informative-sites", config.MinInformativeSites, "minimum number of informative sites for ancestry decoding")
	flags.BoolVar(&config.Hybrid, "hybrid", config.Hybrid, "search donor pairs where no single donor fits")
	flags.IntVar(&config.MismatchCutoff, "mismatch-cutoff", config.MismatchCutoff, "stop extending a donor comparison beyond this many mismatches")
	flags.BoolVar(&config.ExcludeInvariant, "exclude-invariant", config.ExcludeInvariant, "exclude sites that are monomorphic in the donors from comparisons")
	flags.StringVar(&accuracyReport, "accuracy-report", "", "write per-site agreement with known calls to the specified file")
	flags.IntVar(&nrOfThreads, "nr-of-threads", 0, "number of worker threads")
	flags.BoolVar(&progress, "progress", false, "show a progress bar")
	flags.BoolVar(&verbose, "verbose", false, "log the outcome for each taxon")
	flags.BoolVar(&timed, "timed", false, "measure the runtime")
	flags.StringVar(&profile, "profile", "", "write a runtime profile to the specified file(s)")
	flags.StringVar(&logPath, "log-path", "", "write log files to the specified directory")

	parseFlags(&flags, 5, ImputeHelp)

	donorFile := getFilename(os.Args[2], ImputeHelp)
	targetFile := getFilename(os.Args[3], ImputeHelp)
	output := getFilename(os.Args[4], ImputeHelp)

	stderr := setLogOutput(logPath)

	// sanity checks

	var sanityChecksFailed bool

	if !checkExist("", donorFile) {
		sanityChecksFailed = true
	}
	if !checkExist("", targetFile) {
		sanityChecksFailed = true
	}
	if !checkCreate("", output) {
		sanityChecksFailed = true
	}
	if accuracyReport != "" && !checkCreate("--accuracy-report", accuracyReport) {
		sanityChecksFailed = true
	}
	if profile != "" && !checkCreate("--profile", profile) {
		sanityChecksFailed = true
	}
	if nrOfThreads < 0 {
		sanityChecksFailed = true
		log.Println("Error: Invalid nr-of-threads: ", nrOfThreads)
	}

	if configFile != "" {
		if !checkExist("--config", configFile) {
			sanityChecksFailed = true
		} else if fileConfig, err := impute.LoadConfig(configFile); err != nil {
			sanityChecksFailed = true
			log.Println("Error:", err)
		} else {
			config = overrideConfig(fileConfig, config, setFlags(&flags))
		}
	}
	config.Threads = nrOfThreads
	if err := config.Validate(); err != nil {
		sanityChecksFailed = true
		log.Println("Error:", err)
	}

	if sanityChecksFailed {
		fmt.Fprint(os.Stderr, ImputeHelp)
		os.Exit(1)
	}

	// building and output command line

	var command bytes.Buffer
	fmt.Fprint(&command, os.Args[0], " impute ", donorFile, " ", targetFile, " ", output)
	if configFile != "" {
		fmt.Fprint(&command, " --config ", configFile)
	}
	fmt.Fprint(&command, " --min-minor-count ", config.MinMinorCount)
	fmt.Fprint(&command, " --major-minor-ratio ", config.MajorMinorRatio)
	fmt.Fprint(&command, " --max-inbred-error ", config.MaxInbredError)
	fmt.Fprint(&command, " --min-test-sites ", config.MinTestSites)
	fmt.Fprint(&command, " --max-hypotheses ", config.MaxHypotheses)
	fmt.Fprint(&command, " --min-sites-present ", config.MinSitesPresent)
	fmt.Fprint(&command, " --min-informative-sites ", config.MinInformativeSites)
	fmt.Fprint(&command, " --hybrid=", config.Hybrid)
	fmt.Fprint(&command, " --mismatch-cutoff ", config.MismatchCutoff)
	if config.ExcludeInvariant {
		fmt.Fprint(&command, " --exclude-invariant")
	}
	if accuracyReport != "" {
		fmt.Fprint(&command, " --accuracy-report ", accuracyReport)
	}
	if nrOfThreads > 0 {
		runtime.GOMAXPROCS(nrOfThreads)
		fmt.Fprint(&command, " --nr-of-threads ", nrOfThreads)
	}
	if progress {
		fmt.Fprint(&command, " --progress")
	}
	if verbose {
		fmt.Fprint(&command, " --verbose")
	}
	if timed {
		fmt.Fprint(&command, " --timed")
	}
	if profile != "" {
		fmt.Fprint(&command, " --profile ", profile)
	}
	if logPath != "" {
		fmt.Fprint(&command, " --log-path ", logPath)
	}

	runID := uuid.New()
	log.Println("Executing command:\n", command.String())
	log.Println("Run ID:", runID)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var donors, targets *genotype.Matrix
	phase := int64(1)
	err := timedRun(timed, profile, "Reading donor and target panels.", phase, func() error {
		var donorErr, targetErr error
		parallel.Do(func() {
			donors, donorErr = readPanel(donorFile)
		}, func() {
			targets, targetErr = readPanel(targetFile)
		})
		if donorErr != nil {
			return donorErr
		}
		return targetErr
	})
	if err != nil {
		return err
	}
	log.Printf("Donor panel: %v taxa, %v sites.\n", humanize.Comma(int64(donors.NumTaxa())), humanize.Comma(int64(donors.NumSites())))
	log.Printf("Target panel: %v taxa, %v sites.\n", humanize.Comma(int64(targets.NumTaxa())), humanize.Comma(int64(targets.NumSites())))
	if !donors.SameSites(targets) {
		return fmt.Errorf("%w: %v and %v", impute.ErrSiteMismatch, donorFile, targetFile)
	}

	var result *impute.Result
	phase++
	err = timedRun(timed, profile, "Imputing missing genotypes.", phase, func() (err error) {
		var bar *pb.ProgressBar
		if progress {
			bar = pb.Full.New(targets.NumTaxa() * len(targets.Chromosomes()))
			bar.SetWriter(stderr)
			bar.Start()
			defer bar.Finish()
		}
		result, err = impute.ImputeChromosomes(ctx, donors, targets, config, func(chromosome string, imp *impute.Imputer) {
			log.Printf("Imputing chromosome %v, %v sites.\n", chromosome, humanize.Comma(int64(imp.NumSites())))
			imp.LogMasks()
			imp.OnTaxonDone = func(tr impute.TaxonResult) {
				if bar != nil {
					bar.Increment()
				}
				if verbose {
					logTaxonResult(targets, donors, chromosome, imp.NumSites(), tr)
				}
			}
		})
		return err
	})
	if err != nil {
		return err
	}
	logSummary(result)

	phase++
	return timedRun(timed, profile, "Writing imputed genotypes.", phase, func() (err error) {
		if err = hapmap.Write(output, targets); err != nil {
			return err
		}
		if accuracyReport == "" {
			return nil
		}
		f, err := os.Create(accuracyReport)
		if err != nil {
			return err
		}
		defer func() {
			if nerr := f.Close(); err == nil {
				err = nerr
			}
		}()
		return writeAccuracyReport(f, runID, result.Accuracy, targets.Sites)
	})
}

// overrideConfig returns the file configuration, with the parameters
// that were given on the command line taken from flagConfig.
func overrideConfig(fileConfig, flagConfig impute.Config, set map[string]bool) impute.Config {
	config := fileConfig
	if set["min-minor-count"] {
		config.MinMinorCount = flagConfig.MinMinorCount
	}
	if set["major-minor-ratio"] {
		config.MajorMinorRatio = flagConfig.MajorMinorRatio
	}
	if set["max-inbred-error"] {
		config.MaxInbredError = flagConfig.MaxInbredError
	}
	if set["min-test-sites"] {
		config.MinTestSites = flagConfig.MinTestSites
	}
	if set["max-hypotheses"] {
		config.MaxHypotheses = flagConfig.MaxHypotheses
	}
	if set["min-sites-present"] {
		config.MinSitesPresent = flagConfig.MinSitesPresent
	}
	if set["min-informative-sites"] {
		config.MinInformativeSites = flagConfig.MinInformativeSites
	}
	if set["hybrid"] {
		config.Hybrid = flagConfig.Hybrid
	}
	if set["mismatch-cutoff"] {
		config.MismatchCutoff = flagConfig.MismatchCutoff
	}
	if set["exclude-invariant"] {
		config.ExcludeInvariant = flagConfig.ExcludeInvariant
	}
	return config
}

func readPanel(filename string) (*genotype.Matrix, error) {
	pathname, err := internal.FullPathname(filename)
	if err != nil {
		return nil, err
	}
	return hapmap.Read(pathname)
}

func logTaxonResult(targets, donors *genotype.Matrix, chromosome string, sites int, tr impute.TaxonResult) {
	name := targets.Taxa[tr.Taxon]
	switch {
	case tr.Cancelled:
		log.Printf("Taxon %v, chromosome %v: cancelled.\n", name, chromosome)
		return
	case tr.Skipped:
		log.Printf("Taxon %v, chromosome %v: skipped, only %v known calls.\n", name, chromosome, sites-tr.UnknownBefore)
		return
	}
	type usage struct{ donor, blocks int }
	var usages []usage
	for donor, blocks := range tr.DonorBlocks {
		usages = append(usages, usage{donor, blocks})
	}
	sort.Slice(usages, func(i, j int) bool {
		if usages[i].blocks != usages[j].blocks {
			return usages[i].blocks > usages[j].blocks
		}
		return usages[i].donor < usages[j].donor
	})
	var best []string
	for i, u := range usages {
		if i == 5 {
			break
		}
		best = append(best, fmt.Sprintf("%v:%v", donors.Taxa[u.donor], u.blocks))
	}
	log.Printf("Taxon %v, chromosome %v: %v windows (%v hybrid), %v decoded, %v abandoned, %v calls imputed, %v right, %v wrong, best donors %v.\n",
		name, chromosome, tr.Windows, tr.HybridWindows, tr.Decoded, tr.DecodeAbandoned,
		humanize.Comma(int64(tr.UnknownBefore-tr.UnknownAfter)), tr.Right, tr.Wrong, strings.Join(best, " "))
}

func logSummary(result *impute.Result) {
	skipped := 0
	unknownBefore, unknownAfter := 0, 0
	for _, tr := range result.Taxa {
		if tr.Skipped {
			skipped++
		}
		unknownBefore += tr.UnknownBefore
		unknownAfter += tr.UnknownAfter
	}
	log.Printf("Imputed %v of %v missing calls in %v taxa, %v taxa skipped.\n",
		humanize.Comma(int64(unknownBefore-unknownAfter)), humanize.Comma(int64(unknownBefore)),
		humanize.Comma(int64(len(result.Taxa)-skipped)), skipped)
	log.Printf("Agreement with known calls: %v right, %v wrong, error rate %.4g.\n",
		humanize.Comma(int64(result.Accuracy.Right)), humanize.Comma(int64(result.Accuracy.Wrong)), result.Accuracy.ErrorRate())
}

func writeAccuracyReport(w io.Writer, runID uuid.UUID, accuracy *impute.Accuracy, sites []genotype.Site) error {
	if _, err := fmt.Fprintf(w, "# run %v\n# right %v wrong %v error-rate %.6g\n", runID, accuracy.Right, accuracy.Wrong, accuracy.ErrorRate()); err != nil {
		return err
	}
	names := make([]string, len(sites))
	for i, site := range sites {
		names[i] = site.Name
	}
	return accuracy.WriteSites(w, names)
}

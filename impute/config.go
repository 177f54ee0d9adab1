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
	"errors"
	"fmt"

	"github.com/BurntSushi/toml"
)

// Config holds the parameters of an imputation run.
type Config struct {
	// MinMinorCount is the number of minor alleles a search window
	// must contain. Use 20-30 for low recombination, 10-15 for high
	// recombination.
	MinMinorCount int `toml:"min_minor_count"`

	// MajorMinorRatio bounds window growth in regions without minor
	// alleles: a window also stops growing once it holds
	// MinMinorCount*MajorMinorRatio major alleles.
	MajorMinorRatio int `toml:"major_minor_ratio"`

	// MaxInbredError is the largest acceptable mismatch rate of a
	// hypothesis. Windows whose best single donor exceeds it are
	// searched for donor pairs.
	MaxInbredError float64 `toml:"max_inbred_error"`

	// MinTestSites is the least number of compared sites a hypothesis needs.
	MinTestSites int `toml:"min_test_sites"`

	// MaxHypotheses bounds the number of hypotheses kept per block.
	MaxHypotheses int `toml:"max_hypotheses"`

	// MinSitesPresent is the least number of known calls a target
	// taxon needs to be imputed.
	MinSitesPresent int `toml:"min_sites_present"`

	// Hybrid enables the donor pair search.
	Hybrid bool `toml:"hybrid"`

	// MismatchCutoff stops summing a donor's mismatches over a window
	// once they exceed this value.
	MismatchCutoff int `toml:"mismatch_cutoff"`

	// MinInformativeSites is the least number of informative sites
	// needed for ancestry decoding.
	MinInformativeSites int `toml:"min_informative_sites"`

	// ExcludeInvariant drops sites that are monomorphic in the donor
	// panel from all comparisons.
	ExcludeInvariant bool `toml:"exclude_invariant"`

	// Threads bounds the number of taxa imputed concurrently. 0 means
	// runtime.GOMAXPROCS(0).
	Threads int `toml:"threads"`
}

// DefaultConfig returns the default parameters.
func DefaultConfig() Config {
	return Config{
		MinMinorCount:       20,
		MajorMinorRatio:     10,
		MaxInbredError:      0.02,
		MinTestSites:        100,
		MaxHypotheses:       10,
		MinSitesPresent:     100,
		Hybrid:              true,
		MismatchCutoff:      5,
		MinInformativeSites: 10,
	}
}

// ErrInvalidConfig is returned for out-of-range parameters.
var ErrInvalidConfig = errors.New("invalid imputation parameters")

// Validate checks that all parameters are in range.
func (c Config) Validate() error {
	switch {
	case c.MinMinorCount < 1:
		return fmt.Errorf("%w: min-minor-count must be at least 1, got %v", ErrInvalidConfig, c.MinMinorCount)
	case c.MajorMinorRatio < 1:
		return fmt.Errorf("%w: major-minor-ratio must be at least 1, got %v", ErrInvalidConfig, c.MajorMinorRatio)
	case c.MaxInbredError <= 0 || c.MaxInbredError >= 1:
		return fmt.Errorf("%w: max-inbred-error must be in (0,1), got %v", ErrInvalidConfig, c.MaxInbredError)
	case c.MinTestSites < 1:
		return fmt.Errorf("%w: min-test-sites must be at least 1, got %v", ErrInvalidConfig, c.MinTestSites)
	case c.MaxHypotheses < 1:
		return fmt.Errorf("%w: max-hypotheses must be at least 1, got %v", ErrInvalidConfig, c.MaxHypotheses)
	case c.MinSitesPresent < 0:
		return fmt.Errorf("%w: min-sites-present must not be negative, got %v", ErrInvalidConfig, c.MinSitesPresent)
	case c.MismatchCutoff < 0:
		return fmt.Errorf("%w: mismatch-cutoff must not be negative, got %v", ErrInvalidConfig, c.MismatchCutoff)
	case c.MinInformativeSites < 1:
		return fmt.Errorf("%w: min-informative-sites must be at least 1, got %v", ErrInvalidConfig, c.MinInformativeSites)
	case c.Threads < 0:
		return fmt.Errorf("%w: nr-of-threads must not be negative, got %v", ErrInvalidConfig, c.Threads)
	}
	return nil
}

// LoadConfig reads parameters from a TOML file. Parameters missing
// from the file keep their default values.
func LoadConfig(filename string) (Config, error) {
	config := DefaultConfig()
	if _, err := toml.DecodeFile(filename, &config); err != nil {
		return config, fmt.Errorf("%v, while reading configuration file %v", err, filename)
	}
	return config, config.Validate()
}

// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/aibor/scemirun/internal/driver"
	"github.com/aibor/scemirun/internal/scemi"
)

const (
	name = "scemirun"

	coresDefault = 1
	coresMin     = 1
	coresMax     = 64

	usageMessage = `Usage of 'scemirun':
    scemirun [flags...] image [image...]

Runs the given images one after another on the device and prints the device
output. Exits with 0 if all images report exit code 0.

All scemirun flags can also be provided via environment variable SCEMIRUN_ARGS:
	SCEMIRUN_ARGS="-params=/path/to/scemi.params -debug" scemirun prog.vmh

All scemirun flags can also be provided via file ./.scemirun-args, with one
argument per line.
`
)

type flags struct {
	ParamsFile string
	VersionTag string
	Cores      uint64
	StartAddr  uint32
	Timeout    time.Duration
	Images     []string

	Debug   bool
	Version bool
}

func (f *flags) driverConfig(output io.Writer) driver.Config {
	return driver.Config{
		Images:    f.Images,
		Cores:     int(f.Cores), //nolint:gosec
		StartAddr: f.StartAddr,
		Timeout:   f.Timeout,
		Output:    output,
	}
}

func newFlagSet(cfg *flags, output io.Writer) *flag.FlagSet {
	fsName := name + " [flags...] image [image...]"
	flagSet := flag.NewFlagSet(fsName, flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Var(
		(*FilePath)(&cfg.ParamsFile),
		"params",
		"path to the fabric parameters file",
	)

	flagSet.StringVar(
		&cfg.VersionTag,
		"version-tag",
		cfg.VersionTag,
		"link interface version to request from the fabric",
	)

	flagSet.Var(
		&LimitedUintValue{
			Value: &cfg.Cores,
			Lower: coresMin,
			Upper: coresMax,
		},
		"cores",
		"number of active cores on the device",
	)

	flagSet.Var(
		(*AddressValue)(&cfg.StartAddr),
		"start",
		"address the cores start executing at",
	)

	flagSet.DurationVar(
		&cfg.Timeout,
		"timeout",
		cfg.Timeout,
		"time limit per image, 0 means no limit",
	)

	flagSet.BoolVar(
		&cfg.Debug,
		"debug",
		cfg.Debug,
		"enable debug output",
	)

	flagSet.BoolVar(
		&cfg.Version,
		"version",
		cfg.Version,
		"show version and exit",
	)

	flagSet.Usage = func() {
		fmt.Fprint(flagSet.Output(), usageMessage)
		fmt.Fprintln(flagSet.Output(), "\nFlags:")
		flagSet.PrintDefaults()
	}

	return flagSet
}

// fail fails like flag does. It prints the error first and then usage.
func fail(flagSet *flag.FlagSet, msg string, err error) error {
	err = &ParseArgsError{msg: msg, err: err}
	fmt.Fprintln(flagSet.Output(), err.Error())

	flagSet.Usage()

	return err
}

func parseArgs(args []string, output io.Writer) (*flags, error) {
	cfg := &flags{
		ParamsFile: scemi.DefaultParamsFile,
		VersionTag: scemi.DefaultVersionTag,
		Cores:      coresDefault,
		StartAddr:  driver.DefaultStartAddr,
	}

	flagSet := newFlagSet(cfg, output)

	// Parses arguments up to the first one that is not prefixed with a "-" or
	// is "--".
	err := flagSet.Parse(args)
	if err != nil {
		return nil, &ParseArgsError{msg: "flag parse", err: err}
	}

	// With version flag, no further validation is done.
	if cfg.Version {
		return cfg, nil
	}

	if cfg.Timeout < 0 {
		return nil, fail(flagSet, "negative timeout", nil)
	}

	cfg.Images = flagSet.Args()

	if len(cfg.Images) < 1 {
		return nil, fail(flagSet, "no image given", nil)
	}

	return cfg, nil
}

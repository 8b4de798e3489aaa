// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"path/filepath"

	"github.com/aibor/scemirun/internal/scemi"
)

type config struct {
	paramsFile string
	script     string
	version    int
	debug      bool
}

func (cfg *config) parseArgs(args []string, output io.Writer) error {
	fsName := args[0] + " [flags...] script"
	fs := flag.NewFlagSet(fsName, flag.ContinueOnError)
	fs.SetOutput(output)

	fs.StringVar(
		&cfg.paramsFile,
		"params",
		cfg.paramsFile,
		"path to the fabric parameters file to listen on",
	)

	fs.IntVar(
		&cfg.version,
		"answer-version",
		cfg.version,
		"version to answer in the handshake, 0 echoes the host's version",
	)

	fs.BoolVar(
		&cfg.debug,
		"debug",
		cfg.debug,
		"enable debug output",
	)

	// Parses arguments up to the first one that is not prefixed with a "-" or
	// is "--".
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	// Fail like flag does.
	fail := func(msg string) error {
		fmt.Fprintln(fs.Output(), msg)
		fs.Usage()

		return errors.New(msg)
	}

	if cfg.version < 0 {
		return fail("negative version")
	}

	switch fs.NArg() {
	case 0:
		return fail("no script given")
	case 1:
	default:
		return fail("only one script allowed")
	}

	path, err := filepath.Abs(fs.Arg(0))
	if err != nil {
		return fail(fmt.Sprintf("absolute path for %s: %v", fs.Arg(0), err))
	}

	cfg.script = path

	return nil
}

func defaultConfig() config {
	return config{
		paramsFile: scemi.DefaultParamsFile,
	}
}

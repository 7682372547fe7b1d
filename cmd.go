// Copyright (C) The pathWAS Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package pathwas

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

var version = "development"

type command interface {
	RunCommand(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int
}

var commands = map[string]command{
	"version":  versionCmd{},
	"pas":      &pasCmd{},
	"cov":      &covCmd{},
	"assoc":    &assocCmd{},
	"twas":     &twasCmd{},
	"sumstats": &sumstatsCmd{},
}

func Main() {
	if !isatty.IsTerminal(os.Stderr.Fd()) {
		logrus.StandardLogger().Formatter = &logrus.TextFormatter{DisableTimestamp: true}
	}
	os.Exit(RunCommand(os.Args[0], os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// RunCommand dispatches to the named subcommand.
func RunCommand(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		usage(prog, stderr)
		return 2
	}
	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(stderr, "%s: unrecognized command %q\n", prog, args[0])
		usage(prog, stderr)
		return 2
	}
	return cmd.RunCommand(prog+" "+args[0], args[1:], stdin, stdout, stderr)
}

func usage(prog string, stderr io.Writer) {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Fprintf(stderr, "usage: %s <command> [options]\ncommands:\n", prog)
	for _, name := range names {
		fmt.Fprintf(stderr, "  %s\n", name)
	}
}

type versionCmd struct{}

func (versionCmd) RunCommand(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fmt.Fprintln(stdout, version)
	return 0
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// openInput returns stdin for "-", otherwise the named file.
func openInput(filename string, stdin io.Reader) (io.ReadCloser, error) {
	if filename == "-" {
		return io.NopCloser(stdin), nil
	}
	return os.Open(filename)
}

// openOutput returns stdout for "-", otherwise the named file truncated.
func openOutput(filename string, stdout io.Writer) (io.WriteCloser, error) {
	if filename == "-" {
		return nopCloser{stdout}, nil
	}
	return os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0777)
}

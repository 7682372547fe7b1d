// Copyright (C) The pathWAS Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package pathwas

import (
	"flag"
	"fmt"
	"io"
)

type covCmd struct{}

func (cmd *covCmd) RunCommand(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var err error
	defer func() {
		if err != nil {
			fmt.Fprintf(stderr, "%s\n", err)
		}
	}()
	flags := flag.NewFlagSet("", flag.ContinueOnError)
	flags.SetOutput(stderr)
	inputFilename := flags.String("i", "-", "genotype matrix CSV `file` (samples x variants, 0/1/2 dosages)")
	outputFilename := flags.String("o", "-", "output covariance CSV `file`")
	err = flags.Parse(args)
	if err == flag.ErrHelp {
		err = nil
		return 0
	} else if err != nil {
		return 2
	}

	genotypes, err := readFrameFile(*inputFilename, stdin)
	if err != nil {
		return 1
	}
	cov, err := Covariance(genotypes)
	if err != nil {
		return 1
	}
	output, err := openOutput(*outputFilename, stdout)
	if err != nil {
		return 1
	}
	err = WriteFrameCSV(output, cov)
	if err != nil {
		return 1
	}
	err = output.Close()
	if err != nil {
		return 1
	}
	return 0
}

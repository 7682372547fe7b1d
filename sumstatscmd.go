// Copyright (C) The pathWAS Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package pathwas

import (
	"flag"
	"fmt"
	"io"
)

type sumstatsCmd struct{}

func (cmd *sumstatsCmd) RunCommand(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var err error
	defer func() {
		if err != nil {
			fmt.Fprintf(stderr, "%s\n", err)
		}
	}()
	flags := flag.NewFlagSet("", flag.ContinueOnError)
	flags.SetOutput(stderr)
	weightsFilename := flags.String("weights", "", "SNP weight TSV `file` (snp, weight)")
	snpVarFilename := flags.String("snp-var", "", "optional per-SNP variance TSV `file`; 1.0 where missing")
	outputFilename := flags.String("o", "pas_pathway.sumstats.gz", "output `file` (LDSC sumstats, gzipped)")
	trait := flags.String("trait", "PAS", "trait `name` used in log output")
	err = flags.Parse(args)
	if err == flag.ErrHelp {
		err = nil
		return 0
	} else if err != nil {
		return 2
	}
	if *weightsFilename == "" {
		err = fmt.Errorf("-weights is required")
		return 2
	}

	weights, err := readVectorFile(*weightsFilename)
	if err != nil {
		return 1
	}
	var snpVar *Vector
	if *snpVarFilename != "" {
		snpVar, err = readVectorFile(*snpVarFilename)
		if err != nil {
			return 1
		}
	}
	output, err := openOutput(*outputFilename, stdout)
	if err != nil {
		return 1
	}
	err = GeneratePASSummaryStats(weights, snpVar, output, *trait)
	if err != nil {
		return 1
	}
	err = output.Close()
	if err != nil {
		return 1
	}
	return 0
}

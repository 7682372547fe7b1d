// Copyright (C) The pathWAS Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package pathwas

import (
	"flag"
	"fmt"
	"io"
	"os"
)

type twasCmd struct{}

func (cmd *twasCmd) RunCommand(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var err error
	defer func() {
		if err != nil {
			fmt.Fprintf(stderr, "%s\n", err)
		}
	}()
	flags := flag.NewFlagSet("", flag.ContinueOnError)
	flags.SetOutput(stderr)
	weightsFilename := flags.String("weights", "", "SNP weight TSV `file` (snp, weight)")
	zScoresFilename := flags.String("zscores", "", "GWAS Z-score TSV `file` (snp, z)")
	ldFilename := flags.String("ld", "", "LD matrix .npy `file`")
	snpsFilename := flags.String("snps", "", "SNP identifier list `file`, one per line, in LD matrix order")
	snpVarFilename := flags.String("snp-var", "", "optional per-SNP variance TSV `file`; defaults to the LD diagonal")
	contribFilename := flags.String("contributions", "", "write per-SNP contributions to TSV `file`")
	err = flags.Parse(args)
	if err == flag.ErrHelp {
		err = nil
		return 0
	} else if err != nil {
		return 2
	}
	if *weightsFilename == "" || *zScoresFilename == "" || *ldFilename == "" || *snpsFilename == "" {
		err = fmt.Errorf("-weights, -zscores, -ld and -snps are required")
		return 2
	}

	weights, err := readVectorFile(*weightsFilename)
	if err != nil {
		return 1
	}
	zScores, err := readVectorFile(*zScoresFilename)
	if err != nil {
		return 1
	}
	snpsFile, err := os.Open(*snpsFilename)
	if err != nil {
		return 1
	}
	snps, err := ReadSNPList(snpsFile)
	snpsFile.Close()
	if err != nil {
		return 1
	}
	ldFile, err := os.Open(*ldFilename)
	if err != nil {
		return 1
	}
	ld, err := ReadLDMatrix(ldFile)
	ldFile.Close()
	if err != nil {
		return 1
	}

	// the LD matrix order is canonical; align the weights to it
	weights, err = weights.Reindex(snps)
	if err != nil {
		return 1
	}
	var snpVar []float64
	if *snpVarFilename != "" {
		var vv *Vector
		vv, err = readVectorFile(*snpVarFilename)
		if err != nil {
			return 1
		}
		vv, err = vv.Reindex(snps)
		if err != nil {
			return 1
		}
		snpVar = vv.Values()
	}

	zPathway, varPAS, contributions, err := PathwayTWAS(weights, zScores, ld, snpVar, *contribFilename != "")
	if err != nil {
		return 1
	}
	fmt.Fprintf(stdout, "Z_pathway\t%g\nVar_PAS\t%g\n", zPathway, varPAS)

	if *contribFilename != "" {
		var f *os.File
		f, err = os.OpenFile(*contribFilename, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0777)
		if err != nil {
			return 1
		}
		err = WriteVectorTSV(f, contributions)
		if err != nil {
			f.Close()
			return 1
		}
		err = f.Close()
		if err != nil {
			return 1
		}
	}
	return 0
}

func readVectorFile(filename string) (*Vector, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadVectorTSV(f)
}

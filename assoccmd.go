// Copyright (C) The pathWAS Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package pathwas

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
)

type assocCmd struct{}

func (cmd *assocCmd) RunCommand(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var err error
	defer func() {
		if err != nil {
			fmt.Fprintf(stderr, "%s\n", err)
		}
	}()
	flags := flag.NewFlagSet("", flag.ContinueOnError)
	flags.SetOutput(stderr)
	pasFilename := flags.String("pas", "", "pathway activation scores CSV `file`")
	genotypesFilename := flags.String("genotypes", "", "genotype matrix CSV `file` (samples x variants)")
	pathwaysFilename := flags.String("pathways", "", "JSON `file` mapping pathway name to gene list")
	caseStatusFilename := flags.String("case-status", "", "sample case/control TSV `file`; switches to the logistic-regression test")
	covariatesFilename := flags.String("covariates", "", "covariates CSV `file` (samples x covariates), only with -case-status")
	outputFilename := flags.String("o", "-", "output results CSV `file`")
	err = flags.Parse(args)
	if err == flag.ErrHelp {
		err = nil
		return 0
	} else if err != nil {
		return 2
	}
	if *pasFilename == "" {
		err = fmt.Errorf("-pas is required")
		return 2
	}

	pas, err := readFrameFile(*pasFilename, stdin)
	if err != nil {
		return 1
	}
	output, err := openOutput(*outputFilename, stdout)
	if err != nil {
		return 1
	}
	bufw := bufio.NewWriter(output)

	if *caseStatusFilename != "" {
		err = cmd.runGLM(pas, *caseStatusFilename, *covariatesFilename, bufw)
	} else {
		err = cmd.runCorrelation(pas, *genotypesFilename, *pathwaysFilename, bufw)
	}
	if err != nil {
		return 1
	}
	err = bufw.Flush()
	if err != nil {
		return 1
	}
	err = output.Close()
	if err != nil {
		return 1
	}
	return 0
}

func (cmd *assocCmd) runCorrelation(pas *Frame, genotypesFilename, pathwaysFilename string, w io.Writer) error {
	if genotypesFilename == "" || pathwaysFilename == "" {
		return fmt.Errorf("-genotypes and -pathways are required")
	}
	genotypes, err := readFrameFile(genotypesFilename, nil)
	if err != nil {
		return err
	}
	f, err := os.Open(pathwaysFilename)
	if err != nil {
		return err
	}
	pathways, err := ReadPathwaysJSON(f)
	f.Close()
	if err != nil {
		return err
	}
	variants, err := AggregateVariants(genotypes, pathways)
	if err != nil {
		return err
	}
	results, err := AssociationTest(pas, variants)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, "pathway,min_p,n_variants"); err != nil {
		return err
	}
	for _, res := range results {
		if _, err := fmt.Fprintf(w, "%s,%g,%d\n", res.Pathway, res.MinP, res.NVariants); err != nil {
			return err
		}
	}
	return nil
}

func (cmd *assocCmd) runGLM(pas *Frame, caseStatusFilename, covariatesFilename string, w io.Writer) error {
	f, err := os.Open(caseStatusFilename)
	if err != nil {
		return err
	}
	isCase, err := ReadCaseStatus(f)
	f.Close()
	if err != nil {
		return err
	}
	var covariates *Frame
	if covariatesFilename != "" {
		covariates, err = readFrameFile(covariatesFilename, nil)
		if err != nil {
			return err
		}
	}
	pvalues, err := GLMAssociationTest(pas, isCase, covariates)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(pvalues))
	for pw := range pvalues {
		names = append(names, pw)
	}
	sort.Strings(names)
	if _, err := fmt.Fprintln(w, "pathway,p"); err != nil {
		return err
	}
	for _, pw := range names {
		if _, err := fmt.Fprintf(w, "%s,%g\n", pw, pvalues[pw]); err != nil {
			return err
		}
	}
	return nil
}

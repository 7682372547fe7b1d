// Copyright (C) The pathWAS Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package pathwas

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	log "github.com/sirupsen/logrus"
)

type pasCmd struct{}

func (cmd *pasCmd) RunCommand(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var err error
	defer func() {
		if err != nil {
			fmt.Fprintf(stderr, "%s\n", err)
		}
	}()
	flags := flag.NewFlagSet("", flag.ContinueOnError)
	flags.SetOutput(stderr)
	inputFilename := flags.String("i", "-", "expression matrix CSV `file` (samples x genes)")
	outputFilename := flags.String("o", "-", "output PAS CSV `file`")
	pathwaysFilename := flags.String("pathways", "", "JSON `file` mapping pathway name to gene list")
	gmtFilename := flags.String("gmt", "", "gene set library GMT `file`")
	geneMapFilename := flags.String("gene-map", "", "two-column TSV `file` mapping gene identifiers to stable IDs")
	method := flags.String("method", "activity_weighted", "aggregation `method` (sum, mean, median, activity_weighted)")
	corrMethod := flags.String("corr-method", "pearson", "correlation `method` for activity_weighted (pearson, spearman, bicor)")
	normalizeSamples := flags.Bool("normalize-samples", false, "z-score PAS across samples for each pathway")
	normalizePathways := flags.Bool("normalize-pathways", false, "z-score PAS across pathways for each sample")
	weightsFilename := flags.String("weights-out", "", "write per-pathway gene weights to JSON `file` (activity_weighted only)")
	threads := flags.Int("threads", 1, "number of pathways to score concurrently")
	loglevel := flags.String("loglevel", "info", "log level (debug, info, warning, error)")
	err = flags.Parse(args)
	if err == flag.ErrHelp {
		err = nil
		return 0
	} else if err != nil {
		return 2
	}
	lvl, err := log.ParseLevel(*loglevel)
	if err != nil {
		return 2
	}
	log.SetLevel(lvl)

	expr, err := readFrameFile(*inputFilename, stdin)
	if err != nil {
		return 1
	}
	pathways, err := cmd.loadPathways(*pathwaysFilename, *gmtFilename)
	if err != nil {
		return 1
	}
	if *geneMapFilename != "" {
		expr, pathways, err = applyGeneMap(expr, pathways, *geneMapFilename)
		if err != nil {
			return 1
		}
	}

	var (
		pas     *Frame
		weights map[string]map[string]float64
	)
	if *threads > 1 {
		pas, weights, err = computePASParallel(expr, pathways, PASMethod(*method), CorrMethod(*corrMethod), *normalizeSamples, *normalizePathways, *threads)
	} else {
		pas, weights, err = ComputePAS(expr, pathways, PASMethod(*method), CorrMethod(*corrMethod), *normalizeSamples, *normalizePathways)
	}
	if err != nil {
		return 1
	}

	if *weightsFilename != "" {
		if weights == nil {
			err = fmt.Errorf("-weights-out is only meaningful with -method=activity_weighted")
			return 2
		}
		var f *os.File
		f, err = os.OpenFile(*weightsFilename, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0777)
		if err != nil {
			return 1
		}
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		err = enc.Encode(weights)
		if err != nil {
			f.Close()
			return 1
		}
		err = f.Close()
		if err != nil {
			return 1
		}
	}

	output, err := openOutput(*outputFilename, stdout)
	if err != nil {
		return 1
	}
	err = WriteFrameCSV(output, pas)
	if err != nil {
		return 1
	}
	err = output.Close()
	if err != nil {
		return 1
	}
	return 0
}

func (cmd *pasCmd) loadPathways(pathwaysFilename, gmtFilename string) (map[string][]string, error) {
	switch {
	case pathwaysFilename != "" && gmtFilename != "":
		return nil, fmt.Errorf("cannot use both -pathways and -gmt")
	case pathwaysFilename != "":
		f, err := os.Open(pathwaysFilename)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return ReadPathwaysJSON(f)
	case gmtFilename != "":
		f, err := os.Open(gmtFilename)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return ReadGMT(f)
	default:
		return nil, fmt.Errorf("either -pathways or -gmt is required")
	}
}

func applyGeneMap(expr *Frame, pathways map[string][]string, geneMapFilename string) (*Frame, map[string][]string, error) {
	f, err := os.Open(geneMapFilename)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	resolver, err := ReadGeneMap(f)
	if err != nil {
		return nil, nil, err
	}
	expr, err = RenameGenes(expr, resolver)
	if err != nil {
		return nil, nil, err
	}
	converted := make(map[string][]string, len(pathways))
	for pw, genes := range pathways {
		converted[pw], err = ConvertGeneList(genes, resolver)
		if err != nil {
			return nil, nil, err
		}
	}
	return expr, converted, nil
}

// computePASParallel scores pathways concurrently, one ComputePAS call per
// pathway (each call touches only its own inputs), then assembles the
// columns and applies normalization over the combined matrix.
func computePASParallel(expr *Frame, pathways map[string][]string, method PASMethod, corrMethod CorrMethod, normalizeSamples, normalizePathways bool, threads int) (*Frame, map[string]map[string]float64, error) {
	if err := validatePASArgs(method, corrMethod); err != nil {
		return nil, nil, err
	}
	names := make([]string, 0, len(pathways))
	for pw := range pathways {
		names = append(names, pw)
	}
	sort.Strings(names)

	frames := make([]*Frame, len(names))
	weightParts := make([]map[string]map[string]float64, len(names))
	th := throttle{Max: threads}
	for i, pw := range names {
		i, pw := i, pw
		th.Acquire()
		go func() {
			defer th.Release()
			f, w, err := ComputePAS(expr, map[string][]string{pw: pathways[pw]}, method, corrMethod, false, false)
			if err != nil {
				th.Report(err)
				return
			}
			frames[i] = f
			weightParts[i] = w
		}()
	}
	if err := th.Wait(); err != nil {
		return nil, nil, err
	}

	var (
		nonEmpty []*Frame
		weights  map[string]map[string]float64
	)
	if method == MethodActivityWeighted {
		weights = map[string]map[string]float64{}
	}
	for i := range frames {
		if _, ncol := frames[i].Dims(); ncol == 0 {
			continue
		}
		nonEmpty = append(nonEmpty, frames[i])
		for pw, w := range weightParts[i] {
			weights[pw] = w
		}
	}
	if len(nonEmpty) == 0 {
		f, err := NewFrame(expr.RowIDs(), nil, nil)
		return f, weights, err
	}
	pas, err := hcat(nonEmpty...)
	if err != nil {
		return nil, nil, err
	}
	if normalizeSamples {
		normalizeFrameCols(pas)
	}
	if normalizePathways {
		normalizeFrameRows(pas)
	}
	return pas, weights, nil
}

// readFrameFile reads a Frame CSV from a file, or stdin for "-".
func readFrameFile(filename string, stdin io.Reader) (*Frame, error) {
	input, err := openInput(filename, stdin)
	if err != nil {
		return nil, err
	}
	defer input.Close()
	return ReadFrameCSV(input)
}

// Copyright (C) The pathWAS Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package pathwas

import (
	"fmt"
	"math"
	"sort"

	log "github.com/sirupsen/logrus"
)

// PASMethod selects the aggregation strategy used to collapse a pathway's
// gene expression columns into one activation score per sample.
type PASMethod string

const (
	MethodSum    PASMethod = "sum"
	MethodMean   PASMethod = "mean"
	MethodMedian PASMethod = "median"
	// MethodActivityWeighted weights each gene by its mean absolute
	// correlation with the other pathway members and returns the weighted
	// average, keeping scores on the expression scale.
	MethodActivityWeighted PASMethod = "activity_weighted"
)

// ComputePAS computes pathway activation scores from a samples x genes
// expression Frame (assumed log-scale) and a pathway -> gene list mapping.
//
// Pathway genes absent from the expression matrix are dropped; a pathway
// with no genes left is skipped entirely. Output columns are in sorted
// pathway-name order. For MethodActivityWeighted the per-pathway gene
// weights are returned as well; for the other methods the weight map is
// nil.
//
// normalizeSamples z-scores each pathway column and normalizePathways
// z-scores each sample row, both with population (1/N) standard deviation;
// when both are set, columns are normalized first. A zero-variance column
// or row is left unnormalized with a logged warning.
func ComputePAS(expr *Frame, pathways map[string][]string, method PASMethod, corrMethod CorrMethod, normalizeSamples, normalizePathways bool) (*Frame, map[string]map[string]float64, error) {
	if err := validatePASArgs(method, corrMethod); err != nil {
		return nil, nil, err
	}
	log.Infof("computing PAS for %d pathways using method %s", len(pathways), method)

	names := make([]string, 0, len(pathways))
	for pw := range pathways {
		names = append(names, pw)
	}
	sort.Strings(names)

	nrow, _ := expr.Dims()
	var (
		kept    []string
		cols    [][]float64
		weights = map[string]map[string]float64{}
	)
	for _, pw := range names {
		genes := intersectCols(expr, pathways[pw])
		if len(genes) == 0 {
			continue
		}
		log.Debugf("pathway %s has %d genes in the expression matrix", pw, len(genes))
		pas, w, err := scorePathway(expr, genes, method, corrMethod)
		if err != nil {
			return nil, nil, err
		}
		kept = append(kept, pw)
		cols = append(cols, pas)
		if w != nil {
			weights[pw] = w
		}
	}

	data := make([]float64, nrow*len(kept))
	for j, col := range cols {
		for i, v := range col {
			data[i*len(kept)+j] = v
		}
	}
	pasFrame, err := NewFrame(expr.RowIDs(), kept, data)
	if err != nil {
		return nil, nil, err
	}

	if len(kept) > 0 {
		if normalizeSamples {
			normalizeFrameCols(pasFrame)
		}
		if normalizePathways {
			normalizeFrameRows(pasFrame)
		}
	}

	if method != MethodActivityWeighted {
		return pasFrame, nil, nil
	}
	return pasFrame, weights, nil
}

func validatePASArgs(method PASMethod, corrMethod CorrMethod) error {
	switch method {
	case MethodSum, MethodMean, MethodMedian:
	case MethodActivityWeighted:
		// corrMethod is only consulted for the activity-weighted method
		switch corrMethod {
		case CorrPearson, CorrSpearman, CorrBicor:
		default:
			return fmt.Errorf("%w: unknown correlation method %q", ErrInvalidArgument, corrMethod)
		}
	default:
		return fmt.Errorf("%w: unknown PAS method %q", ErrInvalidArgument, method)
	}
	return nil
}

// intersectCols returns the members of genes present in the expression
// matrix, in expression column order.
func intersectCols(expr *Frame, genes []string) []string {
	want := make(map[string]bool, len(genes))
	for _, g := range genes {
		want[g] = true
	}
	var out []string
	for _, id := range expr.ColIDs() {
		if want[id] {
			out = append(out, id)
		}
	}
	return out
}

// scorePathway collapses the given expression columns into one score per
// sample. The returned weight map is non-nil only for
// MethodActivityWeighted.
func scorePathway(expr *Frame, genes []string, method PASMethod, corrMethod CorrMethod) ([]float64, map[string]float64, error) {
	sub, err := expr.SelectCols(genes)
	if err != nil {
		return nil, nil, err
	}
	nrow, ncol := sub.Dims()
	pas := make([]float64, nrow)
	switch method {
	case MethodSum:
		for i := 0; i < nrow; i++ {
			var s float64
			for j := 0; j < ncol; j++ {
				s += sub.At(i, j)
			}
			pas[i] = s
		}
		return pas, nil, nil
	case MethodMean:
		for i := 0; i < nrow; i++ {
			var s float64
			for j := 0; j < ncol; j++ {
				s += sub.At(i, j)
			}
			pas[i] = s / float64(ncol)
		}
		return pas, nil, nil
	case MethodMedian:
		row := make([]float64, ncol)
		for i := 0; i < nrow; i++ {
			for j := 0; j < ncol; j++ {
				row[j] = sub.At(i, j)
			}
			pas[i] = median(row)
		}
		return pas, nil, nil
	case MethodActivityWeighted:
		return activityWeighted(sub, corrMethod)
	}
	return nil, nil, fmt.Errorf("%w: unknown PAS method %q", ErrInvalidArgument, method)
}

// activityWeighted computes the activity-weighted PAS for one pathway's
// samples x genes sub-Frame. Each gene's weight is the mean absolute
// correlation with the other members; the score is the weighted average so
// the result stays on the expression scale.
func activityWeighted(sub *Frame, corrMethod CorrMethod) ([]float64, map[string]float64, error) {
	genes := sub.ColIDs()
	nrow, ncol := sub.Dims()
	if ncol == 1 {
		// no correlation structure with a single gene
		pas, err := sub.Col(genes[0])
		if err != nil {
			return nil, nil, err
		}
		return pas, map[string]float64{genes[0]: 1.0}, nil
	}

	cols := make([][]float64, ncol)
	for j, g := range genes {
		col, err := sub.Col(g)
		if err != nil {
			return nil, nil, err
		}
		cols[j] = col
	}
	weights := make(map[string]float64, ncol)
	wv := make([]float64, ncol)
	for j := range cols {
		var sum float64
		for k := range cols {
			if k == j {
				continue
			}
			r, err := correlate(cols[j], cols[k], corrMethod)
			if err != nil {
				return nil, nil, err
			}
			sum += math.Abs(r)
		}
		wv[j] = sum / float64(ncol-1)
		weights[genes[j]] = wv[j]
	}
	log.Debugf("computed weights for %d genes", ncol)

	var wsum float64
	for _, w := range wv {
		wsum += w
	}
	pas := make([]float64, nrow)
	for i := 0; i < nrow; i++ {
		var s float64
		for j := range cols {
			s += wv[j] * cols[j][i]
		}
		pas[i] = s / wsum
	}
	return pas, weights, nil
}

// popMeanStd returns the mean and population (1/N) standard deviation.
func popMeanStd(x []float64) (mean, std float64) {
	for _, v := range x {
		mean += v
	}
	mean /= float64(len(x))
	var ss float64
	for _, v := range x {
		d := v - mean
		ss += d * d
	}
	return mean, math.Sqrt(ss / float64(len(x)))
}

func normalizeFrameCols(f *Frame) {
	nrow, ncol := f.Dims()
	col := make([]float64, nrow)
	for j := 0; j < ncol; j++ {
		for i := 0; i < nrow; i++ {
			col[i] = f.At(i, j)
		}
		mean, std := popMeanStd(col)
		if std == 0 {
			log.Warnf("pathway %q has zero variance across samples, leaving unnormalized", f.ColIDs()[j])
			continue
		}
		for i := 0; i < nrow; i++ {
			f.data.Set(i, j, (col[i]-mean)/std)
		}
	}
}

func normalizeFrameRows(f *Frame) {
	nrow, ncol := f.Dims()
	row := make([]float64, ncol)
	for i := 0; i < nrow; i++ {
		for j := 0; j < ncol; j++ {
			row[j] = f.At(i, j)
		}
		mean, std := popMeanStd(row)
		if std == 0 {
			log.Warnf("sample %q has zero variance across pathways, leaving unnormalized", f.RowIDs()[i])
			continue
		}
		for j := 0; j < ncol; j++ {
			f.data.Set(i, j, (row[j]-mean)/std)
		}
	}
}

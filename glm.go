// Copyright (C) The pathWAS Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package pathwas

import (
	"fmt"
	"io"
	"log"
	"math"

	"github.com/kshedden/statmodel/glm"
	"github.com/kshedden/statmodel/statmodel"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

var glmConfig = &glm.Config{
	Family:         glm.NewFamily(glm.BinomialFamily),
	FitMethod:      "IRLS",
	ConcurrentIRLS: 1000,
	Log:            log.New(io.Discard, "", 0),
}

func normalize(a []float64) {
	mean, std := stat.MeanStdDev(a, nil)
	for i, x := range a {
		a[i] = (x - mean) / std
	}
}

// GLMAssociationTest fits, for each pathway column of pas, a logistic
// regression of case/control status on that pathway's activation scores
// plus the given covariate columns, and returns the likelihood-ratio
// chi-square(1) p-value per pathway against the covariates-only model.
//
// Samples absent from isCase are excluded from the fit. covariates may be
// nil; otherwise it must carry the same row labels as pas, in the same
// order. Covariate columns are z-scored before fitting. A fit that fails
// (e.g. a singular design matrix) yields NaN for that pathway.
func GLMAssociationTest(pas *Frame, isCase map[string]bool, covariates *Frame) (map[string]float64, error) {
	pvalueForPAS, err := glmPvalueFunc(pas, isCase, covariates)
	if err != nil {
		return nil, err
	}
	out := make(map[string]float64, len(pas.ColIDs()))
	for _, pw := range pas.ColIDs() {
		col, err := pas.Col(pw)
		if err != nil {
			return nil, err
		}
		out[pw] = pvalueForPAS(col)
	}
	return out, nil
}

// glmPvalueFunc fits the covariates-only null model once and returns a
// function computing the likelihood-ratio p-value for one PAS column given
// in pas row order.
func glmPvalueFunc(pas *Frame, isCase map[string]bool, covariates *Frame) (func(pasCol []float64) float64, error) {
	samples := pas.RowIDs()
	keep := make([]bool, len(samples))
	nkeep := 0
	for i, id := range samples {
		if _, ok := isCase[id]; ok {
			keep[i] = true
			nkeep++
		}
	}
	if nkeep == 0 {
		return nil, fmt.Errorf("%w: no PAS samples have case/control status", ErrInvalidArgument)
	}

	var covNames []string
	var data [][]statmodel.Dtype
	if covariates != nil {
		if len(covariates.RowIDs()) != len(samples) {
			return nil, fmt.Errorf("%w: covariates must have the same samples as the PAS matrix", ErrInvalidArgument)
		}
		for i, id := range covariates.RowIDs() {
			if id != samples[i] {
				return nil, fmt.Errorf("%w: covariate sample %q does not match PAS sample %q", ErrInvalidArgument, id, samples[i])
			}
		}
		for _, name := range covariates.ColIDs() {
			col, err := covariates.Col(name)
			if err != nil {
				return nil, err
			}
			series := make([]statmodel.Dtype, 0, nkeep)
			for i, v := range col {
				if keep[i] {
					series = append(series, v)
				}
			}
			normalize(series)
			data = append(data, series)
			covNames = append(covNames, name)
		}
	}

	outcome := make([]statmodel.Dtype, 0, nkeep)
	constants := make([]statmodel.Dtype, 0, nkeep)
	for i, id := range samples {
		if !keep[i] {
			continue
		}
		if isCase[id] {
			outcome = append(outcome, 1)
		} else {
			outcome = append(outcome, 0)
		}
		constants = append(constants, 1)
	}
	data = append([][]statmodel.Dtype{outcome, constants}, data...)
	names := append([]string{"outcome", "constants"}, covNames...)
	dataset := statmodel.NewDataset(data, names)

	model, err := glm.NewGLM(dataset, "outcome", names[1:], glmConfig)
	if err != nil {
		log.Printf("%s", err)
		return func([]float64) float64 { return math.NaN() }, nil
	}
	resultCov := model.Fit()
	logCov := resultCov.LogLike()

	return func(pasCol []float64) (p float64) {
		defer func() {
			if recover() != nil {
				// typically "matrix singular or near-singular with condition number +Inf"
				p = math.NaN()
			}
		}()

		series := make([]statmodel.Dtype, 0, nkeep)
		for i, v := range pasCol {
			if keep[i] {
				series = append(series, v)
			}
		}

		data := append([][]statmodel.Dtype{data[0], series}, data[1:]...)
		names := append([]string{"outcome", "pas"}, names[1:]...)
		dataset := statmodel.NewDataset(data, names)

		model, err := glm.NewGLM(dataset, "outcome", names[1:], glmConfig)
		if err != nil {
			return math.NaN()
		}
		resultComp := model.Fit()
		logComp := resultComp.LogLike()
		dist := distuv.ChiSquared{K: 1}
		return dist.Survival(-2 * (logCov - logComp))
	}, nil
}

// Copyright (C) The pathWAS Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package pathwas

import (
	"fmt"
	"math"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"
)

// PathwayTWAS runs the summary-level pathway-TWAS association test. It
// needs no individual-level genotypes: per-SNP pathway weights, GWAS
// Z-scores, and an LD (correlation) matrix in the weight vector's SNP
// order are enough.
//
// zScores is reindexed to snpWeights's key order when the orders differ;
// a key missing from zScores is an error. ld must be square with dimension
// len(snpWeights). snpVar supplies per-SNP variances; when nil the LD
// diagonal is used.
//
// Var(PAS) = w' * LD * w. When it is not positive the inputs are
// degenerate: a warning is logged and (NaN, 0.0) is returned, with an
// all-zero contribution vector when requested. Otherwise each SNP
// contributes w_i * (Var(PAS)/var_i) * z_i and the pathway Z-score is the
// left-to-right sum of the contributions. The contribution Vector (nil
// unless returnContributions is set) shares snpWeights's key order and
// sums exactly to the pathway Z-score.
func PathwayTWAS(snpWeights, zScores *Vector, ld mat.Matrix, snpVar []float64, returnContributions bool) (zPathway, varPAS float64, contributions *Vector, err error) {
	if !zScores.equalKeys(snpWeights.Keys()) {
		zScores, err = zScores.Reindex(snpWeights.Keys())
		if err != nil {
			return 0, 0, nil, fmt.Errorf("%w: indices of snp_weights and z_scores must match", ErrInvalidArgument)
		}
	}
	n := snpWeights.Len()
	log.Debugf("running pathway TWAS with %d SNPs", n)

	r, c := ld.Dims()
	if r != c || r != n {
		return 0, 0, nil, fmt.Errorf("%w: ld_matrix dimensions (%dx%d) must match number of SNPs (%d)", ErrInvalidArgument, r, c, n)
	}
	if snpVar == nil {
		snpVar = make([]float64, n)
		for i := 0; i < n; i++ {
			snpVar[i] = ld.At(i, i)
		}
	} else if len(snpVar) != n {
		return 0, 0, nil, fmt.Errorf("%w: snp_var length (%d) must match number of SNPs (%d)", ErrInvalidArgument, len(snpVar), n)
	}

	w := mat.NewVecDense(n, snpWeights.Values())
	varPAS = mat.Inner(w, ld, w)
	log.Debugf("Var(PAS) = %f", varPAS)
	if varPAS <= 0 {
		log.Warnf("non-positive PAS variance (%g)", varPAS)
		if returnContributions {
			contributions, err = NewVector(snpWeights.Keys(), make([]float64, n))
			if err != nil {
				return 0, 0, nil, err
			}
		}
		return math.NaN(), 0.0, contributions, nil
	}

	z := zScores.Values()
	contrib := make([]float64, n)
	for i := 0; i < n; i++ {
		contrib[i] = snpWeights.Values()[i] * (varPAS / snpVar[i]) * z[i]
		zPathway += contrib[i]
	}
	log.Infof("computed pathway Z-score %.3f", zPathway)
	if returnContributions {
		contributions, err = NewVector(snpWeights.Keys(), contrib)
		if err != nil {
			return 0, 0, nil, err
		}
	}
	return zPathway, varPAS, contributions, nil
}

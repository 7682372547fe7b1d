// Copyright (C) The pathWAS Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package pathwas

import (
	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"
)

// Covariance computes the variant x variant covariance matrix of a
// samples x variants genotype Frame (0/1/2 dosages), with the usual 1/(N-1)
// normalization.
func Covariance(genotypes *Frame) (*Frame, error) {
	_, ncol := genotypes.Dims()
	log.Debugf("computing covariance matrix for %d variants", ncol)
	cols := make([][]float64, ncol)
	for j, id := range genotypes.ColIDs() {
		col, err := genotypes.Col(id)
		if err != nil {
			return nil, err
		}
		cols[j] = col
	}
	data := make([]float64, ncol*ncol)
	for i := 0; i < ncol; i++ {
		for j := i; j < ncol; j++ {
			cov := stat.Covariance(cols[i], cols[j], nil)
			data[i*ncol+j] = cov
			data[j*ncol+i] = cov
		}
	}
	return NewFrame(genotypes.ColIDs(), genotypes.ColIDs(), data)
}

// Copyright (C) The pathWAS Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package pathwas

import (
	"fmt"
	"math"
	"sort"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"
)

// CorrMethod selects the correlation estimator used by the
// activity-weighted PAS method.
type CorrMethod string

const (
	CorrPearson  CorrMethod = "pearson"
	CorrSpearman CorrMethod = "spearman"
	// CorrBicor is the biweight midcorrelation of Langfelder & Horvath,
	// robust to outliers. Tuning constant 9, weights zeroed at |u| >= 1.
	CorrBicor CorrMethod = "bicor"
)

func correlate(x, y []float64, method CorrMethod) (float64, error) {
	switch method {
	case CorrPearson:
		return stat.Correlation(x, y, nil), nil
	case CorrSpearman:
		return stat.Correlation(ranks(x), ranks(y), nil), nil
	case CorrBicor:
		return bicor(x, y), nil
	default:
		return 0, fmt.Errorf("%w: unknown correlation method %q", ErrInvalidArgument, method)
	}
}

// ranks assigns 1-based ranks, averaging over ties.
func ranks(x []float64) []float64 {
	n := len(x)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return x[order[a]] < x[order[b]] })
	r := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j < n && x[order[j]] == x[order[i]] {
			j++
		}
		// ranks i+1..j averaged over the tie run
		avg := float64(i+j+1) / 2
		for k := i; k < j; k++ {
			r[order[k]] = avg
		}
		i = j
	}
	return r
}

// bicor computes the biweight midcorrelation of x and y. When either
// vector has zero median absolute deviation the estimator is undefined;
// that pair falls back to Pearson with a logged warning.
func bicor(x, y []float64) float64 {
	a, oka := bicorDeviations(x)
	b, okb := bicorDeviations(y)
	if !oka || !okb {
		log.Warnf("bicor undefined for zero-MAD vector, using pearson for this gene pair")
		return stat.Correlation(x, y, nil)
	}
	var r float64
	for i := range a {
		r += a[i] * b[i]
	}
	return r
}

// bicorDeviations returns the weighted, unit-normalized deviations used by
// bicor, or ok=false when the median absolute deviation is zero.
func bicorDeviations(x []float64) ([]float64, bool) {
	med := median(x)
	dev := make([]float64, len(x))
	for i, v := range x {
		dev[i] = math.Abs(v - med)
	}
	mad := median(dev)
	if mad == 0 {
		return nil, false
	}
	a := make([]float64, len(x))
	var ss float64
	for i, v := range x {
		u := (v - med) / (9 * mad)
		if u <= -1 || u >= 1 {
			continue
		}
		w := (1 - u*u) * (1 - u*u)
		a[i] = (v - med) * w
		ss += a[i] * a[i]
	}
	if ss == 0 {
		return nil, false
	}
	norm := math.Sqrt(ss)
	for i := range a {
		a[i] /= norm
	}
	return a, true
}

// median of the finite values in x, NaN when none remain. NaN entries are
// ignored, matching ordinary median semantics over present values.
func median(x []float64) float64 {
	vals := make([]float64, 0, len(x))
	for _, v := range x {
		if !math.IsNaN(v) {
			vals = append(vals, v)
		}
	}
	if len(vals) == 0 {
		return math.NaN()
	}
	sort.Float64s(vals)
	n := len(vals)
	if n%2 == 1 {
		return vals[n/2]
	}
	return (vals[n/2-1] + vals[n/2]) / 2
}

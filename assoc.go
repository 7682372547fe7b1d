// Copyright (C) The pathWAS Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package pathwas

import (
	"math"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

var tsrc = rand.NewSource(rand.Uint64())

// AssocResult records the correlation-based association test outcome for
// one pathway.
type AssocResult struct {
	Pathway   string
	MinP      float64
	NVariants int
}

// AggregateVariants groups genotype columns by pathway. A variant column
// belongs to a pathway when its gene prefix (the text before the first
// ':') is a pathway member. Pathways with no variants are omitted.
func AggregateVariants(genotypes *Frame, pathways map[string][]string) (map[string]*Frame, error) {
	grouped := map[string]*Frame{}
	for pw, genes := range pathways {
		member := make(map[string]bool, len(genes))
		for _, g := range genes {
			member[g] = true
		}
		var cols []string
		for _, id := range genotypes.ColIDs() {
			gene := id
			if i := strings.Index(id, ":"); i >= 0 {
				gene = id[:i]
			}
			if member[gene] {
				cols = append(cols, id)
			}
		}
		if len(cols) == 0 {
			continue
		}
		sub, err := genotypes.SelectCols(cols)
		if err != nil {
			return nil, err
		}
		grouped[pw] = sub
		log.Debugf("pathway %s has %d variants", pw, len(cols))
	}
	return grouped, nil
}

// AssociationTest correlates each pathway's activation scores with each of
// its variant dosage columns and records the minimal two-sided p-value.
// Pathways absent from the PAS matrix are skipped. Results are in sorted
// pathway order.
func AssociationTest(pas *Frame, variants map[string]*Frame) ([]AssocResult, error) {
	names := make([]string, 0, len(variants))
	for pw := range variants {
		names = append(names, pw)
	}
	sort.Strings(names)

	var results []AssocResult
	for _, pw := range names {
		if !pas.HasCol(pw) {
			continue
		}
		scores, err := pas.Col(pw)
		if err != nil {
			return nil, err
		}
		geno := variants[pw]
		minP := math.Inf(1)
		for _, id := range geno.ColIDs() {
			dosage, err := geno.Col(id)
			if err != nil {
				return nil, err
			}
			if p := pearsonPvalue(scores, dosage); p < minP {
				minP = p
			}
		}
		log.Debugf("%s min p-value %f", pw, minP)
		results = append(results, AssocResult{Pathway: pw, MinP: minP, NVariants: len(geno.ColIDs())})
	}
	return results, nil
}

// pearsonPvalue returns the two-sided p-value for the Pearson correlation
// of x and y under the exact t-distribution with n-2 degrees of freedom.
func pearsonPvalue(x, y []float64) float64 {
	n := len(x)
	if n < 3 {
		return 1
	}
	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) {
		return 1
	}
	if 1-r*r <= 0 {
		return 0
	}
	t := r * math.Sqrt(float64(n-2)/(1-r*r))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 2), Src: tsrc}
	return 2 * dist.CDF(-math.Abs(t))
}

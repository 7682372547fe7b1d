// Copyright (C) The pathWAS Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package pathwas

import (
	"bufio"
	"fmt"
	"io"
	"math"

	"github.com/klauspost/pgzip"
	log "github.com/sirupsen/logrus"
)

// GeneratePASSummaryStats writes LDSC-compatible summary statistics for a
// pathway activation score to w, gzip-compressed. Each SNP gets
// Z = weight * sqrt(var), with variance 1.0 for SNPs missing from snpVar
// (snpVar may be nil). The fixed A1/A2/N/CHR columns and 1-based BP
// positions follow the LDSC munged-sumstats convention for synthetic
// traits.
func GeneratePASSummaryStats(snpWeights, snpVar *Vector, w io.Writer, trait string) error {
	gzw := pgzip.NewWriter(w)
	bufw := bufio.NewWriter(gzw)
	if _, err := fmt.Fprintln(bufw, "SNP\tA1\tA2\tZ\tN\tCHR\tBP"); err != nil {
		return err
	}
	badVar := 0
	for i, snp := range snpWeights.Keys() {
		v := 1.0
		if snpVar != nil {
			if sv, ok := snpVar.Get(snp); ok {
				v = sv
			}
		}
		if v <= 0 {
			badVar++
		}
		z := snpWeights.Values()[i] * math.Sqrt(v)
		if _, err := fmt.Fprintf(bufw, "%s\tA\tG\t%g\t%d\t%d\t%d\n", snp, z, 10000, 1, i+1); err != nil {
			return err
		}
	}
	if badVar > 0 {
		log.Warnf("%d SNP variances are zero or negative", badVar)
	}
	if err := bufw.Flush(); err != nil {
		return err
	}
	if err := gzw.Close(); err != nil {
		return err
	}
	log.Infof("wrote %s summary stats for %d SNPs", trait, snpWeights.Len())
	return nil
}

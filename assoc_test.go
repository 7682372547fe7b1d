// Copyright (C) The pathWAS Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package pathwas

import (
	"math"

	"gopkg.in/check.v1"
)

type assocSuite struct{}

var _ = check.Suite(&assocSuite{})

func (s *assocSuite) TestAggregateVariants(c *check.C) {
	genotypes, err := NewFrame(
		[]string{"s1", "s2", "s3"},
		[]string{"TP53:17:7574003", "BRCA1:17:43044295", "EGFR:7:55019017"},
		[]float64{
			0, 1, 2,
			1, 1, 0,
			2, 0, 1,
		})
	c.Assert(err, check.IsNil)
	pathways := map[string][]string{
		"pw1": {"TP53", "EGFR"},
		"pw2": {"NOPE"},
	}

	grouped, err := AggregateVariants(genotypes, pathways)
	c.Assert(err, check.IsNil)
	c.Assert(grouped["pw1"], check.NotNil)
	c.Check(grouped["pw1"].ColIDs(), check.DeepEquals, []string{"TP53:17:7574003", "EGFR:7:55019017"})
	_, ok := grouped["pw2"]
	c.Check(ok, check.Equals, false)
}

func (s *assocSuite) TestAssociationTest(c *check.C) {
	pas, err := NewFrame([]string{"s1", "s2", "s3", "s4"}, []string{"pw1"}, []float64{0.1, 1.2, 2.1, 2.9})
	c.Assert(err, check.IsNil)
	perfect, err := NewFrame([]string{"s1", "s2", "s3", "s4"}, []string{"TP53:1:1"}, []float64{0.1, 1.2, 2.1, 2.9})
	c.Assert(err, check.IsNil)

	results, err := AssociationTest(pas, map[string]*Frame{"pw1": perfect, "missing": perfect})
	c.Assert(err, check.IsNil)
	c.Assert(results, check.HasLen, 1)
	c.Check(results[0].Pathway, check.Equals, "pw1")
	c.Check(results[0].NVariants, check.Equals, 1)
	// PAS identical to the dosage vector: |r| = 1, p = 0
	c.Check(results[0].MinP, check.Equals, 0.0)
}

func (s *assocSuite) TestPearsonPvalue(c *check.C) {
	x := []float64{1, 2, 3, 4, 5}
	y := []float64{2, 1, 4, 3, 5}
	// r = 0.8, n = 5: two-sided p from t(3), scipy gives 0.10405
	p := pearsonPvalue(x, y)
	c.Check(math.Abs(p-0.10405) < 1e-3, check.Equals, true, check.Commentf("p=%v", p))

	c.Check(pearsonPvalue(x, x), check.Equals, 0.0)
	c.Check(pearsonPvalue([]float64{1, 2}, []float64{3, 4}), check.Equals, 1.0)
	// constant series has no defined correlation
	c.Check(pearsonPvalue(x, []float64{1, 1, 1, 1, 1}), check.Equals, 1.0)
}

func (s *assocSuite) TestCovariance(c *check.C) {
	genotypes, err := NewFrame([]string{"s1", "s2", "s3"}, []string{"v1", "v2"}, []float64{
		0, 2,
		1, 1,
		2, 0,
	})
	c.Assert(err, check.IsNil)
	cov, err := Covariance(genotypes)
	c.Assert(err, check.IsNil)
	c.Check(cov.RowIDs(), check.DeepEquals, []string{"v1", "v2"})
	c.Check(cov.ColIDs(), check.DeepEquals, []string{"v1", "v2"})
	c.Check(cov.At(0, 0), check.Equals, 1.0)
	c.Check(cov.At(0, 1), check.Equals, -1.0)
	c.Check(cov.At(1, 0), check.Equals, -1.0)
	c.Check(cov.At(1, 1), check.Equals, 1.0)
}

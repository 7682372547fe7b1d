// Copyright (C) The pathWAS Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package pathwas

import (
	"errors"
	"math"

	"gopkg.in/check.v1"
)

type pasSuite struct{}

var _ = check.Suite(&pasSuite{})

func twoGeneExpr(c *check.C) *Frame {
	// samples s1,s2 x genes g1=[1,2], g2=[3,4]
	expr, err := NewFrame([]string{"s1", "s2"}, []string{"g1", "g2"}, []float64{
		1, 3,
		2, 4,
	})
	c.Assert(err, check.IsNil)
	return expr
}

func (s *pasSuite) TestMeanSumMedian(c *check.C) {
	expr := twoGeneExpr(c)
	pathways := map[string][]string{"pw1": {"g1", "g2"}}

	pas, weights, err := ComputePAS(expr, pathways, MethodMean, "", false, false)
	c.Assert(err, check.IsNil)
	c.Check(weights, check.IsNil)
	col, err := pas.Col("pw1")
	c.Assert(err, check.IsNil)
	c.Check(col, check.DeepEquals, []float64{2, 3})

	pas, _, err = ComputePAS(expr, pathways, MethodSum, "", false, false)
	c.Assert(err, check.IsNil)
	col, err = pas.Col("pw1")
	c.Assert(err, check.IsNil)
	c.Check(col, check.DeepEquals, []float64{4, 6})

	pas, _, err = ComputePAS(expr, pathways, MethodMedian, "", false, false)
	c.Assert(err, check.IsNil)
	col, err = pas.Col("pw1")
	c.Assert(err, check.IsNil)
	c.Check(col, check.DeepEquals, []float64{2, 3})
}

func (s *pasSuite) TestActivityWeightedEqualWeights(c *check.C) {
	// perfectly co-linear genes get equal weight
	expr, err := NewFrame([]string{"s1", "s2", "s3"}, []string{"g1", "g2"}, []float64{
		1, 2,
		2, 4,
		3, 6,
	})
	c.Assert(err, check.IsNil)
	pathways := map[string][]string{"pw1": {"g1", "g2"}}

	pas, weights, err := ComputePAS(expr, pathways, MethodActivityWeighted, CorrPearson, false, false)
	c.Assert(err, check.IsNil)
	c.Assert(weights["pw1"], check.NotNil)
	c.Check(len(weights["pw1"]), check.Equals, 2)
	c.Check(math.Abs(weights["pw1"]["g1"]-weights["pw1"]["g2"]) < 1e-6, check.Equals, true)

	col, err := pas.Col("pw1")
	c.Assert(err, check.IsNil)
	for i, want := range []float64{1.5, 3.0, 4.5} {
		c.Check(math.Abs(col[i]-want) < 1e-9, check.Equals, true, check.Commentf("sample %d: got %v", i, col[i]))
	}
}

func (s *pasSuite) TestSingleGenePathway(c *check.C) {
	expr := twoGeneExpr(c)
	pas, weights, err := ComputePAS(expr, map[string][]string{"pw1": {"g2"}}, MethodActivityWeighted, CorrPearson, false, false)
	c.Assert(err, check.IsNil)
	c.Check(weights["pw1"]["g2"], check.Equals, 1.0)
	col, err := pas.Col("pw1")
	c.Assert(err, check.IsNil)
	c.Check(col, check.DeepEquals, []float64{3, 4})
}

func (s *pasSuite) TestEmptyIntersectionOmitted(c *check.C) {
	expr := twoGeneExpr(c)
	pathways := map[string][]string{
		"present": {"g1"},
		"absent":  {"nope1", "nope2"},
	}
	pas, weights, err := ComputePAS(expr, pathways, MethodActivityWeighted, CorrPearson, false, false)
	c.Assert(err, check.IsNil)
	c.Check(pas.ColIDs(), check.DeepEquals, []string{"present"})
	_, ok := weights["absent"]
	c.Check(ok, check.Equals, false)
}

func (s *pasSuite) TestUnknownMethodRejected(c *check.C) {
	expr := twoGeneExpr(c)
	pathways := map[string][]string{"pw1": {"g1", "g2"}}

	_, _, err := ComputePAS(expr, pathways, "bogus", CorrPearson, false, false)
	c.Check(errors.Is(err, ErrInvalidArgument), check.Equals, true)
	c.Check(err, check.ErrorMatches, `.*unknown PAS method "bogus".*`)

	_, _, err = ComputePAS(expr, pathways, MethodActivityWeighted, "bogus", false, false)
	c.Check(errors.Is(err, ErrInvalidArgument), check.Equals, true)
	c.Check(err, check.ErrorMatches, `.*unknown correlation method "bogus".*`)

	// corr method is only consulted for activity_weighted
	_, _, err = ComputePAS(expr, pathways, MethodMean, "bogus", false, false)
	c.Check(err, check.IsNil)
}

func (s *pasSuite) TestNormalizeSamples(c *check.C) {
	expr := twoGeneExpr(c)
	pas, _, err := ComputePAS(expr, map[string][]string{"pw1": {"g1", "g2"}}, MethodMean, "", true, false)
	c.Assert(err, check.IsNil)
	col, err := pas.Col("pw1")
	c.Assert(err, check.IsNil)
	// column [2,3]: mean 2.5, population std 0.5
	c.Check(col, check.DeepEquals, []float64{-1, 1})
}

func (s *pasSuite) TestNormalizePathways(c *check.C) {
	expr := twoGeneExpr(c)
	pathways := map[string][]string{"pw1": {"g1"}, "pw2": {"g2"}}
	pas, _, err := ComputePAS(expr, pathways, MethodMean, "", false, true)
	c.Assert(err, check.IsNil)
	// each row z-scored across pathways: row s1 = [1,3] -> [-1,1]
	c.Check(pas.At(0, 0), check.Equals, -1.0)
	c.Check(pas.At(0, 1), check.Equals, 1.0)
	c.Check(pas.At(1, 0), check.Equals, -1.0)
	c.Check(pas.At(1, 1), check.Equals, 1.0)
}

func (s *pasSuite) TestZeroVarianceLeftUnnormalized(c *check.C) {
	expr, err := NewFrame([]string{"s1", "s2"}, []string{"g1"}, []float64{5, 5})
	c.Assert(err, check.IsNil)
	pas, _, err := ComputePAS(expr, map[string][]string{"pw1": {"g1"}}, MethodMean, "", true, false)
	c.Assert(err, check.IsNil)
	col, err := pas.Col("pw1")
	c.Assert(err, check.IsNil)
	c.Check(col, check.DeepEquals, []float64{5, 5})
}

func (s *pasSuite) TestNaNPropagation(c *check.C) {
	expr, err := NewFrame([]string{"s1", "s2"}, []string{"g1", "g2", "g3"}, []float64{
		1, 3, math.NaN(),
		2, 4, 6,
	})
	c.Assert(err, check.IsNil)
	pathways := map[string][]string{"pw1": {"g1", "g2", "g3"}}

	pas, _, err := ComputePAS(expr, pathways, MethodMean, "", false, false)
	c.Assert(err, check.IsNil)
	col, err := pas.Col("pw1")
	c.Assert(err, check.IsNil)
	c.Check(math.IsNaN(col[0]), check.Equals, true)
	c.Check(col[1], check.Equals, 4.0)

	// median ignores missing values
	pas, _, err = ComputePAS(expr, pathways, MethodMedian, "", false, false)
	c.Assert(err, check.IsNil)
	col, err = pas.Col("pw1")
	c.Assert(err, check.IsNil)
	c.Check(col[0], check.Equals, 2.0)
	c.Check(col[1], check.Equals, 4.0)
}

// Copyright (C) The pathWAS Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package pathwas

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
	"gopkg.in/check.v1"
)

type twasSuite struct{}

var _ = check.Suite(&twasSuite{})

func (s *twasSuite) TestClosedForm(c *check.C) {
	weights, err := NewVector([]string{"snp1", "snp2"}, []float64{0.5, 0.5})
	c.Assert(err, check.IsNil)
	z, err := NewVector([]string{"snp1", "snp2"}, []float64{1.0, 2.0})
	c.Assert(err, check.IsNil)
	ld := mat.NewDense(2, 2, []float64{1.0, 0.1, 0.1, 1.0})

	zPathway, varPAS, contrib, err := PathwayTWAS(weights, z, ld, nil, true)
	c.Assert(err, check.IsNil)
	c.Check(math.Abs(varPAS-0.55) < 1e-12, check.Equals, true, check.Commentf("varPAS=%v", varPAS))
	c.Check(math.Abs(zPathway-0.825) < 1e-12, check.Equals, true, check.Commentf("zPathway=%v", zPathway))
	c.Assert(contrib, check.NotNil)
	c.Check(contrib.Keys(), check.DeepEquals, []string{"snp1", "snp2"})
	c.Check(math.Abs(contrib.Values()[0]-0.275) < 1e-12, check.Equals, true)
	c.Check(math.Abs(contrib.Values()[1]-0.55) < 1e-12, check.Equals, true)
	// contributions sum exactly to the pathway Z-score
	c.Check(contrib.Values()[0]+contrib.Values()[1], check.Equals, zPathway)
}

func (s *twasSuite) TestDegenerateVariance(c *check.C) {
	weights, err := NewVector([]string{"a", "b"}, []float64{0, 0})
	c.Assert(err, check.IsNil)
	z, err := NewVector([]string{"a", "b"}, []float64{1.0, 2.0})
	c.Assert(err, check.IsNil)
	ld := mat.NewDense(2, 2, []float64{1, 0, 0, 1})

	zPathway, varPAS, contrib, err := PathwayTWAS(weights, z, ld, nil, false)
	c.Assert(err, check.IsNil)
	c.Check(math.IsNaN(zPathway), check.Equals, true)
	c.Check(varPAS, check.Equals, 0.0)
	c.Check(contrib, check.IsNil)

	zPathway, varPAS, contrib, err = PathwayTWAS(weights, z, ld, nil, true)
	c.Assert(err, check.IsNil)
	c.Check(math.IsNaN(zPathway), check.Equals, true)
	c.Check(varPAS, check.Equals, 0.0)
	c.Assert(contrib, check.NotNil)
	c.Check(contrib.Values(), check.DeepEquals, []float64{0, 0})
}

func (s *twasSuite) TestShapeValidation(c *check.C) {
	weights, err := NewVector([]string{"a", "b"}, []float64{0.5, 0.5})
	c.Assert(err, check.IsNil)
	z, err := NewVector([]string{"a", "b"}, []float64{1.0, 2.0})
	c.Assert(err, check.IsNil)

	_, _, _, err = PathwayTWAS(weights, z, mat.NewDense(3, 3, nil), nil, false)
	c.Check(errors.Is(err, ErrInvalidArgument), check.Equals, true)
	c.Check(err, check.ErrorMatches, `.*ld_matrix dimensions.*`)

	_, _, _, err = PathwayTWAS(weights, z, mat.NewDense(2, 3, nil), nil, false)
	c.Check(errors.Is(err, ErrInvalidArgument), check.Equals, true)

	ld := mat.NewDense(2, 2, []float64{1, 0, 0, 1})
	_, _, _, err = PathwayTWAS(weights, z, ld, []float64{1, 1, 1}, false)
	c.Check(errors.Is(err, ErrInvalidArgument), check.Equals, true)
	c.Check(err, check.ErrorMatches, `.*snp_var length.*`)
}

func (s *twasSuite) TestRealignment(c *check.C) {
	weights, err := NewVector([]string{"snp1", "snp2"}, []float64{0.5, 0.5})
	c.Assert(err, check.IsNil)
	// same keys, reversed order
	z, err := NewVector([]string{"snp2", "snp1"}, []float64{2.0, 1.0})
	c.Assert(err, check.IsNil)
	ld := mat.NewDense(2, 2, []float64{1.0, 0.1, 0.1, 1.0})

	zPathway, varPAS, _, err := PathwayTWAS(weights, z, ld, nil, false)
	c.Assert(err, check.IsNil)
	c.Check(math.Abs(varPAS-0.55) < 1e-12, check.Equals, true)
	c.Check(math.Abs(zPathway-0.825) < 1e-12, check.Equals, true)

	missing, err := NewVector([]string{"snp1", "snp3"}, []float64{1.0, 2.0})
	c.Assert(err, check.IsNil)
	_, _, _, err = PathwayTWAS(weights, missing, ld, nil, false)
	c.Check(errors.Is(err, ErrInvalidArgument), check.Equals, true)
	c.Check(err, check.ErrorMatches, `.*indices of snp_weights and z_scores must match.*`)
}

func (s *twasSuite) TestExplicitVariance(c *check.C) {
	weights, err := NewVector([]string{"a", "b"}, []float64{0.5, 0.5})
	c.Assert(err, check.IsNil)
	z, err := NewVector([]string{"a", "b"}, []float64{1.0, 2.0})
	c.Assert(err, check.IsNil)
	ld := mat.NewDense(2, 2, []float64{1.0, 0.1, 0.1, 1.0})

	// doubling all variances halves every contribution
	zPathway, _, _, err := PathwayTWAS(weights, z, ld, []float64{2, 2}, false)
	c.Assert(err, check.IsNil)
	c.Check(math.Abs(zPathway-0.4125) < 1e-12, check.Equals, true)
}

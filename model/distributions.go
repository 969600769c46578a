/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package model

import (
	"errors"
	"math"
)

// ErrDimension is returned when vector and matrix sizes disagree.
var ErrDimension = errors.New("safetype(model): dimension mismatch")

// Gaussian is a univariate normal distribution in natural parameters.
type Gaussian struct {
	MeanTimesPrecision float64 `json:"meanTimesPrecision" yaml:"meanTimesPrecision"`
	Precision          float64 `json:"precision" yaml:"precision"`
}

// NewGaussian builds a Gaussian from mean and variance.
func NewGaussian(mean, variance float64) Gaussian {
	p := 1 / variance
	return Gaussian{MeanTimesPrecision: mean * p, Precision: p}
}

// Mean returns the distribution mean; zero for an improper uniform.
func (g Gaussian) Mean() float64 {
	if g.Precision == 0 {
		return 0
	}
	return g.MeanTimesPrecision / g.Precision
}

// Variance returns the variance; +Inf for an improper uniform.
func (g Gaussian) Variance() float64 {
	if g.Precision == 0 {
		return math.Inf(1)
	}
	return 1 / g.Precision
}

// Gamma is a Gamma distribution with shape and rate.
type Gamma struct {
	Shape float64 `json:"shape" yaml:"shape"`
	Rate  float64 `json:"rate" yaml:"rate"`
}

// Mean returns Shape/Rate; +Inf for a non-positive rate.
func (g Gamma) Mean() float64 {
	if g.Rate <= 0 {
		return math.Inf(1)
	}
	return g.Shape / g.Rate
}

// Beta is a Beta distribution over a probability.
type Beta struct {
	TrueCount  float64 `json:"trueCount" yaml:"trueCount"`
	FalseCount float64 `json:"falseCount" yaml:"falseCount"`
}

// Mean returns TrueCount / (TrueCount + FalseCount); 0.5 when both are zero.
func (b Beta) Mean() float64 {
	total := b.TrueCount + b.FalseCount
	if total == 0 {
		return 0.5
	}
	return b.TrueCount / total
}

// Bernoulli is a distribution over a bool, stored as log odds.
type Bernoulli struct {
	LogOdds float64 `json:"logOdds" yaml:"logOdds"`
}

// ProbTrue returns the probability of true.
func (b Bernoulli) ProbTrue() float64 { return 1 / (1 + math.Exp(-b.LogOdds)) }

// Poisson is a distribution over counts.
type Poisson struct {
	Rate float64 `json:"rate" yaml:"rate"`
}

// Discrete is a distribution over 0..len(Probs)-1.
type Discrete struct {
	Probs []float64 `json:"probs" yaml:"probs"`
}

// Dimension returns the number of outcomes.
func (d Discrete) Dimension() int { return len(d.Probs) }

// Mode returns the most probable outcome, or -1 when empty.
func (d Discrete) Mode() int {
	best := -1
	for i, p := range d.Probs {
		if best < 0 || p > d.Probs[best] {
			best = i
		}
	}
	return best
}

// Dirichlet is a distribution over probability vectors.
type Dirichlet struct {
	PseudoCount []float64 `json:"pseudoCount" yaml:"pseudoCount"`
}

// MeanDiscrete returns the expected probability vector as a Discrete.
// Pseudo-counts that do not sum to a positive value give the uniform vector.
func (d Dirichlet) MeanDiscrete() Discrete {
	var sum float64
	for _, c := range d.PseudoCount {
		sum += c
	}
	probs := make([]float64, len(d.PseudoCount))
	for i, c := range d.PseudoCount {
		if sum > 0 {
			probs[i] = c / sum
		} else {
			probs[i] = 1 / float64(len(probs))
		}
	}
	return Discrete{Probs: probs}
}

// Matrix is a dense row-major matrix stored as a rank-2 array shape.
type Matrix struct {
	Values struct {
		Shape [2]int
		Data  []float64
	} `json:"values" yaml:"values"`
}

// NewMatrix allocates a rows x cols zero matrix. Negative sizes count as 0.
func NewMatrix(rows, cols int) Matrix {
	rows, cols = max(rows, 0), max(cols, 0)
	var m Matrix
	m.Values.Shape = [2]int{rows, cols}
	m.Values.Data = make([]float64, rows*cols)
	return m
}

// Rows returns the number of rows.
func (m Matrix) Rows() int { return m.Values.Shape[0] }

// Cols returns the number of columns.
func (m Matrix) Cols() int { return m.Values.Shape[1] }

func (m Matrix) index(i, j int) (int, bool) {
	rows, cols := m.Values.Shape[0], m.Values.Shape[1]
	if i < 0 || j < 0 || i >= rows || j >= cols {
		return 0, false
	}
	k := i*cols + j
	return k, k < len(m.Values.Data)
}

// At returns the element at (i, j), or false when (i, j) is outside the
// matrix or its data.
func (m Matrix) At(i, j int) (float64, bool) {
	k, ok := m.index(i, j)
	if !ok {
		return 0, false
	}
	return m.Values.Data[k], true
}

// Set stores v at (i, j). It returns ErrDimension when (i, j) is outside
// the matrix or its data.
func (m Matrix) Set(i, j int, v float64) error {
	k, ok := m.index(i, j)
	if !ok {
		return ErrDimension
	}
	m.Values.Data[k] = v
	return nil
}

// VectorGaussian is a multivariate normal in natural parameters.
type VectorGaussian struct {
	MeanTimesPrecision []float64 `json:"meanTimesPrecision" yaml:"meanTimesPrecision"`
	Precision          Matrix    `json:"precision" yaml:"precision"`
}

// Validate checks that the precision matrix matches the vector dimension.
func (v VectorGaussian) Validate() error {
	n := len(v.MeanTimesPrecision)
	if v.Precision.Values.Shape != [2]int{n, n} || len(v.Precision.Values.Data) != n*n {
		return ErrDimension
	}
	return nil
}

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
	"time"

	"github.com/google/uuid"
)

// Algorithm names the inference algorithm that produced a state.
type Algorithm string

const (
	ExpectationPropagation Algorithm = "ep"
	VariationalMessage     Algorithm = "vmp"
	GibbsSampling          Algorithm = "gibbs"
)

// Header identifies a persisted inference run.
type Header struct {
	ID        uuid.UUID `json:"id" yaml:"id"`
	Model     string    `json:"model" yaml:"model"`
	Algorithm Algorithm `json:"algorithm" yaml:"algorithm"`
	Created   time.Time `json:"created" yaml:"created"`
}

// NewHeader stamps a new run of the named model.
func NewHeader(model string, alg Algorithm) Header {
	return Header{ID: uuid.New(), Model: model, Algorithm: alg, Created: time.Now().UTC()}
}

// State is the persisted result of an inference run.
type State struct {
	Header

	Iterations int                            `json:"iterations" yaml:"iterations"`
	Converged  bool                           `json:"converged" yaml:"converged"`
	Means      map[string]Posterior[Gaussian] `json:"means" yaml:"means"`
	Precisions []Posterior[Gamma]             `json:"precisions" yaml:"precisions"`
	Switches   map[string]Bernoulli           `json:"switches" yaml:"switches"`
	Clusters   *Mixture[Gaussian]             `json:"clusters,omitempty" yaml:"clusters,omitempty"`
	Labels     []Posterior[Discrete]          `json:"labels" yaml:"labels"`
	Observed   []PointMass[float64]           `json:"observed" yaml:"observed"`
	Ranges     []Pair[float64, float64]       `json:"ranges" yaml:"ranges"`
	Covariance VectorGaussian                 `json:"covariance" yaml:"covariance"`
	Trace      *Trace                         `json:"trace,omitempty" yaml:"trace,omitempty"`
}

// Trace records the evidence per iteration. Children link nested runs.
type Trace struct {
	LogEvidence []float64 `json:"logEvidence" yaml:"logEvidence"`
	Children    []*Trace  `json:"children,omitempty" yaml:"children,omitempty"`
	Owner       *State    `json:"-" yaml:"-"`
}

// Factor connects variables in a compiled factor graph.
type Factor struct {
	Name      string     `json:"name" yaml:"name"`
	Variables []Variable `json:"variables" yaml:"variables"`
}

// Variable is a random variable of a compiled factor graph.
type Variable struct {
	Name    string    `json:"name" yaml:"name"`
	Prior   *Gaussian `json:"prior,omitempty" yaml:"prior,omitempty"`
	Factors []*Factor `json:"-" yaml:"-"`
}

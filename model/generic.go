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
	"reflect"
)

// PointMass is a distribution concentrated on a single value.
type PointMass[T any] struct {
	Point T `json:"point" yaml:"point"`
}

// GenericArgs implements apis.Instantiated.
func (PointMass[T]) GenericArgs() []reflect.Type { return []reflect.Type{reflect.TypeFor[T]()} }

// Mixture is a weighted mixture of component distributions.
type Mixture[D any] struct {
	Weights    Dirichlet `json:"weights" yaml:"weights"`
	Components []D       `json:"components" yaml:"components"`
}

// GenericArgs implements apis.Instantiated.
func (Mixture[D]) GenericArgs() []reflect.Type { return []reflect.Type{reflect.TypeFor[D]()} }

// Posterior is the inferred marginal of a named model variable.
type Posterior[D any] struct {
	Variable    string  `json:"variable" yaml:"variable"`
	Dist        D       `json:"dist" yaml:"dist"`
	LogEvidence float64 `json:"logEvidence" yaml:"logEvidence"`
}

// GenericArgs implements apis.Instantiated.
func (Posterior[D]) GenericArgs() []reflect.Type { return []reflect.Type{reflect.TypeFor[D]()} }

// Pair groups two values.
type Pair[A, B any] struct {
	First  A `json:"first" yaml:"first"`
	Second B `json:"second" yaml:"second"`
}

// GenericArgs implements apis.Instantiated.
func (Pair[A, B]) GenericArgs() []reflect.Type {
	return []reflect.Type{reflect.TypeFor[A](), reflect.TypeFor[B]()}
}

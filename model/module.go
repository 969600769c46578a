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

	"dirpx.dev/safetype/apis"
)

// Path is the import path of this package.
var Path = reflect.TypeFor[Gaussian]().PkgPath()

// Module returns the static table of persisted types declared here.
func Module() apis.Module {
	return apis.Module{
		Path: Path,
		Types: []reflect.Type{
			reflect.TypeFor[Gaussian](),
			reflect.TypeFor[Gamma](),
			reflect.TypeFor[Beta](),
			reflect.TypeFor[Bernoulli](),
			reflect.TypeFor[Poisson](),
			reflect.TypeFor[Discrete](),
			reflect.TypeFor[Dirichlet](),
			reflect.TypeFor[Matrix](),
			reflect.TypeFor[VectorGaussian](),
			reflect.TypeFor[Header](),
			reflect.TypeFor[State](),
			reflect.TypeFor[Factor](),
			reflect.TypeFor[Mixture[Bernoulli]](),
			reflect.TypeFor[PointMass[Discrete]](),
		},
	}
}

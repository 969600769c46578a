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

package allowlist

import (
	"fmt"
	"reflect"
	"strconv"

	"dirpx.dev/safetype/apis"
	uref "dirpx.dev/safetype/utils/reflect"
)

// Names of the built-in structural shapes.
const (
	MapShape      = "map`2"
	PointerShape  = "ptr`1"
	ComparerShape = "comparer`1"
)

// TupleShape returns the shape name of an n-ary tuple, e.g. "tuple`2".
func TupleShape(n int) string { return "tuple`" + strconv.Itoa(n) }

// shape is an open generic definition closed by reflection over any
// allowlisted arguments.
type shape struct {
	name  string
	arity int
	build func(args []reflect.Type) (reflect.Type, error)
}

var _ apis.Generic = (*shape)(nil)

func (s *shape) Name() string { return s.name }
func (s *shape) Arity() int   { return s.arity }

func (s *shape) Instantiate(args []reflect.Type) (reflect.Type, error) {
	if len(args) != s.arity {
		return nil, apis.NewArityMismatchError(s.name, s.arity, len(args))
	}
	return s.build(args)
}

// Shapes returns the built-in open generic definitions.
func Shapes() []apis.Generic {
	out := []apis.Generic{
		&shape{name: MapShape, arity: 2, build: func(a []reflect.Type) (reflect.Type, error) {
			if !a[0].Comparable() {
				return nil, apis.NewInvalidArgumentError(MapShape, fmt.Errorf("key type %v is not comparable", a[0]))
			}
			return reflect.MapOf(a[0], a[1]), nil
		}},
		&shape{name: PointerShape, arity: 1, build: func(a []reflect.Type) (reflect.Type, error) {
			return reflect.PointerTo(a[0]), nil
		}},
		&shape{name: ComparerShape, arity: 1, build: func(a []reflect.Type) (reflect.Type, error) {
			return uref.ComparerOf(a[0]), nil
		}},
	}
	for n := 2; n <= uref.MaxTupleArity; n++ {
		out = append(out, &shape{name: TupleShape(n), arity: n, build: func(a []reflect.Type) (reflect.Type, error) {
			return uref.TupleOf(a...), nil
		}})
	}
	return out
}

// Seeds returns the predeclared types every allowlist starts from.
func Seeds() []reflect.Type {
	return []reflect.Type{
		reflect.TypeFor[bool](),
		reflect.TypeFor[string](),
		reflect.TypeFor[int](),
		reflect.TypeFor[int8](),
		reflect.TypeFor[int16](),
		reflect.TypeFor[int32](),
		reflect.TypeFor[int64](),
		reflect.TypeFor[uint](),
		reflect.TypeFor[uint8](),
		reflect.TypeFor[uint16](),
		reflect.TypeFor[uint32](),
		reflect.TypeFor[uint64](),
		reflect.TypeFor[float32](),
		reflect.TypeFor[float64](),
		reflect.TypeFor[complex64](),
		reflect.TypeFor[complex128](),
	}
}

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

package reflect

import (
	"errors"
	"reflect"

	"dirpx.dev/safetype/apis"
	"dirpx.dev/safetype/config"
)

var (
	// ErrReflectNilType is returned when a nil reflect.Type is provided.
	ErrReflectNilType = errors.New("reflect: nil reflect.Type provided")
	// ErrReflectTypeNotNamed indicates that the provided type (after unwrapping containers)
	// does not contain a named type (e.g., anonymous struct, func, interface{}).
	ErrReflectTypeNotNamed = errors.New("reflect: type has no named component")
)

// BuiltinOwner is the owner reported for predeclared and unnamed types.
const BuiltinOwner = "builtin"

// Normalize unwraps containers according to cfg.MaxUnwrap and returns the
// nearest named inner type, or an error if none is found.
//
// Unwrapping policy:
//   - ptr/slice/array/chan  -> Elem()
//   - rank-N array shapes   -> element type
//   - map[K]V: the nearest named type inside V, then K if named.
//   - default: if t.Name() != "", return t; otherwise ErrReflectTypeNotNamed.
//
// If MaxUnwrap <= 0, DefaultMaxUnwrap is used.
func Normalize(t reflect.Type, cfg apis.Config) (reflect.Type, error) {
	if t == nil {
		return nil, ErrReflectNilType
	}
	maxUnwrap := cfg.MaxUnwrap
	if maxUnwrap <= 0 {
		maxUnwrap = config.DefaultMaxUnwrap
	}

	if n, ok := normalize(t, maxUnwrap); ok {
		return n, nil
	}
	return nil, ErrReflectTypeNotNamed
}

// normalize unwraps t at most budget times.
func normalize(t reflect.Type, budget int) (reflect.Type, bool) {
	for ; t != nil; budget-- {
		if t.Name() != "" {
			return t, true
		}
		if budget <= 0 {
			return nil, false
		}
		switch t.Kind() {
		case reflect.Ptr, reflect.Slice, reflect.Array, reflect.Chan:
			t = t.Elem()

		case reflect.Map:
			if n, ok := normalize(t.Elem(), budget-1); ok {
				return n, true
			}
			if kt := t.Key(); kt.Name() != "" {
				return kt, true
			}
			return nil, false

		case reflect.Struct:
			elem, _, ok := ArrayShape(t)
			if !ok {
				return nil, false
			}
			t = elem

		default:
			return nil, false
		}
	}
	return nil, false
}

// Owner returns the package path that owns t: the package of its nearest
// named component, or BuiltinOwner for predeclared and unnamed types.
func Owner(t reflect.Type, cfg apis.Config) string {
	n, err := Normalize(t, cfg)
	if err != nil || n.PkgPath() == "" {
		return BuiltinOwner
	}
	return n.PkgPath()
}

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

// Package reconstruct turns a parsed type name into a live reflect.Type by
// composing allowlist entries. It never consults anything but the registry
// it is given.
//
// Structural shapes (maps, pointers, tuples, comparers and rank-N arrays)
// are built with reflect.MapOf, PointerTo, StructOf, FuncOf and SliceOf.
// The reflect package caches every such type for the life of the process:
// resolving the same name again returns the cached type, but each distinct
// accepted name adds one. Per name the cost is bounded by the length cap,
// MaxRank and typename.MaxNesting; across names it is not. Hosts decoding
// untrusted streams at high volume should lower MaxNameLength and MaxRank,
// or put the known names in a knowntypes registry and resolve through it
// alone.
package reconstruct

import (
	"errors"
	"fmt"
	"reflect"

	"dirpx.dev/safetype/apis"
	"dirpx.dev/safetype/config"
	"dirpx.dev/safetype/typename"
	uref "dirpx.dev/safetype/utils/reflect"
)

// ErrNilRegistry is returned by New when no registry is supplied.
var ErrNilRegistry = errors.New("safetype(reconstruct): nil registry")

// Option configures a Reconstructor.
type Option func(*Reconstructor)

// WithMaxRank bounds the rank of a single array level. Non-positive values
// keep the default.
func WithMaxRank(max int) Option {
	return func(r *Reconstructor) {
		if max > 0 {
			r.maxRank = max
		}
	}
}

// Reconstructor resolves typename trees against a registry.
// It holds no mutable state and is safe for concurrent use.
type Reconstructor struct {
	reg     apis.Registry
	maxRank int
}

// New returns a Reconstructor over reg.
func New(reg apis.Registry, opts ...Option) (*Reconstructor, error) {
	if reg == nil {
		return nil, ErrNilRegistry
	}
	r := &Reconstructor{reg: reg, maxRank: config.DefaultMaxRank}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Resolve returns the type described by n.
func (r *Reconstructor) Resolve(n *typename.Name) (reflect.Type, error) {
	if n == nil {
		return nil, apis.NewInvalidArgumentError("", errors.New("nil type name"))
	}
	return r.resolve(n.Name, n.Args, n.Layout)
}

func (r *Reconstructor) resolve(name string, args []*typename.Name, layout []int) (reflect.Type, error) {
	if len(layout) > 0 {
		rank := layout[0]
		if rank < 1 || rank > r.maxRank {
			return nil, apis.NewInvalidArgumentError(name,
				fmt.Errorf("array rank %d outside [1, %d]", rank, r.maxRank))
		}
		inner, err := r.resolve(name, args, layout[1:])
		if err != nil {
			return nil, err
		}
		return uref.ArrayOf(inner, rank), nil
	}

	e, ok := r.reg.Lookup(name)
	if !ok {
		return nil, apis.NewUnknownTypeError(name)
	}
	if len(args) == 0 {
		if e.IsGeneric() {
			return nil, apis.NewArityMismatchError(name, e.Generic.Arity(), 0)
		}
		return e.Type, nil
	}
	if !e.IsGeneric() {
		return nil, apis.NewArityMismatchError(name, 0, len(args))
	}

	resolved := make([]reflect.Type, len(args))
	for i, a := range args {
		t, err := r.Resolve(a)
		if err != nil {
			return nil, err
		}
		resolved[i] = t
	}
	if len(resolved) != e.Generic.Arity() {
		return nil, apis.NewArityMismatchError(name, e.Generic.Arity(), len(resolved))
	}
	return e.Generic.Instantiate(resolved)
}

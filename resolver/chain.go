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

package resolver

import (
	"reflect"

	"dirpx.dev/safetype/apis"
)

// Chain constructs an apis.TypeResolver that tries the given resolvers in
// order. Nil resolvers are ignored. The fallback handed to the chain is
// consulted once, before any member; members receive no fallback.
func Chain(rs ...apis.TypeResolver) apis.TypeResolver {
	// Filter out nils to avoid nil-interface panics on call sites.
	out := make([]apis.TypeResolver, 0, len(rs))
	for _, r := range rs {
		if r != nil {
			out = append(out, r)
		}
	}
	return chain{rs: out}
}

// chain is an immutable, order-preserving composition of resolvers.
type chain struct {
	rs []apis.TypeResolver
}

// TryResolveType returns the first acceptance.
func (c chain) TryResolveType(t reflect.Type, fallback apis.TypeResolver) (string, string, bool) {
	if fallback != nil {
		if name, ns, ok := fallback.TryResolveType(t, nil); ok {
			return name, ns, true
		}
	}
	for _, r := range c.rs {
		if name, ns, ok := r.TryResolveType(t, nil); ok {
			return name, ns, true
		}
	}
	return "", "", false
}

// ResolveName returns the first acceptance or the first error.
// It declines when every member declines.
func (c chain) ResolveName(name, ns string, fallback apis.TypeResolver) (reflect.Type, error) {
	if fallback != nil {
		if t, err := fallback.ResolveName(name, ns, nil); err != nil || t != nil {
			return t, err
		}
	}
	for _, r := range c.rs {
		if t, err := r.ResolveName(name, ns, nil); err != nil || t != nil {
			return t, err
		}
	}
	return nil, nil
}

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

package strategy

import (
	"reflect"
	"sync"

	"dirpx.dev/safetype/allowlist"
	"dirpx.dev/safetype/apis"
	"dirpx.dev/safetype/typename"
	uref "dirpx.dev/safetype/utils/reflect"
)

// NewReflectStrategy creates an apis.Strategy that names types by reflection:
// the canonical name of each named component, generic arguments and array
// levels spelled out in the type-name grammar.
func NewReflectStrategy() apis.Strategy {
	return reflectStrategy{}
}

// reflectStrategy is the default encode-side naming step.
type reflectStrategy struct{}

// Ensure reflectStrategy implements apis.Strategy.
var _ apis.Strategy = (*reflectStrategy)(nil)

// cacheKey ensures memoization respects all config knobs that affect naming.
type cacheKey struct {
	t         reflect.Type
	prefix    string
	maxUnwrap int16
}

type cached struct {
	name, ns string
	ok       bool
}

// typeNameCache caches names by (type, config knobs).
var typeNameCache sync.Map // key: cacheKey, val: cached

// TryResolveType computes the wire name and namespace for t.
func (reflectStrategy) TryResolveType(t reflect.Type, cfg apis.Config) (string, string, bool) {
	if t == nil {
		return "", "", false
	}
	key := cacheKey{t: t, prefix: cfg.NamespacePrefix, maxUnwrap: int16(cfg.MaxUnwrap)}
	if v, ok := typeNameCache.Load(key); ok {
		c := v.(cached)
		return c.name, c.ns, c.ok
	}

	var c cached
	if n, ok := Describe(t); ok {
		c = cached{name: n.String(), ns: Namespace(t, cfg), ok: true}
	}
	typeNameCache.Store(key, c)
	return c.name, c.ns, c.ok
}

// Name returns the wire name of t, if t is nameable.
func Name(t reflect.Type) (string, bool) {
	n, ok := Describe(t)
	if !ok {
		return "", false
	}
	return n.String(), true
}

// Namespace returns the namespace under which t is encoded: the configured
// prefix followed by the package owning t.
func Namespace(t reflect.Type, cfg apis.Config) string {
	return cfg.NamespacePrefix + uref.Owner(t, cfg)
}

// Describe returns the parsed form of t's wire name. ok is false for types
// the grammar cannot express: funcs other than comparers, channels, fixed
// size arrays, interfaces, unnamed structs that are neither array nor tuple
// shapes, and closed generics that do not report their type arguments.
func Describe(t reflect.Type) (*typename.Name, bool) {
	if t == nil {
		return nil, false
	}
	if t.Name() != "" {
		if !uref.IsClosedGeneric(t) {
			if t.Kind() == reflect.Interface {
				return nil, false
			}
			return &typename.Name{Name: uref.CanonicalName(t)}, true
		}
		args, ok := uref.GenericArgs(t)
		if !ok {
			return nil, false
		}
		return generic(uref.DefinitionName(t, len(args)), args...)
	}

	switch t.Kind() {
	case reflect.Slice:
		return array(t.Elem(), 1)
	case reflect.Pointer:
		return generic(allowlist.PointerShape, t.Elem())
	case reflect.Map:
		return generic(allowlist.MapShape, t.Key(), t.Elem())
	case reflect.Func:
		if elem, ok := uref.ComparerElem(t); ok {
			return generic(allowlist.ComparerShape, elem)
		}
	case reflect.Struct:
		if elem, rank, ok := uref.ArrayShape(t); ok {
			return array(elem, rank)
		}
		if items, ok := uref.TupleItems(t); ok {
			return generic(allowlist.TupleShape(len(items)), items...)
		}
	}
	return nil, false
}

func array(elem reflect.Type, rank int) (*typename.Name, bool) {
	n, ok := Describe(elem)
	if !ok {
		return nil, false
	}
	return n.WithArray(rank), true
}

func generic(def string, args ...reflect.Type) (*typename.Name, bool) {
	out := &typename.Name{Name: def, Args: make([]*typename.Name, len(args))}
	for i, a := range args {
		n, ok := Describe(a)
		if !ok {
			return nil, false
		}
		out.Args[i] = n
	}
	return out, true
}

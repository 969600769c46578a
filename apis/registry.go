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

package apis

import "reflect"

// Registry is the immutable allowlist of types that may be instantiated
// by name. Implementations must be safe for concurrent reads.
type Registry interface {
	// Lookup returns the entry registered under a canonical name.
	Lookup(name string) (Entry, bool)
	// Entries returns a snapshot sorted by name.
	Entries() []Entry
	// Count returns the number of entries.
	Count() int
}

// Entry is a single allowlisted shape. Exactly one of Type and Generic is set.
type Entry struct {
	// Name is the canonical full name.
	Name string
	// Type is a concrete, non-generic type.
	Type reflect.Type
	// Generic is an open generic definition.
	Generic Generic
}

// IsGeneric reports whether the entry is an open generic definition.
func (e Entry) IsGeneric() bool { return e.Generic != nil }

// Generic is an open generic definition. Closed types are produced on
// demand from separately resolved arguments.
type Generic interface {
	// Name returns the canonical definition name, e.g. "pkg.Mixture`1".
	Name() string
	// Arity returns the number of declared type parameters.
	Arity() int
	// Instantiate closes the definition over args. len(args) == Arity().
	Instantiate(args []reflect.Type) (reflect.Type, error)
}

// Instantiated is implemented (with value receivers) by generic types of a
// trusted module so that their closed instantiations can be decomposed.
//
//	func (Mixture[D]) GenericArgs() []reflect.Type {
//	    return []reflect.Type{reflect.TypeFor[D]()}
//	}
type Instantiated interface {
	GenericArgs() []reflect.Type
}

// Module is the static type table of a trusted module.
type Module struct {
	// Path is the import path prefix every declared type lives under.
	Path string
	// Types lists the module's declared types.
	Types []reflect.Type
}

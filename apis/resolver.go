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

import (
	"reflect"
)

// TypeResolver is the serializer extensibility hook: it maps live types to
// (name, namespace) pairs while writing and back while reading.
//
// The host passes its own default resolver as fallback on every call.
// Implementations must consult it first.
type TypeResolver interface {
	// TryResolveType returns the wire name and namespace for t.
	// ok is false when the resolver declines.
	TryResolveType(t reflect.Type, fallback TypeResolver) (name, ns string, ok bool)

	// ResolveName returns the type named by (name, ns).
	// A nil type with a nil error means the resolver declines.
	ResolveName(name, ns string, fallback TypeResolver) (reflect.Type, error)
}

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
	"reflect"
	"strconv"
	"strings"

	"dirpx.dev/safetype/apis"
)

var instantiatedType = reflect.TypeFor[apis.Instantiated]()

// IsClosedGeneric reports whether t is a named instantiation of a generic type.
func IsClosedGeneric(t reflect.Type) bool {
	return t != nil && t.Name() != "" && strings.IndexByte(t.Name(), '[') >= 0
}

// GenericBase strips the instantiation suffix: "T[int,string]" -> "T".
func GenericBase(name string) string {
	if i := strings.IndexByte(name, '['); i >= 0 {
		return name[:i]
	}
	return name
}

// GenericArgs returns the type arguments of a closed generic t, as reported by
// its apis.Instantiated implementation. ok is false when t is not a closed
// generic, is an interface, or does not expose its arguments.
func GenericArgs(t reflect.Type) (args []reflect.Type, ok bool) {
	if !IsClosedGeneric(t) || t.Kind() == reflect.Interface {
		return nil, false
	}
	var v any
	switch {
	case t.Implements(instantiatedType):
		v = reflect.Zero(t).Interface()
	case reflect.PointerTo(t).Implements(instantiatedType):
		v = reflect.New(t).Interface()
	default:
		return nil, false
	}
	args = v.(apis.Instantiated).GenericArgs()
	if len(args) == 0 {
		return nil, false
	}
	for _, a := range args {
		if a == nil {
			return nil, false
		}
	}
	return args, true
}

// CanonicalName returns "pkgpath.Name" for a named non-generic type, or the
// bare name for predeclared types.
func CanonicalName(t reflect.Type) string {
	if p := t.PkgPath(); p != "" {
		return p + "." + t.Name()
	}
	return t.Name()
}

// DefinitionName returns the open definition name of a closed generic t,
// e.g. "dirpx.dev/safetype/model.Mixture`1".
func DefinitionName(t reflect.Type, arity int) string {
	base := GenericBase(t.Name()) + "`" + strconv.Itoa(arity)
	if p := t.PkgPath(); p != "" {
		return p + "." + base
	}
	return base
}

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

// Strategy is a pluggable encode-side naming step. A TypeResolver may try
// several strategies in order before giving up on a type.
type Strategy interface {
	// TryResolveType returns the wire name and namespace for t, or ok == false
	// if t cannot be named by this strategy.
	TryResolveType(t reflect.Type, cfg Config) (name, ns string, ok bool)
}

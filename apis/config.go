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

// Config carries read-only resolution knobs shared by the allowlist,
// the reconstructor and the orchestrator.
// It is passed by value and should be treated as immutable by implementations.
type Config struct {
	// NamespacePrefix is the marker that identifies namespaces this
	// resolver owns. Encoded namespaces are NamespacePrefix + owner.
	NamespacePrefix string

	// MaxNameLength is the hard cap on an incoming type name, checked
	// before any parsing work.
	MaxNameLength int

	// MaxRank limits the rank of a single array layout entry.
	MaxRank int

	// MaxUnwrap limits container unwrapping depth (ptr/slice/array/map)
	// when searching for the owning package of a composite type.
	MaxUnwrap int

	// WalkMethods controls whether result types of exported zero-argument
	// methods are followed while building the allowlist closure.
	WalkMethods bool
}

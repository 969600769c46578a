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

// Builder composes Registry and TypeResolver from a Config.
type Builder interface {
	// BuildRegistry constructs the allowlist for cfg over the trusted module mod.
	// Implementations may defer the actual closure until first use.
	BuildRegistry(cfg Config, mod Module) Registry
	// BuildResolver constructs the orchestrator for cfg on top of reg.
	BuildResolver(cfg Config, reg Registry) TypeResolver
}

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

// Package safetype provides a process-wide, safe type-name resolution
// service for serializers that let a payload name the type it should be
// decoded into.
//
// A payload that can name an arbitrary type can name a dangerous one.
// safetype never loads a type by the name it reads. Instead it answers
// every decode from an allowlist computed once, from trusted code, by
// walking the static type graph of the trusted module. A name read from
// input is parsed into a tree and the tree is rebuilt purely by composing
// allowlist entries.
//
// # Design
//
// The core is a read-mostly global snapshot (state) holding:
//
//   - Config: the namespace prefix that marks names as "ours", the cap on
//     name length, the largest array rank, and closure options.
//
//   - Module: the trusted module. Its static type table seeds the allowlist
//     together with the predeclared types.
//
//   - Registry: the allowlist. Built lazily, at most once per snapshot, and
//     immutable afterwards.
//
//   - Resolver: the apis.TypeResolver plugged into the host serializer.
//     It consults the host's fallback first, in both directions:
//     1. Encode: the fallback, else the canonical name of the type under
//     the prefix plus the owning package.
//     2. Decode: the fallback, else decline foreign namespaces, reject
//     names over the length cap, then parse and rebuild.
//
//   - KnownTypes: the explicit pre-registration store passed as fallback
//     by EncodeType and DecodeType. This is where legitimate types outside
//     the allowlist go.
//
//   - Builder: the factory that constructs Registry and Resolver for a
//     Config and Module.
//
// Readers load the snapshot pointer atomically and never lock:
//
//	name, ns, ok := safetype.EncodeType(reflect.TypeOf(v))
//	t, err := safetype.DecodeType(name, ns)
//
// # Mutation
//
//	SetConfig(cfg apis.Config)
//	SetModule(mod apis.Module)
//	SetBuilder(b apis.Builder)
//	SetRegistry(reg apis.Registry)
//	SetResolver(res apis.TypeResolver)
//	UnpinRegistry()
//	UnpinResolver()
//	SetAll(...)
//
// Each takes an internal build lock, derives a new snapshot and publishes
// it atomically. SetRegistry and SetResolver pin their layer: pinned
// layers are not rebuilt by later reconfiguration until unpinned.
// The KnownTypes store is shared by every snapshot.
//
// # Decline versus rejection
//
// A nil type with a nil error from DecodeType means no resolver claimed
// the (name, namespace) pair; other resolvers in a chain may still handle
// it. A *apis.ResolveError is a rejection: the pair was ours and is
// malformed, too long, names a type outside the allowlist, or closes a
// generic over the wrong number of arguments.
package safetype

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

package safetype

import (
	"errors"
	"reflect"
	"sync"
	"sync/atomic"

	"dirpx.dev/safetype/apis"
	"dirpx.dev/safetype/builder"
	"dirpx.dev/safetype/config"
	"dirpx.dev/safetype/knowntypes"
	"dirpx.dev/safetype/model"
)

// init publishes the default snapshot: default config, the model package
// as trusted module, an empty known-types store.
func init() {
	s := &state{
		cfg:   config.DefaultConfig(),
		mod:   model.Module(),
		known: knowntypes.New(),
		bld:   builder.New(),
	}
	s.reg = s.bld.BuildRegistry(s.cfg, s.mod)
	s.res = s.bld.BuildResolver(s.cfg, s.reg)
	st.Store(s)
}

var (
	// ErrNilRegistry is returned when a builder returns a nil registry.
	ErrNilRegistry = errors.New("safetype: builder returned nil registry")
	// ErrNilResolver is returned when a builder returns a nil resolver.
	ErrNilResolver = errors.New("safetype: builder returned nil resolver")
)

// EncodeType returns the wire name and namespace for t using the global
// resolver, with the known-types store as fallback.
func EncodeType(t reflect.Type) (name, ns string, ok bool) {
	s := st.Load()
	return s.res.TryResolveType(t, s.known)
}

// DecodeType returns the type named by (name, ns) using the global
// resolver, with the known-types store as fallback. A nil type with a nil
// error means no resolver accepted the pair.
func DecodeType(name, ns string) (reflect.Type, error) {
	s := st.Load()
	return s.res.ResolveName(name, ns, s.known)
}

// RegisterKnownType pre-registers t under (name, ns) in the global
// known-types store. This is the remedy for legitimate types outside the
// allowlist.
func RegisterKnownType(t reflect.Type, name, ns string) error {
	return st.Load().known.Register(t, name, ns)
}

// KnownTypes returns the global known-types store. The same store survives
// every reconfiguration.
func KnownTypes() *knowntypes.Registry {
	return st.Load().known
}

// SetAll replaces all global state components in one step.
//
// Nil arguments leave the corresponding component unchanged. Registry and
// resolver are pinned when given and rebuilt by the builder otherwise.
func SetAll(cfg *apis.Config, mod *apis.Module, reg apis.Registry, res apis.TypeResolver, bld apis.Builder) {
	buildMu.Lock()
	defer buildMu.Unlock()

	next := *st.Load()
	if cfg != nil {
		next.cfg = *cfg
	}
	if mod != nil {
		next.mod = *mod
	}
	if bld != nil {
		next.bld = bld
	}
	next.reg, next.preg = reg, reg != nil
	next.res, next.pres = res, res != nil
	publish(&next)
}

// Config returns the global configuration.
func Config() apis.Config {
	return st.Load().cfg
}

// SetConfig sets the global configuration and rebuilds unpinned layers.
func SetConfig(cfg apis.Config) {
	buildMu.Lock()
	defer buildMu.Unlock()

	next := *st.Load()
	next.cfg = cfg
	publish(&next)
}

// Module returns the global trusted module.
func Module() apis.Module {
	return st.Load().mod
}

// SetModule sets the global trusted module and rebuilds unpinned layers.
func SetModule(mod apis.Module) {
	buildMu.Lock()
	defer buildMu.Unlock()

	next := *st.Load()
	next.mod = mod
	publish(&next)
}

// Registry returns the global allowlist.
func Registry() apis.Registry {
	return st.Load().reg
}

// SetRegistry pins reg as the global allowlist and rebuilds the resolver
// unless it is pinned.
func SetRegistry(reg apis.Registry) {
	if reg == nil {
		return
	}

	buildMu.Lock()
	defer buildMu.Unlock()

	next := *st.Load()
	next.reg, next.preg = reg, true
	publish(&next)
}

// Resolver returns the global resolver.
func Resolver() apis.TypeResolver {
	return st.Load().res
}

// SetResolver pins res as the global resolver.
func SetResolver(res apis.TypeResolver) {
	if res == nil {
		return
	}

	buildMu.Lock()
	defer buildMu.Unlock()

	next := *st.Load()
	next.res, next.pres = res, true
	publish(&next)
}

// Builder returns the global builder.
func Builder() apis.Builder {
	return st.Load().bld
}

// SetBuilder sets the global builder and rebuilds unpinned layers with it.
func SetBuilder(b apis.Builder) {
	if b == nil {
		return
	}

	buildMu.Lock()
	defer buildMu.Unlock()

	next := *st.Load()
	next.bld = b
	publish(&next)
}

// IsRegistryPinned reports whether the global allowlist is pinned.
func IsRegistryPinned() bool {
	return st.Load().preg
}

// PinRegistry keeps the current allowlist across reconfigurations.
func PinRegistry() {
	buildMu.Lock()
	defer buildMu.Unlock()

	next := *st.Load()
	next.preg = true
	st.Store(&next)
}

// UnpinRegistry lets the next reconfiguration rebuild the allowlist.
func UnpinRegistry() {
	buildMu.Lock()
	defer buildMu.Unlock()

	next := *st.Load()
	next.preg = false
	st.Store(&next)
}

// IsResolverPinned reports whether the global resolver is pinned.
func IsResolverPinned() bool {
	return st.Load().pres
}

// PinResolver keeps the current resolver across reconfigurations.
func PinResolver() {
	buildMu.Lock()
	defer buildMu.Unlock()

	next := *st.Load()
	next.pres = true
	st.Store(&next)
}

// UnpinResolver lets the next reconfiguration rebuild the resolver.
func UnpinResolver() {
	buildMu.Lock()
	defer buildMu.Unlock()

	next := *st.Load()
	next.pres = false
	st.Store(&next)
}

// publish rebuilds the unpinned layers of next and stores it.
// Callers hold buildMu.
func publish(next *state) {
	if !next.preg {
		next.reg = next.bld.BuildRegistry(next.cfg, next.mod)
	}
	if !next.pres {
		next.res = next.bld.BuildResolver(next.cfg, next.reg)
	}

	// Ensure non-nil reg and res.
	if next.reg == nil {
		panic(ErrNilRegistry)
	}
	if next.res == nil {
		panic(ErrNilResolver)
	}
	st.Store(next)
}

// buildMu serializes writers so we never publish partially-built snapshots.
var buildMu sync.Mutex

// st is the global state.
var st atomic.Pointer[state]

// state is the global snapshot. A published state is never mutated;
// writers copy it, change the copy and swap it in.
type state struct {
	cfg   apis.Config
	mod   apis.Module
	known *knowntypes.Registry
	reg   apis.Registry
	res   apis.TypeResolver
	bld   apis.Builder
	// preg and pres mark layers set explicitly; they survive rebuilds.
	preg, pres bool
}

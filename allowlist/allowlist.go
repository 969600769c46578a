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

// Package allowlist builds the immutable set of types that may be
// instantiated by name while decoding.
//
// The set is the closure of Seeds(), the built-in Shapes() and the types of
// a trusted apis.Module over base (embedded), field, property and element
// relations. Closed generic instantiations are never entries: their open
// definition and each type argument are entered separately.
package allowlist

import (
	"log/slog"
	"reflect"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"dirpx.dev/safetype/apis"
	uref "dirpx.dev/safetype/utils/reflect"
)

// Option customizes Build.
type Option func(*options)

type options struct {
	log *slog.Logger
}

// WithLogger routes build diagnostics to log.
func WithLogger(log *slog.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

// Allowlist is an immutable name -> entry map. Safe for concurrent reads.
type Allowlist struct {
	entries map[string]apis.Entry
	sorted  []apis.Entry
}

var _ apis.Registry = (*Allowlist)(nil)

// Lookup returns the entry registered under name.
func (a *Allowlist) Lookup(name string) (apis.Entry, bool) {
	e, ok := a.entries[name]
	return e, ok
}

// Entries returns a copy of all entries sorted by name.
func (a *Allowlist) Entries() []apis.Entry {
	out := make([]apis.Entry, len(a.sorted))
	copy(out, a.sorted)
	return out
}

// Count returns the number of entries.
func (a *Allowlist) Count() int { return len(a.sorted) }

// Names returns all entry names in sorted order.
func (a *Allowlist) Names() []string {
	out := make([]string, len(a.sorted))
	for i, e := range a.sorted {
		out[i] = e.Name
	}
	return out
}

// Build computes the closure for mod. Only types whose package is mod.Path
// or nested below it are taken from mod.Types.
func Build(cfg apis.Config, mod apis.Module, opts ...Option) *Allowlist {
	o := options{log: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&o)
	}

	c := &closure{
		cfg:     cfg,
		log:     o.log,
		seen:    make(map[reflect.Type]struct{}),
		types:   make(map[string]reflect.Type),
		defs:    make(map[string]*definition),
		clashes: make(map[string]struct{}),
	}
	for _, t := range Seeds() {
		c.push(t)
	}
	for _, t := range mod.Types {
		if t == nil {
			continue
		}
		if !declaredIn(t, mod.Path) {
			c.log.Debug("allowlist: type not declared in trusted module", "type", t.String(), "module", mod.Path)
			continue
		}
		c.push(t)
	}
	c.run()

	entries := make(map[string]apis.Entry, len(c.types)+len(c.defs))
	for name, t := range c.types {
		entries[name] = apis.Entry{Name: name, Type: t}
	}
	for name, d := range c.defs {
		entries[name] = apis.Entry{Name: name, Generic: d}
	}
	for _, s := range Shapes() {
		entries[s.Name()] = apis.Entry{Name: s.Name(), Generic: s}
	}
	sorted := make([]apis.Entry, 0, len(entries))
	for _, e := range entries {
		sorted = append(sorted, e)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	c.log.Debug("allowlist: built", "module", mod.Path, "entries", len(sorted), "visited", len(c.seen))
	return &Allowlist{entries: entries, sorted: sorted}
}

func declaredIn(t reflect.Type, path string) bool {
	p := t.PkgPath()
	return path != "" && (p == path || strings.HasPrefix(p, path+"/"))
}

// closure is the mutable state of a single Build.
type closure struct {
	cfg      apis.Config
	log      *slog.Logger
	seen     map[reflect.Type]struct{}
	types    map[string]reflect.Type
	defs     map[string]*definition
	clashes  map[string]struct{}
	frontier []reflect.Type
}

func (c *closure) push(t reflect.Type) {
	if t == nil {
		return
	}
	if _, ok := c.seen[t]; ok {
		return
	}
	c.frontier = append(c.frontier, t)
}

func (c *closure) run() {
	for len(c.frontier) > 0 {
		t := c.frontier[len(c.frontier)-1]
		c.frontier = c.frontier[:len(c.frontier)-1]
		if _, ok := c.seen[t]; ok {
			continue
		}
		// Marked before its members are discovered; cycles end here.
		c.seen[t] = struct{}{}
		c.visit(t)
	}
}

func (c *closure) visit(t reflect.Type) {
	switch t.Kind() {
	case reflect.Interface, reflect.Func, reflect.Chan, reflect.UnsafePointer, reflect.Invalid:
		return
	}
	switch {
	case t.Name() == "":
		// Unnamed composites have no entry of their own.
	case uref.IsClosedGeneric(t):
		args, ok := uref.GenericArgs(t)
		if !ok {
			c.log.Debug("allowlist: skipping closed generic without type arguments", "type", t.String())
			return
		}
		c.instance(t, args)
		for _, a := range args {
			c.push(a)
		}
	default:
		c.record(uref.CanonicalName(t), t)
	}
	c.members(t)
}

func (c *closure) members(t reflect.Type) {
	switch t.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Array:
		c.push(t.Elem())
	case reflect.Map:
		c.push(t.Key())
		c.push(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if f := t.Field(i); f.Anonymous || f.IsExported() {
				c.push(f.Type)
			}
		}
	}
	if c.cfg.WalkMethods && t.Name() != "" {
		// Properties: exported methods without arguments and with a single result.
		pt := reflect.PointerTo(t)
		for i := 0; i < pt.NumMethod(); i++ {
			if mt := pt.Method(i).Type; mt.NumIn() == 1 && mt.NumOut() == 1 {
				c.push(mt.Out(0))
			}
		}
	}
}

func (c *closure) record(name string, t reflect.Type) {
	if _, ok := c.clashes[name]; ok {
		return
	}
	if prev, ok := c.types[name]; ok && prev != t {
		c.log.Warn("allowlist: distinct types share a name, dropping both", "name", name)
		delete(c.types, name)
		c.clashes[name] = struct{}{}
		return
	}
	c.types[name] = t
}

func (c *closure) instance(t reflect.Type, args []reflect.Type) {
	name := uref.DefinitionName(t, len(args))
	d, ok := c.defs[name]
	if !ok {
		d = &definition{name: name, arity: len(args)}
		c.defs[name] = d
	}
	if d.add(args, t) {
		c.log.Warn("allowlist: distinct instantiations share type arguments, dropping both", "name", name, "type", t.String())
	}
}

// Lazy builds an Allowlist at most once, on first use.
// All callers observe the fully built allowlist.
type Lazy struct {
	once  sync.Once
	built atomic.Bool
	build func() *Allowlist
	a     *Allowlist
}

var _ apis.Registry = (*Lazy)(nil)

// NewLazy defers Build(cfg, mod, opts...) until first use.
func NewLazy(cfg apis.Config, mod apis.Module, opts ...Option) *Lazy {
	return &Lazy{build: func() *Allowlist { return Build(cfg, mod, opts...) }}
}

// Get returns the allowlist, building it on the first call.
func (l *Lazy) Get() *Allowlist {
	l.once.Do(func() {
		l.a = l.build()
		l.built.Store(true)
	})
	return l.a
}

// Built reports whether the allowlist has been built.
func (l *Lazy) Built() bool { return l.built.Load() }

// Lookup implements apis.Registry.
func (l *Lazy) Lookup(name string) (apis.Entry, bool) { return l.Get().Lookup(name) }

// Entries implements apis.Registry.
func (l *Lazy) Entries() []apis.Entry { return l.Get().Entries() }

// Count implements apis.Registry.
func (l *Lazy) Count() int { return l.Get().Count() }

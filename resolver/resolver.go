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

// Package resolver implements the safe apis.TypeResolver: names on the
// encode path are synthesized from live types, names on the decode path are
// parsed and rebuilt from allowlist entries only.
package resolver

import (
	"log/slog"
	"reflect"
	"strings"

	"dirpx.dev/safetype/allowlist"
	"dirpx.dev/safetype/apis"
	"dirpx.dev/safetype/config"
	"dirpx.dev/safetype/reconstruct"
	"dirpx.dev/safetype/strategy"
	"dirpx.dev/safetype/typename"
)

// Option configures a Resolver.
type Option func(*options)

type options struct {
	log    *slog.Logger
	strats []apis.Strategy
}

// WithLogger sets the logger for declines and rejections.
func WithLogger(log *slog.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

// WithStrategies replaces the encode-side naming steps. They are tried in
// order; nil strategies are ignored.
func WithStrategies(strats ...apis.Strategy) Option {
	return func(o *options) {
		o.strats = o.strats[:0]
		for _, s := range strats {
			if s != nil {
				o.strats = append(o.strats, s)
			}
		}
	}
}

// Resolver is the safe type resolver. It holds no mutable state and is safe
// for concurrent use.
type Resolver struct {
	cfg    apis.Config
	strats []apis.Strategy
	rec    *reconstruct.Reconstructor
	log    *slog.Logger
}

// Ensure Resolver implements apis.TypeResolver.
var _ apis.TypeResolver = (*Resolver)(nil)

// New constructs a Resolver over reg. A nil reg is replaced by an allowlist
// holding only the predeclared types and built-in shapes.
func New(cfg apis.Config, reg apis.Registry, opts ...Option) *Resolver {
	cfg = config.Sanitize(cfg)
	o := options{
		log:    slog.New(slog.DiscardHandler),
		strats: []apis.Strategy{strategy.NewReflectStrategy()},
	}
	for _, opt := range opts {
		opt(&o)
	}
	if reg == nil {
		reg = allowlist.Build(cfg, apis.Module{}, allowlist.WithLogger(o.log))
	}
	// reg is non-nil, so New cannot fail.
	rec, _ := reconstruct.New(reg, reconstruct.WithMaxRank(cfg.MaxRank))
	return &Resolver{cfg: cfg, strats: o.strats, rec: rec, log: o.log}
}

// TryResolveType consults fallback first, then the naming strategies.
func (r *Resolver) TryResolveType(t reflect.Type, fallback apis.TypeResolver) (string, string, bool) {
	if t == nil {
		return "", "", false
	}
	if fallback != nil {
		if name, ns, ok := fallback.TryResolveType(t, nil); ok {
			return name, ns, true
		}
	}
	for _, s := range r.strats {
		if name, ns, ok := s.TryResolveType(t, r.cfg); ok {
			return name, ns, true
		}
	}
	r.log.Debug("resolver: type has no wire name", "type", t.String())
	return "", "", false
}

// ResolveName consults fallback first. It declines namespaces without the
// configured prefix and otherwise parses name and rebuilds the type from the
// allowlist. Names over the length cap are rejected before parsing.
func (r *Resolver) ResolveName(name, ns string, fallback apis.TypeResolver) (reflect.Type, error) {
	if fallback != nil {
		t, err := fallback.ResolveName(name, ns, nil)
		if err != nil || t != nil {
			return t, err
		}
	}
	if !strings.HasPrefix(ns, r.cfg.NamespacePrefix) {
		r.log.Debug("resolver: foreign namespace, declining", "ns", ns)
		return nil, nil
	}
	if len(name) > r.cfg.MaxNameLength {
		r.log.Warn("resolver: type name over length cap", "length", len(name), "limit", r.cfg.MaxNameLength)
		return nil, apis.NewLengthExceededError(len(name), r.cfg.MaxNameLength)
	}

	n, err := typename.Parse(name)
	if err != nil {
		r.log.Warn("resolver: malformed type name", "ns", ns, "err", err)
		return nil, err
	}
	t, err := r.rec.Resolve(n)
	if err != nil {
		r.log.Warn("resolver: type name rejected", "ns", ns, "kind", apis.KindOf(err).String(), "err", err)
		return nil, err
	}
	return t, nil
}

// Config returns the sanitized configuration r was built with.
func (r *Resolver) Config() apis.Config { return r.cfg }

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

package builder

import (
	"log/slog"

	"dirpx.dev/safetype/allowlist"
	"dirpx.dev/safetype/apis"
	"dirpx.dev/safetype/resolver"
)

// Option configures the builder.
type Option func(*builder)

// WithLogger passes log to every allowlist and resolver the builder makes.
func WithLogger(log *slog.Logger) Option {
	return func(b *builder) {
		if log != nil {
			b.log = log
		}
	}
}

// New creates and returns a new instance of an apis.Builder.
func New(opts ...Option) apis.Builder {
	b := &builder{log: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// builder carries the options shared by everything it builds.
type builder struct {
	log *slog.Logger
}

// BuildRegistry returns a lazily built allowlist for mod. The closure runs
// on the first lookup, not here.
func (b *builder) BuildRegistry(cfg apis.Config, mod apis.Module) apis.Registry {
	return allowlist.NewLazy(cfg, mod, allowlist.WithLogger(b.log))
}

// BuildResolver returns the safe resolver over reg.
func (b *builder) BuildResolver(cfg apis.Config, reg apis.Registry) apis.TypeResolver {
	return resolver.New(cfg, reg, resolver.WithLogger(b.log))
}

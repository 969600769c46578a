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

package config

import (
	"dirpx.dev/safetype/apis"
)

const (
	// DefaultNamespacePrefix marks namespaces owned by the safe resolver.
	DefaultNamespacePrefix = "urn:dirpx:safetype:"
	// DefaultMaxNameLength represents the default for MaxNameLength.
	// Names written by the encoder for the model package stay far below it.
	DefaultMaxNameLength = 1024
	// DefaultMaxRank represents the default for MaxRank.
	DefaultMaxRank = 32
	// DefaultMaxUnwrap represents the default for MaxUnwrap.
	// A value of 8 should be sufficient for all practical purposes.
	DefaultMaxUnwrap = 8
	// DefaultWalkMethods represents the default for WalkMethods.
	DefaultWalkMethods = true
)

// NewConfig constructs an apis.Config from the given options.
func NewConfig(opts ...Option) apis.Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return Sanitize(cfg)
}

// DefaultConfig is the default configuration used when none is provided.
func DefaultConfig() apis.Config {
	return apis.Config{
		NamespacePrefix: DefaultNamespacePrefix,
		MaxNameLength:   DefaultMaxNameLength,
		MaxRank:         DefaultMaxRank,
		MaxUnwrap:       DefaultMaxUnwrap,
		WalkMethods:     DefaultWalkMethods,
	}
}

// Sanitize replaces non-positive limits and an empty prefix with defaults.
func Sanitize(cfg apis.Config) apis.Config {
	if cfg.NamespacePrefix == "" {
		cfg.NamespacePrefix = DefaultNamespacePrefix
	}
	if cfg.MaxNameLength <= 0 {
		cfg.MaxNameLength = DefaultMaxNameLength
	}
	if cfg.MaxRank <= 0 {
		cfg.MaxRank = DefaultMaxRank
	}
	if cfg.MaxUnwrap <= 0 {
		cfg.MaxUnwrap = DefaultMaxUnwrap
	}
	return cfg
}

// Option is a functional option that mutates an apis.Config during construction.
type Option func(*apis.Config)

// WithNamespacePrefix sets the NamespacePrefix option.
// An empty prefix resets to the default.
func WithNamespacePrefix(prefix string) Option {
	return func(c *apis.Config) {
		if prefix == "" {
			c.NamespacePrefix = DefaultNamespacePrefix
			return
		}
		c.NamespacePrefix = prefix
	}
}

// WithMaxNameLength sets the MaxNameLength option.
// A non-positive value resets to the default.
func WithMaxNameLength(max int) Option {
	return func(c *apis.Config) {
		if max <= 0 {
			c.MaxNameLength = DefaultMaxNameLength
			return
		}
		c.MaxNameLength = max
	}
}

// WithMaxRank sets the MaxRank option.
// A non-positive value resets to the default.
func WithMaxRank(max int) Option {
	return func(c *apis.Config) {
		if max <= 0 {
			c.MaxRank = DefaultMaxRank
			return
		}
		c.MaxRank = max
	}
}

// WithMaxUnwrap sets the MaxUnwrap option.
// A non-positive value resets to the default.
func WithMaxUnwrap(max int) Option {
	return func(c *apis.Config) {
		if max <= 0 {
			c.MaxUnwrap = DefaultMaxUnwrap
			return
		}
		c.MaxUnwrap = max
	}
}

// WithWalkMethods sets the WalkMethods option.
func WithWalkMethods(walk bool) Option {
	return func(c *apis.Config) {
		c.WalkMethods = walk
	}
}

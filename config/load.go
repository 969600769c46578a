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
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"dirpx.dev/safetype/apis"
)

var (
	// ErrUnknownFormat is returned for a config file extension other than
	// .yaml, .yml or .toml.
	ErrUnknownFormat = errors.New("safetype(config): unknown config format")
	// ErrInvalidValue is returned when a config file sets a limit below 1.
	ErrInvalidValue = errors.New("safetype(config): invalid value")
)

// Format names a config file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// File is the on-disk shape of a configuration. Unset keys keep defaults.
type File struct {
	NamespacePrefix *string `yaml:"namespace_prefix" toml:"namespace_prefix"`
	MaxNameLength   *int    `yaml:"max_name_length" toml:"max_name_length"`
	MaxRank         *int    `yaml:"max_rank" toml:"max_rank"`
	MaxUnwrap       *int    `yaml:"max_unwrap" toml:"max_unwrap"`
	WalkMethods     *bool   `yaml:"walk_methods" toml:"walk_methods"`
}

// FormatOf derives the format from a file name extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, path)
	}
}

// Load reads a YAML or TOML config file and applies it over DefaultConfig.
func Load(path string) (apis.Config, error) {
	format, err := FormatOf(path)
	if err != nil {
		return apis.Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return apis.Config{}, fmt.Errorf("safetype(config): read %s: %w", path, err)
	}
	cfg, err := Decode(data, format)
	if err != nil {
		return apis.Config{}, fmt.Errorf("safetype(config): %s: %w", path, err)
	}
	return cfg, nil
}

// Decode parses data in the given format and applies it over DefaultConfig.
func Decode(data []byte, format Format) (apis.Config, error) {
	var f File
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
			return apis.Config{}, fmt.Errorf("decode yaml: %w", err)
		}
	case FormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&f); err != nil {
			return apis.Config{}, fmt.Errorf("decode toml: %w", err)
		}
	default:
		return apis.Config{}, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return f.Apply(DefaultConfig())
}

// Apply overlays the keys set in f onto cfg.
func (f File) Apply(cfg apis.Config) (apis.Config, error) {
	if f.NamespacePrefix != nil {
		if *f.NamespacePrefix == "" {
			return apis.Config{}, fmt.Errorf("%w: namespace_prefix is empty", ErrInvalidValue)
		}
		cfg.NamespacePrefix = *f.NamespacePrefix
	}
	for _, lim := range []struct {
		key string
		src *int
		dst *int
	}{
		{"max_name_length", f.MaxNameLength, &cfg.MaxNameLength},
		{"max_rank", f.MaxRank, &cfg.MaxRank},
		{"max_unwrap", f.MaxUnwrap, &cfg.MaxUnwrap},
	} {
		if lim.src == nil {
			continue
		}
		if *lim.src < 1 {
			return apis.Config{}, fmt.Errorf("%w: %s = %d", ErrInvalidValue, lim.key, *lim.src)
		}
		*lim.dst = *lim.src
	}
	if f.WalkMethods != nil {
		cfg.WalkMethods = *f.WalkMethods
	}
	return cfg, nil
}

// Encode renders cfg in the given format.
func Encode(cfg apis.Config, format Format) ([]byte, error) {
	f := File{
		NamespacePrefix: &cfg.NamespacePrefix,
		MaxNameLength:   &cfg.MaxNameLength,
		MaxRank:         &cfg.MaxRank,
		MaxUnwrap:       &cfg.MaxUnwrap,
		WalkMethods:     &cfg.WalkMethods,
	}
	switch format {
	case FormatYAML:
		return yaml.Marshal(f)
	case FormatTOML:
		return toml.Marshal(f)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

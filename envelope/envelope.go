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

// Package envelope is a reference host serializer built on the
// apis.TypeResolver hook. A payload carries the wire name and namespace of
// its value's type next to the value itself:
//
//	{"type": "...", "ns": "...", "value": ...}
//
// Values are encoded as JSON (encoding/json) or YAML (gopkg.in/yaml.v3).
package envelope

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"reflect"
	"strings"

	"gopkg.in/yaml.v3"

	"dirpx.dev/safetype/apis"
)

var (
	// ErrNilValue is returned when marshaling a nil value.
	ErrNilValue = errors.New("safetype(envelope): nil value")
	// ErrUnnamed is returned when no resolver names the value's type.
	ErrUnnamed = errors.New("safetype(envelope): no resolver named the type")
	// ErrDeclined is returned when no resolver accepts a payload's type name.
	ErrDeclined = errors.New("safetype(envelope): no resolver accepted the type name")
	// ErrMissingType is returned for payloads without a type name.
	ErrMissingType = errors.New("safetype(envelope): payload has no type name")
	// ErrUnknownFormat is returned for unsupported formats or file extensions.
	ErrUnknownFormat = errors.New("safetype(envelope): unknown format")
)

// Format selects the payload encoding.
type Format string

const (
	// FormatJSON encodes payloads as JSON.
	FormatJSON Format = "json"
	// FormatYAML encodes payloads as YAML.
	FormatYAML Format = "yaml"
)

// FormatOf returns the format implied by the extension of path.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, path)
	}
}

// Header is the type information of a payload.
type Header struct {
	Type string `json:"type" yaml:"type"`
	NS   string `json:"ns" yaml:"ns"`
}

type jsonPayload struct {
	Header
	Value json.RawMessage `json:"value"`
}

type yamlPayload struct {
	Header `yaml:",inline"`
	Value  yaml.Node `yaml:"value"`
}

// Option configures a Codec.
type Option func(*Codec)

// WithFallback sets the host default resolver handed to the resolver on
// every call, typically a *knowntypes.Registry.
func WithFallback(fallback apis.TypeResolver) Option {
	return func(c *Codec) { c.fallback = fallback }
}

// WithFormat selects the payload encoding. The default is FormatJSON.
func WithFormat(f Format) Option {
	return func(c *Codec) { c.format = f }
}

// Codec writes and reads payloads. It is safe for concurrent use if its
// resolvers are.
type Codec struct {
	res      apis.TypeResolver
	fallback apis.TypeResolver
	format   Format
}

// New returns a Codec resolving types through res.
func New(res apis.TypeResolver, opts ...Option) *Codec {
	c := &Codec{res: res, format: FormatJSON}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Format returns the payload encoding of c.
func (c *Codec) Format() Format { return c.format }

// Marshal encodes v with the wire name of its dynamic type.
func (c *Codec) Marshal(v any) ([]byte, error) {
	if v == nil {
		return nil, ErrNilValue
	}
	t := reflect.TypeOf(v)
	name, ns, ok := c.res.TryResolveType(t, c.fallback)
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnnamed, t)
	}
	h := Header{Type: name, NS: ns}

	switch c.format {
	case FormatJSON:
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("safetype(envelope): encode %v: %w", t, err)
		}
		return json.MarshalIndent(jsonPayload{Header: h, Value: raw}, "", "  ")
	case FormatYAML:
		p := yamlPayload{Header: h}
		if err := p.Value.Encode(v); err != nil {
			return nil, fmt.Errorf("safetype(envelope): encode %v: %w", t, err)
		}
		return yaml.Marshal(&p)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, c.format)
	}
}

// Peek returns the header of a payload without resolving its type.
func (c *Codec) Peek(data []byte) (Header, error) {
	var h Header
	var err error
	switch c.format {
	case FormatJSON:
		err = json.Unmarshal(data, &h)
	case FormatYAML:
		err = yaml.Unmarshal(data, &h)
	default:
		return h, fmt.Errorf("%w: %q", ErrUnknownFormat, c.format)
	}
	if err != nil {
		return h, fmt.Errorf("safetype(envelope): read header: %w", err)
	}
	if h.Type == "" {
		return h, ErrMissingType
	}
	return h, nil
}

// Resolve returns the type a payload names. Rejections from the resolver
// are returned unwrapped; a decline is ErrDeclined.
func (c *Codec) Resolve(h Header) (reflect.Type, error) {
	if h.Type == "" {
		return nil, ErrMissingType
	}
	t, err := c.res.ResolveName(h.Type, h.NS, c.fallback)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("%w: %q in %q", ErrDeclined, h.Type, h.NS)
	}
	return t, nil
}

// Unmarshal decodes a payload into a new value of the type it names and
// returns that value.
func (c *Codec) Unmarshal(data []byte) (any, error) {
	v, _, err := c.unmarshal(data)
	if err != nil {
		return nil, err
	}
	return v.Elem().Interface(), nil
}

// UnmarshalHeader is Unmarshal that also returns the payload header.
func (c *Codec) UnmarshalHeader(data []byte) (any, Header, error) {
	v, h, err := c.unmarshal(data)
	if err != nil {
		return nil, h, err
	}
	return v.Elem().Interface(), h, nil
}

func (c *Codec) unmarshal(data []byte) (reflect.Value, Header, error) {
	switch c.format {
	case FormatJSON:
		var p jsonPayload
		if err := decodeJSON(data, &p); err != nil {
			return reflect.Value{}, p.Header, fmt.Errorf("safetype(envelope): read payload: %w", err)
		}
		t, err := c.Resolve(p.Header)
		if err != nil {
			return reflect.Value{}, p.Header, err
		}
		v := reflect.New(t)
		if len(p.Value) > 0 {
			if err := decodeJSON(p.Value, v.Interface()); err != nil {
				return reflect.Value{}, p.Header, fmt.Errorf("safetype(envelope): decode %v: %w", t, err)
			}
		}
		return v, p.Header, nil

	case FormatYAML:
		var p yamlPayload
		if err := decodeYAML(data, &p); err != nil {
			return reflect.Value{}, p.Header, fmt.Errorf("safetype(envelope): read payload: %w", err)
		}
		t, err := c.Resolve(p.Header)
		if err != nil {
			return reflect.Value{}, p.Header, err
		}
		v := reflect.New(t)
		if p.Value.Kind != 0 {
			raw, err := yaml.Marshal(&p.Value)
			if err == nil {
				err = decodeYAML(raw, v.Interface())
			}
			if err != nil {
				return reflect.Value{}, p.Header, fmt.Errorf("safetype(envelope): decode %v: %w", t, err)
			}
		}
		return v, p.Header, nil

	default:
		return reflect.Value{}, Header{}, fmt.Errorf("%w: %q", ErrUnknownFormat, c.format)
	}
}

// decodeJSON decodes data into v, rejecting fields v does not declare.
func decodeJSON(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// decodeYAML decodes data into v, rejecting fields v does not declare.
// An empty document leaves v untouched.
func decodeYAML(data []byte, v any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

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

package resolver_test

import (
	"bytes"
	"errors"
	"log/slog"
	"reflect"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"dirpx.dev/safetype/allowlist"
	"dirpx.dev/safetype/apis"
	"dirpx.dev/safetype/config"
	"dirpx.dev/safetype/model"
	"dirpx.dev/safetype/resolver"
	uref "dirpx.dev/safetype/utils/reflect"
)

var (
	cfg      = config.DefaultConfig()
	registry = allowlist.NewLazy(cfg, model.Module())
)

func m(name string) string { return model.Path + "." + name }

// fallback is a host default resolver that knows a fixed set of types.
type fallback struct {
	byType map[reflect.Type][2]string
	byName map[[2]string]reflect.Type
	err    error
	calls  atomic.Int32
}

func newFallback(entries map[reflect.Type][2]string) *fallback {
	f := &fallback{byType: entries, byName: make(map[[2]string]reflect.Type)}
	for t, k := range entries {
		f.byName[k] = t
	}
	return f
}

func (f *fallback) TryResolveType(t reflect.Type, _ apis.TypeResolver) (string, string, bool) {
	f.calls.Add(1)
	k, ok := f.byType[t]
	return k[0], k[1], ok
}

func (f *fallback) ResolveName(name, ns string, _ apis.TypeResolver) (reflect.Type, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.byName[[2]string{name, ns}], nil
}

func roundTrip(t *testing.T, r apis.TypeResolver, typ reflect.Type) {
	t.Helper()
	name, ns, ok := r.TryResolveType(typ, nil)
	if !ok {
		t.Fatalf("TryResolveType(%v): declined", typ)
	}
	if !strings.HasPrefix(ns, cfg.NamespacePrefix) {
		t.Fatalf("TryResolveType(%v) ns = %q, want prefix %q", typ, ns, cfg.NamespacePrefix)
	}
	got, err := r.ResolveName(name, ns, nil)
	if err != nil {
		t.Fatalf("ResolveName(%q, %q): %v", name, ns, err)
	}
	if got != typ {
		t.Fatalf("ResolveName(%q) = %v, want %v", name, got, typ)
	}
}

func TestRoundTrip_AllowlistedTypes(t *testing.T) {
	r := resolver.New(cfg, registry)
	layouts := [][]int{nil, {1}, {2}, {3}, {1, 1}, {1, 3, 1}}

	n := 0
	for _, e := range registry.Entries() {
		if e.Type == nil {
			continue
		}
		for _, layout := range layouts {
			typ := e.Type
			for i := len(layout) - 1; i >= 0; i-- {
				typ = uref.ArrayOf(typ, layout[i])
			}
			roundTrip(t, r, typ)
			n++
		}
	}
	if n == 0 {
		t.Fatal("no allowlisted types exercised")
	}
}

func TestRoundTrip_Composites(t *testing.T) {
	r := resolver.New(cfg, registry)
	types := []reflect.Type{
		reflect.TypeFor[model.Mixture[model.Gaussian]](),
		reflect.TypeFor[*model.Mixture[model.Gaussian]](),
		reflect.TypeFor[model.Mixture[model.Bernoulli]](),
		reflect.TypeFor[[]model.Posterior[model.Gamma]](),
		reflect.TypeFor[map[string]model.Posterior[model.Gaussian]](),
		reflect.TypeFor[model.PointMass[float64]](),
		reflect.TypeFor[model.Pair[float64, float64]](),
		reflect.TypeFor[*model.State](),
		reflect.TypeFor[map[string][]*model.Trace](),
		reflect.TypeFor[func(model.Gaussian, model.Gaussian) int](),
		uref.TupleOf(reflect.TypeFor[string](), reflect.TypeFor[model.Beta]()),
		uref.ArrayOf(reflect.TypeFor[model.Mixture[model.Gaussian]](), 2),
		reflect.SliceOf(uref.ArrayOf(reflect.TypeFor[map[string]int32](), 3)),
	}
	for _, typ := range types {
		roundTrip(t, r, typ)
	}
}

func TestEncode_Names(t *testing.T) {
	r := resolver.New(cfg, registry)
	name, ns, ok := r.TryResolveType(reflect.TypeFor[[]model.Mixture[model.Gaussian]](), nil)
	if !ok {
		t.Fatal("declined")
	}
	if want := m("Mixture`1") + "[[" + m("Gaussian") + "]][]"; name != want {
		t.Fatalf("name = %q, want %q", name, want)
	}
	if want := cfg.NamespacePrefix + model.Path; ns != want {
		t.Fatalf("ns = %q, want %q", ns, want)
	}

	// Encoding never consults the allowlist.
	unlisted := reflect.TypeFor[bytes.Buffer]()
	if name, _, ok := r.TryResolveType(unlisted, nil); !ok || name != "bytes.Buffer" {
		t.Fatalf("TryResolveType(bytes.Buffer) = (%q, %v)", name, ok)
	}

	for _, typ := range []reflect.Type{nil, reflect.TypeFor[chan int](), reflect.TypeFor[error]()} {
		if _, _, ok := r.TryResolveType(typ, nil); ok {
			t.Fatalf("TryResolveType(%v): want decline", typ)
		}
	}
}

func TestDecode_ForeignNamespaceDeclines(t *testing.T) {
	r := resolver.New(cfg, registry)
	for _, ns := range []string{"urn:unrelated", "", "urn:dirpx:", strings.ToUpper(cfg.NamespacePrefix)} {
		got, err := r.ResolveName(m("Gaussian"), ns, nil)
		if got != nil || err != nil {
			t.Fatalf("ResolveName(ns=%q) = (%v, %v), want decline", ns, got, err)
		}
	}
	// Malformed names under a foreign namespace are not inspected either.
	if got, err := r.ResolveName("[[[", "urn:unrelated", nil); got != nil || err != nil {
		t.Fatalf("malformed foreign name = (%v, %v), want decline", got, err)
	}
}

func TestDecode_Rejections(t *testing.T) {
	r := resolver.New(cfg, registry)
	ns := cfg.NamespacePrefix + "anything"

	_, err := r.ResolveName("Attacker.Arbitrary.Type", ns, nil)
	if !errors.Is(err, apis.ErrUnknownType) || !strings.Contains(err.Error(), `"Attacker.Arbitrary.Type"`) {
		t.Fatalf("unknown type: got %v", err)
	}
	if !strings.Contains(err.Error(), "knowntypes.Register") {
		t.Fatalf("unknown type message %q does not point at pre-registration", err)
	}

	_, err = r.ResolveName(m("Mixture`1")+"[["+m("Gaussian")+"],["+m("Gaussian")+"]]", ns, nil)
	var re *apis.ResolveError
	if !errors.As(err, &re) || re.Kind != apis.KindArityMismatch || re.Declared != 1 || re.Supplied != 2 {
		t.Fatalf("arity: got %v", err)
	}
	if !strings.Contains(err.Error(), "1") || !strings.Contains(err.Error(), "2") {
		t.Fatalf("arity message %q does not state both counts", err)
	}

	_, err = r.ResolveName("int32[[", ns, nil)
	if !errors.Is(err, apis.ErrParse) {
		t.Fatalf("malformed: want ErrParse, got %v", err)
	}
}

func TestDecode_LengthCapBeforeParse(t *testing.T) {
	const limit = 64
	c := config.NewConfig(config.WithMaxNameLength(limit))
	r := resolver.New(c, registry)
	ns := c.NamespacePrefix + "x"

	// At the cap the name reaches the parser and is malformed.
	_, err := r.ResolveName(strings.Repeat("]", limit), ns, nil)
	if !errors.Is(err, apis.ErrParse) {
		t.Fatalf("at cap: want ErrParse, got %v", err)
	}

	_, err = r.ResolveName(strings.Repeat("]", limit+1), ns, nil)
	var re *apis.ResolveError
	if !errors.As(err, &re) || re.Kind != apis.KindLengthExceeded {
		t.Fatalf("over cap: want KindLengthExceeded, got %v", err)
	}
	if re.Length != limit+1 || re.Limit != limit {
		t.Fatalf("over cap: length/limit = %d/%d", re.Length, re.Limit)
	}
	if errors.Is(err, apis.ErrParse) {
		t.Fatal("over cap: parser was invoked")
	}
}

func TestFallbackFirst(t *testing.T) {
	custom := reflect.TypeFor[bytes.Buffer]()
	fb := newFallback(map[reflect.Type][2]string{
		custom:                         {"buffer", "host"},
		reflect.TypeFor[model.Gamma](): {"gamma", cfg.NamespacePrefix + "host"},
	})
	r := resolver.New(cfg, registry)

	name, ns, ok := r.TryResolveType(reflect.TypeFor[model.Gamma](), fb)
	if !ok || name != "gamma" || ns != cfg.NamespacePrefix+"host" {
		t.Fatalf("encode via fallback = (%q, %q, %v)", name, ns, ok)
	}
	// Decline of the fallback falls through to synthesis.
	if name, _, ok := r.TryResolveType(reflect.TypeFor[model.Beta](), fb); !ok || name != m("Beta") {
		t.Fatalf("encode after fallback decline = (%q, %v)", name, ok)
	}

	// The fallback answers for foreign namespaces and for names the allowlist lacks.
	if got, err := r.ResolveName("buffer", "host", fb); err != nil || got != custom {
		t.Fatalf("decode via fallback = (%v, %v)", got, err)
	}
	if got, err := r.ResolveName("gamma", cfg.NamespacePrefix+"host", fb); err != nil || got != reflect.TypeFor[model.Gamma]() {
		t.Fatalf("decode via fallback under prefix = (%v, %v)", got, err)
	}
	if got, err := r.ResolveName(m("Beta"), cfg.NamespacePrefix+"x", fb); err != nil || got != reflect.TypeFor[model.Beta]() {
		t.Fatalf("decode after fallback decline = (%v, %v)", got, err)
	}

	boom := errors.New("boom")
	fb.err = boom
	if _, err := r.ResolveName(m("Beta"), cfg.NamespacePrefix+"x", fb); !errors.Is(err, boom) {
		t.Fatalf("fallback error: want boom, got %v", err)
	}
}

func TestFallbackAlwaysConsulted(t *testing.T) {
	fb := newFallback(nil)
	r := resolver.New(cfg, registry)

	r.TryResolveType(reflect.TypeFor[model.Beta](), fb)
	r.ResolveName("x", "urn:unrelated", fb)
	r.ResolveName(strings.Repeat("x", cfg.MaxNameLength+1), cfg.NamespacePrefix, fb)
	if got := fb.calls.Load(); got != 3 {
		t.Fatalf("fallback calls = %d, want 3", got)
	}
}

func TestNew_NilRegistry(t *testing.T) {
	r := resolver.New(cfg, nil)
	ns := cfg.NamespacePrefix + uref.BuiltinOwner
	if got, err := r.ResolveName("map`2[[string],[int32[]]]", ns, nil); err != nil || got != reflect.TypeFor[map[string][]int32]() {
		t.Fatalf("seed types = (%v, %v)", got, err)
	}
	if _, err := r.ResolveName(m("Gaussian"), ns, nil); !errors.Is(err, apis.ErrUnknownType) {
		t.Fatalf("model type with seeds only: want ErrUnknownType, got %v", err)
	}
}

type fixedStrategy struct{}

func (fixedStrategy) TryResolveType(t reflect.Type, c apis.Config) (string, string, bool) {
	return "fixed", c.NamespacePrefix + "fixed", true
}

func TestWithStrategies(t *testing.T) {
	r := resolver.New(cfg, registry, resolver.WithStrategies(nil, fixedStrategy{}))
	name, ns, ok := r.TryResolveType(reflect.TypeFor[int](), nil)
	if !ok || name != "fixed" || ns != cfg.NamespacePrefix+"fixed" {
		t.Fatalf("custom strategy = (%q, %q, %v)", name, ns, ok)
	}

	none := resolver.New(cfg, registry, resolver.WithStrategies())
	if _, _, ok := none.TryResolveType(reflect.TypeFor[int](), nil); ok {
		t.Fatal("no strategies: want decline")
	}
}

func TestWithLogger(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	r := resolver.New(cfg, registry, resolver.WithLogger(log))

	r.ResolveName("x", "urn:unrelated", nil)
	r.ResolveName("Attacker.Arbitrary.Type", cfg.NamespacePrefix, nil)

	out := buf.String()
	if !strings.Contains(out, "foreign namespace") || !strings.Contains(out, "kind=unknown-type") {
		t.Fatalf("log output missing entries:\n%s", out)
	}
}

func TestResolver_Concurrent(t *testing.T) {
	r := resolver.New(cfg, allowlist.NewLazy(cfg, model.Module()))
	types := []reflect.Type{
		reflect.TypeFor[model.Gaussian](),
		reflect.TypeFor[[]model.Posterior[model.Discrete]](),
		reflect.TypeFor[map[string]model.Bernoulli](),
		uref.ArrayOf(reflect.TypeFor[float64](), 2),
	}

	workers := runtime.GOMAXPROCS(0) * 4
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(id int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				typ := types[(id+i)%len(types)]
				name, ns, ok := r.TryResolveType(typ, nil)
				if !ok {
					t.Errorf("worker %d: encode %v declined", id, typ)
					return
				}
				got, err := r.ResolveName(name, ns, nil)
				if err != nil || got != typ {
					t.Errorf("worker %d: decode %q = (%v, %v)", id, name, got, err)
					return
				}
			}
		}(w)
	}
	wg.Wait()
}

func BenchmarkResolveName(b *testing.B) {
	r := resolver.New(cfg, registry)
	name, ns, _ := r.TryResolveType(reflect.TypeFor[map[string]model.Posterior[model.Gaussian]](), nil)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := r.ResolveName(name, ns, nil); err != nil {
			b.Fatal(err)
		}
	}
}

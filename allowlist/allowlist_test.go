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

package allowlist_test

import (
	"bytes"
	"errors"
	"math/rand/v2"
	"reflect"
	"runtime"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"dirpx.dev/safetype/allowlist"
	"dirpx.dev/safetype/apis"
	"dirpx.dev/safetype/config"
	"dirpx.dev/safetype/model"
	uref "dirpx.dev/safetype/utils/reflect"
)

// Mutually recursive local types.
type Node struct {
	Next *Node
	Peer Peer
}

type Peer struct {
	Back []Node
	Tags map[string]Label
}

type Label string

// Box does not expose its type arguments.
type Box[T any] struct{ V T }

type Holder struct {
	Boxed Box[Marker]
}

type Marker struct{}

var testPath = reflect.TypeFor[Node]().PkgPath()

func localType1() reflect.Type {
	type Local struct{ X int }
	return reflect.TypeFor[Local]()
}

func localType2() reflect.Type {
	type Local struct{ Y string }
	return reflect.TypeFor[Local]()
}

func modelName(n string) string { return model.Path + "." + n }

func TestBuild_ModelClosure(t *testing.T) {
	al := allowlist.Build(config.DefaultConfig(), model.Module())

	want := []string{
		modelName("Gaussian"), modelName("Gamma"), modelName("Beta"),
		modelName("Discrete"), modelName("Dirichlet"), modelName("Matrix"),
		modelName("VectorGaussian"), modelName("State"), modelName("Header"),
		modelName("Trace"), modelName("Factor"), modelName("Variable"),
		modelName("Algorithm"),
		modelName("Mixture`1"), modelName("Posterior`1"), modelName("PointMass`1"), modelName("Pair`2"),
		"github.com/google/uuid.UUID", "time.Time",
		allowlist.MapShape, allowlist.PointerShape, allowlist.ComparerShape, allowlist.TupleShape(2),
		"int32", "float64", "string", "bool",
	}
	for _, n := range want {
		if _, ok := al.Lookup(n); !ok {
			t.Errorf("Lookup(%q): missing", n)
		}
	}

	for _, n := range []string{"error", "bytes.Buffer", modelName("Mixture"), "reflect.Type"} {
		if _, ok := al.Lookup(n); ok {
			t.Errorf("Lookup(%q): unexpectedly present", n)
		}
	}
}

func TestBuild_EntriesAreShapesOnly(t *testing.T) {
	al := allowlist.Build(config.DefaultConfig(), model.Module())

	if al.Count() == 0 || al.Count() != len(al.Entries()) {
		t.Fatalf("Count() = %d, len(Entries()) = %d", al.Count(), len(al.Entries()))
	}
	for _, e := range al.Entries() {
		if (e.Type == nil) == (e.Generic == nil) {
			t.Fatalf("entry %q: exactly one of Type and Generic must be set", e.Name)
		}
		if strings.ContainsAny(e.Name, "[],") {
			t.Fatalf("entry %q carries instantiation syntax", e.Name)
		}
		if e.Type != nil && uref.IsClosedGeneric(e.Type) {
			t.Fatalf("entry %q is a closed generic %v", e.Name, e.Type)
		}
		if e.Generic != nil && e.Generic.Name() != e.Name {
			t.Fatalf("entry %q holds generic %q", e.Name, e.Generic.Name())
		}
	}
	if !slices.IsSorted(al.Names()) {
		t.Fatal("Names() is not sorted")
	}
}

func TestBuild_GenericInstances(t *testing.T) {
	al := allowlist.Build(config.DefaultConfig(), model.Module())

	e, ok := al.Lookup(modelName("Mixture`1"))
	if !ok || !e.IsGeneric() {
		t.Fatalf("Mixture`1 = (%+v, %v), want generic entry", e, ok)
	}
	if e.Generic.Arity() != 1 {
		t.Fatalf("Mixture`1 arity = %d, want 1", e.Generic.Arity())
	}

	got, err := e.Generic.Instantiate([]reflect.Type{reflect.TypeFor[model.Gaussian]()})
	if err != nil || got != reflect.TypeFor[model.Mixture[model.Gaussian]]() {
		t.Fatalf("Instantiate(Gaussian) = (%v, %v)", got, err)
	}
	// Listed directly in the module table.
	if _, err := e.Generic.Instantiate([]reflect.Type{reflect.TypeFor[model.Bernoulli]()}); err != nil {
		t.Fatalf("Instantiate(Bernoulli): %v", err)
	}
	// Never declared by the program.
	_, err = e.Generic.Instantiate([]reflect.Type{reflect.TypeFor[model.Gamma]()})
	if !errors.Is(err, apis.ErrUnknownType) {
		t.Fatalf("Instantiate(Gamma): want ErrUnknownType, got %v", err)
	}
	_, err = e.Generic.Instantiate(nil)
	if !errors.Is(err, apis.ErrArityMismatch) {
		t.Fatalf("Instantiate(): want ErrArityMismatch, got %v", err)
	}

	pair, _ := al.Lookup(modelName("Pair`2"))
	got, err = pair.Generic.Instantiate([]reflect.Type{reflect.TypeFor[float64](), reflect.TypeFor[float64]()})
	if err != nil || got != reflect.TypeFor[model.Pair[float64, float64]]() {
		t.Fatalf("Pair`2 Instantiate = (%v, %v)", got, err)
	}
}

func TestBuild_Cycles(t *testing.T) {
	mod := apis.Module{Path: testPath, Types: []reflect.Type{reflect.TypeFor[Node]()}}
	al := allowlist.Build(config.DefaultConfig(), mod)

	for _, typ := range []reflect.Type{reflect.TypeFor[Node](), reflect.TypeFor[Peer](), reflect.TypeFor[Label]()} {
		e, ok := al.Lookup(uref.CanonicalName(typ))
		if !ok || e.Type != typ {
			t.Fatalf("Lookup(%v) = (%+v, %v)", typ, e, ok)
		}
	}
}

func TestBuild_SkipRules(t *testing.T) {
	mod := apis.Module{
		Path: testPath,
		Types: []reflect.Type{
			reflect.TypeFor[Holder](),
			reflect.TypeFor[bytes.Buffer](), // not declared in the trusted module
			nil,
		},
	}
	al := allowlist.Build(config.DefaultConfig(), mod)

	if _, ok := al.Lookup(uref.CanonicalName(reflect.TypeFor[Holder]())); !ok {
		t.Fatal("Holder missing")
	}
	if _, ok := al.Lookup("bytes.Buffer"); ok {
		t.Fatal("bytes.Buffer admitted from outside the trusted module")
	}
	for _, n := range al.Names() {
		if strings.Contains(n, "Box") || strings.Contains(n, "Marker") {
			t.Fatalf("closed generic without arguments leaked %q", n)
		}
	}
}

func TestBuild_NameClashDropsBoth(t *testing.T) {
	a, b := localType1(), localType2()
	if uref.CanonicalName(a) != uref.CanonicalName(b) {
		t.Skipf("local types have distinct names: %q, %q", uref.CanonicalName(a), uref.CanonicalName(b))
	}
	for _, types := range [][]reflect.Type{{a, b}, {b, a}} {
		al := allowlist.Build(config.DefaultConfig(), apis.Module{Path: testPath, Types: types})
		if _, ok := al.Lookup(uref.CanonicalName(a)); ok {
			t.Fatalf("clashing name %q kept", uref.CanonicalName(a))
		}
	}
}

func TestBuild_WalkMethods(t *testing.T) {
	with := allowlist.Build(config.NewConfig(config.WithWalkMethods(true)), model.Module())
	without := allowlist.Build(config.NewConfig(config.WithWalkMethods(false)), model.Module())

	// Only reachable through (time.Time).Location().
	if _, ok := with.Lookup("time.Location"); !ok {
		t.Fatal("WalkMethods=true: time.Location missing")
	}
	if _, ok := without.Lookup("time.Location"); ok {
		t.Fatal("WalkMethods=false: time.Location present")
	}
	// Reachable through fields either way.
	for _, al := range []*allowlist.Allowlist{with, without} {
		if _, ok := al.Lookup(uref.CanonicalName(reflect.TypeFor[uuid.UUID]())); !ok {
			t.Fatal("uuid.UUID missing")
		}
		if _, ok := al.Lookup(uref.CanonicalName(reflect.TypeFor[time.Time]())); !ok {
			t.Fatal("time.Time missing")
		}
	}
}

func TestBuild_Deterministic(t *testing.T) {
	base := model.Module()
	want := allowlist.Build(config.DefaultConfig(), base)

	r := rand.New(rand.NewPCG(7, 11))
	for i := 0; i < 20; i++ {
		types := slices.Clone(base.Types)
		r.Shuffle(len(types), func(a, b int) { types[a], types[b] = types[b], types[a] })
		got := allowlist.Build(config.DefaultConfig(), apis.Module{Path: base.Path, Types: types})

		if !slices.Equal(got.Names(), want.Names()) {
			t.Fatalf("shuffle %d: names differ", i)
		}
		for _, e := range want.Entries() {
			g, _ := got.Lookup(e.Name)
			if e.Type != g.Type {
				t.Fatalf("shuffle %d: %q type differs", i, e.Name)
			}
			type counter interface{ Instances() int }
			wc, ok1 := e.Generic.(counter)
			gc, ok2 := g.Generic.(counter)
			if ok1 != ok2 || (ok1 && wc.Instances() != gc.Instances()) {
				t.Fatalf("shuffle %d: %q instances differ", i, e.Name)
			}
		}
	}
}

func TestShapes(t *testing.T) {
	al := allowlist.Build(config.DefaultConfig(), apis.Module{})
	str, i32 := reflect.TypeFor[string](), reflect.TypeFor[int32]()

	cases := []struct {
		shape string
		args  []reflect.Type
		want  reflect.Type
	}{
		{allowlist.MapShape, []reflect.Type{str, i32}, reflect.TypeFor[map[string]int32]()},
		{allowlist.PointerShape, []reflect.Type{i32}, reflect.TypeFor[*int32]()},
		{allowlist.ComparerShape, []reflect.Type{str}, reflect.TypeFor[func(string, string) int]()},
		{allowlist.TupleShape(2), []reflect.Type{str, i32}, uref.TupleOf(str, i32)},
	}
	for _, tc := range cases {
		e, ok := al.Lookup(tc.shape)
		if !ok || !e.IsGeneric() {
			t.Fatalf("shape %q missing", tc.shape)
		}
		got, err := e.Generic.Instantiate(tc.args)
		if err != nil || got != tc.want {
			t.Fatalf("%s.Instantiate = (%v, %v), want %v", tc.shape, got, err, tc.want)
		}
	}

	m, _ := al.Lookup(allowlist.MapShape)
	if _, err := m.Generic.Instantiate([]reflect.Type{reflect.TypeFor[[]int](), i32}); !errors.Is(err, apis.ErrInvalidArgument) {
		t.Fatalf("map with slice key: want ErrInvalidArgument, got %v", err)
	}
	if _, err := m.Generic.Instantiate([]reflect.Type{str}); !errors.Is(err, apis.ErrArityMismatch) {
		t.Fatalf("map with one argument: want ErrArityMismatch, got %v", err)
	}
}

func TestLazy_BuildsOnceConcurrently(t *testing.T) {
	l := allowlist.NewLazy(config.DefaultConfig(), model.Module())
	if l.Built() {
		t.Fatal("Lazy built before first use")
	}

	workers := runtime.GOMAXPROCS(0) * 4
	got := make([]*allowlist.Allowlist, workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(id int) {
			defer wg.Done()
			got[id] = l.Get()
			if _, ok := l.Lookup(modelName("Gaussian")); !ok {
				t.Errorf("worker %d: Gaussian missing", id)
			}
		}(w)
	}
	wg.Wait()

	if !l.Built() {
		t.Fatal("Lazy not built after use")
	}
	for i := range got {
		if got[i] != got[0] {
			t.Fatalf("worker %d saw a different allowlist", i)
		}
	}
	if l.Count() != got[0].Count() {
		t.Fatalf("Count() = %d, want %d", l.Count(), got[0].Count())
	}
}

func BenchmarkBuild(b *testing.B) {
	cfg, mod := config.DefaultConfig(), model.Module()
	for i := 0; i < b.N; i++ {
		allowlist.Build(cfg, mod)
	}
}

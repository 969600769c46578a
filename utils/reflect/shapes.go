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

package reflect

import (
	"reflect"
	"strconv"
)

// MaxTupleArity is the widest tuple shape.
const MaxTupleArity = 4

var intType = reflect.TypeFor[int]()

// ArrayOf returns the array type of the given rank over elem.
// Rank 1 is the ordinary slice []elem. Rank N >= 2 is the rectangular,
// row-major shape struct{ Shape [N]int; Data []elem }.
// It panics if rank < 1.
func ArrayOf(elem reflect.Type, rank int) reflect.Type {
	if rank < 1 {
		panic("reflect: array rank must be positive, got " + strconv.Itoa(rank))
	}
	if rank == 1 {
		return reflect.SliceOf(elem)
	}
	return reflect.StructOf([]reflect.StructField{
		{Name: "Shape", Type: reflect.ArrayOf(rank, intType)},
		{Name: "Data", Type: reflect.SliceOf(elem)},
	})
}

// ArrayShape reports whether t is a rank N >= 2 array shape built by ArrayOf
// and returns its element type and rank.
func ArrayShape(t reflect.Type) (elem reflect.Type, rank int, ok bool) {
	if t == nil || t.Kind() != reflect.Struct || t.Name() != "" || t.NumField() != 2 {
		return nil, 0, false
	}
	shape, data := t.Field(0), t.Field(1)
	if shape.Type.Kind() != reflect.Array || shape.Type.Len() < 2 || data.Type.Kind() != reflect.Slice {
		return nil, 0, false
	}
	elem, rank = data.Type.Elem(), shape.Type.Len()
	if ArrayOf(elem, rank) != t {
		return nil, 0, false
	}
	return elem, rank, true
}

// TupleOf returns the tuple shape struct{ Item1 A; Item2 B; ... }.
// It panics unless 2 <= len(items) <= MaxTupleArity.
func TupleOf(items ...reflect.Type) reflect.Type {
	if len(items) < 2 || len(items) > MaxTupleArity {
		panic("reflect: tuple arity out of range: " + strconv.Itoa(len(items)))
	}
	fields := make([]reflect.StructField, len(items))
	for i, it := range items {
		fields[i] = reflect.StructField{Name: "Item" + strconv.Itoa(i+1), Type: it}
	}
	return reflect.StructOf(fields)
}

// TupleItems reports whether t is a tuple shape built by TupleOf and returns
// its item types.
func TupleItems(t reflect.Type) ([]reflect.Type, bool) {
	if t == nil || t.Kind() != reflect.Struct || t.Name() != "" {
		return nil, false
	}
	n := t.NumField()
	if n < 2 || n > MaxTupleArity {
		return nil, false
	}
	items := make([]reflect.Type, n)
	for i := range items {
		f := t.Field(i)
		if f.Name != "Item"+strconv.Itoa(i+1) {
			return nil, false
		}
		items[i] = f.Type
	}
	if TupleOf(items...) != t {
		return nil, false
	}
	return items, true
}

// ComparerOf returns func(elem, elem) int.
func ComparerOf(elem reflect.Type) reflect.Type {
	return reflect.FuncOf([]reflect.Type{elem, elem}, []reflect.Type{intType}, false)
}

// ComparerElem reports whether t is an unnamed func(T, T) int and returns T.
func ComparerElem(t reflect.Type) (reflect.Type, bool) {
	if t == nil || t.Kind() != reflect.Func || t.Name() != "" || t.IsVariadic() {
		return nil, false
	}
	if t.NumIn() != 2 || t.NumOut() != 1 || t.In(0) != t.In(1) || t.Out(0) != intType {
		return nil, false
	}
	return t.In(0), true
}

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

// Package typename parses and formats the compact type-name grammar carried
// in serialized payloads:
//
//	TypeName    := Identifier [ArgList] ArrayMarker* [Extension]
//	Identifier  := characters up to the first '[', ',' or ']'
//	ArgList     := '[' '[' TypeName ']' (',' '[' TypeName ']')* ']'
//	ArrayMarker := '[' ','* ']'
//	Extension   := ',' <anything up to the next ']' or end of input>
//
// Parsing never loads or evaluates anything the string names.
package typename

import (
	"strings"
)

// Name is a parsed type name.
type Name struct {
	// Name is the bare identifier, without arguments, array markers or extension.
	Name string
	// Args are the generic arguments in order; nil for non-generic names.
	Args []*Name
	// Layout holds one rank per array level, outermost level first.
	Layout []int
}

// String formats n in the wire grammar. The extension is never written.
func (n *Name) String() string {
	var b strings.Builder
	n.write(&b)
	return b.String()
}

func (n *Name) write(b *strings.Builder) {
	b.WriteString(n.Name)
	if len(n.Args) > 0 {
		b.WriteByte('[')
		for i, a := range n.Args {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteByte('[')
			a.write(b)
			b.WriteByte(']')
		}
		b.WriteByte(']')
	}
	for _, rank := range n.Layout {
		b.WriteByte('[')
		for i := 1; i < rank; i++ {
			b.WriteByte(',')
		}
		b.WriteByte(']')
	}
}

// Equal reports whether n and o describe the same tree.
func (n *Name) Equal(o *Name) bool {
	if n == nil || o == nil {
		return n == o
	}
	if n.Name != o.Name || len(n.Args) != len(o.Args) || len(n.Layout) != len(o.Layout) {
		return false
	}
	for i := range n.Args {
		if !n.Args[i].Equal(o.Args[i]) {
			return false
		}
	}
	for i := range n.Layout {
		if n.Layout[i] != o.Layout[i] {
			return false
		}
	}
	return true
}

// WithArray returns a copy of n with an outer array level of rank prepended.
func (n *Name) WithArray(rank int) *Name {
	layout := make([]int, 0, len(n.Layout)+1)
	layout = append(layout, rank)
	layout = append(layout, n.Layout...)
	return &Name{Name: n.Name, Args: n.Args, Layout: layout}
}

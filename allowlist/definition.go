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

package allowlist

import (
	"reflect"
	"strings"

	"dirpx.dev/safetype/apis"
)

// definition is an open generic declared by the trusted module. Go cannot
// instantiate a generic at run time, so it is closed by looking up the
// instantiations the program itself declares.
type definition struct {
	name      string
	arity     int
	instances []instance
}

type instance struct {
	args []reflect.Type
	// t is nil when two distinct types claimed the same arguments.
	t reflect.Type
}

var _ apis.Generic = (*definition)(nil)

func (d *definition) Name() string { return d.name }
func (d *definition) Arity() int   { return d.arity }

// Instantiate returns the declared instantiation for args.
func (d *definition) Instantiate(args []reflect.Type) (reflect.Type, error) {
	if len(args) != d.arity {
		return nil, apis.NewArityMismatchError(d.name, d.arity, len(args))
	}
	if i := d.find(args); i >= 0 && d.instances[i].t != nil {
		return d.instances[i].t, nil
	}
	return nil, apis.NewUnknownTypeError(closedName(d.name, args))
}

// Instances returns how many instantiations can be produced.
func (d *definition) Instances() int {
	n := 0
	for _, in := range d.instances {
		if in.t != nil {
			n++
		}
	}
	return n
}

func (d *definition) add(args []reflect.Type, t reflect.Type) (clash bool) {
	if i := d.find(args); i >= 0 {
		if d.instances[i].t != t {
			d.instances[i].t = nil
			return true
		}
		return false
	}
	d.instances = append(d.instances, instance{args: args, t: t})
	return false
}

func (d *definition) find(args []reflect.Type) int {
outer:
	for i, in := range d.instances {
		for j := range args {
			if in.args[j] != args[j] {
				continue outer
			}
		}
		return i
	}
	return -1
}

func closedName(def string, args []reflect.Type) string {
	var b strings.Builder
	b.WriteString(def)
	b.WriteByte('[')
	for i, a := range args {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('[')
		b.WriteString(a.String())
		b.WriteByte(']')
	}
	b.WriteByte(']')
	return b.String()
}

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

// Package knowntypes is the explicit pre-registration store: an exact,
// two-way mapping between Go types and (name, namespace) pairs chosen by
// the host. It serves as the host's default resolver, consulted before the
// allowlist on every call, and is the remedy for legitimate types outside
// the allowlist.
package knowntypes

import (
	"errors"
	"reflect"
	"sort"
	"sync"

	"dirpx.dev/safetype/apis"
)

var (
	// ErrNilType is returned when a nil reflect.Type is provided.
	ErrNilType = errors.New("safetype(knowntypes): nil reflect.Type provided")
	// ErrEmptyName is returned when an empty name is provided.
	ErrEmptyName = errors.New("safetype(knowntypes): empty name provided")
	// ErrConflictingRegistration indicates an attempt to bind a type or a
	// (name, namespace) pair that is already bound to something else.
	ErrConflictingRegistration = errors.New("safetype(knowntypes): conflicting type registration")
)

// Key is a wire (name, namespace) pair.
type Key struct {
	Name      string
	Namespace string
}

// Entry is a single registration.
type Entry struct {
	Type reflect.Type
	Key
}

// New constructs an empty Registry.
func New() *Registry {
	return &Registry{}
}

// Registry is backed by two sync.Maps; reads never lock.
type Registry struct {
	// mu guards write-side consistency and counter.
	mu sync.Mutex
	// byType maps reflect.Type to Key.
	byType sync.Map
	// byKey maps Key to reflect.Type.
	byKey sync.Map
	// count tracks the number of registered entries.
	count int
}

// Ensure Registry implements apis.TypeResolver.
var _ apis.TypeResolver = (*Registry)(nil)

// Register binds t to (name, ns). It is idempotent for the same triple.
// Types are matched exactly: registering T does not cover *T or []T.
func (r *Registry) Register(t reflect.Type, name, ns string) error {
	// Validate inputs early.
	if t == nil {
		return ErrNilType
	}
	if name == "" {
		return ErrEmptyName
	}
	k := Key{Name: name, Namespace: ns}

	// Fast read path: idempotency / conflict check without locking.
	if done, err := r.check(t, k); done {
		return err
	}

	// Write path: guard with a mutex to keep both directions and the counter consistent.
	r.mu.Lock()
	defer r.mu.Unlock()

	// Re-check under lock in case another goroutine stored meanwhile.
	if done, err := r.check(t, k); done {
		return err
	}
	r.byType.Store(t, k)
	r.byKey.Store(k, t)
	r.count++
	return nil
}

// check reports whether t or k is already bound, and whether that binding
// conflicts with (t, k).
func (r *Registry) check(t reflect.Type, k Key) (done bool, err error) {
	if old, ok := r.byType.Load(t); ok {
		if old.(Key) == k {
			return true, nil
		}
		return true, ErrConflictingRegistration
	}
	if _, ok := r.byKey.Load(k); ok {
		return true, ErrConflictingRegistration
	}
	return false, nil
}

// RegisterType binds T to (name, ns).
func RegisterType[T any](r *Registry, name, ns string) error {
	return r.Register(reflect.TypeFor[T](), name, ns)
}

// Lookup returns the key registered for t.
func (r *Registry) Lookup(t reflect.Type) (Key, bool) {
	if t == nil {
		return Key{}, false
	}
	if v, ok := r.byType.Load(t); ok {
		return v.(Key), true
	}
	return Key{}, false
}

// LookupName returns the type registered for (name, ns).
func (r *Registry) LookupName(name, ns string) (reflect.Type, bool) {
	if v, ok := r.byKey.Load(Key{Name: name, Namespace: ns}); ok {
		return v.(reflect.Type), true
	}
	return nil, false
}

// TryResolveType implements apis.TypeResolver. The store is the innermost
// resolver, so fallback is ignored.
func (r *Registry) TryResolveType(t reflect.Type, _ apis.TypeResolver) (string, string, bool) {
	k, ok := r.Lookup(t)
	return k.Name, k.Namespace, ok
}

// ResolveName implements apis.TypeResolver. It declines unknown pairs.
func (r *Registry) ResolveName(name, ns string, _ apis.TypeResolver) (reflect.Type, error) {
	t, _ := r.LookupName(name, ns)
	return t, nil
}

// Entries returns a snapshot ordered by namespace, then name.
func (r *Registry) Entries() []Entry {
	entries := make([]Entry, 0, r.Count())
	r.byType.Range(func(key, value any) bool {
		entries = append(entries, Entry{Type: key.(reflect.Type), Key: value.(Key)})
		return true
	})
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Namespace != entries[j].Namespace {
			return entries[i].Namespace < entries[j].Namespace
		}
		return entries[i].Name < entries[j].Name
	})
	return entries
}

// Count returns the number of registered entries.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Reset clears all registered entries.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byType.Clear()
	r.byKey.Clear()
	r.count = 0
}

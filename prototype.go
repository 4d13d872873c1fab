// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package dynobj

import (
	"fmt"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
)

// Prototype is the method table of a Type. It is built once by the
// PrototypeRegistry and sealed afterwards; a sealed Prototype is safe for
// concurrent reads.
type Prototype struct {
	typ     *Type
	parent  *Prototype
	methods map[string]*Function
	order   []string
	sealed  bool
}

// Type returns the type the prototype was built for.
func (p *Prototype) Type() *Type {
	return p.typ
}

// Parent returns the prototype of the supertype or nil.
func (p *Prototype) Parent() *Prototype {
	return p.parent
}

// Set registers fn under name. It fails with ErrReadOnly once the prototype
// has been sealed.
func (p *Prototype) Set(name string, fn *Function) error {
	if p.sealed {
		return ErrReadOnly.NewError("prototype of " + p.typ.Name() + " is sealed")
	}
	if fn.Name == "" {
		fn.Name = name
	}
	if _, ok := p.methods[name]; !ok {
		p.order = append(p.order, name)
	}
	p.methods[name] = fn
	return nil
}

// MustSet is like Set but panics on error. It is meant for prototype
// builders.
func (p *Prototype) MustSet(name string, fn *Function) {
	if err := p.Set(name, fn); err != nil {
		panic(err)
	}
}

// Own returns the method registered on this prototype only.
func (p *Prototype) Own(name string) (fn *Function, ok bool) {
	fn, ok = p.methods[name]
	return
}

// Lookup returns the method of name, searching supertype prototypes in
// order.
func (p *Prototype) Lookup(name string) (*Function, bool) {
	for ; p != nil; p = p.parent {
		if fn, ok := p.methods[name]; ok {
			return fn, true
		}
	}
	return nil, false
}

// Names returns the method names visible through p, sorted.
func (p *Prototype) Names() []string {
	seen := map[string]struct{}{}
	var names []string
	for ; p != nil; p = p.parent {
		for _, name := range p.order {
			if _, ok := seen[name]; !ok {
				seen[name] = struct{}{}
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names
}

// Len returns the number of methods registered on this prototype only.
func (p *Prototype) Len() int {
	return len(p.methods)
}

func (p *Prototype) String() string {
	return "<prototype:" + p.typ.Name() + " methods=" + strconv.Itoa(len(p.methods)) + ">"
}

type prototypeEntry struct {
	once  sync.Once
	proto atomic.Pointer[Prototype]
	// err is set when the builder panicked.
	err error
}

// PrototypeRegistry holds the prototype of every type, keyed by type
// identity. Prototypes are built lazily on first use.
type PrototypeRegistry struct {
	mu      sync.Mutex
	entries map[*Type]*prototypeEntry
}

// Prototypes is the process wide prototype registry.
var Prototypes = NewPrototypeRegistry()

// NewPrototypeRegistry creates an empty registry.
func NewPrototypeRegistry() *PrototypeRegistry {
	return &PrototypeRegistry{entries: map[*Type]*prototypeEntry{}}
}

// Get returns the prototype of t, building it exactly once. Concurrent first
// calls block until the single build completes and receive the same fully
// populated table. If the Methods builder of t or of a supertype panics,
// this and every later Get of t panic with an error naming the type.
func (r *PrototypeRegistry) Get(t *Type) *Prototype {
	if t == nil {
		return nil
	}

	r.mu.Lock()
	e := r.entries[t]
	if e == nil {
		e = &prototypeEntry{}
		r.entries[t] = e
	}
	r.mu.Unlock()

	e.once.Do(func() { r.build(e, t) })
	if e.err != nil {
		panic(e.err)
	}
	return e.proto.Load()
}

func (r *PrototypeRegistry) build(e *prototypeEntry, t *Type) {
	defer func() {
		if v := recover(); v != nil {
			if err, ok := v.(error); ok {
				e.err = fmt.Errorf("prototype of %s: %w", t.Name(), err)
			} else {
				e.err = fmt.Errorf("prototype of %s: %v", t.Name(), v)
			}
		}
	}()

	p := &Prototype{typ: t, methods: map[string]*Function{}}
	if t.Super != nil {
		p.parent = r.Get(t.Super)
	}
	if t.Methods != nil {
		t.Methods(p)
	}
	p.sealed = true
	e.proto.Store(p)
}

// Built reports whether the prototype of t has already been built.
func (r *PrototypeRegistry) Built(t *Type) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e := r.entries[t]
	return e != nil && e.proto.Load() != nil
}

// Teardown drops every prototype. Tables handed out before remain valid for
// their holders; the next Get builds a new table.
func (r *PrototypeRegistry) Teardown() {
	r.mu.Lock()
	r.entries = map[*Type]*prototypeEntry{}
	r.mu.Unlock()
}

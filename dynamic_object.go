// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package dynobj

import (
	"strconv"
	"sync"
	"time"
)

// DynamicObject is a monitored entity. Its declared attributes come from
// configuration; overrides are set at runtime and shadow declared values
// without erasing them.
type DynamicObject struct {
	name string
	typ  *Type

	mu        sync.RWMutex
	declared  *AttributeTable
	overrides *AttributeTable
	version   uint64
	signal    *Signal
}

var (
	_ Object           = (*DynamicObject)(nil)
	_ NameCallerObject = (*DynamicObject)(nil)
	_ IndexGetter      = (*DynamicObject)(nil)
)

// Name returns the object name.
func (o *DynamicObject) Name() string {
	return o.name
}

// DynamicType returns the type of the object.
func (o *DynamicObject) DynamicType() *Type {
	return o.typ
}

// Type implements Object interface.
func (o *DynamicObject) Type() ObjectType {
	return o.typ
}

func (o *DynamicObject) ToString() string {
	return "<" + o.typ.TypeName + ":" + strconv.Quote(o.name) + ">"
}

func (o *DynamicObject) String() string {
	return o.ToString()
}

// Equal implements Object interface. Objects are equal only to themselves.
func (o *DynamicObject) Equal(right Object) bool {
	v, ok := right.(*DynamicObject)
	return ok && v == o
}

// IsFalsy implements Object interface.
func (o *DynamicObject) IsFalsy() bool { return false }

// SetSignal sets the signal receiving the attribute events of o.
func (o *DynamicObject) SetSignal(s *Signal) {
	o.mu.Lock()
	o.signal = s
	o.mu.Unlock()
}

// Version returns the number of attribute events emitted by o so far.
func (o *DynamicObject) Version() uint64 {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.version
}

// GetAttribute returns the effective value of name: the override, the
// declared value or the type default, in this order.
func (o *DynamicObject) GetAttribute(name string) (Object, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.get(name)
}

func (o *DynamicObject) get(name string) (Object, error) {
	if v, ok := o.overrides.Get(name); ok {
		return v, nil
	}
	if v, ok := o.declared.Get(name); ok {
		return v, nil
	}
	if v, ok := o.typ.Default(name); ok {
		return v, nil
	}
	return nil, o.notFound(name)
}

func (o *DynamicObject) notFound(name string) *Error {
	return ErrAttributeNotFound.NewError("attribute " + strconv.Quote(name) + " of " + o.ToString())
}

// HasAttribute reports whether name has an effective value.
func (o *DynamicObject) HasAttribute(name string) bool {
	_, err := o.GetAttribute(name)
	return err == nil
}

// ModifyAttribute overrides name with value. The declared value is kept and
// becomes visible again after RestoreAttribute. Names without declared value
// or default are accepted only if the type allows ad hoc attributes.
func (o *DynamicObject) ModifyAttribute(name string, value Object) error {
	if value == nil {
		value = Nil
	}

	o.mu.Lock()
	if !o.overrides.Has(name) && !o.declared.Has(name) {
		if _, ok := o.typ.Default(name); !ok && !o.typ.AdhocAllowed() {
			o.mu.Unlock()
			return o.notFound(name)
		}
	}
	o.overrides.Set(name, value)
	o.version++
	ev := &AttributeEvent{
		Op:      OpModify,
		Object:  o,
		Name:    name,
		Value:   value,
		Changed: true,
		Version: o.version,
		Time:    time.Now(),
	}
	s := o.signal
	o.mu.Unlock()

	s.Emit(ev)
	return nil
}

// RestoreAttribute drops the override of name. Restoring an attribute which
// is not overridden does nothing and is not an error.
func (o *DynamicObject) RestoreAttribute(name string) error {
	o.mu.Lock()
	changed := o.overrides.Delete(name)
	o.version++
	ev := &AttributeEvent{
		Op:      OpRestore,
		Object:  o,
		Name:    name,
		Changed: changed,
		Version: o.version,
		Time:    time.Now(),
	}
	s := o.signal
	o.mu.Unlock()

	s.Emit(ev)
	return nil
}

// IsAttributeModified reports whether name is overridden.
func (o *DynamicObject) IsAttributeModified(name string) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.overrides.Has(name)
}

// ModifiedAttributes returns a copy of the overrides.
func (o *DynamicObject) ModifiedAttributes() Dict {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.overrides.Dict()
}

// ModifiedAttributeNames returns the overridden names in modification order.
func (o *DynamicObject) ModifiedAttributeNames() []string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.overrides.Keys()
}

// DeclaredAttributes returns a copy of the declared attributes.
func (o *DynamicObject) DeclaredAttributes() Dict {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.declared.Dict()
}

// Attributes returns the effective value of every known attribute.
func (o *DynamicObject) Attributes() Dict {
	o.mu.RLock()
	defer o.mu.RUnlock()

	d := o.typ.Defaulted()
	o.declared.Walk(func(name string, value Object) bool {
		d[name] = value
		return true
	})
	o.overrides.Walk(func(name string, value Object) bool {
		d[name] = value
		return true
	})
	return d
}

// ReloadDeclared replaces the declared attributes. It is the configuration
// reload path: overrides are kept and no event is emitted.
func (o *DynamicObject) ReloadDeclared(declared Dict) {
	t := NewAttributeTable(declared)
	o.mu.Lock()
	o.declared = t
	o.mu.Unlock()
}

// IndexGet implements IndexGetter, returning Nil for unknown attributes.
func (o *DynamicObject) IndexGet(index Object) (Object, error) {
	v, err := o.GetAttribute(index.ToString())
	if err != nil {
		return Nil, nil
	}
	return v, nil
}

// ResolveMethod finds the callable dispatched for name: a callable attribute
// when the type puts attributes first, then the prototype chain, then the
// effective attribute.
func (o *DynamicObject) ResolveMethod(name string) (CallerObject, error) {
	if o.typ.attributesFirst() {
		if v, err := o.GetAttribute(name); err == nil {
			if co, ok := v.(CallerObject); ok {
				return co, nil
			}
		}
	}

	if fn, ok := o.typ.Prototype().Lookup(name); ok {
		return fn, nil
	}

	v, err := o.GetAttribute(name)
	if err != nil {
		return nil, ErrMethodNotFound.NewError("method " + strconv.Quote(name) + " of type " + o.typ.Name())
	}
	if co, ok := v.(CallerObject); ok {
		return co, nil
	}
	return nil, ErrNotCallable.NewError("attribute " + strconv.Quote(name) + " of type " + v.Type().Name())
}

// CallName implements NameCallerObject. The resolved callable runs in a new
// frame binding o as self.
func (o *DynamicObject) CallName(name string, c Call) (Object, error) {
	callee, err := o.ResolveMethod(name)
	if err != nil {
		return nil, err
	}
	return Invoke(c, o, callee)
}

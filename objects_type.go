// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package dynobj

import (
	"strings"
)

// Type describes a kind of DynamicObject: its supertype, attribute defaults,
// attribute policy and the builder of its prototype.
type Type struct {
	TypeName string
	Super    *Type
	// Defaults are consulted when an attribute is neither overridden nor
	// declared. Defaults of the own type shadow the supertype's.
	Defaults Dict
	// AllowAdhoc permits modifying attributes without declared value or
	// default. Any type in the chain may enable it.
	AllowAdhoc bool
	// AttributesFirst lets a callable attribute win over a method of the
	// same name. Any type in the chain may enable it.
	AttributesFirst bool
	// Methods registers the methods of the type. It runs once, when the
	// prototype is first requested.
	Methods func(p *Prototype)
}

var (
	_ ObjectType   = (*Type)(nil)
	_ CallerObject = (*Type)(nil)
)

func (t *Type) Name() string {
	return t.TypeName
}

func (t *Type) Type() ObjectType {
	return TBuiltinType
}

func (t *Type) ToString() string {
	return "<type:" + t.TypeName + ">"
}

func (t *Type) String() string {
	return t.ToString()
}

// Equal implements Object interface.
func (t *Type) Equal(right Object) bool {
	v, ok := right.(*Type)
	return ok && v == t
}

func (*Type) IsFalsy() bool { return false }

// IsChildOf reports whether ot is a supertype of t.
func (t *Type) IsChildOf(ot ObjectType) bool {
	for s := t.Super; s != nil; s = s.Super {
		if ObjectType(s) == ot {
			return true
		}
	}
	return false
}

// Is reports whether t is ot or one of its subtypes.
func (t *Type) Is(ot *Type) bool {
	return t == ot || t.IsChildOf(ot)
}

// Chain returns t followed by its supertypes.
func (t *Type) Chain() []*Type {
	var chain []*Type
	for s := t; s != nil; s = s.Super {
		chain = append(chain, s)
	}
	return chain
}

// Path renders the chain from the root type, e.g. ConfigObject.Checkable.Host.
func (t *Type) Path() string {
	chain := t.Chain()
	names := make([]string, len(chain))
	for i, s := range chain {
		names[len(chain)-1-i] = s.TypeName
	}
	return strings.Join(names, ".")
}

// Default returns the default value of name along the type chain.
func (t *Type) Default(name string) (Object, bool) {
	for s := t; s != nil; s = s.Super {
		if v, ok := s.Defaults[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Defaulted returns every default visible from t.
func (t *Type) Defaulted() Dict {
	d := Dict{}
	chain := t.Chain()
	for i := len(chain) - 1; i >= 0; i-- {
		for k, v := range chain[i].Defaults {
			d[k] = v
		}
	}
	return d
}

// AdhocAllowed reports whether any type in the chain allows ad hoc
// attributes.
func (t *Type) AdhocAllowed() bool {
	for s := t; s != nil; s = s.Super {
		if s.AllowAdhoc {
			return true
		}
	}
	return false
}

func (t *Type) attributesFirst() bool {
	for s := t; s != nil; s = s.Super {
		if s.AttributesFirst {
			return true
		}
	}
	return false
}

// Prototype returns the shared prototype of t from the process wide
// registry.
func (t *Type) Prototype() *Prototype {
	return Prototypes.Get(t)
}

// New creates an object of type t with a copy of declared as its declared
// attributes.
func (t *Type) New(name string, declared Dict) *DynamicObject {
	return &DynamicObject{
		name:      name,
		typ:       t,
		declared:  NewAttributeTable(declared),
		overrides: &AttributeTable{},
	}
}

// Call creates a detached object: type(name[, declared]).
func (t *Type) Call(c Call) (Object, error) {
	l := c.Args.Len()
	if l != 1 && l != 2 {
		return nil, ErrWrongNumArguments.NewError("want=1..2 got=" + Int(l).ToString())
	}
	name, err := ArgStr(c, 0, "name")
	if err != nil {
		return nil, err
	}
	var declared Dict
	if l == 2 {
		v := c.Args.GetDefault(1, Nil)
		if declared, _ = v.(Dict); declared == nil {
			return nil, NewArgumentTypeError("2nd (attributes)", "dict", v.Type().Name())
		}
	}
	return t.New(string(name), declared), nil
}

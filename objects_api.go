// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package dynobj

// Falser represents an Falser object.
type Falser interface {
	// IsFalsy returns true if value is falsy otherwise false.
	IsFalsy() bool
}

// Object represents a value visible to scripts.
type Object interface {
	Falser

	// Type should return the type of the value.
	Type() ObjectType

	// ToString should return a string of the type's value.
	ToString() string

	// Equal checks equality of objects.
	Equal(right Object) bool
}

// ObjectType is implemented by builtin value types and by the types of
// dynamic objects.
type ObjectType interface {
	Object
	Name() string
	IsChildOf(t ObjectType) bool
}

// Copier wraps the Copy method to create a single copy of the object.
type Copier interface {
	Object
	Copy() Object
}

// IndexGetter wraps the IndexGet method to get index value.
type IndexGetter interface {
	Object
	// IndexGet should take an index Object and return a result Object or an
	// error for indexable objects.
	IndexGet(index Object) (value Object, err error)
}

// LengthGetter wraps the Len method to get the number of elements of an object.
type LengthGetter interface {
	Object
	Length() int
}

// CallerObject is an interface for objects that can be called with Call
// method.
type CallerObject interface {
	Object
	Call(c Call) (Object, error)
}

// NameCallerObject is an interface for objects that can be called with CallName
// method to call a method of an object. Dispatch through CallName binds the
// receiver as self of a new execution frame.
type NameCallerObject interface {
	Object
	CallName(name string, c Call) (Object, error)
}

// Callable returns true if o can be called with Call.
func Callable(o Object) (ok bool) {
	_, ok = o.(CallerObject)
	return
}

// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package dynobj

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

const (
	// True represents a true value.
	True = Bool(true)

	// False represents a false value.
	False = Bool(false)
)

var (
	// Nil represents nil value.
	Nil Object = &NilType{}
)

// NilType represents the type of global Nil Object. One should use
// the NilType in type switches only.
type NilType struct{}

func (o *NilType) Type() ObjectType {
	return TNil
}

func (o *NilType) ToString() string {
	return "nil"
}

func (o *NilType) Format(f fmt.State, verb rune) {
	switch verb {
	case 'v':
		f.Write([]byte(o.ToString()))
	}
}

// Equal implements Object interface.
func (o *NilType) Equal(right Object) bool {
	return right == nil || right == Nil
}

// IsFalsy implements Object interface.
func (o *NilType) IsFalsy() bool { return true }

// Bool represents boolean values and implements Object interface.
type Bool bool

func (o Bool) Type() ObjectType {
	return TBool
}

func (o Bool) ToString() string {
	if o {
		return "true"
	}
	return "false"
}

// Equal implements Object interface.
func (o Bool) Equal(right Object) bool {
	if v, ok := right.(Bool); ok {
		return o == v
	}

	if v, ok := right.(Int); ok {
		return bool((o && v == 1) || (!o && v == 0))
	}

	if v, ok := right.(Uint); ok {
		return bool((o && v == 1) || (!o && v == 0))
	}
	return false
}

// IsFalsy implements Object interface.
func (o Bool) IsFalsy() bool { return bool(!o) }

// Str represents string values and implements Object interface.
type Str string

var _ LengthGetter = Str("")

func (o Str) Type() ObjectType {
	return TStr
}

func (o Str) ToString() string {
	return string(o)
}

func (o Str) Quoted() string {
	return strconv.Quote(string(o))
}

// Equal implements Object interface.
func (o Str) Equal(right Object) bool {
	if v, ok := right.(Str); ok {
		return o == v
	}
	if v, ok := right.(Bytes); ok {
		return string(o) == string(v)
	}
	return false
}

// IsFalsy implements Object interface.
func (o Str) IsFalsy() bool { return len(o) == 0 }

// Length implements LengthGetter interface.
func (o Str) Length() int {
	return len(o)
}

// Bytes represents byte slice and implements Object interface.
type Bytes []byte

var (
	_ Object       = Bytes{}
	_ Copier       = Bytes{}
	_ LengthGetter = Bytes{}
)

func (o Bytes) Type() ObjectType {
	return TBytes
}

func (o Bytes) ToString() string {
	return string(o)
}

// Copy implements Copier interface.
func (o Bytes) Copy() Object {
	cp := make(Bytes, len(o))
	copy(cp, o)
	return cp
}

// Equal implements Object interface.
func (o Bytes) Equal(right Object) bool {
	if v, ok := right.(Bytes); ok {
		return string(o) == string(v)
	}

	if v, ok := right.(Str); ok {
		return string(o) == string(v)
	}
	return false
}

// IsFalsy implements Object interface.
func (o Bytes) IsFalsy() bool { return len(o) == 0 }

// Length implements LengthGetter interface.
func (o Bytes) Length() int {
	return len(o)
}

// Function represents a callable value: a native trampoline or a closure
// handed over by a script host. Functions are shared by pointer between every
// call site; Mutates marks functions changing object state.
type Function struct {
	Name    string
	Value   func(Call) (Object, error)
	Mutates bool
}

var _ CallerObject = (*Function)(nil)

func (*Function) Type() ObjectType {
	return TFunction
}

func (o *Function) ToString() string {
	return fmt.Sprintf("<function:%s>", o.Name)
}

// Equal implements Object interface.
func (o *Function) Equal(right Object) bool {
	v, ok := right.(*Function)
	if !ok {
		return false
	}
	return v == o
}

// IsFalsy implements Object interface.
func (*Function) IsFalsy() bool { return false }

func (o *Function) Call(call Call) (Object, error) {
	return o.Value(call)
}

// Array represents array of objects and implements Object interface.
type Array []Object

var (
	_ Object       = Array{}
	_ LengthGetter = Array{}
	_ Copier       = Array{}
	_ IndexGetter  = Array{}
)

func (o Array) Type() ObjectType {
	return TArray
}

func (o Array) ToString() string {
	return ArrayToString(len(o), func(i int) Object {
		return o[i]
	})
}

// Copy implements Copier interface.
func (o Array) Copy() Object {
	cp := make(Array, len(o))
	copy(cp, o)
	return cp
}

// IndexGet implements Object interface.
func (o Array) IndexGet(index Object) (Object, error) {
	switch v := index.(type) {
	case Int:
		idx := int(v)
		if idx >= 0 && idx < len(o) {
			return o[v], nil
		}
		return Nil, nil
	case Uint:
		idx := int(v)
		if idx >= 0 && idx < len(o) {
			return o[v], nil
		}
		return Nil, nil
	}
	return nil, NewArgumentTypeError("1st", "int|uint", index.Type().Name())
}

// Equal implements Object interface.
func (o Array) Equal(right Object) bool {
	v, ok := right.(Array)
	if !ok {
		return false
	}

	if len(o) != len(v) {
		return false
	}

	for i := range o {
		if !o[i].Equal(v[i]) {
			return false
		}
	}
	return true
}

// IsFalsy implements Object interface.
func (o Array) IsFalsy() bool { return len(o) == 0 }

// Length implements LengthGetter interface.
func (o Array) Length() int {
	return len(o)
}

// ArrayToString renders n objects the way arrays print themselves.
func ArrayToString(n int, get func(i int) Object) string {
	var sb strings.Builder
	sb.WriteString("[")
	last := n - 1
	for i := 0; i < n; i++ {
		sb.WriteString(ToCode(get(i)))
		if i != last {
			sb.WriteString(", ")
		}
	}
	sb.WriteString("]")
	return sb.String()
}

// Dict represents map of objects and implements Object interface.
type Dict map[string]Object

var (
	_ Object       = Dict{}
	_ Copier       = Dict{}
	_ IndexGetter  = Dict{}
	_ LengthGetter = Dict{}
)

func (o Dict) Type() ObjectType {
	return TDict
}

func (o Dict) ToString() string {
	var sb strings.Builder
	sb.WriteString("{")
	keys := o.SortedKeys()
	last := len(keys) - 1

	for i, k := range keys {
		sb.WriteString(k)
		sb.WriteString(": ")
		sb.WriteString(ToCode(o[k]))
		if i != last {
			sb.WriteString(", ")
		}
	}

	sb.WriteString("}")
	return sb.String()
}

// Copy implements Copier interface.
func (o Dict) Copy() Object {
	cp := make(Dict, len(o))
	for k, v := range o {
		cp[k] = v
	}
	return cp
}

// IndexGet implements Object interface.
func (o Dict) IndexGet(index Object) (Object, error) {
	v, ok := o[index.ToString()]
	if ok {
		return v, nil
	}
	return Nil, nil
}

// Equal implements Object interface.
func (o Dict) Equal(right Object) bool {
	v, ok := right.(Dict)
	if !ok {
		return false
	}

	if len(o) != len(v) {
		return false
	}

	for k := range o {
		right, ok := v[k]
		if !ok {
			return false
		}
		if !o[k].Equal(right) {
			return false
		}
	}
	return true
}

// IsFalsy implements Object interface.
func (o Dict) IsFalsy() bool { return len(o) == 0 }

// Length implements LengthGetter interface.
func (o Dict) Length() int {
	return len(o)
}

func (o Dict) SortedKeys() []string {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (o *Dict) Set(key string, value Object) {
	if *o == nil {
		*o = Dict{}
	}
	(*o)[key] = value
}

// Error represents Error Object and implements error and Object interfaces.
type Error struct {
	Name    string
	Message string
	Cause   error
}

var (
	_ Object = (*Error)(nil)
	_ Copier = (*Error)(nil)
)

func (o *Error) Unwrap() error {
	return o.Cause
}

func (o *Error) Type() ObjectType {
	return TError
}

func (o *Error) ToString() string {
	return o.Error()
}

// Copy implements Copier interface.
func (o *Error) Copy() Object {
	return &Error{
		Name:    o.Name,
		Message: o.Message,
		Cause:   o.Cause,
	}
}

// Error implements error interface.
func (o *Error) Error() string {
	name := o.Name
	if name == "" {
		name = "error"
	}
	if o.Message == "" {
		return name
	}
	return fmt.Sprintf("%s: %s", name, o.Message)
}

// Equal implements Object interface.
func (o *Error) Equal(right Object) bool {
	if v, ok := right.(*Error); ok {
		return v == o
	}
	return false
}

// IsFalsy implements Object interface.
func (o *Error) IsFalsy() bool { return true }

// NewError creates a new Error and sets original Error as its cause which can be unwrapped.
func (o *Error) NewError(messages ...string) *Error {
	cp := o.Copy().(*Error)
	cp.Message = strings.Join(messages, " ")
	cp.Cause = o
	return cp
}

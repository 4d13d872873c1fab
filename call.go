// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package dynobj

import (
	"fmt"
	"strconv"
)

type Args []Array

// GetDefault returns the nth argument. If n is greater than the number of arguments,
// it returns the nth variadic argument.
// If n is greater than the number of arguments and variadic arguments, return defaul.
func (c Args) GetDefault(n int, defaul Object) Object {
	var at int
	for _, arr := range c {
		if len(arr) == 0 {
			continue
		}
		if n < at+len(arr) {
			return arr[n-at]
		}
		at += len(arr)
	}
	return defaul
}

// Get returns the nth argument. If n is greater than the number of arguments,
// it returns the nth variadic argument.
// If n is greater than the number of arguments and variadic arguments, it
// panics!
func (c Args) Get(n int) (v Object) {
	v = c.GetDefault(n, nil)
	if v == nil {
		panic(fmt.Sprintf("index out of range [%d] with length %d", n, c.Len()))
	}
	return
}

// Len returns the number of arguments including variadic arguments.
func (c Args) Len() (l int) {
	for _, v := range c {
		l += len(v)
	}
	return l
}

// CheckLen checks the number of arguments and variadic arguments. If the number
// of arguments is not equal to n, it returns an error.
func (c Args) CheckLen(n int) error {
	if n != c.Len() {
		return NewWrongNumArgumentsError(n, c.Len())
	}
	return nil
}

func (c Args) Values() (ret Array) {
	switch len(c) {
	case 0:
		return Array{}
	case 1:
		if c[0] == nil {
			return Array{}
		}
		return c[0]
	default:
		ret = Array{}
		for _, arr := range c {
			ret = append(ret, arr...)
		}
		return
	}
}

// Call is a struct to pass arguments to Call and CallName methods.
// It carries the frame stack of the calling execution path.
//
// Call struct intentionally does not provide access to normal and variadic
// arguments directly. Using Len() and Get() methods is preferred. It is safe to
// create Call with a nil Frames as long as no callee reads the bound self.
type Call struct {
	Frames *FrameStack
	Args   Args
}

// NewCall creates a new Call struct.
func NewCall(frames *FrameStack, opts ...CallOpt) Call {
	c := Call{Frames: frames}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Self returns the self bound by the active frame.
func (c Call) Self() (Object, error) {
	f, err := c.Frames.Current()
	if err != nil {
		return nil, err
	}
	return f.Self, nil
}

type CallOpt func(c *Call)

func WithArgs(args ...Object) func(c *Call) {
	return func(c *Call) {
		c.Args = Args{args}
	}
}

// ArgStr returns the nth argument as Str or an ErrInvalidArgumentType error.
func ArgStr(c Call, n int, name string) (Str, error) {
	v := c.Args.GetDefault(n, Nil)
	if v == nil {
		v = Nil
	}
	s, ok := v.(Str)
	if !ok {
		return "", NewArgumentTypeError(argPos(n, name), "str", v.Type().Name())
	}
	return s, nil
}

// ArgAttributeName returns the nth argument as a non empty attribute name.
func ArgAttributeName(c Call, n int) (string, error) {
	s, err := ArgStr(c, n, "name")
	if err != nil {
		return "", err
	}
	if s == "" {
		return "", ErrInvalidArgumentType.NewError("attribute name must not be empty")
	}
	return string(s), nil
}

func argPos(n int, name string) string {
	pos := strconv.Itoa(n + 1)
	switch n {
	case 0:
		pos = "1st"
	case 1:
		pos = "2nd"
	case 2:
		pos = "3rd"
	default:
		pos += "th"
	}
	if name != "" {
		pos += " (" + name + ")"
	}
	return pos
}

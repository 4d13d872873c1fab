// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package dynobj

import (
	"fmt"
	"strconv"
)

var (
	// ErrAttributeNotFound is returned when an attribute is neither
	// overridden, declared nor defaulted by the object's type chain.
	ErrAttributeNotFound = &Error{Name: "AttributeNotFoundError"}

	// ErrNoActiveFrame is returned by code reading the bound self while no
	// execution frame is pushed.
	ErrNoActiveFrame = &Error{Name: "NoActiveFrameError", Message: "no active frame"}

	// ErrType represents a type mismatch between the bound self and the
	// type a native method expects.
	ErrType = &Error{Name: "TypeError"}

	// ErrMethodNotFound is returned when the prototype chain is exhausted
	// and no attribute of the same name exists.
	ErrMethodNotFound = &Error{Name: "MethodNotFoundError"}

	// ErrArgument is the parent of all argument errors.
	ErrArgument = &Error{Name: "ArgumentError"}

	// ErrWrongNumArguments represents a wrong number of arguments error.
	ErrWrongNumArguments = ErrArgument.NewError("wrong number of arguments")

	// ErrInvalidArgumentType represents an invalid argument value type error.
	ErrInvalidArgumentType = ErrArgument.NewError("invalid argument type")

	// ErrNotCallable is an error where Object is not callable.
	ErrNotCallable = &Error{Name: "NotCallableError"}

	// ErrFrameStackOverflow is returned when a push exceeds MaxFrames.
	ErrFrameStackOverflow = &Error{Name: "FrameStackOverflowError"}

	// ErrReadOnly is returned when a sealed prototype is modified.
	ErrReadOnly = &Error{Name: "ReadOnlyError"}

	// ErrSideEffect is returned when a state mutating function is invoked
	// from a sandboxed frame.
	ErrSideEffect = &Error{Name: "SideEffectError"}

	// ErrObjectExists is returned when an object is created twice.
	ErrObjectExists = &Error{Name: "ObjectExistsError"}

	// ErrObjectNotFound is returned for unknown objects.
	ErrObjectNotFound = &Error{Name: "ObjectNotFoundError"}

	// ErrTypeNotFound is returned for unknown type names.
	ErrTypeNotFound = &Error{Name: "TypeNotFoundError"}
)

// NewArgumentTypeError creates a new Error from ErrInvalidArgumentType.
func NewArgumentTypeError(pos, expectType, foundType string) *Error {
	return ErrInvalidArgumentType.NewError(
		fmt.Sprintf("invalid type for argument '%s': expected %s, found %s",
			pos, expectType, foundType),
	)
}

// NewWrongNumArgumentsError creates a new Error from ErrWrongNumArguments.
func NewWrongNumArgumentsError(want, got int) *Error {
	return ErrWrongNumArguments.NewError(fmt.Sprintf("wrong number of arguments: want=%d got=%d", want, got))
}

// NewSelfTypeError creates a new Error from ErrType for a bound self which
// does not match the expected type.
func NewSelfTypeError(method, expectType string, self Object) *Error {
	found := "nil"
	if self != nil {
		found = self.Type().Name()
	}
	return ErrType.NewError(fmt.Sprintf("method %s: self must be %s, found %s",
		strconv.Quote(method), expectType, found))
}

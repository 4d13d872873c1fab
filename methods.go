package dynobj

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// VarArgs marks a native method accepting any number of arguments.
const VarArgs = -1

// NativeMethod adapts fn to a prototype method. The returned Function reads
// the self bound by the active frame, checks that it is a T and that the
// call passes arity arguments, then hands both to fn. Calls without an
// active frame fail with ErrNoActiveFrame, a self of another type with
// ErrType and a wrong argument count with ErrWrongNumArguments.
func NativeMethod[T Object](name string, mutates bool, arity int, fn func(c Call, self T) (Object, error)) *Function {
	return &Function{
		Name:    name,
		Mutates: mutates,
		Value: func(c Call) (Object, error) {
			s, err := c.Self()
			if err != nil {
				return nil, err
			}
			self, ok := s.(T)
			if !ok {
				return nil, NewSelfTypeError(name, typeNameOf[T](), s)
			}
			if arity != VarArgs {
				if err := c.Args.CheckLen(arity); err != nil {
					return nil, err
				}
			}
			return fn(c, self)
		},
	}
}

// ObjectMethod is NativeMethod for methods accepting any DynamicObject of t
// or its subtypes.
func ObjectMethod(t *Type, name string, mutates bool, arity int, fn func(c Call, self *DynamicObject) (Object, error)) *Function {
	return NativeMethod(name, mutates, arity, func(c Call, self *DynamicObject) (Object, error) {
		if !self.DynamicType().Is(t) {
			return nil, NewSelfTypeError(name, t.Name(), self)
		}
		return fn(c, self)
	})
}

func typeNameOf[T Object]() string {
	var zero T
	if _, ok := any(zero).(*DynamicObject); ok {
		return "object"
	}
	rv := reflect.ValueOf(zero)
	if !rv.IsValid() || (rv.Kind() == reflect.Pointer && rv.IsNil()) {
		return strings.TrimPrefix(fmt.Sprintf("%T", zero), "*dynobj.")
	}
	return zero.Type().Name()
}

// CallMethod calls the method name of o with args on frames. It is the Go
// side entry point of script method calls. Nil arguments are passed as Nil.
func CallMethod(frames *FrameStack, o Object, name string, args ...Object) (Object, error) {
	if o == nil {
		o = Nil
	}
	nc, ok := o.(NameCallerObject)
	if !ok {
		return nil, ErrMethodNotFound.NewError("method " + strconv.Quote(name) + " of type " + o.Type().Name())
	}
	values := make([]Object, len(args))
	for i, arg := range args {
		if arg == nil {
			arg = Nil
		}
		values[i] = arg
	}
	return nc.CallName(name, NewCall(frames, WithArgs(values...)))
}

// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package dynobj

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// CallableFunc is a function signature for a callable function that accepts
// a Call struct.
type CallableFunc = func(Call) (ret Object, err error)

// ToObject converts a Go value to an Object. Signed integers become Int and
// unsigned integers Uint.
func ToObject(v any) (ret Object, err error) {
	switch v := v.(type) {
	case nil:
		ret = Nil
	case string:
		ret = Str(v)
	case bool:
		ret = Bool(v)
	case int:
		ret = Int(v)
	case int64:
		ret = Int(v)
	case int32:
		ret = Int(v)
	case int16:
		ret = Int(v)
	case int8:
		ret = Int(v)
	case uint:
		ret = Uint(v)
	case uint64:
		ret = Uint(v)
	case uint32:
		ret = Uint(v)
	case uint16:
		ret = Uint(v)
	case uint8:
		ret = Uint(v)
	case float64:
		ret = Float(v)
	case float32:
		ret = Float(v)
	case decimal.Decimal:
		ret = Decimal(v)
	case []byte:
		if v != nil {
			ret = Bytes(v)
		} else {
			ret = Bytes{}
		}
	case map[string]Object:
		if v != nil {
			ret = Dict(v)
		} else {
			ret = Dict{}
		}
	case map[string]any:
		d := make(Dict, len(v))
		for k, e := range v {
			if d[k], err = ToObject(e); err != nil {
				return
			}
		}
		ret = d
	case []Object:
		if v != nil {
			ret = Array(v)
		} else {
			ret = Array{}
		}
	case []any:
		arr := make(Array, len(v))
		for i, e := range v {
			if arr[i], err = ToObject(e); err != nil {
				return
			}
		}
		ret = arr
	case Object:
		ret = v
	case CallableFunc:
		if v != nil {
			ret = &Function{Value: v}
		} else {
			ret = Nil
		}
	case error:
		ret = &Error{Message: v.Error(), Cause: v}
	default:
		err = ErrInvalidArgumentType.NewError(fmt.Sprintf("unsupported Go type %T", v))
	}
	return
}

// ToInterface tries to convert an Object o to an any value.
func ToInterface(o Object) (ret any) {
	switch o := o.(type) {
	case Int:
		ret = int64(o)
	case Str:
		ret = string(o)
	case Bytes:
		ret = []byte(o)
	case Array:
		arr := make([]any, len(o))
		for i, val := range o {
			arr[i] = ToInterface(val)
		}
		ret = arr
	case Dict:
		m := make(map[string]any, len(o))
		for key, v := range o {
			m[key] = ToInterface(v)
		}
		ret = m
	case Uint:
		ret = uint64(o)
	case Float:
		ret = float64(o)
	case Decimal:
		ret = o.ToGo()
	case Bool:
		ret = bool(o)
	case *NilType:
		ret = nil
	default:
		ret = o
	}
	return
}

// ToCode renders o the way it would be written as a literal.
func ToCode(o Object) string {
	switch v := o.(type) {
	case nil:
		return "nil"
	case Str:
		return v.Quoted()
	case Bytes:
		return fmt.Sprint([]byte(v))
	case Decimal:
		return v.ToString() + "d"
	default:
		return v.ToString()
	}
}

// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package dynobj

// BuiltinObjType is the type of builtin values.
type BuiltinObjType struct {
	NameValue string
}

var _ ObjectType = (*BuiltinObjType)(nil)

func (b *BuiltinObjType) IsChildOf(ObjectType) bool {
	return false
}

func (b *BuiltinObjType) Name() string {
	return b.NameValue
}

func (b *BuiltinObjType) Type() ObjectType {
	return TBuiltinType
}

func (b *BuiltinObjType) ToString() string {
	return "<builtinType:" + b.NameValue + ">"
}

func (b *BuiltinObjType) String() string {
	return b.ToString()
}

func (b *BuiltinObjType) IsFalsy() bool {
	return false
}

func (b *BuiltinObjType) Equal(right Object) bool {
	v, ok := right.(*BuiltinObjType)
	if !ok {
		return false
	}
	return v == b
}

var (
	TBuiltinType = &BuiltinObjType{NameValue: "builtinType"}
	TNil         = &BuiltinObjType{NameValue: "nil"}
	TBool        = &BuiltinObjType{NameValue: "bool"}
	TInt         = &BuiltinObjType{NameValue: "int"}
	TUint        = &BuiltinObjType{NameValue: "uint"}
	TFloat       = &BuiltinObjType{NameValue: "float"}
	TDecimal     = &BuiltinObjType{NameValue: "decimal"}
	TStr         = &BuiltinObjType{NameValue: "str"}
	TBytes       = &BuiltinObjType{NameValue: "bytes"}
	TArray       = &BuiltinObjType{NameValue: "array"}
	TDict        = &BuiltinObjType{NameValue: "dict"}
	TError       = &BuiltinObjType{NameValue: "error"}
	TFunction    = &BuiltinObjType{NameValue: "function"}
)

// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package dynobj

import (
	"math/big"
	"strconv"

	"github.com/shopspring/decimal"
)

// Int represents signed integer values and implements Object interface.
type Int int64

func (o Int) Type() ObjectType {
	return TInt
}

func (o Int) ToString() string {
	return strconv.FormatInt(int64(o), 10)
}

// Equal implements Object interface.
func (o Int) Equal(right Object) bool {
	switch v := right.(type) {
	case Int:
		return o == v
	case Uint:
		return Uint(o) == v
	case Float:
		return Float(o) == v
	case Decimal:
		return DecimalFromInt(o).Equal(v)
	case Bool:
		if v {
			return o == 1
		}
		return o == 0
	}
	return false
}

// IsFalsy implements Object interface.
func (o Int) IsFalsy() bool { return o == 0 }

// Uint represents unsigned integer values and implements Object interface.
type Uint uint64

func (o Uint) Type() ObjectType {
	return TUint
}

func (o Uint) ToString() string {
	return strconv.FormatUint(uint64(o), 10)
}

// Equal implements Object interface.
func (o Uint) Equal(right Object) bool {
	switch v := right.(type) {
	case Uint:
		return o == v
	case Int:
		return o == Uint(v)
	case Float:
		return Float(o) == v
	case Decimal:
		return DecimalFromUint(o).Equal(v)
	case Bool:
		if v {
			return o == 1
		}
		return o == 0
	}
	return false
}

// IsFalsy implements Object interface.
func (o Uint) IsFalsy() bool { return o == 0 }

// Float represents float values and implements Object interface.
type Float float64

func (o Float) Type() ObjectType {
	return TFloat
}

func (o Float) ToString() string {
	return strconv.FormatFloat(float64(o), 'g', -1, 64)
}

// Equal implements Object interface.
func (o Float) Equal(right Object) bool {
	switch v := right.(type) {
	case Float:
		return o == v
	case Int:
		return o == Float(v)
	case Uint:
		return o == Float(v)
	case Decimal:
		return DecimalFromFloat(o).Equal(v)
	case Bool:
		if v {
			return o == 1
		}
		return o == 0
	}
	return false
}

// IsFalsy implements Object interface.
func (o Float) IsFalsy() bool {
	// IEEE 754 says that only NaNs satisfy f != f.
	return o != o
}

// Decimal represents a fixed-point decimal. It is immutable.
// number = value * 10 ^ exp
type Decimal decimal.Decimal

func (o Decimal) ToGo() decimal.Decimal {
	return decimal.Decimal(o)
}

func (o Decimal) Type() ObjectType {
	return TDecimal
}

func (o Decimal) ToString() string {
	return o.ToGo().String()
}

// Equal implements Object interface.
func (o Decimal) Equal(right Object) bool {
	switch v := right.(type) {
	case Decimal:
		return o.ToGo().Equal(v.ToGo())
	case Int:
		return o.ToGo().Equal(decimal.Decimal(DecimalFromInt(v)))
	case Uint:
		return o.ToGo().Equal(decimal.Decimal(DecimalFromUint(v)))
	case Float:
		return o.ToGo().Equal(decimal.Decimal(DecimalFromFloat(v)))
	case Bool:
		return o.ToGo().IsZero() != bool(v)
	}
	return false
}

// IsFalsy implements Object interface.
func (o Decimal) IsFalsy() bool {
	return o.ToGo().IsZero()
}

func DecimalFromUint(v Uint) Decimal {
	return Decimal(decimal.NewFromBigInt(new(big.Int).SetUint64(uint64(v)), 0))
}

func DecimalFromInt(v Int) Decimal {
	return Decimal(decimal.NewFromInt(int64(v)))
}

func DecimalFromFloat(v Float) Decimal {
	return Decimal(decimal.NewFromFloat(float64(v)))
}

func DecimalFromString(v Str) (Decimal, error) {
	r, err := decimal.NewFromString(string(v))
	return Decimal(r), err
}

func MustDecimalFromString(v Str) Decimal {
	r, err := decimal.NewFromString(string(v))
	if err != nil {
		panic(err)
	}
	return Decimal(r)
}

var DecimalZero = Decimal(decimal.Zero)

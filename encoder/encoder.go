// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

// Package encoder implements the binary encoding of attribute values.
//
// Every value starts with a tag byte. Scalars follow with a size byte and a
// varint payload; strings, bytes, arrays and dicts follow with a varint
// length prefix and their content.
package encoder

import (
	"bytes"
	"encoding"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/gad-lang/dynobj"
)

// Types implementing encoding.BinaryMarshaler encoding.BinaryUnmarshaler.
type (
	NilType dynobj.NilType
	Bool    dynobj.Bool
	Int     dynobj.Int
	Uint    dynobj.Uint
	Float   dynobj.Float
	Decimal dynobj.Decimal
	String  dynobj.Str
	Bytes   dynobj.Bytes
	Array   dynobj.Array
	Map     dynobj.Dict
)

const (
	binNilV1 byte = iota
	binTrueV1
	binFalseV1
	binIntV1
	binUintV1
	binFloatV1
	binDecimalV1
	binStringV1
	binBytesV1
	binArrayV1
	binMapV1
)

// MaxLength is the largest length prefix DecodeObject accepts.
const MaxLength = 64 << 20

var (
	// ErrUnsupported is returned for values without binary encoding, such
	// as functions and dynamic objects.
	ErrUnsupported = errors.New("encoder: unsupported value type")
	// ErrTooLarge is returned for length prefixes above MaxLength.
	ErrTooLarge = errors.New("encoder: length out of range")

	errVarintTooSmall = errors.New("read varint error: buf too small")
	errVarintOverflow = errors.New("read varint error: value larger than 64 bits (overflow)")
	errBufTooSmall    = errors.New("read error: buf too small")
)

// Marshal returns the encoding of o.
func Marshal(o dynobj.Object) ([]byte, error) {
	m := marshaler(o)
	if m == nil {
		return nil, unsupported(o)
	}
	return m.MarshalBinary()
}

// Unmarshal decodes a single value from data.
func Unmarshal(data []byte) (dynobj.Object, error) {
	rd := bytes.NewReader(data)
	o, err := DecodeObject(rd)
	if err != nil {
		return nil, err
	}
	if rd.Len() > 0 {
		return nil, errors.New("decode error: " + strconv.Itoa(rd.Len()) + " trailing bytes")
	}
	return o, nil
}

// EncodeObject writes the encoding of o to w.
func EncodeObject(w io.Writer, o dynobj.Object) error {
	data, err := Marshal(o)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// DecodeObject decodes and returns Object from a io.Reader which is encoded
// with MarshalBinary.
func DecodeObject(r io.Reader) (dynobj.Object, error) {
	btype, err := readByteFrom(r)
	if err != nil {
		return nil, err
	}

	switch btype {
	case binNilV1:
		return dynobj.Nil, nil
	case binTrueV1:
		return dynobj.True, nil
	case binFalseV1:
		return dynobj.False, nil
	case binIntV1, binUintV1, binFloatV1:
		size, err := readByteFrom(r)
		if err != nil {
			return nil, err
		}
		buf := make([]byte, 2+int(size))
		buf[0] = btype
		buf[1] = size
		if _, err = io.ReadFull(r, buf[2:]); err != nil {
			return nil, err
		}

		switch btype {
		case binIntV1:
			var v Int
			err = v.UnmarshalBinary(buf)
			return dynobj.Int(v), err
		case binUintV1:
			var v Uint
			err = v.UnmarshalBinary(buf)
			return dynobj.Uint(v), err
		default:
			var v Float
			err = v.UnmarshalBinary(buf)
			return dynobj.Float(v), err
		}
	case binDecimalV1:
		head := make([]byte, 2)
		if _, err = io.ReadFull(r, head); err != nil {
			return nil, errBufTooSmall
		}
		size := int(uint16(head[1]) | uint16(head[0])<<8)
		if size == 0 {
			return dynobj.DecimalZero, nil
		}

		buf := make([]byte, 3+size)
		buf[0] = btype
		copy(buf[1:3], head)
		if _, err = io.ReadFull(r, buf[3:]); err != nil {
			return nil, err
		}
		var v Decimal
		if err = v.UnmarshalBinary(buf); err != nil {
			return nil, err
		}
		return dynobj.Decimal(v), nil
	case binStringV1, binBytesV1, binArrayV1, binMapV1:
		var vi varintConv
		value, readBytes, err := vi.readBytes(r)
		if err != nil {
			return nil, err
		}
		if value < 0 {
			return nil, errors.New("decode error: negative length")
		}
		if value > MaxLength {
			return nil, fmt.Errorf("%w: %d", ErrTooLarge, value)
		}
		if l, ok := r.(interface{ Len() int }); ok && value > int64(l.Len()) {
			return nil, io.ErrUnexpectedEOF
		}

		n := 1 + len(readBytes)
		buf := make([]byte, n+int(value))
		buf[0] = btype
		copy(buf[1:], readBytes)
		if _, err = io.ReadFull(r, buf[n:]); err != nil {
			return nil, err
		}

		switch btype {
		case binStringV1:
			var v String
			err = v.UnmarshalBinary(buf)
			return dynobj.Str(v), err
		case binBytesV1:
			v := Bytes{}
			err = v.UnmarshalBinary(buf)
			return dynobj.Bytes(v), err
		case binArrayV1:
			v := Array{}
			err = v.UnmarshalBinary(buf)
			return dynobj.Array(v), err
		default:
			v := Map{}
			err = v.UnmarshalBinary(buf)
			return dynobj.Dict(v), err
		}
	}
	return nil, errors.New("decode error: unknown encoding type:" + strconv.Itoa(int(btype)))
}

func marshaler(o dynobj.Object) encoding.BinaryMarshaler {
	switch v := o.(type) {
	case nil:
		return (*NilType)(nil)
	case *dynobj.NilType:
		return (*NilType)(v)
	case dynobj.Bool:
		return Bool(v)
	case dynobj.Int:
		return Int(v)
	case dynobj.Uint:
		return Uint(v)
	case dynobj.Float:
		return Float(v)
	case dynobj.Decimal:
		return Decimal(v)
	case dynobj.Str:
		return String(v)
	case dynobj.Bytes:
		return Bytes(v)
	case dynobj.Array:
		return Array(v)
	case dynobj.Dict:
		return Map(v)
	default:
		return nil
	}
}

func unsupported(o dynobj.Object) error {
	return fmt.Errorf("%w: %s", ErrUnsupported, o.Type().Name())
}

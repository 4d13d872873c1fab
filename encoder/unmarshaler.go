// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package encoder

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"

	"github.com/gad-lang/dynobj"
	"github.com/shopspring/decimal"
)

// UnmarshalBinary implements encoding.BinaryUnmarshaler
func (o *NilType) UnmarshalBinary(data []byte) error {
	if len(data) < 1 || data[0] != binNilV1 {
		return errors.New("invalid dynobj.Nil data")
	}
	return nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler
func (o *Bool) UnmarshalBinary(data []byte) error {
	if len(data) < 1 {
		return errors.New("invalid dynobj.Bool data")
	}

	switch data[0] {
	case binTrueV1:
		*o = true
	case binFalseV1:
		*o = false
	default:
		return errors.New("invalid dynobj.Bool data")
	}
	return nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler
func (o *Int) UnmarshalBinary(data []byte) error {
	payload, err := scalarPayload(data, binIntV1, "dynobj.Int")
	if err != nil || payload == nil {
		return err
	}

	v, n := binary.Varint(payload)
	if err = varintErr(n, "dynobj.Int"); err != nil {
		return err
	}
	*o = Int(v)
	return nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler
func (o *Uint) UnmarshalBinary(data []byte) error {
	payload, err := scalarPayload(data, binUintV1, "dynobj.Uint")
	if err != nil || payload == nil {
		return err
	}

	v, n := binary.Uvarint(payload)
	if err = varintErr(n, "dynobj.Uint"); err != nil {
		return err
	}
	*o = Uint(v)
	return nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler
func (o *Float) UnmarshalBinary(data []byte) error {
	payload, err := scalarPayload(data, binFloatV1, "dynobj.Float")
	if err != nil || payload == nil {
		return err
	}

	v, n := binary.Uvarint(payload)
	if err = varintErr(n, "dynobj.Float"); err != nil {
		return err
	}
	*o = Float(math.Float64frombits(v))
	return nil
}

// scalarPayload returns the varint payload of a scalar, nil for zero
// values.
func scalarPayload(data []byte, tag byte, name string) ([]byte, error) {
	if len(data) < 2 || data[0] != tag {
		return nil, errors.New("invalid " + name + " data")
	}

	size := int(data[1])
	if size == 0 {
		return nil, nil
	}
	if len(data) < 2+size {
		return nil, errors.New("invalid " + name + " data size")
	}
	return data[2 : 2+size], nil
}

func varintErr(n int, name string) error {
	if n < 1 {
		if n == 0 {
			return errors.New(name + " data buffer too small")
		}
		return errors.New(name + " value larger than 64 bits")
	}
	return nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler
func (o *Decimal) UnmarshalBinary(data []byte) error {
	if len(data) < 3 || data[0] != binDecimalV1 {
		return errors.New("invalid dynobj.Decimal data")
	}
	size := int(uint16(data[2]) | uint16(data[1])<<8)
	if size == 0 {
		*o = Decimal(dynobj.DecimalZero)
		return nil
	}

	if len(data) < 3+size {
		return errors.New("invalid dynobj.Decimal data size")
	}

	var dec decimal.Decimal
	if err := dec.UnmarshalBinary(data[3 : 3+size]); err != nil {
		return err
	}

	*o = Decimal(dec)
	return nil
}

// sizedPayload returns the content of a length prefixed value.
func sizedPayload(data []byte, tag byte, name string) ([]byte, error) {
	if len(data) < 2 || data[0] != tag {
		return nil, errors.New("invalid " + name + " data")
	}

	size, offset, err := toVarint(data[1:])
	if err != nil {
		return nil, err
	}
	if size <= 0 {
		return nil, nil
	}

	ub := 1 + offset + int(size)
	if len(data) < ub {
		return nil, errors.New("invalid " + name + " data size")
	}
	return data[1+offset : ub], nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler
func (o *String) UnmarshalBinary(data []byte) error {
	payload, err := sizedPayload(data, binStringV1, "dynobj.Str")
	if err != nil {
		return err
	}
	*o = String(payload)
	return nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler
func (o *Bytes) UnmarshalBinary(data []byte) error {
	payload, err := sizedPayload(data, binBytesV1, "dynobj.Bytes")
	if err != nil {
		return err
	}
	*o = append((*o)[:0], payload...)
	return nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler
func (o *Array) UnmarshalBinary(data []byte) error {
	payload, err := sizedPayload(data, binArrayV1, "dynobj.Array")
	if err != nil || payload == nil {
		return err
	}

	rd := bytes.NewReader(payload)
	vi := varintConv{reader: rd}
	length, err := vi.read()
	if err != nil {
		return err
	}
	if length < 0 || length > int64(len(payload)) {
		return errors.New("invalid dynobj.Array length")
	}

	arr := make(Array, 0, int(length))
	for rd.Len() > 0 {
		v, err := DecodeObject(rd)
		if err != nil {
			return err
		}
		arr = append(arr, v)
	}
	if int64(len(arr)) != length {
		return errors.New("invalid dynobj.Array length")
	}

	*o = arr
	return nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler
func (o *Map) UnmarshalBinary(data []byte) error {
	payload, err := sizedPayload(data, binMapV1, "dynobj.Dict")
	if err != nil {
		return err
	}
	if *o == nil {
		*o = Map{}
	}
	if payload == nil {
		return nil
	}

	rd := bytes.NewReader(payload)
	vi := varintConv{reader: rd}
	m := *o

	for rd.Len() > 0 {
		klen, err := vi.read()
		if err != nil {
			return err
		}
		if klen < 0 || klen > int64(rd.Len()) {
			return errors.New("invalid dynobj.Dict key size")
		}

		key := make([]byte, klen)
		if _, err = io.ReadFull(rd, key); err != nil {
			return err
		}

		v, err := DecodeObject(rd)
		if err != nil {
			return err
		}
		m[string(key)] = v
	}
	return nil
}

func readByteFrom(r io.Reader) (byte, error) {
	if br, ok := r.(io.ByteReader); ok {
		return br.ReadByte()
	}

	var one [1]byte
	n, err := r.Read(one[:])
	if n == 1 {
		return one[0], nil
	}
	if err == nil {
		err = errors.New("byte read error")
	}
	return 0, err
}

type varintConv struct {
	buf    [1 + binary.MaxVarintLen64]byte
	reader *bytes.Reader
}

func (vi *varintConv) toBytes(v int64) []byte {
	n := binary.PutVarint(vi.buf[1:], v)
	vi.buf[0] = byte(n)
	return vi.buf[:n+1]
}

func (vi *varintConv) read() (value int64, err error) {
	value, _, err = vi.readBytes(vi.reader)
	return
}

// readBytes reads a size prefixed varint from r and returns its value and
// the raw bytes read.
func (vi *varintConv) readBytes(r io.Reader) (value int64, readBytes []byte, err error) {
	var n byte
	if n, err = readByteFrom(r); err != nil {
		return
	}

	if 1+int(n) > len(vi.buf) {
		return 0, nil, errVarintOverflow
	}

	readBytes = vi.buf[:1+n]
	readBytes[0] = n
	if n == 0 {
		return
	}

	if _, err = io.ReadFull(r, readBytes[1:]); err != nil {
		return
	}

	var offset int
	value, offset = binary.Varint(readBytes[1:])
	if offset < 1 {
		if offset == 0 {
			err = errVarintTooSmall
			return
		}
		err = errVarintOverflow
	}
	return
}

// toVarint decodes a size prefixed varint from data.
func toVarint(data []byte) (value int64, offset int, err error) {
	if len(data) == 0 {
		return 0, 0, errVarintTooSmall
	}

	size := int(data[0])
	if size == 0 {
		return 0, 1, nil
	}

	if len(data) < 1+size {
		return 0, 0, errVarintTooSmall
	}

	value, offset = binary.Varint(data[1 : 1+size])
	if offset < 1 {
		if offset == 0 {
			return 0, 0, errVarintTooSmall
		}
		return 0, 0, errVarintOverflow
	}
	return value, offset + 1, nil
}

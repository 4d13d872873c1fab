// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package encoder

import (
	"bytes"
	"encoding/binary"
	"math"
	"sort"

	"github.com/shopspring/decimal"
)

// MarshalBinary implements encoding.BinaryMarshaler
func (o *NilType) MarshalBinary() ([]byte, error) {
	return []byte{binNilV1}, nil
}

// MarshalBinary implements encoding.BinaryMarshaler
func (o Bool) MarshalBinary() ([]byte, error) {
	if o {
		return []byte{binTrueV1}, nil
	}
	return []byte{binFalseV1}, nil
}

// MarshalBinary implements encoding.BinaryMarshaler
func (o Int) MarshalBinary() ([]byte, error) {
	return putScalar(binIntV1, func(b []byte) int {
		return binary.PutVarint(b, int64(o))
	}, o == 0), nil
}

// MarshalBinary implements encoding.BinaryMarshaler
func (o Uint) MarshalBinary() ([]byte, error) {
	return putScalar(binUintV1, func(b []byte) int {
		return binary.PutUvarint(b, uint64(o))
	}, o == 0), nil
}

// MarshalBinary implements encoding.BinaryMarshaler
func (o Float) MarshalBinary() ([]byte, error) {
	bits := math.Float64bits(float64(o))
	return putScalar(binFloatV1, func(b []byte) int {
		return binary.PutUvarint(b, bits)
	}, bits == 0), nil
}

// putScalar writes tag, payload size and the varint payload. Zero values
// have an empty payload.
func putScalar(tag byte, put func([]byte) int, zero bool) []byte {
	buf := make([]byte, 2+binary.MaxVarintLen64)
	buf[0] = tag
	if zero {
		return buf[:2]
	}
	n := put(buf[2:])
	buf[1] = byte(n)
	return buf[:2+n]
}

// MarshalBinary implements encoding.BinaryMarshaler
func (o Decimal) MarshalBinary() ([]byte, error) {
	dec := decimal.Decimal(o)
	if dec.IsZero() {
		return []byte{binDecimalV1, 0, 0}, nil
	}
	b, err := dec.MarshalBinary()
	if err != nil {
		return nil, err
	}

	l := len(b)
	buf := make([]byte, 3+l)
	buf[0] = binDecimalV1
	buf[1] = byte(l >> 8)
	buf[2] = byte(l)
	copy(buf[3:], b)
	return buf, nil
}

// MarshalBinary implements encoding.BinaryMarshaler
func (o String) MarshalBinary() ([]byte, error) {
	return putSized(binStringV1, []byte(o)), nil
}

// MarshalBinary implements encoding.BinaryMarshaler
func (o Bytes) MarshalBinary() ([]byte, error) {
	return putSized(binBytesV1, o), nil
}

func putSized(tag byte, data []byte) []byte {
	var buf bytes.Buffer
	buf.WriteByte(tag)
	if len(data) == 0 {
		buf.WriteByte(0)
		return buf.Bytes()
	}

	var vi varintConv
	buf.Write(vi.toBytes(int64(len(data))))
	buf.Write(data)
	return buf.Bytes()
}

// MarshalBinary implements encoding.BinaryMarshaler
func (o Array) MarshalBinary() ([]byte, error) {
	if len(o) == 0 {
		return []byte{binArrayV1, 0}, nil
	}

	var body bytes.Buffer
	var vi varintConv
	body.Write(vi.toBytes(int64(len(o))))

	for _, v := range o {
		d, err := Marshal(v)
		if err != nil {
			return nil, err
		}
		body.Write(d)
	}
	return putSized(binArrayV1, body.Bytes()), nil
}

// MarshalBinary implements encoding.BinaryMarshaler. Keys are written in
// sorted order so equal dicts have equal encodings.
func (o Map) MarshalBinary() ([]byte, error) {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var body bytes.Buffer
	var vi varintConv
	for _, k := range keys {
		body.Write(vi.toBytes(int64(len(k))))
		body.WriteString(k)

		d, err := Marshal(o[k])
		if err != nil {
			return nil, err
		}
		body.Write(d)
	}
	return putSized(binMapV1, body.Bytes()), nil
}

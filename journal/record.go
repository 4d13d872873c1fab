// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package journal

import (
	"fmt"
	"time"

	"github.com/gad-lang/dynobj"
)

// Record is one journaled attribute change.
type Record struct {
	Op        dynobj.AttributeOp
	Type      string
	Object    string
	Attribute string
	// Value is Nil for restores.
	Value   dynobj.Object
	Version uint64
	Time    time.Time
}

// RecordOf converts an attribute event.
func RecordOf(ev *dynobj.AttributeEvent) Record {
	r := Record{
		Op:        ev.Op,
		Type:      ev.Object.DynamicType().Name(),
		Object:    ev.Object.Name(),
		Attribute: ev.Name,
		Value:     ev.Value,
		Version:   ev.Version,
		Time:      ev.Time,
	}
	if r.Value == nil {
		r.Value = dynobj.Nil
	}
	return r
}

// Array returns the wire form of r:
// [op, type, object, attribute, value, version, unix nanos].
func (r Record) Array() dynobj.Array {
	v := r.Value
	if v == nil {
		v = dynobj.Nil
	}
	return dynobj.Array{
		dynobj.Str(r.Op.String()),
		dynobj.Str(r.Type),
		dynobj.Str(r.Object),
		dynobj.Str(r.Attribute),
		v,
		dynobj.Uint(r.Version),
		dynobj.Int(r.Time.UnixNano()),
	}
}

// RecordFromArray is the inverse of Record.Array.
func RecordFromArray(a dynobj.Array) (r Record, err error) {
	if len(a) != 7 {
		return r, fmt.Errorf("%w: want 7 fields, got %d", ErrCorrupt, len(a))
	}

	var strs [4]string
	for i := range strs {
		s, ok := a[i].(dynobj.Str)
		if !ok {
			return r, fmt.Errorf("%w: field %d is %s", ErrCorrupt, i, a[i].Type().Name())
		}
		strs[i] = string(s)
	}

	op, ok := dynobj.ParseAttributeOp(strs[0])
	if !ok {
		return r, fmt.Errorf("%w: unknown operation %q", ErrCorrupt, strs[0])
	}
	version, ok := a[5].(dynobj.Uint)
	if !ok {
		return r, fmt.Errorf("%w: version is %s", ErrCorrupt, a[5].Type().Name())
	}
	nanos, ok := a[6].(dynobj.Int)
	if !ok {
		return r, fmt.Errorf("%w: time is %s", ErrCorrupt, a[6].Type().Name())
	}

	return Record{
		Op:        op,
		Type:      strs[1],
		Object:    strs[2],
		Attribute: strs[3],
		Value:     a[4],
		Version:   uint64(version),
		Time:      time.Unix(0, int64(nanos)),
	}, nil
}

func (r Record) String() string {
	s := r.Op.String() + " " + r.Type + " " + r.Object + "." + r.Attribute
	if r.Op == dynobj.OpModify {
		s += " = " + dynobj.ToCode(r.Value)
	}
	return s
}

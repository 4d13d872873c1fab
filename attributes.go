// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package dynobj

import "strings"

// AttributeTable maps unique attribute names to values and remembers the
// order in which names were first set. It is not safe for concurrent use;
// DynamicObject guards its tables with its own lock.
type AttributeTable struct {
	values map[string]Object
	keys   []string
}

// NewAttributeTable creates a table holding a copy of d, in sorted key order.
func NewAttributeTable(d Dict) *AttributeTable {
	t := &AttributeTable{values: make(map[string]Object, len(d))}
	for _, k := range d.SortedKeys() {
		t.Set(k, d[k])
	}
	return t
}

// Get returns the value of name and whether it is present.
func (t *AttributeTable) Get(name string) (v Object, ok bool) {
	v, ok = t.values[name]
	return
}

// Has reports whether name is present.
func (t *AttributeTable) Has(name string) bool {
	_, ok := t.values[name]
	return ok
}

// Set sets name to value. An existing name keeps its position.
func (t *AttributeTable) Set(name string, value Object) {
	if t.values == nil {
		t.values = map[string]Object{}
	}
	if _, ok := t.values[name]; !ok {
		t.keys = append(t.keys, name)
	}
	t.values[name] = value
}

// Delete removes name and reports whether it was present.
func (t *AttributeTable) Delete(name string) bool {
	if _, ok := t.values[name]; !ok {
		return false
	}
	delete(t.values, name)
	for i, k := range t.keys {
		if k == name {
			t.keys = append(t.keys[:i], t.keys[i+1:]...)
			break
		}
	}
	return true
}

// Len returns the number of attributes.
func (t *AttributeTable) Len() int {
	return len(t.keys)
}

// Keys returns the attribute names in insertion order.
func (t *AttributeTable) Keys() []string {
	keys := make([]string, len(t.keys))
	copy(keys, t.keys)
	return keys
}

// Dict returns a copy of the table.
func (t *AttributeTable) Dict() Dict {
	d := make(Dict, len(t.keys))
	for k, v := range t.values {
		d[k] = v
	}
	return d
}

// Walk calls cb for each attribute in insertion order until cb returns false.
func (t *AttributeTable) Walk(cb func(name string, value Object) bool) {
	for _, k := range t.keys {
		if !cb(k, t.values[k]) {
			return
		}
	}
}

func (t *AttributeTable) String() string {
	var sb strings.Builder
	sb.WriteString("{")
	for i, k := range t.keys {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(k)
		sb.WriteString(": ")
		sb.WriteString(ToCode(t.values[k]))
	}
	sb.WriteString("}")
	return sb.String()
}

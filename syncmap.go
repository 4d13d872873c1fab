// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package dynobj

import "sync"

// SyncMap is a map guarded by a read/write mutex. The zero value is ready
// to use.
type SyncMap[K comparable, V any] struct {
	mu    sync.RWMutex
	value map[K]V
}

// Get returns the value of k.
func (m *SyncMap[K, V]) Get(k K) (v V, ok bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok = m.value[k]
	return
}

// Set sets k to v.
func (m *SyncMap[K, V]) Set(k K, v V) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.value == nil {
		m.value = map[K]V{}
	}
	m.value[k] = v
}

// SetIfAbsent sets k to v unless k is present and reports whether it did.
func (m *SyncMap[K, V]) SetIfAbsent(k K, v V) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.value[k]; ok {
		return false
	}
	if m.value == nil {
		m.value = map[K]V{}
	}
	m.value[k] = v
	return true
}

// Delete removes k and returns its former value.
func (m *SyncMap[K, V]) Delete(k K) (v V, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok = m.value[k]; ok {
		delete(m.value, k)
	}
	return
}

// Len returns the number of entries.
func (m *SyncMap[K, V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.value)
}

// Values returns the values in unspecified order.
func (m *SyncMap[K, V]) Values() []V {
	m.mu.RLock()
	defer m.mu.RUnlock()
	values := make([]V, 0, len(m.value))
	for _, v := range m.value {
		values = append(values, v)
	}
	return values
}

// Range calls cb for each entry of a snapshot of m until cb returns false.
// cb may modify m.
func (m *SyncMap[K, V]) Range(cb func(k K, v V) bool) {
	m.mu.RLock()
	snapshot := make(map[K]V, len(m.value))
	for k, v := range m.value {
		snapshot[k] = v
	}
	m.mu.RUnlock()

	for k, v := range snapshot {
		if !cb(k, v) {
			return
		}
	}
}

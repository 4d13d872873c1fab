// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package dynobj

import (
	"sync"
	"time"
)

// AttributeOp is the kind of an attribute modification.
type AttributeOp uint8

const (
	OpModify AttributeOp = iota + 1
	OpRestore
)

func (op AttributeOp) String() string {
	switch op {
	case OpModify:
		return "modify"
	case OpRestore:
		return "restore"
	}
	return "unknown"
}

// ParseAttributeOp is the inverse of AttributeOp.String.
func ParseAttributeOp(s string) (AttributeOp, bool) {
	switch s {
	case "modify":
		return OpModify, true
	case "restore":
		return OpRestore, true
	}
	return 0, false
}

// AttributeEvent is emitted once for every successful ModifyAttribute and
// RestoreAttribute call.
type AttributeEvent struct {
	Op     AttributeOp
	Object *DynamicObject
	Name   string
	// Value is the new override of a modify event. It is nil for restores.
	Value Object
	// Changed is false for a restore which found no override.
	Changed bool
	// Version is the object version after the operation. Versions of one
	// object increase strictly with every event.
	Version uint64
	Time    time.Time
}

// Signal delivers attribute events to subscribers. Subscribers are called
// synchronously, in subscription order, with no object lock held.
type Signal struct {
	mu     sync.RWMutex
	nextID int
	subs   []subscription
}

type subscription struct {
	id int
	fn func(*AttributeEvent)
}

// NewSignal creates a Signal without subscribers.
func NewSignal() *Signal {
	return &Signal{}
}

// Subscribe registers fn and returns a function removing it.
func (s *Signal) Subscribe(fn func(*AttributeEvent)) (cancel func()) {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscription{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, sub := range s.subs {
				if sub.id == id {
					s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// Len returns the number of subscribers.
func (s *Signal) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}

// Emit delivers ev to every subscriber.
func (s *Signal) Emit(ev *AttributeEvent) {
	if s == nil {
		return
	}
	s.mu.RLock()
	subs := s.subs
	s.mu.RUnlock()

	for _, sub := range subs {
		sub.fn(ev)
	}
}

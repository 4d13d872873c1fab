// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package dynobj

import (
	"context"
	"strconv"
)

// MaxFrames is the maximum depth of a FrameStack.
const MaxFrames = 1024

// Frame is the activation record of one self bound call.
type Frame struct {
	// Self is the bound target of the call. It may be nil.
	Self Object
	// Locals holds call local bindings.
	Locals Dict
	// Sandboxed frames refuse to run state mutating functions.
	Sandboxed bool

	parent *Frame
	depth  int
}

// Parent returns the enclosing frame or nil.
func (f *Frame) Parent() *Frame {
	return f.parent
}

// Depth returns the 1 based position of f in its stack.
func (f *Frame) Depth() int {
	return f.depth
}

// Lookup returns the local binding of name, searching enclosing frames.
func (f *Frame) Lookup(name string) (Object, bool) {
	for ; f != nil; f = f.parent {
		if v, ok := f.Locals[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// FrameStack is the stack of frames of a single execution path. A FrameStack
// must not be shared between goroutines; every goroutine running calls owns
// its own stack.
type FrameStack struct {
	top *Frame
}

// NewFrameStack creates an empty stack.
func NewFrameStack() *FrameStack {
	return &FrameStack{}
}

// Current returns the top frame or ErrNoActiveFrame.
func (s *FrameStack) Current() (*Frame, error) {
	if s == nil || s.top == nil {
		return nil, ErrNoActiveFrame
	}
	return s.top, nil
}

// Depth returns the number of pushed frames.
func (s *FrameStack) Depth() int {
	if s == nil || s.top == nil {
		return 0
	}
	return s.top.depth
}

// Sandboxed reports whether the top frame is sandboxed.
func (s *FrameStack) Sandboxed() bool {
	return s != nil && s.top != nil && s.top.Sandboxed
}

// Push binds self in a new frame on top of the stack.
func (s *FrameStack) Push(self Object, locals Dict) (*Frame, error) {
	f := &Frame{Self: self, Locals: locals, parent: s.top, depth: 1}
	if s.top != nil {
		if s.top.depth >= MaxFrames {
			return nil, ErrFrameStackOverflow.NewError("max depth " + strconv.Itoa(MaxFrames))
		}
		f.depth = s.top.depth + 1
		f.Sandboxed = s.top.Sandboxed
	}
	s.top = f
	return f, nil
}

// PushSandboxed pushes a frame refusing state mutating functions. Frames
// pushed above it inherit the restriction.
func (s *FrameStack) PushSandboxed(self Object, locals Dict) (*Frame, error) {
	f, err := s.Push(self, locals)
	if err == nil {
		f.Sandboxed = true
	}
	return f, err
}

// Pop removes f, which must be the top frame.
func (s *FrameStack) Pop(f *Frame) {
	if s.top != f || f == nil {
		panic("dynobj: frame stack corrupted: popped frame is not the top frame")
	}
	s.top = f.parent
	f.parent = nil
}

// Invoke calls callee with self bound in a new frame. The frame is popped on
// every exit path, including panics raised by callee.
func Invoke(c Call, self Object, callee CallerObject) (Object, error) {
	if c.Frames == nil {
		c.Frames = NewFrameStack()
	}
	if fn, ok := callee.(*Function); ok && fn.Mutates && c.Frames.Sandboxed() {
		return nil, ErrSideEffect.NewError("function " + strconv.Quote(fn.Name) + " changes state")
	}
	f, err := c.Frames.Push(self, nil)
	if err != nil {
		return nil, err
	}
	defer c.Frames.Pop(f)
	return callee.Call(c)
}

type framesKey struct{}

// ContextWithFrames returns a copy of ctx carrying the frame stack of the
// execution path.
func ContextWithFrames(ctx context.Context, s *FrameStack) context.Context {
	return context.WithValue(ctx, framesKey{}, s)
}

// FramesFromContext returns the frame stack stored in ctx. A context without
// a stack yields nil, on which Current reports ErrNoActiveFrame.
func FramesFromContext(ctx context.Context) *FrameStack {
	s, _ := ctx.Value(framesKey{}).(*FrameStack)
	return s
}

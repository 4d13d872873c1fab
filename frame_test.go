package dynobj_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	. "github.com/gad-lang/dynobj"
)

func TestFrameStackNesting(t *testing.T) {
	s := NewFrameStack()
	_, err := s.Current()
	require.ErrorIs(t, err, ErrNoActiveFrame)
	require.Zero(t, s.Depth())

	a, b := Str("a"), Str("b")
	fa, err := s.Push(a, Dict{"x": Int(1)})
	require.NoError(t, err)
	fb, err := s.Push(b, Dict{"y": Int(2)})
	require.NoError(t, err)

	cur, err := s.Current()
	require.NoError(t, err)
	require.Same(t, fb, cur)
	require.Equal(t, b, cur.Self)
	require.Equal(t, 2, s.Depth())
	require.Same(t, fa, fb.Parent())

	v, ok := fb.Lookup("x")
	require.True(t, ok)
	require.Equal(t, Int(1), v)
	_, ok = fa.Lookup("y")
	require.False(t, ok)

	require.Panics(t, func() { s.Pop(fa) })

	s.Pop(fb)
	cur, err = s.Current()
	require.NoError(t, err)
	require.Equal(t, a, cur.Self)
	s.Pop(fa)
	_, err = s.Current()
	require.ErrorIs(t, err, ErrNoActiveFrame)
}

func TestFrameStackOverflow(t *testing.T) {
	s := NewFrameStack()
	frames := make([]*Frame, 0, MaxFrames)
	for i := 0; i < MaxFrames; i++ {
		f, err := s.Push(Nil, nil)
		require.NoError(t, err)
		frames = append(frames, f)
	}
	_, err := s.Push(Nil, nil)
	require.ErrorIs(t, err, ErrFrameStackOverflow)
	require.Equal(t, MaxFrames, s.Depth())

	for i := len(frames) - 1; i >= 0; i-- {
		s.Pop(frames[i])
	}
	require.Zero(t, s.Depth())
}

func TestInvokeBindsSelf(t *testing.T) {
	s := NewFrameStack()
	self := Str("me")
	var depth int
	fn := &Function{Name: "f", Value: func(c Call) (Object, error) {
		depth = c.Frames.Depth()
		return c.Self()
	}}

	ret, err := Invoke(NewCall(s), self, fn)
	require.NoError(t, err)
	require.Equal(t, self, ret)
	require.Equal(t, 1, depth)
	require.Zero(t, s.Depth())

	// a nil stack gets a fresh one
	ret, err = Invoke(Call{}, self, fn)
	require.NoError(t, err)
	require.Equal(t, self, ret)
}

func TestInvokePopsOnErrorAndPanic(t *testing.T) {
	s := NewFrameStack()
	boom := errors.New("boom")

	_, err := Invoke(NewCall(s), Nil, &Function{Value: func(Call) (Object, error) {
		return nil, boom
	}})
	require.ErrorIs(t, err, boom)
	require.Zero(t, s.Depth())

	require.Panics(t, func() {
		_, _ = Invoke(NewCall(s), Nil, &Function{Value: func(Call) (Object, error) {
			panic("boom")
		}})
	})
	require.Zero(t, s.Depth())
}

func TestInvokeNested(t *testing.T) {
	s := NewFrameStack()
	outer, inner := Str("outer"), Str("inner")
	var seen []Object

	innerFn := &Function{Value: func(c Call) (Object, error) {
		self, err := c.Self()
		seen = append(seen, self)
		return self, err
	}}
	outerFn := &Function{Value: func(c Call) (Object, error) {
		if _, err := Invoke(c, inner, innerFn); err != nil {
			return nil, err
		}
		self, err := c.Self()
		seen = append(seen, self)
		return self, err
	}}

	ret, err := Invoke(NewCall(s), outer, outerFn)
	require.NoError(t, err)
	require.Equal(t, outer, ret)
	require.Equal(t, []Object{inner, outer}, seen)
	require.Zero(t, s.Depth())
}

func TestSandboxedFrames(t *testing.T) {
	s := NewFrameStack()
	f, err := s.PushSandboxed(nil, nil)
	require.NoError(t, err)
	require.True(t, s.Sandboxed())

	var ran bool
	mut := &Function{Name: "mut", Mutates: true, Value: func(Call) (Object, error) {
		ran = true
		return Nil, nil
	}}
	_, err = Invoke(NewCall(s), Nil, mut)
	require.ErrorIs(t, err, ErrSideEffect)
	require.False(t, ran)

	// nested frames inherit the restriction
	pure := &Function{Name: "pure", Value: func(c Call) (Object, error) {
		return Invoke(c, Nil, mut)
	}}
	_, err = Invoke(NewCall(s), Nil, pure)
	require.ErrorIs(t, err, ErrSideEffect)
	require.Equal(t, 1, s.Depth())

	s.Pop(f)
	require.False(t, s.Sandboxed())
	_, err = Invoke(NewCall(s), Nil, mut)
	require.NoError(t, err)
	require.True(t, ran)
}

func TestFrameStacksPerGoroutine(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s := NewFrameStack()
			self := Int(i)
			ret, err := Invoke(NewCall(s), self, &Function{Value: func(c Call) (Object, error) {
				return c.Self()
			}})
			if err != nil || !self.Equal(ret) {
				t.Errorf("goroutine %d: got %v, %v", i, ret, err)
			}
		}(i)
	}
	wg.Wait()
}

func TestFramesContext(t *testing.T) {
	require.Nil(t, FramesFromContext(context.Background()))
	_, err := FramesFromContext(context.Background()).Current()
	require.ErrorIs(t, err, ErrNoActiveFrame)

	s := NewFrameStack()
	ctx := ContextWithFrames(context.Background(), s)
	require.Same(t, s, FramesFromContext(ctx))
}

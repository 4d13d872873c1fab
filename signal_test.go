package dynobj_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	. "github.com/gad-lang/dynobj"
)

func TestSignalSubscribe(t *testing.T) {
	s := NewSignal()
	var got []string
	c1 := s.Subscribe(func(ev *AttributeEvent) { got = append(got, "1:"+ev.Name) })
	c2 := s.Subscribe(func(ev *AttributeEvent) { got = append(got, "2:"+ev.Name) })
	require.Equal(t, 2, s.Len())

	s.Emit(&AttributeEvent{Name: "a"})
	require.Equal(t, []string{"1:a", "2:a"}, got)

	c1()
	c1()
	require.Equal(t, 1, s.Len())
	s.Emit(&AttributeEvent{Name: "b"})
	require.Equal(t, []string{"1:a", "2:a", "2:b"}, got)

	c2()
	require.Zero(t, s.Len())

	var nilSignal *Signal
	require.NotPanics(t, func() { nilSignal.Emit(&AttributeEvent{}) })
}

func TestSignalCancelDuringEmit(t *testing.T) {
	s := NewSignal()
	var calls int
	var cancel func()
	cancel = s.Subscribe(func(*AttributeEvent) {
		calls++
		cancel()
	})
	s.Subscribe(func(*AttributeEvent) { calls++ })

	s.Emit(&AttributeEvent{})
	require.Equal(t, 2, calls)
	s.Emit(&AttributeEvent{})
	require.Equal(t, 3, calls)
}

func TestSignalConcurrentEmit(t *testing.T) {
	s := NewSignal()
	var mu sync.Mutex
	count := 0
	s.Subscribe(func(*AttributeEvent) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				s.Emit(&AttributeEvent{})
			}
		}()
	}
	wg.Wait()
	require.Equal(t, 500, count)
}

func TestAttributeOp(t *testing.T) {
	for _, op := range []AttributeOp{OpModify, OpRestore} {
		got, ok := ParseAttributeOp(op.String())
		require.True(t, ok)
		require.Equal(t, op, got)
	}
	_, ok := ParseAttributeOp("delete")
	require.False(t, ok)
	require.Equal(t, "unknown", AttributeOp(0).String())
}

package dynobj_test

import (
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	. "github.com/gad-lang/dynobj"
)

func TestSyncMap(t *testing.T) {
	var m SyncMap[string, int]
	_, ok := m.Get("a")
	require.False(t, ok)

	m.Set("a", 1)
	require.True(t, m.SetIfAbsent("b", 2))
	require.False(t, m.SetIfAbsent("b", 3))
	v, ok := m.Get("b")
	require.True(t, ok)
	require.Equal(t, 2, v)

	values := m.Values()
	sort.Ints(values)
	require.Equal(t, []int{1, 2}, values)

	// Range works on a snapshot and may modify the map
	m.Range(func(k string, _ int) bool {
		m.Delete(k)
		return true
	})
	require.Zero(t, m.Len())

	_, ok = m.Delete("a")
	require.False(t, ok)
}

func TestSyncMapConcurrent(t *testing.T) {
	var m SyncMap[int, int]
	var wg sync.WaitGroup
	var won sync.Map
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for k := 0; k < 100; k++ {
				if m.SetIfAbsent(k, i) {
					if _, dup := won.LoadOrStore(k, i); dup {
						t.Errorf("key %d set twice", k)
					}
				}
			}
		}(i)
	}
	wg.Wait()
	require.Equal(t, 100, m.Len())
}

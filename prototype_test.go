package dynobj_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	. "github.com/gad-lang/dynobj"
)

func nopMethod(name string) *Function {
	return &Function{Name: name, Value: func(Call) (Object, error) { return Str(name), nil }}
}

func TestPrototypeBuiltOnce(t *testing.T) {
	var builds int32
	base := &Type{TypeName: "Base", Methods: func(p *Prototype) {
		atomic.AddInt32(&builds, 1)
		p.MustSet("ping", nopMethod("ping"))
		p.MustSet("name", nopMethod("base.name"))
	}}
	r := NewPrototypeRegistry()
	require.False(t, r.Built(base))

	const n = 32
	protos := make([]*Prototype, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			protos[i] = r.Get(base)
		}(i)
	}
	wg.Wait()

	require.Equal(t, int32(1), atomic.LoadInt32(&builds))
	require.True(t, r.Built(base))
	for _, p := range protos {
		require.Same(t, protos[0], p)
		_, ok := p.Own("ping")
		require.True(t, ok)
		require.Equal(t, 2, p.Len())
	}
	require.Nil(t, r.Get(nil))
}

func TestPrototypeChain(t *testing.T) {
	base := &Type{TypeName: "Base", Methods: func(p *Prototype) {
		p.MustSet("ping", nopMethod("ping"))
		p.MustSet("name", nopMethod("base.name"))
	}}
	sub := &Type{TypeName: "Sub", Super: base, Methods: func(p *Prototype) {
		p.MustSet("name", nopMethod("sub.name"))
	}}
	r := NewPrototypeRegistry()

	sp := r.Get(sub)
	require.True(t, r.Built(base))
	require.Same(t, r.Get(base), sp.Parent())
	require.Same(t, sub, sp.Type())

	fn, ok := sp.Lookup("name")
	require.True(t, ok)
	require.Equal(t, "sub.name", fn.Name)
	fn, ok = sp.Lookup("ping")
	require.True(t, ok)
	require.Equal(t, "ping", fn.Name)
	_, ok = sp.Own("ping")
	require.False(t, ok)
	_, ok = sp.Lookup("fly")
	require.False(t, ok)

	require.Equal(t, []string{"name", "ping"}, sp.Names())
	require.Equal(t, "<prototype:Sub methods=1>", sp.String())
}

func TestPrototypeSealed(t *testing.T) {
	var built *Prototype
	typ := &Type{TypeName: "T", Methods: func(p *Prototype) {
		built = p
		fn := &Function{Value: func(Call) (Object, error) { return Nil, nil }}
		p.MustSet("unnamed", fn)
		require.Equal(t, "unnamed", fn.Name)
	}}
	r := NewPrototypeRegistry()
	p := r.Get(typ)
	require.Same(t, built, p)

	err := p.Set("late", nopMethod("late"))
	require.ErrorIs(t, err, ErrReadOnly)
	require.Panics(t, func() { p.MustSet("late", nopMethod("late")) })
	_, ok := p.Lookup("late")
	require.False(t, ok)
}

func TestPrototypeTeardown(t *testing.T) {
	var builds int
	typ := &Type{TypeName: "T", Methods: func(p *Prototype) {
		builds++
		p.MustSet("ping", nopMethod("ping"))
	}}
	r := NewPrototypeRegistry()
	old := r.Get(typ)

	r.Teardown()
	require.False(t, r.Built(typ))
	// tables handed out before stay usable
	_, ok := old.Lookup("ping")
	require.True(t, ok)

	fresh := r.Get(typ)
	require.NotSame(t, old, fresh)
	require.Equal(t, 2, builds)
}

func TestStandardPrototypes(t *testing.T) {
	hp := THost.Prototype()
	require.Same(t, Prototypes.Get(THost), hp)
	require.Same(t, TCheckable.Prototype(), hp.Parent())
	require.Same(t, TConfigObject.Prototype(), hp.Parent().Parent())

	for _, name := range []string{
		"modify_attribute", "restore_attribute", "get_attribute",
		"is_attribute_modified", "modified_attributes", "name", "type", "describe",
	} {
		_, ok := hp.Lookup(name)
		require.True(t, ok, name)
	}
	fn, _ := hp.Lookup("modify_attribute")
	require.True(t, fn.Mutates)
	fn, _ = hp.Lookup("get_attribute")
	require.False(t, fn.Mutates)
}

func panicError(f func()) (err error) {
	defer func() { err, _ = recover().(error) }()
	f()
	return
}

func TestPrototypeBuilderPanic(t *testing.T) {
	base := &Type{TypeName: "Base", Methods: func(p *Prototype) {
		p.MustSet("ping", nopMethod("ping"))
	}}
	// the supertype prototype is sealed when the builder runs
	broken := &Type{TypeName: "Broken", Super: base, Methods: func(p *Prototype) {
		p.Parent().MustSet("pong", nopMethod("pong"))
	}}
	child := &Type{TypeName: "Child", Super: broken}
	r := NewPrototypeRegistry()

	for i := 0; i < 2; i++ {
		err := panicError(func() { r.Get(broken) })
		require.ErrorIs(t, err, ErrReadOnly)
		require.Contains(t, err.Error(), "prototype of Broken")
	}
	require.False(t, r.Built(broken))

	err := panicError(func() { r.Get(child) })
	require.ErrorIs(t, err, ErrReadOnly)
	require.Contains(t, err.Error(), "prototype of Child: prototype of Broken")

	// a builder panicking with a plain value
	odd := &Type{TypeName: "Odd", Methods: func(*Prototype) { panic("no methods today") }}
	require.PanicsWithError(t, "prototype of Odd: no methods today", func() { r.Get(odd) })

	_, ok := r.Get(base).Lookup("pong")
	require.False(t, ok)
}

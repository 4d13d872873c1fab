package dynobj_test

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	. "github.com/gad-lang/dynobj"
)

func newCatalog(t *testing.T) (*Catalog, *test.Hook) {
	t.Helper()
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	return NewCatalog(log), hook
}

func TestCatalogTypes(t *testing.T) {
	cat, _ := newCatalog(t)

	names := make([]string, 0)
	for _, typ := range cat.Types() {
		names = append(names, typ.Name())
	}
	require.Equal(t, []string{"Checkable", "ConfigObject", "Host", "Service"}, names)

	typ, err := cat.Type("Host")
	require.NoError(t, err)
	require.Same(t, THost, typ)
	_, err = cat.Type("Router")
	require.ErrorIs(t, err, ErrTypeNotFound)

	router := &Type{TypeName: "Router", Super: TCheckable}
	require.NoError(t, cat.RegisterType(router))
	require.ErrorIs(t, cat.RegisterType(&Type{TypeName: "Router"}), ErrObjectExists)
	require.Equal(t, "ConfigObject.Checkable.Router", router.Path())

	_, err = cat.Create(&Type{TypeName: "Router"}, "r1", nil)
	require.ErrorIs(t, err, ErrTypeNotFound)
	_, err = cat.Create(router, "r1", nil)
	require.NoError(t, err)
}

func TestCatalogObjects(t *testing.T) {
	cat, hook := newCatalog(t)

	web, err := cat.Create(THost, "web1", Dict{"address": Str("10.0.0.1")})
	require.NoError(t, err)
	_, err = cat.Create(THost, "db1", nil)
	require.NoError(t, err)
	_, err = cat.Create(TService, "http", Dict{"host_name": Str("web1")})
	require.NoError(t, err)
	// same name, other type
	_, err = cat.Create(TService, "web1", Dict{"host_name": Str("web1")})
	require.NoError(t, err)

	_, err = cat.Create(THost, "web1", nil)
	require.ErrorIs(t, err, ErrObjectExists)
	require.Equal(t, 4, cat.Len())

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	require.Equal(t, "object created", entry.Message)
	require.Equal(t, "catalog", entry.Data["component"])

	got, err := cat.Get(THost, "web1")
	require.NoError(t, err)
	require.Same(t, web, got)
	got, err = cat.Lookup("Host", "web1")
	require.NoError(t, err)
	require.Same(t, web, got)
	_, err = cat.Lookup("Host", "http")
	require.ErrorIs(t, err, ErrObjectNotFound)

	keys := func(objs []*DynamicObject) []string {
		var out []string
		for _, o := range objs {
			out = append(out, o.DynamicType().Name()+" "+o.Name())
		}
		return out
	}
	require.Equal(t, []string{"Host db1", "Host web1", "Service http", "Service web1"}, keys(cat.Objects(nil)))
	require.Equal(t, []string{"Host db1", "Host web1"}, keys(cat.Objects(THost)))
	require.Len(t, cat.Objects(TCheckable), 4)
	require.Len(t, cat.Objects(TConfigObject), 4)

	require.NoError(t, cat.Remove(THost, "db1"))
	require.ErrorIs(t, cat.Remove(THost, "db1"), ErrObjectNotFound)
	require.Equal(t, 3, cat.Len())
}

func TestCatalogSignal(t *testing.T) {
	cat, _ := newCatalog(t)
	web, err := cat.Create(THost, "web1", Dict{"address": Str("10.0.0.1")})
	require.NoError(t, err)

	var events []*AttributeEvent
	cancel := cat.Signal().Subscribe(func(ev *AttributeEvent) {
		events = append(events, ev)
	})
	defer cancel()

	require.NoError(t, web.ModifyAttribute("address", Str("10.0.0.2")))
	require.Len(t, events, 1)
	require.Same(t, web, events[0].Object)

	// removed objects stop publishing
	require.NoError(t, cat.Remove(THost, "web1"))
	require.NoError(t, web.RestoreAttribute("address"))
	require.Len(t, events, 1)
}

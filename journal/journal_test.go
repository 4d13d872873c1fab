package journal_test

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gad-lang/dynobj"
	"github.com/gad-lang/dynobj/journal"
)

func newCatalog(t *testing.T) *dynobj.Catalog {
	t.Helper()
	log, _ := test.NewNullLogger()
	cat := dynobj.NewCatalog(log)
	_, err := cat.Create(dynobj.THost, "web1", dynobj.Dict{"address": dynobj.Str("10.0.0.1")})
	require.NoError(t, err)
	_, err = cat.Create(dynobj.TService, "http", dynobj.Dict{"host_name": dynobj.Str("web1")})
	require.NoError(t, err)
	return cat
}

func openJournal(t *testing.T, path string, maxBytes int64) (*journal.Journal, *test.Hook) {
	t.Helper()
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	j, err := journal.Open(path, journal.Options{MaxBytes: maxBytes, Logger: log})
	require.NoError(t, err)
	return j, hook
}

func TestJournalReplay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "attrs.journal")

	cat := newCatalog(t)
	j, _ := openJournal(t, path, 0)
	require.NoError(t, j.Attach(cat))

	host, err := cat.Lookup("Host", "web1")
	require.NoError(t, err)
	svc, err := cat.Lookup("Service", "http")
	require.NoError(t, err)

	require.NoError(t, host.ModifyAttribute("address", dynobj.Str("10.0.0.2")))
	require.NoError(t, host.ModifyAttribute("check_interval", dynobj.MustDecimalFromString("30.5")))
	require.NoError(t, svc.ModifyAttribute("notes", dynobj.Dict{"owner": dynobj.Str("ops")}))
	require.NoError(t, svc.ModifyAttribute("enable_active_checks", dynobj.False))
	require.NoError(t, svc.RestoreAttribute("enable_active_checks"))
	require.NoError(t, svc.RestoreAttribute("nonexistent"))

	st := j.Stats()
	assert.Equal(t, 5, st.Written)
	assert.Greater(t, st.Size, int64(0))
	require.NoError(t, j.Close())

	cat2 := newCatalog(t)
	j2, _ := openJournal(t, path, 0)
	defer j2.Close()

	recs, err := j2.Records()
	require.NoError(t, err)
	require.Len(t, recs, 5)
	assert.Equal(t, dynobj.OpModify, recs[0].Op)
	assert.Equal(t, "Host", recs[0].Type)
	assert.Equal(t, "web1", recs[0].Object)
	assert.Equal(t, "address", recs[0].Attribute)
	assert.Equal(t, dynobj.OpRestore, recs[4].Op)

	n, err := j2.Replay(cat2)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	host2, err := cat2.Lookup("Host", "web1")
	require.NoError(t, err)
	v, err := host2.GetAttribute("address")
	require.NoError(t, err)
	assert.Equal(t, dynobj.Str("10.0.0.2"), v)
	v, err = host2.GetAttribute("check_interval")
	require.NoError(t, err)
	assert.True(t, dynobj.MustDecimalFromString("30.5").Equal(v))

	svc2, err := cat2.Lookup("Service", "http")
	require.NoError(t, err)
	assert.False(t, svc2.IsAttributeModified("enable_active_checks"))
	v, err = svc2.GetAttribute("notes")
	require.NoError(t, err)
	assert.True(t, dynobj.Dict{"owner": dynobj.Str("ops")}.Equal(v))
}

func TestJournalReplaySkipsUnknownObjects(t *testing.T) {
	path := filepath.Join(t.TempDir(), "attrs.journal")

	cat := newCatalog(t)
	j, _ := openJournal(t, path, 0)
	require.NoError(t, j.Attach(cat))
	host, err := cat.Lookup("Host", "web1")
	require.NoError(t, err)
	require.NoError(t, host.ModifyAttribute("address", dynobj.Str("10.0.0.9")))
	require.NoError(t, j.Close())

	log, _ := test.NewNullLogger()
	empty := dynobj.NewCatalog(log)
	j2, hook := openJournal(t, path, 0)
	defer j2.Close()

	n, err := j2.Replay(empty)
	require.NoError(t, err)
	assert.Zero(t, n)

	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel && e.Data["object"] == "web1" {
			warned = true
		}
	}
	assert.True(t, warned)
}

func TestJournalTornTail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "attrs.journal")

	cat := newCatalog(t)
	j, _ := openJournal(t, path, 0)
	require.NoError(t, j.Attach(cat))
	host, err := cat.Lookup("Host", "web1")
	require.NoError(t, err)
	require.NoError(t, host.ModifyAttribute("address", dynobj.Str("10.0.0.2")))
	require.NoError(t, host.ModifyAttribute("address", dynobj.Str("10.0.0.3")))
	require.NoError(t, j.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data[:len(data)-3], 0o644))

	cat2 := newCatalog(t)
	j2, _ := openJournal(t, path, 0)
	defer j2.Close()

	n, err := j2.Replay(cat2)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	host2, err := cat2.Lookup("Host", "web1")
	require.NoError(t, err)
	v, err := host2.GetAttribute("address")
	require.NoError(t, err)
	assert.Equal(t, dynobj.Str("10.0.0.2"), v)

	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, j2.Stats().Size, fi.Size())
	assert.Less(t, fi.Size(), int64(len(data)))
}

func TestJournalOutOfOrderEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "attrs.journal")

	cat := newCatalog(t)
	host, err := cat.Lookup("Host", "web1")
	require.NoError(t, err)

	// holds back the first change until the second one is journaled
	blocked := make(chan struct{})
	release := make(chan struct{})
	cancel := cat.Signal().Subscribe(func(ev *dynobj.AttributeEvent) {
		if ev.Value == dynobj.Str("10.0.0.2") {
			close(blocked)
			<-release
		}
	})
	defer cancel()

	j, _ := openJournal(t, path, 0)
	require.NoError(t, j.Attach(cat))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, host.ModifyAttribute("address", dynobj.Str("10.0.0.2")))
	}()
	<-blocked
	require.NoError(t, host.ModifyAttribute("address", dynobj.Str("10.0.0.3")))
	close(release)
	wg.Wait()

	live, err := host.GetAttribute("address")
	require.NoError(t, err)
	require.Equal(t, dynobj.Str("10.0.0.3"), live)

	recs, err := j.Records()
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, uint64(2), recs[0].Version)
	require.NoError(t, j.Close())

	cat2 := newCatalog(t)
	j2, _ := openJournal(t, path, 0)
	defer j2.Close()
	_, err = j2.Replay(cat2)
	require.NoError(t, err)
	host2, err := cat2.Lookup("Host", "web1")
	require.NoError(t, err)
	replayed, err := host2.GetAttribute("address")
	require.NoError(t, err)
	require.Equal(t, live, replayed)
}

func TestJournalCorruptLength(t *testing.T) {
	path := filepath.Join(t.TempDir(), "attrs.journal")

	// a str record claiming 1<<62 bytes
	huge := binary.AppendVarint(nil, 1<<62)
	data := append([]byte{7, byte(len(huge))}, huge...)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	j, _ := openJournal(t, path, 0)
	defer j.Close()
	var err error
	require.NotPanics(t, func() {
		_, err = j.Replay(newCatalog(t))
	})
	require.ErrorIs(t, err, journal.ErrCorrupt)

	_, err = j.Records()
	require.ErrorIs(t, err, journal.ErrCorrupt)
}

func TestJournalCompaction(t *testing.T) {
	path := filepath.Join(t.TempDir(), "attrs.journal")

	cat := newCatalog(t)
	j, hook := openJournal(t, path, 256)
	require.NoError(t, j.Attach(cat))

	host, err := cat.Lookup("Host", "web1")
	require.NoError(t, err)
	for i := 0; i < 50; i++ {
		require.NoError(t, host.ModifyAttribute("counter", dynobj.Int(i)))
	}
	require.NoError(t, host.ModifyAttribute("address", dynobj.Str("10.0.0.5")))

	st := j.Stats()
	assert.Greater(t, st.Compactions, 0)
	assert.False(t, st.LastCompaction.IsZero())
	assert.NotNil(t, hook.LastEntry())

	require.NoError(t, j.Compact(nil))
	recs, err := j.Records()
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "counter", recs[0].Attribute)
	assert.Equal(t, dynobj.Int(49), recs[0].Value)
	assert.Equal(t, "address", recs[1].Attribute)
	require.NoError(t, j.Close())

	cat2 := newCatalog(t)
	j2, _ := openJournal(t, path, 0)
	defer j2.Close()
	n, err := j2.Replay(cat2)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestJournalLifecycle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "attrs.journal")
	cat := newCatalog(t)
	j, _ := openJournal(t, path, 0)

	require.NoError(t, j.Attach(cat))
	require.ErrorIs(t, j.Attach(cat), journal.ErrAttached)
	_, err := j.Replay(cat)
	require.ErrorIs(t, err, journal.ErrAttached)

	require.NoError(t, j.Close())
	require.ErrorIs(t, j.Close(), journal.ErrClosed)
	_, err = j.Records()
	require.ErrorIs(t, err, journal.ErrClosed)
	assert.Zero(t, cat.Signal().Len())
}

func TestRecordFromArrayInvalid(t *testing.T) {
	tests := []struct {
		name string
		arr  dynobj.Array
	}{
		{"short", dynobj.Array{dynobj.Str("modify")}},
		{"bad op", dynobj.Array{dynobj.Str("drop"), dynobj.Str("Host"), dynobj.Str("a"),
			dynobj.Str("b"), dynobj.Nil, dynobj.Uint(1), dynobj.Int(0)}},
		{"bad name", dynobj.Array{dynobj.Str("modify"), dynobj.Int(1), dynobj.Str("a"),
			dynobj.Str("b"), dynobj.Nil, dynobj.Uint(1), dynobj.Int(0)}},
		{"bad version", dynobj.Array{dynobj.Str("modify"), dynobj.Str("Host"), dynobj.Str("a"),
			dynobj.Str("b"), dynobj.Nil, dynobj.Int(1), dynobj.Int(0)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := journal.RecordFromArray(tt.arr)
			require.ErrorIs(t, err, journal.ErrCorrupt)
		})
	}
}

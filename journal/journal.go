// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

// Package journal keeps runtime attribute overrides across restarts.
//
// Every attribute event of a catalog is appended to a file as an encoded
// record. At startup Replay reapplies the records to the freshly configured
// catalog. Compact rewrites the file with the overrides in effect.
package journal

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gad-lang/dynobj"
	"github.com/gad-lang/dynobj/encoder"
)

var (
	// ErrCorrupt is returned for records which fail to decode or are
	// malformed.
	ErrCorrupt = errors.New("journal: corrupt record")
	// ErrAttached is returned by Replay on an attached journal.
	ErrAttached = errors.New("journal: already attached")
	// ErrClosed is returned by operations on a closed journal.
	ErrClosed = errors.New("journal: closed")
)

// Options configures a Journal.
type Options struct {
	// MaxBytes triggers compaction when the file grows beyond it. Zero
	// disables automatic compaction.
	MaxBytes int64
	Logger   logrus.FieldLogger
}

// Stats describes the activity of a Journal.
type Stats struct {
	Path           string
	Size           int64
	Written        int
	Replayed       int
	Compactions    int
	LastWrite      time.Time
	LastCompaction time.Time
}

// Journal is an append only log of attribute changes.
type Journal struct {
	path string
	opts Options
	log  logrus.FieldLogger

	mu     sync.Mutex
	f      *os.File
	cat    *dynobj.Catalog
	cancel func()
	stats  Stats
	// written holds the version of the last record written per attribute.
	written map[attributeKey]uint64
}

type attributeKey struct {
	obj  *dynobj.DynamicObject
	name string
}

// Open opens or creates the journal at path.
func Open(path string, opts Options) (*Journal, error) {
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &Journal{
		path:    path,
		opts:    opts,
		log:     opts.Logger.WithFields(logrus.Fields{"component": "journal", "path": path}),
		f:       f,
		stats:   Stats{Path: path, Size: fi.Size()},
		written: map[attributeKey]uint64{},
	}, nil
}

// Stats returns a snapshot of the journal statistics.
func (j *Journal) Stats() Stats {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.stats
}

// Records reads every complete record of the journal file.
func (j *Journal) Records() ([]Record, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.f == nil {
		return nil, ErrClosed
	}
	recs, _, err := j.read()
	return recs, err
}

// read decodes the file and returns its records and the size of the valid
// prefix. A torn last record is not an error.
func (j *Journal) read() (recs []Record, valid int64, err error) {
	data, err := os.ReadFile(j.path)
	if err != nil {
		return nil, 0, err
	}

	rd := bytes.NewReader(data)
	for rd.Len() > 0 {
		o, err := encoder.DecodeObject(rd)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				j.log.WithField("offset", valid).Warn("torn record at journal tail")
				return recs, valid, nil
			}
			return recs, valid, fmt.Errorf("journal offset %d: %w: %w", valid, ErrCorrupt, err)
		}
		a, ok := o.(dynobj.Array)
		if !ok {
			return recs, valid, fmt.Errorf("journal offset %d: %w: %s", valid, ErrCorrupt, o.Type().Name())
		}
		r, err := RecordFromArray(a)
		if err != nil {
			return recs, valid, fmt.Errorf("journal offset %d: %w", valid, err)
		}
		recs = append(recs, r)
		valid = int64(len(data) - rd.Len())
	}
	return recs, valid, nil
}

// Replay reapplies the journal to cat in file order and returns the number
// of applied records. Records of unknown objects or attributes are skipped.
// A torn last record is cut off; any other undecodable record fails with
// ErrCorrupt.
func (j *Journal) Replay(cat *dynobj.Catalog) (n int, err error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.f == nil {
		return 0, ErrClosed
	}
	if j.cancel != nil {
		return 0, ErrAttached
	}

	recs, valid, err := j.read()
	if err != nil {
		return 0, err
	}
	if valid < j.stats.Size {
		if err = j.f.Truncate(valid); err != nil {
			return 0, err
		}
		j.stats.Size = valid
	}

	for _, r := range recs {
		log := j.log.WithFields(logrus.Fields{
			"type":      r.Type,
			"object":    r.Object,
			"attribute": r.Attribute,
		})
		o, err := cat.Lookup(r.Type, r.Object)
		if err != nil {
			log.Warn("skipping journal record of unknown object")
			continue
		}

		switch r.Op {
		case dynobj.OpModify:
			err = o.ModifyAttribute(r.Attribute, r.Value)
		case dynobj.OpRestore:
			err = o.RestoreAttribute(r.Attribute)
		}
		if err != nil {
			log.WithError(err).Warn("skipping journal record")
			continue
		}
		n++
	}

	j.stats.Replayed = n
	j.log.WithFields(logrus.Fields{"records": len(recs), "applied": n}).Info("journal replayed")
	return n, nil
}

// Attach starts journaling the attribute events of cat.
func (j *Journal) Attach(cat *dynobj.Catalog) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.f == nil {
		return ErrClosed
	}
	if j.cancel != nil {
		return ErrAttached
	}
	j.cat = cat
	j.cancel = cat.Signal().Subscribe(j.handle)
	return nil
}

// handle writes ev unless a later change of the same attribute has been
// written already. Events are delivered outside the object lock, so
// concurrent changes may arrive out of version order.
func (j *Journal) handle(ev *dynobj.AttributeEvent) {
	if ev.Op == dynobj.OpRestore && !ev.Changed {
		return
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	if j.f == nil {
		return
	}

	r := RecordOf(ev)
	key := attributeKey{obj: ev.Object, name: ev.Name}
	if last, ok := j.written[key]; ok && ev.Version <= last {
		j.log.WithFields(logrus.Fields{
			"record":  r.String(),
			"version": ev.Version,
			"written": last,
		}).Debug("dropping stale attribute event")
		return
	}
	if err := j.write(j.f, r); err != nil {
		j.log.WithError(err).WithField("record", r.String()).Error("journal write failed")
		return
	}
	j.written[key] = ev.Version
	j.stats.Written++
	j.stats.LastWrite = time.Now()

	if j.opts.MaxBytes > 0 && j.stats.Size > j.opts.MaxBytes {
		if err := j.compact(); err != nil {
			j.log.WithError(err).Error("journal compaction failed")
		}
	}
}

func (j *Journal) write(w io.Writer, r Record) error {
	data, err := encoder.Marshal(r.Array())
	if err != nil {
		return err
	}
	n, err := w.Write(data)
	j.stats.Size += int64(n)
	return err
}

// Compact rewrites the journal with the overrides currently in effect in
// the attached catalog, or cat when the journal is not attached.
func (j *Journal) Compact(cat *dynobj.Catalog) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.f == nil {
		return ErrClosed
	}
	if j.cat == nil {
		j.cat = cat
	}
	return j.compact()
}

func (j *Journal) compact() error {
	if j.cat == nil {
		return errors.New("journal: no catalog to compact from")
	}

	tmpPath := j.path + ".tmp"
	tmp, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}

	before := j.stats.Size
	j.stats.Size = 0
	now := time.Now()
	var records int

	objects := j.cat.Objects(nil)
	live := make(map[*dynobj.DynamicObject]struct{}, len(objects))
	for _, o := range objects {
		live[o] = struct{}{}
		overrides := o.ModifiedAttributes()
		version := o.Version()
		for _, name := range o.ModifiedAttributeNames() {
			v, ok := overrides[name]
			if !ok {
				continue
			}
			err = j.write(tmp, Record{
				Op:        dynobj.OpModify,
				Type:      o.DynamicType().Name(),
				Object:    o.Name(),
				Attribute: name,
				Value:     v,
				Version:   version,
				Time:      now,
			})
			if err != nil {
				_ = tmp.Close()
				_ = os.Remove(tmpPath)
				j.stats.Size = before
				return err
			}
			records++
		}
	}

	if err = tmp.Sync(); err == nil {
		err = tmp.Close()
	} else {
		_ = tmp.Close()
	}
	if err == nil {
		err = os.Rename(tmpPath, j.path)
	}
	if err != nil {
		_ = os.Remove(tmpPath)
		j.stats.Size = before
		return err
	}

	_ = j.f.Close()
	if j.f, err = os.OpenFile(j.path, os.O_RDWR|os.O_APPEND, 0o644); err != nil {
		j.f = nil
		return err
	}

	for key := range j.written {
		if _, ok := live[key.obj]; !ok {
			delete(j.written, key)
		}
	}

	j.stats.Compactions++
	j.stats.LastCompaction = now
	j.log.WithFields(logrus.Fields{
		"records": records,
		"before":  before,
		"after":   j.stats.Size,
	}).Info("journal compacted")
	return nil
}

// Close detaches the journal and closes its file.
func (j *Journal) Close() error {
	j.mu.Lock()
	cancel := j.cancel
	j.cancel = nil
	f := j.f
	j.f = nil
	j.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if f == nil {
		return ErrClosed
	}
	return f.Close()
}

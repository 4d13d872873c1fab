// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package dynobj

import (
	"sort"
	"strconv"

	"github.com/sirupsen/logrus"
)

type objectKey struct {
	typ  *Type
	name string
}

// Catalog is the registry of the types and objects of a daemon instance.
// Objects created by a catalog publish their attribute events on its Signal.
type Catalog struct {
	log    logrus.FieldLogger
	signal *Signal

	types   SyncMap[string, *Type]
	objects SyncMap[objectKey, *DynamicObject]
}

// NewCatalog creates a catalog knowing the standard types. A nil logger
// selects the logrus standard logger.
func NewCatalog(log logrus.FieldLogger) *Catalog {
	if log == nil {
		log = logrus.StandardLogger()
	}
	c := &Catalog{
		log:    log.WithField("component", "catalog"),
		signal: NewSignal(),
	}
	for _, t := range StandardTypes() {
		c.types.Set(t.Name(), t)
	}
	return c
}

// Signal returns the signal carrying the events of the catalog objects.
func (c *Catalog) Signal() *Signal {
	return c.signal
}

// RegisterType adds t. A type name can be registered once.
func (c *Catalog) RegisterType(t *Type) error {
	if !c.types.SetIfAbsent(t.Name(), t) {
		return ErrObjectExists.NewError("type " + strconv.Quote(t.Name()))
	}
	c.log.WithField("type", t.Path()).Debug("type registered")
	return nil
}

// Type returns the type registered as name.
func (c *Catalog) Type(name string) (*Type, error) {
	if t, ok := c.types.Get(name); ok {
		return t, nil
	}
	return nil, ErrTypeNotFound.NewError(strconv.Quote(name))
}

// Types returns the registered types sorted by name.
func (c *Catalog) Types() []*Type {
	types := c.types.Values()
	sort.Slice(types, func(i, j int) bool {
		return types[i].Name() < types[j].Name()
	})
	return types
}

// Create creates the object name of type t with its declared attributes.
func (c *Catalog) Create(t *Type, name string, declared Dict) (*DynamicObject, error) {
	if rt, err := c.Type(t.Name()); err != nil {
		return nil, err
	} else if rt != t {
		return nil, ErrTypeNotFound.NewError(strconv.Quote(t.Name()) + " is registered as another type")
	}
	o := t.New(name, declared)
	o.signal = c.signal
	if !c.objects.SetIfAbsent(objectKey{t, name}, o) {
		return nil, ErrObjectExists.NewError(t.Name() + " " + strconv.Quote(name))
	}
	c.log.WithFields(logrus.Fields{
		"type":       t.Name(),
		"object":     name,
		"attributes": len(declared),
	}).Debug("object created")
	return o, nil
}

// Get returns the object name of type t.
func (c *Catalog) Get(t *Type, name string) (*DynamicObject, error) {
	if o, ok := c.objects.Get(objectKey{t, name}); ok {
		return o, nil
	}
	return nil, ErrObjectNotFound.NewError(t.Name() + " " + strconv.Quote(name))
}

// Lookup is Get for a type name.
func (c *Catalog) Lookup(typeName, name string) (*DynamicObject, error) {
	t, err := c.Type(typeName)
	if err != nil {
		return nil, err
	}
	return c.Get(t, name)
}

// Remove deletes the object name of type t. The object stops publishing
// events.
func (c *Catalog) Remove(t *Type, name string) error {
	o, ok := c.objects.Delete(objectKey{t, name})
	if !ok {
		return ErrObjectNotFound.NewError(t.Name() + " " + strconv.Quote(name))
	}
	o.SetSignal(nil)
	c.log.WithFields(logrus.Fields{"type": t.Name(), "object": name}).Debug("object removed")
	return nil
}

// Objects returns the objects of type t and its subtypes, or every object
// if t is nil, ordered by type and name.
func (c *Catalog) Objects(t *Type) []*DynamicObject {
	var objs []*DynamicObject
	c.objects.Range(func(k objectKey, o *DynamicObject) bool {
		if t == nil || k.typ.Is(t) {
			objs = append(objs, o)
		}
		return true
	})
	sort.Slice(objs, func(i, j int) bool {
		ti, tj := objs[i].DynamicType().Name(), objs[j].DynamicType().Name()
		if ti != tj {
			return ti < tj
		}
		return objs[i].Name() < objs[j].Name()
	})
	return objs
}

// Len returns the number of objects.
func (c *Catalog) Len() int {
	return c.objects.Len()
}

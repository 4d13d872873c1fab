// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

// Package config loads the object configuration of a daemon instance and
// materializes it into a catalog.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/labstack/gommon/bytes"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/gad-lang/dynobj"
)

// DecimalTag marks a YAML scalar decoded as a dynobj.Decimal.
const DecimalTag = "!decimal"

// Config is the root of a configuration file.
type Config struct {
	Level   string   `yaml:"log_level"`
	Journal Journal  `yaml:"journal"`
	Objects []Object `yaml:"objects"`

	log logrus.FieldLogger
}

// Journal configures the modified attributes journal.
type Journal struct {
	Path string `yaml:"path"`
	// MaxSize is a human readable size such as 10MB or 512KiB.
	MaxSize string `yaml:"max_size"`
}

// MaxBytes parses MaxSize. An empty MaxSize is zero.
func (j Journal) MaxBytes() (int64, error) {
	if j.MaxSize == "" {
		return 0, nil
	}
	n, err := bytes.Parse(j.MaxSize)
	if err != nil {
		return 0, fmt.Errorf("journal.max_size: %w", err)
	}
	if n < 0 {
		return 0, fmt.Errorf("journal.max_size: negative size %q", j.MaxSize)
	}
	return n, nil
}

// Object declares one configuration object.
type Object struct {
	Type       string     `yaml:"type"`
	Name       string     `yaml:"name"`
	Attributes Attributes `yaml:"attributes"`
}

// Attributes are declared attribute values.
type Attributes dynobj.Dict

// UnmarshalYAML implements yaml.Unmarshaler.
func (a *Attributes) UnmarshalYAML(value *yaml.Node) error {
	o, err := nodeToObject(value)
	if err != nil {
		return err
	}
	d, ok := o.(dynobj.Dict)
	if !ok {
		if o == dynobj.Nil {
			*a = Attributes{}
			return nil
		}
		return fmt.Errorf("line %d: attributes must be a mapping", value.Line)
	}
	*a = Attributes(d)
	return nil
}

func nodeToObject(n *yaml.Node) (dynobj.Object, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return dynobj.Nil, nil
		}
		return nodeToObject(n.Content[0])
	case yaml.AliasNode:
		return nodeToObject(n.Alias)
	case yaml.SequenceNode:
		arr := make(dynobj.Array, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := nodeToObject(c)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		return arr, nil
	case yaml.MappingNode:
		d := make(dynobj.Dict, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			k := n.Content[i]
			if k.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: attribute names must be scalars", k.Line)
			}
			v, err := nodeToObject(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			d[k.Value] = v
		}
		return d, nil
	case yaml.ScalarNode:
		switch n.Tag {
		case DecimalTag:
			v, err := dynobj.DecimalFromString(dynobj.Str(strings.TrimSpace(n.Value)))
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", n.Line, err)
			}
			return v, nil
		case "!!binary":
			var b string
			if err := n.Decode(&b); err != nil {
				return nil, fmt.Errorf("line %d: %w", n.Line, err)
			}
			return dynobj.Bytes(b), nil
		case "!!str", "!!timestamp":
			return dynobj.Str(n.Value), nil
		}
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		o, err := dynobj.ToObject(v)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return o, nil
	}
	return nil, fmt.Errorf("line %d: unsupported yaml node", n.Line)
}

// Load reads and parses the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse parses a YAML configuration.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	seen := map[[2]string]bool{}
	for i, o := range c.Objects {
		if o.Type == "" || o.Name == "" {
			errs = append(errs, fmt.Errorf("objects[%d]: type and name are required", i))
			continue
		}
		key := [2]string{o.Type, o.Name}
		if seen[key] {
			errs = append(errs, fmt.Errorf("objects[%d]: duplicate %s %q", i, o.Type, o.Name))
		}
		seen[key] = true
	}
	if _, err := c.Journal.MaxBytes(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.LogLevel(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// LogLevel returns the configured level, info by default.
func (c *Config) LogLevel() (logrus.Level, error) {
	if c.Level == "" {
		return logrus.InfoLevel, nil
	}
	return logrus.ParseLevel(c.Level)
}

// SetLogger sets the logger used by Materialize.
func (c *Config) SetLogger(log logrus.FieldLogger) {
	c.log = log
}

// Materialize brings cat in line with the configuration. Missing objects
// are created, existing ones get their declared attributes reloaded with
// their overrides kept, and objects no longer configured are removed.
func (c *Config) Materialize(cat *dynobj.Catalog) error {
	log := c.log
	if log == nil {
		log = logrus.StandardLogger()
	}
	log = log.WithField("component", "config")

	type key struct {
		t    *dynobj.Type
		name string
	}
	wanted := map[key]bool{}
	var created, reloaded, removed int

	for _, o := range c.Objects {
		t, err := cat.Type(o.Type)
		if err != nil {
			return fmt.Errorf("%s %q: %w", o.Type, o.Name, err)
		}
		wanted[key{t, o.Name}] = true

		declared := dynobj.Dict(o.Attributes)
		if obj, err := cat.Get(t, o.Name); err == nil {
			obj.ReloadDeclared(declared)
			reloaded++
			continue
		}
		if _, err = cat.Create(t, o.Name, declared); err != nil {
			return err
		}
		created++
	}

	for _, obj := range cat.Objects(nil) {
		t := obj.DynamicType()
		if wanted[key{t, obj.Name()}] {
			continue
		}
		if err := cat.Remove(t, obj.Name()); err != nil {
			return err
		}
		removed++
	}

	log.WithFields(logrus.Fields{
		"created":  created,
		"reloaded": reloaded,
		"removed":  removed,
	}).Info("configuration materialized")
	return nil
}

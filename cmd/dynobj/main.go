// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/gad-lang/dynobj"
	"github.com/gad-lang/dynobj/config"
	"github.com/gad-lang/dynobj/internal/console"
	"github.com/gad-lang/dynobj/journal"
)

var (
	configPath  = flag.String("config", "dynobj.yaml", "configuration file")
	historyPath = flag.String("history", "", "console history file")
	noColor     = flag.Bool("no-color", false, "disable colored output")
	noJournal   = flag.Bool("no-journal", false, "do not replay or record modified attributes")
)

func main() {
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if err := run(log); err != nil {
		log.WithError(err).Fatal("dynobj")
	}
}

func run(log *logrus.Logger) error {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	level, err := cfg.LogLevel()
	if err != nil {
		return err
	}
	log.SetLevel(level)
	cfg.SetLogger(log)

	cat := dynobj.NewCatalog(log)
	if err = cfg.Materialize(cat); err != nil {
		return err
	}

	var jnl *journal.Journal
	if !*noJournal && cfg.Journal.Path != "" {
		maxBytes, err := cfg.Journal.MaxBytes()
		if err != nil {
			return err
		}
		if jnl, err = journal.Open(cfg.Journal.Path, journal.Options{
			MaxBytes: maxBytes,
			Logger:   log,
		}); err != nil {
			return err
		}
		defer func() {
			if err := jnl.Close(); err != nil {
				log.WithError(err).Error("closing journal")
			}
		}()

		if _, err = jnl.Replay(cat); err != nil {
			return fmt.Errorf("replaying %s: %w", cfg.Journal.Path, err)
		}
		if err = jnl.Attach(cat); err != nil {
			return err
		}
	}

	c := console.New(cat, console.Options{
		Out:     os.Stdout,
		Logger:  log,
		Journal: jnl,
		NoColor: *noColor,
	})
	defer c.Close()
	return c.Run(*historyPath)
}

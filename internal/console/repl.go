// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package console

import (
	"errors"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/peterh/liner"
)

const prompt = "dynobj> "

// Run reads commands from the terminal until quit or end of input. The
// command history is loaded from and saved to historyPath unless it is
// empty.
func (c *Console) Run(historyPath string) error {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	ln.SetCompleter(c.complete)

	if historyPath != "" {
		if f, err := os.Open(historyPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			if f, err := os.Create(historyPath); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			}
		}()
	}

	for {
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			c.color.Println()
			return nil
		}
		if err != nil {
			return err
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		ln.AppendHistory(line)

		quit, err := c.Exec(line)
		if err != nil {
			c.color.Println(c.color.Red(err.Error()))
		}
		if quit {
			return nil
		}
	}
}

// complete completes command names, then type names, then object names.
func (c *Console) complete(line string) []string {
	words := strings.Fields(line)
	if strings.HasSuffix(line, " ") || len(words) == 0 {
		words = append(words, "")
	}
	prefix := strings.Join(words[:len(words)-1], " ")
	if prefix != "" {
		prefix += " "
	}
	last := words[len(words)-1]

	var candidates []string
	switch len(words) {
	case 1:
		for name := range commands {
			candidates = append(candidates, name)
		}
		candidates = append(candidates, "quit")
	case 2:
		for _, t := range c.cat.Types() {
			candidates = append(candidates, t.Name())
		}
	case 3:
		t, err := c.cat.Type(words[1])
		if err != nil {
			return nil
		}
		for _, o := range c.cat.Objects(t) {
			if o.DynamicType() == t {
				candidates = append(candidates, o.Name())
			}
		}
	case 4:
		o, err := c.cat.Lookup(words[1], words[2])
		if err != nil {
			return nil
		}
		candidates = o.DynamicType().Prototype().Names()
		if words[0] == "get" {
			candidates = o.Attributes().SortedKeys()
		}
	}

	var out []string
	for _, cand := range candidates {
		if strings.HasPrefix(cand, last) {
			out = append(out, prefix+cand)
		}
	}
	sort.Strings(out)
	return out
}

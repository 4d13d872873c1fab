// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

// Package console implements the line oriented administration console of
// a catalog.
package console

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/dustin/go-humanize"
	"github.com/labstack/gommon/color"
	"github.com/sirupsen/logrus"
	"github.com/xlab/treeprint"

	"github.com/gad-lang/dynobj"
	"github.com/gad-lang/dynobj/journal"
)

// ErrUsage is returned for malformed commands.
var ErrUsage = errors.New("usage")

// DefaultHistorySize is the number of attribute events kept for history.
const DefaultHistorySize = 100

// Options configures a Console.
type Options struct {
	Out    io.Writer
	Logger logrus.FieldLogger
	// Journal, if set, is reported by the journal command.
	Journal     *journal.Journal
	HistorySize int
	NoColor     bool
}

type command struct {
	usage string
	help  string
	min   int
	run   func(c *Console, args []string) error
}

var commands map[string]*command

func init() {
	commands = map[string]*command{
		"help":    {usage: "help", help: "list commands", run: (*Console).help},
		"types":   {usage: "types", help: "show the type hierarchy", run: (*Console).types},
		"objects": {usage: "objects [type]", help: "list objects", run: (*Console).objects},
		"show":    {usage: "show TYPE NAME", help: "show attributes and methods", min: 2, run: (*Console).show},
		"get":     {usage: "get TYPE NAME ATTR", help: "print an attribute", min: 3, run: (*Console).get},
		"call":    {usage: "call TYPE NAME METHOD [ARGS...]", help: "call a method", min: 3, run: (*Console).call},
		"query": {usage: "query TYPE NAME METHOD [ARGS...]",
			help: "call a method refusing state changes", min: 3, run: (*Console).query},
		"diff":    {usage: "diff TYPE NAME", help: "diff configured and effective attributes", min: 2, run: (*Console).diff},
		"dump":    {usage: "dump TYPE NAME", help: "dump effective attributes", min: 2, run: (*Console).dump},
		"history": {usage: "history", help: "list recent attribute changes", run: (*Console).history},
		"journal": {usage: "journal", help: "show journal statistics", run: (*Console).journalStats},
	}
}

// Console executes administration commands against a catalog. A Console
// owns the frame stack of its calls and must be used by one goroutine.
type Console struct {
	cat    *dynobj.Catalog
	frames *dynobj.FrameStack
	out    io.Writer
	color  *color.Color
	log    logrus.FieldLogger
	jnl    *journal.Journal
	cancel func()

	mu      sync.Mutex
	events  []*dynobj.AttributeEvent
	maxHist int
	now     func() time.Time
}

// New creates a console over cat. It records the attribute events of cat
// until Close.
func New(cat *dynobj.Catalog, opts Options) *Console {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if opts.HistorySize <= 0 {
		opts.HistorySize = DefaultHistorySize
	}

	clr := color.New()
	clr.SetOutput(opts.Out)
	if opts.NoColor {
		clr.Disable()
	}

	c := &Console{
		cat:     cat,
		frames:  dynobj.NewFrameStack(),
		out:     opts.Out,
		color:   clr,
		log:     opts.Logger.WithField("component", "console"),
		jnl:     opts.Journal,
		maxHist: opts.HistorySize,
		now:     time.Now,
	}
	c.cancel = cat.Signal().Subscribe(c.record)
	return c
}

// Close stops recording events.
func (c *Console) Close() {
	c.cancel()
}

func (c *Console) record(ev *dynobj.AttributeEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
	if len(c.events) > c.maxHist {
		c.events = c.events[len(c.events)-c.maxHist:]
	}
}

// Exec runs one command line. It reports quit for the quit and exit
// commands.
func (c *Console) Exec(line string) (quit bool, err error) {
	args, err := splitArgs(strings.TrimSpace(line))
	if err != nil || len(args) == 0 {
		return false, err
	}

	name := strings.ToLower(args[0])
	switch name {
	case "quit", "exit":
		return true, nil
	}

	cmd, ok := commands[name]
	if !ok {
		return false, fmt.Errorf("unknown command %q, type help", args[0])
	}
	if len(args)-1 < cmd.min {
		return false, fmt.Errorf("%w: %s", ErrUsage, cmd.usage)
	}
	c.log.WithField("command", name).Debug("exec")
	return false, cmd.run(c, args[1:])
}

func (c *Console) help([]string) error {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		cmd := commands[name]
		c.color.Printf("  %-40s %s\n", c.color.Bold(cmd.usage), cmd.help)
	}
	c.color.Printf("  %-40s %s\n", c.color.Bold("quit"), "leave the console")
	return nil
}

func (c *Console) types([]string) error {
	types := c.cat.Types()
	children := map[*dynobj.Type][]*dynobj.Type{}
	var roots []*dynobj.Type
	for _, t := range types {
		if t.Super == nil {
			roots = append(roots, t)
		} else {
			children[t.Super] = append(children[t.Super], t)
		}
	}

	tree := treeprint.New()
	var add func(parent treeprint.Tree, t *dynobj.Type)
	add = func(parent treeprint.Tree, t *dynobj.Type) {
		node := parent.AddMetaBranch(len(c.cat.Objects(t)), t.Name())
		for _, child := range children[t] {
			add(node, child)
		}
	}
	for _, t := range roots {
		add(tree, t)
	}
	c.color.Print(tree.String())
	return nil
}

func (c *Console) objects(args []string) error {
	var t *dynobj.Type
	if len(args) > 0 {
		var err error
		if t, err = c.cat.Type(args[0]); err != nil {
			return err
		}
	}
	for _, o := range c.cat.Objects(t) {
		mark := ""
		if n := len(o.ModifiedAttributeNames()); n > 0 {
			mark = c.color.Yellow(fmt.Sprintf(" (%d modified)", n))
		}
		c.color.Printf("%s %s%s\n", c.color.Cyan(o.DynamicType().Name()), o.Name(), mark)
	}
	return nil
}

func (c *Console) lookup(args []string) (*dynobj.DynamicObject, error) {
	return c.cat.Lookup(args[0], args[1])
}

func (c *Console) show(args []string) error {
	o, err := c.lookup(args)
	if err != nil {
		return err
	}

	tree := treeprint.NewWithRoot(o.DynamicType().Path() + " " + o.Name())
	declared := o.DeclaredAttributes()
	overrides := o.ModifiedAttributes()
	defaults := o.DynamicType().Defaulted()

	attrs := tree.AddBranch("attributes")
	effective := o.Attributes()
	for _, k := range effective.SortedKeys() {
		var source string
		switch {
		case overrides[k] != nil:
			source = "modified"
		case declared[k] != nil:
			source = "declared"
		default:
			source = "default"
		}
		value := k + " = " + dynobj.ToCode(effective[k])
		if source != "modified" {
			attrs.AddMetaNode(source, value)
			continue
		}
		node := attrs.AddMetaBranch(source, value)
		if v, ok := declared[k]; ok {
			node.AddNode("declared " + dynobj.ToCode(v))
		} else if v, ok := defaults[k]; ok {
			node.AddNode("default " + dynobj.ToCode(v))
		}
	}

	methods := tree.AddBranch("methods")
	proto := o.DynamicType().Prototype()
	for _, name := range proto.Names() {
		owner := proto
		for ; owner != nil; owner = owner.Parent() {
			if _, ok := owner.Own(name); ok {
				break
			}
		}
		methods.AddMetaNode(owner.Type().Name(), name)
	}

	c.color.Print(tree.String())
	return nil
}

func (c *Console) get(args []string) error {
	o, err := c.lookup(args)
	if err != nil {
		return err
	}
	v, err := o.GetAttribute(args[2])
	if err != nil {
		return err
	}
	c.color.Println(dynobj.ToCode(v))
	return nil
}

func (c *Console) call(args []string) error {
	return c.invoke(args, false)
}

func (c *Console) query(args []string) error {
	return c.invoke(args, true)
}

func (c *Console) invoke(args []string, sandboxed bool) error {
	o, err := c.lookup(args)
	if err != nil {
		return err
	}

	callArgs := make([]dynobj.Object, 0, len(args)-3)
	for _, a := range args[3:] {
		v, err := parseLiteral(a)
		if err != nil {
			return fmt.Errorf("argument %s: %w", a, err)
		}
		callArgs = append(callArgs, v)
	}

	if sandboxed {
		f, err := c.frames.PushSandboxed(nil, nil)
		if err != nil {
			return err
		}
		defer c.frames.Pop(f)
	}

	ret, err := dynobj.CallMethod(c.frames, o, args[2], callArgs...)
	if err != nil {
		return err
	}
	if ret != dynobj.Nil {
		c.color.Println(dynobj.ToCode(ret))
	}
	return nil
}

func (c *Console) diff(args []string) error {
	o, err := c.lookup(args)
	if err != nil {
		return err
	}
	d, err := dynobj.DiffAttributes(o)
	if err != nil {
		return err
	}
	if d == "" {
		c.color.Println(c.color.Grey("no effective modifications"))
		return nil
	}
	for _, line := range strings.SplitAfter(d, "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			c.color.Print(c.color.Bold(line))
		case strings.HasPrefix(line, "+"):
			c.color.Print(c.color.Green(line))
		case strings.HasPrefix(line, "-"):
			c.color.Print(c.color.Red(line))
		default:
			c.color.Print(line)
		}
	}
	return nil
}

func (c *Console) dump(args []string) error {
	o, err := c.lookup(args)
	if err != nil {
		return err
	}
	cfg := spew.ConfigState{Indent: "  ", SortKeys: true, DisablePointerAddresses: true}
	c.color.Print(cfg.Sdump(dynobj.ToInterface(o.Attributes())))
	return nil
}

func (c *Console) history([]string) error {
	c.mu.Lock()
	events := append([]*dynobj.AttributeEvent(nil), c.events...)
	c.mu.Unlock()

	if len(events) == 0 {
		c.color.Println(c.color.Grey("no attribute changes"))
		return nil
	}
	now := c.now()
	for _, ev := range events {
		what := ev.Object.DynamicType().Name() + " " + ev.Object.Name() + " " + ev.Name
		switch ev.Op {
		case dynobj.OpModify:
			what = c.color.Yellow("modify") + " " + what + " = " + dynobj.ToCode(ev.Value)
		default:
			what = c.color.Green("restore") + " " + what
			if !ev.Changed {
				what += c.color.Grey(" (not modified)")
			}
		}
		c.color.Printf("%-14s %s\n", humanize.RelTime(ev.Time, now, "ago", "from now"), what)
	}
	return nil
}

func (c *Console) journalStats([]string) error {
	if c.jnl == nil {
		return errors.New("journal is disabled")
	}
	st := c.jnl.Stats()
	c.color.Printf("path         %s\n", st.Path)
	c.color.Printf("size         %s\n", humanize.Bytes(uint64(st.Size)))
	c.color.Printf("written      %d\n", st.Written)
	c.color.Printf("replayed     %d\n", st.Replayed)
	c.color.Printf("compactions  %d\n", st.Compactions)
	if !st.LastWrite.IsZero() {
		c.color.Printf("last write   %s\n", humanize.RelTime(st.LastWrite, c.now(), "ago", "from now"))
	}
	if !st.LastCompaction.IsZero() {
		c.color.Printf("compacted    %s\n", humanize.RelTime(st.LastCompaction, c.now(), "ago", "from now"))
	}
	return nil
}

// Package expand implements the macro expansion driver: it feeds input
// through the lexical state machine, collects macro names and arguments,
// and pushes every expansion back onto a rescan stack until only plain text
// remains.
package expand

import (
	"os"
	"strings"

	"nickandperla.net/mexp/internal/macro"
	"nickandperla.net/mexp/internal/macroerr"
	"nickandperla.net/mexp/internal/scanner"
	"nickandperla.net/mexp/internal/state"
)

// FileReader returns the entire contents of the named file.
type FileReader func(path string) (string, error)

// Expander expands documents against one macro table. Definitions made
// during a run stay in the table for later runs.
type Expander struct {
	table      *macro.Table
	readFile   FileReader
	maxNesting int // 0 means unbounded
	nesting    int // current expandafter depth
}

// Option configures an Expander.
type Option func(*Expander)

// WithFileReader sets the reader used by include.
func WithFileReader(r FileReader) Option {
	return func(x *Expander) { x.readFile = r }
}

// WithMaxNesting bounds how deeply expandafter may nest.
func WithMaxNesting(n int) Option {
	return func(x *Expander) { x.maxNesting = n }
}

// New creates an Expander over table. A nil table gets a fresh one.
func New(table *macro.Table, opts ...Option) *Expander {
	if table == nil {
		table = macro.NewTable()
	}
	x := &Expander{
		table:    table,
		readFile: readFile,
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// Table returns the macro table the Expander defines into.
func (x *Expander) Table() *macro.Table {
	return x.table
}

// Expand fully expands text. Input that ends in the middle of an escape,
// macro name or argument list is an error.
func (x *Expander) Expand(text string) (string, error) {
	out, end, err := x.Run(text)
	if err != nil {
		return "", err
	}
	if !end.ValidEnd() {
		return "", unterminated(end)
	}
	return out, nil
}

// Run expands text and returns the output together with the state the
// scan ended in. It does not check that the end state is valid.
func (x *Expander) Run(text string) (string, state.State, error) {
	r := &run{
		x:       x,
		machine: scanner.New(),
	}
	r.stack.push(text)
	for {
		c, ok := r.stack.next()
		if !ok {
			break
		}
		st, err := r.machine.Tick(c, r.arity)
		if err != nil {
			return "", st, err
		}
		if err := r.route(st, c); err != nil {
			return "", st, err
		}
	}
	return r.out.String(), r.machine.State(), nil
}

// run is the context of one expansion: its own state machine, rescan stack
// and accumulators. Only the macro table is shared between runs.
type run struct {
	x       *Expander
	machine *scanner.Machine
	stack   rescanStack
	out     strings.Builder
	name    strings.Builder
	args    [3]strings.Builder
	target  Builtin
	arity   int
}

// route files c according to the state the machine moved to.
func (r *run) route(st state.State, c byte) error {
	switch st {
	case state.Plaintext:
		r.out.WriteByte(c)
	case state.LiteralEscapePair:
		r.out.WriteByte('\\')
		r.out.WriteByte(c)
	case state.Macro:
		r.name.WriteByte(c)
	case state.Arg1, state.Arg1Escape,
		state.Arg2, state.Arg2Escape,
		state.Arg3, state.Arg3Escape:
		r.args[st.Arg()-1].WriteByte(c)
	case state.Arg1Begin:
		r.target = Resolve(r.name.String())
		r.arity = r.target.Arity()
	case state.MacroEnd:
		return r.complete()
	}
	return nil
}

// complete invokes the captured macro and pushes its expansion, if any, so
// that scanning continues inside it.
func (r *run) complete() error {
	r.arity = 0
	var args [3]string
	for i := range r.args {
		args[i] = r.args[i].String()
		r.args[i].Reset()
	}
	r.name.Reset()

	var (
		expansion string
		err       error
	)
	if r.target.Kind == ExpandAfter {
		expansion, err = r.x.expandAfter(args[0], args[1])
	} else {
		log.Debugw("dispatching macro", "kind", r.target.Kind, "name", r.target.Name)
		expansion, err = r.x.dispatch(r.target, args)
	}
	if err != nil {
		return err
	}
	if expansion != "" {
		r.stack.push(expansion)
		log.Debugw("pushed expansion", "bytes", len(expansion), "depth", r.stack.depth())
	}
	return nil
}

// expandAfter fully expands after in a nested run and prefixes it with
// before, which is left for the caller to rescan.
func (x *Expander) expandAfter(before, after string) (string, error) {
	if x.maxNesting > 0 && x.nesting >= x.maxNesting {
		return "", macroerr.Newf(macroerr.ErrNestingLimit,
			"expandafter nested deeper than %d", x.maxNesting)
	}
	x.nesting++
	defer func() { x.nesting-- }()

	log.Debugw("nested expandafter run", "depth", x.nesting)
	expanded, err := x.Expand(after)
	if err != nil {
		return "", err
	}
	return before + expanded, nil
}

func unterminated(end state.State) error {
	if end.InArgument() {
		return macroerr.Newf(macroerr.ErrUnbalanced,
			"unbalanced braces: input ended inside argument %d", end.Arg())
	}
	return macroerr.Newf(macroerr.ErrUnterminated, "input ended in state %s", end)
}

func readFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

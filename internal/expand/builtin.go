package expand

import (
	"nickandperla.net/mexp/internal/macroerr"
)

// Kind identifies a built-in macro, or User for everything else.
type Kind int

const (
	User Kind = iota
	Def
	Undef
	If
	IfDef
	Include
	ExpandAfter
)

// String returns the name the kind is invoked by.
func (k Kind) String() string {
	switch k {
	case Def:
		return "def"
	case Undef:
		return "undef"
	case If:
		return "if"
	case IfDef:
		return "ifdef"
	case Include:
		return "include"
	case ExpandAfter:
		return "expandafter"
	}
	return "user"
}

// Builtin is an invocation target resolved from a macro name. Name is
// only meaningful for User.
type Builtin struct {
	Kind Kind
	Name string
}

// Resolve maps a macro name to its invocation target.
func Resolve(name string) Builtin {
	switch name {
	case "def":
		return Builtin{Kind: Def}
	case "undef":
		return Builtin{Kind: Undef}
	case "if":
		return Builtin{Kind: If}
	case "ifdef":
		return Builtin{Kind: IfDef}
	case "include":
		return Builtin{Kind: Include}
	case "expandafter":
		return Builtin{Kind: ExpandAfter}
	}
	return Builtin{Kind: User, Name: name}
}

// Arity returns the number of brace-delimited arguments the target takes.
func (b Builtin) Arity() int {
	switch b.Kind {
	case Def, ExpandAfter:
		return 2
	case If, IfDef:
		return 3
	}
	return 1
}

// dispatch runs every target except expandafter, which needs the driver.
// The returned text is pushed back for rescanning.
func (x *Expander) dispatch(b Builtin, args [3]string) (string, error) {
	switch b.Kind {
	case Def:
		if err := x.table.Define(args[0], args[1]); err != nil {
			return "", err
		}
		log.Debugw("defined macro", "name", args[0])
		return "", nil

	case Undef:
		if err := x.table.Undefine(args[0]); err != nil {
			return "", err
		}
		log.Debugw("undefined macro", "name", args[0])
		return "", nil

	case If:
		if args[0] != "" {
			return args[1], nil
		}
		return args[2], nil

	case IfDef:
		if x.table.Has(args[0]) {
			return args[1], nil
		}
		return args[2], nil

	case Include:
		text, err := x.readFile(args[0])
		if err != nil {
			return "", macroerr.Wrap(macroerr.ErrInclude, err, "cannot include "+args[0])
		}
		log.Debugw("included file", "path", args[0], "bytes", len(text))
		return text, nil
	}
	return x.table.Expand(b.Name, args[0])
}

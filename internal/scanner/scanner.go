// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package scanner provides the byte-level lexical state machine that drives
// macro expansion.
package scanner

import (
	"nickandperla.net/mexp/internal/macroerr"
	"nickandperla.net/mexp/internal/state"
)

// Machine classifies input bytes into scan states. It carries its own
// context, so every expansion run (including nested ones) owns a Machine.
type Machine struct {
	state state.State
	prior state.State // resumed once a comment and its trailing blanks end
	depth int         // brace depth of the invocation being captured
}

// New creates a Machine in the Plaintext state.
func New() *Machine {
	return &Machine{}
}

// State returns the current state.
func (m *Machine) State() state.State {
	return m.state
}

// Resumes returns the state scanning continues in: the interrupted state
// while inside a comment, the current state otherwise.
func (m *Machine) Resumes() state.State {
	if m.state == state.Comment || m.state == state.AfterComment {
		return m.prior
	}
	return m.state
}

// IsAlnum reports whether c is an ASCII letter or digit.
func IsAlnum(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}

// IsEscapable reports whether a backslash before c produces c literally.
func IsEscapable(c byte) bool {
	switch c {
	case '\\', '#', '%', '{', '}':
		return true
	}
	return false
}

// Tick advances the machine by one byte. arity is the number of arguments
// the invocation being captured requires; it is only consulted while
// arguments are open. On error the state is left unchanged.
func (m *Machine) Tick(c byte, arity int) (state.State, error) {
	switch {
	case c == '%' && !m.escaping():
		// A comment inside a comment keeps the state the first one interrupted.
		if m.state != state.Comment && m.state != state.AfterComment {
			m.prior = m.state
		}
		m.state = state.Comment
		return m.state, nil

	case m.state == state.Comment:
		if c == '\n' {
			m.state = state.AfterComment
		}
		return m.state, nil

	case m.state == state.AfterComment:
		if c == ' ' || c == '\t' {
			return m.state, nil
		}
		// Resume the interrupted state and feed it this same byte.
		m.state = m.prior
	}

	next, err := m.step(c, arity)
	if err != nil {
		return m.state, err
	}
	m.state = next
	return next, nil
}

// escaping is true while the previous byte was a backslash.
func (m *Machine) escaping() bool {
	return m.state == state.Escape || m.state.IsArgEscape()
}

func (m *Machine) step(c byte, arity int) (state.State, error) {
	s := m.state
	switch s {
	case state.Plaintext, state.LiteralEscapePair, state.MacroEnd:
		if c == '\\' {
			return state.Escape, nil
		}
		return state.Plaintext, nil

	case state.Escape:
		switch {
		case IsAlnum(c):
			return state.Macro, nil
		case IsEscapable(c):
			return state.Plaintext, nil
		}
		return state.LiteralEscapePair, nil

	case state.Macro:
		if c == '{' {
			if err := m.open(); err != nil {
				return s, err
			}
			return state.Arg1Begin, nil
		}
		if !IsAlnum(c) {
			return s, macroerr.Newf(macroerr.ErrMacroName,
				"macro name must be alphanumeric, found %q", c)
		}
		return state.Macro, nil

	case state.Arg1Begin, state.Arg1,
		state.Arg2Begin, state.Arg2,
		state.Arg3Begin, state.Arg3:
		n := s.Arg()
		switch c {
		case '\\':
			return state.ArgEscape(n), nil
		case '{':
			m.depth++
		case '}':
			closed, err := m.close()
			if err != nil {
				return s, err
			}
			if closed {
				if n >= arity {
					return state.MacroEnd, nil
				}
				return state.ArgEnd(n), nil
			}
		}
		return state.ArgBody(n), nil

	case state.Arg1Escape, state.Arg2Escape, state.Arg3Escape:
		return state.ArgBody(s.Arg()), nil

	case state.Arg1End, state.Arg2End:
		n := s.Arg()
		if arity <= n {
			return state.MacroEnd, nil
		}
		if c != '{' {
			return s, macroerr.Newf(macroerr.ErrMissingBrace,
				"expected { to open argument %d of %d, found %q", n+1, arity, c)
		}
		if err := m.open(); err != nil {
			return s, err
		}
		return state.ArgBegin(n + 1), nil
	}
	return s, nil
}

// open starts a new argument group. Groups only open at depth zero.
func (m *Machine) open() error {
	if m.depth != 0 {
		return macroerr.Newf(macroerr.ErrUnbalanced,
			"argument opened at brace depth %d", m.depth)
	}
	m.depth++
	return nil
}

// close ends one level of nesting and reports whether the argument closed.
func (m *Machine) close() (bool, error) {
	m.depth--
	if m.depth < 0 {
		m.depth = 0
		return false, macroerr.New(macroerr.ErrUnbalanced, "unmatched closing brace")
	}
	return m.depth == 0, nil
}

// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package state defines the lexical scan states of the macro expander.
package state

// State is one lexical scan state.
type State int

const (
	Plaintext State = iota
	Escape
	Macro
	Comment
	AfterComment
	Arg1Begin
	Arg1
	Arg1Escape
	Arg1End
	Arg2Begin
	Arg2
	Arg2Escape
	Arg2End
	Arg3Begin
	Arg3
	Arg3Escape
	MacroEnd
	LiteralEscapePair // backslash followed by a non-escapable, non-alphanumeric byte
)

var stateNames = []string{
	"Plaintext",
	"Escape",
	"Macro",
	"Comment",
	"AfterComment",
	"Arg1Begin",
	"Arg1",
	"Arg1Escape",
	"Arg1End",
	"Arg2Begin",
	"Arg2",
	"Arg2Escape",
	"Arg2End",
	"Arg3Begin",
	"Arg3",
	"Arg3Escape",
	"MacroEnd",
	"LiteralEscapePair",
}

// String returns the name of the state.
func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "UNKNOWN"
	}
	return stateNames[s]
}

// ValidEnd returns true if input may end while in this state.
func (s State) ValidEnd() bool {
	switch s {
	case Plaintext, Comment, AfterComment, MacroEnd, LiteralEscapePair:
		return true
	}
	return false
}

// Arg returns the 1-based argument index the state belongs to, or 0 if the
// state is not part of argument capture.
func (s State) Arg() int {
	switch s {
	case Arg1Begin, Arg1, Arg1Escape, Arg1End:
		return 1
	case Arg2Begin, Arg2, Arg2Escape, Arg2End:
		return 2
	case Arg3Begin, Arg3, Arg3Escape:
		return 3
	}
	return 0
}

// IsArgEscape returns true for the escape sub-states of argument capture.
func (s State) IsArgEscape() bool {
	switch s {
	case Arg1Escape, Arg2Escape, Arg3Escape:
		return true
	}
	return false
}

// InArgument returns true while an argument's braces are still open.
func (s State) InArgument() bool {
	switch s {
	case Arg1Begin, Arg1, Arg1Escape,
		Arg2Begin, Arg2, Arg2Escape,
		Arg3Begin, Arg3, Arg3Escape:
		return true
	}
	return false
}

// ArgBody returns the body state of argument n (1..3).
func ArgBody(n int) State {
	switch n {
	case 1:
		return Arg1
	case 2:
		return Arg2
	}
	return Arg3
}

// ArgEscape returns the escape sub-state of argument n (1..3).
func ArgEscape(n int) State {
	switch n {
	case 1:
		return Arg1Escape
	case 2:
		return Arg2Escape
	}
	return Arg3Escape
}

// ArgBegin returns the begin state of argument n (1..3).
func ArgBegin(n int) State {
	switch n {
	case 1:
		return Arg1Begin
	case 2:
		return Arg2Begin
	}
	return Arg3Begin
}

// ArgEnd returns the end state of argument n. Only arguments 1 and 2 have
// one; the last possible argument always closes the invocation.
func ArgEnd(n int) State {
	if n == 1 {
		return Arg1End
	}
	return Arg2End
}

package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nickandperla.net/mexp/internal/macroerr"
	"nickandperla.net/mexp/internal/state"
)

// feed ticks every byte of input with a fixed arity and returns the states.
func feed(t *testing.T, m *Machine, input string, arity int) []state.State {
	t.Helper()
	var states []state.State
	for i := 0; i < len(input); i++ {
		st, err := m.Tick(input[i], arity)
		require.NoError(t, err, "byte %d (%q)", i, input[i])
		states = append(states, st)
	}
	return states
}

func TestPlaintext(t *testing.T) {
	m := New()
	for _, st := range feed(t, m, "plain text, 1 2 3!", 0) {
		assert.Equal(t, state.Plaintext, st)
	}
}

func TestEscapes(t *testing.T) {
	tests := []struct {
		input string
		want  []state.State
	}{
		{`\{`, []state.State{state.Escape, state.Plaintext}},
		{`\\`, []state.State{state.Escape, state.Plaintext}},
		{`\%`, []state.State{state.Escape, state.Plaintext}},
		{`\#`, []state.State{state.Escape, state.Plaintext}},
		{`\}`, []state.State{state.Escape, state.Plaintext}},
		{`\!a`, []state.State{state.Escape, state.LiteralEscapePair, state.Plaintext}},
		{`\ab`, []state.State{state.Escape, state.Macro, state.Macro}},
		{`\!\x`, []state.State{state.Escape, state.LiteralEscapePair, state.Escape, state.Macro}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, feed(t, New(), tt.input, 0))
		})
	}
}

func TestSingleArgument(t *testing.T) {
	m := New()
	got := feed(t, m, `\x{a{b}\}c}d`, 1)
	want := []state.State{
		state.Escape, state.Macro, state.Arg1Begin,
		state.Arg1, // a
		state.Arg1, // {
		state.Arg1, // b
		state.Arg1, // }
		state.Arg1Escape,
		state.Arg1, // escaped }
		state.Arg1, // c
		state.MacroEnd,
		state.Plaintext,
	}
	assert.Equal(t, want, got)
	assert.Equal(t, state.Plaintext, m.Resumes())
}

func TestThreeArguments(t *testing.T) {
	got := feed(t, New(), `\if{}{T}{F}`, 3)
	want := []state.State{
		state.Escape, state.Macro, state.Macro, state.Arg1Begin,
		state.Arg1End,
		state.Arg2Begin, state.Arg2, state.Arg2End,
		state.Arg3Begin, state.Arg3, state.MacroEnd,
	}
	assert.Equal(t, want, got)
}

func TestTwoArguments(t *testing.T) {
	got := feed(t, New(), `\d{a}{}`, 2)
	want := []state.State{
		state.Escape, state.Macro, state.Arg1Begin, state.Arg1, state.Arg1End,
		state.Arg2Begin, state.MacroEnd,
	}
	assert.Equal(t, want, got)
}

func TestComment(t *testing.T) {
	m := New()
	got := feed(t, m, "a% c\n \tb", 0)
	want := []state.State{
		state.Plaintext,
		state.Comment, state.Comment, state.Comment,
		state.AfterComment, state.AfterComment, state.AfterComment,
		state.Plaintext,
	}
	assert.Equal(t, want, got)
}

func TestCommentResumesArgument(t *testing.T) {
	m := New()
	got := feed(t, m, "\\x{a%note\n  b}", 1)
	assert.Equal(t, state.MacroEnd, got[len(got)-1])
	assert.Equal(t, state.Arg1, got[len(got)-2])
}

func TestCommentBetweenArguments(t *testing.T) {
	m := New()
	got := feed(t, m, "\\d{a}%\n  {b}", 2)
	assert.Equal(t, state.MacroEnd, got[len(got)-1])
}

func TestCommentAfterComment(t *testing.T) {
	m := New()
	got := feed(t, m, "\\x{%one\n%two\n z}", 1)
	assert.Equal(t, state.Arg1, got[len(got)-2])
	assert.Equal(t, state.MacroEnd, got[len(got)-1])
}

func TestEscapedPercentInArgument(t *testing.T) {
	got := feed(t, New(), `\x{5\%}`, 1)
	assert.Equal(t, state.Arg1Escape, got[4])
	assert.Equal(t, state.Arg1, got[5])
	assert.Equal(t, state.MacroEnd, got[6])
}

func TestMacroNameNotAlphanumeric(t *testing.T) {
	m := New()
	feed(t, m, `\ab`, 0)
	_, err := m.Tick('-', 0)
	require.Error(t, err)
	assert.True(t, macroerr.Is(err, macroerr.ErrMacroName))
	assert.Equal(t, state.Macro, m.State())
}

func TestMissingBrace(t *testing.T) {
	m := New()
	feed(t, m, `\d{a}`, 2)
	_, err := m.Tick(' ', 2)
	require.Error(t, err)
	assert.True(t, macroerr.Is(err, macroerr.ErrMissingBrace))
}

func TestResumes(t *testing.T) {
	m := New()
	feed(t, m, "\\d{x}% note", 2)
	assert.Equal(t, state.Comment, m.State())
	assert.Equal(t, state.Arg1End, m.Resumes())

	feed(t, m, "\n  % again\n", 2)
	assert.Equal(t, state.AfterComment, m.State())
	assert.Equal(t, state.Arg1End, m.Resumes())

	feed(t, m, "{y", 2)
	assert.Equal(t, state.Arg2, m.Resumes())
}

func TestIsAlnum(t *testing.T) {
	for _, c := range []byte("azAZ09") {
		assert.True(t, IsAlnum(c), "%q", c)
	}
	for _, c := range []byte("_-{ \xe9") {
		assert.False(t, IsAlnum(c), "%q", c)
	}
}

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"nickandperla.net/mexp/internal/expand"
	"nickandperla.net/mexp/internal/scanner"
	"nickandperla.net/mexp/internal/state"
	"nickandperla.net/mexp/pkg/mexp"
)

// Alt+key mappings: Alt+key sends ESC (0x1b) followed by the key byte
var altKeyMappings = map[byte]string{
	'd': `\def{`,
	'u': `\undef{`,
	'f': `\if{`,
	'F': `\ifdef{`,
	'n': `\include{`,
	'x': `\expandafter{`,
}

func printBanner(w io.Writer) {
	fmt.Fprintln(w, "mexp REPL (Ctrl+D to exit)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Builtins (use Alt+key):")
	fmt.Fprintln(w, `  Alt+d → \def{          Alt+u → \undef{`)
	fmt.Fprintln(w, `  Alt+f → \if{           Alt+F → \ifdef{`)
	fmt.Fprintln(w, `  Alt+n → \include{      Alt+x → \expandafter{`)
	fmt.Fprintln(w)
}

func runREPL(runtime *mexp.Runtime) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		// Not a TTY, fall back to basic mode
		printBanner(os.Stdout)
		runBasicREPL(runtime, os.Stdin, os.Stdout)
		return
	}
	runRawREPL(runtime)
}

// incomplete scans text the way the expander does and reports whether it
// stops inside an invocation. join is what goes between text and the next
// line: a newline inside an argument or a comment, nothing between argument
// groups. Invocations produced by expansion are not predicted.
func incomplete(text string) (more bool, join string) {
	m := scanner.New()
	var name strings.Builder
	arity := 0
	for i := 0; i < len(text); i++ {
		prev := m.State()
		st, err := m.Tick(text[i], arity)
		if err != nil {
			// Let the expander report it.
			return false, ""
		}
		switch {
		case st == state.Escape:
			name.Reset()
		case st == state.Macro:
			name.WriteByte(text[i])
		case st == state.Arg1Begin && prev == state.Macro:
			arity = expand.Resolve(name.String()).Arity()
		}
	}
	resumes := m.Resumes()
	inComment := m.State() != resumes
	switch {
	case resumes.InArgument():
		return true, "\n"
	case resumes == state.Arg1End || resumes == state.Arg2End:
		if inComment {
			return true, "\n"
		}
		return true, ""
	}
	return false, ""
}

// session accumulates input lines until they form complete invocations,
// then expands.
type session struct {
	runtime *mexp.Runtime
	pending strings.Builder
	join    string
}

// feed adds a line. It returns the expansion once the buffered input is
// complete; more is true while an invocation is still open.
func (s *session) feed(line string) (out string, more bool, err error) {
	if s.pending.Len() > 0 {
		if s.join == "" {
			line = strings.TrimLeft(line, " \t")
		}
		s.pending.WriteString(s.join)
	}
	s.pending.WriteString(line)
	input := s.pending.String()
	if more, s.join = incomplete(input); more {
		return "", true, nil
	}
	s.pending.Reset()
	if strings.TrimSpace(input) == "" {
		return "", false, nil
	}
	out, err = s.runtime.Expand(input)
	return out, false, err
}

// runBasicREPL handles non-TTY input (piped input)
func runBasicREPL(runtime *mexp.Runtime, in io.Reader, out io.Writer) {
	reader := bufio.NewReader(in)
	s := &session{runtime: runtime}
	more := false

	for {
		if more {
			fmt.Fprint(out, "... ")
		} else {
			fmt.Fprint(out, ">>> ")
		}

		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			fmt.Fprintln(out)
			return
		}
		line = strings.TrimRight(line, "\r\n")

		var result string
		var expandErr error
		result, more, expandErr = s.feed(line)
		if expandErr != nil {
			fmt.Fprintf(out, "Error: %v\n", expandErr)
			continue
		}
		if result != "" {
			fmt.Fprintln(out, result)
		}
	}
}

// runRawREPL handles TTY input with Alt+key support
func runRawREPL(runtime *mexp.Runtime) {
	fd := int(os.Stdin.Fd())

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set raw mode: %v\n", err)
		printBanner(os.Stdout)
		runBasicREPL(runtime, os.Stdin, os.Stdout)
		return
	}
	defer term.Restore(fd, oldState)

	var banner strings.Builder
	printBanner(&banner)
	fmt.Print(strings.ReplaceAll(banner.String(), "\n", "\r\n"))

	s := &session{runtime: runtime}
	more := false

	for {
		if more {
			fmt.Print("... ")
		} else {
			fmt.Print(">>> ")
		}

		line, eof := readLineRaw(fd)
		if eof {
			fmt.Print("\r\n")
			return
		}

		result, m, err := s.feed(line)
		more = m
		if err != nil {
			fmt.Printf("Error: %v\r\n", err)
			continue
		}
		if result != "" {
			// Replace newlines with \r\n for raw mode display
			fmt.Print(strings.ReplaceAll(result, "\n", "\r\n") + "\r\n")
		}
	}
}

// readLineRaw reads a line in raw mode with Alt+key support
// Returns the line and whether EOF was encountered
func readLineRaw(fd int) (string, bool) {
	var line []byte
	cursor := 0
	buf := make([]byte, 1)

	redrawFromCursor := func() {
		fmt.Print("\x1b[K")
		fmt.Print(string(line[cursor:]))
		if cursor < len(line) {
			fmt.Printf("\x1b[%dD", len(line)-cursor)
		}
	}
	insert := func(s string) {
		tail := append([]byte(s), line[cursor:]...)
		line = append(line[:cursor], tail...)
		cursor += len(s)
		fmt.Print(s)
		if cursor < len(line) {
			redrawFromCursor()
		}
	}

	for {
		n, err := os.Stdin.Read(buf)
		if err != nil || n == 0 {
			return string(line), true
		}

		b := buf[0]

		switch b {
		case 0x04: // Ctrl+D
			if len(line) == 0 {
				return "", true
			}
			if cursor < len(line) {
				line = append(line[:cursor], line[cursor+1:]...)
				redrawFromCursor()
			}

		case 0x03: // Ctrl+C
			fmt.Print("^C\r\n")
			return "", false

		case 0x0d, 0x0a: // Enter (CR or LF)
			fmt.Print("\r\n")
			return string(line), false

		case 0x7f, 0x08: // Backspace (DEL or BS)
			if cursor > 0 {
				cursor--
				line = append(line[:cursor], line[cursor+1:]...)
				fmt.Print("\b")
				redrawFromCursor()
			}

		case 0x1b: // ESC - could be Alt+key or arrow key sequence
			next := make([]byte, 1)
			if n, err := os.Stdin.Read(next); err != nil || n == 0 {
				continue
			}
			if next[0] != '[' {
				if s, ok := altKeyMappings[next[0]]; ok {
					insert(s)
				}
				continue
			}
			arrow := make([]byte, 1)
			if n, err := os.Stdin.Read(arrow); err != nil || n == 0 {
				continue
			}
			switch arrow[0] {
			case 'C': // Right arrow
				if cursor < len(line) {
					cursor++
					fmt.Print("\x1b[C")
				}
			case 'D': // Left arrow
				if cursor > 0 {
					cursor--
					fmt.Print("\x1b[D")
				}
			case '3': // Delete key: ESC [ 3 ~
				del := make([]byte, 1)
				os.Stdin.Read(del)
				if del[0] == '~' && cursor < len(line) {
					line = append(line[:cursor], line[cursor+1:]...)
					redrawFromCursor()
				}
			}

		case 0x01: // Ctrl+A - beginning of line
			if cursor > 0 {
				fmt.Printf("\x1b[%dD", cursor)
				cursor = 0
			}

		case 0x05: // Ctrl+E - end of line
			if cursor < len(line) {
				fmt.Printf("\x1b[%dC", len(line)-cursor)
				cursor = len(line)
			}

		case 0x0b: // Ctrl+K - kill to end of line
			if cursor < len(line) {
				line = line[:cursor]
				fmt.Print("\x1b[K")
			}

		case 0x15: // Ctrl+U - kill to beginning of line
			if cursor > 0 {
				fmt.Printf("\x1b[%dD", cursor)
				line = line[cursor:]
				cursor = 0
				redrawFromCursor()
			}

		default:
			if b >= 0x20 && b != 0x7f {
				// Documents are byte oriented; multi-byte input is stored as is.
				insert(string([]byte{b}))
			}
		}
	}
}

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"bennypowers.dev/ivory/internal/compiler"
	"bennypowers.dev/ivory/internal/parser"
	"github.com/peterh/liner"
)

const (
	historyFile = ".ivory_history"
	promptMain  = "iss> "
	promptCont  = "...> "
	banner      = "ivory interactive session. :help lists commands."
)

// session accumulates the statements entered so far. Every entry is compiled
// together with the earlier ones, so variables and mixins persist.
type session struct {
	c      *compiler.Compiler
	source strings.Builder
	output string
}

// eval compiles the session with input appended and returns the output
// added by input
func (s *session) eval(input string) (string, error) {
	source := s.source.String() + input + "\n"
	out, err := s.c.CompileString(source)
	if err != nil {
		return "", err
	}
	s.source.WriteString(input + "\n")
	added := out
	if strings.HasPrefix(out, s.output) {
		added = out[len(s.output):]
	}
	s.output = out
	return added, nil
}

func (s *session) reset() {
	s.source.Reset()
	s.output = ""
}

// command runs a :command and reports whether the session should end
func (s *session) command(line string, stdout io.Writer) bool {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case ":quit", ":q":
		return true
	case ":reset":
		s.reset()
		fmt.Fprintln(stdout, "session cleared")
	case ":source":
		fmt.Fprint(stdout, s.source.String())
	case ":css":
		fmt.Fprint(stdout, s.output)
	case ":help":
		fmt.Fprintln(stdout, ":source  show the statements entered so far")
		fmt.Fprintln(stdout, ":css     show the CSS of the whole session")
		fmt.Fprintln(stdout, ":reset   forget the session")
		fmt.Fprintln(stdout, ":quit    leave")
	default:
		fmt.Fprintln(stdout, "unknown command, :help lists commands")
	}
	return false
}

func repl(c *compiler.Compiler, stdout, stderr io.Writer) int {
	fmt.Fprintln(stdout, banner)
	if err := c.AddIncludePath("."); err != nil {
		fmt.Fprintf(stderr, "ivory: %v\n", err)
		return 1
	}

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)
	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	s := &session{c: c}
	for {
		input, ok := readStatement(ln)
		if !ok {
			fmt.Fprintln(stdout)
			return 0
		}
		trimmed := strings.TrimSpace(input)
		switch {
		case trimmed == "":
			continue
		case strings.HasPrefix(trimmed, ":"):
			if s.command(trimmed, stdout) {
				return 0
			}
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(input, "\n", " "))
		out, err := s.eval(input)
		if err != nil {
			fmt.Fprintf(stderr, "ivory: %v\n", err)
			continue
		}
		fmt.Fprint(stdout, out)
	}
}

// readStatement reads lines until the braces of the input balance
func readStatement(ln *liner.State) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			return "", true
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		if unclosed(b.String()) <= 0 {
			return b.String(), true
		}
	}
}

// unclosed counts the braces left open in source, ignoring strings and comments
func unclosed(source string) int {
	depth := 0
	var quote byte
	source = parser.StripComments(source)
	for i := 0; i < len(source); i++ {
		ch := source[i]
		switch {
		case quote != 0:
			if ch == '\\' {
				i++
			} else if ch == quote {
				quote = 0
			}
		case ch == '\'' || ch == '"':
			quote = ch
		case ch == '{':
			depth++
		case ch == '}':
			depth--
		}
	}
	return depth
}

package front

import (
	"fmt"
	"sort"
)

type (
	Source struct {
		Name string
		Text []byte

		lines []int // line start offsets
	}

	// SyntaxError is a lexical or syntax error.
	SyntaxError struct {
		Name      string
		Line, Col int
		Lexical   bool
		Msg       string
	}
)

func NewSource(name string, text []byte) *Source {
	s := &Source{
		Name:  name,
		Text:  text,
		lines: []int{0},
	}

	for i, c := range text {
		if c == '\n' {
			s.lines = append(s.lines, i+1)
		}
	}

	return s
}

// Position returns 1-based line and column of byte offset pos.
func (s *Source) Position(pos int) (line, col int) {
	l := sort.Search(len(s.lines), func(i int) bool { return s.lines[i] > pos }) - 1
	if l < 0 {
		l = 0
	}

	return l + 1, pos - s.lines[l] + 1
}

func (s *Source) Line(pos int) int {
	l, _ := s.Position(pos)
	return l
}

func (s *Source) syntaxError(pos int, lexical bool, format string, args ...any) SyntaxError {
	l, c := s.Position(pos)

	return SyntaxError{
		Name:    s.Name,
		Line:    l,
		Col:     c,
		Lexical: lexical,
		Msg:     fmt.Sprintf(format, args...),
	}
}

func (e SyntaxError) Error() string {
	kind := "syntax"
	if e.Lexical {
		kind = "lexical"
	}

	return fmt.Sprintf("%s:%d:%d: %s error: %s", e.Name, e.Line, e.Col, kind, e.Msg)
}

package front

import (
	"context"
	"strconv"

	"tlog.app/go/loc"
	"tlog.app/go/tlog"
)

type (
	token any

	punct   string
	keyword string
	ident   string

	intLit struct {
		Value int32
	}

	floatLit struct {
		Value float32
	}

	eof struct{}
)

var keywords = map[string]bool{
	"int":    true,
	"float":  true,
	"struct": true,
	"return": true,
	"if":     true,
	"else":   true,
	"while":  true,
}

// next returns the token at st, its start and the position after it.
func (p *parser) next(ctx context.Context, st int) (tk token, tst, i int, err error) {
	if tr := tlog.SpanFromContext(ctx); tr.If("next_token") {
		defer func(st int) {
			tr.Printw("next token", "st", st, "tk", tk, "tst", tst, "i", i, "from", loc.Callers(1, 3))
		}(st)
	}

	b := p.src.Text

	st, err = p.skipSpaces(st)
	if err != nil {
		return nil, st, st, err
	}

	i = st

	if i == len(b) {
		return eof{}, st, i, nil
	}

	c := b[i]

	switch c {
	case ';', ',', '.', '(', ')', '[', ']', '{', '}', '+', '-', '*', '/':
		return punct(b[i : i+1]), st, i + 1, nil
	case '=', '<', '>', '!':
		if i+1 < len(b) && b[i+1] == '=' {
			return punct(b[i : i+2]), st, i + 2, nil
		}

		return punct(b[i : i+1]), st, i + 1, nil
	case '&', '|':
		if i+1 < len(b) && b[i+1] == c {
			return punct(b[i : i+2]), st, i + 2, nil
		}

		return nil, st, i, p.src.syntaxError(i, true, "unexpected character %q", c)
	}

	switch {
	case isLetter(c):
		e := skipIdent(b, i)

		if keywords[string(b[i:e])] {
			return keyword(b[i:e]), st, e, nil
		}

		return ident(b[i:e]), st, e, nil
	case isDigit(c):
		return p.number(st)
	}

	return nil, st, i, p.src.syntaxError(i, true, "unexpected character %q", c)
}

func (p *parser) number(st int) (tk token, tst, i int, err error) {
	b := p.src.Text
	i = st

	if i+1 < len(b) && b[i] == '0' && (b[i+1] == 'x' || b[i+1] == 'X') {
		i += 2

		for i < len(b) && isHex(b[i]) {
			i++
		}

		return p.intLit(st, i)
	}

	for i < len(b) && isDigit(b[i]) {
		i++
	}

	float := false

	if i < len(b) && b[i] == '.' {
		float = true
		i++

		for i < len(b) && isDigit(b[i]) {
			i++
		}
	}

	if i < len(b) && (b[i] == 'e' || b[i] == 'E') {
		if !float {
			return nil, st, i, p.src.syntaxError(st, true, "illegal number %q", b[st:i+1])
		}

		i++

		if i < len(b) && (b[i] == '+' || b[i] == '-') {
			i++
		}

		d := i

		for i < len(b) && isDigit(b[i]) {
			i++
		}

		if d == i {
			return nil, st, i, p.src.syntaxError(st, true, "illegal float %q", b[st:i])
		}
	}

	if !float {
		return p.intLit(st, i)
	}

	if i < len(b) && isLetter(b[i]) {
		return nil, st, i, p.src.syntaxError(st, true, "illegal float %q", b[st:skipIdent(b, i)])
	}

	v, err := strconv.ParseFloat(string(b[st:i]), 32)
	if err != nil {
		return nil, st, i, p.src.syntaxError(st, true, "illegal float %q", b[st:i])
	}

	return floatLit{Value: float32(v)}, st, i, nil
}

func (p *parser) intLit(st, i int) (tk token, tst, e int, err error) {
	b := p.src.Text

	if i < len(b) && (isLetter(b[i]) || isDigit(b[i])) {
		e = skipIdent(b, i)

		return nil, st, e, p.src.syntaxError(st, true, "illegal number %q", b[st:e])
	}

	// base 0: 0x.. is hex, 0.. is octal
	v, err := strconv.ParseInt(string(b[st:i]), 0, 32)
	if err != nil {
		return nil, st, i, p.src.syntaxError(st, true, "illegal number %q", b[st:i])
	}

	return intLit{Value: int32(v)}, st, i, nil
}

func (p *parser) skipSpaces(i int) (int, error) {
	b := p.src.Text

	for i < len(b) {
		switch {
		case b[i] == ' ' || b[i] == '\t' || b[i] == '\n' || b[i] == '\r':
			i++
		case b[i] == '/' && i+1 < len(b) && b[i+1] == '/':
			for i < len(b) && b[i] != '\n' {
				i++
			}
		case b[i] == '/' && i+1 < len(b) && b[i+1] == '*':
			st := i
			i += 2

			for i+1 < len(b) && !(b[i] == '*' && b[i+1] == '/') {
				i++
			}

			if i+1 >= len(b) {
				return st, p.src.syntaxError(st, true, "unterminated comment")
			}

			i += 2
		default:
			return i, nil
		}
	}

	return i, nil
}

func isLetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isHex(c byte) bool {
	return isDigit(c) || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}

func skipIdent(b []byte, i int) int {
	for i < len(b) && (isLetter(b[i]) || isDigit(b[i])) {
		i++
	}

	return i
}

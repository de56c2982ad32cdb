package ir

import (
	"bufio"
	"bytes"
	"strconv"
	"strings"

	"tlog.app/go/errors"
)

var relByName = map[string]Rel{"<": LT, "<=": LE, ">": GT, ">=": GE, "==": EQ, "!=": NE}

var arithByName = map[string]Arith{"+": Add, "-": Sub, "*": Mul, "/": Div}

// Parse reads the textual form produced by List.WriteTo.
func Parse(text []byte) (*Program, error) {
	p := New()

	s := bufio.NewScanner(bytes.NewReader(text))

	for lnum := 1; s.Scan(); lnum++ {
		f := strings.Fields(s.Text())
		if len(f) == 0 {
			continue
		}

		in, err := parseInstr(f)
		if err != nil {
			return nil, errors.Wrap(err, "line %d", lnum)
		}

		p.note(in)
		p.Append(in)
	}

	if err := s.Err(); err != nil {
		return nil, errors.Wrap(err, "scan")
	}

	return p, nil
}

func parseInstr(f []string) (in Instr, err error) {
	switch {
	case f[0] == "LABEL" && len(f) == 3 && f[2] == ":":
		l, err := parseLabel(f[1])
		return DefLabel{L: l}, err
	case f[0] == "FUNCTION" && len(f) == 3 && f[2] == ":":
		return FuncEntry{Name: f[1]}, nil
	case f[0] == "GOTO" && len(f) == 2:
		l, err := parseLabel(f[1])
		return Goto{L: l}, err
	case f[0] == "IF" && len(f) == 6 && f[4] == "GOTO":
		rel, ok := relByName[f[2]]
		if !ok {
			return nil, errors.New("unknown relop: %q", f[2])
		}

		l, err := parseLabel(f[5])
		if err != nil {
			return nil, err
		}

		return If{L: parseOperand(f[1]), Rel: rel, R: parseOperand(f[3]), Target: l}, nil
	case f[0] == "RETURN" && len(f) == 2:
		return Return{X: parseOperand(f[1])}, nil
	case f[0] == "DEC" && len(f) == 3:
		size, err := strconv.Atoi(f[2])
		if err != nil {
			return nil, errors.Wrap(err, "dec size")
		}

		return Alloc{X: parseOperand(f[1]), Size: size}, nil
	case f[0] == "ARG" && len(f) == 2:
		return Arg{X: parseOperand(f[1])}, nil
	case f[0] == "PARAM" && len(f) == 2:
		return Param{X: Var(f[1])}, nil
	case f[0] == "READ" && len(f) == 2:
		return Read{Dst: parseOperand(f[1])}, nil
	case f[0] == "WRITE" && len(f) == 2:
		return Write{X: parseOperand(f[1])}, nil
	case len(f) == 3 && f[1] == ":=":
		return Assign{Dst: parseOperand(f[0]), Src: parseOperand(f[2])}, nil
	case len(f) == 4 && f[1] == ":=" && f[2] == "CALL":
		return Call{Dst: parseOperand(f[0]), Func: Sym(f[3])}, nil
	case len(f) == 5 && f[1] == ":=":
		op, ok := arithByName[f[3]]
		if !ok {
			return nil, errors.New("unknown operator: %q", f[3])
		}

		return BinOp{Op: op, Dst: parseOperand(f[0]), L: parseOperand(f[2]), R: parseOperand(f[4])}, nil
	}

	return nil, errors.New("unsupported instruction: %q", strings.Join(f, " "))
}

func parseLabel(s string) (Label, error) {
	if !strings.HasPrefix(s, "L") {
		return 0, errors.New("bad label: %q", s)
	}

	n, err := strconv.Atoi(s[1:])
	if err != nil {
		return 0, errors.Wrap(err, "label %q", s)
	}

	return Label(n), nil
}

// parseOperand treats t<digits> as a temporary.
func parseOperand(s string) Operand {
	switch {
	case strings.HasPrefix(s, "&"):
		return Addr{X: parseOperand(s[1:])}
	case strings.HasPrefix(s, "*"):
		return Deref{X: parseOperand(s[1:])}
	case strings.HasPrefix(s, "#"):
		v := s[1:]

		if strings.ContainsAny(v, ".eE") {
			f, err := strconv.ParseFloat(v, 32)
			if err == nil {
				return Float(f)
			}
		} else if n, err := strconv.ParseInt(v, 10, 32); err == nil {
			return Int(n)
		}
	case len(s) > 1 && s[0] == 't':
		if n, err := strconv.Atoi(s[1:]); err == nil && n > 0 {
			return Temp(n)
		}
	}

	return Var(s)
}

func (p *Program) note(in Instr) {
	var ops []Operand

	switch in := in.(type) {
	case DefLabel:
		p.labels = max(p.labels, int(in.L))
	case Goto:
		p.labels = max(p.labels, int(in.L))
	case If:
		p.labels = max(p.labels, int(in.Target))
	}

	if d := Def(in); d != nil {
		ops = append(ops, d)
	}

	ops = append(ops, Uses(in)...)

	for _, x := range ops {
		for x != nil {
			switch q := x.(type) {
			case Temp:
				p.temps = max(p.temps, int(q))
				x = nil
			case Addr:
				x = q.X
			case Deref:
				x = q.X
			default:
				x = nil
			}
		}
	}
}

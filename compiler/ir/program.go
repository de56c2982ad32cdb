package ir

import (
	"bytes"
	"fmt"
	"io"
)

type (
	// Program is one compilation session: the instruction list
	// and the temporary and label counters.
	Program struct {
		List

		temps  int
		labels int
	}
)

func New() *Program {
	return &Program{}
}

func (p *Program) NewTemp() Temp {
	p.temps++
	return Temp(p.temps)
}

func (p *Program) NewLabel() Label {
	p.labels++
	return Label(p.labels)
}

// Temps returns the number of temporaries issued so far.
func (p *Program) Temps() int { return p.temps }

// Labels returns the number of labels issued so far.
func (p *Program) Labels() int { return p.labels }

func (p *Program) Emit(in Instr) Node {
	return p.Append(in)
}

func (l *List) WriteTo(w io.Writer) (n int64, err error) {
	var b []byte

	for q := l.head; q != 0; q = l.Next(q) {
		b = fmt.Appendf(b, "%v\n", l.Get(q))
	}

	m, err := w.Write(b)

	return int64(m), err
}

func (l *List) Bytes() []byte {
	var buf bytes.Buffer

	_, _ = l.WriteTo(&buf)

	return buf.Bytes()
}

func (l *List) String() string {
	return string(l.Bytes())
}

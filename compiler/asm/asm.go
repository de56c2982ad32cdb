package asm

import "fmt"

type (
	// Reg is a MIPS32 register used by the code generator.
	Reg int

	// Cond is a conditional branch suffix: blt, ble, ...
	Cond string
)

const (
	Zero Reg = iota
	V0
	A0
	T0
	T1
	T2
	T3
	SP
	RA
)

const (
	LT Cond = "lt"
	LE Cond = "le"
	GT Cond = "gt"
	GE Cond = "ge"
	EQ Cond = "eq"
	NE Cond = "ne"
)

var regNames = [...]string{
	Zero: "$0",
	V0:   "$v0",
	A0:   "$a0",
	T0:   "$t0",
	T1:   "$t1",
	T2:   "$t2",
	T3:   "$t3",
	SP:   "$sp",
	RA:   "$ra",
}

func (r Reg) String() string {
	if r < 0 || int(r) >= len(regNames) {
		return fmt.Sprintf("reg(%d)", int(r))
	}

	return regNames[r]
}

// Branch returns the branch mnemonic for c.
func (c Cond) Branch() string { return "b" + string(c) }

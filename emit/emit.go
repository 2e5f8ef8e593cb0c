// Copyright (c) 2026 The Tacc Contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

// Package emit formats the assembly IR into textual AT&T-syntax x86-64
// assembly. No IR-shaping decisions are made here, only the final text
// rendering for one of two target OS conventions.
package emit

import (
	"bufio"
	"fmt"
	"io"
	"math/bits"

	"tacc/asmir"
)

// OS selects the section/symbol-naming convention to emit under.
type OS int

const (
	Linux OS = iota
	Darwin
)

// ParseOS maps a `--os` flag value to an OS, defaulting to Linux on an
// unrecognized spelling.
func ParseOS(s string) OS {
	if s == "darwin" || s == "macos" {
		return Darwin
	}
	return Linux
}

type emitter struct {
	os  OS
	w   *bufio.Writer
	err error
}

func (e *emitter) printf(format string, args ...interface{}) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}

// symbol applies the target's external-symbol naming convention: macOS
// prefixes every symbol with `_`, Linux leaves it bare.
func (e *emitter) symbol(name string) string {
	if e.os == Darwin {
		return "_" + name
	}
	return name
}

// Emit writes prog's full textual assembly to w for the given target OS.
// It is the only place in the repo aware of the macOS/Linux section-layout
// split.
func Emit(w io.Writer, prog *asmir.Program, target OS) error {
	e := &emitter{os: target, w: bufio.NewWriter(w)}
	e.emitGlobals(prog.Globals)
	e.emitFunctions(prog.Functions)
	if target == Linux {
		e.printf("\t.section .note.GNU-stack,\"\",@progbits\n")
	}
	if e.err != nil {
		return e.err
	}
	return e.w.Flush()
}

func (e *emitter) dataSection() string {
	if e.os == Darwin {
		return ".section __DATA,__data"
	}
	return ".section .data"
}

func (e *emitter) textSection() string {
	if e.os == Darwin {
		return ".section __TEXT,__text"
	}
	return ".section .text"
}

// alignDirective emits the alignment directive for a size-byte scalar:
// macOS's `.p2align` takes log2(alignment), Linux's `.align` takes the byte
// count directly.
func (e *emitter) alignDirective(size int) {
	if e.os == Darwin {
		e.printf("\t.p2align %d\n", bits.Len(uint(size))-1)
		return
	}
	e.printf("\t.align %d\n", size)
}

func (e *emitter) emitGlobals(globals []*asmir.Global) {
	if len(globals) == 0 {
		return
	}
	e.printf("\t%s\n", e.dataSection())
	for _, g := range globals {
		if !g.IsStatic {
			e.printf("\t.globl %s\n", e.symbol(g.Name))
		}
		e.alignDirective(g.Size)
		e.printf("%s:\n", e.symbol(g.Name))
		directive := ".long"
		if g.Size == 8 {
			directive = ".quad"
		}
		var val int64
		if g.Init != nil {
			val = *g.Init
		}
		e.printf("\t%s %d\n", directive, val)
	}
}

func (e *emitter) emitFunctions(functions []*asmir.Function) {
	if len(functions) == 0 {
		return
	}
	e.printf("\t%s\n", e.textSection())
	for _, fn := range functions {
		if !fn.IsStatic {
			e.printf("\t.globl %s\n", e.symbol(fn.Name))
		}
		e.printf("%s:\n", e.symbol(fn.Name))
		for _, instr := range fn.Instrs {
			e.emitInstr(instr)
		}
	}
}

// operandText renders an operand, substituting the target's symbol
// convention for RIP-relative data references; every other operand kind
// (immediate, physical register, stack offset) is OS-independent and uses
// its own String() form.
func (e *emitter) operandText(o asmir.Operand) string {
	if d, ok := o.(asmir.Data); ok {
		return e.symbol(d.Label) + "(%rip)"
	}
	return o.String()
}

// emitInstr writes one instruction's line(s). Most instructions print via
// their own String(), which is already OS-independent AT&T text; the few
// carrying a symbol reference (call targets, RIP-relative data operands)
// are rebuilt here with operandText/symbol so the `_`-prefix convention
// applies uniformly.
func (e *emitter) emitInstr(instr asmir.Instruction) {
	switch v := instr.(type) {
	case asmir.Mov:
		e.printf("\tmov%s %s, %s\n", v.Width.Suffix(), e.operandText(v.Src), e.operandText(v.Dst))
	case asmir.MovSX:
		e.printf("\tmovslq %s, %s\n", e.operandText(v.Src), e.operandText(v.Dst))
	case asmir.MovZX:
		e.printf("\tmovl %s, %s\n", e.operandText(v.Src), e.operandText(v.Dst))
	case asmir.Arith:
		e.printf("\t%s%s %s, %s\n", v.Op.Mnemonic(), v.Width.Suffix(), e.operandText(v.Src), e.operandText(v.Dst))
	case asmir.IMul:
		e.printf("\timul%s %s, %s\n", v.Width.Suffix(), e.operandText(v.Src), e.operandText(v.Dst))
	case asmir.IDiv:
		e.printf("\tidiv%s %s\n", v.Width.Suffix(), e.operandText(v.Divisor))
	case asmir.Div:
		e.printf("\tdiv%s %s\n", v.Width.Suffix(), e.operandText(v.Divisor))
	case asmir.Cdq:
		e.printf("\tcdq\n")
	case asmir.Cqo:
		e.printf("\tcqo\n")
	case asmir.Neg:
		e.printf("\tneg%s %s\n", v.Width.Suffix(), e.operandText(v.Operand))
	case asmir.Not:
		e.printf("\tnot%s %s\n", v.Width.Suffix(), e.operandText(v.Operand))
	case asmir.Shift:
		count := e.operandText(v.Count)
		if r, ok := v.Count.(asmir.Reg); ok && r.Reg == asmir.CX {
			count = "%cl"
		}
		e.printf("\t%s%s %s, %s\n", v.Op.Mnemonic(), v.Width.Suffix(), count, e.operandText(v.Dst))
	case asmir.Cmp:
		e.printf("\tcmp%s %s, %s\n", v.Width.Suffix(), e.operandText(v.Rhs), e.operandText(v.Lhs))
	case asmir.SetCC:
		e.printf("\tset%s %s\n", v.CC.Suffix(), e.operandText(v.Dst))
	case asmir.Jmp:
		e.printf("\tjmp %s\n", v.Target)
	case asmir.JmpCC:
		e.printf("\tj%s %s\n", v.CC.JumpSuffix(), v.Target)
	case asmir.Push:
		e.printf("\tpushq %s\n", e.operandText(v.Operand))
	case asmir.Pop:
		e.printf("\tpopq %s\n", e.operandText(v.Operand))
	case asmir.CallInstr:
		e.printf("\tcall %s\n", e.symbol(v.Name))
	case asmir.Label:
		e.printf("%s:\n", v.Name)
	case asmir.Ret:
		e.printf("\tret\n")
	}
}

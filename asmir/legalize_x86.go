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

package asmir

import (
	"math"

	"tacc/utils"
)

// legalizeFunction is Pass C: it prepends the prologue, rewrites
// every ret into the matching epilogue, and rewrites each instruction whose
// operand classes the ISA can't express directly into a legal sequence
// routed through the %r10/%r11 scratch registers.
func legalizeFunction(fn *Function) {
	stackSize := utils.Align16(fn.StackSize)

	out := make([]Instruction, 0, len(fn.Instrs)+4)
	out = append(out,
		Push{Operand: Reg{Reg: BP, Width: W8}},
		Mov{Width: W8, Src: Reg{Reg: SP, Width: W8}, Dst: Reg{Reg: BP, Width: W8}},
	)
	if stackSize > 0 {
		out = append(out, Arith{Op: ArithSub, Width: W8, Src: Imm{Value: int64(stackSize)}, Dst: Reg{Reg: SP, Width: W8}})
	}

	for _, instr := range fn.Instrs {
		if _, ok := instr.(Ret); ok {
			out = append(out,
				Mov{Width: W8, Src: Reg{Reg: BP, Width: W8}, Dst: Reg{Reg: SP, Width: W8}},
				Pop{Operand: Reg{Reg: BP, Width: W8}},
				Ret{},
			)
			continue
		}
		out = append(out, legalizeInstr(instr)...)
	}

	fn.Instrs = out
	fn.StackSize = stackSize
}

func isMem(o Operand) bool {
	switch o.(type) {
	case Stack, Data:
		return true
	}
	return false
}

func isImmOutOfInt32Range(o Operand) bool {
	imm, ok := o.(Imm)
	return ok && (imm.Value > math.MaxInt32 || imm.Value < math.MinInt32)
}

// legalizeInstr rewrites a single instruction into one or more legal
// instructions. Instruction selection never reuses the same scratch
// register for both a source-load and a destination-of-two-mem fix within
// one instruction: %r10 stages the operand being moved out of the way
// (including the oversized immediate of a mov, an add-family op or a push),
// and %r11 holds the second operand where one instruction needs two (an
// oversized imul or cmp source, or a movslq/movzx immediate source).
func legalizeInstr(instr Instruction) []Instruction {
	switch v := instr.(type) {
	case Mov:
		if v.Width == W4 {
			// A 32-bit mov only ever stores the low 32 bits; truncate an
			// oversized immediate here so the assembler never sees it.
			if imm, ok := v.Src.(Imm); ok && isImmOutOfInt32Range(imm) {
				v.Src = Imm{Value: int64(int32(imm.Value))}
			}
		}
		if v.Width == W8 && isImmOutOfInt32Range(v.Src) && isMem(v.Dst) {
			return []Instruction{
				Mov{Width: W8, Src: v.Src, Dst: Reg{Reg: R10, Width: W8}},
				Mov{Width: W8, Src: Reg{Reg: R10, Width: W8}, Dst: v.Dst},
			}
		}
		if isMem(v.Src) && isMem(v.Dst) {
			return []Instruction{
				Mov{Width: v.Width, Src: v.Src, Dst: Reg{Reg: R10, Width: v.Width}},
				Mov{Width: v.Width, Src: Reg{Reg: R10, Width: v.Width}, Dst: v.Dst},
			}
		}
		return []Instruction{v}

	case Arith:
		if v.Width == W8 && isImmOutOfInt32Range(v.Src) {
			return []Instruction{
				Mov{Width: W8, Src: v.Src, Dst: Reg{Reg: R10, Width: W8}},
				Arith{Op: v.Op, Width: W8, Src: Reg{Reg: R10, Width: W8}, Dst: v.Dst},
			}
		}
		if isMem(v.Src) && isMem(v.Dst) {
			return []Instruction{
				Mov{Width: v.Width, Src: v.Src, Dst: Reg{Reg: R10, Width: v.Width}},
				Arith{Op: v.Op, Width: v.Width, Src: Reg{Reg: R10, Width: v.Width}, Dst: v.Dst},
			}
		}
		return []Instruction{v}

	case IMul:
		var prefix []Instruction
		src := v.Src
		if v.Width == W8 && isImmOutOfInt32Range(src) {
			prefix = append(prefix, Mov{Width: W8, Src: src, Dst: Reg{Reg: R11, Width: W8}})
			src = Reg{Reg: R11, Width: W8}
		}
		if isMem(v.Dst) {
			return append(prefix,
				Mov{Width: v.Width, Src: v.Dst, Dst: Reg{Reg: R10, Width: v.Width}},
				IMul{Width: v.Width, Src: src, Dst: Reg{Reg: R10, Width: v.Width}},
				Mov{Width: v.Width, Src: Reg{Reg: R10, Width: v.Width}, Dst: v.Dst},
			)
		}
		return append(prefix, IMul{Width: v.Width, Src: src, Dst: v.Dst})

	case IDiv:
		if _, ok := v.Divisor.(Imm); ok {
			return []Instruction{
				Mov{Width: v.Width, Src: v.Divisor, Dst: Reg{Reg: R10, Width: v.Width}},
				IDiv{Width: v.Width, Divisor: Reg{Reg: R10, Width: v.Width}},
			}
		}
		return []Instruction{v}

	case Div:
		if _, ok := v.Divisor.(Imm); ok {
			return []Instruction{
				Mov{Width: v.Width, Src: v.Divisor, Dst: Reg{Reg: R10, Width: v.Width}},
				Div{Width: v.Width, Divisor: Reg{Reg: R10, Width: v.Width}},
			}
		}
		return []Instruction{v}

	case MovSX:
		// movslq has no immediate-source form and can never target memory;
		// load an Imm source into %r11 first, and route a memory destination
		// through %r10 with a plain mov of the widened result.
		var prefix []Instruction
		src := v.Src
		if _, ok := src.(Imm); ok {
			prefix = append(prefix, Mov{Width: W4, Src: src, Dst: Reg{Reg: R11, Width: W4}})
			src = Reg{Reg: R11, Width: W4}
		}
		if dst, ok := v.Dst.(Reg); ok {
			return append(prefix, MovSX{Src: src, Dst: dst})
		}
		return append(prefix,
			MovSX{Src: src, Dst: Reg{Reg: R10, Width: W8}},
			Mov{Width: W8, Src: Reg{Reg: R10, Width: W8}, Dst: v.Dst},
		)

	case MovZX:
		// movzx here is a plain movl into a 32-bit register, relying on the
		// implicit zero-extension of the upper 32 bits; it has no
		// immediate-source form and cannot target memory either.
		var prefix []Instruction
		src := v.Src
		if _, ok := src.(Imm); ok {
			prefix = append(prefix, Mov{Width: W4, Src: src, Dst: Reg{Reg: R11, Width: W4}})
			src = Reg{Reg: R11, Width: W4}
		}
		if dst, ok := v.Dst.(Reg); ok {
			return append(prefix, MovZX{Src: src, Dst: dst})
		}
		return append(prefix,
			MovZX{Src: src, Dst: Reg{Reg: R10, Width: W4}},
			Mov{Width: W8, Src: Reg{Reg: R10, Width: W8}, Dst: v.Dst},
		)

	case Cmp:
		var out []Instruction
		lhs, rhs := v.Lhs, v.Rhs
		if v.Width == W8 && isImmOutOfInt32Range(rhs) {
			out = append(out, Mov{Width: W8, Src: rhs, Dst: Reg{Reg: R11, Width: W8}})
			rhs = Reg{Reg: R11, Width: W8}
		}
		if _, ok := lhs.(Imm); ok {
			out = append(out, Mov{Width: v.Width, Src: lhs, Dst: Reg{Reg: R10, Width: v.Width}})
			lhs = Reg{Reg: R10, Width: v.Width}
		} else if isMem(lhs) && isMem(rhs) {
			out = append(out, Mov{Width: v.Width, Src: rhs, Dst: Reg{Reg: R10, Width: v.Width}})
			rhs = Reg{Reg: R10, Width: v.Width}
		}
		return append(out, Cmp{Width: v.Width, Lhs: lhs, Rhs: rhs})

	case Push:
		if isImmOutOfInt32Range(v.Operand) {
			return []Instruction{
				Mov{Width: W8, Src: v.Operand, Dst: Reg{Reg: R10, Width: W8}},
				Push{Operand: Reg{Reg: R10, Width: W8}},
			}
		}
		return []Instruction{v}

	default:
		return []Instruction{instr}
	}
}

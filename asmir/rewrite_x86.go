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

// rewriteOperands rebuilds instr with every operand passed through f; used
// by Pass B (pseudo -> stack-offset substitution).
func rewriteOperands(instr Instruction, f func(Operand) Operand) Instruction {
	switch v := instr.(type) {
	case Mov:
		return Mov{Width: v.Width, Src: f(v.Src), Dst: f(v.Dst)}
	case MovSX:
		return MovSX{Src: f(v.Src), Dst: f(v.Dst)}
	case MovZX:
		return MovZX{Src: f(v.Src), Dst: f(v.Dst)}
	case Arith:
		return Arith{Op: v.Op, Width: v.Width, Src: f(v.Src), Dst: f(v.Dst)}
	case IMul:
		return IMul{Width: v.Width, Src: f(v.Src), Dst: f(v.Dst)}
	case IDiv:
		return IDiv{Width: v.Width, Divisor: f(v.Divisor)}
	case Div:
		return Div{Width: v.Width, Divisor: f(v.Divisor)}
	case Neg:
		return Neg{Width: v.Width, Operand: f(v.Operand)}
	case Not:
		return Not{Width: v.Width, Operand: f(v.Operand)}
	case Shift:
		return Shift{Op: v.Op, Width: v.Width, Count: f(v.Count), Dst: f(v.Dst)}
	case Cmp:
		return Cmp{Width: v.Width, Lhs: f(v.Lhs), Rhs: f(v.Rhs)}
	case SetCC:
		return SetCC{CC: v.CC, Dst: f(v.Dst)}
	case Push:
		return Push{Operand: f(v.Operand)}
	case Pop:
		return Pop{Operand: f(v.Operand)}
	default:
		return instr
	}
}

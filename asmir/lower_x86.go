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
	"tacc/tac"
	"tacc/utils"
)

// lowerState accumulates the instructions of one function during Pass A
// (template expansion).
type lowerState struct {
	globalTypes map[string]tac.Type
	fn          *tac.Function
	instrs      []Instruction
}

func (s *lowerState) emit(i Instruction) { s.instrs = append(s.instrs, i) }

// operand translates a TAC value into an assembly operand, distinguishing
// a function-local name (pseudo-register) from a global (RIP-relative data
// label) by membership in the function's own VarTypes map.
func (s *lowerState) operand(v tac.Value) (Operand, tac.Type) {
	switch val := v.(type) {
	case tac.Constant:
		return Imm{Value: val.Value}, val.Type
	case tac.Var:
		if t, ok := s.fn.VarTypes[val.Name]; ok {
			return Pseudo{Name: val.Name, Size: t.Size()}, t
		}
		t := s.globalTypes[val.Name]
		return Data{Label: val.Name}, t
	default:
		utils.Unreachable("unknown tac.Value")
		return nil, 0
	}
}

// Generate lowers a TAC program into assembly IR through all three
// sub-passes: template expansion, stack-slot assignment, and
// prologue/epilogue plus legalization.
func Generate(prog *tac.Program) *Program {
	globalTypes := make(map[string]tac.Type, len(prog.Globals))
	globals := make([]*Global, len(prog.Globals))
	for i, g := range prog.Globals {
		globalTypes[g.Name] = g.Type
		globals[i] = &Global{Name: g.Name, Size: g.Type.Size(), Init: g.Init, IsStatic: g.IsStatic}
	}

	functions := make([]*Function, len(prog.Functions))
	for i, fn := range prog.Functions {
		functions[i] = lowerFunction(fn, globalTypes)
	}

	asmProg := &Program{Globals: globals, Functions: functions}
	for _, fn := range asmProg.Functions {
		assignStackSlots(fn)
	}
	for _, fn := range asmProg.Functions {
		legalizeFunction(fn)
	}
	return asmProg
}

func lowerFunction(fn *tac.Function, globalTypes map[string]tac.Type) *Function {
	s := &lowerState{globalTypes: globalTypes, fn: fn}

	for i, pname := range fn.Params {
		pt := fn.VarTypes[pname]
		w := WidthOf(pt.Size())
		dst := Pseudo{Name: pname, Size: pt.Size()}
		if i < len(ArgRegs) {
			s.emit(Mov{Width: w, Src: Reg{Reg: ArgRegs[i], Width: w}, Dst: dst})
		} else {
			off := 16 + 8*(i-len(ArgRegs))
			s.emit(Mov{Width: w, Src: Stack{Offset: off}, Dst: dst})
		}
	}

	for _, instr := range fn.Body {
		s.lowerInstr(instr)
	}

	return &Function{Name: fn.Name, IsStatic: fn.IsStatic, Instrs: s.instrs}
}

func (s *lowerState) lowerInstr(instr tac.Instruction) {
	switch v := instr.(type) {
	case tac.Return:
		val, t := s.operand(v.Val)
		w := WidthOf(t.Size())
		s.emit(Mov{Width: w, Src: val, Dst: Reg{Reg: AX, Width: w}})
		s.emit(Ret{})

	case tac.Unary:
		s.lowerUnary(v)

	case tac.Binary:
		s.lowerBinary(v)

	case tac.Copy:
		s.lowerCopy(v)

	case tac.Jump:
		s.emit(Jmp{Target: v.Target})

	case tac.JumpIfZero:
		cond, t := s.operand(v.Cond)
		w := WidthOf(t.Size())
		s.emit(Cmp{Width: w, Lhs: cond, Rhs: Imm{Value: 0}})
		s.emit(JmpCC{CC: CCEqual, Target: v.Target})

	case tac.JumpIfNotZero:
		cond, t := s.operand(v.Cond)
		w := WidthOf(t.Size())
		s.emit(Cmp{Width: w, Lhs: cond, Rhs: Imm{Value: 0}})
		s.emit(JmpCC{CC: CCNotEqual, Target: v.Target})

	case tac.Label:
		s.emit(Label{Name: v.Name})

	case tac.Call:
		s.lowerCall(v)

	default:
		utils.Unreachable("unknown tac.Instruction")
	}
}

func (s *lowerState) lowerUnary(v tac.Unary) {
	src, _ := s.operand(v.Src)
	dst, dt := s.operand(v.Dst)
	w := WidthOf(dt.Size())
	switch v.Op {
	case tac.Negate:
		s.emit(Mov{Width: w, Src: src, Dst: dst})
		s.emit(Neg{Width: w, Operand: dst})
	case tac.Complement:
		s.emit(Mov{Width: w, Src: src, Dst: dst})
		s.emit(Not{Width: w, Operand: dst})
	case tac.LogicalNot:
		srcOperand, st := s.operand(v.Src)
		s.emit(Cmp{Width: WidthOf(st.Size()), Lhs: srcOperand, Rhs: Imm{Value: 0}})
		s.emit(Mov{Width: w, Src: Imm{Value: 0}, Dst: dst})
		s.emit(SetCC{CC: CCEqual, Dst: dst})
	}
}

func ccFor(op tac.BinaryOp) CC {
	switch op {
	case tac.Equal:
		return CCEqual
	case tac.NotEqual:
		return CCNotEqual
	case tac.LessThan:
		return CCLess
	case tac.LessThanU:
		return CCBelow
	case tac.LessThanOrEqual:
		return CCLessEqual
	case tac.LessThanOrEqualU:
		return CCBelowEqual
	case tac.GreaterThan:
		return CCGreater
	case tac.GreaterThanU:
		return CCAbove
	case tac.GreaterThanOrEqual:
		return CCGreaterEqual
	case tac.GreaterThanOrEqualU:
		return CCAboveEqual
	default:
		utils.Unreachable("not a comparison operator")
		return 0
	}
}

func (s *lowerState) lowerBinary(v tac.Binary) {
	lhs, lt := s.operand(v.Lhs)
	rhs, _ := s.operand(v.Rhs)
	dst, dt := s.operand(v.Dst)
	w := WidthOf(lt.Size())
	dw := WidthOf(dt.Size())

	arith := func(op ArithOp) {
		s.emit(Mov{Width: w, Src: lhs, Dst: dst})
		s.emit(Arith{Op: op, Width: w, Src: rhs, Dst: dst})
	}
	divmod := func(unsigned, wantRemainder bool) {
		s.emit(Mov{Width: w, Src: lhs, Dst: Reg{Reg: AX, Width: w}})
		result := Reg{Reg: AX, Width: w}
		if wantRemainder {
			result = Reg{Reg: DX, Width: w}
		}
		if unsigned {
			s.emit(Mov{Width: w, Src: Imm{Value: 0}, Dst: Reg{Reg: DX, Width: w}})
			s.emit(Div{Width: w, Divisor: rhs})
		} else {
			if w == W8 {
				s.emit(Cqo{})
			} else {
				s.emit(Cdq{})
			}
			s.emit(IDiv{Width: w, Divisor: rhs})
		}
		s.emit(Mov{Width: w, Src: result, Dst: dst})
	}
	shift := func(op ShiftOp) {
		var count Operand
		if imm, ok := rhs.(Imm); ok {
			count = imm
		} else {
			s.emit(Mov{Width: W4, Src: rhs, Dst: Reg{Reg: CX, Width: W4}})
			count = Reg{Reg: CX, Width: W4}
		}
		s.emit(Mov{Width: w, Src: lhs, Dst: dst})
		s.emit(Shift{Op: op, Width: w, Count: count, Dst: dst})
	}
	compare := func() {
		s.emit(Cmp{Width: w, Lhs: lhs, Rhs: rhs})
		s.emit(Mov{Width: dw, Src: Imm{Value: 0}, Dst: dst})
		s.emit(SetCC{CC: ccFor(v.Op), Dst: dst})
	}

	switch v.Op {
	case tac.Add:
		arith(ArithAdd)
	case tac.Subtract:
		arith(ArithSub)
	case tac.Multiply:
		s.emit(Mov{Width: w, Src: lhs, Dst: dst})
		s.emit(IMul{Width: w, Src: rhs, Dst: dst})
	case tac.BitwiseAnd:
		arith(ArithAnd)
	case tac.BitwiseOr:
		arith(ArithOr)
	case tac.BitwiseXor:
		arith(ArithXor)
	case tac.Divide:
		divmod(false, false)
	case tac.DivideU:
		divmod(true, false)
	case tac.Remainder:
		divmod(false, true)
	case tac.RemainderU:
		divmod(true, true)
	case tac.ShiftLeft:
		shift(ShiftLeft)
	case tac.ShiftRight:
		shift(ShiftArithRight)
	case tac.ShiftRightU:
		shift(ShiftLogicalRight)
	default:
		compare()
	}
}

// lowerCopy implements widening (sign/zero-extend) and narrowing moves;
// a same-width copy is a plain mov.
func (s *lowerState) lowerCopy(v tac.Copy) {
	src, st := s.operand(v.Src)
	dst, dt := s.operand(v.Dst)
	switch {
	case st.Size() == dt.Size():
		s.emit(Mov{Width: WidthOf(dt.Size()), Src: src, Dst: dst})
	case st.Size() < dt.Size():
		if st.IsSigned() {
			s.emit(MovSX{Src: src, Dst: dst})
		} else {
			s.emit(MovZX{Src: src, Dst: dst})
		}
	default:
		s.emit(Mov{Width: W4, Src: src, Dst: dst})
	}
}

// lowerCall implements System V AMD64 call lowering: register
// args first, stack args right-to-left with 16-byte alignment padding.
func (s *lowerState) lowerCall(v tac.Call) {
	nReg := len(v.Args)
	if nReg > len(ArgRegs) {
		nReg = len(ArgRegs)
	}
	stackArgs := v.Args[nReg:]

	pad := 0
	if len(stackArgs)%2 != 0 {
		pad = 8
		s.emit(Arith{Op: ArithSub, Width: W8, Src: Imm{Value: 8}, Dst: Reg{Reg: SP, Width: W8}})
	}

	for i := len(stackArgs) - 1; i >= 0; i-- {
		val, t := s.operand(stackArgs[i])
		if t.Size() == 8 {
			s.emit(Push{Operand: val})
			continue
		}
		if t.IsSigned() {
			s.emit(MovSX{Src: val, Dst: Reg{Reg: AX, Width: W8}})
		} else {
			// movzxl into %eax: the hardware zero-extends the upper 32 bits
			// of %rax for free, and movzx has no 64-bit-destination form.
			s.emit(MovZX{Src: val, Dst: Reg{Reg: AX, Width: W4}})
		}
		s.emit(Push{Operand: Reg{Reg: AX, Width: W8}})
	}

	for i := 0; i < nReg; i++ {
		val, t := s.operand(v.Args[i])
		w := WidthOf(t.Size())
		s.emit(Mov{Width: w, Src: val, Dst: Reg{Reg: ArgRegs[i], Width: w}})
	}

	s.emit(CallInstr{Name: v.Name})

	stackBytes := len(stackArgs)*8 + pad
	if stackBytes > 0 {
		s.emit(Arith{Op: ArithAdd, Width: W8, Src: Imm{Value: int64(stackBytes)}, Dst: Reg{Reg: SP, Width: W8}})
	}

	dst, dt := s.operand(v.Dst)
	w := WidthOf(dt.Size())
	s.emit(Mov{Width: w, Src: Reg{Reg: AX, Width: w}, Dst: dst})
}

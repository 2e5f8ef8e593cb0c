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

package asmir_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tacc/asmir"
	"tacc/ast"
	"tacc/lexer"
	"tacc/tac"
)

func generate(t *testing.T, src string) *asmir.Program {
	t.Helper()
	toks, err := lexer.Lex(src)
	require.NoError(t, err)
	prog, err := ast.NewParser(toks).Parse()
	require.NoError(t, err)
	tacProg, err := tac.Generate(prog)
	require.NoError(t, err)
	return asmir.Generate(tacProg)
}

func findFunction(prog *asmir.Program, name string) *asmir.Function {
	for _, fn := range prog.Functions {
		if fn.Name == name {
			return fn
		}
	}
	return nil
}

// every prologue allocates a 16-byte-aligned frame, and every ret is
// preceded by the matching epilogue.
func TestStackFrameDiscipline(t *testing.T) {
	prog := generate(t, `
		int main(void) {
			int a = 1;
			int b = 2;
			int c = 3;
			return a + b + c;
		}
	`)
	fn := findFunction(prog, "main")
	require.NotNil(t, fn)

	assert.Equal(t, 0, fn.StackSize%16, "frame size %d must be a multiple of 16", fn.StackSize)

	require.IsType(t, asmir.Push{}, fn.Instrs[0])
	require.IsType(t, asmir.Mov{}, fn.Instrs[1])

	for i, instr := range fn.Instrs {
		if _, ok := instr.(asmir.Ret); ok {
			require.GreaterOrEqual(t, i, 2)
			assert.IsType(t, asmir.Pop{}, fn.Instrs[i-1])
			assert.IsType(t, asmir.Mov{}, fn.Instrs[i-2])
		}
	}
}

// no instruction reads/writes two memory operands at once, no cmp carries
// an immediate in the destination position, no idiv/div divisor is an
// immediate, and no out-of-range 64-bit immediate reaches an illegal
// position.
func TestInstructionLegality(t *testing.T) {
	prog := generate(t, `
		int main(void) {
			long big = 5000000000;
			int a = 1;
			int b = 2;
			int q = a / b;
			int r = a % b;
			big = big + 4294967296;
			if (big == 5000000000) return 7;
			return (a < b) + big;
		}
	`)
	fn := findFunction(prog, "main")
	require.NotNil(t, fn)

	isMem := func(o asmir.Operand) bool {
		switch o.(type) {
		case asmir.Stack, asmir.Data:
			return true
		}
		return false
	}
	isBigImm := func(o asmir.Operand) bool {
		imm, ok := o.(asmir.Imm)
		return ok && (imm.Value > 1<<31-1 || imm.Value < -(1<<31))
	}

	for _, instr := range fn.Instrs {
		switch v := instr.(type) {
		case asmir.Mov:
			assert.False(t, isMem(v.Src) && isMem(v.Dst), "mem-mem mov: %s", v)
			assert.False(t, isBigImm(v.Src) && isMem(v.Dst), "64-bit immediate stored straight to memory: %s", v)
		case asmir.Arith:
			assert.False(t, isMem(v.Src) && isMem(v.Dst), "mem-mem arith: %s", v)
			assert.False(t, isBigImm(v.Src), "64-bit immediate arith source: %s", v)
		case asmir.Cmp:
			_, immLhs := v.Lhs.(asmir.Imm)
			assert.False(t, immLhs, "cmp with immediate destination operand: %s", v)
			assert.False(t, isMem(v.Lhs) && isMem(v.Rhs), "mem-mem cmp: %s", v)
			assert.False(t, isBigImm(v.Rhs), "64-bit immediate cmp source: %s", v)
		case asmir.IDiv:
			_, immDivisor := v.Divisor.(asmir.Imm)
			assert.False(t, immDivisor, "idiv with immediate divisor: %s", v)
		case asmir.Div:
			_, immDivisor := v.Divisor.(asmir.Imm)
			assert.False(t, immDivisor, "div with immediate divisor: %s", v)
		}
	}
}

// a call site pads the stack so that, at the point of the call instruction
// itself, rsp is 16-byte aligned.
func TestCallSiteAlignment(t *testing.T) {
	prog := generate(t, `
		int callee(int a, int b, int c, int d, int e, int f, int g, int h, int i) {
			return i;
		}
		int main(void) {
			return callee(1, 2, 3, 4, 5, 6, 7, 8, 9);
		}
	`)
	fn := findFunction(prog, "main")
	require.NotNil(t, fn)

	pushes := 0
	sawCall := false
	for _, instr := range fn.Instrs {
		switch instr.(type) {
		case asmir.Push:
			pushes++
		case asmir.CallInstr:
			sawCall = true
		}
		if sawCall {
			break
		}
	}
	require.True(t, sawCall)
	// The prologue's push of %rbp plus the 3 stack-arg pushes (7th, 8th,
	// 9th) make an even number of 8-byte pushes; the 8-byte padding for the
	// odd stack-arg count is a subq, not a push, and is not counted here.
	assert.Equal(t, 0, pushes%2, "odd number of pushes before call breaks 16-byte alignment: %d", pushes)
}

func TestOversizedLongImmediateIsLoadedThroughScratchRegister(t *testing.T) {
	prog := generate(t, `
		int main(void) {
			long big = 5000000000;
			return 0;
		}
	`)
	fn := findFunction(prog, "main")
	require.NotNil(t, fn)

	sawR10Load := false
	for _, instr := range fn.Instrs {
		mov, ok := instr.(asmir.Mov)
		if !ok {
			continue
		}
		if reg, ok := mov.Dst.(asmir.Reg); ok && reg.Reg == asmir.R10 {
			if _, ok := mov.Src.(asmir.Imm); ok {
				sawR10Load = true
			}
		}
	}
	assert.True(t, sawR10Load, "expected an out-of-range immediate to be staged through %%r10")
}

func TestLocalsGetDistinctStackSlotsAndAlignedFrame(t *testing.T) {
	prog := generate(t, `
		int main(void) {
			long x = 1;
			int y = 2;
			return 0;
		}
	`)
	fn := findFunction(prog, "main")
	require.NotNil(t, fn)

	offsets := map[int]bool{}
	for _, instr := range fn.Instrs {
		mov, ok := instr.(asmir.Mov)
		if !ok {
			continue
		}
		if s, ok := mov.Dst.(asmir.Stack); ok {
			offsets[s.Offset] = true
		}
	}
	assert.GreaterOrEqual(t, len(offsets), 2, "x and y should receive distinct stack slots")
	assert.Equal(t, 0, fn.StackSize%16)
}

// movslq/movzx-into-a-register-then-store is the only legal shape: neither
// instruction can target memory directly, and neither accepts an immediate
// source, so a legalized widening copy must never carry a memory operand in
// Dst nor an Imm in Src.
func TestWideningCopyIsLegalizedThroughScratchRegister(t *testing.T) {
	isMemOperand := func(o asmir.Operand) bool {
		switch o.(type) {
		case asmir.Stack, asmir.Data:
			return true
		}
		return false
	}

	check := func(t *testing.T, fn *asmir.Function) {
		sawWideningInstr := false
		for _, instr := range fn.Instrs {
			switch v := instr.(type) {
			case asmir.MovSX:
				sawWideningInstr = true
				assert.False(t, isMemOperand(v.Dst), "movslq must not target memory: %v", v)
				_, immSrc := v.Src.(asmir.Imm)
				assert.False(t, immSrc, "movslq has no immediate-source form: %v", v)
			case asmir.MovZX:
				sawWideningInstr = true
				assert.False(t, isMemOperand(v.Dst), "movzx-style widen must not target memory: %v", v)
				_, immSrc := v.Src.(asmir.Imm)
				assert.False(t, immSrc, "movzx-style widen has no immediate-source form: %v", v)
			}
		}
		assert.True(t, sawWideningInstr, "expected the widening assignment to lower to a MovSX/MovZX")
	}

	t.Run("signed int to long", func(t *testing.T) {
		prog := generate(t, `
			int main(void) {
				int a;
				long b = a;
				return 0;
			}
		`)
		fn := findFunction(prog, "main")
		require.NotNil(t, fn)
		check(t, fn)
	})

	t.Run("unsigned int to unsigned long", func(t *testing.T) {
		prog := generate(t, `
			int main(void) {
				unsigned u;
				unsigned long ul = u;
				return 0;
			}
		`)
		fn := findFunction(prog, "main")
		require.NotNil(t, fn)
		check(t, fn)
	})
}

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

// Package tac implements the three-address intermediate representation
// and the generator that lowers an AST into it.
package tac

import "fmt"

// Type is a TAC value's width/signedness: int/long are signed,
// uint/ulong are unsigned.
type Type int

const (
	Int Type = iota
	Long
	UInt
	ULong
)

func (t Type) String() string {
	switch t {
	case Int:
		return "int"
	case Long:
		return "long"
	case UInt:
		return "uint"
	case ULong:
		return "ulong"
	default:
		return "<invalid tac type>"
	}
}

// Size returns t's width in bytes.
func (t Type) Size() int {
	if t == Int || t == UInt {
		return 4
	}
	return 8
}

// IsSigned reports whether t is int or long.
func (t Type) IsSigned() bool { return t == Int || t == Long }

// -----------------------------------------------------------------------------
// Values

// Value is implemented by the three kinds of TAC value: constants, and named
// variables (locals, temporaries, and globals all share the Var node; which
// bucket a name falls into is a property of the symbol tables, not the IR).
type Value interface {
	fmt.Stringer
	valueNode()
}

type Constant struct {
	Value int64
	Type  Type
}

func (c Constant) valueNode()     {}
func (c Constant) String() string { return fmt.Sprintf("%d", c.Value) }

type Var struct {
	Name string
}

func (v Var) valueNode()     {}
func (v Var) String() string { return v.Name }

// -----------------------------------------------------------------------------
// Operators

type UnaryOp int

const (
	Negate UnaryOp = iota
	Complement
	LogicalNot
)

func (op UnaryOp) String() string {
	switch op {
	case Negate:
		return "negate"
	case Complement:
		return "complement"
	case LogicalNot:
		return "logicalNot"
	default:
		return "?unary?"
	}
}

// BinaryOp is the closed set of TAC binary operators, with
// signed/unsigned variants for divide, remainder, right-shift, and the four
// strict comparisons.
type BinaryOp int

const (
	Add BinaryOp = iota
	Subtract
	Multiply
	Divide
	DivideU
	Remainder
	RemainderU
	ShiftLeft
	ShiftRight
	ShiftRightU
	BitwiseAnd
	BitwiseOr
	BitwiseXor
	Equal
	NotEqual
	LessThan
	LessThanU
	LessThanOrEqual
	LessThanOrEqualU
	GreaterThan
	GreaterThanU
	GreaterThanOrEqual
	GreaterThanOrEqualU
)

func (op BinaryOp) String() string {
	names := map[BinaryOp]string{
		Add: "add", Subtract: "subtract", Multiply: "multiply",
		Divide: "divide", DivideU: "divideU",
		Remainder: "remainder", RemainderU: "remainderU",
		ShiftLeft: "shiftLeft", ShiftRight: "shiftRight", ShiftRightU: "shiftRightU",
		BitwiseAnd: "bitwiseAnd", BitwiseOr: "bitwiseOr", BitwiseXor: "bitwiseXor",
		Equal: "equal", NotEqual: "notEqual",
		LessThan: "lessThan", LessThanU: "lessThanU",
		LessThanOrEqual: "lessThanOrEqual", LessThanOrEqualU: "lessThanOrEqualU",
		GreaterThan: "greaterThan", GreaterThanU: "greaterThanU",
		GreaterThanOrEqual: "greaterThanOrEqual", GreaterThanOrEqualU: "greaterThanOrEqualU",
	}
	if s, ok := names[op]; ok {
		return s
	}
	return "?binop?"
}

// IsComparison reports whether op yields a 0/1 int result rather than a
// commonType-width arithmetic result.
func (op BinaryOp) IsComparison() bool {
	switch op {
	case Equal, NotEqual, LessThan, LessThanU, LessThanOrEqual, LessThanOrEqualU,
		GreaterThan, GreaterThanU, GreaterThanOrEqual, GreaterThanOrEqualU:
		return true
	}
	return false
}

// -----------------------------------------------------------------------------
// Instructions

// Instruction is implemented by every TAC instruction variant.
type Instruction interface {
	fmt.Stringer
	instructionNode()
}

type Return struct{ Val Value }

func (i Return) instructionNode() {}
func (i Return) String() string   { return fmt.Sprintf("return %s", i.Val) }

type Unary struct {
	Op       UnaryOp
	Src, Dst Value
}

func (i Unary) instructionNode() {}
func (i Unary) String() string   { return fmt.Sprintf("%s = %s %s", i.Dst, i.Op, i.Src) }

type Binary struct {
	Op       BinaryOp
	Lhs, Rhs Value
	Dst      Value
}

func (i Binary) instructionNode() {}
func (i Binary) String() string {
	return fmt.Sprintf("%s = %s %s %s", i.Dst, i.Lhs, i.Op, i.Rhs)
}

// Copy performs a widening (sign/zero-extend) or narrowing truncation when
// Src and Dst have different widths; a same-width Copy is a plain move.
type Copy struct{ Src, Dst Value }

func (i Copy) instructionNode() {}
func (i Copy) String() string   { return fmt.Sprintf("%s = %s", i.Dst, i.Src) }

type Jump struct{ Target string }

func (i Jump) instructionNode() {}
func (i Jump) String() string   { return fmt.Sprintf("jump %s", i.Target) }

type JumpIfZero struct {
	Cond   Value
	Target string
}

func (i JumpIfZero) instructionNode() {}
func (i JumpIfZero) String() string   { return fmt.Sprintf("jumpIfZero %s, %s", i.Cond, i.Target) }

type JumpIfNotZero struct {
	Cond   Value
	Target string
}

func (i JumpIfNotZero) instructionNode() {}
func (i JumpIfNotZero) String() string {
	return fmt.Sprintf("jumpIfNotZero %s, %s", i.Cond, i.Target)
}

type Label struct{ Name string }

func (i Label) instructionNode() {}
func (i Label) String() string   { return fmt.Sprintf("%s:", i.Name) }

type Call struct {
	Name string
	Args []Value
	Dst  Value
}

func (i Call) instructionNode() {}
func (i Call) String() string   { return fmt.Sprintf("%s = call %s(...)", i.Dst, i.Name) }

// -----------------------------------------------------------------------------
// Program

// Global is a file-scope variable: an optional compile-time-constant
// initializer, or nil for a zero-initialized (BSS-equivalent) global.
type Global struct {
	Name     string
	Type     Type
	Init     *int64
	IsStatic bool
}

// Function holds one function's lowered body plus the type of every local,
// parameter, and temporary it declares.
type Function struct {
	Name     string
	Params   []string
	VarTypes map[string]Type
	Body     []Instruction
	IsStatic bool
}

// Program is the full TAC translation unit.
type Program struct {
	Globals   []*Global
	Functions []*Function
}

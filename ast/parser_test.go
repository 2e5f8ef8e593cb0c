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

package ast

import (
	"testing"

	"tacc/lexer"
)

// parseExpr wraps src in a minimal function and returns the expression of
// its `return` statement.
func parseExpr(t *testing.T, src string) Expr {
	t.Helper()
	toks, err := lexer.Lex("int main(void) { return " + src + "; }")
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	prog, err := NewParser(toks).Parse()
	if err != nil {
		t.Fatalf("parse error for %q: %v", src, err)
	}
	fn := prog.Items[0].(*Function)
	ret := fn.Body.Items[0].(*ReturnStmt)
	return ret.Expr
}

// exprEqual is a structural comparison ignoring pointer identity; used to
// check parser determinism and shape expectations.
func exprEqual(a, b Expr) bool {
	switch av := a.(type) {
	case *ConstantExpr:
		bv, ok := b.(*ConstantExpr)
		return ok && av.Value == bv.Value && av.Type == bv.Type
	case *VariableExpr:
		bv, ok := b.(*VariableExpr)
		return ok && av.Name == bv.Name
	case *UnaryExpr:
		bv, ok := b.(*UnaryExpr)
		return ok && av.Op == bv.Op && exprEqual(av.Operand, bv.Operand)
	case *BinaryExpr:
		bv, ok := b.(*BinaryExpr)
		return ok && av.Op == bv.Op && exprEqual(av.Left, bv.Left) && exprEqual(av.Right, bv.Right)
	case *AssignExpr:
		bv, ok := b.(*AssignExpr)
		return ok && exprEqual(av.Left, bv.Left) && exprEqual(av.Right, bv.Right)
	case *ConditionalExpr:
		bv, ok := b.(*ConditionalExpr)
		return ok && exprEqual(av.Cond, bv.Cond) && exprEqual(av.Then, bv.Then) && exprEqual(av.Else, bv.Else)
	case *CallExpr:
		bv, ok := b.(*CallExpr)
		if !ok || av.Name != bv.Name || len(av.Args) != len(bv.Args) {
			return false
		}
		for i := range av.Args {
			if !exprEqual(av.Args[i], bv.Args[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func constant(v int64) *ConstantExpr { return &ConstantExpr{Value: v, Type: CInt} }
func variable(n string) *VariableExpr { return &VariableExpr{Name: n} }

func TestMultiplicationBindsTighterThanAddition(t *testing.T) {
	got := parseExpr(t, "1 + 2 * 3")
	want := &BinaryExpr{Op: Add, Left: constant(1), Right: &BinaryExpr{Op: Multiply, Left: constant(2), Right: constant(3)}}
	if !exprEqual(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestAdditionIsLeftAssociative(t *testing.T) {
	got := parseExpr(t, "1 - 2 - 3")
	want := &BinaryExpr{Op: Subtract, Left: &BinaryExpr{Op: Subtract, Left: constant(1), Right: constant(2)}, Right: constant(3)}
	if !exprEqual(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestAssignmentIsRightAssociative(t *testing.T) {
	got := parseExpr(t, "a = b = 3")
	want := &AssignExpr{Left: variable("a"), Right: &AssignExpr{Left: variable("b"), Right: constant(3)}}
	if !exprEqual(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestTernaryIsRightAssociative(t *testing.T) {
	got := parseExpr(t, "a ? b : c ? d : e")
	want := &ConditionalExpr{
		Cond: variable("a"), Then: variable("b"),
		Else: &ConditionalExpr{Cond: variable("c"), Then: variable("d"), Else: variable("e")},
	}
	if !exprEqual(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestCompoundAssignmentDesugarsToBinaryOp(t *testing.T) {
	got := parseExpr(t, "a += 1")
	want := &AssignExpr{Left: variable("a"), Right: &BinaryExpr{Op: Add, Left: variable("a"), Right: constant(1)}}
	if !exprEqual(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestLogicalOperatorsBindLooserThanComparisons(t *testing.T) {
	got := parseExpr(t, "a < b && c > d")
	want := &BinaryExpr{
		Op:   LogicalAnd,
		Left: &BinaryExpr{Op: LessThan, Left: variable("a"), Right: variable("b")},
		Right: &BinaryExpr{Op: GreaterThan, Left: variable("c"), Right: variable("d")},
	}
	if !exprEqual(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestUnaryPrecedesBinary(t *testing.T) {
	got := parseExpr(t, "-a + b")
	want := &BinaryExpr{Op: Add, Left: &UnaryExpr{Op: Negate, Operand: variable("a")}, Right: variable("b")}
	if !exprEqual(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestCallWithArguments(t *testing.T) {
	got := parseExpr(t, "f(1, a)")
	want := &CallExpr{Name: "f", Args: []Expr{constant(1), variable("a")}}
	if !exprEqual(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

// Parser determinism: parsing the same source twice
// produces structurally identical trees.
func TestParserDeterminism(t *testing.T) {
	src := "a = b + c * (d - 1) ? f(a, b) : -c"
	first := parseExpr(t, src)
	second := parseExpr(t, src)
	if !exprEqual(first, second) {
		t.Fatalf("non-deterministic parse:\n first=%#v\nsecond=%#v", first, second)
	}
}

func TestFullProgramWithControlFlow(t *testing.T) {
	src := `
		int sum(int n) {
			int total = 0;
			for (int i = 0; i < n; i = i + 1) {
				if (i % 2 == 0) {
					total += i;
				} else {
					continue;
				}
			}
			return total;
		}
	`
	toks, err := lexer.Lex(src)
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	prog, err := NewParser(toks).Parse()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if len(prog.Items) != 1 {
		t.Fatalf("want 1 top-level item, got %d", len(prog.Items))
	}
	fn, ok := prog.Items[0].(*Function)
	if !ok {
		t.Fatalf("want *Function, got %T", prog.Items[0])
	}
	if fn.Name != "sum" || len(fn.ParamNames) != 1 || fn.ParamNames[0] != "n" {
		t.Fatalf("unexpected function signature: %#v", fn)
	}
	if len(fn.Body.Items) != 3 {
		t.Fatalf("want 3 block items (decl, for, return), got %d", len(fn.Body.Items))
	}
	if _, ok := fn.Body.Items[1].(*ForStmt); !ok {
		t.Fatalf("want second block item to be *ForStmt, got %T", fn.Body.Items[1])
	}
}

func TestStaticFileScopeDeclaration(t *testing.T) {
	toks, err := lexer.Lex("static long counter = 10;")
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	prog, err := NewParser(toks).Parse()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	decl, ok := prog.Items[0].(*Declaration)
	if !ok || !decl.IsStatic || decl.Type != CLong || decl.Name != "counter" {
		t.Fatalf("unexpected declaration: %#v", decl)
	}
}

func TestUnsignedTypeSpecifierVariants(t *testing.T) {
	toks, err := lexer.Lex("unsigned x; unsigned int y; unsigned long z;")
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	prog, err := NewParser(toks).Parse()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	wantTypes := []CType{CUnsignedInt, CUnsignedInt, CUnsignedLong}
	for i, want := range wantTypes {
		decl := prog.Items[i].(*Declaration)
		if decl.Type != want {
			t.Fatalf("item %d: got %s, want %s", i, decl.Type, want)
		}
	}
}

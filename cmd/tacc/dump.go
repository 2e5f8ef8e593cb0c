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

package main

// Recursive pretty-printers for the `--print-*` IR dumps. Dumps observe the
// IRs but never shape them, so none of this logic lives in the core packages.

import (
	"fmt"
	"io"
	"strings"

	"tacc/asmir"
	"tacc/ast"
	"tacc/tac"
	"tacc/token"
)

func dumpTokens(w io.Writer, toks []token.Token) {
	for _, t := range toks {
		fmt.Fprintln(w, t.String())
	}
}

func dumpAST(w io.Writer, prog *ast.Program) {
	fmt.Fprintln(w, "Program")
	for _, item := range prog.Items {
		dumpTopLevel(w, item, 1)
	}
}

func indent(w io.Writer, depth int, format string, args ...interface{}) {
	fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", depth), fmt.Sprintf(format, args...))
}

func dumpTopLevel(w io.Writer, item ast.TopLevel, depth int) {
	switch v := item.(type) {
	case *ast.Function:
		indent(w, depth, "Function %s -> %s", v.Name, v.ReturnType)
		for i, pn := range v.ParamNames {
			indent(w, depth+1, "Param %s %s", v.ParamTypes[i], pn)
		}
		if v.Body != nil {
			dumpStmt(w, v.Body, depth+1)
		}
	case *ast.Declaration:
		dumpDecl(w, v, depth)
	}
}

func dumpDecl(w io.Writer, d *ast.Declaration, depth int) {
	static := ""
	if d.IsStatic {
		static = "static "
	}
	indent(w, depth, "Declaration %s%s %s", static, d.Type, d.Name)
	if d.Init != nil {
		dumpExpr(w, d.Init, depth+1)
	}
}

func dumpStmt(w io.Writer, s ast.Stmt, depth int) {
	switch v := s.(type) {
	case *ast.ReturnStmt:
		indent(w, depth, "Return")
		dumpExpr(w, v.Expr, depth+1)
	case *ast.ExprStmt:
		indent(w, depth, "ExprStmt")
		if v.Expr != nil {
			dumpExpr(w, v.Expr, depth+1)
		}
	case *ast.CompoundStmt:
		indent(w, depth, "Compound")
		for _, item := range v.Items {
			if decl, ok := item.(*ast.Declaration); ok {
				dumpDecl(w, decl, depth+1)
				continue
			}
			dumpStmt(w, item.(ast.Stmt), depth+1)
		}
	case *ast.IfStmt:
		indent(w, depth, "If")
		dumpExpr(w, v.Cond, depth+1)
		dumpStmt(w, v.Then, depth+1)
		if v.Else != nil {
			dumpStmt(w, v.Else, depth+1)
		}
	case *ast.WhileStmt:
		indent(w, depth, "While")
		dumpExpr(w, v.Cond, depth+1)
		dumpStmt(w, v.Body, depth+1)
	case *ast.DoWhileStmt:
		indent(w, depth, "DoWhile")
		dumpStmt(w, v.Body, depth+1)
		dumpExpr(w, v.Cond, depth+1)
	case *ast.ForStmt:
		indent(w, depth, "For")
		dumpForInit(w, v.Init, depth+1)
		if v.Cond != nil {
			dumpExpr(w, v.Cond, depth+1)
		}
		if v.Post != nil {
			dumpExpr(w, v.Post, depth+1)
		}
		dumpStmt(w, v.Body, depth+1)
	case *ast.BreakStmt:
		indent(w, depth, "Break")
	case *ast.ContinueStmt:
		indent(w, depth, "Continue")
	}
}

func dumpForInit(w io.Writer, init ast.ForInit, depth int) {
	switch v := init.(type) {
	case *ast.ForInitDecl:
		dumpDecl(w, v.Decl, depth)
	case *ast.ForInitExpr:
		if v.Expr != nil {
			dumpExpr(w, v.Expr, depth)
		}
	}
}

func dumpExpr(w io.Writer, e ast.Expr, depth int) {
	switch v := e.(type) {
	case *ast.ConstantExpr:
		indent(w, depth, "Constant(%d) : %s", v.Value, v.Type)
	case *ast.VariableExpr:
		indent(w, depth, "Variable(%s)", v.Name)
	case *ast.UnaryExpr:
		indent(w, depth, "Unary(%s)", v.Op)
		dumpExpr(w, v.Operand, depth+1)
	case *ast.BinaryExpr:
		indent(w, depth, "Binary(%s)", v.Op)
		dumpExpr(w, v.Left, depth+1)
		dumpExpr(w, v.Right, depth+1)
	case *ast.AssignExpr:
		indent(w, depth, "Assign")
		dumpExpr(w, v.Left, depth+1)
		dumpExpr(w, v.Right, depth+1)
	case *ast.ConditionalExpr:
		indent(w, depth, "Conditional")
		dumpExpr(w, v.Cond, depth+1)
		dumpExpr(w, v.Then, depth+1)
		dumpExpr(w, v.Else, depth+1)
	case *ast.CallExpr:
		indent(w, depth, "Call(%s)", v.Name)
		for _, a := range v.Args {
			dumpExpr(w, a, depth+1)
		}
	}
}

func dumpTacky(w io.Writer, prog *tac.Program) {
	for _, g := range prog.Globals {
		static := ""
		if g.IsStatic {
			static = "static "
		}
		val := "0"
		if g.Init != nil {
			val = fmt.Sprintf("%d", *g.Init)
		}
		fmt.Fprintf(w, "%sglobal %s %s = %s\n", static, g.Type, g.Name, val)
	}
	for _, fn := range prog.Functions {
		fmt.Fprintf(w, "function %s(%s):\n", fn.Name, strings.Join(fn.Params, ", "))
		for _, instr := range fn.Body {
			fmt.Fprintf(w, "  %s\n", instr)
		}
	}
}

func dumpAsmAST(w io.Writer, prog *asmir.Program) {
	for _, g := range prog.Globals {
		fmt.Fprintf(w, "global %s (%d bytes)\n", g.Name, g.Size)
	}
	for _, fn := range prog.Functions {
		fmt.Fprintf(w, "function %s (stack=%d):\n", fn.Name, fn.StackSize)
		for _, instr := range fn.Instrs {
			fmt.Fprintf(w, "  %s\n", instr)
		}
	}
}

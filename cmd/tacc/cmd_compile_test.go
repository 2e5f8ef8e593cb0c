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

import (
	"strings"
	"testing"

	"tacc/emit"
)

func TestRunEmitsAssemblyByDefault(t *testing.T) {
	c := &compileCmd{}
	var sb strings.Builder
	if err := c.run(&sb, `int main(void) { return 2; }`, emit.Linux); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := sb.String()
	if !strings.Contains(out, "main:") {
		t.Errorf("expected a main label in emitted assembly, got:\n%s", out)
	}
	if !strings.Contains(out, "ret") {
		t.Errorf("expected a ret instruction in emitted assembly, got:\n%s", out)
	}
}

func TestRunPrintTokensStopsEarly(t *testing.T) {
	c := &compileCmd{printTokens: true}
	var sb strings.Builder
	if err := c.run(&sb, `int main(void) { return 2; }`, emit.Linux); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := sb.String()
	if strings.Contains(out, ".text") {
		t.Errorf("--print-tokens should stop before emission, got:\n%s", out)
	}
	if !strings.Contains(out, "KwInt") && !strings.Contains(out, "int") {
		t.Errorf("expected a token dump containing the int keyword, got:\n%s", out)
	}
}

func TestRunPrintAstStopsEarly(t *testing.T) {
	c := &compileCmd{printAST: true}
	var sb strings.Builder
	if err := c.run(&sb, `int main(void) { return 2; }`, emit.Linux); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := sb.String()
	if !strings.Contains(out, "Function main") {
		t.Errorf("expected an AST dump naming the function, got:\n%s", out)
	}
	if strings.Contains(out, ".text") {
		t.Errorf("--print-ast should stop before emission, got:\n%s", out)
	}
}

func TestRunPrintTackyStopsEarly(t *testing.T) {
	c := &compileCmd{printTacky: true}
	var sb strings.Builder
	if err := c.run(&sb, `int main(void) { return 2; }`, emit.Linux); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := sb.String()
	if !strings.Contains(out, "return") {
		t.Errorf("expected a TAC dump containing a return instruction, got:\n%s", out)
	}
}

func TestRunPrintAsmAstStopsEarly(t *testing.T) {
	c := &compileCmd{printAsmAST: true}
	var sb strings.Builder
	if err := c.run(&sb, `int main(void) { return 2; }`, emit.Linux); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := sb.String()
	if !strings.Contains(out, "function main") {
		t.Errorf("expected an assembly-IR dump naming the function, got:\n%s", out)
	}
	if strings.Contains(out, ".globl") {
		t.Errorf("--print-asm-ast should stop before textual emission, got:\n%s", out)
	}
}

func TestRunSurfacesSemanticErrors(t *testing.T) {
	c := &compileCmd{}
	var sb strings.Builder
	err := c.run(&sb, `int main(void) { return undeclared; }`, emit.Linux)
	if err == nil {
		t.Fatal("expected an undeclaredVariable error")
	}
	if !strings.Contains(err.Error(), "undeclaredVariable") {
		t.Errorf("expected undeclaredVariable in error, got: %v", err)
	}
}

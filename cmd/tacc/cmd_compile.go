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
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"

	"tacc/asmir"
	"tacc/ast"
	"tacc/config"
	"tacc/diag"
	"tacc/emit"
	"tacc/lexer"
	"tacc/tac"
)

// compileCmd is the driver's single real mode: run the four-pass pipeline
// over one preprocessed source file (or stdin), stopping early to dump an
// IR when one of the `--print-*` flags is set.
type compileCmd struct {
	printTokens bool
	printAST    bool
	printTacky  bool
	printAsmAST bool
	osFlag      string
	configPath  string
}

func (*compileCmd) Name() string     { return "compile" }
func (*compileCmd) Synopsis() string { return "compile a preprocessed C source file to x86-64 assembly" }
func (*compileCmd) Usage() string {
	return `compile [--print-tokens|--print-ast|--print-tacky|--print-asm-ast] [--os=linux|darwin] <file|->:
  Lower a single preprocessed C source file to AT&T-syntax x86-64 assembly
  on stdout. Pass "-" to read the source from stdin.
`
}

func (c *compileCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.printTokens, "print-tokens", false, "dump the token sequence and stop")
	f.BoolVar(&c.printAST, "print-ast", false, "dump the parsed AST and stop")
	f.BoolVar(&c.printTacky, "print-tacky", false, "dump the generated TAC and stop")
	f.BoolVar(&c.printAsmAST, "print-asm-ast", false, "dump the assembly IR and stop")
	f.StringVar(&c.osFlag, "os", "", "target OS for assembly conventions: linux or darwin (default: config file, else linux)")
	f.StringVar(&c.configPath, "config", "tacc.toml", "path to an optional tacc.toml")
}

func (c *compileCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "compile: exactly one source file argument is required (or \"-\" for stdin)")
		return subcommands.ExitUsageError
	}

	src, err := readSource(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "compile: %s\n", err)
		return subcommands.ExitFailure
	}

	cfg, err := config.Load(c.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "compile: %s\n", err)
		return subcommands.ExitFailure
	}
	targetOS := cfg.Target.OS
	if c.osFlag != "" {
		targetOS = c.osFlag
	}

	if err := c.run(os.Stdout, src, emit.ParseOS(targetOS)); err != nil {
		var dErr *diag.Error
		if errors.As(err, &dErr) {
			fmt.Fprintln(os.Stderr, dErr)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// run executes the four-pass pipeline, stopping after the pass
// named by a `--print-*` flag.
func (c *compileCmd) run(out io.Writer, src string, target emit.OS) error {
	toks, err := lexer.Lex(src)
	if err != nil {
		return err
	}
	if c.printTokens {
		dumpTokens(out, toks)
		return nil
	}

	prog, err := ast.NewParser(toks).Parse()
	if err != nil {
		return err
	}
	if c.printAST {
		dumpAST(out, prog)
		return nil
	}

	tacProg, err := tac.Generate(prog)
	if err != nil {
		return err
	}
	if c.printTacky {
		dumpTacky(out, tacProg)
		return nil
	}

	asmProg := asmir.Generate(tacProg)
	if c.printAsmAST {
		dumpAsmAST(out, asmProg)
		return nil
	}

	return emit.Emit(out, asmProg, target)
}

// readSource reads the whole compilation unit from path, or from stdin when
// path is "-".
func readSource(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

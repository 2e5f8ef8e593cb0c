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

// Package diag defines the error taxonomy shared by every compiler pass:
// lexical, syntactic, semantic and internal errors, each carrying the
// stage prefix the driver prints on the error stream.
package diag

import (
	"fmt"

	"github.com/pkg/errors"
)

// Stage names one of the four error buckets a pass can fail with.
type Stage int

const (
	Lexical Stage = iota
	Syntactic
	Semantic
	Internal
)

func (s Stage) String() string {
	switch s {
	case Lexical:
		return "Lexer Error"
	case Syntactic:
		return "Parser Error"
	case Semantic:
		return "Semantic Error"
	case Internal:
		return "Internal Error"
	default:
		return "Error"
	}
}

// Error wraps a pass failure with the stage it occurred in. Passes below the
// TAC generator produce at most one of these per call; the TAC generator
// reports at most one per compilation.
type Error struct {
	Stage Stage
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Stage, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds a stage error from a format string.
func New(stage Stage, format string, args ...interface{}) error {
	return &Error{Stage: stage, Err: errors.Errorf(format, args...)}
}

// Wrap annotates an existing error with a stage and message, preserving the
// wrapped chain for errors.Is/errors.As.
func Wrap(stage Stage, err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &Error{Stage: stage, Err: errors.Wrapf(err, format, args...)}
}

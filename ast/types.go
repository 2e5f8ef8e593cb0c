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

// CType is the compiler's closed type system: no float, struct,
// union, enum, typedef, array, or function-pointer types.
type CType int

const (
	CInt CType = iota
	CLong
	CUnsignedInt
	CUnsignedLong
)

func (t CType) String() string {
	switch t {
	case CInt:
		return "int"
	case CLong:
		return "long"
	case CUnsignedInt:
		return "unsigned int"
	case CUnsignedLong:
		return "unsigned long"
	default:
		return "<invalid type>"
	}
}

// IsSigned reports whether t is a signed integer type.
func (t CType) IsSigned() bool { return t == CInt || t == CLong }

// Size returns t's width in bytes: int/unsigned int are 4B, long/unsigned
// long are 8B.
func (t CType) Size() int {
	switch t {
	case CInt, CUnsignedInt:
		return 4
	case CLong, CUnsignedLong:
		return 8
	default:
		return 0
	}
}

// rank orders types for the usual arithmetic conversions:
// ulong > long > uint > int.
func (t CType) rank() int {
	switch t {
	case CUnsignedLong:
		return 3
	case CLong:
		return 2
	case CUnsignedInt:
		return 1
	default:
		return 0
	}
}

// CommonType computes the common type of a and b under C's usual arithmetic
// conversions: the type with the higher priority in
// ulong > long > uint > int wins outright, regardless of the other
// operand's size or signedness.
func CommonType(a, b CType) CType {
	if a.rank() >= b.rank() {
		return a
	}
	return b
}

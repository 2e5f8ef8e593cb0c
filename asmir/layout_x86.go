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

import "tacc/utils"

// assignStackSlots is Pass B: every pseudo-register gets a
// stack slot sized by its own type, allocated in first-use order with a
// running offset from the frame pointer. Each slot is aligned to its own
// size so an 8-byte pseudo never lands on a 4-byte boundary.
func assignStackSlots(fn *Function) {
	offsets := map[string]int{}
	cur := 0

	replace := func(o Operand) Operand {
		p, ok := o.(Pseudo)
		if !ok {
			return o
		}
		off, seen := offsets[p.Name]
		if !seen {
			cur = -utils.AlignUp(-cur+p.Size, p.Size)
			off = cur
			offsets[p.Name] = off
		}
		return Stack{Offset: off}
	}

	for i, instr := range fn.Instrs {
		fn.Instrs[i] = rewriteOperands(instr, replace)
	}
	fn.StackSize = -cur
}

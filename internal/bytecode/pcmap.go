// Copyright 2024 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package bytecode

import "fmt"

// TruncatedError is returned when a PUSH's immediates run past the end of
// the bytecode (spec §4.1, error kind BytecodeTruncated).
type TruncatedError struct {
	PC   int
	Need int
	Have int
}

func (e *TruncatedError) Error() string {
	return fmt.Sprintf("bytecode: truncated PUSH at pc %d: needs %d immediate byte(s), only %d remain", e.PC, e.Need, e.Have)
}

// PCToIdx maps each opcode-start program counter to its 0-based sequential
// instruction index.
type PCToIdx map[uint64]int

// BuildPCToIdx walks code left to right, recording one entry per opcode and
// skipping PUSHn immediates as a unit. Instruction indices are contiguous
// from 0, matching source-map entry order one-for-one (spec §4.1, §8).
func BuildPCToIdx(code []byte) (PCToIdx, error) {
	m := make(PCToIdx, len(code))
	idx := 0
	for pc := 0; pc < len(code); idx++ {
		op := OpCode(code[pc])
		m[uint64(pc)] = idx
		if op.IsPush() {
			n := op.PushSize()
			if pc+1+n > len(code) {
				return nil, &TruncatedError{PC: pc, Need: n, Have: len(code) - pc - 1}
			}
			pc += 1 + n
		} else {
			pc++
		}
	}
	return m, nil
}

// InstructionCount returns the number of instructions the mapping covers,
// used to cross-check against the decoded source map's entry count
// (spec §8, "Source-map length").
func (m PCToIdx) InstructionCount() int {
	return len(m)
}

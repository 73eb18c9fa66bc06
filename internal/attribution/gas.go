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

package attribution

import "github.com/solmap/solmap/internal/bytecode"

// GasCost normalizes a trace step's reported gas cost per spec §4.7: a
// negative gasCost is a known trace-provider quirk on the terminal
// opcodes (RETURN/REVERT/STOP) and is reported as 0 there; everywhere
// else a negative value is surfaced as-is and propagates into totals
// (error kind NegativeGasCostOnNonTerminal, spec §7 — not generalized
// beyond the documented terminal-opcode compensation, spec §9).
func GasCost(op bytecode.OpCode, gasCost int64) int64 {
	if gasCost < 0 && bytecode.IsTerminal(op) {
		return 0
	}
	return gasCost
}

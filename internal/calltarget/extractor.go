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

// Package calltarget resolves the address and construction-ness of a
// CALL-family or CREATE-family trace step from its stack contents,
// including CREATE's forward-scan for the address the EVM pushes back
// once the nested construction returns (spec §4.5).
package calltarget

import (
	"github.com/holiman/uint256"
	"github.com/solmap/solmap/internal/bytecode"
	"github.com/solmap/solmap/internal/hexutil"
)

// Log is the minimal shape of a trace step this package needs; callers
// pass their own trace-log type in via this narrow view.
type Log struct {
	Op    bytecode.OpCode
	Depth int
	Stack []uint256.Int // bottom-to-top; last element is the top
}

// Target is the result of resolving a CALL/CREATE-family instruction.
type Target struct {
	AddressHexStr      string // "" when unresolved
	IsConstructionCall bool
}

// Resolve dispatches on logs[i].Op per spec §4.5. logs is the full trace,
// i the index of the instruction being classified; Resolve only ever reads
// logs[i:].
func Resolve(logs []Log, i int) Target {
	log := logs[i]
	switch {
	case bytecode.IsCallFamily(log.Op):
		return Target{AddressHexStr: addressFromStack(log.Stack, 1), IsConstructionCall: false}
	case bytecode.IsCreateFamily(log.Op):
		return Target{AddressHexStr: scanForCreateAddress(logs, i), IsConstructionCall: true}
	default:
		return Target{}
	}
}

// addressFromStack reads the stack word `fromTop` positions below the top
// (0 = top) and narrows it to an address. CALL/CALLCODE/DELEGATECALL/
// STATICCALL all put gas on top and the target address second-from-top.
func addressFromStack(stack []uint256.Int, fromTop int) string {
	idx := len(stack) - 1 - fromTop
	if idx < 0 || idx >= len(stack) {
		return ""
	}
	word := stack[idx]
	b := word.Bytes20()
	return hexutil.AddressFromBytes(b[:])
}

// scanForCreateAddress finds the first log after i whose depth returns to
// logs[i].Depth (the caller's depth) and reads its stack top — the address
// CREATE/CREATE2 pushed once the nested construction concluded (spec §4.5).
// Returns "" if the trace never re-emerges (truncated trace).
func scanForCreateAddress(logs []Log, i int) string {
	depth := logs[i].Depth
	for j := i + 1; j < len(logs); j++ {
		if logs[j].Depth == depth {
			return addressFromStack(logs[j].Stack, 0)
		}
	}
	return ""
}

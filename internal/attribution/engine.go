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

// Package attribution replays a debug_traceTransaction-style struct-log
// trace against a virtual call stack, folding every step's gas cost into
// the (contract, source, line) it belongs to (spec §4.6).
package attribution

import (
	"context"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/solmap/solmap/internal/bytecode"
	"github.com/solmap/solmap/internal/calltarget"
	"github.com/solmap/solmap/internal/contract"
	"github.com/solmap/solmap/internal/source"
)

// Log is one struct-log trace step, the engine's view of whatever the chain
// collaborator decoded from debug_traceTransaction (spec §3).
type Log struct {
	Pc      uint64
	Op      bytecode.OpCode
	Gas     int64
	GasCost int64
	Depth   int
	Stack   []uint256.Int // bottom-to-top
}

func (l Log) asTarget() calltarget.Log {
	return calltarget.Log{Op: l.Op, Depth: l.Depth, Stack: l.Stack}
}

// TraceTruncatedError is returned when a CALL-family instruction resolves a
// live target address but the trace ends before the next step, leaving it
// undecidable whether the call was actually entered (spec Open Question:
// resolved as fatal rather than best-effort, since guessing either way can
// silently misattribute an unbounded amount of gas).
type TraceTruncatedError struct {
	Index int
	Op    bytecode.OpCode
}

func (e *TraceTruncatedError) Error() string {
	return fmt.Sprintf("attribution: trace truncated after %s at step %d with a live call target", e.Op, e.Index)
}

// Engine replays a single transaction's trace against a Contract/Source
// registry pair, mutating their gas accounting in place (spec §4.6).
type Engine struct {
	contracts *contract.Registry
	sources   *source.Registry
	stack     []*CallStackItem
}

// NewEngine constructs an Engine bound to the given registries. A single
// Engine is meant to replay exactly one transaction (spec §5 "one run per
// transaction").
func NewEngine(contracts *contract.Registry, sources *source.Registry) *Engine {
	return &Engine{contracts: contracts, sources: sources}
}

// Run replays logs against the entry contract at entryAddr, which is the
// transaction's `to` for a call or the receipt's `contractAddress` for a
// contract-creation transaction (isEntryConstruction distinguishes the two,
// selecting whether the entry frame executes deployed or constructor code).
func (e *Engine) Run(ctx context.Context, entryAddr string, isEntryConstruction bool, logs []Log) error {
	if len(logs) == 0 {
		return nil
	}

	entry, err := e.contracts.GetContractWithAddr(ctx, entryAddr)
	if err != nil {
		return err
	}
	e.stack = []*CallStackItem{{
		Contract:           entry,
		IsConstructionCall: isEntryConstruction,
		GasBefore:          logs[0].Gas,
	}}
	bottomDepth := logs[0].Depth

	ctLogs := make([]calltarget.Log, len(logs))
	for i, l := range logs {
		ctLogs[i] = l.asTarget()
	}

	for i, step := range logs {
		e.unwind(bottomDepth, step, i, logs)

		top := e.top()
		src, line, synthetic := e.resolveSource(top, step.Pc)

		target := calltarget.Resolve(ctLogs, i)
		if target.AddressHexStr != "" {
			if i+1 >= len(logs) {
				return &TraceTruncatedError{Index: i, Op: step.Op}
			}
			if logs[i+1].Depth > step.Depth {
				top.recordOutgoingCall(src, line, step.Gas)
				callee, err := e.contracts.GetContractWithAddr(ctx, target.AddressHexStr)
				if err != nil {
					return err
				}
				e.stack = append(e.stack, &CallStackItem{
					Contract:           callee,
					IsConstructionCall: target.IsConstructionCall,
					GasBefore:          logs[i+1].Gas,
				})
				continue
			}
			// Target resolved but the call never actually entered (e.g. a
			// STATICCALL into an address with no code): charge it like any
			// other instruction below.
		}

		if synthetic {
			top.Contract.SynthGasCost += GasCost(step.Op, step.GasCost)
		} else {
			src.AddGas(line, GasCost(step.Op, step.GasCost))
		}
	}

	last := logs[len(logs)-1]
	entryFrame := e.stack[0]
	entryFrame.Contract.TotalGasCost += entryFrame.GasBefore - last.Gas + GasCost(last.Op, last.GasCost)
	return nil
}

func (e *Engine) top() *CallStackItem {
	return e.stack[len(e.stack)-1]
}

// unwind pops every frame that step's depth indicates has already returned,
// folding each popped frame's total cost into its own contract and its
// caller's outgoing-call line (spec §4.6 step 1).
func (e *Engine) unwind(bottomDepth int, step Log, i int, logs []Log) {
	for step.Depth-bottomDepth < len(e.stack)-1 {
		prevLog := logs[i-1]
		popped := e.stack[len(e.stack)-1]
		e.stack = e.stack[:len(e.stack)-1]

		popped.Contract.TotalGasCost += popped.GasBefore - prevLog.Gas + GasCost(prevLog.Op, prevLog.GasCost)

		caller := e.top()
		if caller.Awaiting() {
			completed := caller.GasBeforeOutgoingCall - step.Gas
			caller.OutgoingCallSource.AddGas(caller.OutgoingCallLine, completed)
			caller.OutgoingCallSource.MarkCall(caller.OutgoingCallLine)
		} else {
			// The call was issued from an instruction with no source line;
			// its cost goes to the caller contract's synthetic bucket.
			caller.Contract.SynthGasCost += caller.GasBeforeOutgoingCall - step.Gas
		}
		caller.clearOutgoingCall()
	}
}

// resolveSource maps step's program counter to a (Source, line) pair via
// the executing frame's PC-to-instruction-index table and source map,
// selecting the constructor tables when the frame is mid-construction
// (spec §4.6 step 2). synthetic is true whenever no line can be attributed
// — a compiler-generated instruction, an unmatched contract, or a
// truncated/malformed bytecode map — and the caller should fold the cost
// into the contract's synthetic-gas bucket instead.
func (e *Engine) resolveSource(item *CallStackItem, pc uint64) (src *source.Source, line int, synthetic bool) {
	pcToIdx := item.Contract.PCToIdx
	srcMap := item.Contract.SourceMap
	if item.IsConstructionCall {
		pcToIdx = item.Contract.ConstructionPCToIdx
		srcMap = item.Contract.ConstructorSourceMap
	}
	if pcToIdx == nil {
		return nil, -1, true
	}
	idx, ok := pcToIdx[pc]
	if !ok || idx >= len(srcMap) {
		return nil, -1, true
	}
	entry := srcMap[idx]
	if entry.IsSynthetic() {
		return nil, -1, true
	}

	s, ok := item.Contract.SourceForID(e.sources, entry.F)
	if !ok {
		return nil, -1, true
	}
	return s, s.LineForOffset(entry.S), false
}

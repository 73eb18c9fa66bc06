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

import (
	"github.com/solmap/solmap/internal/contract"
	"github.com/solmap/solmap/internal/source"
)

// CallStackItem is one active frame of the virtual call stack the engine
// maintains while replaying a trace (spec §3). Index 0 of the engine's
// stack is always the entry frame.
type CallStackItem struct {
	Contract           *contract.Contract
	IsConstructionCall bool

	GasBefore int64 // gas remaining at frame entry

	// OutgoingCallSource/OutgoingCallLine/GasBeforeOutgoingCall are set
	// while this frame is waiting on a nested call to return (spec §3
	// invariant). OutgoingCallSource is nil when not waiting, and also when
	// the outgoing call was issued from an instruction with no source line;
	// GasBeforeOutgoingCall is recorded in both waiting cases.
	OutgoingCallSource    *source.Source
	OutgoingCallLine      int
	GasBeforeOutgoingCall int64
}

// Awaiting reports whether this frame is blocked on a nested call issued
// from an instruction with a source line (state AwaitingReturn in spec
// §4.6's per-frame state machine). A call issued from an instruction with
// no source line leaves Awaiting false.
func (c *CallStackItem) Awaiting() bool {
	return c.OutgoingCallSource != nil
}

// recordOutgoingCall transitions the frame into AwaitingReturn.
func (c *CallStackItem) recordOutgoingCall(src *source.Source, line int, gasBefore int64) {
	c.OutgoingCallSource = src
	c.OutgoingCallLine = line
	c.GasBeforeOutgoingCall = gasBefore
}

// clearOutgoingCall transitions the frame back to Running once its nested
// call has been reconciled.
func (c *CallStackItem) clearOutgoingCall() {
	c.OutgoingCallSource = nil
	c.OutgoingCallLine = 0
	c.GasBeforeOutgoingCall = 0
}

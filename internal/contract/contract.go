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

// Package contract caches, by address, the deployed and constructor
// bytecode of every contract a trace touches, matched against the
// compiler-output bundle by exact bytecode equality.
package contract

import (
	"github.com/solmap/solmap/internal/bytecode"
	"github.com/solmap/solmap/internal/source"
	"github.com/solmap/solmap/internal/sourcemap"
)

// Contract is the per-address cache entry described in spec §3.
type Contract struct {
	AddressHexStr string

	CodeHexStr             string // deployed bytecode; empty if the address has none
	ConstructionCodeHexStr string // constructor bytecode; empty until matched

	Name     string // defining contract's identifier from the bundle
	FileName string

	// SourcesByID is discovered incrementally as this contract's
	// instructions reference source ids during replay (spec §3).
	SourcesByID map[int]*source.Source

	SourceMap            []sourcemap.Entry
	ConstructorSourceMap []sourcemap.Entry

	PCToIdx             bytecode.PCToIdx
	ConstructionPCToIdx bytecode.PCToIdx

	TotalGasCost int64
	SynthGasCost int64

	// matched is true once this contract's deployed bytecode has been
	// found in the compiler bundle; false means attribution for frames
	// executing here yields no (source, line) (spec §4.4 "on miss").
	matched bool
}

func newContract(addr string) *Contract {
	return &Contract{
		AddressHexStr: addr,
		SourcesByID:   make(map[int]*source.Source),
	}
}

// Matched reports whether this contract's bytecode was found in the
// compiler bundle.
func (c *Contract) Matched() bool { return c.matched }

// HasCode reports whether a non-empty deployed bytecode was fetched for
// this address (spec §7 CodeEmptyAtAddress).
func (c *Contract) HasCode() bool { return c.CodeHexStr != "" }

// SourceForID registers (on first sight) and returns the Source id
// resolves to within reg, recording it into SourcesByID so callers can
// enumerate every source this contract's execution touched (spec §3,
// §8 scenario 6).
func (c *Contract) SourceForID(reg *source.Registry, id int) (*source.Source, bool) {
	if s, ok := c.SourcesByID[id]; ok {
		return s, true
	}
	s, ok := reg.ByID(id)
	if !ok {
		return nil, false
	}
	c.SourcesByID[id] = s
	return s, true
}

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

package contract

import (
	"context"
	"fmt"

	"github.com/solmap/solmap/internal/bytecode"
	"github.com/solmap/solmap/internal/hexutil"
	"github.com/solmap/solmap/internal/sourcemap"
	"github.com/solmap/solmap/log"
)

func buildMap(codeHex string) (bytecode.PCToIdx, error) {
	code, err := hexutil.Decode(codeHex)
	if err != nil {
		return nil, err
	}
	return bytecode.BuildPCToIdx(code)
}

// Chain is the chain-RPC collaborator's code-fetching operation (spec §6).
type Chain interface {
	GetCode(ctx context.Context, addressHexStr string) (string, error)
}

// CompiledUnit is one contract entry out of the compiler bundle, matched by
// exact deployed-bytecode equality (spec §4.4).
type CompiledUnit struct {
	Name                    string
	FileName                string
	DeployedBytecodeHex     string
	DeployedSourceMap       string
	ConstructionBytecodeHex string
	ConstructionSourceMap   string
}

// Bundle looks up a compiled unit by its exact deployed bytecode hex
// string, case-sensitive (spec §4.4 "Why exact-string matching").
type Bundle interface {
	FindByDeployedBytecode(codeHex string) (CompiledUnit, bool)
}

// Registry is the address-keyed Contract cache described in spec §4.4.
type Registry struct {
	chain  Chain
	bundle Bundle
	cache  map[string]*Contract
}

func NewRegistry(chain Chain, bundle Bundle) *Registry {
	return &Registry{chain: chain, bundle: bundle, cache: make(map[string]*Contract)}
}

// GetContractWithAddr returns the cached Contract for addr, creating and
// caching a skeleton *before* any I/O so a contract that calls itself
// resolves to the same (still-being-built) entry instead of recursing
// forever (spec §4.4).
func (r *Registry) GetContractWithAddr(ctx context.Context, addr string) (*Contract, error) {
	norm := hexutil.NormalizeAddress(addr)
	if c, ok := r.cache[norm]; ok {
		return c, nil
	}
	c := newContract(norm)
	r.cache[norm] = c

	code, err := r.chain.GetCode(ctx, norm)
	if err != nil {
		return nil, fmt.Errorf("contract: fetching code for %s: %w", norm, err)
	}
	code = hexutil.TrimPrefix(code)
	if code == "" {
		log.Warn("no code at address", "addr", norm)
		return c, nil
	}
	c.CodeHexStr = code

	pcToIdx, err := buildMap(code)
	if err != nil {
		log.Error("bytecode truncated, contract left unattributed", "addr", norm, "err", err)
		return c, nil
	}
	c.PCToIdx = pcToIdx

	unit, ok := r.bundle.FindByDeployedBytecode(code)
	if !ok {
		log.Warn("no bundle entry for deployed bytecode", "addr", norm)
		return c, nil
	}
	c.Name = unit.Name
	c.FileName = unit.FileName
	c.ConstructionCodeHexStr = hexutil.TrimPrefix(unit.ConstructionBytecodeHex)

	if c.ConstructionCodeHexStr != "" {
		if m, err := buildMap(c.ConstructionCodeHexStr); err != nil {
			log.Error("constructor bytecode truncated", "addr", norm, "err", err)
		} else {
			c.ConstructionPCToIdx = m
		}
	}

	deployedEntries, err := sourcemap.Decode(unit.DeployedSourceMap)
	if err != nil {
		log.Error("deployed source map malformed", "addr", norm, "err", err)
	} else {
		c.SourceMap = deployedEntries
	}
	constructorEntries, err := sourcemap.Decode(unit.ConstructionSourceMap)
	if err != nil {
		log.Error("constructor source map malformed", "addr", norm, "err", err)
	} else {
		c.ConstructorSourceMap = constructorEntries
	}

	c.matched = true
	return c, nil
}

// Contracts returns every contract touched so far, for final report
// assembly.
func (r *Registry) Contracts() map[string]*Contract {
	return r.cache
}

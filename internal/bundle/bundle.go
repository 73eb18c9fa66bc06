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

// Package bundle loads a solc-family Standard JSON compiler output document
// and exposes the two indices internal/source and internal/contract need:
// numeric source id to file name, and deployed bytecode to compiled unit.
package bundle

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/solmap/solmap/internal/contract"
	"github.com/solmap/solmap/internal/hexutil"
)

// sourceEntry is one entry of the bundle's `sources` index (spec §6).
type sourceEntry struct {
	ID int `json:"id"`
}

// compiledUnit is one entry of the bundle's `contracts[fileName][name]`
// table (spec §6).
type compiledUnit struct {
	EVM struct {
		DeployedBytecode struct {
			Object    string `json:"object"`
			SourceMap string `json:"sourceMap"`
		} `json:"deployedBytecode"`
		Bytecode struct {
			Object    string `json:"object"`
			SourceMap string `json:"sourceMap"`
		} `json:"bytecode"`
	} `json:"evm"`
}

// raw is the on-disk document shape.
type raw struct {
	Sources   map[string]sourceEntry             `json:"sources"`
	Contracts map[string]map[string]compiledUnit `json:"contracts"`
}

// Bundle is the loaded compiler output, pre-indexed for the O(1) lookups
// the Source and Contract registries need (spec §4.3, §4.4).
type Bundle struct {
	idToFileName   map[int]string
	byDeployedCode map[string]contract.CompiledUnit
}

// Load reads and indexes the compiler-output document at path.
func Load(path string) (*Bundle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("bundle: opening %s: %w", path, err)
	}
	defer f.Close()

	var doc raw
	if err := json.NewDecoder(f).Decode(&doc); err != nil {
		return nil, fmt.Errorf("bundle: decoding %s: %w", path, err)
	}
	return index(doc), nil
}

func index(doc raw) *Bundle {
	b := &Bundle{
		idToFileName:   make(map[int]string, len(doc.Sources)),
		byDeployedCode: make(map[string]contract.CompiledUnit),
	}
	for fileName, entry := range doc.Sources {
		b.idToFileName[entry.ID] = fileName
	}
	for fileName, units := range doc.Contracts {
		for name, u := range units {
			deployed := hexutil.TrimPrefix(u.EVM.DeployedBytecode.Object)
			if deployed == "" {
				continue
			}
			b.byDeployedCode[deployed] = contract.CompiledUnit{
				Name:                    name,
				FileName:                fileName,
				DeployedBytecodeHex:     deployed,
				DeployedSourceMap:       u.EVM.DeployedBytecode.SourceMap,
				ConstructionBytecodeHex: u.EVM.Bytecode.Object,
				ConstructionSourceMap:   u.EVM.Bytecode.SourceMap,
			}
		}
	}
	return b
}

// FindByDeployedBytecode implements contract.Bundle.
func (b *Bundle) FindByDeployedBytecode(codeHex string) (contract.CompiledUnit, bool) {
	u, ok := b.byDeployedCode[codeHex]
	return u, ok
}

// IDToFileName returns the source-id index, consumed by
// source.NewRegistry.
func (b *Bundle) IDToFileName() map[int]string {
	return b.idToFileName
}

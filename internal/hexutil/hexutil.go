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

// Package hexutil normalizes the hex byte strings and EVM addresses that
// flow between the compiler-output bundle, the chain-RPC collaborator and
// the attribution engine.
package hexutil

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// AddressLength is the size, in bytes, of an EVM address.
const AddressLength = 20

// TrimPrefix strips a leading "0x"/"0X" if present.
func TrimPrefix(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}

// Decode turns a hex string (with or without "0x" prefix) into bytes.
func Decode(s string) ([]byte, error) {
	s = TrimPrefix(s)
	if len(s)%2 == 1 {
		s = "0" + s
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("hexutil: malformed hex string %q: %w", s, err)
	}
	return b, nil
}

// Encode renders b as a lowercase hex string without a "0x" prefix.
func Encode(b []byte) string {
	return hex.EncodeToString(b)
}

// NormalizeAddress renders any hex address representation (with/without
// prefix, mixed case, short or over-length) as the canonical 40-hex-char
// lowercase address string. The low AddressLength bytes are kept when the
// input is longer, matching the way a 256-bit stack word is narrowed to an
// address in the EVM's CALL family of opcodes.
func NormalizeAddress(s string) string {
	s = strings.ToLower(TrimPrefix(s))
	if len(s) > AddressLength*2 {
		s = s[len(s)-AddressLength*2:]
	}
	if len(s) < AddressLength*2 {
		s = strings.Repeat("0", AddressLength*2-len(s)) + s
	}
	return s
}

// AddressFromBytes renders raw bytes (e.g. the low 20 bytes of a stack word)
// as a canonical address string, left-padding with zeroes when short.
func AddressFromBytes(b []byte) string {
	return NormalizeAddress(hex.EncodeToString(b))
}

// Idempotent reports whether NormalizeAddress is a fixed point on the
// (already-normalized) input; useful for callers asserting the invariant
// from spec §8 without duplicating the normalization logic.
func Idempotent(s string) bool {
	n := NormalizeAddress(s)
	return NormalizeAddress(n) == n
}

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

// Package sourcemap decodes the compact, run-length-inherited source map
// format solc-family compilers emit into a fully populated per-instruction
// entry sequence.
package sourcemap

import (
	"fmt"
	"strconv"
	"strings"
)

// JumpTag is the opaque single-character jump classification a source-map
// entry carries ("i", "o", "-", ...). solmap never interprets it, only
// carries it through.
type JumpTag string

// Entry is one fully resolved source-map entry: source-offset, length,
// source-id, jump-tag, with all per-field inheritance already applied
// (spec §4.2, §9 "Dynamic field inheritance").
type Entry struct {
	S int     // byte offset into the source file
	L int     // length in bytes
	F int     // source id; -1 marks a synthetic (compiler-generated) instruction
	J JumpTag
}

// MalformedError is returned for source maps this decoder cannot parse
// (error kind SourceMapMalformed, spec §7).
type MalformedError struct {
	Segment string
	Reason  string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("sourcemap: malformed segment %q: %s", e.Segment, e.Reason)
}

// Decode parses a raw "s:l:f:j;s:l:f:j;..." source map into a fully
// populated entry sequence, one entry per instruction. Whitespace around
// the whole string is trimmed first. Each field inherits the previous
// entry's value when absent or empty; the first segment must supply every
// field it omits from nowhere, so an omission there is left as the zero
// value (a well-formed compiler output never omits a field on the first
// segment).
func Decode(raw string) ([]Entry, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	segments := strings.Split(raw, ";")
	entries := make([]Entry, 0, len(segments))
	var prev Entry
	for _, seg := range segments {
		fields := strings.Split(seg, ":")
		e := prev
		// A field absent or empty inherits `prev` (already copied into e
		// above); on the first segment with nothing to inherit from, an
		// omitted field is left at its zero value per spec §4.2 — a valid
		// compiler output never reads it in that state.
		if len(fields) > 0 && fields[0] != "" {
			v, err := strconv.Atoi(fields[0])
			if err != nil {
				return nil, &MalformedError{Segment: seg, Reason: "s: " + err.Error()}
			}
			e.S = v
		}
		if len(fields) > 1 && fields[1] != "" {
			v, err := strconv.Atoi(fields[1])
			if err != nil {
				return nil, &MalformedError{Segment: seg, Reason: "l: " + err.Error()}
			}
			e.L = v
		}
		if len(fields) > 2 && fields[2] != "" {
			v, err := strconv.Atoi(fields[2])
			if err != nil {
				return nil, &MalformedError{Segment: seg, Reason: "f: " + err.Error()}
			}
			e.F = v
		}
		if len(fields) > 3 && fields[3] != "" {
			e.J = JumpTag(fields[3])
		}
		entries = append(entries, e)
		prev = e
	}
	return entries, nil
}

// IsSynthetic reports whether e refers to a compiler-generated instruction
// with no corresponding source line (spec §4.6 step 2, f == -1).
func (e Entry) IsSynthetic() bool {
	return e.F == -1
}

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

// Package source caches per-file gas-attribution state, keyed by both the
// compiler's numeric source id and the source's file name.
package source

import "sort"

// Source is one file the compiler bundle references, plus the gas
// accounting the attribution engine accumulates against it (spec §3).
type Source struct {
	ID       int
	FileName string
	Skip     bool

	// Text is nil when the source is skipped or its file could not be
	// read; accounting still proceeds against the Source, only line-level
	// text output is suppressed (spec §4.3, §7 SourceUnreadable).
	Text *string

	// LineOffsets[i] is the byte offset of line i within Text. Offset 0
	// is line 0. Populated only when Text is non-nil.
	LineOffsets []int

	// LineGas is signed to accommodate the documented negative-gas-cost
	// quirk on non-terminal opcodes (spec §4.7); in a well-formed trace
	// every value here is >= 0 (spec §3 invariant).
	LineGas        map[int]int64
	LinesWithCalls map[int]struct{}
}

func newSource(id int, fileName string) *Source {
	return &Source{
		ID:             id,
		FileName:       fileName,
		LineGas:        make(map[int]int64),
		LinesWithCalls: make(map[int]struct{}),
	}
}

// AddGas accumulates gas against line and returns the running total.
func (s *Source) AddGas(line int, gas int64) int64 {
	s.LineGas[line] += gas
	return s.LineGas[line]
}

// MarkCall flags line as containing at least one outgoing call.
func (s *Source) MarkCall(line int) {
	s.LinesWithCalls[line] = struct{}{}
}

// HasCall reports whether line was marked by MarkCall.
func (s *Source) HasCall(line int) bool {
	_, ok := s.LinesWithCalls[line]
	return ok
}

// buildLineOffsets splits text on LF and returns one ascending offset per
// line: offset 0 for line 0, each subsequent offset = previous + previous
// line length + 1 (spec §4.3).
func buildLineOffsets(text string) []int {
	offsets := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			offsets = append(offsets, i+1)
		}
	}
	return offsets
}

// LineForOffset returns the index of the largest line offset that is <= s,
// breaking ties toward the lower index (spec §4.6 step 2). Returns -1 when
// LineOffsets is empty (source text unavailable).
func (s *Source) LineForOffset(offset int) int {
	if len(s.LineOffsets) == 0 {
		return -1
	}
	// sort.Search finds the first index where LineOffsets[i] > offset;
	// the line we want is the one just before that.
	i := sort.Search(len(s.LineOffsets), func(i int) bool {
		return s.LineOffsets[i] > offset
	})
	return i - 1
}

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

package source

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/solmap/solmap/log"
)

// Registry is the two-key (id, file name) Source cache described in
// spec §4.3. It is owned by a single profiling run; nothing in it is
// shared across runs (spec §5, §9 "Global caches").
type Registry struct {
	srcRoot        string
	skipSubstrings []string
	idToFileName   map[int]string

	byName map[string]*Source
}

// NewRegistry constructs a Registry. idToFileName is the compiler bundle's
// canonical source-id index (spec §4.3); srcRoot is the configured
// source-listing root directory (spec §6, --src-root).
func NewRegistry(srcRoot string, skipSubstrings []string, idToFileName map[int]string) *Registry {
	return &Registry{
		srcRoot:        srcRoot,
		skipSubstrings: skipSubstrings,
		idToFileName:   idToFileName,
		byName:         make(map[string]*Source),
	}
}

// ByFileName resolves (and, on first sight, creates and reads) the Source
// for fileName.
func (r *Registry) ByFileName(fileName string) *Source {
	if s, ok := r.byName[fileName]; ok {
		return s
	}
	s := newSource(-1, fileName)
	s.Skip = r.shouldSkip(fileName)
	if !s.Skip {
		if text, ok := r.readFile(fileName); ok {
			s.Text = &text
			s.LineOffsets = buildLineOffsets(text)
		} else {
			log.Warn("source unreadable", "file", fileName)
		}
	}
	r.byName[fileName] = s
	return s
}

// ByID resolves id via the bundle's id->fileName index, then delegates to
// ByFileName so both lookup paths return the identical cached Source
// (spec §3 invariant: reachable from both registries iff the id has been
// observed).
func (r *Registry) ByID(id int) (*Source, bool) {
	fileName, ok := r.idToFileName[id]
	if !ok {
		return nil, false
	}
	s := r.ByFileName(fileName)
	if s.ID == -1 {
		s.ID = id
	}
	return s, true
}

func (r *Registry) shouldSkip(fileName string) bool {
	for _, sub := range r.skipSubstrings {
		if strings.Contains(fileName, sub) {
			return true
		}
	}
	return false
}

// readFile tries, in order: resolving fileName against the configured
// source root, then the host's module-style resolution — for a Go host
// that means treating fileName as importable relative to the current
// working directory (or as an absolute path outright), mirroring how a
// Node-hosted equivalent would fall back to node_modules resolution when
// the source-root guess misses.
func (r *Registry) readFile(fileName string) (string, bool) {
	candidates := make([]string, 0, 2)
	if r.srcRoot != "" {
		candidates = append(candidates, filepath.Join(r.srcRoot, fileName))
	}
	candidates = append(candidates, fileName)

	for _, path := range candidates {
		if b, err := os.ReadFile(path); err == nil {
			return string(b), true
		}
	}
	return "", false
}

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

// Package report renders the gas totals internal/attribution accumulates
// on internal/contract.Contract and internal/source.Source into the final
// output, in the plain fixed-format style of go-ethereum's cmd/evm
// reporter: a human-readable text report by default, or a JSON dump.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/solmap/solmap/internal/contract"
	"github.com/solmap/solmap/internal/source"
)

// lineReport is one printed source line, also the JSON shape for --json.
type lineReport struct {
	Line    int    `json:"line"`
	Gas     int64  `json:"gas"`
	HasCall bool   `json:"hasCall,omitempty"`
	Text    string `json:"text"`
}

type sourceReport struct {
	FileName string       `json:"fileName"`
	Lines    []lineReport `json:"lines"`
}

type contractReport struct {
	Name         string         `json:"name,omitempty"`
	Address      string         `json:"address"`
	Matched      bool           `json:"matched"`
	FileNames    []string       `json:"fileNames,omitempty"`
	SynthGasCost int64          `json:"synthGasCost"`
	TotalGasCost int64          `json:"totalGasCost"`
	Sources      []sourceReport `json:"sources,omitempty"`
}

// Render writes the final report for every touched contract to w. Contracts
// are visited in address order for deterministic output. When jsonOutput is true
// the whole report is emitted as a single JSON array; otherwise it is
// rendered as fixed-column text (spec §6).
func Render(w io.Writer, contracts map[string]*contract.Contract, jsonOutput bool) {
	reports := buildReports(contracts)
	if jsonOutput {
		renderJSON(w, reports)
		return
	}
	renderText(w, reports)
}

func buildReports(contracts map[string]*contract.Contract) []contractReport {
	addrs := make([]string, 0, len(contracts))
	for addr := range contracts {
		addrs = append(addrs, addr)
	}
	sort.Strings(addrs)

	reports := make([]contractReport, 0, len(addrs))
	for _, addr := range addrs {
		c := contracts[addr]
		reports = append(reports, contractReport{
			Name:         c.Name,
			Address:      c.AddressHexStr,
			Matched:      c.Matched(),
			FileNames:    sourceFileNames(c),
			SynthGasCost: c.SynthGasCost,
			TotalGasCost: c.TotalGasCost,
			Sources:      buildSourceReports(c),
		})
	}
	return reports
}

func sourceFileNames(c *contract.Contract) []string {
	seen := make(map[string]struct{}, len(c.SourcesByID))
	names := make([]string, 0, len(c.SourcesByID))
	for _, s := range c.SourcesByID {
		if _, ok := seen[s.FileName]; ok {
			continue
		}
		seen[s.FileName] = struct{}{}
		names = append(names, s.FileName)
	}
	sort.Strings(names)
	return names
}

func buildSourceReports(c *contract.Contract) []sourceReport {
	ids := make([]int, 0, len(c.SourcesByID))
	for id := range c.SourcesByID {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	out := make([]sourceReport, 0, len(ids))
	for _, id := range ids {
		s := c.SourcesByID[id]
		if s.Text == nil {
			continue
		}
		out = append(out, sourceReport{FileName: s.FileName, Lines: buildLineReports(s)})
	}
	return out
}

func buildLineReports(s *source.Source) []lineReport {
	lines := strings.Split(*s.Text, "\n")
	out := make([]lineReport, len(lines))
	for i, text := range lines {
		out[i] = lineReport{Line: i, Gas: s.LineGas[i], HasCall: s.HasCall(i), Text: text}
	}
	return out
}

func renderJSON(w io.Writer, reports []contractReport) {
	out, _ := json.MarshalIndent(reports, "", "  ")
	fmt.Fprintln(w, string(out))
}

func renderText(w io.Writer, reports []contractReport) {
	anyCall := false
	for _, r := range reports {
		label := r.Name
		if label == "" {
			label = "<unattributed>"
		}
		fmt.Fprintf(w, "=== %s at %s ===\n", label, r.Address)
		if len(r.FileNames) > 0 {
			fmt.Fprintf(w, "files: %s\n", strings.Join(r.FileNames, ", "))
		}
		fmt.Fprintf(w, "synthetic gas: %d\n", r.SynthGasCost)
		fmt.Fprintf(w, "total gas: %d\n", r.TotalGasCost)

		for _, src := range r.Sources {
			fmt.Fprintf(w, "--- %s ---\n", src.FileName)
			for _, line := range src.Lines {
				marker := " "
				if line.HasCall {
					marker = "+"
					anyCall = true
				}
				fmt.Fprintf(w, "%8d %s %s\n", line.Gas, marker, line.Text)
			}
		}
		fmt.Fprintln(w)
	}
	if anyCall {
		fmt.Fprintln(w, "+ marks a line whose gas total includes at least one outgoing call")
	}
}

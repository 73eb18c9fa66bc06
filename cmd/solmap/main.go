// Copyright 2024 The go-ethereum Authors
// This file is part of go-ethereum.
//
// go-ethereum is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// go-ethereum is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with go-ethereum. If not, see <http://www.gnu.org/licenses/>.

// solmap replays a transaction's execution trace against its Solidity
// source and reports gas consumption per source line.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/solmap/solmap/internal/attribution"
	"github.com/solmap/solmap/internal/bundle"
	"github.com/solmap/solmap/internal/contract"
	"github.com/solmap/solmap/internal/flags"
	"github.com/solmap/solmap/internal/report"
	"github.com/solmap/solmap/internal/source"
	"github.com/solmap/solmap/log"
	"github.com/solmap/solmap/rpcchain"
	"github.com/urfave/cli/v2"
)

var (
	skipFlag = &cli.StringSliceFlag{
		Name:     "skip",
		Usage:    "substring of a source file path to exclude from line-level output (repeatable)",
		Category: flags.InputCategory,
	}
	srcRootFlag = &flags.DirectoryFlag{
		Name:     "src-root",
		Usage:    "directory Solidity source paths are resolved against",
		Category: flags.InputCategory,
	}
	rpcEndpointFlag = &cli.StringFlag{
		Name:     "rpc-endpoint",
		Usage:    "JSON-RPC endpoint of the chain the transaction ran on",
		Value:    "http://127.0.0.1:8545",
		Category: flags.NetworkCategory,
	}
	jsonFlag = &cli.BoolFlag{
		Name:     "json",
		Usage:    "emit the report as JSON instead of text",
		Category: flags.OutputCategory,
	}
	verboseFlag = &cli.BoolFlag{
		Name:     "verbose",
		Aliases:  []string{"v"},
		Usage:    "enable debug-level logging",
		Category: flags.OutputCategory,
	}
)

var app = flags.NewApp("attribute gas usage in a transaction trace to Solidity source lines")

func init() {
	app.Flags = []cli.Flag{skipFlag, srcRootFlag, rpcEndpointFlag, jsonFlag, verboseFlag}
	app.ArgsUsage = "<compiler-output-json> <transaction-hash>"
	app.Action = run
}

func init() {
	log.Root().SetHandler(log.LvlFilterHandler(log.LvlWarn, log.StderrHandler))
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx *cli.Context) error {
	if ctx.Bool(verboseFlag.Name) {
		log.Root().SetHandler(log.LvlFilterHandler(log.LvlDebug, log.StderrHandler))
	}

	if ctx.NArg() != 2 {
		return fmt.Errorf("usage: %s [options] %s", app.Name, app.ArgsUsage)
	}
	bundlePath := ctx.Args().Get(0)
	txHash := ctx.Args().Get(1)

	doc, err := bundle.Load(bundlePath)
	if err != nil {
		return err
	}

	chain := rpcchain.NewClient(ctx.String(rpcEndpointFlag.Name), nil)
	background := context.Background()

	tx, err := chain.GetTransaction(background, txHash)
	if err != nil {
		return fmt.Errorf("fetching transaction: %w", err)
	}
	receipt, err := chain.GetTransactionReceipt(background, txHash)
	if err != nil {
		return fmt.Errorf("fetching receipt: %w", err)
	}

	entryAddr := tx.To
	isEntryConstruction := entryAddr == ""
	if isEntryConstruction {
		if receipt.ContractAddress == "" {
			log.Warn("transaction created no contract; nothing to attribute")
			return nil
		}
		entryAddr = receipt.ContractAddress
	}

	contracts := contract.NewRegistry(chain, doc)

	entry, err := contracts.GetContractWithAddr(background, entryAddr)
	if err != nil {
		return fmt.Errorf("resolving entry contract: %w", err)
	}
	if !entry.HasCode() {
		fmt.Fprintf(os.Stdout, "%s has no code; it is not a contract, nothing to attribute\n", entryAddr)
		return nil
	}

	traceLogs, err := chain.TraceTransaction(background, txHash)
	if err != nil {
		return fmt.Errorf("tracing transaction: %w", err)
	}

	sources := source.NewRegistry(ctx.String(srcRootFlag.Name), ctx.StringSlice(skipFlag.Name), doc.IDToFileName())

	engine := attribution.NewEngine(contracts, sources)
	if err := engine.Run(background, entryAddr, isEntryConstruction, traceLogs); err != nil {
		return err
	}

	report.Render(os.Stdout, contracts.Contracts(), ctx.Bool(jsonFlag.Name))
	return nil
}

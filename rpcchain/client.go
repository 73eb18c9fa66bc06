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

// Package rpcchain implements the chain-RPC collaborator (spec §6) over
// plain JSON-RPC 2.0 via net/http and encoding/json, in the synchronous
// POST-and-decode style of the teacher's own low-level RPC transport.
package rpcchain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/holiman/uint256"
	"github.com/solmap/solmap/internal/attribution"
	"github.com/solmap/solmap/internal/bytecode"
	"github.com/solmap/solmap/internal/hexutil"
)

// Client is a minimal JSON-RPC 2.0 client for the four chain operations
// solmap needs. It implements internal/contract.Chain.
type Client struct {
	endpoint string
	http     *http.Client
}

// NewClient constructs a Client against endpoint, using httpClient as the
// transport (pass nil for http.DefaultClient).
func NewClient(endpoint string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{endpoint: endpoint, http: httpClient}
}

type request struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int           `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type response struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("rpcchain: %d %s", e.Code, e.Message)
}

// call sends a single JSON-RPC 2.0 request and decodes its result into out.
// A non-nil error here is always fatal (spec §7 RpcFailure).
func (c *Client) call(ctx context.Context, out interface{}, method string, params ...interface{}) error {
	body, err := json.Marshal(request{JSONRPC: "2.0", ID: 1, Method: method, Params: params})
	if err != nil {
		return fmt.Errorf("rpcchain: encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("rpcchain: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("rpcchain: %s: %w", method, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("rpcchain: reading %s response: %w", method, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("rpcchain: %s: unexpected status %d: %s", method, resp.StatusCode, raw)
	}

	var rpcResp response
	if err := json.Unmarshal(raw, &rpcResp); err != nil {
		return fmt.Errorf("rpcchain: decoding %s envelope: %w", method, err)
	}
	if rpcResp.Error != nil {
		return fmt.Errorf("rpcchain: %s: %w", method, rpcResp.Error)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(rpcResp.Result, out); err != nil {
		return fmt.Errorf("rpcchain: decoding %s result: %w", method, err)
	}
	return nil
}

// GetCode implements internal/contract.Chain.
func (c *Client) GetCode(ctx context.Context, addressHexStr string) (string, error) {
	var code string
	addr := "0x" + hexutil.NormalizeAddress(addressHexStr)
	if err := c.call(ctx, &code, "eth_getCode", addr, "latest"); err != nil {
		return "", err
	}
	return code, nil
}

// Receipt is the subset of eth_getTransactionReceipt this tool needs
// (spec §6).
type Receipt struct {
	GasUsed         uint64
	ContractAddress string // "" when the transaction didn't create a contract
}

type rawReceipt struct {
	GasUsed         string `json:"gasUsed"`
	ContractAddress string `json:"contractAddress"`
}

// GetTransactionReceipt fetches the receipt for hash.
func (c *Client) GetTransactionReceipt(ctx context.Context, hash string) (Receipt, error) {
	var raw rawReceipt
	if err := c.call(ctx, &raw, "eth_getTransactionReceipt", hash); err != nil {
		return Receipt{}, err
	}
	gasUsed, err := hexutil.Decode(raw.GasUsed)
	if err != nil {
		return Receipt{}, fmt.Errorf("rpcchain: malformed gasUsed %q: %w", raw.GasUsed, err)
	}
	return Receipt{
		GasUsed:         bytesToUint64(gasUsed),
		ContractAddress: raw.ContractAddress,
	}, nil
}

// Transaction is the subset of eth_getTransactionByHash this tool needs.
type Transaction struct {
	To string // "" for a contract-creation transaction
}

type rawTransaction struct {
	To *string `json:"to"`
}

// GetTransaction fetches transaction metadata for hash.
func (c *Client) GetTransaction(ctx context.Context, hash string) (Transaction, error) {
	var raw rawTransaction
	if err := c.call(ctx, &raw, "eth_getTransactionByHash", hash); err != nil {
		return Transaction{}, err
	}
	if raw.To == nil {
		return Transaction{}, nil
	}
	return Transaction{To: *raw.To}, nil
}

type rawStructLog struct {
	Pc      uint64   `json:"pc"`
	Op      string   `json:"op"`
	Gas     uint64   `json:"gas"`
	GasCost int64    `json:"gasCost"`
	Depth   int      `json:"depth"`
	Stack   []string `json:"stack"`
}

type rawTraceResult struct {
	StructLogs []rawStructLog `json:"structLogs"`
}

// TraceTransaction runs debug_traceTransaction with stack tracking enabled
// and memory/storage disabled (spec §6), decoding the result into the
// attribution engine's own Log shape.
func (c *Client) TraceTransaction(ctx context.Context, hash string) ([]attribution.Log, error) {
	opts := map[string]interface{}{
		"disableStack":   false,
		"disableMemory":  true,
		"disableStorage": true,
	}
	var raw rawTraceResult
	if err := c.call(ctx, &raw, "debug_traceTransaction", hash, opts); err != nil {
		return nil, err
	}

	logs := make([]attribution.Log, len(raw.StructLogs))
	for i, l := range raw.StructLogs {
		stack, err := decodeStack(l.Stack)
		if err != nil {
			return nil, fmt.Errorf("rpcchain: struct log %d: %w", i, err)
		}
		logs[i] = attribution.Log{
			Pc:      l.Pc,
			Op:      opCodeFromName(l.Op),
			Gas:     int64(l.Gas),
			GasCost: l.GasCost,
			Depth:   l.Depth,
			Stack:   stack,
		}
	}
	return logs, nil
}

func decodeStack(words []string) ([]uint256.Int, error) {
	out := make([]uint256.Int, len(words))
	for i, w := range words {
		if len(w) < 2 || w[0] != '0' || (w[1] != 'x' && w[1] != 'X') {
			w = "0x" + w
		}
		v, err := uint256.FromHex(w)
		if err != nil {
			return nil, fmt.Errorf("malformed stack word %q: %w", w, err)
		}
		out[i] = *v
	}
	return out, nil
}

func bytesToUint64(b []byte) uint64 {
	var v uint64
	for _, x := range b {
		v = v<<8 | uint64(x)
	}
	return v
}

// opCodeFromName maps a debug_traceTransaction opcode mnemonic to the
// narrow OpCode subset the engine branches on; every mnemonic outside that
// subset collapses to a single sentinel value none of the named constants
// use, since the engine never needs to tell those apart.
func opCodeFromName(name string) bytecode.OpCode {
	switch name {
	case "STOP":
		return bytecode.STOP
	case "CREATE":
		return bytecode.CREATE
	case "CALL":
		return bytecode.CALL
	case "CALLCODE":
		return bytecode.CALLCODE
	case "RETURN":
		return bytecode.RETURN
	case "DELEGATECALL":
		return bytecode.DELEGATECALL
	case "CREATE2":
		return bytecode.CREATE2
	case "STATICCALL":
		return bytecode.STATICCALL
	case "REVERT":
		return bytecode.REVERT
	default:
		return 0xff
	}
}

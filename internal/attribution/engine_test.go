package attribution

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/holiman/uint256"
	"github.com/solmap/solmap/internal/bytecode"
	"github.com/solmap/solmap/internal/contract"
	"github.com/solmap/solmap/internal/source"
)

type fakeChain struct {
	codeByAddr map[string]string
}

func (f *fakeChain) GetCode(ctx context.Context, addr string) (string, error) {
	return f.codeByAddr[addr], nil
}

type fakeBundle struct {
	units map[string]contract.CompiledUnit
}

func (f *fakeBundle) FindByDeployedBytecode(codeHex string) (contract.CompiledUnit, bool) {
	u, ok := f.units[codeHex]
	return u, ok
}

func writeSol(t *testing.T, dir, name, text string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(text), 0o644); err != nil {
		t.Fatal(err)
	}
}

func stack(words ...uint64) []uint256.Int {
	s := make([]uint256.Int, len(words))
	for i, w := range words {
		s[i] = *uint256.NewInt(w)
	}
	return s
}

// setup deploys contract A ("6001600201": PUSH1 01, PUSH1 02, ADD — three
// instructions; the two PUSHes map onto line 0 of A.sol and the ADD onto
// line 1) and contract B ("600100": PUSH1 01, STOP; both map onto line 1 of
// B.sol), and returns the engine wired to a Contract/Source registry pair
// backed by real temp-dir files.
func setup(t *testing.T) (*Engine, *contract.Registry, *source.Registry, string) {
	t.Helper()
	dir := t.TempDir()
	writeSol(t, dir, "A.sol", "contract A {\n  function f() public { g(); }\n}\n")
	writeSol(t, dir, "B.sol", "contract B {\n  function g() public {}\n}\n")

	const addrA = "1111111111111111111111111111111111111111"
	const addrB = "0000000000000000000000000000000000000002"
	const codeA = "6001600201" // PUSH1 1, PUSH1 2, ADD
	const codeB = "600100"     // PUSH1 1, STOP

	chain := &fakeChain{codeByAddr: map[string]string{addrA: codeA, addrB: codeB}}
	bundle := &fakeBundle{units: map[string]contract.CompiledUnit{
		codeA: {
			Name: "A", FileName: "A.sol",
			DeployedBytecodeHex: codeA,
			DeployedSourceMap:   "0:1:0:-;0:1:0:-;18:20:0:-",
		},
		codeB: {
			Name: "B", FileName: "B.sol",
			DeployedBytecodeHex: codeB,
			DeployedSourceMap:   "13:20:1:-;13:20:1:-",
		},
	}}

	contracts := contract.NewRegistry(chain, bundle)
	sources := source.NewRegistry(dir, nil, map[int]string{0: "A.sol", 1: "B.sol"})
	return NewEngine(contracts, sources), contracts, sources, dir
}

func TestRunSingleContractNoCalls(t *testing.T) {
	eng, contracts, _, _ := setup(t)
	const addrA = "1111111111111111111111111111111111111111"

	logs := []Log{
		{Pc: 0, Op: bytecode.PUSH1, Gas: 100, GasCost: 3, Depth: 1, Stack: nil},
		{Pc: 2, Op: bytecode.PUSH1, Gas: 97, GasCost: 3, Depth: 1, Stack: nil},
		{Pc: 4, Op: 0x01 /* ADD */, Gas: 94, GasCost: 3, Depth: 1, Stack: nil},
	}
	if err := eng.Run(context.Background(), addrA, false, logs); err != nil {
		t.Fatal(err)
	}
	c := contracts.Contracts()[addrA]
	if c.TotalGasCost != 9 {
		t.Errorf("got total %d, want 9", c.TotalGasCost)
	}
	src := c.SourcesByID[0]
	if src.LineGas[0] != 6 {
		t.Errorf("line 0 got %d, want 6", src.LineGas[0])
	}
	if src.LineGas[1] != 3 {
		t.Errorf("line 1 got %d, want 3", src.LineGas[1])
	}
}

func TestRunCallThatReturns(t *testing.T) {
	eng, contracts, _, _ := setup(t)
	const addrA = "1111111111111111111111111111111111111111"
	const addrB = "0000000000000000000000000000000000000002"

	// Step 2 (idx 2, mapped to A.sol line 1) is a CALL into B: stack top is
	// gas, second-from-top is the target address.
	callStack := stack(2, 50) // second-from-top is the callee address, top is gas

	logs := []Log{
		{Pc: 0, Op: bytecode.PUSH1, Gas: 100, GasCost: 3, Depth: 1},
		{Pc: 2, Op: bytecode.PUSH1, Gas: 97, GasCost: 3, Depth: 1},
		{Pc: 4, Op: bytecode.CALL, Gas: 94, GasCost: 40, Depth: 1, Stack: callStack},
		{Pc: 0, Op: bytecode.PUSH1, Gas: 50, GasCost: 3, Depth: 2},
		{Pc: 2, Op: bytecode.STOP, Gas: 47, GasCost: 0, Depth: 2},
		{Pc: 6, Op: 0x01, Gas: 44, GasCost: 3, Depth: 1}, // back in A after the call
	}
	if err := eng.Run(context.Background(), addrA, false, logs); err != nil {
		t.Fatal(err)
	}

	a := contracts.Contracts()[addrA]
	b := contracts.Contracts()[addrB]

	// B ran two instructions: 3 + 0 = 3.
	if b.TotalGasCost != 3 {
		t.Errorf("B total got %d, want 3", b.TotalGasCost)
	}

	srcA := a.SourcesByID[0]
	// A's line 1 (the CALL's own source position) accumulates the entire
	// completed call cost: gasBeforeOutgoingCall(94) - gas at the first step
	// back in A(44) = 50.
	if srcA.LineGas[1] != 50 {
		t.Errorf("A line 1 got %d, want 50", srcA.LineGas[1])
	}
	if !srcA.HasCall(1) {
		t.Error("expected line 1 marked as containing a call")
	}

	// A's total: entry frame folds in at termination — gasBefore(100) -
	// lastGas(44) + lastCost(3) = 59.
	if a.TotalGasCost != 59 {
		t.Errorf("A total got %d, want 59", a.TotalGasCost)
	}
}

func TestRunCallThatDoesNotEnter(t *testing.T) {
	eng, contracts, _, _ := setup(t)
	const addrA = "1111111111111111111111111111111111111111"

	// A STATICCALL whose target never actually pushes a deeper frame (e.g.
	// insufficient gas, or the target has no code) — depth stays flat.
	callStack := stack(2, 50) // second-from-top is the callee address, top is gas
	logs := []Log{
		{Pc: 0, Op: bytecode.PUSH1, Gas: 100, GasCost: 3, Depth: 1},
		{Pc: 2, Op: bytecode.PUSH1, Gas: 97, GasCost: 3, Depth: 1},
		{Pc: 4, Op: bytecode.STATICCALL, Gas: 94, GasCost: 40, Depth: 1, Stack: callStack},
		{Pc: 6, Op: 0x01, Gas: 54, GasCost: 3, Depth: 1}, // execution continues flat, no subframe
	}
	if err := eng.Run(context.Background(), addrA, false, logs); err != nil {
		t.Fatal(err)
	}
	a := contracts.Contracts()[addrA]
	// entry frame never unwinds; termination telescopes to gasBefore(100) -
	// lastGas(54) + lastCost(3) regardless of how many flat steps ran.
	if a.TotalGasCost != 49 {
		t.Errorf("got %d, want 49", a.TotalGasCost)
	}
	if _, ok := contracts.Contracts()["0000000000000000000000000000000000000002"]; ok {
		t.Error("a call that never entered should not have fetched the callee's code")
	}
}

func TestRunNonTerminalNegativeGasCostSurfacesUncompensated(t *testing.T) {
	eng, contracts, _, _ := setup(t)
	const addrA = "1111111111111111111111111111111111111111"

	logs := []Log{
		{Pc: 0, Op: bytecode.PUSH1, Gas: 100, GasCost: 3, Depth: 1},
		{Pc: 2, Op: bytecode.PUSH1, Gas: 97, GasCost: 3, Depth: 1},
		{Pc: 4, Op: 0x01, Gas: 94, GasCost: -2, Depth: 1}, // ADD, never terminal
	}
	if err := eng.Run(context.Background(), addrA, false, logs); err != nil {
		t.Fatal(err)
	}
	a := contracts.Contracts()[addrA]
	// last step's cost surfaces as -2 (non-terminal, not compensated).
	if a.TotalGasCost != 4 { // gasBefore(100) - lastGas(94) + lastCost(-2)
		t.Errorf("got %d, want 4", a.TotalGasCost)
	}
}

func TestRunGanacheReturnQuirkZeroesTerminalNegativeCost(t *testing.T) {
	eng, contracts, _, _ := setup(t)
	const addrA = "1111111111111111111111111111111111111111"

	logs := []Log{
		{Pc: 0, Op: bytecode.PUSH1, Gas: 100, GasCost: 3, Depth: 1},
		{Pc: 2, Op: bytecode.PUSH1, Gas: 97, GasCost: 3, Depth: 1},
		{Pc: 4, Op: bytecode.RETURN, Gas: 94, GasCost: -2, Depth: 1},
	}
	if err := eng.Run(context.Background(), addrA, false, logs); err != nil {
		t.Fatal(err)
	}
	a := contracts.Contracts()[addrA]
	// termination telescopes to gasBefore(100) - lastGas(94) + GasCost(RETURN,-2)
	// which zeroes the quirked -2, giving 6 rather than 4.
	if a.TotalGasCost != 6 {
		t.Errorf("got %d, want 6", a.TotalGasCost)
	}
}

func TestRunConstructionEntryUsesConstructorTables(t *testing.T) {
	dir := t.TempDir()
	writeSol(t, dir, "A.sol", "contract A {\n  function f() public { g(); }\n}\n")
	writeSol(t, dir, "B.sol", "contract B {\n  function g() public {}\n}\n")

	const addrA = "1111111111111111111111111111111111111111"
	const codeA = "6001600201" // deployed: PUSH1 1, PUSH1 2, ADD -- mapped onto A.sol
	const ctorCodeA = "600100" // constructor: PUSH1 1, STOP -- mapped onto B.sol

	chain := &fakeChain{codeByAddr: map[string]string{addrA: codeA}}
	bundle := &fakeBundle{units: map[string]contract.CompiledUnit{
		codeA: {
			Name: "A", FileName: "A.sol",
			DeployedBytecodeHex:     codeA,
			DeployedSourceMap:       "0:1:0:-;0:1:0:-;18:20:0:-",
			ConstructionBytecodeHex: ctorCodeA,
			ConstructionSourceMap:   "13:20:1:-;13:20:1:-",
		},
	}}

	contracts := contract.NewRegistry(chain, bundle)
	sources := source.NewRegistry(dir, nil, map[int]string{0: "A.sol", 1: "B.sol"})
	eng := NewEngine(contracts, sources)

	// Same PCs (0, 2) as the deployed bytecode's PUSH1s, but this is a
	// construction call: resolveSource must pick ConstructionPCToIdx and
	// ConstructorSourceMap, which point at B.sol, not A.sol.
	logs := []Log{
		{Pc: 0, Op: bytecode.PUSH1, Gas: 100, GasCost: 3, Depth: 1},
		{Pc: 2, Op: bytecode.STOP, Gas: 97, GasCost: 0, Depth: 1},
	}
	if err := eng.Run(context.Background(), addrA, true, logs); err != nil {
		t.Fatal(err)
	}

	a := contracts.Contracts()[addrA]
	if _, ok := a.SourcesByID[0]; ok {
		t.Error("construction call should never touch the deployed source map's file")
	}
	srcB, ok := a.SourcesByID[1]
	if !ok {
		t.Fatal("expected the constructor source map's file (B.sol) to be touched")
	}
	if srcB.LineGas[1] != 3 {
		t.Errorf("B.sol line 1 got %d, want 3", srcB.LineGas[1])
	}
}

func TestRunTraceTruncatedAfterLiveCallTarget(t *testing.T) {
	eng, _, _, _ := setup(t)
	const addrA = "1111111111111111111111111111111111111111"

	callStack := stack(2, 50) // second-from-top is the callee address, top is gas
	logs := []Log{
		{Pc: 0, Op: bytecode.PUSH1, Gas: 100, GasCost: 3, Depth: 1},
		{Pc: 4, Op: bytecode.CALL, Gas: 94, GasCost: 40, Depth: 1, Stack: callStack},
	}
	err := eng.Run(context.Background(), addrA, false, logs)
	if err == nil {
		t.Fatal("expected an error")
	}
	if _, ok := err.(*TraceTruncatedError); !ok {
		t.Errorf("got %T, want *TraceTruncatedError", err)
	}
}

package report

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

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

// buildContract exercises the same registry path the engine uses so the
// report sees a Source with realistic Text/LineGas state, then hand-fills
// the gas totals a completed attribution run would have left behind.
func buildContract(t *testing.T) (map[string]*contract.Contract, string) {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "A.sol"), []byte("contract A {\n  uint x;\n}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	const addr = "1111111111111111111111111111111111111111"
	const code = "6001600201"
	chain := &fakeChain{codeByAddr: map[string]string{addr: code}}
	bundle := &fakeBundle{units: map[string]contract.CompiledUnit{
		code: {Name: "A", FileName: "A.sol", DeployedBytecodeHex: code, DeployedSourceMap: "0:1:0:-"},
	}}
	reg := contract.NewRegistry(chain, bundle)
	c, err := reg.GetContractWithAddr(context.Background(), addr)
	if err != nil {
		t.Fatal(err)
	}

	sources := source.NewRegistry(dir, nil, map[int]string{0: "A.sol"})
	if _, ok := c.SourceForID(sources, 0); !ok {
		t.Fatal("expected source id 0 to resolve")
	}
	src := c.SourcesByID[0]
	src.AddGas(0, 21)
	src.AddGas(1, 5)
	src.MarkCall(1)
	c.TotalGasCost = 26

	return reg.Contracts(), addr
}

func TestRenderTextIncludesGasAndCallMarker(t *testing.T) {
	contracts, addr := buildContract(t)

	var buf bytes.Buffer
	Render(&buf, contracts, false)
	out := buf.String()

	if !strings.Contains(out, "=== A at "+addr+" ===") {
		t.Errorf("missing contract header, got:\n%s", out)
	}
	if !strings.Contains(out, "total gas: 26") {
		t.Errorf("missing total gas line, got:\n%s", out)
	}
	if !strings.Contains(out, "+ marks a line") {
		t.Errorf("expected the call-marker legend to be printed, got:\n%s", out)
	}
}

func TestRenderJSONIsValidArray(t *testing.T) {
	contracts, _ := buildContract(t)
	var buf bytes.Buffer
	Render(&buf, contracts, true)
	out := buf.String()
	if !strings.HasPrefix(strings.TrimSpace(out), "[") {
		t.Errorf("expected a JSON array, got:\n%s", out)
	}
}

package attribution

import (
	"testing"

	"github.com/solmap/solmap/internal/bytecode"
)

func TestGasCostZeroesNegativeOnTerminalOps(t *testing.T) {
	for _, op := range []bytecode.OpCode{bytecode.RETURN, bytecode.REVERT, bytecode.STOP} {
		if got := GasCost(op, -2); got != 0 {
			t.Errorf("op %v: got %d, want 0", op, got)
		}
	}
}

func TestGasCostPassesThroughPositive(t *testing.T) {
	if got := GasCost(bytecode.CALL, 700); got != 700 {
		t.Errorf("got %d", got)
	}
}

func TestGasCostSurfacesNegativeOnNonTerminal(t *testing.T) {
	if got := GasCost(bytecode.CALL, -5); got != -5 {
		t.Errorf("got %d, want -5 (documented quirk is narrow, not generalized)", got)
	}
}

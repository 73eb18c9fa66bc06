package bytecode

import "testing"

func TestBuildPCToIdxSkipsPushImmediates(t *testing.T) {
	// PUSH1 0x01, PUSH1 0x02, ADD (0x01), STOP
	code := []byte{byte(PUSH1), 0x01, byte(PUSH1), 0x02, 0x01, byte(STOP)}
	m, err := BuildPCToIdx(code)
	if err != nil {
		t.Fatal(err)
	}
	want := map[uint64]int{0: 0, 2: 1, 4: 2, 5: 3}
	if len(m) != len(want) {
		t.Fatalf("got %d entries, want %d: %v", len(m), len(want), m)
	}
	for pc, idx := range want {
		if m[pc] != idx {
			t.Errorf("pc %d: got idx %d, want %d", pc, m[pc], idx)
		}
	}
}

func TestBuildPCToIdxContiguousIndices(t *testing.T) {
	code := []byte{byte(STOP), byte(STOP), byte(STOP)}
	m, err := BuildPCToIdx(code)
	if err != nil {
		t.Fatal(err)
	}
	seen := make([]bool, len(m))
	for _, idx := range m {
		if idx < 0 || idx >= len(seen) {
			t.Fatalf("index %d out of range", idx)
		}
		seen[idx] = true
	}
	for i, ok := range seen {
		if !ok {
			t.Errorf("index %d missing, indices must be contiguous from 0", i)
		}
	}
}

func TestBuildPCToIdxTruncated(t *testing.T) {
	// PUSH32 with only one immediate byte available.
	code := []byte{byte(PUSH32), 0x01}
	_, err := BuildPCToIdx(code)
	if err == nil {
		t.Fatal("expected truncation error")
	}
	if _, ok := err.(*TruncatedError); !ok {
		t.Fatalf("got %T, want *TruncatedError", err)
	}
}

func TestBuildPCToIdxDeterministic(t *testing.T) {
	code := []byte{byte(PUSH1), 0x01, 0x01, byte(CALL), byte(STOP)}
	a, err := BuildPCToIdx(code)
	if err != nil {
		t.Fatal(err)
	}
	b, err := BuildPCToIdx(code)
	if err != nil {
		t.Fatal(err)
	}
	if len(a) != len(b) {
		t.Fatalf("non-deterministic length")
	}
	for pc, idx := range a {
		if b[pc] != idx {
			t.Errorf("non-deterministic mapping at pc %d: %d vs %d", pc, idx, b[pc])
		}
	}
}

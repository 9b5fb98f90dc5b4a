package sector

import "testing"

func TestHashCountMatchesFormula(t *testing.T) {
	h, err := NewHash(2, 2)
	if err != nil {
		t.Fatalf("NewHash failed: %v", err)
	}
	want := int64(h.FCount) * Binom(24-2, 2)
	if h.HashCount != want {
		t.Errorf("HashCount = %d, want %d", h.HashCount, want)
	}
}

func TestHashIndexInverseRoundTrip(t *testing.T) {
	h, err := NewHash(3, 2)
	if err != nil {
		t.Fatalf("NewHash failed: %v", err)
	}
	for i := int64(0); i < h.HashCount; i++ {
		packed, err := h.InverseIndex(i)
		if err != nil {
			t.Fatalf("InverseIndex(%d) failed: %v", i, err)
		}
		idx, err := h.Index(packed)
		if err != nil {
			t.Fatalf("Index(InverseIndex(%d)) failed: %v", i, err)
		}
		if idx != i {
			t.Fatalf("round trip mismatch at %d: got %d", i, idx)
		}
	}
}

func TestHashZeroPieceSectors(t *testing.T) {
	h, err := NewHash(0, 0)
	if err != nil {
		t.Fatalf("NewHash(0,0) failed: %v", err)
	}
	if h.HashCount != 1 {
		t.Fatalf("expected a single hash slot for the empty sector, got %d", h.HashCount)
	}
	packed, err := h.InverseIndex(0)
	if err != nil {
		t.Fatalf("InverseIndex(0) failed: %v", err)
	}
	if packed != 0 {
		t.Errorf("expected the empty board to pack to 0, got %x", packed)
	}
}

func TestHashRejectsInvalidPieceCounts(t *testing.T) {
	if _, err := NewHash(-1, 0); err == nil {
		t.Error("expected an error for negative W")
	}
	if _, err := NewHash(20, 20); err == nil {
		t.Error("expected an error when W+B exceeds the board size")
	}
}

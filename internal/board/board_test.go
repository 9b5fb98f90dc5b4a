package board

import "testing"

func TestBitsRoundTrip(t *testing.T) {
	var b Bits
	for _, sq := range []int{0, 5, 23, 12} {
		b = b.Set(sq)
	}
	if b.PopCount() != 4 {
		t.Fatalf("PopCount() = %d, want 4", b.PopCount())
	}
	got := b.Squares()
	want := []int{0, 5, 12, 23}
	if len(got) != len(want) {
		t.Fatalf("Squares() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Squares()[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestBoardPacked48RoundTrip(t *testing.T) {
	bd := Board{White: Bits(0x00FF00), Black: Bits(0x0000FF)}
	if !bd.Valid() {
		t.Fatal("expected disjoint occupancy to be valid")
	}
	got := FromPacked48(bd.Packed48())
	if got != bd {
		t.Fatalf("FromPacked48(Packed48()) = %+v, want %+v", got, bd)
	}
}

func TestBoardNegateInvolution(t *testing.T) {
	bd := Board{White: 0b101, Black: 0b010}
	if bd.Negate().Negate() != bd {
		t.Fatal("Negate should be an involution")
	}
}

func TestRulesStdMillLineCount(t *testing.T) {
	r := NewRules(Standard, false)
	if len(r.MillLines) != 16 {
		t.Fatalf("std mill lines = %d, want 16", len(r.MillLines))
	}
	if r.MaxPieces != 9 {
		t.Fatalf("std MaxPieces = %d, want 9", r.MaxPieces)
	}
}

func TestRulesMoraMillLineCount(t *testing.T) {
	r := NewRules(Morabaraba, false)
	if len(r.MillLines) != 20 {
		t.Fatalf("mora mill lines = %d, want 20", len(r.MillLines))
	}
	if r.MaxPieces != 12 {
		t.Fatalf("mora MaxPieces = %d, want 12", r.MaxPieces)
	}
}

func TestCheckMill(t *testing.T) {
	r := NewRules(Standard, false)
	var w Bits
	w = w.Set(1).Set(2).Set(3)
	bd := Board{White: w}
	if li := r.CheckMill(bd, 2); li != 0 {
		t.Fatalf("CheckMill(2) = %d, want 0", li)
	}
	if li := r.CheckMill(bd, 5); li != -1 {
		t.Fatalf("CheckMill(5) = %d, want -1 (empty square)", li)
	}
}

func TestSquareTokenRoundTrip(t *testing.T) {
	for sq := 0; sq < NumSquares; sq++ {
		tok, err := SquareToken(sq)
		if err != nil {
			t.Fatalf("SquareToken(%d): %v", sq, err)
		}
		back, err := TokenSquare(tok)
		if err != nil {
			t.Fatalf("TokenSquare(%q): %v", tok, err)
		}
		if back != sq {
			t.Fatalf("round trip %d -> %q -> %d", sq, tok, back)
		}
	}
}

package sector

import "testing"

func TestCollapseUncollapseRoundTrip(t *testing.T) {
	cases := []struct {
		white, black uint32
	}{
		{white: 0, black: 0},
		{white: 0b000000000000000000000111, black: 0b000000000000000000111000},
		{white: 0b101010101010101010101010, black: 0b010101010101010101010101},
		{white: 0xFFFFFF, black: 0},
		{white: 0, black: 0xFFFFFF},
	}

	for _, c := range cases {
		collapsed := collapse(c.white, c.black)
		got := uncollapse(c.white, collapsed)
		if got != c.black&^c.white {
			t.Errorf("collapse/uncollapse round trip failed for white=%024b black=%024b: got %024b, want %024b",
				c.white, c.black, got, c.black&^c.white)
		}
	}
}

func TestCollapsePopCountMatchesBlack(t *testing.T) {
	white := uint32(0b000000000000000011110000)
	black := uint32(0b000000000000000000001111) &^ white

	collapsed := collapse(white, black)
	wantBits := 0
	for b := black; b != 0; b &= b - 1 {
		wantBits++
	}
	gotBits := 0
	for b := collapsed; b != 0; b &= b - 1 {
		gotBits++
	}
	if gotBits != wantBits {
		t.Errorf("collapse changed popcount: got %d bits, want %d", gotBits, wantBits)
	}
}

func TestCollapseIsDenseInLowBits(t *testing.T) {
	white := uint32(0b111111111111111111110000) // only squares 0-3 free
	black := uint32(0b0000000000000000000001010) &^ white

	collapsed := collapse(white, black)
	if collapsed&^0xF != 0 {
		t.Errorf("expected collapse to pack into the 4 free low bits, got %024b", collapsed)
	}
}

package hwio

import "testing"

func TestBitOps8(t *testing.T) {
	var v uint8
	for n := range uint(8) {
		SetBit8(&v, n)
		if !GetBit8(v, n) {
			t.Fatalf("bit %d not set in %08b", n, v)
		}
	}
	if v != 0xff {
		t.Fatalf("v = %02x, want ff", v)
	}

	ClearBit8(&v, 3)
	if v != 0xf7 || GetBiti8(v, 3) != 0 {
		t.Fatalf("v = %02x after clearing bit 3, want f7", v)
	}

	SetBitTo8(&v, 3, true)
	SetBitTo8(&v, 0, false)
	if v != 0xfe {
		t.Fatalf("v = %02x, want fe", v)
	}
}

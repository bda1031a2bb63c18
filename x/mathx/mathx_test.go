package mathx

import "testing"

func TestClamp(t *testing.T) {
	if got := Clamp(5, 0, 3); got != 3 {
		t.Fatalf("Clamp(5,0,3) = %d", got)
	}
	if got := Clamp(-1, 3, 0); got != 0 {
		t.Fatalf("Clamp with swapped bounds = %d", got)
	}
	if got := Clamp(uint16(7), 1, 9); got != 7 {
		t.Fatalf("Clamp inside range = %d", got)
	}
}

func TestBetween(t *testing.T) {
	for _, c := range []struct {
		v, lo, hi int64
		want      bool
	}{
		{0, 0, 10, true},
		{10, 0, 10, true},
		{11, 0, 10, false},
		{-1, 0, 10, false},
		{5, 10, 0, true},
	} {
		if got := Between(c.v, c.lo, c.hi); got != c.want {
			t.Errorf("Between(%d,%d,%d) = %v", c.v, c.lo, c.hi, got)
		}
	}
}

func TestRoundDiv(t *testing.T) {
	for _, c := range []struct{ a, b, want uint64 }{
		{10, 4, 3}, // 2.5 rounds up
		{9, 4, 2},
		{0, 7, 0},
		{7, 0, 0},
		{1 << 40, 1 << 20, 1 << 20},
	} {
		if got := RoundDiv(c.a, c.b); got != c.want {
			t.Errorf("RoundDiv(%d,%d) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}

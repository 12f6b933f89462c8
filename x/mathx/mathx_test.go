package mathx

import "testing"

func TestClampAndBetween(t *testing.T) {
	if got := Clamp(12, 0, 10); got != 10 {
		t.Fatalf("Clamp high = %d", got)
	}
	if got := Clamp(-1, 10, 0); got != 0 {
		t.Fatalf("Clamp swapped = %d", got)
	}
	if !Between(uint32(4_000_000), 16_000_000, 4_000_000) {
		t.Fatal("Between must be order-insensitive")
	}
}

func TestUnsignedHelpers(t *testing.T) {
	if got := MinNonZero[uint32](0, 40); got != 40 {
		t.Fatalf("MinNonZero(0,40) = %d", got)
	}
	if got := MinNonZero[uint32](80, 40); got != 40 {
		t.Fatalf("MinNonZero(80,40) = %d", got)
	}
	if got := AbsDiff[uint32](3, 10); got != 7 {
		t.Fatalf("AbsDiff = %d", got)
	}
	if got := CeilDiv[uint32](80, 40); got != 2 {
		t.Fatalf("CeilDiv exact = %d", got)
	}
	if got := CeilDiv[uint32](81, 40); got != 3 {
		t.Fatalf("CeilDiv round up = %d", got)
	}
	if got := RoundDiv[uint32](72_000_000, 115_200); got != 625 {
		t.Fatalf("RoundDiv = %d", got)
	}
	if CeilDiv[uint32](1, 0) != 0 || RoundDiv[uint32](1, 0) != 0 {
		t.Fatal("zero divisor must yield 0")
	}
}

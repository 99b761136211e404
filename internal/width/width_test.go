package width

import (
	"math/big"
	"testing"
)

func TestAddSubMul_Wrap(t *testing.T) {
	for _, w := range All {
		max := new(big.Int).Sub(w.modulus(), big.NewInt(1))
		maxBytes := fromBig(w, max)

		one := fromBig(w, big.NewInt(1))

		got := Add(w, maxBytes, one)
		if !Equal(got, Zero(w)) {
			t.Fatalf("width %d: (2^w - 1) + 1 did not wrap to zero", w)
		}

		got = Sub(w, Zero(w), one)
		if !Equal(got, maxBytes) {
			t.Fatalf("width %d: 0 - 1 did not wrap to 2^w - 1", w)
		}

		sq := Mul(w, maxBytes, maxBytes)
		wantSq := fromBig(w, new(big.Int).Mul(max, max))
		if !Equal(sq, wantSq) {
			t.Fatalf("width %d: (2^w-1)^2 mod 2^w mismatch", w)
		}
	}
}

func TestLshAndBit(t *testing.T) {
	one := fromBig(W32, big.NewInt(1))
	got := Lsh(W32, one, 5)
	want := fromBig(W32, big.NewInt(32))
	if !Equal(got, want) {
		t.Fatalf("Lsh(1, 5) = %v, want %v", got, want)
	}

	if Bit(got, 5) != 1 {
		t.Fatalf("Bit(1<<5, 5) = %d, want 1", Bit(got, 5))
	}
	if Bit(got, 4) != 0 {
		t.Fatalf("Bit(1<<5, 4) = %d, want 0", Bit(got, 4))
	}
}

func TestDoubleMod2(t *testing.T) {
	three := fromBig(W8, big.NewInt(3))
	got := DoubleMod2(W8, three)
	want := fromBig(W8, big.NewInt(6))
	if !Equal(got, want) {
		t.Fatalf("DoubleMod2(3) = %v, want %v", got, want)
	}
}

func TestRandomLength(t *testing.T) {
	for _, w := range All {
		v, err := Random(w, nil)
		if err != nil {
			t.Fatalf("width %d: %v", w, err)
		}
		if len(v) != w.Bytes() {
			t.Fatalf("width %d: got %d bytes, want %d", w, len(v), w.Bytes())
		}
	}
}

func TestNewBatches_SkipsZeroCounts(t *testing.T) {
	counts := map[Width]int{W8: 2, W16: 0, W32: 3}
	batches := NewBatches(counts)
	if _, ok := batches[W16]; ok {
		t.Fatal("NewBatches kept a zero-count width")
	}
	if batches[W8].Len() != 2 || batches[W32].Len() != 3 {
		t.Fatal("NewBatches allocated wrong lengths")
	}
}

package freq

import (
	"errors"
	"math"
	"testing"

	"clocktree-go/errcode"
)

func TestHzString(t *testing.T) {
	cases := map[Hz]string{
		0:           "0Hz",
		500:         "500Hz",
		32_768:      "32.768kHz",
		16 * MHz:    "16MHz",
		80 * MHz:    "80MHz",
		1_500_000:   "1.5MHz",
		2_666_666:   "2.666MHz",
		168_000_000: "168MHz",
	}
	for f, want := range cases {
		if got := f.String(); got != want {
			t.Fatalf("Hz(%d).String() = %q, want %q", uint32(f), got, want)
		}
	}
}

func TestEffective(t *testing.T) {
	got, err := Effective(8*MHz, 20, 1, 2)
	if err != nil || got != 80*MHz {
		t.Fatalf("Effective(8MHz*20/1/2) = %v, %v", got, err)
	}
	// Successive division must match a single division by the product.
	got, _ = Effective(16*MHz, 1, 3, 7)
	if want := Hz(16_000_000 / 21); got != want {
		t.Fatalf("Effective truncation = %d, want %d", got, want)
	}
	if _, err := Effective(8*MHz, 1, 0); !errors.Is(err, ErrZeroDivider) {
		t.Fatalf("zero divider err = %v", err)
	}
	_, err = Effective(Hz(math.MaxUint32), 2)
	if !errors.Is(err, ErrOverflow) {
		t.Fatalf("overflow err = %v", err)
	}
	if errcode.Of(err) != errcode.Overflow {
		t.Fatalf("overflow code = %q", errcode.Of(err))
	}
}

func TestEffectiveIsDeterministic(t *testing.T) {
	for i := 0; i < 3; i++ {
		got, _ := Effective(25*MHz, 336, 25, 2)
		if got != 168*MHz {
			t.Fatalf("run %d: got %v", i, got)
		}
	}
}

func TestPLLOutputs(t *testing.T) {
	p := PLLConfig{Source: HSE, M: 1, N: 20, R: 2, Q: 4}
	if vin, _ := p.VCOIn(8 * MHz); vin != 8*MHz {
		t.Fatalf("VCOIn = %v", vin)
	}
	if vco, _ := p.VCO(8 * MHz); vco != 160*MHz {
		t.Fatalf("VCO = %v", vco)
	}
	if out, _ := p.Out(8 * MHz); out != 80*MHz {
		t.Fatalf("Out = %v", out)
	}
	if q, _ := p.OutQ(8 * MHz); q != 40*MHz {
		t.Fatalf("OutQ = %v", q)
	}
	if pp, _ := p.OutP(8 * MHz); pp != 0 {
		t.Fatalf("unused P must be 0, got %v", pp)
	}
	if !p.Enabled() || (PLLConfig{}).Enabled() {
		t.Fatal("Enabled mismatch")
	}
}

func TestParseSource(t *testing.T) {
	for _, s := range []Source{HSI, MSI, LSI, HSE, LSE, PLL} {
		got, ok := ParseSource(s.String())
		if !ok || got != s {
			t.Fatalf("ParseSource(%q) = %v, %v", s.String(), got, ok)
		}
	}
	if _, ok := ParseSource("none"); ok {
		t.Fatal("none must not parse")
	}
	if !HSI.Internal() || HSE.Internal() || PLL.Oscillator() || !LSE.Oscillator() {
		t.Fatal("classification mismatch")
	}
}

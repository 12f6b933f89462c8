// Package freq is the frequency model: oscillator sources, PLL stages and
// divider arithmetic. Nothing here touches hardware.
package freq

import (
	"errors"
	"math"

	"clocktree-go/errcode"
	"clocktree-go/x/conv"
)

// Hz is a clock frequency. uint32 covers every on-chip clock of the
// supported families.
type Hz uint32

const (
	KHz Hz = 1_000
	MHz Hz = 1_000_000
)

var (
	ErrOverflow    = overflowError{}
	ErrZeroDivider = errors.New("zero divider")
)

type overflowError struct{}

func (overflowError) Error() string      { return "frequency overflow" }
func (overflowError) Code() errcode.Code { return errcode.Overflow }

// String renders f as "80MHz", "32.768kHz" or "500Hz" (three decimals at
// most, trailing zeros trimmed). No fmt.
func (f Hz) String() string {
	unit, div := "Hz", Hz(1)
	switch {
	case f >= MHz:
		unit, div = "MHz", MHz
	case f >= KHz:
		unit, div = "kHz", KHz
	}
	var buf [20]byte
	out := string(conv.Utoa(buf[:], uint64(f/div)))
	if div > 1 {
		milli := uint64(f%div) * 1000 / uint64(div)
		d := [3]byte{byte('0' + milli/100), byte('0' + milli/10%10), byte('0' + milli%10)}
		n := 3
		for n > 0 && d[n-1] == '0' {
			n--
		}
		if n > 0 {
			out += "." + string(d[:n])
		}
	}
	return out + unit
}

// Effective computes in*mul/(divs[0]*divs[1]*...) with 64-bit intermediates.
// Successive floor divisions equal one floor division by the product, so
// the divider product itself can never overflow.
func Effective(in Hz, mul uint32, divs ...uint32) (Hz, error) {
	out := uint64(in) * uint64(mul)
	for _, d := range divs {
		if d == 0 {
			return 0, ErrZeroDivider
		}
		out /= uint64(d)
	}
	if out > math.MaxUint32 {
		return 0, ErrOverflow
	}
	return Hz(out), nil
}

// Divide is Effective with a unit multiplier.
func Divide(in Hz, divs ...uint32) (Hz, error) { return Effective(in, 1, divs...) }

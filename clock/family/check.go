package family

import (
	"errors"

	"clocktree-go/clock/freq"
)

var (
	errNoName        = errors.New("missing name")
	errNoReset       = errors.New("reset source is not a sysclk source")
	errNoSafe        = errors.New("safe source must be an internal sysclk source")
	errNoAHB         = errors.New("missing ahb bus")
	errWaitStates    = errors.New("wait-state thresholds must ascend")
	errVCO           = errors.New("pll vco/input bounds inverted")
	errCodeWidth     = errors.New("encoded value does not fit its field")
	errCodeTable     = errors.New("table encoding needs one code per value")
	errDupGate       = errors.New("two peripherals share an enable bit")
	errDupPeriph     = errors.New("duplicate peripheral id")
	errMissingOsc    = errors.New("sysclk source without oscillator fields")
	errSysMaxLatency = errors.New("wait-state table does not reach sysclk max")
)

// Check validates a family table for internal consistency.
func Check(f *Family) error {
	if f.Name == "" {
		return errNoName
	}
	if !f.SysSource(f.Reset) {
		return errNoReset
	}
	if !f.Safe.Internal() || !f.SysSource(f.Safe) {
		return errNoSafe
	}
	for src := range f.SWCodes {
		if src != freq.PLL && !f.Osc[src].Present() {
			return errMissingOsc
		}
	}
	if _, ok := f.Bus(AHB); !ok {
		return errNoAHB
	}
	for i := 1; i < len(f.WaitStates); i++ {
		if f.WaitStates[i] <= f.WaitStates[i-1] {
			return errWaitStates
		}
	}
	if n := len(f.WaitStates); n == 0 || f.WaitStates[n-1] < f.SysMax {
		return errSysMaxLatency
	}
	p := &f.PLL
	if p.InMin > p.InMax || p.VCOMin > p.VCOMax {
		return errVCO
	}
	divs := []Divider{p.M, p.N, p.R, p.Q, p.P}
	for _, b := range f.Buses {
		divs = append(divs, b.Div)
	}
	for _, d := range divs {
		if err := checkDivider(d); err != nil {
			return err
		}
	}
	seenBit := map[Field]bool{}
	seenID := map[ID]bool{}
	for _, e := range f.Periphs {
		if seenID[e.ID] {
			return errDupPeriph
		}
		seenID[e.ID] = true
		if seenBit[e.Loc.Enable] {
			return errDupGate
		}
		seenBit[e.Loc.Enable] = true
	}
	return nil
}

func checkDivider(d Divider) error {
	if d.Empty() || !d.Field.Valid() {
		return nil
	}
	if d.Enc == EncTable && len(d.Codes) != len(d.Values) {
		return errCodeTable
	}
	var err error
	d.Each(func(v uint32) bool {
		if d.Encode(v) > d.Field.Max() || d.Decode(d.Encode(v)) != v {
			err = errCodeWidth
			return false
		}
		return true
	})
	return err
}

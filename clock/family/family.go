// Package family is the Family Adaptation Layer: one declarative table per
// chip family. The solver, sequencer and gate are written against *Family
// and never switch on a family name.
package family

import "clocktree-go/clock/freq"

// Bus identifies a clock domain derived from SYSCLK.
type Bus uint8

const (
	AHB  Bus = iota
	APB1     // APB on single-APB families
	APB2
	numBuses
)

const NumBuses = int(numBuses)

var busNames = [...]string{"ahb", "apb1", "apb2"}

func (b Bus) String() string {
	if int(b) < len(busNames) {
		return busNames[b]
	}
	return "bus?"
}

// ParseBus accepts "ahb", "apb1", "apb2" and "apb" (alias of apb1).
func ParseBus(s string) (Bus, bool) {
	if s == "apb" {
		return APB1, true
	}
	for i, n := range busNames {
		if n == s {
			return Bus(i), true
		}
	}
	return 0, false
}

// Osc describes one oscillator. Nominal is zero for external sources, whose
// frequency the caller declares.
type Osc struct {
	Nominal freq.Hz
	On      Field
	Ready   Field
}

// Present reports whether the family has the oscillator.
func (o Osc) Present() bool { return o.On.Valid() }

// PLLSpec holds the main PLL's legal space and register layout.
// R is the output that feeds SYSCLK, whatever the reference manual calls it.
type PLLSpec struct {
	Src      Field
	SrcCodes map[freq.Source]uint32 // legal PLL inputs

	M, N, R, Q, P Divider

	InMin, InMax   freq.Hz // after M
	VCOMin, VCOMax freq.Hz
	OutMax         freq.Hz // R output
	QMax           freq.Hz
	PMax           freq.Hz

	On, Ready Field
}

// Accepts reports whether src may feed the PLL.
func (p *PLLSpec) Accepts(src freq.Source) bool {
	_, ok := p.SrcCodes[src]
	return ok
}

// BusSpec is one bus prescaler stage. AHB divides SYSCLK, APBx divide HCLK.
type BusSpec struct {
	Bus Bus
	Max freq.Hz
	Div Divider
}

// Family is the complete per-family table.
type Family struct {
	Name string
	Part string // representative part number

	Osc       [freq.NumSources]Osc
	HSEMin    freq.Hz
	HSEMax    freq.Hz
	HSEBypass Field

	Reset freq.Source // SYSCLK source out of reset
	Safe  freq.Source // internal source used while the PLL is reprogrammed

	SW, SWS Field
	SWCodes map[freq.Source]uint32

	PLL PLLSpec

	Buses  []BusSpec
	SysMax freq.Hz

	Latency    Field
	WaitStates []freq.Hz // WaitStates[n] = highest HCLK allowed with n wait states

	Periphs []Entry
}

// Bus returns the spec for b, if the family has that bus.
func (f *Family) Bus(b Bus) (*BusSpec, bool) {
	for i := range f.Buses {
		if f.Buses[i].Bus == b {
			return &f.Buses[i], true
		}
	}
	return nil, false
}

// Nominal returns the fixed frequency of an internal source, or hse for HSE.
func (f *Family) Nominal(src freq.Source, hse freq.Hz) freq.Hz {
	if src == freq.HSE {
		return hse
	}
	return f.Osc[src].Nominal
}

// SysSource reports whether src can drive the SYSCLK multiplexer.
func (f *Family) SysSource(src freq.Source) bool {
	_, ok := f.SWCodes[src]
	return ok
}

// SourceForCode maps a SW/SWS code back to its source.
func (f *Family) SourceForCode(code uint32) (freq.Source, bool) {
	for s, c := range f.SWCodes {
		if c == code {
			return s, true
		}
	}
	return freq.NoSource, false
}

// WaitStatesFor returns the flash wait states required at hclk.
func (f *Family) WaitStatesFor(hclk freq.Hz) (uint32, bool) {
	for n, max := range f.WaitStates {
		if hclk <= max {
			return uint32(n), true
		}
	}
	return 0, false
}

// Lookup resolves a peripheral ID to its register location.
func (f *Family) Lookup(id ID) (Loc, bool) {
	for _, e := range f.Periphs {
		if e.ID == id {
			return e.Loc, true
		}
	}
	return Loc{}, false
}

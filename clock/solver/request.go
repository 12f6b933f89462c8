// Package solver turns a declarative clock request into a validated Plan.
// It is pure: no register access, no global state.
package solver

import (
	"clocktree-go/clock/family"
	"clocktree-go/clock/freq"
)

// PLLMode restricts the search to direct or PLL paths.
type PLLMode uint8

const (
	PLLAuto PLLMode = iota
	PLLOff
	PLLOn
)

func (m PLLMode) String() string {
	switch m {
	case PLLOff:
		return "off"
	case PLLOn:
		return "on"
	default:
		return "auto"
	}
}

// Override pins individual dividers. Zero leaves a field to the search.
// Q and P only apply when the plan runs the PLL.
type Override struct {
	M, N, R, Q, P uint32
	Bus           [family.NumBuses]uint32
}

// PLLFixed reports whether any PLL path divider is pinned, which forces
// the PLL path.
func (o Override) PLLFixed() bool { return o.M != 0 || o.N != 0 || o.R != 0 }

func (o Override) Any() bool {
	if o.PLLFixed() || o.Q != 0 || o.P != 0 {
		return true
	}
	for _, d := range o.Bus {
		if d != 0 {
			return true
		}
	}
	return false
}

// Request is the caller's intent.
//
// SysClk zero selects the default path: the chosen source (or the family's
// reset source) straight into SYSCLK with the fastest legal bus clocks.
// Source NoSource means HSE when HSE is declared, otherwise the family's
// safe internal oscillator. Ceilings of zero mean the family maximum.
type Request struct {
	Family    *family.Family
	Source    freq.Source
	HSE       freq.Hz
	HSEBypass bool
	SysClk    freq.Hz
	UsePLL    PLLMode
	Ceilings  [family.NumBuses]freq.Hz
	Override  Override
}

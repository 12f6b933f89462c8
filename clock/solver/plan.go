package solver

import (
	"clocktree-go/clock/family"
	"clocktree-go/clock/freq"
	"clocktree-go/x/conv"
)

// Freqs are a plan's derived frequencies. Zero means the stage is unused.
type Freqs struct {
	Input  freq.Hz // oscillator feeding SYSCLK or the PLL
	VCO    freq.Hz
	SysClk freq.Hz
	PLLQ   freq.Hz
	PLLP   freq.Hz
	Bus    [family.NumBuses]freq.Hz
}

// Plan is a fully resolved clock configuration. Treat it as immutable.
type Plan struct {
	Family    *family.Family
	Source    freq.Source    // SYSCLK mux input
	PLL       freq.PLLConfig // set when Source == freq.PLL
	HSE       freq.Hz        // declared HSE, when the plan uses it
	HSEBypass bool
	Div       [family.NumBuses]uint32 // zero for buses the family lacks
	Ceilings  [family.NumBuses]freq.Hz
	Latency   uint32
	Freqs     Freqs
}

// Input is the oscillator the plan runs from.
func (p *Plan) Input() freq.Source {
	if p.Source == freq.PLL {
		return p.PLL.Source
	}
	return p.Source
}

// String renders a one-line summary, e.g.
//
//	l4 sysclk=80MHz pll(hse 8MHz m=1 n=20 r=2 q=4) ahb=80MHz/1 apb1=40MHz/2 apb2=80MHz/1 ws=4
func (p *Plan) String() string {
	if p.Family == nil {
		return "plan{}"
	}
	s := p.Family.Name + " sysclk=" + p.Freqs.SysClk.String() + " "
	if p.Source == freq.PLL {
		s += "pll(" + p.PLL.Source.String() + " " + p.Freqs.Input.String() +
			" m=" + u(p.PLL.M) + " n=" + u(p.PLL.N) + " r=" + u(p.PLL.R)
		if p.PLL.Q != 0 {
			s += " q=" + u(p.PLL.Q)
		}
		if p.PLL.P != 0 {
			s += " p=" + u(p.PLL.P)
		}
		s += ")"
	} else {
		s += p.Source.String() + "(" + p.Freqs.Input.String() + ")"
	}
	if p.HSEBypass {
		s += " bypass"
	}
	for _, b := range p.Family.Buses {
		s += " " + b.Bus.String() + "=" + p.Freqs.Bus[b.Bus].String() + "/" + u(p.Div[b.Bus])
	}
	return s + " ws=" + u(p.Latency)
}

func u(v uint32) string { return conv.U32(v) }

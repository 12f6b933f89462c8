package freq

// PLLConfig is one set of main-PLL divider fields. Families that lack an output
// leave it zero; a zero Q or P means the output is not used.
//
//	vco_in  = in / M
//	vco     = vco_in * N
//	out_R   = vco / R    (or P, whichever output feeds SYSCLK on the family)
type PLLConfig struct {
	Source Source
	M      uint32 // pre-divider
	N      uint32 // multiplier
	R      uint32 // system output divider
	Q      uint32 // 48 MHz domain divider
	P      uint32 // auxiliary divider
}

func (p PLLConfig) VCOIn(in Hz) (Hz, error) { return Divide(in, p.M) }

func (p PLLConfig) VCO(in Hz) (Hz, error) { return Effective(in, p.N, p.M) }

// Out is the system output (VCO / R).
func (p PLLConfig) Out(in Hz) (Hz, error) { return Effective(in, p.N, p.M, p.R) }

// OutQ returns 0 when Q is unused.
func (p PLLConfig) OutQ(in Hz) (Hz, error) {
	if p.Q == 0 {
		return 0, nil
	}
	return Effective(in, p.N, p.M, p.Q)
}

// OutP returns 0 when P is unused.
func (p PLLConfig) OutP(in Hz) (Hz, error) {
	if p.P == 0 {
		return 0, nil
	}
	return Effective(in, p.N, p.M, p.P)
}

// Enabled reports whether the divider set describes a running PLL.
func (p PLLConfig) Enabled() bool { return p.Source != NoSource && p.M != 0 && p.N != 0 && p.R != 0 }

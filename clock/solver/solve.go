// clock/solver/solve.go
package solver

import (
	"clocktree-go/clock/clockerr"
	"clocktree-go/clock/family"
	"clocktree-go/clock/freq"
	"clocktree-go/x/mathx"
)

// Search stages, in order. A failure recorded at a later stage is a better
// diagnosis than one at an earlier stage.
const (
	stageSource = iota
	stageVCOIn
	stageVCO
	stageOut
	stageBus
	stageFlash
)

type candidate struct {
	src   freq.Source
	pll   freq.PLLConfig
	vco   freq.Hz
	sys   freq.Hz
	div   [family.NumBuses]uint32
	bus   [family.NumBuses]freq.Hz
	total uint32 // sum of bus dividers
}

func (c *candidate) direct() bool { return c.src != freq.PLL }

func cmpU32(a, b uint32) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// compare orders candidates by preference: closest to target, least bus
// prescaling, direct before PLL, larger VCO input (smaller M), smaller N,
// smaller R.
func compare(a, b *candidate, target freq.Hz) int {
	if c := cmpU32(uint32(mathx.AbsDiff(a.sys, target)), uint32(mathx.AbsDiff(b.sys, target))); c != 0 {
		return c
	}
	if c := cmpU32(a.total, b.total); c != 0 {
		return c
	}
	if a.direct() != b.direct() {
		if a.direct() {
			return -1
		}
		return 1
	}
	if c := cmpU32(a.pll.M, b.pll.M); c != 0 {
		return c
	}
	if c := cmpU32(a.pll.N, b.pll.N); c != 0 {
		return c
	}
	return cmpU32(a.pll.R, b.pll.R)
}

type search struct {
	f      *family.Family
	req    *Request
	src    freq.Source
	in     freq.Hz
	target freq.Hz
	ceil   [family.NumBuses]freq.Hz

	best    *candidate
	collect *[]candidate

	failStage int
	failErr   *clockerr.ConfigUnsatisfiable
}

func (s *search) fail(stage int, b clockerr.Bound, limit, got freq.Hz) {
	if s.failErr != nil && stage <= s.failStage {
		return
	}
	s.failStage = stage
	s.failErr = &clockerr.ConfigUnsatisfiable{Bound: b, Limit: limit, Requested: got}
}

// Solve resolves req into a Plan or a typed failure.
func Solve(req Request) (Plan, error) {
	s, mode, err := prepare(&req)
	if err != nil {
		return Plan{}, err
	}
	s.run(mode)
	if s.best == nil {
		return Plan{}, s.err()
	}
	return s.plan(s.best)
}

// prepare validates req and sets up a search over it.
func prepare(req *Request) (*search, PLLMode, error) {
	f := req.Family
	if f == nil {
		return nil, 0, clockerr.ErrUnknownFamily
	}
	if err := checkOverride(f, &req.Override); err != nil {
		return nil, 0, err
	}
	src, in, err := input(f, req)
	if err != nil {
		return nil, 0, err
	}
	if req.SysClk > f.SysMax {
		return nil, 0, &clockerr.ConfigUnsatisfiable{Bound: clockerr.BoundSysClk, Limit: f.SysMax, Requested: req.SysClk}
	}

	mode := req.UsePLL
	if req.Override.PLLFixed() {
		if mode == PLLOff {
			return nil, 0, &clockerr.ConfigUnsatisfiable{Bound: clockerr.BoundNoPLLPath}
		}
		mode = PLLOn
	}
	target := req.SysClk
	if target == 0 {
		if mode == PLLOn {
			target = f.SysMax
		} else {
			mode = PLLOff
		}
	}

	s := &search{f: f, req: req, src: src, in: in, target: target}
	for _, b := range f.Buses {
		s.ceil[b.Bus] = mathx.MinNonZero(req.Ceilings[b.Bus], b.Max)
	}
	return s, mode, nil
}

func (s *search) run(mode PLLMode) {
	if mode != PLLOn {
		s.direct()
	}
	if mode != PLLOff {
		s.pll()
	}
}

func (s *search) err() error {
	if s.failErr != nil {
		return s.failErr
	}
	return &clockerr.ConfigUnsatisfiable{Bound: clockerr.BoundNoPLLPath}
}

// input resolves the oscillator and its frequency.
func input(f *family.Family, req *Request) (freq.Source, freq.Hz, error) {
	src := req.Source
	if src == freq.NoSource {
		switch {
		case req.SysClk == 0 && !req.Override.PLLFixed():
			src = f.Reset
		case req.HSE != 0:
			src = freq.HSE
		default:
			src = f.Safe
		}
	}
	if !src.Oscillator() || !f.Osc[src].Present() {
		return 0, 0, &clockerr.ConfigUnsatisfiable{Bound: clockerr.BoundSource}
	}
	if src == freq.HSE {
		// A declared HSE is only checked when the request runs from it.
		switch {
		case req.HSE == 0:
			return 0, 0, clockerr.ErrHSEUndeclared
		case req.HSE < f.HSEMin:
			return 0, 0, &clockerr.ConfigUnsatisfiable{Bound: clockerr.BoundHSE, Limit: f.HSEMin, Requested: req.HSE}
		case req.HSE > f.HSEMax:
			return 0, 0, &clockerr.ConfigUnsatisfiable{Bound: clockerr.BoundHSE, Limit: f.HSEMax, Requested: req.HSE}
		}
	}
	return src, f.Nominal(src, req.HSE), nil
}

func checkOverride(f *family.Family, o *Override) error {
	p := &f.PLL
	fields := []struct {
		name string
		v    uint32
		r    family.Range
	}{
		{"m", o.M, p.M.Range},
		{"n", o.N, p.N.Range},
		{"r", o.R, p.R.Range},
		{"q", o.Q, p.Q.Range},
		{"p", o.P, p.P.Range},
	}
	for b := range o.Bus {
		var r family.Range
		if spec, ok := f.Bus(family.Bus(b)); ok {
			r = spec.Div.Range
		}
		fields = append(fields, struct {
			name string
			v    uint32
			r    family.Range
		}{family.Bus(b).String(), o.Bus[b], r})
	}
	for _, fd := range fields {
		if fd.v != 0 && !fd.r.Contains(fd.v) {
			return &clockerr.InvalidOverride{Field: fd.name, Value: fd.v, Min: fd.r.Min, Max: fd.r.Max}
		}
	}
	return nil
}

// restrict narrows r to the pinned value v, if any. v is already validated.
func restrict(r family.Range, v uint32) family.Range {
	if v == 0 {
		return r
	}
	return family.Set(v)
}

func (s *search) direct() {
	if !s.f.SysSource(s.src) {
		s.fail(stageSource, clockerr.BoundSource, 0, 0)
		return
	}
	if s.in > s.f.SysMax {
		s.fail(stageOut, clockerr.BoundSysClk, s.f.SysMax, s.in)
		return
	}
	s.consider(candidate{src: s.src, sys: s.in})
}

func (s *search) pll() {
	p := &s.f.PLL
	if !p.Accepts(s.src) {
		s.fail(stageSource, clockerr.BoundNoPLLPath, 0, 0)
		return
	}
	o := &s.req.Override
	outMax := mathx.MinNonZero(p.OutMax, s.f.SysMax)

	restrict(p.M.Range, o.M).Each(func(m uint32) bool {
		vin := s.in / freq.Hz(m)
		if vin < p.InMin {
			s.fail(stageVCOIn, clockerr.BoundVCOIn, p.InMin, vin)
			return false // M ascending: only smaller from here
		}
		if vin > p.InMax {
			s.fail(stageVCOIn, clockerr.BoundVCOIn, p.InMax, vin)
			return true
		}
		restrict(p.N.Range, o.N).Each(func(n uint32) bool {
			vco, err := freq.Effective(s.in, n, m)
			if err != nil || vco > p.VCOMax {
				s.fail(stageVCO, clockerr.BoundVCO, p.VCOMax, vco)
				return false
			}
			if vco < p.VCOMin {
				s.fail(stageVCO, clockerr.BoundVCO, p.VCOMin, vco)
				return true
			}
			restrict(p.R.Range, o.R).Each(func(r uint32) bool {
				out := vco / freq.Hz(r)
				if out > outMax {
					s.fail(stageOut, clockerr.BoundPLLOut, outMax, out)
					return true
				}
				s.consider(candidate{
					src: freq.PLL,
					pll: freq.PLLConfig{Source: s.src, M: m, N: n, R: r},
					vco: vco,
					sys: out,
				})
				return true
			})
			return true
		})
		return true
	})
}

func (s *search) consider(c candidate) {
	if !s.assignBuses(&c) {
		return
	}
	if _, ok := s.f.WaitStatesFor(c.bus[family.AHB]); !ok {
		s.fail(stageFlash, clockerr.BoundFlash, s.f.WaitStates[len(s.f.WaitStates)-1], c.bus[family.AHB])
		return
	}
	if s.collect != nil {
		*s.collect = append(*s.collect, c)
	}
	if s.best == nil || compare(&c, s.best, s.target) < 0 {
		best := c
		s.best = &best
	}
}

// assignBuses picks the smallest legal divider per bus that meets its
// ceiling: AHB from SYSCLK, the APB buses from HCLK.
func (s *search) assignBuses(c *candidate) bool {
	ahb, _ := s.f.Bus(family.AHB)
	if !s.pickDiv(ahb, c.sys, c) {
		return false
	}
	hclk := c.bus[family.AHB]
	for i := range s.f.Buses {
		b := &s.f.Buses[i]
		if b.Bus == family.AHB {
			continue
		}
		if !s.pickDiv(b, hclk, c) {
			return false
		}
	}
	return true
}

func (s *search) pickDiv(b *family.BusSpec, in freq.Hz, c *candidate) bool {
	ceil := s.ceil[b.Bus]
	r := restrict(b.Div.Range, s.req.Override.Bus[b.Bus])
	var got uint32
	r.Each(func(d uint32) bool {
		if in/freq.Hz(d) <= ceil {
			got = d
			return false
		}
		return true
	})
	if got == 0 {
		s.fail(stageBus, busBound(s.f, b.Bus), ceil, in/freq.Hz(r.Max))
		return false
	}
	c.div[b.Bus] = got
	c.bus[b.Bus] = in / freq.Hz(got)
	c.total += got
	return true
}

func busBound(f *family.Family, b family.Bus) clockerr.Bound {
	switch b {
	case family.AHB:
		return clockerr.BoundAHB
	case family.APB2:
		return clockerr.BoundAPB2
	}
	if _, ok := f.Bus(family.APB2); !ok {
		return clockerr.BoundAPB
	}
	return clockerr.BoundAPB1
}

// plan finishes the winning candidate: auxiliary PLL outputs and flash
// latency.
func (s *search) plan(c *candidate) (Plan, error) {
	ws, _ := s.f.WaitStatesFor(c.bus[family.AHB])
	pl := Plan{
		Family:   s.f,
		Source:   c.src,
		Div:      c.div,
		Ceilings: s.ceil,
		Latency:  ws,
		Freqs: Freqs{
			Input:  s.in,
			VCO:    c.vco,
			SysClk: c.sys,
			Bus:    c.bus,
		},
	}
	if s.src == freq.HSE {
		pl.HSE = s.req.HSE
		pl.HSEBypass = s.req.HSEBypass
	}
	if c.src != freq.PLL {
		return pl, nil
	}
	p := &s.f.PLL
	pl.PLL = c.pll
	q, qHz, ok := aux(p.Q, s.req.Override.Q, c.vco, p.QMax)
	if !ok {
		return Plan{}, &clockerr.ConfigUnsatisfiable{Bound: clockerr.BoundPLLOut, Limit: p.QMax, Requested: qHz}
	}
	pp, pHz, ok := aux(p.P, s.req.Override.P, c.vco, p.PMax)
	if !ok {
		return Plan{}, &clockerr.ConfigUnsatisfiable{Bound: clockerr.BoundPLLOut, Limit: p.PMax, Requested: pHz}
	}
	pl.PLL.Q, pl.PLL.P = q, pp
	pl.Freqs.PLLQ, pl.Freqs.PLLP = qHz, pHz
	return pl, nil
}

// aux picks an auxiliary PLL divider: the pinned value, else the smallest
// legal divider keeping the output at or below max. Zero means the output
// stays unused.
func aux(d family.Divider, pinned uint32, vco, max freq.Hz) (uint32, freq.Hz, bool) {
	if d.Empty() {
		return 0, 0, true
	}
	if pinned != 0 {
		out := vco / freq.Hz(pinned)
		return pinned, out, max == 0 || out <= max
	}
	var pick uint32
	d.Each(func(v uint32) bool {
		if vco/freq.Hz(v) <= max {
			pick = v
			return false
		}
		return true
	})
	if pick == 0 {
		return 0, 0, true
	}
	return pick, vco / freq.Hz(pick), true
}

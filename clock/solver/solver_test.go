package solver

import (
	"errors"
	"testing"

	"clocktree-go/clock/clockerr"
	"clocktree-go/clock/family"
	"clocktree-go/clock/family/f3"
	"clocktree-go/clock/family/f4"
	"clocktree-go/clock/family/g0"
	"clocktree-go/clock/family/g4"
	"clocktree-go/clock/family/l4"
	"clocktree-go/clock/freq"
	"clocktree-go/errcode"
)

var families = []*family.Family{f3.Family, f4.Family, g0.Family, g4.Family, l4.Family}

func mustSolve(t *testing.T, req Request) Plan {
	t.Helper()
	p, err := Solve(req)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	return p
}

// 8 MHz crystal, 80 MHz target, APB1 capped at 40 MHz.
func TestL4HSE80WithAPB1Ceiling(t *testing.T) {
	req := Request{Family: l4.Family, Source: freq.HSE, HSE: 8 * freq.MHz, SysClk: 80 * freq.MHz}
	req.Ceilings[family.APB1] = 40 * freq.MHz
	p := mustSolve(t, req)

	if p.Source != freq.PLL || p.Freqs.SysClk != 80*freq.MHz {
		t.Fatalf("plan = %s", p.String())
	}
	if p.PLL != (freq.PLLConfig{Source: freq.HSE, M: 1, N: 20, R: 2, Q: 4, P: 7}) {
		t.Fatalf("pll = %+v", p.PLL)
	}
	if p.Div[family.AHB] != 1 || p.Div[family.APB1] != 2 || p.Div[family.APB2] != 1 {
		t.Fatalf("div = %v", p.Div)
	}
	if p.Freqs.Bus[family.APB1] != 40*freq.MHz {
		t.Fatalf("apb1 = %v", p.Freqs.Bus[family.APB1])
	}
	if p.Latency != 4 {
		t.Fatalf("latency = %d", p.Latency)
	}
	if p.HSE != 8*freq.MHz {
		t.Fatalf("hse = %v", p.HSE)
	}
	want := "l4 sysclk=80MHz pll(hse 8MHz m=1 n=20 r=2 q=4 p=7) ahb=80MHz/1 apb1=40MHz/2 apb2=80MHz/1 ws=4"
	if got := p.String(); got != want {
		t.Fatalf("String() =\n %s\nwant\n %s", got, want)
	}
}

func TestF4168(t *testing.T) {
	p := mustSolve(t, Request{Family: f4.Family, HSE: 8 * freq.MHz, SysClk: 168 * freq.MHz})
	if p.PLL.M != 4 || p.PLL.N != 168 || p.PLL.R != 2 || p.PLL.Q != 7 {
		t.Fatalf("pll = %+v", p.PLL)
	}
	if p.Freqs.PLLQ != 48*freq.MHz {
		t.Fatalf("pllq = %v", p.Freqs.PLLQ)
	}
	if p.Div[family.APB1] != 4 || p.Div[family.APB2] != 2 {
		t.Fatalf("div = %v", p.Div)
	}
	if p.Latency != 5 {
		t.Fatalf("latency = %d", p.Latency)
	}
}

func TestF3SinglePLLStage(t *testing.T) {
	p := mustSolve(t, Request{Family: f3.Family, HSE: 8 * freq.MHz, SysClk: 72 * freq.MHz})
	if p.PLL.M != 1 || p.PLL.N != 9 || p.PLL.R != 1 {
		t.Fatalf("pll = %+v", p.PLL)
	}
	if p.Freqs.Bus[family.APB1] != 36*freq.MHz || p.Div[family.APB1] != 2 {
		t.Fatalf("apb1 = %v /%d", p.Freqs.Bus[family.APB1], p.Div[family.APB1])
	}
}

func TestAboveSysMax(t *testing.T) {
	for _, f := range families {
		_, err := Solve(Request{Family: f, SysClk: f.SysMax + 1})
		cu, ok := clockerr.Unsatisfiable(err)
		if !ok {
			t.Fatalf("%s: err = %v", f.Name, err)
		}
		if cu.Bound != clockerr.BoundSysClk || cu.Limit != f.SysMax {
			t.Fatalf("%s: %+v", f.Name, cu)
		}
		if errcode.Of(err) != errcode.ConfigUnsatisfiable {
			t.Fatalf("%s: code = %s", f.Name, errcode.Of(err))
		}
	}
}

func TestDefaultPath(t *testing.T) {
	for _, f := range families {
		p := mustSolve(t, Request{Family: f})
		if p.Source != f.Reset {
			t.Fatalf("%s: source = %v", f.Name, p.Source)
		}
		if p.Freqs.SysClk != f.Osc[f.Reset].Nominal {
			t.Fatalf("%s: sysclk = %v", f.Name, p.Freqs.SysClk)
		}
		for _, b := range f.Buses {
			if p.Div[b.Bus] != 1 {
				t.Fatalf("%s: %s div = %d", f.Name, b.Bus, p.Div[b.Bus])
			}
		}
		if p.Latency != 0 {
			t.Fatalf("%s: latency = %d", f.Name, p.Latency)
		}
	}
}

func TestHSEUndeclared(t *testing.T) {
	_, err := Solve(Request{Family: l4.Family, Source: freq.HSE, SysClk: 48 * freq.MHz})
	if !errors.Is(err, clockerr.ErrHSEUndeclared) {
		t.Fatalf("err = %v", err)
	}
}

func TestHSEOutOfRange(t *testing.T) {
	_, err := Solve(Request{Family: f4.Family, HSE: 30 * freq.MHz, SysClk: 84 * freq.MHz})
	cu, ok := clockerr.Unsatisfiable(err)
	if !ok || cu.Bound != clockerr.BoundHSE {
		t.Fatalf("err = %v", err)
	}
}

func TestUnusedHSEIsNotRangeChecked(t *testing.T) {
	// 30 MHz is outside the F4 HSE range but the request runs from HSI.
	p := mustSolve(t, Request{Family: f4.Family, Source: freq.HSI, HSE: 30 * freq.MHz, SysClk: 84 * freq.MHz})
	if p.Input() != freq.HSI || p.Freqs.SysClk != 84*freq.MHz || p.HSE != 0 {
		t.Fatalf("plan = %s", p.String())
	}

	_, err := Solve(Request{Family: f4.Family, Source: freq.HSE, HSE: 30 * freq.MHz, SysClk: 84 * freq.MHz})
	if cu, ok := clockerr.Unsatisfiable(err); !ok || cu.Bound != clockerr.BoundHSE || cu.Limit != f4.Family.HSEMax {
		t.Fatalf("err = %v", err)
	}
}

func TestUnknownSource(t *testing.T) {
	// F4 has no MSI.
	_, err := Solve(Request{Family: f4.Family, Source: freq.MSI, SysClk: 16 * freq.MHz})
	cu, ok := clockerr.Unsatisfiable(err)
	if !ok || cu.Bound != clockerr.BoundSource {
		t.Fatalf("err = %v", err)
	}
}

func TestInvalidOverride(t *testing.T) {
	cases := []struct {
		name  string
		o     Override
		field string
	}{
		{"n", Override{N: 200}, "n"},
		{"r", Override{R: 3}, "r"},
		{"apb1", Override{Bus: [family.NumBuses]uint32{family.APB1: 3}}, "apb1"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Solve(Request{Family: l4.Family, HSE: 8 * freq.MHz, SysClk: 80 * freq.MHz, Override: c.o})
			var io *clockerr.InvalidOverride
			if !errors.As(err, &io) || io.Field != c.field {
				t.Fatalf("err = %v", err)
			}
			if errcode.Of(err) != errcode.InvalidOverride {
				t.Fatalf("code = %s", errcode.Of(err))
			}
		})
	}
	// G0 has no APB2.
	o := Override{Bus: [family.NumBuses]uint32{family.APB2: 1}}
	if _, err := Solve(Request{Family: g0.Family, Override: o}); errcode.Of(err) != errcode.InvalidOverride {
		t.Fatalf("g0 apb2 override: %v", err)
	}
}

func TestOverrideSkipsSearch(t *testing.T) {
	o := Override{M: 2, N: 40, R: 4}
	p := mustSolve(t, Request{Family: l4.Family, HSE: 8 * freq.MHz, Override: o})
	if p.PLL.M != 2 || p.PLL.N != 40 || p.PLL.R != 4 || p.Freqs.SysClk != 40*freq.MHz {
		t.Fatalf("plan = %s", p.String())
	}
	if p.Freqs.VCO != 160*freq.MHz {
		t.Fatalf("vco = %v", p.Freqs.VCO)
	}
}

func TestOverrideViolatesVCO(t *testing.T) {
	// 8 MHz / 1 * 50 = 400 MHz VCO, above the L4's 344 MHz.
	_, err := Solve(Request{Family: l4.Family, HSE: 8 * freq.MHz, Override: Override{M: 1, N: 50, R: 8}})
	cu, ok := clockerr.Unsatisfiable(err)
	if !ok || cu.Bound != clockerr.BoundVCO || cu.Limit != 344*freq.MHz {
		t.Fatalf("err = %v", err)
	}
}

func TestOverrideBusLowersSysClk(t *testing.T) {
	// APB1 pinned at /1 under a 42 MHz ceiling: AHB stays /1, so the best
	// legal SYSCLK is 42 MHz.
	o := Override{Bus: [family.NumBuses]uint32{family.APB1: 1}}
	p := mustSolve(t, Request{Family: f4.Family, HSE: 8 * freq.MHz, SysClk: 168 * freq.MHz, Override: o})
	if p.Freqs.SysClk != 42*freq.MHz || p.Div[family.APB1] != 1 {
		t.Fatalf("plan = %s", p.String())
	}
	if p.PLL.M != 4 || p.PLL.N != 84 || p.PLL.R != 4 {
		t.Fatalf("pll = %+v", p.PLL)
	}
}

func TestOverrideBusAboveCeiling(t *testing.T) {
	req := Request{Family: f4.Family, HSE: 8 * freq.MHz, SysClk: 8 * freq.MHz, UsePLL: PLLOff}
	req.Override.Bus[family.APB1] = 1
	req.Ceilings[family.APB1] = 4 * freq.MHz
	_, err := Solve(req)
	cu, ok := clockerr.Unsatisfiable(err)
	if !ok || cu.Bound != clockerr.BoundAPB1 || cu.Limit != 4*freq.MHz || cu.Requested != 8*freq.MHz {
		t.Fatalf("err = %v", err)
	}
}

func TestPinnedPLLWithPLLOff(t *testing.T) {
	_, err := Solve(Request{Family: l4.Family, HSE: 8 * freq.MHz, UsePLL: PLLOff, Override: Override{N: 20}})
	if _, ok := clockerr.Unsatisfiable(err); !ok {
		t.Fatalf("err = %v", err)
	}
}

func TestPLLOffPicksDirect(t *testing.T) {
	p := mustSolve(t, Request{Family: g4.Family, HSE: 24 * freq.MHz, SysClk: 170 * freq.MHz, UsePLL: PLLOff})
	if p.Source != freq.HSE || p.Freqs.SysClk != 24*freq.MHz {
		t.Fatalf("plan = %s", p.String())
	}
}

func TestDirectPreferredOnTie(t *testing.T) {
	// HSI16 direct and a PLL at 16 MHz tie on frequency and prescaling.
	p := mustSolve(t, Request{Family: l4.Family, Source: freq.HSI, SysClk: 16 * freq.MHz})
	if p.Source != freq.HSI {
		t.Fatalf("plan = %s", p.String())
	}
}

func TestG0SingleAPB(t *testing.T) {
	req := Request{Family: g0.Family, SysClk: 64 * freq.MHz}
	req.Ceilings[family.APB1] = 20 * freq.MHz
	p := mustSolve(t, req)
	if p.Freqs.SysClk != 64*freq.MHz || p.Div[family.APB1] != 4 || p.Div[family.APB2] != 0 {
		t.Fatalf("plan = %s", p.String())
	}
	// A ceiling no legal APB divider can meet names the single APB bus.
	req.UsePLL = PLLOff
	req.Ceilings[family.APB1] = 500 * freq.KHz
	_, err := Solve(req)
	cu, ok := clockerr.Unsatisfiable(err)
	if !ok || cu.Bound != clockerr.BoundAPB {
		t.Fatalf("err = %v", err)
	}
}

func TestCeilingClampedToFamilyMax(t *testing.T) {
	req := Request{Family: f4.Family, HSE: 8 * freq.MHz, SysClk: 168 * freq.MHz}
	req.Ceilings[family.APB1] = 100 * freq.MHz
	p := mustSolve(t, req)
	if p.Ceilings[family.APB1] != 42*freq.MHz || p.Freqs.Bus[family.APB1] > 42*freq.MHz {
		t.Fatalf("plan = %s ceilings %v", p.String(), p.Ceilings)
	}
}

// Every target in the documented range: buses under their ceilings, VCO
// in bounds, and SYSCLK within one step of the target.
func TestPlansRespectBounds(t *testing.T) {
	for _, f := range families {
		hse := 8 * freq.MHz
		for target := 4 * freq.MHz; target <= f.SysMax; target += 3 * freq.MHz {
			req := Request{Family: f, HSE: hse, SysClk: target}
			req.Ceilings[family.APB1] = f.SysMax / 2
			p, err := Solve(req)
			if err != nil {
				t.Fatalf("%s target %v: %v", f.Name, target, err)
			}
			checkPlan(t, f, p, req)

			// No legal path, found by walking the table directly, is
			// closer to the target than the plan.
			got := absDiff(p.Freqs.SysClk, target)
			if best := closestReachable(f, hse, target); got != best {
				t.Fatalf("%s target %v: plan %v is %v off, %v reachable", f.Name, target, p.Freqs.SysClk, got, best)
			}
			cs, err := Candidates(req, 0)
			if err != nil || cs[0].Freqs.SysClk != p.Freqs.SysClk {
				t.Fatalf("%s target %v: candidates disagree with Solve", f.Name, target)
			}
			for _, c := range cs {
				if absDiff(c.Freqs.SysClk, target) < got {
					t.Fatalf("%s target %v: candidate %v beats plan %v", f.Name, target, c.Freqs.SysClk, p.Freqs.SysClk)
				}
			}
		}
	}
}

func absDiff(a, b freq.Hz) freq.Hz {
	if a > b {
		return a - b
	}
	return b - a
}

// closestReachable walks HSE direct plus every M, N, R in the family's PLL
// table and returns the smallest SYSCLK error any legal combination gives.
func closestReachable(f *family.Family, hse, target freq.Hz) freq.Hz {
	best := freq.Hz(1<<32 - 1)
	if f.SysSource(freq.HSE) && hse <= f.SysMax {
		best = absDiff(hse, target)
	}
	pl := &f.PLL
	if !pl.Accepts(freq.HSE) {
		return best
	}
	outMax := f.SysMax
	if pl.OutMax != 0 && pl.OutMax < outMax {
		outMax = pl.OutMax
	}
	pl.M.Each(func(m uint32) bool {
		vin := hse / freq.Hz(m)
		if vin < pl.InMin || vin > pl.InMax {
			return true
		}
		pl.N.Each(func(n uint32) bool {
			vco := uint64(hse) * uint64(n) / uint64(m)
			if vco < uint64(pl.VCOMin) || vco > uint64(pl.VCOMax) {
				return true
			}
			pl.R.Each(func(r uint32) bool {
				out := freq.Hz(vco / uint64(r))
				if out <= outMax && absDiff(out, target) < best {
					best = absDiff(out, target)
				}
				return true
			})
			return true
		})
		return true
	})
	return best
}

func checkPlan(t *testing.T, f *family.Family, p Plan, req Request) {
	t.Helper()
	for _, b := range f.Buses {
		if p.Freqs.Bus[b.Bus] > p.Ceilings[b.Bus] || p.Freqs.Bus[b.Bus] > b.Max {
			t.Fatalf("%s: %s=%v over ceiling %v", f.Name, b.Bus, p.Freqs.Bus[b.Bus], p.Ceilings[b.Bus])
		}
		if req.Ceilings[b.Bus] != 0 && p.Freqs.Bus[b.Bus] > req.Ceilings[b.Bus] {
			t.Fatalf("%s: %s over requested ceiling", f.Name, b.Bus)
		}
	}
	if p.Source == freq.PLL {
		pl := &f.PLL
		vin := p.Freqs.Input / freq.Hz(p.PLL.M)
		if vin < pl.InMin || vin > pl.InMax {
			t.Fatalf("%s: vco input %v out of range", f.Name, vin)
		}
		if p.Freqs.VCO < pl.VCOMin || p.Freqs.VCO > pl.VCOMax {
			t.Fatalf("%s: vco %v out of range", f.Name, p.Freqs.VCO)
		}
		if pl.QMax != 0 && p.Freqs.PLLQ > pl.QMax {
			t.Fatalf("%s: pllq %v over %v", f.Name, p.Freqs.PLLQ, pl.QMax)
		}
	}
	if p.Freqs.SysClk > f.SysMax {
		t.Fatalf("%s: sysclk %v over max", f.Name, p.Freqs.SysClk)
	}
	ws, ok := f.WaitStatesFor(p.Freqs.Bus[family.AHB])
	if !ok || ws != p.Latency {
		t.Fatalf("%s: latency %d, table says %d", f.Name, p.Latency, ws)
	}
}

func TestRediscoverRoundTrip(t *testing.T) {
	for _, f := range families {
		for _, target := range []freq.Hz{0, 24 * freq.MHz, 48 * freq.MHz, f.SysMax} {
			req := Request{Family: f, HSE: 8 * freq.MHz, SysClk: target}
			if target == 0 {
				req.HSE = 0
			}
			p := mustSolve(t, req)
			back, err := Rediscover(p)
			if err != nil {
				t.Fatalf("%s %v: Rediscover: %v", f.Name, target, err)
			}
			if back.Freqs.SysClk != p.Freqs.SysClk || back.Freqs.Bus != p.Freqs.Bus {
				t.Fatalf("%s %v:\n %s\n %s", f.Name, target, p.String(), back.String())
			}
		}
	}
}

func TestCandidatesOrdered(t *testing.T) {
	req := Request{Family: l4.Family, HSE: 8 * freq.MHz, SysClk: 80 * freq.MHz}
	cs, err := Candidates(req, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(cs) != 5 {
		t.Fatalf("len = %d", len(cs))
	}
	first := mustSolve(t, req)
	if cs[0].PLL != first.PLL {
		t.Fatalf("first candidate %s, Solve %s", cs[0].String(), first.String())
	}
	// M=1,N=20,R=2 then M=1,N=40,R=4 then M=2,N=40,R=2 ...
	if cs[1].PLL.M != 1 || cs[1].PLL.N != 40 || cs[1].PLL.R != 4 {
		t.Fatalf("second = %s", cs[1].String())
	}
}

func TestNilFamily(t *testing.T) {
	if _, err := Solve(Request{}); !errors.Is(err, clockerr.ErrUnknownFamily) {
		t.Fatalf("err = %v", err)
	}
}

// Package reqdsl parses the plain-text clock request format used by board
// files and the clockplan REPL:
//
//	family l4
//	source hse 8MHz bypass
//	hse 8MHz bypass      # declares the crystal, leaves the source open
//	sysclk 80MHz
//	pll on
//	ceiling apb1 40MHz
//	override m=1 n=20 apb2=1   # dividers pinned by hand
//
// Statements may share a line when separated by ';'.
package reqdsl

import (
	"fmt"
	"math"
	"strings"

	"clocktree-go/clock/clockerr"
	"clocktree-go/clock/family"
	"clocktree-go/clock/freq"
	"clocktree-go/clock/solver"
	"clocktree-go/errcode"
)

// Spec is a parsed request. Family is left as a name so text can be
// parsed before the family tables are linked in; Resolve binds it.
type Spec struct {
	Family  string
	Request solver.Request
}

func Parse(src string) (Spec, error) {
	f, err := parser.ParseString("", src)
	if err != nil {
		return Spec{}, &errcode.E{C: errcode.InvalidPayload, Op: "reqdsl", Err: err}
	}
	var s Spec
	for _, st := range f.Stmts {
		if err := s.apply(st); err != nil {
			return Spec{}, &errcode.E{C: errcode.InvalidPayload, Op: "reqdsl", Msg: err.Error(), Err: err}
		}
	}
	return s, nil
}

func (s *Spec) apply(st *stmt) error {
	r := &s.Request
	switch {
	case st.Family != nil:
		s.Family = strings.ToLower(*st.Family)
	case st.Source != nil:
		src, ok := freq.ParseSource(strings.ToLower(st.Source.Name))
		if !ok || src == freq.PLL || src == freq.NoSource {
			return fmt.Errorf("unknown source %q", st.Source.Name)
		}
		r.Source = src
		if st.Source.Freq != nil {
			if src != freq.HSE {
				return fmt.Errorf("frequency given for internal source %s", src)
			}
			hz, err := st.Source.Freq.hz()
			if err != nil {
				return err
			}
			r.HSE = hz
		}
		if st.Source.Bypass {
			if src != freq.HSE {
				return fmt.Errorf("bypass given for %s", src)
			}
			r.HSEBypass = true
		}
	case st.HSE != nil:
		hz, err := st.HSE.Freq.hz()
		if err != nil {
			return err
		}
		r.HSE = hz
		r.HSEBypass = r.HSEBypass || st.HSE.Bypass
	case st.SysClk != nil:
		hz, err := st.SysClk.hz()
		if err != nil {
			return err
		}
		r.SysClk = hz
	case st.PLL != nil:
		switch *st.PLL {
		case "on":
			r.UsePLL = solver.PLLOn
		case "off":
			r.UsePLL = solver.PLLOff
		default:
			r.UsePLL = solver.PLLAuto
		}
	case st.Ceiling != nil:
		b, ok := family.ParseBus(strings.ToLower(st.Ceiling.Bus))
		if !ok {
			return fmt.Errorf("unknown bus %q", st.Ceiling.Bus)
		}
		hz, err := st.Ceiling.Freq.hz()
		if err != nil {
			return err
		}
		r.Ceilings[b] = hz
	default:
		for _, a := range st.Override {
			if err := setOverride(&r.Override, a); err != nil {
				return err
			}
		}
	}
	return nil
}

func setOverride(o *solver.Override, a *assign) error {
	if a.Value <= 0 || a.Value > math.MaxUint16 {
		return fmt.Errorf("override %s=%d out of range", a.Key, a.Value)
	}
	v := uint32(a.Value)
	switch k := strings.ToLower(a.Key); k {
	case "m":
		o.M = v
	case "n":
		o.N = v
	case "r":
		o.R = v
	case "q":
		o.Q = v
	case "p":
		o.P = v
	default:
		b, ok := family.ParseBus(k)
		if !ok {
			return fmt.Errorf("unknown override %q", a.Key)
		}
		o.Bus[b] = v
	}
	return nil
}

func (q quantity) hz() (freq.Hz, error) {
	mul := 1.0
	switch strings.ToLower(q.Unit) {
	case "mhz":
		mul = 1e6
	case "khz":
		mul = 1e3
	}
	v := math.Round(q.Value * mul)
	if v > math.MaxUint32 {
		return 0, freq.ErrOverflow
	}
	return freq.Hz(v), nil
}

// ParseHz reads a frequency such as "8MHz", "32.768 kHz" or "16000000".
func ParseHz(s string) (freq.Hz, error) {
	q, err := quantityParser.ParseString("", s)
	if err != nil {
		return 0, &errcode.E{C: errcode.InvalidParams, Op: "reqdsl", Msg: s, Err: err}
	}
	return q.hz()
}

// Resolve binds the family name to a registered table.
func (s Spec) Resolve() (solver.Request, error) {
	if s.Family == "" {
		return solver.Request{}, &errcode.E{C: errcode.UnknownFamily, Op: "reqdsl", Msg: "no family statement"}
	}
	f, ok := family.ByName(s.Family)
	if !ok {
		return solver.Request{}, &errcode.E{C: clockerr.ErrUnknownFamily, Op: "reqdsl", Msg: s.Family}
	}
	r := s.Request
	r.Family = f
	return r, nil
}

// Format renders s back into request text that Parse accepts. Fields left
// at their zero value are omitted.
func Format(s Spec) string {
	var b strings.Builder
	r := s.Request
	if s.Family != "" {
		fmt.Fprintf(&b, "family %s\n", s.Family)
	}
	switch {
	case r.Source == freq.HSE:
		b.WriteString("source hse")
		writeHSE(&b, r)
	case r.Source != freq.NoSource:
		b.WriteString("source " + r.Source.String() + "\n")
		if r.HSE != 0 {
			b.WriteString("hse")
			writeHSE(&b, r)
		}
	case r.HSE != 0:
		// Declared but not selected: the solver still picks the source.
		b.WriteString("hse")
		writeHSE(&b, r)
	}
	if r.SysClk != 0 {
		fmt.Fprintf(&b, "sysclk %dHz\n", uint32(r.SysClk))
	}
	if r.UsePLL != solver.PLLAuto {
		b.WriteString("pll " + r.UsePLL.String() + "\n")
	}
	for i, c := range r.Ceilings {
		if c != 0 {
			fmt.Fprintf(&b, "ceiling %s %dHz\n", family.Bus(i), uint32(c))
		}
	}
	if r.Override.Any() {
		b.WriteString("override")
		o := r.Override
		for _, kv := range []struct {
			k string
			v uint32
		}{{"m", o.M}, {"n", o.N}, {"r", o.R}, {"q", o.Q}, {"p", o.P}} {
			if kv.v != 0 {
				fmt.Fprintf(&b, " %s=%d", kv.k, kv.v)
			}
		}
		for i, d := range o.Bus {
			if d != 0 {
				fmt.Fprintf(&b, " %s=%d", family.Bus(i), d)
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func writeHSE(b *strings.Builder, r solver.Request) {
	if r.HSE != 0 {
		fmt.Fprintf(b, " %dHz", uint32(r.HSE))
	}
	if r.HSEBypass {
		b.WriteString(" bypass")
	}
	b.WriteByte('\n')
}

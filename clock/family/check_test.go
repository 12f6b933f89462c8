package family_test

import (
	"testing"

	"clocktree-go/clock/family"
	_ "clocktree-go/clock/family/all"
	"clocktree-go/clock/family/l4"
	"clocktree-go/clock/freq"
)

func TestRegisteredFamilies(t *testing.T) {
	want := []string{"f3", "f4", "g0", "g4", "l4"}
	got := family.Names()
	if len(got) != len(want) {
		t.Fatalf("Names() = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Names() = %v, want %v", got, want)
		}
		f, ok := family.ByName(want[i])
		if !ok {
			t.Fatalf("ByName(%q) missing", want[i])
		}
		if err := family.Check(f); err != nil {
			t.Fatalf("%s: %v", f.Name, err)
		}
	}
}

func TestHandleMatchesTable(t *testing.T) {
	loc, ok := l4.Family.Lookup(l4.USART2.ID)
	if !ok || loc != l4.USART2.Loc {
		t.Fatalf("usart2 lookup = %+v %v", loc, ok)
	}
	if l4.USART2.Loc.Bus != family.APB1 || l4.USART2.Loc.Enable.Pos != 17 {
		t.Fatalf("usart2 loc = %+v", l4.USART2.Loc)
	}
}

func TestHandlePanicsOnMissing(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	family.Handle[l4.Tag](l4.Family, family.FDCAN, 0)
}

func TestWaitStates(t *testing.T) {
	cases := []struct {
		hz   freq.Hz
		want uint32
		ok   bool
	}{
		{4 * freq.MHz, 0, true},
		{16 * freq.MHz, 0, true},
		{16*freq.MHz + 1, 1, true},
		{80 * freq.MHz, 4, true},
		{81 * freq.MHz, 0, false},
	}
	for _, c := range cases {
		got, ok := l4.Family.WaitStatesFor(c.hz)
		if got != c.want || ok != c.ok {
			t.Fatalf("WaitStatesFor(%v) = %d %v, want %d %v", c.hz, got, ok, c.want, c.ok)
		}
	}
}

func TestCheckRejects(t *testing.T) {
	base := func() *family.Family {
		f := *l4.Family
		return &f
	}

	f := base()
	f.Name = ""
	if family.Check(f) == nil {
		t.Fatal("empty name accepted")
	}

	f = base()
	f.Safe = freq.HSE
	if family.Check(f) == nil {
		t.Fatal("external safe source accepted")
	}

	f = base()
	f.WaitStates = []freq.Hz{16 * freq.MHz, 32 * freq.MHz}
	if family.Check(f) == nil {
		t.Fatal("short wait-state table accepted")
	}

	f = base()
	f.Periphs = append([]family.Entry{}, l4.Family.Periphs...)
	f.Periphs = append(f.Periphs, f.Periphs[0])
	if family.Check(f) == nil {
		t.Fatal("duplicate peripheral accepted")
	}

	f = base()
	f.PLL.N.Field = family.F(0, 8, 4)
	if family.Check(f) == nil {
		t.Fatal("N=86 in a 4-bit field accepted")
	}
}

func TestSourceCodes(t *testing.T) {
	for _, name := range family.Names() {
		f, _ := family.ByName(name)
		for src, code := range f.SWCodes {
			back, ok := f.SourceForCode(code)
			if !ok || back != src {
				t.Fatalf("%s: code %d maps back to %v", name, code, back)
			}
		}
	}
}

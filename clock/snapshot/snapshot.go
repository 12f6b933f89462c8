// Package snapshot holds the live, read-only record of active clock
// frequencies. A Snapshot is built completely and then published by
// pointer swap; readers never see a half-updated value.
package snapshot

import (
	"sync/atomic"

	"clocktree-go/clock/family"
	"clocktree-go/clock/freq"
	"clocktree-go/clock/solver"
	"clocktree-go/clock/tree"
	"clocktree-go/x/conv"
)

// Snapshot is the frequency record peripheral drivers compute baud rates
// and prescalers from. Do not mutate a published Snapshot.
type Snapshot struct {
	Family     string
	Source     freq.Source // SYSCLK mux input
	Input      freq.Source // oscillator behind Source
	InputHz    freq.Hz
	SysClk     freq.Hz
	Buses      [family.NumBuses]freq.Hz
	Div        [family.NumBuses]uint32 // zero for absent buses
	PLLQ       freq.Hz
	PLLP       freq.Hz
	Latency    uint32
	Generation uint32 // 0 for the reset default, +1 per applied plan
}

// Bus returns the clock of b and whether the family has it.
func (s *Snapshot) Bus(b family.Bus) (freq.Hz, bool) {
	if int(b) >= family.NumBuses || s.Div[b] == 0 {
		return 0, false
	}
	return s.Buses[b], true
}

// Timer returns the kernel clock of timers on bus b: the bus clock, doubled
// when the bus prescaler is not 1.
func (s *Snapshot) Timer(b family.Bus) freq.Hz {
	hz, ok := s.Bus(b)
	if !ok {
		return 0
	}
	if b != family.AHB && s.Div[b] != 1 {
		return hz * 2
	}
	return hz
}

// Peripheral returns the bus clock feeding a peripheral.
func (s *Snapshot) Peripheral(loc family.Loc) freq.Hz {
	hz, _ := s.Bus(loc.Bus)
	return hz
}

func (s *Snapshot) String() string {
	var g [10]byte
	out := s.Family + " gen=" + string(conv.Utoa(g[:], uint64(s.Generation))) +
		" src=" + s.Source.String() + " sysclk=" + s.SysClk.String()
	for b := family.Bus(0); int(b) < family.NumBuses; b++ {
		if hz, ok := s.Bus(b); ok {
			out += " " + b.String() + "=" + hz.String()
		}
	}
	return out
}

// FromPlan builds the snapshot a successfully applied plan yields.
func FromPlan(p *solver.Plan, gen uint32) (*Snapshot, error) {
	clocks, err := tree.Clocks(p)
	if err != nil {
		return nil, err
	}
	s := &Snapshot{
		Family:     p.Family.Name,
		Source:     p.Source,
		Input:      p.Input(),
		InputHz:    p.Freqs.Input,
		SysClk:     clocks[tree.SysClk],
		Div:        p.Div,
		PLLQ:       clocks[tree.PLLQ],
		PLLP:       clocks[tree.PLLP],
		Latency:    p.Latency,
		Generation: gen,
	}
	for _, b := range p.Family.Buses {
		s.Buses[b.Bus] = clocks[b.Bus.String()]
	}
	return s, nil
}

// Default is the family's reset state: the reset source straight into
// SYSCLK with every prescaler at /1.
func Default(f *family.Family) *Snapshot {
	p, err := solver.Solve(solver.Request{Family: f})
	if err != nil {
		panic("snapshot: family " + f.Name + " has no reset plan: " + err.Error())
	}
	s, err := FromPlan(&p, 0)
	if err != nil {
		panic("snapshot: " + err.Error())
	}
	return s
}

// Store is the process-wide holder. Load never returns nil.
type Store struct {
	p atomic.Pointer[Snapshot]
}

func NewStore(f *family.Family) *Store {
	s := &Store{}
	s.p.Store(Default(f))
	return s
}

func (s *Store) Load() *Snapshot { return s.p.Load() }

// Publish replaces the current snapshot with a fully built one.
func (s *Store) Publish(n *Snapshot) { s.p.Store(n) }

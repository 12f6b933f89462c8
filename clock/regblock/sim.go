package regblock

import (
	"sync"

	"clocktree-go/clock/family"
	"clocktree-go/clock/freq"
)

// Write is one recorded Set.
type Write struct {
	Field family.Field
	Old   uint32
	New   uint32
}

// link makes a ready flag follow its enable bit after a number of polls.
type link struct {
	src      freq.Source
	on       family.Field
	ready    family.Field
	delay    int
	pending  int
	stuck    bool
	unlocked bool // pending transition is a clear
}

// Sim is a host register file that behaves enough like an RCC for the
// sequencer: oscillator and PLL ready flags follow their enable bits after
// a configurable number of polls, the switch status follows the switch
// request once the selected source is ready, and PLL configuration writes
// while the PLL runs are recorded as violations.
type Sim struct {
	mu    sync.Mutex
	fam   *family.Family
	regs  map[uint32]uint32
	links []*link

	swDelay   int
	swPending int
	swStuck   bool

	trace      []Write
	violations []string
}

// NewSim returns a register file in f's reset state: the reset source on
// and ready, SYSCLK on it, every prescaler at /1 and zero wait states.
// delay is the number of polls a ready or switch status takes to follow.
func NewSim(f *family.Family, delay int) *Sim {
	s := &Sim{fam: f, regs: map[uint32]uint32{}, swDelay: delay}
	for src := range f.Osc {
		o := f.Osc[src]
		if !o.Present() {
			continue
		}
		s.links = append(s.links, &link{src: freq.Source(src), on: o.On, ready: o.Ready, delay: delay})
	}
	s.links = append(s.links, &link{src: freq.PLL, on: f.PLL.On, ready: f.PLL.Ready, delay: delay})

	reset := f.Osc[f.Reset]
	s.poke(reset.On, 1)
	s.poke(reset.Ready, 1)
	s.poke(f.SW, f.SWCodes[f.Reset])
	s.poke(f.SWS, f.SWCodes[f.Reset])
	return s
}

func (s *Sim) poke(f family.Field, v uint32) {
	if !f.Valid() {
		return
	}
	w := s.regs[f.Addr]
	s.regs[f.Addr] = w&^f.Mask() | (v<<f.Pos)&f.Mask()
}

func (s *Sim) peek(f family.Field) uint32 {
	return (s.regs[f.Addr] & f.Mask()) >> f.Pos
}

// Get reads f. Reading a ready or switch status field counts as one poll.
func (s *Sim) Get(f family.Field) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.links {
		if l.ready == f {
			s.pollLink(l)
		}
	}
	if f == s.fam.SWS {
		s.pollSwitch()
	}
	return s.peek(f)
}

func (s *Sim) pollLink(l *link) {
	if l.pending == 0 || l.stuck {
		return
	}
	l.pending--
	if l.pending == 0 {
		if l.unlocked {
			s.poke(l.ready, 0)
		} else {
			s.poke(l.ready, 1)
		}
	}
}

func (s *Sim) pollSwitch() {
	if s.swStuck || s.peek(s.fam.SWS) == s.peek(s.fam.SW) {
		return
	}
	want, ok := s.fam.SourceForCode(s.peek(s.fam.SW))
	if !ok || !s.sourceReady(want) {
		return
	}
	if s.swPending > 0 {
		s.swPending--
		if s.swPending > 0 {
			return
		}
	}
	s.poke(s.fam.SWS, s.peek(s.fam.SW))
}

func (s *Sim) sourceReady(src freq.Source) bool {
	for _, l := range s.links {
		if l.src == src {
			return s.peek(l.ready) == 1
		}
	}
	return false
}

// Set writes f and starts any ready or switch transition it triggers.
func (s *Sim) Set(f family.Field, v uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old := s.peek(f)
	s.trace = append(s.trace, Write{Field: f, Old: old, New: v})
	s.check(f, v)
	s.poke(f, v)
	if old == v {
		return
	}
	for _, l := range s.links {
		if l.on != f || l.stuck {
			continue
		}
		l.unlocked = v == 0
		l.pending = l.delay
		if l.pending == 0 {
			s.poke(l.ready, v)
		}
	}
	if f == s.fam.SW {
		s.swPending = s.swDelay
		if s.swDelay == 0 {
			s.pollSwitch()
		}
	}
}

// check records writes real hardware would refuse or mishandle.
func (s *Sim) check(f family.Field, v uint32) {
	p := &s.fam.PLL
	if f == p.On && v == 0 && s.peek(s.fam.SWS) == s.fam.SWCodes[freq.PLL] {
		s.violations = append(s.violations, "pll stopped while driving sysclk")
	}
	if s.peek(p.On) == 0 && s.peek(p.Ready) == 0 {
		return
	}
	for _, d := range []family.Field{p.Src, p.M.Field, p.N.Field, p.R.Field, p.Q.Field, p.P.Field} {
		if d.Valid() && d == f {
			s.violations = append(s.violations, "pll reconfigured while running")
			return
		}
	}
}

// StickReady freezes src's ready flag at its current value.
func (s *Sim) StickReady(src freq.Source) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.links {
		if l.src == src {
			l.stuck = true
		}
	}
}

// StickSwitch freezes the switch status field.
func (s *Sim) StickSwitch() {
	s.mu.Lock()
	s.swStuck = true
	s.mu.Unlock()
}

// Unstick clears every injected fault.
func (s *Sim) Unstick() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.swStuck = false
	for _, l := range s.links {
		l.stuck = false
	}
}

// Trace returns a copy of the recorded writes.
func (s *Sim) Trace() []Write {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Write(nil), s.trace...)
}

func (s *Sim) ResetTrace() {
	s.mu.Lock()
	s.trace = s.trace[:0]
	s.mu.Unlock()
}

// Changes counts recorded writes that altered a field.
func (s *Sim) Changes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, w := range s.trace {
		if w.Old != w.New {
			n++
		}
	}
	return n
}

// Violations lists hardware rules the writes broke.
func (s *Sim) Violations() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.violations...)
}

// Dump copies the whole register file.
func (s *Sim) Dump() map[uint32]uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[uint32]uint32, len(s.regs))
	for a, v := range s.regs {
		if v != 0 {
			out[a] = v
		}
	}
	return out
}

// Word returns a raw register value.
func (s *Sim) Word(addr uint32) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.regs[addr]
}

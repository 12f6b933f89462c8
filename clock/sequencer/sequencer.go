// clock/sequencer/sequencer.go

// Package sequencer applies a solver.Plan to the RCC and FLASH registers in
// an order that never leaves the core faster than its flash latency allows
// and never lets a bus run above its ceiling mid-transition.
package sequencer

import (
	"sync/atomic"

	"clocktree-go/clock/clockerr"
	"clocktree-go/clock/family"
	"clocktree-go/clock/freq"
	"clocktree-go/clock/regblock"
	"clocktree-go/clock/snapshot"
	"clocktree-go/clock/solver"
	"clocktree-go/clock/tree"
)

// Budget caps the busy-polls. Each unit is one read of the status field.
type Budget struct {
	Ready  int // oscillator / PLL ready (or unlocked)
	Switch int // SYSCLK switch status
}

var DefaultBudget = Budget{Ready: 1 << 16, Switch: 1 << 12}

// Sequencer owns the register block for clock reconfiguration.
type Sequencer struct {
	f      *family.Family
	regs   regblock.Block
	store  *snapshot.Store
	budget Budget
	busy   atomic.Bool
}

func New(f *family.Family, regs regblock.Block, store *snapshot.Store, b Budget) *Sequencer {
	if b.Ready <= 0 {
		b.Ready = DefaultBudget.Ready
	}
	if b.Switch <= 0 {
		b.Switch = DefaultBudget.Switch
	}
	return &Sequencer{f: f, regs: regs, store: store, budget: b}
}

func (s *Sequencer) Family() *family.Family { return s.f }

// Apply transitions the hardware to p and publishes the resulting snapshot.
// On failure every register touched is restored and the previous snapshot
// stays in effect. Re-applying the running plan performs no writes and
// returns the current snapshot unchanged.
func (s *Sequencer) Apply(p *solver.Plan) (*snapshot.Snapshot, error) {
	if !s.busy.CompareAndSwap(false, true) {
		return nil, clockerr.ErrBusy
	}
	defer s.busy.Store(false)

	if p == nil || p.Family != s.f {
		return nil, clockerr.ErrUnknownFamily
	}
	cur := s.store.Load()
	next, err := snapshot.FromPlan(p, cur.Generation)
	if err != nil {
		return nil, err
	}

	tx := &txn{regs: s.regs}
	if err := s.run(tx, p); err != nil {
		s.rollback(tx)
		return nil, err
	}
	if len(tx.journal) == 0 && *next == *cur {
		return cur, nil
	}
	next.Generation = cur.Generation + 1
	s.store.Publish(next)
	return next, nil
}

func (s *Sequencer) run(tx *txn, p *solver.Plan) error {
	f := s.f
	curLatency := s.regs.Get(f.Latency)

	// Raise flash latency before any clock speeds up.
	if p.Latency > curLatency {
		tx.set(f.Latency, p.Latency)
	}

	for _, src := range tree.Prerequisites(p) {
		var err error
		if src == freq.PLL {
			err = s.startPLL(tx, p)
		} else {
			err = s.startOsc(tx, src, p)
		}
		if err != nil {
			return err
		}
	}

	// Dividers that grow slow their bus down, so they go first; dividers
	// that shrink wait until the new source is in place.
	curDiv := s.busDividers()
	for _, b := range f.Buses {
		if d := p.Div[b.Bus]; d > curDiv[b.Bus] {
			tx.set(b.Div.Field, b.Div.Encode(d))
		}
	}

	if err := s.switchTo(tx, p.Source); err != nil {
		return err
	}

	for _, b := range f.Buses {
		if d := p.Div[b.Bus]; d < curDiv[b.Bus] {
			tx.set(b.Div.Field, b.Div.Encode(d))
		}
	}
	if p.Latency < curLatency {
		tx.set(f.Latency, p.Latency)
	}

	// The PLL is ours; oscillators may feed other kernels and stay on.
	if p.Source != freq.PLL && s.regs.Get(f.PLL.On) == 1 {
		tx.set(f.PLL.On, 0)
	}
	return nil
}

func (s *Sequencer) busDividers() [family.NumBuses]uint32 {
	var out [family.NumBuses]uint32
	for _, b := range s.f.Buses {
		out[b.Bus] = b.Div.Decode(s.regs.Get(b.Div.Field))
	}
	return out
}

// sysSource is the source SYSCLK currently runs from.
func (s *Sequencer) sysSource() freq.Source {
	src, _ := s.f.SourceForCode(s.regs.Get(s.f.SWS))
	return src
}

// feeds reports whether SYSCLK currently depends on osc.
func (s *Sequencer) feeds(osc freq.Source) bool {
	switch cur := s.sysSource(); cur {
	case osc:
		return true
	case freq.PLL:
		return s.regs.Get(s.f.PLL.Src) == s.f.PLL.SrcCodes[osc]
	}
	return false
}

func (s *Sequencer) poll(f family.Field, want uint32, budget int) bool {
	for i := 0; i < budget; i++ {
		if s.regs.Get(f) == want {
			return true
		}
	}
	return false
}

func (s *Sequencer) startOsc(tx *txn, src freq.Source, p *solver.Plan) error {
	o := s.f.Osc[src]
	if src == freq.HSE && s.f.HSEBypass.Valid() {
		want := b2u(p.HSEBypass)
		if s.regs.Get(s.f.HSEBypass) != want {
			// HSEBYP is only writable with the oscillator stopped.
			if s.regs.Get(o.On) == 1 {
				if s.feeds(freq.HSE) {
					if err := s.vacate(tx); err != nil {
						return err
					}
				}
				if s.regs.Get(s.f.PLL.On) == 1 && s.regs.Get(s.f.PLL.Src) == s.f.PLL.SrcCodes[freq.HSE] {
					if err := s.stopPLL(tx); err != nil {
						return err
					}
				}
				tx.set(o.On, 0)
				if !s.poll(o.Ready, 0, s.budget.Ready) {
					return &clockerr.ClockStartTimeout{Source: src, Polls: s.budget.Ready}
				}
			}
			tx.set(s.f.HSEBypass, want)
		}
	}
	tx.set(o.On, 1)
	if !s.poll(o.Ready, 1, s.budget.Ready) {
		return &clockerr.ClockStartTimeout{Source: src, Polls: s.budget.Ready}
	}
	return nil
}

type fieldVal struct {
	f family.Field
	v uint32
}

// pllFields is the PLL register image p needs.
func (s *Sequencer) pllFields(p *solver.Plan) []fieldVal {
	pl := &s.f.PLL
	out := []fieldVal{{pl.Src, pl.SrcCodes[p.PLL.Source]}}
	add := func(d family.Divider, v uint32) {
		if v != 0 && d.Field.Valid() {
			out = append(out, fieldVal{d.Field, d.Encode(v)})
		}
		if d.Enable.Valid() {
			out = append(out, fieldVal{d.Enable, b2u(v != 0)})
		}
	}
	add(pl.M, p.PLL.M)
	add(pl.N, p.PLL.N)
	add(pl.R, p.PLL.R)
	add(pl.Q, p.PLL.Q)
	add(pl.P, p.PLL.P)
	return out
}

func (s *Sequencer) startPLL(tx *txn, p *solver.Plan) error {
	pl := &s.f.PLL
	want := s.pllFields(p)
	same := true
	for _, fv := range want {
		if s.regs.Get(fv.f) != fv.v {
			same = false
			break
		}
	}
	if same && s.regs.Get(pl.On) == 1 {
		if !s.poll(pl.Ready, 1, s.budget.Ready) {
			return &clockerr.ClockStartTimeout{Source: freq.PLL, Polls: s.budget.Ready}
		}
		return nil
	}
	if s.regs.Get(pl.On) == 1 || s.regs.Get(pl.Ready) == 1 {
		if err := s.stopPLL(tx); err != nil {
			return err
		}
	}
	for _, fv := range want {
		tx.set(fv.f, fv.v)
	}
	tx.set(pl.On, 1)
	if !s.poll(pl.Ready, 1, s.budget.Ready) {
		return &clockerr.ClockStartTimeout{Source: freq.PLL, Polls: s.budget.Ready}
	}
	return nil
}

// stopPLL moves SYSCLK off the PLL if needed, then stops it and waits for
// it to unlock.
func (s *Sequencer) stopPLL(tx *txn) error {
	if s.sysSource() == freq.PLL {
		if err := s.vacate(tx); err != nil {
			return err
		}
	}
	tx.set(s.f.PLL.On, 0)
	if !s.poll(s.f.PLL.Ready, 0, s.budget.Ready) {
		return &clockerr.ClockStartTimeout{Source: freq.PLL, Polls: s.budget.Ready}
	}
	return nil
}

// vacate parks SYSCLK on the family's safe internal oscillator. The safe
// source is never faster than what it replaces, so latency and prescalers
// stay as they are.
func (s *Sequencer) vacate(tx *txn) error {
	safe := s.f.Safe
	o := s.f.Osc[safe]
	tx.set(o.On, 1)
	if !s.poll(o.Ready, 1, s.budget.Ready) {
		return &clockerr.ClockStartTimeout{Source: safe, Polls: s.budget.Ready}
	}
	return s.switchTo(tx, safe)
}

func (s *Sequencer) switchTo(tx *txn, src freq.Source) error {
	code := s.f.SWCodes[src]
	tx.set(s.f.SW, code)
	if !s.poll(s.f.SWS, code, s.budget.Switch) {
		return &clockerr.SwitchTimeout{Source: src, Polls: s.budget.Switch}
	}
	return nil
}

// rollback restores every journaled field, newest first. Restoring an
// enable bit waits for its ready flag and restoring the switch waits for
// its status, so the hardware retraces the forward path in reverse.
func (s *Sequencer) rollback(tx *txn) {
	for i := len(tx.journal) - 1; i >= 0; i-- {
		w := tx.journal[i]
		s.regs.Set(w.f, w.v)
		switch {
		case w.f == s.f.SW:
			s.poll(s.f.SWS, w.v, s.budget.Switch)
		case w.f == s.f.PLL.On:
			s.poll(s.f.PLL.Ready, w.v, s.budget.Ready)
		default:
			for src := range s.f.Osc {
				if o := s.f.Osc[src]; o.Present() && o.On == w.f {
					s.poll(o.Ready, w.v, s.budget.Ready)
				}
			}
		}
	}
	tx.journal = nil
}

// txn journals the previous value of every field it changes.
type txn struct {
	regs    regblock.Block
	journal []fieldVal
}

func (t *txn) set(f family.Field, v uint32) {
	if !f.Valid() {
		return
	}
	old := t.regs.Get(f)
	if old == v {
		return
	}
	t.journal = append(t.journal, fieldVal{f, old})
	t.regs.Set(f, v)
}

func b2u(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

// Package gate enables, disables and pulse-resets peripheral clocks. The
// bit locations come from the family table; the logic is the same on every
// family.
package gate

import (
	"clocktree-go/clock/clockerr"
	"clocktree-go/clock/family"
	"clocktree-go/clock/regblock"
	"clocktree-go/errcode"
)

// Gate works on typed handles of one family. A handle from another family
// does not type-check.
type Gate[F any] struct {
	regs regblock.Block
}

func New[F any](regs regblock.Block) *Gate[F] { return &Gate[F]{regs: regs} }

// Enable turns the clock on. Enabling a running clock writes nothing.
func (g *Gate[F]) Enable(p family.Periph[F]) { enable(g.regs, p.Loc) }

func (g *Gate[F]) Disable(p family.Periph[F]) { disable(g.regs, p.Loc) }

// Reset pulses the reset bit. The peripheral must be quiescent.
func (g *Gate[F]) Reset(p family.Periph[F]) { reset(g.regs, p.Loc) }

func (g *Gate[F]) Enabled(p family.Periph[F]) bool { return g.regs.Get(p.Loc.Enable) == 1 }

func enable(regs regblock.Block, loc family.Loc) {
	if regblock.Ensure(regs, loc.Enable, 1) {
		// Read back so the write has reached the bus before the caller
		// touches the peripheral.
		_ = regs.Get(loc.Enable)
	}
}

func disable(regs regblock.Block, loc family.Loc) { regblock.Ensure(regs, loc.Enable, 0) }

func reset(regs regblock.Block, loc family.Loc) bool {
	if !loc.Reset.Valid() {
		return false
	}
	regs.Set(loc.Reset, 1)
	regs.Set(loc.Reset, 0)
	return true
}

// Dynamic resolves peripherals by ID at run time, for control surfaces
// that receive names over the bus.
type Dynamic struct {
	f    *family.Family
	regs regblock.Block
}

func NewDynamic(f *family.Family, regs regblock.Block) *Dynamic {
	return &Dynamic{f: f, regs: regs}
}

func (d *Dynamic) lookup(id family.ID) (family.Loc, error) {
	loc, ok := d.f.Lookup(id)
	if !ok {
		return family.Loc{}, clockerr.ErrUnknownPeripheral
	}
	return loc, nil
}

func (d *Dynamic) Enable(id family.ID) error {
	loc, err := d.lookup(id)
	if err != nil {
		return err
	}
	enable(d.regs, loc)
	return nil
}

func (d *Dynamic) Disable(id family.ID) error {
	loc, err := d.lookup(id)
	if err != nil {
		return err
	}
	disable(d.regs, loc)
	return nil
}

// Reset fails with errcode.Unsupported for peripherals without a reset bit.
func (d *Dynamic) Reset(id family.ID) error {
	loc, err := d.lookup(id)
	if err != nil {
		return err
	}
	if !reset(d.regs, loc) {
		return errcode.Unsupported
	}
	return nil
}

func (d *Dynamic) Enabled(id family.ID) (bool, error) {
	loc, err := d.lookup(id)
	if err != nil {
		return false, err
	}
	return d.regs.Get(loc.Enable) == 1, nil
}

// Loc exposes the resolved location, for clock lookups in the snapshot.
func (d *Dynamic) Loc(id family.ID) (family.Loc, error) { return d.lookup(id) }

package periph

import (
	"sync"

	"clocktree-go/clock/family"
	"clocktree-go/clock/owner"

	"tinygo.org/x/drivers"
)

// Gater is the part of gate.Dynamic a wrapper needs.
type Gater interface {
	Enable(id family.ID) error
}

// GatedI2C is a drivers.I2C that owns its peripheral and turns its clock
// on before the first transaction.
type GatedI2C struct {
	bus    drivers.I2C
	gate   Gater
	owners *owner.Registry
	id     family.ID
	holder string

	mu      sync.Mutex
	enabled bool
}

var _ drivers.I2C = (*GatedI2C)(nil)

// NewGatedI2C claims id for holder. It fails with errcode.ResourceOwned
// when another holder has the peripheral.
func NewGatedI2C(bus drivers.I2C, g Gater, owners *owner.Registry, id family.ID, holder string) (*GatedI2C, error) {
	if err := owners.Claim(id.String(), holder); err != nil {
		return nil, err
	}
	return &GatedI2C{bus: bus, gate: g, owners: owners, id: id, holder: holder}, nil
}

func (g *GatedI2C) Tx(addr uint16, w, r []byte) error {
	g.mu.Lock()
	if !g.enabled {
		if err := g.gate.Enable(g.id); err != nil {
			g.mu.Unlock()
			return err
		}
		g.enabled = true
	}
	g.mu.Unlock()
	return g.bus.Tx(addr, w, r)
}

// Close releases the claim. The clock is left running.
func (g *GatedI2C) Close() {
	g.owners.Release(g.id.String(), g.holder)
}

// Package regblock is the register-access capability the sequencer and the
// gate are written against. Fields come from the family tables; the logic
// never sees a concrete register representation.
package regblock

import "clocktree-go/clock/family"

// Block reads and writes named bit fields. Set is a read-modify-write of
// the containing 32-bit register.
type Block interface {
	Get(f family.Field) uint32
	Set(f family.Field, v uint32)
}

// Ensure sets f to v unless it already holds v, and reports whether it
// wrote.
func Ensure(b Block, f family.Field, v uint32) bool {
	if !f.Valid() || b.Get(f) == v {
		return false
	}
	b.Set(f, v)
	return true
}

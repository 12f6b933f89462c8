//go:build tinygo

package regblock

import (
	"runtime/volatile"
	"unsafe"

	"clocktree-go/clock/family"
)

// MMIO accesses the real peripheral registers at the table addresses.
type MMIO struct{}

func reg(addr uint32) *volatile.Register32 {
	return (*volatile.Register32)(unsafe.Pointer(uintptr(addr)))
}

func (MMIO) Get(f family.Field) uint32 {
	return (reg(f.Addr).Get() & f.Mask()) >> f.Pos
}

func (MMIO) Set(f family.Field, v uint32) {
	reg(f.Addr).ReplaceBits(v, f.Max(), f.Pos)
}

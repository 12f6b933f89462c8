//go:build !tinygo

package rcc

import (
	"clocktree-go/clock/family"
	_ "clocktree-go/clock/family/all"
	"clocktree-go/clock/regblock"
	"clocktree-go/errcode"
)

// simDelay is how many status reads a simulated oscillator takes to settle.
const simDelay = 4

// OpenPlatform returns a simulated register block for any linked family.
func OpenPlatform(name string) (*family.Family, regblock.Block, error) {
	f, ok := family.ByName(name)
	if !ok {
		return nil, nil, &errcode.E{C: errcode.UnknownFamily, Op: "open", Msg: name}
	}
	return f, regblock.NewSim(f, simDelay), nil
}

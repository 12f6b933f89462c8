//go:build tinygo

package rcc

import (
	"clocktree-go/clock/family"
	"clocktree-go/clock/regblock"
	"clocktree-go/errcode"
)

// OpenPlatform maps the real RCC. Only the family the image was built for
// is linked in (see target_*.go).
func OpenPlatform(name string) (*family.Family, regblock.Block, error) {
	if name != targetFamily {
		return nil, nil, &errcode.E{C: errcode.UnknownFamily, Op: "open", Msg: name + " on " + targetFamily + " target"}
	}
	f, ok := family.ByName(name)
	if !ok {
		return nil, nil, &errcode.E{C: errcode.UnknownFamily, Op: "open", Msg: name}
	}
	return f, regblock.MMIO{}, nil
}

// Package periph turns the published clock snapshot into the register
// values peripheral drivers need.
package periph

import (
	"errors"

	"clocktree-go/clock/family"
	"clocktree-go/clock/freq"
	"clocktree-go/clock/snapshot"
	"clocktree-go/errcode"
	"clocktree-go/x/mathx"
)

var (
	ErrNoClock   = errors.New("peripheral bus not clocked")
	ErrOutOfSpan = &errcode.E{C: errcode.InvalidParams, Msg: "divider out of register span"}
)

// UARTDivider returns the BRR value for baud with 16x oversampling, plus
// the baud rate it actually produces.
func UARTDivider(s *snapshot.Snapshot, loc family.Loc, baud uint32) (brr uint32, actual uint32, err error) {
	clk := s.Peripheral(loc)
	if clk == 0 {
		return 0, 0, ErrNoClock
	}
	if baud == 0 {
		return 0, 0, errcode.InvalidParams
	}
	div := mathx.RoundDiv(uint32(clk), baud)
	if div < 16 || div > 0xFFFF {
		return 0, 0, ErrOutOfSpan
	}
	return div, uint32(clk) / div, nil
}

// TimerPrescaler returns the PSC value giving a counter tick of tick Hz,
// using the doubled timer clock when the APB prescaler is not 1.
func TimerPrescaler(s *snapshot.Snapshot, loc family.Loc, tick freq.Hz) (psc uint32, actual freq.Hz, err error) {
	clk := s.Timer(loc.Bus)
	if clk == 0 {
		return 0, 0, ErrNoClock
	}
	if tick == 0 || tick > clk {
		return 0, 0, errcode.InvalidParams
	}
	div := mathx.RoundDiv(uint32(clk), uint32(tick))
	if div > 0x10000 {
		return 0, 0, ErrOutOfSpan
	}
	return div - 1, clk / freq.Hz(div), nil
}

// I2CSpeed selects a bus timing profile.
type I2CSpeed uint8

const (
	I2CStandard I2CSpeed = iota // 100 kHz
	I2CFast                     // 400 kHz
)

// Per-profile TIMINGR fields, in prescaled ticks of 250 ns (standard) and
// 125 ns (fast).
var i2cProfiles = [...]struct {
	tick                       freq.Hz
	scll, sclh, sdadel, scldel uint32
}{
	I2CStandard: {tick: 4 * freq.MHz, scll: 0x13, sclh: 0x0F, sdadel: 0x2, scldel: 0x4},
	I2CFast:     {tick: 8 * freq.MHz, scll: 0x09, sclh: 0x03, sdadel: 0x1, scldel: 0x3},
}

// I2CTiming returns a TIMINGR word for the newer I2C block (L4, G4, G0,
// F3). The prescaler rounds up, so the bus never runs faster than the
// profile.
func I2CTiming(s *snapshot.Snapshot, loc family.Loc, speed I2CSpeed) (uint32, error) {
	if int(speed) >= len(i2cProfiles) {
		return 0, errcode.InvalidParams
	}
	clk := s.Peripheral(loc)
	if clk == 0 {
		return 0, ErrNoClock
	}
	pr := i2cProfiles[speed]
	if clk < pr.tick {
		return 0, ErrOutOfSpan
	}
	presc := mathx.CeilDiv(uint32(clk), uint32(pr.tick)) - 1
	if presc > 0xF {
		return 0, ErrOutOfSpan
	}
	return presc<<28 | pr.scldel<<20 | pr.sdadel<<16 | pr.sclh<<8 | pr.scll, nil
}

// I2CCCR returns CR2.FREQ and the CCR word for the older I2C block (F4).
// Fast mode uses the 2:1 duty cycle.
func I2CCCR(s *snapshot.Snapshot, loc family.Loc, speed I2CSpeed) (freqMHz, ccr uint32, err error) {
	clk := uint32(s.Peripheral(loc))
	if clk == 0 {
		return 0, 0, ErrNoClock
	}
	freqMHz = clk / uint32(freq.MHz)
	if !mathx.Between(freqMHz, 2, 50) {
		return 0, 0, ErrOutOfSpan
	}
	switch speed {
	case I2CStandard:
		ccr = mathx.Clamp(mathx.CeilDiv(clk, 2*100_000), 4, 0xFFF)
	case I2CFast:
		ccr = mathx.Clamp(mathx.CeilDiv(clk, 3*400_000), 1, 0xFFF) | 1<<15
	default:
		return 0, 0, errcode.InvalidParams
	}
	return freqMHz, ccr, nil
}

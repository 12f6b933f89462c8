// Package clockerr holds the typed failures of the clock subsystem. Each
// type carries enough detail for diagnosis and maps to a stable errcode.
package clockerr

import (
	"errors"

	"clocktree-go/clock/freq"
	"clocktree-go/errcode"
	"clocktree-go/x/conv"
)

// Bound names the constraint a request could not satisfy.
type Bound string

const (
	BoundSysClk    Bound = "sysclk_max"
	BoundVCOIn     Bound = "vco_input"
	BoundVCO       Bound = "vco_output"
	BoundPLLOut    Bound = "pll_output"
	BoundAHB       Bound = "ahb_max"
	BoundAPB1      Bound = "apb1_max"
	BoundAPB2      Bound = "apb2_max"
	BoundAPB       Bound = "apb_max"
	BoundFlash     Bound = "flash_latency"
	BoundHSE       Bound = "hse_range"
	BoundSource    Bound = "source"
	BoundNoPLLPath Bound = "pll_path"
)

var (
	ErrHSEUndeclared     = errcode.HSEUndeclared
	ErrBusy              = errcode.Busy
	ErrUnknownPeripheral = errcode.UnknownPeripheral
	ErrUnknownFamily     = errcode.UnknownFamily
)

// ConfigUnsatisfiable: no legal divider combination meets the stated
// constraints. Limit is the violated bound, Requested what was asked or the
// closest value the search could reach.
type ConfigUnsatisfiable struct {
	Bound     Bound
	Limit     freq.Hz
	Requested freq.Hz
}

func (e *ConfigUnsatisfiable) Error() string {
	s := "config unsatisfiable: " + string(e.Bound)
	if e.Limit != 0 {
		s += " limit=" + e.Limit.String()
	}
	if e.Requested != 0 {
		s += " requested=" + e.Requested.String()
	}
	return s
}
func (e *ConfigUnsatisfiable) Code() errcode.Code { return errcode.ConfigUnsatisfiable }

// ClockStartTimeout: an oscillator or the PLL never reported ready (or, when
// stopping the PLL for reprogramming, never reported unlocked).
type ClockStartTimeout struct {
	Source freq.Source
	Polls  int
}

func (e *ClockStartTimeout) Error() string {
	var b [20]byte
	return "clock start timeout: " + e.Source.String() + " not ready after " + string(conv.Utoa(b[:], uint64(e.Polls))) + " polls"
}
func (e *ClockStartTimeout) Code() errcode.Code { return errcode.ClockStartTimeout }

// SwitchTimeout: the system clock multiplexer never confirmed Source.
type SwitchTimeout struct {
	Source freq.Source
	Polls  int
}

func (e *SwitchTimeout) Error() string {
	var b [20]byte
	return "switch timeout: sysclk never reported " + e.Source.String() + " after " + string(conv.Utoa(b[:], uint64(e.Polls))) + " polls"
}
func (e *SwitchTimeout) Code() errcode.Code { return errcode.SwitchTimeout }

// InvalidOverride: an explicit divider is outside the family's legal set.
type InvalidOverride struct {
	Field string
	Value uint32
	Min   uint32
	Max   uint32
}

func (e *InvalidOverride) Error() string {
	var a, b, c [20]byte
	return "invalid override: " + e.Field + "=" + string(conv.Utoa(a[:], uint64(e.Value))) +
		" legal " + string(conv.Utoa(b[:], uint64(e.Min))) + ".." + string(conv.Utoa(c[:], uint64(e.Max)))
}
func (e *InvalidOverride) Code() errcode.Code { return errcode.InvalidOverride }

// Unsatisfiable reports whether err is a ConfigUnsatisfiable and returns it.
func Unsatisfiable(err error) (*ConfigUnsatisfiable, bool) {
	var cu *ConfigUnsatisfiable
	ok := errors.As(err, &cu)
	return cu, ok
}

package types

// ClockConfig is the clock request carried on "config/rcc" and in board
// files. Zero fields take the family defaults.
type ClockConfig struct {
	Family    string `json:"family" yaml:"family"`
	Source    string `json:"source,omitempty" yaml:"source,omitempty"` // "hse", "hsi", "msi"
	HSEHz     uint32 `json:"hse_hz,omitempty" yaml:"hse_hz,omitempty"`
	HSEBypass bool   `json:"hse_bypass,omitempty" yaml:"hse_bypass,omitempty"`
	SysClkHz  uint32 `json:"sysclk_hz,omitempty" yaml:"sysclk_hz,omitempty"`
	PLL       string `json:"pll,omitempty" yaml:"pll,omitempty"` // "auto", "on", "off"

	AHBMaxHz  uint32 `json:"ahb_max_hz,omitempty" yaml:"ahb_max_hz,omitempty"`
	APB1MaxHz uint32 `json:"apb1_max_hz,omitempty" yaml:"apb1_max_hz,omitempty"`
	APB2MaxHz uint32 `json:"apb2_max_hz,omitempty" yaml:"apb2_max_hz,omitempty"`

	Override ClockOverride `json:"override,omitempty" yaml:"override,omitempty"`

	// Peripherals whose clocks are enabled once the plan is applied.
	Gates []string `json:"gates,omitempty" yaml:"gates,omitempty"`
}

type ClockOverride struct {
	M    uint32 `json:"m,omitempty" yaml:"m,omitempty"`
	N    uint32 `json:"n,omitempty" yaml:"n,omitempty"`
	R    uint32 `json:"r,omitempty" yaml:"r,omitempty"`
	Q    uint32 `json:"q,omitempty" yaml:"q,omitempty"`
	P    uint32 `json:"p,omitempty" yaml:"p,omitempty"`
	AHB  uint32 `json:"ahb,omitempty" yaml:"ahb,omitempty"`
	APB1 uint32 `json:"apb1,omitempty" yaml:"apb1,omitempty"`
	APB2 uint32 `json:"apb2,omitempty" yaml:"apb2,omitempty"`
}

type HeartbeatConfig struct {
	IntervalS int `json:"interval_s" yaml:"interval_s"`
}

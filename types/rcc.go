package types

// ---- RCC service state (retained on "rcc/state") ----

type RCCState struct {
	Level  string `json:"level"`  // "idle", "ready", "failed", "stopped"
	Status string `json:"status"` // short code
	Error  string `json:"error,omitempty"`
	TS     int64  `json:"ts_ms"`
}

// ClockSnapshot is the bus form of the applied clock tree (retained on
// "rcc/snapshot"). Buses the family lacks are zero.
type ClockSnapshot struct {
	Family     string `json:"family"`
	Generation uint32 `json:"generation"`
	Source     string `json:"source"`
	Input      string `json:"input"`
	InputHz    uint32 `json:"input_hz"`
	SysClkHz   uint32 `json:"sysclk_hz"`
	AHBHz      uint32 `json:"ahb_hz"`
	APB1Hz     uint32 `json:"apb1_hz"`
	APB2Hz     uint32 `json:"apb2_hz,omitempty"`
	APB1TimHz  uint32 `json:"apb1_timer_hz"`
	APB2TimHz  uint32 `json:"apb2_timer_hz,omitempty"`
	PLLQHz     uint32 `json:"pllq_hz,omitempty"`
	PLLPHz     uint32 `json:"pllp_hz,omitempty"`
	Latency    uint32 `json:"latency"`
	TS         int64  `json:"ts_ms"`
}

// PeriphStatus answers the "status" control verb.
type PeriphStatus struct {
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
	Bus     string `json:"bus"`
	ClockHz uint32 `json:"clock_hz"`
}

//go:build !tinygo || stm32g4

package setups

import (
	"clocktree-go/services/config"
	"clocktree-go/types"
)

func init() {
	config.Register("nucleo-g474", config.Setup{
		"rcc": types.ClockConfig{
			Family:   "g4",
			Source:   "hse",
			HSEHz:    24_000_000,
			SysClkHz: 170_000_000,
			Gates:    []string{"gpioa", "lpuart1", "fdcan"},
		},
		"heartbeat": types.HeartbeatConfig{IntervalS: 2},
	})
}

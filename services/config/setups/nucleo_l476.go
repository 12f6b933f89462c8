//go:build !tinygo || stm32l4

package setups

import (
	"clocktree-go/services/config"
	"clocktree-go/types"
)

func init() {
	config.Register("nucleo-l476", config.Setup{
		// 8 MHz from the ST-LINK MCO, so HSE runs in bypass.
		"rcc": types.ClockConfig{
			Family:    "l4",
			Source:    "hse",
			HSEHz:     8_000_000,
			HSEBypass: true,
			SysClkHz:  80_000_000,
			Gates:     []string{"gpioa", "usart2"},
		},
		"heartbeat": types.HeartbeatConfig{IntervalS: 2},
	})
}

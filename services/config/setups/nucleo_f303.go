//go:build !tinygo || stm32f3

package setups

import (
	"clocktree-go/services/config"
	"clocktree-go/types"
)

func init() {
	config.Register("nucleo-f303", config.Setup{
		"rcc": types.ClockConfig{
			Family:    "f3",
			Source:    "hse",
			HSEHz:     8_000_000,
			HSEBypass: true,
			SysClkHz:  72_000_000,
			PLL:       "on",
			Gates:     []string{"gpioa", "usart2"},
		},
		"heartbeat": types.HeartbeatConfig{IntervalS: 2},
	})
}

//go:build !tinygo || stm32f4

package setups

import (
	"clocktree-go/services/config"
	"clocktree-go/types"
)

func init() {
	config.Register("nucleo-f407", config.Setup{
		"rcc": types.ClockConfig{
			Family:    "f4",
			Source:    "hse",
			HSEHz:     8_000_000,
			SysClkHz:  168_000_000,
			APB1MaxHz: 42_000_000,
			Gates:     []string{"gpioa", "gpiod", "usart2"},
		},
		"heartbeat": types.HeartbeatConfig{IntervalS: 2},
	})
}

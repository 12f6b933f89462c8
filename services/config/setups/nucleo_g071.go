//go:build !tinygo || stm32g0

package setups

import (
	"clocktree-go/services/config"
	"clocktree-go/types"
)

func init() {
	config.Register("nucleo-g071", config.Setup{
		"rcc": types.ClockConfig{
			Family:   "g0",
			Source:   "hsi",
			SysClkHz: 64_000_000,
			Gates:    []string{"gpioa", "usart2"},
		},
		"heartbeat": types.HeartbeatConfig{IntervalS: 5},
	})
}

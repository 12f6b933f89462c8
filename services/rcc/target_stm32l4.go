//go:build tinygo && stm32l4

package rcc

import _ "clocktree-go/clock/family/l4"

const targetFamily = "l4"

//go:build tinygo && stm32g0

package rcc

import _ "clocktree-go/clock/family/g0"

const targetFamily = "g0"

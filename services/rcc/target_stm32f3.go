//go:build tinygo && stm32f3

package rcc

import _ "clocktree-go/clock/family/f3"

const targetFamily = "f3"

//go:build tinygo && stm32f4

package rcc

import _ "clocktree-go/clock/family/f4"

const targetFamily = "f4"

//go:build tinygo && stm32g4

package rcc

import _ "clocktree-go/clock/family/g4"

const targetFamily = "g4"

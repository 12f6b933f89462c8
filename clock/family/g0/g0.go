// Package g0 is the STM32G0 (G071) family table. G0 has a single APB
// bus, recorded as APB1.
package g0

import (
	"clocktree-go/clock/family"
	"clocktree-go/clock/freq"
)

// Tag types typed peripheral handles for this family.
type Tag struct{}

const (
	rcc   = 0x4002_1000
	flash = 0x4002_2000

	cr       = rcc + 0x00
	cfgr     = rcc + 0x08
	pllcfgr  = rcc + 0x0C
	ioprstr  = rcc + 0x24
	ahbrstr  = rcc + 0x28
	apbrstr1 = rcc + 0x2C
	apbrstr2 = rcc + 0x30
	iopenr   = rcc + 0x34
	ahbenr   = rcc + 0x38
	apbenr1  = rcc + 0x3C
	apbenr2  = rcc + 0x40
	csr      = rcc + 0x60
	acr      = flash + 0x00
)

var Family = &family.Family{
	Name: "g0",
	Part: "STM32G071",

	// HSISYS with HSIDIV at its reset value of /1.
	Osc: [freq.NumSources]family.Osc{
		freq.HSI: {Nominal: 16 * freq.MHz, On: family.Bit(cr, 8), Ready: family.Bit(cr, 10)},
		freq.HSE: {On: family.Bit(cr, 16), Ready: family.Bit(cr, 17)},
		freq.LSI: {Nominal: 32 * freq.KHz, On: family.Bit(csr, 0), Ready: family.Bit(csr, 1)},
	},
	HSEMin:    4 * freq.MHz,
	HSEMax:    48 * freq.MHz,
	HSEBypass: family.Bit(cr, 18),

	Reset: freq.HSI,
	Safe:  freq.HSI,

	SW:      family.F(cfgr, 0, 3),
	SWS:     family.F(cfgr, 3, 3),
	SWCodes: map[freq.Source]uint32{freq.HSI: 0, freq.HSE: 1, freq.PLL: 2, freq.LSI: 3},

	PLL: family.PLLSpec{
		Src:      family.F(pllcfgr, 0, 2),
		SrcCodes: map[freq.Source]uint32{freq.HSI: 2, freq.HSE: 3},
		M:        family.Divider{Range: family.R(1, 8), Field: family.F(pllcfgr, 4, 3), Enc: family.EncMinus1},
		N:        family.Divider{Range: family.R(8, 86), Field: family.F(pllcfgr, 8, 7)},
		P: family.Divider{Range: family.R(2, 32), Field: family.F(pllcfgr, 17, 5), Enc: family.EncMinus1,
			Enable: family.Bit(pllcfgr, 16)},
		Q: family.Divider{Range: family.R(2, 8), Field: family.F(pllcfgr, 25, 3), Enc: family.EncMinus1,
			Enable: family.Bit(pllcfgr, 24)},
		R: family.Divider{Range: family.R(2, 8), Field: family.F(pllcfgr, 29, 3), Enc: family.EncMinus1,
			Enable: family.Bit(pllcfgr, 28)},
		InMin:  2_660_000,
		InMax:  16 * freq.MHz,
		VCOMin: 64 * freq.MHz,
		VCOMax: 344 * freq.MHz,
		OutMax: 64 * freq.MHz,
		QMax:   128 * freq.MHz,
		PMax:   122 * freq.MHz,
		On:     family.Bit(cr, 24),
		Ready:  family.Bit(cr, 25),
	},

	Buses: []family.BusSpec{
		{Bus: family.AHB, Max: 64 * freq.MHz, Div: family.HPRE(cfgr, 8)},
		{Bus: family.APB1, Max: 64 * freq.MHz, Div: family.PPRE(cfgr, 12)},
	},
	SysMax: 64 * freq.MHz,

	Latency:    family.F(acr, 0, 3),
	WaitStates: []freq.Hz{24 * freq.MHz, 48 * freq.MHz, 64 * freq.MHz},

	Periphs: append(family.GPIOPorts(6, family.AHB, iopenr, ioprstr, 0),
		family.Gate(family.DMA, 1, family.AHB, ahbenr, ahbrstr, 0),
		family.Gate(family.CRC, 0, family.AHB, ahbenr, ahbrstr, 12),
		family.Gate(family.RNG, 0, family.AHB, ahbenr, ahbrstr, 18),

		family.Gate(family.TIM, 2, family.APB1, apbenr1, apbrstr1, 0),
		family.Gate(family.TIM, 3, family.APB1, apbenr1, apbrstr1, 1),
		family.Gate(family.TIM, 6, family.APB1, apbenr1, apbrstr1, 4),
		family.Gate(family.TIM, 7, family.APB1, apbenr1, apbrstr1, 5),
		family.Gate(family.LPUART, 1, family.APB1, apbenr1, apbrstr1, 7),
		family.Gate(family.SPI, 2, family.APB1, apbenr1, apbrstr1, 14),
		family.Gate(family.USART, 2, family.APB1, apbenr1, apbrstr1, 17),
		family.Gate(family.USART, 3, family.APB1, apbenr1, apbrstr1, 18),
		family.Gate(family.USART, 4, family.APB1, apbenr1, apbrstr1, 19),
		family.Gate(family.I2C, 1, family.APB1, apbenr1, apbrstr1, 21),
		family.Gate(family.I2C, 2, family.APB1, apbenr1, apbrstr1, 22),
		family.Gate(family.PWR, 0, family.APB1, apbenr1, apbrstr1, 28),
		family.Gate(family.DAC, 1, family.APB1, apbenr1, apbrstr1, 29),

		family.Gate(family.SYSCFG, 0, family.APB1, apbenr2, apbrstr2, 0),
		family.Gate(family.TIM, 1, family.APB1, apbenr2, apbrstr2, 11),
		family.Gate(family.SPI, 1, family.APB1, apbenr2, apbrstr2, 12),
		family.Gate(family.USART, 1, family.APB1, apbenr2, apbrstr2, 14),
		family.Gate(family.TIM, 14, family.APB1, apbenr2, apbrstr2, 15),
		family.Gate(family.TIM, 15, family.APB1, apbenr2, apbrstr2, 16),
		family.Gate(family.TIM, 16, family.APB1, apbenr2, apbrstr2, 17),
		family.Gate(family.TIM, 17, family.APB1, apbenr2, apbrstr2, 18),
		family.Gate(family.ADC, 0, family.APB1, apbenr2, apbrstr2, 20),
	),
}

var (
	GPIOA   = family.Handle[Tag](Family, family.GPIO, 0)
	GPIOB   = family.Handle[Tag](Family, family.GPIO, 1)
	DMA1    = family.Handle[Tag](Family, family.DMA, 1)
	USART2  = family.Handle[Tag](Family, family.USART, 2)
	LPUART1 = family.Handle[Tag](Family, family.LPUART, 1)
	I2C1    = family.Handle[Tag](Family, family.I2C, 1)
	TIM3    = family.Handle[Tag](Family, family.TIM, 3)
	ADC     = family.Handle[Tag](Family, family.ADC, 0)
)

func init() { family.Register(Family) }

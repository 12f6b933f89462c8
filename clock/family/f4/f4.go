// Package f4 is the STM32F4 (F407) family table.
package f4

import (
	"clocktree-go/clock/family"
	"clocktree-go/clock/freq"
)

// Tag types typed peripheral handles for this family.
type Tag struct{}

const (
	rcc   = 0x4002_3800
	flash = 0x4002_3C00

	cr       = rcc + 0x00
	pllcfgr  = rcc + 0x04
	cfgr     = rcc + 0x08
	ahb1rstr = rcc + 0x10
	ahb2rstr = rcc + 0x14
	apb1rstr = rcc + 0x20
	apb2rstr = rcc + 0x24
	ahb1enr  = rcc + 0x30
	ahb2enr  = rcc + 0x34
	apb1enr  = rcc + 0x40
	apb2enr  = rcc + 0x44
	csr      = rcc + 0x74
	acr      = flash + 0x00
)

var Family = &family.Family{
	Name: "f4",
	Part: "STM32F407",

	Osc: [freq.NumSources]family.Osc{
		freq.HSI: {Nominal: 16 * freq.MHz, On: family.Bit(cr, 0), Ready: family.Bit(cr, 1)},
		freq.HSE: {On: family.Bit(cr, 16), Ready: family.Bit(cr, 17)},
		freq.LSI: {Nominal: 32 * freq.KHz, On: family.Bit(csr, 0), Ready: family.Bit(csr, 1)},
	},
	HSEMin:    4 * freq.MHz,
	HSEMax:    26 * freq.MHz,
	HSEBypass: family.Bit(cr, 18),

	Reset: freq.HSI,
	Safe:  freq.HSI,

	SW:      family.F(cfgr, 0, 2),
	SWS:     family.F(cfgr, 2, 2),
	SWCodes: map[freq.Source]uint32{freq.HSI: 0, freq.HSE: 1, freq.PLL: 2},

	// The manual's PLLP feeds SYSCLK, so it sits in R here. PLLCFGR has no
	// output-enable bits.
	PLL: family.PLLSpec{
		Src:      family.Bit(pllcfgr, 22),
		SrcCodes: map[freq.Source]uint32{freq.HSI: 0, freq.HSE: 1},
		M:        family.Divider{Range: family.R(2, 63), Field: family.F(pllcfgr, 0, 6)},
		N:        family.Divider{Range: family.R(50, 432), Field: family.F(pllcfgr, 6, 9)},
		R:        family.Divider{Range: family.Set(2, 4, 6, 8), Field: family.F(pllcfgr, 16, 2), Enc: family.EncHalfMinus1},
		Q:        family.Divider{Range: family.R(2, 15), Field: family.F(pllcfgr, 24, 4)},
		InMin:    1 * freq.MHz,
		InMax:    2 * freq.MHz,
		VCOMin:   100 * freq.MHz,
		VCOMax:   432 * freq.MHz,
		OutMax:   168 * freq.MHz,
		QMax:     48 * freq.MHz,
		On:       family.Bit(cr, 24),
		Ready:    family.Bit(cr, 25),
	},

	Buses: []family.BusSpec{
		{Bus: family.AHB, Max: 168 * freq.MHz, Div: family.HPRE(cfgr, 4)},
		{Bus: family.APB1, Max: 42 * freq.MHz, Div: family.PPRE(cfgr, 10)},
		{Bus: family.APB2, Max: 84 * freq.MHz, Div: family.PPRE(cfgr, 13)},
	},
	SysMax: 168 * freq.MHz,

	// 2.7 V to 3.6 V supply.
	Latency: family.F(acr, 0, 3),
	WaitStates: []freq.Hz{
		30 * freq.MHz, 60 * freq.MHz, 90 * freq.MHz,
		120 * freq.MHz, 150 * freq.MHz, 168 * freq.MHz,
	},

	Periphs: append(family.GPIOPorts(9, family.AHB, ahb1enr, ahb1rstr, 0),
		family.Gate(family.CRC, 0, family.AHB, ahb1enr, ahb1rstr, 12),
		family.Gate(family.DMA, 1, family.AHB, ahb1enr, ahb1rstr, 21),
		family.Gate(family.DMA, 2, family.AHB, ahb1enr, ahb1rstr, 22),
		family.Gate(family.RNG, 0, family.AHB, ahb2enr, ahb2rstr, 6),

		family.Gate(family.TIM, 2, family.APB1, apb1enr, apb1rstr, 0),
		family.Gate(family.TIM, 3, family.APB1, apb1enr, apb1rstr, 1),
		family.Gate(family.TIM, 4, family.APB1, apb1enr, apb1rstr, 2),
		family.Gate(family.TIM, 5, family.APB1, apb1enr, apb1rstr, 3),
		family.Gate(family.TIM, 6, family.APB1, apb1enr, apb1rstr, 4),
		family.Gate(family.TIM, 7, family.APB1, apb1enr, apb1rstr, 5),
		family.Gate(family.SPI, 2, family.APB1, apb1enr, apb1rstr, 14),
		family.Gate(family.SPI, 3, family.APB1, apb1enr, apb1rstr, 15),
		family.Gate(family.USART, 2, family.APB1, apb1enr, apb1rstr, 17),
		family.Gate(family.USART, 3, family.APB1, apb1enr, apb1rstr, 18),
		family.Gate(family.UART, 4, family.APB1, apb1enr, apb1rstr, 19),
		family.Gate(family.UART, 5, family.APB1, apb1enr, apb1rstr, 20),
		family.Gate(family.I2C, 1, family.APB1, apb1enr, apb1rstr, 21),
		family.Gate(family.I2C, 2, family.APB1, apb1enr, apb1rstr, 22),
		family.Gate(family.I2C, 3, family.APB1, apb1enr, apb1rstr, 23),
		family.Gate(family.CAN, 1, family.APB1, apb1enr, apb1rstr, 25),
		family.Gate(family.CAN, 2, family.APB1, apb1enr, apb1rstr, 26),
		family.Gate(family.PWR, 0, family.APB1, apb1enr, apb1rstr, 28),
		family.Gate(family.DAC, 0, family.APB1, apb1enr, apb1rstr, 29),

		family.Gate(family.TIM, 1, family.APB2, apb2enr, apb2rstr, 0),
		family.Gate(family.TIM, 8, family.APB2, apb2enr, apb2rstr, 1),
		family.Gate(family.USART, 1, family.APB2, apb2enr, apb2rstr, 4),
		family.Gate(family.USART, 6, family.APB2, apb2enr, apb2rstr, 5),
		family.Gate(family.ADC, 1, family.APB2, apb2enr, apb2rstr, 8),
		family.Gate(family.SPI, 1, family.APB2, apb2enr, apb2rstr, 12),
		family.Gate(family.SYSCFG, 0, family.APB2, apb2enr, apb2rstr, 14),
		family.Gate(family.TIM, 9, family.APB2, apb2enr, apb2rstr, 16),
		family.Gate(family.TIM, 10, family.APB2, apb2enr, apb2rstr, 17),
		family.Gate(family.TIM, 11, family.APB2, apb2enr, apb2rstr, 18),
	),
}

var (
	GPIOA  = family.Handle[Tag](Family, family.GPIO, 0)
	GPIOD  = family.Handle[Tag](Family, family.GPIO, 3)
	DMA2   = family.Handle[Tag](Family, family.DMA, 2)
	TIM2   = family.Handle[Tag](Family, family.TIM, 2)
	USART1 = family.Handle[Tag](Family, family.USART, 1)
	USART2 = family.Handle[Tag](Family, family.USART, 2)
	I2C1   = family.Handle[Tag](Family, family.I2C, 1)
	SPI1   = family.Handle[Tag](Family, family.SPI, 1)
	PWR    = family.Handle[Tag](Family, family.PWR, 0)
)

func init() { family.Register(Family) }

// Package f3 is the STM32F3 (F303xE) family table.
//
// The F3 PLL has no VCO stage: PREDIV plays M, PLLMUL plays N and the
// product is SYSCLK directly, so R is fixed at 1 and the "VCO" bounds are
// the PLL output range.
package f3

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
	cfgr     = rcc + 0x04
	apb2rstr = rcc + 0x0C
	apb1rstr = rcc + 0x10
	ahbenr   = rcc + 0x14
	apb2enr  = rcc + 0x18
	apb1enr  = rcc + 0x1C
	csr      = rcc + 0x24
	ahbrstr  = rcc + 0x28
	cfgr2    = rcc + 0x2C
	acr      = flash + 0x00
)

var Family = &family.Family{
	Name: "f3",
	Part: "STM32F303xE",

	Osc: [freq.NumSources]family.Osc{
		freq.HSI: {Nominal: 8 * freq.MHz, On: family.Bit(cr, 0), Ready: family.Bit(cr, 1)},
		freq.HSE: {On: family.Bit(cr, 16), Ready: family.Bit(cr, 17)},
		freq.LSI: {Nominal: 40 * freq.KHz, On: family.Bit(csr, 0), Ready: family.Bit(csr, 1)},
	},
	HSEMin:    4 * freq.MHz,
	HSEMax:    32 * freq.MHz,
	HSEBypass: family.Bit(cr, 18),

	Reset: freq.HSI,
	Safe:  freq.HSI,

	SW:      family.F(cfgr, 0, 2),
	SWS:     family.F(cfgr, 2, 2),
	SWCodes: map[freq.Source]uint32{freq.HSI: 0, freq.HSE: 1, freq.PLL: 2},

	PLL: family.PLLSpec{
		Src:      family.F(cfgr, 15, 2),
		SrcCodes: map[freq.Source]uint32{freq.HSI: 1, freq.HSE: 2},
		M:        family.Divider{Range: family.R(1, 16), Field: family.F(cfgr2, 0, 4), Enc: family.EncMinus1},
		N:        family.Divider{Range: family.R(2, 16), Field: family.F(cfgr, 18, 4), Enc: family.EncMinus2},
		R:        family.Divider{Range: family.R(1, 1)},
		InMin:    1 * freq.MHz,
		InMax:    24 * freq.MHz,
		VCOMin:   16 * freq.MHz,
		VCOMax:   72 * freq.MHz,
		OutMax:   72 * freq.MHz,
		On:       family.Bit(cr, 24),
		Ready:    family.Bit(cr, 25),
	},

	Buses: []family.BusSpec{
		{Bus: family.AHB, Max: 72 * freq.MHz, Div: family.HPRE(cfgr, 4)},
		{Bus: family.APB1, Max: 36 * freq.MHz, Div: family.PPRE(cfgr, 8)},
		{Bus: family.APB2, Max: 72 * freq.MHz, Div: family.PPRE(cfgr, 11)},
	},
	SysMax: 72 * freq.MHz,

	Latency:    family.F(acr, 0, 3),
	WaitStates: []freq.Hz{24 * freq.MHz, 48 * freq.MHz, 72 * freq.MHz},

	Periphs: append(family.GPIOPorts(6, family.AHB, ahbenr, ahbrstr, 17),
		// AHBRSTR has no DMA or CRC reset.
		family.GateNoReset(family.DMA, 1, family.AHB, ahbenr, 0),
		family.GateNoReset(family.DMA, 2, family.AHB, ahbenr, 1),
		family.GateNoReset(family.CRC, 0, family.AHB, ahbenr, 6),
		family.Gate(family.ADC, 1, family.AHB, ahbenr, ahbrstr, 28),

		family.Gate(family.TIM, 2, family.APB1, apb1enr, apb1rstr, 0),
		family.Gate(family.TIM, 3, family.APB1, apb1enr, apb1rstr, 1),
		family.Gate(family.TIM, 4, family.APB1, apb1enr, apb1rstr, 2),
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
		family.Gate(family.CAN, 0, family.APB1, apb1enr, apb1rstr, 25),
		family.Gate(family.PWR, 0, family.APB1, apb1enr, apb1rstr, 28),
		family.Gate(family.DAC, 1, family.APB1, apb1enr, apb1rstr, 29),
		family.Gate(family.I2C, 3, family.APB1, apb1enr, apb1rstr, 30),

		family.Gate(family.SYSCFG, 0, family.APB2, apb2enr, apb2rstr, 0),
		family.Gate(family.TIM, 1, family.APB2, apb2enr, apb2rstr, 11),
		family.Gate(family.SPI, 1, family.APB2, apb2enr, apb2rstr, 12),
		family.Gate(family.TIM, 8, family.APB2, apb2enr, apb2rstr, 13),
		family.Gate(family.USART, 1, family.APB2, apb2enr, apb2rstr, 14),
		family.Gate(family.SPI, 4, family.APB2, apb2enr, apb2rstr, 15),
		family.Gate(family.TIM, 15, family.APB2, apb2enr, apb2rstr, 16),
		family.Gate(family.TIM, 16, family.APB2, apb2enr, apb2rstr, 17),
		family.Gate(family.TIM, 17, family.APB2, apb2enr, apb2rstr, 18),
	),
}

var (
	GPIOA  = family.Handle[Tag](Family, family.GPIO, 0)
	GPIOE  = family.Handle[Tag](Family, family.GPIO, 4)
	DMA1   = family.Handle[Tag](Family, family.DMA, 1)
	USART1 = family.Handle[Tag](Family, family.USART, 1)
	USART2 = family.Handle[Tag](Family, family.USART, 2)
	I2C1   = family.Handle[Tag](Family, family.I2C, 1)
	TIM2   = family.Handle[Tag](Family, family.TIM, 2)
)

func init() { family.Register(Family) }

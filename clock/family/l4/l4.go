// Package l4 is the STM32L4 (L476) family table.
package l4

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
	ahb1rstr = rcc + 0x28
	ahb2rstr = rcc + 0x2C
	apb1rst1 = rcc + 0x38
	apb1rst2 = rcc + 0x3C
	apb2rstr = rcc + 0x40
	ahb1enr  = rcc + 0x48
	ahb2enr  = rcc + 0x4C
	apb1enr1 = rcc + 0x58
	apb1enr2 = rcc + 0x5C
	apb2enr  = rcc + 0x60
	csr      = rcc + 0x94
	acr      = flash + 0x00
)

var Family = &family.Family{
	Name: "l4",
	Part: "STM32L476",

	Osc: [freq.NumSources]family.Osc{
		freq.MSI: {Nominal: 4 * freq.MHz, On: family.Bit(cr, 0), Ready: family.Bit(cr, 1)},
		freq.HSI: {Nominal: 16 * freq.MHz, On: family.Bit(cr, 8), Ready: family.Bit(cr, 10)},
		freq.HSE: {On: family.Bit(cr, 16), Ready: family.Bit(cr, 17)},
		freq.LSI: {Nominal: 32 * freq.KHz, On: family.Bit(csr, 0), Ready: family.Bit(csr, 1)},
	},
	HSEMin:    4 * freq.MHz,
	HSEMax:    48 * freq.MHz,
	HSEBypass: family.Bit(cr, 18),

	Reset: freq.MSI,
	Safe:  freq.HSI,

	SW:      family.F(cfgr, 0, 2),
	SWS:     family.F(cfgr, 2, 2),
	SWCodes: map[freq.Source]uint32{freq.MSI: 0, freq.HSI: 1, freq.HSE: 2, freq.PLL: 3},

	PLL: family.PLLSpec{
		Src:      family.F(pllcfgr, 0, 2),
		SrcCodes: map[freq.Source]uint32{freq.MSI: 1, freq.HSI: 2, freq.HSE: 3},
		M:        family.Divider{Range: family.R(1, 8), Field: family.F(pllcfgr, 4, 3), Enc: family.EncMinus1},
		N:        family.Divider{Range: family.R(8, 86), Field: family.F(pllcfgr, 8, 7)},
		P: family.Divider{Range: family.Set(7, 17), Field: family.F(pllcfgr, 17, 1), Enc: family.EncTable,
			Codes: []uint32{0, 1}, Enable: family.Bit(pllcfgr, 16)},
		Q: family.Divider{Range: family.Set(2, 4, 6, 8), Field: family.F(pllcfgr, 21, 2), Enc: family.EncHalfMinus1,
			Enable: family.Bit(pllcfgr, 20)},
		R: family.Divider{Range: family.Set(2, 4, 6, 8), Field: family.F(pllcfgr, 25, 2), Enc: family.EncHalfMinus1,
			Enable: family.Bit(pllcfgr, 24)},
		InMin:  4 * freq.MHz,
		InMax:  16 * freq.MHz,
		VCOMin: 64 * freq.MHz,
		VCOMax: 344 * freq.MHz,
		OutMax: 80 * freq.MHz,
		QMax:   48 * freq.MHz,
		PMax:   80 * freq.MHz,
		On:     family.Bit(cr, 24),
		Ready:  family.Bit(cr, 25),
	},

	Buses: []family.BusSpec{
		{Bus: family.AHB, Max: 80 * freq.MHz, Div: family.HPRE(cfgr, 4)},
		{Bus: family.APB1, Max: 80 * freq.MHz, Div: family.PPRE(cfgr, 8)},
		{Bus: family.APB2, Max: 80 * freq.MHz, Div: family.PPRE(cfgr, 11)},
	},
	SysMax: 80 * freq.MHz,

	// Voltage range 1.
	Latency:    family.F(acr, 0, 3),
	WaitStates: []freq.Hz{16 * freq.MHz, 32 * freq.MHz, 48 * freq.MHz, 64 * freq.MHz, 80 * freq.MHz},

	Periphs: append(family.GPIOPorts(8, family.AHB, ahb2enr, ahb2rstr, 0),
		family.Gate(family.DMA, 1, family.AHB, ahb1enr, ahb1rstr, 0),
		family.Gate(family.DMA, 2, family.AHB, ahb1enr, ahb1rstr, 1),
		family.Gate(family.CRC, 0, family.AHB, ahb1enr, ahb1rstr, 12),
		family.Gate(family.ADC, 0, family.AHB, ahb2enr, ahb2rstr, 13),
		family.Gate(family.RNG, 0, family.AHB, ahb2enr, ahb2rstr, 18),

		family.Gate(family.TIM, 2, family.APB1, apb1enr1, apb1rst1, 0),
		family.Gate(family.TIM, 3, family.APB1, apb1enr1, apb1rst1, 1),
		family.Gate(family.TIM, 4, family.APB1, apb1enr1, apb1rst1, 2),
		family.Gate(family.TIM, 5, family.APB1, apb1enr1, apb1rst1, 3),
		family.Gate(family.TIM, 6, family.APB1, apb1enr1, apb1rst1, 4),
		family.Gate(family.TIM, 7, family.APB1, apb1enr1, apb1rst1, 5),
		family.Gate(family.SPI, 2, family.APB1, apb1enr1, apb1rst1, 14),
		family.Gate(family.SPI, 3, family.APB1, apb1enr1, apb1rst1, 15),
		family.Gate(family.USART, 2, family.APB1, apb1enr1, apb1rst1, 17),
		family.Gate(family.USART, 3, family.APB1, apb1enr1, apb1rst1, 18),
		family.Gate(family.UART, 4, family.APB1, apb1enr1, apb1rst1, 19),
		family.Gate(family.UART, 5, family.APB1, apb1enr1, apb1rst1, 20),
		family.Gate(family.I2C, 1, family.APB1, apb1enr1, apb1rst1, 21),
		family.Gate(family.I2C, 2, family.APB1, apb1enr1, apb1rst1, 22),
		family.Gate(family.I2C, 3, family.APB1, apb1enr1, apb1rst1, 23),
		family.Gate(family.CAN, 1, family.APB1, apb1enr1, apb1rst1, 25),
		family.Gate(family.PWR, 0, family.APB1, apb1enr1, apb1rst1, 28),
		family.Gate(family.DAC, 1, family.APB1, apb1enr1, apb1rst1, 29),
		family.Gate(family.LPUART, 1, family.APB1, apb1enr2, apb1rst2, 0),

		family.Gate(family.SYSCFG, 0, family.APB2, apb2enr, apb2rstr, 0),
		family.Gate(family.TIM, 1, family.APB2, apb2enr, apb2rstr, 11),
		family.Gate(family.SPI, 1, family.APB2, apb2enr, apb2rstr, 12),
		family.Gate(family.TIM, 8, family.APB2, apb2enr, apb2rstr, 13),
		family.Gate(family.USART, 1, family.APB2, apb2enr, apb2rstr, 14),
		family.Gate(family.TIM, 15, family.APB2, apb2enr, apb2rstr, 16),
		family.Gate(family.TIM, 16, family.APB2, apb2enr, apb2rstr, 17),
		family.Gate(family.TIM, 17, family.APB2, apb2enr, apb2rstr, 18),
	),
}

// Typed handles.
var (
	GPIOA  = family.Handle[Tag](Family, family.GPIO, 0)
	GPIOB  = family.Handle[Tag](Family, family.GPIO, 1)
	GPIOC  = family.Handle[Tag](Family, family.GPIO, 2)
	DMA1   = family.Handle[Tag](Family, family.DMA, 1)
	TIM2   = family.Handle[Tag](Family, family.TIM, 2)
	TIM1   = family.Handle[Tag](Family, family.TIM, 1)
	USART1 = family.Handle[Tag](Family, family.USART, 1)
	USART2 = family.Handle[Tag](Family, family.USART, 2)
	I2C1   = family.Handle[Tag](Family, family.I2C, 1)
	SPI1   = family.Handle[Tag](Family, family.SPI, 1)
	PWR    = family.Handle[Tag](Family, family.PWR, 0)
)

func init() { family.Register(Family) }

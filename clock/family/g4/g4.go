// Package g4 is the STM32G4 (G474) family table.
//
// Above 150 MHz the part needs range 1 boost mode (PWR_CR5.R1MODE = 0), and
// a switch that crosses 80 MHz should pass through AHB/2 for 1 us. Neither
// is in this table: PWR is outside the RCC/FLASH registers the sequencer
// drives, so the caller enables boost before applying a plan above 150 MHz.
package g4

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
	Name: "g4",
	Part: "STM32G474",

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

	SW:      family.F(cfgr, 0, 2),
	SWS:     family.F(cfgr, 2, 2),
	SWCodes: map[freq.Source]uint32{freq.HSI: 1, freq.HSE: 2, freq.PLL: 3},

	PLL: family.PLLSpec{
		Src:      family.F(pllcfgr, 0, 2),
		SrcCodes: map[freq.Source]uint32{freq.HSI: 2, freq.HSE: 3},
		M:        family.Divider{Range: family.R(1, 16), Field: family.F(pllcfgr, 4, 4), Enc: family.EncMinus1},
		N:        family.Divider{Range: family.R(8, 127), Field: family.F(pllcfgr, 8, 7)},
		P: family.Divider{Range: family.R(2, 31), Field: family.F(pllcfgr, 27, 5),
			Enable: family.Bit(pllcfgr, 16)},
		Q: family.Divider{Range: family.Set(2, 4, 6, 8), Field: family.F(pllcfgr, 21, 2), Enc: family.EncHalfMinus1,
			Enable: family.Bit(pllcfgr, 20)},
		R: family.Divider{Range: family.Set(2, 4, 6, 8), Field: family.F(pllcfgr, 25, 2), Enc: family.EncHalfMinus1,
			Enable: family.Bit(pllcfgr, 24)},
		InMin:  2_660_000,
		InMax:  16 * freq.MHz,
		VCOMin: 96 * freq.MHz,
		VCOMax: 344 * freq.MHz,
		OutMax: 170 * freq.MHz,
		QMax:   170 * freq.MHz,
		PMax:   170 * freq.MHz,
		On:     family.Bit(cr, 24),
		Ready:  family.Bit(cr, 25),
	},

	Buses: []family.BusSpec{
		{Bus: family.AHB, Max: 170 * freq.MHz, Div: family.HPRE(cfgr, 4)},
		{Bus: family.APB1, Max: 170 * freq.MHz, Div: family.PPRE(cfgr, 8)},
		{Bus: family.APB2, Max: 170 * freq.MHz, Div: family.PPRE(cfgr, 11)},
	},
	SysMax: 170 * freq.MHz,

	// Range 1 boost mode.
	Latency: family.F(acr, 0, 4),
	WaitStates: []freq.Hz{
		34 * freq.MHz, 68 * freq.MHz, 102 * freq.MHz, 136 * freq.MHz, 170 * freq.MHz,
	},

	Periphs: append(family.GPIOPorts(7, family.AHB, ahb2enr, ahb2rstr, 0),
		family.Gate(family.DMA, 1, family.AHB, ahb1enr, ahb1rstr, 0),
		family.Gate(family.DMA, 2, family.AHB, ahb1enr, ahb1rstr, 1),
		family.Gate(family.DMAMUX, 1, family.AHB, ahb1enr, ahb1rstr, 2),
		family.Gate(family.CRC, 0, family.AHB, ahb1enr, ahb1rstr, 12),
		// ADC1/2 and ADC3/4/5 share one gate each.
		family.Gate(family.ADC, 1, family.AHB, ahb2enr, ahb2rstr, 13),
		family.Gate(family.ADC, 3, family.AHB, ahb2enr, ahb2rstr, 14),
		family.Gate(family.DAC, 1, family.AHB, ahb2enr, ahb2rstr, 16),
		family.Gate(family.DAC, 2, family.AHB, ahb2enr, ahb2rstr, 17),
		family.Gate(family.DAC, 3, family.AHB, ahb2enr, ahb2rstr, 18),
		family.Gate(family.DAC, 4, family.AHB, ahb2enr, ahb2rstr, 19),
		family.Gate(family.RNG, 0, family.AHB, ahb2enr, ahb2rstr, 26),

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
		family.Gate(family.FDCAN, 0, family.APB1, apb1enr1, apb1rst1, 25),
		family.Gate(family.PWR, 0, family.APB1, apb1enr1, apb1rst1, 28),
		family.Gate(family.I2C, 3, family.APB1, apb1enr1, apb1rst1, 30),
		family.Gate(family.LPUART, 1, family.APB1, apb1enr2, apb1rst2, 0),
		family.Gate(family.I2C, 4, family.APB1, apb1enr2, apb1rst2, 1),

		family.Gate(family.SYSCFG, 0, family.APB2, apb2enr, apb2rstr, 0),
		family.Gate(family.TIM, 1, family.APB2, apb2enr, apb2rstr, 11),
		family.Gate(family.SPI, 1, family.APB2, apb2enr, apb2rstr, 12),
		family.Gate(family.TIM, 8, family.APB2, apb2enr, apb2rstr, 13),
		family.Gate(family.USART, 1, family.APB2, apb2enr, apb2rstr, 14),
		family.Gate(family.SPI, 4, family.APB2, apb2enr, apb2rstr, 15),
		family.Gate(family.TIM, 15, family.APB2, apb2enr, apb2rstr, 16),
		family.Gate(family.TIM, 16, family.APB2, apb2enr, apb2rstr, 17),
		family.Gate(family.TIM, 17, family.APB2, apb2enr, apb2rstr, 18),
		family.Gate(family.TIM, 20, family.APB2, apb2enr, apb2rstr, 20),
	),
}

var (
	GPIOA   = family.Handle[Tag](Family, family.GPIO, 0)
	GPIOB   = family.Handle[Tag](Family, family.GPIO, 1)
	DMA1    = family.Handle[Tag](Family, family.DMA, 1)
	DMAMUX1 = family.Handle[Tag](Family, family.DMAMUX, 1)
	FDCAN   = family.Handle[Tag](Family, family.FDCAN, 0)
	USART1  = family.Handle[Tag](Family, family.USART, 1)
	LPUART1 = family.Handle[Tag](Family, family.LPUART, 1)
	I2C1    = family.Handle[Tag](Family, family.I2C, 1)
	TIM1    = family.Handle[Tag](Family, family.TIM, 1)
	PWR     = family.Handle[Tag](Family, family.PWR, 0)
)

func init() { family.Register(Family) }

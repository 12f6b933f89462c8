package family

import "clocktree-go/x/conv"

// Kind is a peripheral type.
type Kind uint8

const (
	GPIO Kind = iota + 1
	DMA
	DMAMUX
	USART
	UART
	LPUART
	I2C
	SPI
	TIM
	ADC
	DAC
	CRC
	RNG
	SYSCFG
	PWR
	CAN
	FDCAN
)

var kindNames = map[Kind]string{
	GPIO: "gpio", DMA: "dma", DMAMUX: "dmamux", USART: "usart", UART: "uart",
	LPUART: "lpuart", I2C: "i2c", SPI: "spi", TIM: "tim", ADC: "adc", DAC: "dac",
	CRC: "crc", RNG: "rng", SYSCFG: "syscfg", PWR: "pwr", CAN: "can", FDCAN: "fdcan",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "kind?"
}

// ID names a peripheral instance. GPIO ports use letters ('a' = 0), every
// other kind uses its instance number; 0 means a singleton ("crc").
type ID struct {
	Kind     Kind
	Instance uint8
}

func (id ID) String() string {
	s := id.Kind.String()
	if id.Kind == GPIO {
		return s + string(rune('a'+id.Instance))
	}
	if id.Instance == 0 {
		return s
	}
	var b [4]byte
	return s + string(conv.Utoa(b[:], uint64(id.Instance)))
}

// ParseID is the inverse of ID.String ("usart2", "gpioc", "crc", "adc12").
func ParseID(s string) (ID, bool) {
	for k, name := range kindNames {
		if len(s) < len(name) || s[:len(name)] != name {
			continue
		}
		rest := s[len(name):]
		if k == GPIO {
			if len(rest) == 1 && rest[0] >= 'a' && rest[0] <= 'k' {
				return ID{Kind: k, Instance: rest[0] - 'a'}, true
			}
			continue
		}
		if rest == "" {
			return ID{Kind: k}, true
		}
		n := 0
		for i := 0; i < len(rest); i++ {
			c := rest[i]
			if c < '0' || c > '9' {
				n = -1
				break
			}
			n = n*10 + int(c-'0')
		}
		if n > 0 && n < 256 {
			return ID{Kind: k, Instance: uint8(n)}, true
		}
	}
	return ID{}, false
}

// Loc is where a peripheral's clock gate lives.
type Loc struct {
	Bus    Bus
	Enable Field
	Reset  Field
}

// Entry is one row of a family's peripheral table.
type Entry struct {
	ID  ID
	Loc Loc
}

// Gate builds a table row: enable register enr, reset register rstr, same
// bit position in both.
func Gate(kind Kind, inst uint8, bus Bus, enr, rstr uint32, bit uint8) Entry {
	return Entry{
		ID:  ID{Kind: kind, Instance: inst},
		Loc: Loc{Bus: bus, Enable: Bit(enr, bit), Reset: Bit(rstr, bit)},
	}
}

// Periph is a compile-time typed handle on a family's peripheral. F is the
// family's tag type, so a handle from one family cannot be passed to another
// family's gate.
type Periph[F any] struct {
	ID  ID
	Loc Loc
}

// Handle resolves a typed handle from f's table and panics if the table has
// no such entry. Family packages call it from package-level var blocks, so a
// bad table fails at init.
func Handle[F any](f *Family, kind Kind, inst uint8) Periph[F] {
	id := ID{Kind: kind, Instance: inst}
	loc, ok := f.Lookup(id)
	if !ok {
		panic("family " + f.Name + ": no peripheral " + id.String())
	}
	return Periph[F]{ID: id, Loc: loc}
}

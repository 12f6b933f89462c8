package family

// Shared STM32 prescaler encodings. HPRE codes 0xxx all mean /1; PPRE codes
// 0xx all mean /1.

// HPRE is the AHB prescaler field at addr[pos+3:pos].
func HPRE(addr uint32, pos uint8) Divider {
	return Divider{
		Range: Set(1, 2, 4, 8, 16, 64, 128, 256, 512),
		Field: F(addr, pos, 4),
		Enc:   EncTable,
		Codes: []uint32{0, 8, 9, 10, 11, 12, 13, 14, 15},
	}
}

// PPRE is an APB prescaler field at addr[pos+2:pos].
func PPRE(addr uint32, pos uint8) Divider {
	return Divider{
		Range: Set(1, 2, 4, 8, 16),
		Field: F(addr, pos, 3),
		Enc:   EncTable,
		Codes: []uint32{0, 4, 5, 6, 7},
	}
}

// GateNoReset builds a table row for a peripheral without a reset bit.
func GateNoReset(kind Kind, inst uint8, bus Bus, enr uint32, bit uint8) Entry {
	return Entry{
		ID:  ID{Kind: kind, Instance: inst},
		Loc: Loc{Bus: bus, Enable: Bit(enr, bit)},
	}
}

// GPIOPorts builds rows for consecutive GPIO ports starting at port A on
// bit first.
func GPIOPorts(n int, bus Bus, enr, rstr uint32, first uint8) []Entry {
	out := make([]Entry, n)
	for i := 0; i < n; i++ {
		out[i] = Gate(GPIO, uint8(i), bus, enr, rstr, first+uint8(i))
	}
	return out
}

package family

// Field locates a bit-field in a memory-mapped register.
type Field struct {
	Addr  uint32 // absolute register address
	Pos   uint8
	Width uint8
}

// F builds a Field; Bit builds a one-bit Field.
func F(addr uint32, pos, width uint8) Field { return Field{Addr: addr, Pos: pos, Width: width} }
func Bit(addr uint32, pos uint8) Field      { return Field{Addr: addr, Pos: pos, Width: 1} }

// Valid reports whether the field exists on the family. Absent fields are
// the zero value.
func (f Field) Valid() bool { return f.Width != 0 }

// Mask is the in-register mask of the field.
func (f Field) Mask() uint32 {
	if f.Width >= 32 {
		return 0xFFFF_FFFF
	}
	return ((1 << f.Width) - 1) << f.Pos
}

// Max is the largest code the field can hold.
func (f Field) Max() uint32 { return f.Mask() >> f.Pos }

// Encoding maps a divider value to its register code.
type Encoding uint8

const (
	EncDirect     Encoding = iota // code = v
	EncMinus1                     // code = v-1
	EncMinus2                     // code = v-2
	EncHalfMinus1                 // code = v/2-1
	EncTable                      // code = Codes[index of v in Values]
)

// Range is a legal divider or multiplier set: either the explicit Values or
// the contiguous Min..Max.
type Range struct {
	Min, Max uint32
	Values   []uint32
}

// R and Set build Ranges.
func R(min, max uint32) Range { return Range{Min: min, Max: max} }
func Set(values ...uint32) Range {
	return Range{Min: values[0], Max: values[len(values)-1], Values: values}
}
func (r Range) Empty() bool { return r.Max == 0 }

// Contains reports whether v is legal.
func (r Range) Contains(v uint32) bool {
	if len(r.Values) > 0 {
		for _, x := range r.Values {
			if x == v {
				return true
			}
		}
		return false
	}
	return v >= r.Min && v <= r.Max
}

// Each calls fn for every legal value in ascending order; fn returns false to stop.
func (r Range) Each(fn func(v uint32) bool) {
	if len(r.Values) > 0 {
		for _, v := range r.Values {
			if !fn(v) {
				return
			}
		}
		return
	}
	if r.Empty() {
		return
	}
	for v := r.Min; v <= r.Max; v++ {
		if !fn(v) {
			return
		}
	}
}

// Divider is a Range bound to its register field.
type Divider struct {
	Range
	Field  Field
	Enc    Encoding
	Codes  []uint32 // EncTable only, parallel to Values
	Enable Field    // output-enable bit, when the family gates the output
}

// Encode returns the register code for v. v must be legal.
func (d Divider) Encode(v uint32) uint32 {
	switch d.Enc {
	case EncMinus1:
		return v - 1
	case EncMinus2:
		return v - 2
	case EncHalfMinus1:
		return v/2 - 1
	case EncTable:
		for i, x := range d.Values {
			if x == v {
				return d.Codes[i]
			}
		}
		return 0
	default:
		return v
	}
}

// Decode is the inverse of Encode. Table codes that are not listed decode to
// the smallest legal value (HPRE 0xxx all mean /1).
func (d Divider) Decode(code uint32) uint32 {
	switch d.Enc {
	case EncMinus1:
		return code + 1
	case EncMinus2:
		return code + 2
	case EncHalfMinus1:
		return (code + 1) * 2
	case EncTable:
		for i, c := range d.Codes {
			if c == code {
				return d.Values[i]
			}
		}
		return d.Values[0]
	default:
		return code
	}
}

package freq

// Source identifies a clock source that can feed the PLL or the system
// clock multiplexer.
type Source uint8

const (
	NoSource Source = iota
	HSI             // internal high-speed RC
	MSI             // internal multi-speed RC (L4)
	LSI             // internal low-speed RC
	HSE             // external high-speed crystal or bypass clock
	LSE             // external 32.768 kHz crystal
	PLL             // main PLL output
	numSources
)

// NumSources is the size of arrays indexed by Source.
const NumSources = int(numSources)

var sourceNames = [...]string{"none", "hsi", "msi", "lsi", "hse", "lse", "pll"}

func (s Source) String() string {
	if int(s) < len(sourceNames) {
		return sourceNames[s]
	}
	return "unknown"
}

// Internal reports whether the source's frequency is fixed by silicon.
// External sources must be declared by the caller.
func (s Source) Internal() bool {
	switch s {
	case HSI, MSI, LSI:
		return true
	default:
		return false
	}
}

// Oscillator reports whether s is a free-running oscillator (not the PLL).
func (s Source) Oscillator() bool { return s != NoSource && s != PLL && s < numSources }

// ParseSource maps a lower-case name ("hse", "hsi", ...) to a Source.
func ParseSource(name string) (Source, bool) {
	for i, n := range sourceNames {
		if i == 0 {
			continue
		}
		if n == name {
			return Source(i), true
		}
	}
	return NoSource, false
}

// Package all registers every supported family.
package all

import (
	_ "clocktree-go/clock/family/f3"
	_ "clocktree-go/clock/family/f4"
	_ "clocktree-go/clock/family/g0"
	_ "clocktree-go/clock/family/g4"
	_ "clocktree-go/clock/family/l4"
)

package family

import (
	"sync"

	"golang.org/x/exp/slices"
)

var (
	mu       sync.RWMutex
	families = map[string]*Family{}
)

// Register adds f to the process-wide table. Family packages call it from
// init. Duplicate names and inconsistent tables panic.
func Register(f *Family) {
	if err := Check(f); err != nil {
		panic("family " + f.Name + ": " + err.Error())
	}
	mu.Lock()
	defer mu.Unlock()
	if _, exists := families[f.Name]; exists {
		panic("family already registered: " + f.Name)
	}
	families[f.Name] = f
}

// ByName returns a registered family.
func ByName(name string) (*Family, bool) {
	mu.RLock()
	defer mu.RUnlock()
	f, ok := families[name]
	return f, ok
}

// Names lists registered families in order.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(families))
	for n := range families {
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}

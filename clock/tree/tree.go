// Package tree is the graph view of a plan: oscillator -> PLL -> SYSCLK ->
// buses. Bring-up order and frequency propagation both come from a
// topological sort of that graph.
package tree

import (
	"sort"

	"clocktree-go/clock/family"
	"clocktree-go/clock/freq"
	"clocktree-go/clock/solver"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Node names.
const (
	VCO    = "pll_vco"
	PLLR   = "pll_r"
	PLLQ   = "pll_q"
	PLLP   = "pll_p"
	SysClk = "sysclk"
)

// Fixed node IDs keep the stabilised sort deterministic.
const (
	idOsc    = 0 // + freq.Source
	idVCO    = 16
	idPLLR   = 17
	idPLLQ   = 18
	idPLLP   = 19
	idSysClk = 20
	idBus    = 32 // + family.Bus
)

// Node is one clock in the tree. Its frequency is its parent's times Mul
// over Div; the root is the oscillator.
type Node struct {
	id     int64
	Name   string
	Source freq.Source // oscillator nodes, and freq.PLL for the VCO
	Bus    family.Bus
	IsBus  bool
	Mul    uint32
	Div    uint32
	Hz     freq.Hz
}

func (n *Node) ID() int64 { return n.id }

// Tree is built from one plan.
type Tree struct {
	g     *simple.DirectedGraph
	nodes map[string]*Node
	root  *Node
	input freq.Hz
}

// Build lays out the plan's clocks. Unused PLL outputs are left out.
func Build(p *solver.Plan) *Tree {
	t := &Tree{g: simple.NewDirectedGraph(), nodes: map[string]*Node{}, input: p.Freqs.Input}
	src := p.Input()
	t.root = t.add(&Node{id: idOsc + int64(src), Name: src.String(), Source: src, Mul: 1, Div: 1})

	sys := &Node{id: idSysClk, Name: SysClk, Mul: 1, Div: 1}
	if p.Source == freq.PLL {
		vco := t.add(&Node{id: idVCO, Name: VCO, Source: freq.PLL, Mul: p.PLL.N, Div: p.PLL.M})
		t.link(t.root, vco)
		r := t.add(&Node{id: idPLLR, Name: PLLR, Mul: 1, Div: p.PLL.R})
		t.link(vco, r)
		if p.PLL.Q != 0 {
			t.link(vco, t.add(&Node{id: idPLLQ, Name: PLLQ, Mul: 1, Div: p.PLL.Q}))
		}
		if p.PLL.P != 0 {
			t.link(vco, t.add(&Node{id: idPLLP, Name: PLLP, Mul: 1, Div: p.PLL.P}))
		}
		t.link(r, t.add(sys))
	} else {
		t.link(t.root, t.add(sys))
	}

	var ahb *Node
	for _, b := range p.Family.Buses {
		n := t.add(&Node{id: idBus + int64(b.Bus), Name: b.Bus.String(), Bus: b.Bus, IsBus: true, Mul: 1, Div: p.Div[b.Bus]})
		if b.Bus == family.AHB {
			ahb = n
		}
	}
	for _, b := range p.Family.Buses {
		n := t.nodes[b.Bus.String()]
		if n == ahb {
			t.link(sys, n)
		} else if ahb != nil {
			t.link(ahb, n)
		}
	}
	return t
}

func (t *Tree) add(n *Node) *Node {
	t.g.AddNode(n)
	t.nodes[n.Name] = n
	return n
}

func (t *Tree) link(from, to *Node) { t.g.SetEdge(t.g.NewEdge(from, to)) }

// Node returns a node by name.
func (t *Tree) Node(name string) (*Node, bool) {
	n, ok := t.nodes[name]
	return n, ok
}

// Order returns the nodes parents-first.
func (t *Tree) Order() ([]*Node, error) {
	sorted, err := topo.SortStabilized(t.g, func(ns []graph.Node) {
		sort.Slice(ns, func(i, j int) bool { return ns[i].ID() < ns[j].ID() })
	})
	if err != nil {
		return nil, err
	}
	out := make([]*Node, len(sorted))
	for i, n := range sorted {
		out[i] = n.(*Node)
	}
	return out, nil
}

func (t *Tree) parent(n *Node) *Node {
	it := t.g.To(n.ID())
	if it.Next() {
		return it.Node().(*Node)
	}
	return nil
}

// Propagate fills every node's frequency in topological order.
func (t *Tree) Propagate() error {
	order, err := t.Order()
	if err != nil {
		return err
	}
	for _, n := range order {
		in := t.input
		if p := t.parent(n); p != nil {
			in = p.Hz
		}
		if n.Hz, err = freq.Effective(in, n.Mul, n.Div); err != nil {
			return err
		}
	}
	return nil
}

// Clocks builds and propagates the tree for p, keyed by node name.
func Clocks(p *solver.Plan) (map[string]freq.Hz, error) {
	t := Build(p)
	if err := t.Propagate(); err != nil {
		return nil, err
	}
	out := make(map[string]freq.Hz, len(t.nodes))
	for name, n := range t.nodes {
		out[name] = n.Hz
	}
	return out, nil
}

// Prerequisites lists what must be running before SYSCLK can switch to p's
// source, in bring-up order: the oscillator, then the PLL if used.
func Prerequisites(p *solver.Plan) []freq.Source {
	order, err := Build(p).Order()
	if err != nil {
		// A tree is acyclic by construction.
		return []freq.Source{p.Input()}
	}
	var out []freq.Source
	for _, n := range order {
		if n.Name == SysClk {
			break
		}
		if n.Source != freq.NoSource {
			out = append(out, n.Source)
		}
	}
	return out
}

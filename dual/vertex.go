package dual

import "fmt"

// Vertex is the persistent state of one vertex unit for one context.
//
// The state is created at configuration time, reset to its zero state by
// the Reset instruction, and recycled across decoding rounds. Invariant:
// a virtual vertex never carries a defect and never adopts a node, and
// Grown is only meaningful while Node != NoNode.
type Vertex struct {
	// Index is the fixed vertex id.
	Index int
	// IsVirtual marks boundary vertices.
	IsVirtual bool

	// Speed is the current boundary motion.
	Speed Speed
	// Grown is the amount grown so far along this vertex's boundary.
	Grown int
	// IsDefect is set once a defect has been injected here.
	IsDefect bool
	// Node is the tree node this vertex belongs to, or NoNode.
	Node NodeIndex
	// Root is the root of that node's alternating tree, or NoNode.
	Root NodeIndex
}

// reset returns the vertex to its zero state, keeping only identity.
func (v *Vertex) reset() {
	v.Speed = Stay
	v.Grown = 0
	v.IsDefect = false
	v.Node = NoNode
	v.Root = NoNode
}

// execute applies the broadcast instruction to this vertex's own state.
// It reads nothing from other units, so it may run in place.
func (v *Vertex) execute(inst Instruction) {
	switch inst.Op {
	case OpAddDefect:
		if inst.Vertex != v.Index {
			return
		}
		if v.IsVirtual {
			panic(fmt.Sprintf(
				"cannot add defect to virtual vertex %d", v.Index))
		}
		if v.IsDefect || v.Node != NoNode {
			panic(fmt.Sprintf(
				"cannot add defect to occupied vertex %d (node %d)",
				v.Index, v.Node))
		}
		v.IsDefect = true
		v.Speed = Grow
		v.Node = inst.DefectNode
		v.Root = inst.DefectNode
	case OpSetSpeed:
		if v.Node == inst.Node {
			v.Speed = inst.Speed
		}
	case OpSetBlossom:
		if v.Node == inst.Node || v.Root == inst.Node {
			v.Node = inst.Blossom
			v.Speed = Grow
		}
	case OpGrow:
		v.Grown += v.Speed.Value() * inst.Length
		if v.Grown < 0 {
			panic(fmt.Sprintf(
				"vertex %d shrunk below zero (grown %d): growth discipline violated",
				v.Index, v.Grown))
		}
	}
}

// update performs the neighbor-propagation reduction: scan incident
// edges in fixed order for a growing peer across a tight edge, and adopt
// (or clear) this vertex's node accordingly. It reads the post-execute
// snapshot in prev and must not be applied in place.
func (v *Vertex) update(prev []Vertex, edges []Edge, incident []int) {
	if v.IsDefect || v.IsVirtual || v.Grown != 0 {
		return
	}
	// first valid incident edge wins; the fixed scan order makes the
	// tie-break deterministic
	for _, ei := range incident {
		e := &edges[ei]
		peer := &prev[e.Peer(v.Index)]
		if peer.Speed == Grow && e.IsTight(prev) {
			v.Node = peer.Node
			v.Root = peer.Root
			v.Speed = peer.Speed
			return
		}
	}
	v.Node = NoNode
	v.Root = NoNode
	v.Speed = Stay
}

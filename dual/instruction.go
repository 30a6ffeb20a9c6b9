// Package dual implements the distributed dual network of a Micro
// Blossom accelerator: per-vertex and per-edge processing elements that
// execute one broadcast instruction per cycle and convergecast the
// maximum safe growth and conflict reports back to the control plane.
//
// The semantics follow the staged register-transfer design: every unit
// advances through execute, update, and write stages in lockstep, and
// the whole network behaves as one synchronous state machine.
package dual

import "fmt"

// NodeIndex identifies a tree node (a defect or a blossom
// representative). NoNode marks the absence of a node.
type NodeIndex int

// NoNode is the "none" sentinel for node and root indices.
const NoNode NodeIndex = -1

// Speed is the boundary motion of a vertex.
type Speed uint8

// Speed values use the hardware's one-hot encoding.
const (
	Stay   Speed = 0b00
	Grow   Speed = 0b01
	Shrink Speed = 0b10
)

// Value returns the signed growth rate of the speed.
func (s Speed) Value() int {
	switch s {
	case Grow:
		return 1
	case Shrink:
		return -1
	default:
		return 0
	}
}

func (s Speed) String() string {
	switch s {
	case Stay:
		return "Stay"
	case Grow:
		return "Grow"
	case Shrink:
		return "Shrink"
	default:
		return fmt.Sprintf("Speed(%d)", uint8(s))
	}
}

// Opcode tags the instruction variant broadcast to all units.
type Opcode uint8

const (
	// OpSetSpeed sets the speed of every vertex belonging to a node.
	OpSetSpeed Opcode = iota
	// OpSetBlossom reassigns vertices of a node (or rooted at it) to a
	// new blossom node.
	OpSetBlossom
	// OpGrow advances every vertex boundary by a length at its speed.
	OpGrow
	// OpFindObstacle requests a convergecast obstacle report.
	OpFindObstacle
	// OpAddDefect injects a defect at a vertex and seeds a new node.
	OpAddDefect
	// OpReset returns every unit to its zero state.
	OpReset
)

func (op Opcode) String() string {
	switch op {
	case OpSetSpeed:
		return "SetSpeed"
	case OpSetBlossom:
		return "SetBlossom"
	case OpGrow:
		return "Grow"
	case OpFindObstacle:
		return "FindObstacle"
	case OpAddDefect:
		return "AddDefect"
	case OpReset:
		return "Reset"
	default:
		return fmt.Sprintf("Opcode(%d)", uint8(op))
	}
}

// Instruction is one broadcast message. Exactly one instruction is live
// per context per cycle; unused fields are zero.
type Instruction struct {
	Op Opcode

	// Node is the target node of SetSpeed and SetBlossom.
	Node NodeIndex
	// Speed is the new speed for SetSpeed.
	Speed Speed
	// Blossom is the new node id for SetBlossom.
	Blossom NodeIndex
	// Vertex is the defect vertex for AddDefect.
	Vertex int
	// DefectNode is the node id seeded by AddDefect.
	DefectNode NodeIndex
	// Length is the growth length for Grow.
	Length int
}

// SetSpeed builds an instruction setting the speed of node's vertices.
func SetSpeed(node NodeIndex, speed Speed) Instruction {
	return Instruction{Op: OpSetSpeed, Node: node, Speed: speed}
}

// SetBlossom builds an instruction moving node's vertices into blossom.
func SetBlossom(node, blossom NodeIndex) Instruction {
	return Instruction{Op: OpSetBlossom, Node: node, Blossom: blossom}
}

// AddDefect builds an instruction injecting a defect at vertex, seeding
// tree node `node`.
func AddDefect(vertex int, node NodeIndex) Instruction {
	return Instruction{Op: OpAddDefect, Vertex: vertex, DefectNode: node}
}

// GrowBy builds an instruction growing every boundary by length.
func GrowBy(length int) Instruction {
	return Instruction{Op: OpGrow, Length: length}
}

// FindObstacle builds an instruction requesting an obstacle report.
func FindObstacle() Instruction {
	return Instruction{Op: OpFindObstacle}
}

// Reset builds an instruction resetting every unit.
func Reset() Instruction {
	return Instruction{Op: OpReset}
}

func (i Instruction) String() string {
	switch i.Op {
	case OpSetSpeed:
		return fmt.Sprintf("SetSpeed(%d, %v)", i.Node, i.Speed)
	case OpSetBlossom:
		return fmt.Sprintf("SetBlossom(%d, %d)", i.Node, i.Blossom)
	case OpGrow:
		return fmt.Sprintf("Grow(%d)", i.Length)
	case OpAddDefect:
		return fmt.Sprintf("AddDefect(%d, %d)", i.Vertex, i.DefectNode)
	default:
		return i.Op.String()
	}
}

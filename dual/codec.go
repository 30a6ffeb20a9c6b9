package dual

import "fmt"

// Codec packs instructions into the 32-bit broadcast word and back.
//
// Field widths depend on the generated instance: node and vertex ids are
// VertexBits wide, growth lengths are WeightBits wide. The layout is
//
//	bits [1:0]   primary opcode
//	  0b00 SetSpeed:   node at [2+vb-1:2], speed at [2+vb+1:2+vb]
//	  0b01 SetBlossom: node at [2+vb-1:2], blossom at [2+2*vb-1:2+vb]
//	  0b10 Grow:       length at [2+wb-1:2]
//	  0b11 extended, sub-opcode at [3:2]
//	    0b00 FindObstacle
//	    0b01 AddDefect: vertex at [4+vb-1:4], node at [4+2*vb-1:4+vb]
//	    0b10 Reset
//
// where vb = VertexBits and wb = WeightBits.
type Codec struct {
	VertexBits int
	WeightBits int
}

const (
	opBitsSetSpeed   = 0b00
	opBitsSetBlossom = 0b01
	opBitsGrow       = 0b10
	opBitsExtended   = 0b11

	extBitsFindObstacle = 0b00
	extBitsAddDefect    = 0b01
	extBitsReset        = 0b10
)

// NewCodec builds a codec for the given field widths. The widths must
// leave room for two id fields plus the extended opcode in 32 bits.
func NewCodec(vertexBits, weightBits int) (Codec, error) {
	if vertexBits < 1 || weightBits < 1 {
		return Codec{}, fmt.Errorf(
			"field widths must be >= 1, got vertexBits=%d weightBits=%d",
			vertexBits, weightBits)
	}
	if 4+2*vertexBits > 32 {
		return Codec{}, fmt.Errorf(
			"vertexBits=%d does not fit the 32-bit instruction word",
			vertexBits)
	}
	if 2+weightBits > 32 {
		return Codec{}, fmt.Errorf(
			"weightBits=%d does not fit the 32-bit instruction word",
			weightBits)
	}
	return Codec{VertexBits: vertexBits, WeightBits: weightBits}, nil
}

func (c Codec) vertexMask() uint32 { return (1 << c.VertexBits) - 1 }
func (c Codec) weightMask() uint32 { return (1 << c.WeightBits) - 1 }

// Encode packs an instruction into its 32-bit broadcast word.
func (c Codec) Encode(inst Instruction) (uint32, error) {
	vb := uint(c.VertexBits)

	switch inst.Op {
	case OpSetSpeed:
		if err := c.checkNode(inst.Node); err != nil {
			return 0, err
		}
		return opBitsSetSpeed |
			uint32(inst.Node)<<2 |
			uint32(inst.Speed)<<(2+vb), nil
	case OpSetBlossom:
		if err := c.checkNode(inst.Node); err != nil {
			return 0, err
		}
		if err := c.checkNode(inst.Blossom); err != nil {
			return 0, err
		}
		return opBitsSetBlossom |
			uint32(inst.Node)<<2 |
			uint32(inst.Blossom)<<(2+vb), nil
	case OpGrow:
		if inst.Length < 0 || uint32(inst.Length) > c.weightMask() {
			return 0, fmt.Errorf("grow length %d exceeds %d-bit field",
				inst.Length, c.WeightBits)
		}
		return opBitsGrow | uint32(inst.Length)<<2, nil
	case OpFindObstacle:
		return opBitsExtended | extBitsFindObstacle<<2, nil
	case OpAddDefect:
		if inst.Vertex < 0 || uint32(inst.Vertex) > c.vertexMask() {
			return 0, fmt.Errorf("vertex %d exceeds %d-bit field",
				inst.Vertex, c.VertexBits)
		}
		if err := c.checkNode(inst.DefectNode); err != nil {
			return 0, err
		}
		return opBitsExtended | extBitsAddDefect<<2 |
			uint32(inst.Vertex)<<4 |
			uint32(inst.DefectNode)<<(4+vb), nil
	case OpReset:
		return opBitsExtended | extBitsReset<<2, nil
	default:
		return 0, fmt.Errorf("cannot encode opcode %v", inst.Op)
	}
}

// Decode unpacks a 32-bit broadcast word. Unrecognized extended opcodes
// are a fatal configuration error: the word cannot have been produced by
// a matching driver.
func (c Codec) Decode(word uint32) (Instruction, error) {
	vb := uint(c.VertexBits)

	switch word & 0b11 {
	case opBitsSetSpeed:
		return Instruction{
			Op:    OpSetSpeed,
			Node:  NodeIndex(word >> 2 & c.vertexMask()),
			Speed: Speed(word >> (2 + vb) & 0b11),
		}, nil
	case opBitsSetBlossom:
		return Instruction{
			Op:      OpSetBlossom,
			Node:    NodeIndex(word >> 2 & c.vertexMask()),
			Blossom: NodeIndex(word >> (2 + vb) & c.vertexMask()),
		}, nil
	case opBitsGrow:
		return Instruction{
			Op:     OpGrow,
			Length: int(word >> 2 & c.weightMask()),
		}, nil
	default:
		switch word >> 2 & 0b11 {
		case extBitsFindObstacle:
			return Instruction{Op: OpFindObstacle}, nil
		case extBitsAddDefect:
			return Instruction{
				Op:         OpAddDefect,
				Vertex:     int(word >> 4 & c.vertexMask()),
				DefectNode: NodeIndex(word >> (4 + vb) & c.vertexMask()),
			}, nil
		case extBitsReset:
			return Instruction{Op: OpReset}, nil
		default:
			return Instruction{}, fmt.Errorf(
				"unrecognized extended opcode in word 0x%08X", word)
		}
	}
}

func (c Codec) checkNode(node NodeIndex) error {
	if node == NoNode || node < 0 || uint32(node) > c.vertexMask() {
		return fmt.Errorf("node %d exceeds %d-bit field", node, c.VertexBits)
	}
	return nil
}

// Package machine implements the MicroBlossom control plane: a
// register-mapped front end that issues broadcast instructions into the
// distributed dual network, multiplexes logical decoding contexts over
// the one physical pipeline, tracks in-flight instruction hazards, and
// optionally auto-issues Grow instructions when safe.
package machine

// Register map. The bus adapter (AXI-Lite, Wishbone, ...) is out of
// scope; only the logical register contract is modeled here.
const (
	// RegCycleCounter is the free-running cycle counter (64b, RO).
	RegCycleCounter = 0x0
	// RegVersion is the accelerator version (32b, RO).
	RegVersion = 0x8
	// RegContextDepth is the context capacity (32b, RO).
	RegContextDepth = 0xC
	// RegConflictChannels is the conflict-channel count (8b, RO).
	RegConflictChannels = 0x10
	// RegVertexBits is the vertex-id field width (8b, RO).
	RegVertexBits = 0x11
	// RegWeightBits is the weight field width (8b, RO).
	RegWeightBits = 0x12
	// RegInstructionCounter counts accepted instructions (32b, RW).
	RegInstructionCounter = 0x18
	// RegReadoutCounter counts served readouts (32b, RW).
	RegReadoutCounter = 0x20

	// InstructionBase..InstructionEnd is the 64-bit burst instruction
	// window: each slot carries a 32-bit instruction word in the low
	// half and a 16-bit context id at bits 47:32 (WO).
	InstructionBase = 0x1000
	InstructionEnd  = 0x2000

	// ContextWindowBase..ContextWindowEnd is the 32-bit per-context
	// instruction window: the context id is derived from the address
	// (WO).
	ContextWindowBase = 0x10000
	ContextWindowEnd  = 0x20000

	// ReadoutBase is the start of the per-context readout blocks, one
	// ReadoutStride-byte block per context.
	ReadoutBase   = 0x400000
	ReadoutStride = 1024
)

// Offsets within a per-context readout block.
const (
	// OffMaximumGrowth is the software-set growth budget (16b, RW).
	OffMaximumGrowth = 0x0
	// OffAccumulatedGrown tracks hardware-issued growth (16b, RW).
	OffAccumulatedGrown = 0x2
	// OffGrowable is the latest convergecast growth bound (16b, RO).
	OffGrowable = 0x4
	// OffConflictBase is the first conflict record. Records are
	// ConflictStride bytes apart, one per channel (RO).
	OffConflictBase = 0x10
	// ConflictStride is the size of one 128-bit conflict record.
	ConflictStride = 0x10
)

// Offsets within a conflict record. The none sentinel is NodeNone.
const (
	OffConflictValid   = 0x0 // 16b
	OffConflictNode1   = 0x2 // 16b
	OffConflictNode2   = 0x4 // 16b
	OffConflictTouch1  = 0x6 // 16b
	OffConflictTouch2  = 0x8 // 16b
	OffConflictVertex1 = 0xA // 16b
	OffConflictVertex2 = 0xC // 16b
)

// NodeNone is the register-level encoding of a missing node id, used for
// conflicts against virtual boundary vertices.
const NodeNone = 0xFFFF

// Version identifies this register contract.
const Version = 0x00020000

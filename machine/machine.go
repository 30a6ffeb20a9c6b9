package machine

import (
	"fmt"

	"github.com/sarchlab/microblossom/dual"
	"github.com/sarchlab/microblossom/graph"
)

// Statistics holds control-plane performance statistics.
type Statistics struct {
	// Cycles is the total number of cycles simulated.
	Cycles uint64
	// InstructionsIssued counts accepted broadcast instructions,
	// including hardware-issued Grow instructions.
	InstructionsIssued uint64
	// OffloadedGrows counts Grow instructions issued by the hardware
	// itself under the primal-offloading budget.
	OffloadedGrows uint64
	// StalledWrites counts write requests answered with backpressure.
	StalledWrites uint64
	// StalledReads counts read requests answered with backpressure.
	StalledReads uint64
	// ReadoutsServed counts accepted reads of a growable register.
	ReadoutsServed uint64
}

// contextState is the per-context readout memory plus the offloading
// engine's pending-work flags.
type contextState struct {
	maximumGrowth    uint16
	accumulatedGrown uint16
	growable         uint16
	conflicts        []dual.Conflict

	// offloadCheck is set when a FindObstacle result lands and offload
	// eligibility must be evaluated. It is held until the decision is
	// made, so a cycle lost to bus arbitration is retried.
	offloadCheck bool
	// offloadProbe is set when a hardware-issued Grow retires and a
	// follow-up FindObstacle is due.
	offloadProbe bool
}

// landKind tags what happens when an in-flight instruction retires.
type landKind int

const (
	// landQuiet: the instruction retires with nothing to report.
	landQuiet landKind = iota
	// landReadout: a FindObstacle result is committed to the context
	// readout memory.
	landReadout
	// landOffloadGrow: a hardware-issued Grow retires and the context
	// needs a follow-up obstacle probe.
	landOffloadGrow
)

// pendingReadout is an in-flight instruction: it retires readLatency
// cycles after it was accepted.
type pendingReadout struct {
	context  int
	landAt   uint64
	kind     landKind
	response dual.Response
}

// Machine is the MicroBlossom control plane. External bus masters call
// Write and Read once per cycle; a false return is bus-level
// backpressure and the request must be retried. Tick advances one cycle.
type Machine struct {
	graph   *graph.Graph
	config  *graph.HardwareConfig
	network *dual.Dual
	codec   dual.Codec

	cycle              uint64
	instructionCounter uint32
	readoutCounter     uint32

	history  *History
	contexts []contextState
	pending  []pendingReadout

	// issuedThisCycle backpressures further writes once the single
	// broadcast bus has accepted an instruction this cycle, including
	// Grow instructions the hardware issues itself.
	issuedThisCycle bool

	// pipelined read discipline: a read is accepted only if a read was
	// accepted or primed on the previous cycle
	readActive    bool
	lastReadCycle uint64

	stats Statistics
}

// New builds a control plane for a validated graph and hardware
// configuration.
func New(g *graph.Graph, config *graph.HardwareConfig) (*Machine, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	codec, err := dual.NewCodec(g.VertexBits, g.WeightBits)
	if err != nil {
		return nil, err
	}

	m := &Machine{
		graph:    g,
		config:   config,
		network:  dual.New(g, config.ContextDepth, config.ConflictChannels),
		codec:    codec,
		history:  NewHistory(config.ExecuteLatency()),
		contexts: make([]contextState, config.ContextDepth),
	}
	for i := range m.contexts {
		m.contexts[i].conflicts = make([]dual.Conflict, config.ConflictChannels)
	}
	return m, nil
}

// Codec returns the instruction codec of this instance.
func (m *Machine) Codec() dual.Codec {
	return m.codec
}

// Stats returns control-plane statistics.
func (m *Machine) Stats() Statistics {
	return m.stats
}

// CycleCount returns the free-running cycle counter.
func (m *Machine) CycleCount() uint64 {
	return m.cycle
}

// Busy reports whether instructions are still in flight or the
// offloading engine has pending work.
func (m *Machine) Busy() bool {
	if len(m.pending) > 0 {
		return true
	}
	for i := range m.contexts {
		if m.contexts[i].offloadCheck || m.contexts[i].offloadProbe {
			return true
		}
	}
	return false
}

// VertexState returns a snapshot of one vertex's persistent state, for
// inspection in simulation.
func (m *Machine) VertexState(ctx, v int) dual.Vertex {
	return m.network.Vertex(ctx, v)
}

// sampling reports whether the dual network samples this cycle. With a
// divided secondary clock domain, instructions are only accepted on
// sampling edges.
func (m *Machine) sampling() bool {
	return m.cycle%uint64(m.config.ClockDivideBy) == 0
}

// Tick advances the control plane by one register-interface cycle.
func (m *Machine) Tick() {
	m.cycle++
	m.stats.Cycles++
	m.issuedThisCycle = false

	if !m.sampling() {
		return
	}

	m.history.Shift()
	m.landReadouts()
	m.advanceOffload()
}

// landReadouts retires in-flight instructions whose latency has elapsed:
// FindObstacle results are committed to the per-context readout memory
// and queued for an offload-eligibility check, hardware Grow retirements
// queue a follow-up probe, everything else retires quietly.
func (m *Machine) landReadouts() {
	kept := m.pending[:0]
	for _, p := range m.pending {
		if p.landAt > m.cycle {
			kept = append(kept, p)
			continue
		}
		state := &m.contexts[p.context]
		switch p.kind {
		case landReadout:
			state.growable = m.saturateGrowable(p.response.MaxGrowable)
			copy(state.conflicts, p.response.Conflicts)
			state.offloadCheck = m.config.SupportOffloading
		case landOffloadGrow:
			state.offloadProbe = true
		}
	}
	m.pending = kept
}

// saturateGrowable clamps a convergecast growth bound to the weight
// width. Unconstrained growth reads as the maximum representable value.
func (m *Machine) saturateGrowable(maxGrowable int) uint16 {
	if maxGrowable > m.graph.MaxWeight {
		maxGrowable = m.graph.MaxWeight
	}
	return uint16(maxGrowable)
}

// advanceOffload serves the offloading engine's pending work: for each
// context in index order, issue the follow-up FindObstacle after a
// hardware Grow retires, or evaluate a landed obstacle report and grow
// when no conflict was found and the software-set budget is not
// exhausted. At most one instruction is issued per cycle; a context that
// loses the bus keeps its flag and is retried next cycle, so no landing
// event is ever dropped.
func (m *Machine) advanceOffload() {
	if !m.config.SupportOffloading {
		return
	}
	for ctx := range m.contexts {
		state := &m.contexts[ctx]
		switch {
		case state.offloadProbe:
			if m.issuedThisCycle || m.history.HasHazard(ctx) {
				continue
			}
			state.offloadProbe = false
			m.issue(ctx, dual.FindObstacle(), landReadout)
		case state.offloadCheck:
			length := m.offloadLength(state)
			if length == 0 {
				state.offloadCheck = false
				continue
			}
			if m.issuedThisCycle || m.history.HasHazard(ctx) {
				continue
			}
			state.offloadCheck = false
			m.stats.OffloadedGrows++
			state.accumulatedGrown += uint16(length)
			m.issue(ctx, dual.GrowBy(length), landOffloadGrow)
		}
	}
}

// offloadLength returns the growth the hardware may issue for a landed
// obstacle report: zero when a conflict was found, nothing can grow, or
// the budget is exhausted.
func (m *Machine) offloadLength(state *contextState) int {
	if state.growable == 0 {
		return 0
	}
	for _, c := range state.conflicts {
		if c.Valid {
			return 0
		}
	}
	if state.maximumGrowth <= state.accumulatedGrown {
		return 0
	}
	length := int(state.maximumGrowth - state.accumulatedGrown)
	if length > int(state.growable) {
		length = int(state.growable)
	}
	return length
}

// issue is the DoWrite commit: record the instruction in the broadcast
// history, bump the counter, and present it to the dual network.
func (m *Machine) issue(ctx int, inst dual.Instruction, kind landKind) {
	m.issuedThisCycle = true
	m.history.Push(ctx)
	m.instructionCounter++
	m.stats.InstructionsIssued++
	response := m.network.Step(ctx, inst)
	m.pending = append(m.pending, pendingReadout{
		context:  ctx,
		landAt:   m.cycle + uint64(m.config.ReadLatency()),
		kind:     kind,
		response: response,
	})
}

// WriteInstruction attempts to issue an already-decoded instruction for
// a context. Returns false while the request must be retried.
func (m *Machine) WriteInstruction(ctx int, inst dual.Instruction) bool {
	if ctx < 0 || ctx >= len(m.contexts) {
		panic(fmt.Sprintf("context %d out of range [0, %d)",
			ctx, len(m.contexts)))
	}
	// AskWrite probe
	if m.issuedThisCycle || !m.sampling() || m.history.HasHazard(ctx) {
		m.stats.StalledWrites++
		return false
	}
	kind := landQuiet
	if inst.Op == dual.OpFindObstacle {
		kind = landReadout
	}
	m.issue(ctx, inst, kind)
	return true
}

// Write attempts a register write. Returns false while the bus master
// must retry. Writes to read-only or unmapped addresses are accepted and
// ignored, as the hardware does.
func (m *Machine) Write(addr uint64, value uint64) bool {
	switch {
	case addr == RegInstructionCounter:
		m.instructionCounter = uint32(value)
		return true
	case addr == RegReadoutCounter:
		m.readoutCounter = uint32(value)
		return true
	case addr >= InstructionBase && addr < InstructionEnd:
		ctx := int(value >> 32 & 0xFFFF)
		return m.writeInstructionWord(ctx, uint32(value))
	case addr >= ContextWindowBase && addr < ContextWindowEnd:
		ctx := int(addr-ContextWindowBase) / 4
		return m.writeInstructionWord(ctx, uint32(value))
	case addr >= ReadoutBase:
		return m.writeReadout(addr, value)
	default:
		return true
	}
}

func (m *Machine) writeInstructionWord(ctx int, word uint32) bool {
	inst, err := m.codec.Decode(word)
	if err != nil {
		// a malformed word cannot come from a matching driver
		panic(err)
	}
	return m.WriteInstruction(ctx, inst)
}

func (m *Machine) writeReadout(addr uint64, value uint64) bool {
	ctx, off, ok := m.splitReadoutAddr(addr)
	if !ok {
		// beyond the context depth: unmapped, accepted and ignored
		return true
	}
	state := &m.contexts[ctx]
	switch off {
	case OffMaximumGrowth:
		state.maximumGrowth = uint16(value)
	case OffAccumulatedGrown:
		state.accumulatedGrown = uint16(value)
	}
	// growable and conflict records are read-only
	return true
}

// Read attempts a register read. Returns false while the bus master must
// retry: the first read after an idle cycle stalls exactly one cycle,
// and reads of a context with in-flight instructions stall until the
// hazard window drains.
func (m *Machine) Read(addr uint64) (uint64, bool) {
	if addr >= ReadoutBase {
		ctx, _, ok := m.splitReadoutAddr(addr)
		if ok && m.history.HasHazard(ctx) {
			m.stats.StalledReads++
			m.readActive = false
			return 0, false
		}
	}

	// AskRead: prime the pipelined read port
	if !m.readActive || m.cycle != m.lastReadCycle+1 {
		m.readActive = true
		m.lastReadCycle = m.cycle
		m.stats.StalledReads++
		return 0, false
	}
	m.lastReadCycle = m.cycle

	return m.serveRead(addr), true
}

func (m *Machine) serveRead(addr uint64) uint64 {
	switch addr {
	case RegCycleCounter:
		return m.cycle
	case RegVersion:
		return Version
	case RegContextDepth:
		return uint64(m.config.ContextDepth)
	case RegConflictChannels:
		return uint64(m.config.ConflictChannels)
	case RegVertexBits:
		return uint64(m.graph.VertexBits)
	case RegWeightBits:
		return uint64(m.graph.WeightBits)
	case RegInstructionCounter:
		return uint64(m.instructionCounter)
	case RegReadoutCounter:
		return uint64(m.readoutCounter)
	}

	if addr >= ReadoutBase {
		return m.serveReadoutRead(addr)
	}
	return 0
}

func (m *Machine) serveReadoutRead(addr uint64) uint64 {
	ctx, off, ok := m.splitReadoutAddr(addr)
	if !ok {
		return 0
	}
	state := &m.contexts[ctx]
	switch off {
	case OffMaximumGrowth:
		return uint64(state.maximumGrowth)
	case OffAccumulatedGrown:
		return uint64(state.accumulatedGrown)
	case OffGrowable:
		m.readoutCounter++
		m.stats.ReadoutsServed++
		return uint64(state.growable)
	}

	if off < OffConflictBase {
		return 0
	}
	channel := (off - OffConflictBase) / ConflictStride
	if channel >= uint64(len(state.conflicts)) {
		return 0
	}
	return conflictField(state.conflicts[channel],
		(off-OffConflictBase)%ConflictStride)
}

// splitReadoutAddr resolves a readout-window address to a context and
// block offset. Addresses beyond the configured context depth are
// unmapped and report ok false; the bus treats them like any other
// unmapped address rather than faulting.
func (m *Machine) splitReadoutAddr(addr uint64) (int, uint64, bool) {
	ctx := int((addr - ReadoutBase) / ReadoutStride)
	if ctx >= len(m.contexts) {
		return 0, 0, false
	}
	return ctx, (addr - ReadoutBase) % ReadoutStride, true
}

func conflictField(c dual.Conflict, off uint64) uint64 {
	switch off {
	case OffConflictValid:
		if c.Valid {
			return 1
		}
		return 0
	case OffConflictNode1:
		return nodeField(c.Node1)
	case OffConflictNode2:
		return nodeField(c.Node2)
	case OffConflictTouch1:
		return nodeField(c.Touch1)
	case OffConflictTouch2:
		return nodeField(c.Touch2)
	case OffConflictVertex1:
		return uint64(c.Vertex1)
	case OffConflictVertex2:
		return uint64(c.Vertex2)
	default:
		return 0
	}
}

func nodeField(n dual.NodeIndex) uint64 {
	if n == dual.NoNode {
		return NodeNone
	}
	return uint64(n)
}

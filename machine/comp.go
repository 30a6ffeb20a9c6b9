package machine

import (
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/microblossom/graph"
)

// BusOp is one queued register-bus transaction. The external bus master
// retries a stalled transaction every cycle until it is accepted; there
// is no abort path.
type BusOp struct {
	// IsRead selects between a read and a write transaction.
	IsRead bool
	// Addr is the register address.
	Addr uint64
	// Value is the write data.
	Value uint64
	// OnRead, if set, receives the read data when the read is accepted.
	OnRead func(value uint64)
}

// Comp exposes the control plane as an Akita ticking component: each
// tick advances the machine one cycle and retries the bus transaction at
// the head of the queue.
type Comp struct {
	*sim.TickingComponent

	machine *Machine
	queue   []BusOp
}

// Machine returns the wrapped control plane.
func (c *Comp) Machine() *Machine {
	return c.machine
}

// Enqueue appends bus transactions to be replayed against the register
// interface in order.
func (c *Comp) Enqueue(ops ...BusOp) {
	c.queue = append(c.queue, ops...)
	c.TickLater()
}

// EnqueueWrite appends a register write.
func (c *Comp) EnqueueWrite(addr, value uint64) {
	c.Enqueue(BusOp{Addr: addr, Value: value})
}

// EnqueueRead appends a register read delivering its data to onRead.
func (c *Comp) EnqueueRead(addr uint64, onRead func(value uint64)) {
	c.Enqueue(BusOp{IsRead: true, Addr: addr, OnRead: onRead})
}

// Tick advances one cycle. It reports progress while transactions remain
// queued or convergecast results are in flight, so the engine keeps
// scheduling ticks until the machine drains.
func (c *Comp) Tick() bool {
	if len(c.queue) == 0 && !c.machine.Busy() {
		return false
	}

	c.machine.Tick()

	if len(c.queue) > 0 {
		op := c.queue[0]
		if op.IsRead {
			if value, ok := c.machine.Read(op.Addr); ok {
				if op.OnRead != nil {
					op.OnRead(value)
				}
				c.queue = c.queue[1:]
			}
		} else if c.machine.Write(op.Addr, op.Value) {
			c.queue = c.queue[1:]
		}
	}

	return true
}

// Builder builds control-plane components.
type Builder struct {
	engine sim.Engine
	freq   sim.Freq
	graph  *graph.Graph
	config *graph.HardwareConfig
}

// NewBuilder creates a builder with a 1 GHz default frequency and a
// default hardware configuration.
func NewBuilder() Builder {
	return Builder{
		freq:   1 * sim.GHz,
		config: graph.DefaultHardwareConfig(),
	}
}

// WithEngine sets the event-driven engine.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the register-interface clock frequency.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithGraph sets the decoding graph.
func (b Builder) WithGraph(g *graph.Graph) Builder {
	b.graph = g
	return b
}

// WithHardwareConfig sets the capacity parameters.
func (b Builder) WithHardwareConfig(config *graph.HardwareConfig) Builder {
	b.config = config
	return b
}

// Build creates the component.
func (b Builder) Build(name string) (*Comp, error) {
	machine, err := New(b.graph, b.config)
	if err != nil {
		return nil, err
	}

	c := &Comp{machine: machine}
	c.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, c)
	return c, nil
}

package machine_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/microblossom/dual"
	"github.com/sarchlab/microblossom/graph"
	"github.com/sarchlab/microblossom/machine"
)

var _ = Describe("Comp", func() {
	var (
		engine sim.Engine
		comp   *machine.Comp
	)

	BeforeEach(func() {
		engine = sim.NewSerialEngine()

		var err error
		comp, err = machine.NewBuilder().
			WithEngine(engine).
			WithFreq(1 * sim.GHz).
			WithGraph(pathGraph()).
			Build("MicroBlossom")
		Expect(err).NotTo(HaveOccurred())
	})

	enqueueInstruction := func(ctx int, inst dual.Instruction) {
		word, err := comp.Machine().Codec().Encode(inst)
		Expect(err).NotTo(HaveOccurred())
		comp.EnqueueWrite(
			machine.ContextWindowBase+4*uint64(ctx), uint64(word))
	}

	It("should replay queued transactions in order under the engine", func() {
		enqueueInstruction(0, dual.Reset())
		enqueueInstruction(0, dual.AddDefect(0, 0))
		enqueueInstruction(0, dual.GrowBy(1))
		enqueueInstruction(0, dual.FindObstacle())

		Expect(engine.Run()).To(Succeed())

		var growable uint64
		comp.EnqueueRead(machine.ReadoutBase+machine.OffGrowable,
			func(value uint64) { growable = value })
		Expect(engine.Run()).To(Succeed())

		Expect(comp.Machine().VertexState(0, 0).Grown).To(Equal(1))
		Expect(growable).To(Equal(uint64(1)))
	})

	It("should keep ticking until in-flight readouts land", func() {
		enqueueInstruction(0, dual.AddDefect(0, 0))

		Expect(engine.Run()).To(Succeed())

		Expect(comp.Machine().Busy()).To(BeFalse())
	})

	It("should drive the offloading loop to a boundary conflict", func() {
		comp.EnqueueWrite(machine.ReadoutBase+machine.OffMaximumGrowth, 100)
		enqueueInstruction(0, dual.AddDefect(2, 0))
		enqueueInstruction(0, dual.FindObstacle())

		Expect(engine.Run()).To(Succeed())

		var grown, valid uint64
		comp.EnqueueRead(machine.ReadoutBase+machine.OffAccumulatedGrown,
			func(value uint64) { grown = value })
		comp.EnqueueRead(
			machine.ReadoutBase+machine.OffConflictBase+machine.OffConflictValid,
			func(value uint64) { valid = value })
		Expect(engine.Run()).To(Succeed())

		// vertex 2 grows until the boundary edge to virtual vertex 3
		// becomes tight
		Expect(grown).To(Equal(uint64(2)))
		Expect(valid).To(Equal(uint64(1)))
	})

	It("should reject an invalid hardware configuration", func() {
		config := graph.DefaultHardwareConfig()
		config.ContextDepth = 0

		_, err := machine.NewBuilder().
			WithEngine(engine).
			WithGraph(pathGraph()).
			WithHardwareConfig(config).
			Build("Broken")

		Expect(err).To(HaveOccurred())
	})
})

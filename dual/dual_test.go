package dual_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/microblossom/dual"
	"github.com/sarchlab/microblossom/graph"
)

func TestDual(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Dual Suite")
}

// pathGraph builds 0-1-2-3 with uniform weight 2 and virtual vertex 3.
func pathGraph() *graph.Graph {
	g, err := graph.New(graph.Config{
		VertexNum: 4,
		WeightedEdges: []graph.WeightedEdge{
			{Left: 0, Right: 1, Weight: 2},
			{Left: 1, Right: 2, Weight: 2},
			{Left: 2, Right: 3, Weight: 2},
		},
		VirtualVertices: []int{3},
	})
	Expect(err).NotTo(HaveOccurred())
	return g
}

var _ = Describe("Dual", func() {
	var (
		g *graph.Graph
		d *dual.Dual
	)

	BeforeEach(func() {
		g = pathGraph()
		d = dual.New(g, 2, 2)
	})

	Describe("AddDefect", func() {
		It("should seed a growing node at the defect vertex", func() {
			d.Step(0, dual.AddDefect(0, 0))

			v := d.Vertex(0, 0)
			Expect(v.IsDefect).To(BeTrue())
			Expect(v.Speed).To(Equal(dual.Grow))
			Expect(v.Node).To(Equal(dual.NodeIndex(0)))
			Expect(v.Root).To(Equal(dual.NodeIndex(0)))
		})

		It("should panic on an occupied vertex", func() {
			d.Step(0, dual.AddDefect(0, 0))

			Expect(func() {
				d.Step(0, dual.AddDefect(0, 1))
			}).To(PanicWith(ContainSubstring("occupied")))
		})

		It("should panic on a virtual vertex", func() {
			Expect(func() {
				d.Step(0, dual.AddDefect(3, 0))
			}).To(PanicWith(ContainSubstring("virtual")))
		})
	})

	Describe("SetSpeed and Grow", func() {
		It("should set the speed of the targeted node only", func() {
			d.Step(0, dual.AddDefect(0, 0))
			d.Step(0, dual.AddDefect(2, 1))

			d.Step(0, dual.SetSpeed(0, dual.Stay))

			Expect(d.Vertex(0, 0).Speed).To(Equal(dual.Stay))
			Expect(d.Vertex(0, 2).Speed).To(Equal(dual.Grow))
		})

		It("should grow by exactly the instruction length", func() {
			d.Step(0, dual.AddDefect(0, 0))

			d.Step(0, dual.GrowBy(1))

			v := d.Vertex(0, 0)
			Expect(v.Grown).To(Equal(1))
			Expect(v.Node).To(Equal(dual.NodeIndex(0)))
			Expect(v.Root).To(Equal(dual.NodeIndex(0)))
		})

		It("should shrink at negative speed", func() {
			d.Step(0, dual.AddDefect(0, 0))
			d.Step(0, dual.GrowBy(2))

			d.Step(0, dual.SetSpeed(0, dual.Shrink))
			d.Step(0, dual.GrowBy(1))

			Expect(d.Vertex(0, 0).Grown).To(Equal(1))
		})
	})

	Describe("neighbor propagation", func() {
		It("should flood-fill a grown tree into its neighbor", func() {
			d.Step(0, dual.AddDefect(0, 0))
			d.Step(0, dual.GrowBy(2))

			// edge 0-1 is now tight, vertex 1 adopts node 0
			v := d.Vertex(0, 1)
			Expect(v.Node).To(Equal(dual.NodeIndex(0)))
			Expect(v.Root).To(Equal(dual.NodeIndex(0)))
			Expect(v.Speed).To(Equal(dual.Grow))
		})

		It("should never propagate into a virtual vertex", func() {
			d.Step(0, dual.AddDefect(2, 0))
			d.Step(0, dual.GrowBy(2))

			v := d.Vertex(0, 3)
			Expect(v.Node).To(Equal(dual.NoNode))
			Expect(v.Speed).To(Equal(dual.Stay))
		})

		It("should hand a fully shrunk region back", func() {
			d.Step(0, dual.AddDefect(0, 0))
			d.Step(0, dual.GrowBy(2))
			Expect(d.Vertex(0, 1).Node).To(Equal(dual.NodeIndex(0)))

			d.Step(0, dual.SetSpeed(0, dual.Shrink))

			// vertex 1 no longer sees a growing peer and clears
			v := d.Vertex(0, 1)
			Expect(v.Node).To(Equal(dual.NoNode))
			Expect(v.Speed).To(Equal(dual.Stay))

			// the boundary shrinks without driving vertex 1 negative
			d.Step(0, dual.GrowBy(1))
			Expect(d.Vertex(0, 0).Grown).To(Equal(1))
			Expect(d.Vertex(0, 1).Grown).To(Equal(0))
		})

		It("should select the propagating peer deterministically", func() {
			// both neighbors of vertex 1 are grown trees; the first
			// incident edge (edge 0, peer 0) must win every time
			d.Step(0, dual.AddDefect(0, 0))
			d.Step(0, dual.AddDefect(2, 1))
			d.Step(0, dual.GrowBy(1))
			d.Step(0, dual.GrowBy(1))

			Expect(d.Vertex(0, 1).Node).To(Equal(dual.NodeIndex(0)))
		})
	})

	Describe("SetBlossom", func() {
		It("should move the node's vertices into the blossom", func() {
			d.Step(0, dual.AddDefect(0, 0))
			d.Step(0, dual.GrowBy(2))

			d.Step(0, dual.SetBlossom(0, 4))

			Expect(d.Vertex(0, 0).Node).To(Equal(dual.NodeIndex(4)))
			Expect(d.Vertex(0, 0).Speed).To(Equal(dual.Grow))
		})
	})

	Describe("convergecast", func() {
		It("should bound growth by the most constrained edge", func() {
			d.Step(0, dual.AddDefect(0, 0))
			d.Step(0, dual.AddDefect(2, 1))
			resp := d.Step(0, dual.FindObstacle())

			Expect(resp.MaxGrowable).To(Equal(2))
			Expect(resp.HasConflict()).To(BeFalse())

			d.Step(0, dual.GrowBy(1))
			resp = d.Step(0, dual.FindObstacle())

			Expect(resp.MaxGrowable).To(Equal(1))
		})

		It("should report a conflict between two growing trees", func() {
			d.Step(0, dual.AddDefect(0, 0))
			d.Step(0, dual.AddDefect(2, 1))
			d.Step(0, dual.GrowBy(1))
			d.Step(0, dual.GrowBy(1))

			resp := d.Step(0, dual.FindObstacle())

			Expect(resp.HasConflict()).To(BeTrue())
			conflict := resp.Conflicts[0]
			Expect(conflict.Node1).To(Equal(dual.NodeIndex(0)))
			Expect(conflict.Node2).To(Equal(dual.NodeIndex(1)))
			Expect(conflict.Touch1).To(Equal(dual.NodeIndex(0)))
			Expect(conflict.Touch2).To(Equal(dual.NodeIndex(1)))
		})

		It("should report a conflict against a virtual vertex", func() {
			d.Step(0, dual.AddDefect(2, 0))
			d.Step(0, dual.GrowBy(2))

			resp := d.Step(0, dual.FindObstacle())

			Expect(resp.HasConflict()).To(BeTrue())
			var virtual *dual.Conflict
			for i := range resp.Conflicts {
				if resp.Conflicts[i].Valid && resp.Conflicts[i].Node2 == dual.NoNode {
					virtual = &resp.Conflicts[i]
				}
			}
			Expect(virtual).NotTo(BeNil())
			Expect(virtual.Node1).To(Equal(dual.NodeIndex(0)))
			Expect(virtual.Vertex2).To(Equal(3))
		})

		It("should fill conflict channels in edge order and drop the rest", func() {
			single := dual.New(g, 1, 1)
			single.Step(0, dual.AddDefect(0, 0))
			single.Step(0, dual.AddDefect(2, 1))
			single.Step(0, dual.GrowBy(1))
			single.Step(0, dual.GrowBy(1))

			resp := single.Step(0, dual.FindObstacle())

			// edge 1 (0-grown trees meeting) and edge 2 (virtual) are
			// both tight; only the first fits the single channel
			Expect(resp.Conflicts).To(HaveLen(1))
			Expect(resp.Conflicts[0].Valid).To(BeTrue())
			Expect(resp.Conflicts[0].Vertex1).To(Equal(1))
		})

		It("should report no constraint once regions stop growing", func() {
			d.Step(0, dual.AddDefect(0, 0))
			d.Step(0, dual.SetSpeed(0, dual.Stay))

			resp := d.Step(0, dual.FindObstacle())

			Expect(resp.MaxGrowable).To(Equal(dual.Unconstrained))
		})

		It("should respond none to every non-probe instruction", func() {
			Expect(d.Step(0, dual.AddDefect(0, 0)).Valid).To(BeFalse())
			Expect(d.Step(0, dual.GrowBy(1)).Valid).To(BeFalse())
			Expect(d.Step(0, dual.Reset()).Valid).To(BeFalse())

			Expect(d.Step(0, dual.FindObstacle()).Valid).To(BeTrue())
		})

		It("should not evaluate obstacles in transient states", func() {
			g3, err := graph.New(graph.Config{
				VertexNum: 2,
				WeightedEdges: []graph.WeightedEdge{
					{Left: 0, Right: 1, Weight: 3},
				},
			})
			Expect(err).NotTo(HaveOccurred())
			d3 := dual.New(g3, 1, 1)

			// with both ends growing, the odd slack does not divide by
			// the joint speed; the driver repairs that before probing
			Expect(func() {
				d3.Step(0, dual.AddDefect(0, 0))
				d3.Step(0, dual.AddDefect(1, 1))
				d3.Step(0, dual.SetSpeed(1, dual.Stay))
			}).NotTo(Panic())

			resp := d3.Step(0, dual.FindObstacle())

			Expect(resp.Valid).To(BeTrue())
			Expect(resp.MaxGrowable).To(Equal(3))
		})
	})

	Describe("Reset", func() {
		It("should restore the zero state regardless of history", func() {
			d.Step(0, dual.AddDefect(0, 0))
			d.Step(0, dual.GrowBy(2))

			d.Step(0, dual.Reset())

			for v := 0; v < g.VertexNum; v++ {
				state := d.Vertex(0, v)
				Expect(state.Speed).To(Equal(dual.Stay))
				Expect(state.Grown).To(Equal(0))
				Expect(state.IsDefect).To(BeFalse())
				Expect(state.Node).To(Equal(dual.NoNode))
				Expect(state.Root).To(Equal(dual.NoNode))
			}
			Expect(d.Vertex(0, 3).IsVirtual).To(BeTrue())
		})

		It("should be idempotent", func() {
			d.Step(0, dual.Reset())
			before := d.Vertex(0, 1)

			d.Step(0, dual.Reset())

			Expect(d.Vertex(0, 1)).To(Equal(before))
		})
	})

	Describe("context multiplexing", func() {
		It("should keep context states independent", func() {
			d.Step(0, dual.AddDefect(0, 0))
			d.Step(1, dual.AddDefect(2, 0))
			d.Step(0, dual.GrowBy(2))

			Expect(d.Vertex(0, 0).Grown).To(Equal(2))
			Expect(d.Vertex(1, 0).IsDefect).To(BeFalse())
			Expect(d.Vertex(1, 2).Grown).To(Equal(0))
		})
	})

	Describe("tightness", func() {
		It("should agree with the endpoint growth sum", func() {
			d.Step(0, dual.AddDefect(0, 0))
			Expect(d.IsTight(0, 0)).To(BeFalse())

			d.Step(0, dual.GrowBy(1))
			Expect(d.IsTight(0, 0)).To(BeFalse())

			d.Step(0, dual.GrowBy(1))
			Expect(d.IsTight(0, 0)).To(BeTrue())
		})
	})
})

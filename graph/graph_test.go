package graph_test

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/microblossom/graph"
)

func TestGraph(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Graph Suite")
}

// pathConfig builds a path graph 0-1-...-n with uniform weights.
func pathConfig(vertexNum, weight int) graph.Config {
	config := graph.Config{VertexNum: vertexNum}
	for i := 0; i < vertexNum-1; i++ {
		config.WeightedEdges = append(config.WeightedEdges,
			graph.WeightedEdge{Left: i, Right: i + 1, Weight: weight})
	}
	return config
}

var _ = Describe("Graph", func() {
	Describe("New", func() {
		It("should derive incident edge lists in insertion order", func() {
			g, err := graph.New(pathConfig(3, 2))

			Expect(err).NotTo(HaveOccurred())
			Expect(g.Incident[0]).To(Equal([]int{0}))
			Expect(g.Incident[1]).To(Equal([]int{0, 1}))
			Expect(g.Incident[2]).To(Equal([]int{1}))
		})

		It("should derive field widths covering the extended id space", func() {
			g, err := graph.New(pathConfig(3, 2))

			Expect(err).NotTo(HaveOccurred())
			// node ids extend to 2*vertexNum
			Expect(g.VertexBits).To(Equal(3))
			Expect(g.WeightBits).To(Equal(2))
			Expect(g.MaxWeight).To(Equal(3))
		})

		It("should reject an empty graph", func() {
			_, err := graph.New(graph.Config{VertexNum: 0})
			Expect(err).To(HaveOccurred())
		})

		It("should reject out-of-range edge endpoints", func() {
			config := pathConfig(3, 2)
			config.WeightedEdges[0].Right = 7

			_, err := graph.New(config)

			Expect(err).To(MatchError(ContainSubstring("out of range")))
		})

		It("should reject self loops", func() {
			config := pathConfig(3, 2)
			config.WeightedEdges[1].Right = 1

			_, err := graph.New(config)

			Expect(err).To(MatchError(ContainSubstring("self loop")))
		})

		It("should reject non-positive weights", func() {
			config := pathConfig(3, 2)
			config.WeightedEdges[0].Weight = 0

			_, err := graph.New(config)

			Expect(err).To(MatchError(ContainSubstring("weight")))
		})

		It("should reject isolated vertices", func() {
			config := pathConfig(3, 2)
			config.VertexNum = 4

			_, err := graph.New(config)

			Expect(err).To(MatchError(ContainSubstring("no incident edge")))
		})

		It("should reject duplicate virtual vertices", func() {
			config := pathConfig(3, 2)
			config.VirtualVertices = []int{2, 2}

			_, err := graph.New(config)

			Expect(err).To(MatchError(ContainSubstring("listed twice")))
		})

		It("should mark virtual vertices", func() {
			config := pathConfig(3, 2)
			config.VirtualVertices = []int{2}

			g, err := graph.New(config)

			Expect(err).NotTo(HaveOccurred())
			Expect(g.IsVirtual(2)).To(BeTrue())
			Expect(g.IsVirtual(0)).To(BeFalse())
		})
	})

	Describe("Load", func() {
		It("should load a JSON graph description", func() {
			path := filepath.Join(GinkgoT().TempDir(), "graph.json")
			data := `{
				"vertex_num": 3,
				"weighted_edges": [
					{"left": 0, "right": 1, "weight": 2},
					{"left": 1, "right": 2, "weight": 2}
				],
				"virtual_vertices": [2]
			}`
			Expect(os.WriteFile(path, []byte(data), 0644)).To(Succeed())

			g, err := graph.Load(path)

			Expect(err).NotTo(HaveOccurred())
			Expect(g.VertexNum).To(Equal(3))
			Expect(g.EdgeNum()).To(Equal(2))
			Expect(g.IsVirtual(2)).To(BeTrue())
		})

		It("should wrap missing-file errors", func() {
			_, err := graph.Load("does-not-exist.json")
			Expect(err).To(MatchError(ContainSubstring("failed to read")))
		})
	})
})

var _ = Describe("HardwareConfig", func() {
	It("should validate the default configuration", func() {
		Expect(graph.DefaultHardwareConfig().Validate()).To(Succeed())
	})

	It("should reject a zero context depth", func() {
		config := graph.DefaultHardwareConfig()
		config.ContextDepth = 0

		Expect(config.Validate()).NotTo(Succeed())
	})

	It("should reject a zero sampling interval", func() {
		config := graph.DefaultHardwareConfig()
		config.ClockDivideBy = 0

		Expect(config.Validate()).NotTo(Succeed())
	})

	It("should derive read latency from the delays", func() {
		config := graph.DefaultHardwareConfig()
		config.BroadcastDelay = 2
		config.ConvergecastDelay = 3

		Expect(config.ExecuteLatency()).To(Equal(5))
		Expect(config.ReadLatency()).To(Equal(8))
	})
})

package benchmarks

import "github.com/sarchlab/microblossom/graph"

// GetScenarios returns the standard set of decoding scenarios. Each
// scenario targets a specific behavior of the accelerator: boundary
// growth, tree collisions, propagation distance, and multi-round reuse.
func GetScenarios() []Scenario {
	return []Scenario{
		singleDefect(),
		adjacentPair(),
		separatedPair(),
		boundaryDefect(),
		sparseChain(),
		repeatedRounds(),
	}
}

// GetCoreScenarios returns a minimal set for quick validation: one
// boundary match, one tree collision, one multi-round run.
func GetCoreScenarios() []Scenario {
	return []Scenario{
		singleDefect(),
		adjacentPair(),
		repeatedRounds(),
	}
}

// chainGraph builds a repetition-code decoding graph: a chain of
// distance+1 vertices with uniform weight-2 edges and virtual vertices
// at both ends.
func chainGraph(distance int) func() (*graph.Graph, error) {
	return func() (*graph.Graph, error) {
		config := graph.Config{
			VertexNum:       distance + 1,
			VirtualVertices: []int{0, distance},
		}
		for i := 0; i < distance; i++ {
			config.WeightedEdges = append(config.WeightedEdges,
				graph.WeightedEdge{Left: i, Right: i + 1, Weight: 2})
		}
		return graph.New(config)
	}
}

// 1. Single defect - grows until the nearest boundary edge is tight
func singleDefect() Scenario {
	return Scenario{
		Name:        "single_defect",
		Description: "One defect at the chain center growing to a boundary obstacle",
		Graph:       chainGraph(6),
		Rounds:      [][]int{{3}},
	}
}

// 2. Adjacent pair - two trees colliding after minimal growth
func adjacentPair() Scenario {
	return Scenario{
		Name:        "adjacent_pair",
		Description: "Two adjacent defects colliding on their shared edge",
		Graph:       chainGraph(12),
		Rounds:      [][]int{{5, 6}},
	}
}

// 3. Separated pair - growth and flood-fill before the trees meet
func separatedPair() Scenario {
	return Scenario{
		Name:        "separated_pair",
		Description: "Two distant defects whose trees propagate before colliding",
		Graph:       chainGraph(12),
		Rounds:      [][]int{{3, 9}},
	}
}

// 4. Boundary defect - immediate virtual obstacle, minimal latency
func boundaryDefect() Scenario {
	return Scenario{
		Name:        "boundary_defect",
		Description: "A defect adjacent to a virtual vertex, the shortest round",
		Graph:       chainGraph(12),
		Rounds:      [][]int{{1}},
	}
}

// 5. Sparse chain - several defects on a long chain in one round
func sparseChain() Scenario {
	return Scenario{
		Name:        "sparse_chain",
		Description: "Four defects spread over a distance-24 chain",
		Graph:       chainGraph(24),
		Rounds:      [][]int{{3, 9, 15, 21}},
	}
}

// 6. Repeated rounds - reset and reload the same instance
func repeatedRounds() Scenario {
	return Scenario{
		Name:        "repeated_rounds",
		Description: "Eight decoding rounds on one instance, measuring reset cost",
		Graph:       chainGraph(12),
		Rounds: [][]int{
			{5, 6}, {3}, {1, 10}, {4, 7},
			{2, 3}, {9}, {5, 8}, {6},
		},
	}
}

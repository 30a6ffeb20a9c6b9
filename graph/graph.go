// Package graph describes the decoding graph that a Micro Blossom
// accelerator instance is generated for.
//
// The graph is fixed at generation time: vertices, weighted edges, and
// virtual (boundary) vertices are loaded once from a JSON description and
// never change at runtime. The package also derives the values the
// hardware bakes into its datapath: per-vertex incident edge lists and
// the bit widths of vertex ids and edge weights.
package graph

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// WeightedEdge is one undirected edge of the decoding graph.
type WeightedEdge struct {
	// Left is the index of one endpoint vertex.
	Left int `json:"left"`
	// Right is the index of the other endpoint vertex.
	Right int `json:"right"`
	// Weight is the fixed edge weight, hard-coded into the edge unit.
	Weight int `json:"weight"`
}

// Config is the external graph description consumed at generation time.
type Config struct {
	// VertexNum is the number of vertices in the decoding graph.
	VertexNum int `json:"vertex_num"`
	// WeightedEdges lists all edges with their weights.
	WeightedEdges []WeightedEdge `json:"weighted_edges"`
	// VirtualVertices lists boundary vertices that never carry defects.
	VirtualVertices []int `json:"virtual_vertices"`
}

// Graph is a validated graph description plus the derived topology data
// used to instantiate vertex and edge units.
type Graph struct {
	Config

	// Incident holds, per vertex, the incident edge indices in edge
	// insertion order. The order is load-bearing: the propagating-peer
	// selection keeps the first valid incident edge.
	Incident [][]int

	// VertexBits is the width of a vertex or node id field.
	VertexBits int
	// WeightBits is the width of a weight or growth field.
	WeightBits int
	// MaxWeight is the largest representable weight, used for
	// saturation of growth lengths.
	MaxWeight int
}

// Load reads a graph description from a JSON file and validates it.
func Load(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read graph description")
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, errors.Wrap(err, "failed to parse graph description")
	}

	return New(config)
}

// New validates a graph description and derives the topology data.
func New(config Config) (*Graph, error) {
	if config.VertexNum <= 0 {
		return nil, errors.Errorf("vertex_num must be > 0, got %d",
			config.VertexNum)
	}
	if len(config.WeightedEdges) == 0 {
		return nil, errors.New("graph must have at least one edge")
	}

	g := &Graph{
		Config:   config,
		Incident: make([][]int, config.VertexNum),
	}

	maxWeight := 0
	for i, e := range config.WeightedEdges {
		if e.Left < 0 || e.Left >= config.VertexNum ||
			e.Right < 0 || e.Right >= config.VertexNum {
			return nil, errors.Errorf(
				"edge %d endpoints (%d, %d) out of range [0, %d)",
				i, e.Left, e.Right, config.VertexNum)
		}
		if e.Left == e.Right {
			return nil, errors.Errorf("edge %d is a self loop on vertex %d",
				i, e.Left)
		}
		if e.Weight <= 0 {
			return nil, errors.Errorf("edge %d has non-positive weight %d",
				i, e.Weight)
		}
		g.Incident[e.Left] = append(g.Incident[e.Left], i)
		g.Incident[e.Right] = append(g.Incident[e.Right], i)
		if e.Weight > maxWeight {
			maxWeight = e.Weight
		}
	}

	// Every vertex must touch at least one edge, otherwise its unit
	// could never propagate or report anything.
	for v, edges := range g.Incident {
		if len(edges) == 0 {
			return nil, errors.Errorf("vertex %d has no incident edge", v)
		}
	}

	seenVirtual := make(map[int]bool)
	for _, v := range config.VirtualVertices {
		if v < 0 || v >= config.VertexNum {
			return nil, errors.Errorf("virtual vertex %d out of range [0, %d)",
				v, config.VertexNum)
		}
		if seenVirtual[v] {
			return nil, errors.Errorf("virtual vertex %d listed twice", v)
		}
		seenVirtual[v] = true
	}

	// Node ids share the vertex id space, extended by one slot per
	// defect, so the field must hold vertexNum plus the none sentinel.
	g.VertexBits = bitsFor(2 * config.VertexNum)
	g.WeightBits = bitsFor(maxWeight)
	g.MaxWeight = (1 << g.WeightBits) - 1

	return g, nil
}

// IsVirtual reports whether vertex v is a boundary vertex.
func (g *Graph) IsVirtual(v int) bool {
	for _, u := range g.VirtualVertices {
		if u == v {
			return true
		}
	}
	return false
}

// EdgeNum returns the number of edges.
func (g *Graph) EdgeNum() int {
	return len(g.WeightedEdges)
}

// bitsFor returns the number of bits needed to represent values 0..n.
func bitsFor(n int) int {
	bits := 1
	for (1 << bits) <= n {
		bits++
	}
	return bits
}

package dual

import (
	"fmt"

	"github.com/sarchlab/microblossom/graph"
)

// Dual is the full network of vertex and edge units wired to the
// decoding graph, multiplexed over a number of logical contexts. Each
// context owns an independent copy of every vertex's persistent state;
// the edge units are stateless and shared.
//
// One call to Step corresponds to one broadcast/convergecast round of
// the hardware. Pipeline latency is modeled by the caller (the control
// plane delays readout results); the state transition itself is atomic
// per step, which preserves the architectural state exactly because the
// hardware permits at most one in-flight instruction per context.
type Dual struct {
	graph    *graph.Graph
	edges    []Edge
	contexts [][]Vertex
	scratch  []Vertex
	channels int
}

// New builds the network for a validated graph description.
func New(g *graph.Graph, contextDepth, conflictChannels int) *Dual {
	d := &Dual{
		graph:    g,
		edges:    make([]Edge, g.EdgeNum()),
		contexts: make([][]Vertex, contextDepth),
		scratch:  make([]Vertex, g.VertexNum),
		channels: conflictChannels,
	}

	for i, e := range g.WeightedEdges {
		d.edges[i] = Edge{Index: i, Left: e.Left, Right: e.Right, Weight: e.Weight}
	}

	for ctx := range d.contexts {
		d.contexts[ctx] = make([]Vertex, g.VertexNum)
		d.resetContext(ctx)
	}

	return d
}

func (d *Dual) resetContext(ctx int) {
	vertices := d.contexts[ctx]
	for i := range vertices {
		vertices[i] = Vertex{
			Index:     i,
			IsVirtual: d.graph.IsVirtual(i),
			Speed:     Stay,
			Node:      NoNode,
			Root:      NoNode,
		}
	}
}

// ContextDepth returns the number of logical contexts.
func (d *Dual) ContextDepth() int {
	return len(d.contexts)
}

// Vertex returns a snapshot of one vertex's persistent state.
func (d *Dual) Vertex(ctx, v int) Vertex {
	return d.contexts[ctx][v]
}

// Edge returns one edge unit.
func (d *Dual) Edge(i int) Edge {
	return d.edges[i]
}

// IsTight reports whether edge i is tight in context ctx.
func (d *Dual) IsTight(ctx, i int) bool {
	return d.edges[i].IsTight(d.contexts[ctx])
}

// Step broadcasts one instruction to every unit of a context and
// advances all of them in lockstep through the execute, update, and
// write stages. The returned response is valid only for FindObstacle;
// all other instructions convergecast none.
func (d *Dual) Step(ctx int, inst Instruction) Response {
	if ctx < 0 || ctx >= len(d.contexts) {
		panic(fmt.Sprintf("context %d out of range [0, %d)",
			ctx, len(d.contexts)))
	}
	vertices := d.contexts[ctx]

	if inst.Op == OpReset {
		d.resetContext(ctx)
		return Response{}
	}

	// execute stage: each vertex applies the instruction to its own
	// state, no cross-unit reads
	for i := range vertices {
		vertices[i].execute(inst)
	}

	// update stage: every vertex reads its peers' post-execute signals,
	// so the new values land in a scratch copy first
	copy(d.scratch, vertices)
	for i := range d.scratch {
		d.scratch[i].update(vertices, d.edges, d.graph.Incident[i])
	}

	// write stage
	copy(vertices, d.scratch)

	// the obstacle logic only runs for FindObstacle; every other
	// instruction responds none, so transient states that a later
	// instruction will repair are never evaluated
	if inst.Op != OpFindObstacle {
		return Response{}
	}
	return d.convergecast(ctx)
}

// convergecast reduces all edge units' obstacle signals into a single
// per-step result: a global minimum over growth bounds and a first-valid
// selection of conflicts across the reporting channels.
func (d *Dual) convergecast(ctx int) Response {
	vertices := d.contexts[ctx]
	resp := Response{
		Valid:       true,
		MaxGrowable: Unconstrained,
		Conflicts:   make([]Conflict, d.channels),
	}
	for i := range d.edges {
		resp.reduce(d.edges[i].Respond(vertices))
	}
	return resp
}

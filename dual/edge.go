package dual

import "fmt"

// Edge is one edge unit. The weight is hard-coded at generation time;
// tightness and remaining slack are derived from the endpoint vertices
// every cycle, so the unit carries no per-context persistent state.
type Edge struct {
	// Index is the fixed edge id.
	Index int
	// Left and Right are the endpoint vertex ids.
	Left  int
	Right int
	// Weight is the fixed edge weight.
	Weight int
}

// Peer returns the endpoint opposite to vertex v.
func (e *Edge) Peer(v int) int {
	switch v {
	case e.Left:
		return e.Right
	case e.Right:
		return e.Left
	default:
		panic(fmt.Sprintf("vertex %d is not incident to edge %d", v, e.Index))
	}
}

// IsTight reports whether the endpoint growths cover the weight. Under
// the growth discipline the sum never exceeds the weight, so this equals
// the tightness equality test.
func (e *Edge) IsTight(vertices []Vertex) bool {
	return vertices[e.Left].Grown+vertices[e.Right].Grown >= e.Weight
}

// Remaining returns the slack left before the edge becomes tight.
func (e *Edge) Remaining(vertices []Vertex) int {
	return e.Weight - vertices[e.Left].Grown - vertices[e.Right].Grown
}

// Respond computes this edge's convergecast contribution from the
// post-update vertex states.
func (e *Edge) Respond(vertices []Vertex) Obstacle {
	left := &vertices[e.Left]
	right := &vertices[e.Right]

	// an edge inside a single node never constrains growth
	if left.Node == right.Node {
		return unconstrained()
	}

	jointSpeed := left.Speed.Value() + right.Speed.Value()
	if jointSpeed <= 0 {
		return unconstrained()
	}

	remaining := e.Remaining(vertices)
	if remaining == 0 {
		return Obstacle{
			MaxGrowable: 0,
			Conflict: Conflict{
				Valid:   true,
				Node1:   left.Node,
				Node2:   right.Node,
				Touch1:  left.Root,
				Touch2:  right.Root,
				Vertex1: e.Left,
				Vertex2: e.Right,
			},
		}
	}
	if remaining%jointSpeed != 0 {
		panic(fmt.Sprintf(
			"edge %d: remaining %d not divisible by joint speed %d, maxGrowable would round down",
			e.Index, remaining, jointSpeed))
	}
	return Obstacle{MaxGrowable: remaining / jointSpeed}
}

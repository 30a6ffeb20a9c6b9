package dual

import "math"

// Unconstrained is the MaxGrowable value of an edge that places no bound
// on growth. The control plane saturates it to the weight width before
// exposing it to software.
const Unconstrained = math.MaxInt

// Conflict is one reported obstacle: two distinct growing nodes meeting
// across a tight edge. When one side is a virtual boundary vertex its
// node and touch are NoNode.
type Conflict struct {
	Valid  bool
	Node1  NodeIndex
	Node2  NodeIndex
	Touch1 NodeIndex
	Touch2 NodeIndex
	// Vertex1 and Vertex2 are the endpoint vertices of the tight edge.
	Vertex1 int
	Vertex2 int
}

// Obstacle is a single edge's convergecast contribution.
type Obstacle struct {
	// MaxGrowable is the largest growth this edge permits.
	MaxGrowable int
	// Conflict is valid when the edge is tight between two distinct
	// growing nodes.
	Conflict Conflict
}

func unconstrained() Obstacle {
	return Obstacle{MaxGrowable: Unconstrained}
}

// Response is the reduced convergecast result of one decoding step.
// Only FindObstacle produces a valid response; every other instruction
// reports none, and the edge units' obstacle logic never runs for it.
type Response struct {
	// Valid is set when the step carried a FindObstacle request.
	Valid bool
	// MaxGrowable is the minimum over all edges' contributions: growth
	// anywhere is bounded by the single most constrained edge.
	MaxGrowable int
	// Conflicts holds up to the configured number of conflict channels,
	// filled in edge-index order (first valid wins).
	Conflicts []Conflict
}

// HasConflict reports whether any channel carries a valid conflict.
func (r *Response) HasConflict() bool {
	for _, c := range r.Conflicts {
		if c.Valid {
			return true
		}
	}
	return false
}

// reduce folds an edge contribution into the response. The reduction is
// associative and channel filling is deterministic in scan order,
// mirroring the balanced-tree selection of the hardware.
func (r *Response) reduce(o Obstacle) {
	if o.MaxGrowable < r.MaxGrowable {
		r.MaxGrowable = o.MaxGrowable
	}
	if !o.Conflict.Valid {
		return
	}
	for i := range r.Conflicts {
		if !r.Conflicts[i].Valid {
			r.Conflicts[i] = o.Conflict
			return
		}
	}
	// all channels occupied: the conflict is dropped and will be
	// reported on a later FindObstacle
}

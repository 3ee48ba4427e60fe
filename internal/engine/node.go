package engine

import (
	"fmt"
	"math"
)

// goalBonus is subtracted from the depth when scoring a goal state, so
// earlier line clears always outrank any static evaluation.
const goalBonus = 1000

// maxBranch bounds the successor index at one ply; the trace stores each
// chosen index in a single byte.
const maxBranch = math.MaxUint8

// Node is a search node: a state plus its score, penalty, and the traceback
// of successor indexes that produced it. Lower scores are better; drivers
// typically order the frontier by Score+Penalty.
type Node struct {
	state   *State
	score   int64
	penalty int64
	trace   []uint8
}

// NewNode wraps a root state. The score is left at a +infinity sentinel:
// a root is only used to derive successors, which overwrite it.
func NewNode(state *State) *Node {
	return &Node{
		state: state,
		score: math.MaxInt64,
		trace: make([]uint8, 0, 8),
	}
}

// State returns the node's simulated board state.
func (n *Node) State() *State {
	return n.state
}

// Score returns the node's evaluation; lower is better.
func (n *Node) Score() int64 {
	return n.score
}

// Penalty returns the depth-dependent regularizer applied by the evaluator.
func (n *Node) Penalty() int64 {
	return n.penalty
}

// Rating is the frontier ordering key: score plus penalty.
func (n *Node) Rating() int64 {
	return n.score + n.penalty
}

// Depth returns the number of placements applied since the root.
func (n *Node) Depth() int {
	return len(n.trace)
}

// Trace returns the successor index chosen at each depth. Together with the
// root snapshot it is sufficient to reconstruct the line by re-running an
// identically primed finder at each step.
func (n *Node) Trace() []int {
	out := make([]int, len(n.trace))
	for i, idx := range n.trace {
		out[i] = int(idx)
	}
	return out
}

// Successor derives a new node from n by applying place, using scoring to
// evaluate the result. idx updates the traceback and must be below
// maxBranch (255); larger indexes panic.
func (n *Node) Successor(scoring *ScoreParams, idx int, place Placement) *Node {
	if idx >= maxBranch {
		panic(fmt.Sprintf("engine: successor index %d does not fit the trace", idx))
	}
	trace := make([]uint8, len(n.trace), len(n.trace)+1)
	copy(trace, n.trace)
	succ := &Node{
		state: n.state.Clone(),
		trace: append(trace, uint8(idx)),
	}
	succ.state.Place(place)
	if succ.state.IsGoal() {
		succ.score = int64(succ.Depth()) - goalBonus
	} else {
		succ.score = Eval(succ.state.Matrix()).Score(scoring)
	}
	succ.penalty = Penalty(scoring, succ.Depth())
	return succ
}

// String summarizes the node for logs and test failures.
func (n *Node) String() string {
	return fmt.Sprintf("depth %d, score %d, trace %v", n.Depth(), n.score, n.trace)
}

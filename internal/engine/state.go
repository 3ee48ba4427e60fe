package engine

import "github.com/hailam/stackplay/internal/board"

// Snapshot is the engine's input: the current cell matrix, the upcoming
// piece queue (front = next to play), and the held piece, if any.
type Snapshot struct {
	Matrix *board.Matrix
	Queue  []board.PieceType
	Hold   board.PieceType // NoPiece when the hold slot is empty
}

// State is the simulated board of a search node: matrix, upcoming pieces,
// and the hold slot, advanced by applying placements.
//
// The queue is stored in reverse order so the next piece is at the end.
// When the snapshot carries a hold piece, that piece is pushed on top of
// the reversed queue, after the previews.
type State struct {
	matrix   *board.Matrix
	queueRev []board.PieceType
	hasHeld  bool
	isGoal   bool
}

// NewState builds a root state from a snapshot. The snapshot matrix is
// copied; the caller keeps ownership of it.
func NewState(ss Snapshot) *State {
	queueRev := make([]board.PieceType, len(ss.Queue), len(ss.Queue)+1)
	for i, c := range ss.Queue {
		queueRev[len(ss.Queue)-1-i] = c
	}
	st := &State{matrix: ss.Matrix.Clone(), queueRev: queueRev}
	if ss.Hold != board.NoPiece {
		st.hasHeld = true
		st.queueRev = append(st.queueRev, ss.Hold)
	}
	return st
}

// Matrix returns the state's matrix. Callers must not mutate it.
func (s *State) Matrix() *board.Matrix {
	return s.matrix
}

// IsGoal reports whether the most recent placement cleared at least one row.
func (s *State) IsGoal() bool {
	return s.isGoal
}

// IsMaxDepth reports whether no pieces remain, so no further placements are
// possible from this state.
func (s *State) IsMaxDepth() bool {
	return len(s.queueRev) == 0
}

// Next returns the next piece to play and the piece obtained by pressing
// hold instead. Either may be NoPiece. The hold alternative is not exactly
// the current hold content: with an empty hold slot, pressing hold swaps in
// the second preview.
func (s *State) Next() (next, hold board.PieceType) {
	fromTop := func(k int) board.PieceType {
		if k > len(s.queueRev) {
			return board.NoPiece
		}
		return s.queueRev[len(s.queueRev)-k]
	}
	c1, c2 := fromTop(1), fromTop(2)
	if s.hasHeld {
		return c2, c1
	}
	return c1, c2
}

// Place applies a placement: blit the shape, sift full rows (recording
// whether this state became a goal), and consume the placed piece from the
// queue or hold slot.
func (s *State) Place(pl Placement) {
	s.matrix.Blit(pl.Shape, pl.TF)
	s.isGoal = s.matrix.SiftRows()
	s.pop(pl.DidHold)
}

// pop removes the consumed piece from the reversed queue.
//
//	hasHeld | hold  | position from the end
//	--------+-------+----------------------
//	true    | false | 2
//	true    | true  | 1
//	false   | false | 1
//	false   | true  | 2
func (s *State) pop(hold bool) {
	pos := 1
	if s.hasHeld != hold {
		pos = 2
	}
	i := len(s.queueRev) - pos
	s.queueRev = append(s.queueRev[:i], s.queueRev[i+1:]...)
	s.hasHeld = s.hasHeld || hold
}

// Clone returns a deep copy of the state.
func (s *State) Clone() *State {
	q := make([]board.PieceType, len(s.queueRev))
	copy(q, s.queueRev)
	return &State{
		matrix:   s.matrix.Clone(),
		queueRev: q,
		hasHeld:  s.hasHeld,
		isGoal:   s.isGoal,
	}
}

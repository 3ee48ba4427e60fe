package engine

import (
	"testing"

	"github.com/hailam/stackplay/internal/board"
)

func mustShape(t *testing.T, p board.PieceType) *board.Shape {
	t.Helper()
	s, ok := srs.Shape(p)
	if !ok {
		t.Fatalf("No shape for piece %s", p)
	}
	return s
}

func TestStateOperations(t *testing.T) {
	queue := board.ParseQueue("LTJI")

	s := NewState(Snapshot{
		Matrix: board.WithCols(10),
		Queue:  queue,
	})
	if s.IsMaxDepth() {
		t.Fatal("Fresh state should not be at max depth")
	}
	if s.Matrix().Rows() != 0 || s.Matrix().Cols() != 10 {
		t.Fatalf("Unexpected matrix dimensions %dx%d", s.Matrix().Cols(), s.Matrix().Rows())
	}
	if next, hold := s.Next(); next != board.PieceL || hold != board.PieceT {
		t.Fatalf("Next() = (%s,%s), want (L,T)", next, hold)
	}

	// stack the whole queue in flat layers
	for i, color := range queue {
		tf := board.Transform{Row: int16(i*2 - 1), Col: 0, Rot: board.R0}
		s.Place(Placement{Shape: mustShape(t, color), TF: tf})
	}
	if !s.IsMaxDepth() {
		t.Error("Queue should be exhausted")
	}
	if s.Matrix().Rows() != 7 {
		t.Errorf("Expected 7 rows after stacking, got %d", s.Matrix().Rows())
	}
	if next, hold := s.Next(); next != board.NoPiece || hold != board.NoPiece {
		t.Errorf("Next() = (%s,%s), want (-,-)", next, hold)
	}
}

func TestStateUseHold(t *testing.T) {
	// something already in hold
	s := NewState(Snapshot{
		Matrix: board.WithCols(10),
		Queue:  board.ParseQueue("LTJI"),
		Hold:   board.PieceS,
	})
	check := func(wantNext, wantHold board.PieceType) {
		t.Helper()
		if next, hold := s.Next(); next != wantNext || hold != wantHold {
			t.Errorf("Next() = (%s,%s), want (%s,%s)", next, hold, wantNext, wantHold)
		}
	}
	check(board.PieceL, board.PieceS)
	s.pop(true)
	check(board.PieceT, board.PieceL)
	s.pop(false)
	check(board.PieceJ, board.PieceL)

	// nothing previously in hold: holding consumes the next preview
	s = NewState(Snapshot{
		Matrix: board.WithCols(10),
		Queue:  board.ParseQueue("LTJI"),
	})
	check(board.PieceL, board.PieceT)
	s.pop(true)
	check(board.PieceJ, board.PieceL)
}

func TestStateNearlyEmptyQueue(t *testing.T) {
	s := NewState(Snapshot{
		Matrix: board.WithCols(10),
		Queue:  []board.PieceType{board.PieceI},
	})
	if next, hold := s.Next(); next != board.PieceI || hold != board.NoPiece {
		t.Errorf("Next() = (%s,%s), want (I,-)", next, hold)
	}

	s = NewState(Snapshot{
		Matrix: board.WithCols(10),
		Hold:   board.PieceO,
	})
	if next, hold := s.Next(); next != board.NoPiece || hold != board.PieceO {
		t.Errorf("Next() = (%s,%s), want (-,O)", next, hold)
	}
}

func TestStateCloneIsolation(t *testing.T) {
	s := NewState(Snapshot{
		Matrix: board.WithCols(5),
		Queue:  board.ParseQueue("TI"),
	})
	c := s.Clone()
	c.Place(Placement{Shape: mustShape(t, board.PieceT), TF: board.Transform{Row: -1, Col: 0, Rot: board.R0}})

	if s.Matrix().Rows() != 0 {
		t.Error("Placing on a clone must not touch the original matrix")
	}
	if next, _ := s.Next(); next != board.PieceT {
		t.Error("Placing on a clone must not consume from the original queue")
	}
}

func TestNodeSuccessor(t *testing.T) {
	sp := DefaultScoreParams()

	// x . . . .
	// x x . . .
	node := NewNode(NewState(Snapshot{
		Matrix: board.ParseMatrix(
			"x....",
			"xx...",
		),
		Queue: []board.PieceType{board.PieceL, board.PieceO},
	}))
	if node.Depth() != 0 || len(node.Trace()) != 0 {
		t.Fatal("Root node should have empty trace")
	}
	if node.State().IsGoal() {
		t.Fatal("Root node is not a goal")
	}

	// x . . . L
	// x x L L L  ==>  x . . . L
	node = node.Successor(&sp, 3, Placement{
		Shape: mustShape(t, board.PieceL),
		TF:    board.Transform{Row: -1, Col: 2, Rot: board.R0},
	})
	if node.Depth() != 1 {
		t.Errorf("Depth %d, want 1", node.Depth())
	}
	if next, hold := node.State().Next(); next != board.PieceO || hold != board.NoPiece {
		t.Errorf("Next() = (%s,%s), want (O,-)", next, hold)
	}
	if !node.State().Matrix().Equal(board.ParseMatrix("x...x")) {
		t.Errorf("Matrix after clear:\n%s", node.State().Matrix())
	}
	if got := node.Trace(); len(got) != 1 || got[0] != 3 {
		t.Errorf("Trace %v, want [3]", got)
	}
	if !node.State().IsGoal() {
		t.Error("Clearing a row makes the state a goal")
	}
	if node.Score() >= 0 {
		t.Errorf("Goal score %d should be strongly negative", node.Score())
	}

	// O O . . .
	// O O . . .
	// x . . . L
	node = node.Successor(&sp, 4, Placement{
		Shape: mustShape(t, board.PieceO),
		TF:    board.Transform{Row: 0, Col: -1, Rot: board.R0},
	})
	if node.Depth() != 2 {
		t.Errorf("Depth %d, want 2", node.Depth())
	}
	if !node.State().IsMaxDepth() {
		t.Error("Queue should be exhausted")
	}
	if got := node.Trace(); len(got) != 2 || got[0] != 3 || got[1] != 4 {
		t.Errorf("Trace %v, want [3 4]", got)
	}
	if !node.State().Matrix().Equal(board.ParseMatrix(
		"xx...",
		"xx...",
		"x...x",
	)) {
		t.Errorf("Matrix after O placement:\n%s", node.State().Matrix())
	}
	if node.State().IsGoal() {
		t.Error("No row cleared, not a goal")
	}
	if node.Penalty() != Penalty(&sp, 2) {
		t.Errorf("Penalty %d, want %d", node.Penalty(), Penalty(&sp, 2))
	}
}

func TestSuccessorLeavesParentIntact(t *testing.T) {
	sp := DefaultScoreParams()
	parent := NewNode(NewState(Snapshot{
		Matrix: board.WithCols(5),
		Queue:  board.ParseQueue("TO"),
	}))
	_ = parent.Successor(&sp, 0, Placement{
		Shape: mustShape(t, board.PieceT),
		TF:    board.Transform{Row: -1, Col: 0, Rot: board.R0},
	})

	if parent.Depth() != 0 {
		t.Error("Successor must clone, not mutate, the parent")
	}
	if parent.State().Matrix().Rows() != 0 {
		t.Error("Parent matrix was mutated")
	}
}

func TestSuccessorIndexOverflow(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Successor with idx 255 should panic: the trace stores one byte per ply")
		}
	}()
	sp := DefaultScoreParams()
	node := NewNode(NewState(Snapshot{
		Matrix: board.WithCols(5),
		Queue:  board.ParseQueue("T"),
	}))
	node.Successor(&sp, 255, Placement{
		Shape: mustShape(t, board.PieceT),
		TF:    board.Transform{Row: -1, Col: 0, Rot: board.R0},
	})
}

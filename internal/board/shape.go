// Package board provides the playfield primitives of the stacking engine:
// the cell matrix, piece types and orientations, and the shape table with
// its rotation and kick data.
package board

import "sort"

// Shape is the immutable description of one piece: the cells it occupies in
// each orientation plus the kick offsets attempted on rotation. Shapes are
// created once by the shape table and shared by reference; they are safe for
// concurrent readers.
type Shape struct {
	color PieceType
	cells [4][4]Cell
	kicks *kickTable

	// derived per orientation
	minRow [4]int16
	minCol [4]int16
	maxCol [4]int16
}

// kickTable holds the offsets attempted on rotation, per source orientation
// and direction. Offsets are (row, col) deltas applied to the anchor; the
// first non-overlapping one wins.
type kickTable [4][2][]Cell

const (
	kickCW = iota
	kickCCW
)

func newShape(color PieceType, cells [4][4]Cell, kicks *kickTable) *Shape {
	s := &Shape{color: color, cells: cells, kicks: kicks}
	for r := 0; r < 4; r++ {
		s.minRow[r] = cells[r][0].Row
		s.minCol[r] = cells[r][0].Col
		s.maxCol[r] = cells[r][0].Col
		for _, c := range cells[r][1:] {
			if c.Row < s.minRow[r] {
				s.minRow[r] = c.Row
			}
			if c.Col < s.minCol[r] {
				s.minCol[r] = c.Col
			}
			if c.Col > s.maxCol[r] {
				s.maxCol[r] = c.Col
			}
		}
	}
	return s
}

// Color returns the piece type this shape belongs to.
func (s *Shape) Color() PieceType {
	return s.color
}

// Cells returns the cell offsets occupied in orientation r.
func (s *Shape) Cells(r Orientation) [4]Cell {
	return s.cells[r]
}

// ValidCols returns the inclusive range of column offsets at which the
// shape in orientation r lies fully inside a matrix of the given width.
// An empty range is returned as lo > hi.
func (s *Shape) ValidCols(r Orientation, cols int) (lo, hi int16) {
	return -s.minCol[r], int16(cols) - 1 - s.maxCol[r]
}

// Peak returns the resting row offset of the shape dropped from infinity
// into column j in orientation r: it descends from above the stack and
// stops at the first supported row. The caller guarantees j is in
// ValidCols range.
func (s *Shape) Peak(m *Matrix, j int16, r Orientation) int16 {
	start := Transform{Row: int16(m.Rows()) - s.minRow[r], Col: j, Rot: r}
	return s.SonicDrop(m, start).Row
}

// SonicDrop translates tf downward until one more step would overlap, and
// returns the resting transform. tf itself must not overlap.
func (s *Shape) SonicDrop(m *Matrix, tf Transform) Transform {
	for !m.Overlaps(s, tf.Shifted(-1, 0)) {
		tf.Row--
	}
	return tf
}

// TryInput applies one input to tf against the matrix. Translations succeed
// iff the moved transform does not overlap. Rotations attempt the shape's
// kick offsets in order; the first non-overlapping offset wins. The second
// return value is false when the input is blocked.
func (s *Shape) TryInput(m *Matrix, tf Transform, in Input) (Transform, bool) {
	switch in {
	case Left, Right:
		dj := int16(-1)
		if in == Right {
			dj = 1
		}
		moved := tf.Shifted(0, dj)
		if m.Overlaps(s, moved) {
			return tf, false
		}
		return moved, true
	default:
		dir, to := kickCW, tf.Rot.CW()
		if in == RotateCCW {
			dir, to = kickCCW, tf.Rot.CCW()
		}
		for _, k := range s.kicks[tf.Rot][dir] {
			cand := Transform{Row: tf.Row + k.Row, Col: tf.Col + k.Col, Rot: to}
			if !m.Overlaps(s, cand) {
				return cand, true
			}
		}
		return tf, false
	}
}

// NormalizedTransform is a canonical key for a placement: the piece type
// plus the sorted absolute cells it finally occupies. Two placements with
// the same key are the same physical result even if their orientations
// differ (an O piece in R0 and R2, a flat I in R0 and R2, and so on).
type NormalizedTransform struct {
	Color PieceType
	Cells [4]Cell
}

// Normalize returns the canonical key for the shape placed at tf.
func (s *Shape) Normalize(tf Transform) NormalizedTransform {
	n := NormalizedTransform{Color: s.color}
	for k, c := range s.cells[tf.Rot] {
		n.Cells[k] = Cell{Row: tf.Row + c.Row, Col: tf.Col + c.Col}
	}
	sort.Slice(n.Cells[:], func(a, b int) bool {
		if n.Cells[a].Row != n.Cells[b].Row {
			return n.Cells[a].Row < n.Cells[b].Row
		}
		return n.Cells[a].Col < n.Cells[b].Col
	})
	return n
}

// ShapeTable is a read-only mapping from piece type to shape. It outlives
// every placement and finder that borrows from it and is freely shareable
// across goroutines.
type ShapeTable struct {
	shapes map[PieceType]*Shape
}

// Shape looks up the shape for a piece type.
func (t *ShapeTable) Shape(p PieceType) (*Shape, bool) {
	s, ok := t.shapes[p]
	return s, ok
}

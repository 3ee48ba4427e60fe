package engine

import (
	"log"

	"github.com/hailam/stackplay/internal/board"
)

// Placement is one final resting position for a piece: the shape, its final
// transform, whether hold was required to get the piece, and a stable index.
//
// Idx equals the number of placements yielded before this one in the current
// finder run. Re-running an identically primed finder yields the same
// indexes, so Idx can be used to identify a placement across runs.
type Placement struct {
	Idx     int
	Shape   *board.Shape
	TF      board.Transform
	DidHold bool
}

// Normal returns the normalized view of this placement, taking only the
// final cells into account, not the exact rotation state.
func (p Placement) Normal() board.NormalizedTransform {
	return p.Shape.Normalize(p.TF)
}

// input simulates one input on this placement and sonic-drops the result to
// its resting position. Returns false if the input is blocked by the matrix.
func (p Placement) input(m *board.Matrix, in board.Input) (Placement, bool) {
	tf, ok := p.Shape.TryInput(m, p.TF, in)
	if !ok {
		return Placement{}, false
	}
	p.TF = p.Shape.SonicDrop(m, tf)
	return p, true
}

type placeKey struct {
	color board.PieceType
	tf    board.Transform
}

// PlaceFinder discovers every reachable final placement on a matrix. It is
// an incremental iterator: Next returns one placement at a time, and the
// internal buffers are reused across runs via ResetMatrix, so a long-lived
// finder does not reallocate on the hot path.
//
// A finder holds mutable state and must not be shared across goroutines;
// run one finder per worker instead. The shape table it borrows is
// read-only and freely shareable.
type PlaceFinder struct {
	table  *board.ShapeTable
	matrix *board.Matrix

	// depth-first search stack of placements still to try
	queue []Placement
	// cycle prevention over raw (color, transform) pairs
	placesSeen map[placeKey]struct{}
	// yield de-duplication over normalized final cells
	normalsSeen map[board.NormalizedTransform]struct{}
}

// NewPlaceFinder returns a finder backed by the given shape table. It
// produces no placements until primed with ResetMatrix and PushShape.
func NewPlaceFinder(table *board.ShapeTable) *PlaceFinder {
	return &PlaceFinder{
		table:       table,
		matrix:      board.WithCols(0),
		queue:       make([]Placement, 0, 64),
		placesSeen:  make(map[placeKey]struct{}, 64),
		normalsSeen: make(map[board.NormalizedTransform]struct{}, 32),
	}
}

// ResetMatrix reconfigures the finder to search for placements on a copy
// of m, clearing all state from the previous run.
func (f *PlaceFinder) ResetMatrix(m *board.Matrix) {
	f.matrix.CopyFrom(m)
	f.queue = f.queue[:0]
	clear(f.placesSeen)
	clear(f.normalsSeen)
}

// Cols returns the width of the matrix the finder is primed with.
func (f *PlaceFinder) Cols() int {
	return f.matrix.Cols()
}

// PushShape seeds the search with every drop-from-infinity placement of the
// piece: one per orientation and valid column. Placements for this piece
// will carry didHold. A piece with no shape is logged and ignored.
func (f *PlaceFinder) PushShape(color board.PieceType, didHold bool) {
	shape, ok := f.table.Shape(color)
	if !ok {
		log.Printf("[Finder] piece %s has no shape", color)
		return
	}
	for r := board.R0; r <= board.R3; r++ {
		lo, hi := shape.ValidCols(r, f.matrix.Cols())
		for j := lo; j <= hi; j++ {
			i := shape.Peak(f.matrix, j, r)
			f.queue = append(f.queue, Placement{
				Shape:   shape,
				TF:      board.Transform{Row: i, Col: j, Rot: r},
				DidHold: didHold,
			})
		}
	}
}

// expand pushes every placement reachable from pl by one input (followed by
// a sonic drop) onto the search stack. Dropping after every input is what
// models tucks and spin-slides.
func (f *PlaceFinder) expand(pl Placement) {
	for _, in := range board.AllInputs {
		if next, ok := pl.input(f.matrix, in); ok {
			f.queue = append(f.queue, next)
		}
	}
}

// Next returns the next distinct placement, or false when the search is
// exhausted. Yield order is an implementation detail; only the stability of
// Idx across identical primings is part of the contract.
func (f *PlaceFinder) Next() (Placement, bool) {
	for len(f.queue) > 0 {
		pl := f.queue[len(f.queue)-1]
		f.queue = f.queue[:len(f.queue)-1]
		// number of normals seen == number of placements yielded so far
		// == index of the next yielded placement
		pl.Idx = len(f.normalsSeen)

		key := placeKey{color: pl.Shape.Color(), tf: pl.TF}
		if _, cycle := f.placesSeen[key]; cycle {
			continue
		}
		f.placesSeen[key] = struct{}{}
		f.expand(pl)

		n := pl.Normal()
		if _, repeat := f.normalsSeen[n]; repeat {
			continue
		}
		f.normalsSeen[n] = struct{}{}
		return pl, true
	}
	return Placement{}, false
}

// Package engine implements the placement search core of the stacking
// analyzer: placement enumeration, search state and nodes, the static
// evaluator, and the parallel analysis driver.
package engine

import "github.com/hailam/stackplay/internal/board"

// Default evaluation weights. Hand-tuned: holes dominate because a buried
// cell costs at least one extra piece to expose, wells and transitions
// capture surface quality, height keeps the stack survivable.
const (
	defaultMaxHeightWeight  = 5
	defaultHoleWeight       = 40
	defaultWellWeight       = 12
	defaultTransitionWeight = 3
	defaultDepthPenalty     = 10
)

// ScoreParams are the weights of the linear evaluation plus the per-depth
// penalty coefficient. Callers treat the set as opaque configuration;
// presets can be persisted by name.
type ScoreParams struct {
	MaxHeightWeight  int64 `json:"max_height_weight"`
	HoleWeight       int64 `json:"hole_weight"`
	WellWeight       int64 `json:"well_weight"`
	TransitionWeight int64 `json:"transition_weight"`
	DepthPenalty     int64 `json:"depth_penalty"`
}

// DefaultScoreParams returns the hand-tuned default weights.
func DefaultScoreParams() ScoreParams {
	return ScoreParams{
		MaxHeightWeight:  defaultMaxHeightWeight,
		HoleWeight:       defaultHoleWeight,
		WellWeight:       defaultWellWeight,
		TransitionWeight: defaultTransitionWeight,
		DepthPenalty:     defaultDepthPenalty,
	}
}

// Features is the board-quality feature vector extracted from a matrix.
type Features struct {
	// MaxHeight is the height of the tallest column.
	MaxHeight int
	// Holes counts empty cells with at least one occupied cell above them
	// in the same column.
	Holes int
	// RowTransitions counts occupied/empty flips scanning each stored row,
	// with the side walls counted as occupied.
	RowTransitions int
	// WellDepth sums, per column, how far the column sits below both of
	// its neighbors (walls count as infinitely tall).
	WellDepth int
}

// Eval extracts the feature vector from a matrix. It is a pure function of
// the matrix contents.
func Eval(m *board.Matrix) Features {
	var f Features
	cols := m.Cols()
	if cols == 0 {
		return f
	}

	heights := make([]int, cols)
	for j := 0; j < cols; j++ {
		h := m.ColumnHeight(j)
		heights[j] = h
		if h > f.MaxHeight {
			f.MaxHeight = h
		}
		for i := 0; i < h; i++ {
			if !m.Get(i, j) {
				f.Holes++
			}
		}
	}

	for i := 0; i < m.Rows(); i++ {
		prev := true // left wall
		for j := 0; j < cols; j++ {
			cur := m.Get(i, j)
			if cur != prev {
				f.RowTransitions++
			}
			prev = cur
		}
		if !prev { // right wall
			f.RowTransitions++
		}
	}

	if cols < 2 {
		return f
	}
	for j := 0; j < cols; j++ {
		depth := 0
		switch j {
		case 0:
			depth = heights[1] - heights[0]
		case cols - 1:
			depth = heights[cols-2] - heights[cols-1]
		default:
			depth = min(heights[j-1], heights[j+1]) - heights[j]
		}
		if depth > 0 {
			f.WellDepth += depth
		}
	}
	return f
}

// Score folds the features into a scalar under the given weights. Lower is
// better.
func (f Features) Score(p *ScoreParams) int64 {
	return p.MaxHeightWeight*int64(f.MaxHeight) +
		p.HoleWeight*int64(f.Holes) +
		p.WellWeight*int64(f.WellDepth) +
		p.TransitionWeight*int64(f.RowTransitions)
}

// Penalty returns the depth regularizer: monotone nondecreasing in depth,
// so shorter plans win among equal-quality lines.
func Penalty(p *ScoreParams, depth int) int64 {
	return p.DepthPenalty * int64(depth)
}

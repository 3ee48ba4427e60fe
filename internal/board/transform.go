package board

import "fmt"

// Transform locates a shape on a matrix: the row and column of the shape's
// box anchor plus its orientation. Row and Col are signed because the anchor
// may legally sit below row 0 or left of column 0; only the occupied cells
// need to be in bounds.
type Transform struct {
	Row, Col int16
	Rot      Orientation
}

// Shifted returns the transform translated by (di, dj).
func (tf Transform) Shifted(di, dj int16) Transform {
	tf.Row += di
	tf.Col += dj
	return tf
}

// String returns a compact "(i,j,Rn)" form for logs and test failures.
func (tf Transform) String() string {
	return fmt.Sprintf("(%d,%d,%s)", tf.Row, tf.Col, tf.Rot)
}

// Cell is a cell coordinate: row from the bottom, column from the left.
// Inside a Shape it is an offset from the transform anchor.
type Cell struct {
	Row, Col int16
}

package board

import "strings"

// Matrix is a fixed-width, unbounded-height grid of occupied cells.
// Row 0 is the bottom row; rows grow on demand as pieces are blitted in.
type Matrix struct {
	cols  int
	cells []bool // row-major from the bottom
}

// WithCols returns an empty matrix with the given number of columns.
func WithCols(cols int) *Matrix {
	return &Matrix{cols: cols}
}

// ParseMatrix builds a matrix from visual rows, top row first. 'x' marks an
// occupied cell, anything else is empty. All rows must have the same width.
func ParseMatrix(rows ...string) *Matrix {
	if len(rows) == 0 {
		return WithCols(0)
	}
	cols := len(rows[0])
	m := WithCols(cols)
	for k, row := range rows {
		if len(row) != cols {
			panic("board: ragged matrix rows")
		}
		i := len(rows) - 1 - k
		for j := 0; j < cols; j++ {
			if row[j] == 'x' {
				m.Set(i, j)
			}
		}
	}
	return m
}

// Cols returns the fixed width of the matrix.
func (m *Matrix) Cols() int {
	return m.cols
}

// Rows returns the current number of stored rows.
func (m *Matrix) Rows() int {
	if m.cols == 0 {
		return 0
	}
	return len(m.cells) / m.cols
}

// Get reports whether cell (i, j) is occupied. Cells above the stored rows
// are empty; out-of-range coordinates below or beside the grid are not
// valid queries and return false.
func (m *Matrix) Get(i, j int) bool {
	if i < 0 || j < 0 || j >= m.cols || i >= m.Rows() {
		return false
	}
	return m.cells[i*m.cols+j]
}

// Set marks cell (i, j) occupied, growing rows as needed.
func (m *Matrix) Set(i, j int) {
	if i < 0 || j < 0 || j >= m.cols {
		panic("board: set out of range")
	}
	m.grow(i + 1)
	m.cells[i*m.cols+j] = true
}

func (m *Matrix) grow(rows int) {
	for m.Rows() < rows {
		m.cells = append(m.cells, make([]bool, m.cols)...)
	}
}

// Overlaps reports whether the shape at tf is out of bounds horizontally,
// below row 0, or coincides with an occupied cell.
func (m *Matrix) Overlaps(s *Shape, tf Transform) bool {
	for _, c := range s.Cells(tf.Rot) {
		i := int(tf.Row + c.Row)
		j := int(tf.Col + c.Col)
		if j < 0 || j >= m.cols || i < 0 {
			return true
		}
		if m.Get(i, j) {
			return true
		}
	}
	return false
}

// Blit sets every cell of the shape at tf. The caller checks Overlaps first;
// blitting an overlapping transform is a contract violation.
func (m *Matrix) Blit(s *Shape, tf Transform) {
	for _, c := range s.Cells(tf.Rot) {
		m.Set(int(tf.Row+c.Row), int(tf.Col+c.Col))
	}
}

// SiftRows removes every fully-occupied row, compacting the rows above
// downward, and reports whether any row was removed.
func (m *Matrix) SiftRows() bool {
	rows := m.Rows()
	dst := 0
	for src := 0; src < rows; src++ {
		full := true
		for j := 0; j < m.cols; j++ {
			if !m.cells[src*m.cols+j] {
				full = false
				break
			}
		}
		if full {
			continue
		}
		if dst != src {
			copy(m.cells[dst*m.cols:(dst+1)*m.cols], m.cells[src*m.cols:(src+1)*m.cols])
		}
		dst++
	}
	if dst == rows {
		return false
	}
	m.cells = m.cells[:dst*m.cols]
	return true
}

// ColumnHeight returns the height of column j: one past its topmost
// occupied cell, or 0 if the column is empty.
func (m *Matrix) ColumnHeight(j int) int {
	for i := m.Rows() - 1; i >= 0; i-- {
		if m.cells[i*m.cols+j] {
			return i + 1
		}
	}
	return 0
}

// Clone returns a deep copy of the matrix.
func (m *Matrix) Clone() *Matrix {
	c := &Matrix{cols: m.cols, cells: make([]bool, len(m.cells))}
	copy(c.cells, m.cells)
	return c
}

// CopyFrom replaces this matrix's contents with those of o, reusing the
// backing storage where possible.
func (m *Matrix) CopyFrom(o *Matrix) {
	m.cols = o.cols
	m.cells = append(m.cells[:0], o.cells...)
}

// Equal reports whether two matrices have the same width and the same
// occupied cells. Trailing empty rows do not affect equality.
func (m *Matrix) Equal(o *Matrix) bool {
	if m.cols != o.cols {
		return false
	}
	rows := m.Rows()
	if o.Rows() > rows {
		rows = o.Rows()
	}
	for i := 0; i < rows; i++ {
		for j := 0; j < m.cols; j++ {
			if m.Get(i, j) != o.Get(i, j) {
				return false
			}
		}
	}
	return true
}

// String renders the matrix top row first, 'x' for occupied cells.
func (m *Matrix) String() string {
	var b strings.Builder
	for i := m.Rows() - 1; i >= 0; i-- {
		for j := 0; j < m.cols; j++ {
			if m.Get(i, j) {
				b.WriteByte('x')
			} else {
				b.WriteByte('.')
			}
		}
		if i > 0 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

package board

// PieceType identifies a tetromino by its canonical letter. The zero value
// means "no piece" (an empty hold slot or an exhausted queue); Garbage marks
// rows received from an opponent in snapshots.
type PieceType byte

const (
	NoPiece PieceType = 0
	Garbage PieceType = 'G'

	PieceI PieceType = 'I'
	PieceJ PieceType = 'J'
	PieceL PieceType = 'L'
	PieceO PieceType = 'O'
	PieceS PieceType = 'S'
	PieceT PieceType = 'T'
	PieceZ PieceType = 'Z'
)

// AllPieces lists the seven playable piece types.
var AllPieces = [7]PieceType{PieceI, PieceJ, PieceL, PieceO, PieceS, PieceT, PieceZ}

// Playable returns true if p is one of the seven tetrominoes.
func (p PieceType) Playable() bool {
	switch p {
	case PieceI, PieceJ, PieceL, PieceO, PieceS, PieceT, PieceZ:
		return true
	}
	return false
}

// String returns the piece letter, or "-" for no piece.
func (p PieceType) String() string {
	if p == NoPiece {
		return "-"
	}
	return string(rune(p))
}

// ParseQueue converts a string of piece letters ("LTJI") into a queue.
// Callers that care about unknown letters validate with Playable.
func ParseQueue(s string) []PieceType {
	q := make([]PieceType, len(s))
	for i := 0; i < len(s); i++ {
		q[i] = PieceType(s[i])
	}
	return q
}

// Orientation is one of the four rotation states of a piece.
type Orientation uint8

const (
	R0 Orientation = iota
	R1
	R2
	R3
)

// CW returns the orientation after a clockwise rotation.
func (r Orientation) CW() Orientation {
	return (r + 1) & 3
}

// CCW returns the orientation after a counter-clockwise rotation.
func (r Orientation) CCW() Orientation {
	return (r + 3) & 3
}

// String returns the rotation state name.
func (r Orientation) String() string {
	switch r {
	case R0:
		return "R0"
	case R1:
		return "R1"
	case R2:
		return "R2"
	default:
		return "R3"
	}
}

// Input is one of the four piece inputs the placement search simulates.
// Soft drop is not an Input; the search sonic-drops after every input.
type Input uint8

const (
	Left Input = iota
	Right
	RotateCW
	RotateCCW
)

// AllInputs lists the inputs in the order the placement search expands them.
var AllInputs = [4]Input{Left, Right, RotateCW, RotateCCW}

// String returns the input name.
func (in Input) String() string {
	switch in {
	case Left:
		return "Left"
	case Right:
		return "Right"
	case RotateCW:
		return "CW"
	default:
		return "CCW"
	}
}

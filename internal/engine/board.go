package engine

import "fmt"

const Size = 8

type Color uint8

const (
	NoColor Color = iota
	White
	Black
)

func (c Color) Opposite() Color {
	switch c {
	case White:
		return Black
	case Black:
		return White
	default:
		return NoColor
	}
}

func (c Color) String() string {
	switch c {
	case White:
		return "white"
	case Black:
		return "black"
	default:
		return ""
	}
}

func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Color) UnmarshalText(text []byte) error {
	parsed, ok := ParseColor(string(text))
	if !ok {
		return fmt.Errorf("invalid color %q", text)
	}
	*c = parsed
	return nil
}

// ParseColor accepts "white"/"w", "black"/"b" and "" (NoColor).
func ParseColor(s string) (Color, bool) {
	switch s {
	case "white", "w":
		return White, true
	case "black", "b":
		return Black, true
	case "":
		return NoColor, true
	default:
		return NoColor, false
	}
}

type PieceKind uint8

const (
	King PieceKind = iota
	Queen
	Rook
	Bishop
	Knight
	Pawn
)

func (k PieceKind) String() string {
	switch k {
	case King:
		return "king"
	case Queen:
		return "queen"
	case Rook:
		return "rook"
	case Bishop:
		return "bishop"
	case Knight:
		return "knight"
	case Pawn:
		return "pawn"
	default:
		return fmt.Sprintf("piece(%d)", uint8(k))
	}
}

func (k PieceKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *PieceKind) UnmarshalText(text []byte) error {
	for _, kind := range []PieceKind{King, Queen, Rook, Bishop, Knight, Pawn} {
		if kind.String() == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("invalid piece type %q", text)
}

// Piece is a double-sided piece. Color changes when the piece is flipped,
// OriginalColor is fixed when the piece is created.
type Piece struct {
	Kind          PieceKind `json:"type"`
	Color         Color     `json:"color"`
	OriginalColor Color     `json:"originalColor"`
}

func NewPiece(kind PieceKind, color Color) *Piece {
	return &Piece{Kind: kind, Color: color, OriginalColor: color}
}

type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (p Position) Valid() bool {
	return p.Row >= 0 && p.Row < Size && p.Col >= 0 && p.Col < Size
}

func (p Position) add(d direction) Position {
	return Position{Row: p.Row + d.row, Col: p.Col + d.col}
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

type Move struct {
	From Position `json:"from"`
	To   Position `json:"to"`
}

// Board is row-major, row 0 at the top. A nil cell is empty.
type Board [Size][Size]*Piece

var backRank = [Size]PieceKind{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

func NewBoard() *Board {
	board := &Board{}
	for col := 0; col < Size; col++ {
		board[0][col] = NewPiece(backRank[col], Black)
		board[1][col] = NewPiece(Pawn, Black)
		board[6][col] = NewPiece(Pawn, White)
		board[7][col] = NewPiece(backRank[col], White)
	}
	return board
}

// Clone returns a deep copy; pieces are duplicated so flips on the copy
// never reach the original.
func (b *Board) Clone() *Board {
	clone := &Board{}
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			if piece := b[row][col]; piece != nil {
				p := *piece
				clone[row][col] = &p
			}
		}
	}
	return clone
}

func (b *Board) At(pos Position) (*Piece, error) {
	if !pos.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrOutOfRange, pos)
	}
	return b[pos.Row][pos.Col], nil
}

func (b *Board) Set(pos Position, piece *Piece) error {
	if !pos.Valid() {
		return fmt.Errorf("%w: %s", ErrOutOfRange, pos)
	}
	b[pos.Row][pos.Col] = piece
	return nil
}

// at is the unchecked accessor for positions already known to be valid.
func (b *Board) at(pos Position) *Piece {
	return b[pos.Row][pos.Col]
}

// Count returns the number of pieces currently showing color.
func (b *Board) Count(color Color) int {
	count := 0
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			if piece := b[row][col]; piece != nil && piece.Color == color {
				count++
			}
		}
	}
	return count
}

// Pieces lists the positions of color's pieces in row-major order.
func (b *Board) Pieces(color Color) []Position {
	positions := []Position{}
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			if piece := b[row][col]; piece != nil && piece.Color == color {
				positions = append(positions, Position{Row: row, Col: col})
			}
		}
	}
	return positions
}

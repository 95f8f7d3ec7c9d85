package engine

type direction struct {
	row, col int
}

var (
	rookDirs   = []direction{{0, 1}, {0, -1}, {1, 0}, {-1, 0}}
	bishopDirs = []direction{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	queenDirs  = append(append([]direction{}, rookDirs...), bishopDirs...)
	kingDirs   = queenDirs
	knightDirs = []direction{{-2, -1}, {-2, 1}, {-1, -2}, {-1, 2}, {1, -2}, {1, 2}, {2, -1}, {2, 1}}
)

// GenerateMoves returns the destinations available to piece standing at pos.
// A destination holding a piece is always one of the mover's own pieces:
// opponent pieces are never captured, only flipped.
func GenerateMoves(board *Board, pos Position, piece *Piece) []Position {
	switch piece.Kind {
	case Pawn:
		return pawnMoves(board, pos, piece)
	case Knight:
		return stepMoves(board, pos, piece, knightDirs)
	case King:
		return stepMoves(board, pos, piece, kingDirs)
	case Rook:
		return slidingMoves(board, pos, piece, rookDirs)
	case Bishop:
		return slidingMoves(board, pos, piece, bishopDirs)
	case Queen:
		return slidingMoves(board, pos, piece, queenDirs)
	default:
		return []Position{}
	}
}

// pawnMoves orients the pawn by its original color, so a flipped pawn keeps
// walking toward the side it started against.
func pawnMoves(board *Board, pos Position, piece *Piece) []Position {
	moves := []Position{}
	forward, startRow := -1, 6
	if piece.OriginalColor == Black {
		forward, startRow = 1, 1
	}

	one := pos.add(direction{forward, 0})
	if one.Valid() && board.at(one) == nil {
		moves = append(moves, one)
		two := one.add(direction{forward, 0})
		if pos.Row == startRow && two.Valid() && board.at(two) == nil {
			moves = append(moves, two)
		}
	}

	for _, side := range []int{-1, 1} {
		diag := pos.add(direction{forward, side})
		if !diag.Valid() {
			continue
		}
		if target := board.at(diag); target != nil && target.Color == piece.Color {
			moves = append(moves, diag)
		}
	}
	return moves
}

func stepMoves(board *Board, pos Position, piece *Piece, dirs []direction) []Position {
	moves := []Position{}
	for _, dir := range dirs {
		target := pos.add(dir)
		if !target.Valid() {
			continue
		}
		if occupant := board.at(target); occupant == nil || occupant.Color == piece.Color {
			moves = append(moves, target)
		}
	}
	return moves
}

func slidingMoves(board *Board, pos Position, piece *Piece, dirs []direction) []Position {
	moves := []Position{}
	for _, dir := range dirs {
		for target := pos.add(dir); target.Valid(); target = target.add(dir) {
			occupant := board.at(target)
			if occupant == nil {
				moves = append(moves, target)
				continue
			}
			if occupant.Color == piece.Color {
				moves = append(moves, target)
			}
			break
		}
	}
	return moves
}

func containsPosition(positions []Position, pos Position) bool {
	for _, p := range positions {
		if p == pos {
			return true
		}
	}
	return false
}

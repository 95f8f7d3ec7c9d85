package engine

import "fmt"

// GameState is the whole rules-level state of a game. Operations never
// mutate a state in place; they return a new one.
type GameState struct {
	Board    *Board `json:"board"`
	Turn     Color  `json:"turn"`
	GameOver bool   `json:"gameOver"`
	Winner   Color  `json:"winner"`
}

// MoveResult describes what happened when a move was applied.
type MoveResult struct {
	State    GameState
	Captured bool // the destination held one of the mover's own pieces
	Flipped  int
	Winner   Color
}

func InitGame() GameState {
	return GameState{
		Board: NewBoard(),
		Turn:  White,
	}
}

// GetValidMoves returns the destinations of the piece at pos. An empty cell
// yields an empty list.
func GetValidMoves(board *Board, pos Position) ([]Position, error) {
	piece, err := board.At(pos)
	if err != nil {
		return nil, err
	}
	if piece == nil {
		return []Position{}, nil
	}
	return GenerateMoves(board, pos, piece), nil
}

func ApplyMove(state GameState, from, to Position) (MoveResult, error) {
	if !from.Valid() || !to.Valid() {
		return MoveResult{}, fmt.Errorf("%w: %s -> %s", ErrOutOfRange, from, to)
	}
	if state.GameOver {
		return MoveResult{}, ErrGameOver
	}
	piece := state.Board.at(from)
	if piece == nil {
		return MoveResult{}, fmt.Errorf("%w: %s", ErrNoPiece, from)
	}
	if piece.Color != state.Turn {
		return MoveResult{}, fmt.Errorf("%w: %s to move", ErrNotYourTurn, state.Turn)
	}
	if !containsPosition(GenerateMoves(state.Board, from, piece), to) {
		return MoveResult{}, fmt.Errorf("%w: %s %s -> %s", ErrIllegalMove, piece.Kind, from, to)
	}

	board := state.Board.Clone()
	moved := board.at(from)
	captured := board.at(to) != nil
	board[to.Row][to.Col] = moved
	board[from.Row][from.Col] = nil

	flipped := ApplyFlip(board, to, moved.Color)
	winner := EvaluateWin(board)

	next := GameState{
		Board:    board,
		Turn:     state.Turn,
		GameOver: winner != NoColor,
		Winner:   winner,
	}
	if !next.GameOver {
		next.Turn = state.Turn.Opposite()
	}
	return MoveResult{
		State:    next,
		Captured: captured,
		Flipped:  flipped,
		Winner:   winner,
	}, nil
}

// PassTurn hands the move to the other side without touching the board.
func PassTurn(state GameState) (GameState, error) {
	if state.GameOver {
		return state, ErrGameOver
	}
	state.Turn = state.Turn.Opposite()
	return state, nil
}

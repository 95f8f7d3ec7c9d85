package engine

import "errors"

var (
	ErrOutOfRange  = errors.New("position out of range")
	ErrGameOver    = errors.New("game is over")
	ErrNoPiece     = errors.New("no piece at from square")
	ErrNotYourTurn = errors.New("not your turn")
	ErrIllegalMove = errors.New("invalid move, not legal")
)

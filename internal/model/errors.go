package model

import "errors"

var (
	ErrGameFull      = errors.New("game is full")
	ErrNotSeated     = errors.New("player not in game")
	ErrNotAuthorized = errors.New("not authorized to join this game")
	ErrAlreadyQueued = errors.New("player already in queue")
	ErrCPUTurn       = errors.New("cpu is to move")
)

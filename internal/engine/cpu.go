package engine

import (
	"math"
	"math/rand"
)

const (
	selfCapturePenalty = 5
	flipReward         = 10
	winReward          = 1000
	tieBreakRange      = 2
)

// Rand supplies the tie-breaking noise added to every CPU score.
// *rand.Rand from math/rand and math/rand/v2 both satisfy it.
type Rand interface {
	Float64() float64
}

type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }

// Candidates lists every move available to color, scanning the board
// row by row.
func Candidates(board *Board, color Color) []Move {
	moves := []Move{}
	for _, from := range board.Pieces(color) {
		for _, to := range GenerateMoves(board, from, board.at(from)) {
			moves = append(moves, Move{From: from, To: to})
		}
	}
	return moves
}

// HasMoves reports whether color can make any move at all.
func HasMoves(board *Board, color Color) bool {
	for _, from := range board.Pieces(color) {
		if len(GenerateMoves(board, from, board.at(from))) > 0 {
			return true
		}
	}
	return false
}

// SelectCPUMove picks the best one-ply move for cpuColor. The second result
// is false when cpuColor has no move and must pass. A nil rnd falls back to
// the math/rand/v2 global source.
func SelectCPUMove(board *Board, cpuColor Color, rnd Rand) (Move, bool) {
	if rnd == nil {
		rnd = globalRand{}
	}

	var best Move
	bestScore := math.Inf(-1)
	found := false
	for _, move := range Candidates(board, cpuColor) {
		score := scoreMove(board, move, cpuColor) + rnd.Float64()*tieBreakRange
		if score > bestScore {
			best, bestScore, found = move, score, true
		}
	}
	return best, found
}

// scoreMove plays move on a clone of board and rates the result.
func scoreMove(board *Board, move Move, cpuColor Color) float64 {
	sim := board.Clone()
	piece := sim.at(move.From)
	target := sim.at(move.To)
	sim[move.To.Row][move.To.Col] = piece
	sim[move.From.Row][move.From.Col] = nil

	score := 0.0
	if target != nil && target.Color == cpuColor {
		score -= selfCapturePenalty
	}
	score += float64(flipReward * ApplyFlip(sim, move.To, piece.Color))
	if EvaluateWin(sim) == cpuColor {
		score += winReward
	}
	return score
}

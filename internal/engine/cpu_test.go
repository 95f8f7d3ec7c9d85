package engine

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

type zeroRand struct{}

func (zeroRand) Float64() float64 { return 0 }

// sequenceRand replays values, then keeps returning zero.
type sequenceRand struct {
	values []float64
}

func (s *sequenceRand) Float64() float64 {
	if len(s.values) == 0 {
		return 0
	}
	v := s.values[0]
	s.values = s.values[1:]
	return v
}

func TestSelectCPUMoveOpeningIsFirstNonPenalized(t *testing.T) {
	b := NewBoard()
	before := b.Clone()

	move, ok := SelectCPUMove(b, Black, zeroRand{})
	if !ok {
		t.Fatal("SelectCPUMove found no move on the opening board")
	}
	want := Move{From: Position{0, 1}, To: Position{2, 0}}
	if diff := cmp.Diff(want, move); diff != "" {
		t.Errorf("move mismatch (-want +got):\n%s", diff)
	}
	if !boardsEqual(before, b) {
		t.Error("SelectCPUMove mutated the live board")
	}
}

func TestSelectCPUMoveTieBreak(t *testing.T) {
	// Candidates 1-3 are self captures, 4 and 5 are quiet knight moves.
	rnd := &sequenceRand{values: []float64{0, 0, 0, 0, 0.9}}
	move, ok := SelectCPUMove(NewBoard(), Black, rnd)
	if !ok {
		t.Fatal("no move")
	}
	want := Move{From: Position{0, 1}, To: Position{2, 2}}
	if diff := cmp.Diff(want, move); diff != "" {
		t.Errorf("move mismatch (-want +got):\n%s", diff)
	}
}

func TestSelectCPUMovePrefersFlips(t *testing.T) {
	b := emptyBoard()
	place(b, 0, 7, King, Black)
	place(b, 3, 0, Rook, Black)
	place(b, 7, 2, Queen, Black)
	place(b, 3, 1, Knight, White)
	place(b, 6, 0, Pawn, White)
	place(b, 7, 7, King, White)

	move, ok := SelectCPUMove(b, Black, zeroRand{})
	if !ok {
		t.Fatal("no move")
	}
	want := Move{From: Position{7, 2}, To: Position{3, 2}}
	if diff := cmp.Diff(want, move); diff != "" {
		t.Errorf("move mismatch (-want +got):\n%s", diff)
	}
	if got := scoreMove(b, want, Black); got != flipReward {
		t.Errorf("scoreMove = %v; want %v", got, float64(flipReward))
	}
}

func TestSelectCPUMovePrefersWin(t *testing.T) {
	b := emptyBoard()
	place(b, 0, 0, King, Black)
	place(b, 0, 4, Queen, Black)
	place(b, 4, 2, Rook, Black)
	place(b, 4, 3, King, White)
	place(b, 6, 0, Pawn, White)
	place(b, 6, 7, Pawn, White)

	move, ok := SelectCPUMove(b, Black, zeroRand{})
	if !ok {
		t.Fatal("no move")
	}
	want := Move{From: Position{0, 4}, To: Position{4, 4}}
	if diff := cmp.Diff(want, move); diff != "" {
		t.Errorf("move mismatch (-want +got):\n%s", diff)
	}
	if got := scoreMove(b, want, Black); got != flipReward+winReward {
		t.Errorf("scoreMove = %v; want %v", got, float64(flipReward+winReward))
	}
}

func TestScoreMoveSelfCapturePenalty(t *testing.T) {
	b := NewBoard()
	got := scoreMove(b, Move{From: Position{0, 0}, To: Position{0, 1}}, Black)
	if got != -selfCapturePenalty {
		t.Errorf("scoreMove = %v; want %v", got, float64(-selfCapturePenalty))
	}
}

func TestSelectCPUMoveNoMoves(t *testing.T) {
	b := emptyBoard()
	place(b, 0, 0, King, Black)
	place(b, 0, 1, Rook, White)
	place(b, 1, 0, Rook, White)
	place(b, 1, 1, Rook, White)
	place(b, 7, 7, Pawn, Black) // black pawn already on its last row
	place(b, 7, 0, King, White)

	if _, ok := SelectCPUMove(b, Black, zeroRand{}); ok {
		t.Error("SelectCPUMove reported a move for a side with none")
	}
	if HasMoves(b, Black) {
		t.Error("HasMoves(Black) = true; want false")
	}
	if !HasMoves(b, White) {
		t.Error("HasMoves(White) = false; want true")
	}
}

func TestSelectCPUMoveNilRand(t *testing.T) {
	b := NewBoard()
	move, ok := SelectCPUMove(b, White, nil)
	if !ok {
		t.Fatal("no move")
	}
	for _, candidate := range Candidates(b, White) {
		if candidate == move {
			return
		}
	}
	t.Errorf("move %+v is not a legal candidate", move)
}

package engine

import (
	"errors"
	"testing"
)

func TestInitGame(t *testing.T) {
	state := InitGame()
	if state.Turn != White {
		t.Errorf("Turn = %q; want white", state.Turn)
	}
	if state.GameOver || state.Winner != NoColor {
		t.Errorf("GameOver = %v, Winner = %q; want fresh game", state.GameOver, state.Winner)
	}
	if state.Board.Count(White) != 16 || state.Board.Count(Black) != 16 {
		t.Error("InitGame did not set up the standard layout")
	}
}

func TestApplyMoveDoesNotTouchInput(t *testing.T) {
	state := InitGame()
	before := state.Board.Clone()

	result, err := ApplyMove(state, Position{6, 4}, Position{4, 4})
	if err != nil {
		t.Fatalf("ApplyMove: %v", err)
	}
	if !boardsEqual(before, state.Board) {
		t.Error("ApplyMove mutated the input board")
	}
	if state.Turn != White {
		t.Error("ApplyMove mutated the input turn")
	}

	next := result.State
	if next.Turn != Black {
		t.Errorf("Turn = %q; want black", next.Turn)
	}
	if next.Board.at(Position{6, 4}) != nil {
		t.Error("source square not cleared")
	}
	if got := next.Board.at(Position{4, 4}); got == nil || got.Kind != Pawn {
		t.Error("pawn did not land on (4,4)")
	}
	if result.Captured || result.Flipped != 0 || result.Winner != NoColor {
		t.Errorf("result = %+v; want quiet move", result)
	}
}

func TestApplyMoveSelfCapture(t *testing.T) {
	state := InitGame()
	result, err := ApplyMove(state, Position{7, 0}, Position{6, 0})
	if err != nil {
		t.Fatalf("ApplyMove: %v", err)
	}
	if !result.Captured {
		t.Error("Captured = false; want true when taking an own piece")
	}
	if got := result.State.Board.Count(White); got != 15 {
		t.Errorf("Count(White) = %d; want 15", got)
	}
}

func TestApplyMoveErrors(t *testing.T) {
	over := InitGame()
	over.GameOver = true
	over.Winner = Black

	tests := []struct {
		name  string
		state GameState
		from  Position
		to    Position
		want  error
	}{
		{"from out of range", InitGame(), Position{8, 0}, Position{5, 0}, ErrOutOfRange},
		{"to out of range", InitGame(), Position{6, 0}, Position{-1, 0}, ErrOutOfRange},
		{"empty source", InitGame(), Position{4, 4}, Position{3, 4}, ErrNoPiece},
		{"opponent piece", InitGame(), Position{1, 4}, Position{2, 4}, ErrNotYourTurn},
		{"unreachable square", InitGame(), Position{7, 1}, Position{4, 1}, ErrIllegalMove},
		{"game over", over, Position{6, 4}, Position{5, 4}, ErrGameOver},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ApplyMove(tt.state, tt.from, tt.to); !errors.Is(err, tt.want) {
				t.Errorf("error = %v; want %v", err, tt.want)
			}
		})
	}
}

func TestPassTurn(t *testing.T) {
	state := InitGame()
	next, err := PassTurn(state)
	if err != nil {
		t.Fatalf("PassTurn: %v", err)
	}
	if next.Turn != Black {
		t.Errorf("Turn = %q; want black", next.Turn)
	}
	if state.Turn != White {
		t.Error("PassTurn mutated its input")
	}

	next.GameOver = true
	if _, err := PassTurn(next); !errors.Is(err, ErrGameOver) {
		t.Errorf("error = %v; want ErrGameOver", err)
	}
}

func TestPlayedOutGameReachesWinner(t *testing.T) {
	state := InitGame()
	moves := []Move{
		{Position{6, 4}, Position{4, 4}},
		{Position{1, 3}, Position{3, 3}},
		{Position{4, 4}, Position{3, 4}},
	}
	for i, m := range moves {
		result, err := ApplyMove(state, m.From, m.To)
		if err != nil {
			t.Fatalf("move %d %+v: %v", i, m, err)
		}
		state = result.State
	}
	if state.Turn != Black {
		t.Errorf("Turn = %q; want black after three plies", state.Turn)
	}
	if state.GameOver {
		t.Error("opening sequence should not end the game")
	}
}

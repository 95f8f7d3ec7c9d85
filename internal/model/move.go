package model

import "github.com/benbeisheim/flipchess-backend/internal/engine"

type WSMove struct {
	From engine.Position `json:"from"`
	To   engine.Position `json:"to"`
}

type CPUSettings struct {
	Enabled bool         `json:"enabled"`
	Color   engine.Color `json:"color"`
}

type MatchFoundEvent struct {
	GameID string       `json:"gameId"`
	Color  engine.Color `json:"color"`
}

// Sound is the audio cue the client plays for the last action.
type Sound string

const (
	SoundNone    Sound = ""
	SoundMove    Sound = "move"
	SoundCapture Sound = "capture"
	SoundFlip    Sound = "flip"
	SoundWin     Sound = "win"
)

// soundFor picks the strongest cue of a move: win, then flip, then capture.
func soundFor(result engine.MoveResult) Sound {
	switch {
	case result.Winner != engine.NoColor:
		return SoundWin
	case result.Flipped > 0:
		return SoundFlip
	case result.Captured:
		return SoundCapture
	default:
		return SoundMove
	}
}

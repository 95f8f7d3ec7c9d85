package model

import "github.com/benbeisheim/flipchess-backend/internal/engine"

type Player struct {
	ID    string
	Color engine.Color
}

type ClientPlayer struct {
	ID    string       `json:"name"`
	Color engine.Color `json:"color"`
	IsCPU bool         `json:"isCpu"`
}

type Players struct {
	White ClientPlayer `json:"white"`
	Black ClientPlayer `json:"black"`
}

func (p *Players) seat(color engine.Color) *ClientPlayer {
	if color == engine.White {
		return &p.White
	}
	return &p.Black
}

// colorOf returns the seat playerID occupies, or NoColor.
func (p *Players) colorOf(playerID string) engine.Color {
	switch {
	case playerID == "":
		return engine.NoColor
	case p.White.ID == playerID && !p.White.IsCPU:
		return engine.White
	case p.Black.ID == playerID && !p.Black.IsCPU:
		return engine.Black
	default:
		return engine.NoColor
	}
}

func (p *Players) empty(color engine.Color) bool {
	s := p.seat(color)
	return s.ID == "" && !s.IsCPU
}

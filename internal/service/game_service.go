package service

import (
	"fmt"

	"github.com/benbeisheim/flipchess-backend/internal/engine"
	"github.com/benbeisheim/flipchess-backend/internal/model"
	"github.com/benbeisheim/flipchess-backend/internal/ws"
	"github.com/google/uuid"
)

type GameService struct {
	gameManager *GameManager
}

func NewGameService(gameManager *GameManager) *GameService {
	return &GameService{
		gameManager: gameManager,
	}
}

func newGameID() string {
	return uuid.New().String()
}

// CreateGame starts a game, seats playerID in it and, when cpu is set, seats
// the computer on cpuColor.
func (gs *GameService) CreateGame(playerID string, cpu bool, cpuColor engine.Color) (string, engine.Color, error) {
	gameID := newGameID()

	var opts []model.GameOption
	if cpu {
		opts = append(opts, model.WithCPU(cpuColor))
	}
	game, err := gs.gameManager.CreateGame(gameID, opts...)
	if err != nil {
		return "", engine.NoColor, fmt.Errorf("failed to create game: %w", err)
	}

	color, err := game.AddPlayer(playerID)
	if err != nil {
		return "", engine.NoColor, fmt.Errorf("failed to seat creator: %w", err)
	}
	return gameID, color, nil
}

func (gs *GameService) JoinGame(gameID string, playerID string) (engine.Color, error) {
	return gs.gameManager.AddPlayerToGame(gameID, playerID)
}

func (gs *GameService) JoinMatchmaking(playerID string) error {
	return gs.gameManager.JoinMatchmaking(playerID)
}

func (gs *GameService) LeaveMatchmaking(playerID string) bool {
	return gs.gameManager.LeaveMatchmaking(playerID)
}

func (gs *GameService) GetGameState(gameID string) (model.ClientGameState, error) {
	return gs.gameManager.GetGameState(gameID)
}

func (gs *GameService) ValidMoves(gameID string, pos engine.Position) ([]engine.Position, error) {
	return gs.gameManager.ValidMoves(gameID, pos)
}

func (gs *GameService) HandleMove(gameID string, playerID string, move model.WSMove) error {
	return gs.gameManager.MakeMove(gameID, playerID, move)
}

func (gs *GameService) HandlePass(gameID string, playerID string) error {
	return gs.gameManager.Pass(gameID, playerID)
}

func (gs *GameService) HandleReset(gameID string, playerID string) error {
	return gs.gameManager.Reset(gameID, playerID)
}

func (gs *GameService) HandleCPU(gameID string, playerID string, settings model.CPUSettings) error {
	return gs.gameManager.SetCPU(gameID, playerID, settings)
}

func (gs *GameService) RegisterConnection(gameID string, playerID string, conn model.Conn) error {
	return gs.gameManager.RegisterConnection(gameID, playerID, conn)
}

func (gs *GameService) UnregisterConnection(gameID string, playerID string, conn model.Conn) {
	gs.gameManager.UnregisterConnection(gameID, playerID, conn)
}

func (gs *GameService) Send(gameID string, playerID string, msg ws.Message) error {
	return gs.gameManager.Send(gameID, playerID, msg)
}

func (gs *GameService) RegisterMatchmakingChannel(playerID string, ch chan string) {
	gs.gameManager.RegisterMatchmakingChannel(playerID, ch)
}

func (gs *GameService) UnregisterMatchmakingChannel(playerID string, ch chan string) {
	gs.gameManager.UnregisterMatchmakingChannel(playerID, ch)
}

// service/game_manager.go
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/benbeisheim/flipchess-backend/internal/engine"
	"github.com/benbeisheim/flipchess-backend/internal/model"
	"github.com/benbeisheim/flipchess-backend/internal/ws"
	"github.com/gofiber/fiber/v2/log"
)

const DefaultMatchInterval = time.Second

type GameManager struct {
	games            map[string]*model.Game
	queue            *model.Queue
	matchingChannels map[string]chan string
	gameOptions      []model.GameOption
	mu               sync.RWMutex
}

// NewGameManager returns an empty registry. opts are applied to every game it
// creates, after the per-game options.
func NewGameManager(opts ...model.GameOption) *GameManager {
	return &GameManager{
		games:            make(map[string]*model.Game),
		queue:            model.NewQueue(),
		matchingChannels: make(map[string]chan string),
		gameOptions:      opts,
	}
}

// Run pairs queued players every interval until ctx is done.
func (gm *GameManager) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultMatchInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("matchmaking stopped")
			return
		case <-ticker.C:
			gm.matchPlayers()
		}
	}
}

// matchPlayers drains the queue two players at a time, creating a game for
// each pair and notifying both over their matchmaking channels. Players
// without an open matchmaking socket stay queued; nothing could tell them
// which game they were seated in.
func (gm *GameManager) matchPlayers() {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	for {
		player1, player2, ok := gm.queue.GetNextPair(gm.listeningLocked)
		if !ok {
			return
		}

		game := gm.newGameLocked(newGameID())
		p1Color, err := game.AddPlayer(player1.ID)
		if err != nil {
			log.Errorf("matchmaking: seating %s: %v", player1.ID, err)
			continue
		}
		p2Color, err := game.AddPlayer(player2.ID)
		if err != nil {
			log.Errorf("matchmaking: seating %s: %v", player2.ID, err)
			continue
		}
		log.Infof("matchmaking: paired %s and %s in game %s", player1.ID, player2.ID, game.ID)

		sentBoth := gm.notifyMatchLocked(player1.ID, model.MatchFoundEvent{GameID: game.ID, Color: p1Color})
		sentBoth = gm.notifyMatchLocked(player2.ID, model.MatchFoundEvent{GameID: game.ID, Color: p2Color}) && sentBoth
		if !sentBoth {
			log.Warnf("matchmaking: not every player of game %s was notified", game.ID)
		}
	}
}

func (gm *GameManager) listeningLocked(p model.Player) bool {
	_, ok := gm.matchingChannels[p.ID]
	return ok
}

// notifyMatchLocked sends event on playerID's channel and closes it.
func (gm *GameManager) notifyMatchLocked(playerID string, event model.MatchFoundEvent) bool {
	ch, ok := gm.matchingChannels[playerID]
	if !ok {
		return false
	}
	delete(gm.matchingChannels, playerID)
	defer close(ch)

	select {
	case ch <- mustJSON(event):
		log.Debugf("matchmaking: sent match to player %s", playerID)
		return true
	default:
		log.Warnf("matchmaking: channel of player %s is full", playerID)
		return false
	}
}

func (gm *GameManager) RegisterMatchmakingChannel(playerID string, ch chan string) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if existing, exists := gm.matchingChannels[playerID]; exists {
		log.Debugf("matchmaking: replacing channel of player %s", playerID)
		delete(gm.matchingChannels, playerID)
		close(existing)
	}
	gm.matchingChannels[playerID] = ch
}

// UnregisterMatchmakingChannel forgets ch if it is still playerID's channel.
// The channel is not closed; a match may be closing it concurrently.
func (gm *GameManager) UnregisterMatchmakingChannel(playerID string, ch chan string) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if current, exists := gm.matchingChannels[playerID]; exists && current == ch {
		delete(gm.matchingChannels, playerID)
	}
}

func mustJSON(v interface{}) string {
	bytes, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(bytes)
}

func (gm *GameManager) newGameLocked(gameID string, opts ...model.GameOption) *model.Game {
	all := append(append([]model.GameOption{}, opts...), gm.gameOptions...)
	game := model.NewGame(gameID, all...)
	gm.games[gameID] = game
	return game
}

func (gm *GameManager) CreateGame(gameID string, opts ...model.GameOption) (*model.Game, error) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if _, exists := gm.games[gameID]; exists {
		return nil, fmt.Errorf("%w: %s", ErrGameExists, gameID)
	}
	log.Infof("created game %s", gameID)
	return gm.newGameLocked(gameID, opts...), nil
}

func (gm *GameManager) GetGame(gameID string) (*model.Game, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	game, exists := gm.games[gameID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}
	return game, nil
}

func (gm *GameManager) AddPlayerToGame(gameID string, playerID string) (engine.Color, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return engine.NoColor, err
	}
	return game.AddPlayer(playerID)
}

func (gm *GameManager) JoinMatchmaking(playerID string) error {
	if err := gm.queue.AddPlayer(model.Player{ID: playerID}); err != nil {
		return fmt.Errorf("join matchmaking: %w", err)
	}
	log.Debugf("matchmaking: player %s queued", playerID)
	return nil
}

func (gm *GameManager) LeaveMatchmaking(playerID string) bool {
	return gm.queue.RemovePlayer(playerID)
}

func (gm *GameManager) GetGameState(gameID string) (model.ClientGameState, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return model.ClientGameState{}, err
	}
	return game.GetState(), nil
}

func (gm *GameManager) ValidMoves(gameID string, pos engine.Position) ([]engine.Position, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return nil, err
	}
	return game.ValidMoves(pos)
}

func (gm *GameManager) MakeMove(gameID string, playerID string, move model.WSMove) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.MakeMove(playerID, move)
}

func (gm *GameManager) Pass(gameID string, playerID string) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.Pass(playerID)
}

func (gm *GameManager) Reset(gameID string, playerID string) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.Reset(playerID)
}

func (gm *GameManager) SetCPU(gameID string, playerID string, settings model.CPUSettings) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.SetCPU(playerID, settings.Enabled, settings.Color)
}

func (gm *GameManager) RegisterConnection(gameID string, playerID string, conn model.Conn) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.RegisterConnection(playerID, conn)
}

func (gm *GameManager) UnregisterConnection(gameID string, playerID string, conn model.Conn) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return
	}
	game.UnregisterConnection(playerID, conn)
}

func (gm *GameManager) Send(gameID string, playerID string, msg ws.Message) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.Send(playerID, msg)
}

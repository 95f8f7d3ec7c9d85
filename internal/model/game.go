package model

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/benbeisheim/flipchess-backend/internal/engine"
	"github.com/benbeisheim/flipchess-backend/internal/ws"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/websocket/v2"
)

const DefaultCPUDelay = 500 * time.Millisecond

// Conn is the part of a websocket connection a game writes to.
type Conn interface {
	WriteJSON(v interface{}) error
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// The connections for a specific game
type GameConnections struct {
	connections map[string]Conn // playerID -> connection
	mu          sync.RWMutex
	writeMu     sync.Mutex // serializes writes; websocket conns allow one writer
	lastVersion int
}

// The Game struct focuses on a single game's state and its observers.
// Every mutation of state happens under mu, so one turn's
// read-evaluate-apply finishes before the next one is admitted.
type Game struct {
	ID          string
	mu          sync.Mutex
	state       engine.GameState
	players     Players
	cpu         CPUSettings
	sound       Sound
	flipped     int
	lastMove    *engine.Move
	version     int
	epoch       int // bumped on reset; stale CPU turns compare against it
	connections *GameConnections

	cpuDelay time.Duration
	rnd      engine.Rand
	schedule func(time.Duration, func())
}

// ClientGameState is what clients receive on every update.
type ClientGameState struct {
	Board    *engine.Board `json:"board"`
	Turn     engine.Color  `json:"turn"`
	GameOver bool          `json:"gameOver"`
	Winner   engine.Color  `json:"winner"`
	Sound    Sound         `json:"sound"`
	Flipped  int           `json:"flipped"`
	LastMove *engine.Move  `json:"lastMove"`
	MustPass bool          `json:"mustPass"`
	CPU      CPUSettings   `json:"cpu"`
	Players  Players       `json:"players"`
	Version  int           `json:"version"`
}

type GameOption func(*Game)

func WithCPUDelay(d time.Duration) GameOption {
	return func(g *Game) { g.cpuDelay = d }
}

// WithRand sets the CPU tie-breaking source. Access is serialized by the game.
func WithRand(r engine.Rand) GameOption {
	return func(g *Game) { g.rnd = r }
}

// WithCPU seats the computer on color from the start.
func WithCPU(color engine.Color) GameOption {
	return func(g *Game) {
		if color == engine.NoColor {
			color = engine.Black
		}
		g.cpu = CPUSettings{Enabled: true, Color: color}
		*g.players.seat(color) = cpuPlayer(color)
	}
}

// WithScheduler replaces time.AfterFunc for delayed CPU turns.
func WithScheduler(schedule func(time.Duration, func())) GameOption {
	return func(g *Game) { g.schedule = schedule }
}

func NewGame(id string, opts ...GameOption) *Game {
	g := &Game{
		ID:          id,
		state:       engine.InitGame(),
		players:     newPlayers(),
		cpu:         CPUSettings{Color: engine.Black},
		connections: NewGameConnections(),
		cpuDelay:    DefaultCPUDelay,
		schedule: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
	}
	for _, opt := range opts {
		opt(g)
	}
	g.scheduleCPULocked()
	return g
}

func NewGameConnections() *GameConnections {
	return &GameConnections{
		connections: make(map[string]Conn),
	}
}

func newPlayers() Players {
	return Players{
		White: ClientPlayer{Color: engine.White},
		Black: ClientPlayer{Color: engine.Black},
	}
}

func cpuPlayer(color engine.Color) ClientPlayer {
	return ClientPlayer{ID: "cpu", Color: color, IsCPU: true}
}

// AddPlayer seats playerID on the first free side. Joining twice returns the
// seat already held.
func (g *Game) AddPlayer(playerID string) (engine.Color, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if color := g.players.colorOf(playerID); color != engine.NoColor {
		return color, nil
	}
	for _, color := range []engine.Color{engine.White, engine.Black} {
		if g.players.empty(color) {
			*g.players.seat(color) = ClientPlayer{ID: playerID, Color: color}
			log.Infof("game %s: player %s seated as %s", g.ID, playerID, color)
			g.touchLocked()
			return color, nil
		}
	}
	return engine.NoColor, ErrGameFull
}

func (g *Game) GetState() ClientGameState {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.clientStateLocked()
}

func (g *Game) IsPlayerInGame(playerID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.isPlayerInGame(playerID)
}

func (g *Game) isPlayerInGame(playerID string) bool {
	return g.players.colorOf(playerID) != engine.NoColor
}

// CanSpectate reports whether a seat is still open.
func (g *Game) CanSpectate() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.canSpectate()
}

func (g *Game) canSpectate() bool {
	return g.players.empty(engine.White) || g.players.empty(engine.Black)
}

// ValidMoves lists the destinations of the piece at pos for highlighting.
func (g *Game) ValidMoves(pos engine.Position) ([]engine.Position, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	return engine.GetValidMoves(g.state.Board, pos)
}

func (g *Game) MakeMove(playerID string, move WSMove) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	log.Debugf("game %s: move %s -> %s by %s", g.ID, move.From, move.To, playerID)

	if err := g.authorizeTurnLocked(playerID); err != nil {
		return err
	}
	result, err := engine.ApplyMove(g.state, move.From, move.To)
	if err != nil {
		return err
	}
	g.applyResultLocked(engine.Move{From: move.From, To: move.To}, result)
	g.scheduleCPULocked()
	return nil
}

// Pass hands the turn over. A side with no legal move has to pass explicitly.
func (g *Game) Pass(playerID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.authorizeTurnLocked(playerID); err != nil {
		return err
	}
	if err := g.passLocked(); err != nil {
		return err
	}
	g.scheduleCPULocked()
	return nil
}

func (g *Game) Reset(playerID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.isPlayerInGame(playerID) {
		return ErrNotSeated
	}
	g.resetLocked()
	log.Infof("game %s: reset by %s", g.ID, playerID)
	return nil
}

// SetCPU switches the computer opponent on or off and restarts the game.
// Enabling it seats the CPU on color, moving the requesting player to the
// other side if needed.
func (g *Game) SetCPU(playerID string, enabled bool, color engine.Color) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	seat := g.players.colorOf(playerID)
	if seat == engine.NoColor {
		return ErrNotSeated
	}
	if color == engine.NoColor {
		color = engine.Black
	}

	if enabled {
		switch {
		case seat == color && !g.seatFreeForCPU(color.Opposite()):
			return fmt.Errorf("%w: no free seat for the cpu", ErrGameFull)
		case seat != color && !g.seatFreeForCPU(color):
			return fmt.Errorf("%w: %s seat is taken", ErrGameFull, color)
		}
	}

	if g.cpu.Enabled {
		*g.players.seat(g.cpu.Color) = ClientPlayer{Color: g.cpu.Color}
		g.cpu.Enabled = false
	}
	if enabled {
		if seat == color {
			*g.players.seat(seat) = ClientPlayer{Color: seat}
			*g.players.seat(color.Opposite()) = ClientPlayer{ID: playerID, Color: color.Opposite()}
		}
		*g.players.seat(color) = cpuPlayer(color)
		g.cpu = CPUSettings{Enabled: true, Color: color}
	}
	log.Infof("game %s: cpu enabled=%v color=%s", g.ID, g.cpu.Enabled, color)
	g.resetLocked()
	return nil
}

// seatFreeForCPU reports whether color is open or only held by the CPU.
func (g *Game) seatFreeForCPU(color engine.Color) bool {
	s := g.players.seat(color)
	return s.ID == "" || s.IsCPU
}

// authorizeTurnLocked checks that playerID may act for the side to move. A
// player alone in a game plays both colors until an opponent takes the other
// seat.
func (g *Game) authorizeTurnLocked(playerID string) error {
	if g.state.GameOver {
		return engine.ErrGameOver
	}
	mover := g.players.seat(g.state.Turn)
	switch {
	case mover.IsCPU:
		return ErrCPUTurn
	case mover.ID == playerID && playerID != "":
		return nil
	case !g.isPlayerInGame(playerID):
		return ErrNotSeated
	case mover.ID == "":
		return nil
	default:
		return engine.ErrNotYourTurn
	}
}

func (g *Game) applyResultLocked(move engine.Move, result engine.MoveResult) {
	g.state = result.State
	g.sound = soundFor(result)
	g.flipped = result.Flipped
	g.lastMove = &move
	if result.Winner != engine.NoColor {
		log.Infof("game %s: %s wins", g.ID, result.Winner)
	}
	g.touchLocked()
}

func (g *Game) passLocked() error {
	next, err := engine.PassTurn(g.state)
	if err != nil {
		return err
	}
	g.state = next
	g.sound = SoundNone
	g.flipped = 0
	g.lastMove = nil
	log.Debugf("game %s: pass, %s to move", g.ID, next.Turn)
	g.touchLocked()
	return nil
}

func (g *Game) resetLocked() {
	g.epoch++
	g.state = engine.InitGame()
	g.sound = SoundNone
	g.flipped = 0
	g.lastMove = nil
	g.touchLocked()
	g.scheduleCPULocked()
}

// touchLocked records a state change and pushes it to every connection.
func (g *Game) touchLocked() {
	g.version++
	go g.broadcastState(g.clientStateLocked())
}

func (g *Game) scheduleCPULocked() {
	if !g.cpu.Enabled || g.state.GameOver || g.state.Turn != g.cpu.Color {
		return
	}
	epoch := g.epoch
	g.schedule(g.cpuDelay, func() { g.playCPUTurn(epoch) })
}

// playCPUTurn runs one CPU turn unless the game moved on since it was
// scheduled. A CPU without moves passes.
func (g *Game) playCPUTurn(epoch int) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if epoch != g.epoch || !g.cpu.Enabled || g.state.GameOver || g.state.Turn != g.cpu.Color {
		return
	}
	move, ok := engine.SelectCPUMove(g.state.Board, g.cpu.Color, g.rnd)
	if !ok {
		log.Infof("game %s: cpu has no moves, passing", g.ID)
		if err := g.passLocked(); err != nil {
			log.Errorf("game %s: cpu pass: %v", g.ID, err)
		}
		return
	}
	result, err := engine.ApplyMove(g.state, move.From, move.To)
	if err != nil {
		log.Errorf("game %s: cpu move %s -> %s rejected: %v", g.ID, move.From, move.To, err)
		return
	}
	log.Debugf("game %s: cpu plays %s -> %s", g.ID, move.From, move.To)
	g.applyResultLocked(move, result)
}

func (g *Game) clientStateLocked() ClientGameState {
	return ClientGameState{
		Board:    g.state.Board,
		Turn:     g.state.Turn,
		GameOver: g.state.GameOver,
		Winner:   g.state.Winner,
		Sound:    g.sound,
		Flipped:  g.flipped,
		LastMove: g.lastMove,
		MustPass: !g.state.GameOver && !engine.HasMoves(g.state.Board, g.state.Turn),
		CPU:      g.cpu,
		Players:  g.players,
		Version:  g.version,
	}
}

func (g *Game) RegisterConnection(playerID string, conn Conn) error {
	connID := fmt.Sprintf("%p", conn)
	log.Debugf("game %s: registering connection %s for player %s", g.ID, connID, playerID)

	g.mu.Lock()
	isAuthorized := g.isPlayerInGame(playerID) || g.canSpectate()
	g.mu.Unlock()

	if !isAuthorized {
		return ErrNotAuthorized
	}

	// Holding writeMu keeps broadcasts out until the first snapshot is on the
	// wire; every later change carries a higher version and reaches conn.
	g.connections.writeMu.Lock()
	defer g.connections.writeMu.Unlock()

	g.connections.mu.Lock()
	if _, exists := g.connections.connections[playerID]; exists {
		// If we already have a healthy connection, keep it and reject the new one
		g.connections.mu.Unlock()
		_ = conn.WriteMessage(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(
				websocket.CloseNormalClosure,
				"Connection already exists",
			),
		)
		_ = conn.Close()
		return nil // Not really an error, just rejecting duplicate connection
	}
	g.connections.connections[playerID] = conn
	g.connections.mu.Unlock()
	log.Infof("game %s: registered connection %s for player %s", g.ID, connID, playerID)

	state := g.GetState()
	if state.Version > g.connections.lastVersion {
		g.connections.lastVersion = state.Version
	}
	msg, err := ws.NewMessage(ws.MessageTypeGameState, state)
	if err != nil {
		return err
	}
	if err := conn.WriteJSON(msg); err != nil {
		log.Warnf("game %s: failed to send initial state to player %s: %v", g.ID, playerID, err)
	}
	return nil
}

// UnregisterConnection drops playerID's connection if it is still conn.
func (g *Game) UnregisterConnection(playerID string, conn Conn) {
	g.connections.mu.Lock()
	defer g.connections.mu.Unlock()

	if current, exists := g.connections.connections[playerID]; exists && current == conn {
		log.Debugf("game %s: unregistering connection %p for player %s", g.ID, conn, playerID)
		delete(g.connections.connections, playerID)
	}
}

// Send writes msg to playerID's connection, if any.
func (g *Game) Send(playerID string, msg ws.Message) error {
	g.connections.mu.RLock()
	conn, ok := g.connections.connections[playerID]
	g.connections.mu.RUnlock()
	if !ok {
		return nil
	}

	g.connections.writeMu.Lock()
	defer g.connections.writeMu.Unlock()
	return conn.WriteJSON(msg)
}

// broadcastState sends state to every connection. Snapshots not newer than
// one already sent are dropped so clients never step backwards.
func (g *Game) broadcastState(state ClientGameState) {
	jsonGameState, err := json.Marshal(state)
	if err != nil {
		log.Errorf("game %s: failed to marshal state: %v", g.ID, err)
		return
	}
	msg := ws.Message{
		Type:    ws.MessageTypeGameState,
		Payload: json.RawMessage(jsonGameState),
	}

	g.connections.writeMu.Lock()
	defer g.connections.writeMu.Unlock()
	if state.Version <= g.connections.lastVersion {
		return
	}
	g.connections.lastVersion = state.Version

	g.connections.mu.RLock()
	activeConnections := make(map[string]Conn, len(g.connections.connections))
	for playerID, conn := range g.connections.connections {
		activeConnections[playerID] = conn
	}
	g.connections.mu.RUnlock()

	var failed []string
	for playerID, conn := range activeConnections {
		if err := conn.WriteJSON(msg); err != nil {
			log.Warnf("game %s: failed to send state to player %s: %v", g.ID, playerID, err)
			failed = append(failed, playerID)
		}
	}

	if len(failed) > 0 {
		g.connections.mu.Lock()
		for _, playerID := range failed {
			if activeConnections[playerID] == g.connections.connections[playerID] {
				delete(g.connections.connections, playerID)
			}
		}
		g.connections.mu.Unlock()
	}
}

package controller

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/benbeisheim/flipchess-backend/internal/engine"
	"github.com/benbeisheim/flipchess-backend/internal/model"
	"github.com/benbeisheim/flipchess-backend/internal/service"
	"github.com/benbeisheim/flipchess-backend/internal/ws"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/websocket/v2"
)

type WebSocketController struct {
	gameService *service.GameService
}

func NewWebSocketController(gameService *service.GameService) *WebSocketController {
	return &WebSocketController{
		gameService: gameService,
	}
}

type validMovesReply struct {
	Row   int               `json:"row"`
	Col   int               `json:"col"`
	Moves []engine.Position `json:"moves"`
}

// HandleConnection is called when a new WebSocket connection is established
func (wsc *WebSocketController) HandleConnection(c *websocket.Conn) {
	gameID := c.Params("gameId")
	playerID, _ := c.Locals("playerID").(string)

	if err := wsc.gameService.RegisterConnection(gameID, playerID, c); err != nil {
		log.Warnf("game %s: rejecting connection of %s: %v", gameID, playerID, err)
		_ = c.WriteJSON(ws.ErrorMessage(err.Error()))
		c.Close()
		return
	}
	defer wsc.gameService.UnregisterConnection(gameID, playerID, c)

	for {
		messageType, message, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warnf("game %s: read from %s: %v", gameID, playerID, err)
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var msg ws.Message
		if err := json.Unmarshal(message, &msg); err != nil {
			log.Debugf("game %s: malformed message from %s: %v", gameID, playerID, err)
			wsc.sendError(gameID, playerID, "malformed message")
			continue
		}
		if err := wsc.handleMessage(gameID, playerID, msg); err != nil {
			log.Debugf("game %s: %s from %s rejected: %v", gameID, msg.Type, playerID, err)
			wsc.sendError(gameID, playerID, err.Error())
		}
	}
}

func (wsc *WebSocketController) handleMessage(gameID, playerID string, msg ws.Message) error {
	switch msg.Type {
	case ws.MessageTypeMove:
		var move model.WSMove
		if err := json.Unmarshal(msg.Payload, &move); err != nil {
			return fmt.Errorf("invalid move payload: %w", err)
		}
		return wsc.gameService.HandleMove(gameID, playerID, move)

	case ws.MessageTypePass:
		return wsc.gameService.HandlePass(gameID, playerID)

	case ws.MessageTypeReset:
		return wsc.gameService.HandleReset(gameID, playerID)

	case ws.MessageTypeCPU:
		var settings model.CPUSettings
		if err := json.Unmarshal(msg.Payload, &settings); err != nil {
			return fmt.Errorf("invalid cpu payload: %w", err)
		}
		return wsc.gameService.HandleCPU(gameID, playerID, settings)

	case ws.MessageTypeValidMoves:
		var pos engine.Position
		if err := json.Unmarshal(msg.Payload, &pos); err != nil {
			return fmt.Errorf("invalid position payload: %w", err)
		}
		moves, err := wsc.gameService.ValidMoves(gameID, pos)
		if err != nil {
			return err
		}
		reply, err := ws.NewMessage(ws.MessageTypeValidMoves, validMovesReply{Row: pos.Row, Col: pos.Col, Moves: moves})
		if err != nil {
			return err
		}
		return wsc.gameService.Send(gameID, playerID, reply)

	default:
		return fmt.Errorf("unknown message type: %s", msg.Type)
	}
}

func (wsc *WebSocketController) sendError(gameID, playerID, errorMsg string) {
	if err := wsc.gameService.Send(gameID, playerID, ws.ErrorMessage(errorMsg)); err != nil {
		log.Debugf("game %s: sending error to %s: %v", gameID, playerID, err)
	}
}

// HandleMatchmaking queues the player and holds the socket open until a match
// is found or the client goes away.
func (wsc *WebSocketController) HandleMatchmaking(c *websocket.Conn) {
	playerID, _ := c.Locals("playerID").(string)

	ch := make(chan string, 1)
	wsc.gameService.RegisterMatchmakingChannel(playerID, ch)
	if err := wsc.gameService.JoinMatchmaking(playerID); err != nil && !errors.Is(err, model.ErrAlreadyQueued) {
		log.Warnf("matchmaking: %s: %v", playerID, err)
		wsc.gameService.UnregisterMatchmakingChannel(playerID, ch)
		_ = c.WriteJSON(ws.ErrorMessage(err.Error()))
		c.Close()
		return
	}

	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	select {
	case event, ok := <-ch:
		if !ok {
			// Superseded by a newer matchmaking socket for the same player.
			c.Close()
			return
		}
		msg := ws.Message{Type: ws.MessageTypeMatchFound, Payload: json.RawMessage(event)}
		if err := c.WriteJSON(msg); err != nil {
			log.Warnf("matchmaking: notifying %s: %v", playerID, err)
		}
		_ = c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "match found"))
		c.Close()
	case <-gone:
		wsc.gameService.UnregisterMatchmakingChannel(playerID, ch)
		wsc.gameService.LeaveMatchmaking(playerID)
		log.Debugf("matchmaking: %s left", playerID)
	}
}

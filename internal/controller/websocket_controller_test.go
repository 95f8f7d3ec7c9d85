package controller

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/benbeisheim/flipchess-backend/internal/engine"
	"github.com/benbeisheim/flipchess-backend/internal/model"
	"github.com/benbeisheim/flipchess-backend/internal/ws"
	fws "github.com/fasthttp/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/go-cmp/cmp"
)

// listen serves app on a loopback port until the test ends.
func listen(t *testing.T, app *fiber.App) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.ShutdownWithTimeout(time.Second) })
	return ln.Addr().String()
}

func dial(t *testing.T, addr, path string) *fws.Conn {
	t.Helper()
	conn, _, err := fws.DefaultDialer.Dial("ws://"+addr+path, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", path, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *fws.Conn, msgType ws.MessageType, payload interface{}) {
	t.Helper()
	msg, err := ws.NewMessage(msgType, payload)
	if err != nil {
		t.Fatalf("NewMessage: %v", err)
	}
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write %s: %v", msgType, err)
	}
}

// readUntil skips frames of other types until one of msgType arrives.
func readUntil(t *testing.T, conn *fws.Conn, msgType ws.MessageType) ws.Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		var msg ws.Message
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("waiting for %s: %v", msgType, err)
		}
		if msg.Type == msgType {
			return msg
		}
	}
}

type wireState struct {
	Turn     string       `json:"turn"`
	LastMove *engine.Move `json:"lastMove"`
}

func decodeState(t *testing.T, msg ws.Message) wireState {
	t.Helper()
	var state wireState
	if err := json.Unmarshal(msg.Payload, &state); err != nil {
		t.Fatalf("decode state %s: %v", msg.Payload, err)
	}
	return state
}

func TestGameSocket(t *testing.T) {
	app, _ := newTestServer()
	gameID := createGame(t, app, "alice", "")
	if status, _ := do(t, app, http.MethodPost, "/api/game/join/"+gameID, "bob", ""); status != http.StatusOK {
		t.Fatalf("join status = %d", status)
	}
	addr := listen(t, app)

	alice := dial(t, addr, "/ws/game/"+gameID+"?playerId=alice")
	if got := decodeState(t, readUntil(t, alice, ws.MessageTypeGameState)); got.Turn != "white" {
		t.Errorf("initial turn = %q; want white", got.Turn)
	}
	bob := dial(t, addr, "/ws/game/"+gameID+"?playerId=bob")
	readUntil(t, bob, ws.MessageTypeGameState)

	t.Run("valid moves", func(t *testing.T) {
		send(t, alice, ws.MessageTypeValidMoves, engine.Position{Row: 6, Col: 4})
		var reply validMovesReply
		if err := json.Unmarshal(readUntil(t, alice, ws.MessageTypeValidMoves).Payload, &reply); err != nil {
			t.Fatalf("decode reply: %v", err)
		}
		want := validMovesReply{Row: 6, Col: 4, Moves: []engine.Position{{Row: 5, Col: 4}, {Row: 4, Col: 4}}}
		if diff := cmp.Diff(want, reply); diff != "" {
			t.Errorf("reply mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("illegal move", func(t *testing.T) {
		send(t, alice, ws.MessageTypeMove, model.WSMove{
			From: engine.Position{Row: 6, Col: 4},
			To:   engine.Position{Row: 3, Col: 4},
		})
		var payload map[string]string
		if err := json.Unmarshal(readUntil(t, alice, ws.MessageTypeError).Payload, &payload); err != nil {
			t.Fatalf("decode error payload: %v", err)
		}
		if !strings.Contains(payload["error"], engine.ErrIllegalMove.Error()) {
			t.Errorf("error = %q; want it to mention %q", payload["error"], engine.ErrIllegalMove)
		}
	})

	t.Run("move reaches both players", func(t *testing.T) {
		send(t, alice, ws.MessageTypeMove, model.WSMove{
			From: engine.Position{Row: 6, Col: 4},
			To:   engine.Position{Row: 4, Col: 4},
		})
		want := wireState{
			Turn:     "black",
			LastMove: &engine.Move{From: engine.Position{Row: 6, Col: 4}, To: engine.Position{Row: 4, Col: 4}},
		}
		for name, conn := range map[string]*fws.Conn{"alice": alice, "bob": bob} {
			if diff := cmp.Diff(want, decodeState(t, readUntil(t, conn, ws.MessageTypeGameState))); diff != "" {
				t.Errorf("%s state mismatch (-want +got):\n%s", name, diff)
			}
		}
	})

	t.Run("wrong player and unknown type", func(t *testing.T) {
		send(t, alice, ws.MessageTypePass, nil)
		readUntil(t, alice, ws.MessageTypeError)

		send(t, bob, ws.MessageType("resign"), nil)
		readUntil(t, bob, ws.MessageTypeError)
	})

	t.Run("pass", func(t *testing.T) {
		send(t, bob, ws.MessageTypePass, nil)
		if got := decodeState(t, readUntil(t, bob, ws.MessageTypeGameState)); got.Turn != "white" {
			t.Errorf("turn after pass = %q; want white", got.Turn)
		}
	})
}

func TestGameSocketRejectsOutsider(t *testing.T) {
	app, _ := newTestServer()
	gameID := createGame(t, app, "alice", "")
	do(t, app, http.MethodPost, "/api/game/join/"+gameID, "bob", "")
	addr := listen(t, app)

	carol := dial(t, addr, "/ws/game/"+gameID+"?playerId=carol")
	readUntil(t, carol, ws.MessageTypeError)
	if _, _, err := carol.ReadMessage(); err == nil {
		t.Error("outsider socket stayed open")
	}
}

func TestMatchmakingSocket(t *testing.T) {
	app, gm := newTestServer()
	addr := listen(t, app)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go gm.Run(ctx, 10*time.Millisecond)

	conns := map[string]*fws.Conn{
		"alice": dial(t, addr, "/ws/matchmaking?playerId=alice"),
		"bob":   dial(t, addr, "/ws/matchmaking?playerId=bob"),
	}

	events := map[string]model.MatchFoundEvent{}
	for name, conn := range conns {
		var event model.MatchFoundEvent
		if err := json.Unmarshal(readUntil(t, conn, ws.MessageTypeMatchFound).Payload, &event); err != nil {
			t.Fatalf("decode %s event: %v", name, err)
		}
		events[name] = event

		if _, _, err := conn.ReadMessage(); !fws.IsCloseError(err, fws.CloseNormalClosure) {
			t.Errorf("%s socket after match: %v; want normal close", name, err)
		}
	}

	if events["alice"].GameID == "" || events["alice"].GameID != events["bob"].GameID {
		t.Fatalf("events = %+v; want one shared game", events)
	}
	if events["alice"].Color == events["bob"].Color {
		t.Errorf("both players got %s", events["alice"].Color)
	}

	state, err := gm.GetGameState(events["alice"].GameID)
	if err != nil {
		t.Fatalf("GetGameState: %v", err)
	}
	seated := map[string]bool{state.Players.White.ID: true, state.Players.Black.ID: true}
	if !seated["alice"] || !seated["bob"] {
		t.Errorf("players = %+v; want alice and bob seated", state.Players)
	}
}

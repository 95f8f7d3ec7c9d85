package controller

import (
	"github.com/benbeisheim/flipchess-backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// SetupRoutes mounts the REST API under /api and the sockets under /ws.
func SetupRoutes(app *fiber.App, gc *GameController, wsc *WebSocketController, wsConfig websocket.Config) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	wsRoutes := app.Group("/ws", middleware.EnsurePlayerID(), middleware.WebSocketUpgrade())
	wsRoutes.Get("/game/:gameId", websocket.New(wsc.HandleConnection, wsConfig))
	wsRoutes.Get("/matchmaking", websocket.New(wsc.HandleMatchmaking, wsConfig))

	api := app.Group("/api", middleware.EnsurePlayerID())

	gameRoutes := api.Group("/game")
	gameRoutes.Post("/matchmaking/join", gc.JoinMatchmaking)
	gameRoutes.Post("/create", gc.CreateGame)
	gameRoutes.Post("/join/:gameId", gc.JoinGame)
	gameRoutes.Get("/:gameId", gc.GetGameState)
	gameRoutes.Get("/:gameId/moves", gc.ValidMoves)
	gameRoutes.Post("/:gameId/move", gc.MakeMove)
	gameRoutes.Post("/:gameId/pass", gc.Pass)
	gameRoutes.Post("/:gameId/reset", gc.Reset)
	gameRoutes.Post("/:gameId/cpu", gc.SetCPU)
}

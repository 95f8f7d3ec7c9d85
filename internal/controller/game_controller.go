package controller

import (
	"errors"

	"github.com/benbeisheim/flipchess-backend/internal/engine"
	"github.com/benbeisheim/flipchess-backend/internal/model"
	"github.com/benbeisheim/flipchess-backend/internal/service"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

type GameController struct {
	gameService *service.GameService
}

func NewGameController(gameService *service.GameService) *GameController {
	return &GameController{gameService: gameService}
}

type createGameRequest struct {
	CPU      bool         `json:"cpu"`
	CPUColor engine.Color `json:"cpuColor"`
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrGameNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, engine.ErrOutOfRange),
		errors.Is(err, engine.ErrIllegalMove),
		errors.Is(err, engine.ErrNoPiece):
		return fiber.StatusBadRequest
	case errors.Is(err, engine.ErrNotYourTurn),
		errors.Is(err, model.ErrNotSeated),
		errors.Is(err, model.ErrNotAuthorized):
		return fiber.StatusForbidden
	case errors.Is(err, engine.ErrGameOver),
		errors.Is(err, model.ErrGameFull),
		errors.Is(err, model.ErrCPUTurn),
		errors.Is(err, model.ErrAlreadyQueued),
		errors.Is(err, service.ErrGameExists):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

func errorResponse(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status == fiber.StatusInternalServerError {
		log.Errorf("%s %s: %v", c.Method(), c.Path(), err)
	}
	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": msg,
	})
}

func playerID(c *fiber.Ctx) string {
	id, _ := c.Locals("playerID").(string)
	return id
}

func (gc *GameController) CreateGame(c *fiber.Ctx) error {
	var req createGameRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body")
		}
	}

	gameID, color, err := gc.gameService.CreateGame(playerID(c), req.CPU, req.CPUColor)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Game created",
		"game_id": gameID,
		"color":   color,
	})
}

func (gc *GameController) JoinGame(c *fiber.Ctx) error {
	color, err := gc.gameService.JoinGame(c.Params("gameId"), playerID(c))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Game joined",
		"color":   color,
	})
}

func (gc *GameController) GetGameState(c *fiber.Ctx) error {
	gameState, err := gc.gameService.GetGameState(c.Params("gameId"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(gameState)
}

func (gc *GameController) ValidMoves(c *fiber.Ctx) error {
	pos := engine.Position{Row: c.QueryInt("row", -1), Col: c.QueryInt("col", -1)}

	moves, err := gc.gameService.ValidMoves(c.Params("gameId"), pos)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"moves": moves,
	})
}

func (gc *GameController) MakeMove(c *fiber.Ctx) error {
	var move model.WSMove
	if err := c.BodyParser(&move); err != nil {
		return badRequest(c, "invalid move")
	}
	gameID := c.Params("gameId")
	if err := gc.gameService.HandleMove(gameID, playerID(c), move); err != nil {
		return errorResponse(c, err)
	}
	return gc.GetGameState(c)
}

func (gc *GameController) Pass(c *fiber.Ctx) error {
	if err := gc.gameService.HandlePass(c.Params("gameId"), playerID(c)); err != nil {
		return errorResponse(c, err)
	}
	return gc.GetGameState(c)
}

func (gc *GameController) Reset(c *fiber.Ctx) error {
	if err := gc.gameService.HandleReset(c.Params("gameId"), playerID(c)); err != nil {
		return errorResponse(c, err)
	}
	return gc.GetGameState(c)
}

func (gc *GameController) SetCPU(c *fiber.Ctx) error {
	var settings model.CPUSettings
	if err := c.BodyParser(&settings); err != nil {
		return badRequest(c, "invalid cpu settings")
	}
	if err := gc.gameService.HandleCPU(c.Params("gameId"), playerID(c), settings); err != nil {
		return errorResponse(c, err)
	}
	return gc.GetGameState(c)
}

func (gc *GameController) JoinMatchmaking(c *fiber.Ctx) error {
	if err := gc.gameService.JoinMatchmaking(playerID(c)); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"status": "queued",
	})
}

package controller

import (
	"ai-shopassist-be/internal/dto"
	"ai-shopassist-be/internal/pkg/serverutils"
	"ai-shopassist-be/internal/service"
	internalWS "ai-shopassist-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
)

type IAssistantController interface {
	RegisterRoutes(r fiber.Router)
	Query(ctx *fiber.Ctx) error
	History(ctx *fiber.Ctx) error
	DeleteSession(ctx *fiber.Ctx) error
}

type assistantController struct {
	assistantService service.IAssistantService
	hub              *internalWS.Hub
}

func NewAssistantController(assistantService service.IAssistantService, hub *internalWS.Hub) IAssistantController {
	return &assistantController{
		assistantService: assistantService,
		hub:              hub,
	}
}

func (c *assistantController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/assistant/v1")
	h.Post("query", c.Query)
	h.Get("session/:id/history", c.History)
	h.Delete("session/:id", c.DeleteSession)
}

func (c *assistantController) Query(ctx *fiber.Ctx) error {
	var req dto.QueryRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	err := serverutils.ValidateRequest(req)
	if err != nil {
		return err
	}

	res, err := c.assistantService.Query(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success assistant query", res))
}

func (c *assistantController) History(ctx *fiber.Ctx) error {
	sessionId := ctx.Params("id")

	res, err := c.assistantService.History(ctx.Context(), sessionId)
	if err != nil {
		return err
	}
	if res == nil {
		return fiber.NewError(fiber.StatusNotFound, "Session not found")
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show session history", res))
}

func (c *assistantController) DeleteSession(ctx *fiber.Ctx) error {
	sessionId := ctx.Params("id")

	if err := c.assistantService.DeleteSession(ctx.Context(), sessionId); err != nil {
		return err
	}

	// Drop any live chat socket still bound to the session.
	if c.hub != nil {
		c.hub.CloseSession(sessionId)
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete session", nil))
}

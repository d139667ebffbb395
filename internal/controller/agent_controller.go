package controller

import (
	"math-agent-be/internal/dto"
	"math-agent-be/internal/pkg/serverutils"
	"math-agent-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAgentController interface {
	RegisterRoutes(r fiber.Router)
	Query(ctx *fiber.Ctx) error
	Feedback(ctx *fiber.Ctx) error
	LastConversation(ctx *fiber.Ctx) error
}

type agentController struct {
	service service.IAgentService
}

func NewAgentController(service service.IAgentService) IAgentController {
	return &agentController{service: service}
}

func (c *agentController) RegisterRoutes(r fiber.Router) {
	r.Post("/query", c.Query)
	r.Post("/feedback", c.Feedback)
	r.Get("/conversation/last", c.LastConversation)
}

func (c *agentController) Query(ctx *fiber.Ctx) error {
	var req dto.QueryRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Query(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success answer question", res))
}

func (c *agentController) Feedback(ctx *fiber.Ctx) error {
	var req dto.FeedbackRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	res, err := c.service.Feedback(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse(res.Message, res))
}

func (c *agentController) LastConversation(ctx *fiber.Ctx) error {
	res, err := c.service.LastConversation(ctx.UserContext())
	if err != nil {
		return err
	}
	if res == nil {
		return fiber.NewError(fiber.StatusNotFound, "No conversation yet")
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get last conversation", res))
}

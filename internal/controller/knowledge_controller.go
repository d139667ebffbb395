package controller

import (
	"math-agent-be/internal/dto"
	"math-agent-be/internal/pkg/serverutils"
	"math-agent-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IKnowledgeController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
}

type knowledgeController struct {
	service service.IKnowledgeService
}

func NewKnowledgeController(service service.IKnowledgeService) IKnowledgeController {
	return &knowledgeController{service: service}
}

func (c *knowledgeController) RegisterRoutes(r fiber.Router) {
	r.Post("/knowledge", c.Create)
}

// Create queues the passage; it becomes searchable once the consumer has embedded it.
func (c *knowledgeController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateKnowledgeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Enqueue(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).
		JSON(serverutils.SuccessResponseWithCode(fiber.StatusAccepted, "Knowledge passage queued", res))
}

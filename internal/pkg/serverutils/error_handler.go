package serverutils

import (
	"errors"

	"math-agent-be/internal/pkg/logger"
	"math-agent-be/pkg/rag/ragerr"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandler turns any error returned by a handler into the standard envelope.
func ErrorHandler(log logger.ILogger) fiber.ErrorHandler {
	return func(ctx *fiber.Ctx, err error) error {
		code, message := classify(err)

		if code >= fiber.StatusInternalServerError {
			log.Error("HTTP", "Request failed", map[string]interface{}{
				"path":   ctx.Path(),
				"method": ctx.Method(),
				"error":  message,
			})
		}

		var verr *ValidationError
		if errors.As(err, &verr) {
			return ctx.Status(code).JSON(ErrorResponseWithData(code, message, verr.Fields))
		}
		return ctx.Status(code).JSON(ErrorResponse(code, message))
	}
}

// StatusOf is the status code ErrorHandler will answer err with.
func StatusOf(err error) int {
	code, _ := classify(err)
	return code
}

func classify(err error) (int, string) {
	var fiberErr *fiber.Error
	var verr *ValidationError
	var cf *ragerr.CollaboratorFailure
	var pf *ragerr.PipelineFailure

	switch {
	case errors.As(err, &fiberErr):
		return fiberErr.Code, fiberErr.Message
	case errors.As(err, &verr):
		return fiber.StatusBadRequest, verr.Error()
	case errors.Is(err, ragerr.ErrOutOfScope):
		return fiber.StatusBadRequest, ragerr.ErrOutOfScope.Error()
	case errors.Is(err, ragerr.ErrNoConversation), errors.Is(err, ragerr.ErrEmptyFeedback):
		// both surface with the same wording
		return fiber.StatusBadRequest, ragerr.ErrNoConversation.Error()
	case errors.Is(err, ragerr.ErrConversationChanged):
		return fiber.StatusConflict, ragerr.ErrConversationChanged.Error()
	case errors.As(err, &pf):
		return fiber.StatusInternalServerError, ragerr.Sanitize(pf.Message)
	case errors.As(err, &cf):
		return fiber.StatusInternalServerError, cf.Error()
	default:
		return fiber.StatusInternalServerError, ragerr.Sanitize(err.Error())
	}
}

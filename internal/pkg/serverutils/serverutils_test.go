package serverutils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"math-agent-be/internal/pkg/logger"
	"math-agent-be/pkg/rag/ragerr"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Question string `json:"question" validate:"required,notblank,max=20"`
}

func TestValidateRequest(t *testing.T) {
	assert.NoError(t, ValidateRequest(sampleRequest{Question: "What is 2+2?"}))

	err := ValidateRequest(sampleRequest{Question: "   "})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "question is required", verr.Error())

	err = ValidateRequest(sampleRequest{Question: "this question is far too long"})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "question must be at most 20 characters", verr.Fields[0].Message)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{"out of scope", ragerr.ErrOutOfScope, 400, "This agent only answers math-related questions."},
		{"no conversation", fmt.Errorf("feedback: %w", ragerr.ErrNoConversation), 400, "No active conversation to give feedback on."},
		{"empty feedback", ragerr.ErrEmptyFeedback, 400, "No active conversation to give feedback on."},
		{"conversation changed", fmt.Errorf("feedback: %w", ragerr.ErrConversationChanged), 409, ragerr.ErrConversationChanged.Error()},
		{"collaborator", ragerr.Collaborator("generation", errors.New("boom")), 500, "generation: boom"},
		{"pipeline", &ragerr.PipelineFailure{Message: "Web search failed: timeout"}, 500, "Web search failed: timeout"},
		{"fiber", fiber.NewError(404, "not here"), 404, "not here"},
		{"unknown", errors.New("dial tcp: key=abc"), 500, "dial tcp: key=REDACTED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, msg := classify(tt.err)
			assert.Equal(t, tt.code, code)
			assert.Equal(t, tt.message, msg)
		})
	}
}

func TestErrorHandlerEnvelope(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(logger.NewNopLogger())})
	app.Get("/boom", func(c *fiber.Ctx) error { return ragerr.ErrOutOfScope })
	app.Get("/invalid", func(c *fiber.Ctx) error { return ValidateRequest(sampleRequest{}) })

	resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	var env BaseResponse[any]
	require.NoError(t, json.Unmarshal(body, &env))
	assert.False(t, env.Success)
	assert.Equal(t, 400, env.Code)
	assert.Equal(t, "This agent only answers math-related questions.", env.Message)

	resp, err = app.Test(httptest.NewRequest("GET", "/invalid", nil))
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)

	body, _ = io.ReadAll(resp.Body)
	var withFields BaseResponse[[]FieldError]
	require.NoError(t, json.Unmarshal(body, &withFields))
	require.Len(t, withFields.Data, 1)
	assert.Equal(t, "Question", withFields.Data[0].Field)
}

package dto

import (
	"time"

	"math-agent-be/pkg/rag/state"

	"github.com/google/uuid"
)

type QueryRequest struct {
	Question string `json:"question" validate:"required,notblank,max=4000"`
}

type QueryResponse struct {
	Answer         string       `json:"answer"`
	Source         state.Source `json:"source"`
	FeedbackNeeded bool         `json:"feedback_needed"`
}

// FeedbackRequest is not validated: an empty feedback is reported as a usage error by the service.
type FeedbackRequest struct {
	Feedback string `json:"feedback"`
}

type FeedbackResponse struct {
	Message       string `json:"message"`
	RefinedAnswer string `json:"refined_answer"`
}

type ConversationResponse struct {
	Id        uuid.UUID    `json:"id"`
	Question  string       `json:"question"`
	Answer    string       `json:"answer"`
	Source    state.Source `json:"source"`
	UpdatedAt time.Time    `json:"updated_at"`
}

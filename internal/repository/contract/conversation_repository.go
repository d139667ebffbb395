package contract

import (
	"context"
	"time"

	"math-agent-be/pkg/rag/state"

	"github.com/google/uuid"
)

// Conversation is the most recent answered exchange, kept for one follow-up refinement.
type Conversation struct {
	ID        uuid.UUID    `json:"id"`
	Question  string       `json:"question"`
	Answer    string       `json:"answer"`
	Source    state.Source `json:"source"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// ConversationRepository is a single-slot store. Save overwrites whatever was there,
// so concurrent Save calls are last-writer-wins.
type ConversationRepository interface {
	Save(ctx context.Context, conversation *Conversation) error
	// Get returns (nil, nil) when nothing has been saved.
	Get(ctx context.Context) (*Conversation, error)
	// UpdateAnswer replaces the answer of conversation id. It returns ragerr.ErrNoConversation when
	// the slot is empty and ragerr.ErrConversationChanged when the slot now holds another conversation.
	UpdateAnswer(ctx context.Context, id uuid.UUID, answer string) (*Conversation, error)
}

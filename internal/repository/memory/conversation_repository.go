package memory

import (
	"context"
	"sync"
	"time"

	"math-agent-be/internal/repository/contract"
	"math-agent-be/pkg/rag/ragerr"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

const lastConversationKey = "conversation:last"

type ConversationRepository struct {
	cache *cache.Cache
	// serializes Save with the read-modify-write in UpdateAnswer
	mu  sync.Mutex
	now func() time.Time
}

func NewConversationRepository() *ConversationRepository {
	// the slot lives until overwritten; nothing to purge
	c := cache.New(cache.NoExpiration, 0)
	return &ConversationRepository{
		cache: c,
		now:   time.Now,
	}
}

func (r *ConversationRepository) Save(ctx context.Context, conversation *contract.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *conversation
	if stored.UpdatedAt.IsZero() {
		stored.UpdatedAt = r.now()
	}
	r.cache.Set(lastConversationKey, stored, cache.NoExpiration)
	return nil
}

func (r *ConversationRepository) Get(ctx context.Context) (*contract.Conversation, error) {
	if x, found := r.cache.Get(lastConversationKey); found {
		c := x.(contract.Conversation)
		return &c, nil
	}
	return nil, nil
}

func (r *ConversationRepository) UpdateAnswer(ctx context.Context, id uuid.UUID, answer string) (*contract.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	x, found := r.cache.Get(lastConversationKey)
	if !found {
		return nil, ragerr.ErrNoConversation
	}

	c := x.(contract.Conversation)
	if c.ID != id {
		return nil, ragerr.ErrConversationChanged
	}
	c.Answer = answer
	c.UpdatedAt = r.now()
	r.cache.Set(lastConversationKey, c, cache.NoExpiration)
	return &c, nil
}
